package protocols

import (
	"fmt"

	"github.com/vybium/vybium-crypto/pkg/vybium-crypto/field"
	"github.com/vybium/vybium-crypto/pkg/vybium-crypto/hash"

	"github.com/vybium/vybium-cairo-vm/internal/vybium-cairo-vm/core"
	"github.com/vybium/vybium-cairo-vm/internal/vybium-cairo-vm/utils"
	"github.com/vybium/vybium-cairo-vm/internal/vybium-cairo-vm/vm"
)

// CurrentVersion is the version of the instruction encoding and trace layout.
// It changes whenever either changes.
const CurrentVersion uint32 = 0

// PublicCell is a memory cell whose value the verifier knows
type PublicCell struct {
	Address uint64
	Value   core.Felt
}

// Claim contains the public information of a run: which program, from which
// registers to which, in how many steps, and the public memory.
type Claim struct {
	// ProgramDigest ties the claim to a specific program (vm.DigestLen elements)
	ProgramDigest []field.Element

	Version uint32

	Initial vm.Pointers
	Final   vm.Pointers
	Steps   uint64

	PublicMemory []PublicCell
}

// NewClaim creates a claim for a program digest
func NewClaim(programDigest []field.Element) *Claim {
	return &Claim{
		ProgramDigest: programDigest,
		Version:       CurrentVersion,
	}
}

// WithRun sets the register boundaries and step count of a finished run
func (c *Claim) WithRun(res *vm.Result) *Claim {
	c.Initial = res.Initial
	c.Final = res.Final
	c.Steps = res.Steps
	return c
}

// WithPublicMemory reads the given addresses from mem into the claim
func (c *Claim) WithPublicMemory(mem *vm.Memory, addrs []uint64) (*Claim, error) {
	cells := make([]PublicCell, 0, len(addrs))
	for _, a := range addrs {
		v, ok := mem.ReadAt(a)
		if !ok {
			return nil, fmt.Errorf("public cell %d: %w", a, vm.ErrUnsetTraceCell)
		}
		cells = append(cells, PublicCell{Address: a, Value: v})
	}
	c.PublicMemory = cells
	return c, nil
}

// Validate checks if the claim is well-formed
func (c *Claim) Validate() error {
	if len(c.ProgramDigest) != vm.DigestLen {
		return fmt.Errorf("program digest must be exactly %d elements, got %d", vm.DigestLen, len(c.ProgramDigest))
	}
	if c.Steps == 0 {
		return fmt.Errorf("claim covers no steps")
	}
	for i := 1; i < len(c.PublicMemory); i++ {
		if c.PublicMemory[i].Address <= c.PublicMemory[i-1].Address {
			return fmt.Errorf("public memory must be sorted by address without repeats, got %d after %d",
				c.PublicMemory[i].Address, c.PublicMemory[i-1].Address)
		}
	}
	return nil
}

func (c *Claim) pointerFelts() []core.Felt {
	return []core.Felt{
		c.Initial.PC, c.Initial.AP, c.Initial.FP,
		c.Final.PC, c.Final.AP, c.Final.FP,
	}
}

// Hash computes a field-friendly hash of the claim
func (c *Claim) Hash() (field.Element, error) {
	if err := c.Validate(); err != nil {
		return field.Zero, fmt.Errorf("invalid claim: %w", err)
	}

	elements := make([]field.Element, 0, 64)
	elements = append(elements, c.ProgramDigest...)
	elements = append(elements, field.New(uint64(c.Version)), field.New(c.Steps))
	for _, f := range c.pointerFelts() {
		elements = append(elements, vm.FeltElements(f)...)
	}
	for _, cell := range c.PublicMemory {
		elements = append(elements, field.New(cell.Address&0xFFFFFFFF), field.New(cell.Address>>32))
		elements = append(elements, vm.FeltElements(cell.Value)...)
	}

	digest := hash.HashVarlen(elements)
	return digest[0], nil
}

// Commitment runs the claim through a Fiat-Shamir channel and returns the
// resulting state. hashFunc is "sha3" or "sha256".
func (c *Claim) Commitment(hashFunc string) ([]byte, error) {
	if err := c.Validate(); err != nil {
		return nil, fmt.Errorf("invalid claim: %w", err)
	}

	ch := utils.NewChannel(hashFunc)
	for _, e := range c.ProgramDigest {
		ch.SendUint64(e.Value())
	}
	ch.SendUint64(uint64(c.Version))
	ch.SendUint64(c.Steps)
	for _, f := range c.pointerFelts() {
		b := f.Bytes()
		ch.Send(b[:])
	}
	ch.SendUint64(uint64(len(c.PublicMemory)))
	for _, cell := range c.PublicMemory {
		ch.SendUint64(cell.Address)
		b := cell.Value.Bytes()
		ch.Send(b[:])
	}
	return ch.State(), nil
}
