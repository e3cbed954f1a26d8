package vybiumcairovm

import (
	"sort"

	"github.com/vybium/vybium-crypto/pkg/vybium-crypto/field"

	"github.com/vybium/vybium-cairo-vm/internal/vybium-cairo-vm/core"
	"github.com/vybium/vybium-cairo-vm/internal/vybium-cairo-vm/protocols"
	"github.com/vybium/vybium-cairo-vm/internal/vybium-cairo-vm/utils"
	"github.com/vybium/vybium-cairo-vm/internal/vybium-cairo-vm/vm"
)

// Felt is an element of the Cairo prime field
type Felt = core.Felt

// Pointers holds the pc, ap and fp registers
type Pointers = vm.Pointers

// Claim represents the public statement of a run
type Claim = protocols.Claim

// Config represents the run configuration
type Config = utils.Config

// DefaultConfig returns the configuration for the standard Cairo layout
func DefaultConfig() *Config {
	return utils.DefaultConfig()
}

// LoadConfig reads a YAML run configuration
func LoadConfig(path string) (*Config, error) {
	cfg, err := utils.LoadConfig(path)
	if err != nil {
		return nil, &VMError{Code: ErrInvalidConfig, Message: "failed to load config", Cause: err}
	}
	return cfg, nil
}

// Program is a compiled Cairo program together with its entry registers
type Program struct {
	// Words are loaded contiguously from the configured program base
	Words []Felt

	// Entry is the initial pc
	Entry uint64

	// AP is the initial ap; fp starts equal to it
	AP uint64

	// PublicMemory holds cells set before the run, such as output segment
	// bounds. They are part of the claim.
	PublicMemory map[uint64]Felt
}

// NewProgram creates a program from its words and entry registers
func NewProgram(words []Felt, entry, ap uint64) *Program {
	return &Program{
		Words:        words,
		Entry:        entry,
		AP:           ap,
		PublicMemory: make(map[uint64]Felt),
	}
}

// WithCell presets a public memory cell
func (p *Program) WithCell(addr uint64, value Felt) *Program {
	if p.PublicMemory == nil {
		p.PublicMemory = make(map[uint64]Felt)
	}
	p.PublicMemory[addr] = value
	return p
}

// publicAddresses returns the preset cells in increasing address order
func (p *Program) publicAddresses() []uint64 {
	addrs := make([]uint64, 0, len(p.PublicMemory))
	for a := range p.PublicMemory {
		addrs = append(addrs, a)
	}
	sort.Slice(addrs, func(i, j int) bool { return addrs[i] < addrs[j] })
	return addrs
}

// ExecutionTrace represents the outcome of a run
type ExecutionTrace struct {
	// Steps counts executed steps, the halting one included
	Steps uint64

	// Initial and Final registers of the run
	Initial Pointers
	Final   Pointers

	// Memory is the final memory image
	Memory map[uint64]Felt

	// ProgramDigest attests the executed program
	ProgramDigest []field.Element

	// Claim is the public statement of the run and Commitment its
	// transcript state under the configured hash function
	Claim      *Claim
	Commitment []byte

	// Internal AET, nil unless the configuration records traces
	internalAET *vm.AET
}

// Read returns the final value of a memory cell
func (t *ExecutionTrace) Read(addr uint64) (Felt, bool) {
	v, ok := t.Memory[addr]
	return v, ok
}

// HasTrace reports whether trace tables were recorded
func (t *ExecutionTrace) HasTrace() bool {
	return t.internalAET != nil
}

// PaddedHeight returns the common height of the trace tables, 0 without a trace
func (t *ExecutionTrace) PaddedHeight() int {
	if t.internalAET == nil {
		return 0
	}
	return t.internalAET.GetPaddedHeight()
}

// TraceColumns returns the padded register and memory table columns
func (t *ExecutionTrace) TraceColumns() [][]Felt {
	if t.internalAET == nil {
		return nil
	}
	return t.internalAET.GetTraceColumns()
}

// VMState represents the state of the VM after its last run (read-only)
type VMState struct {
	Registers Pointers
	Steps     uint64
	Halted    bool
}

// NewFelt creates a field element from a uint64
func NewFelt(v uint64) Felt {
	return core.NewFelt(v)
}

// FeltsFromInt64s converts signed integers into field elements; negative
// values map to p - |v|
func FeltsFromInt64s(values []int64) []Felt {
	return core.FeltsFromInt64s(values)
}

// NewPointers creates a register triple from integer addresses
func NewPointers(pc, ap, fp uint64) Pointers {
	return vm.NewPointers(pc, ap, fp)
}
