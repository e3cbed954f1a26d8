package vm

import (
	"fmt"
	"slices"
	"strings"

	"github.com/vybium/vybium-cairo-vm/internal/vybium-cairo-vm/core"
)

// DefaultProgramBase is the address of the first program word in the Cairo
// layout. Address 0 holds the zero cell.
const DefaultProgramBase = 1

// Memory is the write-once memory image of one run.
// Cells are allocated lazily in any order; an address never written is unset.
type Memory struct {
	cells   map[uint64]core.Felt
	base    uint64
	codeLen int
	size    uint64 // highest written address + 1
}

// NewMemory creates a memory image in the Cairo layout: the zero cell at
// address 0 and the program words starting at address 1
func NewMemory(program []core.Felt) *Memory {
	m := newMemory(DefaultProgramBase, program)
	m.cells[0] = core.Zero()
	if m.size == 0 {
		m.size = 1
	}
	return m
}

// NewMemoryAt creates a memory image with the program loaded at base
func NewMemoryAt(base uint64, program []core.Felt) *Memory {
	return newMemory(base, program)
}

func newMemory(base uint64, program []core.Felt) *Memory {
	m := &Memory{
		cells:   make(map[uint64]core.Felt, len(program)+1),
		base:    base,
		codeLen: len(program),
	}
	for i, w := range program {
		m.cells[base+uint64(i)] = w
	}
	if len(program) > 0 {
		m.size = base + uint64(len(program))
	}
	return m
}

// Base returns the address of the first program word
func (m *Memory) Base() uint64 {
	return m.base
}

// CodeLen returns the number of program words loaded at construction
func (m *Memory) CodeLen() int {
	return m.codeLen
}

// Len returns the highest set address plus one
func (m *Memory) Len() uint64 {
	return m.size
}

// Count returns the number of set cells
func (m *Memory) Count() int {
	return len(m.cells)
}

// Read returns the value at addr, or false if the cell is unset.
// Reading never allocates.
func (m *Memory) Read(addr core.Felt) (core.Felt, bool) {
	a, ok := core.ToUint64(addr)
	if !ok {
		return core.Felt{}, false
	}
	return m.ReadAt(a)
}

// ReadAt is Read with an integer address
func (m *Memory) ReadAt(addr uint64) (core.Felt, bool) {
	v, ok := m.cells[addr]
	return v, ok
}

// Write stores value at addr. Writing the value a cell already holds is a
// no-op; writing a different one fails with ErrMemoryInconsistency.
func (m *Memory) Write(addr, value core.Felt) error {
	a, ok := core.ToUint64(addr)
	if !ok {
		return fmt.Errorf("write to %s: %w", core.Hex(addr), ErrAddressOutOfRange)
	}
	return m.WriteAt(a, value)
}

// WriteAt is Write with an integer address
func (m *Memory) WriteAt(addr uint64, value core.Felt) error {
	if stored, ok := m.cells[addr]; ok {
		if !stored.Equal(&value) {
			return &MemoryInconsistencyError{Address: addr, Stored: stored, Written: value}
		}
		return nil
	}
	m.cells[addr] = value
	if addr >= m.size {
		m.size = addr + 1
	}
	return nil
}

// Addresses returns every set address in increasing order
func (m *Memory) Addresses() []uint64 {
	addrs := make([]uint64, 0, len(m.cells))
	for a := range m.cells {
		addrs = append(addrs, a)
	}
	slices.Sort(addrs)
	return addrs
}

// Snapshot returns a copy of the set cells
func (m *Memory) Snapshot() map[uint64]core.Felt {
	out := make(map[uint64]core.Felt, len(m.cells))
	for a, v := range m.cells {
		out[a] = v
	}
	return out
}

// Program returns the words loaded at construction
func (m *Memory) Program() []core.Felt {
	out := make([]core.Felt, m.codeLen)
	for i := range out {
		out[i] = m.cells[m.base+uint64(i)]
	}
	return out
}

// String dumps the set cells, one per line
func (m *Memory) String() string {
	var sb strings.Builder
	for _, a := range m.Addresses() {
		v := m.cells[a]
		fmt.Fprintf(&sb, "%d: %s\n", a, v.String())
	}
	return sb.String()
}
