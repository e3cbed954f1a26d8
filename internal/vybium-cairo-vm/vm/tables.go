package vm

import (
	"github.com/vybium/vybium-cairo-vm/internal/vybium-cairo-vm/core"
)

// TableID identifies each table of the execution trace
type TableID int

const (
	// RegisterTable records the registers and decoded instruction of every step
	RegisterTable TableID = iota

	// MemoryTable records every memory access for the consistency argument
	MemoryTable
)

// String returns the name of the table
func (id TableID) String() string {
	switch id {
	case RegisterTable:
		return "Register"
	case MemoryTable:
		return "Memory"
	default:
		return "Unknown"
	}
}

// ExecutionTable is the interface both trace tables implement
type ExecutionTable interface {
	// GetID returns the table's unique identifier
	GetID() TableID

	// GetHeight returns the number of rows before padding
	GetHeight() int

	// GetPaddedHeight returns the height after padding
	GetPaddedHeight() int

	// GetMainColumns returns the table columns
	GetMainColumns() [][]core.Felt

	// Pad extends the table to the target height with padding rows
	Pad(targetHeight int) error
}
