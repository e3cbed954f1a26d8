package vm

import (
	"fmt"

	"github.com/vybium/vybium-crypto/pkg/vybium-crypto/field"

	"github.com/vybium/vybium-cairo-vm/internal/vybium-cairo-vm/core"
	"github.com/vybium/vybium-cairo-vm/internal/vybium-cairo-vm/utils"
)

// AET (Algebraic Execution Trace) is the witness a prover arithmetizes:
// the register trace, the memory accesses, and the program attestation.
type AET struct {
	RegisterTable *RegisterTableImpl
	MemoryTable   *MemoryTableImpl

	// ProgramDigest is the Poseidon digest of the loaded program words
	ProgramDigest [DigestLen]field.Element

	// Metadata
	Height       int
	PaddedHeight int
}

// NewAET bundles the two tables
func NewAET(registers *RegisterTableImpl, memory *MemoryTableImpl) *AET {
	return &AET{
		RegisterTable: registers,
		MemoryTable:   memory,
	}
}

// Pad pads both tables to the same power of two height
func (aet *AET) Pad() error {
	maxHeight := aet.RegisterTable.GetHeight()
	if h := aet.MemoryTable.GetHeight(); h > maxHeight {
		maxHeight = h
	}

	paddedHeight := utils.NextPowerOfTwo(maxHeight)

	if err := aet.RegisterTable.Pad(paddedHeight); err != nil {
		return fmt.Errorf("failed to pad register table: %w", err)
	}
	if err := aet.MemoryTable.Pad(paddedHeight); err != nil {
		return fmt.Errorf("failed to pad memory table: %w", err)
	}

	aet.Height = maxHeight
	aet.PaddedHeight = paddedHeight
	return nil
}

// GetTables returns every table of the trace
func (aet *AET) GetTables() []ExecutionTable {
	return []ExecutionTable{aet.RegisterTable, aet.MemoryTable}
}

// GetPaddedHeight returns the common padded height
func (aet *AET) GetPaddedHeight() int {
	return aet.PaddedHeight
}

// GetTraceColumns returns the columns of all tables, register table first
func (aet *AET) GetTraceColumns() [][]core.Felt {
	var cols [][]core.Felt
	for _, t := range aet.GetTables() {
		cols = append(cols, t.GetMainColumns()...)
	}
	return cols
}
