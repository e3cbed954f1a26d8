package vm

import (
	"fmt"
	"sort"

	"github.com/vybium/vybium-cairo-vm/internal/vybium-cairo-vm/core"
)

// MemoryAccess is one (address, value) pair seen by the run
type MemoryAccess struct {
	Address uint64
	Value   core.Felt
}

// MemoryTableImpl holds every memory access in execution order next to the
// same accesses sorted by address. A prover links the two columns with a
// permutation argument and checks the sorted one for single-valuedness.
type MemoryTableImpl struct {
	addr        []core.Felt
	value       []core.Felt
	sortedAddr  []core.Felt
	sortedValue []core.Felt

	height       int
	paddedHeight int
}

// NewMemoryTable builds the table from accesses in execution order
func NewMemoryTable(accesses []MemoryAccess) *MemoryTableImpl {
	mt := &MemoryTableImpl{
		addr:  make([]core.Felt, 0, len(accesses)),
		value: make([]core.Felt, 0, len(accesses)),
	}
	for _, a := range accesses {
		mt.addr = append(mt.addr, core.NewFelt(a.Address))
		mt.value = append(mt.value, a.Value)
	}

	sorted := append([]MemoryAccess(nil), accesses...)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Address < sorted[j].Address
	})
	mt.sortedAddr = make([]core.Felt, 0, len(sorted))
	mt.sortedValue = make([]core.Felt, 0, len(sorted))
	for _, a := range sorted {
		mt.sortedAddr = append(mt.sortedAddr, core.NewFelt(a.Address))
		mt.sortedValue = append(mt.sortedValue, a.Value)
	}

	mt.height = len(accesses)
	return mt
}

// GetID returns the table's identifier
func (mt *MemoryTableImpl) GetID() TableID {
	return MemoryTable
}

// GetHeight returns the current height
func (mt *MemoryTableImpl) GetHeight() int {
	return mt.height
}

// GetPaddedHeight returns the padded height
func (mt *MemoryTableImpl) GetPaddedHeight() int {
	return mt.paddedHeight
}

// GetMainColumns returns addr, value, sorted addr and sorted value
func (mt *MemoryTableImpl) GetMainColumns() [][]core.Felt {
	return [][]core.Felt{mt.addr, mt.value, mt.sortedAddr, mt.sortedValue}
}

// Gaps returns the addresses missing between the lowest and highest accessed
// address. A continuous memory has no gaps.
func (mt *MemoryTableImpl) Gaps() []uint64 {
	var gaps []uint64
	for i := 1; i < len(mt.sortedAddr) && i < mt.height; i++ {
		prev, _ := core.ToUint64(mt.sortedAddr[i-1])
		cur, _ := core.ToUint64(mt.sortedAddr[i])
		for a := prev + 1; a < cur; a++ {
			gaps = append(gaps, a)
		}
	}
	return gaps
}

// Pad repeats the last row up to targetHeight
func (mt *MemoryTableImpl) Pad(targetHeight int) error {
	if targetHeight < mt.height {
		return fmt.Errorf("target height %d is less than current height %d", targetHeight, mt.height)
	}
	if mt.height == 0 {
		return fmt.Errorf("cannot pad empty table")
	}

	last := mt.height - 1
	for _, col := range []*[]core.Felt{&mt.addr, &mt.value, &mt.sortedAddr, &mt.sortedValue} {
		v := (*col)[last]
		for len(*col) < targetHeight {
			*col = append(*col, v)
		}
	}

	mt.paddedHeight = targetHeight
	return nil
}
