package vm

import (
	"fmt"

	"github.com/vybium/vybium-cairo-vm/internal/vybium-cairo-vm/core"
)

// RegisterRow is one executed step with every operand resolved against the
// final memory image
type RegisterRow struct {
	Clock   core.Felt
	PC      core.Felt
	AP      core.Felt
	FP      core.Felt
	Word    Word
	DstAddr core.Felt
	Dst     core.Felt
	Op0Addr core.Felt
	Op0     core.Felt
	Op1Addr core.Felt
	Op1     core.Felt
	Res     core.Felt

	// DstSet, Op0Set and Op1Set report whether the operand cell held a
	// value by the end of the run
	DstSet bool
	Op0Set bool
	Op1Set bool
}

func bit(b bool) core.Felt {
	if b {
		return core.One()
	}
	return core.Zero()
}

// RegisterTableImpl is the main execution trace: one row per step
type RegisterTableImpl struct {
	clk, pc, ap, fp           []core.Felt
	offDst, offOp0, offOp1    []core.Felt
	flags                     [NumFlags][]core.Felt
	dstAddr, op0Addr, op1Addr []core.Felt
	dst, op0, op1, res        []core.Felt
	dstSet, op0Set, op1Set    []core.Felt

	height       int
	paddedHeight int
}

// NewRegisterTable creates an empty register table
func NewRegisterTable() *RegisterTableImpl {
	return &RegisterTableImpl{}
}

// GetID returns the table's identifier
func (rt *RegisterTableImpl) GetID() TableID {
	return RegisterTable
}

// GetHeight returns the current height
func (rt *RegisterTableImpl) GetHeight() int {
	return rt.height
}

// GetPaddedHeight returns the padded height
func (rt *RegisterTableImpl) GetPaddedHeight() int {
	return rt.paddedHeight
}

func (rt *RegisterTableImpl) columns() []*[]core.Felt {
	cols := []*[]core.Felt{
		&rt.clk, &rt.pc, &rt.ap, &rt.fp,
		&rt.offDst, &rt.offOp0, &rt.offOp1,
	}
	for i := range rt.flags {
		cols = append(cols, &rt.flags[i])
	}
	return append(cols,
		&rt.dstAddr, &rt.dst,
		&rt.op0Addr, &rt.op0,
		&rt.op1Addr, &rt.op1,
		&rt.res,
		&rt.dstSet, &rt.op0Set, &rt.op1Set,
	)
}

// GetMainColumns returns clk, pc, ap, fp, the three offsets, f0..f14, then
// dst_addr, dst, op0_addr, op0, op1_addr, op1, res and the three operand
// set flags
func (rt *RegisterTableImpl) GetMainColumns() [][]core.Felt {
	ptrs := rt.columns()
	cols := make([][]core.Felt, len(ptrs))
	for i, p := range ptrs {
		cols[i] = *p
	}
	return cols
}

// AddRow appends a step to the table
func (rt *RegisterTableImpl) AddRow(row *RegisterRow) error {
	if row == nil {
		return fmt.Errorf("register row cannot be nil")
	}

	rt.clk = append(rt.clk, row.Clock)
	rt.pc = append(rt.pc, row.PC)
	rt.ap = append(rt.ap, row.AP)
	rt.fp = append(rt.fp, row.FP)
	rt.offDst = append(rt.offDst, row.Word.OffDst())
	rt.offOp0 = append(rt.offOp0, row.Word.OffOp0())
	rt.offOp1 = append(rt.offOp1, row.Word.OffOp1())
	for i := range rt.flags {
		rt.flags[i] = append(rt.flags[i], core.NewFelt(row.Word.Flag(i)))
	}
	rt.dstAddr = append(rt.dstAddr, row.DstAddr)
	rt.dst = append(rt.dst, row.Dst)
	rt.op0Addr = append(rt.op0Addr, row.Op0Addr)
	rt.op0 = append(rt.op0, row.Op0)
	rt.op1Addr = append(rt.op1Addr, row.Op1Addr)
	rt.op1 = append(rt.op1, row.Op1)
	rt.res = append(rt.res, row.Res)
	rt.dstSet = append(rt.dstSet, bit(row.DstSet))
	rt.op0Set = append(rt.op0Set, bit(row.Op0Set))
	rt.op1Set = append(rt.op1Set, bit(row.Op1Set))

	rt.height++
	return nil
}

// Pad repeats the last row up to targetHeight
func (rt *RegisterTableImpl) Pad(targetHeight int) error {
	if targetHeight < rt.height {
		return fmt.Errorf("target height %d is less than current height %d", targetHeight, rt.height)
	}
	if rt.height == 0 {
		return fmt.Errorf("cannot pad empty table")
	}

	last := rt.height - 1
	for _, col := range rt.columns() {
		v := (*col)[last]
		for len(*col) < targetHeight {
			*col = append(*col, v)
		}
	}

	rt.paddedHeight = targetHeight
	return nil
}
