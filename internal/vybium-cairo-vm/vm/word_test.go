package vm

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/vybium/vybium-cairo-vm/internal/vybium-cairo-vm/core"
)

func TestWordDecode(t *testing.T) {
	tests := []struct {
		name   string
		word   uint64
		dst    int16
		op0    int16
		op1    int16
		dstReg Register
		op0Reg Register
		op1Src Op1Src
		res    ResLog
		pc     PcUp
		ap     ApUp
		opcode Opcode
	}{
		{
			// [ap] = 10; ap++
			name: "tempvar immediate",
			word: 0x480680017fff8000,
			dst:  0, op0: -1, op1: 1,
			dstReg: RegAP, op0Reg: RegFP, op1Src: Op1Imm,
			res: ResOne, pc: PcSize, ap: ApOne, opcode: OpcAssertEq,
		},
		{
			// ret
			name: "ret",
			word: 0x208b7fff7fff7ffe,
			dst:  -2, op0: -1, op1: -1,
			dstReg: RegFP, op0Reg: RegFP, op1Src: Op1FP,
			res: ResOne, pc: PcAbs, ap: ApZ2, opcode: OpcRet,
		},
		{
			// call rel imm
			name: "call relative",
			word: 0x1104800180018000,
			dst:  0, op0: 1, op1: 1,
			dstReg: RegAP, op0Reg: RegAP, op1Src: Op1Imm,
			res: ResOne, pc: PcRel, ap: ApZ2, opcode: OpcCall,
		},
		{
			// [ap] = [ap-1] * [ap-1]; ap++
			name: "mul",
			word: 0x48507fff7fff8000,
			dst:  0, op0: -1, op1: -1,
			dstReg: RegAP, op0Reg: RegAP, op1Src: Op1AP,
			res: ResMul, pc: PcSize, ap: ApOne, opcode: OpcAssertEq,
		},
		{
			// [fp-3] = [[fp-4]], op1 read through op0
			name: "assert through op0",
			word: 0x400380007ffc7ffd,
			dst:  -3, op0: -4, op1: 0,
			dstReg: RegFP, op0Reg: RegFP, op1Src: Op1Op0,
			res: ResOne, pc: PcSize, ap: ApZ2, opcode: OpcAssertEq,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := NewWordFromUint64(tt.word)
			assert.Equal(t, tt.dst, w.OffDstInt())
			assert.Equal(t, tt.op0, w.OffOp0Int())
			assert.Equal(t, tt.op1, w.OffOp1Int())
			assert.Equal(t, tt.dstReg, w.DstReg())
			assert.Equal(t, tt.op0Reg, w.Op0Reg())
			assert.Equal(t, tt.op1Src, w.Op1Src())
			assert.Equal(t, tt.res, w.ResLog())
			assert.Equal(t, tt.pc, w.PcUp())
			assert.Equal(t, tt.ap, w.ApUp())
			assert.Equal(t, tt.opcode, w.Opcode())
			assert.True(t, w.WellFormedWidth())
			assert.Equal(t, tt.word, w.Uint64())
		})
	}
}

func TestWordOffsetsAsFelts(t *testing.T) {
	w := NewWordFromUint64(0x208b7fff7fff7ffe)
	minusTwo := core.NewFeltFromInt64(-2)
	off := w.OffDst()
	assert.True(t, off.Equal(&minusTwo))

	// raw 0 is the most negative offset, raw 0xffff the most positive
	lo := NewWordFromUint64(0)
	hi := NewWordFromUint64(0xffff)
	assert.Equal(t, int16(-1<<15), lo.OffDstInt())
	assert.Equal(t, int16(1<<15-1), hi.OffDstInt())
}

func TestWordFlags(t *testing.T) {
	w := NewWordFromUint64(0x208b7fff7fff7ffe)
	assert.Equal(t, uint16(0x208b), w.Flags())

	set := map[int]bool{FlagDstReg: true, FlagOp0Reg: true, FlagOp1FP: true, FlagPcAbs: true, FlagOpcRet: true}
	for i := 0; i < NumFlags; i++ {
		want := uint64(0)
		if set[i] {
			want = 1
		}
		assert.Equal(t, want, w.Flag(i), "flag %d", i)
	}
}

func TestWordInvalidGroups(t *testing.T) {
	// both imm and fp for op1
	w := NewWordFromUint64(uint64(1<<FlagOp1Imm|1<<FlagOp1FP) << flagsPos)
	assert.False(t, w.Op1Src().Valid())

	// add and mul
	w = NewWordFromUint64(uint64(1<<FlagResAdd|1<<FlagResMul) << flagsPos)
	assert.False(t, w.ResLog().Valid())

	// call and ret
	w = NewWordFromUint64(uint64(1<<FlagOpcCall|1<<FlagOpcRet) << flagsPos)
	assert.False(t, w.Opcode().Valid())
}

func TestWordWidth(t *testing.T) {
	assert.False(t, NewWordFromUint64(1<<63).WellFormedWidth())
	assert.False(t, NewWord(core.NewFeltFromInt64(-1)).WellFormedWidth())
}
