package vm

import (
	"fmt"

	"github.com/vybium/vybium-cairo-vm/internal/vybium-cairo-vm/core"
)

// Word is a decoded view of one instruction word.
// All accessors are pure bit extractions of the canonical low 64 bits.
type Word struct {
	felt core.Felt
	bits uint64
}

// NewWord wraps a field element as an instruction word
func NewWord(f core.Felt) Word {
	return Word{felt: f, bits: f.Bits()[0]}
}

// NewWordFromUint64 builds an instruction word from its integer encoding
func NewWordFromUint64(v uint64) Word {
	return NewWord(core.NewFelt(v))
}

// Felt returns the word as a field element
func (w Word) Felt() core.Felt {
	return w.felt
}

// Uint64 returns the low 64 bits of the canonical encoding
func (w Word) Uint64() uint64 {
	return w.bits
}

// WellFormedWidth reports whether the word fits in the 63 bits an
// instruction may occupy
func (w Word) WellFormedWidth() bool {
	if _, ok := core.ToUint64(w.felt); !ok {
		return false
	}
	return w.bits>>maxWordBits == 0
}

func (w Word) rawOffset(pos uint) uint64 {
	return (w.bits >> pos) & offsetMask
}

func biased(raw uint64) core.Felt {
	return core.Sub(core.NewFelt(raw), core.NewFelt(offsetBias))
}

// OffDst returns the destination offset as a field element
func (w Word) OffDst() core.Felt {
	return biased(w.rawOffset(offDstPos))
}

// OffOp0 returns the first operand offset as a field element
func (w Word) OffOp0() core.Felt {
	return biased(w.rawOffset(offOp0Pos))
}

// OffOp1 returns the second operand offset as a field element
func (w Word) OffOp1() core.Felt {
	return biased(w.rawOffset(offOp1Pos))
}

// OffDstInt returns the signed destination offset
func (w Word) OffDstInt() int16 {
	return int16(int64(w.rawOffset(offDstPos)) - offsetBias)
}

// OffOp0Int returns the signed first operand offset
func (w Word) OffOp0Int() int16 {
	return int16(int64(w.rawOffset(offOp0Pos)) - offsetBias)
}

// OffOp1Int returns the signed second operand offset
func (w Word) OffOp1Int() int16 {
	return int16(int64(w.rawOffset(offOp1Pos)) - offsetBias)
}

// Flags returns the 15-bit flag field
func (w Word) Flags() uint16 {
	return uint16((w.bits >> flagsPos) & flagsMask)
}

// Flag returns flag fi as 0 or 1
func (w Word) Flag(i int) uint64 {
	return (w.bits >> (flagsPos + uint(i))) & 1
}

func (w Word) group(first, width int) uint8 {
	return uint8((w.bits >> (flagsPos + uint(first))) & (1<<uint(width) - 1))
}

// DstReg returns the base register of the destination address
func (w Word) DstReg() Register {
	return Register(w.group(FlagDstReg, 1))
}

// Op0Reg returns the base register of the first operand address
func (w Word) Op0Reg() Register {
	return Register(w.group(FlagOp0Reg, 1))
}

// Op1Src returns the op1_src flag group
func (w Word) Op1Src() Op1Src {
	return Op1Src(w.group(FlagOp1Imm, 3))
}

// ResLog returns the res_logic flag group
func (w Word) ResLog() ResLog {
	return ResLog(w.group(FlagResAdd, 2))
}

// PcUp returns the pc_update flag group
func (w Word) PcUp() PcUp {
	return PcUp(w.group(FlagPcAbs, 3))
}

// ApUp returns the ap_update flag group
func (w Word) ApUp() ApUp {
	return ApUp(w.group(FlagApAdd, 2))
}

// Opcode returns the opcode flag group
func (w Word) Opcode() Opcode {
	return Opcode(w.group(FlagOpcCall, 3))
}

// String renders the word with its decoded fields
func (w Word) String() string {
	return fmt.Sprintf("%#016x{dst=%s%+d op0=%s%+d op1=%s%+d res=%s pc=%s ap=%s opcode=%s}",
		w.bits,
		w.DstReg(), w.OffDstInt(),
		w.Op0Reg(), w.OffOp0Int(),
		w.Op1Src(), w.OffOp1Int(),
		w.ResLog(), w.PcUp(), w.ApUp(), w.Opcode())
}
