package vm

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/vybium/vybium-cairo-vm/internal/vybium-cairo-vm/core"
)

// tempvar x = 10; return ()
var tempvarWords = []int64{0x480680017fff8000, 10, 0x208b7fff7fff7ffe}

// main: x = 10, y = x + x, z = y * y + x, serialize_word(x, y, z).
// serialize_word sits at address 1, main at 5.
var serializeWords = []int64{
	0x400380007ffc7ffd,
	0x482680017ffc8000,
	1,
	0x208b7fff7fff7ffe,
	0x480680017fff8000,
	10,
	0x48307fff7fff8000,
	0x48507fff7fff8000,
	0x48307ffd7fff8000,
	0x480a7ffd7fff8000,
	0x48127ffb7fff8000,
	0x1104800180018000,
	-11,
	0x48127ff87fff8000,
	0x1104800180018000,
	-14,
	0x48127ff67fff8000,
	0x1104800180018000,
	-17,
	0x208b7fff7fff7ffe,
}

// [ap] = 10, ap++; jmp abs 20. Started from fp = ap = 10, both steps read
// op0 from [fp-1] = [9], which nothing ever writes.
var unwrittenOp0Words = []int64{0x480680017fff8000, 10, 0x00868001_7fff7fff, 20}

// tempvarMemory returns the tempvar program with its output bounds set
func tempvarMemory(t *testing.T) *Memory {
	t.Helper()
	mem := NewMemory(core.FeltsFromInt64s(tempvarWords))
	require.NoError(t, mem.WriteAt(4, core.NewFelt(7)))
	require.NoError(t, mem.WriteAt(5, core.NewFelt(7)))
	return mem
}

// serializeMemory returns the serialize program with output segment bounds
// at 21..23
func serializeMemory(t *testing.T) *Memory {
	t.Helper()
	mem := NewMemory(core.FeltsFromInt64s(serializeWords))
	require.NoError(t, mem.WriteAt(21, core.NewFelt(41)))
	require.NoError(t, mem.WriteAt(22, core.NewFelt(44)))
	require.NoError(t, mem.WriteAt(23, core.NewFelt(44)))
	return mem
}

// encode packs offsets and flags into an instruction word
func encode(offDst, offOp0, offOp1 int, flags uint16) uint64 {
	biasedOff := func(off int) uint64 { return uint64(off+offsetBias) & offsetMask }
	return biasedOff(offDst)<<offDstPos |
		biasedOff(offOp0)<<offOp0Pos |
		biasedOff(offOp1)<<offOp1Pos |
		uint64(flags)<<flagsPos
}

func flagBits(flags ...int) uint16 {
	var f uint16
	for _, i := range flags {
		f |= 1 << i
	}
	return f
}

func requireCell(t *testing.T, mem *Memory, addr uint64, want int64) {
	t.Helper()
	v, ok := mem.ReadAt(addr)
	require.True(t, ok, "cell %d is unset", addr)
	expected := core.NewFeltFromInt64(want)
	require.True(t, v.Equal(&expected), "cell %d = %s, want %d", addr, v.String(), want)
}

func requirePointers(t *testing.T, got Pointers, pc, ap, fp uint64) {
	t.Helper()
	want := NewPointers(pc, ap, fp)
	require.True(t, got.Equal(want), "got %s, want %s", got, want)
}
