package vm

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vybium/vybium-cairo-vm/internal/vybium-cairo-vm/core"
)

func TestProgramDigest(t *testing.T) {
	a := ProgramDigest(core.FeltsFromInt64s(tempvarWords))
	b := ProgramDigest(core.FeltsFromInt64s(tempvarWords))
	assert.Equal(t, a, b)

	other := ProgramDigest(core.FeltsFromInt64s(serializeWords))
	assert.NotEqual(t, a, other)

	// a trailing zero word changes the length prefix
	padded := ProgramDigest(core.FeltsFromInt64s(append(append([]int64(nil), tempvarWords...), 0)))
	assert.NotEqual(t, a, padded)
}

func TestFeltElements(t *testing.T) {
	els := FeltElements(core.NewFelt(0x1_0000_0002))
	require.Len(t, els, 8)
	assert.Equal(t, uint64(2), els[0].Value())
	assert.Equal(t, uint64(1), els[1].Value())
	for _, e := range els[2:] {
		assert.Zero(t, e.Value())
	}

	// high limbs of a negative felt are populated
	neg := FeltElements(core.NewFeltFromInt64(-1))
	assert.NotZero(t, neg[7].Value())
}

func TestMemoryDigest(t *testing.T) {
	before := MemoryDigest(tempvarMemory(t))

	mem := tempvarMemory(t)
	_, err := Execute(mem, 1, 6)
	require.NoError(t, err)
	after := MemoryDigest(mem)

	assert.NotEqual(t, before, after)
	assert.Equal(t, after, MemoryDigest(mem))
}
