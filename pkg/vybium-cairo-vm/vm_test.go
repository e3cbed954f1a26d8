package vybiumcairovm

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// tempvar x = 10; return ()
func tempvarProgram() *Program {
	words := FeltsFromInt64s([]int64{0x480680017fff8000, 10, 0x208b7fff7fff7ffe})
	return NewProgram(words, 1, 6).WithCell(4, NewFelt(7)).WithCell(5, NewFelt(7))
}

// x = 10, y = x + x, z = y * y + x, each serialized to the output segment
func serializeProgram() *Program {
	words := FeltsFromInt64s([]int64{
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
	})
	return NewProgram(words, 5, 24).
		WithCell(21, NewFelt(41)).
		WithCell(22, NewFelt(44)).
		WithCell(23, NewFelt(44))
}

func requireCell(t *testing.T, trace *ExecutionTrace, addr, want uint64) {
	t.Helper()
	v, ok := trace.Read(addr)
	require.True(t, ok, "cell %d unset", addr)
	expected := NewFelt(want)
	assert.True(t, v.Equal(&expected), "cell %d = %s, want %d", addr, v.String(), want)
}

func TestNewVM(t *testing.T) {
	t.Run("nil config uses defaults", func(t *testing.T) {
		machine, err := NewVM(nil)
		require.NoError(t, err)
		assert.Equal(t, &VMState{}, machine.GetState())
	})

	t.Run("invalid config", func(t *testing.T) {
		_, err := NewVM(DefaultConfig().WithHashFunction("md5"))
		require.Error(t, err)
		assert.True(t, errors.Is(err, &VMError{Code: ErrInvalidConfig}))
	})
}

func TestExecuteTempvar(t *testing.T) {
	machine, err := NewVM(DefaultConfig())
	require.NoError(t, err)

	trace, err := machine.Execute(tempvarProgram())
	require.NoError(t, err)

	assert.Equal(t, uint64(2), trace.Steps)
	assert.True(t, trace.Final.Equal(NewPointers(3, 7, 6)), "final = %s", trace.Final)
	requireCell(t, trace, 6, 10)

	state := machine.GetState()
	assert.True(t, state.Halted)
	assert.Equal(t, uint64(2), state.Steps)

	require.True(t, trace.HasTrace())
	assert.Equal(t, 16, trace.PaddedHeight())
	assert.Len(t, trace.ProgramDigest, 5)
	require.NotNil(t, trace.Claim)
	assert.Len(t, trace.Claim.PublicMemory, 2)
	assert.NotEmpty(t, trace.Commitment)
}

func TestExecuteSerialize(t *testing.T) {
	machine, err := NewVM(DefaultConfig())
	require.NoError(t, err)

	trace, err := machine.Execute(serializeProgram())
	require.NoError(t, err)

	assert.Equal(t, uint64(21), trace.Steps)
	assert.True(t, trace.Final.Equal(NewPointers(20, 41, 24)), "final = %s", trace.Final)

	// x, y, z
	requireCell(t, trace, 24, 10)
	requireCell(t, trace, 25, 20)
	requireCell(t, trace, 26, 400)
	// output segment
	requireCell(t, trace, 41, 10)
	requireCell(t, trace, 42, 20)
	requireCell(t, trace, 43, 410)

	assert.Equal(t, 128, trace.PaddedHeight())
}

func TestExecuteUnwrittenOperand(t *testing.T) {
	// [ap] = 10, ap++; jmp abs 20. Both steps read op0 from [fp-1] = [9],
	// which is never written.
	words := FeltsFromInt64s([]int64{0x480680017fff8000, 10, 0x008680017fff7fff, 20})

	var buf bytes.Buffer
	machine, err := NewVMWithLogger(nil, zerolog.New(&buf).Level(zerolog.DebugLevel))
	require.NoError(t, err)

	trace, err := machine.Execute(NewProgram(words, 1, 10))
	require.NoError(t, err)

	assert.Equal(t, uint64(2), trace.Steps)
	assert.True(t, trace.Final.Equal(NewPointers(3, 11, 10)), "final = %s", trace.Final)
	requireCell(t, trace, 10, 10)
	_, ok := trace.Read(9)
	assert.False(t, ok)

	// six step accesses and four program words
	require.True(t, trace.HasTrace())
	assert.Equal(t, 16, trace.PaddedHeight())
	assert.Contains(t, buf.String(), `"log_padded_height":4`)
	assert.Contains(t, buf.String(), `"unaccessed_cells":5`)
}

func TestExecuteWithoutTrace(t *testing.T) {
	machine, err := NewVM(DefaultConfig().WithRecordTrace(false))
	require.NoError(t, err)

	trace, err := machine.Execute(tempvarProgram())
	require.NoError(t, err)
	assert.False(t, trace.HasTrace())
	assert.Zero(t, trace.PaddedHeight())
	assert.Nil(t, trace.TraceColumns())
	assert.NotNil(t, trace.Claim)
}

func TestExecuteDeterministic(t *testing.T) {
	run := func() *ExecutionTrace {
		machine, err := NewVM(DefaultConfig())
		require.NoError(t, err)
		trace, err := machine.Execute(serializeProgram())
		require.NoError(t, err)
		return trace
	}
	a, b := run(), run()
	assert.Equal(t, a.Commitment, b.Commitment)
	assert.Equal(t, a.ProgramDigest, b.ProgramDigest)
	assert.Equal(t, a.Memory, b.Memory)
}

func TestExecuteErrors(t *testing.T) {
	tests := []struct {
		name    string
		config  *Config
		program *Program
		code    ErrorCode
	}{
		{
			name:    "empty program",
			config:  DefaultConfig(),
			program: NewProgram(nil, 1, 6),
			code:    ErrInvalidProgram,
		},
		{
			name:    "public cell overwrites program",
			config:  DefaultConfig(),
			program: tempvarProgram().WithCell(2, NewFelt(11)),
			code:    ErrMemoryInconsistency,
		},
		{
			name:    "step limit",
			config:  DefaultConfig().WithMaxSteps(5),
			program: serializeProgram(),
			code:    ErrStepLimit,
		},
		{
			name:    "no instruction at pc",
			config:  DefaultConfig(),
			program: NewProgram(FeltsFromInt64s([]int64{0x480680017fff8000, 10}), 9, 12),
			code:    ErrInvalidInstruction,
		},
		{
			// ret reads the saved fp at [fp-2], which is unset
			name:    "ret without frame",
			config:  DefaultConfig(),
			program: NewProgram(FeltsFromInt64s([]int64{0x208b7fff7fff7ffe}), 1, 10),
			code:    ErrInvalidInstruction,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			machine, err := NewVM(tt.config)
			require.NoError(t, err)

			_, err = machine.Execute(tt.program)
			require.Error(t, err)

			var ve *VMError
			require.ErrorAs(t, err, &ve)
			assert.Equal(t, tt.code, ve.Code, "error: %v", err)
		})
	}
}

func TestExecuteBatch(t *testing.T) {
	programs := []*Program{tempvarProgram(), serializeProgram(), tempvarProgram()}

	traces, err := ExecuteBatch(context.Background(), DefaultConfig(), programs, 2)
	require.NoError(t, err)
	require.Len(t, traces, 3)

	assert.Equal(t, uint64(2), traces[0].Steps)
	assert.Equal(t, uint64(21), traces[1].Steps)
	assert.Equal(t, traces[0].Commitment, traces[2].Commitment)
}

func TestExecuteBatchFailure(t *testing.T) {
	programs := []*Program{tempvarProgram(), NewProgram(nil, 1, 1)}

	_, err := ExecuteBatch(context.Background(), DefaultConfig(), programs, 0)
	require.Error(t, err)
	assert.True(t, errors.Is(err, &VMError{Code: ErrInvalidProgram}))
}

func TestExecuteBatchCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := ExecuteBatch(ctx, DefaultConfig(), []*Program{tempvarProgram()}, 1)
	require.ErrorIs(t, err, context.Canceled)
}

func TestReadProgram(t *testing.T) {
	src := `{"data": ["0x480680017fff8000", "10", "0x208b7fff7fff7ffe"], "entry": 1, "ap": 6, "memory": {"4": "7", "5": "0x7"}}`

	p, err := ReadProgram(strings.NewReader(src))
	require.NoError(t, err)
	assert.Len(t, p.Words, 3)
	assert.Equal(t, uint64(1), p.Entry)
	assert.Equal(t, uint64(6), p.AP)
	assert.Equal(t, []uint64{4, 5}, p.publicAddresses())

	machine, err := NewVM(nil)
	require.NoError(t, err)
	trace, err := machine.Execute(p)
	require.NoError(t, err)
	assert.Equal(t, uint64(2), trace.Steps)
}

func TestReadProgramErrors(t *testing.T) {
	for _, src := range []string{
		`not json`,
		`{"data": []}`,
		`{"data": ["0xzz"]}`,
		`{"data": ["1"], "memory": {"3": "seven"}}`,
	} {
		_, err := ReadProgram(strings.NewReader(src))
		require.Error(t, err, src)
		assert.True(t, errors.Is(err, &VMError{Code: ErrInvalidProgram}), src)
	}
}
