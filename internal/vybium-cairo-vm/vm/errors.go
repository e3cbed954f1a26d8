package vm

import (
	"errors"
	"fmt"

	"github.com/vybium/vybium-cairo-vm/internal/vybium-cairo-vm/core"
)

var (
	// ErrInvalidInstruction is returned for any flag combination outside the
	// legal set, or when a required step value is absent
	ErrInvalidInstruction = errors.New("invalid instruction")

	// ErrMemoryInconsistency is returned when a write targets a cell that
	// already holds a different value
	ErrMemoryInconsistency = errors.New("memory inconsistency")

	// ErrAddressOutOfRange is returned when an address does not fit the
	// memory index space
	ErrAddressOutOfRange = errors.New("address out of range")

	// ErrStepLimitExceeded is returned when a run hits its step ceiling
	ErrStepLimitExceeded = errors.New("step limit exceeded")

	// ErrUnsetTraceCell is returned when a public cell of the trace or the
	// claim holds no value
	ErrUnsetTraceCell = errors.New("traced memory cell is unset")
)

// InvalidInstructionError describes why the instruction at PC was rejected
type InvalidInstructionError struct {
	PC     core.Felt
	Word   uint64
	Reason string
}

func (e *InvalidInstructionError) Error() string {
	return fmt.Sprintf("invalid instruction %#x at pc %s: %s", e.Word, e.PC.String(), e.Reason)
}

// Is matches ErrInvalidInstruction
func (e *InvalidInstructionError) Is(target error) bool {
	return target == ErrInvalidInstruction
}

// MemoryInconsistencyError reports a conflicting write
type MemoryInconsistencyError struct {
	Address uint64
	Stored  core.Felt
	Written core.Felt
}

func (e *MemoryInconsistencyError) Error() string {
	return fmt.Sprintf("memory inconsistency at address %d: holds %s, write of %s",
		e.Address, e.Stored.String(), e.Written.String())
}

// Is matches ErrMemoryInconsistency
func (e *MemoryInconsistencyError) Is(target error) bool {
	return target == ErrMemoryInconsistency
}
