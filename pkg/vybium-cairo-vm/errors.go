package vybiumcairovm

import (
	"errors"
	"fmt"

	"github.com/vybium/vybium-cairo-vm/internal/vybium-cairo-vm/vm"
)

// ErrorCode represents a Vybium Cairo VM error code
type ErrorCode int

const (
	// ErrUnknown represents an unknown error
	ErrUnknown ErrorCode = iota

	// ErrInvalidConfig represents an invalid configuration error
	ErrInvalidConfig

	// ErrInvalidProgram represents a malformed program or program file
	ErrInvalidProgram

	// ErrInvalidInstruction represents an illegal flag combination, or an
	// instruction missing a value it needs
	ErrInvalidInstruction

	// ErrMemoryInconsistency represents a write of a different value into a
	// cell that is already set
	ErrMemoryInconsistency

	// ErrAddressOutOfRange represents an address outside the memory index space
	ErrAddressOutOfRange

	// ErrStepLimit represents a run that hit the configured step ceiling
	ErrStepLimit

	// ErrTraceGeneration represents a failure to build the trace tables
	ErrTraceGeneration

	// ErrVMExecution represents any other execution failure
	ErrVMExecution
)

var codeNames = map[ErrorCode]string{
	ErrUnknown:             "unknown",
	ErrInvalidConfig:       "invalid config",
	ErrInvalidProgram:      "invalid program",
	ErrInvalidInstruction:  "invalid instruction",
	ErrMemoryInconsistency: "memory inconsistency",
	ErrAddressOutOfRange:   "address out of range",
	ErrStepLimit:           "step limit",
	ErrTraceGeneration:     "trace generation",
	ErrVMExecution:         "execution",
}

func (c ErrorCode) String() string {
	if s, ok := codeNames[c]; ok {
		return s
	}
	return fmt.Sprintf("code(%d)", int(c))
}

// VMError represents a Vybium Cairo VM error
type VMError struct {
	Code    ErrorCode
	Message string
	Cause   error
}

// Error returns the error message
func (e *VMError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("vybium-cairo-vm error [%s]: %s (caused by: %v)", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("vybium-cairo-vm error [%s]: %s", e.Code, e.Message)
}

// Unwrap returns the cause of the error
func (e *VMError) Unwrap() error {
	return e.Cause
}

// Is checks if the error matches the target error
func (e *VMError) Is(target error) bool {
	t, ok := target.(*VMError)
	if !ok {
		return false
	}
	return e.Code == t.Code
}

// codeOf classifies an internal error
func codeOf(err error) ErrorCode {
	switch {
	case errors.Is(err, vm.ErrStepLimitExceeded):
		return ErrStepLimit
	case errors.Is(err, vm.ErrMemoryInconsistency):
		return ErrMemoryInconsistency
	case errors.Is(err, vm.ErrInvalidInstruction):
		return ErrInvalidInstruction
	case errors.Is(err, vm.ErrAddressOutOfRange):
		return ErrAddressOutOfRange
	case errors.Is(err, vm.ErrUnsetTraceCell):
		return ErrTraceGeneration
	}
	return ErrVMExecution
}

// wrapError turns an internal error into a *VMError, keeping it as Cause
func wrapError(message string, err error) *VMError {
	var ve *VMError
	if errors.As(err, &ve) {
		return ve
	}
	return &VMError{Code: codeOf(err), Message: message, Cause: err}
}
