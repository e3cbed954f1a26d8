package vybiumcairovm

import (
	"github.com/rs/zerolog"

	"github.com/vybium/vybium-cairo-vm/internal/vybium-cairo-vm/core"
	"github.com/vybium/vybium-cairo-vm/internal/vybium-cairo-vm/protocols"
	"github.com/vybium/vybium-cairo-vm/internal/vybium-cairo-vm/utils"
	"github.com/vybium/vybium-cairo-vm/internal/vybium-cairo-vm/vm"
)

// VM is the public interface for the Vybium Cairo VM
type VM interface {
	// Execute runs a program to completion and returns its trace
	Execute(program *Program) (*ExecutionTrace, error)

	// GetState returns the state after the last run
	GetState() *VMState
}

// vmImpl is the internal implementation of VM
type vmImpl struct {
	config *Config
	log    zerolog.Logger
	state  *VMState
}

// NewVM creates a VM with the given configuration. A nil config means
// DefaultConfig.
func NewVM(config *Config) (VM, error) {
	return NewVMWithLogger(config, zerolog.Nop())
}

// NewVMWithLogger creates a VM that logs runs to log
func NewVMWithLogger(config *Config, log zerolog.Logger) (VM, error) {
	if config == nil {
		config = DefaultConfig()
	}
	if err := config.Validate(); err != nil {
		return nil, &VMError{Code: ErrInvalidConfig, Message: "invalid configuration", Cause: err}
	}
	return &vmImpl{config: config.Clone(), log: log}, nil
}

func (v *vmImpl) newMemory(words []core.Felt) *vm.Memory {
	if v.config.ProgramBase == vm.DefaultProgramBase {
		return vm.NewMemory(words)
	}
	return vm.NewMemoryAt(v.config.ProgramBase, words)
}

// Execute runs a program on the VM and returns the execution trace
func (v *vmImpl) Execute(program *Program) (*ExecutionTrace, error) {
	if program == nil || len(program.Words) == 0 {
		return nil, &VMError{Code: ErrInvalidProgram, Message: "program has no words"}
	}

	mem := v.newMemory(program.Words)
	publicAddrs := program.publicAddresses()
	for _, a := range publicAddrs {
		if err := mem.WriteAt(a, program.PublicMemory[a]); err != nil {
			return nil, wrapError("failed to preset public memory", err)
		}
	}

	halt, err := vm.HaltPolicyByName(v.config.HaltPolicy, v.config.HaltPC)
	if err != nil {
		return nil, &VMError{Code: ErrInvalidConfig, Message: "invalid halt policy", Cause: err}
	}

	ini := vm.NewPointers(program.Entry, program.AP, program.AP)
	runner := vm.NewRunner(mem, ini).
		WithHaltPolicy(halt).
		WithMaxSteps(v.config.MaxSteps).
		WithLogger(v.log)

	var rec *vm.TraceRecorder
	if v.config.RecordTrace {
		rec = vm.NewTraceRecorder()
		runner.WithRecorder(rec)
	}

	log := v.log.With().Uint64("entry", program.Entry).Uint64("ap", program.AP).Logger()
	log.Debug().Int("words", len(program.Words)).Msg("starting run")

	res, err := runner.Run()
	if err != nil {
		log.Error().Err(err).Msg("run failed")
		return nil, wrapError("VM execution failed", err)
	}
	v.state = &VMState{Registers: res.Final, Steps: res.Steps, Halted: true}

	digest := vm.ProgramDigest(program.Words)
	trace := &ExecutionTrace{
		Steps:         res.Steps,
		Initial:       res.Initial,
		Final:         res.Final,
		Memory:        mem.Snapshot(),
		ProgramDigest: digest[:],
	}

	if rec != nil {
		codeAddrs := make([]uint64, 0, len(program.Words)+len(publicAddrs))
		for i := range program.Words {
			codeAddrs = append(codeAddrs, mem.Base()+uint64(i))
		}
		aet, err := rec.GenerateAET(mem, append(codeAddrs, publicAddrs...))
		if err != nil {
			return nil, wrapError("failed to generate trace", err)
		}
		trace.internalAET = aet

		if e := log.Debug(); e.Enabled() {
			e.Int("padded_height", aet.PaddedHeight).
				Int("log_padded_height", utils.Log2(aet.PaddedHeight)).
				Int("memory_rows", aet.MemoryTable.GetHeight()).
				Int("unaccessed_cells", len(aet.MemoryTable.Gaps())).
				Msg("trace generated")
		}
	}

	claim, err := protocols.NewClaim(trace.ProgramDigest).WithRun(res).WithPublicMemory(mem, publicAddrs)
	if err != nil {
		return nil, wrapError("failed to build claim", err)
	}
	commitment, err := claim.Commitment(v.config.HashFunction)
	if err != nil {
		return nil, wrapError("failed to commit claim", err)
	}
	trace.Claim = claim
	trace.Commitment = commitment

	log.Info().
		Uint64("steps", res.Steps).
		Stringer("final", res.Final).
		Int("cells", mem.Count()).
		Msg("run complete")

	return trace, nil
}

// GetState returns the current VM state
func (v *vmImpl) GetState() *VMState {
	if v.state == nil {
		return &VMState{}
	}
	s := *v.state
	return &s
}
