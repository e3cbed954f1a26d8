package vm

import (
	"fmt"

	"github.com/rs/zerolog"

	"github.com/vybium/vybium-cairo-vm/internal/vybium-cairo-vm/core"
)

// Result is the outcome of a completed run
type Result struct {
	// Steps counts every executed step, the halting one included
	Steps uint64
	// Initial holds the registers the run started from
	Initial Pointers
	// Final holds the last registers reached by a valid transition, i.e.
	// the registers the halting step started from
	Final Pointers
}

// Runner drives successive steps over one memory image
type Runner struct {
	mem      *Memory
	ini      Pointers
	halt     HaltPolicy
	maxSteps uint64
	recorder *TraceRecorder
	log      zerolog.Logger
}

// NewRunner creates a runner starting at ini. The runner owns mem for the
// duration of Run.
func NewRunner(mem *Memory, ini Pointers) *Runner {
	return &Runner{
		mem:  mem,
		ini:  ini,
		halt: HaltOnUnallocatedPC,
		log:  zerolog.Nop(),
	}
}

// WithHaltPolicy replaces the halting policy
func (r *Runner) WithHaltPolicy(p HaltPolicy) *Runner {
	if p != nil {
		r.halt = p
	}
	return r
}

// WithMaxSteps sets the step ceiling, 0 meaning unlimited
func (r *Runner) WithMaxSteps(n uint64) *Runner {
	r.maxSteps = n
	return r
}

// WithRecorder records every executed step into rec
func (r *Runner) WithRecorder(rec *TraceRecorder) *Runner {
	r.recorder = rec
	return r
}

// WithLogger sets the logger used for per-step tracing
func (r *Runner) WithLogger(l zerolog.Logger) *Runner {
	r.log = l
	return r
}

// Memory returns the memory image of the run
func (r *Runner) Memory() *Memory {
	return r.mem
}

// Run executes steps until the halt policy fires
func (r *Runner) Run() (*Result, error) {
	curr := r.ini
	next := r.ini
	var n uint64

	for end := false; !end; {
		if r.maxSteps > 0 && n >= r.maxSteps {
			return nil, fmt.Errorf("after %d steps at %s: %w", n, next, ErrStepLimitExceeded)
		}

		step := NewStep(r.mem, next)
		curr = step.Current()
		if err := step.Execute(); err != nil {
			return nil, fmt.Errorf("step %d at pc %s: %w", n, curr.PC.String(), err)
		}
		n++

		if w := step.Instruction(); !w.WellFormedWidth() {
			r.log.Warn().
				Uint64("step", n-1).
				Str("pc", curr.PC.String()).
				Str("word", core.Hex(w.Felt())).
				Msg("instruction word wider than 63 bits")
		}

		if r.recorder != nil {
			if err := r.recorder.RecordStep(step); err != nil {
				return nil, fmt.Errorf("failed to record step %d: %w", n-1, err)
			}
		}

		produced, ok := step.Next()
		if !ok {
			break
		}
		next = produced
		end = r.halt(curr, next)

		if e := r.log.Trace(); e.Enabled() {
			e.Uint64("step", n-1).
				Stringer("curr", curr).
				Stringer("next", next).
				Stringer("instr", step.Instruction()).
				Msg("step")
		}
	}

	r.log.Debug().
		Uint64("steps", n).
		Stringer("final", curr).
		Msg("run halted")

	return &Result{Steps: n, Initial: r.ini, Final: curr}, nil
}

// Execute runs mem from pc with ap = fp = ap, the usual entry convention
func Execute(mem *Memory, pc, ap uint64) (*Result, error) {
	return NewRunner(mem, NewPointers(pc, ap, ap)).Run()
}
