package vm

import (
	"fmt"

	"github.com/vybium/vybium-cairo-vm/internal/vybium-cairo-vm/core"
)

// stepRecord keeps what a step saw; operand values are resolved once the
// run is over because a cell may be written after the step that reads it
type stepRecord struct {
	curr Pointers
	word Word
	vars Variables
}

// TraceRecorder collects executed steps and turns them into an AET
type TraceRecorder struct {
	steps []stepRecord
}

// NewTraceRecorder creates an empty recorder
func NewTraceRecorder() *TraceRecorder {
	return &TraceRecorder{steps: make([]stepRecord, 0, 64)}
}

// RecordStep records an executed step
func (tr *TraceRecorder) RecordStep(step *Step) error {
	if step == nil {
		return fmt.Errorf("step cannot be nil")
	}
	if _, ok := step.Next(); !ok {
		return fmt.Errorf("step at %s was not executed", step.Current())
	}
	tr.steps = append(tr.steps, stepRecord{
		curr: step.Current(),
		word: step.Instruction(),
		vars: step.Vars(),
	})
	return nil
}

// Len returns the number of recorded steps
func (tr *TraceRecorder) Len() int {
	return len(tr.steps)
}

// Registers returns the registers every recorded step started from
func (tr *TraceRecorder) Registers() []Pointers {
	out := make([]Pointers, len(tr.steps))
	for i, s := range tr.steps {
		out[i] = s.curr
	}
	return out
}

// GenerateAET resolves every recorded access against the final memory image
// and builds the padded tables. An operand cell that is still unset (or not
// addressable) was never needed by its instruction: its register columns
// hold zero with the matching set flag cleared, and it is left out of the
// memory table. publicAddrs lists cells the verifier knows (program words
// and public inputs); they are appended to the memory table and must be set.
func (tr *TraceRecorder) GenerateAET(mem *Memory, publicAddrs []uint64) (*AET, error) {
	if len(tr.steps) == 0 {
		return nil, fmt.Errorf("no steps recorded")
	}

	registers := NewRegisterTable()
	accesses := make([]MemoryAccess, 0, 4*len(tr.steps)+len(publicAddrs))

	for i, s := range tr.steps {
		row := &RegisterRow{
			Clock:   core.NewFelt(uint64(i)),
			PC:      s.curr.PC,
			AP:      s.curr.AP,
			FP:      s.curr.FP,
			Word:    s.word,
			DstAddr: s.vars.DstAddr,
			Op0Addr: s.vars.Op0Addr,
			Op1Addr: s.vars.Op1Addr,
		}

		pcAddr, ok := core.ToUint64(s.curr.PC)
		if !ok {
			return nil, fmt.Errorf("step %d pc %s: %w", i, core.Hex(s.curr.PC), ErrAddressOutOfRange)
		}
		accesses = append(accesses, MemoryAccess{Address: pcAddr, Value: s.word.Felt()})

		for _, op := range []struct {
			addr  core.Felt
			value *core.Felt
			set   *bool
		}{
			{s.vars.DstAddr, &row.Dst, &row.DstSet},
			{s.vars.Op0Addr, &row.Op0, &row.Op0Set},
			{s.vars.Op1Addr, &row.Op1, &row.Op1Set},
		} {
			a, ok := core.ToUint64(op.addr)
			if !ok {
				continue
			}
			v, ok := mem.ReadAt(a)
			if !ok {
				continue
			}
			*op.value, *op.set = v, true
			accesses = append(accesses, MemoryAccess{Address: a, Value: v})
		}

		if s.vars.Res != nil {
			row.Res = *s.vars.Res
		} else {
			row.Res = row.Op1
		}

		if err := registers.AddRow(row); err != nil {
			return nil, fmt.Errorf("failed to add row %d: %w", i, err)
		}
	}

	for _, a := range publicAddrs {
		v, ok := mem.ReadAt(a)
		if !ok {
			return nil, fmt.Errorf("public cell %d: %w", a, ErrUnsetTraceCell)
		}
		accesses = append(accesses, MemoryAccess{Address: a, Value: v})
	}

	aet := NewAET(registers, NewMemoryTable(accesses))
	aet.ProgramDigest = ProgramDigest(mem.Program())
	if err := aet.Pad(); err != nil {
		return nil, fmt.Errorf("failed to pad AET: %w", err)
	}
	return aet, nil
}
