package vm

import (
	"fmt"

	"github.com/vybium/vybium-cairo-vm/internal/vybium-cairo-vm/core"
)

// Pointers is a snapshot of the three Cairo registers
type Pointers struct {
	// PC is the address of the next instruction to decode
	PC core.Felt
	// AP is the address of the first unused memory cell
	AP core.Felt
	// FP is the base address of the current call frame
	FP core.Felt
}

// NewPointers creates a register triple from integer addresses
func NewPointers(pc, ap, fp uint64) Pointers {
	return Pointers{PC: core.NewFelt(pc), AP: core.NewFelt(ap), FP: core.NewFelt(fp)}
}

// Equal reports whether both triples hold the same registers
func (p Pointers) Equal(o Pointers) bool {
	return p.PC.Equal(&o.PC) && p.AP.Equal(&o.AP) && p.FP.Equal(&o.FP)
}

func (p Pointers) String() string {
	return fmt.Sprintf("(pc=%s, ap=%s, fp=%s)", p.PC.String(), p.AP.String(), p.FP.String())
}

// Variables holds the intermediate values of one step.
// Dst, Op0, Op1 and Res are nil until computed; Res stays nil for an
// assert-equal whose op1 cell is not materialized yet.
type Variables struct {
	Dst     *core.Felt
	Op0     *core.Felt
	Op1     *core.Felt
	Res     *core.Felt
	DstAddr core.Felt
	Op0Addr core.Felt
	Op1Addr core.Felt
	Size    core.Felt
}

// Step executes a single instruction against a memory image
type Step struct {
	mem  *Memory
	curr Pointers
	next *Pointers
	word Word
	vars Variables
}

// NewStep creates a step at the given registers
func NewStep(mem *Memory, ptrs Pointers) *Step {
	return &Step{mem: mem, curr: ptrs}
}

// Current returns the registers the step started from
func (s *Step) Current() Pointers {
	return s.curr
}

// Next returns the registers produced by Execute, if any
func (s *Step) Next() (Pointers, bool) {
	if s.next == nil {
		return Pointers{}, false
	}
	return *s.next, true
}

// Instruction returns the decoded instruction word
func (s *Step) Instruction() Word {
	return s.word
}

// Vars returns the intermediate values computed by Execute
func (s *Step) Vars() Variables {
	return s.vars
}

// Memory returns the memory image the step operates on
func (s *Step) Memory() *Memory {
	return s.mem
}

// Execute runs the step. The order of the phases matters: each one reads
// values resolved by the previous ones.
func (s *Step) Execute() error {
	if err := s.decode(); err != nil {
		return err
	}
	s.setOp0()
	if err := s.setOp1(); err != nil {
		return err
	}
	if err := s.setRes(); err != nil {
		return err
	}
	s.setDst()
	nextPC, err := s.nextPC()
	if err != nil {
		return err
	}
	nextAP, nextFP, err := s.nextApFp()
	if err != nil {
		return err
	}
	s.next = &Pointers{PC: nextPC, AP: nextAP, FP: nextFP}
	return nil
}

func (s *Step) invalid(format string, args ...interface{}) error {
	return &InvalidInstructionError{
		PC:     s.curr.PC,
		Word:   s.word.Uint64(),
		Reason: fmt.Sprintf(format, args...),
	}
}

func (s *Step) decode() error {
	w, ok := s.mem.Read(s.curr.PC)
	if !ok {
		return &InvalidInstructionError{PC: s.curr.PC, Reason: "no instruction at pc"}
	}
	s.word = NewWord(w)
	return nil
}

func (s *Step) register(r Register) core.Felt {
	if r == RegAP {
		return s.curr.AP
	}
	return s.curr.FP
}

func (s *Step) read(addr core.Felt) *core.Felt {
	v, ok := s.mem.Read(addr)
	if !ok {
		return nil
	}
	return &v
}

func (s *Step) setOp0() {
	s.vars.Op0Addr = core.Add(s.register(s.word.Op0Reg()), s.word.OffOp0())
	s.vars.Op0 = s.read(s.vars.Op0Addr)
}

func (s *Step) setOp1() error {
	var base core.Felt
	switch s.word.Op1Src() {
	case Op1Op0:
		if s.vars.Op0 == nil {
			return s.invalid("op1 addressed through op0 but op0 at %s is unset", s.vars.Op0Addr.String())
		}
		base, s.vars.Size = *s.vars.Op0, core.One()
	case Op1Imm:
		// off_op1 is 1 for a well-formed immediate
		base, s.vars.Size = s.curr.PC, core.NewFelt(2)
	case Op1FP:
		base, s.vars.Size = s.curr.FP, core.One()
	case Op1AP:
		base, s.vars.Size = s.curr.AP, core.One()
	default:
		return s.invalid("op1_src has more than one bit set")
	}
	s.vars.Op1Addr = core.Add(base, s.word.OffOp1())
	s.vars.Op1 = s.read(s.vars.Op1Addr)
	return nil
}

func (s *Step) setRes() error {
	switch s.word.PcUp() {
	case PcJnz:
		if s.word.ResLog() != ResOne || s.word.Opcode() != OpcJmpInc || s.word.ApUp() == ApAdd {
			return s.invalid("jnz requires res=op1, opcode=jmp_inc and no ap+=res, got res=%s opcode=%s ap=%s",
				s.word.ResLog(), s.word.Opcode(), s.word.ApUp())
		}
		// res is unused by jnz
		zero := core.Zero()
		s.vars.Res = &zero
	case PcSize, PcAbs, PcRel:
		switch s.word.ResLog() {
		case ResOne:
			s.vars.Res = s.vars.Op1
		case ResAdd:
			if s.vars.Op0 == nil || s.vars.Op1 == nil {
				return s.invalid("res=op0+op1 with an unset operand")
			}
			res := core.Add(*s.vars.Op0, *s.vars.Op1)
			s.vars.Res = &res
		case ResMul:
			if s.vars.Op0 == nil || s.vars.Op1 == nil {
				return s.invalid("res=op0*op1 with an unset operand")
			}
			res := core.Mul(*s.vars.Op0, *s.vars.Op1)
			s.vars.Res = &res
		default:
			return s.invalid("res_logic has more than one bit set")
		}
	default:
		return s.invalid("pc_update has more than one bit set")
	}
	return nil
}

func (s *Step) setDst() {
	s.vars.DstAddr = core.Add(s.register(s.word.DstReg()), s.word.OffDst())
	s.vars.Dst = s.read(s.vars.DstAddr)
}

func (s *Step) nextPC() (core.Felt, error) {
	switch s.word.PcUp() {
	case PcSize:
		return core.Add(s.curr.PC, s.vars.Size), nil
	case PcAbs:
		if s.vars.Res == nil {
			return core.Felt{}, s.invalid("absolute jump with unset res")
		}
		return *s.vars.Res, nil
	case PcRel:
		if s.vars.Res == nil {
			return core.Felt{}, s.invalid("relative jump with unset res")
		}
		return core.Add(s.curr.PC, *s.vars.Res), nil
	case PcJnz:
		if s.vars.Dst != nil && s.vars.Dst.IsZero() {
			return core.Add(s.curr.PC, s.vars.Size), nil
		}
		if s.vars.Op1 == nil {
			return core.Felt{}, s.invalid("taken jnz with unset op1")
		}
		return core.Add(s.curr.PC, *s.vars.Op1), nil
	}
	return core.Felt{}, s.invalid("pc_update has more than one bit set")
}

func (s *Step) nextApFp() (core.Felt, core.Felt, error) {
	switch op := s.word.Opcode(); op {
	case OpcCall:
		if err := s.mem.Write(s.curr.AP, s.curr.FP); err != nil {
			return core.Felt{}, core.Felt{}, fmt.Errorf("call: save fp: %w", err)
		}
		ret := core.Add(s.curr.PC, s.vars.Size)
		if err := s.mem.Write(core.AddUint64(s.curr.AP, 1), ret); err != nil {
			return core.Felt{}, core.Felt{}, fmt.Errorf("call: save return pc: %w", err)
		}
		if s.word.ApUp() != ApZ2 {
			return core.Felt{}, core.Felt{}, s.invalid("call must use ap+=2, got ap=%s", s.word.ApUp())
		}
		frame := core.AddUint64(s.curr.AP, 2)
		return frame, frame, nil

	case OpcJmpInc, OpcRet, OpcAssertEq:
		var nextAP core.Felt
		switch s.word.ApUp() {
		case ApZ2:
			nextAP = s.curr.AP
		case ApAdd:
			if s.vars.Res == nil {
				return core.Felt{}, core.Felt{}, s.invalid("ap+=res with unset res")
			}
			nextAP = core.Add(s.curr.AP, *s.vars.Res)
		case ApOne:
			nextAP = core.AddUint64(s.curr.AP, 1)
		default:
			return core.Felt{}, core.Felt{}, s.invalid("ap_update has more than one bit set")
		}

		switch op {
		case OpcRet:
			if s.vars.Dst == nil {
				return core.Felt{}, core.Felt{}, s.invalid("ret with unset saved fp at %s", s.vars.DstAddr.String())
			}
			return nextAP, *s.vars.Dst, nil
		case OpcAssertEq:
			if err := s.assertEq(); err != nil {
				return core.Felt{}, core.Felt{}, err
			}
		}
		return nextAP, s.curr.FP, nil
	}
	return core.Felt{}, core.Felt{}, s.invalid("opcode has more than one bit set")
}

// assertEq makes dst == res hold with a single write. Res is only absent
// when it passes op1 through and the op1 cell is still unset, in which case
// dst is written into the op1 cell instead.
func (s *Step) assertEq() error {
	if s.vars.Res == nil {
		if s.vars.Dst == nil {
			return s.invalid("assert_eq with both dst and res unset")
		}
		if err := s.mem.Write(s.vars.Op1Addr, *s.vars.Dst); err != nil {
			return fmt.Errorf("assert_eq: %w", err)
		}
		return nil
	}
	if err := s.mem.Write(s.vars.DstAddr, *s.vars.Res); err != nil {
		return fmt.Errorf("assert_eq: %w", err)
	}
	return nil
}
