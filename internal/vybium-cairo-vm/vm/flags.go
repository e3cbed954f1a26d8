package vm

// Bit layout of a Cairo instruction word. The three offsets occupy the low
// 48 bits, the fifteen flags f0..f14 the following bits.
const (
	offDstPos   = 0
	offOp0Pos   = 16
	offOp1Pos   = 32
	flagsPos    = 48
	offsetMask  = 0xFFFF
	offsetBias  = 1 << 15
	NumFlags    = 15
	flagsMask   = 1<<NumFlags - 1
	maxWordBits = 63
)

// Flag indices inside the flag field
const (
	FlagDstReg = iota
	FlagOp0Reg
	FlagOp1Imm
	FlagOp1FP
	FlagOp1AP
	FlagResAdd
	FlagResMul
	FlagPcAbs
	FlagPcRel
	FlagPcJnz
	FlagApAdd
	FlagApOne
	FlagOpcCall
	FlagOpcRet
	FlagOpcAssertEq
)

// Register selects the base register of a dst or op0 address
type Register uint8

const (
	// RegAP selects the allocation pointer
	RegAP Register = 0
	// RegFP selects the frame pointer
	RegFP Register = 1
)

func (r Register) String() string {
	if r == RegAP {
		return "ap"
	}
	return "fp"
}

// Op1Src is the op1_src flag group (f2..f4)
type Op1Src uint8

const (
	// Op1Op0 reads op1 at [op0 + off_op1]
	Op1Op0 Op1Src = 0
	// Op1Imm reads the immediate word following the instruction
	Op1Imm Op1Src = 1
	// Op1FP reads op1 at [fp + off_op1]
	Op1FP Op1Src = 2
	// Op1AP reads op1 at [ap + off_op1]
	Op1AP Op1Src = 4
)

// Valid reports whether at most one bit of the group is set
func (s Op1Src) Valid() bool {
	switch s {
	case Op1Op0, Op1Imm, Op1FP, Op1AP:
		return true
	}
	return false
}

func (s Op1Src) String() string {
	switch s {
	case Op1Op0:
		return "op0"
	case Op1Imm:
		return "imm"
	case Op1FP:
		return "fp"
	case Op1AP:
		return "ap"
	}
	return "invalid"
}

// ResLog is the res_logic flag group (f5..f6)
type ResLog uint8

const (
	// ResOne passes op1 through
	ResOne ResLog = 0
	// ResAdd computes op0 + op1
	ResAdd ResLog = 1
	// ResMul computes op0 * op1
	ResMul ResLog = 2
)

// Valid reports whether at most one bit of the group is set
func (r ResLog) Valid() bool {
	return r == ResOne || r == ResAdd || r == ResMul
}

func (r ResLog) String() string {
	switch r {
	case ResOne:
		return "op1"
	case ResAdd:
		return "add"
	case ResMul:
		return "mul"
	}
	return "invalid"
}

// PcUp is the pc_update flag group (f7..f9)
type PcUp uint8

const (
	// PcSize advances pc by the instruction size
	PcSize PcUp = 0
	// PcAbs jumps to res
	PcAbs PcUp = 1
	// PcRel jumps to pc + res
	PcRel PcUp = 2
	// PcJnz jumps to pc + op1 unless dst is zero
	PcJnz PcUp = 4
)

// Valid reports whether at most one bit of the group is set
func (p PcUp) Valid() bool {
	switch p {
	case PcSize, PcAbs, PcRel, PcJnz:
		return true
	}
	return false
}

func (p PcUp) String() string {
	switch p {
	case PcSize:
		return "size"
	case PcAbs:
		return "abs"
	case PcRel:
		return "rel"
	case PcJnz:
		return "jnz"
	}
	return "invalid"
}

// ApUp is the ap_update flag group (f10..f11)
type ApUp uint8

const (
	// ApZ2 leaves ap unchanged, or adds 2 for a call
	ApZ2 ApUp = 0
	// ApAdd adds res to ap
	ApAdd ApUp = 1
	// ApOne increments ap
	ApOne ApUp = 2
)

// Valid reports whether at most one bit of the group is set
func (a ApUp) Valid() bool {
	return a == ApZ2 || a == ApAdd || a == ApOne
}

func (a ApUp) String() string {
	switch a {
	case ApZ2:
		return "z2"
	case ApAdd:
		return "add"
	case ApOne:
		return "one"
	}
	return "invalid"
}

// Opcode is the opcode flag group (f12..f14)
type Opcode uint8

const (
	// OpcJmpInc is a plain jump or ap increment
	OpcJmpInc Opcode = 0
	// OpcCall pushes fp and the return pc and opens a new frame
	OpcCall Opcode = 1
	// OpcRet restores the caller frame
	OpcRet Opcode = 2
	// OpcAssertEq asserts dst == res
	OpcAssertEq Opcode = 4
)

// Valid reports whether at most one bit of the group is set
func (o Opcode) Valid() bool {
	switch o {
	case OpcJmpInc, OpcCall, OpcRet, OpcAssertEq:
		return true
	}
	return false
}

func (o Opcode) String() string {
	switch o {
	case OpcJmpInc:
		return "jmp_inc"
	case OpcCall:
		return "call"
	case OpcRet:
		return "ret"
	case OpcAssertEq:
		return "assert_eq"
	}
	return "invalid"
}
