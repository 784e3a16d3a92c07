// Package mips defines the MIPS O32 assembly representation this compiler
// emits. It is the final stage of the pipeline: the code generator builds
// a Program out of these instructions, and the Printer turns that Program
// into SPIM/GNU-as-compatible text.
package mips

// Reg names a MIPS general-purpose register by its conventional O32 name,
// not by number: the code generator never needs to do register arithmetic,
// only ever refers to a fixed register by role.
type Reg string

const (
	Zero Reg = "zero"
	V0   Reg = "v0"
	V1   Reg = "v1"
	A0   Reg = "a0"
	A1   Reg = "a1"
	A2   Reg = "a2"
	A3   Reg = "a3"
	T0   Reg = "t0"
	T1   Reg = "t1"
	T2   Reg = "t2"
	T3   Reg = "t3"
	T4   Reg = "t4"
	T5   Reg = "t5"
	T6   Reg = "t6"
	T7   Reg = "t7"
	T8   Reg = "t8"
	T9   Reg = "t9"
	S0   Reg = "s0"
	Sp   Reg = "sp"
	Fp   Reg = "fp"
	Ra   Reg = "ra"
)

// Label names a branch or data target.
type Label string

// Instruction is the interface every MIPS instruction satisfies. A type
// switch in Printer is the only place that inspects concrete instruction
// types; everything upstream only ever appends to a Function's Code.
type Instruction interface {
	implInstruction()
}

// --- Arithmetic and logic ---

// Add performs Rd = Rs + Rt.
type Add struct{ Rd, Rs, Rt Reg }

// Sub performs Rd = Rs - Rt.
type Sub struct{ Rd, Rs, Rt Reg }

// Mul performs Rd = Rs * Rt (pseudo-op, truncated to one word).
type Mul struct{ Rd, Rs, Rt Reg }

// Div starts a division, leaving the quotient in $lo and the remainder in
// $hi; a Mflo (or Mfhi) must follow to read out a result.
type Div struct{ Rs, Rt Reg }

// Mflo moves the quotient of the last Div into Rd.
type Mflo struct{ Rd Reg }

// Mfhi moves the remainder of the last Div into Rd.
type Mfhi struct{ Rd Reg }

// Neg performs Rd = -Rs.
type Neg struct{ Rd, Rs Reg }

// Addi performs Rd = Rs + Imm.
type Addi struct {
	Rd, Rs Reg
	Imm    int32
}

// Sll performs Rd = Rs << Shift.
type Sll struct {
	Rd, Rs Reg
	Shift  uint
}

// --- Comparisons, reduced to 0/1 in a register ---

// Slt performs Rd = (Rs < Rt) ? 1 : 0, signed.
type Slt struct{ Rd, Rs, Rt Reg }

// Sle performs Rd = (Rs <= Rt) ? 1 : 0, signed (pseudo-op).
type Sle struct{ Rd, Rs, Rt Reg }

// Sgt performs Rd = (Rs > Rt) ? 1 : 0, signed (pseudo-op).
type Sgt struct{ Rd, Rs, Rt Reg }

// Sge performs Rd = (Rs >= Rt) ? 1 : 0, signed (pseudo-op).
type Sge struct{ Rd, Rs, Rt Reg }

// Seq performs Rd = (Rs == Rt) ? 1 : 0 (pseudo-op).
type Seq struct{ Rd, Rs, Rt Reg }

// Sne performs Rd = (Rs != Rt) ? 1 : 0 (pseudo-op).
type Sne struct{ Rd, Rs, Rt Reg }

// --- Data movement ---

// Li loads a 32-bit immediate into Rd (pseudo-op, expands to lui/ori as
// needed by the assembler).
type Li struct {
	Rd  Reg
	Imm int32
}

// Move copies Rs into Rd (pseudo-op for "or Rd, Rs, $zero").
type Move struct{ Rd, Rs Reg }

// La loads the address of a label into Rd (pseudo-op).
type La struct {
	Rd     Reg
	Target Label
}

// --- Memory ---

// Lw loads the word at Ofs(Rs) into Rd.
type Lw struct {
	Rd, Rs Reg
	Ofs    int32
}

// Sw stores Rd at Ofs(Rs).
type Sw struct {
	Rd, Rs Reg
	Ofs    int32
}

// LwGlobal loads the word at Target, a global symbol with no base
// register, into Rd.
type LwGlobal struct {
	Rd     Reg
	Target Label
}

// SwGlobal stores Rd at Target, a global symbol with no base register.
type SwGlobal struct {
	Rd     Reg
	Target Label
}

// --- Control flow ---

// J jumps unconditionally to Target.
type J struct{ Target Label }

// Jal calls Target, setting $ra to the return address.
type Jal struct{ Target Label }

// Jr jumps to the address held in Rs.
type Jr struct{ Rs Reg }

// Beqz branches to Target if Rs is zero.
type Beqz struct {
	Rs     Reg
	Target Label
}

// Bnez branches to Target if Rs is nonzero.
type Bnez struct {
	Rs     Reg
	Target Label
}

// Syscall invokes the SPIM/MARS system-call convention ($v0 selects the
// service, $a0 carries its argument).
type Syscall struct{}

// LabelDef defines a label at the current position.
type LabelDef struct{ Name Label }

// Comment emits a source-level comment, used by the code generator to
// annotate the assembly it produces for a statement or expression.
type Comment struct{ Text string }

func (Add) implInstruction()      {}
func (Sub) implInstruction()      {}
func (Mul) implInstruction()      {}
func (Div) implInstruction()      {}
func (Mflo) implInstruction()     {}
func (Mfhi) implInstruction()     {}
func (Neg) implInstruction()      {}
func (Addi) implInstruction()     {}
func (Sll) implInstruction()      {}
func (Slt) implInstruction()      {}
func (Sle) implInstruction()      {}
func (Sgt) implInstruction()      {}
func (Sge) implInstruction()      {}
func (Seq) implInstruction()      {}
func (Sne) implInstruction()      {}
func (Li) implInstruction()       {}
func (Move) implInstruction()     {}
func (La) implInstruction()       {}
func (Lw) implInstruction()       {}
func (Sw) implInstruction()       {}
func (LwGlobal) implInstruction() {}
func (SwGlobal) implInstruction() {}
func (J) implInstruction()        {}
func (Jal) implInstruction()      {}
func (Jr) implInstruction()       {}
func (Beqz) implInstruction()     {}
func (Bnez) implInstruction()     {}
func (Syscall) implInstruction()  {}
func (LabelDef) implInstruction() {}
func (Comment) implInstruction()  {}

// Function holds the instructions making up one emitted function body.
type Function struct {
	Name string
	Code []Instruction
}

// NewFunction creates an empty function ready for Append/AppendLabel calls.
func NewFunction(name string) *Function {
	return &Function{Name: name}
}

// Append adds an instruction to the function.
func (f *Function) Append(inst Instruction) {
	f.Code = append(f.Code, inst)
}

// AppendLabel adds a label definition.
func (f *Function) AppendLabel(name Label) {
	f.Code = append(f.Code, LabelDef{Name: name})
}

// GlobVar represents a global variable reserved in the data segment: a
// scalar gets Words == 1, an array gets Words == its declared size.
type GlobVar struct {
	Name  string
	Words int
}

// Program is the complete output of code generation: every global
// variable and every function, in declaration order.
type Program struct {
	Globals   []GlobVar
	Functions []*Function
}
