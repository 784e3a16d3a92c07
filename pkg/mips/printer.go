package mips

import (
	"fmt"
	"io"
)

// Printer renders a Program as SPIM/GNU-as-compatible MIPS assembly text.
type Printer struct {
	w io.Writer
}

// NewPrinter creates a printer writing to w.
func NewPrinter(w io.Writer) *Printer {
	return &Printer{w: w}
}

// PrintProgram outputs an entire program: a .data section for the globals
// followed by a .text section for every function, in that order.
func (p *Printer) PrintProgram(prog *Program) {
	if len(prog.Globals) > 0 {
		fmt.Fprintf(p.w, "\t.data\n")
		for _, g := range prog.Globals {
			p.printGlobal(g)
		}
		fmt.Fprintf(p.w, "\n")
	}

	fmt.Fprintf(p.w, "\t.text\n")
	for i, f := range prog.Functions {
		if i > 0 {
			fmt.Fprintf(p.w, "\n")
		}
		p.printFunction(f)
	}
}

func (p *Printer) printGlobal(g GlobVar) {
	fmt.Fprintf(p.w, "\t.globl\t%s\n", g.Name)
	fmt.Fprintf(p.w, "%s:\t.word\t0", g.Name)
	for i := 1; i < g.Words; i++ {
		fmt.Fprintf(p.w, ", 0")
	}
	fmt.Fprintf(p.w, "\n")
}

func (p *Printer) printFunction(f *Function) {
	fmt.Fprintf(p.w, "\t.globl\t%s\n", f.Name)
	fmt.Fprintf(p.w, "%s:\n", f.Name)
	for _, inst := range f.Code {
		p.printInstruction(inst)
	}
}

func (p *Printer) printInstruction(inst Instruction) {
	switch i := inst.(type) {
	case LabelDef:
		fmt.Fprintf(p.w, "%s:\n", i.Name)
	case Comment:
		fmt.Fprintf(p.w, "\t# %s\n", i.Text)

	case Add:
		fmt.Fprintf(p.w, "\tadd\t$%s, $%s, $%s\n", i.Rd, i.Rs, i.Rt)
	case Sub:
		fmt.Fprintf(p.w, "\tsub\t$%s, $%s, $%s\n", i.Rd, i.Rs, i.Rt)
	case Mul:
		fmt.Fprintf(p.w, "\tmul\t$%s, $%s, $%s\n", i.Rd, i.Rs, i.Rt)
	case Div:
		fmt.Fprintf(p.w, "\tdiv\t$%s, $%s\n", i.Rs, i.Rt)
	case Mflo:
		fmt.Fprintf(p.w, "\tmflo\t$%s\n", i.Rd)
	case Mfhi:
		fmt.Fprintf(p.w, "\tmfhi\t$%s\n", i.Rd)
	case Neg:
		fmt.Fprintf(p.w, "\tneg\t$%s, $%s\n", i.Rd, i.Rs)
	case Addi:
		fmt.Fprintf(p.w, "\taddi\t$%s, $%s, %d\n", i.Rd, i.Rs, i.Imm)
	case Sll:
		fmt.Fprintf(p.w, "\tsll\t$%s, $%s, %d\n", i.Rd, i.Rs, i.Shift)

	case Slt:
		fmt.Fprintf(p.w, "\tslt\t$%s, $%s, $%s\n", i.Rd, i.Rs, i.Rt)
	case Sle:
		fmt.Fprintf(p.w, "\tsle\t$%s, $%s, $%s\n", i.Rd, i.Rs, i.Rt)
	case Sgt:
		fmt.Fprintf(p.w, "\tsgt\t$%s, $%s, $%s\n", i.Rd, i.Rs, i.Rt)
	case Sge:
		fmt.Fprintf(p.w, "\tsge\t$%s, $%s, $%s\n", i.Rd, i.Rs, i.Rt)
	case Seq:
		fmt.Fprintf(p.w, "\tseq\t$%s, $%s, $%s\n", i.Rd, i.Rs, i.Rt)
	case Sne:
		fmt.Fprintf(p.w, "\tsne\t$%s, $%s, $%s\n", i.Rd, i.Rs, i.Rt)

	case Li:
		fmt.Fprintf(p.w, "\tli\t$%s, %d\n", i.Rd, i.Imm)
	case Move:
		fmt.Fprintf(p.w, "\tmove\t$%s, $%s\n", i.Rd, i.Rs)
	case La:
		fmt.Fprintf(p.w, "\tla\t$%s, %s\n", i.Rd, i.Target)

	case Lw:
		fmt.Fprintf(p.w, "\tlw\t$%s, %d($%s)\n", i.Rd, i.Ofs, i.Rs)
	case Sw:
		fmt.Fprintf(p.w, "\tsw\t$%s, %d($%s)\n", i.Rd, i.Ofs, i.Rs)
	case LwGlobal:
		fmt.Fprintf(p.w, "\tlw\t$%s, %s\n", i.Rd, i.Target)
	case SwGlobal:
		fmt.Fprintf(p.w, "\tsw\t$%s, %s\n", i.Rd, i.Target)

	case J:
		fmt.Fprintf(p.w, "\tj\t%s\n", i.Target)
	case Jal:
		fmt.Fprintf(p.w, "\tjal\t%s\n", i.Target)
	case Jr:
		fmt.Fprintf(p.w, "\tjr\t$%s\n", i.Rs)
	case Beqz:
		fmt.Fprintf(p.w, "\tbeqz\t$%s, %s\n", i.Rs, i.Target)
	case Bnez:
		fmt.Fprintf(p.w, "\tbnez\t$%s, %s\n", i.Rs, i.Target)
	case Syscall:
		fmt.Fprintf(p.w, "\tsyscall\n")

	default:
		panic(fmt.Sprintf("mips: unhandled instruction %T", inst))
	}
}
