package ast

import (
	"fmt"
	"io"
	"strings"
)

// Printer is a read-only Visitor that dumps the tree in labeled bracket
// notation, one construct per line, children indented beneath their
// parent.
type Printer struct {
	Base
	w      io.Writer
	indent int
}

// NewPrinter creates a Printer writing to w.
func NewPrinter(w io.Writer) *Printer {
	p := &Printer{w: w}
	p.Self = p
	return p
}

// Print dumps an entire program.
func (p *Printer) Print(prog *Program) { p.VisitProgram(prog) }

func (p *Printer) line(format string, args ...any) {
	fmt.Fprint(p.w, strings.Repeat("  ", p.indent))
	fmt.Fprintf(p.w, format, args...)
	fmt.Fprintln(p.w)
}

func (p *Printer) nested(f func()) {
	p.indent++
	f()
	p.indent--
}

func (p *Printer) VisitProgram(n *Program) {
	p.line("(Program")
	p.nested(func() {
		for _, d := range n.Decls {
			VisitDecl(p, d)
		}
	})
	p.line(")")
}

func (p *Printer) VisitVarDecl(n *VarDecl) {
	storage := "global"
	if n.Storage == Local {
		storage = "local"
	}
	if n.Type == IntArray {
		p.line("(VarDecl %s int[%d] %s)", n.Name, n.ArraySize, storage)
	} else {
		p.line("(VarDecl %s int %s)", n.Name, storage)
	}
}

func (p *Printer) VisitParmDecl(n *ParmDecl) {
	if n.IsArray {
		p.line("(ParmDecl %s int[])", n.Name)
	} else {
		p.line("(ParmDecl %s int)", n.Name)
	}
}

func (p *Printer) VisitFunDecl(n *FunDecl) {
	p.line("(FunDecl %s %s", n.Name, n.ReturnType)
	p.nested(func() { WalkChildren(p, n) })
	p.line(")")
}

func (p *Printer) VisitNullStmt(n *NullStmt) { p.line("(NullStmt)") }

func (p *Printer) VisitCompoundStmt(n *CompoundStmt) {
	p.line("(CompoundStmt")
	p.nested(func() { WalkChildren(p, n) })
	p.line(")")
}

func (p *Printer) VisitSelectionStmt(n *SelectionStmt) {
	p.line("(If")
	p.nested(func() { WalkChildren(p, n) })
	p.line(")")
}

func (p *Printer) VisitIterationStmt(n *IterationStmt) {
	p.line("(While")
	p.nested(func() { WalkChildren(p, n) })
	p.line(")")
}

func (p *Printer) VisitReturnStmt(n *ReturnStmt) {
	p.line("(Return")
	p.nested(func() { WalkChildren(p, n) })
	p.line(")")
}

func (p *Printer) VisitExprStmt(n *ExprStmt) {
	p.line("(ExprStmt")
	p.nested(func() { VisitExpr(p, n.Expr) })
	p.line(")")
}

func (p *Printer) VisitNumber(n *Number) {
	p.line("(Number %d : %s)", n.Value, n.Typ())
}

func (p *Printer) VisitVarRef(n *VarRef) {
	if n.Index != nil {
		p.line("(VarRef %s[] : %s", n.Name, n.Typ())
		p.nested(func() { VisitExpr(p, n.Index) })
		p.line(")")
		return
	}
	p.line("(VarRef %s : %s)", n.Name, n.Typ())
}

func (p *Printer) VisitFunCall(n *FunCall) {
	p.line("(Call %s : %s", n.Name, n.Typ())
	p.nested(func() {
		for _, a := range n.Args {
			VisitExpr(p, a)
		}
	})
	p.line(")")
}

func (p *Printer) VisitBinaryExpr(n *BinaryExpr) {
	p.line("(Binary %s : %s", n.Op, n.Typ())
	p.nested(func() { WalkChildren(p, n) })
	p.line(")")
}
