// Package codegen walks a checked, frame-laid-out AST and emits MIPS O32
// assembly for it: one mips.Function per FunDecl, one mips.GlobVar per
// top-level VarDecl. It assumes the tree is free of semantic errors and
// every FunDecl already carries a *ast.FrameInfo from pkg/frame.
package codegen

import (
	"strconv"

	"github.com/cjlcarvalho/cminus/pkg/ast"
	"github.com/cjlcarvalho/cminus/pkg/mips"
)

// Generate lowers prog to a complete assembly program. Every generated
// program carries the input/output runtime routines alongside the
// program's own functions, the way a linked-in crt0 would: callers reach
// them with an ordinary jal, never a special-cased syscall at the call
// site.
func Generate(prog *ast.Program) *mips.Program {
	out := &mips.Program{}
	for _, d := range prog.Decls {
		switch n := d.(type) {
		case *ast.VarDecl:
			words := 1
			if n.Type == ast.IntArray {
				words = n.ArraySize
			}
			out.Globals = append(out.Globals, mips.GlobVar{Name: n.Name, Words: words})
		case *ast.FunDecl:
			out.Functions = append(out.Functions, generateFunction(n))
		}
	}
	out.Functions = append(out.Functions, runtimeFunctions()...)
	return out
}

// runtimeFunctions builds the input/output builtins themselves: the
// read_int and print_int syscalls, wrapped in the same calling convention
// as any other function, so a call to either needs no special casing at
// the call site.
func runtimeFunctions() []*mips.Function {
	input := mips.NewFunction("input")
	input.Append(mips.Li{Rd: mips.V0, Imm: 5})
	input.Append(mips.Syscall{})
	input.Append(mips.Jr{Rs: mips.Ra})

	output := mips.NewFunction("output")
	output.Append(mips.Li{Rd: mips.V0, Imm: 1})
	output.Append(mips.Syscall{})
	output.Append(mips.Jr{Rs: mips.Ra})

	return []*mips.Function{input, output}
}

// generator holds the per-function state threaded through a single
// FunDecl's code generation: the function being built and a counter for
// the branch labels it needs.
type generator struct {
	fn     *ast.FunDecl
	f      *mips.Function
	labelN int
}

func generateFunction(fn *ast.FunDecl) *mips.Function {
	g := &generator{fn: fn, f: mips.NewFunction(fn.Name)}
	g.prologue()
	g.genCompoundStmt(fn.Body, 0)
	g.f.Append(mips.J{Target: g.epilogueLabel()})
	g.epilogue()
	return g.f
}

func (g *generator) epilogueLabel() mips.Label {
	return mips.Label(g.fn.Name + "_epilogue")
}

func (g *generator) newLabel(tag string) mips.Label {
	g.labelN++
	return mips.Label(g.fn.Name + "_" + tag + strconv.Itoa(g.labelN))
}

// prologue allocates the frame, saves $ra and the caller's $fp, adopts
// the new frame pointer, and homes every incoming parameter (from a
// register for the first four, from the caller's outgoing-argument slots
// for the rest) into its own slot in the input region.
func (g *generator) prologue() {
	frame := g.fn.Frame
	total := int32(frame.TotalSize)

	g.f.Append(mips.Addi{Rd: mips.Sp, Rs: mips.Sp, Imm: -total})
	g.f.Append(mips.Sw{Rd: mips.Ra, Rs: mips.Sp, Ofs: g.savedRaOffset()})
	g.f.Append(mips.Sw{Rd: mips.Fp, Rs: mips.Sp, Ofs: g.savedFpOffset()})
	g.f.Append(mips.Move{Rd: mips.Fp, Rs: mips.Sp})

	for i, p := range g.fn.Params {
		if i < 4 {
			g.f.Append(mips.Sw{Rd: argReg(i), Rs: mips.Fp, Ofs: int32(p.FrameOffset)})
		} else {
			incoming := total + int32(i*4)
			g.f.Append(mips.Lw{Rd: mips.T0, Rs: mips.Fp, Ofs: incoming})
			g.f.Append(mips.Sw{Rd: mips.T0, Rs: mips.Fp, Ofs: int32(p.FrameOffset)})
		}
	}
}

// epilogue restores $ra and $fp, deallocates the frame, and returns to
// the caller. main never returns to a caller, so it ends the program
// through the exit syscall instead.
func (g *generator) epilogue() {
	g.f.AppendLabel(g.epilogueLabel())
	if g.fn.Name == "main" {
		g.f.Append(mips.Li{Rd: mips.V0, Imm: 10})
		g.f.Append(mips.Syscall{})
		return
	}
	frame := g.fn.Frame
	g.f.Append(mips.Lw{Rd: mips.Ra, Rs: mips.Fp, Ofs: g.savedRaOffset()})
	g.f.Append(mips.Lw{Rd: mips.Fp, Rs: mips.Fp, Ofs: g.savedFpOffset()})
	g.f.Append(mips.Addi{Rd: mips.Sp, Rs: mips.Sp, Imm: int32(frame.TotalSize)})
	g.f.Append(mips.Jr{Rs: mips.Ra})
}

func (g *generator) savedRaOffset() int32 {
	return int32(g.fn.Frame.OutputSize + g.fn.Frame.TempSize)
}

func (g *generator) savedFpOffset() int32 {
	return g.savedRaOffset() + 4
}

// slot returns the frame offset of the depth-th spill word in the temp
// region; see pkg/frame for why its size matches what genExpr needs.
func (g *generator) slot(depth int) int32 {
	return int32(g.fn.Frame.OutputSize) + int32(depth)*4
}

// outputSlot returns the frame offset, in this function's own output
// region, of the k-th outgoing argument beyond the four passed in a0-a3:
// O32 keeps 0(sp)..12(sp) as a0-a3's home slots, so these start at 16(sp).
func (g *generator) outputSlot(k int) int32 {
	return int32(4+k) * 4
}

func argReg(i int) mips.Reg {
	return [4]mips.Reg{mips.A0, mips.A1, mips.A2, mips.A3}[i]
}

func (g *generator) genCompoundStmt(cs *ast.CompoundStmt, depth int) {
	for _, s := range cs.Body {
		g.genStmt(s, depth)
	}
}

func (g *generator) genStmt(s ast.Stmt, depth int) {
	switch n := s.(type) {
	case *ast.NullStmt:
	case *ast.CompoundStmt:
		g.genCompoundStmt(n, depth)
	case *ast.SelectionStmt:
		g.genSelection(n, depth)
	case *ast.IterationStmt:
		g.genIteration(n, depth)
	case *ast.ReturnStmt:
		g.genReturn(n, depth)
	case *ast.ExprStmt:
		if n.Expr != nil {
			g.genExpr(n.Expr, depth)
		}
	default:
		panic("codegen: unhandled statement")
	}
}

func (g *generator) genSelection(n *ast.SelectionStmt, depth int) {
	g.genExpr(n.Cond, depth)
	elseLabel := g.newLabel("else")
	g.f.Append(mips.Beqz{Rs: mips.V0, Target: elseLabel})
	g.genStmt(n.Then, depth)
	if n.Else != nil {
		endLabel := g.newLabel("endif")
		g.f.Append(mips.J{Target: endLabel})
		g.f.AppendLabel(elseLabel)
		g.genStmt(n.Else, depth)
		g.f.AppendLabel(endLabel)
	} else {
		g.f.AppendLabel(elseLabel)
	}
}

func (g *generator) genIteration(n *ast.IterationStmt, depth int) {
	start := g.newLabel("while")
	end := g.newLabel("endwhile")
	g.f.AppendLabel(start)
	g.genExpr(n.Cond, depth)
	g.f.Append(mips.Beqz{Rs: mips.V0, Target: end})
	g.genStmt(n.Body, depth)
	g.f.Append(mips.J{Target: start})
	g.f.AppendLabel(end)
}

func (g *generator) genReturn(n *ast.ReturnStmt, depth int) {
	if n.Expr != nil {
		g.genExpr(n.Expr, depth)
	}
	g.f.Append(mips.J{Target: g.epilogueLabel()})
}

// genExpr emits code to evaluate e, leaving its value in $v0. depth names
// the next free spill slot in the temp region; see pkg/frame's
// exprTempDepth for the cost model this walk must match exactly.
func (g *generator) genExpr(e ast.Expr, depth int) {
	switch n := e.(type) {
	case *ast.Number:
		g.f.Append(mips.Li{Rd: mips.V0, Imm: n.Value})
	case *ast.VarRef:
		g.genVarRef(n, depth)
	case *ast.FunCall:
		g.genCall(n, depth)
	case *ast.BinaryExpr:
		g.genBinaryExpr(n, depth)
	default:
		panic("codegen: unhandled expression")
	}
}

// genBinaryExpr evaluates the right operand first, spills it, then
// evaluates the left operand one slot deeper, then combines them with
// $v0 holding the left operand and $t0 the right — so op(lhs, rhs) is
// just "op $v0, $v0, $t0" for every one of the ten operators.
func (g *generator) genBinaryExpr(n *ast.BinaryExpr, depth int) {
	if n.Op == ast.OpAssign {
		g.genAssign(n, depth)
		return
	}
	g.genExpr(n.Rhs, depth)
	g.f.Append(mips.Sw{Rd: mips.V0, Rs: mips.Fp, Ofs: g.slot(depth)})
	g.genExpr(n.Lhs, depth+1)
	g.f.Append(mips.Lw{Rd: mips.T0, Rs: mips.Fp, Ofs: g.slot(depth)})
	g.emitOp(n.Op, mips.V0, mips.V0, mips.T0)
}

func (g *generator) emitOp(op ast.BinaryOp, dst, lhs, rhs mips.Reg) {
	switch op {
	case ast.OpAdd:
		g.f.Append(mips.Add{Rd: dst, Rs: lhs, Rt: rhs})
	case ast.OpSub:
		g.f.Append(mips.Sub{Rd: dst, Rs: lhs, Rt: rhs})
	case ast.OpMul:
		g.f.Append(mips.Mul{Rd: dst, Rs: lhs, Rt: rhs})
	case ast.OpDiv:
		g.f.Append(mips.Div{Rs: lhs, Rt: rhs})
		g.f.Append(mips.Mflo{Rd: dst})
	case ast.OpLess:
		g.f.Append(mips.Slt{Rd: dst, Rs: lhs, Rt: rhs})
	case ast.OpLessEqual:
		g.f.Append(mips.Sle{Rd: dst, Rs: lhs, Rt: rhs})
	case ast.OpGreater:
		g.f.Append(mips.Sgt{Rd: dst, Rs: lhs, Rt: rhs})
	case ast.OpGreaterEqual:
		g.f.Append(mips.Sge{Rd: dst, Rs: lhs, Rt: rhs})
	case ast.OpEqual:
		g.f.Append(mips.Seq{Rd: dst, Rs: lhs, Rt: rhs})
	case ast.OpNotEqual:
		g.f.Append(mips.Sne{Rd: dst, Rs: lhs, Rt: rhs})
	default:
		panic("codegen: unhandled operator")
	}
}

// genAssign evaluates the right-hand side first, spills it, then (for a
// subscripted target) computes the element's address one slot deeper,
// mirroring genBinaryExpr's order so the two share a cost model.
func (g *generator) genAssign(n *ast.BinaryExpr, depth int) {
	lhs := n.Lhs.(*ast.VarRef)
	g.genExpr(n.Rhs, depth)

	if lhs.Index == nil {
		g.storeScalar(lhs.Decl, mips.V0)
		return
	}
	g.f.Append(mips.Sw{Rd: mips.V0, Rs: mips.Fp, Ofs: g.slot(depth)})
	g.genAddress(mips.T1, lhs, depth+1)
	g.f.Append(mips.Lw{Rd: mips.V0, Rs: mips.Fp, Ofs: g.slot(depth)})
	g.f.Append(mips.Sw{Rd: mips.V0, Rs: mips.T1, Ofs: 0})
}

func (g *generator) genVarRef(ref *ast.VarRef, depth int) {
	if ref.Index == nil {
		g.loadScalar(mips.V0, ref.Decl)
		return
	}
	g.genAddress(mips.T1, ref, depth)
	g.f.Append(mips.Lw{Rd: mips.V0, Rs: mips.T1, Ofs: 0})
}

// genAddress leaves the address of ref's subscripted element in dst. The
// index is evaluated and spilled before the base address is computed, so
// a nested subscript inside the index expression (which also needs a
// scratch register to build its own address) cannot clobber dst.
func (g *generator) genAddress(dst mips.Reg, ref *ast.VarRef, depth int) {
	g.genExpr(ref.Index, depth)
	g.f.Append(mips.Sw{Rd: mips.V0, Rs: mips.Fp, Ofs: g.slot(depth)})
	g.loadBaseAddress(dst, ref.Decl)
	g.f.Append(mips.Lw{Rd: mips.T0, Rs: mips.Fp, Ofs: g.slot(depth)})
	g.f.Append(mips.Sll{Rd: mips.T0, Rs: mips.T0, Shift: 2})
	g.f.Append(mips.Add{Rd: dst, Rs: dst, Rt: mips.T0})
}

// loadBaseAddress leaves the address of decl's element 0 in dst: a
// local or global array's own storage for a VarDecl, or the pointer an
// array parameter was passed, read out of its home slot, for a ParmDecl.
func (g *generator) loadBaseAddress(dst mips.Reg, decl ast.Decl) {
	switch d := decl.(type) {
	case *ast.VarDecl:
		if d.Storage == ast.Global {
			g.f.Append(mips.La{Rd: dst, Target: mips.Label(d.Name)})
		} else {
			g.f.Append(mips.Addi{Rd: dst, Rs: mips.Fp, Imm: int32(d.FrameOffset)})
		}
	case *ast.ParmDecl:
		g.f.Append(mips.Lw{Rd: dst, Rs: mips.Fp, Ofs: int32(d.FrameOffset)})
	default:
		panic("codegen: unhandled declaration kind")
	}
}

func (g *generator) loadScalar(dst mips.Reg, decl ast.Decl) {
	switch d := decl.(type) {
	case *ast.VarDecl:
		if d.Storage == ast.Global {
			g.f.Append(mips.LwGlobal{Rd: dst, Target: mips.Label(d.Name)})
		} else {
			g.f.Append(mips.Lw{Rd: dst, Rs: mips.Fp, Ofs: int32(d.FrameOffset)})
		}
	case *ast.ParmDecl:
		g.f.Append(mips.Lw{Rd: dst, Rs: mips.Fp, Ofs: int32(d.FrameOffset)})
	default:
		panic("codegen: unhandled declaration kind")
	}
}

func (g *generator) storeScalar(decl ast.Decl, src mips.Reg) {
	switch d := decl.(type) {
	case *ast.VarDecl:
		if d.Storage == ast.Global {
			g.f.Append(mips.SwGlobal{Rd: src, Target: mips.Label(d.Name)})
		} else {
			g.f.Append(mips.Sw{Rd: src, Rs: mips.Fp, Ofs: int32(d.FrameOffset)})
		}
	case *ast.ParmDecl:
		g.f.Append(mips.Sw{Rd: src, Rs: mips.Fp, Ofs: int32(d.FrameOffset)})
	default:
		panic("codegen: unhandled declaration kind")
	}
}

// genCall evaluates every argument into its own spill slot before moving
// any of them into place, so a call nested inside a later argument's
// expression cannot clobber an earlier argument already computed. input
// and output are called exactly like any other function: their bodies
// are runtime-provided (see runtimeFunctions), not special-cased here.
func (g *generator) genCall(n *ast.FunCall, depth int) {
	for i, arg := range n.Args {
		g.genExpr(arg, depth+i)
		g.f.Append(mips.Sw{Rd: mips.V0, Rs: mips.Fp, Ofs: g.slot(depth + i)})
	}
	for i := range n.Args {
		g.f.Append(mips.Lw{Rd: mips.T0, Rs: mips.Fp, Ofs: g.slot(depth + i)})
		if i < 4 {
			g.f.Append(mips.Move{Rd: argReg(i), Rs: mips.T0})
		} else {
			g.f.Append(mips.Sw{Rd: mips.T0, Rs: mips.Fp, Ofs: g.outputSlot(i - 4)})
		}
	}
	g.f.Append(mips.Jal{Target: mips.Label(n.Decl.Name)})
}
