// Package frame computes the activation-record layout for each function
// before code generation: the byte offsets, relative to the frame
// pointer, of every region a function's stack frame needs. It runs as a
// pre-pass over the already-checked AST, turning declarations and
// expressions directly into concrete frame offsets with no intervening
// register-allocated IR.
package frame

import "github.com/cjlcarvalho/cminus/pkg/ast"

const wordSize = 4

// Layout, low address to high address, mirrors the standard MIPS O32
// stack-frame convention:
//
//	[[output]]  home slots for a0-a3, then outgoing arguments beyond them
//	[[temp]]    spill slots for evaluating expressions deeper than one register
//	[[saved]]   saved $fp and $ra
//	[[local]]   this function's local variables
//	[[input]]   this function's own parameters, homed to memory on entry
//
// Homing every parameter to a fixed stack slot right after the prologue
// (rather than keeping any of a0-a3 live in a register across the body)
// trades register pressure for simplicity: there is no register allocator
// in this compiler, so every value the code generator is not actively
// computing lives in memory.

// Compute lays out fn's frame, assigning FrameOffset to every parameter
// and local variable (including those in nested blocks) and filling in
// fn.Frame.
func Compute(fn *ast.FunDecl) {
	locals := collectLocals(fn.Body)

	localSize := 0
	for _, v := range locals {
		v.FrameOffset = localSize
		if v.Type == ast.IntArray {
			localSize += v.ArraySize * wordSize
		} else {
			localSize += wordSize
		}
	}

	const savedSize = 2 * wordSize // old $fp, $ra

	tempSize := maxTempWords(fn.Body) * wordSize
	outputSize := maxOutgoingWords(fn.Body) * wordSize
	inputSize := len(fn.Params) * wordSize

	base := outputSize + tempSize + savedSize
	for _, v := range locals {
		v.FrameOffset += base
	}
	for i, p := range fn.Params {
		p.FrameOffset = base + localSize + i*wordSize
	}

	fn.Frame = &ast.FrameInfo{
		InputSize:  inputSize,
		LocalSize:  localSize,
		SavedSize:  savedSize,
		TempSize:   tempSize,
		OutputSize: outputSize,
		TotalSize:  alignUp(outputSize+tempSize+savedSize+localSize+inputSize, 8),
	}
}

func alignUp(n, align int) int {
	if align == 0 {
		return n
	}
	return (n + align - 1) / align * align
}

// collectLocals gathers every VarDecl declared anywhere in body, including
// nested blocks, in declaration order. Scopes are not reused across
// sibling blocks, trading a larger frame for a layout simple enough to
// compute in one pass with no liveness analysis.
func collectLocals(body *ast.CompoundStmt) []*ast.VarDecl {
	c := &localsCollector{}
	c.Self = c
	c.VisitCompoundStmt(body)
	return c.locals
}

type localsCollector struct {
	ast.Base
	locals []*ast.VarDecl
}

func (c *localsCollector) VisitVarDecl(v *ast.VarDecl) { c.locals = append(c.locals, v) }

// maxTempWords walks every expression reachable from body and returns the
// largest number of spill words any single one of them needs to evaluate.
func maxTempWords(body *ast.CompoundStmt) int {
	w := &tempWalker{}
	w.Self = w
	w.VisitCompoundStmt(body)
	return w.max
}

type tempWalker struct {
	ast.Base
	max int
}

func (w *tempWalker) consider(e ast.Expr) {
	if e == nil {
		return
	}
	if d := exprTempDepth(e); d > w.max {
		w.max = d
	}
}

func (w *tempWalker) VisitExprStmt(n *ast.ExprStmt)       { w.consider(n.Expr) }
func (w *tempWalker) VisitReturnStmt(n *ast.ReturnStmt)   { w.consider(n.Expr) }
func (w *tempWalker) VisitSelectionStmt(n *ast.SelectionStmt) {
	w.consider(n.Cond)
	ast.WalkChildren(w, n)
}
func (w *tempWalker) VisitIterationStmt(n *ast.IterationStmt) {
	w.consider(n.Cond)
	ast.WalkChildren(w, n)
}

// exprTempDepth returns the number of word-sized spill slots needed to
// evaluate e, mirroring exactly the order the code generator walks it:
//
//   - a binary operator evaluates its right operand first, spills it to
//     the current slot, then evaluates its left operand one slot deeper
//     (so it can combine the two without either clobbering the other);
//   - a call evaluates its arguments left to right, spilling each one to
//     its own slot before moving any of them into an argument register or
//     the output region, so that a call nested inside a later argument's
//     expression cannot clobber an earlier argument already computed;
//   - an assignment to a subscripted target evaluates the right-hand side
//     first, spills it, then computes the target's address one slot
//     deeper, for the same reason a binary operator does.
//
// Computing a subscripted element's address always spills the index
// value before computing the base address, even when the index is a
// bare literal that needed no slot of its own to evaluate — so
// addressCost below is never less than 1.
//
// Any slack this overestimates (it rounds up rather than computing the
// exact high-water mark) only costs a few wasted stack words, never a
// wrong answer.
func exprTempDepth(e ast.Expr) int {
	switch n := e.(type) {
	case *ast.Number:
		return 0
	case *ast.VarRef:
		if n.Index != nil {
			return addressCost(n.Index)
		}
		return 0
	case *ast.FunCall:
		if len(n.Args) == 0 {
			return 0
		}
		max := 0
		for i, a := range n.Args {
			if d := i + exprTempDepth(a); d > max {
				max = d
			}
		}
		return max + 1
	case *ast.BinaryExpr:
		if n.Op == ast.OpAssign {
			lhs := n.Lhs.(*ast.VarRef)
			if lhs.Index != nil {
				if d := 1 + addressCost(lhs.Index); d > exprTempDepth(n.Rhs) {
					return d
				}
			}
			return exprTempDepth(n.Rhs)
		}
		right := exprTempDepth(n.Rhs)
		left := exprTempDepth(n.Lhs) + 1
		if left > right {
			return left
		}
		return right
	default:
		return 0
	}
}

// addressCost returns the number of spill slots needed to compute the
// address of a subscripted element whose subscript is index: the larger
// of one (the slot the index value is spilled to) and whatever index
// needed to evaluate, since the spill reuses the first of those slots.
func addressCost(index ast.Expr) int {
	if d := exprTempDepth(index); d > 1 {
		return d
	}
	return 1
}

// maxOutgoingWords walks every call reachable from body and returns the
// largest number of stack words any single call needs for its outgoing
// arguments: at least four words per call (the O32 convention reserves
// 0(sp)..12(sp) as home slots for a0-a3 even when a call passes four or
// fewer arguments, and places any further arguments from 16(sp) on), or
// zero if the function makes no calls at all.
func maxOutgoingWords(body *ast.CompoundStmt) int {
	w := &outgoingWalker{}
	w.Self = w
	w.VisitCompoundStmt(body)
	return w.max
}

type outgoingWalker struct {
	ast.Base
	max int
}

func (w *outgoingWalker) VisitFunCall(n *ast.FunCall) {
	need := len(n.Args)
	if need < 4 {
		need = 4
	}
	if need > w.max {
		w.max = need
	}
	ast.WalkChildren(w, n)
}
