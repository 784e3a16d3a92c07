package ast

// Visitor is the uniform traversal protocol over the tree: one visit method
// per node shape, entered in left-to-right, pre-order. Implementations that
// only care about a handful of node kinds can embed Base and override the
// rest.
type Visitor interface {
	VisitProgram(*Program)

	VisitVarDecl(*VarDecl)
	VisitParmDecl(*ParmDecl)
	VisitFunDecl(*FunDecl)

	VisitNullStmt(*NullStmt)
	VisitCompoundStmt(*CompoundStmt)
	VisitSelectionStmt(*SelectionStmt)
	VisitIterationStmt(*IterationStmt)
	VisitReturnStmt(*ReturnStmt)
	VisitExprStmt(*ExprStmt)

	VisitNumber(*Number)
	VisitVarRef(*VarRef)
	VisitFunCall(*FunCall)
	VisitBinaryExpr(*BinaryExpr)
}

// VisitDecl dispatches to the Visit method matching d's concrete type.
func VisitDecl(v Visitor, d Decl) {
	switch n := d.(type) {
	case *VarDecl:
		v.VisitVarDecl(n)
	case *ParmDecl:
		v.VisitParmDecl(n)
	case *FunDecl:
		v.VisitFunDecl(n)
	default:
		panic("ast: unhandled Decl type")
	}
}

// VisitStmt dispatches to the Visit method matching s's concrete type.
func VisitStmt(v Visitor, s Stmt) {
	switch n := s.(type) {
	case *NullStmt:
		v.VisitNullStmt(n)
	case *CompoundStmt:
		v.VisitCompoundStmt(n)
	case *SelectionStmt:
		v.VisitSelectionStmt(n)
	case *IterationStmt:
		v.VisitIterationStmt(n)
	case *ReturnStmt:
		v.VisitReturnStmt(n)
	case *ExprStmt:
		v.VisitExprStmt(n)
	default:
		panic("ast: unhandled Stmt type")
	}
}

// VisitExpr dispatches to the Visit method matching e's concrete type.
func VisitExpr(v Visitor, e Expr) {
	switch n := e.(type) {
	case *Number:
		v.VisitNumber(n)
	case *VarRef:
		v.VisitVarRef(n)
	case *FunCall:
		v.VisitFunCall(n)
	case *BinaryExpr:
		v.VisitBinaryExpr(n)
	default:
		panic("ast: unhandled Expr type")
	}
}

// WalkChildren visits every immediate child of n. It is the building block
// a Visitor calls from its own Visit methods to recurse, in the manner of
// the original walk_* helpers: the default traversal is explicit, not
// automatic.
func WalkChildren(v Visitor, n Node) {
	switch n := n.(type) {
	case *Program:
		for _, d := range n.Decls {
			VisitDecl(v, d)
		}
	case *FunDecl:
		for _, p := range n.Params {
			v.VisitParmDecl(p)
		}
		v.VisitCompoundStmt(n.Body)
	case *CompoundStmt:
		for _, l := range n.Locals {
			v.VisitVarDecl(l)
		}
		for _, s := range n.Body {
			VisitStmt(v, s)
		}
	case *SelectionStmt:
		VisitExpr(v, n.Cond)
		VisitStmt(v, n.Then)
		if n.Else != nil {
			VisitStmt(v, n.Else)
		}
	case *IterationStmt:
		VisitExpr(v, n.Cond)
		VisitStmt(v, n.Body)
	case *ReturnStmt:
		if n.Expr != nil {
			VisitExpr(v, n.Expr)
		}
	case *ExprStmt:
		VisitExpr(v, n.Expr)
	case *VarRef:
		if n.Index != nil {
			VisitExpr(v, n.Index)
		}
	case *FunCall:
		for _, a := range n.Args {
			VisitExpr(v, a)
		}
	case *BinaryExpr:
		VisitExpr(v, n.Lhs)
		VisitExpr(v, n.Rhs)
	}
}

// Base is an embeddable Visitor whose methods all recurse into children via
// WalkChildren and otherwise do nothing. Embed it to get a read-only
// traversal for free, then override individual Visit methods to act on
// specific node kinds.
type Base struct {
	// Self must be set to the outer Visitor so default methods recurse
	// through any overrides rather than back into Base itself.
	Self Visitor
}

func (b *Base) self() Visitor {
	if b.Self != nil {
		return b.Self
	}
	return b
}

func (b *Base) VisitProgram(n *Program)            { WalkChildren(b.self(), n) }
func (b *Base) VisitVarDecl(n *VarDecl)             {}
func (b *Base) VisitParmDecl(n *ParmDecl)           {}
func (b *Base) VisitFunDecl(n *FunDecl)             { WalkChildren(b.self(), n) }
func (b *Base) VisitNullStmt(n *NullStmt)           {}
func (b *Base) VisitCompoundStmt(n *CompoundStmt)   { WalkChildren(b.self(), n) }
func (b *Base) VisitSelectionStmt(n *SelectionStmt) { WalkChildren(b.self(), n) }
func (b *Base) VisitIterationStmt(n *IterationStmt) { WalkChildren(b.self(), n) }
func (b *Base) VisitReturnStmt(n *ReturnStmt)       { WalkChildren(b.self(), n) }
func (b *Base) VisitExprStmt(n *ExprStmt)           { WalkChildren(b.self(), n) }
func (b *Base) VisitNumber(n *Number)               {}
func (b *Base) VisitVarRef(n *VarRef)               { WalkChildren(b.self(), n) }
func (b *Base) VisitFunCall(n *FunCall)             { WalkChildren(b.self(), n) }
func (b *Base) VisitBinaryExpr(n *BinaryExpr)       { WalkChildren(b.self(), n) }
