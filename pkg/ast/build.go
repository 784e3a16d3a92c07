package ast

import "github.com/cjlcarvalho/cminus/pkg/source"

// The New* functions below are the only way another package can construct
// a node with a non-zero source range: base is unexported so its Rng field
// cannot be set from a composite literal outside this package.

func NewProgram(rng source.Range) *Program { return &Program{base: base{Rng: rng}} }

func NewVarDecl(rng source.Range, name string, typ Type, arraySize int, storage Storage) *VarDecl {
	return &VarDecl{base: base{Rng: rng}, Name: name, Type: typ, ArraySize: arraySize, Storage: storage}
}

func NewParmDecl(rng source.Range, name string, isArray bool) *ParmDecl {
	return &ParmDecl{base: base{Rng: rng}, Name: name, IsArray: isArray}
}

func NewFunDecl(rng source.Range, name string, retType Type) *FunDecl {
	return &FunDecl{base: base{Rng: rng}, Name: name, ReturnType: retType}
}

func NewNullStmt(rng source.Range) *NullStmt { return &NullStmt{base{Rng: rng}} }

func NewCompoundStmt(rng source.Range, locals []*VarDecl, body []Stmt) *CompoundStmt {
	return &CompoundStmt{base: base{Rng: rng}, Locals: locals, Body: body}
}

func NewSelectionStmt(rng source.Range, cond Expr, then, els Stmt) *SelectionStmt {
	return &SelectionStmt{base: base{Rng: rng}, Cond: cond, Then: then, Else: els}
}

func NewIterationStmt(rng source.Range, cond Expr, body Stmt) *IterationStmt {
	return &IterationStmt{base: base{Rng: rng}, Cond: cond, Body: body}
}

func NewReturnStmt(rng source.Range, keywordAt source.Pos, expr Expr) *ReturnStmt {
	return &ReturnStmt{base: base{Rng: rng}, Expr: expr, KeywordAt: keywordAt}
}

func NewExprStmt(rng source.Range, expr Expr) *ExprStmt {
	return &ExprStmt{base: base{Rng: rng}, Expr: expr}
}

func NewNumber(rng source.Range, value int32) *Number {
	return &Number{base: base{Rng: rng}, Value: value}
}

func NewVarRef(rng source.Range, name string, index Expr) *VarRef {
	return &VarRef{base: base{Rng: rng}, Name: name, Index: index, ResolvedType: ErrorType}
}

func NewFunCall(rng source.Range, name string, args []Expr) *FunCall {
	return &FunCall{base: base{Rng: rng}, Name: name, Args: args, ResolvedType: ErrorType}
}

func NewBinaryExpr(rng source.Range, op BinaryOp, lhs, rhs Expr) *BinaryExpr {
	return &BinaryExpr{base: base{Rng: rng}, Op: op, Lhs: lhs, Rhs: rhs, ResolvedType: ErrorType}
}
