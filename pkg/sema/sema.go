// Package sema implements the semantic analyzer: scoped name resolution
// and type checking, driven by action methods the parser calls at each
// grammar reduction. Each action both builds the corresponding AST node
// and performs the checks that node's construct requires.
package sema

import (
	"github.com/cjlcarvalho/cminus/pkg/ast"
	"github.com/cjlcarvalho/cminus/pkg/diag"
	"github.com/cjlcarvalho/cminus/pkg/scanner"
	"github.com/cjlcarvalho/cminus/pkg/source"
)

// Analyzer builds the annotated AST and reports semantic diagnostics. It
// holds no reference to the parser; every method is called by the parser
// at the grammar reduction the action's name corresponds to.
type Analyzer struct {
	src   *source.File
	diags *diag.Bus
	top   *scope // the global scope, kept so builtins and later lookups both see it
	cur   *scope // the innermost scope currently open

	// curFun is the function whose body is being analyzed, or nil at
	// global scope. Needed by ActOnReturnStmt.
	curFun *ast.FunDecl
}

// New creates an Analyzer and installs the two builtin declarations in the
// global scope: `int input(void)` and `void output(int)`.
func New(src *source.File, diags *diag.Bus) *Analyzer {
	a := &Analyzer{src: src, diags: diags}
	a.top = newScope(Global, nil)
	a.cur = a.top

	a.top.insert("input", &ast.FunDecl{
		Name: "input", ReturnType: ast.Int, Params: nil,
	})
	a.top.insert("output", &ast.FunDecl{
		Name: "output", ReturnType: ast.Void,
		Params: []*ast.ParmDecl{{Name: "value"}},
	})
	return a
}

// EnterScope pushes a new lexical scope of the given kind.
func (a *Analyzer) EnterScope(kind Kind) { a.cur = newScope(kind, a.cur) }

// ExitScope pops the innermost scope. Callers should defer this
// immediately after EnterScope so the scope is released on every exit
// path, including ones that return early because of a parse error.
func (a *Analyzer) ExitScope() { a.cur = a.cur.parent }

// ActOnProgramStart returns the (initially empty) program root.
func (a *Analyzer) ActOnProgramStart(rng source.Range) *ast.Program {
	return ast.NewProgram(rng)
}

// ActOnProgramEnd returns the finished program unchanged; it exists to
// pair with ActOnProgramStart so every construct the analyzer tracks has
// a matching start/end action.
func (a *Analyzer) ActOnProgramEnd(prog *ast.Program) *ast.Program { return prog }

// ActOnTopLevelDecl appends a declaration to the program.
func (a *Analyzer) ActOnTopLevelDecl(prog *ast.Program, decl ast.Decl) {
	prog.Decls = append(prog.Decls, decl)
}

// ActOnVarDecl builds a variable declaration, rejecting void and
// redefinitions in the current scope.
func (a *Analyzer) ActOnVarDecl(rng source.Range, typeWord, nameWord scanner.Word, arraySize *ast.Number, storage ast.Storage) *ast.VarDecl {
	name := a.src.Lexeme(nameWord.Lexeme)

	typ := ast.Int
	size := 0
	if arraySize != nil {
		typ = ast.IntArray
		size = int(arraySize.Value)
	}
	if typeWord.Category == scanner.KwVoid {
		a.diags.Report(a.src, nameWord.Loc(), diag.VarCannotBeVoid, name).
			Range(nameWord.Lexeme).Emit()
		typ = ast.ErrorType
	}
	decl := ast.NewVarDecl(rng, name, typ, size, storage)

	if redefined := a.cur.insert(name, decl); redefined {
		a.diags.Report(a.src, nameWord.Loc(), diag.Redefinition, name).
			Range(nameWord.Lexeme).Emit()
	}
	return decl
}

// ActOnParamDecl builds a parameter declaration and appends it to the
// function being declared, so a recursive call inside that function's
// body is checked against the full parameter list. A `void` parameter
// type is reported by the parser before this action runs, since the
// action receives only the name.
func (a *Analyzer) ActOnParamDecl(rng source.Range, nameWord scanner.Word, isArray bool) *ast.ParmDecl {
	name := a.src.Lexeme(nameWord.Lexeme)
	decl := ast.NewParmDecl(rng, name, isArray)
	if a.curFun != nil {
		a.curFun.Params = append(a.curFun.Params, decl)
	}

	if redefined := a.cur.insert(name, decl); redefined {
		a.diags.Report(a.src, nameWord.Loc(), diag.Redefinition, name).
			Range(nameWord.Lexeme).Emit()
	}
	return decl
}

// ActOnFunDeclStart inserts the function's declaration into the global
// scope before its body is parsed, so a call to the function from within
// its own body (recursion) resolves. The caller must EnterScope(Function)
// immediately afterward, before parsing parameters.
func (a *Analyzer) ActOnFunDeclStart(rng source.Range, retTypeWord, nameWord scanner.Word) *ast.FunDecl {
	name := a.src.Lexeme(nameWord.Lexeme)
	retType := ast.Int
	if retTypeWord.Category == scanner.KwVoid {
		retType = ast.Void
	}

	fn := ast.NewFunDecl(rng, name, retType)

	if redefined := a.top.insert(name, fn); redefined {
		a.diags.Report(a.src, nameWord.Loc(), diag.Redefinition, name).
			Range(nameWord.Lexeme).Emit()
	}
	a.curFun = fn
	return fn
}

// ActOnFunDeclEnd attaches the parsed parameters and body to fn.
func (a *Analyzer) ActOnFunDeclEnd(fn *ast.FunDecl, params []*ast.ParmDecl, body *ast.CompoundStmt) *ast.FunDecl {
	fn.Params = params
	fn.Body = body
	a.curFun = nil
	return fn
}

// ActOnCompoundStmt builds a compound statement from its already-collected
// locals and body statements. The caller is responsible for having entered
// and exited the appropriate scope around parsing them; a function's
// outermost compound statement shares the Function scope instead of
// pushing its own, since a function's parameters and its body are a
// single visible lexical region.
func (a *Analyzer) ActOnCompoundStmt(rng source.Range, locals []*ast.VarDecl, body []ast.Stmt) *ast.CompoundStmt {
	return ast.NewCompoundStmt(rng, locals, body)
}

func (a *Analyzer) ActOnNullStmt(rng source.Range) *ast.NullStmt {
	return ast.NewNullStmt(rng)
}

func (a *Analyzer) ActOnSelectionStmt(rng source.Range, cond ast.Expr, then ast.Stmt, els ast.Stmt) *ast.SelectionStmt {
	return ast.NewSelectionStmt(rng, cond, then, els)
}

func (a *Analyzer) ActOnIterationStmt(rng source.Range, cond ast.Expr, body ast.Stmt) *ast.IterationStmt {
	return ast.NewIterationStmt(rng, cond, body)
}

// ActOnReturnStmt checks the returned expression, if any, against the
// enclosing function's return type.
func (a *Analyzer) ActOnReturnStmt(rng source.Range, keywordAt source.Pos, expr ast.Expr) *ast.ReturnStmt {
	if a.curFun != nil {
		switch {
		case a.curFun.ReturnType == ast.Void && expr != nil:
			a.diags.Report(a.src, keywordAt, diag.ReturnTypeMismatch).
				Range(source.Range{Begin: keywordAt, Len: 6}).Emit()
		case a.curFun.ReturnType == ast.Int && expr == nil:
			a.diags.Report(a.src, keywordAt, diag.ReturnTypeMismatch).
				Range(source.Range{Begin: keywordAt, Len: 6}).Emit()
		case a.curFun.ReturnType == ast.Int && expr.Typ() == ast.IntArray:
			if name, ok := arrayName(expr); ok {
				a.diags.Report(a.src, expr.Range().Begin, diag.ArrayUsedAsScalar, name).
					Range(expr.Range()).Emit()
			} else {
				a.diags.Report(a.src, keywordAt, diag.ReturnTypeMismatch).
					Range(source.Range{Begin: keywordAt, Len: 6}).Emit()
			}
		}
	}
	return ast.NewReturnStmt(rng, keywordAt, expr)
}

func (a *Analyzer) ActOnExprStmt(rng source.Range, expr ast.Expr) *ast.ExprStmt {
	return ast.NewExprStmt(rng, expr)
}

// ActOnNumber resolves a numeric literal's text to an int32 value, clamping
// on overflow. The scanner has already reported number_too_big for an
// overflowing lexeme; this method performs the same clamp so the AST
// always carries a usable value.
func (a *Analyzer) ActOnNumber(word scanner.Word) *ast.Number {
	text := a.src.Lexeme(word.Lexeme)
	value := int64(0)
	for i := 0; i < len(text); i++ {
		value = value*10 + int64(text[i]-'0')
		if value > (1<<31)-1 {
			value = (1 << 31) - 1
			break
		}
	}
	return ast.NewNumber(word.Lexeme, int32(value))
}

// ActOnVar resolves a name to its declaration and computes the resulting
// expression type, reporting undeclared_identifier, var_is_not_a_var, and
// array/scalar usage mismatches.
func (a *Analyzer) ActOnVar(rng source.Range, nameWord scanner.Word, index ast.Expr) *ast.VarRef {
	name := a.src.Lexeme(nameWord.Lexeme)
	ref := ast.NewVarRef(rng, name, index)

	decl, found := a.cur.lookup(name)
	if !found {
		a.diags.Report(a.src, nameWord.Loc(), diag.UndeclaredIdentifier, name).
			Range(nameWord.Lexeme).Emit()
		return ref
	}

	if _, isFun := decl.(*ast.FunDecl); isFun {
		a.diags.Report(a.src, nameWord.Loc(), diag.VarIsNotAVar, name).
			Range(nameWord.Lexeme).Emit()
		return ref
	}
	ref.Decl = decl

	declType := declaredType(decl)
	switch {
	case index != nil && declType != ast.IntArray:
		a.diags.Report(a.src, nameWord.Loc(), diag.ScalarUsedAsArray, name).
			Range(nameWord.Lexeme).Emit()
		ref.ResolvedType = ast.ErrorType
	case index == nil && declType == ast.IntArray:
		// A bare array name denotes the whole array, e.g. passed to a
		// function expecting int[]; arithmetic contexts reject it via the
		// binary/return/assign checks, which look for ast.Int specifically.
		ref.ResolvedType = ast.IntArray
	case index != nil:
		ref.ResolvedType = ast.Int
	default:
		ref.ResolvedType = declType
	}
	return ref
}

// arrayName reports whether e is a bare array reference — a VarRef with
// no subscript whose declared type is IntArray — and, if so, the
// array's name. Such a reference resolves to IntArray rather than Int,
// so anywhere an Int is required it needs its own diagnostic
// (array_used_as_scalar) distinct from the generic argument/operand type
// mismatch.
func arrayName(e ast.Expr) (string, bool) {
	ref, ok := e.(*ast.VarRef)
	if !ok || ref.Index != nil || ref.ResolvedType != ast.IntArray {
		return "", false
	}
	return ref.Name, true
}

func declaredType(d ast.Decl) ast.Type {
	switch v := d.(type) {
	case *ast.VarDecl:
		return v.Type
	case *ast.ParmDecl:
		return v.Type()
	default:
		return ast.ErrorType
	}
}

// ActOnCall resolves a call's callee and checks arity and argument types.
func (a *Analyzer) ActOnCall(rng source.Range, nameWord scanner.Word, args []ast.Expr) *ast.FunCall {
	name := a.src.Lexeme(nameWord.Lexeme)
	call := ast.NewFunCall(rng, name, args)

	decl, found := a.cur.lookup(name)
	if !found {
		a.diags.Report(a.src, nameWord.Loc(), diag.UndeclaredIdentifier, name).
			Range(nameWord.Lexeme).Emit()
		return call
	}
	fn, isFun := decl.(*ast.FunDecl)
	if !isFun {
		a.diags.Report(a.src, nameWord.Loc(), diag.FunIsNotAFun, name).
			Range(nameWord.Lexeme).Emit()
		return call
	}
	call.Decl = fn
	call.ResolvedType = fn.ReturnType

	if len(args) != len(fn.Params) {
		a.diags.Report(a.src, nameWord.Loc(), diag.ArgCountMismatch, name).
			Range(nameWord.Lexeme).Emit()
		return call
	}
	for i, arg := range args {
		want := ast.Int
		if fn.Params[i].IsArray {
			want = ast.IntArray
		}
		got := arg.Typ()
		if got == ast.ErrorType {
			continue
		}
		if got != want {
			a.diags.Report(a.src, nameWord.Loc(), diag.ArgTypeMismatch, name).
				Range(arg.Range()).Emit()
		}
	}
	return call
}

// ActOnAssign checks that the left-hand side is an int VarRef and the
// right-hand side is int, then builds the assignment node.
func (a *Analyzer) ActOnAssign(lhs *ast.VarRef, rhs ast.Expr) *ast.BinaryExpr {
	rng := source.Range{Begin: lhs.Range().Begin, Len: int(rhs.Range().End() - lhs.Range().Begin)}
	expr := ast.NewBinaryExpr(rng, ast.OpAssign, lhs, rhs)

	lt, rt := lhs.Typ(), rhs.Typ()
	if lt == ast.ErrorType || rt == ast.ErrorType {
		return expr
	}
	if lt != ast.Int {
		a.diags.Report(a.src, lhs.Range().Begin, diag.AssignToNonLvalue).
			Range(lhs.Range()).Emit()
		return expr
	}
	if rt != ast.Int {
		if name, ok := arrayName(rhs); ok {
			a.diags.Report(a.src, rhs.Range().Begin, diag.ArrayUsedAsScalar, name).
				Range(rhs.Range()).Emit()
			return expr
		}
		a.diags.Report(a.src, rhs.Range().Begin, diag.AssignTypeMismatch).
			Range(rhs.Range()).Emit()
		return expr
	}
	expr.ResolvedType = ast.Int
	return expr
}

// ActOnBinaryExpr checks that both operands of an arithmetic or relational
// operator are int, then builds the node. Arithmetic yields int;
// relational yields int (0 or 1).
func (a *Analyzer) ActOnBinaryExpr(op ast.BinaryOp, lhs, rhs ast.Expr) *ast.BinaryExpr {
	rng := source.Range{Begin: lhs.Range().Begin, Len: int(rhs.Range().End() - lhs.Range().Begin)}
	expr := ast.NewBinaryExpr(rng, op, lhs, rhs)

	lt, rt := lhs.Typ(), rhs.Typ()
	if lt == ast.ErrorType || rt == ast.ErrorType {
		return expr
	}
	if lt != ast.Int || rt != ast.Int {
		if name, ok := arrayName(lhs); ok {
			a.diags.Report(a.src, lhs.Range().Begin, diag.ArrayUsedAsScalar, name).
				Range(lhs.Range()).Emit()
			return expr
		}
		if name, ok := arrayName(rhs); ok {
			a.diags.Report(a.src, rhs.Range().Begin, diag.ArrayUsedAsScalar, name).
				Range(rhs.Range()).Emit()
			return expr
		}
		a.diags.Report(a.src, lhs.Range().Begin, diag.ArgTypeMismatch, op.String()).
			Range(rng).Emit()
		return expr
	}
	expr.ResolvedType = ast.Int
	return expr
}
