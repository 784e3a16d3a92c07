package sema

import (
	"testing"

	"github.com/cjlcarvalho/cminus/pkg/ast"
	"github.com/cjlcarvalho/cminus/pkg/diag"
	"github.com/cjlcarvalho/cminus/pkg/scanner"
	"github.com/cjlcarvalho/cminus/pkg/source"
)

// word builds a scanner.Word covering needle's first occurrence in text, for
// tests that only care about the identifier an action resolves.
func word(text, needle string, cat scanner.Category) scanner.Word {
	i := indexOf(text, needle)
	return scanner.Word{Category: cat, Lexeme: source.Range{Begin: source.Pos(i), Len: len(needle)}}
}

func indexOf(text, needle string) int {
	for i := 0; i+len(needle) <= len(text); i++ {
		if text[i:i+len(needle)] == needle {
			return i
		}
	}
	return -1
}

func newAnalyzer(text string) (*Analyzer, *source.File, *diag.Bus) {
	src := source.New("t.cm", text)
	bus := &diag.Bus{}
	return New(src, bus), src, bus
}

func TestBuiltinsAreInstalledInGlobalScope(t *testing.T) {
	a, _, _ := newAnalyzer("")
	if _, ok := a.top.lookup("input"); !ok {
		t.Fatal("input not installed")
	}
	if _, ok := a.top.lookup("output"); !ok {
		t.Fatal("output not installed")
	}
}

func TestVarDeclRejectsVoid(t *testing.T) {
	text := "void x;"
	a, _, bus := newAnalyzer(text)
	typeWord := word(text, "void", scanner.KwVoid)
	nameWord := word(text, "x", scanner.Identifier)

	decl := a.ActOnVarDecl(source.Range{Begin: 0, Len: len(text) - 1}, typeWord, nameWord, nil, ast.Global)

	if decl.Type != ast.ErrorType {
		t.Fatalf("got type %v, want ErrorType", decl.Type)
	}
	if !bus.HasErrors() {
		t.Fatal("expected a diagnostic for void variable")
	}
}

func TestVarDeclReportsRedefinition(t *testing.T) {
	text := "int x; int x;"
	a, _, bus := newAnalyzer(text)
	typeWord := word(text, "int", scanner.KwInt)
	nameWord := word(text, "x", scanner.Identifier)

	a.ActOnVarDecl(source.Range{}, typeWord, nameWord, nil, ast.Global)
	if bus.HasErrors() {
		t.Fatal("first declaration should not error")
	}
	a.ActOnVarDecl(source.Range{}, typeWord, nameWord, nil, ast.Global)
	if !bus.HasErrors() {
		t.Fatal("second declaration of the same name should report redefinition")
	}
}

func TestVarRefUndeclaredIdentifier(t *testing.T) {
	text := "y"
	a, _, bus := newAnalyzer(text)
	nameWord := word(text, "y", scanner.Identifier)

	ref := a.ActOnVar(nameWord.Lexeme, nameWord, nil)
	if ref.Typ() != ast.ErrorType {
		t.Fatalf("got %v, want ErrorType", ref.Typ())
	}
	if !bus.HasErrors() {
		t.Fatal("expected undeclared identifier diagnostic")
	}
}

func TestVarRefScalarUsedAsArray(t *testing.T) {
	text := "int x; x[0]"
	a, _, bus := newAnalyzer(text)
	typeWord := word(text, "int", scanner.KwInt)
	nameWord := word(text, "x", scanner.Identifier)
	a.ActOnVarDecl(source.Range{}, typeWord, nameWord, nil, ast.Global)

	idx := a.ActOnNumber(word(text, "0", scanner.Number))
	useWord := scanner.Word{Category: scanner.Identifier, Lexeme: source.Range{Begin: source.Pos(indexOf(text, "x[0]")), Len: 1}}
	ref := a.ActOnVar(useWord.Lexeme, useWord, idx)

	if ref.Typ() != ast.ErrorType {
		t.Fatalf("got %v, want ErrorType", ref.Typ())
	}
	if !bus.HasErrors() {
		t.Fatal("expected scalar_used_as_array diagnostic")
	}
}

func TestCallArityMismatch(t *testing.T) {
	text := "int f(int a) { return a; } f()"
	a, _, bus := newAnalyzer(text)

	retWord := word(text, "int", scanner.KwInt)
	nameWord := word(text, "f", scanner.Identifier)
	fn := a.ActOnFunDeclStart(source.Range{}, retWord, nameWord)
	a.EnterScope(Function)
	paramWord := word(text, "a", scanner.Identifier)
	param := a.ActOnParamDecl(paramWord.Lexeme, paramWord, false)
	a.ActOnFunDeclEnd(fn, []*ast.ParmDecl{param}, &ast.CompoundStmt{})
	a.ExitScope()

	callWord := scanner.Word{Category: scanner.Identifier, Lexeme: source.Range{Begin: source.Pos(indexOf(text, "f()")), Len: 1}}
	a.ActOnCall(callWord.Lexeme, callWord, nil)

	if !bus.HasErrors() {
		t.Fatal("expected arg_count_mismatch diagnostic")
	}
}

func TestAssignRejectsArrayLhs(t *testing.T) {
	text := "int x[3]; x = 1;"
	a, _, bus := newAnalyzer(text)
	typeWord := word(text, "int", scanner.KwInt)
	nameWord := word(text, "x", scanner.Identifier)
	size := a.ActOnNumber(word(text, "3", scanner.Number))
	a.ActOnVarDecl(source.Range{}, typeWord, nameWord, size, ast.Global)

	lhsWord := scanner.Word{Category: scanner.Identifier, Lexeme: source.Range{Begin: source.Pos(indexOf(text, "x = 1")), Len: 1}}
	lhs := a.ActOnVar(lhsWord.Lexeme, lhsWord, nil)
	rhs := a.ActOnNumber(word(text, "1", scanner.Number))

	a.ActOnAssign(lhs, rhs)
	if !bus.HasErrors() {
		t.Fatal("expected assign_to_non_lvalue diagnostic for an array target")
	}
}

func TestBinaryExprRejectsArrayOperand(t *testing.T) {
	text := "int x[3]; x + 1"
	a, _, bus := newAnalyzer(text)
	typeWord := word(text, "int", scanner.KwInt)
	nameWord := word(text, "x", scanner.Identifier)
	size := a.ActOnNumber(word(text, "3", scanner.Number))
	a.ActOnVarDecl(source.Range{}, typeWord, nameWord, size, ast.Global)

	useWord := scanner.Word{Category: scanner.Identifier, Lexeme: source.Range{Begin: source.Pos(indexOf(text, "x + 1")), Len: 1}}
	lhs := a.ActOnVar(useWord.Lexeme, useWord, nil)
	rhs := a.ActOnNumber(word(text, "1", scanner.Number))

	expr := a.ActOnBinaryExpr(ast.OpAdd, lhs, rhs)
	if expr.Typ() != ast.ErrorType {
		t.Fatalf("got %v, want ErrorType", expr.Typ())
	}
	if !bus.HasErrors() {
		t.Fatal("expected a diagnostic for an array operand in arithmetic")
	}
}

func TestAssignRejectsVoidRhsAsAssignTypeMismatch(t *testing.T) {
	text := "int x; x = output(1);"
	a, _, bus := newAnalyzer(text)
	var got diag.Code
	bus.PushHandler(func(d *diag.Diagnostic) bool { got = d.Code; return true })

	xType := word(text, "int", scanner.KwInt)
	xName := word(text, "x", scanner.Identifier)
	a.ActOnVarDecl(source.Range{}, xType, xName, nil, ast.Global)

	lhsWord := scanner.Word{Category: scanner.Identifier, Lexeme: source.Range{Begin: source.Pos(indexOf(text, "x = output")), Len: 1}}
	lhs := a.ActOnVar(lhsWord.Lexeme, lhsWord, nil)

	callWord := scanner.Word{Category: scanner.Identifier, Lexeme: source.Range{Begin: source.Pos(indexOf(text, "output(1)")), Len: len("output")}}
	arg := a.ActOnNumber(word(text, "1", scanner.Number))
	rhs := a.ActOnCall(callWord.Lexeme, callWord, []ast.Expr{arg})

	a.ActOnAssign(lhs, rhs)
	if got != diag.AssignTypeMismatch {
		t.Fatalf("got diagnostic code %v, want AssignTypeMismatch", got)
	}
}

func TestBinaryExprRejectsArrayOperandAsArrayUsedAsScalar(t *testing.T) {
	text := "int x[3]; x + 1"
	a, _, bus := newAnalyzer(text)
	var got diag.Code
	bus.PushHandler(func(d *diag.Diagnostic) bool { got = d.Code; return true })

	typeWord := word(text, "int", scanner.KwInt)
	nameWord := word(text, "x", scanner.Identifier)
	size := a.ActOnNumber(word(text, "3", scanner.Number))
	a.ActOnVarDecl(source.Range{}, typeWord, nameWord, size, ast.Global)

	useWord := scanner.Word{Category: scanner.Identifier, Lexeme: source.Range{Begin: source.Pos(indexOf(text, "x + 1")), Len: 1}}
	lhs := a.ActOnVar(useWord.Lexeme, useWord, nil)
	rhs := a.ActOnNumber(word(text, "1", scanner.Number))

	a.ActOnBinaryExpr(ast.OpAdd, lhs, rhs)
	if got != diag.ArrayUsedAsScalar {
		t.Fatalf("got diagnostic code %v, want ArrayUsedAsScalar", got)
	}
}

func TestAssignRejectsArrayRhsAsArrayUsedAsScalar(t *testing.T) {
	text := "int a[3]; int x; x = a;"
	a, _, bus := newAnalyzer(text)
	var got diag.Code
	bus.PushHandler(func(d *diag.Diagnostic) bool { got = d.Code; return true })

	arrType := word(text, "int", scanner.KwInt)
	arrName := word(text, "a", scanner.Identifier)
	arrSize := a.ActOnNumber(word(text, "3", scanner.Number))
	a.ActOnVarDecl(source.Range{}, arrType, arrName, arrSize, ast.Global)

	xType := scanner.Word{Category: scanner.KwInt, Lexeme: source.Range{Begin: source.Pos(indexOf(text, "int x")), Len: 3}}
	xName := scanner.Word{Category: scanner.Identifier, Lexeme: source.Range{Begin: source.Pos(indexOf(text, "x;")), Len: 1}}
	a.ActOnVarDecl(source.Range{}, xType, xName, nil, ast.Global)

	lhsWord := scanner.Word{Category: scanner.Identifier, Lexeme: source.Range{Begin: source.Pos(indexOf(text, "x = a")), Len: 1}}
	lhs := a.ActOnVar(lhsWord.Lexeme, lhsWord, nil)
	rhsWord := scanner.Word{Category: scanner.Identifier, Lexeme: source.Range{Begin: source.Pos(indexOf(text, "= a")) + 2, Len: 1}}
	rhs := a.ActOnVar(rhsWord.Lexeme, rhsWord, nil)

	a.ActOnAssign(lhs, rhs)
	if got != diag.ArrayUsedAsScalar {
		t.Fatalf("got diagnostic code %v, want ArrayUsedAsScalar", got)
	}
}

func TestReturnRejectsArrayAsArrayUsedAsScalar(t *testing.T) {
	text := "int a[3]; int f(void) { return a; }"
	a, _, bus := newAnalyzer(text)
	var got diag.Code
	bus.PushHandler(func(d *diag.Diagnostic) bool { got = d.Code; return true })

	arrType := word(text, "int", scanner.KwInt)
	arrName := word(text, "a", scanner.Identifier)
	arrSize := a.ActOnNumber(word(text, "3", scanner.Number))
	a.ActOnVarDecl(source.Range{}, arrType, arrName, arrSize, ast.Global)

	retWord := scanner.Word{Category: scanner.KwInt, Lexeme: source.Range{Begin: source.Pos(indexOf(text, "int f")), Len: 3}}
	nameWord := word(text, "f", scanner.Identifier)
	fn := a.ActOnFunDeclStart(source.Range{}, retWord, nameWord)
	a.EnterScope(Function)

	exprWord := scanner.Word{Category: scanner.Identifier, Lexeme: source.Range{Begin: source.Pos(indexOf(text, "return a")) + 7, Len: 1}}
	value := a.ActOnVar(exprWord.Lexeme, exprWord, nil)
	kw := word(text, "return", scanner.KwReturn)
	a.ActOnReturnStmt(source.Range{}, kw.Loc(), value)

	a.ActOnFunDeclEnd(fn, nil, &ast.CompoundStmt{})
	a.ExitScope()

	if got != diag.ArrayUsedAsScalar {
		t.Fatalf("got diagnostic code %v, want ArrayUsedAsScalar", got)
	}
}

func TestReturnTypeMismatchVoidFunctionWithValue(t *testing.T) {
	text := "void f(void) { return 1; }"
	a, _, bus := newAnalyzer(text)
	retWord := word(text, "void", scanner.KwVoid)
	nameWord := word(text, "f", scanner.Identifier)
	fn := a.ActOnFunDeclStart(source.Range{}, retWord, nameWord)
	a.EnterScope(Function)

	value := a.ActOnNumber(word(text, "1", scanner.Number))
	kw := word(text, "return", scanner.KwReturn)
	a.ActOnReturnStmt(source.Range{}, kw.Loc(), value)

	a.ActOnFunDeclEnd(fn, nil, &ast.CompoundStmt{})
	a.ExitScope()

	if !bus.HasErrors() {
		t.Fatal("expected return_type_mismatch diagnostic")
	}
}
