package parser

import (
	"os"
	"strings"
	"testing"

	"github.com/cjlcarvalho/cminus/pkg/ast"
	"github.com/cjlcarvalho/cminus/pkg/diag"
	"github.com/cjlcarvalho/cminus/pkg/source"
	"gopkg.in/yaml.v3"
)

func parse(t *testing.T, text string) (*ast.Program, *diag.Bus) {
	t.Helper()
	src := source.New("t.cm", text)
	bus := &diag.Bus{}
	prog := New(src, bus).Parse()
	return prog, bus
}

func TestParsesMinimalMain(t *testing.T) {
	prog, bus := parse(t, "int main(void) { return 0; }")
	if bus.HasErrors() {
		t.Fatalf("unexpected errors")
	}
	if len(prog.Decls) != 1 {
		t.Fatalf("got %d decls, want 1", len(prog.Decls))
	}
	fn, ok := prog.Decls[0].(*ast.FunDecl)
	if !ok {
		t.Fatalf("decl is %T, want *ast.FunDecl", prog.Decls[0])
	}
	if fn.Name != "main" || fn.ReturnType != ast.Int {
		t.Fatalf("got %+v", fn)
	}
}

func TestDistinguishesVarFromFunDeclaration(t *testing.T) {
	prog, bus := parse(t, "int x; int f(void) { return 0; }")
	if bus.HasErrors() {
		t.Fatalf("unexpected errors")
	}
	if _, ok := prog.Decls[0].(*ast.VarDecl); !ok {
		t.Fatalf("decl[0] is %T, want *ast.VarDecl", prog.Decls[0])
	}
	if _, ok := prog.Decls[1].(*ast.FunDecl); !ok {
		t.Fatalf("decl[1] is %T, want *ast.FunDecl", prog.Decls[1])
	}
}

func TestMultipleParams(t *testing.T) {
	prog, bus := parse(t, "int f(int a, int b) { return a; }")
	if bus.HasErrors() {
		t.Fatalf("unexpected errors")
	}
	fn := prog.Decls[0].(*ast.FunDecl)
	if len(fn.Params) != 2 {
		t.Fatalf("got %d params, want 2", len(fn.Params))
	}
}

func TestArrayParameterSyntax(t *testing.T) {
	prog, bus := parse(t, "void f(int a[]) { return; }")
	if bus.HasErrors() {
		t.Fatalf("unexpected errors")
	}
	fn := prog.Decls[0].(*ast.FunDecl)
	if !fn.Params[0].IsArray {
		t.Fatalf("expected array parameter")
	}
}

func TestSubscriptArithmeticIsNotMisparsedAsAssignment(t *testing.T) {
	// x[0] + 1 must not be mistaken for an assignment target just because
	// the expression starts with "ID [".
	prog, bus := parse(t, "int x[3]; int f(void) { return x[0] + 1; }")
	if bus.HasErrors() {
		t.Fatalf("unexpected errors: %v", bus)
	}
	fn := prog.Decls[1].(*ast.FunDecl)
	ret := fn.Body.Body[0].(*ast.ReturnStmt)
	bin, ok := ret.Expr.(*ast.BinaryExpr)
	if !ok {
		t.Fatalf("return expr is %T, want *ast.BinaryExpr", ret.Expr)
	}
	if bin.Op != ast.OpAdd {
		t.Fatalf("got op %v, want OpAdd", bin.Op)
	}
	if _, ok := bin.Lhs.(*ast.VarRef); !ok {
		t.Fatalf("lhs is %T, want *ast.VarRef", bin.Lhs)
	}
}

func TestAssignmentToSubscriptTarget(t *testing.T) {
	prog, bus := parse(t, "int x[3]; int f(void) { x[0] = 1; return 0; }")
	if bus.HasErrors() {
		t.Fatalf("unexpected errors")
	}
	fn := prog.Decls[1].(*ast.FunDecl)
	stmt := fn.Body.Body[0].(*ast.ExprStmt)
	assign, ok := stmt.Expr.(*ast.BinaryExpr)
	if !ok || assign.Op != ast.OpAssign {
		t.Fatalf("got %#v, want an assignment", stmt.Expr)
	}
}

func TestIfElseAndWhile(t *testing.T) {
	text := `
		int f(int n) {
			while (n < 10) {
				if (n == 5)
					n = n + 1;
				else
					n = n + 2;
			}
			return n;
		}
	`
	_, bus := parse(t, text)
	if bus.HasErrors() {
		t.Fatalf("unexpected errors")
	}
}

func TestCallWithArguments(t *testing.T) {
	text := "int g(int a, int b) { return a + b; } int f(void) { return g(1, 2); }"
	prog, bus := parse(t, text)
	if bus.HasErrors() {
		t.Fatalf("unexpected errors")
	}
	f := prog.Decls[1].(*ast.FunDecl)
	ret := f.Body.Body[0].(*ast.ReturnStmt)
	call, ok := ret.Expr.(*ast.FunCall)
	if !ok || len(call.Args) != 2 {
		t.Fatalf("got %#v", ret.Expr)
	}
}

func TestMissingSemicolonReportsExpectedToken(t *testing.T) {
	_, bus := parse(t, "int x")
	if !bus.HasErrors() {
		t.Fatalf("expected a syntax error")
	}
}

// paramSpec describes one expected parameter in a declSpec from parse.yaml.
type paramSpec struct {
	Name    string `yaml:"name"`
	IsArray bool   `yaml:"is_array"`
}

// declSpec describes one expected top-level declaration from parse.yaml.
type declSpec struct {
	Kind       string      `yaml:"kind"`
	Name       string      `yaml:"name"`
	ReturnType string      `yaml:"return_type,omitempty"`
	ArraySize  int         `yaml:"array_size,omitempty"`
	Params     []paramSpec `yaml:"params,omitempty"`
}

// parseTestCase is one entry in parse.yaml's tests list.
type parseTestCase struct {
	Name  string     `yaml:"name"`
	Input string     `yaml:"input"`
	Decls []declSpec `yaml:"decls"`
}

// parseTestFile mirrors parse.yaml's top-level shape.
type parseTestFile struct {
	Tests []parseTestCase `yaml:"tests"`
}

func TestParseYAMLFixtures(t *testing.T) {
	data, err := os.ReadFile("../../testdata/parse.yaml")
	if err != nil {
		t.Fatalf("failed to read parse.yaml: %v", err)
	}

	var file parseTestFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		t.Fatalf("failed to parse parse.yaml: %v", err)
	}

	for _, tc := range file.Tests {
		t.Run(tc.Name, func(t *testing.T) {
			prog, bus := parse(t, tc.Input)
			if bus.HasErrors() {
				t.Fatalf("unexpected parse errors for %q", tc.Input)
			}
			if len(prog.Decls) != len(tc.Decls) {
				t.Fatalf("got %d decls, want %d", len(prog.Decls), len(tc.Decls))
			}
			for i, want := range tc.Decls {
				checkDecl(t, prog.Decls[i], want)
			}
		})
	}
}

func checkDecl(t *testing.T, got ast.Decl, want declSpec) {
	t.Helper()
	switch want.Kind {
	case "VarDecl":
		v, ok := got.(*ast.VarDecl)
		if !ok {
			t.Fatalf("decl is %T, want *ast.VarDecl", got)
		}
		if v.Name != want.Name {
			t.Fatalf("got name %q, want %q", v.Name, want.Name)
		}
		if want.ArraySize != 0 && v.ArraySize != want.ArraySize {
			t.Fatalf("got array size %d, want %d", v.ArraySize, want.ArraySize)
		}
	case "FunDecl":
		f, ok := got.(*ast.FunDecl)
		if !ok {
			t.Fatalf("decl is %T, want *ast.FunDecl", got)
		}
		if f.Name != want.Name {
			t.Fatalf("got name %q, want %q", f.Name, want.Name)
		}
		if want.ReturnType != "" && f.ReturnType.String() != want.ReturnType {
			t.Fatalf("got return type %v, want %s", f.ReturnType, want.ReturnType)
		}
		if want.Params != nil {
			if len(f.Params) != len(want.Params) {
				t.Fatalf("got %d params, want %d", len(f.Params), len(want.Params))
			}
			for i, p := range want.Params {
				if f.Params[i].Name != p.Name {
					t.Fatalf("param %d: got name %q, want %q", i, f.Params[i].Name, p.Name)
				}
				if f.Params[i].IsArray != p.IsArray {
					t.Fatalf("param %d: got is_array %v, want %v", i, f.Params[i].IsArray, p.IsArray)
				}
			}
		}
	default:
		t.Fatalf("unknown decl kind %q in fixture", want.Kind)
	}
}

func TestOutputIsReportedOnStderrForm(t *testing.T) {
	var buf strings.Builder
	src := source.New("t.cm", "int x")
	bus := &diag.Bus{}
	bus.PushHandler(diag.NewTerminalHandler(&buf))
	New(src, bus).Parse()
	if !strings.Contains(buf.String(), "t.cm:1:") {
		t.Fatalf("expected terminal-formatted diagnostic, got %q", buf.String())
	}
}
