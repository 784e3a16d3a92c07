// Package compiler wires together the scanner, parser, semantic analyzer,
// frame allocator, and code generator into a single entry point: source
// text in, MIPS assembly text out, plus whatever diagnostics came up
// along the way.
package compiler

import (
	"strings"

	"github.com/cjlcarvalho/cminus/pkg/ast"
	"github.com/cjlcarvalho/cminus/pkg/codegen"
	"github.com/cjlcarvalho/cminus/pkg/diag"
	"github.com/cjlcarvalho/cminus/pkg/frame"
	"github.com/cjlcarvalho/cminus/pkg/mips"
	"github.com/cjlcarvalho/cminus/pkg/parser"
	"github.com/cjlcarvalho/cminus/pkg/source"
)

// Result holds everything a single compilation produced.
type Result struct {
	// Program is the parsed and checked AST, or nil if parsing bailed out
	// on the first syntax error.
	Program *ast.Program
	// Assembly is the generated MIPS program's text. Empty if diagnostics
	// reported any error.
	Assembly string
	Diags    *diag.Bus
}

// Compile runs the full pipeline over text, named name for diagnostics.
// Parsing and semantic analysis share a single pass (the parser drives the
// analyzer's ActOn* methods as it reduces the grammar); the frame
// allocator and code generator only run if that pass reported no errors.
func Compile(name, text string) Result {
	src := source.New(name, text)
	bus := diag.NewBus()

	prog := parser.New(src, bus).Parse()
	if bus.HasErrors() {
		return Result{Program: prog, Diags: bus}
	}

	for _, d := range prog.Decls {
		if fn, ok := d.(*ast.FunDecl); ok {
			frame.Compute(fn)
		}
	}

	asmProg := codegen.Generate(prog)

	var out strings.Builder
	mips.NewPrinter(&out).PrintProgram(asmProg)

	return Result{Program: prog, Assembly: out.String(), Diags: bus}
}
