// Package diag implements the diagnostic bus shared by every compilation
// stage: a structured diagnostic type, a builder that accumulates arguments
// and highlight ranges before committing exactly once, and a handler chain
// that the bus dispatches to.
package diag

import (
	"fmt"
	"strings"

	"github.com/cjlcarvalho/cminus/pkg/source"
)

// Severity classifies a diagnostic. All codes currently defined are errors;
// the type exists so a future warning-level code has somewhere to live.
type Severity int

const (
	Error Severity = iota
)

func (s Severity) String() string {
	switch s {
	case Error:
		return "error"
	default:
		return "unknown"
	}
}

// Code enumerates every diagnostic this compiler can emit, grouped by the
// stage that raises it.
type Code int

const (
	// Lexer diagnostics.
	BadNumber Code = iota
	BadChar
	UnclosedComment

	// Parser diagnostics.
	ExpectedToken
	ExpectedType
	ExpectedExpression
	ExpectedStatement
	NumberTooBig

	// Semantic diagnostics.
	Redefinition
	UndeclaredIdentifier
	FunIsNotAFun
	VarIsNotAVar
	VarCannotBeVoid
	ReturnTypeMismatch
	ArgCountMismatch
	ArgTypeMismatch
	ArrayUsedAsScalar
	ScalarUsedAsArray
	AssignToNonLvalue
	AssignTypeMismatch
	NotAFunctionCall
)

// templates holds the fixed message for each code, with %0, %1, ... standing
// in for positional arguments.
var templates = map[Code]string{
	BadNumber:       "invalid numeric literal",
	BadChar:         "unexpected character",
	UnclosedComment: "unterminated comment",

	ExpectedToken:       "expected %0",
	ExpectedType:        "expected a type specifier",
	ExpectedExpression:  "expected an expression",
	ExpectedStatement:   "expected a statement",
	NumberTooBig:        "integer literal is too large, value truncated",

	Redefinition:         "redefinition of '%0'",
	UndeclaredIdentifier: "use of undeclared identifier '%0'",
	FunIsNotAFun:         "'%0' is not a function",
	VarIsNotAVar:         "'%0' is not a variable",
	VarCannotBeVoid:      "variable '%0' declared void",
	ReturnTypeMismatch:   "return type does not match the enclosing function",
	ArgCountMismatch:     "wrong number of arguments to '%0'",
	ArgTypeMismatch:      "argument type mismatch in call to '%0'",
	ArrayUsedAsScalar:    "array '%0' used without a subscript",
	ScalarUsedAsArray:    "'%0' is not an array",
	AssignToNonLvalue:    "left-hand side of assignment is not assignable",
	AssignTypeMismatch:   "assigning to 'int' from incompatible type",
	NotAFunctionCall:     "called object '%0' is not a function",
}

// Diagnostic is a single, fully formed compiler diagnostic.
type Diagnostic struct {
	Source   *source.File
	Loc      source.Pos
	Code     Code
	Severity Severity
	Args     []any
	Ranges   []source.Range
}

// Message expands the diagnostic's template, substituting %N with Args[N].
func (d *Diagnostic) Message() string {
	tmpl := templates[d.Code]
	var b strings.Builder
	for i := 0; i < len(tmpl); i++ {
		if tmpl[i] == '%' && i+1 < len(tmpl) && tmpl[i+1] >= '0' && tmpl[i+1] <= '9' {
			idx := int(tmpl[i+1] - '0')
			if idx < len(d.Args) {
				fmt.Fprint(&b, d.Args[idx])
			}
			i++
			continue
		}
		b.WriteByte(tmpl[i])
	}
	return b.String()
}

// Handler receives an emitted diagnostic and reports whether the bus should
// continue forwarding it to the handler that was installed before this one.
type Handler func(*Diagnostic) bool

// Bus collects diagnostics and forwards each to an installed handler chain.
// Installing a handler pushes a new head; there is no explicit pop.
type Bus struct {
	current    Handler
	errorCount int
}

// NewBus creates a bus with the default terminal handler installed.
func NewBus() *Bus {
	b := &Bus{}
	b.PushHandler(DefaultHandler())
	return b
}

// PushHandler installs a new handler in front of the chain. If the new
// handler returns true, the previously installed handler also runs.
func (b *Bus) PushHandler(h Handler) {
	prev := b.current
	b.current = func(d *Diagnostic) bool {
		cont := h(d)
		if cont && prev != nil {
			return prev(d)
		}
		return cont
	}
}

// HasErrors reports whether any error-severity diagnostic has been emitted,
// independent of what the handler chain chose to do with it.
func (b *Bus) HasErrors() bool { return b.errorCount > 0 }

// Report starts building a diagnostic. The returned Builder must have Emit
// called on it exactly once to commit the diagnostic to the bus.
func (b *Bus) Report(src *source.File, loc source.Pos, code Code, args ...any) *Builder {
	return &Builder{
		bus: b,
		diag: &Diagnostic{
			Source:   src,
			Loc:      loc,
			Code:     code,
			Severity: Error,
			Args:     args,
		},
	}
}

func (b *Bus) emit(d *Diagnostic) {
	if d.Severity == Error {
		b.errorCount++
	}
	if b.current != nil {
		b.current(d)
	}
}

// Builder accumulates extra arguments and highlight ranges for a diagnostic
// before it is committed. It mirrors the commit-on-scope-exit discipline of
// the original diagnostic builder: nothing is visible on the bus until Emit
// runs, and Emit may only run once.
type Builder struct {
	bus       *Bus
	diag      *Diagnostic
	committed bool
}

// Arg appends a positional argument used to fill a %N slot in the message.
func (b *Builder) Arg(a any) *Builder {
	b.diag.Args = append(b.diag.Args, a)
	return b
}

// Range attaches a source range to be underlined when the diagnostic is
// printed.
func (b *Builder) Range(r source.Range) *Builder {
	b.diag.Ranges = append(b.diag.Ranges, r)
	return b
}

// Emit commits the diagnostic to the bus. Calling Emit more than once on the
// same builder is a programming error.
func (b *Builder) Emit() {
	if b.committed {
		panic("diag: Builder.Emit called twice")
	}
	b.committed = true
	b.bus.emit(b.diag)
}
