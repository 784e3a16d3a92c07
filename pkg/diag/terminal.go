package diag

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/cjlcarvalho/cminus/pkg/source"
)

// NewTerminalHandler builds a Handler that formats each diagnostic as
// "file:line:col: error: message" to w, underlining every attached range
// beneath a copy of its source line.
func NewTerminalHandler(w io.Writer) Handler {
	return func(d *Diagnostic) bool {
		pos := d.Source.Position(d.Loc)
		fmt.Fprintf(w, "%s:%d:%d: %s: %s\n", d.Source.Name, pos.Line, pos.Column, d.Severity, d.Message())
		for _, r := range d.Ranges {
			printUnderline(w, d.Source, r)
		}
		return true
	}
}

// DefaultHandler is the terminal handler writing to standard error.
func DefaultHandler() Handler { return NewTerminalHandler(os.Stderr) }

func printUnderline(w io.Writer, src *source.File, r source.Range) {
	pos := src.Position(r.Begin)
	line := src.LineText(pos.Line)
	length := r.Len
	if length < 1 {
		length = 1
	}
	fmt.Fprintf(w, "    %s\n", line)
	fmt.Fprintf(w, "    %s%s\n", strings.Repeat(" ", pos.Column-1), strings.Repeat("^", length))
}
