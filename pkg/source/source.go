// Package source owns immutable source text and maps byte offsets to
// line/column positions.
package source

import (
	"sort"
	"strings"
)

// Pos is a byte offset into a File's text, cheap to copy.
type Pos int

// Range addresses a lexeme: the Len bytes starting at Begin.
type Range struct {
	Begin Pos
	Len   int
}

// End returns the offset one past the last byte of the range.
func (r Range) End() Pos { return r.Begin + Pos(r.Len) }

// Position is a resolved, human-facing location. Line and Column are 1-based;
// Column counts bytes, not runes.
type Position struct {
	Line   int
	Column int
}

// File owns the text of a single translation unit. The text is stored with a
// trailing NUL sentinel so scanners may peek one byte past any position
// without bounds checking.
type File struct {
	Name string
	text string // includes trailing '\x00'
	// lineStarts[i] is the offset of the first byte of line i+1.
	lineStarts []Pos
}

// New builds a File from source text, appending the NUL sentinel and
// indexing line starts.
func New(name, text string) *File {
	f := &File{
		Name: name,
		text: text + "\x00",
	}
	f.lineStarts = []Pos{0}
	for i := 0; i < len(text); i++ {
		if text[i] == '\n' {
			f.lineStarts = append(f.lineStarts, Pos(i+1))
		}
	}
	return f
}

// Text returns the source text including the trailing NUL sentinel.
func (f *File) Text() string { return f.text }

// Len returns the length of the source text, excluding the sentinel.
func (f *File) Len() int { return len(f.text) - 1 }

// At returns the byte at p, or 0 if p is at or past the end of the text.
func (f *File) At(p Pos) byte {
	if int(p) < 0 || int(p) >= len(f.text) {
		return 0
	}
	return f.text[p]
}

// Lexeme returns the text addressed by r.
func (f *File) Lexeme(r Range) string {
	begin, end := int(r.Begin), int(r.End())
	if begin < 0 {
		begin = 0
	}
	if end > len(f.text)-1 {
		end = len(f.text) - 1
	}
	if begin > end {
		return ""
	}
	return f.text[begin:end]
}

// Position resolves p to a 1-based (line, column) pair in logarithmic time
// via binary search over the line-start table.
func (f *File) Position(p Pos) Position {
	line := sort.Search(len(f.lineStarts), func(i int) bool {
		return f.lineStarts[i] > p
	})
	lineStart := f.lineStarts[line-1]
	return Position{Line: line, Column: int(p-lineStart) + 1}
}

// LineText returns the text of the given 1-based line number, without its
// trailing newline.
func (f *File) LineText(line int) string {
	if line < 1 || line > len(f.lineStarts) {
		return ""
	}
	begin := int(f.lineStarts[line-1])
	end := len(f.text) - 1
	if line < len(f.lineStarts) {
		end = int(f.lineStarts[line])
	}
	text := f.text[begin:end]
	return strings.TrimRight(text, "\n\r\x00")
}
