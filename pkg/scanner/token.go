package scanner

import "github.com/cjlcarvalho/cminus/pkg/source"

// Category classifies a scanned word.
type Category int

const (
	Identifier Category = iota
	Number

	KwElse
	KwIf
	KwInt
	KwReturn
	KwVoid
	KwWhile

	Plus
	Minus
	Star
	Slash
	Less
	LessEqual
	Greater
	GreaterEqual
	Equal
	NotEqual
	Assign

	Semicolon
	Comma
	LParen
	RParen
	LBracket
	RBracket
	LBrace
	RBrace

	EOF
)

var names = map[Category]string{
	Identifier: "identifier",
	Number:     "number",

	KwElse:   "'else'",
	KwIf:     "'if'",
	KwInt:    "'int'",
	KwReturn: "'return'",
	KwVoid:   "'void'",
	KwWhile:  "'while'",

	Plus:         "'+'",
	Minus:        "'-'",
	Star:         "'*'",
	Slash:        "'/'",
	Less:         "'<'",
	LessEqual:    "'<='",
	Greater:      "'>'",
	GreaterEqual: "'>='",
	Equal:        "'=='",
	NotEqual:     "'!='",
	Assign:       "'='",

	Semicolon: "';'",
	Comma:     "','",
	LParen:    "'('",
	RParen:    "')'",
	LBracket:  "'['",
	RBracket:  "']'",
	LBrace:    "'{'",
	RBrace:    "'}'",

	EOF: "end of file",
}

// String renders the category the way a diagnostic wants it reported, e.g.
// "'if'" or "identifier".
func (c Category) String() string {
	if s, ok := names[c]; ok {
		return s
	}
	return "?"
}

// keywords maps a lexeme to its reserved-word category.
var keywords = map[string]Category{
	"else":   KwElse,
	"if":     KwIf,
	"int":    KwInt,
	"return": KwReturn,
	"void":   KwVoid,
	"while":  KwWhile,
}

// Word is a single classified lexeme.
type Word struct {
	Category Category
	Lexeme   source.Range
}

// Loc returns the starting location of the word.
func (w Word) Loc() source.Pos { return w.Lexeme.Begin }

// IsAnyOf reports whether w's category matches any of cats.
func (w Word) IsAnyOf(cats ...Category) bool {
	for _, c := range cats {
		if w.Category == c {
			return true
		}
	}
	return false
}
