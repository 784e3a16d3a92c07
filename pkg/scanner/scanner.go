// Package scanner turns C- source text into a stream of classified Words.
// It is a single-pass scanner with one character of lookahead; lexical
// errors are reported but never halt scanning, which always terminates by
// returning an endless stream of EOF words.
package scanner

import (
	"strconv"

	"github.com/cjlcarvalho/cminus/pkg/diag"
	"github.com/cjlcarvalho/cminus/pkg/source"
)

// Scanner is a single-pass tokenizer over a source.File.
type Scanner struct {
	file  *source.File
	diags *diag.Bus
	pos   source.Pos
	ch    byte
}

// New creates a Scanner positioned at the start of file.
func New(file *source.File, diags *diag.Bus) *Scanner {
	s := &Scanner{file: file, diags: diags}
	s.ch = s.file.At(0)
	return s
}

func (s *Scanner) advance() {
	s.pos++
	s.ch = s.file.At(s.pos)
}

func (s *Scanner) peek() byte { return s.file.At(s.pos + 1) }

func isLetter(c byte) bool { return c >= 'a' && c <= 'z' || c >= 'A' && c <= 'Z' }
func isDigit(c byte) bool  { return c >= '0' && c <= '9' }
func isSpace(c byte) bool  { return c == ' ' || c == '\t' || c == '\r' || c == '\n' }

// NextWord returns the next word in the stream. On end of input it keeps
// returning an EOF word.
func (s *Scanner) NextWord() Word {
	s.skipTrivia()

	begin := s.pos

	switch {
	case s.ch == 0:
		return Word{Category: EOF, Lexeme: source.Range{Begin: begin, Len: 0}}

	case isDigit(s.ch):
		return s.lexNumber(begin)

	case isLetter(s.ch):
		return s.lexIdentifier(begin)

	default:
		return s.lexPunctuation(begin)
	}
}

// skipTrivia consumes whitespace and block comments, looping because a
// comment may be followed by more whitespace and vice versa.
func (s *Scanner) skipTrivia() {
	for {
		for isSpace(s.ch) {
			s.advance()
		}
		if s.ch == '/' && s.peek() == '*' {
			s.skipBlockComment()
			continue
		}
		break
	}
}

func (s *Scanner) skipBlockComment() {
	start := s.pos
	s.advance() // consume '/'
	s.advance() // consume '*'
	for {
		if s.ch == 0 {
			s.diags.Report(s.file, start, diag.UnclosedComment).
				Range(source.Range{Begin: start, Len: 2}).Emit()
			return
		}
		if s.ch == '*' && s.peek() == '/' {
			s.advance()
			s.advance()
			return
		}
		s.advance()
	}
}

func (s *Scanner) lexNumber(begin source.Pos) Word {
	for isDigit(s.ch) {
		s.advance()
	}
	if isLetter(s.ch) {
		// A digit run glued to a letter is not a valid number nor a valid
		// identifier; consume the whole malformed lexeme and report it once.
		for isLetter(s.ch) || isDigit(s.ch) {
			s.advance()
		}
		r := source.Range{Begin: begin, Len: int(s.pos - begin)}
		s.diags.Report(s.file, begin, diag.BadNumber).Range(r).Emit()
		return Word{Category: Number, Lexeme: r}
	}
	r := source.Range{Begin: begin, Len: int(s.pos - begin)}
	if _, err := strconv.ParseInt(s.file.Lexeme(r), 10, 32); err != nil {
		s.diags.Report(s.file, begin, diag.NumberTooBig).Range(r).Emit()
	}
	return Word{Category: Number, Lexeme: r}
}

func (s *Scanner) lexIdentifier(begin source.Pos) Word {
	for isLetter(s.ch) {
		s.advance()
	}
	r := source.Range{Begin: begin, Len: int(s.pos - begin)}
	category := Identifier
	if kw, ok := keywords[s.file.Lexeme(r)]; ok {
		category = kw
	}
	return Word{Category: category, Lexeme: r}
}

func (s *Scanner) lexPunctuation(begin source.Pos) Word {
	c := s.ch
	two := func(second byte, cat2, cat1 Category) Word {
		s.advance()
		if s.ch == second {
			s.advance()
			return Word{Category: cat2, Lexeme: source.Range{Begin: begin, Len: 2}}
		}
		return Word{Category: cat1, Lexeme: source.Range{Begin: begin, Len: 1}}
	}
	one := func(cat Category) Word {
		s.advance()
		return Word{Category: cat, Lexeme: source.Range{Begin: begin, Len: 1}}
	}

	switch c {
	case '+':
		return one(Plus)
	case '-':
		return one(Minus)
	case '*':
		return one(Star)
	case '/':
		return one(Slash)
	case '<':
		return two('=', LessEqual, Less)
	case '>':
		return two('=', GreaterEqual, Greater)
	case '=':
		return two('=', Equal, Assign)
	case '!':
		if s.peek() == '=' {
			s.advance()
			s.advance()
			return Word{Category: NotEqual, Lexeme: source.Range{Begin: begin, Len: 2}}
		}
		s.reportBadChar(begin)
		s.advance()
		return s.NextWord()
	case ';':
		return one(Semicolon)
	case ',':
		return one(Comma)
	case '(':
		return one(LParen)
	case ')':
		return one(RParen)
	case '[':
		return one(LBracket)
	case ']':
		return one(RBracket)
	case '{':
		return one(LBrace)
	case '}':
		return one(RBrace)
	default:
		s.reportBadChar(begin)
		s.advance()
		return s.NextWord()
	}
}

func (s *Scanner) reportBadChar(begin source.Pos) {
	s.diags.Report(s.file, begin, diag.BadChar).
		Range(source.Range{Begin: begin, Len: 1}).Emit()
}
