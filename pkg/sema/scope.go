package sema

import "github.com/cjlcarvalho/cminus/pkg/ast"

// Kind distinguishes why a scope was pushed. A function's parameters and
// its body are a single visible lexical region — a function's parameters
// stay in scope for the whole body — so both are represented here by the
// single Function kind; only nested blocks push a further Compound scope.
type Kind int

const (
	Global Kind = iota
	Function
	Compound
)

// scope maps names to declarations visible at one lexical level. Lookup
// walks outward through parent.
type scope struct {
	kind    Kind
	parent  *scope
	symbols map[string]ast.Decl
}

func newScope(kind Kind, parent *scope) *scope {
	return &scope{kind: kind, parent: parent, symbols: make(map[string]ast.Decl)}
}

// insert adds name to this scope only. It reports whether the name was
// already present in this exact scope (a redefinition); shadowing an outer
// scope's name is always allowed.
func (s *scope) insert(name string, decl ast.Decl) (redefined bool) {
	if _, exists := s.symbols[name]; exists {
		return true
	}
	s.symbols[name] = decl
	return false
}

// lookup walks outward from s and returns the first matching declaration.
func (s *scope) lookup(name string) (ast.Decl, bool) {
	for cur := s; cur != nil; cur = cur.parent {
		if d, ok := cur.symbols[name]; ok {
			return d, true
		}
	}
	return nil, false
}
