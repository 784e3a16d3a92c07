// Package parser implements the recursive-descent parser for C-: three
// words of lookahead, one function per grammar production, calling
// directly into the semantic analyzer at each reduction so the AST it
// builds comes back fully annotated.
package parser

import (
	"github.com/cjlcarvalho/cminus/pkg/ast"
	"github.com/cjlcarvalho/cminus/pkg/diag"
	"github.com/cjlcarvalho/cminus/pkg/scanner"
	"github.com/cjlcarvalho/cminus/pkg/sema"
	"github.com/cjlcarvalho/cminus/pkg/source"
)

// Parser consumes words from a Scanner and drives an Analyzer. There is no
// error recovery: the first syntax error abandons the parse.
type Parser struct {
	src  *source.File
	scan *scanner.Scanner
	sema *sema.Analyzer
	diag *diag.Bus

	// look is a 3-word lookahead window; look[0] is the current word.
	look [3]scanner.Word
}

// bailout unwinds the recursive descent back to Parse after the first
// syntax error. It is never handled anywhere but Parse's own recover.
type bailout struct{}

// New creates a Parser reading from src through scan, reporting to diags
// and building AST nodes through an Analyzer seeded with src and diags.
func New(src *source.File, diags *diag.Bus) *Parser {
	scan := scanner.New(src, diags)
	p := &Parser{src: src, scan: scan, sema: sema.New(src, diags), diag: diags}
	for i := range p.look {
		p.look[i] = scan.NextWord()
	}
	return p
}

func (p *Parser) cur() scanner.Word       { return p.look[0] }
func (p *Parser) peek(n int) scanner.Word { return p.look[n] }

func (p *Parser) advance() scanner.Word {
	w := p.look[0]
	p.look[0], p.look[1] = p.look[1], p.look[2]
	p.look[2] = p.scan.NextWord()
	return w
}

// expect consumes the current word if it matches cat, else reports
// expected_token and bails out.
func (p *Parser) expect(cat scanner.Category) scanner.Word {
	if p.cur().Category != cat {
		p.diag.Report(p.src, p.cur().Loc(), diag.ExpectedToken, cat.String()).
			Range(p.cur().Lexeme).Emit()
		panic(bailout{})
	}
	return p.advance()
}

func (p *Parser) errorf(code diag.Code, args ...any) {
	p.diag.Report(p.src, p.cur().Loc(), code, args...).Range(p.cur().Lexeme).Emit()
	panic(bailout{})
}

func rangeTo(begin source.Pos, end source.Pos) source.Range {
	return source.Range{Begin: begin, Len: int(end - begin)}
}

// Parse runs the whole grammar from program down, returning the finished
// program. On a syntax error it returns nil; the diagnostic is already on
// the bus.
func (p *Parser) Parse() *ast.Program {
	var prog *ast.Program
	func() {
		defer func() {
			if r := recover(); r != nil {
				if _, ok := r.(bailout); !ok {
					panic(r)
				}
			}
		}()
		prog = p.parseProgram()
	}()
	return prog
}

func (p *Parser) parseProgram() *ast.Program {
	begin := p.cur().Loc()
	prog := p.sema.ActOnProgramStart(source.Range{Begin: begin})
	for p.cur().Category != scanner.EOF {
		p.sema.ActOnTopLevelDecl(prog, p.parseDeclaration())
	}
	prog.Rng = rangeTo(begin, p.cur().Loc())
	return p.sema.ActOnProgramEnd(prog)
}

// isTypeSpecifier reports whether cat starts a type specifier.
func isTypeSpecifier(cat scanner.Category) bool {
	return cat == scanner.KwInt || cat == scanner.KwVoid
}

// parseDeclaration predicts var_declaration vs fun_declaration by looking
// three words ahead: type_specifier, identifier, then whatever follows the
// identifier. A following '(' means a function; ';' or '[' means a
// variable.
func (p *Parser) parseDeclaration() ast.Decl {
	begin := p.cur().Loc()
	if !isTypeSpecifier(p.cur().Category) {
		p.errorf(diag.ExpectedType)
	}
	typeWord := p.advance()
	nameWord := p.expect(scanner.Identifier)

	if p.cur().Category == scanner.LParen {
		return p.parseFunDeclaration(begin, typeWord, nameWord)
	}
	return p.parseVarDeclarationTail(begin, typeWord, nameWord, ast.Global)
}

// parseVarDeclarationTail parses the `;` or `[ NUM ] ;` suffix shared by
// global and local variable declarations, given the type and name words
// already consumed.
func (p *Parser) parseVarDeclarationTail(begin source.Pos, typeWord, nameWord scanner.Word, storage ast.Storage) *ast.VarDecl {
	var size *ast.Number
	if p.cur().Category == scanner.LBracket {
		p.advance()
		numWord := p.expect(scanner.Number)
		size = p.sema.ActOnNumber(numWord)
		p.expect(scanner.RBracket)
	}
	p.expect(scanner.Semicolon)
	rng := rangeTo(begin, p.cur().Loc())
	return p.sema.ActOnVarDecl(rng, typeWord, nameWord, size, storage)
}

func (p *Parser) parseFunDeclaration(begin source.Pos, typeWord, nameWord scanner.Word) *ast.FunDecl {
	fn := p.sema.ActOnFunDeclStart(source.Range{Begin: begin}, typeWord, nameWord)
	p.expect(scanner.LParen)

	p.sema.EnterScope(sema.Function)
	defer p.sema.ExitScope()

	params := p.parseParams()
	p.expect(scanner.RParen)
	body := p.parseCompoundStmtBody()

	fn.Rng = rangeTo(begin, p.cur().Loc())
	return p.sema.ActOnFunDeclEnd(fn, params, body)
}

// parseParams predicts an empty parameter list from a lone `void` followed
// immediately by `)`; any other token after `void`, or any other type
// specifier, starts a real parameter list.
func (p *Parser) parseParams() []*ast.ParmDecl {
	if p.cur().Category == scanner.KwVoid && p.peek(1).Category == scanner.RParen {
		p.advance()
		return nil
	}
	var params []*ast.ParmDecl
	params = append(params, p.parseParam())
	for p.cur().Category == scanner.Comma {
		p.advance()
		params = append(params, p.parseParam())
	}
	return params
}

func (p *Parser) parseParam() *ast.ParmDecl {
	begin := p.cur().Loc()
	if !isTypeSpecifier(p.cur().Category) {
		p.errorf(diag.ExpectedType)
	}
	typeWord := p.advance()
	nameWord := p.expect(scanner.Identifier)
	if typeWord.Category == scanner.KwVoid {
		p.diag.Report(p.src, nameWord.Loc(), diag.VarCannotBeVoid, p.src.Lexeme(nameWord.Lexeme)).
			Range(nameWord.Lexeme).Emit()
	}

	isArray := false
	if p.cur().Category == scanner.LBracket {
		p.advance()
		p.expect(scanner.RBracket)
		isArray = true
	}
	rng := rangeTo(begin, p.cur().Loc())
	return p.sema.ActOnParamDecl(rng, nameWord, isArray)
}

// parseCompoundStmtBody parses `{ local_declarations statement_list }`
// without pushing a new scope: a function's parameters and its top-level
// locals share one lexical region.
func (p *Parser) parseCompoundStmtBody() *ast.CompoundStmt {
	begin := p.cur().Loc()
	p.expect(scanner.LBrace)

	var locals []*ast.VarDecl
	for isTypeSpecifier(p.cur().Category) {
		declBegin := p.cur().Loc()
		typeWord := p.advance()
		nameWord := p.expect(scanner.Identifier)
		locals = append(locals, p.parseVarDeclarationTail(declBegin, typeWord, nameWord, ast.Local))
	}

	var stmts []ast.Stmt
	for p.cur().Category != scanner.RBrace {
		stmts = append(stmts, p.parseStatement())
	}
	p.expect(scanner.RBrace)

	rng := rangeTo(begin, p.cur().Loc())
	return p.sema.ActOnCompoundStmt(rng, locals, stmts)
}

// parseCompoundStmt parses a nested `{ ... }` as its own Compound scope,
// used wherever the grammar calls for a statement and that statement is a
// block (if/while bodies, or blocks nested in a function body).
func (p *Parser) parseCompoundStmt() *ast.CompoundStmt {
	p.sema.EnterScope(sema.Compound)
	defer p.sema.ExitScope()
	return p.parseCompoundStmtBody()
}

// parseStatement dispatches on the FIRST set of each statement form.
func (p *Parser) parseStatement() ast.Stmt {
	switch p.cur().Category {
	case scanner.LBrace:
		return p.parseCompoundStmt()
	case scanner.KwIf:
		return p.parseSelectionStmt()
	case scanner.KwWhile:
		return p.parseIterationStmt()
	case scanner.KwReturn:
		return p.parseReturnStmt()
	default:
		return p.parseExpressionStmt()
	}
}

func (p *Parser) parseSelectionStmt() *ast.SelectionStmt {
	begin := p.cur().Loc()
	p.advance()
	p.expect(scanner.LParen)
	cond := p.parseExpression()
	p.expect(scanner.RParen)
	then := p.parseStatement()

	var els ast.Stmt
	if p.cur().Category == scanner.KwElse {
		p.advance()
		els = p.parseStatement()
	}
	rng := rangeTo(begin, p.cur().Loc())
	return p.sema.ActOnSelectionStmt(rng, cond, then, els)
}

func (p *Parser) parseIterationStmt() *ast.IterationStmt {
	begin := p.cur().Loc()
	p.advance()
	p.expect(scanner.LParen)
	cond := p.parseExpression()
	p.expect(scanner.RParen)
	body := p.parseStatement()
	rng := rangeTo(begin, p.cur().Loc())
	return p.sema.ActOnIterationStmt(rng, cond, body)
}

func (p *Parser) parseReturnStmt() *ast.ReturnStmt {
	begin := p.cur().Loc()
	kw := p.advance()

	var expr ast.Expr
	if p.cur().Category != scanner.Semicolon {
		expr = p.parseExpression()
	}
	p.expect(scanner.Semicolon)
	rng := rangeTo(begin, p.cur().Loc())
	return p.sema.ActOnReturnStmt(rng, kw.Loc(), expr)
}

func (p *Parser) parseExpressionStmt() *ast.ExprStmt {
	begin := p.cur().Loc()
	if p.cur().Category == scanner.Semicolon {
		p.advance()
		return p.sema.ActOnExprStmt(rangeTo(begin, p.cur().Loc()), nil)
	}
	expr := p.parseExpression()
	p.expect(scanner.Semicolon)
	rng := rangeTo(begin, p.cur().Loc())
	return p.sema.ActOnExprStmt(rng, expr)
}

// parseExpression decides between assignment and simple_expression by
// parsing a leading var eagerly whenever the current word is an
// identifier not immediately followed by '(' (a call): a subscript can be
// an arbitrary expression, so the only reliable way to know whether `=`
// follows is to finish parsing the var first, then check. If '=' follows,
// this is an assignment; otherwise the var just parsed is fed back in as
// the leading factor of the term/additive/relational chain, rather than
// re-parsed.
func (p *Parser) parseExpression() ast.Expr {
	if p.cur().Category == scanner.Identifier && p.peek(1).Category != scanner.LParen {
		varRef := p.parseVar()
		if p.cur().Category == scanner.Assign {
			p.advance()
			rhs := p.parseExpression()
			return p.sema.ActOnAssign(varRef, rhs)
		}
		return p.continueExpressionFrom(varRef)
	}
	return p.parseSimpleExpression()
}

// continueExpressionFrom resumes parsing at the factor level with a var
// already consumed, letting it participate in the mulop, addop, and relop
// continuations it would have gone through had parseFactor returned it.
func (p *Parser) continueExpressionFrom(factor ast.Expr) ast.Expr {
	term := p.parseTermFrom(factor)
	additive := p.parseAdditiveExpressionFrom(term)
	return p.parseSimpleExpressionFrom(additive)
}

func (p *Parser) parseVar() *ast.VarRef {
	begin := p.cur().Loc()
	nameWord := p.expect(scanner.Identifier)

	var index ast.Expr
	if p.cur().Category == scanner.LBracket {
		p.advance()
		index = p.parseExpression()
		p.expect(scanner.RBracket)
	}
	rng := rangeTo(begin, p.cur().Loc())
	return p.sema.ActOnVar(rng, nameWord, index)
}

var relops = map[scanner.Category]ast.BinaryOp{
	scanner.Less:         ast.OpLess,
	scanner.LessEqual:    ast.OpLessEqual,
	scanner.Greater:      ast.OpGreater,
	scanner.GreaterEqual: ast.OpGreaterEqual,
	scanner.Equal:        ast.OpEqual,
	scanner.NotEqual:     ast.OpNotEqual,
}

func (p *Parser) parseSimpleExpression() ast.Expr {
	return p.parseSimpleExpressionFrom(p.parseAdditiveExpression())
}

// parseSimpleExpressionFrom applies the grammar's single optional relop,
// given an already-parsed additive_expression.
func (p *Parser) parseSimpleExpressionFrom(lhs ast.Expr) ast.Expr {
	if op, ok := relops[p.cur().Category]; ok {
		p.advance()
		rhs := p.parseAdditiveExpression()
		return p.sema.ActOnBinaryExpr(op, lhs, rhs)
	}
	return lhs
}

var addops = map[scanner.Category]ast.BinaryOp{
	scanner.Plus:  ast.OpAdd,
	scanner.Minus: ast.OpSub,
}

func (p *Parser) parseAdditiveExpression() ast.Expr {
	return p.parseAdditiveExpressionFrom(p.parseTerm())
}

// parseAdditiveExpressionFrom applies addop term* given an already-parsed
// leading term.
func (p *Parser) parseAdditiveExpressionFrom(lhs ast.Expr) ast.Expr {
	for {
		op, ok := addops[p.cur().Category]
		if !ok {
			return lhs
		}
		p.advance()
		rhs := p.parseTerm()
		lhs = p.sema.ActOnBinaryExpr(op, lhs, rhs)
	}
}

var mulops = map[scanner.Category]ast.BinaryOp{
	scanner.Star:  ast.OpMul,
	scanner.Slash: ast.OpDiv,
}

func (p *Parser) parseTerm() ast.Expr {
	return p.parseTermFrom(p.parseFactor())
}

// parseTermFrom applies mulop factor* given an already-parsed leading
// factor.
func (p *Parser) parseTermFrom(lhs ast.Expr) ast.Expr {
	for {
		op, ok := mulops[p.cur().Category]
		if !ok {
			return lhs
		}
		p.advance()
		rhs := p.parseFactor()
		lhs = p.sema.ActOnBinaryExpr(op, lhs, rhs)
	}
}

// parseFactor dispatches on the FIRST set of factor: a parenthesized
// expression, a number, or an identifier that is either a call or a var,
// decided by whether '(' immediately follows the identifier.
func (p *Parser) parseFactor() ast.Expr {
	switch p.cur().Category {
	case scanner.LParen:
		p.advance()
		expr := p.parseExpression()
		p.expect(scanner.RParen)
		return expr
	case scanner.Number:
		return p.sema.ActOnNumber(p.advance())
	case scanner.Identifier:
		if p.peek(1).Category == scanner.LParen {
			return p.parseCall()
		}
		return p.parseVar()
	default:
		p.errorf(diag.ExpectedExpression)
		panic("unreachable")
	}
}

func (p *Parser) parseCall() *ast.FunCall {
	begin := p.cur().Loc()
	nameWord := p.expect(scanner.Identifier)
	p.expect(scanner.LParen)

	var args []ast.Expr
	if p.cur().Category != scanner.RParen {
		args = append(args, p.parseExpression())
		for p.cur().Category == scanner.Comma {
			p.advance()
			args = append(args, p.parseExpression())
		}
	}
	p.expect(scanner.RParen)
	rng := rangeTo(begin, p.cur().Loc())
	return p.sema.ActOnCall(rng, nameWord, args)
}
