package parser

import (
	"fmt"

	"github.com/yov-lang/yov/internal/ast"
	"github.com/yov-lang/yov/internal/token"
)

// Position is a re-export so callers needn't import internal/ast just to
// build one.
type Position = ast.Position

// Error is a syntactic diagnostic, reported with a source location
// (spec.md §4.3: "Syntactic errors are reported with source locations and
// do not halt parsing of sibling declarations.").
type Error struct {
	Pos token.Pos
	Msg string
}

func (e Error) Error() string { return fmt.Sprintf("%d: %s", e.Pos, e.Msg) }

// Parser builds ast trees on demand from a Cursor over one token range.
type Parser struct {
	c    *Cursor
	errs []Error
}

// New wraps a token slice (typically a locscan.TokenRange's slice) in a
// Parser positioned at its first token.
func New(toks []token.Token) *Parser {
	var endPos token.Pos
	if len(toks) > 0 {
		endPos = toks[len(toks)-1].End
	}
	return &Parser{c: NewCursor(toks, endPos)}
}

// Errors returns every syntactic diagnostic accumulated so far.
func (p *Parser) Errors() []Error { return p.errs }

func (p *Parser) errorf(pos token.Pos, format string, args ...any) {
	p.errs = append(p.errs, Error{Pos: pos, Msg: fmt.Sprintf(format, args...)})
}

func posOf(t token.Token) Position { return Position{Start: t.Pos, End: t.End} }
func span(start, end token.Pos) Position { return Position{Start: start, End: end} }

// ParseBlock parses a `{ stmt... }` block; the opening `{` must be current.
func (p *Parser) ParseBlock() *ast.BlockStmt {
	open, err := p.c.Expect(token.LBrace)
	if err != nil {
		p.errorf(p.c.Cur().Pos, "expected '{'")
		return &ast.BlockStmt{Position: posOf(p.c.Cur())}
	}
	var list []ast.Stmt
	for p.c.Cur().Kind != token.RBrace && !p.c.AtEOF() {
		list = append(list, p.parseStmt())
	}
	end, err := p.c.Expect(token.RBrace)
	if err != nil {
		p.errorf(p.c.Cur().Pos, "expected '}' to close block")
		return &ast.BlockStmt{Position: span(open.Pos, p.c.Cur().Pos), List: list}
	}
	return &ast.BlockStmt{Position: span(open.Pos, end.End), List: list}
}

// ParseStmts parses a whole range of statements until EOF (used when a
// CodeDefinition's body range has no surrounding braces of its own, e.g.
// the implicit top-level statement list of a global's `Rest` range is not
// parsed this way — see ParseExpr for that case).
func (p *Parser) ParseStmts() []ast.Stmt {
	var list []ast.Stmt
	for !p.c.AtEOF() {
		list = append(list, p.parseStmt())
	}
	return list
}

func (p *Parser) parseStmt() ast.Stmt {
	tok := p.c.Cur()
	switch tok.Kind {
	case token.LBrace:
		return p.ParseBlock()
	case token.KwIf:
		return p.parseIf()
	case token.KwWhile:
		return p.parseWhile()
	case token.KwFor:
		return p.parseFor()
	case token.KwReturn:
		return p.parseReturn()
	case token.KwContinue:
		p.c.Consume()
		p.expectSemi()
		return &ast.ContinueStmt{Position: posOf(tok)}
	case token.KwBreak:
		p.c.Consume()
		p.expectSemi()
		return &ast.BreakStmt{Position: posOf(tok)}
	case token.Ident:
		if p.isObjectDeclAhead() {
			return p.parseObjectDecl()
		}
		return p.parseSimpleStmt()
	default:
		p.errorf(tok.Pos, "unexpected token %s starting statement", tok.Kind)
		p.c.SkipTo(token.Semi)
		if p.c.Cur().Kind == token.Semi {
			p.c.Consume()
		}
		return &ast.BadNode{Position: posOf(tok), Reason: "unexpected token starting statement"}
	}
}

// isObjectDeclAhead distinguishes `name[, name...]: Type ...` / `name :: expr`
// object declarations from an identifier that begins an assignment or
// call-expression statement: one or more comma-separated identifiers
// followed by `:` or `::`.
func (p *Parser) isObjectDeclAhead() bool {
	i := 0
	for p.c.Peek(i).Kind == token.Ident {
		i++
		if p.c.Peek(i).Kind == token.Comma {
			i++
			continue
		}
		break
	}
	k := p.c.Peek(i).Kind
	return k == token.Colon || k == token.ColonColon
}

func (p *Parser) parseObjectDecl() ast.Stmt {
	start := p.c.Cur().Pos
	var names []*ast.Ident
	for {
		t, err := p.c.Expect(token.Ident)
		if err != nil {
			p.errorf(p.c.Cur().Pos, "expected identifier in declaration")
			break
		}
		names = append(names, &ast.Ident{Position: posOf(t), Name: t.Literal})
		if p.c.Cur().Kind == token.Comma {
			p.c.Consume()
			continue
		}
		break
	}

	isConstant := false
	switch p.c.Cur().Kind {
	case token.ColonColon:
		isConstant = true
		p.c.Consume()
	case token.Colon:
		p.c.Consume()
	default:
		p.errorf(p.c.Cur().Pos, "expected ':' or '::' in object declaration")
	}

	var typeExpr *ast.TypeExpr
	if !isConstant && p.c.Cur().Kind == token.Ident {
		typeExpr = p.parseTypeExpr()
	} else if !isConstant && p.c.Cur().Kind == token.Amp {
		typeExpr = p.parseTypeExpr()
	}

	var value ast.Expr
	if isConstant {
		value = p.ParseExpr()
	} else if p.c.Cur().Kind == token.Assign {
		p.c.Consume()
		value = p.ParseExpr()
	}

	end := p.c.Cur().Pos
	p.expectSemi()
	return &ast.ObjectDeclStmt{
		Position: span(start, end), Names: names, Type: typeExpr, Value: value, IsConstant: isConstant,
	}
}

var assignOps = map[token.Kind]bool{
	token.Assign: true, token.AddAssign: true, token.SubAssign: true,
	token.MulAssign: true, token.DivAssign: true, token.ModAssign: true,
}

func (p *Parser) parseSimpleStmt() ast.Stmt {
	start := p.c.Cur().Pos
	var lhs []ast.Expr
	lhs = append(lhs, p.ParseExpr())
	for p.c.Cur().Kind == token.Comma {
		p.c.Consume()
		lhs = append(lhs, p.ParseExpr())
	}

	if assignOps[p.c.Cur().Kind] {
		opTok := p.c.Consume()
		var rhs []ast.Expr
		rhs = append(rhs, p.ParseExpr())
		for p.c.Cur().Kind == token.Comma {
			p.c.Consume()
			rhs = append(rhs, p.ParseExpr())
		}
		end := p.c.Cur().Pos
		p.expectSemi()
		return &ast.AssignStmt{Position: span(start, end), LHS: lhs, Op: opTok.Kind, RHS: rhs}
	}

	end := p.c.Cur().Pos
	p.expectSemi()
	if len(lhs) != 1 {
		p.errorf(start, "expected assignment after expression list")
	}
	return &ast.ExprStmt{Position: span(start, end), X: lhs[0]}
}

func (p *Parser) expectSemi() {
	if _, err := p.c.Expect(token.Semi); err != nil {
		p.errorf(p.c.Cur().Pos, "expected ';'")
	}
}

func (p *Parser) parseIf() ast.Stmt {
	start := p.c.Consume().Pos // `if`
	if _, err := p.c.Expect(token.LParen); err != nil {
		p.errorf(p.c.Cur().Pos, "expected '(' after if")
	}
	cond := p.ParseExpr()
	if _, err := p.c.Expect(token.RParen); err != nil {
		p.errorf(p.c.Cur().Pos, "expected ')' after if condition")
	}
	body := p.requireBlockOrStmt()
	var elseStmt ast.Stmt
	if p.c.Cur().Kind == token.KwElse {
		p.c.Consume()
		if p.c.Cur().Kind == token.KwIf {
			elseStmt = p.parseIf()
		} else {
			elseStmt = p.requireBlockOrStmt()
		}
	}
	return &ast.IfStmt{Position: span(start, p.c.Cur().Pos), Cond: cond, Body: body, Else: elseStmt}
}

// requireBlockOrStmt parses a block if present, otherwise wraps a single
// statement in a synthetic block so the IR builder always sees a
// *ast.BlockStmt for a body.
func (p *Parser) requireBlockOrStmt() *ast.BlockStmt {
	if p.c.Cur().Kind == token.LBrace {
		return p.ParseBlock()
	}
	s := p.parseStmt()
	return &ast.BlockStmt{Position: s.Pos(), List: []ast.Stmt{s}}
}

func (p *Parser) parseWhile() ast.Stmt {
	start := p.c.Consume().Pos // `while`
	if _, err := p.c.Expect(token.LParen); err != nil {
		p.errorf(p.c.Cur().Pos, "expected '(' after while")
	}
	cond := p.ParseExpr()
	if _, err := p.c.Expect(token.RParen); err != nil {
		p.errorf(p.c.Cur().Pos, "expected ')' after while condition")
	}
	body := p.requireBlockOrStmt()
	return &ast.WhileStmt{Position: span(start, body.End), Cond: cond, Body: body}
}

// parseFor disambiguates C-style `for (init; cond; post)` from
// `for (elem[, idx] : expr)` by scanning ahead for a top-level `:` vs `;`
// inside the parenthesized header.
func (p *Parser) parseFor() ast.Stmt {
	start := p.c.Consume().Pos // `for`
	if _, err := p.c.Expect(token.LParen); err != nil {
		p.errorf(p.c.Cur().Pos, "expected '(' after for")
	}
	header := p.c.FetchUntil(token.RParen)
	if _, err := p.c.Expect(token.RParen); err != nil {
		p.errorf(p.c.Cur().Pos, "expected ')' to close for header")
	}

	if isForIn(header) {
		return p.buildForIn(start, header)
	}
	return p.buildForC(start, header)
}

func isForIn(header []token.Token) bool {
	depth := 0
	for _, t := range header {
		switch t.Kind {
		case token.LParen, token.LBrace, token.LBracket:
			depth++
		case token.RParen, token.RBrace, token.RBracket:
			depth--
		case token.Colon:
			if depth == 0 {
				return true
			}
		case token.Semi:
			if depth == 0 {
				return false
			}
		}
	}
	return false
}

func (p *Parser) buildForIn(start token.Pos, header []token.Token) ast.Stmt {
	sub := New(header)
	elemTok, err := sub.c.Expect(token.Ident)
	if err != nil {
		p.errorf(start, "expected element identifier in for-in header")
	}
	elem := &ast.Ident{Position: posOf(elemTok), Name: elemTok.Literal}
	var idx *ast.Ident
	if sub.c.Cur().Kind == token.Comma {
		sub.c.Consume()
		idxTok, err := sub.c.Expect(token.Ident)
		if err != nil {
			p.errorf(start, "expected index identifier after ',' in for-in header")
		}
		idx = &ast.Ident{Position: posOf(idxTok), Name: idxTok.Literal}
	}
	if _, err := sub.c.Expect(token.Colon); err != nil {
		p.errorf(start, "expected ':' in for-in header")
	}
	x := sub.ParseExpr()
	p.errs = append(p.errs, sub.errs...)

	body := p.requireBlockOrStmt()
	return &ast.ForInStmt{Position: span(start, body.End), Elem: elem, Idx: idx, X: x, Body: body}
}

func (p *Parser) buildForC(start token.Pos, header []token.Token) ast.Stmt {
	sub := New(header)

	var init ast.Stmt
	if sub.c.Cur().Kind != token.Semi {
		if sub.isObjectDeclAhead() {
			init = sub.parseObjectDecl()
		} else {
			init = sub.parseSimpleStmtNoConsumeSemi()
			if _, err := sub.c.Expect(token.Semi); err != nil {
				p.errorf(start, "expected ';' after for-init")
			}
		}
	} else {
		sub.c.Consume()
	}

	var cond ast.Expr
	if sub.c.Cur().Kind != token.Semi {
		cond = sub.ParseExpr()
	}
	if _, err := sub.c.Expect(token.Semi); err != nil {
		p.errorf(start, "expected ';' after for-condition")
	}

	var post ast.Stmt
	if !sub.c.AtEOF() {
		post = sub.parseSimpleStmtNoConsumeSemi()
	}
	p.errs = append(p.errs, sub.errs...)

	body := p.requireBlockOrStmt()
	return &ast.ForStmt{Position: span(start, body.End), Init: init, Cond: cond, Post: post, Body: body}
}

// parseSimpleStmtNoConsumeSemi parses an assignment or expression statement
// without requiring (or consuming) a trailing ';', for use inside a
// for-header's own ';'-delimited parts.
func (p *Parser) parseSimpleStmtNoConsumeSemi() ast.Stmt {
	start := p.c.Cur().Pos
	var lhs []ast.Expr
	lhs = append(lhs, p.ParseExpr())
	for p.c.Cur().Kind == token.Comma {
		p.c.Consume()
		lhs = append(lhs, p.ParseExpr())
	}
	if assignOps[p.c.Cur().Kind] {
		opTok := p.c.Consume()
		var rhs []ast.Expr
		rhs = append(rhs, p.ParseExpr())
		for p.c.Cur().Kind == token.Comma {
			p.c.Consume()
			rhs = append(rhs, p.ParseExpr())
		}
		return &ast.AssignStmt{Position: span(start, p.c.Cur().Pos), LHS: lhs, Op: opTok.Kind, RHS: rhs}
	}
	return &ast.ExprStmt{Position: span(start, p.c.Cur().Pos), X: lhs[0]}
}

func (p *Parser) parseReturn() ast.Stmt {
	start := p.c.Consume().Pos // `return`
	var results []ast.Expr
	if p.c.Cur().Kind != token.Semi {
		results = append(results, p.ParseExpr())
		for p.c.Cur().Kind == token.Comma {
			p.c.Consume()
			results = append(results, p.ParseExpr())
		}
	}
	end := p.c.Cur().Pos
	p.expectSemi()
	return &ast.ReturnStmt{Position: span(start, end), Results: results}
}
