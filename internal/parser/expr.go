package parser

import (
	"strings"

	"github.com/yov-lang/yov/internal/ast"
	"github.com/yov-lang/yov/internal/lexer"
	"github.com/yov-lang/yov/internal/token"
)

// binPrec gives each binary operator's precedence rank; the additive and
// multiplicative families sit below function-call/member/index per
// spec.md §4.3's ranking (logical, compare, additive, multiplicative, call,
// sign, member, index, group). Call/member/index are postfix operators
// parsed in parsePostfix, tighter than any binary operator, so the table
// below only needs to order the binary families against each other.
var binPrec = map[token.Kind]int{
	token.LOr: 1, token.LAnd: 2,
	token.Eq: 3, token.Ne: 3, token.Lt: 3, token.Le: 3, token.Gt: 3, token.Ge: 3,
	token.Add: 4, token.Sub: 4,
	token.Mul: 5, token.Div: 5, token.Mod: 5,
}

// ParseExpr parses a single expression starting at the cursor.
func (p *Parser) ParseExpr() ast.Expr {
	return p.parseBinary(1)
}

func (p *Parser) parseBinary(minPrec int) ast.Expr {
	lhs := p.parseUnaryWithIs()
	for {
		op := p.c.Cur().Kind
		prec, ok := binPrec[op]
		if !ok || prec < minPrec {
			return lhs
		}
		opTok := p.c.Consume()
		rhs := p.parseBinary(prec + 1)
		lhs = &ast.BinaryExpr{
			Position: span(lhs.Pos().Start, rhs.Pos().End),
			Left:     lhs, Op: opTok.Kind, Right: rhs,
		}
	}
}

// parseUnaryWithIs handles the `x is Type` postfix test. It applies to the
// unary operand, so it binds tighter than every binary operator.
func (p *Parser) parseUnaryWithIs() ast.Expr {
	x := p.parseUnary()
	if p.c.Cur().Kind == token.KwIs {
		p.c.Consume()
		te := p.parseTypeExpr()
		return &ast.IsExpr{Position: span(x.Pos().Start, te.Pos().End), X: x, Type: te}
	}
	return x
}

func (p *Parser) parseUnary() ast.Expr {
	switch p.c.Cur().Kind {
	case token.Sub, token.Not, token.Amp:
		opTok := p.c.Consume()
		x := p.parseUnary()
		return &ast.UnaryExpr{Position: span(opTok.Pos, x.Pos().End), Op: opTok.Kind, X: x}
	default:
		return p.parsePostfix()
	}
}

func (p *Parser) parsePostfix() ast.Expr {
	x := p.parsePrimary()
	for {
		switch p.c.Cur().Kind {
		case token.Dot:
			p.c.Consume()
			nameTok, err := p.c.Expect(token.Ident)
			if err != nil {
				p.errorf(p.c.Cur().Pos, "expected member name after '.'")
				return x
			}
			sel := &ast.Ident{Position: posOf(nameTok), Name: nameTok.Literal}
			x = &ast.SelectorExpr{Position: span(x.Pos().Start, sel.Pos().End), X: x, Sel: sel}
		case token.LBracket:
			p.c.Consume()
			idx := p.ParseExpr()
			end, err := p.c.Expect(token.RBracket)
			if err != nil {
				p.errorf(p.c.Cur().Pos, "expected ']'")
				return x
			}
			x = &ast.IndexExpr{Position: span(x.Pos().Start, end.End), X: x, Index: idx}
		case token.LParen:
			args, endPos := p.parseArgList()
			x = &ast.CallExpr{Position: span(x.Pos().Start, endPos), Fun: x, Args: args}
		default:
			return x
		}
	}
}

func (p *Parser) parseArgList() ([]ast.Expr, token.Pos) {
	p.c.Consume() // `(`
	var args []ast.Expr
	for p.c.Cur().Kind != token.RParen && !p.c.AtEOF() {
		args = append(args, p.ParseExpr())
		if p.c.Cur().Kind == token.Comma {
			p.c.Consume()
		} else {
			break
		}
	}
	end, err := p.c.Expect(token.RParen)
	if err != nil {
		p.errorf(p.c.Cur().Pos, "expected ')' to close argument list")
		return args, p.c.Cur().Pos
	}
	return args, end.End
}

func (p *Parser) parsePrimary() ast.Expr {
	tok := p.c.Cur()
	switch tok.Kind {
	case token.Ident:
		p.c.Consume()
		return &ast.Ident{Position: posOf(tok), Name: tok.Literal}
	case token.Int, token.Codepoint:
		p.c.Consume()
		return &ast.BasicLit{Position: posOf(tok), Kind: tok.Kind, Value: tok.Literal}
	case token.KwTrue, token.KwFalse:
		p.c.Consume()
		return &ast.BasicLit{Position: posOf(tok), Kind: tok.Kind, Value: tok.Literal}
	case token.String:
		p.c.Consume()
		return p.parseTemplateString(tok)
	case token.LBrace:
		return p.parseArrayLit()
	case token.LParen:
		p.c.Consume()
		inner := p.ParseExpr()
		if _, err := p.c.Expect(token.RParen); err != nil {
			p.errorf(p.c.Cur().Pos, "expected ')' to close group")
		}
		return inner
	default:
		p.errorf(tok.Pos, "unexpected token %s in expression", tok.Kind)
		p.c.Consume()
		return &ast.BadNode{Position: posOf(tok), Reason: "unexpected token in expression"}
	}
}

func (p *Parser) parseArrayLit() ast.Expr {
	open := p.c.Consume() // `{`
	var elts []ast.Expr
	for p.c.Cur().Kind != token.RBrace && !p.c.AtEOF() {
		elts = append(elts, p.ParseExpr())
		if p.c.Cur().Kind == token.Comma {
			p.c.Consume()
		} else {
			break
		}
	}
	end, err := p.c.Expect(token.RBrace)
	if err != nil {
		p.errorf(p.c.Cur().Pos, "expected '}' to close array literal")
		return &ast.ArrayLit{Position: span(open.Pos, p.c.Cur().Pos), Elts: elts}
	}
	return &ast.ArrayLit{Position: span(open.Pos, end.End), Elts: elts}
}

// parseTemplateString splits a raw string literal on `{expr}` runs into
// literal Parts and parsed Subs, per spec.md §4.1 ("escape processing and
// {expr} interpolation occur in the parser"). Escape rules inside a
// substitution follow the same rules as the outer literal (spec.md §9
// Open Question (b)) — both are handled uniformly here since the lexer
// already stripped only the surrounding quotes, not \x escapes.
func (p *Parser) parseTemplateString(tok token.Token) ast.Expr {
	raw := tok.Literal
	var parts []string
	var subs []ast.Expr

	var lit strings.Builder
	i := 0
	for i < len(raw) {
		c := raw[i]
		if c == '\\' && i+1 < len(raw) {
			lit.WriteByte(unescape(raw[i+1]))
			i += 2
			continue
		}
		if c == '{' {
			depth := 1
			j := i + 1
			for j < len(raw) && depth > 0 {
				switch raw[j] {
				case '{':
					depth++
				case '}':
					depth--
				}
				if depth > 0 {
					j++
				}
			}
			sub := raw[i+1 : j]
			parts = append(parts, lit.String())
			lit.Reset()
			subs = append(subs, p.parseSubExpr(sub, tok.Pos+token.Pos(i+1)))
			i = j + 1
			continue
		}
		lit.WriteByte(c)
		i++
	}
	parts = append(parts, lit.String())

	if len(subs) == 0 {
		return &ast.BasicLit{Position: posOf(tok), Kind: token.String, Value: parts[0]}
	}
	return &ast.TemplateExpr{Position: posOf(tok), Parts: parts, Subs: subs}
}

func unescape(c byte) byte {
	switch c {
	case 'n':
		return '\n'
	case 't':
		return '\t'
	case 'r':
		return '\r'
	default:
		return c
	}
}

func (p *Parser) parseSubExpr(src string, base token.Pos) ast.Expr {
	toks, err := lexer.Lex(src, base)
	if err != nil {
		p.errorf(base, "malformed string interpolation: %v", err)
		return &ast.BadNode{Position: Position{Start: base, End: base}, Reason: "malformed interpolation"}
	}
	sub := New(toks)
	return sub.ParseExpr()
}

// parseTypeExpr parses a type name with leading `&` (reference) and
// trailing `[]` (array) markers: `&&T[][]` etc.
func (p *Parser) parseTypeExpr() *ast.TypeExpr {
	start := p.c.Cur().Pos
	refDims := 0
	for p.c.Cur().Kind == token.Amp {
		p.c.Consume()
		refDims++
	}
	nameTok, err := p.c.Expect(token.Ident)
	if err != nil {
		p.errorf(p.c.Cur().Pos, "expected type name")
		return &ast.TypeExpr{Position: span(start, p.c.Cur().Pos), Name: "?"}
	}
	dims := 0
	end := nameTok.End
	for p.c.Cur().Kind == token.LBracket && p.c.Peek(1).Kind == token.RBracket {
		p.c.Consume()
		end = p.c.Consume().End
		dims++
	}
	return &ast.TypeExpr{Position: span(start, end), Name: nameTok.Literal, Dims: dims, RefDims: refDims}
}
