// Package parser builds internal/ast trees on demand from a token range
// identified by internal/locscan, following the teacher's CST-to-AST
// translation idiom (internal/horusec-javascript/ast.go: a big switch over
// the current token kind per grammar production, recursing into
// sub-ranges) but driven by a hand-rolled Cursor instead of a tree-sitter
// CST, since this language has no external grammar to walk.
package parser

import (
	"fmt"

	"github.com/yov-lang/yov/internal/token"
)

// Cursor is a read-only walk over a fixed token slice, always terminated
// by a synthetic EOF so Peek/Consume never index out of range.
type Cursor struct {
	toks []token.Token
	pos  int
}

// NewCursor wraps toks, appending a synthetic EOF at endPos if toks does
// not already end with one (sub-ranges sliced out of a larger stream by
// locscan don't carry their own EOF).
func NewCursor(toks []token.Token, endPos token.Pos) *Cursor {
	if len(toks) == 0 || toks[len(toks)-1].Kind != token.EOF {
		toks = append(append([]token.Token{}, toks...), token.Token{Kind: token.EOF, Pos: endPos, End: endPos})
	}
	return &Cursor{toks: toks}
}

// Peek returns the token `offset` positions ahead of the cursor (0 = current).
func (c *Cursor) Peek(offset int) token.Token {
	i := c.pos + offset
	if i < 0 || i >= len(c.toks) {
		return c.toks[len(c.toks)-1] // EOF
	}
	return c.toks[i]
}

// Cur is Peek(0).
func (c *Cursor) Cur() token.Token { return c.Peek(0) }

// AtEOF reports whether the cursor has reached the end of its range.
func (c *Cursor) AtEOF() bool { return c.Cur().Kind == token.EOF }

// Consume returns the current token and advances past it (EOF is "sticky":
// consuming past the end repeatedly returns EOF without panicking).
func (c *Cursor) Consume() token.Token {
	t := c.Cur()
	if !c.AtEOF() {
		c.pos++
	}
	return t
}

// Expect consumes the current token if it has kind k, else returns an error
// without advancing.
func (c *Cursor) Expect(k token.Kind) (token.Token, error) {
	if c.Cur().Kind != k {
		return token.Token{}, fmt.Errorf("expected %s, got %s", k, c.Cur().Kind)
	}
	return c.Consume(), nil
}

// SkipTo advances until the current token has kind k or EOF is reached,
// without consuming k itself.
func (c *Cursor) SkipTo(k token.Kind) {
	for !c.AtEOF() && c.Cur().Kind != k {
		c.pos++
	}
}

// FetchBalanced consumes an `open` token (which must be current) and every
// token up to and including its matching close, returning the inner tokens
// (never crossing an unrelated bracket pair).
func (c *Cursor) FetchBalanced(open token.Kind) ([]token.Token, error) {
	close := matchingClose(open)
	if _, err := c.Expect(open); err != nil {
		return nil, err
	}
	start := c.pos
	depth := 1
	for !c.AtEOF() {
		switch c.Cur().Kind {
		case open:
			depth++
		case close:
			depth--
			if depth == 0 {
				inner := c.toks[start:c.pos]
				c.pos++ // consume close
				return inner, nil
			}
		}
		c.pos++
	}
	return nil, fmt.Errorf("unbalanced %s", open)
}

// FetchUntil returns every token up to (not including) the first
// occurrence of any kind in stop that is not nested inside brackets, and
// advances the cursor to just before it (or to EOF).
func (c *Cursor) FetchUntil(stop ...token.Kind) []token.Token {
	start := c.pos
	depth := 0
	for !c.AtEOF() {
		k := c.Cur().Kind
		if depth == 0 {
			for _, s := range stop {
				if k == s {
					return c.toks[start:c.pos]
				}
			}
		}
		switch k {
		case token.LBrace, token.LParen, token.LBracket:
			depth++
		case token.RBrace, token.RParen, token.RBracket:
			if depth > 0 {
				depth--
			}
		}
		c.pos++
	}
	return c.toks[start:c.pos]
}

func matchingClose(open token.Kind) token.Kind {
	switch open {
	case token.LParen:
		return token.RParen
	case token.LBrace:
		return token.RBrace
	case token.LBracket:
		return token.RBracket
	default:
		return token.Illegal
	}
}
