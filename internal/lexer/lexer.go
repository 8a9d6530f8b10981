// Package lexer turns yov source text into a stream of tokens.
//
// Lex is a pure function of its input text: it carries no state beyond the
// single call, so it can be run concurrently for every Script in the work
// pool (see internal/wpool and internal/compiler).
package lexer

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/yov-lang/yov/internal/token"
)

// Error is returned when the source text contains a malformed codepoint
// literal or an unterminated string/comment.
type Error struct {
	Pos token.Pos
	Msg string
}

func (e *Error) Error() string {
	return fmt.Sprintf("lex error at byte %d: %s", e.Pos, e.Msg)
}

type lexer struct {
	src    string
	offset int
	toks   []token.Token
}

// Lex tokenizes text and returns the token stream, always terminated by a
// single token.EOF. starting is added to every reported Pos, so a caller can
// re-lex a sub-range of a larger Script and still get Script-relative offsets.
func Lex(text string, starting token.Pos) ([]token.Token, error) {
	l := &lexer{src: text}
	for {
		if err := l.next(starting); err != nil {
			return nil, err
		}
		if l.toks[len(l.toks)-1].Kind == token.EOF {
			return l.toks, nil
		}
	}
}

func (l *lexer) next(base token.Pos) error {
	if err := l.skipSeparatorsAndComments(base); err != nil {
		return err
	}
	if l.offset >= len(l.src) {
		l.emit(token.EOF, l.offset, l.offset, "", base)
		return nil
	}

	start := l.offset
	c := l.src[l.offset]

	switch {
	case isIdentStart(c):
		for l.offset < len(l.src) && isIdentCont(l.src[l.offset]) {
			l.offset++
		}
		lit := l.src[start:l.offset]
		l.emit(token.Lookup(lit), start, l.offset, lit, base)
		return nil
	case isDigit(c):
		for l.offset < len(l.src) && (isDigit(l.src[l.offset]) || l.src[l.offset] == '_') {
			l.offset++
		}
		l.emit(token.Int, start, l.offset, strings.ReplaceAll(l.src[start:l.offset], "_", ""), base)
		return nil
	case c == '"':
		return l.lexString(base)
	case c == '\'':
		return l.lexCodepoint(base)
	default:
		return l.lexPunct(base)
	}
}

func (l *lexer) lexString(base token.Pos) error {
	start := l.offset
	l.offset++ // opening quote
	depth := 0
	for {
		if l.offset >= len(l.src) {
			return &Error{Pos: base + token.Pos(start), Msg: "unterminated string literal"}
		}
		c := l.src[l.offset]
		if c == '\\' {
			l.offset += 2
			continue
		}
		if c == '{' {
			depth++
		}
		if c == '}' && depth > 0 {
			depth--
		}
		if c == '"' && depth == 0 {
			l.offset++
			break
		}
		l.offset++
	}
	l.emit(token.String, start, l.offset, l.src[start+1:l.offset-1], base)
	return nil
}

func (l *lexer) lexCodepoint(base token.Pos) error {
	start := l.offset
	l.offset++ // opening quote
	if l.offset < len(l.src) && l.src[l.offset] == '\\' {
		l.offset++
	}
	if l.offset >= len(l.src) {
		return &Error{Pos: base + token.Pos(start), Msg: "malformed codepoint literal"}
	}
	_, size := utf8.DecodeRuneInString(l.src[l.offset:])
	l.offset += size
	if l.offset >= len(l.src) || l.src[l.offset] != '\'' {
		return &Error{Pos: base + token.Pos(start), Msg: "malformed codepoint literal"}
	}
	l.offset++
	l.emit(token.Codepoint, start, l.offset, l.src[start+1:l.offset-1], base)
	return nil
}

// punct3, punct2 and punct1 are checked longest-match-first; order within an equal length
// class does not matter since prefixes are unambiguous once grouped by length.
var punct3 = map[string]token.Kind{}
var punct2 = map[string]token.Kind{
	"::": token.ColonColon, "+=": token.AddAssign, "-=": token.SubAssign,
	"*=": token.MulAssign, "/=": token.DivAssign, "%=": token.ModAssign,
	"++": token.Inc, "--": token.Dec, "==": token.Eq, "!=": token.Ne,
	"<=": token.Le, ">=": token.Ge, "&&": token.LAnd, "||": token.LOr,
}
var punct1 = map[byte]token.Kind{
	'(': token.LParen, ')': token.RParen, '{': token.LBrace, '}': token.RBrace,
	'[': token.LBracket, ']': token.RBracket, ',': token.Comma, ';': token.Semi,
	':': token.Colon, '.': token.Dot, '&': token.Amp, '=': token.Assign,
	'+': token.Add, '-': token.Sub, '*': token.Mul, '/': token.Div, '%': token.Mod,
	'<': token.Lt, '>': token.Gt, '!': token.Not,
}

func (l *lexer) lexPunct(base token.Pos) error {
	start := l.offset
	rest := l.src[l.offset:]
	for plen := 3; plen >= 1; plen-- {
		if len(rest) < plen {
			continue
		}
		table := punct1
		var kind token.Kind
		var ok bool
		switch plen {
		case 3:
			kind, ok = punct3[rest[:plen]]
		case 2:
			kind, ok = punct2[rest[:plen]]
		case 1:
			kind, ok = table[rest[0]]
		}
		if ok {
			l.offset += plen
			l.emit(kind, start, l.offset, rest[:plen], base)
			return nil
		}
	}
	l.offset++
	return &Error{Pos: base + token.Pos(start), Msg: fmt.Sprintf("unexpected byte %q", rest[0])}
}

func (l *lexer) skipSeparatorsAndComments(base token.Pos) error {
	for l.offset < len(l.src) {
		c := l.src[l.offset]
		switch {
		case c == ' ' || c == '\t' || c == '\r' || c == '\n':
			l.offset++
		case c == '/' && l.offset+1 < len(l.src) && l.src[l.offset+1] == '/':
			for l.offset < len(l.src) && l.src[l.offset] != '\n' {
				l.offset++
			}
		case c == '/' && l.offset+1 < len(l.src) && l.src[l.offset+1] == '*':
			start := l.offset
			l.offset += 2
			closed := false
			for l.offset+1 < len(l.src) {
				if l.src[l.offset] == '*' && l.src[l.offset+1] == '/' {
					closed = true
					break
				}
				l.offset++
			}
			if !closed {
				return &Error{Pos: base + token.Pos(start), Msg: "unterminated comment"}
			}
			l.offset += 2
		default:
			return nil
		}
	}
	return nil
}

func (l *lexer) emit(kind token.Kind, start, end int, lit string, base token.Pos) {
	l.toks = append(l.toks, token.Token{
		Kind:    kind,
		Literal: lit,
		Pos:     base + token.Pos(start),
		End:     base + token.Pos(end),
	})
}

func isIdentStart(c byte) bool { return c == '_' || (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z') }
func isIdentCont(c byte) bool  { return isIdentStart(c) || isDigit(c) }
func isDigit(c byte) bool      { return c >= '0' && c <= '9' }
