// Package locscan implements the Location Scanner pass of spec.md §4.2: a
// single walk over a Script's token stream that records import paths and,
// for every top-level declaration, the token ranges of its parts (params,
// returns, body) without parsing them — parsing happens later, on demand,
// in internal/parser.
//
// The single-pass, depth-tracking walk is grounded on the teacher's
// internal/cst.Walk (a generic tree-sitter-node walk) generalized to a flat
// token cursor, since this language has no external CST to lean on.
package locscan

import (
	"fmt"

	"github.com/yov-lang/yov/internal/lexer"
	"github.com/yov-lang/yov/internal/source"
	"github.com/yov-lang/yov/internal/token"
)

// DeclKind identifies which of the five top-level declaration shapes a
// CodeDefinition describes.
type DeclKind int

const (
	DeclFunc DeclKind = iota
	DeclStruct
	DeclEnum
	DeclArg
	DeclGlobal
)

// TokenRange is a half-open [Start, End) index range into a Result's Tokens.
type TokenRange struct{ Start, End int }

func (r TokenRange) Len() int { return r.End - r.Start }

// CodeDefinition is one top-level declaration's identity and the token
// ranges of its constituent parts, per spec.md §4.2.
type CodeDefinition struct {
	Kind       DeclKind
	Identifier string
	IdentPos   token.Pos
	IsConstant bool // DeclGlobal: `::` vs `:`

	Whole   TokenRange // the entire declaration, including the identifier
	Params  TokenRange // DeclFunc: token range inside the parameter parens
	Returns TokenRange // DeclFunc: token range inside the return-type parens, may be empty
	Body    TokenRange // DeclFunc/DeclStruct/DeclEnum: token range inside the braces
	Rest    TokenRange // DeclArg/DeclGlobal: tokens after `::`/`:` up to (not incl.) the terminating `;`
}

// Diagnostic is a scan-time error with a byte offset, reported and then
// skipped so scanning can continue (spec.md §4.2: "Bracket-mismatched
// declarations are skipped after reporting; scanning continues.").
type Diagnostic struct {
	Pos token.Pos
	Msg string
}

func (d Diagnostic) Error() string { return fmt.Sprintf("%d: %s", d.Pos, d.Msg) }

// Result is everything the Location Scanner extracts from one Script.
type Result struct {
	Script  *source.Script
	Tokens  []token.Token
	Imports []string
	Defs    []CodeDefinition
}

// Scan tokenizes script.Text and walks the resulting stream once.
func Scan(script *source.Script) (*Result, []Diagnostic) {
	toks, err := lexer.Lex(script.Text, 0)
	if err != nil {
		if le, ok := err.(*lexer.Error); ok {
			return nil, []Diagnostic{{Pos: le.Pos, Msg: le.Msg}}
		}
		return nil, []Diagnostic{{Pos: 0, Msg: err.Error()}}
	}

	s := &scanner{script: script, toks: toks}
	s.run()
	return &Result{Script: script, Tokens: toks, Imports: s.imports, Defs: s.defs}, s.diags
}

type scanner struct {
	script *source.Script
	toks   []token.Token
	pos    int

	imports []string
	defs    []CodeDefinition
	diags   []Diagnostic
}

func (s *scanner) cur() token.Token { return s.toks[s.pos] }
func (s *scanner) atEOF() bool      { return s.cur().Kind == token.EOF }

func (s *scanner) errorf(pos token.Pos, format string, args ...any) {
	s.diags = append(s.diags, Diagnostic{Pos: pos, Msg: fmt.Sprintf(format, args...)})
}

func (s *scanner) run() {
	for !s.atEOF() {
		if s.cur().Kind == token.Semi {
			s.pos++
			continue
		}
		if s.cur().Kind == token.KwImport {
			s.scanImport()
			continue
		}
		if s.cur().Kind == token.Ident {
			s.scanDecl()
			continue
		}
		s.errorf(s.cur().Pos, "unexpected token %s at top level", s.cur().Kind)
		s.resyncToSemi()
	}
}

// resyncToSemi skips tokens until past the next top-level `;` (or EOF),
// the recovery strategy for a declaration the scanner could not make
// sense of.
func (s *scanner) resyncToSemi() {
	depth := 0
	for !s.atEOF() {
		switch s.cur().Kind {
		case token.LBrace, token.LParen, token.LBracket:
			depth++
		case token.RBrace, token.RParen, token.RBracket:
			if depth > 0 {
				depth--
			}
		case token.Semi:
			if depth == 0 {
				s.pos++
				return
			}
		}
		s.pos++
	}
}

func (s *scanner) scanImport() {
	start := s.pos
	s.pos++ // `import`
	if s.atEOF() || s.cur().Kind != token.String {
		s.errorf(s.toks[start].Pos, "expected string literal after import")
		s.resyncToSemi()
		return
	}
	path := s.cur().Literal
	s.pos++
	if s.atEOF() || s.cur().Kind != token.Semi {
		s.errorf(s.toks[start].Pos, "expected ';' after import path")
		s.resyncToSemi()
		return
	}
	s.pos++ // `;`
	s.imports = append(s.imports, path)
}

// balanced scans from an opening bracket at s.pos (of kind open/close) to
// its matching close, returning the index of the inner range [open+1,
// close) and leaving s.pos just past the close. ok is false if EOF is
// reached first (spec.md: bracket-mismatched declarations are skipped).
func (s *scanner) balanced(open, close token.Kind) (inner TokenRange, ok bool) {
	openIdx := s.pos
	s.pos++
	depth := 1
	for !s.atEOF() {
		switch s.cur().Kind {
		case open:
			depth++
		case close:
			depth--
			if depth == 0 {
				inner = TokenRange{Start: openIdx + 1, End: s.pos}
				s.pos++
				return inner, true
			}
		}
		s.pos++
	}
	return TokenRange{}, false
}

func (s *scanner) scanDecl() {
	start := s.pos
	identTok := s.cur()
	identPos := identTok.Pos
	id := identTok.Literal
	s.pos++

	if s.atEOF() {
		s.errorf(identPos, "unexpected end of file after identifier %q", id)
		return
	}

	switch s.cur().Kind {
	case token.ColonColon:
		s.pos++
		s.scanColonColonDecl(start, id, identPos)
	case token.Colon:
		s.pos++
		s.scanObjectDecl(start, id, identPos)
	default:
		s.errorf(identPos, "expected ':' or '::' after identifier %q", id)
		s.resyncToSemi()
	}
}

func (s *scanner) scanColonColonDecl(start int, id string, identPos token.Pos) {
	if s.atEOF() {
		s.errorf(identPos, "unexpected end of file in declaration of %q", id)
		return
	}
	switch s.cur().Kind {
	case token.KwFunc:
		s.scanFunc(start, id, identPos)
	case token.KwStruct:
		s.scanStruct(start, id, identPos)
	case token.KwEnum:
		s.scanEnum(start, id, identPos)
	case token.KwArg:
		s.scanArg(start, id, identPos)
	default:
		// `name :: expr;` — a constant global.
		s.scanRestAsGlobal(start, id, identPos, true)
	}
}

func (s *scanner) scanFunc(start int, id string, identPos token.Pos) {
	s.pos++ // `func`
	if s.atEOF() || s.cur().Kind != token.LParen {
		s.errorf(identPos, "expected '(' in function %q", id)
		s.resyncToSemi()
		return
	}
	params, ok := s.balanced(token.LParen, token.RParen)
	if !ok {
		s.errorf(identPos, "unbalanced '(' in function %q", id)
		return
	}

	var returns TokenRange
	if !s.atEOF() && s.cur().Kind == token.LParen {
		r, ok := s.balanced(token.LParen, token.RParen)
		if !ok {
			s.errorf(identPos, "unbalanced return-type '(' in function %q", id)
			return
		}
		returns = r
	}

	if s.atEOF() || s.cur().Kind != token.LBrace {
		s.errorf(identPos, "expected '{' for body of function %q", id)
		s.resyncToSemi()
		return
	}
	body, ok := s.balanced(token.LBrace, token.RBrace)
	if !ok {
		s.errorf(identPos, "unbalanced '{' in function %q", id)
		return
	}

	s.defs = append(s.defs, CodeDefinition{
		Kind: DeclFunc, Identifier: id, IdentPos: identPos,
		Whole: TokenRange{Start: start, End: s.pos}, Params: params, Returns: returns, Body: body,
	})
}

func (s *scanner) scanStruct(start int, id string, identPos token.Pos) {
	s.pos++ // `struct`
	if s.atEOF() || s.cur().Kind != token.LBrace {
		s.errorf(identPos, "expected '{' for body of struct %q", id)
		s.resyncToSemi()
		return
	}
	body, ok := s.balanced(token.LBrace, token.RBrace)
	if !ok {
		s.errorf(identPos, "unbalanced '{' in struct %q", id)
		return
	}
	s.defs = append(s.defs, CodeDefinition{
		Kind: DeclStruct, Identifier: id, IdentPos: identPos,
		Whole: TokenRange{Start: start, End: s.pos}, Body: body,
	})
}

func (s *scanner) scanEnum(start int, id string, identPos token.Pos) {
	s.pos++ // `enum`
	if s.atEOF() || s.cur().Kind != token.LBrace {
		s.errorf(identPos, "expected '{' for body of enum %q", id)
		s.resyncToSemi()
		return
	}
	body, ok := s.balanced(token.LBrace, token.RBrace)
	if !ok {
		s.errorf(identPos, "unbalanced '{' in enum %q", id)
		return
	}
	s.defs = append(s.defs, CodeDefinition{
		Kind: DeclEnum, Identifier: id, IdentPos: identPos,
		Whole: TokenRange{Start: start, End: s.pos}, Body: body,
	})
}

func (s *scanner) scanArg(start int, id string, identPos token.Pos) {
	s.pos++ // `arg`
	restStart := s.pos
	if !s.skipToTopLevelSemi() {
		s.errorf(identPos, "expected ';' terminating arg declaration %q", id)
		return
	}
	s.defs = append(s.defs, CodeDefinition{
		Kind: DeclArg, Identifier: id, IdentPos: identPos,
		Whole: TokenRange{Start: start, End: s.pos}, Rest: TokenRange{Start: restStart, End: s.pos - 1},
	})
}

func (s *scanner) scanObjectDecl(start int, id string, identPos token.Pos) {
	s.scanRestAsGlobal(start, id, identPos, false)
}

func (s *scanner) scanRestAsGlobal(start int, id string, identPos token.Pos, isConstant bool) {
	restStart := s.pos
	if !s.skipToTopLevelSemi() {
		s.errorf(identPos, "expected ';' terminating declaration of %q", id)
		return
	}
	s.defs = append(s.defs, CodeDefinition{
		Kind: DeclGlobal, Identifier: id, IdentPos: identPos, IsConstant: isConstant,
		Whole: TokenRange{Start: start, End: s.pos}, Rest: TokenRange{Start: restStart, End: s.pos - 1},
	})
}

// skipToTopLevelSemi advances s.pos past the next `;` not nested inside
// brackets, leaving s.pos just after it. Returns false on EOF without
// finding one.
func (s *scanner) skipToTopLevelSemi() bool {
	depth := 0
	for !s.atEOF() {
		switch s.cur().Kind {
		case token.LBrace, token.LParen, token.LBracket:
			depth++
		case token.RBrace, token.RParen, token.RBracket:
			if depth > 0 {
				depth--
			}
		case token.Semi:
			if depth == 0 {
				s.pos++
				return true
			}
		}
		s.pos++
	}
	return false
}
