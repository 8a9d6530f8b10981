package parser

import (
	"github.com/yov-lang/yov/internal/ast"
	"github.com/yov-lang/yov/internal/locscan"
	"github.com/yov-lang/yov/internal/token"
)

// ParseFile builds a complete *ast.File from a locscan.Result, parsing each
// CodeDefinition's token ranges on demand — the on-demand parsing model of
// spec.md §4.3: nothing is parsed until its range is sliced out here.
func ParseFile(res *locscan.Result, name string) (*ast.File, []Error) {
	file := &ast.File{Name: name}
	var errs []Error

	for _, path := range res.Imports {
		file.Imports = append(file.Imports, &ast.ImportDecl{Path: path})
	}

	for _, def := range res.Defs {
		switch def.Kind {
		case locscan.DeclFunc:
			fn, fnErrs := parseFuncDecl(res.Tokens, def)
			file.Funcs = append(file.Funcs, fn)
			errs = append(errs, fnErrs...)
		case locscan.DeclStruct:
			sd, sdErrs := parseStructDecl(res.Tokens, def)
			file.Structs = append(file.Structs, sd)
			errs = append(errs, sdErrs...)
		case locscan.DeclEnum:
			ed, edErrs := parseEnumDecl(res.Tokens, def)
			file.Enums = append(file.Enums, ed)
			errs = append(errs, edErrs...)
		case locscan.DeclArg:
			ad, adErrs := parseArgDecl(res.Tokens, def)
			file.Args = append(file.Args, ad)
			errs = append(errs, adErrs...)
		case locscan.DeclGlobal:
			gd, gdErrs := parseGlobalDecl(res.Tokens, def)
			file.Globals = append(file.Globals, gd)
			errs = append(errs, gdErrs...)
		}
	}

	return file, errs
}

func slice(toks []token.Token, r locscan.TokenRange) []token.Token {
	return toks[r.Start:r.End]
}

func rangeStart(toks []token.Token, r locscan.TokenRange) token.Pos {
	if r.Start < len(toks) {
		return toks[r.Start].Pos
	}
	if len(toks) > 0 {
		return toks[len(toks)-1].Pos
	}
	return 0
}

func rangeEnd(toks []token.Token, r locscan.TokenRange) token.Pos {
	if r.End > 0 && r.End <= len(toks) {
		return toks[r.End-1].End
	}
	return rangeStart(toks, r)
}

func parseFuncDecl(toks []token.Token, def locscan.CodeDefinition) (*ast.FuncDecl, []Error) {
	var errs []Error
	name := &ast.Ident{Position: Position{Start: def.IdentPos, End: def.IdentPos + token.Pos(len(def.Identifier))}, Name: def.Identifier}

	params, perrs := parseFieldList(slice(toks, def.Params))
	errs = append(errs, perrs...)
	var returns []*ast.Field
	if def.Returns.Len() > 0 {
		var rerrs []Error
		returns, rerrs = parseFieldList(slice(toks, def.Returns))
		errs = append(errs, rerrs...)
	}

	bodyToks := slice(toks, def.Body)
	bp := New(bodyToks)
	stmts := bp.ParseStmts()
	errs = append(errs, bp.Errors()...)

	bodyPos := Position{Start: rangeStart(toks, def.Body), End: rangeEnd(toks, def.Body)}
	body := &ast.BlockStmt{Position: bodyPos, List: stmts}

	return &ast.FuncDecl{
		Position: Position{Start: def.IdentPos, End: bodyPos.End},
		Name:     name, Params: params, Results: returns, Body: body,
	}, errs
}

func parseFieldList(toks []token.Token) ([]*ast.Field, []Error) {
	p := New(toks)
	var fields []*ast.Field
	for !p.c.AtEOF() {
		nameTok, err := p.c.Expect(token.Ident)
		if err != nil {
			p.errorf(p.c.Cur().Pos, "expected parameter name")
			break
		}
		if _, err := p.c.Expect(token.Colon); err != nil {
			p.errorf(p.c.Cur().Pos, "expected ':' after parameter name")
			break
		}
		te := p.parseTypeExpr()
		fields = append(fields, &ast.Field{
			Position: Position{Start: nameTok.Pos, End: te.End},
			Name:     &ast.Ident{Position: posOf(nameTok), Name: nameTok.Literal},
			Type:     te,
		})
		if p.c.Cur().Kind == token.Comma || p.c.Cur().Kind == token.Semi {
			p.c.Consume()
			continue
		}
		break
	}
	return fields, p.errs
}

func parseStructDecl(toks []token.Token, def locscan.CodeDefinition) (*ast.StructDecl, []Error) {
	members, errs := parseFieldList(slice(toks, def.Body))
	name := &ast.Ident{Position: Position{Start: def.IdentPos, End: def.IdentPos + token.Pos(len(def.Identifier))}, Name: def.Identifier}
	return &ast.StructDecl{
		Position: Position{Start: def.IdentPos, End: rangeEnd(toks, def.Body)},
		Name:     name, Members: members,
	}, errs
}

func parseEnumDecl(toks []token.Token, def locscan.CodeDefinition) (*ast.EnumDecl, []Error) {
	bodyToks := slice(toks, def.Body)
	p := New(bodyToks)
	var members []*ast.EnumMember
	for !p.c.AtEOF() {
		nameTok, err := p.c.Expect(token.Ident)
		if err != nil {
			p.errorf(p.c.Cur().Pos, "expected enum member name")
			break
		}
		m := &ast.EnumMember{Position: posOf(nameTok), Name: &ast.Ident{Position: posOf(nameTok), Name: nameTok.Literal}}
		if p.c.Cur().Kind == token.Assign {
			p.c.Consume()
			m.Value = p.ParseExpr()
		}
		members = append(members, m)
		if p.c.Cur().Kind == token.Comma {
			p.c.Consume()
			continue
		}
		break
	}
	name := &ast.Ident{Position: Position{Start: def.IdentPos, End: def.IdentPos + token.Pos(len(def.Identifier))}, Name: def.Identifier}
	return &ast.EnumDecl{
		Position: Position{Start: def.IdentPos, End: rangeEnd(toks, def.Body)},
		Name:     name, Members: members,
	}, p.errs
}

func parseGlobalDecl(toks []token.Token, def locscan.CodeDefinition) (*ast.ObjectDeclStmt, []Error) {
	restToks := slice(toks, def.Rest)
	p := New(restToks)
	name := &ast.Ident{Position: Position{Start: def.IdentPos, End: def.IdentPos + token.Pos(len(def.Identifier))}, Name: def.Identifier}

	decl := &ast.ObjectDeclStmt{
		Position:   Position{Start: def.IdentPos, End: rangeEnd(toks, def.Rest)},
		Names:      []*ast.Ident{name},
		IsConstant: def.IsConstant,
	}
	if def.IsConstant {
		decl.Value = p.ParseExpr()
	} else {
		if k := p.c.Cur().Kind; k == token.Ident || k == token.Amp {
			decl.Type = p.parseTypeExpr()
		}
		if p.c.Cur().Kind == token.Assign {
			p.c.Consume()
			decl.Value = p.ParseExpr()
		}
	}
	return decl, p.errs
}

func parseArgDecl(toks []token.Token, def locscan.CodeDefinition) (*ast.ArgDecl, []Error) {
	restToks := slice(toks, def.Rest)
	p := New(restToks)
	te := p.parseTypeExpr()
	required := true
	var def_ ast.Expr
	if p.c.Cur().Kind == token.Assign {
		p.c.Consume()
		def_ = p.ParseExpr()
		required = false
	}
	name := &ast.Ident{Position: Position{Start: def.IdentPos, End: def.IdentPos + token.Pos(len(def.Identifier))}, Name: def.Identifier}
	return &ast.ArgDecl{
		Position: Position{Start: def.IdentPos, End: rangeEnd(toks, def.Rest)},
		Name:     name, Type: te, Default: def_, Required: required,
	}, p.errs
}
