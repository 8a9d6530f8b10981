package parser_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yov-lang/yov/internal/ast"
	"github.com/yov-lang/yov/internal/lexer"
	"github.com/yov-lang/yov/internal/locscan"
	"github.com/yov-lang/yov/internal/parser"
	"github.com/yov-lang/yov/internal/source"
	"github.com/yov-lang/yov/internal/token"
)

func lex(t *testing.T, text string) []token.Token {
	t.Helper()
	toks, err := lexer.Lex(text, 0)
	require.NoError(t, err)
	return toks
}

func TestParseExprPrecedence(t *testing.T) {
	p := parser.New(lex(t, "2 + 3 * 4"))
	x := p.ParseExpr()
	require.Empty(t, p.Errors())

	bin, ok := x.(*ast.BinaryExpr)
	require.True(t, ok)
	assert.Equal(t, token.Add, bin.Op)
	assert.IsType(t, &ast.BasicLit{}, bin.Left)

	rhs, ok := bin.Right.(*ast.BinaryExpr)
	require.True(t, ok)
	assert.Equal(t, token.Mul, rhs.Op)
}

func TestParseExprStringInterpolation(t *testing.T) {
	p := parser.New(lex(t, `"n*2 = {n * 2}"`))
	x := p.ParseExpr()
	require.Empty(t, p.Errors())

	tmpl, ok := x.(*ast.TemplateExpr)
	require.True(t, ok)
	require.Len(t, tmpl.Subs, 1)
	assert.Equal(t, []string{"n*2 = ", ""}, tmpl.Parts)
	assert.IsType(t, &ast.BinaryExpr{}, tmpl.Subs[0])
}

func TestParseExprPlainStringHasNoTemplate(t *testing.T) {
	p := parser.New(lex(t, `"hello"`))
	x := p.ParseExpr()
	require.Empty(t, p.Errors())
	lit, ok := x.(*ast.BasicLit)
	require.True(t, ok)
	assert.Equal(t, token.String, lit.Kind)
}

func TestParseIfElse(t *testing.T) {
	p := parser.New(lex(t, `if (x > 0) { y = 1; } else { y = 2; }`))
	stmt := p.ParseStmts()
	require.Empty(t, p.Errors())
	require.Len(t, stmt, 1)

	ifs, ok := stmt[0].(*ast.IfStmt)
	require.True(t, ok)
	require.Len(t, ifs.Body.List, 1)
	require.NotNil(t, ifs.Else)
	elseBlock, ok := ifs.Else.(*ast.BlockStmt)
	require.True(t, ok)
	require.Len(t, elseBlock.List, 1)
}

func TestParseForCStyle(t *testing.T) {
	p := parser.New(lex(t, `for (i: Int = 0; i < 10; i = i + 1) { sum = sum + i; }`))
	stmts := p.ParseStmts()
	require.Empty(t, p.Errors())
	require.Len(t, stmts, 1)

	fs, ok := stmts[0].(*ast.ForStmt)
	require.True(t, ok)
	require.NotNil(t, fs.Init)
	assert.IsType(t, &ast.ObjectDeclStmt{}, fs.Init)
	require.NotNil(t, fs.Cond)
	require.NotNil(t, fs.Post)
}

func TestParseForIn(t *testing.T) {
	p := parser.New(lex(t, `for (v, i : a) { println(v); }`))
	stmts := p.ParseStmts()
	require.Empty(t, p.Errors())
	require.Len(t, stmts, 1)

	fi, ok := stmts[0].(*ast.ForInStmt)
	require.True(t, ok)
	assert.Equal(t, "v", fi.Elem.Name)
	require.NotNil(t, fi.Idx)
	assert.Equal(t, "i", fi.Idx.Name)
}

func TestParseObjectDeclAndAssign(t *testing.T) {
	p := parser.New(lex(t, `p: P; p.x = 3;`))
	stmts := p.ParseStmts()
	require.Empty(t, p.Errors())
	require.Len(t, stmts, 2)

	od, ok := stmts[0].(*ast.ObjectDeclStmt)
	require.True(t, ok)
	require.Len(t, od.Names, 1)
	assert.Equal(t, "p", od.Names[0].Name)
	require.NotNil(t, od.Type)
	assert.Equal(t, "P", od.Type.Name)

	as, ok := stmts[1].(*ast.AssignStmt)
	require.True(t, ok)
	assert.Equal(t, token.Assign, as.Op)
	assert.IsType(t, &ast.SelectorExpr{}, as.LHS[0])
}

func TestParseFileEndToEnd(t *testing.T) {
	text := `
Color :: enum { Red, Green, Blue }

P :: struct { x: Int; y: Int; }

limit :: arg Int = 10;

n :: 21;

main :: func() {
	p: P;
	p.x = 3;
}
`
	script := source.New(0, "/x.yov", text)
	res, diags := locscan.Scan(script)
	require.Empty(t, diags)

	file, errs := parser.ParseFile(res, "x.yov")
	require.Empty(t, errs)

	require.Len(t, file.Enums, 1)
	assert.Equal(t, "Color", file.Enums[0].Name.Name)
	require.Len(t, file.Enums[0].Members, 3)

	require.Len(t, file.Structs, 1)
	assert.Equal(t, "P", file.Structs[0].Name.Name)
	require.Len(t, file.Structs[0].Members, 2)

	require.Len(t, file.Args, 1)
	assert.Equal(t, "limit", file.Args[0].Name.Name)
	assert.False(t, file.Args[0].Required)

	require.Len(t, file.Globals, 1)
	assert.Equal(t, "n", file.Globals[0].Names[0].Name)
	assert.True(t, file.Globals[0].IsConstant)

	require.Len(t, file.Funcs, 1)
	assert.Equal(t, "main", file.Funcs[0].Name.Name)
	require.Len(t, file.Funcs[0].Body.List, 2)
}
