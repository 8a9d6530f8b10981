package lexer_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yov-lang/yov/internal/lexer"
	"github.com/yov-lang/yov/internal/token"
)

func kinds(toks []token.Token) []token.Kind {
	out := make([]token.Kind, len(toks))
	for i, t := range toks {
		out[i] = t.Kind
	}
	return out
}

func TestLexBasics(t *testing.T) {
	toks, err := lexer.Lex(`main :: func() { println(2 + 3 * 4); }`, 0)
	require.NoError(t, err)
	assert.Equal(t, []token.Kind{
		token.Ident, token.ColonColon, token.KwFunc, token.LParen, token.RParen,
		token.LBrace, token.Ident, token.LParen, token.Int, token.Add, token.Int,
		token.Mul, token.Int, token.RParen, token.Semi, token.RBrace, token.EOF,
	}, kinds(toks))
}

func TestLexStringInterpolation(t *testing.T) {
	toks, err := lexer.Lex(`"n*2 = {n * 2}"`, 0)
	require.NoError(t, err)
	require.Len(t, toks, 2)
	assert.Equal(t, token.String, toks[0].Kind)
	assert.Equal(t, "n*2 = {n * 2}", toks[0].Literal)
}

func TestLexCompoundAssign(t *testing.T) {
	toks, err := lexer.Lex(`a += 1; b::2`, 0)
	require.NoError(t, err)
	assert.Equal(t, token.AddAssign, toks[1].Kind)
	assert.Equal(t, token.Add, token.AddAssign.CompoundOp())
	assert.Equal(t, token.ColonColon, toks[5].Kind)
}

func TestLexUnterminatedString(t *testing.T) {
	_, err := lexer.Lex(`"abc`, 0)
	require.Error(t, err)
}

func TestLexUnterminatedComment(t *testing.T) {
	_, err := lexer.Lex(`/* hello`, 0)
	require.Error(t, err)
}

func TestLexMalformedCodepoint(t *testing.T) {
	_, err := lexer.Lex(`'ab`, 0)
	require.Error(t, err)
}

func TestLexPositionsCarryBase(t *testing.T) {
	toks, err := lexer.Lex(`x`, 100)
	require.NoError(t, err)
	assert.Equal(t, token.Pos(100), toks[0].Pos)
}
