package locscan_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yov-lang/yov/internal/locscan"
	"github.com/yov-lang/yov/internal/source"
)

func TestScanFindsImportsAndDecls(t *testing.T) {
	text := `
import "lib/util.yov";

Color :: enum { Red, Green, Blue }

P :: struct { x: Int; y: Int; }

limit :: arg Int = 10;

main :: func() {
	p: P;
	p.x = 3;
}
`
	script := source.New(0, "/x.yov", text)
	res, diags := locscan.Scan(script)
	require.Empty(t, diags)
	require.NotNil(t, res)

	assert.Equal(t, []string{"lib/util.yov"}, res.Imports)
	require.Len(t, res.Defs, 4)

	assert.Equal(t, locscan.DeclEnum, res.Defs[0].Kind)
	assert.Equal(t, "Color", res.Defs[0].Identifier)
	assert.Equal(t, locscan.DeclStruct, res.Defs[1].Kind)
	assert.Equal(t, "P", res.Defs[1].Identifier)
	assert.Equal(t, locscan.DeclArg, res.Defs[2].Kind)
	assert.Equal(t, "limit", res.Defs[2].Identifier)
	assert.Equal(t, locscan.DeclFunc, res.Defs[3].Kind)
	assert.Equal(t, "main", res.Defs[3].Identifier)
	assert.True(t, res.Defs[3].Body.Len() > 0)
}

func TestScanRecoversFromUnbalancedBrace(t *testing.T) {
	text := `broken :: func() { println("x");` // no closing brace
	script := source.New(0, "/x.yov", text)
	res, diags := locscan.Scan(script)
	require.NotEmpty(t, diags)
	assert.Empty(t, res.Defs)
}

func TestScanGlobalConstant(t *testing.T) {
	text := `n :: 21;`
	script := source.New(0, "/x.yov", text)
	res, diags := locscan.Scan(script)
	require.Empty(t, diags)
	require.Len(t, res.Defs, 1)
	assert.Equal(t, locscan.DeclGlobal, res.Defs[0].Kind)
	assert.True(t, res.Defs[0].IsConstant)
}
