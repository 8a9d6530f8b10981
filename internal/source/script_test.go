package source_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/yov-lang/yov/internal/source"
	"github.com/yov-lang/yov/internal/token"
)

func TestLineCol(t *testing.T) {
	s := source.New(0, "/x.yov", "line one\nline two\nline three")
	line, col := s.LineCol(token.Pos(9))
	assert.Equal(t, 2, line)
	assert.Equal(t, 0, col)

	line, _ = s.LineCol(token.Pos(0))
	assert.Equal(t, 1, line)
}

func TestLineText(t *testing.T) {
	s := source.New(0, "/x.yov", "a := 1;\nb := 2;\n")
	assert.Equal(t, "b := 2;", s.LineText(token.Pos(8)))
}

func TestSetDedups(t *testing.T) {
	set := source.NewSet()
	a, added := set.Add("/x.yov", "hi")
	assert.True(t, added)
	b, added := set.Add("/x.yov", "hi")
	assert.False(t, added)
	assert.Same(t, a, b)
	assert.Equal(t, 1, set.Len())
}
