package ast_test

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/yov-lang/yov/internal/ast"
	"github.com/yov-lang/yov/internal/token"
)

func TestPrint(t *testing.T) {
	testcases := []struct {
		n ast.Node
		e string
	}{
		{
			n: nil,
			e: "0  nil",
		},
		{
			n: &ast.Ident{
				Name: "foo",
			},
			e: `
0  *ast.Ident {
1  .  Position: ast.Position {
2  .  .  Start: 0
3  .  .  End: 0
4  .  }
5  .  Name: "foo"
6  }
			`,
		},
		{
			n: &ast.BasicLit{
				Kind:  token.Int,
				Value: "10",
			},
			e: `
0  *ast.BasicLit {
1  .  Position: ast.Position {
2  .  .  Start: 0
3  .  .  End: 0
4  .  }
5  .  Kind: int
6  .  Value: "10"
7  }
			`,
		},
		{
			n: &ast.BlockStmt{
				List: []ast.Stmt{
					&ast.ExprStmt{X: &ast.Ident{Name: "a"}},
				},
			},
			e: `
0  *ast.BlockStmt {
1  .  Position: ast.Position {
2  .  .  Start: 0
3  .  .  End: 0
4  .  }
5  .  List: []ast.Stmt (len = 1) {
6  .  .  0: *ast.ExprStmt {
7  .  .  .  Position: ast.Position {
8  .  .  .  .  Start: 0
9  .  .  .  .  End: 0
10  .  .  .  }
11  .  .  .  X: *ast.Ident {
12  .  .  .  .  Position: ast.Position {
13  .  .  .  .  .  Start: 0
14  .  .  .  .  .  End: 0
15  .  .  .  .  }
16  .  .  .  .  Name: "a"
17  .  .  .  }
18  .  .  }
19  .  }
20  }
			`,
		},
	}

	var buf bytes.Buffer
	for _, tt := range testcases {
		buf.Reset()
		assert.NoError(t, ast.Fprint(&buf, tt.n))
		assert.Equal(t, trim(tt.e), trim(buf.String()), "Expected:\n%s\n\nGot:\n%s", trim(tt.e), trim(buf.String()))
	}
}

// trim splits s into lines, trims whitespace from all lines, and returns
// the concatenated non-empty lines.
func trim(s string) string {
	lines := strings.Split(s, "\n")
	i := 0
	for _, line := range lines {
		line = strings.TrimSpace(line)
		if line != "" {
			lines[i] = line
			i++
		}
	}
	return strings.Join(lines[0:i], "\n")
}
