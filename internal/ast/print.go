package ast

import (
	"go/ast"
	"io"
	"os"
)

// Print prints n to standard output, skipping nil fields. Print(n) is the
// same as Fprint(os.Stdout, n).
func Print(n Node) error {
	return Fprint(os.Stdout, n)
}

// Fprint prints n to w, skipping nil fields. go/ast.Fprint is a generic
// reflection-based struct-tree printer with no dependency on go/ast's own
// node types, so it works unchanged against this package's node set.
func Fprint(w io.Writer, n Node) error {
	return ast.Fprint(w, nil, n, ast.NotNilFilter)
}
