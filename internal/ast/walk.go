package ast

import "fmt"

// Visitor's Visit method is invoked for each node encountered by Walk,
// generalized from the teacher's ast.Visitor/Walk (itself adapted there
// from go/ast) to this package's node set.
type Visitor interface {
	Visit(node Node) (w Visitor)
}

// Inspect traverses an AST in depth-first order, calling f for every node.
func Inspect(node Node, f func(Node) bool) {
	Walk(inspector(f), node)
}

// Walk traverses an AST in depth-first order.
func Walk(v Visitor, node Node) {
	if node == nil || v == nil {
		return
	}
	if v = v.Visit(node); v == nil {
		return
	}

	switch n := node.(type) {
	case *Ident, *BasicLit, *BreakStmt, *ContinueStmt, *ImportDecl, *TypeExpr, *BadNode:
		// leaves

	case *TemplateExpr:
		walkExprList(v, n.Subs)
	case *ArrayLit:
		walkExprList(v, n.Elts)
	case *UnaryExpr:
		Walk(v, n.X)
	case *BinaryExpr:
		Walk(v, n.Left)
		Walk(v, n.Right)
	case *IsExpr:
		Walk(v, n.X)
		Walk(v, n.Type)
	case *SelectorExpr:
		Walk(v, n.X)
		Walk(v, n.Sel)
	case *IndexExpr:
		Walk(v, n.X)
		Walk(v, n.Index)
	case *CallExpr:
		Walk(v, n.Fun)
		walkExprList(v, n.Args)

	case *BlockStmt:
		walkStmtList(v, n.List)
	case *ExprStmt:
		Walk(v, n.X)
	case *ObjectDeclStmt:
		for _, id := range n.Names {
			Walk(v, id)
		}
		if n.Type != nil {
			Walk(v, n.Type)
		}
		if n.Value != nil {
			Walk(v, n.Value)
		}
	case *AssignStmt:
		walkExprList(v, n.LHS)
		walkExprList(v, n.RHS)
	case *ReturnStmt:
		walkExprList(v, n.Results)
	case *IfStmt:
		Walk(v, n.Cond)
		Walk(v, n.Body)
		if n.Else != nil {
			Walk(v, n.Else)
		}
	case *WhileStmt:
		Walk(v, n.Cond)
		Walk(v, n.Body)
	case *ForStmt:
		if n.Init != nil {
			Walk(v, n.Init)
		}
		if n.Cond != nil {
			Walk(v, n.Cond)
		}
		if n.Post != nil {
			Walk(v, n.Post)
		}
		Walk(v, n.Body)
	case *ForInStmt:
		Walk(v, n.Elem)
		if n.Idx != nil {
			Walk(v, n.Idx)
		}
		Walk(v, n.X)
		Walk(v, n.Body)

	case *Field:
		Walk(v, n.Name)
		if n.Type != nil {
			Walk(v, n.Type)
		}
	case *FuncDecl:
		Walk(v, n.Name)
		for _, p := range n.Params {
			Walk(v, p)
		}
		for _, r := range n.Results {
			Walk(v, r)
		}
		if n.Body != nil {
			Walk(v, n.Body)
		}
	case *StructDecl:
		Walk(v, n.Name)
		for _, m := range n.Members {
			Walk(v, m)
		}
	case *EnumMember:
		Walk(v, n.Name)
		if n.Value != nil {
			Walk(v, n.Value)
		}
	case *EnumDecl:
		Walk(v, n.Name)
		for _, m := range n.Members {
			Walk(v, m)
		}
	case *ArgDecl:
		Walk(v, n.Name)
		if n.Type != nil {
			Walk(v, n.Type)
		}
		if n.Default != nil {
			Walk(v, n.Default)
		}

	case *File:
		for _, i := range n.Imports {
			Walk(v, i)
		}
		for _, s := range n.Structs {
			Walk(v, s)
		}
		for _, e := range n.Enums {
			Walk(v, e)
		}
		for _, a := range n.Args {
			Walk(v, a)
		}
		for _, g := range n.Globals {
			Walk(v, g)
		}
		for _, f := range n.Funcs {
			Walk(v, f)
		}
		for _, b := range n.BadNodes {
			Walk(v, b)
		}

	default:
		panic(fmt.Sprintf("ast.Walk: unexpected node type %T", n))
	}

	v.Visit(nil)
}

func walkStmtList(v Visitor, list []Stmt) {
	for _, x := range list {
		Walk(v, x)
	}
}

func walkExprList(v Visitor, list []Expr) {
	for _, x := range list {
		Walk(v, x)
	}
}

type inspector func(Node) bool

func (f inspector) Visit(node Node) Visitor {
	if node == nil {
		return nil
	}
	if f(node) {
		return f
	}
	return nil
}
