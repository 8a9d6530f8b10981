// Package ast defines the syntax trees produced by internal/parser.
//
// The node-interface shape (Node/Decl/Expr/Stmt, a BadNode usable in any of
// the three roles, and a Position mix-in every concrete node embeds) is
// generalized from the teacher's internal/ast package; there Position wraps
// tree-sitter row/column pairs, here it wraps the byte-offset token.Pos
// range produced by the hand-written lexer/parser, with row/column resolved
// lazily from a source.Script when a diagnostic needs one.
package ast

import "github.com/yov-lang/yov/internal/token"

// Position is the half-open [Start, End) byte range of a node in its
// owning script's source text.
type Position struct {
	Start token.Pos
	End   token.Pos
}

func (p Position) Pos() Position { return p }

// Node is implemented by every AST node.
type Node interface {
	Pos() Position
}

// Decl, Expr and Stmt tag the three syntactic roles a Node can play.
type (
	Decl interface {
		Node
		decl()
	}
	Expr interface {
		Node
		expr()
	}
	Stmt interface {
		Node
		stmt()
	}
)

// BadNode is a placeholder for a syntax error or a construct the parser
// gave up on; reported once by the parser and otherwise inert downstream.
type BadNode struct {
	Position
	Reason string
}

func (*BadNode) decl() {}
func (*BadNode) expr() {}
func (*BadNode) stmt() {}

// ----------------------------------------------------------------------
// Expressions

type (
	// Ident is an identifier reference.
	Ident struct {
		Position
		Name string
	}

	// BasicLit is an integer, string, boolean, or codepoint literal.
	BasicLit struct {
		Position
		Kind  token.Kind // token.Int, token.String, token.Codepoint, token.KwTrue/KwFalse
		Value string
	}

	// TemplateExpr is a string literal containing `{expr}` substitutions;
	// Parts alternates literal text and substitution expressions starting
	// and ending with (possibly empty) literal text: len(Parts) == len(Subs)+1.
	TemplateExpr struct {
		Position
		Parts []string
		Subs  []Expr
	}

	// ArrayLit is a `{e1, e2, ...}` array literal.
	ArrayLit struct {
		Position
		Elts []Expr
	}

	// TypeExpr names a type: Name with Dims levels of `[]` and RefDims
	// levels of leading `&`.
	TypeExpr struct {
		Position
		Name    string
		Dims    int
		RefDims int
	}

	// UnaryExpr is a prefix operator: `-x`, `!x`, or `&x` (take-reference).
	UnaryExpr struct {
		Position
		Op Token
		X  Expr
	}

	// BinaryExpr is `left op right`.
	BinaryExpr struct {
		Position
		Left  Expr
		Op    Token
		Right Expr
	}

	// IsExpr is a type-test: `x is Type`.
	IsExpr struct {
		Position
		X    Expr
		Type *TypeExpr
	}

	// SelectorExpr is `expr.name` (member or property access).
	SelectorExpr struct {
		Position
		X   Expr
		Sel *Ident
	}

	// IndexExpr is `expr[index]`.
	IndexExpr struct {
		Position
		X     Expr
		Index Expr
	}

	// CallExpr is `fun(args...)`.
	CallExpr struct {
		Position
		Fun  Expr
		Args []Expr
	}
)

// Token records the operator kind of a unary/binary expression.
type Token = token.Kind

func (*Ident) expr()        {}
func (*BasicLit) expr()     {}
func (*TemplateExpr) expr() {}
func (*ArrayLit) expr()     {}
func (*TypeExpr) expr()     {}
func (*UnaryExpr) expr()    {}
func (*BinaryExpr) expr()   {}
func (*IsExpr) expr()       {}
func (*SelectorExpr) expr() {}
func (*IndexExpr) expr()    {}
func (*CallExpr) expr()     {}

// ----------------------------------------------------------------------
// Statements

type (
	// BlockStmt is a `{ ... }` statement list.
	BlockStmt struct {
		Position
		List []Stmt
	}

	// ExprStmt is a stand-alone call expression used as a statement.
	ExprStmt struct {
		Position
		X Expr
	}

	// ObjectDeclStmt declares one or more names of the same Type, optionally
	// with an initializer (`=`) or a constant initializer (`::`).
	ObjectDeclStmt struct {
		Position
		Names      []*Ident
		Type       *TypeExpr // nil: infer from Value
		Value      Expr      // nil: zero-initialize
		IsConstant bool      // true for `::`
	}

	// AssignStmt is `lhs op= rhs` for op in {"", +, -, *, /, %}; len(LHS)
	// may exceed 1 only when RHS is a single multi-return call.
	AssignStmt struct {
		Position
		LHS []Expr
		Op  Token // token.Assign for plain `=`
		RHS []Expr
	}

	// ReturnStmt is `return expr, expr, ...`.
	ReturnStmt struct {
		Position
		Results []Expr
	}

	IfStmt struct {
		Position
		Cond Expr
		Body *BlockStmt
		Else Stmt // *IfStmt, *BlockStmt, or nil
	}

	WhileStmt struct {
		Position
		Cond Expr
		Body *BlockStmt
	}

	// ForStmt is the C-style `for (init; cond; post) body`.
	ForStmt struct {
		Position
		Init Stmt
		Cond Expr
		Post Stmt
		Body *BlockStmt
	}

	// ForInStmt is `for (elem[, idx] : expr) body`.
	ForInStmt struct {
		Position
		Elem *Ident
		Idx  *Ident // nil if no index binding
		X    Expr
		Body *BlockStmt
	}

	BreakStmt struct {
		Position
	}
	ContinueStmt struct {
		Position
	}
)

func (*BlockStmt) stmt()      {}
func (*ExprStmt) stmt()       {}
func (*ObjectDeclStmt) stmt() {}
func (*AssignStmt) stmt()     {}
func (*ReturnStmt) stmt()     {}
func (*IfStmt) stmt()         {}
func (*WhileStmt) stmt()      {}
func (*ForStmt) stmt()        {}
func (*ForInStmt) stmt()      {}
func (*BreakStmt) stmt()      {}
func (*ContinueStmt) stmt()   {}

// ----------------------------------------------------------------------
// Declarations

type (
	// ImportDecl is a top-level `import "path";`.
	ImportDecl struct {
		Position
		Path string
	}

	// Field is one (name, type) pair of a function parameter/return or a
	// struct member.
	Field struct {
		Position
		Name *Ident
		Type *TypeExpr
	}

	// FuncDecl is `name :: func(params) (results) { body }`.
	FuncDecl struct {
		Position
		Name    *Ident
		Params  []*Field
		Results []*Field
		Body    *BlockStmt
	}

	// StructDecl is `name :: struct { members }`.
	StructDecl struct {
		Position
		Name    *Ident
		Members []*Field
	}

	// EnumMember is one `name [= expr]` inside an enum body.
	EnumMember struct {
		Position
		Name  *Ident
		Value Expr // nil: auto-assigned (previous + 1, or 0 for the first)
	}

	// EnumDecl is `name :: enum { members }`.
	EnumDecl struct {
		Position
		Name    *Ident
		Members []*EnumMember
	}

	// ArgDecl is `name :: arg Type [= default];` — a script-argument
	// declaration, optionally carrying a description via a preceding
	// string literal sentence (parsed into Description by the parser).
	ArgDecl struct {
		Position
		Name        *Ident
		Type        *TypeExpr
		Default     Expr
		Required    bool
		Description string
	}
)

func (*ImportDecl) decl() {}
func (*FuncDecl) decl()   {}
func (*StructDecl) decl() {}
func (*EnumDecl) decl()   {}
func (*ArgDecl) decl()    {}

// File is every top-level declaration a single script contributes, plus any
// constructs the parser could not make sense of.
type File struct {
	Name     string
	Imports  []*ImportDecl
	Funcs    []*FuncDecl
	Structs  []*StructDecl
	Enums    []*EnumDecl
	Args     []*ArgDecl
	Globals  []*ObjectDeclStmt
	BadNodes []*BadNode
}

// Pos returns the zero Position: a File spans its whole script and carries
// no byte range of its own.
func (*File) Pos() Position { return Position{} }
