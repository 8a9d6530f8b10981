// Package sema is the Semantic Analyser / IR Builder of spec.md §3.6/§4.4:
// it lowers internal/ast trees into internal/ir graphs against an already
// Identified+Defined internal/defs.Table, doing name resolution, type
// checking, auto ref/deref insertion, and control-flow lowering along the
// way.
//
// The lowering idiom — walk the tree once, emit Units as you go, use
// ir.NewEmpty anchors for not-yet-known jump targets — generalizes the
// original implementation's ir_from_node/IR_Group composition
// (original_source/code/ir.cpp) to Go's direct-emission style instead of
// building and splicing little IR_Group fragments: internal/ir.Function's
// linked-list Emit/Place already gives forward references for free, so
// there is no need for a separate fragment type.
package sema

import (
	"fmt"

	"github.com/yov-lang/yov/internal/ast"
	"github.com/yov-lang/yov/internal/defs"
	"github.com/yov-lang/yov/internal/ir"
	"github.com/yov-lang/yov/internal/token"
	"github.com/yov-lang/yov/internal/types"
)

// Error is a semantic diagnostic, reported with a source location.
type Error struct {
	Pos token.Pos
	Msg string
}

func (e Error) Error() string { return fmt.Sprintf("%d: %s", e.Pos, e.Msg) }

// scope is a lexical chain of name -> register-index bindings.
type scope struct {
	parent *scope
	vars   map[string]int
}

func newScope(parent *scope) *scope { return &scope{parent: parent, vars: map[string]int{}} }

func (s *scope) define(name string, idx int) { s.vars[name] = idx }

func (s *scope) lookup(name string) (int, bool) {
	for cur := s; cur != nil; cur = cur.parent {
		if idx, ok := cur.vars[name]; ok {
			return idx, true
		}
	}
	return 0, false
}

// loopFrame tracks the jump anchors a break/continue inside the current
// loop body must target.
type loopFrame struct {
	continueTarget *ir.Unit
	breakTarget    *ir.Unit
}

// Builder lowers one function body (or the program's global initializer)
// at a time into a freshly-built *ir.Function. A Builder is not safe for
// concurrent use; callers building many functions in parallel (spec.md §5's
// per-function parallel IR build) should use one Builder per function.
type Builder struct {
	Defs *defs.Table

	fn         *ir.Function
	scope      *scope
	loops      []*loopFrame
	returnRegs []int
	errs       []Error
}

// New creates a Builder against the given Definition Table, whose Types
// table must already contain every struct/enum this build will reference.
func New(d *defs.Table) *Builder {
	return &Builder{Defs: d}
}

func (b *Builder) errorf(pos token.Pos, format string, args ...any) {
	b.errs = append(b.errs, Error{Pos: pos, Msg: fmt.Sprintf(format, args...)})
}

// ResolveTypeExpr resolves a parsed type syntax node to a concrete VType
// against a Definition Table's Types table, applying array and reference
// wrapping in source order (leading `&` outermost, trailing `[]` innermost
// the way *ast.TypeExpr records them). Exported so internal/compiler's
// Define-phase can resolve field/parameter/global types with the same
// logic used here for local declarations.
func ResolveTypeExpr(d *defs.Table, te *ast.TypeExpr) (types.VType, bool) {
	if te == nil {
		return types.Void, true
	}
	base, ok := d.Types.Lookup(te.Name)
	if !ok {
		return types.Nil, false
	}
	if te.Dims > 0 {
		base = types.FromDimension(base, uint32(te.Dims))
	}
	for i := 0; i < te.RefDims; i++ {
		base = types.FromReference(base)
	}
	return base, true
}

// BuildConstExpr lowers x into a scratch, discarded *ir.Function and
// returns the resulting ir.Value. Exported for internal/compiler's Define
// and Ready phases, which both need to evaluate a standalone expression
// outside of any real function body: an arg's default value, an enum
// member's explicit `= expr`, or (via InferExprType) an inferred-type
// global's initializer. b.buildExpr already does the name
// resolution/type-checking a real build needs, so this just runs it
// against a throwaway function rather than duplicating that logic. b is
// left in the state the scratch build put it in; callers that also need a
// real build (BuildFunction/BuildGlobalInit) should use a separate
// Builder.
func (b *Builder) BuildConstExpr(x ast.Expr) (ir.Value, []Error) {
	b.fn = ir.NewFunction("$const", "")
	b.scope = newScope(nil)
	b.loops = nil
	b.returnRegs = nil
	b.errs = nil
	v := b.buildExpr(x)
	return v, b.errs
}

// InferExprType resolves x's static type the same way BuildConstExpr does,
// discarding the value and keeping only its Type — what a global or local
// declared without an explicit type (`ast.ObjectDeclStmt.Type == nil`)
// needs from its initializer.
func (b *Builder) InferExprType(x ast.Expr) (types.VType, []Error) {
	v, errs := b.BuildConstExpr(x)
	return v.Type, errs
}

func (b *Builder) resolveType(te *ast.TypeExpr) types.VType {
	t, ok := ResolveTypeExpr(b.Defs, te)
	if !ok {
		b.errorf(te.Pos().Start, "unknown type %q", te.Name)
		return types.Nil
	}
	return t
}

// newTemp allocates a fresh unnamed register in the function under
// construction.
func (b *Builder) newTemp(t types.VType) int { return b.fn.AddLocal(t) }

// coerce adjusts v to target's type where the language allows an implicit
// conversion: widening to Any, and the auto ref/deref spec.md §4.5
// describes for reference parameters and dereferenced reads. Anything else
// is left as-is; a real mismatch was already caught by the caller's own
// type check (e.g. ResultOfBinaryOp/ResultOfAssignment returning ok=false).
func (b *Builder) coerce(v ir.Value, target types.VType) ir.Value {
	if target.Kind == types.KindVoid || target.Kind == types.KindInvalid {
		return v
	}
	if v.Type.Equals(target, b.Defs.Types) || target.Kind == types.KindAny {
		return v
	}
	addressable := v.Kind == ir.VRegister || v.Kind == ir.VLValue
	if target.Kind == types.KindReference && addressable && !v.Type.IsReference() {
		r := v
		r.RefOp++
		r.Type = target
		return r
	}
	if v.Type.IsReference() && addressable && target.Kind != types.KindReference {
		r := v
		r.RefOp--
		r.Type = b.Defs.Types.At(v.Type.BaseIndex)
		return r
	}
	return v
}

func binOpFromToken(k token.Kind) (types.BinOp, bool) {
	switch k {
	case token.Add:
		return types.OpAdd, true
	case token.Sub:
		return types.OpSub, true
	case token.Mul:
		return types.OpMul, true
	case token.Div:
		return types.OpDiv, true
	case token.Mod:
		return types.OpMod, true
	case token.Eq:
		return types.OpEq, true
	case token.Ne:
		return types.OpNe, true
	case token.Lt:
		return types.OpLt, true
	case token.Le:
		return types.OpLe, true
	case token.Gt:
		return types.OpGt, true
	case token.Ge:
		return types.OpGe, true
	case token.LAnd:
		return types.OpLAnd, true
	case token.LOr:
		return types.OpLOr, true
	default:
		return 0, false
	}
}
