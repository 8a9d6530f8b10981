package sema

import (
	"strconv"

	"github.com/yov-lang/yov/internal/ast"
	"github.com/yov-lang/yov/internal/ir"
	"github.com/yov-lang/yov/internal/token"
	"github.com/yov-lang/yov/internal/types"
)

// buildExpr lowers x to a single-valued operand, auto-collapsing a
// multi-return call via UResultEval (spec.md §4.4's "a call used where a
// single value is expected implicitly takes its first result").
func (b *Builder) buildExpr(x ast.Expr) ir.Value {
	v := b.buildExprRaw(x)
	if v.Kind == ir.VMultipleReturn {
		return b.scalarOf(x.Pos().Start, v)
	}
	return v
}

// isResultType reports whether t is the prelude Result struct, addressed by
// BaseName the same way runtime.resultType is (sema runs before intrinsics
// are wired, so there is no *runtime.Machine here to ask).
func isResultType(t types.VType) bool {
	return t.Kind == types.KindStruct && t.BaseName == "Result"
}

// scalarOf collapses a multi-return bundle to its first element, the rest
// of v.Elems having been left uncaptured by the caller (spec.md §4.4). If
// the trailing element is a Result, that counts as an implicit discard of
// it, so a UResultEval is emitted to abort on failure (spec.md §4.8's
// "builder auto-inserts ResultEval" rule) before the first element is
// handed back.
func (b *Builder) scalarOf(pos token.Pos, v ir.Value) ir.Value {
	if len(v.Elems) == 0 {
		return ir.None
	}
	first := v.Elems[0]
	last := v.Elems[len(v.Elems)-1]
	if isResultType(last.Type) {
		b.emitResultEval(pos, last)
	}
	return first
}

// emitResultEval emits an abort-on-failure check against a Result-typed
// operand. Dst mirrors Src (the checked register is rebound with its own
// settled value on success, a harmless no-op): nothing downstream ever
// reads through Dst, since the operand being checked is itself being
// discarded.
func (b *Builder) emitResultEval(pos token.Pos, v ir.Value) {
	b.fn.Emit(&ir.Unit{Kind: ir.UResultEval, Pos: pos, Dst: v.RegIndex, DstGlobal: v.Global, Src: v})
}

// buildExprStmt lowers a bare expression statement, whose value (if any) is
// discarded entirely rather than partially captured by an assignment.
// buildExpr only auto-checks a trailing Result on the N>1 collapse path
// (scalarOf); a single-return call whose sole return is itself a Result
// (delete_file, assert, ...) never takes that path, but discarding it here
// is just as much a dropped failure, so it gets the same check (spec.md
// §4.8's auto-ResultEval rule).
func (b *Builder) buildExprStmt(x ast.Expr) {
	v := b.buildExprRaw(x)
	switch v.Kind {
	case ir.VMultipleReturn:
		b.scalarOf(x.Pos().Start, v)
	case ir.VRegister:
		if isResultType(v.Type) {
			b.emitResultEval(x.Pos().Start, v)
		}
	}
}

func (b *Builder) buildExprRaw(x ast.Expr) ir.Value {
	switch x := x.(type) {
	case *ast.BasicLit:
		return b.buildBasicLit(x)
	case *ast.Ident:
		return b.buildIdent(x)
	case *ast.TemplateExpr:
		return b.buildTemplate(x)
	case *ast.ArrayLit:
		return b.buildArrayLit(x)
	case *ast.UnaryExpr:
		return b.buildUnary(x)
	case *ast.BinaryExpr:
		return b.buildBinary(x)
	case *ast.IsExpr:
		return b.buildIs(x)
	case *ast.SelectorExpr:
		return b.buildSelector(x)
	case *ast.IndexExpr:
		return b.buildIndex(x)
	case *ast.CallExpr:
		return b.buildCall(x)
	case *ast.BadNode:
		return ir.None
	default:
		b.errorf(x.Pos().Start, "unsupported expression node %T", x)
		return ir.None
	}
}

func (b *Builder) buildBasicLit(x *ast.BasicLit) ir.Value {
	switch x.Kind {
	case token.Int:
		n, err := strconv.ParseInt(x.Value, 10, 64)
		if err != nil {
			b.errorf(x.Pos().Start, "malformed integer literal %q", x.Value)
		}
		return ir.LitInt(n)
	case token.Codepoint:
		r := []rune(x.Value)
		if len(r) == 0 {
			b.errorf(x.Pos().Start, "empty codepoint literal")
			return ir.LitInt(0)
		}
		return ir.LitInt(int64(r[0]))
	case token.KwTrue:
		return ir.LitBool(true)
	case token.KwFalse:
		return ir.LitBool(false)
	case token.String:
		return ir.LitString(x.Value)
	default:
		b.errorf(x.Pos().Start, "unsupported literal kind %s", x.Kind)
		return ir.None
	}
}

func (b *Builder) buildIdent(x *ast.Ident) ir.Value {
	if idx, ok := b.scope.lookup(x.Name); ok {
		return ir.Reg(ir.VRegister, idx, b.fn.Registers[idx].Type)
	}
	if g, ok := b.Defs.Global(x.Name); ok {
		return ir.Value{Kind: ir.VRegister, RegIndex: g.Index, Type: g.Type, Global: true}
	}
	if fd, ok := b.Defs.Function(x.Name); ok {
		// A bare function name used as a value names its own Void/function
		// type placeholder; only call-position use is supported, so this
		// is only reachable from a malformed program and is reported by
		// the caller's own shape check (buildCall requires a CallExpr).
		_ = fd
	}
	b.errorf(x.Pos().Start, "undefined identifier %q", x.Name)
	return ir.None
}

func (b *Builder) buildTemplate(x *ast.TemplateExpr) ir.Value {
	var elems []ir.Value
	for i, sub := range x.Subs {
		elems = append(elems, ir.LitString(x.Parts[i]))
		elems = append(elems, b.buildExpr(sub))
	}
	elems = append(elems, ir.LitString(x.Parts[len(x.Parts)-1]))
	return ir.Value{Kind: ir.VStringComposition, Type: types.String(), Elems: elems}
}

func (b *Builder) buildArrayLit(x *ast.ArrayLit) ir.Value {
	if len(x.Elts) == 0 {
		return ir.Value{Kind: ir.VArray, Type: types.FromDimension(types.Any, 1), Empty: true}
	}
	elems := make([]ir.Value, len(x.Elts))
	for i, e := range x.Elts {
		elems[i] = b.buildExpr(e)
	}
	elemType := elems[0].Type
	return ir.Value{Kind: ir.VArray, Type: types.FromDimension(elemType, 1), Elems: elems}
}

func (b *Builder) buildUnary(x *ast.UnaryExpr) ir.Value {
	if x.Op == token.Amp {
		v := b.buildExpr(x.X)
		if v.Kind != ir.VRegister && v.Kind != ir.VLValue {
			b.errorf(x.Pos().Start, "cannot take a reference to a non-addressable expression")
			return v
		}
		r := v
		r.RefOp++
		r.Type = types.FromReference(v.Type)
		return r
	}

	v := b.buildExpr(x.X)
	var signOp types.SignOp
	switch x.Op {
	case token.Sub:
		signOp = types.SignNeg
	case token.Not:
		signOp = types.SignNot
	default:
		b.errorf(x.Pos().Start, "unsupported unary operator %s", x.Op)
		return ir.None
	}
	result, ok := v.Type.ResultOfSignOp(signOp)
	if !ok {
		b.errorf(x.Pos().Start, "operator %s not defined for type %s", x.Op, v.Type)
		return ir.None
	}
	dst := b.newTemp(result)
	b.fn.Emit(&ir.Unit{Kind: ir.USignOp, Pos: x.Pos().Start, Dst: dst, SignO: signOp, Src: v})
	return ir.Reg(ir.VRegister, dst, result)
}

func (b *Builder) buildBinary(x *ast.BinaryExpr) ir.Value {
	lhs := b.buildExpr(x.Left)
	rhs := b.buildExpr(x.Right)
	op, ok := binOpFromToken(x.Op)
	if !ok {
		b.errorf(x.Pos().Start, "unsupported binary operator %s", x.Op)
		return ir.None
	}
	result, ok := lhs.Type.ResultOfBinaryOp(rhs.Type, op, b.Defs.Types)
	if !ok {
		b.errorf(x.Pos().Start, "operator %s not defined between %s and %s", x.Op, lhs.Type, rhs.Type)
		return ir.None
	}
	dst := b.newTemp(result)
	b.fn.Emit(&ir.Unit{Kind: ir.UBinaryOp, Pos: x.Pos().Start, Dst: dst, Op: op, Lhs: lhs, Rhs: rhs})
	return ir.Reg(ir.VRegister, dst, result)
}

// buildIs lowers `x is Type` to an equality test between x's dynamic type
// and a type literal; types.ResultOfBinaryOp already treats OpEq/OpNe as a
// valid, Bool-producing comparison whenever either side is KindAny, which
// is exactly the runtime type-test this syntax describes.
func (b *Builder) buildIs(x *ast.IsExpr) ir.Value {
	v := b.buildExpr(x.X)
	target := b.resolveType(x.Type)
	if v.Type.Kind != types.KindAny {
		// A statically-known type makes the test a compile-time constant.
		return ir.LitBool(v.Type.Equals(target, b.Defs.Types))
	}
	dst := b.newTemp(types.Bool())
	b.fn.Emit(&ir.Unit{
		Kind: ir.UBinaryOp, Pos: x.Pos().Start, Dst: dst, Op: types.OpEq,
		Lhs: v, Rhs: ir.LitType(target),
	})
	return ir.Reg(ir.VRegister, dst, types.Bool())
}

func (b *Builder) buildSelector(x *ast.SelectorExpr) ir.Value {
	lv, ok := b.buildLValue(x)
	if !ok {
		return ir.None
	}
	return ir.Reg(ir.VRegister, lv.RegIndex, lv.Type)
}

func (b *Builder) buildIndex(x *ast.IndexExpr) ir.Value {
	lv, ok := b.buildLValue(x)
	if !ok {
		return ir.None
	}
	return ir.Reg(ir.VRegister, lv.RegIndex, lv.Type)
}

// lvalue is an addressable location: RegIndex names a register that either
// *is* the storage (Direct) or holds a child-access result computed by a
// UChild unit the caller must UStore through (Direct == false).
type lvalue struct {
	RegIndex int
	Type     types.VType
	Direct   bool
	Global   bool // RegIndex addresses the global register file (only when Direct)
}

// buildLValue resolves an expression that can appear on the left of `=` (or
// be addressed with `&`) to its storage location.
func (b *Builder) buildLValue(x ast.Expr) (lvalue, bool) {
	switch x := x.(type) {
	case *ast.Ident:
		if idx, ok := b.scope.lookup(x.Name); ok {
			return lvalue{RegIndex: idx, Type: b.fn.Registers[idx].Type, Direct: true}, true
		}
		if g, ok := b.Defs.Global(x.Name); ok {
			return lvalue{RegIndex: g.Index, Type: g.Type, Direct: true, Global: true}, true
		}
		b.errorf(x.Pos().Start, "undefined identifier %q", x.Name)
		return lvalue{}, false

	case *ast.SelectorExpr:
		parent, t := b.materializeParent(x.X)
		if t.Kind == types.KindStruct {
			if t.Struct == nil {
				b.errorf(x.Pos().Start, "struct %s is not fully resolved", t.BaseName)
				return lvalue{}, false
			}
			mi := t.Struct.MemberIndex(x.Sel.Name)
			if mi < 0 {
				b.errorf(x.Sel.Pos().Start, "type %s has no member %q", t.BaseName, x.Sel.Name)
				return lvalue{}, false
			}
			member := t.Struct.Members[mi]
			dst := b.newTemp(member.Type)
			b.fn.Emit(&ir.Unit{
				Kind: ir.UChild, Pos: x.Pos().Start, Dst: dst, Src: parent,
				Index: ir.LitInt(int64(mi)), IsMember: true,
			})
			return lvalue{RegIndex: dst, Type: member.Type}, true
		}
		idx, resultType, ok := t.Property(x.Sel.Name)
		if !ok {
			b.errorf(x.Sel.Pos().Start, "type %s has no member %q", t, x.Sel.Name)
			return lvalue{}, false
		}
		dst := b.newTemp(resultType)
		b.fn.Emit(&ir.Unit{
			Kind: ir.UChild, Pos: x.Pos().Start, Dst: dst, Src: parent,
			Index: ir.LitInt(int64(idx)), IsMember: true,
		})
		return lvalue{RegIndex: dst, Type: resultType}, true

	case *ast.IndexExpr:
		parent, t := b.materializeParent(x.X)
		if t.Kind != types.KindArray {
			b.errorf(x.Pos().Start, "cannot index non-array type %s", t)
			return lvalue{}, false
		}
		index := b.buildExpr(x.Index)
		elemType := t.Next(b.Defs.Types)
		dst := b.newTemp(elemType)
		b.fn.Emit(&ir.Unit{
			Kind: ir.UChild, Pos: x.Pos().Start, Dst: dst, Src: parent,
			Index: index, IsMember: false,
		})
		return lvalue{RegIndex: dst, Type: elemType}, true

	default:
		b.errorf(x.Pos().Start, "expression is not assignable")
		return lvalue{}, false
	}
}

// materializeParent resolves the base of a selector/index chain to the
// ir.Value UChild expects as its Src: a direct register reference for a
// plain local/global, or a VLValue for a nested child access.
func (b *Builder) materializeParent(x ast.Expr) (ir.Value, types.VType) {
	lv, ok := b.buildLValue(x)
	if !ok {
		return ir.None, types.Nil
	}
	kind := ir.VLValue
	if lv.Direct {
		kind = ir.VRegister
	}
	v := ir.Reg(kind, lv.RegIndex, lv.Type)
	v.Global = lv.Global
	return v, lv.Type
}

func (b *Builder) buildCall(x *ast.CallExpr) ir.Value {
	name, ok := x.Fun.(*ast.Ident)
	if !ok {
		b.errorf(x.Pos().Start, "call target must be a plain function name")
		return ir.None
	}
	fd, ok := b.Defs.Function(name.Name)
	if !ok {
		b.errorf(name.Pos().Start, "call to undefined function %q", name.Name)
		return ir.None
	}
	if len(x.Args) != len(fd.Params) {
		b.errorf(x.Pos().Start, "function %q expects %d arguments, got %d", name.Name, len(fd.Params), len(x.Args))
	}
	args := make([]ir.Value, len(x.Args))
	for i, a := range x.Args {
		v := b.buildExpr(a)
		if i < len(fd.Params) {
			v = b.coerce(v, fd.Params[i].Type)
		}
		args[i] = v
	}

	first := -1
	for i, ret := range fd.Returns {
		idx := b.newTemp(ret.Type)
		if i == 0 {
			first = idx
		}
	}
	intrinsicName := ""
	if fd.IsIntrinsic {
		intrinsicName = fd.Identifier
	}
	b.fn.Emit(&ir.Unit{
		Kind: ir.UFunctionCall, Pos: x.Pos().Start, FirstDst: first,
		ReturnCount: len(fd.Returns),
		Fn:          fd.IR, IntrinsicName: intrinsicName, Args: args,
	})

	switch len(fd.Returns) {
	case 0:
		return ir.None
	case 1:
		return ir.Reg(ir.VRegister, first, fd.Returns[0].Type)
	default:
		elems := make([]ir.Value, len(fd.Returns))
		for i, ret := range fd.Returns {
			elems[i] = ir.Reg(ir.VRegister, first+i, ret.Type)
		}
		return ir.Value{Kind: ir.VMultipleReturn, Type: fd.Returns[0].Type, Elems: elems}
	}
}
