package runtime

import (
	"fmt"

	"github.com/yov-lang/yov/internal/ir"
	"github.com/yov-lang/yov/internal/types"
)

// dispatchBinaryOp evaluates a BinaryOp unit against concrete payloads,
// following the same type-driven branching types.ResultOfBinaryOp already
// checked at compile time (spec.md §4.7's BinaryOp note): int arithmetic,
// bool logic, string concat/compare, string path-append, array concat,
// struct/enum/reference equality.
func (m *Machine) dispatchBinaryOp(sc *Scope, inst *ir.Unit) {
	lhs := m.readThrough(m.materialize(sc, inst.Lhs))
	rhs := m.readThrough(m.materialize(sc, inst.Rhs))
	if lhs.Parent == nil || rhs.Parent == nil {
		m.Abort(3, fmt.Errorf("runtime: null dereference in binary expression"))
		return
	}

	// `x is T` compares x's dynamic type against the Type literal T.
	if rvt, ok := rhs.Parent.Payload.(types.VType); ok && (inst.Op == types.OpEq || inst.Op == types.OpNe) {
		if _, lhsIsType := lhs.Parent.Payload.(types.VType); !lhsIsType {
			lt := lhs.Parent.Type
			same := lt.BaseName == rvt.BaseName && lt.Dims == rvt.Dims && lt.Kind == rvt.Kind
			m.rebind(m.regSlot(sc, inst.Dst, false), m.NewBool(same == (inst.Op == types.OpEq)))
			return
		}
	}

	var result Reference
	switch inst.Op {
	case types.OpEq:
		result = m.NewBool(m.valuesEqual(lhs, rhs))
	case types.OpNe:
		result = m.NewBool(!m.valuesEqual(lhs, rhs))
	default:
		result = m.evalBinary(lhs, rhs, inst.Op)
	}

	slot := m.regSlot(sc, inst.Dst, false)
	m.rebind(slot, result)
}

func (m *Machine) evalBinary(lhs, rhs Reference, op types.BinOp) Reference {
	lt, rt := lhs.Parent.Type, rhs.Parent.Type

	if lt.Kind == types.KindArray {
		le, _ := lhs.Parent.Payload.([]Reference)
		if rt.Kind == types.KindArray {
			re, _ := rhs.Parent.Payload.([]Reference)
			return m.concatArrays(lt, le, re)
		}
		return m.concatArrays(lt, le, []Reference{rhs})
	}

	if lt.Kind == types.KindPrimitive && lt.Prim == types.PrimitiveString {
		ls, _ := lhs.Parent.Payload.(string)
		switch op {
		case types.OpAdd, types.OpDiv:
			right := m.displayString(rhs)
			if op == types.OpAdd && rt.Kind == types.KindPrimitive && rt.Prim == types.PrimitiveInt {
				rn, _ := rhs.Parent.Payload.(int64)
				right = string(rune(rn))
			}
			return m.NewString(ls + pathJoin(op, ls, right))
		case types.OpLt, types.OpLe, types.OpGt, types.OpGe:
			rs, _ := rhs.Parent.Payload.(string)
			return m.NewBool(stringCompare(op, ls, rs))
		}
	}
	if rt.Kind == types.KindPrimitive && rt.Prim == types.PrimitiveString && op == types.OpAdd {
		rs, _ := rhs.Parent.Payload.(string)
		return m.NewString(m.displayString(lhs) + rs)
	}

	if lt.Kind == types.KindPrimitive && lt.Prim == types.PrimitiveBool {
		lb, _ := lhs.Parent.Payload.(bool)
		rb, _ := rhs.Parent.Payload.(bool)
		switch op {
		case types.OpLAnd:
			return m.NewBool(lb && rb)
		case types.OpLOr:
			return m.NewBool(lb || rb)
		}
	}

	ln, _ := lhs.Parent.Payload.(int64)
	rn, _ := rhs.Parent.Payload.(int64)
	switch op {
	case types.OpAdd:
		return m.NewInt(ln + rn)
	case types.OpSub:
		return m.NewInt(ln - rn)
	case types.OpMul:
		return m.NewInt(ln * rn)
	case types.OpDiv:
		if rn == 0 {
			m.Abort(6, fmt.Errorf("runtime: division by zero"))
			return Reference{}
		}
		return m.NewInt(ln / rn)
	case types.OpMod:
		if rn == 0 {
			m.Abort(6, fmt.Errorf("runtime: division by zero"))
			return Reference{}
		}
		return m.NewInt(ln % rn)
	case types.OpLt:
		return m.NewBool(ln < rn)
	case types.OpLe:
		return m.NewBool(ln <= rn)
	case types.OpGt:
		return m.NewBool(ln > rn)
	case types.OpGe:
		return m.NewBool(ln >= rn)
	default:
		m.Abort(1, fmt.Errorf("runtime: unsupported binary operator"))
		return Reference{}
	}
}

// pathJoin returns the text appended after the left operand of a string
// `+` or `/`. For `/` (path-append) it prefixes a '/' separator when both
// sides are non-empty and the left side does not already end in '/'; for
// `+` (plain concat) it returns right unchanged.
func pathJoin(op types.BinOp, left, right string) string {
	if op == types.OpDiv && left != "" && right != "" && left[len(left)-1] != '/' {
		return "/" + right
	}
	return right
}

func stringCompare(op types.BinOp, l, r string) bool {
	switch op {
	case types.OpLt:
		return l < r
	case types.OpLe:
		return l <= r
	case types.OpGt:
		return l > r
	case types.OpGe:
		return l >= r
	default:
		return false
	}
}

func (m *Machine) concatArrays(t types.VType, a, b []Reference) Reference {
	merged := make([]Reference, 0, len(a)+len(b))
	for _, e := range a {
		c := m.settle(e)
		m.Heap.incref(c.Parent)
		merged = append(merged, c)
	}
	for _, e := range b {
		c := m.settle(e)
		m.Heap.incref(c.Parent)
		merged = append(merged, c)
	}
	return whole(m.Heap.Alloc(t, merged), t)
}

// valuesEqual implements spec.md §4.7's equality rule: structural for
// primitives/arrays/structs; enums compare their index and enum definition;
// Type values compare base name, dimensions and kind; references compare
// their target Object and address.
func (m *Machine) valuesEqual(lhs, rhs Reference) bool {
	lt := lhs.Parent.Type
	switch lt.Kind {
	case types.KindPrimitive:
		switch lt.Prim {
		case types.PrimitiveString:
			ls, _ := lhs.Parent.Payload.(string)
			rs, _ := rhs.Parent.Payload.(string)
			return ls == rs
		case types.PrimitiveBool:
			lb, _ := lhs.Parent.Payload.(bool)
			rb, _ := rhs.Parent.Payload.(bool)
			return lb == rb
		default:
			ln, _ := lhs.Parent.Payload.(int64)
			rn, _ := rhs.Parent.Payload.(int64)
			return ln == rn
		}
	case types.KindEnum:
		ln, _ := lhs.Parent.Payload.(int64)
		rn, _ := rhs.Parent.Payload.(int64)
		return ln == rn && lt.Enum == rhs.Parent.Type.Enum
	case types.KindArray:
		le, _ := lhs.Parent.Payload.([]Reference)
		re, _ := rhs.Parent.Payload.([]Reference)
		if len(le) != len(re) {
			return false
		}
		for i := range le {
			a := m.readThrough(le[i])
			b := m.readThrough(re[i])
			if a.Parent == nil || b.Parent == nil || !m.valuesEqual(a, b) {
				return false
			}
		}
		return true
	case types.KindStruct:
		le, _ := lhs.Parent.Payload.([]Reference)
		re, _ := rhs.Parent.Payload.([]Reference)
		if len(le) != len(re) {
			return false
		}
		for i := range le {
			a := m.readThrough(le[i])
			b := m.readThrough(re[i])
			if a.Parent == nil || b.Parent == nil || !m.valuesEqual(a, b) {
				return false
			}
		}
		return true
	case types.KindReference:
		lr, _ := lhs.Parent.Payload.(Reference)
		rr, _ := rhs.Parent.Payload.(Reference)
		return lr.Parent == rr.Parent && lr.Address == rr.Address
	default: // Type literal
		lvt, _ := lhs.Parent.Payload.(types.VType)
		rvt, _ := rhs.Parent.Payload.(types.VType)
		return lvt.BaseName == rvt.BaseName && lvt.Dims == rvt.Dims && lvt.Kind == rvt.Kind
	}
}
