package runtime

import (
	"fmt"

	"github.com/yov-lang/yov/internal/ir"
	"github.com/yov-lang/yov/internal/types"
)

// regSlot returns a pointer to the Reference slot a Value/Unit's
// (index, global) pair addresses, so both reads and writes go through one
// place regardless of which register file is meant.
func (m *Machine) regSlot(sc *Scope, index int, global bool) *Reference {
	if global {
		return &m.Globals[index]
	}
	return &sc.reg[index]
}

// materialize resolves an ir.Value operand to a runtime Reference,
// allocating fresh heap objects for literals/composites and applying any
// take-reference/dereference RefOp (spec.md §3.4).
func (m *Machine) materialize(sc *Scope, v ir.Value) Reference {
	var ref Reference
	switch v.Kind {
	case ir.VNone:
		return Reference{}
	case ir.VLiteralInt:
		ref = whole(m.Heap.Alloc(v.Type, v.Int), v.Type)
	case ir.VLiteralBool:
		ref = whole(m.Heap.Alloc(v.Type, v.Bool), v.Type)
	case ir.VLiteralString:
		ref = whole(m.Heap.Alloc(v.Type, v.Str), v.Type)
	case ir.VLiteralType:
		ref = whole(m.Heap.Alloc(v.Type, v.LitVT), v.Type)
	case ir.VLiteralEnum:
		ref = whole(m.Heap.Alloc(v.Type, v.Int), v.Type)
	case ir.VZeroInit:
		ref = whole(m.Heap.Alloc(v.Type, m.zeroPayload(v.Type)), v.Type)
	case ir.VArray:
		ref = m.materializeArray(sc, v)
	case ir.VStringComposition:
		ref = m.materializeStringComposition(sc, v)
	case ir.VRegister, ir.VLValue:
		slot := m.regSlot(sc, v.RegIndex, v.Global)
		ref = m.readThrough(*slot)
		ref.Type = v.Type
	default:
		m.Abort(1, fmt.Errorf("runtime: cannot materialize value kind %d", v.Kind))
		return Reference{}
	}
	return m.applyRefOp(ref, v.RefOp, v.Type)
}

// readThrough resolves an interior reference (struct member / array
// element slot) down to the concrete object it denotes; exterior
// (address==whole) references are returned unchanged.
func (m *Machine) readThrough(r Reference) Reference {
	if r.Parent == nil || r.Address == addrWhole {
		return r
	}
	elems, ok := r.Parent.Payload.([]Reference)
	if !ok || r.Address < 0 || r.Address >= len(elems) {
		m.Abort(2, fmt.Errorf("runtime: out-of-bounds child access"))
		return Reference{}
	}
	return elems[r.Address]
}

// applyRefOp takes (RefOp>0) or strips (RefOp<0) reference indirection.
func (m *Machine) applyRefOp(r Reference, refOp int, resultType types.VType) Reference {
	for refOp > 0 {
		obj := m.Heap.Alloc(resultType, r)
		m.Heap.incref(r.Parent)
		r = whole(obj, resultType)
		refOp--
	}
	for refOp < 0 {
		if inner, ok := r.Parent.Payload.(Reference); ok {
			r = inner
		}
		refOp++
	}
	r.Type = resultType
	return r
}

func (m *Machine) materializeArray(sc *Scope, v ir.Value) Reference {
	elems := make([]Reference, 0, len(v.Elems))
	for _, e := range v.Elems {
		r := m.materialize(sc, e)
		elems = append(elems, m.settle(r))
	}
	for _, r := range elems {
		m.Heap.incref(r.Parent)
	}
	return whole(m.Heap.Alloc(v.Type, elems), v.Type)
}

func (m *Machine) materializeStringComposition(sc *Scope, v ir.Value) Reference {
	s := ""
	for _, part := range v.Elems {
		if part.Kind == ir.VLiteralString {
			s += part.Str
			continue
		}
		r := m.materialize(sc, part)
		s += m.displayString(r)
	}
	return whole(m.Heap.Alloc(types.String(), s), types.String())
}

// settle deep-copies whatever r denotes into a brand-new, independently
// owned object, for use where the language has value-copy semantics
// (array-literal elements, Copy into a register, zero-initialized struct
// members).
func (m *Machine) settle(r Reference) Reference {
	val := m.readThrough(r)
	if val.Parent == nil {
		return val
	}
	switch p := val.Parent.Payload.(type) {
	case []Reference:
		cloned := make([]Reference, len(p))
		for i, e := range p {
			cloned[i] = m.settle(e)
			m.Heap.incref(cloned[i].Parent)
		}
		return whole(m.Heap.Alloc(val.Parent.Type, cloned), val.Parent.Type)
	default:
		return whole(m.Heap.Alloc(val.Parent.Type, p), val.Parent.Type)
	}
}

// zeroPayload builds the zero-value payload for t (spec.md's ZeroInit).
func (m *Machine) zeroPayload(t types.VType) any {
	switch t.Kind {
	case types.KindPrimitive:
		switch t.Prim {
		case types.PrimitiveBool:
			return false
		case types.PrimitiveString:
			return ""
		default:
			return int64(0)
		}
	case types.KindEnum:
		return int64(0)
	case types.KindArray:
		return []Reference{}
	case types.KindStruct:
		if t.Struct == nil {
			return []Reference{}
		}
		members := make([]Reference, len(t.Struct.Members))
		for i, mem := range t.Struct.Members {
			obj := m.Heap.Alloc(mem.Type, m.zeroPayload(mem.Type))
			members[i] = whole(obj, mem.Type)
			m.Heap.incref(obj)
		}
		return members
	case types.KindReference:
		return Reference{}
	default:
		return nil
	}
}

// displayString renders a Reference's value as println/string-composition
// text would.
func (m *Machine) displayString(r Reference) string {
	r = m.readThrough(r)
	if r.Parent == nil {
		return "nil"
	}
	switch p := r.Parent.Payload.(type) {
	case string:
		return p
	case bool:
		if p {
			return "true"
		}
		return "false"
	case int64:
		if r.Parent.Type.Kind == types.KindEnum && r.Parent.Type.Enum != nil {
			idx := int(p)
			if idx >= 0 && idx < len(r.Parent.Type.Enum.Members) {
				return r.Parent.Type.Enum.Members[idx].Name
			}
		}
		return fmt.Sprintf("%d", p)
	case types.VType:
		return p.String()
	default:
		return fmt.Sprintf("%v", p)
	}
}

// truthy reads a Bool Reference's value, aborting if the type isn't Bool
// (spec.md §4.7: "Truthiness is defined only on Bool").
func (m *Machine) truthy(r Reference) bool {
	r = m.readThrough(r)
	if r.Parent == nil {
		m.Abort(3, fmt.Errorf("runtime: null dereference in boolean context"))
		return false
	}
	b, ok := r.Parent.Payload.(bool)
	if !ok {
		m.Abort(4, fmt.Errorf("runtime: Bool expected"))
		return false
	}
	return b
}

// resultType is the runtime-internal VType every NewResult/AsResult call
// uses: a Result{failed: Bool, message: String, code: Int} struct declared
// by the standard prelude every compiled program carries, addressed here
// by BaseName since intrinsics are wired before a types.Table instance
// exists to hand back a *StructDef pointer.
var resultType = types.VType{Kind: types.KindStruct, BaseName: "Result"}

// AsResult reads a Result-typed Reference's three fields (member order
// failed/message/code, like any struct field access), for intrinsics and
// for ResultEval.
func (m *Machine) AsResult(r Reference) ResultPayload {
	r = m.readThrough(r)
	if r.Parent == nil {
		return ResultPayload{}
	}
	elems, ok := r.Parent.Payload.([]Reference)
	if !ok || len(elems) < 3 {
		return ResultPayload{}
	}
	return ResultPayload{Failed: m.Bool(elems[0]), Message: m.Str(elems[1]), Code: int(m.Int(elems[2]))}
}

// NewResult allocates a Result-typed object (an ordinary three-member
// struct, see resultType), for intrinsics to return.
func (m *Machine) NewResult(failed bool, message string, code int) Reference {
	members := []Reference{m.NewBool(failed), m.NewString(message), m.NewInt(int64(code))}
	for _, e := range members {
		m.Heap.incref(e.Parent)
	}
	return whole(m.Heap.Alloc(resultType, members), resultType)
}

// fileInfoType mirrors resultType's BaseName-addressed prelude struct
// idiom, for file_get_info/dir_get_files_info's FileInfo{name, size,
// is_dir} return value.
var fileInfoType = types.VType{Kind: types.KindStruct, BaseName: "FileInfo"}

// NewFileInfo allocates a FileInfo-typed object (member order
// name/size/is_dir), for file_get_info/dir_get_files_info to return.
func (m *Machine) NewFileInfo(name string, size int64, isDir bool) Reference {
	members := []Reference{m.NewString(name), m.NewInt(size), m.NewBool(isDir)}
	for _, e := range members {
		m.Heap.incref(e.Parent)
	}
	return whole(m.Heap.Alloc(fileInfoType, members), fileInfoType)
}

// Int, Bool, Str read a Reference's scalar payload, for intrinsics.
func (m *Machine) Int(r Reference) int64 {
	r = m.readThrough(r)
	if r.Parent == nil {
		return 0
	}
	n, _ := r.Parent.Payload.(int64)
	return n
}

func (m *Machine) Bool(r Reference) bool {
	r = m.readThrough(r)
	if r.Parent == nil {
		return false
	}
	b, _ := r.Parent.Payload.(bool)
	return b
}

func (m *Machine) Str(r Reference) string {
	r = m.readThrough(r)
	if r.Parent == nil {
		return ""
	}
	s, _ := r.Parent.Payload.(string)
	return s
}

// NewString/NewInt/NewBool allocate a fresh scalar object, for intrinsics
// writing a return value.
func (m *Machine) NewString(s string) Reference {
	return whole(m.Heap.Alloc(types.String(), s), types.String())
}
func (m *Machine) NewInt(n int64) Reference {
	return whole(m.Heap.Alloc(types.Int(), n), types.Int())
}
func (m *Machine) NewBool(b bool) Reference {
	return whole(m.Heap.Alloc(types.Bool(), b), types.Bool())
}

// NewType allocates a Type-valued object wrapping t, for the `typeof`
// intrinsic (mirrors materialize's VLiteralType handling).
func (m *Machine) NewType(t types.VType) Reference {
	return whole(m.Heap.Alloc(types.Any, t), types.Any)
}

// NewArray allocates an array object from element References and increfs
// each element itself, so the array independently owns them (matching
// materializeArray/settle's "elements are independently owned"
// convention), for intrinsics returning String[]/FileInfo[] etc.
func (m *Machine) NewArray(elemType types.VType, elems []Reference) Reference {
	t := types.FromDimension(elemType, 1)
	for _, e := range elems {
		m.Heap.incref(e.Parent)
	}
	return whole(m.Heap.Alloc(t, elems), t)
}
