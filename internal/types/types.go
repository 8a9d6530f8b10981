// Package types implements the yov type system: the VType tagged variant
// over primitives, struct, enum, array and reference, and the process-wide
// type table it is drawn from.
//
// The shape mirrors the original C++ VType (base_name/base_index/kind plus
// one payload field per kind, see original_source/code/types.cpp) rather
// than a Go interface hierarchy: equality, size, and child lookup are all
// cheap value-struct operations best expressed as a flat struct switch.
package types

import "fmt"

// Kind discriminates the variant held by a VType.
type Kind int

const (
	KindInvalid Kind = iota
	KindNil
	KindVoid
	KindAny
	KindPrimitive
	KindStruct
	KindEnum
	KindArray
	KindReference
)

// Primitive further discriminates KindPrimitive.
type Primitive int

const (
	PrimitiveInt Primitive = iota
	PrimitiveBool
	PrimitiveString
	// PrimitiveI64 is a second integer primitive distinct from Int, carried
	// over from the original type table for msvc_import_env_x64/x86 results.
	PrimitiveI64
)

func (p Primitive) String() string {
	switch p {
	case PrimitiveInt:
		return "Int"
	case PrimitiveBool:
		return "Bool"
	case PrimitiveString:
		return "String"
	case PrimitiveI64:
		return "I64"
	default:
		return fmt.Sprintf("primitive(%d)", int(p))
	}
}

// VType is a value-typed tagged variant. Array/Reference carry their
// element/base type out-of-line via BaseIndex + Dims, exactly like the
// original: vtype_from_dimension/vtype_from_reference only ever adjust
// Dims and copy BaseIndex/BaseName, never allocate a new base type.
type VType struct {
	Kind      Kind
	BaseName  string
	BaseIndex int // index into the owning Table, for Array/Reference/Struct/Enum
	Prim      Primitive
	Dims      uint32 // array_dimensions in the original: N levels of []
	Struct    *StructDef
	Enum      *EnumDef
}

var (
	Nil  = VType{Kind: KindNil, BaseName: "Nil"}
	Void = VType{Kind: KindVoid, BaseName: "Void"}
	Any  = VType{Kind: KindAny, BaseName: "Any"}
)

func Int() VType    { return VType{Kind: KindPrimitive, BaseName: "Int", Prim: PrimitiveInt} }
func Bool() VType   { return VType{Kind: KindPrimitive, BaseName: "Bool", Prim: PrimitiveBool} }
func String() VType { return VType{Kind: KindPrimitive, BaseName: "String", Prim: PrimitiveString} }
func I64() VType    { return VType{Kind: KindPrimitive, BaseName: "I64", Prim: PrimitiveI64} }

// IsEnum, IsArray, IsStruct, IsReference mirror vtype_is_*.
func (v VType) IsEnum() bool      { return v.Kind == KindEnum }
func (v VType) IsArray() bool     { return v.Kind == KindArray }
func (v VType) IsStruct() bool    { return v.Kind == KindStruct }
func (v VType) IsReference() bool { return v.Kind == KindReference }
func (v VType) IsPrimitive() bool { return v.Kind == KindPrimitive }

// Valid mirrors VTypeValid: anything above Any is a real, checkable type.
func (v VType) Valid() bool { return v.Kind > KindAny }

// FromDimension adds `dims` levels of array-ness to an element type,
// mirroring vtype_from_dimension.
func FromDimension(elem VType, dims uint32) VType {
	if dims == 0 {
		return elem
	}
	return VType{
		Kind:      KindArray,
		BaseName:  elem.BaseName,
		BaseIndex: elem.BaseIndex,
		Dims:      elem.Dims + dims,
	}
}

// FromReference wraps base as a reference type, mirroring vtype_from_reference.
// base must not itself be a reference (no references-to-references).
func FromReference(base VType) VType {
	return VType{
		Kind:      KindReference,
		BaseName:  base.BaseName,
		BaseIndex: base.BaseIndex,
		Dims:      base.Dims,
	}
}

// Equals is structural equality, mirroring vtype_equals. Array/Reference
// compare element type via the owning Table since they only carry BaseIndex.
func (v VType) Equals(o VType, table *Table) bool {
	if v.Kind != o.Kind {
		return false
	}
	switch v.Kind {
	case KindNil, KindVoid, KindAny:
		return true
	case KindPrimitive:
		return v.Prim == o.Prim
	case KindStruct:
		return v.Struct == o.Struct
	case KindEnum:
		return v.Enum == o.Enum
	case KindArray, KindReference:
		if v.Dims != o.Dims {
			return false
		}
		return table.At(v.BaseIndex).Equals(table.At(o.BaseIndex), table)
	default:
		return false
	}
}

// Next strips one level of array-ness or unwraps a reference, mirroring
// VTypeNext.
func (v VType) Next(table *Table) VType {
	switch v.Kind {
	case KindArray:
		if v.Dims == 1 {
			return table.At(v.BaseIndex)
		}
		v.Dims--
		return v
	case KindReference:
		return FromDimension(table.At(v.BaseIndex), v.Dims)
	default:
		return Nil
	}
}

// SizeInBytes is the flat in-object footprint (inline payload for
// primitive/enum/reference, pointer-sized header for heap-backed
// string/array/struct per spec.md §3.5).
func (v VType) SizeInBytes() int {
	switch v.Kind {
	case KindPrimitive:
		switch v.Prim {
		case PrimitiveBool:
			return 1
		default:
			return 8
		}
	case KindEnum:
		return 8
	case KindStruct:
		if v.Struct != nil {
			return v.Struct.Size
		}
		return 0
	case KindReference:
		return 16 // {parent_object, address}
	case KindArray, KindNil, KindVoid, KindAny:
		return 16 // {buffer/count, data} heap handle
	default:
		return 0
	}
}

// NeedsInternalRelease reports whether an object of this type owns a
// dynamic buffer (String/Array) or contains a member that does (Struct).
func (v VType) NeedsInternalRelease() bool {
	switch v.Kind {
	case KindArray:
		return true
	case KindPrimitive:
		return v.Prim == PrimitiveString
	case KindStruct:
		return v.Struct != nil && v.Struct.NeedsRelease
	default:
		return false
	}
}

// IsReady reports whether this type (and any struct/enum it names) has
// finished definition-table resolution.
func (v VType) IsReady() bool {
	switch v.Kind {
	case KindStruct:
		return v.Struct != nil && v.Struct.Ready
	case KindEnum:
		return v.Enum != nil && v.Enum.Ready
	default:
		return true
	}
}

func (v VType) String() string {
	switch v.Kind {
	case KindArray:
		s := v.BaseName
		for i := uint32(0); i < v.Dims; i++ {
			s += "[]"
		}
		return s
	case KindReference:
		s := "&" + v.BaseName
		for i := uint32(0); i < v.Dims; i++ {
			s += "[]"
		}
		return s
	default:
		return v.BaseName
	}
}

// Property indexes (fixed, per spec.md §3.2).
const (
	PropStringSize = iota
	PropArrayCount
	PropEnumIndex
	PropEnumValue
	PropEnumName
)

// Property resolves a `.name` property access to its fixed index and
// result type, or ok=false if v has no such property.
func (v VType) Property(name string) (index int, result VType, ok bool) {
	switch {
	case v.Kind == KindPrimitive && v.Prim == PrimitiveString && name == "size":
		return PropStringSize, Int(), true
	case v.Kind == KindArray && name == "count":
		return PropArrayCount, Int(), true
	case v.Kind == KindEnum && name == "index":
		return PropEnumIndex, Int(), true
	case v.Kind == KindEnum && name == "value":
		return PropEnumValue, Int(), true
	case v.Kind == KindEnum && name == "name":
		return PropEnumName, String(), true
	default:
		return 0, Nil, false
	}
}

// BinOp names the binary operators the type system can resolve a result for.
type BinOp int

const (
	OpAdd BinOp = iota
	OpSub
	OpMul
	OpDiv
	OpMod
	OpEq
	OpNe
	OpLt
	OpLe
	OpGt
	OpGe
	OpLAnd
	OpLOr
)

// ResultOfBinaryOp implements the dispatch table of spec.md §4.7's BinaryOp
// note: int arithmetic, bool logic, string concat, path append (string/Div),
// string+int codepoint append, type/enum equality, array concat/append,
// reference equality. ok is false for a combination the language rejects.
func (v VType) ResultOfBinaryOp(other VType, op BinOp, table *Table) (result VType, ok bool) {
	switch op {
	case OpEq, OpNe:
		if v.Equals(other, table) || v.Kind == KindAny || other.Kind == KindAny {
			return Bool(), true
		}
		return Nil, false
	}

	if v.Kind == KindPrimitive && other.Kind == KindPrimitive {
		if v.Prim == PrimitiveString || other.Prim == PrimitiveString {
			switch op {
			case OpAdd:
				return String(), true
			case OpDiv:
				if v.Prim == PrimitiveString {
					return String(), true
				}
			case OpLt, OpLe, OpGt, OpGe:
				if v.Prim == PrimitiveString && other.Prim == PrimitiveString {
					return Bool(), true
				}
			}
			return Nil, false
		}
		if v.Prim == PrimitiveBool && other.Prim == PrimitiveBool {
			switch op {
			case OpLAnd, OpLOr:
				return Bool(), true
			}
			return Nil, false
		}
		if v.Prim == PrimitiveBool || other.Prim == PrimitiveBool {
			return Nil, false
		}
		switch op {
		case OpAdd, OpSub, OpMul, OpDiv, OpMod:
			return Int(), true
		case OpLt, OpLe, OpGt, OpGe:
			return Bool(), true
		}
	}

	if v.Kind == KindArray && op == OpAdd {
		if other.Kind == KindArray && other.Equals(v, table) {
			return v, true
		}
		elem := table.At(v.BaseIndex)
		elem = FromDimension(elem, v.Dims-1)
		if other.Equals(elem, table) {
			return v, true
		}
	}

	if v.Kind == KindReference && other.Kind == KindReference {
		switch op {
		case OpEq, OpNe:
			return Bool(), true
		}
	}

	return Nil, false
}

// SignOp names the unary operators the type system resolves.
type SignOp int

const (
	SignNeg SignOp = iota
	SignNot
)

// ResultOfSignOp resolves `-x` (Int) and `!x` (Bool).
func (v VType) ResultOfSignOp(op SignOp) (VType, bool) {
	if v.Kind != KindPrimitive {
		return Nil, false
	}
	switch op {
	case SignNeg:
		if v.Prim == PrimitiveInt || v.Prim == PrimitiveI64 {
			return v, true
		}
	case SignNot:
		if v.Prim == PrimitiveBool {
			return Bool(), true
		}
	}
	return Nil, false
}

// ChildAt resolves array/struct child access: for arrays (is_member=false,
// indexed), returns the element type regardless of idx; for structs
// (is_member=true), idx is the member index into Struct.Members.
func (v VType) ChildAt(idx int, isMember bool, table *Table) (VType, bool) {
	if isMember {
		if v.Kind != KindStruct || v.Struct == nil || idx < 0 || idx >= len(v.Struct.Members) {
			return Nil, false
		}
		return v.Struct.Members[idx].Type, true
	}
	if v.Kind != KindArray {
		return Nil, false
	}
	return v.Next(table), true
}
