// Package ir is the linear, register-based three-address intermediate
// representation spec.md §3.6 describes: values are small tagged structs
// rather than polymorphic nodes (spec.md calls Value a "sum"), and a
// Function is built as a linked list of Units with symbolic jump targets,
// then flattened by Link into an array with resolved relative offsets —
// the teacher's ir.builder/ir.File.Build two-phase idea (internal/ir/ir.go,
// internal/ir/builder.go), generalized from the teacher's single
// basic-block form to the full jump/call form this language needs.
package ir

import (
	"github.com/yov-lang/yov/internal/token"
	"github.com/yov-lang/yov/internal/types"
)

// RegisterKind classifies a Register's storage class.
type RegisterKind int

const (
	RegLocal RegisterKind = iota
	RegParameter
	RegReturn
	RegGlobal
)

// Register is one named, typed slot in a Scope's register file (or, for
// RegGlobal, in the program-wide global register file).
type Register struct {
	Kind       RegisterKind
	Name       string
	Type       types.VType
	IsConstant bool
}

// ValueKind discriminates the Value sum type of spec.md §3.4.
type ValueKind int

const (
	VNone ValueKind = iota
	VLiteralInt
	VLiteralBool
	VLiteralString
	VLiteralType
	VLiteralEnum
	VZeroInit
	VArray
	VStringComposition
	VMultipleReturn
	VRegister
	VLValue
)

// Value is an IR operand. Only the fields relevant to Kind are meaningful;
// see spec.md §3.4 for the full catalogue this mirrors.
type Value struct {
	Kind ValueKind
	Type types.VType

	Int   int64  // VLiteralInt, VLiteralEnum (case index)
	Bool  bool   // VLiteralBool
	Str   string // VLiteralString
	LitVT types.VType
	Elems []Value // VArray elements / VStringComposition parts / VMultipleReturn values
	Empty bool    // VArray: literal had zero elements but a known element type

	RegIndex int  // VRegister, VLValue: index into the owning register file
	Global   bool // RegIndex addresses the program's global register file, not the current Function's locals
	RefOp    int  // signed take-reference(+)/dereference(-) count applied at materialization
}

// None is the empty Value, used where no operand is required.
var None = Value{Kind: VNone}

// Reg builds a VRegister/VLValue operand.
func Reg(kind ValueKind, index int, t types.VType) Value {
	return Value{Kind: kind, Type: t, RegIndex: index}
}

// LitInt, LitBool, LitString build their respective literal operands.
func LitInt(v int64) Value     { return Value{Kind: VLiteralInt, Type: types.Int(), Int: v} }
func LitBool(v bool) Value     { return Value{Kind: VLiteralBool, Type: types.Bool(), Bool: v} }
func LitString(v string) Value { return Value{Kind: VLiteralString, Type: types.String(), Str: v} }
func LitType(v types.VType) Value {
	return Value{Kind: VLiteralType, Type: types.VType{Kind: types.KindAny}, LitVT: v}
}
func LitEnum(t types.VType, index int64) Value {
	return Value{Kind: VLiteralEnum, Type: t, Int: index}
}
func ZeroInit(t types.VType) Value { return Value{Kind: VZeroInit, Type: t} }

// Pos is the source location type attached to every Unit, shared with the
// lexer/parser/sema passes so diagnostics can always cite a byte offset.
type Pos = token.Pos
