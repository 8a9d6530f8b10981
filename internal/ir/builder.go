package ir

import "github.com/yov-lang/yov/internal/types"

// UnitKind discriminates the Instruction variants of spec.md §3.6.
type UnitKind int

const (
	UCopy UnitKind = iota
	UStore
	UFunctionCall
	UReturn
	UJump
	UBinaryOp
	USignOp
	UChild
	UResultEval
	// UEmpty is a build-time anchor unit (a jump target with no effect of
	// its own); Link drops every UEmpty from the emitted array.
	UEmpty
)

// Unit is one IR instruction. During construction, Units form a singly
// linked list (next) so jumps can target a not-yet-emitted anchor; Link
// flattens that list into a []Unit with Offset resolved and next cleared.
type Unit struct {
	Kind UnitKind
	Pos  Pos

	// Copy/Store. DstGlobal mirrors Value.Global: when set, Dst addresses
	// the program's global register file instead of the owning Function's
	// local Registers.
	Dst       int
	DstGlobal bool
	Src       Value

	// FunctionCall: Fn is nil for an intrinsic, looked up by IntrinsicName.
	// FirstDst/consecutive return slots address globals when FirstDstGlobal
	// is set (a call assigned directly into global targets). ReturnCount is
	// how many consecutive registers starting at FirstDst the call fills —
	// redundant with len(Fn.ReturnDescriptor) for a user function, but the
	// only way the runtime knows an intrinsic's arity, since intrinsics have
	// no Function body to carry a ReturnDescriptor.
	FirstDst       int
	FirstDstGlobal bool
	ReturnCount    int
	Fn             *Function
	IntrinsicName  string
	Args           []Value

	// Jump: Cond is -1 (jump if falsy), 0 (unconditional), or +1 (jump if
	// truthy). Target is resolved by Link into a signed Offset relative to
	// the instruction following the jump.
	Cond    int
	JumpSrc Value
	Target  *Unit
	Offset  int

	// BinaryOp / SignOp
	Op    types.BinOp
	SignO types.SignOp
	Lhs   Value
	Rhs   Value

	// Child: element (is_member=false) or field (is_member=true) access.
	Index    Value
	IsMember bool

	next *Unit
}

// NewEmpty allocates a fresh anchor unit, used as a jump target before the
// code it precedes has been built.
func NewEmpty() *Unit { return &Unit{Kind: UEmpty} }
