package runtime

import "github.com/yov-lang/yov/internal/types"

// addrWhole marks a Reference that denotes an Object in its entirety,
// rather than a sub-region (array element / struct field) of it.
const addrWhole = -1

// Reference is the runtime realisation of an IR operand (spec.md §3.4): a
// {parent_object, type, address} triple that borrows, never owns, the
// object it denotes. Address indexes into the parent's array-element or
// struct-member payload; addrWhole means "the object itself".
type Reference struct {
	Parent  *Object
	Type    types.VType
	Address int
}

// IsNull reports whether r denotes no object (spec.md's null/nil reference).
func (r Reference) IsNull() bool { return r.Parent == nil }

// Retain increfs the object r denotes, for a caller outside this package
// binding r into a long-lived slot it owns directly (a global register
// seeded before the dispatch loop starts, the way internal/ir.NewFile's
// reserved ambient-global slots are seeded) rather than through an ordinary
// Store instruction.
func (m *Machine) Retain(r Reference) { m.Heap.incref(r.Parent) }

// whole builds a Reference denoting o in its entirety.
func whole(o *Object, t types.VType) Reference {
	return Reference{Parent: o, Type: t, Address: addrWhole}
}
