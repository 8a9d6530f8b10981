package types

// Member is one (name, type, offset) slot of a struct.
type Member struct {
	Name   string
	Type   VType
	Offset int
}

// StructDef is the resolved shape of a struct declaration: ordered members,
// their byte offsets, total size, and whether an instance owns dynamic
// buffers transitively (needs_internal_release in spec.md §3.3).
type StructDef struct {
	Name         string
	Members      []Member
	Size         int
	NeedsRelease bool
	Ready        bool
}

// MemberIndex returns the index of a named member, or -1.
func (d *StructDef) MemberIndex(name string) int {
	for i, m := range d.Members {
		if m.Name == name {
			return i
		}
	}
	return -1
}

// EnumMember is one named, integer-valued enum case.
type EnumMember struct {
	Name  string
	Value int64
}

// EnumDef is the resolved shape of an enum declaration.
type EnumDef struct {
	Name    string
	Members []EnumMember
	Ready   bool
}

// MemberIndex returns the index of a named case, or -1.
func (d *EnumDef) MemberIndex(name string) int {
	for i, m := range d.Members {
		if m.Name == name {
			return i
		}
	}
	return -1
}

// Table is the process-wide array of VType indexed by BaseIndex, built the
// way YovInitializeTypesTable populates yov->vtypes: primitives first (in a
// fixed order), then one slot per struct/enum definition in identification
// order.
type Table struct {
	entries []VType
	byName  map[string]int
}

// NewTable seeds a Table with the four built-in primitives.
func NewTable() *Table {
	t := &Table{byName: map[string]int{}}
	for _, v := range []VType{Int(), Bool(), String(), I64()} {
		t.add(v)
	}
	return t
}

func (t *Table) add(v VType) int {
	idx := len(t.entries)
	v.BaseIndex = idx
	t.entries = append(t.entries, v)
	t.byName[v.BaseName] = idx
	return idx
}

// AddStruct reserves a type-table slot for a struct definition.
func (t *Table) AddStruct(def *StructDef) VType {
	v := VType{Kind: KindStruct, BaseName: def.Name, Struct: def}
	idx := t.add(v)
	return t.entries[idx]
}

// AddEnum reserves a type-table slot for an enum definition.
func (t *Table) AddEnum(def *EnumDef) VType {
	v := VType{Kind: KindEnum, BaseName: def.Name, Enum: def}
	idx := t.add(v)
	return t.entries[idx]
}

// At returns the VType at a given BaseIndex.
func (t *Table) At(index int) VType {
	if index < 0 || index >= len(t.entries) {
		return Nil
	}
	return t.entries[index]
}

// Lookup resolves a base type name (primitive, struct, or enum) to its VType.
func (t *Table) Lookup(name string) (VType, bool) {
	idx, ok := t.byName[name]
	if !ok {
		return Nil, false
	}
	return t.entries[idx], true
}

// Len returns the number of entries in the table.
func (t *Table) Len() int { return len(t.entries) }
