// Package defs implements the Definition Table of spec.md §3.3/§4.4: the
// process-wide registry of top-level declarations (enum, struct, function,
// arg, global), each advancing through a monotonic lifecycle stage
// None -> Identified -> Defined -> Ready.
//
// This generalizes the teacher's ir.File.Members map[string]Member registry
// (internal/ir/ir.go) from a single-program symbol table into one with an
// explicit multi-phase resolution lifecycle, since spec.md's compilation
// model resolves definitions across parallel passes rather than in one shot.
package defs

import (
	"fmt"
	"sync"
	"sync/atomic"

	"github.com/yov-lang/yov/internal/ir"
	"github.com/yov-lang/yov/internal/source"
	"github.com/yov-lang/yov/internal/token"
	"github.com/yov-lang/yov/internal/types"
)

// Stage is a Definition's position in its identify/define/resolve lifecycle.
type Stage int

const (
	StageNone Stage = iota
	StageIdentified
	StageDefined
	StageReady
)

// Kind identifies which of the five definition shapes an entry holds.
type Kind int

const (
	KindEnum Kind = iota
	KindStruct
	KindFunction
	KindArg
	KindGlobal
)

// Header is the common prefix of every Definition, mirroring spec.md §3.3's
// "{kind, identifier, source_location, stage}".
type Header struct {
	Kind       Kind
	Identifier string
	Script     *source.Script
	Pos        token.Pos
	stage      atomic.Int32
}

func (h *Header) Stage() Stage    { return Stage(h.stage.Load()) }
func (h *Header) setStage(s Stage) { h.stage.Store(int32(s)) }

// Param is one (name, type) pair of a function signature or struct member
// declaration, before the Type System has necessarily finished resolving
// its named struct/enum reference.
type Param struct {
	Name string
	Type types.VType
}

// EnumDefinition wraps a types.EnumDef with its table-lifecycle header.
type EnumDefinition struct {
	Header
	Def             *types.EnumDef
	ValueExprPos    []token.Pos // source location of each member's optional `= expr`, for diagnostics
}

// StructDefinition wraps a types.StructDef with its table-lifecycle header.
type StructDefinition struct {
	Header
	Def        *types.StructDef
	RawMembers []Param // as declared, before offsets/size/release-flag are computed
}

// FunctionDefinition is a callable: either a user IR body or a host-provided
// intrinsic, never both.
type FunctionDefinition struct {
	Header
	Params  []Param
	Returns []Param
	IR      *ir.Function
	IsIntrinsic bool
}

// ArgDefinition is a script-argument declaration (spec.md §3.3's ArgDef).
type ArgDefinition struct {
	Header
	Type        types.VType
	Required    bool
	Default     ir.Value
	DisplayName string
	Description string
}

// GlobalDefinition is a global variable, including the four ambient globals
// and every ArgDef/top-level object definition (spec.md §3.3's Global).
type GlobalDefinition struct {
	Header
	Type       types.VType
	IsConstant bool
	Index      int // slot in ir.File.Globals
}

// Table is the process-wide registry. All mutation goes through its
// exported methods, which take the single mutex guarding the maps (the
// Identify methods included); NextSlot hands out slots from an atomic
// counter without taking that lock.
type Table struct {
	mu sync.Mutex

	enums     map[string]*EnumDefinition
	structs   map[string]*StructDefinition
	functions map[string]*FunctionDefinition
	args      map[string]*ArgDefinition
	globals   map[string]*GlobalDefinition

	nextSlot atomic.Int64

	Types *types.Table
}

// NewTable creates an empty Definition Table seeded with the built-in
// primitive types.
func NewTable() *Table {
	return &Table{
		enums:     map[string]*EnumDefinition{},
		structs:   map[string]*StructDefinition{},
		functions: map[string]*FunctionDefinition{},
		args:      map[string]*ArgDefinition{},
		globals:   map[string]*GlobalDefinition{},
		Types:     types.NewTable(),
	}
}

// DuplicateError is reported when an identifier is Identify'd twice.
type DuplicateError struct {
	Identifier string
	First      token.Pos
	Second     token.Pos
}

func (e *DuplicateError) Error() string {
	return fmt.Sprintf("duplicate identifier %q (first declared at byte %d)", e.Identifier, e.First)
}

// NextSlot hands out a unique, monotonically increasing slot index for a
// new identification, per spec.md §5 ("Identification uses an atomic
// counter to hand out definition slots").
func (t *Table) NextSlot() int64 { return t.nextSlot.Add(1) - 1 }

func (t *Table) identifierTaken(id string) (token.Pos, bool) {
	if d, ok := t.enums[id]; ok {
		return d.Pos, true
	}
	if d, ok := t.structs[id]; ok {
		return d.Pos, true
	}
	if d, ok := t.functions[id]; ok {
		return d.Pos, true
	}
	if d, ok := t.args[id]; ok {
		return d.Pos, true
	}
	if d, ok := t.globals[id]; ok {
		return d.Pos, true
	}
	return 0, false
}

// IdentifyEnum reserves id as an enum definition, requiring stage None for
// that identifier across all definition kinds (spec.md: "identifiers are
// unique across all definitions").
func (t *Table) IdentifyEnum(id string, script *source.Script, pos token.Pos) (*EnumDefinition, error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if first, ok := t.identifierTaken(id); ok {
		return nil, &DuplicateError{Identifier: id, First: first, Second: pos}
	}
	d := &EnumDefinition{Header: Header{Kind: KindEnum, Identifier: id, Script: script, Pos: pos}}
	d.Def = &types.EnumDef{Name: id}
	t.Types.AddEnum(d.Def)
	d.setStage(StageIdentified)
	t.enums[id] = d
	return d, nil
}

// IdentifyStruct reserves id as a struct definition.
func (t *Table) IdentifyStruct(id string, script *source.Script, pos token.Pos) (*StructDefinition, error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if first, ok := t.identifierTaken(id); ok {
		return nil, &DuplicateError{Identifier: id, First: first, Second: pos}
	}
	d := &StructDefinition{Header: Header{Kind: KindStruct, Identifier: id, Script: script, Pos: pos}}
	d.Def = &types.StructDef{Name: id}
	t.Types.AddStruct(d.Def)
	d.setStage(StageIdentified)
	t.structs[id] = d
	return d, nil
}

// IdentifyFunction reserves id as a function definition.
func (t *Table) IdentifyFunction(id string, script *source.Script, pos token.Pos) (*FunctionDefinition, error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if first, ok := t.identifierTaken(id); ok {
		return nil, &DuplicateError{Identifier: id, First: first, Second: pos}
	}
	d := &FunctionDefinition{Header: Header{Kind: KindFunction, Identifier: id, Script: script, Pos: pos}}
	d.setStage(StageIdentified)
	t.functions[id] = d
	return d, nil
}

// IdentifyArg reserves id as a script-argument definition.
func (t *Table) IdentifyArg(id string, script *source.Script, pos token.Pos) (*ArgDefinition, error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if first, ok := t.identifierTaken(id); ok {
		return nil, &DuplicateError{Identifier: id, First: first, Second: pos}
	}
	d := &ArgDefinition{Header: Header{Kind: KindArg, Identifier: id, Script: script, Pos: pos}}
	d.setStage(StageIdentified)
	t.args[id] = d
	return d, nil
}

// IdentifyGlobal reserves id as a global definition (including ambient
// globals, which the compiler identifies before scanning user source).
func (t *Table) IdentifyGlobal(id string, script *source.Script, pos token.Pos) (*GlobalDefinition, error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if first, ok := t.identifierTaken(id); ok {
		return nil, &DuplicateError{Identifier: id, First: first, Second: pos}
	}
	d := &GlobalDefinition{Header: Header{Kind: KindGlobal, Identifier: id, Script: script, Pos: pos}}
	d.setStage(StageIdentified)
	t.globals[id] = d
	return d, nil
}

// DefineEnum records the raw member list and advances to StageDefined.
// d.Def was already allocated and registered into the Definition Table's
// Types table at Identify time (so every other definition's Define phase
// can already resolve this enum's name by the time it runs, whichever
// order Define phases happen to run in); this mutates it in place rather
// than replacing the pointer, so that registration stays valid.
func (d *EnumDefinition) DefineEnum(members []types.EnumMember, valueExprPos []token.Pos) {
	d.Def.Members = members
	d.ValueExprPos = valueExprPos
	d.setStage(StageDefined)
}

// ResolveEnum finalizes constant-folded values and advances to StageReady.
func (d *EnumDefinition) ResolveEnum(values []int64) {
	for i := range d.Def.Members {
		d.Def.Members[i].Value = values[i]
	}
	d.Def.Ready = true
	d.setStage(StageReady)
}

// DefineStruct records the raw member list and advances to StageDefined.
// d.Def was already allocated and registered into the Definition Table's
// Types table at Identify time, for the same forward-reference reason
// DefineEnum mutates in place rather than replacing the pointer.
func (d *StructDefinition) DefineStruct(members []Param) {
	d.RawMembers = members
	d.setStage(StageDefined)
}

// ResolveStruct computes offsets, total size, and the needs-internal-
// release flag once every member type is itself ready, advancing to
// StageReady. ok is false if a member type is not yet ready (the caller
// should retry in the next fixpoint round, per spec.md §5).
func (d *StructDefinition) ResolveStruct() (ok bool) {
	offset := 0
	needsRelease := false
	members := make([]types.Member, 0, len(d.RawMembers))
	for _, m := range d.RawMembers {
		if !m.Type.IsReady() {
			return false
		}
		members = append(members, types.Member{Name: m.Name, Type: m.Type, Offset: offset})
		offset += m.Type.SizeInBytes()
		needsRelease = needsRelease || m.Type.NeedsInternalRelease()
	}
	d.Def.Members = members
	d.Def.Size = offset
	d.Def.NeedsRelease = needsRelease
	d.Def.Ready = true
	d.setStage(StageReady)
	return true
}

// DefineFunction records the signature and advances to StageDefined.
func (d *FunctionDefinition) DefineFunction(params, returns []Param) {
	d.Params = params
	d.Returns = returns
	d.setStage(StageDefined)
}

// Resolve attaches either a built IR body or marks the function as an
// intrinsic, advancing to StageReady.
func (d *FunctionDefinition) Resolve(body *ir.Function, isIntrinsic bool) {
	d.IR = body
	d.IsIntrinsic = isIntrinsic
	d.setStage(StageReady)
}

// DefineArg records the declared type and advances to StageDefined.
func (d *ArgDefinition) DefineArg(t types.VType) {
	d.Type = t
	d.setStage(StageDefined)
}

// ResolveArg records the remaining declaration details and advances to
// StageReady.
func (d *ArgDefinition) ResolveArg(displayName, description string, required bool, def ir.Value) {
	d.DisplayName = displayName
	d.Description = description
	d.Required = required
	d.Default = def
	d.setStage(StageReady)
}

// DefineGlobal records the declared type and constness and advances to
// StageDefined, mirroring ArgDefinition's Define/Resolve split: the type is
// known as soon as its TypeExpr resolves, but the global's slot Index isn't
// assigned until internal/compiler lays out ir.File.Globals after every
// type in the program is Ready.
func (d *GlobalDefinition) DefineGlobal(t types.VType, isConstant bool) {
	d.Type = t
	d.IsConstant = isConstant
	d.setStage(StageDefined)
}

// ResolveGlobal records the assigned ir.File.Globals slot and advances to
// StageReady.
func (d *GlobalDefinition) ResolveGlobal(index int) {
	d.Index = index
	d.setStage(StageReady)
}

// Enum, Struct, Function, Arg, Global look up an already-identified
// definition by name.
func (t *Table) Enum(id string) (*EnumDefinition, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	d, ok := t.enums[id]
	return d, ok
}

func (t *Table) Struct(id string) (*StructDefinition, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	d, ok := t.structs[id]
	return d, ok
}

func (t *Table) Function(id string) (*FunctionDefinition, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	d, ok := t.functions[id]
	return d, ok
}

func (t *Table) Arg(id string) (*ArgDefinition, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	d, ok := t.args[id]
	return d, ok
}

func (t *Table) Global(id string) (*GlobalDefinition, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	d, ok := t.globals[id]
	return d, ok
}

// AllStructs returns a snapshot of every struct definition, used by the
// fixpoint struct-resolution phase (spec.md §5).
func (t *Table) AllStructs() []*StructDefinition {
	t.mu.Lock()
	defer t.mu.Unlock()
	out := make([]*StructDefinition, 0, len(t.structs))
	for _, d := range t.structs {
		out = append(out, d)
	}
	return out
}

// AllFunctions returns a snapshot of every function definition.
func (t *Table) AllFunctions() []*FunctionDefinition {
	t.mu.Lock()
	defer t.mu.Unlock()
	out := make([]*FunctionDefinition, 0, len(t.functions))
	for _, d := range t.functions {
		out = append(out, d)
	}
	return out
}

// AllEnums returns a snapshot of every enum definition.
func (t *Table) AllEnums() []*EnumDefinition {
	t.mu.Lock()
	defer t.mu.Unlock()
	out := make([]*EnumDefinition, 0, len(t.enums))
	for _, d := range t.enums {
		out = append(out, d)
	}
	return out
}

// AllArgs returns a snapshot of every arg definition.
func (t *Table) AllArgs() []*ArgDefinition {
	t.mu.Lock()
	defer t.mu.Unlock()
	out := make([]*ArgDefinition, 0, len(t.args))
	for _, d := range t.args {
		out = append(out, d)
	}
	return out
}

// AllReady reports whether every identified definition has reached
// StageReady — the testable property of spec.md §8 ("after front-end
// completes, every definition in the table is stage Ready OR at least one
// diagnostic exists").
func (t *Table) AllReady() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	for _, d := range t.enums {
		if d.Stage() != StageReady {
			return false
		}
	}
	for _, d := range t.structs {
		if d.Stage() != StageReady {
			return false
		}
	}
	for _, d := range t.functions {
		if d.Stage() != StageReady {
			return false
		}
	}
	for _, d := range t.args {
		if d.Stage() != StageReady {
			return false
		}
	}
	for _, d := range t.globals {
		if d.Stage() != StageReady {
			return false
		}
	}
	return true
}
