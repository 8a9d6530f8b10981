package ir

import (
	"fmt"

	"github.com/yov-lang/yov/internal/types"
)

// Function is the IR body of one user function or the program's implicit
// global-initialization function; see spec.md §3.6's IR{parameter_count,
// local_register_table, instruction_array, return_value_descriptor,
// source_path}.
type Function struct {
	Name             string
	ParameterCount   int
	Registers        []Register // local register table; Local/Parameter/Return kinds
	ReturnDescriptor []types.VType
	SourcePath       string

	Instructions []Unit // populated by Link; empty until then

	head, tail *Unit
	anonCount  int
}

// NewFunction starts a Function builder with no registers or code yet.
func NewFunction(name, sourcePath string) *Function {
	return &Function{Name: name, SourcePath: sourcePath}
}

// AddParameter appends a Parameter register and returns its index.
func (f *Function) AddParameter(name string, t types.VType) int {
	f.ParameterCount++
	return f.addRegister(Register{Kind: RegParameter, Name: name, Type: t})
}

// AddReturn appends a Return register and returns its index.
func (f *Function) AddReturn(t types.VType) int {
	f.ReturnDescriptor = append(f.ReturnDescriptor, t)
	return f.addRegister(Register{Kind: RegReturn, Type: t})
}

// AddNamedLocal appends a named Local register (a user-declared object) and
// returns its index.
func (f *Function) AddNamedLocal(name string, t types.VType, isConstant bool) int {
	return f.addRegister(Register{Kind: RegLocal, Name: name, Type: t, IsConstant: isConstant})
}

// AddLocal appends an unnamed, compiler-introduced temporary register,
// named "%tN" in the teacher's addLocal idiom (internal/ir/builder.go),
// and returns its index.
func (f *Function) AddLocal(t types.VType) int {
	name := fmt.Sprintf("%%t%d", f.anonCount)
	f.anonCount++
	return f.addRegister(Register{Kind: RegLocal, Name: name, Type: t})
}

func (f *Function) addRegister(r Register) int {
	f.Registers = append(f.Registers, r)
	return len(f.Registers) - 1
}

// Emit appends u to the end of the function's unit list and returns it.
func (f *Function) Emit(u *Unit) *Unit {
	if f.head == nil {
		f.head, f.tail = u, u
		return u
	}
	f.tail.next = u
	f.tail = u
	return u
}

// Place appends an already-allocated anchor unit (from NewEmpty) at the
// current build position; used to give a forward jump a concrete target.
func (f *Function) Place(u *Unit) { f.Emit(u) }

// File is the set of Functions and the global register table for one
// compiled program, spanning every Script the Location Scanner discovered.
type File struct {
	Globals    []Register
	GlobalInit *Function // IR that computes every global's initial value
	Functions  map[string]*Function
}

// NewFile creates an empty File with the four ambient globals reserved at
// indices 0..3 (yov, os, context, calls — spec.md §6.3), so user globals
// start at index 4.
func NewFile() *File {
	f := &File{Functions: map[string]*Function{}}
	for _, name := range []string{"yov", "os", "context", "calls"} {
		f.Globals = append(f.Globals, Register{Kind: RegGlobal, Name: name, Type: types.Any})
	}
	return f
}

// AddGlobal appends a user global and returns its index.
func (f *File) AddGlobal(name string, t types.VType, isConstant bool) int {
	f.Globals = append(f.Globals, Register{Kind: RegGlobal, Name: name, Type: t, IsConstant: isConstant})
	return len(f.Globals) - 1
}
