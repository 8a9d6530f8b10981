// Package runtime is the Runtime / Interpreter of spec.md §4.7: a
// call-stack machine executing internal/ir against a reference-counted
// object heap, grounded on original_source/code/interpreter.cpp's
// fetch-dispatch loop and runtime.cpp's heap/scope management, expressed
// in Go as tagged-value objects (internal/runtime.Object) instead of the
// original's raw byte buffers.
package runtime

import (
	"fmt"

	"github.com/yov-lang/yov/internal/ir"
	"github.com/yov-lang/yov/internal/types"
)

// IntrinsicFunc is the fixed signature every intrinsic implements
// (spec.md §4.8): it reads its arguments and writes its return values
// directly into the Reference slots the caller allocated.
type IntrinsicFunc func(m *Machine, args []Reference, returns []Reference) error

// Settings mirrors spec.md §4.7's {user_assert, no_user, analyze_only}.
type Settings struct {
	UserAssert  bool
	NoUser      bool
	AnalyzeOnly bool
}

// Machine is the runtime state: heap, global register file, call stack,
// and the intrinsic registry (populated by internal/intrinsics, kept out
// of this package to avoid a dependency cycle on internal/hostos).
type Machine struct {
	Heap       *Heap
	Globals    []Reference
	Intrinsics map[string]IntrinsicFunc
	Settings   Settings

	stack []*Scope

	ExitRequested bool
	ExitCode      int
	AbortErr      error

	sinceSweep int
}

// NewMachine creates a Machine with nGlobals global register slots
// (matching ir.File.Globals in count and order) and no intrinsics
// registered yet.
func NewMachine(nGlobals int) *Machine {
	return &Machine{
		Heap:       NewHeap(),
		Globals:    make([]Reference, nGlobals),
		Intrinsics: map[string]IntrinsicFunc{},
	}
}

// Abort requests a tier-2 runtime-abort exit (spec.md §7): the dispatch
// loop checks ExitRequested after every instruction and stops on the next
// fetch.
func (m *Machine) Abort(code int, err error) {
	if m.ExitRequested {
		return // first abort wins
	}
	m.ExitRequested = true
	m.ExitCode = code
	m.AbortErr = err
}

// Exit requests a clean, user-initiated exit (the `exit` intrinsic).
func (m *Machine) Exit(code int) {
	m.ExitRequested = true
	m.ExitCode = code
}

// Run executes fn to completion (spec.md §4.7's dispatch loop), with args
// bound to fn's Parameter registers, and returns the values fn's Return
// registers held when it returned.
func (m *Machine) Run(fn *ir.Function, args []Reference) ([]Reference, error) {
	sc := newScope(fn, nil, 0, false)
	m.bindParams(sc, args)
	m.stack = append(m.stack, sc)

	for !m.ExitRequested && len(m.stack) > 0 {
		top := m.stack[len(m.stack)-1]
		if top.pc >= len(top.fn.Instructions) {
			m.popScope()
			continue
		}
		pc := top.pc
		inst := &top.fn.Instructions[pc]
		top.pc++
		m.dispatch(top, inst)
		if inst.Kind == ir.UJump && inst.Offset < 0 {
			m.sinceSweep++
			if m.sinceSweep >= 32 {
				m.Heap.Sweep()
				m.sinceSweep = 0
			}
		}
	}
	m.Heap.Sweep()
	if m.AbortErr != nil {
		return nil, m.AbortErr
	}
	return sc.results, nil
}

func (m *Machine) bindParams(sc *Scope, args []Reference) {
	pi := 0
	for i, reg := range sc.fn.Registers {
		if reg.Kind != ir.RegParameter {
			continue
		}
		if pi < len(args) {
			v := m.settle(args[pi])
			m.Heap.incref(v.Parent)
			sc.reg[i] = v
			pi++
		}
	}
}

func (m *Machine) pushScope(fn *ir.Function, caller *Scope, args []Reference, dst int, dstGlobal bool) *Scope {
	sc := newScope(fn, caller, dst, dstGlobal)
	m.bindParams(sc, args)
	m.stack = append(m.stack, sc)
	return sc
}

// popScope finishes the top scope: it reads its Return registers,
// releases its own locals, copies the results into the caller's dst
// registers (if any), and pops the stack.
func (m *Machine) popScope() {
	sc := m.stack[len(m.stack)-1]
	m.stack = m.stack[:len(m.stack)-1]

	var results []Reference
	for i, reg := range sc.fn.Registers {
		if reg.Kind == ir.RegReturn {
			results = append(results, sc.reg[i])
		}
	}
	sc.results = results

	if sc.caller != nil {
		for i, r := range results {
			slot := m.regSlot(sc.caller, sc.returnDst+i, sc.dstGlobal)
			m.rebind(slot, m.settle(r))
		}
	}

	for i := range sc.reg {
		m.Heap.decref(sc.reg[i].Parent)
	}
}

// rebind replaces *slot with r, adjusting ref-counts (the Store/Copy
// "decrement the previous holder, install the source, increment its
// count" pattern spec.md §4.7 describes).
func (m *Machine) rebind(slot *Reference, r Reference) {
	m.Heap.decref(slot.Parent)
	m.Heap.incref(r.Parent)
	*slot = r
}

func (m *Machine) dispatch(sc *Scope, inst *ir.Unit) {
	switch inst.Kind {
	case ir.UCopy:
		v := m.materialize(sc, inst.Src)
		v = m.settle(v)
		slot := m.regSlot(sc, inst.Dst, inst.DstGlobal)
		m.rebind(slot, v)

	case ir.UStore:
		v := m.materialize(sc, inst.Src)
		slot := m.regSlot(sc, inst.Dst, inst.DstGlobal)
		if slot.Address == addrWhole {
			m.rebind(slot, m.settle(v))
			return
		}
		elems, ok := slot.Parent.Payload.([]Reference)
		if !ok || slot.Address < 0 || slot.Address >= len(elems) {
			m.Abort(2, fmt.Errorf("runtime: out-of-bounds child store"))
			return
		}
		settled := m.settle(v)
		m.Heap.decref(elems[slot.Address].Parent)
		elems[slot.Address] = settled
		m.Heap.incref(settled.Parent)

	case ir.UFunctionCall:
		m.dispatchCall(sc, inst)

	case ir.UReturn:
		sc.pc = len(sc.fn.Instructions) // force the next fetch to pop

	case ir.UJump:
		switch inst.Cond {
		case 0:
			sc.pc = sc.pc + inst.Offset
		case -1, 1:
			truthy := m.truthy(m.materialize(sc, inst.JumpSrc))
			if (inst.Cond == 1 && truthy) || (inst.Cond == -1 && !truthy) {
				sc.pc = sc.pc + inst.Offset
			}
		}

	case ir.UBinaryOp:
		m.dispatchBinaryOp(sc, inst)

	case ir.USignOp:
		m.dispatchSignOp(sc, inst)

	case ir.UChild:
		m.dispatchChild(sc, inst)

	case ir.UResultEval:
		v := m.materialize(sc, inst.Src)
		res := m.AsResult(v)
		if res.Failed {
			m.Abort(res.Code, fmt.Errorf("%s", res.Message))
			return
		}
		slot := m.regSlot(sc, inst.Dst, false)
		m.rebind(slot, m.settle(v))

	default:
		m.Abort(1, fmt.Errorf("runtime: unhandled instruction kind %d", inst.Kind))
	}
}

func (m *Machine) dispatchCall(sc *Scope, inst *ir.Unit) {
	args := make([]Reference, len(inst.Args))
	for i, a := range inst.Args {
		args[i] = m.materialize(sc, a)
	}

	if inst.IntrinsicName != "" {
		fn, ok := m.Intrinsics[inst.IntrinsicName]
		if !ok {
			m.Abort(1, fmt.Errorf("runtime: unknown intrinsic %q", inst.IntrinsicName))
			return
		}
		returns := make([]Reference, inst.ReturnCount)
		if err := fn(m, args, returns); err != nil {
			m.Abort(5, err)
			return
		}
		for i, r := range returns {
			slot := m.regSlot(sc, inst.FirstDst+i, inst.FirstDstGlobal)
			m.rebind(slot, m.settle(r))
		}
		return
	}

	if inst.Fn == nil {
		m.Abort(1, fmt.Errorf("runtime: call to unresolved function"))
		return
	}
	m.pushScope(inst.Fn, sc, args, inst.FirstDst, inst.FirstDstGlobal)
}

func (m *Machine) dispatchSignOp(sc *Scope, inst *ir.Unit) {
	v := m.materialize(sc, inst.Src)
	v = m.readThrough(v)
	if v.Parent == nil {
		m.Abort(3, fmt.Errorf("runtime: null dereference"))
		return
	}
	var result Reference
	switch inst.SignO {
	case types.SignNeg:
		n, _ := v.Parent.Payload.(int64)
		result = m.NewInt(-n)
	case types.SignNot:
		b, _ := v.Parent.Payload.(bool)
		result = m.NewBool(!b)
	}
	slot := m.regSlot(sc, inst.Dst, false)
	m.rebind(slot, result)
}

func (m *Machine) dispatchChild(sc *Scope, inst *ir.Unit) {
	parent := m.materialize(sc, inst.Src)
	resolved := m.readThrough(parent)
	if resolved.Parent == nil {
		m.Abort(3, fmt.Errorf("runtime: null dereference"))
		return
	}

	if inst.IsMember {
		idx := int(inst.Index.Int)
		if resolved.Parent.Type.Kind == types.KindStruct {
			elems, ok := resolved.Parent.Payload.([]Reference)
			if !ok || idx < 0 || idx >= len(elems) {
				m.Abort(2, fmt.Errorf("runtime: out-of-bounds member access"))
				return
			}
			slot := m.regSlot(sc, inst.Dst, false)
			m.rebind(slot, Reference{Parent: resolved.Parent, Type: elems[idx].Type, Address: idx})
			return
		}
		// A computed scalar property (.size/.count/.index/.value/.name):
		// not addressable, a freshly evaluated value (spec.md §4.7).
		result := m.evalProperty(resolved, idx)
		slot := m.regSlot(sc, inst.Dst, false)
		m.rebind(slot, result)
		return
	}

	// Array element access.
	index := m.Int(m.materialize(sc, inst.Index))
	elems, ok := resolved.Parent.Payload.([]Reference)
	if !ok || index < 0 || int(index) >= len(elems) {
		m.Abort(2, fmt.Errorf("runtime: array index out of bounds"))
		return
	}
	slot := m.regSlot(sc, inst.Dst, false)
	m.rebind(slot, Reference{Parent: resolved.Parent, Type: elems[index].Type, Address: int(index)})
}

// evalProperty computes .size/.count/.index/.value/.name (types.Property's
// fixed index catalogue) against a resolved (non-struct) object.
func (m *Machine) evalProperty(r Reference, propIndex int) Reference {
	switch propIndex {
	case types.PropStringSize:
		s, _ := r.Parent.Payload.(string)
		return m.NewInt(int64(len(s)))
	case types.PropArrayCount:
		elems, _ := r.Parent.Payload.([]Reference)
		return m.NewInt(int64(len(elems)))
	case types.PropEnumIndex:
		n, _ := r.Parent.Payload.(int64)
		return m.NewInt(n)
	case types.PropEnumValue:
		n, _ := r.Parent.Payload.(int64)
		if r.Parent.Type.Enum != nil && int(n) < len(r.Parent.Type.Enum.Members) {
			return m.NewInt(r.Parent.Type.Enum.Members[n].Value)
		}
		return m.NewInt(0)
	case types.PropEnumName:
		n, _ := r.Parent.Payload.(int64)
		if r.Parent.Type.Enum != nil && int(n) < len(r.Parent.Type.Enum.Members) {
			return m.NewString(r.Parent.Type.Enum.Members[n].Name)
		}
		return m.NewString("")
	default:
		return Reference{}
	}
}
