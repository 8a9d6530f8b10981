package runtime

import "github.com/yov-lang/yov/internal/ir"

// Scope is a call-stack frame (spec.md §4.7): the IR being executed, its
// program counter, a register file (one Reference slot per ir.Register),
// and where to deliver this call's return values in the caller.
type Scope struct {
	fn  *ir.Function
	pc  int
	reg []Reference

	caller    *Scope
	returnDst int  // caller register index to receive return value 0 (consecutive after)
	dstGlobal bool // returnDst addresses the caller's globals, not its locals

	results []Reference // this call's Return registers, populated when it pops
}

func newScope(fn *ir.Function, caller *Scope, returnDst int, dstGlobal bool) *Scope {
	return &Scope{
		fn:        fn,
		reg:       make([]Reference, len(fn.Registers)),
		caller:    caller,
		returnDst: returnDst,
		dstGlobal: dstGlobal,
	}
}
