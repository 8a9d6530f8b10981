package runtime

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yov-lang/yov/internal/ir"
	"github.com/yov-lang/yov/internal/types"
)

// buildFunc builds and links a Function from a sequence of already-Emit'd
// units, mirroring how internal/sema's Builder finishes a function body.
func buildFunc(name string, regs []ir.Register, units []*ir.Unit) *ir.Function {
	fn := ir.NewFunction(name, "test.yov")
	fn.Registers = regs
	for i, r := range regs {
		switch r.Kind {
		case ir.RegParameter:
			fn.ParameterCount++
			_ = i
		case ir.RegReturn:
			fn.ReturnDescriptor = append(fn.ReturnDescriptor, r.Type)
		}
	}
	for _, u := range units {
		fn.Emit(u)
	}
	ir.Link(fn)
	return fn
}

func TestRunArithmeticReturn(t *testing.T) {
	// add :: func(a: Int, b: Int) (r: Int) { return a + b; }
	regs := []ir.Register{
		{Kind: ir.RegParameter, Name: "a", Type: types.Int()},
		{Kind: ir.RegParameter, Name: "b", Type: types.Int()},
		{Kind: ir.RegReturn, Type: types.Int()},
	}
	fn := buildFunc("add", regs, []*ir.Unit{
		{Kind: ir.UBinaryOp, Dst: 2, Op: types.OpAdd,
			Lhs: ir.Reg(ir.VRegister, 0, types.Int()), Rhs: ir.Reg(ir.VRegister, 1, types.Int())},
		{Kind: ir.UReturn},
	})

	m := NewMachine(0)
	results, err := m.Run(fn, []Reference{m.NewInt(3), m.NewInt(4)})
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, int64(7), m.Int(results[0]))

	m.Heap.Sweep()
	assert.Equal(t, 0, m.Heap.ObjectCount())
}

func TestRunConditionalJump(t *testing.T) {
	// f :: func(a: Int) (r: Bool) {
	//   if (a > 0) { r = true; } else { r = false; }
	//   return r;
	// }
	regs := []ir.Register{
		{Kind: ir.RegParameter, Name: "a", Type: types.Int()},
		{Kind: ir.RegReturn, Type: types.Bool()},
		{Kind: ir.RegLocal, Name: "%t0", Type: types.Bool()},
	}
	cond := &ir.Unit{Kind: ir.UBinaryOp, Dst: 2, Op: types.OpGt,
		Lhs: ir.Reg(ir.VRegister, 0, types.Int()), Rhs: ir.LitInt(0)}
	jumpElse := &ir.Unit{Kind: ir.UJump, Cond: -1, JumpSrc: ir.Reg(ir.VRegister, 2, types.Bool())}
	setTrue := &ir.Unit{Kind: ir.UCopy, Dst: 1, Src: ir.LitBool(true)}
	jumpEnd := &ir.Unit{Kind: ir.UJump, Cond: 0}
	setFalse := &ir.Unit{Kind: ir.UCopy, Dst: 1, Src: ir.LitBool(false)}
	end := ir.NewEmpty()
	ret := &ir.Unit{Kind: ir.UReturn}

	jumpElse.Target = setFalse
	jumpEnd.Target = end

	fn := buildFunc("f", regs, []*ir.Unit{cond, jumpElse, setTrue, jumpEnd, setFalse, end, ret})

	m := NewMachine(0)
	results, err := m.Run(fn, []Reference{m.NewInt(5)})
	require.NoError(t, err)
	assert.True(t, m.Bool(results[0]))

	results2, err := m.Run(fn, []Reference{m.NewInt(-5)})
	require.NoError(t, err)
	assert.False(t, m.Bool(results2[0]))
}

func TestRunStructFieldReadWrite(t *testing.T) {
	// p :: Point{x: Int, y: Int}
	// f :: func() (r: Int) {
	//   var p: Point;
	//   p.x = 9;
	//   r = p.x;
	//   return r;
	// }
	structDef := &types.StructDef{
		Name:    "Point",
		Members: []types.Member{{Name: "x", Type: types.Int()}, {Name: "y", Type: types.Int()}},
		Ready:   true,
	}
	pointType := types.VType{Kind: types.KindStruct, BaseName: "Point", Struct: structDef}

	regs := []ir.Register{
		{Kind: ir.RegReturn, Type: types.Int()},
		{Kind: ir.RegLocal, Name: "p", Type: pointType},
		{Kind: ir.RegLocal, Name: "%t0", Type: types.Int()}, // UChild dst for p.x (store)
		{Kind: ir.RegLocal, Name: "%t1", Type: types.Int()}, // UChild dst for p.x (read)
	}
	units := []*ir.Unit{
		{Kind: ir.UCopy, Dst: 1, Src: ir.ZeroInit(pointType)},
		{Kind: ir.UChild, Dst: 2, Src: ir.Reg(ir.VRegister, 1, pointType), Index: ir.LitInt(0), IsMember: true},
		{Kind: ir.UStore, Dst: 2, Src: ir.LitInt(9)},
		{Kind: ir.UChild, Dst: 3, Src: ir.Reg(ir.VRegister, 1, pointType), Index: ir.LitInt(0), IsMember: true},
		{Kind: ir.UCopy, Dst: 0, Src: ir.Reg(ir.VRegister, 3, types.Int())},
		{Kind: ir.UReturn},
	}
	fn := buildFunc("f", regs, units)

	m := NewMachine(0)
	results, err := m.Run(fn, nil)
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, int64(9), m.Int(results[0]))
}

func TestRunArrayIndexAndCount(t *testing.T) {
	// f :: func() (r: Int) {
	//   var xs: Int[] = {1, 2, 3};
	//   return xs[1] + xs.count;
	// }
	intArr := types.FromDimension(types.Int(), 1)
	regs := []ir.Register{
		{Kind: ir.RegReturn, Type: types.Int()},
		{Kind: ir.RegLocal, Name: "xs", Type: intArr},
		{Kind: ir.RegLocal, Name: "%t0", Type: types.Int()},
		{Kind: ir.RegLocal, Name: "%t1", Type: types.Int()},
		{Kind: ir.RegLocal, Name: "%t2", Type: types.Int()},
	}
	arrLit := ir.Value{Kind: ir.VArray, Type: intArr, Elems: []ir.Value{ir.LitInt(1), ir.LitInt(2), ir.LitInt(3)}}
	units := []*ir.Unit{
		{Kind: ir.UCopy, Dst: 1, Src: arrLit},
		{Kind: ir.UChild, Dst: 2, Src: ir.Reg(ir.VRegister, 1, intArr), Index: ir.LitInt(1)},
		// .count resolves via the fixed PropArrayCount property index, the
		// same literal sema's buildSelector emits for a property access.
		{Kind: ir.UChild, Dst: 3, Src: ir.Reg(ir.VRegister, 1, intArr), Index: ir.LitInt(int64(types.PropArrayCount)), IsMember: true},
		{Kind: ir.UBinaryOp, Dst: 4, Op: types.OpAdd,
			Lhs: ir.Reg(ir.VRegister, 2, types.Int()), Rhs: ir.Reg(ir.VRegister, 3, types.Int())},
		{Kind: ir.UCopy, Dst: 0, Src: ir.Reg(ir.VRegister, 4, types.Int())},
		{Kind: ir.UReturn},
	}
	fn := buildFunc("f", regs, units)

	m := NewMachine(0)
	results, err := m.Run(fn, nil)
	require.NoError(t, err)
	assert.Equal(t, int64(5), m.Int(results[0]))
}

func TestRunFunctionCallAndIntrinsic(t *testing.T) {
	// double :: func(a: Int) (r: Int) { return a + a; }
	// main   :: func() (r: Int) { return double(21); }
	doubleRegs := []ir.Register{
		{Kind: ir.RegParameter, Name: "a", Type: types.Int()},
		{Kind: ir.RegReturn, Type: types.Int()},
	}
	double := buildFunc("double", doubleRegs, []*ir.Unit{
		{Kind: ir.UBinaryOp, Dst: 1, Op: types.OpAdd,
			Lhs: ir.Reg(ir.VRegister, 0, types.Int()), Rhs: ir.Reg(ir.VRegister, 0, types.Int())},
		{Kind: ir.UReturn},
	})

	mainRegs := []ir.Register{{Kind: ir.RegReturn, Type: types.Int()}}
	main := buildFunc("main", mainRegs, []*ir.Unit{
		{Kind: ir.UFunctionCall, Fn: double, FirstDst: 0, Args: []ir.Value{ir.LitInt(21)}},
		{Kind: ir.UReturn},
	})

	m := NewMachine(0)
	results, err := m.Run(main, nil)
	require.NoError(t, err)
	assert.Equal(t, int64(42), m.Int(results[0]))

	var captured string
	m.Intrinsics["println"] = func(mm *Machine, args []Reference, returns []Reference) error {
		if len(args) > 0 {
			captured = mm.displayString(args[0])
		}
		return nil
	}
	printMain := buildFunc("printMain", nil, []*ir.Unit{
		{Kind: ir.UFunctionCall, IntrinsicName: "println", Args: []ir.Value{ir.LitString("hi")}},
		{Kind: ir.UReturn},
	})
	_, err = m.Run(printMain, nil)
	require.NoError(t, err)
	assert.Equal(t, "hi", captured)
}

func TestRunResultEvalAborts(t *testing.T) {
	// f :: func() (r: Int) { failing()!; return 0; }
	resultType := types.VType{Kind: types.KindStruct, BaseName: "Result"}
	regs := []ir.Register{
		{Kind: ir.RegReturn, Type: types.Int()},
		{Kind: ir.RegLocal, Name: "%t0", Type: resultType},
	}
	fn := buildFunc("f", regs, []*ir.Unit{
		{Kind: ir.UResultEval, Dst: 1, Src: ir.Reg(ir.VRegister, 1, resultType)},
		{Kind: ir.UCopy, Dst: 0, Src: ir.LitInt(0)},
		{Kind: ir.UReturn},
	})

	m := NewMachine(0)
	sc := newScope(fn, nil, 0, false)
	sc.reg[1] = m.NewResult(true, "boom", 7)
	m.stack = append(m.stack, sc)
	for !m.ExitRequested && len(m.stack) > 0 {
		top := m.stack[len(m.stack)-1]
		if top.pc >= len(top.fn.Instructions) {
			m.popScope()
			continue
		}
		inst := &top.fn.Instructions[top.pc]
		top.pc++
		m.dispatch(top, inst)
	}
	require.Error(t, m.AbortErr)
	assert.Equal(t, 7, m.ExitCode)
}

func TestGlobalRegisterAddressing(t *testing.T) {
	// A global holds 10; a function with its own local register 0 (which
	// numerically collides with the global's index) must not alias it.
	m := NewMachine(1)
	m.Globals[0] = m.NewInt(10)
	m.Heap.incref(m.Globals[0].Parent)

	regs := []ir.Register{
		{Kind: ir.RegReturn, Type: types.Int()},
		{Kind: ir.RegLocal, Name: "%t0", Type: types.Int()},
	}
	fn := buildFunc("f", regs, []*ir.Unit{
		{Kind: ir.UCopy, Dst: 1, Src: ir.LitInt(99)}, // local register 1, not global
		{Kind: ir.UBinaryOp, Dst: 0, Op: types.OpAdd,
			Lhs: ir.Reg(ir.VRegister, 1, types.Int()),
			Rhs: ir.Value{Kind: ir.VRegister, RegIndex: 0, Type: types.Int(), Global: true}},
		{Kind: ir.UReturn},
	})

	m2 := m
	results, err := m2.Run(fn, nil)
	require.NoError(t, err)
	assert.Equal(t, int64(109), m2.Int(results[0]))
	assert.Equal(t, int64(10), m2.Int(m2.Globals[0]))
}
