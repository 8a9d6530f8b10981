package sema_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yov-lang/yov/internal/ast"
	"github.com/yov-lang/yov/internal/defs"
	"github.com/yov-lang/yov/internal/ir"
	"github.com/yov-lang/yov/internal/locscan"
	"github.com/yov-lang/yov/internal/parser"
	"github.com/yov-lang/yov/internal/sema"
	"github.com/yov-lang/yov/internal/source"
	"github.com/yov-lang/yov/internal/types"
)

func parseOneFunc(t *testing.T, src string) *ast.FuncDecl {
	t.Helper()
	script := source.New(0, "/t.yov", src)
	res, diags := locscan.Scan(script)
	require.Empty(t, diags)
	file, errs := parser.ParseFile(res, "t.yov")
	require.Empty(t, errs)
	require.Len(t, file.Funcs, 1)
	return file.Funcs[0]
}

func parseOneGlobal(t *testing.T, src string) *ast.ObjectDeclStmt {
	t.Helper()
	script := source.New(0, "/g.yov", src)
	res, diags := locscan.Scan(script)
	require.Empty(t, diags)
	file, errs := parser.ParseFile(res, "g.yov")
	require.Empty(t, errs)
	require.Len(t, file.Globals, 1)
	return file.Globals[0]
}

func TestInferExprType(t *testing.T) {
	g := parseOneGlobal(t, `count := 1 + 2;`)
	require.Nil(t, g.Type, "inferred-type global has no explicit TypeExpr")

	b := sema.New(defs.NewTable())
	vt, errs := b.InferExprType(g.Value)
	require.Empty(t, errs)
	assert.True(t, vt.Equals(types.Int(), nil))
}

func TestBuildFunctionSimpleReturn(t *testing.T) {
	decl := parseOneFunc(t, `add :: func(a: Int, b: Int) (r: Int) { return a + b; }`)

	dt := defs.NewTable()
	fd, err := dt.IdentifyFunction("add", nil, decl.Pos().Start)
	require.NoError(t, err)
	fd.DefineFunction(
		[]defs.Param{{Name: "a", Type: types.Int()}, {Name: "b", Type: types.Int()}},
		[]defs.Param{{Name: "r", Type: types.Int()}},
	)

	fn := ir.NewFunction("add", "t.yov")
	b := sema.New(dt)
	errs := b.BuildFunction(fd, decl, fn)
	require.Empty(t, errs)

	ir.Link(fn)
	require.Len(t, fn.Instructions, 4)
	assert.Equal(t, ir.UBinaryOp, fn.Instructions[0].Kind)
	assert.Equal(t, ir.UCopy, fn.Instructions[1].Kind)
	assert.Equal(t, 2, fn.Instructions[1].Dst)
	assert.Equal(t, ir.UReturn, fn.Instructions[2].Kind)
	assert.Equal(t, ir.UReturn, fn.Instructions[3].Kind)
}

func TestBuildIfElse(t *testing.T) {
	decl := parseOneFunc(t, `pick :: func(a: Int) (r: Int) {
		if (a > 0) { r = 1; } else { r = 0 - 1; }
		return r;
	}`)

	dt := defs.NewTable()
	fd, err := dt.IdentifyFunction("pick", nil, decl.Pos().Start)
	require.NoError(t, err)
	fd.DefineFunction(
		[]defs.Param{{Name: "a", Type: types.Int()}},
		[]defs.Param{{Name: "r", Type: types.Int()}},
	)

	fn := ir.NewFunction("pick", "t.yov")
	b := sema.New(dt)
	errs := b.BuildFunction(fd, decl, fn)
	require.Empty(t, errs)

	ir.Link(fn)
	assert.True(t, ir.JumpOffsetsInBounds(fn))

	var jumps int
	for _, u := range fn.Instructions {
		if u.Kind == ir.UJump {
			jumps++
		}
	}
	assert.Equal(t, 2, jumps) // jump-if-false to else, jump-over-else to end
}

func TestBuildForInLoopOverArrayParameter(t *testing.T) {
	decl := parseOneFunc(t, `sumAll :: func(xs: Int[]) (total: Int) {
		total = 0;
		for (x : xs) {
			total = total + x;
		}
		return total;
	}`)

	dt := defs.NewTable()
	fd, err := dt.IdentifyFunction("sumAll", nil, decl.Pos().Start)
	require.NoError(t, err)
	fd.DefineFunction(
		[]defs.Param{{Name: "xs", Type: types.FromDimension(types.Int(), 1)}},
		[]defs.Param{{Name: "total", Type: types.Int()}},
	)

	fn := ir.NewFunction("sumAll", "t.yov")
	b := sema.New(dt)
	errs := b.BuildFunction(fd, decl, fn)
	require.Empty(t, errs)

	ir.Link(fn)
	assert.True(t, ir.JumpOffsetsInBounds(fn))

	var hasChild bool
	for _, u := range fn.Instructions {
		if u.Kind == ir.UChild {
			hasChild = true
		}
	}
	assert.True(t, hasChild)
}

func TestBuildStructFieldAssignment(t *testing.T) {
	decl := parseOneFunc(t, `use :: func() (r: Int) {
		p: P;
		p.x = 3;
		r = p.x;
		return r;
	}`)

	dt := defs.NewTable()
	sd, err := dt.IdentifyStruct("P", nil, 0)
	require.NoError(t, err)
	sd.DefineStruct([]defs.Param{{Name: "x", Type: types.Int()}, {Name: "y", Type: types.Int()}})
	require.True(t, sd.ResolveStruct())
	dt.Types.AddStruct(sd.Def)

	fd, err := dt.IdentifyFunction("use", nil, decl.Pos().Start)
	require.NoError(t, err)
	fd.DefineFunction(nil, []defs.Param{{Name: "r", Type: types.Int()}})

	fn := ir.NewFunction("use", "t.yov")
	b := sema.New(dt)
	errs := b.BuildFunction(fd, decl, fn)
	require.Empty(t, errs)

	ir.Link(fn)
	var childCount, storeCount int
	for _, u := range fn.Instructions {
		switch u.Kind {
		case ir.UChild:
			childCount++
		case ir.UStore:
			storeCount++
		}
	}
	assert.GreaterOrEqual(t, childCount, 2)
	assert.Equal(t, 1, storeCount)
}

// identifyResultStruct seeds the Result prelude struct's shape just enough
// for isResultType's BaseName check to recognize a return as a Result.
func identifyResultStruct(t *testing.T, dt *defs.Table) types.VType {
	t.Helper()
	sd, err := dt.IdentifyStruct("Result", nil, 0)
	require.NoError(t, err)
	sd.DefineStruct([]defs.Param{
		{Name: "failed", Type: types.Bool()},
		{Name: "message", Type: types.String()},
		{Name: "code", Type: types.Int()},
	})
	require.True(t, sd.ResolveStruct())
	dt.Types.AddStruct(sd.Def)
	rt, ok := dt.Types.Lookup("Result")
	require.True(t, ok)
	return rt
}

// TestExprStmtAutoResultEvalOnSingleReturnIntrinsic pins the fix for a bare
// statement call to a single-return, Result-typed intrinsic: the return is
// discarded entirely, so it must still get a UResultEval check even though
// buildCall never wraps a single return in a VMultipleReturn bundle.
func TestExprStmtAutoResultEvalOnSingleReturnIntrinsic(t *testing.T) {
	decl := parseOneFunc(t, `use :: func() { delete_file("x"); }`)

	dt := defs.NewTable()
	resultT := identifyResultStruct(t, dt)
	fd, err := dt.IdentifyFunction("delete_file", nil, 0)
	require.NoError(t, err)
	fd.DefineFunction([]defs.Param{{Name: "path", Type: types.String()}}, []defs.Param{{Name: "_", Type: resultT}})
	fd.Resolve(nil, true)

	useFd, err := dt.IdentifyFunction("use", nil, decl.Pos().Start)
	require.NoError(t, err)
	useFd.DefineFunction(nil, nil)

	fn := ir.NewFunction("use", "t.yov")
	b := sema.New(dt)
	errs := b.BuildFunction(useFd, decl, fn)
	require.Empty(t, errs)

	ir.Link(fn)
	var evals int
	for _, u := range fn.Instructions {
		if u.Kind == ir.UResultEval {
			evals++
		}
	}
	assert.Equal(t, 1, evals)
}

// TestAssignedSingleReturnResultSkipsAutoResultEval pins the other side: a
// single-return Result explicitly captured by name (`r := delete_file(...)`)
// is the caller taking responsibility, per spec.md §4.8, so no check is
// auto-inserted.
func TestAssignedSingleReturnResultSkipsAutoResultEval(t *testing.T) {
	decl := parseOneFunc(t, `use :: func() { r := delete_file("x"); }`)

	dt := defs.NewTable()
	resultT := identifyResultStruct(t, dt)
	fd, err := dt.IdentifyFunction("delete_file", nil, 0)
	require.NoError(t, err)
	fd.DefineFunction([]defs.Param{{Name: "path", Type: types.String()}}, []defs.Param{{Name: "_", Type: resultT}})
	fd.Resolve(nil, true)

	useFd, err := dt.IdentifyFunction("use", nil, decl.Pos().Start)
	require.NoError(t, err)
	useFd.DefineFunction(nil, nil)

	fn := ir.NewFunction("use", "t.yov")
	b := sema.New(dt)
	errs := b.BuildFunction(useFd, decl, fn)
	require.Empty(t, errs)

	ir.Link(fn)
	for _, u := range fn.Instructions {
		assert.NotEqual(t, ir.UResultEval, u.Kind)
	}
}

// TestScalarOfChecksTrailingResultAndReturnsFirstElement pins the fix for
// scalarOf handing the runtime a bundle it could never materialize: the
// UResultEval it emits must point at the bundle's trailing Result element,
// not the bundle itself, and the value used downstream (here, printed) must
// be the bundle's first element.
func TestScalarOfChecksTrailingResultAndReturnsFirstElement(t *testing.T) {
	decl := parseOneFunc(t, `use :: func() { x := env("HOME"); println(x); }`)

	dt := defs.NewTable()
	resultT := identifyResultStruct(t, dt)
	fd, err := dt.IdentifyFunction("env", nil, 0)
	require.NoError(t, err)
	fd.DefineFunction(
		[]defs.Param{{Name: "name", Type: types.String()}},
		[]defs.Param{{Name: "value", Type: types.String()}, {Name: "result", Type: resultT}},
	)
	fd.Resolve(nil, true)

	printlnFd, err := dt.IdentifyFunction("println", nil, 0)
	require.NoError(t, err)
	printlnFd.DefineFunction([]defs.Param{{Name: "s", Type: types.String()}}, nil)
	printlnFd.Resolve(nil, true)

	useFd, err := dt.IdentifyFunction("use", nil, decl.Pos().Start)
	require.NoError(t, err)
	useFd.DefineFunction(nil, nil)

	fn := ir.NewFunction("use", "t.yov")
	b := sema.New(dt)
	errs := b.BuildFunction(useFd, decl, fn)
	require.Empty(t, errs)

	ir.Link(fn)
	var eval *ir.Unit
	for i := range fn.Instructions {
		if fn.Instructions[i].Kind == ir.UResultEval {
			eval = &fn.Instructions[i]
		}
	}
	require.NotNil(t, eval)
	assert.True(t, eval.Src.Type.Equals(resultT, nil), "ResultEval.Src must be the Result element, not the whole bundle")
	assert.NotEqual(t, ir.VMultipleReturn, eval.Src.Kind)
}

func TestBuildGlobalInit(t *testing.T) {
	decl := parseOneFunc(t, `noop :: func() {}`)
	_ = decl

	dt := defs.NewTable()
	file := ir.NewFile()
	idx := file.AddGlobal("limit", types.Int(), false)
	gd, err := dt.IdentifyGlobal("limit", nil, 0)
	require.NoError(t, err)
	gd.Type = types.Int()
	gd.Index = idx

	script := source.New(0, "/g.yov", `limit: Int = 10;`)
	res, diags := locscan.Scan(script)
	require.Empty(t, diags)
	gfile, errs := parser.ParseFile(res, "g.yov")
	require.Empty(t, errs)
	require.Len(t, gfile.Globals, 1)

	b := sema.New(dt)
	fn, berrs := b.BuildGlobalInit(file, gfile.Globals, dt.Global)
	require.Empty(t, berrs)

	ir.Link(fn)
	require.Len(t, fn.Instructions, 2)
	assert.Equal(t, ir.UCopy, fn.Instructions[0].Kind)
	assert.Equal(t, idx, fn.Instructions[0].Dst)
}
