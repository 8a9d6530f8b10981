package ir_test

import (
	"bytes"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yov-lang/yov/internal/ir"
	"github.com/yov-lang/yov/internal/types"
)

// buildIfElse builds: if (p0) return 1; else return 0; using a forward
// jump to a placed anchor, mirroring how sema lowers spec.md's IfStmt.
func buildIfElse(t *testing.T) *ir.Function {
	t.Helper()
	f := ir.NewFunction("f", "test.yov")
	p := f.AddParameter("p", types.Bool())
	ret := f.AddReturn(types.Int())

	elseLabel := ir.NewEmpty()
	f.Emit(&ir.Unit{
		Kind:    ir.UJump,
		Cond:    -1,
		JumpSrc: ir.Reg(ir.VRegister, p, types.Bool()),
		Target:  elseLabel,
	})
	f.Emit(&ir.Unit{Kind: ir.UCopy, Dst: ret, Src: ir.LitInt(1)})
	f.Emit(&ir.Unit{Kind: ir.UReturn})
	f.Place(elseLabel)
	f.Emit(&ir.Unit{Kind: ir.UCopy, Dst: ret, Src: ir.LitInt(0)})
	f.Emit(&ir.Unit{Kind: ir.UReturn})

	ir.Link(f)
	return f
}

func TestLinkDropsEmptyAndResolvesOffset(t *testing.T) {
	f := buildIfElse(t)
	require.Len(t, f.Instructions, 5)
	assert.Equal(t, ir.UJump, f.Instructions[0].Kind)
	// jump is instruction 0; else-branch copy is instruction 3 -> offset 2
	assert.Equal(t, 2, f.Instructions[0].Offset)
	assert.True(t, ir.JumpOffsetsInBounds(f))
}

func TestPrintDoesNotError(t *testing.T) {
	f := buildIfElse(t)
	var buf bytes.Buffer
	require.NoError(t, ir.Print(&buf, f))
	assert.Contains(t, buf.String(), "jump")
	assert.Contains(t, buf.String(), "return")
}

func TestAddLocalUsesTempNaming(t *testing.T) {
	f := ir.NewFunction("f", "test.yov")
	idx := f.AddLocal(types.Int())
	assert.Equal(t, "%t0", f.Registers[idx].Name)
	idx2 := f.AddLocal(types.Int())
	assert.Equal(t, "%t1", f.Registers[idx2].Name)
}

// TestNewFileReservesAmbientGlobalsInFixedOrder pins the exact
// {Kind,Name,Type} triple ir.NewFile reserves at indices 0..3 (spec.md
// §6.3's yov/os/context/calls), since every later global a user script
// declares is offset by this fixed prefix. go-cmp's diff is what makes a
// drift in this order legible at a glance instead of a flat equality
// failure.
func TestNewFileReservesAmbientGlobalsInFixedOrder(t *testing.T) {
	f := ir.NewFile()
	want := []ir.Register{
		{Kind: ir.RegGlobal, Name: "yov", Type: types.Any},
		{Kind: ir.RegGlobal, Name: "os", Type: types.Any},
		{Kind: ir.RegGlobal, Name: "context", Type: types.Any},
		{Kind: ir.RegGlobal, Name: "calls", Type: types.Any},
	}
	if diff := cmp.Diff(want, f.Globals, cmp.Comparer(func(a, b types.VType) bool { return a.Equals(b, nil) })); diff != "" {
		t.Errorf("ambient globals mismatch (-want +got):\n%s", diff)
	}
}
