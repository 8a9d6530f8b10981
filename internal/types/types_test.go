package types_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/yov-lang/yov/internal/types"
)

func TestEqualityIsEquivalenceRelation(t *testing.T) {
	table := types.NewTable()
	def := &types.StructDef{Name: "P", Members: []types.Member{{Name: "x", Type: types.Int()}}, Ready: true}
	p := table.AddStruct(def)

	vals := []types.VType{types.Nil, types.Void, types.Any, types.Int(), types.Bool(), types.String(), p,
		types.FromDimension(types.Int(), 1), types.FromReference(types.Int())}

	for _, a := range vals {
		assert.True(t, a.Equals(a, table), "reflexive: %v", a)
	}
	for _, a := range vals {
		for _, b := range vals {
			assert.Equal(t, a.Equals(b, table), b.Equals(a, table), "symmetric: %v vs %v", a, b)
		}
	}
}

func TestArrayDimensionRoundTrip(t *testing.T) {
	table := types.NewTable()
	elem := types.Int()
	arr := types.FromDimension(elem, 2)
	assert.Equal(t, uint32(2), arr.Dims)

	next := arr.Next(table)
	assert.Equal(t, uint32(1), next.Dims)

	next = next.Next(table)
	assert.Equal(t, types.KindPrimitive, next.Kind)
}

func TestStructPropertyAndChild(t *testing.T) {
	table := types.NewTable()
	def := &types.StructDef{
		Name:    "P",
		Members: []types.Member{{Name: "x", Type: types.Int()}, {Name: "y", Type: types.Int()}},
		Ready:   true,
	}
	p := table.AddStruct(def)

	child, ok := p.ChildAt(1, true, table)
	assert.True(t, ok)
	assert.Equal(t, types.Int(), child)

	_, _, ok = p.Property("x")
	assert.False(t, ok, "structs expose members, not properties")
}

func TestResultOfBinaryOp(t *testing.T) {
	table := types.NewTable()

	r, ok := types.Int().ResultOfBinaryOp(types.Int(), types.OpAdd, table)
	assert.True(t, ok)
	assert.Equal(t, types.Int(), r)

	r, ok = types.String().ResultOfBinaryOp(types.Int(), types.OpDiv, table)
	assert.True(t, ok, "path append: string / int")
	assert.Equal(t, types.String(), r)

	_, ok = types.Bool().ResultOfBinaryOp(types.Int(), types.OpAdd, table)
	assert.False(t, ok)
}

func TestResultOfSignOp(t *testing.T) {
	r, ok := types.Int().ResultOfSignOp(types.SignNeg)
	assert.True(t, ok)
	assert.Equal(t, types.Int(), r)

	_, ok = types.Int().ResultOfSignOp(types.SignNot)
	assert.False(t, ok)
}
