package compiler_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yov-lang/yov/internal/compiler"
)

func writeFile(t *testing.T, dir, name, src string) string {
	t.Helper()
	p := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(p, []byte(src), 0o644))
	return p
}

func TestCompileSingleFileProgram(t *testing.T) {
	dir := t.TempDir()
	entry := writeFile(t, dir, "main.yov", `
limit :: 10;

main :: func() {
	println("hi");
}
`)

	prog, diags, err := compiler.Compile(entry, 2)
	require.NoError(t, err)
	require.Empty(t, diags)
	require.NotNil(t, prog)

	assert.NotNil(t, prog.Entry)
	assert.Same(t, prog.IR.Functions[compiler.EntryFuncName], prog.Entry)
	assert.True(t, prog.Defs.AllReady())
	assert.NotEmpty(t, prog.IR.GlobalInit.Instructions)
}

func TestCompileTwoFileImport(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "helper.yov", `
double :: func(x: Int) (r: Int) {
	return x * 2;
}
`)
	entry := writeFile(t, dir, "main.yov", `
import "helper.yov";

main :: func() {
	r :: double(21);
	println(typeof(r));
}
`)

	prog, diags, err := compiler.Compile(entry, 2)
	require.NoError(t, err)
	require.Empty(t, diags)
	require.NotNil(t, prog)

	_, ok := prog.IR.Functions["double"]
	assert.True(t, ok, "double from the imported script should be built into the program")
	assert.NotNil(t, prog.Entry)
}

func TestCompileStructEnumGlobalProgram(t *testing.T) {
	dir := t.TempDir()
	entry := writeFile(t, dir, "main.yov", `
Point :: struct {
	x: Int,
	y: Int,
}

Color :: enum {
	Red,
	Green,
	Blue = 5,
}

origin :: 0;

main :: func() {
	p: Point;
	p.x = 1;
	p.y = 2;
	println(typeof(p.x));
}
`)

	prog, diags, err := compiler.Compile(entry, 2)
	require.NoError(t, err)
	require.Empty(t, diags)
	require.NotNil(t, prog)

	_, ok := prog.Defs.Struct("Point")
	assert.True(t, ok)
	ed, ok := prog.Defs.Enum("Color")
	require.True(t, ok)
	assert.Len(t, ed.Def.Members, 3)
	_, ok = prog.Defs.Global("origin")
	assert.True(t, ok)
}

func TestCompileForwardReferencingFunctions(t *testing.T) {
	dir := t.TempDir()
	entry := writeFile(t, dir, "main.yov", `
main :: func() (r: Int) {
	return isEven(4);
}

isEven :: func(n: Int) (r: Int) {
	if (n == 0) { return 1; }
	return isOdd(n - 1);
}

isOdd :: func(n: Int) (r: Int) {
	if (n == 0) { return 0; }
	return isEven(n - 1);
}
`)

	prog, diags, err := compiler.Compile(entry, 4)
	require.NoError(t, err)
	require.Empty(t, diags)
	require.NotNil(t, prog)

	for _, name := range []string{"main", "isEven", "isOdd"} {
		fn, ok := prog.IR.Functions[name]
		require.True(t, ok, "missing function %q", name)
		assert.NotEmpty(t, fn.Instructions, "function %q should have a built body", name)
	}
}

func TestCompileUndefinedCallDiagnosticSurfaces(t *testing.T) {
	dir := t.TempDir()
	entry := writeFile(t, dir, "main.yov", `
main :: func() {
	does_not_exist();
}
`)

	prog, diags, err := compiler.Compile(entry, 2)
	require.NoError(t, err)
	assert.Nil(t, prog)
	require.NotEmpty(t, diags)
}

func TestCompileMissingMainDiagnostic(t *testing.T) {
	dir := t.TempDir()
	entry := writeFile(t, dir, "main.yov", `
helper :: func() {}
`)

	prog, diags, err := compiler.Compile(entry, 2)
	require.NoError(t, err)
	assert.Nil(t, prog)
	require.Len(t, diags, 1)
	assert.Contains(t, diags[0].Error(), "main")
}
