package intrinsics_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yov-lang/yov/internal/hostos"
	"github.com/yov-lang/yov/internal/hostos/fake"
	"github.com/yov-lang/yov/internal/intrinsics"
	"github.com/yov-lang/yov/internal/runtime"
)

func newMachine(h hostos.Host) (*runtime.Machine, *intrinsics.Env) {
	m := runtime.NewMachine(0)
	env := &intrinsics.Env{Host: h, Version: intrinsics.Version{Major: 1, Minor: 2, Revision: 3}, CurrentDir: "/"}
	intrinsics.Register(m, env)
	return m, env
}

func call(t *testing.T, m *runtime.Machine, name string, args []runtime.Reference, nReturns int) []runtime.Reference {
	t.Helper()
	fn, ok := m.Intrinsics[name]
	require.True(t, ok, "intrinsic %q not registered", name)
	returns := make([]runtime.Reference, nReturns)
	err := fn(m, args, returns)
	require.NoError(t, err)
	return returns
}

func TestTypeOf(t *testing.T) {
	m, _ := newMachine(fake.New())
	returns := call(t, m, "typeof", []runtime.Reference{m.NewInt(5)}, 1)
	assert.Equal(t, "Int", m.Str(returns[0]))
}

func TestAssertAndFailed(t *testing.T) {
	m, _ := newMachine(fake.New())

	ok := call(t, m, "assert", []runtime.Reference{m.NewBool(true)}, 1)
	assert.False(t, m.AsResult(ok[0]).Failed)

	bad := call(t, m, "assert", []runtime.Reference{m.NewBool(false)}, 1)
	res := m.AsResult(bad[0])
	assert.True(t, res.Failed)
	assert.Equal(t, 1, res.Code)

	failed := call(t, m, "failed", []runtime.Reference{m.NewString("boom"), m.NewInt(42)}, 1)
	res2 := m.AsResult(failed[0])
	assert.True(t, res2.Failed)
	assert.Equal(t, "boom", res2.Message)
	assert.Equal(t, 42, res2.Code)
}

func TestSetCdRequiresExistingPath(t *testing.T) {
	h := fake.New()
	require.NoError(t, h.MakeDir("/proj"))
	m, env := newMachine(h)

	returns := call(t, m, "set_cd", []runtime.Reference{m.NewString("/proj")}, 1)
	assert.False(t, m.AsResult(returns[0]).Failed)
	assert.Equal(t, "/proj", env.CurrentDir)

	returns = call(t, m, "set_cd", []runtime.Reference{m.NewString("/nope")}, 1)
	assert.True(t, m.AsResult(returns[0]).Failed)
}

func TestEnvLookup(t *testing.T) {
	h := fake.New()
	h.Env["FOO"] = "bar"
	m, _ := newMachine(h)

	returns := call(t, m, "env", []runtime.Reference{m.NewString("FOO")}, 2)
	assert.Equal(t, "bar", m.Str(returns[0]))
	assert.False(t, m.AsResult(returns[1]).Failed)

	returns = call(t, m, "env", []runtime.Reference{m.NewString("MISSING")}, 2)
	assert.True(t, m.AsResult(returns[1]).Failed)
}

func TestWriteAndReadEntireFile(t *testing.T) {
	h := fake.New()
	m, _ := newMachine(h)

	wr := call(t, m, "write_entire_file", []runtime.Reference{m.NewString("/a.txt"), m.NewString("hello")}, 1)
	require.False(t, m.AsResult(wr[0]).Failed)

	rd := call(t, m, "read_entire_file", []runtime.Reference{m.NewString("/a.txt")}, 2)
	assert.Equal(t, "hello", m.Str(rd[0]))
	assert.False(t, m.AsResult(rd[1]).Failed)
}

func TestFileOpsUserAssertRejection(t *testing.T) {
	h := fake.New()
	h.ConfirmAnswer = false
	m := runtime.NewMachine(0)
	env := &intrinsics.Env{Host: h, CurrentDir: "/"}
	intrinsics.Register(m, env)
	m.Settings.UserAssert = true

	returns := call(t, m, "delete_file", []runtime.Reference{m.NewString("/a.txt")}, 1)
	res := m.AsResult(returns[0])
	assert.True(t, res.Failed)
	assert.Equal(t, 130, res.Code)
}

func TestExistsAndDirectories(t *testing.T) {
	h := fake.New()
	m, _ := newMachine(h)

	mk := call(t, m, "create_directory", []runtime.Reference{m.NewString("/sub")}, 1)
	require.False(t, m.AsResult(mk[0]).Failed)

	ex := call(t, m, "exists", []runtime.Reference{m.NewString("/sub")}, 1)
	assert.True(t, m.Bool(ex[0]))

	del := call(t, m, "delete_directory", []runtime.Reference{m.NewString("/sub")}, 1)
	assert.False(t, m.AsResult(del[0]).Failed)

	ex = call(t, m, "exists", []runtime.Reference{m.NewString("/sub")}, 1)
	assert.False(t, m.Bool(ex[0]))
}

func TestStrSplitAndCodepoint(t *testing.T) {
	m, _ := newMachine(fake.New())

	returns := call(t, m, "str_split", []runtime.Reference{m.NewString("a,b,c"), m.NewString(",")}, 1)
	arr, ok := returns[0].Parent.Payload.([]runtime.Reference)
	require.True(t, ok)
	require.Len(t, arr, 3)
	assert.Equal(t, "b", m.Str(arr[1]))

	cp := call(t, m, "str_get_codepoint", []runtime.Reference{m.NewString("abc"), m.NewInt(0)}, 2)
	assert.Equal(t, int64('a'), m.Int(cp[0]))
	assert.Equal(t, int64(1), m.Int(cp[1]))
}

func TestJsonRoute(t *testing.T) {
	m, _ := newMachine(fake.New())
	doc := `{"a": {"b": "value"}, "c": 5}`

	returns := call(t, m, "json_route", []runtime.Reference{m.NewString(doc), m.NewString("a/b")}, 2)
	assert.False(t, m.AsResult(returns[1]).Failed)
	assert.Equal(t, "value", m.Str(returns[0]))

	returns = call(t, m, "json_route", []runtime.Reference{m.NewString(doc), m.NewString("nope")}, 2)
	assert.True(t, m.AsResult(returns[1]).Failed)
}

func TestYovRequireVariants(t *testing.T) {
	m, _ := newMachine(fake.New())

	returns := call(t, m, "yov_require", []runtime.Reference{m.NewInt(1), m.NewInt(2)}, 1)
	assert.False(t, m.AsResult(returns[0]).Failed)

	returns = call(t, m, "yov_require_min", []runtime.Reference{m.NewInt(1), m.NewInt(0)}, 1)
	assert.False(t, m.AsResult(returns[0]).Failed)

	returns = call(t, m, "yov_require_max", []runtime.Reference{m.NewInt(1), m.NewInt(0)}, 1)
	assert.True(t, m.AsResult(returns[0]).Failed)
}

func TestCallSpawnsAndCapturesResult(t *testing.T) {
	h := fake.New()
	h.SpawnResults["echo hi"] = hostos.ProcessResult{Stdout: "hi\n", ExitCode: 0}
	m, _ := newMachine(h)

	returns := call(t, m, "call", []runtime.Reference{m.NewString("echo hi")}, 3)
	assert.Equal(t, "hi\n", m.Str(returns[0]))
	assert.Equal(t, int64(0), m.Int(returns[1]))
	assert.False(t, m.AsResult(returns[2]).Failed)
	require.Len(t, h.Spawns, 1)
	assert.Equal(t, "echo", h.Spawns[0].Cmd)
	assert.Equal(t, []string{"hi"}, h.Spawns[0].Args)
}

func TestFileGetInfo(t *testing.T) {
	h := fake.New()
	require.NoError(t, h.WriteFile("/proj/notes.txt", "hello"))
	m, _ := newMachine(h)

	returns := call(t, m, "file_get_info", []runtime.Reference{m.NewString("/proj/notes.txt")}, 2)
	assert.False(t, m.AsResult(returns[1]).Failed)
	fields := returns[0].Parent.Payload.([]runtime.Reference)
	assert.Equal(t, "notes.txt", m.Str(fields[0]))
	assert.Equal(t, int64(5), m.Int(fields[1]))
	assert.False(t, m.Bool(fields[2]))

	returns = call(t, m, "file_get_info", []runtime.Reference{m.NewString("/proj/missing.txt")}, 2)
	assert.True(t, m.AsResult(returns[1]).Failed)
}

func TestDirGetFilesInfo(t *testing.T) {
	h := fake.New()
	require.NoError(t, h.WriteFile("/proj/a.txt", "aa"))
	require.NoError(t, h.WriteFile("/proj/b.txt", "bbb"))
	m, _ := newMachine(h)

	returns := call(t, m, "dir_get_files_info", []runtime.Reference{m.NewString("/proj")}, 2)
	assert.False(t, m.AsResult(returns[1]).Failed)
	elems := returns[0].Parent.Payload.([]runtime.Reference)
	require.Len(t, elems, 2)
}

func TestConsoleSetCursor(t *testing.T) {
	m, _ := newMachine(fake.New())
	_ = call(t, m, "console_set_cursor", []runtime.Reference{m.NewInt(1), m.NewInt(2)}, 0)
}

func TestConsoleGetCursorTracksSetCursor(t *testing.T) {
	m, _ := newMachine(fake.New())

	zero := call(t, m, "console_get_cursor", nil, 2)
	assert.Equal(t, int64(0), m.Int(zero[0]))
	assert.Equal(t, int64(0), m.Int(zero[1]))

	_ = call(t, m, "console_set_cursor", []runtime.Reference{m.NewInt(3), m.NewInt(-1)}, 0)
	_ = call(t, m, "console_set_cursor", []runtime.Reference{m.NewInt(2), m.NewInt(5)}, 0)

	pos := call(t, m, "console_get_cursor", nil, 2)
	assert.Equal(t, int64(5), m.Int(pos[0]))
	assert.Equal(t, int64(4), m.Int(pos[1]))
}
