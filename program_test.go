package yov_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yov-lang/yov"
	"github.com/yov-lang/yov/internal/hostos/fake"
)

func writeScript(t *testing.T, src string) string {
	t.Helper()
	dir := t.TempDir()
	p := filepath.Join(dir, "main.yov")
	require.NoError(t, os.WriteFile(p, []byte(src), 0o644))
	return p
}

func stdout(h *fake.Host) string {
	var sb strings.Builder
	for _, p := range h.Printed {
		sb.WriteString(p.Line)
	}
	return sb.String()
}

func TestProgramArithmeticAndIntPrinting(t *testing.T) {
	path := writeScript(t, `main :: func() { println(2 + 3 * 4); }`)
	host := fake.New()

	prog, err := yov.Compile(path, yov.Options{Host: host})
	require.NoError(t, err)
	require.False(t, prog.Reporter.HasErrors())

	code := prog.Run()
	assert.Equal(t, 0, code)
	assert.Equal(t, "14\n", stdout(host))
}

func TestProgramStructAssignmentAndMemberAccess(t *testing.T) {
	path := writeScript(t, `
P :: struct { x: Int; y: Int; }
main :: func() {
	p: P;
	p.x = 3;
	p.y = 4;
	println(p.x + p.y);
}
`)
	host := fake.New()

	prog, err := yov.Compile(path, yov.Options{Host: host})
	require.NoError(t, err)
	require.False(t, prog.Reporter.HasErrors())

	code := prog.Run()
	assert.Equal(t, 0, code)
	assert.Equal(t, "7\n", stdout(host))
}

func TestProgramAutoResultEvalAbortsOnFailedResult(t *testing.T) {
	path := writeScript(t, `
main :: func() {
	delete_file("path/that/does/not/exist");
	println("unreachable");
}
`)
	host := fake.New()

	prog, err := yov.Compile(path, yov.Options{Host: host})
	require.NoError(t, err)
	require.False(t, prog.Reporter.HasErrors())

	code := prog.Run()
	assert.NotEqual(t, 0, code)
	assert.NotContains(t, stdout(host), "unreachable")
}

func TestProgramExplicitResultHandlingAvoidsAbort(t *testing.T) {
	path := writeScript(t, `
main :: func() {
	r := delete_file("missing");
	if (r.failed) println("ok");
}
`)
	host := fake.New()

	prog, err := yov.Compile(path, yov.Options{Host: host})
	require.NoError(t, err)
	require.False(t, prog.Reporter.HasErrors())

	code := prog.Run()
	assert.Equal(t, 0, code)
	assert.Equal(t, "ok\n", stdout(host))
}

func TestProgramStringInterpolationAndCompileTimeFolding(t *testing.T) {
	path := writeScript(t, `main :: func() { n :: 21; println("n*2 = {n * 2}"); }`)
	host := fake.New()

	prog, err := yov.Compile(path, yov.Options{Host: host})
	require.NoError(t, err)
	require.False(t, prog.Reporter.HasErrors())

	code := prog.Run()
	assert.Equal(t, 0, code)
	assert.Equal(t, "n*2 = 42\n", stdout(host))
}

func TestProgramForEachWithIndexAndArrayConcatenation(t *testing.T) {
	path := writeScript(t, `
main :: func() {
	a := {1,2,3} + 4;
	for (v, i : a) println("{i}:{v}");
}
`)
	host := fake.New()

	prog, err := yov.Compile(path, yov.Options{Host: host})
	require.NoError(t, err)
	require.False(t, prog.Reporter.HasErrors())

	code := prog.Run()
	assert.Equal(t, 0, code)
	assert.Equal(t, "0:1\n1:2\n2:3\n3:4\n", stdout(host))
}

func TestProgramAnalyzeSkipsExecution(t *testing.T) {
	path := writeScript(t, `main :: func() { println("should not run"); }`)
	host := fake.New()

	prog, err := yov.Compile(path, yov.Options{Host: host, Analyze: true})
	require.NoError(t, err)
	require.False(t, prog.Reporter.HasErrors())

	code := prog.Run()
	assert.Equal(t, 0, code)
	assert.Empty(t, stdout(host))
}

func TestProgramMissingMainReportsDiagnosticAndSkipsExecution(t *testing.T) {
	path := writeScript(t, `helper :: func() {}`)
	host := fake.New()

	prog, err := yov.Compile(path, yov.Options{Host: host})
	require.NoError(t, err)
	require.True(t, prog.Reporter.HasErrors())

	code := prog.Run()
	assert.NotEqual(t, 0, code)
	assert.Empty(t, stdout(host))
}
