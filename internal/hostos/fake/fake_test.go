package fake

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yov-lang/yov/internal/hostos"
)

func TestWriteReadFile(t *testing.T) {
	h := New()
	require.NoError(t, h.WriteFile("/scripts/a.yov", "hello"))

	got, err := h.ReadFile("scripts/a.yov")
	require.NoError(t, err)
	assert.Equal(t, "hello", got)
	assert.True(t, h.IsDir("/scripts"))
}

func TestCopyMoveDeleteFile(t *testing.T) {
	h := New()
	require.NoError(t, h.WriteFile("/a.txt", "x"))

	require.NoError(t, h.CopyFile("/a.txt", "/b.txt"))
	got, err := h.ReadFile("/b.txt")
	require.NoError(t, err)
	assert.Equal(t, "x", got)

	require.NoError(t, h.MoveFile("/b.txt", "/c.txt"))
	assert.False(t, h.Exists("/b.txt"))
	assert.True(t, h.Exists("/c.txt"))

	require.NoError(t, h.DeleteFile("/c.txt"))
	assert.False(t, h.Exists("/c.txt"))

	err = h.DeleteFile("/missing.txt")
	assert.Error(t, err)
}

func TestReadDirListsFilesAndSubdirs(t *testing.T) {
	h := New()
	require.NoError(t, h.WriteFile("/proj/main.yov", "1"))
	require.NoError(t, h.WriteFile("/proj/lib/util.yov", "2"))

	entries, err := h.ReadDir("/proj")
	require.NoError(t, err)
	names := map[string]bool{}
	for _, e := range entries {
		names[e.Name] = e.IsDir
	}
	assert.True(t, names["main.yov"] == false)
	assert.True(t, names["lib"] == true)
}

func TestConfirmReturnsScriptedAnswer(t *testing.T) {
	h := New()
	h.ConfirmAnswer = true
	ok, err := h.Confirm("proceed?")
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestSpawnRecordsCallAndReturnsScriptedResult(t *testing.T) {
	h := New()
	h.SpawnResults["git status"] = hostos.ProcessResult{Stdout: "clean", ExitCode: 0}

	res, err := h.Spawn("git", []string{"status"}, "/proj", hostos.RedirectScript)
	require.NoError(t, err)
	assert.Equal(t, "clean", res.Stdout)
	require.Len(t, h.Spawns, 1)
	assert.Equal(t, "git", h.Spawns[0].Cmd)
}

func TestDeleteDirRemovesContents(t *testing.T) {
	h := New()
	require.NoError(t, h.WriteFile("/proj/a.yov", "1"))
	require.NoError(t, h.DeleteDir("/proj"))
	assert.False(t, h.Exists("/proj/a.yov"))
	assert.False(t, h.IsDir("/proj"))
}

func TestGetenv(t *testing.T) {
	h := New()
	h.Env["YOV_HOME"] = "/opt/yov"
	v, ok := h.Getenv("YOV_HOME")
	assert.True(t, ok)
	assert.Equal(t, "/opt/yov", v)

	_, ok = h.Getenv("MISSING")
	assert.False(t, ok)
}

func TestFileStat(t *testing.T) {
	h := New()
	require.NoError(t, h.WriteFile("/proj/a.txt", "hello"))
	require.NoError(t, h.MakeDir("/proj/sub"))

	info, err := h.FileStat("/proj/a.txt")
	require.NoError(t, err)
	assert.Equal(t, "a.txt", info.Name)
	assert.EqualValues(t, 5, info.Size)
	assert.False(t, info.IsDir)

	dirInfo, err := h.FileStat("/proj/sub")
	require.NoError(t, err)
	assert.True(t, dirInfo.IsDir)

	_, err = h.FileStat("/proj/missing")
	assert.Error(t, err)
}
