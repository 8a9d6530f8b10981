// Package fake is an in-memory hostos.Host double, grounded on the
// teacher's internal/utils/testutil fake-dependency idiom (there, a canned
// parser/analyzer harness; here, a canned filesystem/console/process
// double) so internal/runtime and internal/intrinsics tests never touch
// the real filesystem or spawn real processes.
package fake

import (
	"fmt"
	"path"
	"sort"
	"strings"

	"github.com/yov-lang/yov/internal/hostos"
)

// Printed is one captured Print call.
type Printed struct {
	Sev  hostos.Severity
	Line string
}

// Spawned is one captured Spawn call, for assertions in tests.
type Spawned struct {
	Cmd      string
	Args     []string
	Dir      string
	Redirect hostos.RedirectMode
}

// Host is an in-memory hostos.Host: files live in a map keyed by a
// slash-cleaned path, Confirm/Spawn answers are pre-scripted by the test.
type Host struct {
	files map[string]string
	dirs  map[string]bool

	Printed []Printed
	Spawns  []Spawned

	// ConfirmAnswer is returned by every Confirm call.
	ConfirmAnswer bool
	// SpawnResults supplies what every Spawn call returns (ExitCode/Stdout), keyed
	// by "cmd arg1 arg2...". Falls back to ExitCode 0, empty stdout.
	SpawnResults map[string]hostos.ProcessResult

	Cwd string
	Env map[string]string
}

// New returns an empty fake host rooted at cwd "/".
func New() *Host {
	return &Host{
		files:        map[string]string{},
		dirs:         map[string]bool{"/": true},
		SpawnResults: map[string]hostos.ProcessResult{},
		Cwd:          "/",
		Env:          map[string]string{},
	}
}

func clean(p string) string {
	if !strings.HasPrefix(p, "/") {
		p = "/" + p
	}
	return path.Clean(p)
}

func (h *Host) Print(sev hostos.Severity, line string) {
	h.Printed = append(h.Printed, Printed{Sev: sev, Line: line})
}

func (h *Host) Confirm(prompt string) (bool, error) { return h.ConfirmAnswer, nil }
func (h *Host) MoveCursor(dx, dy int)                {}
func (h *Host) ClearConsole()                        {}

func (h *Host) ReadFile(p string) (string, error) {
	content, ok := h.files[clean(p)]
	if !ok {
		return "", fmt.Errorf("fake: no such file %q", p)
	}
	return content, nil
}

func (h *Host) WriteFile(p, contents string) error {
	h.files[clean(p)] = contents
	h.ensureParents(clean(p))
	return nil
}

func (h *Host) ensureParents(p string) {
	for d := path.Dir(p); d != "/" && d != "."; d = path.Dir(d) {
		h.dirs[d] = true
	}
	h.dirs["/"] = true
}

func (h *Host) CopyFile(src, dst string) error {
	content, err := h.ReadFile(src)
	if err != nil {
		return err
	}
	return h.WriteFile(dst, content)
}

func (h *Host) MoveFile(src, dst string) error {
	if err := h.CopyFile(src, dst); err != nil {
		return err
	}
	return h.DeleteFile(src)
}

func (h *Host) DeleteFile(p string) error {
	key := clean(p)
	if _, ok := h.files[key]; !ok {
		return fmt.Errorf("fake: no such file %q", p)
	}
	delete(h.files, key)
	return nil
}

func (h *Host) MakeDir(p string) error {
	h.dirs[clean(p)] = true
	h.ensureParents(clean(p))
	return nil
}

func (h *Host) DeleteDir(p string) error {
	prefix := clean(p)
	delete(h.dirs, prefix)
	for f := range h.files {
		if strings.HasPrefix(f, prefix+"/") {
			delete(h.files, f)
		}
	}
	for d := range h.dirs {
		if strings.HasPrefix(d, prefix+"/") {
			delete(h.dirs, d)
		}
	}
	return nil
}

func (h *Host) CopyDir(src, dst string) error {
	srcPrefix := clean(src)
	dstPrefix := clean(dst)
	for f, content := range h.files {
		if strings.HasPrefix(f, srcPrefix+"/") {
			rel := strings.TrimPrefix(f, srcPrefix)
			h.files[dstPrefix+rel] = content
		}
	}
	h.dirs[dstPrefix] = true
	return nil
}

func (h *Host) MoveDir(src, dst string) error {
	if err := h.CopyDir(src, dst); err != nil {
		return err
	}
	return h.DeleteDir(src)
}

func (h *Host) ReadDir(p string) ([]hostos.DirEntry, error) {
	prefix := clean(p)
	if prefix != "/" {
		prefix += "/"
	}
	seen := map[string]bool{}
	var entries []hostos.DirEntry
	for f := range h.files {
		if strings.HasPrefix(f, prefix) {
			name := strings.SplitN(strings.TrimPrefix(f, prefix), "/", 2)[0]
			if !seen[name] {
				seen[name] = true
				entries = append(entries, hostos.DirEntry{Name: name, IsDir: strings.Contains(strings.TrimPrefix(f, prefix), "/")})
			}
		}
	}
	for d := range h.dirs {
		if strings.HasPrefix(d, prefix) && d != prefix {
			name := strings.SplitN(strings.TrimPrefix(d, prefix), "/", 2)[0]
			if !seen[name] {
				seen[name] = true
				entries = append(entries, hostos.DirEntry{Name: name, IsDir: true})
			}
		}
	}
	sort.Slice(entries, func(i, j int) bool { return entries[i].Name < entries[j].Name })
	return entries, nil
}

func (h *Host) FileStat(p string) (hostos.FileInfo, error) {
	key := clean(p)
	if content, ok := h.files[key]; ok {
		return hostos.FileInfo{Name: path.Base(key), Size: int64(len(content)), IsDir: false}, nil
	}
	if h.dirs[key] {
		return hostos.FileInfo{Name: path.Base(key), IsDir: true}, nil
	}
	return hostos.FileInfo{}, fmt.Errorf("fake: no such path %q", p)
}

func (h *Host) Absolute(p string) (string, error) {
	if strings.HasPrefix(p, "/") {
		return path.Clean(p), nil
	}
	return path.Join(h.Cwd, p), nil
}

func (h *Host) IsDir(p string) bool { return h.dirs[clean(p)] }

func (h *Host) Exists(p string) bool {
	key := clean(p)
	if _, ok := h.files[key]; ok {
		return true
	}
	return h.dirs[key]
}

func (h *Host) WorkingDir() (string, error)     { return h.Cwd, nil }
func (h *Host) ExecutablePath() (string, error) { return "/yov", nil }

func (h *Host) Spawn(cmd string, args []string, dir string, redirect hostos.RedirectMode) (hostos.ProcessResult, error) {
	h.Spawns = append(h.Spawns, Spawned{Cmd: cmd, Args: args, Dir: dir, Redirect: redirect})
	key := strings.TrimSpace(cmd + " " + strings.Join(args, " "))
	if res, ok := h.SpawnResults[key]; ok {
		return res, nil
	}
	return hostos.ProcessResult{}, nil
}

func (h *Host) Sleep(millis int) {}

func (h *Host) Getenv(name string) (string, bool) {
	v, ok := h.Env[name]
	return v, ok
}
