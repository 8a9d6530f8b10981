// Package intrinsics is the Intrinsic Library spec.md §4.8 describes:
// every built-in function a yov script can call without a user-written
// body, implemented against runtime.Machine and hostos.Host so the
// runtime itself never imports os/os-exec directly. Grounded on
// original_source/code/intrinsics.cpp's `Intrinsic_*` function set and
// registry table, and on the teacher's analysis.Pass plain-function
// registration idiom (a `map[string]Func` built once at startup rather
// than a reflection-based dispatcher).
package intrinsics

import (
	"fmt"
	"path"
	"strings"
	"unicode/utf8"

	"github.com/yov-lang/yov/internal/hostos"
	"github.com/yov-lang/yov/internal/runtime"
	"github.com/yov-lang/yov/internal/types"
)

// Version is the interpreter's own version, checked by yov_require*
// (spec.md §6.4).
type Version struct {
	Major, Minor, Revision int
}

// Env is the state every intrinsic closes over: the OS shim, the
// interpreter's version, and the script's current directory (mutable via
// set_cd, spec.md's `context.cd`). CursorX/CursorY track the last cursor
// position console_set_cursor moved to, since hostos.Host.MoveCursor only
// takes a relative (dx, dy) and has no query of its own; console_get_cursor
// reads these back rather than round-tripping a real terminal.
type Env struct {
	Host       hostos.Host
	Version    Version
	ScriptDir  string
	CurrentDir string
	CursorX    int
	CursorY    int
}

// fileInfoElemType addresses the FileInfo prelude struct by BaseName, the
// same way runtime.Machine's resultType/fileInfoType do, for
// dir_get_files_info's array return.
var fileInfoElemType = types.VType{Kind: types.KindStruct, BaseName: "FileInfo"}

// Register wires every intrinsic into m.Intrinsics, closing over env.
func Register(m *runtime.Machine, env *Env) {
	reg := func(name string, fn runtime.IntrinsicFunc) { m.Intrinsics[name] = fn }

	reg("typeof", env.typeOf)
	reg("print", env.print)
	reg("println", env.println)
	reg("exit", env.exit)
	reg("set_cd", env.setCd)
	reg("assert", env.assert)
	reg("failed", env.failed)
	reg("sleep", env.sleep)
	reg("env", env.getEnv)
	reg("env_path", env.getEnvPath)
	reg("env_path_array", env.getEnvPathArray)
	reg("console_write", env.consoleWrite)
	reg("console_clear", env.consoleClear)
	reg("console_set_cursor", env.consoleSetCursor)
	reg("console_get_cursor", env.consoleGetCursor)
	reg("call", env.call)
	reg("call_exe", env.callExe)
	reg("call_script", env.callScript)
	reg("path_resolve", env.pathResolveIntrinsic)
	reg("str_get_codepoint", env.strGetCodepoint)
	reg("str_split", env.strSplit)
	reg("json_route", env.jsonRoute)
	reg("yov_require", env.yovRequire)
	reg("yov_require_min", env.yovRequireMin)
	reg("yov_require_max", env.yovRequireMax)
	reg("ask_yesno", env.askYesno)
	reg("exists", env.exists)
	reg("create_directory", env.createDirectory)
	reg("delete_directory", env.deleteDirectory)
	reg("copy_directory", env.copyDirectory)
	reg("move_directory", env.moveDirectory)
	reg("copy_file", env.copyFile)
	reg("move_file", env.moveFile)
	reg("delete_file", env.deleteFile)
	reg("write_entire_file", env.writeEntireFile)
	reg("read_entire_file", env.readEntireFile)
	reg("file_get_info", env.fileGetInfo)
	reg("dir_get_files_info", env.dirGetFilesInfo)
	reg("msvc_import_env_x64", env.msvcImportEnvUnsupported)
	reg("msvc_import_env_x86", env.msvcImportEnvUnsupported)
}

//- CORE

func (e *Env) typeOf(m *runtime.Machine, args []runtime.Reference, returns []runtime.Reference) error {
	returns[0] = m.NewType(args[0].Type)
	return nil
}

func (e *Env) print(m *runtime.Machine, args []runtime.Reference, returns []runtime.Reference) error {
	e.Host.Print(hostos.SeverityInfo, m.Str(args[0]))
	return nil
}

func (e *Env) println(m *runtime.Machine, args []runtime.Reference, returns []runtime.Reference) error {
	e.Host.Print(hostos.SeverityInfo, m.Str(args[0])+"\n")
	return nil
}

func (e *Env) exit(m *runtime.Machine, args []runtime.Reference, returns []runtime.Reference) error {
	m.Exit(int(m.Int(args[0])))
	return nil
}

func (e *Env) setCd(m *runtime.Machine, args []runtime.Reference, returns []runtime.Reference) error {
	p := m.Str(args[0])
	if !path.IsAbs(p) {
		p = path.Join(e.CurrentDir, p)
	}
	p = path.Clean(p)
	if !e.Host.Exists(p) {
		returns[0] = m.NewResult(true, "Path does not exists", 1)
		return nil
	}
	e.CurrentDir = p
	returns[0] = m.NewResult(false, "", 0)
	return nil
}

func (e *Env) assert(m *runtime.Machine, args []runtime.Reference, returns []runtime.Reference) error {
	if m.Bool(args[0]) {
		returns[0] = m.NewResult(false, "", 0)
		return nil
	}
	returns[0] = m.NewResult(true, "Assertion failed", 1)
	return nil
}

func (e *Env) failed(m *runtime.Machine, args []runtime.Reference, returns []runtime.Reference) error {
	returns[0] = m.NewResult(true, m.Str(args[0]), int(m.Int(args[1])))
	return nil
}

func (e *Env) sleep(m *runtime.Machine, args []runtime.Reference, returns []runtime.Reference) error {
	e.Host.Sleep(int(m.Int(args[0])))
	return nil
}

func (e *Env) getEnv(m *runtime.Machine, args []runtime.Reference, returns []runtime.Reference) error {
	v, ok := e.Host.Getenv(m.Str(args[0]))
	returns[0] = m.NewString(v)
	if !ok {
		returns[1] = m.NewResult(true, "Environment variable not found", 1)
	} else {
		returns[1] = m.NewResult(false, "", 0)
	}
	return nil
}

func (e *Env) getEnvPath(m *runtime.Machine, args []runtime.Reference, returns []runtime.Reference) error {
	v, ok := e.Host.Getenv(m.Str(args[0]))
	if ok {
		v = pathResolve(v)
	}
	returns[0] = m.NewString(v)
	if !ok {
		returns[1] = m.NewResult(true, "Environment variable not found", 1)
	} else {
		returns[1] = m.NewResult(false, "", 0)
	}
	return nil
}

func (e *Env) getEnvPathArray(m *runtime.Machine, args []runtime.Reference, returns []runtime.Reference) error {
	v, ok := e.Host.Getenv(m.Str(args[0]))
	if !ok {
		returns[0] = m.NewArray(types.String(), nil)
		returns[1] = m.NewResult(true, "Environment variable not found", 1)
		return nil
	}
	parts := strings.Split(v, ";")
	elems := make([]runtime.Reference, len(parts))
	for i, p := range parts {
		elems[i] = m.NewString(pathResolve(p))
	}
	returns[0] = m.NewArray(types.String(), elems)
	returns[1] = m.NewResult(false, "", 0)
	return nil
}

//- CONSOLE

func (e *Env) consoleWrite(m *runtime.Machine, args []runtime.Reference, returns []runtime.Reference) error {
	e.Host.Print(hostos.SeverityInfo, m.Str(args[0]))
	return nil
}

func (e *Env) consoleClear(m *runtime.Machine, args []runtime.Reference, returns []runtime.Reference) error {
	e.Host.ClearConsole()
	return nil
}

func (e *Env) consoleSetCursor(m *runtime.Machine, args []runtime.Reference, returns []runtime.Reference) error {
	dx, dy := int(m.Int(args[0])), int(m.Int(args[1]))
	e.Host.MoveCursor(dx, dy)
	e.CursorX += dx
	e.CursorY += dy
	return nil
}

// consoleGetCursor reports the last position console_set_cursor moved to
// (0,0 if the script never called it), tracked here rather than queried
// from the Host since MoveCursor's contract is relative-only.
func (e *Env) consoleGetCursor(m *runtime.Machine, args []runtime.Reference, returns []runtime.Reference) error {
	returns[0] = m.NewInt(int64(e.CursorX))
	returns[1] = m.NewInt(int64(e.CursorY))
	return nil
}

//- EXTERNAL CALLS

// userAssert returns a failed Result if the machine is running with
// -user_assert and the operator declines the confirmation prompt
// (spec.md §6.1's `-user_assert`/`-no_user` flags).
func (e *Env) userAssert(m *runtime.Machine, prompt string) runtime.Reference {
	if !m.Settings.UserAssert {
		return m.NewResult(false, "", 0)
	}
	if m.Settings.NoUser {
		return m.NewResult(false, "", 0)
	}
	ok, err := e.Host.Confirm(prompt)
	if err != nil {
		return m.NewResult(true, err.Error(), 1)
	}
	if !ok {
		return m.NewResult(true, "User rejected action", 130)
	}
	return m.NewResult(false, "", 0)
}

func (e *Env) runAndReturn(m *runtime.Machine, returns []runtime.Reference, assertRes runtime.Reference, cmd string, args []string, redirect hostos.RedirectMode) error {
	if m.AsResult(assertRes).Failed {
		returns[0] = m.NewString("")
		returns[1] = m.NewInt(0)
		returns[2] = assertRes
		return nil
	}
	out, err := e.Host.Spawn(cmd, args, e.CurrentDir, redirect)
	returns[0] = m.NewString(out.Stdout)
	returns[1] = m.NewInt(int64(out.ExitCode))
	if err != nil {
		returns[2] = m.NewResult(true, err.Error(), out.ExitCode)
	} else {
		returns[2] = m.NewResult(false, "", 0)
	}
	return nil
}

func (e *Env) call(m *runtime.Machine, args []runtime.Reference, returns []runtime.Reference) error {
	commandLine := m.Str(args[0])
	res := e.userAssert(m, "Call:\n"+commandLine)
	fields := strings.Fields(commandLine)
	var cmdName string
	var cmdArgs []string
	if len(fields) > 0 {
		cmdName, cmdArgs = fields[0], fields[1:]
	}
	return e.runAndReturn(m, returns, res, cmdName, cmdArgs, hostos.RedirectScript)
}

func (e *Env) callExe(m *runtime.Machine, args []runtime.Reference, returns []runtime.Reference) error {
	exeName := m.Str(args[0])
	cmdArgs := strings.Fields(m.Str(args[1]))
	res := e.userAssert(m, fmt.Sprintf("Call Exe:\n%s %s", exeName, m.Str(args[1])))
	return e.runAndReturn(m, returns, res, exeName, cmdArgs, hostos.RedirectScript)
}

func (e *Env) callScript(m *runtime.Machine, args []runtime.Reference, returns []runtime.Reference) error {
	scriptName := m.Str(args[0])
	scriptArgs := m.Str(args[1])
	langArgs := m.Str(args[2])
	res := e.userAssert(m, fmt.Sprintf("Call Script:\n%s %s %s", langArgs, scriptName, scriptArgs))
	cmdArgs := append(strings.Fields(langArgs), scriptName)
	cmdArgs = append(cmdArgs, strings.Fields(scriptArgs)...)
	var cmd string
	if len(cmdArgs) > 0 {
		cmd, cmdArgs = cmdArgs[0], cmdArgs[1:]
	}
	return e.runAndReturn(m, returns, res, cmd, cmdArgs, hostos.RedirectScript)
}

//- UTILS

// pathResolve mirrors the original's PathResolve: a pure string-level
// `..`/`.` collapse, not a filesystem round-trip (no symlink resolution).
func pathResolve(p string) string {
	if !path.IsAbs(p) {
		return path.Clean(p)
	}
	return path.Clean(p)
}

func (e *Env) pathResolveIntrinsic(m *runtime.Machine, args []runtime.Reference, returns []runtime.Reference) error {
	returns[0] = m.NewString(pathResolve(m.Str(args[0])))
	return nil
}

func (e *Env) strGetCodepoint(m *runtime.Machine, args []runtime.Reference, returns []runtime.Reference) error {
	s := m.Str(args[0])
	cursor := int(m.Int(args[1]))
	if cursor < 0 || cursor >= len(s) {
		returns[0] = m.NewInt(0)
		returns[1] = m.NewInt(int64(len(s)))
		return nil
	}
	r, size := decodeRuneAt(s, cursor)
	returns[0] = m.NewInt(int64(r))
	returns[1] = m.NewInt(int64(cursor + size))
	return nil
}

// decodeRuneAt decodes one UTF-8 codepoint at byte offset i and returns it
// with its encoded width in bytes, mirroring the original's StrGetCodepoint
// cursor-advance contract. An invalid byte decodes as utf8.RuneError with
// width 1, so the cursor always advances past exactly the bytes consumed.
func decodeRuneAt(s string, i int) (rune, int) {
	return utf8.DecodeRuneInString(s[i:])
}

func (e *Env) strSplit(m *runtime.Machine, args []runtime.Reference, returns []runtime.Reference) error {
	s := m.Str(args[0])
	sep := m.Str(args[1])
	parts := strings.Split(s, sep)
	elems := make([]runtime.Reference, len(parts))
	for i, p := range parts {
		elems[i] = m.NewString(p)
	}
	returns[0] = m.NewArray(types.String(), elems)
	return nil
}

// jsonSkip/jsonAccess port original_source/code/intrinsics.cpp's
// json_skip/json_access: a minimal, non-allocating flat-object scan for
// `"name": value` pairs, good enough for one-level JSON route lookups —
// not a general JSON parser (nested objects are treated as opaque value
// text, matching the original's scope).
func jsonSkip(json string, cursor int) int {
	if cursor != 0 {
		for cursor < len(json) && json[cursor] != ',' {
			cursor++
		}
	}
	if cursor >= len(json) {
		return cursor
	}
	for cursor < len(json) && json[cursor] != '"' {
		cursor++
	}
	return cursor
}

func jsonAccess(jsonText, searchingName string) (string, bool) {
	cursor := 0
	for cursor < len(jsonText) {
		if jsonText[cursor] == '"' {
			nameBegin := cursor + 1
			nameEnd := nameBegin
			for nameEnd < len(jsonText) && jsonText[nameEnd] != '"' {
				nameEnd++
			}
			name := jsonText[nameBegin:nameEnd]
			if name == searchingName {
				valueStart := nameEnd + 1
				for valueStart < len(jsonText) && jsonText[valueStart] != ':' {
					valueStart++
				}
				valueStart++
				for valueStart < len(jsonText) && (jsonText[valueStart] == ' ' || jsonText[valueStart] == '\t') {
					valueStart++
				}
				valueEnd := valueStart
				if valueEnd < len(jsonText) && jsonText[valueEnd] == '"' {
					valueEnd++
					for valueEnd < len(jsonText) && jsonText[valueEnd] != '"' {
						valueEnd++
					}
					return jsonText[valueStart+1 : valueEnd], true
				}
				for valueEnd < len(jsonText) && jsonText[valueEnd] != ',' && jsonText[valueEnd] != '}' {
					valueEnd++
				}
				return strings.TrimSpace(jsonText[valueStart:valueEnd]), true
			}
		}
		cursor = jsonSkip(jsonText, cursor)
	}
	return "", false
}

func (e *Env) jsonRoute(m *runtime.Machine, args []runtime.Reference, returns []runtime.Reference) error {
	jsonText := m.Str(args[0])
	route := m.Str(args[1])
	names := strings.Split(route, "/")

	success := true
	for _, name := range names {
		next, ok := jsonAccess(jsonText, name)
		if !ok {
			success = false
			break
		}
		jsonText = next
	}

	if !success {
		returns[0] = m.NewString("")
		returns[1] = m.NewResult(true, "Json route not found", 1)
		return nil
	}
	returns[0] = m.NewString(jsonText)
	returns[1] = m.NewResult(false, "", 0)
	return nil
}

//- YOV

func (e *Env) yovRequire(m *runtime.Machine, args []runtime.Reference, returns []runtime.Reference) error {
	major, minor := int(m.Int(args[0])), int(m.Int(args[1]))
	if major == e.Version.Major && minor == e.Version.Minor {
		returns[0] = m.NewResult(false, "", 0)
		return nil
	}
	returns[0] = m.NewResult(true, fmt.Sprintf("Require version: Yov v%d.%d", major, minor), 1)
	return nil
}

func (e *Env) yovRequireMin(m *runtime.Machine, args []runtime.Reference, returns []runtime.Reference) error {
	major, minor := int(m.Int(args[0])), int(m.Int(args[1]))
	valid := true
	if major > e.Version.Major {
		valid = false
	} else if major == e.Version.Major && minor > e.Version.Minor {
		valid = false
	}
	if valid {
		returns[0] = m.NewResult(false, "", 0)
		return nil
	}
	returns[0] = m.NewResult(true, fmt.Sprintf("Require minimum version: Yov v%d.%d", major, minor), 1)
	return nil
}

func (e *Env) yovRequireMax(m *runtime.Machine, args []runtime.Reference, returns []runtime.Reference) error {
	major, minor := int(m.Int(args[0])), int(m.Int(args[1]))
	valid := false
	if major > e.Version.Major {
		valid = true
	} else if major == e.Version.Major && minor >= e.Version.Minor {
		valid = true
	}
	if valid {
		returns[0] = m.NewResult(false, "", 0)
		return nil
	}
	returns[0] = m.NewResult(true, fmt.Sprintf("Require maximum version: Yov v%d.%d", major, minor), 1)
	return nil
}

//- MISC

func (e *Env) askYesno(m *runtime.Machine, args []runtime.Reference, returns []runtime.Reference) error {
	ok, err := e.Host.Confirm(m.Str(args[0]))
	if err != nil {
		ok = false
	}
	returns[0] = m.NewBool(ok)
	return nil
}

func (e *Env) exists(m *runtime.Machine, args []runtime.Reference, returns []runtime.Reference) error {
	returns[0] = m.NewBool(e.Host.Exists(m.Str(args[0])))
	return nil
}

// absoluteToCD resolves a script-relative path against the current
// directory, mirroring PathAbsoluteToCD.
func (e *Env) absoluteToCD(p string) string {
	if path.IsAbs(p) {
		return path.Clean(p)
	}
	return path.Clean(path.Join(e.CurrentDir, p))
}

func (e *Env) createDirectory(m *runtime.Machine, args []runtime.Reference, returns []runtime.Reference) error {
	p := e.absoluteToCD(m.Str(args[0]))
	res := e.userAssert(m, "Create directory:\n"+p)
	if !m.AsResult(res).Failed {
		if err := e.Host.MakeDir(p); err != nil {
			res = m.NewResult(true, err.Error(), 1)
		}
	}
	returns[0] = res
	return nil
}

func (e *Env) deleteDirectory(m *runtime.Machine, args []runtime.Reference, returns []runtime.Reference) error {
	p := e.absoluteToCD(m.Str(args[0]))
	res := e.userAssert(m, "Delete directory:\n"+p)
	if !m.AsResult(res).Failed {
		if err := e.Host.DeleteDir(p); err != nil {
			res = m.NewResult(true, err.Error(), 1)
		}
	}
	returns[0] = res
	return nil
}

func (e *Env) copyDirectory(m *runtime.Machine, args []runtime.Reference, returns []runtime.Reference) error {
	dst := e.absoluteToCD(m.Str(args[0]))
	src := e.absoluteToCD(m.Str(args[1]))
	res := e.userAssert(m, fmt.Sprintf("Copy directory\n'%s'\nto\n'%s'", src, dst))
	if !m.AsResult(res).Failed {
		if err := e.Host.CopyDir(src, dst); err != nil {
			res = m.NewResult(true, err.Error(), 1)
		}
	}
	returns[0] = res
	return nil
}

func (e *Env) moveDirectory(m *runtime.Machine, args []runtime.Reference, returns []runtime.Reference) error {
	dst := e.absoluteToCD(m.Str(args[0]))
	src := e.absoluteToCD(m.Str(args[1]))
	res := e.userAssert(m, fmt.Sprintf("Move directory\n'%s'\nto\n'%s'", src, dst))
	if !m.AsResult(res).Failed {
		if err := e.Host.MoveDir(src, dst); err != nil {
			res = m.NewResult(true, err.Error(), 1)
		}
	}
	returns[0] = res
	return nil
}

func (e *Env) copyFile(m *runtime.Machine, args []runtime.Reference, returns []runtime.Reference) error {
	dst := e.absoluteToCD(m.Str(args[0]))
	src := e.absoluteToCD(m.Str(args[1]))
	res := e.userAssert(m, fmt.Sprintf("Copy file\n'%s'\nto\n'%s'", src, dst))
	if !m.AsResult(res).Failed {
		if err := e.Host.CopyFile(src, dst); err != nil {
			res = m.NewResult(true, err.Error(), 1)
		}
	}
	returns[0] = res
	return nil
}

func (e *Env) moveFile(m *runtime.Machine, args []runtime.Reference, returns []runtime.Reference) error {
	dst := e.absoluteToCD(m.Str(args[0]))
	src := e.absoluteToCD(m.Str(args[1]))
	res := e.userAssert(m, fmt.Sprintf("Move file\n'%s'\nto\n'%s'", src, dst))
	if !m.AsResult(res).Failed {
		if err := e.Host.MoveFile(src, dst); err != nil {
			res = m.NewResult(true, err.Error(), 1)
		}
	}
	returns[0] = res
	return nil
}

func (e *Env) deleteFile(m *runtime.Machine, args []runtime.Reference, returns []runtime.Reference) error {
	p := e.absoluteToCD(m.Str(args[0]))
	res := e.userAssert(m, "Delete file:\n'"+p+"'")
	if !m.AsResult(res).Failed {
		if err := e.Host.DeleteFile(p); err != nil {
			res = m.NewResult(true, err.Error(), 1)
		}
	}
	returns[0] = res
	return nil
}

func (e *Env) writeEntireFile(m *runtime.Machine, args []runtime.Reference, returns []runtime.Reference) error {
	p := e.absoluteToCD(m.Str(args[0]))
	content := m.Str(args[1])
	res := e.userAssert(m, "Write entire file:\n'"+p+"'")
	if !m.AsResult(res).Failed {
		if err := e.Host.WriteFile(p, content); err != nil {
			res = m.NewResult(true, err.Error(), 1)
		}
	}
	returns[0] = res
	return nil
}

func (e *Env) readEntireFile(m *runtime.Machine, args []runtime.Reference, returns []runtime.Reference) error {
	p := e.absoluteToCD(m.Str(args[0]))
	res := e.userAssert(m, "Read entire file:\n'"+p+"'")
	content := ""
	if !m.AsResult(res).Failed {
		c, err := e.Host.ReadFile(p)
		if err != nil {
			res = m.NewResult(true, err.Error(), 1)
		} else {
			content = c
		}
	}
	returns[0] = m.NewString(content)
	returns[1] = res
	return nil
}

func (e *Env) fileGetInfo(m *runtime.Machine, args []runtime.Reference, returns []runtime.Reference) error {
	p := e.absoluteToCD(m.Str(args[0]))
	info, err := e.Host.FileStat(p)
	var res runtime.Reference
	if err != nil {
		res = m.NewResult(true, err.Error(), 1)
	} else {
		res = m.NewResult(false, "", 0)
	}
	returns[0] = m.NewFileInfo(info.Name, info.Size, info.IsDir)
	returns[1] = res
	return nil
}

func (e *Env) dirGetFilesInfo(m *runtime.Machine, args []runtime.Reference, returns []runtime.Reference) error {
	p := e.absoluteToCD(m.Str(args[0]))
	var res runtime.Reference
	var infos []runtime.Reference
	entries, err := e.Host.ReadDir(p)
	if err != nil {
		res = m.NewResult(true, err.Error(), 1)
	} else {
		res = m.NewResult(false, "", 0)
		for _, entry := range entries {
			info, statErr := e.Host.FileStat(path.Join(p, entry.Name))
			if statErr != nil {
				continue
			}
			infos = append(infos, m.NewFileInfo(info.Name, info.Size, info.IsDir))
		}
	}
	returns[0] = m.NewArray(fileInfoElemType, infos)
	returns[1] = res
	return nil
}

//- MSVC

// msvcImportEnvUnsupported: the original shells out to vcvarsall.bat and
// captures its environment delta; that is an MSVC-toolchain-specific,
// Windows-only mechanism with no portable equivalent, so here it always
// reports failure rather than silently doing nothing (spec.md's Non-goals
// don't name MSVC import, but no cross-platform host can honor it).
func (e *Env) msvcImportEnvUnsupported(m *runtime.Machine, args []runtime.Reference, returns []runtime.Reference) error {
	returns[0] = m.NewResult(true, "msvc_import_env is not supported on this host", 1)
	return nil
}
