// Package hostos is the OS shim contract spec.md §6.2 describes: every
// effect the interpreter has on the outside world — console output, the
// filesystem, process spawn, environment lookup, the yes/no assertion
// prompt — goes through this one interface, so internal/intrinsics never
// imports os/os/exec directly. internal/hostos/native backs it with the
// real operating system; internal/hostos/fake is an in-memory double for
// tests, grounded on the teacher's internal/utils/testutil fake-dependency
// idiom (there the fake is a canned javascript.ParseFile input/analyzer
// harness; here it is a canned filesystem/process/console double).
package hostos

// Severity tags a line of console output (spec.md §10 supplement, from
// original_source/code/inc.h's `enum Severity {Info, Warning, Error}`),
// extended with SeverityTrace for the `-trace` dev-log channel.
type Severity int

const (
	SeverityInfo Severity = iota
	SeverityWarning
	SeverityError
	SeverityTrace
)

// RedirectMode controls where a spawned process's stdout goes (spec.md
// §6.2/§10 supplement).
type RedirectMode int

const (
	RedirectConsole   RedirectMode = iota // inherit the host console
	RedirectIgnore                        // discard
	RedirectScript                        // captured and returned to the script
	RedirectImportEnv                     // captured and returned like RedirectScript; not parsed into the environment
)

// ProcessResult is what a spawned process reports back (spec.md §10
// supplement's `call` signature): its stdout text and exit code. A process
// that cannot be started at all is reported through Spawn's error instead.
type ProcessResult struct {
	Stdout   string
	ExitCode int
}

// DirEntry is one enumerated directory member.
type DirEntry struct {
	Name  string
	IsDir bool
}

// FileInfo is what file_get_info/dir_get_files_info report back
// (original_source/code/intrinsics.cpp's FileInfo, queried there through
// OsFileGetInfo/OsDirGetFilesInfo).
type FileInfo struct {
	Name  string
	Size  int64
	IsDir bool
}

// Host is the full OS shim contract (spec.md §6.2): every intrinsic that
// touches the outside world is implemented in terms of this interface.
type Host interface {
	// Print writes console output tagged with a Severity, exactly as given:
	// it adds no newline of its own.
	Print(sev Severity, line string)

	// Console: yes/no confirmation prompt, cursor control, clear.
	Confirm(prompt string) (bool, error)
	MoveCursor(dx, dy int)
	ClearConsole()

	// Filesystem.
	ReadFile(path string) (string, error)
	WriteFile(path, contents string) error
	CopyFile(src, dst string) error
	MoveFile(src, dst string) error
	DeleteFile(path string) error

	MakeDir(path string) error
	DeleteDir(path string) error
	CopyDir(src, dst string) error
	MoveDir(src, dst string) error
	ReadDir(path string) ([]DirEntry, error)

	// FileStat reports a single path's FileInfo.
	FileStat(path string) (FileInfo, error)

	// Path queries.
	Absolute(path string) (string, error)
	IsDir(path string) bool
	Exists(path string) bool
	WorkingDir() (string, error)
	ExecutablePath() (string, error)

	// Process spawn: cmd + args, an optional working directory, and a
	// redirect mode governing where stdout goes.
	Spawn(cmd string, args []string, dir string, redirect RedirectMode) (ProcessResult, error)

	// Misc.
	Sleep(millis int)
	Getenv(name string) (string, bool)
}
