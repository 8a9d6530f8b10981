// Package yov is the top-level orchestration layer (spec.md §2's "top-level
// orchestration" row): it wires internal/compiler's front-end output into
// internal/runtime, constructs the ambient globals spec.md §6.3 describes,
// and collects/prints the diagnostics every pass of spec.md §7's tier-1
// taxonomy produces. Generalizes the teacher's engine.go (which walked a
// project directory and ran a pool of Rule.Run passes over every matching
// file) to this package's simpler, single-entry-point need: compile one
// script, and if it came back clean, run it — the pool fan-out itself now
// lives in internal/wpool, grounded on engine.go's Run.
package yov

import (
	"fmt"
	"path/filepath"
	goruntime "runtime"

	"github.com/yov-lang/yov/internal/compiler"
	"github.com/yov-lang/yov/internal/hostos"
	"github.com/yov-lang/yov/internal/intrinsics"
	"github.com/yov-lang/yov/internal/runtime"
)

// Version is the interpreter's own major/minor/revision, surfaced to
// scripts through the `yov` ambient global and checked by yov_require*
// (spec.md §6.3/§6.4).
var Version = intrinsics.Version{Major: 0, Minor: 1, Revision: 0}

// Options mirrors the CLI flags of spec.md §6.1 that affect how a Program
// runs, independent of how those flags were parsed (cmd/yov's flag.FlagSet
// populates one of these; a test can build one directly).
type Options struct {
	// Analyze runs every compilation pass and skips execution (`-analyze`).
	Analyze bool
	// Trace enables the `-trace` dev-log channel (spec.md §10).
	Trace bool
	// UserAssert requires interactive confirmation before any effectful
	// intrinsic (`-user_assert`).
	UserAssert bool
	// NoUser answers yes to every assertion automatically (`-no_user`).
	NoUser bool
	// PoolSize bounds internal/compiler's worker pool; 0 uses its default.
	PoolSize int
	// CallerDir is the directory the script was invoked from, distinct
	// from the script's own directory once symlinks/relative imports are
	// in play; defaults to Host.WorkingDir() when empty.
	CallerDir string
	// ScriptArgs is the script's own `name=value`/bare-`name` argument tail
	// (spec.md §6.1), already parsed by the caller; surfaced to the script
	// as `context.args`.
	ScriptArgs []string
	// Host is the OS shim every intrinsic and the Program itself goes
	// through; callers pass internal/hostos/native.New() in production and
	// internal/hostos/fake's double in tests.
	Host hostos.Host
}

// Program is one compiled-and-wired yov script, ready to Run.
type Program struct {
	Reporter *Reporter
	Compiled *compiler.Program
	Machine  *runtime.Machine

	opts Options
}

// Compile runs the full front-end pipeline over scriptPath (spec.md §4-§5)
// and, if it came back clean, builds the runtime.Machine and wires the
// Intrinsic Library and ambient globals into it — but does not execute
// anything yet. Callers inspect p.Reporter.HasErrors() before calling Run.
func Compile(scriptPath string, opts Options) (*Program, error) {
	if opts.Host == nil {
		return nil, fmt.Errorf("yov.Compile: opts.Host is required")
	}

	compiled, diags, err := compiler.Compile(scriptPath, opts.PoolSize)
	if err != nil {
		return nil, err
	}

	reporter := NewReporter()
	reporter.Add(diags...)

	p := &Program{Reporter: reporter, Compiled: compiled, opts: opts}
	if reporter.HasErrors() || compiled == nil {
		return p, nil
	}

	scriptDir, err := opts.Host.Absolute(filepath.Dir(scriptPath))
	if err != nil {
		scriptDir = filepath.Dir(scriptPath)
	}
	callerDir := opts.CallerDir
	if callerDir == "" {
		if wd, err := opts.Host.WorkingDir(); err == nil {
			callerDir = wd
		} else {
			callerDir = scriptDir
		}
	}
	execPath, err := opts.Host.ExecutablePath()
	if err != nil {
		execPath = ""
	}

	m := runtime.NewMachine(len(compiled.IR.Globals))
	m.Settings = runtime.Settings{
		UserAssert:  opts.UserAssert,
		NoUser:      opts.NoUser,
		AnalyzeOnly: opts.Analyze,
	}

	intrinsics.Register(m, &intrinsics.Env{
		Host:       opts.Host,
		Version:    Version,
		ScriptDir:  scriptDir,
		CurrentDir: scriptDir,
	})

	seedAmbient(m, scriptDir, callerDir, execPath, opts.ScriptArgs)

	p.Machine = m
	return p, nil
}

// seedAmbient fills in the four runtime.Machine.Globals slots internal/ir's
// NewFile reserves at indices 0..3 (spec.md §6.3), ahead of running
// Compiled.IR.GlobalInit, so any global-initializer expression that reads
// one of them observes the real value rather than a zero Reference.
func seedAmbient(m *runtime.Machine, scriptDir, callerDir, execPath string, scriptArgs []string) {
	yovRef := m.NewYovInfo(execPath, versionString(Version), Version.Major, Version.Minor, Version.Revision)
	osRef := m.NewOS(goruntime.GOOS)
	ctxRef := m.NewContext(scriptDir, scriptDir, callerDir, scriptArgs)
	callsRef := m.NewCallsContext(false)

	for i, ref := range []runtime.Reference{yovRef, osRef, ctxRef, callsRef} {
		m.Globals[i] = ref
		m.Retain(ref)
	}
}

func versionString(v intrinsics.Version) string {
	return fmt.Sprintf("%d.%d.%d", v.Major, v.Minor, v.Revision)
}

// Run executes the compiled entry point (spec.md §1: "execute a main entry
// point") after first running the global initializer, and returns the
// process exit code spec.md §6.1 describes: 0 on clean completion, else
// the code passed to `exit` or the code of the Result whose auto-inserted
// ResultEval aborted execution. Run does nothing and returns 1 if
// p.Reporter already has errors, and returns 0 if Options.Analyze was set.
func (p *Program) Run() int {
	if p.Reporter.HasErrors() {
		return 1
	}
	if p.opts.Analyze || p.Machine == nil {
		return 0
	}

	m := p.Machine
	if _, err := m.Run(p.Compiled.IR.GlobalInit, nil); err != nil {
		return abortCode(m, err)
	}
	if m.ExitRequested {
		return m.ExitCode
	}

	if _, err := m.Run(p.Compiled.Entry, nil); err != nil {
		return abortCode(m, err)
	}
	return m.ExitCode
}

func abortCode(m *runtime.Machine, err error) int {
	if m.ExitRequested {
		return m.ExitCode
	}
	_ = err
	return 1
}

// Trace writes a `-trace` dev-log line (spec.md §10, grounded on
// original_source's scattered DEV_LOG calls) through the Host's Print,
// tagged SeverityTrace; a no-op when Options.Trace is false so callers
// never pay for fmt.Sprintf on a disabled channel.
func (p *Program) Trace(format string, args ...any) {
	if !p.opts.Trace || p.opts.Host == nil {
		return
	}
	p.opts.Host.Print(hostos.SeverityTrace, fmt.Sprintf(format, args...)+"\n")
}
