// Package compiler orchestrates the full front-end pipeline of spec.md
// §4-§5: Location Scanning, parsing, Definition Table identify/define/ready,
// and IR building, fanned out across a bounded worker pool with a barrier
// between passes.
//
// The phase-barrier shape is grounded on the teacher's engine.go Run
// (collect targets, then one errgroup-guarded ants.Pool pass per stage),
// generalized from "one pass over files" to the five sequential passes
// spec.md §5 describes, since this front-end's passes each depend on every
// definition the previous pass produced rather than being independent.
package compiler

import (
	"fmt"
	"path/filepath"
	"strconv"
	"sync"

	"github.com/yov-lang/yov/internal/ast"
	"github.com/yov-lang/yov/internal/defs"
	"github.com/yov-lang/yov/internal/ir"
	"github.com/yov-lang/yov/internal/locscan"
	"github.com/yov-lang/yov/internal/parser"
	"github.com/yov-lang/yov/internal/sema"
	"github.com/yov-lang/yov/internal/source"
	"github.com/yov-lang/yov/internal/token"
	"github.com/yov-lang/yov/internal/types"
	"github.com/yov-lang/yov/internal/wpool"
)

// EntryFuncName is the function the compiled Program begins executing at
// (spec.md §1: "execute a main entry point").
const EntryFuncName = "main"

// Diagnostic is a front-end error tied to a source location; Script is nil
// for diagnostics that have no single source origin (a prelude-seeding
// failure, a pool-submission error).
type Diagnostic struct {
	Script *source.Script
	Pos    token.Pos
	Msg    string
}

func (d Diagnostic) Error() string {
	if d.Script == nil {
		return d.Msg
	}
	line, col := d.Script.LineCol(d.Pos)
	return fmt.Sprintf("%s:%d:%d: %s", d.Script.AbsPath, line, col, d.Msg)
}

// Program is a fully-resolved, ready-to-run front-end output: a Definition
// Table whose every entry reached defs.StageReady, the IR built from it,
// and the resolved entry function.
type Program struct {
	Defs  *defs.Table
	IR    *ir.File
	Entry *ir.Function
}

// fileEntry pairs a parsed *ast.File with the Script it came from, plus the
// *defs.Table entries identified from it (kept alongside so later phases
// don't need to re-walk the AST to find a declaration's Definition).
type fileEntry struct {
	script *source.Script
	file   *ast.File

	structs []*structEntry
	enums   []*enumEntry
	funcs   []*funcEntry
	args    []*argEntry
}

type structEntry struct {
	def  *defs.StructDefinition
	decl *ast.StructDecl
}

type enumEntry struct {
	def  *defs.EnumDefinition
	decl *ast.EnumDecl
}

type funcEntry struct {
	def  *defs.FunctionDefinition
	decl *ast.FuncDecl
}

type argEntry struct {
	def  *defs.ArgDefinition
	decl *ast.ArgDecl
}

// globalEntry pairs a global's *ast.ObjectDeclStmt with its Definition, in
// first-seen order across every file — the order seedGlobals lays out
// ir.File.Globals in, and the order BuildGlobalInit emits initializers in.
type globalEntry struct {
	def  *defs.GlobalDefinition
	decl *ast.ObjectDeclStmt
}

// Compile runs the full front-end over entryPath and its transitive
// imports, fanning each phase out across a poolSize-wide worker pool
// (wpool.DefaultPoolSize if poolSize <= 0).
func Compile(entryPath string, poolSize int) (*Program, []Diagnostic, error) {
	pool, err := wpool.New(poolSize)
	if err != nil {
		return nil, nil, fmt.Errorf("compiler: creating worker pool: %w", err)
	}
	defer pool.Release()

	absEntry, err := filepath.Abs(entryPath)
	if err != nil {
		return nil, nil, fmt.Errorf("compiler: resolving entry path: %w", err)
	}

	set := source.NewSet()
	text, err := source.ReadFile(absEntry)
	if err != nil {
		return nil, nil, fmt.Errorf("compiler: reading %s: %w", absEntry, err)
	}
	set.Add(absEntry, text)

	results, diags, err := scanAll(pool, set)
	if err != nil {
		return nil, nil, err
	}
	if len(diags) > 0 {
		return nil, diags, nil
	}

	files, diags := parseAll(pool, set, results)
	if len(diags) > 0 {
		return nil, diags, nil
	}

	dt := defs.NewTable()
	var seedDiags []Diagnostic
	for _, d := range seedPreludeStructs(dt) {
		seedDiags = append(seedDiags, d)
	}
	for _, d := range seedAmbientGlobals(dt) {
		seedDiags = append(seedDiags, d)
	}
	for _, d := range seedIntrinsics(dt) {
		seedDiags = append(seedDiags, d)
	}
	if len(seedDiags) > 0 {
		return nil, seedDiags, nil
	}

	globals, diags := identifyAll(dt, files)
	if len(diags) > 0 {
		return nil, diags, nil
	}

	diags = defineAll(dt, files, globals)
	if len(diags) > 0 {
		return nil, diags, nil
	}

	diags = readyAll(dt, files)
	if len(diags) > 0 {
		return nil, diags, nil
	}

	file := ir.NewFile()
	diags = seedGlobals(file, globals)
	if len(diags) > 0 {
		return nil, diags, nil
	}

	diags = buildShells(file, files)
	if len(diags) > 0 {
		return nil, diags, nil
	}

	diags = buildFunctions(pool, dt, files)
	if len(diags) > 0 {
		return nil, diags, nil
	}

	globalInitFn, diags := buildGlobalInit(file, globals, dt)
	if len(diags) > 0 {
		return nil, diags, nil
	}
	file.GlobalInit = globalInitFn

	entry, ok := file.Functions[EntryFuncName]
	if !ok {
		return nil, []Diagnostic{{Msg: fmt.Sprintf("no %q function declared", EntryFuncName)}}, nil
	}

	return &Program{Defs: dt, IR: file, Entry: entry}, nil, nil
}

// scanAll runs the Location Scanner over set's entry script, fanning out
// in fixpoint rounds: each round scans every not-yet-scanned script, adds
// whatever new import paths it discovers to set, and the next round picks
// those up — the import-discovery loop of spec.md §5 ("Work is distributed
// uniformly across lanes at each pass boundary, with a barrier between
// passes").
func scanAll(pool *wpool.Pool, set *source.Set) (map[*source.Script]*locscan.Result, []Diagnostic, error) {
	results := map[*source.Script]*locscan.Result{}
	scanned := map[*source.Script]bool{}
	var diags []Diagnostic

	for {
		pending := pendingScripts(set, scanned)
		if len(pending) == 0 {
			break
		}

		type scanOutcome struct {
			script *source.Script
			res    *locscan.Result
			diags  []locscan.Diagnostic
		}
		outcomes := make([]scanOutcome, len(pending))
		err := wpool.RunEach(pool, indices(len(pending)), func(i int) error {
			script := pending[i]
			res, d := locscan.Scan(script)
			outcomes[i] = scanOutcome{script: script, res: res, diags: d}
			return nil
		})
		if err != nil {
			return nil, nil, fmt.Errorf("compiler: scan phase: %w", err)
		}

		for _, o := range outcomes {
			scanned[o.script] = true
			for _, d := range o.diags {
				diags = append(diags, Diagnostic{Script: o.script, Pos: d.Pos, Msg: d.Msg})
			}
			if o.res == nil {
				continue
			}
			results[o.script] = o.res
			for _, imp := range o.res.Imports {
				absImp := resolveImport(o.script, imp)
				importText, err := source.ReadFile(absImp)
				if err != nil {
					diags = append(diags, Diagnostic{Script: o.script, Msg: fmt.Sprintf("importing %q: %v", imp, err)})
					continue
				}
				set.Add(absImp, importText)
			}
		}
	}
	return results, diags, nil
}

func resolveImport(from *source.Script, path string) string {
	if filepath.IsAbs(path) {
		return filepath.Clean(path)
	}
	return filepath.Clean(filepath.Join(from.Dir, path))
}

func pendingScripts(set *source.Set, scanned map[*source.Script]bool) []*source.Script {
	var out []*source.Script
	for _, s := range set.All() {
		if !scanned[s] {
			out = append(out, s)
		}
	}
	return out
}

func indices(n int) []int {
	out := make([]int, n)
	for i := range out {
		out[i] = i
	}
	return out
}

// parseAll runs internal/parser over every scanned Script, in file order so
// diagnostics and the later Identify phase are deterministic across runs.
func parseAll(pool *wpool.Pool, set *source.Set, results map[*source.Script]*locscan.Result) ([]*fileEntry, []Diagnostic) {
	scripts := set.All()
	files := make([]*fileEntry, len(scripts))
	perFileDiags := make([][]Diagnostic, len(scripts))

	err := wpool.RunEach(pool, indices(len(scripts)), func(i int) error {
		script := scripts[i]
		res := results[script]
		if res == nil {
			return nil
		}
		astFile, errs := parser.ParseFile(res, script.AbsPath)
		for _, e := range errs {
			perFileDiags[i] = append(perFileDiags[i], Diagnostic{Script: script, Pos: e.Pos, Msg: e.Msg})
		}
		files[i] = &fileEntry{script: script, file: astFile}
		return nil
	})

	var diags []Diagnostic
	if err != nil {
		diags = append(diags, Diagnostic{Msg: fmt.Sprintf("parse phase: %v", err)})
	}
	for _, fd := range perFileDiags {
		diags = append(diags, fd...)
	}

	out := make([]*fileEntry, 0, len(files))
	for _, f := range files {
		if f != nil {
			out = append(out, f)
		}
	}
	return out, diags
}

// identifyAll reserves every top-level declaration's name in dt, in
// deterministic (file, declaration) order so duplicate-identifier
// diagnostics are stable across runs; spec.md §5's atomic-counter
// identification is what makes this safe to later parallelize per-kind,
// but Identify itself is cheap enough that running it serially keeps this
// pass trivial to reason about.
func identifyAll(dt *defs.Table, files []*fileEntry) ([]*globalEntry, []Diagnostic) {
	var diags []Diagnostic
	var globals []*globalEntry

	for _, f := range files {
		for _, sd := range f.file.Structs {
			def, err := dt.IdentifyStruct(sd.Name.Name, f.script, sd.Pos().Start)
			if err != nil {
				diags = append(diags, toDiag(f.script, err))
				continue
			}
			f.structs = append(f.structs, &structEntry{def: def, decl: sd})
		}
		for _, ed := range f.file.Enums {
			def, err := dt.IdentifyEnum(ed.Name.Name, f.script, ed.Pos().Start)
			if err != nil {
				diags = append(diags, toDiag(f.script, err))
				continue
			}
			f.enums = append(f.enums, &enumEntry{def: def, decl: ed})
		}
		for _, fd := range f.file.Funcs {
			def, err := dt.IdentifyFunction(fd.Name.Name, f.script, fd.Pos().Start)
			if err != nil {
				diags = append(diags, toDiag(f.script, err))
				continue
			}
			f.funcs = append(f.funcs, &funcEntry{def: def, decl: fd})
		}
		for _, ad := range f.file.Args {
			def, err := dt.IdentifyArg(ad.Name.Name, f.script, ad.Pos().Start)
			if err != nil {
				diags = append(diags, toDiag(f.script, err))
				continue
			}
			f.args = append(f.args, &argEntry{def: def, decl: ad})
		}
		for _, gd := range f.file.Globals {
			name := gd.Names[0].Name
			def, err := dt.IdentifyGlobal(name, f.script, gd.Pos().Start)
			if err != nil {
				diags = append(diags, toDiag(f.script, err))
				continue
			}
			globals = append(globals, &globalEntry{def: def, decl: gd})
		}
	}
	return globals, diags
}

func toDiag(script *source.Script, err error) Diagnostic {
	if de, ok := err.(*defs.DuplicateError); ok {
		return Diagnostic{Script: script, Pos: de.Second, Msg: de.Error()}
	}
	return Diagnostic{Script: script, Msg: err.Error()}
}

// defineAll resolves every signature/field/global type against dt.Types,
// advancing every identified definition to defs.StageDefined. Every name is
// already Identified by this point, so running this serially (rather than
// fanned out through a worker pool) keeps struct/enum/function
// cross-references simple: order within the pass doesn't matter, only that
// Identify finished first.
func defineAll(dt *defs.Table, files []*fileEntry, globals []*globalEntry) []Diagnostic {
	var diags []Diagnostic

	for _, f := range files {
		for _, se := range f.structs {
			var members []defs.Param
			for _, m := range se.decl.Members {
				t, ok := sema.ResolveTypeExpr(dt, m.Type)
				if !ok {
					diags = append(diags, Diagnostic{Script: f.script, Pos: m.Type.Pos().Start, Msg: fmt.Sprintf("unknown type %q", m.Type.Name)})
					continue
				}
				members = append(members, defs.Param{Name: m.Name.Name, Type: t})
			}
			se.def.DefineStruct(members)
		}
		for _, fe := range f.funcs {
			params := fieldsToParams(dt, f.script, fe.decl.Params, &diags)
			returns := fieldsToParams(dt, f.script, fe.decl.Results, &diags)
			fe.def.DefineFunction(params, returns)
		}
		for _, ae := range f.args {
			t, ok := sema.ResolveTypeExpr(dt, ae.decl.Type)
			if !ok {
				diags = append(diags, Diagnostic{Script: f.script, Pos: ae.decl.Type.Pos().Start, Msg: fmt.Sprintf("unknown type %q", ae.decl.Type.Name)})
				continue
			}
			ae.def.DefineArg(t)
		}
	}

	for _, ge := range globals {
		if ge.decl.Type != nil {
			t, ok := sema.ResolveTypeExpr(dt, ge.decl.Type)
			if !ok {
				diags = append(diags, Diagnostic{Pos: ge.decl.Type.Pos().Start, Msg: fmt.Sprintf("unknown type %q", ge.decl.Type.Name)})
				continue
			}
			ge.def.DefineGlobal(t, ge.decl.IsConstant)
			continue
		}
		b := sema.New(dt)
		t, errs := b.InferExprType(ge.decl.Value)
		for _, e := range errs {
			diags = append(diags, Diagnostic{Pos: e.Pos, Msg: e.Msg})
		}
		ge.def.DefineGlobal(t, ge.decl.IsConstant)
	}

	// Enums have no field types to resolve (members are bare names with an
	// optional constant int expression) — their Define+Ready step folds
	// values directly in readyAll, once every enum is Identified.

	return diags
}

func fieldsToParams(dt *defs.Table, script *source.Script, fields []*ast.Field, diags *[]Diagnostic) []defs.Param {
	var out []defs.Param
	for _, fl := range fields {
		t, ok := sema.ResolveTypeExpr(dt, fl.Type)
		if !ok {
			*diags = append(*diags, Diagnostic{Script: script, Pos: fl.Type.Pos().Start, Msg: fmt.Sprintf("unknown type %q", fl.Type.Name)})
			continue
		}
		out = append(out, defs.Param{Name: fl.Name.Name, Type: t})
	}
	return out
}

// readyAll resolves struct layouts to a fixpoint (spec.md §5: "The
// struct-resolve phase re-runs until the count of resolved structs
// stabilises"), then folds every enum member's value and every arg's
// default, advancing structs/enums/args to defs.StageReady.
func readyAll(dt *defs.Table, files []*fileEntry) []Diagnostic {
	var diags []Diagnostic

	for {
		progressed := false
		stuck := 0
		for _, sd := range dt.AllStructs() {
			if sd.Stage() == defs.StageReady {
				continue
			}
			if sd.ResolveStruct() {
				progressed = true
			} else {
				stuck++
			}
		}
		if stuck == 0 {
			break
		}
		if !progressed {
			for _, sd := range dt.AllStructs() {
				if sd.Stage() != defs.StageReady {
					diags = append(diags, Diagnostic{Script: sd.Script, Pos: sd.Pos, Msg: fmt.Sprintf("struct %q has an unresolvable or circular member type", sd.Identifier)})
				}
			}
			break
		}
	}

	for _, f := range files {
		for _, ee := range f.enums {
			values := make([]int64, len(ee.decl.Members))
			members := make([]types.EnumMember, len(ee.decl.Members))
			valueExprPos := make([]token.Pos, len(ee.decl.Members))
			var next int64
			for i, m := range ee.decl.Members {
				members[i] = types.EnumMember{Name: m.Name.Name}
				if m.Value == nil {
					values[i] = next
				} else {
					valueExprPos[i] = m.Value.Pos().Start
					if v, ok := foldConstInt(m.Value); ok {
						values[i] = v
					} else {
						diags = append(diags, Diagnostic{Script: f.script, Pos: m.Value.Pos().Start, Msg: "enum member value must be a constant integer expression"})
					}
				}
				next = values[i] + 1
			}
			ee.def.DefineEnum(members, valueExprPos)
			ee.def.ResolveEnum(values)
		}

		for _, ae := range f.args {
			var def ir.Value
			if ae.decl.Default != nil {
				b := sema.New(dt)
				v, errs := b.BuildConstExpr(ae.decl.Default)
				for _, e := range errs {
					diags = append(diags, Diagnostic{Script: f.script, Pos: e.Pos, Msg: e.Msg})
				}
				def = v
			}
			ae.def.ResolveArg(ae.decl.Name.Name, ae.decl.Description, ae.decl.Required, def)
		}
	}

	return diags
}

// foldConstInt evaluates the tiny subset of constant-integer syntax enum
// member values use: a bare int literal, or a unary minus over one —
// original_source/code/parser.cpp's enum values are restricted the same
// way (a literal or a negated literal), so there is no need for a general
// constant-expression evaluator here.
func foldConstInt(x ast.Expr) (int64, bool) {
	switch e := x.(type) {
	case *ast.BasicLit:
		if e.Kind != token.Int {
			return 0, false
		}
		v, err := strconv.ParseInt(e.Value, 10, 64)
		return v, err == nil
	case *ast.UnaryExpr:
		if e.Op != token.Sub {
			return 0, false
		}
		v, ok := foldConstInt(e.X)
		return -v, ok
	default:
		return 0, false
	}
}

// seedGlobals lays out every user global into file.Globals (the four
// ambient globals already occupy indices 0..3 from ir.NewFile) in
// first-seen order, then records each assigned slot back into its
// GlobalDefinition.
func seedGlobals(file *ir.File, globals []*globalEntry) []Diagnostic {
	for _, ge := range globals {
		idx := file.AddGlobal(ge.decl.Names[0].Name, ge.def.Type, ge.def.IsConstant)
		ge.def.ResolveGlobal(idx)
	}
	return nil
}

// buildShells pre-allocates an *ir.Function for every user function before
// any body is built, registers it into file.Functions, and marks the
// FunctionDefinition Ready — so a forward or recursive call's buildCall
// (internal/sema/expr.go) already has a stable fd.IR to point its
// UFunctionCall.Fn at, regardless of which order function bodies are
// subsequently built in.
func buildShells(file *ir.File, files []*fileEntry) []Diagnostic {
	var diags []Diagnostic
	for _, f := range files {
		for _, fe := range f.funcs {
			if _, exists := file.Functions[fe.def.Identifier]; exists {
				diags = append(diags, Diagnostic{Script: f.script, Pos: fe.decl.Pos().Start, Msg: fmt.Sprintf("duplicate function %q", fe.def.Identifier)})
				continue
			}
			shell := ir.NewFunction(fe.def.Identifier, f.script.AbsPath)
			file.Functions[fe.def.Identifier] = shell
			fe.def.Resolve(shell, false)
		}
	}
	return diags
}

// buildFunctions lowers every user function's body into its pre-allocated
// shell (fe.def.IR), one Builder per function so the fan-out is safe to
// run concurrently (internal/sema.Builder is documented not safe for
// concurrent use, but distinct Builders over the same read-only
// *defs.Table are — every definition it reads is already Ready or
// Defined and immutable from this point on).
func buildFunctions(pool *wpool.Pool, dt *defs.Table, files []*fileEntry) []Diagnostic {
	type job struct {
		script *source.Script
		fe     *funcEntry
	}
	var jobs []job
	for _, f := range files {
		for _, fe := range f.funcs {
			jobs = append(jobs, job{script: f.script, fe: fe})
		}
	}

	var diagsMu sync.Mutex
	var diags []Diagnostic
	err := wpool.RunEach(pool, jobs, func(j job) error {
		b := sema.New(dt)
		errs := b.BuildFunction(j.fe.def, j.fe.decl, j.fe.def.IR)
		ir.Link(j.fe.def.IR)
		if len(errs) == 0 {
			return nil
		}
		diagsMu.Lock()
		defer diagsMu.Unlock()
		for _, e := range errs {
			diags = append(diags, Diagnostic{Script: j.script, Pos: e.Pos, Msg: e.Msg})
		}
		return nil
	})
	if err != nil {
		diags = append(diags, Diagnostic{Msg: fmt.Sprintf("build phase: %v", err)})
	}
	return diags
}

// buildGlobalInit lowers every global's initializer into the program's
// implicit $global_init function, in first-seen declaration order.
func buildGlobalInit(file *ir.File, globals []*globalEntry, dt *defs.Table) (*ir.Function, []Diagnostic) {
	decls := make([]*ast.ObjectDeclStmt, len(globals))
	for i, g := range globals {
		decls[i] = g.decl
	}

	b := sema.New(dt)
	fn, errs := b.BuildGlobalInit(file, decls, dt.Global)
	var diags []Diagnostic
	for _, e := range errs {
		diags = append(diags, Diagnostic{Pos: e.Pos, Msg: e.Msg})
	}
	ir.Link(fn)
	return fn, diags
}
