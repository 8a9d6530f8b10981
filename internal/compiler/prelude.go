package compiler

import (
	"github.com/yov-lang/yov/internal/defs"
	"github.com/yov-lang/yov/internal/types"
)

// ambientGlobals is the four globals ir.NewFile reserves at indices 0..3
// (spec.md §6.3) — seeded into the Definition Table at fixed indices so
// user code referencing `yov`/`os`/`context`/`calls` resolves via
// sema.buildIdent's b.Defs.Global lookup exactly like any other global.
// Each is typed as one of the ambientStructs prelude structs (rather than
// Any) so `context.cd`/`calls.redirect_stdout`/etc. lower through the
// ordinary struct-member UChild path sema.buildLValue already has, instead
// of requiring Any-typed property special-casing the type system doesn't
// have.
var ambientGlobals = []struct {
	name       string
	structName string
}{
	{"yov", "YovInfo"},
	{"os", "OS"},
	{"context", "Context"},
	{"calls", "CallsContext"},
}

// seedAmbientGlobals identifies, defines and resolves the four ambient
// globals at the same indices ir.NewFile() reserves for them, typed
// against the matching ambientStructs entry seedPreludeStructs has
// already registered.
func seedAmbientGlobals(dt *defs.Table) []Diagnostic {
	var diags []Diagnostic
	for i, ag := range ambientGlobals {
		t, ok := dt.Types.Lookup(ag.structName)
		if !ok {
			diags = append(diags, Diagnostic{Msg: "internal error: ambient struct " + ag.structName + " not seeded"})
			continue
		}
		gd, err := dt.IdentifyGlobal(ag.name, nil, 0)
		if err != nil {
			diags = append(diags, Diagnostic{Msg: err.Error()})
			continue
		}
		gd.DefineGlobal(t, false)
		gd.ResolveGlobal(i)
	}
	return diags
}

// preludeStruct is one built-in struct the runtime already assumes the
// shape of (runtime.resultType/fileInfoType address these purely by
// BaseName, since intrinsics are wired before a types.Table exists to
// hand back a *StructDef pointer) — seeding them here is what makes that
// BaseName actually resolvable from user source.
type preludeStruct struct {
	name    string
	members []defs.Param
}

var preludeStructs = []preludeStruct{
	{name: "Result", members: []defs.Param{
		{Name: "failed", Type: types.Bool()},
		{Name: "message", Type: types.String()},
		{Name: "code", Type: types.Int()},
	}},
	{name: "FileInfo", members: []defs.Param{
		{Name: "name", Type: types.String()},
		{Name: "size", Type: types.Int()},
		{Name: "is_dir", Type: types.Bool()},
	}},
	// The four ambient globals of spec.md §6.3, declared as ordinary
	// structs (see ambientGlobals) rather than Any.
	{name: "YovInfo", members: []defs.Param{
		{Name: "path", Type: types.String()},
		{Name: "version", Type: types.String()},
		{Name: "major", Type: types.Int()},
		{Name: "minor", Type: types.Int()},
		{Name: "revision", Type: types.Int()},
	}},
	{name: "OS", members: []defs.Param{
		{Name: "kind", Type: types.String()},
	}},
	{name: "Context", members: []defs.Param{
		{Name: "cd", Type: types.String()},
		{Name: "script_dir", Type: types.String()},
		{Name: "caller_dir", Type: types.String()},
		{Name: "args", Type: stringArray()},
		{Name: "types", Type: types.Any},
	}},
	{name: "CallsContext", members: []defs.Param{
		{Name: "redirect_stdout", Type: types.Bool()},
	}},
}

func seedPreludeStructs(dt *defs.Table) []Diagnostic {
	var diags []Diagnostic
	for _, ps := range preludeStructs {
		sd, err := dt.IdentifyStruct(ps.name, nil, 0)
		if err != nil {
			diags = append(diags, Diagnostic{Msg: err.Error()})
			continue
		}
		sd.DefineStruct(ps.members)
		if !sd.ResolveStruct() {
			diags = append(diags, Diagnostic{Msg: "internal error: prelude struct " + ps.name + " not ready"})
		}
	}
	return diags
}

// intrinsicSignature is one entry of the declarative table used to seed
// every intrinsic's FunctionDefinition, mirroring
// internal/intrinsics/intrinsics.go's actual Go function bodies (each
// param/return type here matches the m.Str/m.Int/m.Bool/m.AsResult calls
// that function makes against its args/returns slices).
type intrinsicSignature struct {
	name    string
	params  []types.VType
	returns []types.VType
}

func stringArray() types.VType { return types.FromDimension(types.String(), 1) }

func fileInfoArray(resultT types.VType) types.VType { return types.FromDimension(resultT, 1) }

// intrinsicSignatures lists every name internal/intrinsics.Register wires
// up, in the same order, so a missing/extra entry here is easy to spot
// against that file.
func intrinsicSignatures(resultT, fileInfoT types.VType) []intrinsicSignature {
	str, i, b := types.String(), types.Int(), types.Bool()
	void := []types.VType{}
	return []intrinsicSignature{
		{"typeof", []types.VType{types.Any}, []types.VType{types.Any}},
		{"print", []types.VType{str}, void},
		{"println", []types.VType{str}, void},
		{"exit", []types.VType{i}, void},
		{"set_cd", []types.VType{str}, []types.VType{resultT}},
		{"assert", []types.VType{b}, []types.VType{resultT}},
		{"failed", []types.VType{str, i}, []types.VType{resultT}},
		{"sleep", []types.VType{i}, void},
		{"env", []types.VType{str}, []types.VType{str, resultT}},
		{"env_path", []types.VType{str}, []types.VType{str, resultT}},
		{"env_path_array", []types.VType{str}, []types.VType{stringArray(), resultT}},
		{"console_write", []types.VType{str}, void},
		{"console_clear", nil, void},
		{"console_set_cursor", []types.VType{i, i}, void},
		{"console_get_cursor", nil, []types.VType{i, i}},
		{"call", []types.VType{str}, []types.VType{str, i, resultT}},
		{"call_exe", []types.VType{str, str}, []types.VType{str, i, resultT}},
		{"call_script", []types.VType{str, str, str}, []types.VType{str, i, resultT}},
		{"path_resolve", []types.VType{str}, []types.VType{str}},
		{"str_get_codepoint", []types.VType{str, i}, []types.VType{i, i}},
		{"str_split", []types.VType{str, str}, []types.VType{stringArray()}},
		{"json_route", []types.VType{str, str}, []types.VType{str, resultT}},
		{"yov_require", []types.VType{i, i}, []types.VType{resultT}},
		{"yov_require_min", []types.VType{i, i}, []types.VType{resultT}},
		{"yov_require_max", []types.VType{i, i}, []types.VType{resultT}},
		{"ask_yesno", []types.VType{str}, []types.VType{b}},
		{"exists", []types.VType{str}, []types.VType{b}},
		{"create_directory", []types.VType{str}, []types.VType{resultT}},
		{"delete_directory", []types.VType{str}, []types.VType{resultT}},
		{"copy_directory", []types.VType{str, str}, []types.VType{resultT}},
		{"move_directory", []types.VType{str, str}, []types.VType{resultT}},
		{"copy_file", []types.VType{str, str}, []types.VType{resultT}},
		{"move_file", []types.VType{str, str}, []types.VType{resultT}},
		{"delete_file", []types.VType{str}, []types.VType{resultT}},
		{"write_entire_file", []types.VType{str, str}, []types.VType{resultT}},
		{"read_entire_file", []types.VType{str}, []types.VType{str, resultT}},
		{"file_get_info", []types.VType{str}, []types.VType{fileInfoT, resultT}},
		{"dir_get_files_info", []types.VType{str}, []types.VType{fileInfoArray(fileInfoT), resultT}},
		{"msvc_import_env_x64", nil, []types.VType{resultT}},
		{"msvc_import_env_x86", nil, []types.VType{resultT}},
	}
}

// seedIntrinsics registers every intrinsic as a FunctionDefinition so
// sema.buildCall's b.Defs.Function(name) lookup and its param-type
// coercion/return-type typing succeed for intrinsic calls exactly as they
// would for a user-defined function.
func seedIntrinsics(dt *defs.Table) []Diagnostic {
	var diags []Diagnostic
	resultT, _ := dt.Types.Lookup("Result")
	fileInfoT, _ := dt.Types.Lookup("FileInfo")
	for _, sig := range intrinsicSignatures(resultT, fileInfoT) {
		fd, err := dt.IdentifyFunction(sig.name, nil, 0)
		if err != nil {
			diags = append(diags, Diagnostic{Msg: err.Error()})
			continue
		}
		fd.DefineFunction(paramsOf(sig.params), paramsOf(sig.returns))
		fd.Resolve(nil, true)
	}
	return diags
}

func paramsOf(ts []types.VType) []defs.Param {
	out := make([]defs.Param, len(ts))
	for i, t := range ts {
		out[i] = defs.Param{Name: "_", Type: t}
	}
	return out
}
