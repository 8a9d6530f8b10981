package runtime

import "github.com/yov-lang/yov/internal/types"

// The four ambient globals spec.md §6.3 lists are ordinary structs from
// the runtime's point of view, addressed by BaseName exactly like
// resultType/fileInfoType — the compiled program's prelude (internal/
// compiler's seedAmbientGlobals) declares the matching YovInfo/OS/Context/
// CallsContext struct types so member access (`yov.version`,
// `context.cd`, ...) lowers through the ordinary struct-member UChild path
// instead of needing any Any-typed property special-casing.
var (
	yovInfoType      = types.VType{Kind: types.KindStruct, BaseName: "YovInfo"}
	osType           = types.VType{Kind: types.KindStruct, BaseName: "OS"}
	contextType      = types.VType{Kind: types.KindStruct, BaseName: "Context"}
	callsContextType = types.VType{Kind: types.KindStruct, BaseName: "CallsContext"}
)

// NewYovInfo allocates the `yov` ambient global (member order
// path/version/major/minor/revision, spec.md §6.3).
func (m *Machine) NewYovInfo(path, version string, major, minor, revision int) Reference {
	members := []Reference{
		m.NewString(path), m.NewString(version),
		m.NewInt(int64(major)), m.NewInt(int64(minor)), m.NewInt(int64(revision)),
	}
	for _, e := range members {
		m.Heap.incref(e.Parent)
	}
	return whole(m.Heap.Alloc(yovInfoType, members), yovInfoType)
}

// NewOS allocates the `os` ambient global (member order kind).
func (m *Machine) NewOS(kind string) Reference {
	members := []Reference{m.NewString(kind)}
	for _, e := range members {
		m.Heap.incref(e.Parent)
	}
	return whole(m.Heap.Alloc(osType, members), osType)
}

// NewContext allocates the `context` ambient global (member order
// cd/script_dir/caller_dir/args/types). `types` is a placeholder Type
// value until a script-facing type registry is specified; it is carried
// so the field exists and typechecks, not because any intrinsic reads it
// yet.
func (m *Machine) NewContext(cd, scriptDir, callerDir string, args []string) Reference {
	argRefs := make([]Reference, len(args))
	for i, a := range args {
		argRefs[i] = m.NewString(a)
	}
	members := []Reference{
		m.NewString(cd), m.NewString(scriptDir), m.NewString(callerDir),
		m.NewArray(types.String(), argRefs), m.NewType(types.Void),
	}
	for _, e := range members {
		m.Heap.incref(e.Parent)
	}
	return whole(m.Heap.Alloc(contextType, members), contextType)
}

// NewCallsContext allocates the `calls` ambient global (member order
// redirect_stdout).
func (m *Machine) NewCallsContext(redirectStdout bool) Reference {
	members := []Reference{m.NewBool(redirectStdout)}
	for _, e := range members {
		m.Heap.incref(e.Parent)
	}
	return whole(m.Heap.Alloc(callsContextType, members), callsContextType)
}
