package machine

import "math"

// registerStandardLibraries populates c.Libraries with the minimum-surface
// standard libraries named in §6: `G`, `null`/`true`/`false`/`nan`/`inf`,
// `sys`, `types`, `arrays`, `strings`, and `objects`. All library objects
// except `G` are locked immediately after being populated.
func registerStandardLibraries(c *Context) {
	c.Libraries["G"] = NewObject()

	c.Libraries["null"] = Null
	c.Libraries["true"] = Bool(true)
	c.Libraries["false"] = Bool(false)
	c.Libraries["nan"] = Float(math.NaN())
	c.Libraries["inf"] = Float(math.Inf(1))

	c.Libraries["sys"] = buildSysLib()
	c.Libraries["types"] = buildTypesLib()
	c.Libraries["arrays"] = buildArraysLib()
	c.Libraries["strings"] = buildStringsLib()
	c.Libraries["objects"] = buildObjectsLib()
}

// native is a small helper constructing a locked-library-ready *NativeFunc.
func native(name string, fn func(ctx *Context, ps *ProgramState, args []Value) (Value, error)) *NativeFunc {
	return &NativeFunc{FuncName: name, Fn: fn}
}

// arg returns args[i] or Null if out of range, the same lenient indexing
// PUSH_ARG gives closures, so native functions accept short argument lists.
func arg(args []Value, i int) Value {
	if i < 0 || i >= len(args) {
		return Null
	}
	return args[i]
}

// libEntry is one name/value pair of a library object under construction;
// buildLockedObject preserves this slice's order so a locked library's own
// objects.keys() is deterministic rather than dependent on map iteration.
type libEntry struct {
	name string
	v    Value
}

func buildLockedObject(entries []libEntry) *Object {
	o := NewObject()
	for _, e := range entries {
		_ = o.Set(e.name, e.v)
	}
	o.Lock()
	return o
}
