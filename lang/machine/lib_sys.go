package machine

import "path/filepath"

// buildSysLib constructs the locked `sys` library: process control
// (exit), container locking (locked_copy), the library registry
// (add_lib/get_libs), source location introspection (script_path/
// script_directory), and the optional frame-reflection helpers (call,
// arguments, this, super) named in §6.
func buildSysLib() *Object {
	return buildLockedObject([]libEntry{
		{"exit", native("sys.exit", sysExit)},
		{"locked_copy", native("sys.locked_copy", sysLockedCopy)},
		{"add_lib", native("sys.add_lib", sysAddLib)},
		{"get_libs", native("sys.get_libs", sysGetLibs)},
		{"script_path", native("sys.script_path", sysScriptPath)},
		{"script_directory", native("sys.script_directory", sysScriptDirectory)},
		{"call", native("sys.call", sysCall)},
		{"arguments", native("sys.arguments", sysArguments)},
		{"this", native("sys.this", sysThis)},
		{"super", native("sys.super", sysSuper)},
	})
}

func sysExit(_ *Context, _ *ProgramState, args []Value) (Value, error) {
	code, ok := arg(args, 0).(Int)
	if !ok {
		return nil, invalidTypeErr("int", describeType(arg(args, 0)))
	}
	return nil, ExitError(int(code) & 0xff)
}

func sysLockedCopy(_ *Context, _ *ProgramState, args []Value) (Value, error) {
	switch v := arg(args, 0).(type) {
	case *Object:
		cp := v.ShallowCopy()
		cp.Lock()
		return cp, nil
	case *Array:
		elems := append([]Value(nil), v.Elems()...)
		cp := NewArray(elems)
		cp.Lock()
		return cp, nil
	default:
		return nil, invalidTypeErr("object or array", describeType(v))
	}
}

func sysAddLib(ctx *Context, _ *ProgramState, args []Value) (Value, error) {
	name, ok := arg(args, 0).(String)
	if !ok {
		return nil, invalidTypeErr("string", describeType(arg(args, 0)))
	}
	if err := ctx.registerLibrary(name.String(), arg(args, 1)); err != nil {
		return nil, err
	}
	return Null, nil
}

func sysGetLibs(ctx *Context, _ *ProgramState, _ []Value) (Value, error) {
	out := make([]Value, 0, len(ctx.Libraries))
	for name, v := range ctx.Libraries {
		out = append(out, NewArray([]Value{NewString(name), v}))
	}
	return NewArray(out), nil
}

func sysScriptPath(ctx *Context, _ *ProgramState, _ []Value) (Value, error) {
	if sp := ctx.currentSourcePath(); sp != "" {
		return NewString(sp), nil
	}
	return Null, nil
}

func sysScriptDirectory(ctx *Context, _ *ProgramState, _ []Value) (Value, error) {
	if sp := ctx.currentSourcePath(); sp != "" {
		return NewString(filepath.Dir(sp)), nil
	}
	return Null, nil
}

func sysCall(ctx *Context, _ *ProgramState, args []Value) (Value, error) {
	fn := arg(args, 0)
	arr, ok := arg(args, 1).(*Array)
	if !ok {
		return nil, invalidTypeErr("array", describeType(arg(args, 1)))
	}
	return Call(ctx, fn, append([]Value(nil), arr.Elems()...))
}

func sysArguments(_ *Context, ps *ProgramState, _ []Value) (Value, error) {
	if ps == nil {
		return NewArray(nil), nil
	}
	return NewArray(append([]Value(nil), ps.Args...)), nil
}

func sysThis(_ *Context, ps *ProgramState, _ []Value) (Value, error) {
	if ps == nil {
		return Null, nil
	}
	return ps.Variables.This, nil
}

func sysSuper(_ *Context, ps *ProgramState, args []Value) (Value, error) {
	if ps == nil {
		return Null, nil
	}
	level := 0
	if v := arg(args, 0); v != Null {
		lv, ok := v.(Int)
		if !ok {
			return nil, invalidTypeErr("int", describeType(v))
		}
		level = int(lv)
	}
	anc := ps.Variables.Ancestor(level)
	if anc == nil {
		return nil, newErr(SuperDoesNotExist)
	}
	return anc.This, nil
}
