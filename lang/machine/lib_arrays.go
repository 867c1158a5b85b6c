package machine

// buildArraysLib constructs the locked `arrays` library named in §6:
// mutation (push/pop/splice), read-only derivation (slice/
// find_first_index/find_last_index), and the three closure-driven
// iteration forms (for_each/filter/map), each invoking its closure with
// (element, index).
func buildArraysLib() *Object {
	return buildLockedObject([]libEntry{
		{"push", native("arrays.push", arraysPush)},
		{"pop", native("arrays.pop", arraysPop)},
		{"splice", native("arrays.splice", arraysSplice)},
		{"slice", native("arrays.slice", arraysSlice)},
		{"find_first_index", native("arrays.find_first_index", arraysFindFirstIndex)},
		{"find_last_index", native("arrays.find_last_index", arraysFindLastIndex)},
		{"for_each", native("arrays.for_each", arraysForEach)},
		{"filter", native("arrays.filter", arraysFilter)},
		{"map", native("arrays.map", arraysMap)},
	})
}

func asArray(v Value) (*Array, error) {
	arr, ok := v.(*Array)
	if !ok {
		return nil, invalidTypeErr("array", describeType(v))
	}
	return arr, nil
}

func arraysPush(_ *Context, _ *ProgramState, args []Value) (Value, error) {
	arr, err := asArray(arg(args, 0))
	if err != nil {
		return nil, err
	}
	if err := arr.Push(arg(args, 1)); err != nil {
		return nil, err
	}
	return arr, nil
}

func arraysPop(_ *Context, _ *ProgramState, args []Value) (Value, error) {
	arr, err := asArray(arg(args, 0))
	if err != nil {
		return nil, err
	}
	return arr.Pop()
}

// arraysSplice implements `splice(arr, start, delCount, ...inserted)`: it
// removes delCount elements starting at start and inserts the remaining
// arguments in their place, returning the removed elements as a new Array.
func arraysSplice(_ *Context, _ *ProgramState, args []Value) (Value, error) {
	arr, err := asArray(arg(args, 0))
	if err != nil {
		return nil, err
	}
	if arr.Locked() {
		return nil, newErr(ObjectLocked)
	}
	startV, ok := arg(args, 1).(Int)
	if !ok {
		return nil, invalidTypeErr("int", describeType(arg(args, 1)))
	}
	delV, ok := arg(args, 2).(Int)
	if !ok {
		return nil, invalidTypeErr("int", describeType(arg(args, 2)))
	}
	start := int(startV)
	del := int(delV)
	if start < 0 || start > arr.Len() || del < 0 || start+del > arr.Len() {
		return nil, newErr(ArrayIndexOutOfBound)
	}
	removed := append([]Value(nil), arr.Elems()[start:start+del]...)
	inserted := append([]Value(nil), args[3:]...)
	arr.SpliceRange(start, start+del, inserted)
	return NewArray(removed), nil
}

func arraysSlice(_ *Context, _ *ProgramState, args []Value) (Value, error) {
	arr, err := asArray(arg(args, 0))
	if err != nil {
		return nil, err
	}
	s, e, err := sliceBounds(arg(args, 1), arg(args, 2), arr.Len())
	if err != nil {
		return nil, err
	}
	return arr.Slice(s, e), nil
}

func arraysFindFirstIndex(ctx *Context, _ *ProgramState, args []Value) (Value, error) {
	arr, err := asArray(arg(args, 0))
	if err != nil {
		return nil, err
	}
	cl, ok := arg(args, 1).(Callable)
	if !ok {
		return nil, invalidTypeErr("closure or native", describeType(arg(args, 1)))
	}
	for i, e := range arr.Elems() {
		r, err := Call(ctx, cl, []Value{e, Int(i)})
		if err != nil {
			return nil, err
		}
		if Truth(r) {
			return Int(i), nil
		}
	}
	return Int(-1), nil
}

func arraysFindLastIndex(ctx *Context, _ *ProgramState, args []Value) (Value, error) {
	arr, err := asArray(arg(args, 0))
	if err != nil {
		return nil, err
	}
	cl, ok := arg(args, 1).(Callable)
	if !ok {
		return nil, invalidTypeErr("closure or native", describeType(arg(args, 1)))
	}
	elems := arr.Elems()
	for i := len(elems) - 1; i >= 0; i-- {
		r, err := Call(ctx, cl, []Value{elems[i], Int(i)})
		if err != nil {
			return nil, err
		}
		if Truth(r) {
			return Int(i), nil
		}
	}
	return Int(-1), nil
}

func arraysForEach(ctx *Context, _ *ProgramState, args []Value) (Value, error) {
	arr, err := asArray(arg(args, 0))
	if err != nil {
		return nil, err
	}
	cl, ok := arg(args, 1).(Callable)
	if !ok {
		return nil, invalidTypeErr("closure or native", describeType(arg(args, 1)))
	}
	for i, e := range arr.Elems() {
		if _, err := Call(ctx, cl, []Value{e, Int(i)}); err != nil {
			return nil, err
		}
	}
	return Null, nil
}

func arraysFilter(ctx *Context, _ *ProgramState, args []Value) (Value, error) {
	arr, err := asArray(arg(args, 0))
	if err != nil {
		return nil, err
	}
	cl, ok := arg(args, 1).(Callable)
	if !ok {
		return nil, invalidTypeErr("closure or native", describeType(arg(args, 1)))
	}
	out := make([]Value, 0, arr.Len())
	for i, e := range arr.Elems() {
		r, err := Call(ctx, cl, []Value{e, Int(i)})
		if err != nil {
			return nil, err
		}
		if Truth(r) {
			out = append(out, e)
		}
	}
	return NewArray(out), nil
}

func arraysMap(ctx *Context, _ *ProgramState, args []Value) (Value, error) {
	arr, err := asArray(arg(args, 0))
	if err != nil {
		return nil, err
	}
	cl, ok := arg(args, 1).(Callable)
	if !ok {
		return nil, invalidTypeErr("closure or native", describeType(arg(args, 1)))
	}
	out := make([]Value, arr.Len())
	for i, e := range arr.Elems() {
		r, err := Call(ctx, cl, []Value{e, Int(i)})
		if err != nil {
			return nil, err
		}
		out[i] = r
	}
	return NewArray(out), nil
}
