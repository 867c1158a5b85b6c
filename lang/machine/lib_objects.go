package machine

// buildObjectsLib constructs the locked `objects` library named in §6:
// entries/keys/values, all in the Object's deterministic insertion order.
func buildObjectsLib() *Object {
	return buildLockedObject([]libEntry{
		{"entries", native("objects.entries", objectsEntries)},
		{"keys", native("objects.keys", objectsKeys)},
		{"values", native("objects.values", objectsValues)},
	})
}

func asObject(v Value) (*Object, error) {
	o, ok := v.(*Object)
	if !ok {
		return nil, invalidTypeErr("object", describeType(v))
	}
	return o, nil
}

func objectsEntries(_ *Context, _ *ProgramState, args []Value) (Value, error) {
	o, err := asObject(arg(args, 0))
	if err != nil {
		return nil, err
	}
	keys := o.Keys()
	out := make([]Value, 0, len(keys))
	for _, k := range keys {
		v, _ := o.Get(k)
		out = append(out, NewArray([]Value{NewString(k), v}))
	}
	return NewArray(out), nil
}

func objectsKeys(_ *Context, _ *ProgramState, args []Value) (Value, error) {
	o, err := asObject(arg(args, 0))
	if err != nil {
		return nil, err
	}
	keys := o.Keys()
	out := make([]Value, len(keys))
	for i, k := range keys {
		out[i] = NewString(k)
	}
	return NewArray(out), nil
}

func objectsValues(_ *Context, _ *ProgramState, args []Value) (Value, error) {
	o, err := asObject(arg(args, 0))
	if err != nil {
		return nil, err
	}
	keys := o.Keys()
	out := make([]Value, len(keys))
	for i, k := range keys {
		out[i], _ = o.Get(k)
	}
	return NewArray(out), nil
}
