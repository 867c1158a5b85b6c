package machine

import "strconv"

// buildTypesLib constructs the locked `types` library: type introspection,
// the string conversions, numeric conversions, the require() type guard,
// and character-code <-> string conversions named in §6.
func buildTypesLib() *Object {
	return buildLockedObject([]libEntry{
		{"type_name", native("types.type_name", typesTypeName)},
		{"to_string", native("types.to_string", typesToString)},
		{"int_to_float", native("types.int_to_float", typesIntToFloat)},
		{"float_to_int", native("types.float_to_int", typesFloatToInt)},
		{"string_to_int", native("types.string_to_int", typesStringToInt)},
		{"string_to_float", native("types.string_to_float", typesStringToFloat)},
		{"require", native("types.require", typesRequire)},
		{"codes_to_chars", native("types.codes_to_chars", typesCodesToChars)},
		{"chars_to_codes", native("types.chars_to_codes", typesCharsToCodes)},
	})
}

func typesTypeName(_ *Context, _ *ProgramState, args []Value) (Value, error) {
	return NewString(typeNameOf(arg(args, 0))), nil
}

func typesToString(_ *Context, _ *ProgramState, args []Value) (Value, error) {
	return NewString(arg(args, 0).String()), nil
}

func typesIntToFloat(_ *Context, _ *ProgramState, args []Value) (Value, error) {
	v, ok := arg(args, 0).(Int)
	if !ok {
		return nil, invalidTypeErr("int", describeType(arg(args, 0)))
	}
	return Float(v), nil
}

func typesFloatToInt(_ *Context, _ *ProgramState, args []Value) (Value, error) {
	v, ok := arg(args, 0).(Float)
	if !ok {
		return nil, invalidTypeErr("float", describeType(arg(args, 0)))
	}
	return Int(v), nil
}

func typesStringToInt(_ *Context, _ *ProgramState, args []Value) (Value, error) {
	s, ok := arg(args, 0).(String)
	if !ok {
		return nil, invalidTypeErr("string", describeType(arg(args, 0)))
	}
	n, err := strconv.ParseInt(s.String(), 10, 64)
	if err != nil {
		return nil, newErrMsg(IllegalFunctionArguments, "not an integer: "+s.String())
	}
	return Int(n), nil
}

func typesStringToFloat(_ *Context, _ *ProgramState, args []Value) (Value, error) {
	s, ok := arg(args, 0).(String)
	if !ok {
		return nil, invalidTypeErr("string", describeType(arg(args, 0)))
	}
	f, err := strconv.ParseFloat(s.String(), 64)
	if err != nil {
		return nil, newErrMsg(IllegalFunctionArguments, "not a float: "+s.String())
	}
	return Float(f), nil
}

// typesRequire returns Null if v's type name matches any of names, else an
// InvalidType error naming the first expected name given.
func typesRequire(_ *Context, _ *ProgramState, args []Value) (Value, error) {
	if len(args) == 0 {
		return Null, nil
	}
	v := args[0]
	got := typeNameOf(v)
	for _, n := range args[1:] {
		name, ok := n.(String)
		if !ok {
			return nil, invalidTypeErr("string", describeType(n))
		}
		if name.String() == got {
			return Null, nil
		}
	}
	expected := ""
	if len(args) > 1 {
		if name, ok := args[1].(String); ok {
			expected = name.String()
		}
	}
	return nil, invalidTypeErr(expected, got)
}

// typesCodesToChars builds a String from an Array of Unicode code-point
// Ints.
func typesCodesToChars(_ *Context, _ *ProgramState, args []Value) (Value, error) {
	arr, ok := arg(args, 0).(*Array)
	if !ok {
		return nil, invalidTypeErr("array", describeType(arg(args, 0)))
	}
	runes := make([]rune, 0, arr.Len())
	for _, e := range arr.Elems() {
		iv, ok := e.(Int)
		if !ok {
			return nil, invalidTypeErr("int", describeType(e))
		}
		runes = append(runes, rune(iv))
	}
	return newStringFromRunes(runes), nil
}

// typesCharsToCodes decomposes a String into an Array of Unicode
// code-point Ints.
func typesCharsToCodes(_ *Context, _ *ProgramState, args []Value) (Value, error) {
	s, ok := arg(args, 0).(String)
	if !ok {
		return nil, invalidTypeErr("string", describeType(arg(args, 0)))
	}
	out := make([]Value, s.Len())
	for i := 0; i < s.Len(); i++ {
		r := []rune(s.At(i).String())[0]
		out[i] = Int(r)
	}
	return NewArray(out), nil
}
