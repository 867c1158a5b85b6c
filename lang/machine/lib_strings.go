package machine

// buildStringsLib constructs the locked `strings` library named in §6:
// decomposition into single-character Strings, code-point conversion, and
// slicing.
func buildStringsLib() *Object {
	return buildLockedObject([]libEntry{
		{"chars", native("strings.chars", stringsChars)},
		{"code_point", native("strings.code_point", stringsCodePoint)},
		{"from_code_point", native("strings.from_code_point", stringsFromCodePoint)},
		{"slice", native("strings.slice", stringsSlice)},
	})
}

func asString(v Value) (String, error) {
	s, ok := v.(String)
	if !ok {
		return String{}, invalidTypeErr("string", describeType(v))
	}
	return s, nil
}

// stringsChars splits s into an Array of its individual single-rune
// Strings, one per code point.
func stringsChars(_ *Context, _ *ProgramState, args []Value) (Value, error) {
	s, err := asString(arg(args, 0))
	if err != nil {
		return nil, err
	}
	out := make([]Value, s.Len())
	for i := 0; i < s.Len(); i++ {
		out[i] = s.At(i)
	}
	return NewArray(out), nil
}

func stringsCodePoint(_ *Context, _ *ProgramState, args []Value) (Value, error) {
	s, err := asString(arg(args, 0))
	if err != nil {
		return nil, err
	}
	if s.Len() != 1 {
		return nil, newErrMsg(IllegalFunctionArguments, "expected a single-character string")
	}
	r := []rune(s.String())[0]
	return Int(r), nil
}

func stringsFromCodePoint(_ *Context, _ *ProgramState, args []Value) (Value, error) {
	v, ok := arg(args, 0).(Int)
	if !ok {
		return nil, invalidTypeErr("int", describeType(arg(args, 0)))
	}
	return newStringFromRunes([]rune{rune(v)}), nil
}

func stringsSlice(_ *Context, _ *ProgramState, args []Value) (Value, error) {
	s, err := asString(arg(args, 0))
	if err != nil {
		return nil, err
	}
	start, end, err := sliceBounds(arg(args, 1), arg(args, 2), s.Len())
	if err != nil {
		return nil, err
	}
	return s.Slice(start, end), nil
}
