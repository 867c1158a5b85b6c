package machine

// equals implements CMP_EQ/CMP_NE's total equality: Null == Null,
// primitives compare by value, containers/closures/natives compare by
// identity, and any cross-type comparison is false (§4.E, §8).
func equals(x, y Value) bool {
	switch xv := x.(type) {
	case NullType:
		_, ok := y.(NullType)
		return ok
	case Bool:
		yv, ok := y.(Bool)
		return ok && xv == yv
	case Int:
		yv, ok := y.(Int)
		return ok && xv == yv
	case Float:
		yv, ok := y.(Float)
		return ok && xv == yv
	case String:
		yv, ok := y.(String)
		return ok && xv.String() == yv.String()
	case *Object:
		yv, ok := y.(*Object)
		return ok && xv == yv
	case *Array:
		yv, ok := y.(*Array)
		return ok && xv == yv
	case *Closure:
		yv, ok := y.(*Closure)
		return ok && xv == yv
	case *NativeFunc:
		yv, ok := y.(*NativeFunc)
		return ok && xv == yv
	default:
		return false
	}
}

// ordered compares x and y for CMP_GT/LT, demanding matching numeric or
// string types; returns (cmp, nil) where cmp < 0, == 0, > 0 matches x
// versus y, or an error if the types do not support ordering together.
func ordered(x, y Value) (int, error) {
	switch xv := x.(type) {
	case Int:
		yv, ok := y.(Int)
		if !ok {
			return 0, invalidTypeErr("int", describeType(y))
		}
		switch {
		case xv < yv:
			return -1, nil
		case xv > yv:
			return 1, nil
		default:
			return 0, nil
		}
	case Float:
		yv, ok := y.(Float)
		if !ok {
			return 0, invalidTypeErr("float", describeType(y))
		}
		switch {
		case xv < yv:
			return -1, nil
		case xv > yv:
			return 1, nil
		default:
			return 0, nil
		}
	case String:
		yv, ok := y.(String)
		if !ok {
			return 0, invalidTypeErr("string", describeType(y))
		}
		xs, ys := xv.String(), yv.String()
		switch {
		case xs < ys:
			return -1, nil
		case xs > ys:
			return 1, nil
		default:
			return 0, nil
		}
	default:
		return 0, invalidTypeErr("int, float or string", describeType(x))
	}
}

func cmpGt(x, y Value) (Value, error) {
	c, err := ordered(x, y)
	if err != nil {
		return nil, err
	}
	return Bool(c > 0), nil
}

func cmpLt(x, y Value) (Value, error) {
	c, err := ordered(x, y)
	if err != nil {
		return nil, err
	}
	return Bool(c < 0), nil
}

// cmpGe and cmpLe compute directly from ordered rather than negating
// cmpLt/cmpGt, so a type mismatch surfaces the same error either way.
func cmpGe(x, y Value) (Value, error) {
	c, err := ordered(x, y)
	if err != nil {
		return nil, err
	}
	return Bool(c >= 0), nil
}

func cmpLe(x, y Value) (Value, error) {
	c, err := ordered(x, y)
	if err != nil {
		return nil, err
	}
	return Bool(c <= 0), nil
}
