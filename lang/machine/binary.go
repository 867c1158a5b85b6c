package machine

import "math"

// binaryAdd implements ADD: string and array concatenation, plus Int/Float
// addition where the right operand must match the left operand's type.
func binaryAdd(x, y Value) (Value, error) {
	switch xv := x.(type) {
	case Int:
		yv, ok := y.(Int)
		if !ok {
			return nil, invalidTypeErr("int", describeType(y))
		}
		return xv + yv, nil
	case Float:
		yv, ok := y.(Float)
		if !ok {
			return nil, invalidTypeErr("float", describeType(y))
		}
		return xv + yv, nil
	case String:
		yv, ok := y.(String)
		if !ok {
			return nil, invalidTypeErr("string", describeType(y))
		}
		return xv.Concat(yv), nil
	case *Array:
		yv, ok := y.(*Array)
		if !ok {
			return nil, invalidTypeErr("array", describeType(y))
		}
		return xv.Concat(yv), nil
	default:
		return nil, invalidTypeErr("int, float, string or array", describeType(x))
	}
}

func numericBinary(x, y Value, intOp func(a, b int64) (int64, error), floatOp func(a, b float64) float64) (Value, error) {
	switch xv := x.(type) {
	case Int:
		yv, ok := y.(Int)
		if !ok {
			return nil, invalidTypeErr("int", describeType(y))
		}
		r, err := intOp(int64(xv), int64(yv))
		if err != nil {
			return nil, err
		}
		return Int(r), nil
	case Float:
		yv, ok := y.(Float)
		if !ok {
			return nil, invalidTypeErr("float", describeType(y))
		}
		return Float(floatOp(float64(xv), float64(yv))), nil
	default:
		return nil, invalidTypeErr("int or float", describeType(x))
	}
}

func binarySub(x, y Value) (Value, error) {
	return numericBinary(x, y,
		func(a, b int64) (int64, error) { return a - b, nil },
		func(a, b float64) float64 { return a - b })
}

func binaryMul(x, y Value) (Value, error) {
	return numericBinary(x, y,
		func(a, b int64) (int64, error) { return a * b, nil },
		func(a, b float64) float64 { return a * b })
}

func binaryDiv(x, y Value) (Value, error) {
	return numericBinary(x, y,
		func(a, b int64) (int64, error) {
			if b == 0 {
				return 0, newErr(DivideByZeroError)
			}
			return a / b, nil
		},
		func(a, b float64) float64 { return a / b })
}

func binaryMod(x, y Value) (Value, error) {
	return numericBinary(x, y,
		func(a, b int64) (int64, error) {
			if b == 0 {
				return 0, newErr(DivideByZeroError)
			}
			return a % b, nil
		},
		func(a, b float64) float64 { return math.Mod(a, b) })
}

func unaryNeg(x Value) (Value, error) {
	switch xv := x.(type) {
	case Int:
		return -xv, nil
	case Float:
		return -xv, nil
	default:
		return nil, invalidTypeErr("int or float", describeType(x))
	}
}

func unaryNot(x Value) (Value, error) {
	return Bool(!Truth(x)), nil
}

func unaryBinv(x Value) (Value, error) {
	xv, ok := x.(Int)
	if !ok {
		return nil, invalidTypeErr("int", describeType(x))
	}
	return ^xv, nil
}

func bitwiseBinary(x, y Value, op func(a, b int64) int64) (Value, error) {
	xv, ok := x.(Int)
	if !ok {
		return nil, invalidTypeErr("int", describeType(x))
	}
	yv, ok := y.(Int)
	if !ok {
		return nil, invalidTypeErr("int", describeType(y))
	}
	return Int(op(int64(xv), int64(yv))), nil
}

func binaryBand(x, y Value) (Value, error) {
	return bitwiseBinary(x, y, func(a, b int64) int64 { return a & b })
}

func binaryBor(x, y Value) (Value, error) {
	return bitwiseBinary(x, y, func(a, b int64) int64 { return a | b })
}

func binaryBxor(x, y Value) (Value, error) {
	return bitwiseBinary(x, y, func(a, b int64) int64 { return a ^ b })
}

func binaryShl(x, y Value) (Value, error) {
	return bitwiseBinary(x, y, func(a, b int64) int64 { return a << uint64(b) })
}

// binaryShr implements SHR's dual role: an arithmetic shift-right on Int
// operands, or (when the right operand is a Closure applied to an Array
// left operand) a filter-map: invoke the closure per element, discarding
// Null results and collecting the rest into a new Array.
func binaryShr(ctx *Context, x, y Value) (Value, error) {
	if arr, ok := x.(*Array); ok {
		if cl, ok := y.(Callable); ok {
			out := make([]Value, 0, arr.Len())
			for i, elem := range arr.Elems() {
				r, err := Call(ctx, cl, []Value{elem, Int(i)})
				if err != nil {
					return nil, err
				}
				if _, isNull := r.(NullType); isNull {
					continue
				}
				out = append(out, r)
			}
			return NewArray(out), nil
		}
	}
	return bitwiseBinary(x, y, func(a, b int64) int64 { return a >> uint64(b) })
}

// Truth reports the boolean truthiness of v, used by JT/JF and the NOT
// operator: Null and Bool(false) are falsy, everything else (including
// Bool(true)) is truthy.
func Truth(v Value) bool {
	switch vv := v.(type) {
	case NullType:
		return false
	case Bool:
		return bool(vv)
	default:
		return true
	}
}
