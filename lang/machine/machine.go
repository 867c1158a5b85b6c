package machine

import (
	"fmt"

	"github.com/mna/cute/lang/bytecode"
)

// run is the fetch/dispatch loop: it executes fn's bytecode against a
// fresh operand stack, using ps.Variables as the current scope and
// ps.Args as the argument vector, until a RETURN (explicit or the
// implicit trailing `PUSH_SELF; RETURN` every function ends with) yields
// a result or an error unwinds the call.
func run(ctx *Context, ps *ProgramState, bundle *bytecode.Bundle, fn *bytecode.Func) (Value, error) {
	code := fn.Code
	stack := make([]Value, 0, 8)
	pc := 0

	pop := func() (Value, error) {
		if len(stack) == 0 {
			return nil, newErr(BadStack)
		}
		v := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		return v, nil
	}
	popN := func(n int) ([]Value, error) {
		if len(stack) < n {
			return nil, newErr(BadStack)
		}
		out := make([]Value, n)
		copy(out, stack[len(stack)-n:])
		stack = stack[:len(stack)-n]
		return out, nil
	}
	push := func(v Value) { stack = append(stack, v) }
	dupPre := func(n int) error {
		if len(stack) < n {
			return newErr(BadStack)
		}
		v := stack[len(stack)-1]
		idx := len(stack) - n
		stack = append(stack, Null)
		copy(stack[idx+1:], stack[idx:len(stack)-1])
		stack[idx] = v
		return nil
	}
	constStr := func(idx byte) (string, error) {
		entries := bundle.Pool.Entries()
		if int(idx) >= len(entries) {
			return "", newErr(ConstantIndexOutOfBound)
		}
		c := entries[idx]
		if c.Kind != bytecode.ConstString {
			return "", newErr(ConstantNotString)
		}
		return c.Str, nil
	}
	constValue := func(idx byte) (Value, error) {
		entries := bundle.Pool.Entries()
		if int(idx) >= len(entries) {
			return nil, newErr(ConstantIndexOutOfBound)
		}
		c := entries[idx]
		switch c.Kind {
		case bytecode.ConstInt:
			return Int(c.Int), nil
		case bytecode.ConstFloat:
			return Float(c.Float), nil
		case bytecode.ConstString:
			return NewString(c.Str), nil
		default:
			return nil, newErr(ConstantIndexOutOfBound)
		}
	}

	for {
		if err := ctx.checkBudget(); err != nil {
			return nil, err
		}
		if pc >= len(code) {
			return nil, newErr(PCIndexOutOfBound)
		}
		ps.pc = pc
		op := bytecode.Op(code[pc])
		pc++
		info, ok := bytecode.Lookup(op)
		if !ok {
			return nil, newErr(UnknownInstruction)
		}
		var operand byte
		var operandPos int
		if info.OperandSz == 1 {
			if pc >= len(code) {
				return nil, newErr(PCIndexOutOfBound)
			}
			operandPos = pc
			operand = code[pc]
			pc++
		}

		switch op {
		case bytecode.LOAD:
			name, err := constStr(operand)
			if err != nil {
				return nil, err
			}
			push(ps.Variables.Load(name))

		case bytecode.LOAD_SUPER:
			name, err := constStr(operand)
			if err != nil {
				return nil, err
			}
			parent := ps.Variables.Parent
			if parent == nil {
				return nil, newErr(SuperDoesNotExist)
			}
			push(parent.LoadOwn(name))

		case bytecode.LOAD_FIELD:
			name, err := constStr(operand)
			if err != nil {
				return nil, err
			}
			recv, err := pop()
			if err != nil {
				return nil, err
			}
			obj, ok := recv.(*Object)
			if !ok {
				return nil, invalidTypeErr("object", describeType(recv))
			}
			v, ok := obj.Get(name)
			if !ok {
				v = Null
			}
			push(v)

		case bytecode.LOAD_ITEM:
			vals, err := popN(2)
			if err != nil {
				return nil, err
			}
			v, err := loadItem(vals[0], vals[1])
			if err != nil {
				return nil, err
			}
			push(v)

		case bytecode.LOAD_SLICE:
			vals, err := popN(3)
			if err != nil {
				return nil, err
			}
			v, err := loadSlice(vals[0], vals[1], vals[2])
			if err != nil {
				return nil, err
			}
			push(v)

		case bytecode.STORE:
			name, err := constStr(operand)
			if err != nil {
				return nil, err
			}
			v, err := pop()
			if err != nil {
				return nil, err
			}
			if err := ps.Variables.Store(name, v); err != nil {
				return nil, err
			}

		case bytecode.STORE_SUPER:
			name, err := constStr(operand)
			if err != nil {
				return nil, err
			}
			v, err := pop()
			if err != nil {
				return nil, err
			}
			parent := ps.Variables.Parent
			if parent == nil {
				return nil, newErr(SuperDoesNotExist)
			}
			if err := parent.StoreOwn(name, v); err != nil {
				return nil, err
			}

		case bytecode.STORE_FIELD:
			name, err := constStr(operand)
			if err != nil {
				return nil, err
			}
			vals, err := popN(2)
			if err != nil {
				return nil, err
			}
			obj, ok := vals[0].(*Object)
			if !ok {
				return nil, invalidTypeErr("object", describeType(vals[0]))
			}
			if err := obj.Set(name, vals[1]); err != nil {
				return nil, err
			}

		case bytecode.STORE_ITEM:
			vals, err := popN(3)
			if err != nil {
				return nil, err
			}
			if err := storeItem(vals[0], vals[1], vals[2]); err != nil {
				return nil, err
			}

		case bytecode.STORE_SLICE:
			vals, err := popN(4)
			if err != nil {
				return nil, err
			}
			if err := storeSlice(vals[0], vals[1], vals[2], vals[3]); err != nil {
				return nil, err
			}

		case bytecode.DUP:
			if len(stack) == 0 {
				return nil, newErr(BadStack)
			}
			push(stack[len(stack)-1])

		case bytecode.DUP_PRE2:
			if err := dupPre(2); err != nil {
				return nil, err
			}
		case bytecode.DUP_PRE3:
			if err := dupPre(3); err != nil {
				return nil, err
			}
		case bytecode.DUP_PRE4:
			if err := dupPre(4); err != nil {
				return nil, err
			}

		case bytecode.POP:
			if _, err := pop(); err != nil {
				return nil, err
			}

		case bytecode.PUSH_NULL:
			push(Null)

		case bytecode.PUSH_INT:
			push(Int(int64(int8(operand))))

		case bytecode.PUSH_CONST:
			v, err := constValue(operand)
			if err != nil {
				return nil, err
			}
			push(v)

		case bytecode.NEW_ARRAY:
			vals, err := popN(int(operand))
			if err != nil {
				return nil, err
			}
			push(NewArray(vals))

		case bytecode.PUSH_ARG:
			push(ps.Arg(int(operand)))

		case bytecode.PUSH_SELF:
			push(ps.Variables.This)

		case bytecode.PUSH_SUPER:
			anc := ps.Variables.Ancestor(int(operand))
			if anc == nil {
				return nil, newErr(SuperDoesNotExist)
			}
			push(anc.This)

		case bytecode.PUSH_CLOSURE:
			push(&Closure{Parent: ps.Variables, ProgramIdx: ps.ProgramIdx, FuncIdx: int(operand)})

		case bytecode.JMP:
			pc = operandPos + int(int8(operand))

		case bytecode.JN:
			v, err := pop()
			if err != nil {
				return nil, err
			}
			if _, isNull := v.(NullType); !isNull {
				pc = operandPos + int(int8(operand))
			}

		case bytecode.JT:
			v, err := pop()
			if err != nil {
				return nil, err
			}
			if Truth(v) {
				pc = operandPos + int(int8(operand))
			}

		case bytecode.JF:
			v, err := pop()
			if err != nil {
				return nil, err
			}
			if !Truth(v) {
				pc = operandPos + int(int8(operand))
			}

		case bytecode.CALL:
			n := int(operand)
			args, err := popN(n)
			if err != nil {
				return nil, err
			}
			callee, err := pop()
			if err != nil {
				return nil, err
			}
			callable, ok := callee.(Callable)
			if !ok {
				return nil, invalidTypeErr("closure or native function", describeType(callee))
			}
			result, err := callable.call(ctx, args)
			if err != nil {
				return nil, err
			}
			push(result)

		case bytecode.RETURN:
			return pop()

		case bytecode.ADD, bytecode.SUB, bytecode.MUL, bytecode.DIV, bytecode.MOD:
			vals, err := popN(2)
			if err != nil {
				return nil, err
			}
			var r Value
			switch op {
			case bytecode.ADD:
				r, err = binaryAdd(vals[0], vals[1])
			case bytecode.SUB:
				r, err = binarySub(vals[0], vals[1])
			case bytecode.MUL:
				r, err = binaryMul(vals[0], vals[1])
			case bytecode.DIV:
				r, err = binaryDiv(vals[0], vals[1])
			case bytecode.MOD:
				r, err = binaryMod(vals[0], vals[1])
			}
			if err != nil {
				return nil, err
			}
			push(r)

		case bytecode.NEG:
			v, err := pop()
			if err != nil {
				return nil, err
			}
			r, err := unaryNeg(v)
			if err != nil {
				return nil, err
			}
			push(r)

		case bytecode.CMP_EQ, bytecode.CMP_NE:
			vals, err := popN(2)
			if err != nil {
				return nil, err
			}
			eq := equals(vals[0], vals[1])
			if op == bytecode.CMP_NE {
				eq = !eq
			}
			push(Bool(eq))

		case bytecode.CMP_GT, bytecode.CMP_LT, bytecode.CMP_GE, bytecode.CMP_LE:
			vals, err := popN(2)
			if err != nil {
				return nil, err
			}
			var r Value
			switch op {
			case bytecode.CMP_GT:
				r, err = cmpGt(vals[0], vals[1])
			case bytecode.CMP_LT:
				r, err = cmpLt(vals[0], vals[1])
			case bytecode.CMP_GE:
				r, err = cmpGe(vals[0], vals[1])
			case bytecode.CMP_LE:
				r, err = cmpLe(vals[0], vals[1])
			}
			if err != nil {
				return nil, err
			}
			push(r)

		case bytecode.NOT:
			v, err := pop()
			if err != nil {
				return nil, err
			}
			r, _ := unaryNot(v)
			push(r)

		case bytecode.BAND, bytecode.BOR, bytecode.BXOR:
			vals, err := popN(2)
			if err != nil {
				return nil, err
			}
			var r Value
			switch op {
			case bytecode.BAND:
				r, err = binaryBand(vals[0], vals[1])
			case bytecode.BOR:
				r, err = binaryBor(vals[0], vals[1])
			case bytecode.BXOR:
				r, err = binaryBxor(vals[0], vals[1])
			}
			if err != nil {
				return nil, err
			}
			push(r)

		case bytecode.BINV:
			v, err := pop()
			if err != nil {
				return nil, err
			}
			r, err := unaryBinv(v)
			if err != nil {
				return nil, err
			}
			push(r)

		case bytecode.SHL:
			vals, err := popN(2)
			if err != nil {
				return nil, err
			}
			r, err := binaryShl(vals[0], vals[1])
			if err != nil {
				return nil, err
			}
			push(r)

		case bytecode.SHR:
			vals, err := popN(2)
			if err != nil {
				return nil, err
			}
			r, err := binaryShr(ctx, vals[0], vals[1])
			if err != nil {
				return nil, err
			}
			push(r)

		case bytecode.TYPE:
			v, err := pop()
			if err != nil {
				return nil, err
			}
			push(NewString(typeNameOf(v)))

		case bytecode.LEN:
			v, err := pop()
			if err != nil {
				return nil, err
			}
			r, err := lengthOf(v)
			if err != nil {
				return nil, err
			}
			push(Int(r))

		case bytecode.IN:
			line, err := ctx.readLine()
			if err != nil {
				return nil, err
			}
			push(NewString(line))

		case bytecode.OUT:
			v, err := pop()
			if err != nil {
				return nil, err
			}
			if _, err := fmt.Fprintln(ctx.Stdout, v.String()); err != nil {
				return nil, &Error{Kind: IOError, Err: err}
			}

		case bytecode.LOAD_LIB:
			name, err := constStr(operand)
			if err != nil {
				return nil, err
			}
			v, err := ctx.loadLib(name)
			if err != nil {
				return nil, err
			}
			push(v)

		default:
			return nil, newErr(UnknownInstruction)
		}
	}
}

func lengthOf(v Value) (int64, error) {
	switch vv := v.(type) {
	case String:
		return int64(vv.Len()), nil
	case *Object:
		return int64(vv.Len()), nil
	case *Array:
		return int64(vv.Len()), nil
	default:
		return 0, invalidTypeErr("string, object or array", describeType(v))
	}
}

func loadItem(container, index Value) (Value, error) {
	switch c := container.(type) {
	case *Object:
		key, ok := index.(String)
		if !ok {
			return nil, invalidTypeErr("string", describeType(index))
		}
		v, ok := c.Get(key.String())
		if !ok {
			return Null, nil
		}
		return v, nil
	case *Array:
		idx, ok := index.(Int)
		if !ok {
			return nil, invalidTypeErr("int", describeType(index))
		}
		if !c.InRange(int(idx)) {
			return nil, newErr(ArrayIndexOutOfBound)
		}
		return c.At(int(idx)), nil
	case String:
		idx, ok := index.(Int)
		if !ok {
			return nil, invalidTypeErr("int", describeType(index))
		}
		if int(idx) < 0 || int(idx) >= c.Len() {
			return nil, newErr(ArrayIndexOutOfBound)
		}
		return c.At(int(idx)), nil
	default:
		return nil, invalidTypeErr("object, array or string", describeType(container))
	}
}

// sliceBounds resolves the (possibly Null) start/end operands of
// LOAD_SLICE/STORE_SLICE against a container of the given length, where
// Null start means 0 and Null end means length.
func sliceBounds(start, end Value, length int) (int, int, error) {
	s := 0
	if _, isNull := start.(NullType); !isNull {
		iv, ok := start.(Int)
		if !ok {
			return 0, 0, invalidTypeErr("int or null", describeType(start))
		}
		s = int(iv)
	}
	e := length
	if _, isNull := end.(NullType); !isNull {
		iv, ok := end.(Int)
		if !ok {
			return 0, 0, invalidTypeErr("int or null", describeType(end))
		}
		e = int(iv)
	}
	if s < 0 || e < s || e > length {
		return 0, 0, newErr(ArrayIndexOutOfBound)
	}
	return s, e, nil
}

func loadSlice(container, start, end Value) (Value, error) {
	switch c := container.(type) {
	case *Array:
		s, e, err := sliceBounds(start, end, c.Len())
		if err != nil {
			return nil, err
		}
		return c.Slice(s, e), nil
	case String:
		s, e, err := sliceBounds(start, end, c.Len())
		if err != nil {
			return nil, err
		}
		return c.Slice(s, e), nil
	default:
		return nil, invalidTypeErr("array or string", describeType(container))
	}
}

func storeItem(container, index, val Value) error {
	switch c := container.(type) {
	case *Object:
		key, ok := index.(String)
		if !ok {
			return invalidTypeErr("string", describeType(index))
		}
		return c.Set(key.String(), val)
	case *Array:
		idx, ok := index.(Int)
		if !ok {
			return invalidTypeErr("int", describeType(index))
		}
		if !c.InRange(int(idx)) {
			return newErr(ArrayIndexOutOfBound)
		}
		return c.Set(int(idx), val)
	default:
		return invalidTypeErr("object or array", describeType(container))
	}
}

func storeSlice(container, start, end, val Value) error {
	arr, ok := container.(*Array)
	if !ok {
		return invalidTypeErr("array", describeType(container))
	}
	repl, ok := val.(*Array)
	if !ok {
		return invalidTypeErr("array", describeType(val))
	}
	if arr.Locked() {
		return newErr(ObjectLocked)
	}
	s, e, err := sliceBounds(start, end, arr.Len())
	if err != nil {
		return err
	}
	arr.SpliceRange(s, e, repl.Elems())
	return nil
}
