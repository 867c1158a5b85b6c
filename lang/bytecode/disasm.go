package bytecode

import (
	"fmt"
	"io"
	"strconv"
)

// Disassemble writes a human-readable dump of b's constant pool and every
// function's instructions to w, one instruction per line. It is a thin
// debugging aid only: nothing else in this package depends on its output
// format.
func Disassemble(w io.Writer, b *Bundle) error {
	if _, err := fmt.Fprintf(w, "constants (%d):\n", len(b.Pool.entries)); err != nil {
		return err
	}
	for i, c := range b.Pool.entries {
		if _, err := fmt.Fprintf(w, "  [%3d] %s\n", i, formatConst(c)); err != nil {
			return err
		}
	}
	for fi, f := range b.Funcs {
		if _, err := fmt.Fprintf(w, "function %d (%d args):\n", fi, f.NumArgs); err != nil {
			return err
		}
		if err := disasmFunc(w, f); err != nil {
			return err
		}
	}
	return nil
}

func formatConst(c Const) string {
	switch c.Kind {
	case ConstInt:
		return strconv.FormatInt(c.Int, 10)
	case ConstFloat:
		return strconv.FormatFloat(c.Float, 'g', -1, 64)
	case ConstString:
		return strconv.Quote(c.Str)
	default:
		return "?"
	}
}

func disasmFunc(w io.Writer, f *Func) error {
	code := f.Code
	for pc := 0; pc < len(code); {
		op := Op(code[pc])
		info, ok := Lookup(op)
		if !ok {
			if _, err := fmt.Fprintf(w, "  %4d  ??? (0x%02x)\n", pc, code[pc]); err != nil {
				return err
			}
			pc++
			continue
		}
		start := pc
		pc++
		if info.OperandSz == 0 {
			if _, err := fmt.Fprintf(w, "  %4d  %s\n", start, info.Name); err != nil {
				return err
			}
			continue
		}
		if pc >= len(code) {
			if _, err := fmt.Fprintf(w, "  %4d  %s <truncated>\n", start, info.Name); err != nil {
				return err
			}
			break
		}
		operand := code[pc]
		pc++
		if IsJump(op) {
			delta := int8(operand)
			target := pc - 1 + int(delta) // position of operand byte + delta
			if _, err := fmt.Fprintf(w, "  %4d  %s %d (-> %d)\n", start, info.Name, delta, target); err != nil {
				return err
			}
			continue
		}
		if _, err := fmt.Fprintf(w, "  %4d  %s %d\n", start, info.Name, operand); err != nil {
			return err
		}
	}
	return nil
}
