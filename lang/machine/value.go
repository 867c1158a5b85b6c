// Package machine implements the stack-based virtual machine that executes
// cute bytecode: the tagged runtime value model, the scope chain, the
// fetch/dispatch loop, native-function callouts, and the module loader.
package machine

import (
	"strconv"
)

// Value is the interface implemented by every runtime value the machine
// manipulates. Dynamic dispatch on Value is done by type switch at each
// call site (arithmetic, comparison, indexing, ...) rather than through a
// deep method hierarchy, matching the tagged-sum data model of §3.
type Value interface {
	// String returns the textual form used by `types.to_string` and OUT.
	String() string
	// Type returns the short type name pushed onto the stack by TYPE.
	Type() string
}

// Callable is implemented by values that may be the target of a CALL
// instruction: Closure and NativeFunc.
type Callable interface {
	Value
	call(ctx *Context, args []Value) (Value, error)
}

// NullType is the type of Null, the absence sentinel and "erase" signal for
// stores. It is represented as an empty struct type so that the zero value
// is usable directly as Null.
type NullType struct{}

// Null is the sole NullType value.
var Null = NullType{}

func (NullType) String() string { return "null" }
func (NullType) Type() string   { return "null" }

// Bool is a boolean Value.
type Bool bool

func (b Bool) String() string {
	if b {
		return "true"
	}
	return "false"
}
func (Bool) Type() string { return "bool" }

// Int is a 64-bit signed integer Value. Arithmetic on Int uses plain Go
// int64 operators, which already wrap on overflow per §4.E.
type Int int64

func (i Int) String() string { return strconv.FormatInt(int64(i), 10) }
func (Int) Type() string     { return "int" }

// Float is a 64-bit IEEE-754 floating point Value.
type Float float64

func (f Float) String() string { return strconv.FormatFloat(float64(f), 'g', -1, 64) }
func (Float) Type() string     { return "float" }

// String is an immutable sequence of Unicode code points, indexed and
// sliced by code-unit (rune) position so that LOAD_ITEM/LOAD_SLICE behave
// consistently regardless of the UTF-8 byte width of individual runes.
type String struct {
	runes []rune
}

// NewString constructs a String Value from a Go string.
func NewString(s string) String { return String{runes: []rune(s)} }

func newStringFromRunes(r []rune) String { return String{runes: r} }

func (s String) String() string { return string(s.runes) }
func (String) Type() string     { return "string" }

// Len returns the number of code units (runes) in s.
func (s String) Len() int { return len(s.runes) }

// At returns the single-rune String at code-unit index i.
func (s String) At(i int) String { return String{runes: []rune{s.runes[i]}} }

// Slice returns the sub-String [start:end) by code-unit position.
func (s String) Slice(start, end int) String {
	return String{runes: append([]rune(nil), s.runes[start:end]...)}
}

func (s String) Concat(o String) String {
	out := make([]rune, 0, len(s.runes)+len(o.runes))
	out = append(out, s.runes...)
	out = append(out, o.runes...)
	return String{runes: out}
}

// typeNameOf is used by TYPE and types.type_name.
func typeNameOf(v Value) string { return v.Type() }

func describeType(v Value) string {
	if v == nil {
		return "<nil>"
	}
	return v.Type()
}
