package machine

import "fmt"

// Array is a shared, mutable, ordered sequence of Value, with a one-way
// locked flag. Unlike Object, Array assigns Null to a slot rather than
// removing it (§3, §8): arrays have no notion of a "hole".
type Array struct {
	elems  []Value
	locked bool
}

var _ Value = (*Array)(nil)

// NewArray returns an Array wrapping elems directly; callers should not
// retain a mutable alias to elems afterwards.
func NewArray(elems []Value) *Array {
	if elems == nil {
		elems = []Value{}
	}
	return &Array{elems: elems}
}

func (a *Array) String() string { return fmt.Sprintf("array(%p)", a) }
func (a *Array) Type() string   { return "array" }

// Locked reports whether a rejects further mutation.
func (a *Array) Locked() bool { return a.locked }

// Lock makes a reject all future mutation. Locking is one-way.
func (a *Array) Lock() { a.locked = true }

// Len returns the number of elements.
func (a *Array) Len() int { return len(a.elems) }

// At returns the element at index i, which must be in range.
func (a *Array) At(i int) Value { return a.elems[i] }

// Elems returns the live backing slice; callers must not mutate it.
func (a *Array) Elems() []Value { return a.elems }

// InRange reports whether i is a valid index into a.
func (a *Array) InRange(i int) bool { return i >= 0 && i < len(a.elems) }

// Set assigns v to slot i, which must be in range. Returns ObjectLocked if
// a is locked.
func (a *Array) Set(i int, v Value) error {
	if a.locked {
		return newErr(ObjectLocked)
	}
	a.elems[i] = v
	return nil
}

// Slice returns a new, unlocked Array holding a copy of [start:end).
func (a *Array) Slice(start, end int) *Array {
	cp := make([]Value, end-start)
	copy(cp, a.elems[start:end])
	return NewArray(cp)
}

// SpliceRange replaces [start:end) with repl's elements, growing or
// shrinking the array as needed. Only defined for unlocked arrays; callers
// must check Locked first.
func (a *Array) SpliceRange(start, end int, repl []Value) {
	tail := append([]Value(nil), a.elems[end:]...)
	a.elems = append(a.elems[:start:start], repl...)
	a.elems = append(a.elems, tail...)
}

// Concat returns a new, unlocked Array that is the concatenation of a and
// o, used by the ADD operator on Array operands.
func (a *Array) Concat(o *Array) *Array {
	out := make([]Value, 0, len(a.elems)+len(o.elems))
	out = append(out, a.elems...)
	out = append(out, o.elems...)
	return NewArray(out)
}

// Push appends v, failing if a is locked.
func (a *Array) Push(v Value) error {
	if a.locked {
		return newErr(ObjectLocked)
	}
	a.elems = append(a.elems, v)
	return nil
}

// Pop removes and returns the last element, failing if a is empty or
// locked.
func (a *Array) Pop() (Value, error) {
	if a.locked {
		return nil, newErr(ObjectLocked)
	}
	if len(a.elems) == 0 {
		return nil, newErr(ArrayIndexOutOfBound)
	}
	v := a.elems[len(a.elems)-1]
	a.elems = a.elems[:len(a.elems)-1]
	return v, nil
}
