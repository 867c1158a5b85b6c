package machine

import (
	"fmt"

	"github.com/dolthub/swiss"
)

// Object is a shared, mutable mapping from interned string to Value. It
// backs both ordinary `{}`-free field bags (a scope's `this`) and the
// locked library objects registered in a Context. Field storage uses a
// swiss table (§10/§11 domain stack), the same structure the teacher
// lineage uses for its own Map value; a side slice of insertion-ordered
// keys gives `objects.keys/values/entries` and LEN a stable, deterministic
// order without requiring the table itself to preserve one.
type Object struct {
	fields *swiss.Map[string, Value]
	order  []string
	locked bool
}

var _ Value = (*Object)(nil)

// NewObject returns an empty, unlocked Object.
func NewObject() *Object {
	return &Object{fields: swiss.NewMap[string, Value](8)}
}

func (o *Object) String() string { return fmt.Sprintf("object(%p)", o) }
func (o *Object) Type() string   { return "object" }

// Locked reports whether o rejects further mutation.
func (o *Object) Locked() bool { return o.locked }

// Lock makes o reject all future mutation. Locking is one-way.
func (o *Object) Lock() { o.locked = true }

// Get returns the value bound to name and true, or (nil, false) if absent.
func (o *Object) Get(name string) (Value, bool) {
	return o.fields.Get(name)
}

// Set binds name to v, or (if v is Null) removes the binding. Returns
// ObjectLocked if o is locked and this call would mutate it. Assigning
// Null to a name that is not currently bound is a no-op, not an error.
func (o *Object) Set(name string, v Value) error {
	if _, isNull := v.(NullType); isNull {
		if !o.locked {
			if _, ok := o.fields.Get(name); ok {
				o.fields.Delete(name)
				for i, k := range o.order {
					if k == name {
						o.order = append(o.order[:i], o.order[i+1:]...)
						break
					}
				}
			}
		} else if _, ok := o.fields.Get(name); ok {
			return newErr(ObjectLocked)
		}
		return nil
	}
	if o.locked {
		return newErr(ObjectLocked)
	}
	if _, existed := o.fields.Get(name); !existed {
		o.order = append(o.order, name)
	}
	o.fields.Put(name, v)
	return nil
}

// Len returns the number of live entries.
func (o *Object) Len() int { return o.fields.Count() }

// Keys returns the live keys in insertion order.
func (o *Object) Keys() []string {
	out := make([]string, 0, o.fields.Count())
	for _, k := range o.order {
		if _, ok := o.fields.Get(k); ok {
			out = append(out, k)
		}
	}
	return out
}

// Each calls fn for every live entry in insertion order.
func (o *Object) Each(fn func(name string, v Value)) {
	for _, k := range o.Keys() {
		v, ok := o.fields.Get(k)
		if ok {
			fn(k, v)
		}
	}
}

// ShallowCopy returns a new, unlocked Object with the same entries as o.
func (o *Object) ShallowCopy() *Object {
	cp := NewObject()
	o.Each(func(name string, v Value) {
		cp.Set(name, v) //nolint:errcheck // cp is fresh and unlocked
	})
	return cp
}
