package machine

// Scope is a node `{this, parent}`: the runtime counterpart of a nesting
// level. A function call creates a fresh Scope whose parent is the
// closure's captured parent scope; the top-level scope has no parent.
// `this` is the locally owned mutable Object holding every name defined
// at that nesting level, and is what PUSH_SELF pushes.
type Scope struct {
	This   *Object
	Parent *Scope
}

// NewScope creates a fresh scope with an empty `this`, chained to parent.
func NewScope(parent *Scope) *Scope {
	return &Scope{This: NewObject(), Parent: parent}
}

// Ancestor returns the k-th ancestor scope (0 = immediate parent), or nil
// if the chain does not go that deep.
func (s *Scope) Ancestor(k int) *Scope {
	cur := s
	for ; k >= 0 && cur != nil; k-- {
		cur = cur.Parent
	}
	return cur
}

// Load walks the scope chain starting at s, returning the value bound to
// name in the nearest scope that has it, or Null if no scope in the
// chain does. A function call's fresh scope has an empty `this`, so a
// bare name read inside it transparently reaches whatever enclosing
// scope last wrote that name.
func (s *Scope) Load(name string) Value {
	for cur := s; cur != nil; cur = cur.Parent {
		if v, ok := cur.This.Get(name); ok {
			return v
		}
	}
	return Null
}

// LoadOwn returns the value bound to name in s's own `this`, or Null if
// absent, without walking further up the chain. This is what `$name`
// (LOAD_SUPER) uses: it reads from exactly the parent scope's `this`.
func (s *Scope) LoadOwn(name string) Value {
	if v, ok := s.This.Get(name); ok {
		return v
	}
	return Null
}

// StoreOwn binds name to v in s's own `this`, without walking further up
// the chain. This is what `$name = ...` (STORE_SUPER) uses.
func (s *Scope) StoreOwn(name string, v Value) error {
	return s.This.Set(name, v)
}

// Store walks the scope chain starting at s looking for an existing
// binding of name, and updates it in place if found. Otherwise it
// creates the binding in s's own `this`. This is what lets a loop body
// or any nested call accumulate into a variable declared by an
// enclosing scope using a bare name, while a name never assigned
// anywhere in the chain is scoped to where it's first assigned.
func (s *Scope) Store(name string, v Value) error {
	for cur := s; cur != nil; cur = cur.Parent {
		if _, ok := cur.This.Get(name); ok {
			return cur.This.Set(name, v)
		}
	}
	return s.This.Set(name, v)
}
