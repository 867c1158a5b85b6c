package machine

import "fmt"

// Closure is a capture of {parent scope, program index, function index}.
// Calling it (via CALL) opens a fresh child Scope whose parent is the
// captured scope and recursively runs the referenced function.
type Closure struct {
	Parent     *Scope
	ProgramIdx int
	FuncIdx    int
}

var (
	_ Value    = (*Closure)(nil)
	_ Callable = (*Closure)(nil)
)

func (c *Closure) String() string { return fmt.Sprintf("closure(%p)", c) }
func (c *Closure) Type() string   { return "closure" }

func (c *Closure) call(ctx *Context, args []Value) (Value, error) {
	return ctx.callClosure(c, args)
}

// NativeFunc is a host-implemented function callable from cute code. Its
// signature mirrors §3's `(Context, ProgramState, []Value) -> (Value,
// error)`: ps is the ProgramState of the frame performing the CALL, so a
// native can inspect the caller (sys.this/sys.super/sys.arguments) before
// doing its own work.
type NativeFunc struct {
	FuncName string
	Fn       func(ctx *Context, ps *ProgramState, args []Value) (Value, error)
}

var (
	_ Value    = (*NativeFunc)(nil)
	_ Callable = (*NativeFunc)(nil)
)

func (n *NativeFunc) String() string { return fmt.Sprintf("native(%s)", n.FuncName) }
func (n *NativeFunc) Type() string   { return "native" }

func (n *NativeFunc) call(ctx *Context, args []Value) (Value, error) {
	var ps *ProgramState
	if len(ctx.frames) > 0 {
		ps = ctx.frames[len(ctx.frames)-1]
	}
	return n.Fn(ctx, ps, args)
}
