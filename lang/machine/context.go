package machine

import (
	"bufio"
	"context"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync/atomic"

	"github.com/mna/cute/lang/bytecode"
	"github.com/mna/cute/lang/parser"
)

// Context is the process-wide runtime state shared by every call on a
// single execution: the ordered list of loaded bundles, the named library
// registry, and the per-file library cache, plus the ambient I/O and
// step-budget configuration described in §10.
type Context struct {
	// Programs is the ordered list of loaded ProgramBundles, index 0 being
	// the main program.
	Programs []*bytecode.Bundle

	// Libraries is the named library registry (name -> Value).
	Libraries map[string]Value

	// fileCache maps a canonicalized source path to the Value its top-level
	// function returned, so a given file is compiled and run at most once.
	fileCache map[string]Value

	// LibraryPath is an ordered list of extra directories searched (after
	// the loading program's own directory) when resolving a relative
	// LOAD_LIB name, per §10's Config.LibraryPath ambient addition.
	LibraryPath []string

	// MaxSteps bounds the number of dispatched instructions across the
	// whole execution; 0 means unlimited. Exceeding it raises IllegalState.
	MaxSteps uint64
	Steps    uint64

	Stdout io.Writer
	Stderr io.Writer
	Stdin  *bufio.Reader

	ctx       context.Context
	cancelled atomic.Bool

	frames []*ProgramState // active call stack, for native reflection (sys.this, ...)
}

// NewContext creates a Context with the standard library registered and
// stdio defaulted to the real os.Stdin/Stdout/Stderr; callers may override
// Stdout/Stderr/Stdin afterwards (e.g. in tests) before calling Run.
func NewContext() *Context {
	c := &Context{
		Libraries:    make(map[string]Value),
		fileCache: make(map[string]Value),
		Stdout:       os.Stdout,
		Stderr:       os.Stderr,
		Stdin:        bufio.NewReader(os.Stdin),
		ctx:          context.Background(),
	}
	registerStandardLibraries(c)
	return c
}

// Run compiles and executes src (whose optional srcPath is used for
// relative LOAD_LIB resolution) as the main program, returning its
// top-level scope object (the implicit `PUSH_SELF; RETURN` result) or the
// first error raised by compilation or execution.
func (c *Context) Run(ctx context.Context, src, srcPath string) (Value, error) {
	if ctx != nil {
		c.ctx = ctx
		go func() {
			<-ctx.Done()
			c.cancelled.Store(true)
		}()
	}

	p := parser.New(src, srcPath)
	bundle, err := p.Parse()
	if err != nil {
		return nil, err
	}
	return c.RunBundle(bundle)
}

// RunBundle executes an already-compiled bundle as a brand-new top-level
// program (added to c.Programs), with an empty scope and no arguments.
func (c *Context) RunBundle(bundle *bytecode.Bundle) (Value, error) {
	progIdx := len(c.Programs)
	c.Programs = append(c.Programs, bundle)
	scope := NewScope(nil)
	return c.call(progIdx, 0, scope, nil)
}

// callClosure runs cl with args, opening a fresh child scope whose parent
// is cl's captured scope.
func (c *Context) callClosure(cl *Closure, args []Value) (Value, error) {
	scope := NewScope(cl.Parent)
	return c.call(cl.ProgramIdx, cl.FuncIdx, scope, args)
}

// Call invokes fn (a Closure or NativeFunc) with args, the same dispatch
// CALL itself performs; it is the entry point native functions use to call
// back into the interpreter (sys.call, arrays.map/filter/for_each, ...).
func Call(ctx *Context, fn Value, args []Value) (Value, error) {
	callable, ok := fn.(Callable)
	if !ok {
		return nil, invalidTypeErr("closure or native", describeType(fn))
	}
	return callable.call(ctx, args)
}

func (c *Context) call(progIdx, funcIdx int, scope *Scope, args []Value) (Value, error) {
	if progIdx < 0 || progIdx >= len(c.Programs) {
		return nil, newErr(FunctionIndexOutOfBound)
	}
	bundle := c.Programs[progIdx]
	if funcIdx < 0 || funcIdx >= len(bundle.Funcs) {
		return nil, newErr(FunctionIndexOutOfBound)
	}
	ps := &ProgramState{ProgramIdx: progIdx, FuncIdx: funcIdx, Variables: scope, Args: args}
	c.frames = append(c.frames, ps)
	defer func() { c.frames = c.frames[:len(c.frames)-1] }()
	return run(c, ps, bundle, bundle.Funcs[funcIdx])
}

// readLine implements IN: it reads a single line from Stdin, stripping the
// trailing newline, returning "" (not an error) at end of file.
func (c *Context) readLine() (string, error) {
	line, err := c.Stdin.ReadString('\n')
	if err != nil && len(line) == 0 {
		return "", nil
	}
	line = strings.TrimRight(line, "\r\n")
	return line, nil
}

// checkBudget increments the step counter and checks cancellation and the
// max-steps budget. Called once per dispatched instruction.
func (c *Context) checkBudget() error {
	c.Steps++
	if c.MaxSteps > 0 && c.Steps > c.MaxSteps {
		return newErrMsg(IllegalState, "max step budget exceeded")
	}
	if c.cancelled.Load() {
		return newErrMsg(IllegalState, "execution cancelled")
	}
	return nil
}

// registerLibrary adds name to the registry, failing if already present
// (sys.add_lib's documented error case).
func (c *Context) registerLibrary(name string, v Value) error {
	if _, ok := c.Libraries[name]; ok {
		return newErrMsg(IllegalState, "library already registered: "+name)
	}
	c.Libraries[name] = v
	return nil
}

// currentSourcePath returns the source path of the program currently
// executing in the deepest active frame, or "" if unknown.
func (c *Context) currentSourcePath() string {
	if len(c.frames) == 0 {
		return ""
	}
	ps := c.frames[len(c.frames)-1]
	return c.Programs[ps.ProgramIdx].SrcPath
}

// loadLib implements the LOAD_LIB resolution algorithm of §4.E.
func (c *Context) loadLib(name string) (Value, error) {
	if v, ok := c.Libraries[name]; ok {
		return v, nil
	}

	candidate := name + ".cute"
	if !filepath.IsAbs(candidate) {
		sp := c.currentSourcePath()
		if sp == "" {
			return nil, newErrMsg(IllegalState, "cannot resolve module "+name+": loading program has no source path")
		}
		candidate = filepath.Join(filepath.Dir(sp), candidate)
	}
	path, err := c.resolveLibPath(candidate, name)
	if err != nil {
		return nil, err
	}

	if v, ok := c.fileCache[path]; ok {
		return v, nil
	}

	src, err := os.ReadFile(path)
	if err != nil {
		return nil, &Error{Kind: IOError, Err: err}
	}

	p := parser.New(string(src), path)
	bundle, err := p.Parse()
	if err != nil {
		return nil, err
	}

	v, err := c.RunBundle(bundle)
	if err != nil {
		return nil, err
	}
	c.fileCache[path] = v
	return v, nil
}

// resolveLibPath canonicalizes candidate if it exists, else tries name.cute
// resolved against each configured LibraryPath entry in order.
func (c *Context) resolveLibPath(candidate, name string) (string, error) {
	if abs, err := filepath.Abs(candidate); err == nil {
		if _, err := os.Stat(abs); err == nil {
			return filepath.Clean(abs), nil
		}
	}
	for _, dir := range c.LibraryPath {
		try := filepath.Join(dir, name+".cute")
		if abs, err := filepath.Abs(try); err == nil {
			if _, err := os.Stat(abs); err == nil {
				return filepath.Clean(abs), nil
			}
		}
	}
	return filepath.Clean(candidate), nil
}
