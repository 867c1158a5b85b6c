// Package maincmd implements the cute command-line entry point: argument
// parsing, the debug flags (--tokens, --disasm), configuration layering,
// and dispatch into the VM.
package maincmd

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/mna/mainer"

	"github.com/mna/cute/internal/config"
	"github.com/mna/cute/lang/bytecode"
	"github.com/mna/cute/lang/lexer"
	"github.com/mna/cute/lang/machine"
	"github.com/mna/cute/lang/parser"
	"github.com/mna/cute/lang/token"
)

const binName = "cute"

var (
	shortUsage = fmt.Sprintf("usage: %s [file]\n", binName)

	longUsage = fmt.Sprintf(`usage: %s [<option>...] [file]
       %[1]s -h|--help
       %[1]s -v|--version

Compiler and virtual machine for the %[1]s scripting language.

With no file, the main program is read from standard input. With one
file argument, it is read from that path. Two or more positional
arguments are an error.

Valid flag options are:
       -h --help                 Show this help and exit.
       -v --version              Print version and exit.
       --tokens                  Print the token stream instead of running.
       --disasm                  Print the disassembled bytecode instead of
                                  running.
       --max-steps N             Override the instruction step budget.
       --lib-path DIR[,DIR...]   Override the library search path.
`, binName)
)

// Cmd is the parsed command invocation, populated by mainer.Parser from
// flags, environment variables, and positional arguments.
type Cmd struct {
	BuildVersion string
	BuildDate    string

	Help    bool `flag:"h,help"`
	Version bool `flag:"v,version"`

	Tokens   bool   `flag:"tokens"`
	Disasm   bool   `flag:"disasm"`
	MaxSteps uint64 `flag:"max-steps"`
	LibPath  string `flag:"lib-path"`

	args []string
}

// SetArgs is called by mainer.Parser with the remaining positional
// arguments after flags are stripped.
func (c *Cmd) SetArgs(args []string) { c.args = args }

// SetFlags is called by mainer.Parser with which flags were explicitly
// set on the command line, distinguishing "not given" from "given its
// zero value".
func (c *Cmd) SetFlags(_ map[string]bool) {}

// Validate enforces the exact positional-argument contract: zero or one
// file argument, never more.
func (c *Cmd) Validate() error {
	if c.Help || c.Version {
		return nil
	}
	if len(c.args) > 1 {
		return fmt.Errorf("too many arguments")
	}
	return nil
}

// Main parses args and dispatches to Run, returning the process exit
// code.
func (c *Cmd) Main(args []string, stdio mainer.Stdio) mainer.ExitCode {
	p := mainer.Parser{EnvVars: true, EnvPrefix: "CUTE"}
	if err := p.Parse(args, c); err != nil {
		fmt.Fprintf(stdio.Stderr, "invalid arguments: %s\n%s", err, shortUsage)
		return mainer.InvalidArgs
	}

	switch {
	case c.Help:
		fmt.Fprint(stdio.Stdout, longUsage)
		return mainer.Success
	case c.Version:
		fmt.Fprintf(stdio.Stdout, "%s %s %s\n", binName, c.BuildVersion, c.BuildDate)
		return mainer.Success
	}

	if len(c.args) > 1 {
		fmt.Fprint(stdio.Stderr, shortUsage)
		return mainer.Failure
	}

	ctx := mainer.CancelOnSignal(context.Background(), os.Interrupt)
	code, err := c.Run(ctx, stdio)
	if err != nil {
		fmt.Fprintln(stdio.Stderr, err)
	}
	if code != 0 {
		return mainer.ExitCode(code)
	}
	return mainer.Success
}

// Run implements the fixed `cute [file]` contract: read source from the
// named file or from stdin, then either dump its tokens, dump its
// disassembly, or compile and execute it, according to c's debug flags.
func (c *Cmd) Run(ctx context.Context, stdio mainer.Stdio) (int, error) {
	srcPath, src, err := c.readSource(stdio)
	if err != nil {
		return 1, err
	}

	if c.Tokens {
		return 0, printTokens(stdio.Stdout, src)
	}

	p := parser.New(src, srcPath)
	bundle, err := p.Parse()
	if err != nil {
		return 1, err
	}

	if c.Disasm {
		return 0, bytecode.Disassemble(stdio.Stdout, bundle)
	}

	cfg, err := config.Load(".")
	if err != nil {
		return 1, err
	}
	if c.MaxSteps > 0 {
		cfg.MaxSteps = c.MaxSteps
	}
	if c.LibPath != "" {
		cfg.LibraryPath = config.ParseLibraryPath(strings.ReplaceAll(c.LibPath, ",", ":"))
	}

	mc := machine.NewContext()
	mc.MaxSteps = cfg.MaxSteps
	mc.LibraryPath = cfg.LibraryPath
	mc.Stdout = stdio.Stdout
	mc.Stderr = stdio.Stderr

	_, err = mc.RunBundle(bundle)
	if err != nil {
		if code, ok := machine.AsExit(err); ok {
			return code, nil
		}
		return 1, err
	}
	return 0, nil
}

func (c *Cmd) readSource(stdio mainer.Stdio) (path, src string, err error) {
	if len(c.args) == 1 {
		data, err := os.ReadFile(c.args[0])
		if err != nil {
			return "", "", err
		}
		return c.args[0], string(data), nil
	}
	data, err := io.ReadAll(stdio.Stdin)
	if err != nil {
		return "", "", err
	}
	return "", string(data), nil
}

// printTokens prints the token stream of src, one token per line, in the
// "pos: kind literal" style.
func printTokens(w io.Writer, src string) error {
	lex := lexer.New(src)
	for {
		tok, err := lex.Next()
		if err != nil {
			return err
		}
		fmt.Fprintf(w, "%s: %s", tok.Pos, tok.String())
		if lit := tok.Literal(); lit != "" && tok.Kind != token.SINGLE {
			fmt.Fprintf(w, " %s", lit)
		}
		fmt.Fprintln(w)
		if tok.Kind == token.EOF {
			return nil
		}
	}
}
