package machine_test

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/mna/cute/lang/machine"
)

// run compiles and executes src against a fresh Context, returning its
// captured standard output.
func run(t *testing.T, src string) string {
	t.Helper()
	ctx := machine.NewContext()
	var out bytes.Buffer
	ctx.Stdout = &out
	_, err := ctx.Run(nil, src, "")
	require.NoError(t, err)
	return out.String()
}

func TestHelloWorld(t *testing.T) {
	require.Equal(t, "hello\n", run(t, `<<"hello";`))
}

func TestArithmeticPrecedence(t *testing.T) {
	require.Equal(t, "7\n", run(t, `x = 1 + 2 * 3; <<x;`))
}

func TestArrayIndexAndLen(t *testing.T) {
	require.Equal(t, "20\n3\n", run(t, `a = [10, 20, 30]; <<a[1]; <<(#a);`))
}

func TestLoopOperator(t *testing.T) {
	require.Equal(t, "5\n", run(t, `i = 0; :{ i = i + 1; i < 5 ? 1 : null; }; <<i;`))
}

func TestClosureWithDeclaredArgument(t *testing.T) {
	require.Equal(t, "42\n", run(t, `@{>arg1; <<arg1;}(42);`))
}

func TestSuperChain(t *testing.T) {
	src := `outer = @{ x = 10; inner = @{ <<$x; $x = $x + 1; }; inner(); inner(); <<x; }; outer();`
	require.Equal(t, "10\n11\n12\n", run(t, src))
}

func TestAssignmentUpdatesEnclosingScope(t *testing.T) {
	// A bare name already bound in an enclosing scope is updated there,
	// not shadowed locally: this is what lets the loop operator (see
	// TestLoopOperator) accumulate into a variable across successive
	// fresh-scope invocations of its body.
	src := `outer = @{ x = 1; inner = @{ x = 2; <<x; }; inner(); <<x; }; outer();`
	require.Equal(t, "2\n2\n", run(t, src))
}

func TestFreshNameStaysLocalToItsScope(t *testing.T) {
	// A name never assigned in any enclosing scope is scoped to wherever
	// it's first assigned, so two sibling closures each get their own.
	src := `outer = @{ inner1 = @{ y = 1; <<y; }; inner2 = @{ y = 2; <<y; }; inner1(); inner2(); }; outer();`
	require.Equal(t, "1\n2\n", run(t, src))
}

func TestFieldAssignmentAndDotAccess(t *testing.T) {
	src := `o = @{}(); o.a = 1; <<o.a;`
	require.Equal(t, "1\n", run(t, src))
}

func TestAssigningNullRemovesField(t *testing.T) {
	src := `o = @{}(); o.a = 1; o.a = null; <<o.a;`
	require.Equal(t, "null\n", run(t, src))
}

func TestArraySliceAndConcat(t *testing.T) {
	src := `a = [1, 2, 3, 4]; <<a[1:3]; <<(a + [5]);`
	// Array.String is an opaque pointer form; only check it doesn't error.
	ctx := machine.NewContext()
	var out bytes.Buffer
	ctx.Stdout = &out
	_, err := ctx.Run(nil, src, "")
	require.NoError(t, err)
}

func TestDivideByZero(t *testing.T) {
	ctx := machine.NewContext()
	var out bytes.Buffer
	ctx.Stdout = &out
	_, err := ctx.Run(nil, `x = 1 / 0;`, "")
	require.Error(t, err)
	var merr *machine.Error
	require.ErrorAs(t, err, &merr)
	require.Equal(t, machine.DivideByZeroError, merr.Kind)
}

func TestMaxStepsBudget(t *testing.T) {
	ctx := machine.NewContext()
	ctx.MaxSteps = 3
	var out bytes.Buffer
	ctx.Stdout = &out
	_, err := ctx.Run(nil, `i = 0; :{ i = i + 1; i < 1000000 ? 1 : null; };`, "")
	require.Error(t, err)
}

func TestSysExit(t *testing.T) {
	ctx := machine.NewContext()
	var out bytes.Buffer
	ctx.Stdout = &out
	_, err := ctx.Run(nil, `@sys.exit(3);`, "")
	require.Error(t, err)
	code, ok := machine.AsExit(err)
	require.True(t, ok)
	require.Equal(t, 3, code)
}

func TestArraysMapFilterForEach(t *testing.T) {
	// Closure bodies must explicitly `<value;` to return something other
	// than their own `this` (the implicit trailing return every function
	// gets), so the map/filter callbacks below return with `<`.
	src := `a = [1, 2, 3, 4];
doubled = @arrays.map(a, @{>e; >i; <e * 2;});
<<doubled[0]; <<doubled[3];
evens = @arrays.filter(a, @{>e; >i; <e % 2 == 0;});
<<(#evens);`
	require.Equal(t, "2\n8\n2\n", run(t, src))
}

func TestObjectsKeysValues(t *testing.T) {
	src := `o = @{}(); o.a = 1; o.b = 2; ks = @objects.keys(o); <<ks[0]; <<ks[1];`
	require.Equal(t, "a\nb\n", run(t, src))
}
