package parser_test

import (
	"strings"
	"testing"

	"github.com/mna/cute/lang/bytecode"
	"github.com/mna/cute/lang/parser"
	"github.com/stretchr/testify/require"
)

func parseSrc(t *testing.T, src string) (*bytecode.Bundle, error) {
	t.Helper()
	p := parser.New(src, "")
	return p.Parse()
}

func mustParse(t *testing.T, src string) *bytecode.Bundle {
	t.Helper()
	b, err := parseSrc(t, src)
	require.NoError(t, err)
	return b
}

func dis(t *testing.T, b *bytecode.Bundle) string {
	t.Helper()
	var sb strings.Builder
	require.NoError(t, bytecode.Disassemble(&sb, b))
	return sb.String()
}

func TestAssignmentAndOut(t *testing.T) {
	b := mustParse(t, `x = 1; <<x;`)
	out := dis(t, b)
	require.Contains(t, out, "PUSH_INT 1")
	require.Contains(t, out, "DUP")
	require.Contains(t, out, "STORE 0")
	require.Contains(t, out, "LOAD 0")
	require.Contains(t, out, "OUT")
}

func TestTernary(t *testing.T) {
	b := mustParse(t, `x = 1; x == 1 ? 2 : 3;`)
	out := dis(t, b)
	require.Contains(t, out, "CMP_EQ")
	require.Contains(t, out, "JF")
	require.Contains(t, out, "JMP")
	require.Contains(t, out, "PUSH_INT 2")
	require.Contains(t, out, "PUSH_INT 3")
}

func TestShortCircuitAndOr(t *testing.T) {
	b := mustParse(t, `x = 1; y = 2; x && y; x || y;`)
	out := dis(t, b)
	require.Contains(t, out, "JF")
	require.Contains(t, out, "JT")
}

// TestLoopOperator mirrors the spec's do-while-non-null scenario: i is
// incremented until it reaches 5, at which point the ternary yields null
// and the loop stops, leaving i == 5.
func TestLoopOperator(t *testing.T) {
	b := mustParse(t, `i = 0; :{ i = i + 1; i < 5 ? 1 : null; }; <<i;`)
	out := dis(t, b)
	require.Contains(t, out, "PUSH_NULL")
	require.Contains(t, out, "JN")
	// the JN operand must encode a backward (negative) delta
	for _, line := range strings.Split(out, "\n") {
		if strings.Contains(line, "JN") {
			require.Contains(t, line, "-")
		}
	}
}

func TestSuperLookupSingle(t *testing.T) {
	b := mustParse(t, `$x;`)
	out := dis(t, b)
	require.Contains(t, out, "LOAD_SUPER 0")
}

func TestSuperLookupChained(t *testing.T) {
	b := mustParse(t, `$$x;`)
	out := dis(t, b)
	require.Contains(t, out, "PUSH_SUPER 0")
	require.Contains(t, out, "LOAD_FIELD 0")
}

func TestSuperLookupWrite(t *testing.T) {
	b := mustParse(t, `$$x = 1;`)
	out := dis(t, b)
	require.Contains(t, out, "PUSH_SUPER 0")
	require.Contains(t, out, "DUP_PRE2")
	require.Contains(t, out, "STORE_FIELD 0")
}

func TestArrayLiteralAndIndex(t *testing.T) {
	b := mustParse(t, `a = [1, 2, 3]; a[0]; a[1:2]; a[:];`)
	out := dis(t, b)
	require.Contains(t, out, "NEW_ARRAY 3")
	require.Contains(t, out, "LOAD_ITEM")
	require.Contains(t, out, "LOAD_SLICE")
	require.Contains(t, out, "PUSH_NULL") // omitted slice bounds
}

func TestIndexedAssignment(t *testing.T) {
	b := mustParse(t, `a = [1, 2, 3]; a[0] = 9;`)
	out := dis(t, b)
	require.Contains(t, out, "DUP_PRE3")
	require.Contains(t, out, "STORE_ITEM")
}

func TestSliceAssignment(t *testing.T) {
	b := mustParse(t, `a = [1, 2, 3]; a[0:1] = [9];`)
	out := dis(t, b)
	require.Contains(t, out, "DUP_PRE4")
	require.Contains(t, out, "STORE_SLICE")
}

func TestFieldAccessAndAssignment(t *testing.T) {
	b := mustParse(t, `o = [1]; o.name; o.name = 2;`)
	out := dis(t, b)
	require.Contains(t, out, "LOAD_FIELD")
	require.Contains(t, out, "DUP_PRE2")
	require.Contains(t, out, "STORE_FIELD")
}

func TestClosureAndCall(t *testing.T) {
	b := mustParse(t, `f = @{ >x; <x + 1; }; f(41);`)
	out := dis(t, b)
	require.Contains(t, out, "PUSH_ARG 0")
	require.Contains(t, out, "PUSH_CLOSURE")
	require.Contains(t, out, "CALL 1")
}

func TestImmediateBlockInvokesItself(t *testing.T) {
	b := mustParse(t, `x = { 1 + 1; };`)
	out := dis(t, b)
	require.Contains(t, out, "PUSH_CLOSURE")
	require.Contains(t, out, "CALL 0")
}

func TestLoadLibByIdentAndString(t *testing.T) {
	b := mustParse(t, `@sys; @"sys";`)
	out := dis(t, b)
	require.Equal(t, 2, strings.Count(out, "LOAD_LIB"))
}

func TestInOperator(t *testing.T) {
	b := mustParse(t, `x = 0; >>x;`)
	out := dis(t, b)
	require.Contains(t, out, "IN")
	require.Contains(t, out, "STORE 0")
}

func TestReturnOperator(t *testing.T) {
	b := mustParse(t, `f = @{ <1; };`)
	out := dis(t, b)
	require.Contains(t, out, "RETURN")
}

func TestUnaryOperators(t *testing.T) {
	b := mustParse(t, `x = 1; -x; !x; ~x; #x; ?x;`)
	out := dis(t, b)
	require.Contains(t, out, "NEG")
	require.Contains(t, out, "NOT")
	require.Contains(t, out, "BINV")
	require.Contains(t, out, "LEN")
	require.Contains(t, out, "TYPE")
}

func TestErrorAssignToLiteralIsNotLeftValue(t *testing.T) {
	_, err := parseSrc(t, `1 = 2;`)
	require.Error(t, err)
	var perr *parser.Error
	require.ErrorAs(t, err, &perr)
	require.Equal(t, parser.NotLeftValue, perr.Kind)
}

func TestErrorPushArgToNonLeftValue(t *testing.T) {
	_, err := parseSrc(t, `>1;`)
	require.Error(t, err)
	var perr *parser.Error
	require.ErrorAs(t, err, &perr)
	require.Equal(t, parser.NotLeftValue, perr.Kind)
}

func TestErrorUnexpectedToken(t *testing.T) {
	_, err := parseSrc(t, `);`)
	require.Error(t, err)
	var perr *parser.Error
	require.ErrorAs(t, err, &perr)
	require.Equal(t, parser.UnexpectedToken, perr.Kind)
}

func TestErrorMissingSemicolon(t *testing.T) {
	_, err := parseSrc(t, `1`)
	require.Error(t, err)
}

func TestTooManyArrayElements(t *testing.T) {
	var sb strings.Builder
	sb.WriteString("[")
	for i := 0; i < 256; i++ {
		if i > 0 {
			sb.WriteString(",")
		}
		sb.WriteString("0")
	}
	sb.WriteString("];")
	_, err := parseSrc(t, sb.String())
	require.Error(t, err)
	var perr *parser.Error
	require.ErrorAs(t, err, &perr)
	require.Equal(t, parser.TooManyElements, perr.Kind)
}

func TestPrecedenceArithmeticBeforeComparison(t *testing.T) {
	// 1 + 2 * 3 == 7 should parse as (1 + (2 * 3)) == 7, not ((1+2)*3) == 7.
	b := mustParse(t, `1 + 2 * 3 == 7;`)
	out := dis(t, b)
	addIdx := strings.Index(out, "ADD")
	mulIdx := strings.Index(out, "MUL")
	cmpIdx := strings.Index(out, "CMP_EQ")
	require.True(t, mulIdx < addIdx)
	require.True(t, addIdx < cmpIdx)
}

func TestRightAssociativeAssignChain(t *testing.T) {
	// x = y = 3 must store into y first, then into x, so the y STORE
	// appears before the x STORE in the emitted instruction stream.
	b := mustParse(t, `x = 1; y = 1; x = y = 3;`)
	out := dis(t, b)
	last := out[strings.LastIndex(out, "PUSH_INT 3"):]
	yStore := strings.Index(last, "STORE 1")
	xStore := strings.Index(last, "STORE 0")
	require.True(t, yStore >= 0 && xStore >= 0 && yStore < xStore)
}
