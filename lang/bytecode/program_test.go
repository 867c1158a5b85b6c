package bytecode_test

import (
	"testing"

	"github.com/mna/cute/lang/bytecode"
	"github.com/stretchr/testify/require"
)

func TestPushIntCompression(t *testing.T) {
	p := bytecode.NewProgram()
	require.NoError(t, p.PushInt(5))
	require.NoError(t, p.PushInt(-128))
	require.NoError(t, p.PushInt(127))
	require.NoError(t, p.PushInt(128))
	require.NoError(t, p.PushInt(-129))

	f := p.Funcs[0]
	require.Equal(t, []byte{
		byte(bytecode.PUSH_INT), 5,
		byte(bytecode.PUSH_INT), 128 & 0xff,
		byte(bytecode.PUSH_INT), 127,
		byte(bytecode.PUSH_CONST), 0,
		byte(bytecode.PUSH_CONST), 1,
	}, f.Code)
	require.Len(t, p.Pool.Entries(), 2)
}

func TestStringInterning(t *testing.T) {
	p := bytecode.NewProgram()
	require.NoError(t, p.EmitName(bytecode.LOAD, "x"))
	require.NoError(t, p.EmitName(bytecode.LOAD, "y"))
	require.NoError(t, p.EmitName(bytecode.LOAD, "x"))

	entries := p.Pool.Entries()
	require.Len(t, entries, 2)
	require.Equal(t, "x", entries[0].Str)
	require.Equal(t, "y", entries[1].Str)

	f := p.Funcs[0]
	require.Equal(t, []byte{
		byte(bytecode.LOAD), 0,
		byte(bytecode.LOAD), 1,
		byte(bytecode.LOAD), 0,
	}, f.Code)
}

func TestForwardJumpPatch(t *testing.T) {
	p := bytecode.NewProgram()
	fixup := p.ReserveForward(bytecode.JF)
	p.Emit(bytecode.PUSH_NULL)
	require.NoError(t, p.PatchHere(fixup))

	f := p.Funcs[0]
	// JF, delta, PUSH_NULL
	require.Equal(t, []byte{byte(bytecode.JF), 2, byte(bytecode.PUSH_NULL)}, f.Code)
}

func TestJumpZeroIsNoop(t *testing.T) {
	// JMP with delta 0 must target the instruction immediately following
	// the jump itself: opcode byte + operand byte == 2 bytes total, so a
	// self-loop requires delta == -2.
	p := bytecode.NewProgram()
	pos := p.Pos()
	require.NoError(t, p.JumpBack(bytecode.JMP, pos))

	f := p.Funcs[0]
	require.Equal(t, []byte{byte(bytecode.JMP), byte(int8(-2))}, f.Code)
}

func TestJumpingTooFar(t *testing.T) {
	p := bytecode.NewProgram()
	fixup := p.ReserveForward(bytecode.JMP)
	for i := 0; i < 200; i++ {
		p.Emit(bytecode.PUSH_NULL)
	}
	err := p.PatchHere(fixup)
	require.Error(t, err)
	var genErr *bytecode.GeneratingError
	require.ErrorAs(t, err, &genErr)
	require.Equal(t, bytecode.JumpingTooFar, genErr.Kind)
}

func TestConstantPoolExceeding(t *testing.T) {
	p := bytecode.NewProgram()
	for i := 0; i < 256; i++ {
		require.NoError(t, p.PushFloat(float64(i)))
	}
	err := p.PushFloat(256.5)
	require.Error(t, err)
}

func TestOpenCloseFunc(t *testing.T) {
	p := bytecode.NewProgram()
	idx, err := p.OpenFunc()
	require.NoError(t, err)
	require.Equal(t, byte(1), idx)
	p.Emit(bytecode.PUSH_SELF)
	p.CloseFunc()
	p.Emit(bytecode.POP)

	require.Len(t, p.Funcs, 2)
	require.Equal(t, []byte{byte(bytecode.PUSH_SELF)}, p.Funcs[1].Code)
	require.Equal(t, []byte{byte(bytecode.POP)}, p.Funcs[0].Code)
}

func TestNextArgOverflow(t *testing.T) {
	p := bytecode.NewProgram()
	for i := 0; i < 256; i++ {
		_, err := p.NextArg()
		require.NoError(t, err)
	}
	_, err := p.NextArg()
	require.Error(t, err)
}
