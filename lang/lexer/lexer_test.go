package lexer_test

import (
	"testing"

	"github.com/mna/cute/lang/lexer"
	"github.com/mna/cute/lang/token"
	"github.com/stretchr/testify/require"
)

func scanAll(t *testing.T, src string) []token.Token {
	t.Helper()
	l := lexer.New(src)
	var toks []token.Token
	for {
		tok, err := l.Next()
		require.NoError(t, err)
		toks = append(toks, tok)
		if tok.Kind == token.EOF {
			return toks
		}
	}
}

func TestIdentifiersAndNumbers(t *testing.T) {
	toks := scanAll(t, "foo_1 0x1F 0b101 017 3.14 2e10 .5")
	kinds := make([]token.Kind, len(toks))
	for i, tok := range toks {
		kinds[i] = tok.Kind
	}
	require.Equal(t, []token.Kind{
		token.IDENT, token.INT, token.INT, token.INT, token.FLOAT, token.FLOAT, token.FLOAT, token.EOF,
	}, kinds)
	require.Equal(t, "foo_1", toks[0].Str)
	require.EqualValues(t, 31, toks[1].Int)
	require.EqualValues(t, 5, toks[2].Int)
	require.EqualValues(t, 15, toks[3].Int)
	require.InDelta(t, 3.14, toks[4].Float, 0.0001)
	require.InDelta(t, 2e10, toks[5].Float, 1)
	require.InDelta(t, 0.5, toks[6].Float, 0.0001)
}

func TestDotDelimiterWithoutDigit(t *testing.T) {
	toks := scanAll(t, "a.b")
	require.Equal(t, token.IDENT, toks[0].Kind)
	require.Equal(t, token.SINGLE, toks[1].Kind)
	require.Equal(t, '.', toks[1].Ch)
	require.Equal(t, token.IDENT, toks[2].Kind)
}

func TestMultiCharOperators(t *testing.T) {
	toks := scanAll(t, "== != >= <= && || << >>")
	var kinds []token.Kind
	for _, tok := range toks {
		if tok.Kind != token.EOF {
			kinds = append(kinds, tok.Kind)
		}
	}
	require.Equal(t, []token.Kind{
		token.EQ, token.NEQ, token.GE, token.LE, token.ANDAND, token.OROR, token.SHL, token.SHR,
	}, kinds)
}

func TestSingleCharFallback(t *testing.T) {
	toks := scanAll(t, "# $ @ ? ~ !")
	for _, want := range []rune{'#', '$', '@', '?', '~', '!'} {
		tok := toks[0]
		toks = toks[1:]
		if want == '!' {
			require.Equal(t, token.SINGLE, tok.Kind)
			require.Equal(t, '!', tok.Ch)
			continue
		}
		require.Equal(t, token.SINGLE, tok.Kind)
		require.Equal(t, want, tok.Ch)
	}
}

func TestStringEscapes(t *testing.T) {
	toks := scanAll(t, `"a\nb\"c" 'd\'e'`)
	require.Equal(t, "a\nb\"c", toks[0].Str)
	require.Equal(t, "d'e", toks[1].Str)
}

func TestUnterminatedStringIsError(t *testing.T) {
	l := lexer.New("\"abc")
	_, err := l.Next()
	require.Error(t, err)
	var lexErr *lexer.Error
	require.ErrorAs(t, err, &lexErr)
	require.Equal(t, lexer.StringError, lexErr.Kind)
}

func TestLineCommentsAndShebang(t *testing.T) {
	toks := scanAll(t, "#!/usr/bin/env cute\nx // trailing\n")
	require.Equal(t, token.IDENT, toks[0].Kind)
	require.Equal(t, "x", toks[0].Str)
	require.Equal(t, token.EOF, toks[1].Kind)
}

func TestUnterminatedBlockComment(t *testing.T) {
	l := lexer.New("/* never closes")
	_, err := l.Next()
	require.Error(t, err)
	var lexErr *lexer.Error
	require.ErrorAs(t, err, &lexErr)
	require.Equal(t, lexer.MultiCommentError, lexErr.Kind)
}

func TestPeekDoesNotConsume(t *testing.T) {
	l := lexer.New("abc")
	tok1, err := l.Peek()
	require.NoError(t, err)
	tok2, err := l.Peek()
	require.NoError(t, err)
	require.Equal(t, tok1, tok2)
	tok3, err := l.Next()
	require.NoError(t, err)
	require.Equal(t, tok1, tok3)
}
