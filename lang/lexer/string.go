package lexer

import (
	"strings"

	"github.com/mna/cute/lang/token"
)

// scanString handles strings opened and closed by the same quote
// character (" or '), with escapes \n \r \" \' \\. An embedded newline or
// EOF before the closing quote is a StringError.
func (l *Lexer) scanString() (token.Token, error) {
	pos := l.curPos()
	quote, _ := l.advance()

	var sb strings.Builder
	for {
		ch, ok := l.peekRune()
		if !ok || ch == '\n' {
			return token.Token{}, &Error{Kind: StringError, Pos: pos}
		}
		if ch == quote {
			l.advance()
			return token.Token{Kind: token.STRING, Pos: pos, Str: sb.String()}, nil
		}
		if ch == '\\' {
			l.advance()
			esc, ok := l.peekRune()
			if !ok || esc == '\n' {
				return token.Token{}, &Error{Kind: StringError, Pos: pos}
			}
			l.advance()
			switch esc {
			case 'n':
				sb.WriteByte('\n')
			case 'r':
				sb.WriteByte('\r')
			case '"':
				sb.WriteByte('"')
			case '\'':
				sb.WriteByte('\'')
			case '\\':
				sb.WriteByte('\\')
			default:
				return token.Token{}, &Error{Kind: StringError, Pos: pos}
			}
			continue
		}
		l.advance()
		sb.WriteRune(ch)
	}
}
