package lexer

import (
	"strconv"

	"github.com/mna/cute/lang/token"
)

// scanNumber handles octal (0 followed by 0-7), hex (0x/0X), binary
// (0b/0B), and decimal integer/float literals with an optional fractional
// part and eE[+-]digits exponent.
func (l *Lexer) scanNumber() (token.Token, error) {
	pos := l.curPos()
	start := l.pos

	if ch, ok := l.peekRune(); ok && ch == '0' {
		if next, ok := l.peekRuneAt(1); ok {
			switch {
			case next == 'x' || next == 'X':
				return l.scanRadix(pos, start, 16, isHexDigit)
			case next == 'b' || next == 'B':
				return l.scanRadix(pos, start, 2, isBinDigit)
			case next >= '0' && next <= '7':
				return l.scanOctal(pos, start)
			}
		}
	}
	return l.scanDecimal(pos, start)
}

func (l *Lexer) scanRadix(pos token.Pos, start int, base int, valid func(rune) bool) (token.Token, error) {
	l.advance() // '0'
	l.advance() // 'x'/'b'
	digitsStart := l.pos
	for {
		ch, ok := l.peekRune()
		if !ok || !valid(ch) {
			break
		}
		l.advance()
	}
	if l.pos == digitsStart {
		return token.Token{}, &Error{Kind: NumberError, Pos: pos}
	}
	v, err := strconv.ParseInt(string(l.src[digitsStart:l.pos]), base, 64)
	if err != nil {
		return token.Token{}, &Error{Kind: NumberError, Pos: pos}
	}
	return token.Token{Kind: token.INT, Pos: pos, Int: v}, nil
}

func (l *Lexer) scanOctal(pos token.Pos, start int) (token.Token, error) {
	l.advance() // leading '0'
	digitsStart := l.pos
	for {
		ch, ok := l.peekRune()
		if !ok || ch < '0' || ch > '7' {
			break
		}
		l.advance()
	}
	v, err := strconv.ParseInt(string(l.src[digitsStart:l.pos]), 8, 64)
	if err != nil {
		return token.Token{}, &Error{Kind: NumberError, Pos: pos}
	}
	return token.Token{Kind: token.INT, Pos: pos, Int: v}, nil
}

func (l *Lexer) scanDecimal(pos token.Pos, start int) (token.Token, error) {
	for {
		ch, ok := l.peekRune()
		if !ok || !isDigit(ch) {
			break
		}
		l.advance()
	}

	isFloat := false
	if ch, ok := l.peekRune(); ok && ch == '.' {
		if next, ok := l.peekRuneAt(1); ok && isDigit(next) {
			isFloat = true
			l.advance() // '.'
			for {
				ch, ok := l.peekRune()
				if !ok || !isDigit(ch) {
					break
				}
				l.advance()
			}
		}
	}

	if ch, ok := l.peekRune(); ok && (ch == 'e' || ch == 'E') {
		save := l.pos
		saveLine, saveCol := l.line, l.col
		l.advance()
		if sign, ok := l.peekRune(); ok && (sign == '+' || sign == '-') {
			l.advance()
		}
		expStart := l.pos
		for {
			ch, ok := l.peekRune()
			if !ok || !isDigit(ch) {
				break
			}
			l.advance()
		}
		if l.pos == expStart {
			// not a valid exponent; roll back and leave it for the next token
			l.pos, l.line, l.col = save, saveLine, saveCol
		} else {
			isFloat = true
		}
	}

	text := string(l.src[start:l.pos])
	if isFloat {
		v, err := strconv.ParseFloat(text, 64)
		if err != nil {
			return token.Token{}, &Error{Kind: NumberError, Pos: pos}
		}
		return token.Token{Kind: token.FLOAT, Pos: pos, Float: v}, nil
	}
	v, err := strconv.ParseInt(text, 10, 64)
	if err != nil {
		return token.Token{}, &Error{Kind: NumberError, Pos: pos}
	}
	return token.Token{Kind: token.INT, Pos: pos, Int: v}, nil
}

func isHexDigit(ch rune) bool {
	return isDigit(ch) || (ch >= 'a' && ch <= 'f') || (ch >= 'A' && ch <= 'F')
}

func isBinDigit(ch rune) bool { return ch == '0' || ch == '1' }
