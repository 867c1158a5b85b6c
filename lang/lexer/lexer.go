// Package lexer turns cute source text into a peekable stream of tokens.
package lexer

import (
	"github.com/mna/cute/lang/token"
)

// Lexer produces tokens lazily, with one token of lookahead, from a rune
// slice (strings are decoded to runes up front so that string/array
// indexing later in the pipeline operates on stable code-unit positions).
type Lexer struct {
	src  []rune
	pos  int
	line int
	col  int

	peeked    *token.Token
	peekedErr error
}

// New creates a Lexer over src.
func New(src string) *Lexer {
	return &Lexer{src: []rune(src), line: 1, col: 1}
}

func (l *Lexer) curPos() token.Pos {
	return token.Pos{Line: l.line, Col: l.col}
}

func (l *Lexer) eof() bool { return l.pos >= len(l.src) }

func (l *Lexer) peekRune() (rune, bool) {
	if l.eof() {
		return 0, false
	}
	return l.src[l.pos], true
}

func (l *Lexer) peekRuneAt(off int) (rune, bool) {
	if l.pos+off >= len(l.src) {
		return 0, false
	}
	return l.src[l.pos+off], true
}

func (l *Lexer) advance() (rune, bool) {
	ch, ok := l.peekRune()
	if !ok {
		return 0, false
	}
	l.pos++
	if ch == '\n' {
		l.line++
		l.col = 1
	} else {
		l.col++
	}
	return ch, true
}

// Peek returns the next token without consuming it.
func (l *Lexer) Peek() (token.Token, error) {
	if l.peeked == nil {
		tok, err := l.scan()
		l.peeked = &tok
		l.peekedErr = err
	}
	return *l.peeked, l.peekedErr
}

// Next consumes and returns the next token.
func (l *Lexer) Next() (token.Token, error) {
	if l.peeked != nil {
		tok, err := *l.peeked, l.peekedErr
		l.peeked = nil
		l.peekedErr = nil
		return tok, err
	}
	return l.scan()
}

func (l *Lexer) scan() (token.Token, error) {
	if err := l.skipSpaceAndComments(); err != nil {
		return token.Token{}, err
	}
	pos := l.curPos()
	ch, ok := l.peekRune()
	if !ok {
		return token.Token{Kind: token.EOF, Pos: pos}, nil
	}

	switch {
	case isDigit(ch):
		return l.scanNumber()
	case ch == '.' :
		if next, ok := l.peekRuneAt(1); ok && isDigit(next) {
			return l.scanNumber()
		}
		l.advance()
		return token.Token{Kind: token.SINGLE, Pos: pos, Ch: '.'}, nil
	case ch == '"' || ch == '\'':
		return l.scanString()
	case isIdentStart(ch):
		return l.scanIdent()
	default:
		return l.scanOperator()
	}
}

func (l *Lexer) scanIdent() (token.Token, error) {
	pos := l.curPos()
	start := l.pos
	for {
		ch, ok := l.peekRune()
		if !ok || !isIdentPart(ch) {
			break
		}
		l.advance()
	}
	return token.Token{Kind: token.IDENT, Pos: pos, Str: string(l.src[start:l.pos])}, nil
}

func (l *Lexer) scanOperator() (token.Token, error) {
	pos := l.curPos()
	ch, _ := l.advance()

	two := func(second rune, kind token.Kind) (token.Token, bool) {
		if n, ok := l.peekRune(); ok && n == second {
			l.advance()
			return token.Token{Kind: kind, Pos: pos}, true
		}
		return token.Token{}, false
	}

	switch ch {
	case '=':
		if t, ok := two('=', token.EQ); ok {
			return t, nil
		}
	case '!':
		if t, ok := two('=', token.NEQ); ok {
			return t, nil
		}
	case '>':
		if t, ok := two('=', token.GE); ok {
			return t, nil
		}
		if t, ok := two('>', token.SHR); ok {
			return t, nil
		}
	case '<':
		if t, ok := two('=', token.LE); ok {
			return t, nil
		}
		if t, ok := two('<', token.SHL); ok {
			return t, nil
		}
	case '&':
		if t, ok := two('&', token.ANDAND); ok {
			return t, nil
		}
	case '|':
		if t, ok := two('|', token.OROR); ok {
			return t, nil
		}
	}
	return token.Token{Kind: token.SINGLE, Pos: pos, Ch: ch}, nil
}

func (l *Lexer) skipSpaceAndComments() error {
	for {
		ch, ok := l.peekRune()
		if !ok {
			return nil
		}
		switch {
		case ch == ' ' || ch == '\t' || ch == '\r' || ch == '\n':
			l.advance()
		case ch == '/' && peekIs(l, 1, '/'):
			l.skipLineComment()
		case ch == '/' && peekIs(l, 1, '*'):
			if err := l.skipBlockComment(); err != nil {
				return err
			}
		case ch == '#' && peekIs(l, 1, '!'):
			l.skipLineComment()
		default:
			return nil
		}
	}
}

func peekIs(l *Lexer, off int, want rune) bool {
	ch, ok := l.peekRuneAt(off)
	return ok && ch == want
}

func (l *Lexer) skipLineComment() {
	for {
		ch, ok := l.peekRune()
		if !ok || ch == '\n' {
			return
		}
		l.advance()
	}
}

func (l *Lexer) skipBlockComment() error {
	startPos := l.curPos()
	l.advance() // '/'
	l.advance() // '*'
	for {
		ch, ok := l.peekRune()
		if !ok {
			return &Error{Kind: MultiCommentError, Pos: startPos}
		}
		if ch == '*' && peekIs(l, 1, '/') {
			l.advance()
			l.advance()
			return nil
		}
		l.advance()
	}
}

func isDigit(ch rune) bool { return ch >= '0' && ch <= '9' }

func isIdentStart(ch rune) bool {
	return ch == '_' || (ch >= 'a' && ch <= 'z') || (ch >= 'A' && ch <= 'Z')
}

func isIdentPart(ch rune) bool {
	return isIdentStart(ch) || isDigit(ch)
}
