// Package parser implements cute's single-pass recursive-descent parser.
// It emits bytecode directly into a bytecode.Program; there is no
// intermediate AST.
package parser

import (
	"fmt"

	"github.com/mna/cute/lang/bytecode"
	"github.com/mna/cute/lang/lexer"
	"github.com/mna/cute/lang/token"
)

// ErrorKind enumerates the parse-time error kinds named in the language
// specification, beyond the lexer's own errors and the program builder's
// GeneratingError, which an Error also wraps.
type ErrorKind int

//nolint:revive
const (
	UnexpectedToken ErrorKind = iota + 1
	NotLeftValue
	TooManyElements
)

func (k ErrorKind) String() string {
	switch k {
	case UnexpectedToken:
		return "unexpected token"
	case NotLeftValue:
		return "not a left value"
	case TooManyElements:
		return "too many elements (max 255)"
	default:
		return "unknown parser error"
	}
}

// Error is a parse-time error. Exactly one of Kind, LexErr, or GenErr is
// meaningful, mirroring the spec's `ParserError { LexerError |
// UnexpectedToken | NotLeftValue | GeneratingError }` union.
type Error struct {
	Kind   ErrorKind
	Pos    token.Pos
	Tok    token.Token
	LexErr *lexer.Error
	GenErr *bytecode.GeneratingError
}

func (e *Error) Error() string {
	switch {
	case e.LexErr != nil:
		return e.LexErr.Error()
	case e.GenErr != nil:
		return fmt.Sprintf("%s: %s", e.Pos, e.GenErr)
	case e.Kind == UnexpectedToken:
		return fmt.Sprintf("%s: unexpected token %s", e.Pos, e.Tok)
	default:
		return fmt.Sprintf("%s: %s", e.Pos, e.Kind)
	}
}

func (e *Error) Unwrap() error {
	if e.LexErr != nil {
		return e.LexErr
	}
	if e.GenErr != nil {
		return e.GenErr
	}
	return nil
}

func wrapLex(pos token.Pos, err error) error {
	if err == nil {
		return nil
	}
	if lexErr, ok := err.(*lexer.Error); ok {
		return &Error{Pos: pos, LexErr: lexErr}
	}
	return err
}

func wrapGen(pos token.Pos, err error) error {
	if err == nil {
		return nil
	}
	if genErr, ok := err.(*bytecode.GeneratingError); ok {
		return &Error{Pos: pos, GenErr: genErr}
	}
	return err
}
