package parser

import (
	"github.com/mna/cute/lang/bytecode"
	"github.com/mna/cute/lang/lexer"
	"github.com/mna/cute/lang/token"
)

// Parser turns a token stream into bytecode, emitting directly into a
// bytecode.Program with no intermediate AST.
type Parser struct {
	lex  *lexer.Lexer
	prog *bytecode.Program
}

// New creates a Parser over src. srcPath, if non-empty, is recorded on the
// resulting bundle for relative LOAD_LIB resolution.
func New(src, srcPath string) *Parser {
	p := &Parser{lex: lexer.New(src), prog: bytecode.NewProgram()}
	p.prog.SrcPath = srcPath
	return p
}

// Parse compiles the whole source as a top-level statement list and
// returns the finished bundle.
func (p *Parser) Parse() (*bytecode.Bundle, error) {
	if err := p.parseStatementList(token.EOF, 0); err != nil {
		return nil, err
	}
	p.prog.EmitImplicitReturn()
	return p.prog.Bundle(), nil
}

func (p *Parser) peek() (token.Token, error) {
	return p.lex.Peek()
}

func (p *Parser) next() (token.Token, error) {
	return p.lex.Next()
}

func (p *Parser) errorAt(pos token.Pos, err error) error {
	return wrapLex(pos, err)
}

func (p *Parser) unexpected(tok token.Token) error {
	return &Error{Kind: UnexpectedToken, Pos: tok.Pos, Tok: tok}
}

func isSingle(tok token.Token, ch rune) bool {
	return tok.Kind == token.SINGLE && tok.Ch == ch
}

// expectSingle consumes tok if it is the single-char delimiter ch, else
// returns UnexpectedToken.
func (p *Parser) expectSingle(ch rune) error {
	tok, err := p.next()
	if err != nil {
		return p.errorAt(tok.Pos, err)
	}
	if !isSingle(tok, ch) {
		return p.unexpected(tok)
	}
	return nil
}

// parseStatementList parses statements until it sees end (token.EOF or a
// SINGLE '}'), not consuming the terminator itself if it is '}' (the
// caller does that). Each statement is an expression followed by ';',
// with an implicit POP emitted after the (possibly materialized)
// expression value so the operand stack is empty at statement boundaries.
func (p *Parser) parseStatementList(end token.Kind, endCh rune) error {
	for {
		tok, err := p.peek()
		if err != nil {
			return p.errorAt(tok.Pos, err)
		}
		if tok.Kind == token.EOF {
			if end == token.EOF {
				return nil
			}
			return p.unexpected(tok)
		}
		if end == token.SINGLE && isSingle(tok, endCh) {
			return nil
		}

		result, err := p.parseExpression(0)
		if err != nil {
			return err
		}
		if _, err := p.materialize(result); err != nil {
			return err
		}
		p.prog.Emit(bytecode.POP)

		semi, err := p.next()
		if err != nil {
			return p.errorAt(semi.Pos, err)
		}
		if !isSingle(semi, ';') {
			return p.unexpected(semi)
		}
	}
}

// parseExpression implements precedence-climbing: parse a unit, then
// while the next infix operator's left priority exceeds limit, consume it
// and fold it with a right-hand side parsed at that operator's right
// priority.
func (p *Parser) parseExpression(limit int) (exprResult, error) {
	left, err := p.parseUnit()
	if err != nil {
		return exprResult{}, err
	}
	for {
		tok, err := p.peek()
		if err != nil {
			return exprResult{}, p.errorAt(tok.Pos, err)
		}
		key, ok := opKey(tok)
		if !ok {
			return left, nil
		}
		info, ok := infixOps[key]
		if !ok {
			return left, nil
		}
		leftPri, rightPri := climb(info.pri, info.rightAssoc)
		if leftPri <= limit {
			return left, nil
		}
		if _, err := p.next(); err != nil {
			return exprResult{}, err
		}
		left, err = p.parseInfix(info, rightPri, left)
		if err != nil {
			return exprResult{}, err
		}
	}
}

func (p *Parser) parseInfix(info infixInfo, rightPri int, left exprResult) (exprResult, error) {
	switch info.kind {
	case infixAssign:
		if left.lv == nil {
			return exprResult{}, &Error{Kind: NotLeftValue}
		}
		rhs, err := p.parseExpression(rightPri)
		if err != nil {
			return exprResult{}, err
		}
		if _, err := p.materialize(rhs); err != nil {
			return exprResult{}, err
		}
		if err := p.emitWrite(left.lv); err != nil {
			return exprResult{}, wrapGen(token.Pos{}, err)
		}
		return materialized(), nil

	case infixOr, infixAnd:
		if _, err := p.materialize(left); err != nil {
			return exprResult{}, err
		}
		p.prog.Emit(bytecode.DUP)
		var jmpOp bytecode.Op
		if info.kind == infixOr {
			jmpOp = bytecode.JT
		} else {
			jmpOp = bytecode.JF
		}
		fixup := p.prog.ReserveForward(jmpOp)
		p.prog.Emit(bytecode.POP)
		rhs, err := p.parseExpression(rightPri)
		if err != nil {
			return exprResult{}, err
		}
		if _, err := p.materialize(rhs); err != nil {
			return exprResult{}, err
		}
		if err := p.prog.PatchHere(fixup); err != nil {
			return exprResult{}, wrapGen(token.Pos{}, err)
		}
		return materialized(), nil

	case infixTernary:
		if _, err := p.materialize(left); err != nil {
			return exprResult{}, err
		}
		elseFixup := p.prog.ReserveForward(bytecode.JF)
		thenResult, err := p.parseExpression(rightPri)
		if err != nil {
			return exprResult{}, err
		}
		if _, err := p.materialize(thenResult); err != nil {
			return exprResult{}, err
		}
		if err := p.expectSingle(':'); err != nil {
			return exprResult{}, err
		}
		endFixup := p.prog.ReserveForward(bytecode.JMP)
		if err := p.prog.PatchHere(elseFixup); err != nil {
			return exprResult{}, wrapGen(token.Pos{}, err)
		}
		elseResult, err := p.parseExpression(rightPri)
		if err != nil {
			return exprResult{}, err
		}
		if _, err := p.materialize(elseResult); err != nil {
			return exprResult{}, err
		}
		if err := p.prog.PatchHere(endFixup); err != nil {
			return exprResult{}, wrapGen(token.Pos{}, err)
		}
		return materialized(), nil

	default:
		if _, err := p.materialize(left); err != nil {
			return exprResult{}, err
		}
		rhs, err := p.parseExpression(rightPri)
		if err != nil {
			return exprResult{}, err
		}
		if _, err := p.materialize(rhs); err != nil {
			return exprResult{}, err
		}
		p.prog.Emit(binaryOpcode(info.kind))
		return materialized(), nil
	}
}

func binaryOpcode(kind infixKind) bytecode.Op {
	switch kind {
	case infixCmpEq:
		return bytecode.CMP_EQ
	case infixCmpNe:
		return bytecode.CMP_NE
	case infixCmpGt:
		return bytecode.CMP_GT
	case infixCmpLt:
		return bytecode.CMP_LT
	case infixCmpGe:
		return bytecode.CMP_GE
	case infixCmpLe:
		return bytecode.CMP_LE
	case infixBor:
		return bytecode.BOR
	case infixBxor:
		return bytecode.BXOR
	case infixBand:
		return bytecode.BAND
	case infixShl:
		return bytecode.SHL
	case infixShr:
		return bytecode.SHR
	case infixAdd:
		return bytecode.ADD
	case infixSub:
		return bytecode.SUB
	case infixMul:
		return bytecode.MUL
	case infixDiv:
		return bytecode.DIV
	case infixMod:
		return bytecode.MOD
	default:
		panic("parser: unhandled binary opcode kind")
	}
}
