package parser

import (
	"github.com/mna/cute/lang/bytecode"
	"github.com/mna/cute/lang/token"
)

// parseUnit parses an optional chain of prefix operators followed by a
// simple expression with its suffix chain (field/call/index/slice).
func (p *Parser) parseUnit() (exprResult, error) {
	tok, err := p.peek()
	if err != nil {
		return exprResult{}, p.errorAt(tok.Pos, err)
	}
	if key, ok := opKey(tok); ok {
		if info, ok := prefixOps[key]; ok {
			return p.parsePrefix(info)
		}
	}
	return p.parseSimpleWithSuffix()
}

func (p *Parser) parsePrefix(info prefixInfo) (exprResult, error) {
	if _, err := p.next(); err != nil {
		return exprResult{}, err
	}

	switch info.kind {
	case prefixPlus:
		operand, err := p.parseExpression(info.pri)
		if err != nil {
			return exprResult{}, err
		}
		return p.materialize(operand)

	case prefixNeg:
		return p.parseUnaryOp(info.pri, bytecode.NEG)
	case prefixNot:
		return p.parseUnaryOp(info.pri, bytecode.NOT)
	case prefixBinv:
		return p.parseUnaryOp(info.pri, bytecode.BINV)
	case prefixLen:
		return p.parseUnaryOp(info.pri, bytecode.LEN)
	case prefixType:
		return p.parseUnaryOp(info.pri, bytecode.TYPE)
	case prefixReturn:
		return p.parseUnaryOp(info.pri, bytecode.RETURN)

	case prefixOut:
		operand, err := p.parseExpression(info.pri)
		if err != nil {
			return exprResult{}, err
		}
		if _, err := p.materialize(operand); err != nil {
			return exprResult{}, err
		}
		p.prog.Emit(bytecode.DUP)
		p.prog.Emit(bytecode.OUT)
		return materialized(), nil

	case prefixLoop:
		return p.parseLoop()

	case prefixPushArg:
		operand, err := p.parseExpression(info.pri)
		if err != nil {
			return exprResult{}, err
		}
		if operand.lv == nil {
			return exprResult{}, &Error{Kind: NotLeftValue}
		}
		argIdx, err := p.prog.NextArg()
		if err != nil {
			return exprResult{}, wrapGen(token.Pos{}, err)
		}
		p.prog.EmitByte(bytecode.PUSH_ARG, argIdx)
		if err := p.emitWrite(operand.lv); err != nil {
			return exprResult{}, wrapGen(token.Pos{}, err)
		}
		return materialized(), nil

	case prefixIn:
		operand, err := p.parseExpression(info.pri)
		if err != nil {
			return exprResult{}, err
		}
		if operand.lv == nil {
			return exprResult{}, &Error{Kind: NotLeftValue}
		}
		p.prog.Emit(bytecode.IN)
		if err := p.emitWrite(operand.lv); err != nil {
			return exprResult{}, wrapGen(token.Pos{}, err)
		}
		return materialized(), nil
	}
	panic("parser: unhandled prefix kind")
}

func (p *Parser) parseUnaryOp(pri int, op bytecode.Op) (exprResult, error) {
	operand, err := p.parseExpression(pri)
	if err != nil {
		return exprResult{}, err
	}
	if _, err := p.materialize(operand); err != nil {
		return exprResult{}, err
	}
	p.prog.Emit(op)
	return materialized(), nil
}

// parseLoop implements the `:` do-while-non-null loop operator. The
// reentry point sits at the POP that discards the previous iteration's
// carried value (or the initial PUSH_NULL on the very first pass); JN
// branches back to it when the freshly produced body value is not null,
// so the loop continues while the body keeps producing non-null values
// and leaves the final (null) value on the stack once it stops.
func (p *Parser) parseLoop() (exprResult, error) {
	p.prog.Emit(bytecode.PUSH_NULL)
	loopPos := p.prog.Pos()
	p.prog.Emit(bytecode.POP)

	body, err := p.parseExpression(0)
	if err != nil {
		return exprResult{}, err
	}
	if _, err := p.materialize(body); err != nil {
		return exprResult{}, err
	}
	p.prog.Emit(bytecode.DUP)
	if err := p.prog.JumpBack(bytecode.JN, loopPos); err != nil {
		return exprResult{}, wrapGen(token.Pos{}, err)
	}
	return materialized(), nil
}

func (p *Parser) parseSimpleWithSuffix() (exprResult, error) {
	base, err := p.parseSimple()
	if err != nil {
		return exprResult{}, err
	}
	return p.parseSuffixChain(base)
}

func (p *Parser) parseSimple() (exprResult, error) {
	tok, err := p.next()
	if err != nil {
		return exprResult{}, p.errorAt(tok.Pos, err)
	}

	switch tok.Kind {
	case token.IDENT:
		return pendingVariable(tok.Str), nil
	case token.INT:
		if err := p.prog.PushInt(tok.Int); err != nil {
			return exprResult{}, wrapGen(tok.Pos, err)
		}
		return materialized(), nil
	case token.FLOAT:
		if err := p.prog.PushFloat(tok.Float); err != nil {
			return exprResult{}, wrapGen(tok.Pos, err)
		}
		return materialized(), nil
	case token.STRING:
		if err := p.prog.PushStr(tok.Str); err != nil {
			return exprResult{}, wrapGen(tok.Pos, err)
		}
		return materialized(), nil
	}

	if tok.Kind == token.SINGLE {
		switch tok.Ch {
		case '(':
			inner, err := p.parseExpression(0)
			if err != nil {
				return exprResult{}, err
			}
			if err := p.expectSingle(')'); err != nil {
				return exprResult{}, err
			}
			return inner, nil
		case '{':
			return p.parseImmediateBlock()
		case '@':
			return p.parseAtExpr()
		case '[':
			count, err := p.parseExprList(']')
			if err != nil {
				return exprResult{}, err
			}
			p.prog.EmitByte(bytecode.NEW_ARRAY, byte(count))
			return materialized(), nil
		case '$':
			return p.parseSuperExpr()
		}
	}
	return exprResult{}, p.unexpected(tok)
}

func (p *Parser) parseImmediateBlock() (exprResult, error) {
	idx, err := p.prog.OpenFunc()
	if err != nil {
		return exprResult{}, wrapGen(token.Pos{}, err)
	}
	if err := p.parseStatementList(token.SINGLE, '}'); err != nil {
		return exprResult{}, err
	}
	p.prog.EmitImplicitReturn()
	p.prog.CloseFunc()
	if err := p.expectSingle('}'); err != nil {
		return exprResult{}, err
	}
	p.prog.EmitByte(bytecode.PUSH_CLOSURE, idx)
	p.prog.EmitByte(bytecode.CALL, 0)
	return materialized(), nil
}

func (p *Parser) parseAtExpr() (exprResult, error) {
	tok, err := p.peek()
	if err != nil {
		return exprResult{}, p.errorAt(tok.Pos, err)
	}
	if isSingle(tok, '{') {
		p.next()
		idx, err := p.prog.OpenFunc()
		if err != nil {
			return exprResult{}, wrapGen(token.Pos{}, err)
		}
		if err := p.parseStatementList(token.SINGLE, '}'); err != nil {
			return exprResult{}, err
		}
		p.prog.EmitImplicitReturn()
		p.prog.CloseFunc()
		if err := p.expectSingle('}'); err != nil {
			return exprResult{}, err
		}
		p.prog.EmitByte(bytecode.PUSH_CLOSURE, idx)
		return materialized(), nil
	}
	if tok.Kind == token.IDENT {
		p.next()
		if err := p.prog.EmitName(bytecode.LOAD_LIB, tok.Str); err != nil {
			return exprResult{}, wrapGen(tok.Pos, err)
		}
		return materialized(), nil
	}
	if tok.Kind == token.STRING {
		p.next()
		if err := p.prog.EmitName(bytecode.LOAD_LIB, tok.Str); err != nil {
			return exprResult{}, wrapGen(tok.Pos, err)
		}
		return materialized(), nil
	}
	return exprResult{}, p.unexpected(tok)
}

// parseSuperExpr handles `$name` (one or more leading '$' already seen,
// the first one consumed by the caller switch): a single leading '$'
// yields a Super left-value read/written via LOAD_SUPER/STORE_SUPER
// directly; two or more emit PUSH_SUPER (count-2) and leave a pending
// Field left-value on the now-pushed ancestor scope object.
func (p *Parser) parseSuperExpr() (exprResult, error) {
	count := 1
	for {
		tok, err := p.peek()
		if err != nil {
			return exprResult{}, p.errorAt(tok.Pos, err)
		}
		if !isSingle(tok, '$') {
			break
		}
		p.next()
		count++
	}
	nameTok, err := p.next()
	if err != nil {
		return exprResult{}, p.errorAt(nameTok.Pos, err)
	}
	if nameTok.Kind != token.IDENT {
		return exprResult{}, p.unexpected(nameTok)
	}
	if count == 1 {
		return pendingSuper(nameTok.Str), nil
	}
	level := count - 2
	p.prog.EmitByte(bytecode.PUSH_SUPER, byte(level))
	return pendingField(nameTok.Str), nil
}

// parseSuffixChain composes `.name`, `(args)`, `[index]`/`[start:end]`
// after a simple expression. Each step that consumes a pending left-value
// reads it first (emitting its materializing code) before continuing.
func (p *Parser) parseSuffixChain(base exprResult) (exprResult, error) {
	for {
		tok, err := p.peek()
		if err != nil {
			return exprResult{}, p.errorAt(tok.Pos, err)
		}
		if tok.Kind != token.SINGLE {
			return base, nil
		}
		switch tok.Ch {
		case '.':
			p.next()
			nameTok, err := p.next()
			if err != nil {
				return exprResult{}, p.errorAt(nameTok.Pos, err)
			}
			if nameTok.Kind != token.IDENT {
				return exprResult{}, p.unexpected(nameTok)
			}
			if _, err := p.materialize(base); err != nil {
				return exprResult{}, err
			}
			base = pendingField(nameTok.Str)

		case '(':
			p.next()
			if _, err := p.materialize(base); err != nil {
				return exprResult{}, err
			}
			count, err := p.parseExprList(')')
			if err != nil {
				return exprResult{}, err
			}
			p.prog.EmitByte(bytecode.CALL, byte(count))
			base = materialized()

		case '[':
			p.next()
			if _, err := p.materialize(base); err != nil {
				return exprResult{}, err
			}
			next, err := p.parseBracketSuffix()
			if err != nil {
				return exprResult{}, err
			}
			base = next

		default:
			return base, nil
		}
	}
}

// parseBracketSuffix parses the inside of a `[...]` suffix, already past
// the object (materialized onto the stack) and the opening bracket. It
// distinguishes `[index]` from `[start:end]` (either side optional) by
// watching for a ':'.
func (p *Parser) parseBracketSuffix() (exprResult, error) {
	tok, err := p.peek()
	if err != nil {
		return exprResult{}, p.errorAt(tok.Pos, err)
	}

	if isSingle(tok, ':') {
		p.next()
		p.prog.Emit(bytecode.PUSH_NULL) // start omitted
		return p.finishSlice()
	}

	idxOrStart, err := p.parseExpression(0)
	if err != nil {
		return exprResult{}, err
	}
	if _, err := p.materialize(idxOrStart); err != nil {
		return exprResult{}, err
	}

	tok, err = p.peek()
	if err != nil {
		return exprResult{}, p.errorAt(tok.Pos, err)
	}
	if isSingle(tok, ':') {
		p.next()
		return p.finishSlice()
	}
	if err := p.expectSingle(']'); err != nil {
		return exprResult{}, err
	}
	return pendingItem(), nil
}

// finishSlice parses the end-of-slice expression (already past the ':'),
// treating an immediately following ']' as an omitted end (PUSH_NULL).
func (p *Parser) finishSlice() (exprResult, error) {
	tok, err := p.peek()
	if err != nil {
		return exprResult{}, p.errorAt(tok.Pos, err)
	}
	if isSingle(tok, ']') {
		p.next()
		p.prog.Emit(bytecode.PUSH_NULL)
		return pendingSlice(), nil
	}
	end, err := p.parseExpression(0)
	if err != nil {
		return exprResult{}, err
	}
	if _, err := p.materialize(end); err != nil {
		return exprResult{}, err
	}
	if err := p.expectSingle(']'); err != nil {
		return exprResult{}, err
	}
	return pendingSlice(), nil
}

// parseExprList parses a comma-separated, possibly empty list of
// expressions up to and including the close delimiter, materializing each
// one in turn (leaving them on the stack in order), and returns the count.
func (p *Parser) parseExprList(close rune) (int, error) {
	tok, err := p.peek()
	if err != nil {
		return 0, p.errorAt(tok.Pos, err)
	}
	if isSingle(tok, close) {
		p.next()
		return 0, nil
	}

	count := 0
	for {
		expr, err := p.parseExpression(0)
		if err != nil {
			return 0, err
		}
		if _, err := p.materialize(expr); err != nil {
			return 0, err
		}
		count++
		if count > 255 {
			return 0, &Error{Kind: TooManyElements}
		}

		tok, err := p.next()
		if err != nil {
			return 0, p.errorAt(tok.Pos, err)
		}
		if isSingle(tok, close) {
			return count, nil
		}
		if !isSingle(tok, ',') {
			return 0, p.unexpected(tok)
		}
	}
}
