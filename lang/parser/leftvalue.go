package parser

import "github.com/mna/cute/lang/bytecode"

// lvKind identifies which of the five left-value variants a pending
// left-value represents.
type lvKind int

const (
	lvNone lvKind = iota
	lvVariable
	lvSuper
	lvField
	lvItem
	lvSlice
)

// leftValue is a parser-tracked handle to a location that can be read or
// written without re-parsing, per the spec's left-value threading design.
// For Item and Slice, the container (and index/start/end) are already on
// the operand stack by the time a leftValue of that kind exists; for
// Field, the receiver object is already on the stack; Variable and Super
// need nothing beyond the name.
type leftValue struct {
	kind lvKind
	name string
}

// exprResult is the result of parsing an expression sub-unit: either a
// pending left-value (lv != nil, not yet read) or an already-materialized
// value sitting on top of the operand stack (lv == nil).
type exprResult struct {
	lv *leftValue
}

func materialized() exprResult { return exprResult{} }

func pendingVariable(name string) exprResult {
	return exprResult{lv: &leftValue{kind: lvVariable, name: name}}
}

func pendingSuper(name string) exprResult {
	return exprResult{lv: &leftValue{kind: lvSuper, name: name}}
}

func pendingField(name string) exprResult {
	return exprResult{lv: &leftValue{kind: lvField, name: name}}
}

func pendingItem() exprResult {
	return exprResult{lv: &leftValue{kind: lvItem}}
}

func pendingSlice() exprResult {
	return exprResult{lv: &leftValue{kind: lvSlice}}
}

// emitRead pushes the value at lv onto the operand stack.
func (p *Parser) emitRead(lv *leftValue) error {
	switch lv.kind {
	case lvVariable:
		return p.prog.EmitName(bytecode.LOAD, lv.name)
	case lvSuper:
		return p.prog.EmitName(bytecode.LOAD_SUPER, lv.name)
	case lvField:
		return p.prog.EmitName(bytecode.LOAD_FIELD, lv.name)
	case lvItem:
		p.prog.Emit(bytecode.LOAD_ITEM)
		return nil
	case lvSlice:
		p.prog.Emit(bytecode.LOAD_SLICE)
		return nil
	}
	return nil
}

// materialize ensures r's value is on top of the operand stack, reading a
// pending left-value if necessary, and returns the materialized result.
func (p *Parser) materialize(r exprResult) (exprResult, error) {
	if r.lv == nil {
		return r, nil
	}
	if err := p.emitRead(r.lv); err != nil {
		return exprResult{}, err
	}
	return materialized(), nil
}

// emitWrite stores the value already on top of the operand stack into lv,
// leaving a copy of that value on top as the expression's result (so
// assignment is itself an expression).
func (p *Parser) emitWrite(lv *leftValue) error {
	switch lv.kind {
	case lvVariable:
		p.prog.Emit(bytecode.DUP)
		return p.prog.EmitName(bytecode.STORE, lv.name)
	case lvSuper:
		p.prog.Emit(bytecode.DUP)
		return p.prog.EmitName(bytecode.STORE_SUPER, lv.name)
	case lvField:
		p.prog.Emit(bytecode.DUP_PRE2)
		return p.prog.EmitName(bytecode.STORE_FIELD, lv.name)
	case lvItem:
		p.prog.Emit(bytecode.DUP_PRE3)
		p.prog.Emit(bytecode.STORE_ITEM)
		return nil
	case lvSlice:
		p.prog.Emit(bytecode.DUP_PRE4)
		p.prog.Emit(bytecode.STORE_SLICE)
		return nil
	}
	return nil
}
