package expr

import (
	"fmt"
	"strconv"
)

// Operator binding strength, loosest first. Mirrors Python: `or` binds
// loosest, then `and`, then `not`, then comparisons and membership, then
// arithmetic.
const (
	precLowest = iota
	precOr
	precAnd
	precNot
	precCompare
	precSum
	precProduct
	precPrefix
	precCall
)

var precedences = map[tokenType]int{
	tokOr:      precOr,
	tokAnd:     precAnd,
	tokEq:      precCompare,
	tokNotEq:   precCompare,
	tokLt:      precCompare,
	tokGt:      precCompare,
	tokLte:     precCompare,
	tokGte:     precCompare,
	tokIn:      precCompare,
	tokNot:     precCompare, // infix `not` only ever begins `not in`
	tokPlus:    precSum,
	tokMinus:   precSum,
	tokStar:    precProduct,
	tokSlash:   precProduct,
	tokPercent: precProduct,
	tokLparen:  precCall,
}

var infixOps = map[tokenType]BinOp{
	tokEq:      OpEq,
	tokNotEq:   OpNotEq,
	tokLt:      OpLt,
	tokGt:      OpGt,
	tokLte:     OpLtEq,
	tokGte:     OpGtEq,
	tokIn:      OpIn,
	tokPlus:    OpAdd,
	tokMinus:   OpSub,
	tokStar:    OpMul,
	tokSlash:   OpDiv,
	tokPercent: OpMod,
}

type parser struct {
	src string
	l   *lexer

	curToken  token
	peekToken token

	err *SyntaxError
}

func newParser(src string) *parser {
	p := &parser{src: src, l: newLexer(src)}
	// Read two tokens, so curToken and peekToken are both set
	p.nextToken()
	p.nextToken()
	return p
}

// parse compiles the source into a single top-level node. Assignment and
// augmented assignment are only recognized here, never nested, which keeps
// the mutation forms out of ordinary subexpressions.
func parse(src string) (Node, error) {
	p := newParser(src)
	node := p.parseTopLevel()
	if p.err != nil {
		return nil, p.err
	}
	return node, nil
}

func (p *parser) parseTopLevel() Node {
	left := p.parseExpression(precLowest)
	if p.err != nil {
		return nil
	}

	switch p.peekToken.Type {
	case tokAssign, tokPlusAssign, tokMinusAssign:
		name, ok := left.(*NameNode)
		if !ok {
			p.errorAt(p.peekToken.Pos, "assignment target must be a name")
			return nil
		}
		opTok := p.peekToken
		p.nextToken() // onto the assignment operator
		p.nextToken() // onto the first token of the right-hand side
		rhs := p.parseExpression(precLowest)
		if p.err != nil {
			return nil
		}
		switch opTok.Type {
		case tokAssign:
			left = &AssignNode{Name: name.Name, Value: rhs, Pos: opTok.Pos}
		case tokPlusAssign:
			left = &AugAssignNode{Op: OpAdd, Name: name.Name, Value: rhs, Pos: opTok.Pos}
		case tokMinusAssign:
			left = &AugAssignNode{Op: OpSub, Name: name.Name, Value: rhs, Pos: opTok.Pos}
		}
	}

	if p.peekToken.Type != tokEOF {
		p.errorAt(p.peekToken.Pos, fmt.Sprintf("unexpected %q", p.peekToken.Literal))
		return nil
	}
	return left
}

func (p *parser) parseExpression(precedence int) Node {
	left := p.parsePrefix()
	if p.err != nil {
		return nil
	}

	for precedence < p.peekPrecedence() {
		p.nextToken()
		left = p.parseInfix(left)
		if p.err != nil {
			return nil
		}
	}

	return left
}

func (p *parser) parsePrefix() Node {
	tok := p.curToken
	switch tok.Type {
	case tokIdent:
		return &NameNode{Name: tok.Literal, Pos: tok.Pos}
	case tokInt:
		value, err := strconv.ParseInt(tok.Literal, 10, 64)
		if err != nil {
			p.errorAt(tok.Pos, fmt.Sprintf("could not parse %q as integer", tok.Literal))
			return nil
		}
		return &LiteralNode{Val: Int(value), Pos: tok.Pos}
	case tokFloat:
		value, err := strconv.ParseFloat(tok.Literal, 64)
		if err != nil {
			p.errorAt(tok.Pos, fmt.Sprintf("could not parse %q as float", tok.Literal))
			return nil
		}
		return &LiteralNode{Val: Float(value), Pos: tok.Pos}
	case tokString:
		return &LiteralNode{Val: Str(tok.Literal), Pos: tok.Pos}
	case tokTrue:
		return &LiteralNode{Val: Bool(true), Pos: tok.Pos}
	case tokFalse:
		return &LiteralNode{Val: Bool(false), Pos: tok.Pos}
	case tokNone:
		return &LiteralNode{Val: Null{}, Pos: tok.Pos}
	case tokNot:
		p.nextToken()
		operand := p.parseExpression(precNot)
		return &NotNode{Operand: operand, Pos: tok.Pos}
	case tokMinus:
		p.nextToken()
		operand := p.parseExpression(precPrefix)
		return &NegNode{Operand: operand, Pos: tok.Pos}
	case tokLparen:
		p.nextToken()
		exp := p.parseExpression(precLowest)
		if !p.expectPeek(tokRparen) {
			return nil
		}
		return exp
	case tokEOF:
		p.errorAt(tok.Pos, "unexpected end of expression")
		return nil
	default:
		p.errorAt(tok.Pos, fmt.Sprintf("unexpected %q", tok.Literal))
		return nil
	}
}

func (p *parser) parseInfix(left Node) Node {
	tok := p.curToken
	switch tok.Type {
	case tokAnd:
		p.nextToken()
		right := p.parseExpression(precAnd)
		return &AndNode{Left: left, Right: right, Pos: tok.Pos}
	case tokOr:
		p.nextToken()
		right := p.parseExpression(precOr)
		return &OrNode{Left: left, Right: right, Pos: tok.Pos}
	case tokNot:
		// Infix `not` must be followed by `in`.
		if !p.expectPeek(tokIn) {
			return nil
		}
		p.nextToken()
		right := p.parseExpression(precCompare)
		return &BinaryNode{Op: OpNotIn, Left: left, Right: right, Pos: tok.Pos}
	case tokLparen:
		name, ok := left.(*NameNode)
		if !ok {
			p.errorAt(tok.Pos, "only named functions can be called")
			return nil
		}
		args := p.parseCallArguments()
		if p.err != nil {
			return nil
		}
		return &CallNode{Name: name.Name, Args: args, Pos: name.Pos}
	default:
		op, ok := infixOps[tok.Type]
		if !ok {
			p.errorAt(tok.Pos, fmt.Sprintf("unexpected %q", tok.Literal))
			return nil
		}
		precedence := precedences[tok.Type]
		p.nextToken()
		right := p.parseExpression(precedence)
		return &BinaryNode{Op: op, Left: left, Right: right, Pos: tok.Pos}
	}
}

func (p *parser) parseCallArguments() []Node {
	var args []Node

	if p.peekToken.Type == tokRparen {
		p.nextToken()
		return args
	}

	p.nextToken()
	args = append(args, p.parseExpression(precLowest))

	for p.peekToken.Type == tokComma {
		p.nextToken()
		p.nextToken()
		args = append(args, p.parseExpression(precLowest))
	}

	if !p.expectPeek(tokRparen) {
		return nil
	}

	return args
}

func (p *parser) nextToken() {
	p.curToken = p.peekToken
	p.peekToken = p.l.nextToken()
}

func (p *parser) expectPeek(t tokenType) bool {
	if p.peekToken.Type == t {
		p.nextToken()
		return true
	}
	p.errorAt(p.peekToken.Pos, fmt.Sprintf("unexpected %q", p.peekToken.Literal))
	return false
}

func (p *parser) peekPrecedence() int {
	if prec, ok := precedences[p.peekToken.Type]; ok {
		return prec
	}
	return precLowest
}

// errorAt records the first syntax error; later errors are usually noise
// caused by the first one.
func (p *parser) errorAt(pos int, msg string) {
	if p.err == nil {
		p.err = &SyntaxError{Source: p.src, Offset: pos, Msg: msg}
	}
}
