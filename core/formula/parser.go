package formula

import (
	"price-list/internal/errors"
)

// maxDepth bounds parenthesis and unary nesting
const maxDepth = 64

// Grammar:
//
//	expr   = term { ("+" | "-") term }
//	term   = unary { ("*" | "/") unary }
//	unary  = ("+" | "-") unary | factor
//	factor = number | variable | "(" expr ")"
type parser struct {
	tokens []token
	pos    int
	depth  int
}

func parse(src string) (node, error) {
	tokens, err := tokenize(src)
	if err != nil {
		return nil, err
	}
	p := &parser{tokens: tokens}
	if p.peek().kind == tokenEOF {
		return nil, errors.FormulaSyntax(0, "empty formula")
	}
	n, err := p.expr()
	if err != nil {
		return nil, err
	}
	if tok := p.peek(); tok.kind != tokenEOF {
		return nil, p.unexpected(tok)
	}
	return n, nil
}

func (p *parser) peek() token {
	return p.tokens[p.pos]
}

func (p *parser) next() token {
	tok := p.tokens[p.pos]
	if tok.kind != tokenEOF {
		p.pos++
	}
	return tok
}

func (p *parser) expr() (node, error) {
	left, err := p.term()
	if err != nil {
		return nil, err
	}
	for k := p.peek().kind; k == tokenPlus || k == tokenMinus; k = p.peek().kind {
		p.next()
		right, err := p.term()
		if err != nil {
			return nil, err
		}
		left = binaryNode{op: k, left: left, right: right}
	}
	return left, nil
}

func (p *parser) term() (node, error) {
	left, err := p.unary()
	if err != nil {
		return nil, err
	}
	for k := p.peek().kind; k == tokenStar || k == tokenSlash; k = p.peek().kind {
		p.next()
		right, err := p.unary()
		if err != nil {
			return nil, err
		}
		left = binaryNode{op: k, left: left, right: right}
	}
	return left, nil
}

func (p *parser) unary() (node, error) {
	tok := p.peek()
	if tok.kind != tokenPlus && tok.kind != tokenMinus {
		return p.factor()
	}
	if err := p.enter(tok); err != nil {
		return nil, err
	}
	defer p.leave()

	p.next()
	operand, err := p.unary()
	if err != nil {
		return nil, err
	}
	return unaryNode{op: tok.kind, operand: operand}, nil
}

func (p *parser) factor() (node, error) {
	tok := p.next()
	switch tok.kind {
	case tokenNumber:
		return numberNode{value: tok.value, text: tok.text}, nil
	case tokenIdent:
		switch tok.text {
		case VarUnitPrice, VarCostPrice, VarListPrice:
			return variableNode{name: tok.text}, nil
		}
		return nil, errors.FormulaSyntax(tok.pos, "unknown identifier %q", tok.text).WithContext("token", tok.text)
	case tokenLParen:
		if err := p.enter(tok); err != nil {
			return nil, err
		}
		defer p.leave()

		inner, err := p.expr()
		if err != nil {
			return nil, err
		}
		if closing := p.next(); closing.kind != tokenRParen {
			if closing.kind == tokenEOF {
				return nil, errors.FormulaSyntax(closing.pos, "missing ')' for '(' at position %d", tok.pos).
					WithContext("token", "")
			}
			return nil, p.unexpected(closing)
		}
		return inner, nil
	}
	return nil, p.unexpected(tok)
}

func (p *parser) enter(tok token) error {
	p.depth++
	if p.depth > maxDepth {
		return errors.FormulaSyntax(tok.pos, "formula nested deeper than %d levels", maxDepth)
	}
	return nil
}

func (p *parser) leave() {
	p.depth--
}

func (p *parser) unexpected(tok token) error {
	if tok.kind == tokenEOF {
		return errors.FormulaSyntax(tok.pos, "unexpected end of formula").WithContext("token", "")
	}
	return errors.FormulaSyntax(tok.pos, "unexpected token %s", tok).WithContext("token", tok.text)
}
