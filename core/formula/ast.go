package formula

import (
	"fmt"

	"github.com/shopspring/decimal"

	"price-list/core/types"
	"price-list/internal/errors"
)

// Variable names available to formulas
const (
	VarUnitPrice = "unit_price"
	VarCostPrice = "cost_price"
	VarListPrice = "list_price"
)

// DivisionPlaces is the number of fractional digits kept by '/'.
// Every other operator is exact.
const DivisionPlaces = 28

// node is an expression tree node
type node interface {
	eval(b types.Bindings) (decimal.Decimal, error)
	String() string
}

type numberNode struct {
	value decimal.Decimal
	text  string
}

func (n numberNode) eval(types.Bindings) (decimal.Decimal, error) {
	return n.value, nil
}

func (n numberNode) String() string {
	return n.text
}

type variableNode struct {
	name string
}

func (n variableNode) eval(b types.Bindings) (decimal.Decimal, error) {
	switch n.name {
	case VarUnitPrice:
		if b.UnitPrice == nil {
			return decimal.Zero, errors.FormulaEvaluation("%s is not bound: no base price was given", VarUnitPrice).
				WithContext("variable", VarUnitPrice)
		}
		return *b.UnitPrice, nil
	case VarCostPrice:
		return b.CostPrice, nil
	case VarListPrice:
		return b.ListPrice, nil
	}
	// The parser only builds variable nodes for known names.
	return decimal.Zero, errors.Internal(fmt.Sprintf("unknown variable %q", n.name), nil)
}

func (n variableNode) String() string {
	return n.name
}

type unaryNode struct {
	op      tokenKind
	operand node
}

func (n unaryNode) eval(b types.Bindings) (decimal.Decimal, error) {
	v, err := n.operand.eval(b)
	if err != nil {
		return decimal.Zero, err
	}
	if n.op == tokenMinus {
		return v.Neg(), nil
	}
	return v, nil
}

func (n unaryNode) String() string {
	if n.op == tokenMinus {
		return "(-" + n.operand.String() + ")"
	}
	return "(+" + n.operand.String() + ")"
}

type binaryNode struct {
	op          tokenKind
	left, right node
}

func (n binaryNode) eval(b types.Bindings) (decimal.Decimal, error) {
	l, err := n.left.eval(b)
	if err != nil {
		return decimal.Zero, err
	}
	r, err := n.right.eval(b)
	if err != nil {
		return decimal.Zero, err
	}

	switch n.op {
	case tokenPlus:
		return l.Add(r), nil
	case tokenMinus:
		return l.Sub(r), nil
	case tokenStar:
		return l.Mul(r), nil
	case tokenSlash:
		if r.IsZero() {
			return decimal.Zero, errors.FormulaEvaluation("division by zero in %s", n)
		}
		return l.DivRound(r, DivisionPlaces), nil
	}
	return decimal.Zero, errors.Internal(fmt.Sprintf("unknown operator %s", n.op), nil)
}

func (n binaryNode) String() string {
	op := map[tokenKind]string{tokenPlus: "+", tokenMinus: "-", tokenStar: "*", tokenSlash: "/"}[n.op]
	return "(" + n.left.String() + " " + op + " " + n.right.String() + ")"
}
