// Package formula parses and evaluates price formulas.
//
// A formula is an arithmetic expression over decimal literals and the
// variables unit_price, cost_price and list_price, using + - * /, unary
// sign and parentheses. Nothing else is accepted: there are no function
// calls, no other names and no way to reach host code. All arithmetic is
// decimal; only division rounds, to DivisionPlaces fractional digits.
package formula

import (
	"sort"

	"github.com/shopspring/decimal"

	"price-list/core/types"
	"price-list/internal/errors"
)

// Expression is a compiled formula, safe for concurrent use
type Expression struct {
	source    string
	root      node
	variables []string
}

// Compile parses src, returning a FORMULA_SYNTAX_ERROR if it is not a valid formula
func Compile(src string) (*Expression, error) {
	root, err := parse(src)
	if err != nil {
		if e, ok := err.(*errors.Error); ok {
			e.WithContext("formula", src)
		}
		return nil, err
	}
	return &Expression{source: src, root: root, variables: collectVariables(root)}, nil
}

// MustCompile is like Compile but panics on error
func MustCompile(src string) *Expression {
	expr, err := Compile(src)
	if err != nil {
		panic(err)
	}
	return expr
}

// Evaluate compiles and evaluates src in one step
func Evaluate(src string, b types.Bindings) (decimal.Decimal, error) {
	expr, err := Compile(src)
	if err != nil {
		return decimal.Zero, err
	}
	return expr.Evaluate(b)
}

// Evaluate computes the formula. Failures are FORMULA_EVALUATION_ERRORs.
func (e *Expression) Evaluate(b types.Bindings) (decimal.Decimal, error) {
	v, err := e.root.eval(b)
	if err != nil {
		if ee, ok := err.(*errors.Error); ok {
			ee.WithContext("formula", e.source)
		}
		return decimal.Zero, err
	}
	return v, nil
}

// Source returns the formula text as written
func (e *Expression) Source() string {
	return e.source
}

// String returns the fully parenthesized form of the formula
func (e *Expression) String() string {
	return e.root.String()
}

// Variables returns the variable names the formula references, sorted
func (e *Expression) Variables() []string {
	return append([]string(nil), e.variables...)
}

// Uses reports whether the formula references the named variable
func (e *Expression) Uses(name string) bool {
	for _, v := range e.variables {
		if v == name {
			return true
		}
	}
	return false
}

// Check verifies that src compiles and evaluates with all variables bound
// to zero. Division by zero is tolerated since it depends on the bindings.
func Check(src string) error {
	expr, err := Compile(src)
	if err != nil {
		return err
	}
	zero := decimal.Zero
	_, err = expr.Evaluate(types.Bindings{UnitPrice: &zero})
	if err != nil && !errors.IsType(err, errors.TypeFormulaEvaluation) {
		return err
	}
	return nil
}

func collectVariables(root node) []string {
	seen := make(map[string]struct{})
	var walk func(n node)
	walk = func(n node) {
		switch v := n.(type) {
		case variableNode:
			seen[v.name] = struct{}{}
		case unaryNode:
			walk(v.operand)
		case binaryNode:
			walk(v.left)
			walk(v.right)
		}
	}
	walk(root)

	names := make([]string, 0, len(seen))
	for name := range seen {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
