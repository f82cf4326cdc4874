package formula

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"price-list/core/types"
	"price-list/internal/errors"
)

func d(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func bindings(unit, cost, list string) types.Bindings {
	b := types.Bindings{CostPrice: d(cost), ListPrice: d(list)}
	if unit != "" {
		b.UnitPrice = types.Ptr(d(unit))
	}
	return b
}

func TestEvaluate(t *testing.T) {
	b := bindings("10", "4", "12.5")

	tests := []struct {
		formula  string
		expected string
	}{
		{formula: "2 * (3 + 4)", expected: "14"},
		{formula: "unit_price", expected: "10"},
		{formula: "unit_price * 0.8", expected: "8"},
		{formula: "unit_price * 1.1", expected: "11"},
		{formula: "cost_price * 1.2", expected: "4.8"},
		{formula: "list_price - unit_price", expected: "2.5"},
		{formula: "1 + 2 * 3", expected: "7"},
		{formula: "(1 + 2) * 3", expected: "9"},
		{formula: "10 - 4 - 3", expected: "3"},
		{formula: "100 / 10 / 2", expected: "5"},
		{formula: "-unit_price", expected: "-10"},
		{formula: "- -5", expected: "5"},
		{formula: "+5", expected: "5"},
		{formula: "2 * -3", expected: "-6"},
		{formula: "-(1 + 2) * 2", expected: "-6"},
		{formula: ".5 + 1.", expected: "1.5"},
		{formula: "0.1 + 0.2", expected: "0.3"},
		{formula: "unit_price*0.9", expected: "9"},
		{formula: "  ( ( unit_price ) )  ", expected: "10"},
		{formula: "1 / 3 * 3", expected: "0.9999999999999999999999999999"},
	}

	for _, tt := range tests {
		t.Run(tt.formula, func(t *testing.T) {
			got, err := Evaluate(tt.formula, b)
			require.NoError(t, err)
			assert.True(t, got.Equal(d(tt.expected)), "expected %s, got %s", tt.expected, got)
		})
	}
}

func TestPureArithmeticIgnoresBindings(t *testing.T) {
	for _, b := range []types.Bindings{{}, bindings("1", "2", "3"), bindings("-7", "0", "100")} {
		got, err := Evaluate("2 * (3 + 4)", b)
		require.NoError(t, err)
		assert.Equal(t, "14", got.String())
	}
}

func TestSyntaxErrors(t *testing.T) {
	tests := []struct {
		name    string
		formula string
		token   string
	}{
		{name: "empty", formula: ""},
		{name: "blank", formula: "   "},
		{name: "unknown identifier", formula: "unit_price * discount", token: "discount"},
		{name: "function call", formula: "Decimal(1)", token: "Decimal"},
		{name: "dunder name", formula: "__builtins__", token: "__builtins__"},
		{name: "attribute access", formula: "unit_price.real", token: "."},
		{name: "power operator", formula: "2 ** 3", token: "*"},
		{name: "modulo", formula: "5 % 2", token: "%"},
		{name: "comparison", formula: "1 < 2", token: "<"},
		{name: "assignment", formula: "unit_price = 3", token: "="},
		{name: "string literal", formula: "'10'", token: "'"},
		{name: "trailing operator", formula: "1 +"},
		{name: "leading binary operator", formula: "* 2", token: "*"},
		{name: "missing close paren", formula: "(1 + 2"},
		{name: "extra close paren", formula: "1 + 2)", token: ")"},
		{name: "empty parens", formula: "()", token: ")"},
		{name: "adjacent numbers", formula: "1 2", token: "2"},
		{name: "double dot", formula: "1.2.3", token: "1.2."},
		{name: "number glued to name", formula: "2unit_price", token: "2unit_price"},
		{name: "lone dot", formula: ".", token: "."},
		{name: "exponent notation", formula: "1e3", token: "1e3"},
		{name: "non ascii", formula: "10 × 2"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Compile(tt.formula)
			require.Error(t, err)
			assert.True(t, errors.IsType(err, errors.TypeFormulaSyntax), "unexpected error: %v", err)
			if tt.token != "" {
				var e *errors.Error
				require.ErrorAs(t, err, &e)
				assert.Equal(t, tt.token, e.Context["token"])
				assert.Contains(t, e.Error(), tt.token)
			}
		})
	}
}

func TestNestingLimit(t *testing.T) {
	deep := ""
	for i := 0; i < maxDepth+1; i++ {
		deep += "("
	}
	deep += "1"
	for i := 0; i < maxDepth+1; i++ {
		deep += ")"
	}
	_, err := Compile(deep)
	assert.True(t, errors.IsType(err, errors.TypeFormulaSyntax))

	ok := "((((((((1))))))))"
	_, err = Compile(ok)
	assert.NoError(t, err)
}

func TestEvaluationErrors(t *testing.T) {
	tests := []struct {
		name     string
		formula  string
		bindings types.Bindings
	}{
		{name: "division by zero literal", formula: "1 / 0", bindings: bindings("1", "0", "0")},
		{name: "division by zero binding", formula: "unit_price / cost_price", bindings: bindings("5", "0", "0")},
		{name: "division by zero expression", formula: "1 / (2 - 2)", bindings: bindings("1", "0", "0")},
		{name: "unbound unit price", formula: "unit_price * 0.9", bindings: bindings("", "1", "1")},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			expr, err := Compile(tt.formula)
			require.NoError(t, err)
			_, err = expr.Evaluate(tt.bindings)
			require.Error(t, err)
			assert.True(t, errors.IsType(err, errors.TypeFormulaEvaluation), "unexpected error: %v", err)
		})
	}
}

func TestUnboundUnitPriceOnlyMattersWhenReferenced(t *testing.T) {
	got, err := Evaluate("cost_price * 1.2", bindings("", "5", "0"))
	require.NoError(t, err)
	assert.True(t, got.Equal(d("6")))
}

func TestExpressionIntrospection(t *testing.T) {
	expr := MustCompile("list_price - unit_price * 2 + unit_price")
	assert.Equal(t, []string{"list_price", "unit_price"}, expr.Variables())
	assert.True(t, expr.Uses(VarUnitPrice))
	assert.False(t, expr.Uses(VarCostPrice))
	assert.Equal(t, "((list_price - (unit_price * 2)) + unit_price)", expr.String())
	assert.Equal(t, "list_price - unit_price * 2 + unit_price", expr.Source())

	assert.Panics(t, func() { MustCompile("unit_price +") })
}

func TestCheck(t *testing.T) {
	assert.NoError(t, Check("unit_price * 0.8"))
	assert.NoError(t, Check("cost_price * 1.2 + list_price"))
	assert.NoError(t, Check("unit_price / cost_price"))

	err := Check("unit_price * rate")
	assert.True(t, errors.IsType(err, errors.TypeFormulaSyntax))
}
