package uom

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"price-list/core/types"
	"price-list/internal/errors"
)

func weightTable(t *testing.T) *Table {
	t.Helper()
	table, err := NewTable(
		types.Unit{ID: "kilogram", Category: "weight", Factor: decimal.NewFromInt(1)},
		types.Unit{ID: "gram", Category: "weight", Factor: decimal.RequireFromString("0.001")},
		types.Unit{ID: "tonne", Category: "weight", Factor: decimal.NewFromInt(1000)},
		types.Unit{ID: "unit", Category: "count", Factor: decimal.NewFromInt(1)},
	)
	require.NoError(t, err)
	return table
}

func TestNormalize(t *testing.T) {
	table := weightTable(t)

	tests := []struct {
		name     string
		quantity string
		from     string
		to       string
		expected string
	}{
		{name: "same unit", quantity: "10", from: "kilogram", to: "kilogram", expected: "10"},
		{name: "grams to kilograms", quantity: "1000", from: "gram", to: "kilogram", expected: "1"},
		{name: "kilograms to grams", quantity: "1.5", from: "kilogram", to: "gram", expected: "1500"},
		{name: "tonnes to kilograms", quantity: "0.25", from: "tonne", to: "kilogram", expected: "250"},
		{name: "negative quantity keeps magnitude", quantity: "-10", from: "kilogram", to: "kilogram", expected: "10"},
		{name: "negative grams", quantity: "-10000", from: "gram", to: "kilogram", expected: "10"},
		{name: "zero", quantity: "0", from: "gram", to: "kilogram", expected: "0"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Normalize(table, decimal.RequireFromString(tt.quantity), tt.from, tt.to)
			require.NoError(t, err)
			assert.True(t, got.Equal(decimal.RequireFromString(tt.expected)), "got %s", got)
		})
	}
}

func TestNormalizeFailures(t *testing.T) {
	table := weightTable(t)

	tests := []struct {
		name string
		from string
		to   string
	}{
		{name: "undefined target unit", from: "kilogram", to: ""},
		{name: "unknown source unit", from: "pound", to: "kilogram"},
		{name: "unknown target unit", from: "kilogram", to: "pound"},
		{name: "incompatible categories", from: "unit", to: "kilogram"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Normalize(table, decimal.NewFromInt(1), tt.from, tt.to)
			require.Error(t, err)
			assert.True(t, errors.IsType(err, errors.TypeConversion), "unexpected error: %v", err)
		})
	}
}

func TestNormalizeWithoutConverter(t *testing.T) {
	got, err := Normalize(nil, decimal.NewFromInt(-3), "unit", "unit")
	require.NoError(t, err)
	assert.Equal(t, "3", got.String())

	_, err = Normalize(nil, decimal.NewFromInt(3), "gram", "kilogram")
	assert.True(t, errors.IsType(err, errors.TypeConversion))
}

func TestNewTableRejectsBadUnits(t *testing.T) {
	_, err := NewTable(types.Unit{ID: "broken", Category: "weight", Factor: decimal.Zero})
	assert.True(t, errors.IsType(err, errors.TypeInput))

	_, err = NewTable(
		types.Unit{ID: "gram", Category: "weight", Factor: decimal.NewFromInt(1)},
		types.Unit{ID: "gram", Category: "weight", Factor: decimal.NewFromInt(1)},
	)
	assert.True(t, errors.IsType(err, errors.TypeInput))

	_, err = NewTable(types.Unit{Category: "weight", Factor: decimal.NewFromInt(1)})
	assert.True(t, errors.IsType(err, errors.TypeInput))
}

func TestUnitsSorted(t *testing.T) {
	units := weightTable(t).Units()
	require.Len(t, units, 4)
	assert.Equal(t, "gram", units[0].ID)
	assert.Equal(t, "unit", units[3].ID)
}

func TestNormalizeNonTerminatingRatio(t *testing.T) {
	table, err := NewTable(
		types.Unit{ID: "unit", Category: "count", Factor: decimal.NewFromInt(1)},
		types.Unit{ID: "dozen", Category: "count", Factor: decimal.NewFromInt(12)},
	)
	require.NoError(t, err)

	tests := []struct {
		quantity string
		from     string
		to       string
		expected string
	}{
		{quantity: "12", from: "unit", to: "dozen", expected: "1"},
		{quantity: "-12", from: "unit", to: "dozen", expected: "1"},
		{quantity: "36", from: "unit", to: "dozen", expected: "3"},
		{quantity: "1", from: "dozen", to: "unit", expected: "12"},
	}

	for _, tt := range tests {
		t.Run(tt.quantity+" "+tt.from, func(t *testing.T) {
			got, err := Normalize(table, decimal.RequireFromString(tt.quantity), tt.from, tt.to)
			require.NoError(t, err)
			assert.True(t, got.Equal(decimal.RequireFromString(tt.expected)), "got %s", got)
		})
	}

	factor, err := table.Factor("unit", "dozen")
	require.NoError(t, err)
	assert.Equal(t, "0.0833333333333333333333333333", factor.String())
}

// factorOnly hides Convert so Normalize falls back to Factor
type factorOnly struct {
	Converter
}

func TestNormalizeFactorOnlyConverter(t *testing.T) {
	got, err := Normalize(factorOnly{weightTable(t)}, decimal.NewFromInt(-2500), "gram", "kilogram")
	require.NoError(t, err)
	assert.Equal(t, "2.5", got.String())
}
