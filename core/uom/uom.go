// Package uom converts quantities between units of measure.
// Conversion is linear: each unit carries a factor to its category's base unit.
package uom

import (
	"sort"

	"github.com/shopspring/decimal"

	"price-list/core/types"
	"price-list/internal/errors"
)

// Converter supplies linear conversion factors between units
type Converter interface {
	// Factor returns f such that q from-units == q*f to-units.
	// It fails with a CONVERSION_ERROR for unknown or incompatible units.
	Factor(from, to string) (decimal.Decimal, error)
}

// QuantityConverter converts quantities directly. Normalize prefers it over
// Factor so that ratios like 1/12 are applied without rounding the factor first.
type QuantityConverter interface {
	Converter
	Convert(quantity decimal.Decimal, from, to string) (decimal.Decimal, error)
}

// Normalize converts quantity from one unit to another and returns its magnitude.
// Returns and forward sales of the same size therefore compare identically.
func Normalize(conv Converter, quantity decimal.Decimal, from, to string) (decimal.Decimal, error) {
	if to == "" {
		return decimal.Zero, errors.Conversion("target unit is undefined")
	}
	if from == to {
		return quantity.Abs(), nil
	}
	if conv == nil {
		return decimal.Zero, errors.Conversion("no unit conversions available for %s to %s", from, to)
	}
	if qc, ok := conv.(QuantityConverter); ok {
		converted, err := qc.Convert(quantity, from, to)
		if err != nil {
			return decimal.Zero, err
		}
		return converted.Abs(), nil
	}
	factor, err := conv.Factor(from, to)
	if err != nil {
		return decimal.Zero, err
	}
	return quantity.Mul(factor).Abs(), nil
}

// Table is an in-memory set of units, read-only once built
type Table struct {
	units map[string]types.Unit
}

// NewTable builds a table, rejecting units without a positive factor
func NewTable(units ...types.Unit) (*Table, error) {
	t := &Table{units: make(map[string]types.Unit, len(units))}
	for _, u := range units {
		if u.ID == "" {
			return nil, errors.Input("unit id is required")
		}
		if !u.Factor.IsPositive() {
			return nil, errors.Newf(errors.TypeInput, "unit %s: factor must be positive, got %s", u.ID, u.Factor)
		}
		if _, dup := t.units[u.ID]; dup {
			return nil, errors.Newf(errors.TypeInput, "duplicate unit: %s", u.ID)
		}
		t.units[u.ID] = u
	}
	return t, nil
}

// Unit looks up a unit by id
func (t *Table) Unit(id string) (types.Unit, bool) {
	u, ok := t.units[id]
	return u, ok
}

// Units returns all units sorted by id
func (t *Table) Units() []types.Unit {
	out := make([]types.Unit, 0, len(t.units))
	for _, u := range t.units {
		out = append(out, u)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// Factor implements Converter
func (t *Table) Factor(from, to string) (decimal.Decimal, error) {
	return t.Convert(decimal.NewFromInt(1), from, to)
}

// Convert implements QuantityConverter. The quantity is scaled to the base
// unit before dividing, so only the final result is rounded.
func (t *Table) Convert(quantity decimal.Decimal, from, to string) (decimal.Decimal, error) {
	fromUnit, toUnit, err := t.pair(from, to)
	if err != nil {
		return decimal.Zero, err
	}
	if from == to {
		return quantity, nil
	}
	return quantity.Mul(fromUnit.Factor).DivRound(toUnit.Factor, factorPlaces), nil
}

func (t *Table) pair(from, to string) (types.Unit, types.Unit, error) {
	fromUnit, ok := t.units[from]
	if !ok {
		return types.Unit{}, types.Unit{}, errors.Conversion("unknown unit: %s", from)
	}
	toUnit, ok := t.units[to]
	if !ok {
		return types.Unit{}, types.Unit{}, errors.Conversion("unknown unit: %s", to)
	}
	if fromUnit.Category != toUnit.Category {
		return types.Unit{}, types.Unit{}, errors.Conversion("cannot convert %s (%s) to %s (%s)",
			from, fromUnit.Category, to, toUnit.Category)
	}
	return fromUnit, toUnit, nil
}

// factorPlaces bounds the fractional digits of a converted quantity
const factorPlaces = 28
