// Package types - Price list types
package types

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// DefaultFormula is the formula given to lines declared without one
const DefaultFormula = "unit_price"

// UnitMode selects the unit quantities are normalized to before threshold comparison
type UnitMode string

const (
	// UnitProductDefault normalizes to the product's default unit
	UnitProductDefault UnitMode = "product_default"
)

// IsValid reports whether the mode is supported
func (m UnitMode) IsValid() bool {
	return m == UnitProductDefault
}

// PriceList is an ordered set of pricing rules. Line order, by ascending
// Sequence, is the only priority mechanism.
type PriceList struct {
	ID   string `json:"id"`
	Name string `json:"name"`

	// Active lists are offered by hosts; the engine itself ignores the flag
	Active bool `json:"active"`

	// TaxIncluded marks formulas whose result already includes taxes
	TaxIncluded bool `json:"tax_included"`

	// Unit is the quantity normalization mode
	Unit UnitMode `json:"unit"`

	// Lines are owned exclusively by this list
	Lines []PriceListLine `json:"lines"`
}

// PriceListLine is one rule: match criteria plus a formula.
// A nil criterion matches anything.
type PriceListLine struct {
	Sequence int              `json:"sequence"`
	Product  *string          `json:"product,omitempty"`
	Category *string          `json:"category,omitempty"`
	Quantity *decimal.Decimal `json:"quantity,omitempty"`
	Formula  string           `json:"formula"`
}

// IsCatchAll reports whether the line has no criteria
func (l PriceListLine) IsCatchAll() bool {
	return l.Product == nil && l.Category == nil && l.Quantity == nil
}

// String renders the line criteria for logs and explanations
func (l PriceListLine) String() string {
	product, category, quantity := "*", "*", "*"
	if l.Product != nil {
		product = *l.Product
	}
	if l.Category != nil {
		category = *l.Category
	}
	if l.Quantity != nil {
		quantity = ">=" + l.Quantity.String()
	}
	return fmt.Sprintf("#%d product=%s category=%s quantity=%s formula=%q",
		l.Sequence, product, category, quantity, l.Formula)
}
