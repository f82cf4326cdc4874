// Package types - Pricing request and result types
package types

import "github.com/shopspring/decimal"

// Request is the transient context of one price computation
type Request struct {
	// Party is accepted for host extensions; the core does not filter on it
	Party *string `json:"party,omitempty"`

	// Product to price; nil means there is nothing to price
	Product *Product `json:"product,omitempty"`

	// BasePrice is bound to unit_price; may be nil
	BasePrice *decimal.Decimal `json:"base_price,omitempty"`

	// Quantity in Unit, any sign
	Quantity decimal.Decimal `json:"quantity"`

	// Unit the quantity is expressed in
	Unit string `json:"unit"`
}

// Bindings are the formula variables resolved for one computation
type Bindings struct {
	// UnitPrice is nil when the caller supplied no base price
	UnitPrice *decimal.Decimal
	CostPrice decimal.Decimal
	ListPrice decimal.Decimal
}

// Quote is a computed price with the rule that produced it
type Quote struct {
	PriceListID string `json:"price_list"`

	// Price is nil when there was no product, or no rule matched and no base price was given
	Price *decimal.Decimal `json:"price"`

	// Matched is true when a line was selected
	Matched bool `json:"matched"`

	// Line is the selected line, if any
	Line *PriceListLine `json:"line,omitempty"`

	// LineIndex is the index of Line within PriceList.Lines, -1 if none
	LineIndex int `json:"line_index"`

	// TaxIncluded mirrors the price list flag
	TaxIncluded bool `json:"tax_included"`
}
