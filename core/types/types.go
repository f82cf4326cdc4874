// Package types defines core domain types shared across all layers.
// This package contains NO business logic - only type definitions.
package types

import "github.com/shopspring/decimal"

// Unit is a unit of measure. Units in the same category are convertible
// through their factor to the category's base unit.
type Unit struct {
	// ID is the unit identifier (e.g., "kilogram")
	ID string `json:"id"`

	// Name is the display name
	Name string `json:"name,omitempty"`

	// Symbol is the short display symbol (e.g., "kg")
	Symbol string `json:"symbol,omitempty"`

	// Category groups convertible units (e.g., "weight")
	Category string `json:"category"`

	// Factor converts one of this unit into the category base unit
	Factor decimal.Decimal `json:"factor"`
}

// Category is a node in the product category tree
type Category struct {
	ID       string  `json:"id"`
	Name     string  `json:"name,omitempty"`
	ParentID *string `json:"parent_id,omitempty"`
}

// Product is the read-only view of a product variant the pricing core needs
type Product struct {
	// ID identifies the product variant
	ID string `json:"id"`

	// Name is the display name
	Name string `json:"name,omitempty"`

	// DefaultUnit is the unit thresholds are expressed in ("" = undefined)
	DefaultUnit string `json:"default_unit"`

	// ListPrice is the catalogue sale price (nil = unset)
	ListPrice *decimal.Decimal `json:"list_price,omitempty"`

	// CostPrice is the purchase cost (nil = unset)
	CostPrice *decimal.Decimal `json:"cost_price,omitempty"`

	// Categories are the categories the product is directly tagged with
	Categories []string `json:"categories,omitempty"`
}

// ListPriceOrZero returns the list price, or zero when unset
func (p *Product) ListPriceOrZero() decimal.Decimal {
	if p == nil || p.ListPrice == nil {
		return decimal.Zero
	}
	return *p.ListPrice
}

// CostPriceOrZero returns the cost price, or zero when unset
func (p *Product) CostPriceOrZero() decimal.Decimal {
	if p == nil || p.CostPrice == nil {
		return decimal.Zero
	}
	return *p.CostPrice
}

// Ptr returns a pointer to v. Handy for optional fields.
func Ptr[T any](v T) *T {
	return &v
}
