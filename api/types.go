// Package api - API types for price computation
// These types define the contract for the HTTP endpoints.
package api

import (
	"github.com/shopspring/decimal"

	"price-list/core/output"
)

// ComputeRequest is the input to POST /compute. Decimal fields accept
// JSON numbers or strings; strings avoid float rounding in clients.
type ComputeRequest struct {
	// PriceList defaults to the configured list when empty
	PriceList string `json:"price_list"`

	// Party is the optional customer
	Party *string `json:"party,omitempty"`

	// Product is the product id to price
	Product string `json:"product" validate:"required"`

	// BasePrice is bound to unit_price; omit it to leave unit_price unbound
	BasePrice *decimal.Decimal `json:"base_price,omitempty"`

	// Quantity is the requested amount; its sign is ignored
	Quantity *decimal.Decimal `json:"quantity" validate:"required"`

	// Unit is the unit Quantity is expressed in
	Unit string `json:"unit" validate:"required"`
}

// ComputeResponse is the output of POST /compute
type ComputeResponse = output.QuoteView

// PriceListsResponse is the output of GET /price-lists
type PriceListsResponse struct {
	PriceLists []output.PriceListView `json:"price_lists"`
	Count      int                    `json:"count"`
}

// ErrorResponse wraps every error body
type ErrorResponse struct {
	Error ErrorDetail `json:"error"`
}

// ErrorDetail describes one failure
type ErrorDetail struct {
	Code      string                 `json:"code"`
	Message   string                 `json:"message"`
	RequestID string                 `json:"request_id,omitempty"`
	Context   map[string]interface{} `json:"context,omitempty"`
}
