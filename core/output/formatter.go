// Package output renders quotes and price lists for humans and machines.
package output

import (
	"io"
	"sort"
	"sync"

	"github.com/shopspring/decimal"

	"price-list/core/types"
	"price-list/internal/errors"
)

// Format represents output format type
type Format string

const (
	// FormatCLI is a human-readable CLI table
	FormatCLI Format = "cli"

	// FormatJSON is machine-readable JSON
	FormatJSON Format = "json"
)

// Formatter produces output in a specific format
type Formatter interface {
	// Format returns the format type
	Format() Format

	// RenderQuote writes a computed price with its explanation
	RenderQuote(w io.Writer, result *QuoteResult) error

	// RenderPriceLists writes a summary of price lists
	RenderPriceLists(w io.Writer, lists []types.PriceList) error
}

// QuoteResult is everything needed to explain one computation
type QuoteResult struct {
	// RequestID correlates the result with logs
	RequestID string

	// PriceList is the list the quote was computed against
	PriceList *types.PriceList

	// ProductID is the priced product
	ProductID string

	// Party is the optional customer
	Party *string

	// Quantity and Unit are the requested amount as given
	Quantity decimal.Decimal
	Unit     string

	// BasePrice is the unit_price binding (nil = none given)
	BasePrice *decimal.Decimal

	// Quote is the engine result
	Quote *types.Quote

	// Places rounds displayed prices; negative shows the exact value
	Places int32
}

// QuoteView is the serialized form of a quote, shared by the CLI and the API
type QuoteView struct {
	RequestID   string    `json:"request_id,omitempty"`
	PriceList   string    `json:"price_list"`
	Product     string    `json:"product"`
	Party       *string   `json:"party,omitempty"`
	Quantity    string    `json:"quantity"`
	Unit        string    `json:"unit"`
	BasePrice   *string   `json:"base_price"`
	Price       *string   `json:"price"`
	Matched     bool      `json:"matched"`
	Line        *LineView `json:"line"`
	TaxIncluded bool      `json:"tax_included"`
}

// LineView is the serialized form of a price list line
type LineView struct {
	Index    int     `json:"index"`
	Sequence int     `json:"sequence"`
	Product  *string `json:"product,omitempty"`
	Category *string `json:"category,omitempty"`
	Quantity *string `json:"quantity,omitempty"`
	Formula  string  `json:"formula"`
}

// PriceListView is the serialized form of a price list
type PriceListView struct {
	ID          string     `json:"id"`
	Name        string     `json:"name"`
	Active      bool       `json:"active"`
	TaxIncluded bool       `json:"tax_included"`
	Unit        string     `json:"unit"`
	Lines       []LineView `json:"lines"`
}

// NewQuoteView flattens a result. Prices are decimal strings so no
// precision is lost in transit.
func NewQuoteView(r *QuoteResult) QuoteView {
	v := QuoteView{
		RequestID: r.RequestID,
		Product:   r.ProductID,
		Party:     r.Party,
		Quantity:  r.Quantity.String(),
		Unit:      r.Unit,
		BasePrice: formatPrice(r.BasePrice, r.Places),
	}
	if r.PriceList != nil {
		v.PriceList = r.PriceList.ID
	}
	if q := r.Quote; q != nil {
		if q.PriceListID != "" {
			v.PriceList = q.PriceListID
		}
		v.Price = formatPrice(q.Price, r.Places)
		v.Matched = q.Matched
		v.TaxIncluded = q.TaxIncluded
		if q.Line != nil {
			line := NewLineView(q.LineIndex, *q.Line)
			v.Line = &line
		}
	}
	return v
}

// NewLineView flattens a line
func NewLineView(index int, l types.PriceListLine) LineView {
	v := LineView{
		Index:    index,
		Sequence: l.Sequence,
		Product:  l.Product,
		Category: l.Category,
		Formula:  l.Formula,
	}
	if l.Quantity != nil {
		q := l.Quantity.String()
		v.Quantity = &q
	}
	return v
}

// NewPriceListView flattens a price list, lines in stored order
func NewPriceListView(pl types.PriceList) PriceListView {
	v := PriceListView{
		ID:          pl.ID,
		Name:        pl.Name,
		Active:      pl.Active,
		TaxIncluded: pl.TaxIncluded,
		Unit:        string(pl.Unit),
		Lines:       make([]LineView, 0, len(pl.Lines)),
	}
	for i, l := range pl.Lines {
		v.Lines = append(v.Lines, NewLineView(i, l))
	}
	return v
}

func formatPrice(p *decimal.Decimal, places int32) *string {
	if p == nil {
		return nil
	}
	var s string
	if places < 0 {
		s = p.String()
	} else {
		s = p.StringFixed(places)
	}
	return &s
}

// Registry holds the available formatters
type Registry struct {
	mu         sync.RWMutex
	formatters map[Format]Formatter
}

// NewRegistry creates a registry with the built-in formatters
func NewRegistry(noColor bool) *Registry {
	r := &Registry{formatters: make(map[Format]Formatter)}
	_ = r.Register(NewCLIFormatter(noColor))
	_ = r.Register(NewJSONFormatter())
	return r
}

// Register adds a formatter to the registry
func (r *Registry) Register(f Formatter) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.formatters[f.Format()]; exists {
		return errors.Newf(errors.TypeConfig, "formatter already registered: %s", f.Format())
	}
	r.formatters[f.Format()] = f
	return nil
}

// Get returns the formatter for a format
func (r *Registry) Get(format Format) (Formatter, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	f, ok := r.formatters[format]
	if !ok {
		return nil, errors.Newf(errors.TypeInput, "unknown output format %q (available: %v)", format, r.formatsLocked())
	}
	return f, nil
}

// Formats lists the registered format names
func (r *Registry) Formats() []Format {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.formatsLocked()
}

func (r *Registry) formatsLocked() []Format {
	out := make([]Format, 0, len(r.formatters))
	for f := range r.formatters {
		out = append(out, f)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}
