package output

import (
	"encoding/json"
	"io"

	"price-list/core/types"
)

// JSONFormatter writes indented JSON
type JSONFormatter struct{}

// NewJSONFormatter creates a JSON formatter
func NewJSONFormatter() *JSONFormatter {
	return &JSONFormatter{}
}

// Format returns FormatJSON
func (f *JSONFormatter) Format() Format {
	return FormatJSON
}

// RenderQuote writes the quote view
func (f *JSONFormatter) RenderQuote(w io.Writer, result *QuoteResult) error {
	return encode(w, NewQuoteView(result))
}

// RenderPriceLists writes every list with its lines
func (f *JSONFormatter) RenderPriceLists(w io.Writer, lists []types.PriceList) error {
	views := make([]PriceListView, 0, len(lists))
	for _, pl := range lists {
		views = append(views, NewPriceListView(pl))
	}
	return encode(w, views)
}

func encode(w io.Writer, v interface{}) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
