package output

import (
	"fmt"
	"io"
	"strconv"

	"price-list/core/pricing"
	"price-list/core/types"
	"price-list/core/ui"
)

// CLIFormatter renders tables for terminals
type CLIFormatter struct {
	noColor bool
}

// NewCLIFormatter creates a CLI formatter
func NewCLIFormatter(noColor bool) *CLIFormatter {
	return &CLIFormatter{noColor: noColor}
}

// Format returns FormatCLI
func (f *CLIFormatter) Format() Format {
	return FormatCLI
}

// RenderQuote prints the request, the list lines in evaluation order with
// the selected one highlighted, and the resulting price.
func (f *CLIFormatter) RenderQuote(w io.Writer, result *QuoteResult) error {
	out := ui.NewWriter(w, f.noColor)
	view := NewQuoteView(result)

	out.Header("Price quote")
	out.Field("Price list", view.PriceList)
	out.Field("Product", view.Product)
	if view.Party != nil {
		out.Field("Party", *view.Party)
	}
	out.Field("Quantity", view.Quantity+" "+view.Unit)
	out.Field("Base price", valueOr(view.BasePrice, "none"))
	out.Println("")

	if pl := result.PriceList; pl != nil && len(pl.Lines) > 0 {
		selected := -1
		if result.Quote != nil && result.Quote.Matched {
			selected = result.Quote.LineIndex
		}
		table := out.NewTable("", "Seq", "Product", "Category", "Min qty", "Formula")
		for _, idx := range pricing.Order(pl.Lines) {
			line := NewLineView(idx, pl.Lines[idx])
			cells := []string{
				"",
				strconv.Itoa(line.Sequence),
				valueOr(line.Product, "*"),
				valueOr(line.Category, "*"),
				valueOr(line.Quantity, "*"),
				line.Formula,
			}
			if idx == selected {
				cells[0] = "▶"
				table.AddMarkedRow(cells...)
				continue
			}
			table.AddRow(cells...)
		}
		table.Render()
		out.Println("")
	}

	switch {
	case view.Price == nil:
		out.Warning("No price: no base price was given and no line matched")
	case view.Matched:
		out.Success("Price %s (line sequence %d)", *view.Price, view.Line.Sequence)
	default:
		out.Warning("No line matched, base price %s passed through", *view.Price)
	}
	if view.TaxIncluded {
		out.Info("Price includes taxes")
	}
	return nil
}

// RenderPriceLists prints one row per list
func (f *CLIFormatter) RenderPriceLists(w io.Writer, lists []types.PriceList) error {
	out := ui.NewWriter(w, f.noColor)
	if len(lists) == 0 {
		out.Warning("No price lists")
		return nil
	}

	table := out.NewTable("ID", "Name", "Active", "Tax incl.", "Lines")
	for _, pl := range lists {
		table.AddRow(pl.ID, pl.Name, yesNo(pl.Active), yesNo(pl.TaxIncluded), fmt.Sprint(len(pl.Lines)))
	}
	table.Render()
	return nil
}

func valueOr(s *string, fallback string) string {
	if s == nil {
		return fallback
	}
	return *s
}

func yesNo(b bool) string {
	if b {
		return "yes"
	}
	return "no"
}
