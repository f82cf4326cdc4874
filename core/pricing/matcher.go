// Package pricing selects the applicable price list line and computes prices.
package pricing

import (
	"sort"

	"github.com/shopspring/decimal"

	"price-list/core/category"
	"price-list/core/types"
)

// CategoryMatcher decides whether product categories fall under a line's category
type CategoryMatcher interface {
	Matches(productCategories []string, rule *string) bool
}

// Criteria are the facts of one request that lines are matched against
type Criteria struct {
	// Product is the product id
	Product string

	// Categories are the product's directly assigned categories
	Categories []string

	// Quantity is the magnitude in the product's default unit.
	// nil means it could not be converted: lines with a quantity threshold never match.
	Quantity *decimal.Decimal
}

// Order returns the indices of lines in evaluation order: ascending
// sequence, ties kept in declaration order.
func Order(lines []types.PriceListLine) []int {
	order := make([]int, len(lines))
	for i := range order {
		order[i] = i
	}
	sort.SliceStable(order, func(a, b int) bool {
		return lines[order[a]].Sequence < lines[order[b]].Sequence
	})
	return order
}

// Select returns the index of the first line, in evaluation order, whose
// product, category and quantity predicates all hold. It returns -1 when
// no line matches, including for an empty list. A nil matcher resolves
// categories without a hierarchy: only exact category ids match.
func Select(lines []types.PriceListLine, c Criteria, categories CategoryMatcher) int {
	if categories == nil {
		categories = category.NewResolver(nil)
	}
	for _, i := range Order(lines) {
		if lineMatches(lines[i], c, categories) {
			return i
		}
	}
	return -1
}

// lineMatches evaluates the three predicates of a single line
func lineMatches(line types.PriceListLine, c Criteria, categories CategoryMatcher) bool {
	if line.Product != nil && *line.Product != c.Product {
		return false
	}
	if line.Quantity != nil {
		if c.Quantity == nil || c.Quantity.LessThan(*line.Quantity) {
			return false
		}
	}
	if line.Category != nil && !categories.Matches(c.Categories, line.Category) {
		return false
	}
	return true
}
