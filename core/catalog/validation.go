package catalog

import (
	"sort"

	"go.uber.org/multierr"

	"price-list/core/pricing"
	"price-list/internal/errors"
)

// checkReferences verifies that every id a product or price list line
// mentions exists, and that each price list passes pricing.Validate.
// All problems are collected.
func (c *Catalog) checkReferences() error {
	var result error

	for _, id := range sortedKeys(c.products) {
		p := c.products[id]
		if p.DefaultUnit != "" {
			if _, ok := c.units.Unit(p.DefaultUnit); !ok {
				result = multierr.Append(result,
					errors.Newf(errors.TypeInput, "product %s: unknown default unit %s", p.ID, p.DefaultUnit))
			}
		}
		for _, cat := range p.Categories {
			if _, ok := c.categories.Category(cat); !ok {
				result = multierr.Append(result,
					errors.Newf(errors.TypeInput, "product %s: unknown category %s", p.ID, cat))
			}
		}
	}

	for _, id := range sortedKeys(c.priceLists) {
		pl := c.priceLists[id]
		for i, line := range pl.Lines {
			if line.Product != nil {
				if _, ok := c.products[*line.Product]; !ok {
					result = multierr.Append(result,
						errors.Newf(errors.TypeInput, "price list %s line %d: unknown product %s", pl.ID, i, *line.Product))
				}
			}
			if line.Category != nil {
				if _, ok := c.categories.Category(*line.Category); !ok {
					result = multierr.Append(result,
						errors.Newf(errors.TypeInput, "price list %s line %d: unknown category %s", pl.ID, i, *line.Category))
				}
			}
		}
		if err := pricing.Validate(pl); err != nil {
			for _, e := range multierr.Errors(err) {
				result = multierr.Append(result, errors.Wrapf(errors.TypeOf(e), e, "price list %s", pl.ID))
			}
		}
	}

	return result
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
