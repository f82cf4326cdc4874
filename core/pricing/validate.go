package pricing

import (
	"go.uber.org/multierr"

	"price-list/core/formula"
	"price-list/core/types"
	"price-list/internal/errors"
)

// Validate checks a price list the way hosts do before accepting edits:
// the unit mode is supported, thresholds are not negative and every
// formula compiles and evaluates with all variables at zero. All problems
// are reported; use multierr.Errors to split them.
func Validate(pl *types.PriceList) error {
	if pl == nil {
		return errors.Input("price list is required")
	}

	var result error
	if pl.Unit != "" && !pl.Unit.IsValid() {
		result = multierr.Append(result,
			errors.Newf(errors.TypeInput, "price list %s: unsupported unit mode %q", pl.ID, pl.Unit))
	}

	for i, line := range pl.Lines {
		if line.Quantity != nil && line.Quantity.IsNegative() {
			result = multierr.Append(result,
				errors.Newf(errors.TypeInput, "line %d (sequence %d): quantity must not be negative, got %s",
					i, line.Sequence, line.Quantity).
					WithContext("sequence", line.Sequence))
		}

		src := line.Formula
		if src == "" {
			src = types.DefaultFormula
		}
		if err := formula.Check(src); err != nil {
			result = multierr.Append(result,
				errors.Wrapf(errors.TypeFormulaSyntax, err, "line %d (sequence %d): invalid formula %q",
					i, line.Sequence, src).
					WithContext("sequence", line.Sequence))
		}
	}
	return result
}
