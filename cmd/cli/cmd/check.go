// Package cmd - check command
package cmd

import (
	"github.com/spf13/cobra"
	"go.uber.org/multierr"

	"price-list/adapters/hcl"
	"price-list/core/catalog"
	"price-list/internal/config"
	"price-list/internal/errors"
	"price-list/internal/logging"
)

// checkCmd represents the check command
var checkCmd = &cobra.Command{
	Use:   "check [path...]",
	Short: "Validate a price book",
	Long: `Parse the price book and report every problem found: HCL errors,
dangling references, negative quantity thresholds and formulas that do
not compile or fail when all variables are zero.

Division by zero found this way is reported by compute, not by check.

Examples:
  price-list check
  price-list check ./pricebook extra.hcl`,
	RunE: runCheck,
}

func runCheck(cmd *cobra.Command, args []string) error {
	cfg := config.Get()
	out := newWriter(cmd)

	paths := args
	if len(paths) == 0 {
		paths = cfg.Pricing.Catalog
	}

	data, err := hcl.NewLoader(logging.Named("loader")).Decode(paths...)
	if err != nil {
		out.Error("%v", err)
		return errors.New(errors.TypeParsing, "price book has syntax errors")
	}

	c, err := catalog.Build(data)
	if err != nil {
		problems := multierr.Errors(err)
		for _, problem := range problems {
			out.Error("%s", describeError(problem))
		}
		return errors.Newf(errors.TypeConfig, "price book has %d problem(s)", len(problems))
	}

	stats := c.Stats()
	out.Success("%d units, %d categories, %d products", stats.Units, stats.Categories, stats.Products)
	out.Success("%d price lists (%d active), %d lines", stats.PriceLists, stats.ActivePriceLists, stats.Lines)
	out.Info("fingerprint %s", c.Fingerprint().Short())
	for _, pl := range c.PriceLists() {
		state := "active"
		if !pl.Active {
			state = "inactive"
		}
		out.Detail("price list %s (%s): %d lines", pl.ID, state, len(pl.Lines))
	}
	return nil
}
