// Package cmd - compute command
package cmd

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"price-list/core/output"
	"price-list/core/pricing"
	"price-list/core/types"
	"price-list/internal/config"
	"price-list/internal/errors"
	"price-list/internal/logging"
)

var (
	computeList     string
	computeProduct  string
	computeQuantity string
	computeUnit     string
	computePrice    string
	computeParty    string
	computeFormat   string
	computeNoBase   bool
)

// computeCmd represents the compute command
var computeCmd = &cobra.Command{
	Use:   "compute",
	Short: "Compute the price of a product under a price list",
	Long: `Match the request against the price list lines in sequence order and
evaluate the formula of the first matching line.

The base price (unit_price in formulas) defaults to the product's list
price. Use --no-base-price to leave it unbound.

Examples:
  price-list compute --list retail --product apple --quantity 12 --unit kilogram
  price-list compute -l retail -p apple -q 500 -u gram --price 9.50
  price-list compute -l wholesale -p apple --party acme --format json`,
	Args: cobra.NoArgs,
	RunE: runCompute,
}

func init() {
	computeCmd.Flags().StringVarP(&computeList, "list", "l", "", "price list id (default from config)")
	computeCmd.Flags().StringVarP(&computeProduct, "product", "p", "", "product id")
	computeCmd.Flags().StringVarP(&computeQuantity, "quantity", "q", "1", "requested quantity")
	computeCmd.Flags().StringVarP(&computeUnit, "unit", "u", "", "unit of the quantity (default: the product's unit)")
	computeCmd.Flags().StringVar(&computePrice, "price", "", "base price bound to unit_price (default: list price)")
	computeCmd.Flags().StringVar(&computeParty, "party", "", "customer the price is for")
	computeCmd.Flags().StringVarP(&computeFormat, "format", "f", "", "output format (cli, json)")
	computeCmd.Flags().BoolVar(&computeNoBase, "no-base-price", false, "do not bind unit_price")
	_ = computeCmd.MarkFlagRequired("product")
}

func runCompute(cmd *cobra.Command, args []string) error {
	cfg := config.Get()
	requestID := uuid.NewString()
	logger := logging.With(zap.String("request_id", requestID))

	quantity, err := decimal.NewFromString(computeQuantity)
	if err != nil {
		return errors.Wrapf(errors.TypeInput, err, "invalid --quantity %q", computeQuantity)
	}

	formatter, err := output.NewRegistry(cfg.Output.NoColor).Get(output.Format(pick(computeFormat, cfg.Output.DefaultFormat)))
	if err != nil {
		return err
	}

	listID := pick(computeList, cfg.Pricing.DefaultList)
	if listID == "" {
		return errors.Input("no price list given: use --list or set pricing.default_list")
	}

	c, err := loadCatalog()
	if err != nil {
		return err
	}
	pl, err := c.PriceList(listID)
	if err != nil {
		return err
	}
	product, err := c.Product(computeProduct)
	if err != nil {
		return err
	}

	basePrice := product.ListPrice
	switch {
	case computeNoBase:
		basePrice = nil
	case computePrice != "":
		p, err := decimal.NewFromString(computePrice)
		if err != nil {
			return errors.Wrapf(errors.TypeInput, err, "invalid --price %q", computePrice)
		}
		basePrice = &p
	}

	var party *string
	if computeParty != "" {
		party = &computeParty
	}
	unit := pick(computeUnit, product.DefaultUnit)

	engine := pricing.NewEngine(c, c, pricing.WithLogger(logger.Named("engine")))
	quote, err := engine.Quote(pl, types.Request{
		Party:     party,
		Product:   product,
		BasePrice: basePrice,
		Quantity:  quantity,
		Unit:      unit,
	})
	if err != nil {
		return err
	}

	logger.Debug("price computed",
		zap.String("price_list", pl.ID),
		zap.String("product", product.ID),
		zap.Bool("matched", quote.Matched))

	return formatter.RenderQuote(cmd.OutOrStdout(), &output.QuoteResult{
		RequestID: requestID,
		PriceList: pl,
		ProductID: product.ID,
		Party:     party,
		Quantity:  quantity,
		Unit:      unit,
		BasePrice: basePrice,
		Quote:     quote,
		Places:    cfg.Pricing.DisplayPlaces,
	})
}

// pick returns the first non-empty value
func pick(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}

