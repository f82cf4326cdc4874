package pricing

import (
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"price-list/core/category"
	"price-list/core/formula"
	"price-list/core/types"
	"price-list/core/uom"
	"price-list/internal/errors"
)

// Engine computes prices from price lists. It holds no mutable state and
// is safe for concurrent use as long as its collaborators are.
type Engine struct {
	units      uom.Converter
	categories CategoryMatcher
	logger     *zap.Logger
}

// Option configures an Engine
type Option func(*Engine)

// WithLogger sets the engine logger. The default discards everything.
func WithLogger(logger *zap.Logger) Option {
	return func(e *Engine) {
		if logger != nil {
			e.logger = logger
		}
	}
}

// NewEngine creates an engine over the given unit conversions and category hierarchy
func NewEngine(units uom.Converter, parents category.ParentLookup, opts ...Option) *Engine {
	e := &Engine{
		units:      units,
		categories: category.NewResolver(parents),
		logger:     zap.NewNop(),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Compute returns the price of quantity units of product under pl.
//
// It returns nil when product is nil, basePrice unchanged when no line
// matches, and otherwise the selected line's formula result. party is
// accepted for hosts that extend matching; it does not affect selection.
func (e *Engine) Compute(
	pl *types.PriceList,
	party *string,
	product *types.Product,
	basePrice *decimal.Decimal,
	quantity decimal.Decimal,
	unit string,
) (*decimal.Decimal, error) {
	quote, err := e.Quote(pl, types.Request{
		Party:     party,
		Product:   product,
		BasePrice: basePrice,
		Quantity:  quantity,
		Unit:      unit,
	})
	if err != nil {
		return nil, err
	}
	return quote.Price, nil
}

// Quote is Compute with the selected line reported alongside the price
func (e *Engine) Quote(pl *types.PriceList, req types.Request) (*types.Quote, error) {
	quote := &types.Quote{LineIndex: -1}
	if pl != nil {
		quote.PriceListID = pl.ID
		quote.TaxIncluded = pl.TaxIncluded
	}

	if req.Product == nil {
		return quote, nil
	}

	var lines []types.PriceListLine
	if pl != nil {
		if pl.Unit != "" && !pl.Unit.IsValid() {
			return nil, errors.Newf(errors.TypeInput, "price list %s: unsupported unit mode %q", pl.ID, pl.Unit)
		}
		lines = pl.Lines
	}

	criteria, err := e.criteria(req)
	if err != nil {
		return nil, err
	}

	idx := Select(lines, criteria, e.categories)
	if idx < 0 {
		e.logger.Debug("no price list line matched",
			zap.String("price_list", quote.PriceListID),
			zap.String("product", req.Product.ID))
		quote.Price = copyDecimal(req.BasePrice)
		return quote, nil
	}

	line := lines[idx]
	e.logger.Debug("price list line selected",
		zap.String("price_list", quote.PriceListID),
		zap.String("product", req.Product.ID),
		zap.Stringer("line", line))

	price, err := e.evaluate(line, bindingsFor(req))
	if err != nil {
		if typed, ok := err.(*errors.Error); ok {
			typed.WithContext("price_list", quote.PriceListID).WithContext("sequence", line.Sequence)
		}
		return nil, err
	}

	quote.Price = &price
	quote.Matched = true
	quote.Line = &line
	quote.LineIndex = idx
	return quote, nil
}

// criteria resolves the request facts lines are matched against. A failed
// unit conversion is absorbed: only lines with a quantity threshold are affected.
func (e *Engine) criteria(req types.Request) (Criteria, error) {
	c := Criteria{
		Product:    req.Product.ID,
		Categories: req.Product.Categories,
	}

	magnitude, err := uom.Normalize(e.units, req.Quantity, req.Unit, req.Product.DefaultUnit)
	switch {
	case err == nil:
		c.Quantity = &magnitude
	case errors.IsType(err, errors.TypeConversion):
		e.logger.Warn("quantity not comparable, skipping quantity lines",
			zap.String("product", req.Product.ID),
			zap.String("unit", req.Unit),
			zap.String("default_unit", req.Product.DefaultUnit),
			zap.Error(err))
	default:
		return Criteria{}, err
	}
	return c, nil
}

func (e *Engine) evaluate(line types.PriceListLine, b types.Bindings) (decimal.Decimal, error) {
	src := line.Formula
	if src == "" {
		src = types.DefaultFormula
	}
	expr, err := formula.Compile(src)
	if err != nil {
		return decimal.Zero, err
	}
	return expr.Evaluate(b)
}

func bindingsFor(req types.Request) types.Bindings {
	return types.Bindings{
		UnitPrice: copyDecimal(req.BasePrice),
		CostPrice: req.Product.CostPriceOrZero(),
		ListPrice: req.Product.ListPriceOrZero(),
	}
}

func copyDecimal(v *decimal.Decimal) *decimal.Decimal {
	if v == nil {
		return nil
	}
	c := *v
	return &c
}
