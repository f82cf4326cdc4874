// Package catalog - Read-only master data snapshot
// Holds the units, categories, products and price lists a host hands to the
// pricing engine. Nothing here changes after Build returns.
package catalog

import (
	"sort"

	"github.com/shopspring/decimal"

	"price-list/core/category"
	"price-list/core/types"
	"price-list/core/uom"
	"price-list/internal/errors"
)

// Catalog is an immutable snapshot of pricing master data
type Catalog struct {
	units      *uom.Table
	categories *category.Tree
	products   map[string]*types.Product
	priceLists map[string]*types.PriceList

	fingerprint Fingerprint
}

// Data is the raw content a catalog is built from
type Data struct {
	Units      []types.Unit
	Categories []types.Category
	Products   []types.Product
	PriceLists []types.PriceList
}

// Build validates data and returns the catalog. Every reference (product
// units and categories, line products and categories) must resolve.
func Build(data Data) (*Catalog, error) {
	units, err := uom.NewTable(data.Units...)
	if err != nil {
		return nil, err
	}
	tree, err := category.NewTree(data.Categories...)
	if err != nil {
		return nil, err
	}

	c := &Catalog{
		units:      units,
		categories: tree,
		products:   make(map[string]*types.Product, len(data.Products)),
		priceLists: make(map[string]*types.PriceList, len(data.PriceLists)),
	}

	for i := range data.Products {
		p := data.Products[i]
		if p.ID == "" {
			return nil, errors.Input("product id is required")
		}
		if _, dup := c.products[p.ID]; dup {
			return nil, errors.Newf(errors.TypeInput, "duplicate product: %s", p.ID)
		}
		p.Categories = append([]string(nil), p.Categories...)
		c.products[p.ID] = &p
	}

	for i := range data.PriceLists {
		pl := data.PriceLists[i]
		if pl.ID == "" {
			return nil, errors.Input("price list id is required")
		}
		if _, dup := c.priceLists[pl.ID]; dup {
			return nil, errors.Newf(errors.TypeInput, "duplicate price list: %s", pl.ID)
		}
		if pl.Unit == "" {
			pl.Unit = types.UnitProductDefault
		}
		pl.Lines = append([]types.PriceListLine(nil), pl.Lines...)
		c.priceLists[pl.ID] = &pl
	}

	if err := c.checkReferences(); err != nil {
		return nil, err
	}
	if c.fingerprint, err = computeFingerprint(c); err != nil {
		return nil, errors.Internal("failed to fingerprint catalog", err)
	}
	return c, nil
}

// Product looks up a product
func (c *Catalog) Product(id string) (*types.Product, error) {
	p, ok := c.products[id]
	if !ok {
		return nil, errors.NotFound("product", id)
	}
	cp := *p
	cp.Categories = append([]string(nil), p.Categories...)
	return &cp, nil
}

// Products returns all products sorted by id
func (c *Catalog) Products() []types.Product {
	out := make([]types.Product, 0, len(c.products))
	for _, p := range c.products {
		out = append(out, *p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// PriceList returns an active price list. The returned list is a copy the
// caller may keep for the duration of a computation.
func (c *Catalog) PriceList(id string) (*types.PriceList, error) {
	pl, ok := c.priceLists[id]
	if !ok || !pl.Active {
		return nil, errors.NotFound("price list", id)
	}
	return clonePriceList(pl), nil
}

// PriceLists returns all price lists, inactive included, sorted by id
func (c *Catalog) PriceLists() []types.PriceList {
	out := make([]types.PriceList, 0, len(c.priceLists))
	for _, pl := range c.priceLists {
		out = append(out, *clonePriceList(pl))
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// Parent implements category.ParentLookup
func (c *Catalog) Parent(id string) (string, bool) {
	return c.categories.Parent(id)
}

// Factor implements uom.Converter
func (c *Catalog) Factor(from, to string) (decimal.Decimal, error) {
	return c.units.Factor(from, to)
}

var _ uom.QuantityConverter = (*Catalog)(nil)

// Convert implements uom.QuantityConverter
func (c *Catalog) Convert(quantity decimal.Decimal, from, to string) (decimal.Decimal, error) {
	return c.units.Convert(quantity, from, to)
}

// Units exposes the unit table
func (c *Catalog) Units() *uom.Table {
	return c.units
}

// Categories exposes the category tree
func (c *Catalog) Categories() *category.Tree {
	return c.categories
}

// Stats summarizes the catalog
func (c *Catalog) Stats() Stats {
	s := Stats{
		Units:      len(c.units.Units()),
		Categories: len(c.categories.Categories()),
		Products:   len(c.products),
		PriceLists: len(c.priceLists),
	}
	for _, pl := range c.priceLists {
		s.Lines += len(pl.Lines)
		if pl.Active {
			s.ActivePriceLists++
		}
	}
	return s
}

// Stats holds catalog statistics
type Stats struct {
	Units            int `json:"units"`
	Categories       int `json:"categories"`
	Products         int `json:"products"`
	PriceLists       int `json:"price_lists"`
	ActivePriceLists int `json:"active_price_lists"`
	Lines            int `json:"lines"`
}

func clonePriceList(pl *types.PriceList) *types.PriceList {
	cp := *pl
	cp.Lines = append([]types.PriceListLine(nil), pl.Lines...)
	return &cp
}
