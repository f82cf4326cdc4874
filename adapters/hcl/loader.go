// Package hcl loads price books written in HCL.
//
// A price book is one or more .hcl files declaring units, categories,
// products and price lists:
//
//	unit "kilogram" {
//	  category = "weight"
//	  factor   = 1
//	}
//
//	price_list "retail" {
//	  name = "Retail"
//	  line {
//	    quantity = 10
//	    formula  = "unit_price * 0.9"
//	  }
//	}
package hcl

import (
	"io/fs"
	"os"
	"path/filepath"
	"reflect"
	"sort"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/hashicorp/hcl/v2"
	"github.com/hashicorp/hcl/v2/hclparse"
	"go.uber.org/zap"

	"price-list/core/catalog"
	"price-list/core/types"
	"price-list/internal/errors"
)

// Extension is the file extension scanned in directories
const Extension = ".hcl"

// sequenceStep spaces the sequences given to lines declared without one
const sequenceStep = 10

var fileSchema = &hcl.BodySchema{
	Blocks: []hcl.BlockHeaderSchema{
		{Type: "unit", LabelNames: []string{"id"}},
		{Type: "category", LabelNames: []string{"id"}},
		{Type: "product", LabelNames: []string{"id"}},
		{Type: "price_list", LabelNames: []string{"id"}},
	},
}

var unitSchema = &hcl.BodySchema{
	Attributes: []hcl.AttributeSchema{
		{Name: "name"},
		{Name: "symbol"},
		{Name: "category", Required: true},
		{Name: "factor", Required: true},
	},
}

var categorySchema = &hcl.BodySchema{
	Attributes: []hcl.AttributeSchema{
		{Name: "name"},
		{Name: "parent"},
	},
}

var productSchema = &hcl.BodySchema{
	Attributes: []hcl.AttributeSchema{
		{Name: "name"},
		{Name: "default_unit"},
		{Name: "list_price"},
		{Name: "cost_price"},
		{Name: "categories"},
	},
}

var priceListSchema = &hcl.BodySchema{
	Attributes: []hcl.AttributeSchema{
		{Name: "name", Required: true},
		{Name: "active"},
		{Name: "tax_included"},
		{Name: "unit"},
	},
	Blocks: []hcl.BlockHeaderSchema{
		{Type: "line"},
	},
}

var lineSchema = &hcl.BodySchema{
	Attributes: []hcl.AttributeSchema{
		{Name: "sequence"},
		{Name: "product"},
		{Name: "category"},
		{Name: "quantity"},
		{Name: "formula"},
	},
}

// Loader reads price books from disk
type Loader struct {
	validate *validator.Validate
	logger   *zap.Logger
}

// NewLoader creates a loader. A nil logger discards output.
func NewLoader(logger *zap.Logger) *Loader {
	if logger == nil {
		logger = zap.NewNop()
	}
	v := validator.New()
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		return f.Tag.Get("hcl")
	})
	return &Loader{validate: v, logger: logger}
}

// Load parses every path (files, or directories scanned recursively for
// .hcl files) into a single catalog.
func (l *Loader) Load(paths ...string) (*catalog.Catalog, error) {
	data, err := l.Decode(paths...)
	if err != nil {
		return nil, err
	}
	c, err := catalog.Build(data)
	if err != nil {
		return nil, errors.Wrap(errors.TypeConfig, "invalid price book", err)
	}

	stats := c.Stats()
	l.logger.Info("price book loaded",
		zap.Strings("paths", paths),
		zap.Int("products", stats.Products),
		zap.Int("price_lists", stats.PriceLists),
		zap.Int("lines", stats.Lines),
		zap.Stringer("fingerprint", c.Fingerprint()))
	return c, nil
}

// Decode parses paths without cross-checking references
func (l *Loader) Decode(paths ...string) (catalog.Data, error) {
	files, err := findFiles(paths)
	if err != nil {
		return catalog.Data{}, err
	}

	parser := hclparse.NewParser()
	var data catalog.Data
	var diags hcl.Diagnostics
	for _, file := range files {
		src, err := os.ReadFile(file)
		if err != nil {
			return catalog.Data{}, errors.Wrapf(errors.TypeInput, err, "failed to read %s", file)
		}
		l.logger.Debug("parsing price book file", zap.String("file", file))
		diags = append(diags, l.decodeFile(parser, src, file, &data)...)
	}
	if diags.HasErrors() {
		return catalog.Data{}, errors.Parsing("invalid price book", diags)
	}
	return data, nil
}

// DecodeSource parses a single in-memory document
func (l *Loader) DecodeSource(src []byte, filename string) (catalog.Data, error) {
	var data catalog.Data
	diags := l.decodeFile(hclparse.NewParser(), src, filename, &data)
	if diags.HasErrors() {
		return catalog.Data{}, errors.Parsing("invalid price book", diags)
	}
	return data, nil
}

func (l *Loader) decodeFile(parser *hclparse.Parser, src []byte, filename string, data *catalog.Data) hcl.Diagnostics {
	file, diags := parser.ParseHCL(src, filename)
	if diags.HasErrors() {
		return diags
	}

	content, moreDiags := file.Body.Content(fileSchema)
	diags = append(diags, moreDiags...)

	for _, block := range content.Blocks {
		switch block.Type {
		case "unit":
			diags = append(diags, l.decodeUnit(block, data)...)
		case "category":
			diags = append(diags, l.decodeCategory(block, data)...)
		case "product":
			diags = append(diags, l.decodeProduct(block, data)...)
		case "price_list":
			diags = append(diags, l.decodePriceList(block, data)...)
		}
	}
	return diags
}

type unitRecord struct {
	ID       string `hcl:"id" validate:"required"`
	Category string `hcl:"category" validate:"required"`
}

func (l *Loader) decodeUnit(block *hcl.Block, data *catalog.Data) hcl.Diagnostics {
	content, diags := block.Body.Content(unitSchema)
	a := &attrs{content: content}

	unit := types.Unit{
		ID:       block.Labels[0],
		Name:     a.string("name"),
		Symbol:   a.string("symbol"),
		Category: a.string("category"),
	}
	if factor := a.decimal("factor"); factor != nil {
		unit.Factor = *factor
	}
	diags = append(diags, a.diags...)
	diags = append(diags, l.check(block, unitRecord{ID: unit.ID, Category: unit.Category})...)

	data.Units = append(data.Units, unit)
	return diags
}

func (l *Loader) decodeCategory(block *hcl.Block, data *catalog.Data) hcl.Diagnostics {
	content, diags := block.Body.Content(categorySchema)
	a := &attrs{content: content}

	data.Categories = append(data.Categories, types.Category{
		ID:       block.Labels[0],
		Name:     a.string("name"),
		ParentID: a.optionalString("parent"),
	})
	return append(diags, a.diags...)
}

type productRecord struct {
	ID         string   `hcl:"id" validate:"required"`
	Categories []string `hcl:"categories" validate:"dive,required"`
}

func (l *Loader) decodeProduct(block *hcl.Block, data *catalog.Data) hcl.Diagnostics {
	content, diags := block.Body.Content(productSchema)
	a := &attrs{content: content}

	product := types.Product{
		ID:          block.Labels[0],
		Name:        a.string("name"),
		DefaultUnit: a.string("default_unit"),
		ListPrice:   a.decimal("list_price"),
		CostPrice:   a.decimal("cost_price"),
		Categories:  a.strings("categories"),
	}
	diags = append(diags, a.diags...)
	diags = append(diags, l.check(block, productRecord{ID: product.ID, Categories: product.Categories})...)

	data.Products = append(data.Products, product)
	return diags
}

type priceListRecord struct {
	ID   string `hcl:"id" validate:"required"`
	Name string `hcl:"name" validate:"required"`
	Unit string `hcl:"unit" validate:"omitempty,oneof=product_default"`
}

type lineRecord struct {
	Product  *string `hcl:"product" validate:"omitempty,min=1"`
	Category *string `hcl:"category" validate:"omitempty,min=1"`
}

func (l *Loader) decodePriceList(block *hcl.Block, data *catalog.Data) hcl.Diagnostics {
	content, diags := block.Body.Content(priceListSchema)
	a := &attrs{content: content}

	pl := types.PriceList{
		ID:          block.Labels[0],
		Name:        a.string("name"),
		Active:      a.bool("active", true),
		TaxIncluded: a.bool("tax_included", false),
		Unit:        types.UnitMode(a.string("unit")),
	}
	if pl.Unit == "" {
		pl.Unit = types.UnitProductDefault
	}
	diags = append(diags, a.diags...)
	diags = append(diags, l.check(block, priceListRecord{ID: pl.ID, Name: pl.Name, Unit: string(pl.Unit)})...)

	for i, lineBlock := range content.Blocks {
		lineContent, lineDiags := lineBlock.Body.Content(lineSchema)
		diags = append(diags, lineDiags...)
		la := &attrs{content: lineContent}

		line := types.PriceListLine{
			Product:  la.optionalString("product"),
			Category: la.optionalString("category"),
			Quantity: la.decimal("quantity"),
			Formula:  strings.TrimSpace(la.string("formula")),
		}
		if seq, ok := la.int("sequence"); ok {
			line.Sequence = seq
		} else {
			line.Sequence = (i + 1) * sequenceStep
		}
		if line.Formula == "" {
			line.Formula = types.DefaultFormula
		}
		diags = append(diags, la.diags...)
		diags = append(diags, l.check(lineBlock, lineRecord{Product: line.Product, Category: line.Category})...)

		pl.Lines = append(pl.Lines, line)
	}

	sort.SliceStable(pl.Lines, func(i, j int) bool {
		return pl.Lines[i].Sequence < pl.Lines[j].Sequence
	})

	data.PriceLists = append(data.PriceLists, pl)
	return diags
}

// check runs struct validation and reports failures against the block
func (l *Loader) check(block *hcl.Block, record interface{}) hcl.Diagnostics {
	err := l.validate.Struct(record)
	if err == nil {
		return nil
	}

	var diags hcl.Diagnostics
	validationErrs, ok := err.(validator.ValidationErrors)
	if !ok {
		return append(diags, &hcl.Diagnostic{
			Severity: hcl.DiagError,
			Summary:  "Invalid block",
			Detail:   err.Error(),
			Subject:  block.DefRange.Ptr(),
		})
	}
	for _, fe := range validationErrs {
		diags = append(diags, &hcl.Diagnostic{
			Severity: hcl.DiagError,
			Summary:  "Invalid " + block.Type,
			Detail:   describe(fe),
			Subject:  block.DefRange.Ptr(),
		})
	}
	return diags
}

func describe(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return fe.Field() + " must not be empty"
	case "oneof":
		return fe.Field() + " must be one of: " + fe.Param()
	case "min":
		return fe.Field() + " must not be empty"
	default:
		return fe.Field() + " failed " + fe.Tag() + " validation"
	}
}

// findFiles expands directories to the .hcl files they contain, sorted
func findFiles(paths []string) ([]string, error) {
	var files []string
	for _, path := range paths {
		info, err := os.Stat(path)
		if err != nil {
			return nil, errors.Wrapf(errors.TypeInput, err, "price book path %s", path)
		}
		if !info.IsDir() {
			files = append(files, path)
			continue
		}

		var found []string
		err = filepath.WalkDir(path, func(p string, d fs.DirEntry, err error) error {
			if err != nil {
				return err
			}
			if !d.IsDir() && strings.HasSuffix(p, Extension) {
				found = append(found, p)
			}
			return nil
		})
		if err != nil {
			return nil, errors.Wrapf(errors.TypeInput, err, "failed to walk %s", path)
		}
		sort.Strings(found)
		files = append(files, found...)
	}

	if len(files) == 0 {
		return nil, errors.Newf(errors.TypeInput, "no %s files found in %s", Extension, strings.Join(paths, ", "))
	}
	return files, nil
}
