// Package hcl - Typed attribute conversion
// cty values are never passed through blindly: unknown values are rejected
// and every attribute is converted to the exact Go type the catalog needs.
package hcl

import (
	"fmt"

	"github.com/hashicorp/hcl/v2"
	"github.com/shopspring/decimal"
	"github.com/zclconf/go-cty/cty"
	"github.com/zclconf/go-cty/cty/convert"
	"github.com/zclconf/go-cty/cty/gocty"
)

// attrs wraps a decoded block body and accumulates conversion diagnostics
type attrs struct {
	content *hcl.BodyContent
	diags   hcl.Diagnostics
}

// value evaluates a static attribute. ok is false when the attribute is
// absent, null or could not be evaluated.
func (a *attrs) value(name string) (cty.Value, *hcl.Attribute, bool) {
	attr, exists := a.content.Attributes[name]
	if !exists {
		return cty.NilVal, nil, false
	}
	val, diags := attr.Expr.Value(nil)
	a.diags = append(a.diags, diags...)
	if diags.HasErrors() {
		return cty.NilVal, attr, false
	}
	if !val.IsKnown() {
		a.invalid(attr, "value must be known when the price book is loaded")
		return cty.NilVal, attr, false
	}
	if val.IsNull() {
		return cty.NilVal, attr, false
	}
	return val, attr, true
}

func (a *attrs) invalid(attr *hcl.Attribute, detail string) {
	a.diags = append(a.diags, &hcl.Diagnostic{
		Severity: hcl.DiagError,
		Summary:  fmt.Sprintf("Invalid value for %q", attr.Name),
		Detail:   detail,
		Subject:  attr.Expr.Range().Ptr(),
	})
}

func (a *attrs) string(name string) string {
	if s := a.optionalString(name); s != nil {
		return *s
	}
	return ""
}

func (a *attrs) optionalString(name string) *string {
	val, attr, ok := a.value(name)
	if !ok {
		return nil
	}
	str, err := convert.Convert(val, cty.String)
	if err != nil {
		a.invalid(attr, "a string is required")
		return nil
	}
	s := str.AsString()
	return &s
}

func (a *attrs) bool(name string, fallback bool) bool {
	val, attr, ok := a.value(name)
	if !ok {
		return fallback
	}
	b, err := convert.Convert(val, cty.Bool)
	if err != nil {
		a.invalid(attr, "a bool is required")
		return fallback
	}
	return b.True()
}

func (a *attrs) int(name string) (int, bool) {
	val, attr, ok := a.value(name)
	if !ok {
		return 0, false
	}
	var n int
	if err := gocty.FromCtyValue(val, &n); err != nil {
		a.invalid(attr, "a whole number is required")
		return 0, false
	}
	return n, true
}

// decimal accepts numbers and numeric strings. Numbers keep their literal
// precision: HCL parses them as big floats and the shortest exact text is used.
func (a *attrs) decimal(name string) *decimal.Decimal {
	val, attr, ok := a.value(name)
	if !ok {
		return nil
	}

	var text string
	switch {
	case val.Type() == cty.Number:
		text = val.AsBigFloat().Text('f', -1)
	case val.Type() == cty.String:
		text = val.AsString()
	default:
		a.invalid(attr, "a number is required")
		return nil
	}

	d, err := decimal.NewFromString(text)
	if err != nil {
		a.invalid(attr, fmt.Sprintf("%q is not a decimal number", text))
		return nil
	}
	return &d
}

func (a *attrs) strings(name string) []string {
	val, attr, ok := a.value(name)
	if !ok {
		return nil
	}
	list, err := convert.Convert(val, cty.List(cty.String))
	if err != nil {
		a.invalid(attr, "a list of strings is required")
		return nil
	}
	var out []string
	if err := gocty.FromCtyValue(list, &out); err != nil {
		a.invalid(attr, err.Error())
		return nil
	}
	return out
}
