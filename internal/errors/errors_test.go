package errors

import (
	stderrors "errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"go.uber.org/multierr"
)

func TestErrorString(t *testing.T) {
	assert.Equal(t, "[NOT_FOUND] product not found: kiwi", NotFound("product", "kiwi").Error())

	err := Wrap(TypeConfig, "invalid price book", stderrors.New("boom"))
	assert.Equal(t, "[CONFIG_ERROR] invalid price book: boom", err.Error())
	assert.Equal(t, "boom", stderrors.Unwrap(err).Error())
}

func TestIsTypeWalksChain(t *testing.T) {
	inner := FormulaEvaluation("division by zero")
	outer := Wrap(TypeConfig, "invalid price book", inner)
	wrapped := fmt.Errorf("loading: %w", outer)

	assert.True(t, IsType(wrapped, TypeConfig))
	assert.True(t, IsType(wrapped, TypeFormulaEvaluation))
	assert.False(t, IsType(wrapped, TypeInput))
	assert.False(t, IsType(nil, TypeInput))
	assert.False(t, IsType(stderrors.New("plain"), TypeInput))
}

func TestIsTypeThroughMultierr(t *testing.T) {
	combined := multierr.Combine(Input("first"), Conversion("second"))
	assert.True(t, IsType(combined, TypeInput))
	assert.Len(t, multierr.Errors(combined), 2)
}

func TestTypeOf(t *testing.T) {
	assert.Equal(t, TypeInput, TypeOf(Input("bad")))
	assert.Equal(t, TypeConfig, TypeOf(fmt.Errorf("x: %w", Wrap(TypeConfig, "y", Input("z")))))
	assert.Equal(t, Type(""), TypeOf(stderrors.New("plain")))
}

func TestContext(t *testing.T) {
	err := FormulaSyntax(3, "unexpected token %s", "'*'").WithContext("token", "*")
	assert.True(t, err.Is(TypeFormulaSyntax))
	assert.Equal(t, 3, err.Context["position"])
	assert.Equal(t, "*", err.Context["token"])
}
