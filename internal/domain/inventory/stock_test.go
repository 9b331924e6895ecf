package inventory_test

import (
	"errors"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ArtEnginer/POS/internal/domain"
	"github.com/ArtEnginer/POS/internal/domain/inventory"
)

func d(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func TestParseOperation(t *testing.T) {
	op, err := inventory.ParseOperation("")
	require.NoError(t, err)
	assert.Equal(t, inventory.OperationSet, op)

	for _, s := range []string{"set", "add", "subtract"} {
		op, err := inventory.ParseOperation(s)
		require.NoError(t, err)
		assert.Equal(t, inventory.Operation(s), op)
	}

	_, err = inventory.ParseOperation("multiply")
	assert.True(t, errors.Is(err, domain.ErrInvalidInput))
}

func TestApplyOperation(t *testing.T) {
	tests := []struct {
		name  string
		old   string
		delta string
		op    inventory.Operation
		want  string
	}{
		{"set reemplaza", "10", "3", inventory.OperationSet, "3"},
		{"set a cero", "10", "0", inventory.OperationSet, "0"},
		{"add suma", "10", "2.5", inventory.OperationAdd, "12.5"},
		{"subtract resta", "10", "4", inventory.OperationSubtract, "6"},
		{"subtract hasta cero", "1", "1", inventory.OperationSubtract, "0"},
		{"add negativo permitido si no queda negativo", "5", "-2", inventory.OperationAdd, "3"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := inventory.ApplyOperation(d(tt.old), d(tt.delta), tt.op)
			require.NoError(t, err)
			assert.True(t, d(tt.want).Equal(got), "esperado %s, obtenido %s", tt.want, got)
		})
	}
}

func TestApplyOperation_RechazaNegativo(t *testing.T) {
	_, err := inventory.ApplyOperation(d("10"), d("15"), inventory.OperationSubtract)
	require.Error(t, err)

	var ve *domain.ValidationError
	require.ErrorAs(t, err, &ve)
	assert.Equal(t, "Stock cannot be negative. Current: 10, Requested: 15, Result: -5", ve.Message)
	assert.Equal(t, "subtract", ve.Details["operation"])

	_, err = inventory.ApplyOperation(d("0"), d("-1"), inventory.OperationSet)
	assert.True(t, errors.Is(err, domain.ErrInvalidInput))
}

func TestApplyOperation_OperacionInvalida(t *testing.T) {
	_, err := inventory.ApplyOperation(d("1"), d("1"), inventory.Operation("x"))
	assert.True(t, errors.Is(err, domain.ErrInvalidInput))
}

func TestToBaseQuantity(t *testing.T) {
	assert.True(t, d("24").Equal(inventory.ToBaseQuantity(d("2"), d("12"))))
	assert.True(t, d("2").Equal(inventory.ToBaseQuantity(d("2"), d("0"))), "conversión inválida se ignora")
}

func TestWeightedAverageCost(t *testing.T) {
	// 10 a 100 + 10 a 200 = 150
	assert.Equal(t, "150.00", inventory.WeightedAverageCost(d("10"), d("100"), d("10"), d("200")).StringFixed(2))
	// sin stock previo toma el costo recibido
	assert.Equal(t, "80.00", inventory.WeightedAverageCost(d("0"), d("100"), d("5"), d("80")).StringFixed(2))
	assert.Equal(t, "33.33", inventory.WeightedAverageCost(d("2"), d("0"), d("1"), d("100")).StringFixed(2))
	assert.Equal(t, "9.99", inventory.WeightedAverageCost(d("0"), d("1"), d("0"), d("9.99")).StringFixed(2))
}

func TestProrate(t *testing.T) {
	assert.Equal(t, "10", inventory.Prorate(d("10"), d("3"), d("3")).String())
	assert.Equal(t, "4.000", inventory.Prorate(d("12"), d("1"), d("3")).Round(3).StringFixed(3))
	assert.Equal(t, "3.333", inventory.Prorate(d("10"), d("1"), d("3")).Round(3).StringFixed(3))
	assert.True(t, inventory.Prorate(d("10"), d("1"), d("0")).IsZero())
}
