package pricing_test

import (
	"encoding/json"
	"errors"
	"math"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ArtEnginer/POS/internal/domain"
	"github.com/ArtEnginer/POS/internal/domain/pricing"
)

func TestSanitizePrice(t *testing.T) {
	tests := []struct {
		name      string
		raw       any
		allowNull bool
		want      *string
	}{
		{"nil permitido", nil, true, nil},
		{"nil no permitido", nil, false, ptr("0.00")},
		{"vacío permitido", "", true, nil},
		{"espacios no permitido", "   ", false, ptr("0.00")},
		{"texto no numérico", "abc", false, ptr("0.00")},
		{"texto no numérico permitido", "abc", true, nil},
		{"prefijo numérico", "12abc", false, ptr("12.00")},
		{"prefijo decimal con unidad", " 2500.555 COP", true, ptr("2500.56")},
		{"prefijo con punto final", "7.", false, ptr("7.00")},
		{"signo más", "+3.1", false, ptr("3.10")},
		{"exponente", "1.5e3x", false, ptr("1500.00")},
		{"negativo con sufijo", "-4kg", true, ptr("0.00")},
		{"negativo se recorta", -5, false, ptr("0.00")},
		{"negativo con null permitido", "-0.01", true, ptr("0.00")},
		{"entero", 15000, false, ptr("15000.00")},
		{"float redondea half-up", 10.005, false, ptr("10.01")},
		{"string redondea half-up", "2.345", false, ptr("2.35")},
		{"string redondea hacia abajo", "2.344", false, ptr("2.34")},
		{"json.Number", json.Number("99.9"), false, ptr("99.90")},
		{"decimal", decimal.RequireFromString("1.5"), false, ptr("1.50")},
		{"máximo exacto", "9999999999999.99", false, ptr("9999999999999.99")},
		{"NaN", math.NaN(), false, ptr("0.00")},
		{"tipo desconocido", struct{}{}, true, nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := pricing.SanitizePrice(tt.raw, tt.allowNull)
			require.NoError(t, err)
			if tt.want == nil {
				assert.Nil(t, got)
				return
			}
			require.NotNil(t, got)
			assert.Equal(t, *tt.want, *got)
		})
	}
}

func TestSanitizePrice_DemasiadoGrande(t *testing.T) {
	got, err := pricing.SanitizePrice("10000000000000", false)
	assert.Nil(t, got)
	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrInvalidInput))

	var ve *domain.ValidationError
	require.ErrorAs(t, err, &ve)
	assert.Contains(t, ve.Message, "Price too large")
	assert.Contains(t, ve.Message, pricing.MaxPriceText)
	assert.Equal(t, "10000000000000", ve.Details["received"])
}

func TestSanitizePrice_Idempotente(t *testing.T) {
	first, err := pricing.SanitizePrice("123.456", false)
	require.NoError(t, err)
	second, err := pricing.SanitizePrice(*first, false)
	require.NoError(t, err)
	assert.Equal(t, *first, *second)
}

func TestIsNegativeRaw(t *testing.T) {
	assert.True(t, pricing.IsNegativeRaw("-1"))
	assert.True(t, pricing.IsNegativeRaw(-0.5))
	assert.False(t, pricing.IsNegativeRaw("0"))
	assert.False(t, pricing.IsNegativeRaw("abc"))
	assert.False(t, pricing.IsNegativeRaw(nil))
}

func TestMoneyHelpers(t *testing.T) {
	assert.True(t, pricing.ParseMoney("x").IsZero())
	assert.Equal(t, "12.50", pricing.FormatMoney(pricing.ParseMoney("12.5")))
	assert.True(t, pricing.MoneyOrZero(nil).IsZero())
	assert.Nil(t, pricing.NullableMoney(nil))
	assert.Nil(t, pricing.FormatNullableMoney(nil))

	d := decimal.RequireFromString("7")
	require.NotNil(t, pricing.FormatNullableMoney(&d))
	assert.Equal(t, "7.00", *pricing.FormatNullableMoney(&d))
}

func ptr(s string) *string { return &s }
