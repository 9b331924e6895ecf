package pdf

import (
	"bytes"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ArtEnginer/POS/internal/domain/entity"
)

func TestFormatMoney(t *testing.T) {
	cases := map[string]string{
		"0":          "0.00",
		"12.5":       "12.50",
		"1234":       "1,234.00",
		"1234567.5":  "1,234,567.50",
		"-9876.555":  "-9,876.56",
		"999999.999": "1,000,000.00",
	}
	for in, want := range cases {
		assert.Equal(t, want, formatMoney(decimal.RequireFromString(in)), in)
	}
}

func TestRender_GeneraPDF(t *testing.T) {
	sale := &entity.Sale{
		SaleNumber:    "INV-20260101-000001",
		BranchName:    "Pusat",
		PaymentMethod: "cash",
		Status:        entity.SaleStatusCompleted,
		SaleDate:      time.Date(2026, 1, 1, 10, 0, 0, 0, time.UTC),
		Subtotal:      decimal.RequireFromString("25000"),
		TotalAmount:   decimal.RequireFromString("25000"),
		PaidAmount:    decimal.RequireFromString("30000"),
		ChangeAmount:  decimal.RequireFromString("5000"),
		Items: []*entity.SaleItem{{
			ProductName: "Arroz 1kg",
			UnitName:    "PCS",
			Quantity:    decimal.NewFromInt(2),
			UnitPrice:   decimal.RequireFromString("12500"),
			Total:       decimal.RequireFromString("25000"),
		}},
	}

	out, err := NewMarotoReceiptRenderer("Toko Maju").Render(sale)
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(out, []byte("%PDF")))
}

func TestRender_VentaNula(t *testing.T) {
	_, err := NewMarotoReceiptRenderer("").Render(nil)
	assert.Error(t, err)
}
