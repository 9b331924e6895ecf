package pricing_test

import (
	"context"
	"errors"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/ArtEnginer/POS/internal/application/dto"
	"github.com/ArtEnginer/POS/internal/application/ports"
	"github.com/ArtEnginer/POS/internal/application/pricing"
	"github.com/ArtEnginer/POS/internal/domain"
	"github.com/ArtEnginer/POS/internal/domain/repository"
	"github.com/ArtEnginer/POS/internal/testutil/memstore"
)

func newConverter(s *memstore.Store, n ports.Notifier) *pricing.UnitConverter {
	return pricing.NewUnitConverter(s, s.Products(), s.Units(), nil, n)
}

func conv(v string) *decimal.Decimal {
	d := decimal.RequireFromString(v)
	return &d
}

func TestNormalizeUnitName(t *testing.T) {
	assert.Equal(t, "BOX", pricing.NormalizeUnitName("  box "))
	assert.Equal(t, "", pricing.NormalizeUnitName("   "))
}

func TestCreateUnit_SiembraPrecios(t *testing.T) {
	s := memstore.New()
	s.AddBranch("B1", "Centro")
	s.AddBranch("B2", "Norte")
	p, _ := s.AddProduct("SKU-1", "Agua", "100", "150")

	n := &notifierMock{}
	n.On("Publish", ports.EventUnitUpdate, mock.Anything).Once()
	c := newConverter(s, n)

	out, err := c.CreateUnit(context.Background(), p.ID, dto.CreateUnitRequest{UnitName: "box", ConversionValue: conv("12")})
	require.NoError(t, err)
	assert.Equal(t, "BOX", out.UnitName)
	assert.True(t, out.IsSellable)
	assert.True(t, out.IsPurchasable)
	n.AssertExpectations(t)

	rows, err := s.Prices().ListByProduct(context.Background(), p.ID, repository.PriceFilter{UnitID: out.ID})
	require.NoError(t, err)
	require.Len(t, rows, 2)
	for _, r := range rows {
		assert.True(t, r.SellingPrice.IsZero())
	}

	units, err := c.ListUnits(context.Background(), p.ID)
	require.NoError(t, err)
	require.Len(t, units, 2)
	assert.True(t, units[0].IsBaseUnit, "la unidad base va primero")
}

func TestCreateUnit_Rechazos(t *testing.T) {
	s := memstore.New()
	p, _ := s.AddProduct("SKU-1", "Agua", "100", "150")
	s.AddUnit(p.ID, "BOX", "12")
	c := newConverter(s, nil)
	ctx := context.Background()

	_, err := c.CreateUnit(ctx, p.ID, dto.CreateUnitRequest{UnitName: " ", ConversionValue: conv("1")})
	assert.True(t, errors.Is(err, domain.ErrInvalidInput))

	_, err = c.CreateUnit(ctx, p.ID, dto.CreateUnitRequest{UnitName: "PACK", ConversionValue: conv("0")})
	assert.EqualError(t, err, "Conversion value must be greater than 0")

	_, err = c.CreateUnit(ctx, p.ID, dto.CreateUnitRequest{UnitName: "KG", ConversionValue: conv("2"), IsBaseUnit: true})
	assert.EqualError(t, err, "Base unit conversion must be 1")

	_, err = c.CreateUnit(ctx, p.ID, dto.CreateUnitRequest{UnitName: "KG", ConversionValue: conv("1"), IsBaseUnit: true})
	assert.EqualError(t, err, "Product already has a base unit. Please update existing base unit instead.")

	_, err = c.CreateUnit(ctx, p.ID, dto.CreateUnitRequest{UnitName: "box", ConversionValue: conv("6")})
	assert.True(t, errors.Is(err, domain.ErrConflict))

	_, err = c.CreateUnit(ctx, "nope", dto.CreateUnitRequest{UnitName: "PACK", ConversionValue: conv("6")})
	assert.True(t, errors.Is(err, domain.ErrNotFound))
}

func TestUpdateUnit_Parcial(t *testing.T) {
	s := memstore.New()
	p, base := s.AddProduct("SKU-1", "Agua", "100", "150")
	box := s.AddUnit(p.ID, "BOX", "12")
	c := newConverter(s, nil)
	ctx := context.Background()

	_, err := c.UpdateUnit(ctx, p.ID, box.ID, dto.UpdateUnitRequest{})
	assert.EqualError(t, err, "No fields to update")

	name := "caja"
	out, err := c.UpdateUnit(ctx, p.ID, box.ID, dto.UpdateUnitRequest{UnitName: &name, ConversionValue: conv("24")})
	require.NoError(t, err)
	assert.Equal(t, "CAJA", out.UnitName)
	assert.True(t, out.ConversionValue.Equal(decimal.NewFromInt(24)))

	_, err = c.UpdateUnit(ctx, p.ID, base.ID, dto.UpdateUnitRequest{ConversionValue: conv("2")})
	assert.EqualError(t, err, "Base unit conversion must be 1")

	_, err = c.UpdateUnit(ctx, p.ID, "nope", dto.UpdateUnitRequest{UnitName: &name})
	assert.True(t, errors.Is(err, domain.ErrNotFound))
}

func TestDeleteUnit(t *testing.T) {
	s := memstore.New()
	s.AddBranch("B1", "Centro")
	p, base := s.AddProduct("SKU-1", "Agua", "100", "150")
	box := s.AddUnit(p.ID, "BOX", "12")
	c := newConverter(s, nil)
	ctx := context.Background()

	err := c.DeleteUnit(ctx, p.ID, base.ID)
	assert.EqualError(t, err, "Cannot delete base unit")

	require.NoError(t, c.DeleteUnit(ctx, p.ID, box.ID))
	units, err := c.ListUnits(ctx, p.ID)
	require.NoError(t, err)
	assert.Len(t, units, 1)

	err = c.DeleteUnit(ctx, p.ID, box.ID)
	assert.True(t, errors.Is(err, domain.ErrNotFound))
}
