package inventory

import (
	"context"

	"github.com/shopspring/decimal"

	"github.com/ArtEnginer/POS/internal/domain"
	"github.com/ArtEnginer/POS/internal/domain/entity"
	"github.com/ArtEnginer/POS/internal/domain/repository"
)

// ResolveUnit unidad de la línea: la indicada (debe pertenecer al producto) o la base. Un producto
// sin unidad base registrada se trata como su unidad de referencia con conversión 1.
func ResolveUnit(ctx context.Context, units repository.UnitRepository, product *entity.Product, unitID string) (*entity.ProductUnit, error) {
	if unitID != "" {
		u, err := units.GetByID(ctx, product.ID, unitID)
		if err != nil {
			return nil, err
		}
		if u == nil {
			return nil, domain.NewNotFoundError("Product unit not found")
		}
		return u, nil
	}
	base, err := units.GetBase(ctx, product.ID)
	if err != nil {
		return nil, err
	}
	if base != nil {
		return base, nil
	}
	return &entity.ProductUnit{
		ProductID:       product.ID,
		UnitName:        product.Unit,
		ConversionValue: decimal.NewFromInt(1),
		IsBaseUnit:      true,
	}, nil
}

// UnitRef id de la unidad para las líneas; nil si es la unidad sintética.
func UnitRef(u *entity.ProductUnit) *string {
	if u.ID == "" {
		return nil
	}
	id := u.ID
	return &id
}
