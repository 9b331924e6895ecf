package repository

import (
	"context"

	"github.com/ArtEnginer/POS/internal/domain/entity"
)

// UnitRepository define el puerto de persistencia para ProductUnit.
type UnitRepository interface {
	Create(ctx context.Context, unit *entity.ProductUnit) error
	// GetByID busca la unidad viva que pertenezca al producto.
	GetByID(ctx context.Context, productID, unitID string) (*entity.ProductUnit, error)
	GetBase(ctx context.Context, productID string) (*entity.ProductUnit, error)
	ListByProduct(ctx context.Context, productID string) ([]*entity.ProductUnit, error)
	Update(ctx context.Context, unit *entity.ProductUnit) error
	// SoftDelete marca la unidad y sus precios.
	SoftDelete(ctx context.Context, productID, unitID string) error
}
