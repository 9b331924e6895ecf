package repository

import (
	"context"

	"github.com/shopspring/decimal"

	"github.com/ArtEnginer/POS/internal/domain/entity"
)

// PriceFilter filtros opcionales de la matriz de precios.
type PriceFilter struct {
	UnitID   string
	BranchID string
}

// PriceRepository define el puerto de persistencia para ProductBranchPrice.
type PriceRepository interface {
	// Upsert inserta o sobrescribe la fila (product, branch, unit) y limpia deleted_at.
	Upsert(ctx context.Context, price *entity.ProductBranchPrice) (*entity.ProductBranchPrice, error)
	// SeedForUnit crea la fila de cada sucursal activa con los precios dados sin tocar las existentes.
	SeedForUnit(ctx context.Context, productID, unitID string, cost, selling decimal.Decimal) (int, error)
	Get(ctx context.Context, productID, branchID, unitID string) (*entity.ProductBranchPrice, error)
	ListByProduct(ctx context.Context, productID string, f PriceFilter) ([]*entity.ProductBranchPrice, error)
}
