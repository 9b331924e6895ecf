package repository

import (
	"context"

	"github.com/ArtEnginer/POS/internal/domain/entity"
)

// StockRepository define el puerto de persistencia para ProductStock.
type StockRepository interface {
	// Get devuelve el stock o una fila en cero si no existe (sin crearla).
	Get(ctx context.Context, productID, branchID string) (*entity.ProductStock, error)
	// GetForUpdate materializa la fila si falta y la bloquea (SELECT ... FOR UPDATE)
	// hasta el fin de la transacción. Solo tiene sentido dentro de TxRunner.
	GetForUpdate(ctx context.Context, productID, branchID string) (*entity.ProductStock, error)
	// Save persiste quantity de una fila existente.
	Save(ctx context.Context, stock *entity.ProductStock) error
	ListByProduct(ctx context.Context, productID, branchID string) ([]*entity.ProductStock, error)
	// SeedForProduct crea filas en cero para cada sucursal activa; devuelve cuántas.
	SeedForProduct(ctx context.Context, productID string) (int, error)
	// SeedForBranch crea filas en cero para cada producto vivo en la sucursal.
	SeedForBranch(ctx context.Context, branchID string) (int, error)
}
