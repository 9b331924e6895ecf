package repository

import (
	"context"

	"github.com/shopspring/decimal"

	"github.com/ArtEnginer/POS/internal/domain/entity"
)

// ProductFilter filtros del listado de productos.
type ProductFilter struct {
	Search     string
	CategoryID string
	IsActive   *bool
	BranchID   string // si viene, el stock agregado es solo de esa sucursal
	Limit      int
	Offset     int
}

// ProductRepository define el puerto de persistencia para Product (DIP).
// Todas las lecturas excluyen productos con soft-delete.
type ProductRepository interface {
	Create(ctx context.Context, product *entity.Product) error
	GetByID(ctx context.Context, id string) (*entity.Product, error)
	GetBySKU(ctx context.Context, sku string) (*entity.Product, error)
	// GetByBarcode busca por código de barras del producto o de cualquiera de sus unidades.
	GetByBarcode(ctx context.Context, barcode string) (*entity.Product, error)
	List(ctx context.Context, f ProductFilter) ([]*entity.ProductListItem, error)
	Count(ctx context.Context, f ProductFilter) (int, error)
	Search(ctx context.Context, q string, limit int) ([]*entity.Product, error)
	ListLowStock(ctx context.Context, branchID string) ([]*entity.ProductListItem, error)
	Update(ctx context.Context, product *entity.Product) error
	UpdateCost(ctx context.Context, productID string, cost decimal.Decimal) error
	// SoftDelete marca el producto y sus unidades/precios; false si no existía.
	SoftDelete(ctx context.Context, id string) (bool, error)
}
