package repository

import (
	"context"

	"github.com/shopspring/decimal"

	"github.com/ArtEnginer/POS/internal/domain/entity"
)

// ReturnFilter filtros de los listados de devoluciones.
type ReturnFilter struct {
	BranchID string
	// DocumentID recepción (devoluciones a proveedor) o venta (devoluciones de cliente).
	DocumentID string
	Status     string
	Limit      int
	Offset     int
}

// PurchaseReturnRepository define el puerto de persistencia para devoluciones a proveedor.
type PurchaseReturnRepository interface {
	Create(ctx context.Context, r *entity.PurchaseReturn) error
	CreateItem(ctx context.Context, item *entity.PurchaseReturnItem) error
	GetByID(ctx context.Context, id string) (*entity.PurchaseReturn, error)
	GetForUpdate(ctx context.Context, id string) (*entity.PurchaseReturn, error)
	List(ctx context.Context, f ReturnFilter) ([]*entity.PurchaseReturn, error)
	Count(ctx context.Context, f ReturnFilter) (int, error)
	UpdateStatus(ctx context.Context, id, status string) error
	// ReturnedByItem cantidad ya devuelta por línea de la recepción, sin contar las anuladas.
	ReturnedByItem(ctx context.Context, receivingID string) (map[string]decimal.Decimal, error)
}

// SalesReturnRepository define el puerto de persistencia para devoluciones de cliente.
type SalesReturnRepository interface {
	Create(ctx context.Context, r *entity.SalesReturn) error
	CreateItem(ctx context.Context, item *entity.SalesReturnItem) error
	GetByID(ctx context.Context, id string) (*entity.SalesReturn, error)
	GetForUpdate(ctx context.Context, id string) (*entity.SalesReturn, error)
	List(ctx context.Context, f ReturnFilter) ([]*entity.SalesReturn, error)
	Count(ctx context.Context, f ReturnFilter) (int, error)
	UpdateStatus(ctx context.Context, id, status string) error
	// ReturnedByItem cantidad ya devuelta por línea de la venta, sin contar las anuladas.
	ReturnedByItem(ctx context.Context, saleID string) (map[string]decimal.Decimal, error)
}
