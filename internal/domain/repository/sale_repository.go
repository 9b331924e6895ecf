package repository

import (
	"context"
	"time"

	"github.com/ArtEnginer/POS/internal/domain/entity"
)

// SaleFilter filtros del listado de ventas.
type SaleFilter struct {
	BranchID  string
	CashierID string
	Status    string
	From      *time.Time
	To        *time.Time
	Limit     int
	Offset    int
}

// SaleRepository define el puerto de persistencia para Sale y sus líneas.
type SaleRepository interface {
	Create(ctx context.Context, sale *entity.Sale) error
	CreateItem(ctx context.Context, item *entity.SaleItem) error
	// GetByID incluye las líneas.
	GetByID(ctx context.Context, id string) (*entity.Sale, error)
	// GetForUpdate bloquea la cabecera para cambios de estado.
	GetForUpdate(ctx context.Context, id string) (*entity.Sale, error)
	List(ctx context.Context, f SaleFilter) ([]*entity.Sale, error)
	Count(ctx context.Context, f SaleFilter) (int, error)
	UpdateStatus(ctx context.Context, id, status string) error
}
