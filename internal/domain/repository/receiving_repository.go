package repository

import (
	"context"

	"github.com/ArtEnginer/POS/internal/domain/entity"
)

// ReceivingRepository define el puerto de persistencia para recepciones.
type ReceivingRepository interface {
	Create(ctx context.Context, r *entity.Receiving) error
	CreateItem(ctx context.Context, item *entity.ReceivingItem) error
	GetByID(ctx context.Context, id string) (*entity.Receiving, error)
	// GetForUpdate bloquea la cabecera; serializa las devoluciones sobre la misma recepción.
	GetForUpdate(ctx context.Context, id string) (*entity.Receiving, error)
	List(ctx context.Context, branchID string, limit, offset int) ([]*entity.Receiving, error)
}
