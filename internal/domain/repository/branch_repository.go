package repository

import (
	"context"

	"github.com/ArtEnginer/POS/internal/domain/entity"
)

// BranchRepository define el puerto de persistencia para Branch (DIP).
type BranchRepository interface {
	Create(ctx context.Context, branch *entity.Branch) error
	GetByID(ctx context.Context, id string) (*entity.Branch, error)
	List(ctx context.Context, limit, offset int) ([]*entity.Branch, error)
	// ListActiveIDs sucursales con is_active y sin soft-delete.
	ListActiveIDs(ctx context.Context) ([]string, error)
	Update(ctx context.Context, branch *entity.Branch) error
	SoftDelete(ctx context.Context, id string) (bool, error)
}
