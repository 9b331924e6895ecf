package repository

import (
	"context"

	"github.com/ArtEnginer/POS/internal/domain/entity"
)

// SupplierFilter filtros del listado de proveedores.
type SupplierFilter struct {
	Search   string // nombre, código, email o teléfono
	IsActive *bool
	Limit    int
	Offset   int
}

// SupplierRepository define el puerto de persistencia para Supplier.
type SupplierRepository interface {
	Create(ctx context.Context, s *entity.Supplier) error
	GetByID(ctx context.Context, id string) (*entity.Supplier, error)
	List(ctx context.Context, f SupplierFilter) ([]*entity.Supplier, error)
	Count(ctx context.Context, f SupplierFilter) (int, error)
	Update(ctx context.Context, s *entity.Supplier) error
	// SoftDelete marca el proveedor y renombra su código para liberarlo; false si no existía.
	SoftDelete(ctx context.Context, id string) (bool, error)
	// LastCode último código vivo o borrado que empieza por prefix; "" si no hay.
	LastCode(ctx context.Context, prefix string) (string, error)
}
