package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"

	"github.com/ArtEnginer/POS/internal/domain"
	"github.com/ArtEnginer/POS/internal/domain/entity"
	"github.com/ArtEnginer/POS/internal/domain/repository"
)

var _ repository.StockRepository = (*StockRepo)(nil)

// StockRepo implementación de StockRepository sobre PostgreSQL (usable con pool o tx).
type StockRepo struct {
	q Querier
}

// NewStockRepository construye el adaptador de stock. Pasar pool o tx (Querier).
func NewStockRepository(q Querier) *StockRepo {
	return &StockRepo{q: q}
}

// Get obtiene el stock actual de un producto en una sucursal; cero si no hay fila.
func (r *StockRepo) Get(ctx context.Context, productID, branchID string) (*entity.ProductStock, error) {
	query := `
		SELECT product_id, branch_id, quantity, reserved_quantity, updated_at
		FROM product_stocks WHERE product_id = $1 AND branch_id = $2`
	var s entity.ProductStock
	err := r.q.QueryRow(ctx, query, productID, branchID).Scan(
		&s.ProductID, &s.BranchID, &s.Quantity, &s.ReservedQuantity, &s.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return &entity.ProductStock{ProductID: productID, BranchID: branchID, Quantity: decimal.Zero, ReservedQuantity: decimal.Zero}, nil
		}
		return nil, fmt.Errorf("get stock: %w", err)
	}
	return &s, nil
}

// GetForUpdate materializa la fila en cero si falta y la bloquea (SELECT FOR UPDATE).
// Dos transacciones concurrentes sobre el mismo par quedan serializadas: la segunda lee
// la cantidad ya confirmada por la primera.
func (r *StockRepo) GetForUpdate(ctx context.Context, productID, branchID string) (*entity.ProductStock, error) {
	if _, err := r.q.Exec(ctx, `
		INSERT INTO product_stocks (product_id, branch_id, quantity, reserved_quantity, updated_at)
		VALUES ($1, $2, 0, 0, now())
		ON CONFLICT (product_id, branch_id) DO NOTHING`, productID, branchID); err != nil {
		if isForeignKeyViolation(err) {
			return nil, domain.NewNotFoundError("Product or branch not found")
		}
		return nil, fmt.Errorf("ensure stock row: %w", err)
	}
	query := `
		SELECT product_id, branch_id, quantity, reserved_quantity, updated_at
		FROM product_stocks WHERE product_id = $1 AND branch_id = $2
		FOR UPDATE`
	var s entity.ProductStock
	err := r.q.QueryRow(ctx, query, productID, branchID).Scan(
		&s.ProductID, &s.BranchID, &s.Quantity, &s.ReservedQuantity, &s.UpdatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("get stock for update: %w", err)
	}
	return &s, nil
}

// Save persiste la cantidad de una fila existente. El CHECK quantity >= 0 de la tabla es la
// última barrera contra stock negativo.
func (r *StockRepo) Save(ctx context.Context, s *entity.ProductStock) error {
	err := r.q.QueryRow(ctx, `
		UPDATE product_stocks SET quantity = $3, updated_at = now()
		WHERE product_id = $1 AND branch_id = $2
		RETURNING updated_at`, s.ProductID, s.BranchID, s.Quantity).Scan(&s.UpdatedAt)
	if err != nil {
		if isCheckViolation(err) {
			return domain.NewValidationError("Stock cannot be negative", map[string]any{"result": s.Quantity})
		}
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.NewNotFoundError("Stock record not found")
		}
		return fmt.Errorf("save stock: %w", err)
	}
	return nil
}

// ListByProduct stock del producto por sucursal viva; branchID vacío = todas.
func (r *StockRepo) ListByProduct(ctx context.Context, productID, branchID string) ([]*entity.ProductStock, error) {
	query := `
		SELECT ps.product_id, ps.branch_id, b.name, ps.quantity, ps.reserved_quantity, ps.updated_at
		FROM product_stocks ps
		JOIN branches b ON b.id = ps.branch_id AND b.deleted_at IS NULL
		WHERE ps.product_id = $1 AND ($2 = '' OR ps.branch_id::text = $2)
		ORDER BY b.code`
	rows, err := r.q.Query(ctx, query, productID, branchID)
	if err != nil {
		return nil, fmt.Errorf("list stocks: %w", err)
	}
	defer rows.Close()
	var list []*entity.ProductStock
	for rows.Next() {
		var s entity.ProductStock
		if err := rows.Scan(&s.ProductID, &s.BranchID, &s.BranchName, &s.Quantity, &s.ReservedQuantity, &s.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scan stock: %w", err)
		}
		list = append(list, &s)
	}
	return list, rows.Err()
}

// SeedForProduct crea filas en cero para cada sucursal activa sin fila previa.
func (r *StockRepo) SeedForProduct(ctx context.Context, productID string) (int, error) {
	cmd, err := r.q.Exec(ctx, `
		INSERT INTO product_stocks (product_id, branch_id, quantity, reserved_quantity, updated_at)
		SELECT $1, b.id, 0, 0, now()
		FROM branches b
		WHERE b.is_active = TRUE AND b.deleted_at IS NULL
		ON CONFLICT (product_id, branch_id) DO NOTHING`, productID)
	if err != nil {
		return 0, fmt.Errorf("seed stock for product: %w", err)
	}
	return int(cmd.RowsAffected()), nil
}

// SeedForBranch crea filas en cero para cada producto vivo en la sucursal.
func (r *StockRepo) SeedForBranch(ctx context.Context, branchID string) (int, error) {
	cmd, err := r.q.Exec(ctx, `
		INSERT INTO product_stocks (product_id, branch_id, quantity, reserved_quantity, updated_at)
		SELECT p.id, $1, 0, 0, now()
		FROM products p
		WHERE p.deleted_at IS NULL
		ON CONFLICT (product_id, branch_id) DO NOTHING`, branchID)
	if err != nil {
		return 0, fmt.Errorf("seed stock for branch: %w", err)
	}
	return int(cmd.RowsAffected()), nil
}
