package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/ArtEnginer/POS/internal/domain"
	"github.com/ArtEnginer/POS/internal/domain/entity"
	"github.com/ArtEnginer/POS/internal/domain/repository"
)

var _ repository.UnitRepository = (*UnitRepo)(nil)

// UnitRepo implementación de UnitRepository sobre PostgreSQL.
type UnitRepo struct {
	q Querier
}

// NewUnitRepository construye el adaptador de unidades. Pasar pool o tx (Querier).
func NewUnitRepository(q Querier) *UnitRepo {
	return &UnitRepo{q: q}
}

const unitColumns = `id, product_id, unit_name, conversion_value, is_base_unit, is_purchasable,
	is_sellable, barcode, sort_order, created_at, updated_at, deleted_at`

func scanUnit(row pgx.Row) (*entity.ProductUnit, error) {
	var u entity.ProductUnit
	err := row.Scan(&u.ID, &u.ProductID, &u.UnitName, &u.ConversionValue, &u.IsBaseUnit, &u.IsPurchasable,
		&u.IsSellable, &u.Barcode, &u.SortOrder, &u.CreatedAt, &u.UpdatedAt, &u.DeletedAt)
	if err != nil {
		return nil, err
	}
	return &u, nil
}

// Create persiste una unidad. El índice parcial ux_product_units_base rechaza una segunda base viva.
func (r *UnitRepo) Create(ctx context.Context, u *entity.ProductUnit) error {
	query := `
		INSERT INTO product_units (id, product_id, unit_name, conversion_value, is_base_unit, is_purchasable,
			is_sellable, barcode, sort_order, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`
	_, err := r.q.Exec(ctx, query,
		u.ID, u.ProductID, u.UnitName, u.ConversionValue, u.IsBaseUnit, u.IsPurchasable,
		u.IsSellable, u.Barcode, u.SortOrder, u.CreatedAt, u.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			if u.IsBaseUnit {
				return domain.NewConflictError("Product already has a base unit. Please update existing base unit instead.")
			}
			return domain.NewConflictError("Unit already exists for this product")
		}
		return fmt.Errorf("insert product unit: %w", err)
	}
	return nil
}

// GetByID busca la unidad viva del producto; nil si no existe.
func (r *UnitRepo) GetByID(ctx context.Context, productID, unitID string) (*entity.ProductUnit, error) {
	query := `SELECT ` + unitColumns + ` FROM product_units
		WHERE id = $1 AND product_id = $2 AND deleted_at IS NULL`
	u, err := scanUnit(r.q.QueryRow(ctx, query, unitID, productID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get product unit: %w", err)
	}
	return u, nil
}

// GetBase unidad base viva del producto; nil si no tiene.
func (r *UnitRepo) GetBase(ctx context.Context, productID string) (*entity.ProductUnit, error) {
	query := `SELECT ` + unitColumns + ` FROM product_units
		WHERE product_id = $1 AND is_base_unit = TRUE AND deleted_at IS NULL`
	u, err := scanUnit(r.q.QueryRow(ctx, query, productID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get base unit: %w", err)
	}
	return u, nil
}

// ListByProduct unidades vivas, base primero.
func (r *UnitRepo) ListByProduct(ctx context.Context, productID string) ([]*entity.ProductUnit, error) {
	query := `SELECT ` + unitColumns + ` FROM product_units
		WHERE product_id = $1 AND deleted_at IS NULL
		ORDER BY is_base_unit DESC, sort_order, conversion_value`
	rows, err := r.q.Query(ctx, query, productID)
	if err != nil {
		return nil, fmt.Errorf("list product units: %w", err)
	}
	defer rows.Close()
	var list []*entity.ProductUnit
	for rows.Next() {
		u, err := scanUnit(rows)
		if err != nil {
			return nil, fmt.Errorf("scan product unit: %w", err)
		}
		list = append(list, u)
	}
	return list, rows.Err()
}

// Update persiste los campos editables de la unidad.
func (r *UnitRepo) Update(ctx context.Context, u *entity.ProductUnit) error {
	query := `
		UPDATE product_units SET unit_name = $3, conversion_value = $4, is_purchasable = $5,
			is_sellable = $6, barcode = $7, sort_order = $8, updated_at = now()
		WHERE id = $1 AND product_id = $2 AND deleted_at IS NULL`
	_, err := r.q.Exec(ctx, query,
		u.ID, u.ProductID, u.UnitName, u.ConversionValue, u.IsPurchasable, u.IsSellable, u.Barcode, u.SortOrder,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.NewConflictError("Unit already exists for this product")
		}
		if isCheckViolation(err) {
			return domain.NewValidationError("Base unit conversion must be 1", nil)
		}
		return fmt.Errorf("update product unit: %w", err)
	}
	return nil
}

// SoftDelete marca la unidad y sus precios como eliminados.
func (r *UnitRepo) SoftDelete(ctx context.Context, productID, unitID string) error {
	if _, err := r.q.Exec(ctx,
		`UPDATE product_units SET deleted_at = now(), updated_at = now()
		 WHERE id = $1 AND product_id = $2 AND deleted_at IS NULL`, unitID, productID); err != nil {
		return fmt.Errorf("delete product unit: %w", err)
	}
	if _, err := r.q.Exec(ctx,
		`UPDATE product_branch_prices SET deleted_at = now(), updated_at = now()
		 WHERE product_unit_id = $1 AND deleted_at IS NULL`, unitID); err != nil {
		return fmt.Errorf("delete unit prices: %w", err)
	}
	return nil
}
