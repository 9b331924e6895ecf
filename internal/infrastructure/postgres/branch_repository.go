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

var _ repository.BranchRepository = (*BranchRepo)(nil)

// BranchRepo implementación de BranchRepository sobre PostgreSQL.
type BranchRepo struct {
	q Querier
}

// NewBranchRepository construye el adaptador de sucursales. Pasar pool o tx (Querier).
func NewBranchRepository(q Querier) *BranchRepo {
	return &BranchRepo{q: q}
}

const branchColumns = `id, code, name, address, phone, email, type, is_active, created_at, updated_at, deleted_at`

func scanBranch(row pgx.Row) (*entity.Branch, error) {
	var b entity.Branch
	err := row.Scan(&b.ID, &b.Code, &b.Name, &b.Address, &b.Phone, &b.Email, &b.Type,
		&b.IsActive, &b.CreatedAt, &b.UpdatedAt, &b.DeletedAt)
	if err != nil {
		return nil, err
	}
	return &b, nil
}

// Create persiste una sucursal nueva.
func (r *BranchRepo) Create(ctx context.Context, b *entity.Branch) error {
	query := `
		INSERT INTO branches (id, code, name, address, phone, email, type, is_active, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`
	_, err := r.q.Exec(ctx, query,
		b.ID, b.Code, b.Name, b.Address, b.Phone, b.Email, b.Type, b.IsActive, b.CreatedAt, b.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.NewConflictError("Branch code already exists")
		}
		return fmt.Errorf("insert branch: %w", err)
	}
	return nil
}

// GetByID obtiene una sucursal viva; nil si no existe o fue eliminada.
func (r *BranchRepo) GetByID(ctx context.Context, id string) (*entity.Branch, error) {
	query := `SELECT ` + branchColumns + ` FROM branches WHERE id = $1 AND deleted_at IS NULL`
	b, err := scanBranch(r.q.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get branch: %w", err)
	}
	return b, nil
}

// List lista sucursales vivas ordenadas por código.
func (r *BranchRepo) List(ctx context.Context, limit, offset int) ([]*entity.Branch, error) {
	query := `SELECT ` + branchColumns + ` FROM branches WHERE deleted_at IS NULL
		ORDER BY code LIMIT $1 OFFSET $2`
	rows, err := r.q.Query(ctx, query, limitOrDefault(limit), offset)
	if err != nil {
		return nil, fmt.Errorf("list branches: %w", err)
	}
	defer rows.Close()
	var list []*entity.Branch
	for rows.Next() {
		b, err := scanBranch(rows)
		if err != nil {
			return nil, fmt.Errorf("scan branch: %w", err)
		}
		list = append(list, b)
	}
	return list, rows.Err()
}

// ListActiveIDs ids de sucursales activas y vivas.
func (r *BranchRepo) ListActiveIDs(ctx context.Context) ([]string, error) {
	rows, err := r.q.Query(ctx,
		`SELECT id FROM branches WHERE is_active = TRUE AND deleted_at IS NULL ORDER BY code`)
	if err != nil {
		return nil, fmt.Errorf("list active branches: %w", err)
	}
	defer rows.Close()
	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("scan branch id: %w", err)
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

// Update actualiza datos editables de la sucursal.
func (r *BranchRepo) Update(ctx context.Context, b *entity.Branch) error {
	query := `
		UPDATE branches SET code = $2, name = $3, address = $4, phone = $5, email = $6, type = $7,
			is_active = $8, updated_at = now()
		WHERE id = $1 AND deleted_at IS NULL`
	_, err := r.q.Exec(ctx, query, b.ID, b.Code, b.Name, b.Address, b.Phone, b.Email, b.Type, b.IsActive)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.NewConflictError("Branch code already exists")
		}
		return fmt.Errorf("update branch: %w", err)
	}
	return nil
}

// SoftDelete marca la sucursal como eliminada; false si no existía.
func (r *BranchRepo) SoftDelete(ctx context.Context, id string) (bool, error) {
	cmd, err := r.q.Exec(ctx,
		`UPDATE branches SET deleted_at = now(), is_active = FALSE, updated_at = now() WHERE id = $1 AND deleted_at IS NULL`, id)
	if err != nil {
		return false, fmt.Errorf("delete branch: %w", err)
	}
	return cmd.RowsAffected() > 0, nil
}
