package postgres

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"

	"github.com/ArtEnginer/POS/internal/domain"
	"github.com/ArtEnginer/POS/internal/domain/entity"
	"github.com/ArtEnginer/POS/internal/domain/repository"
)

var _ repository.SupplierRepository = (*SupplierRepo)(nil)

// SupplierRepo implementación de SupplierRepository (usable con pool o tx).
type SupplierRepo struct {
	q Querier
}

// NewSupplierRepository construye el adaptador. Pasar pool o tx (Querier).
func NewSupplierRepository(q Querier) *SupplierRepo {
	return &SupplierRepo{q: q}
}

const supplierColumns = `id, code, name, email, phone, address, city, tax_id, payment_terms, credit_limit,
	current_balance, is_active, notes, created_at, updated_at, deleted_at`

func scanSupplier(row pgx.Row) (*entity.Supplier, error) {
	var s entity.Supplier
	err := row.Scan(&s.ID, &s.Code, &s.Name, &s.Email, &s.Phone, &s.Address, &s.City, &s.TaxID,
		&s.PaymentTerms, &s.CreditLimit, &s.CurrentBalance, &s.IsActive, &s.Notes,
		&s.CreatedAt, &s.UpdatedAt, &s.DeletedAt)
	if err != nil {
		return nil, err
	}
	return &s, nil
}

// Create persiste un nuevo proveedor.
func (r *SupplierRepo) Create(ctx context.Context, s *entity.Supplier) error {
	query := `
		INSERT INTO suppliers (id, code, name, email, phone, address, city, tax_id, payment_terms, credit_limit,
			current_balance, is_active, notes, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15)`
	_, err := r.q.Exec(ctx, query,
		s.ID, s.Code, s.Name, s.Email, s.Phone, s.Address, s.City, s.TaxID, s.PaymentTerms, s.CreditLimit,
		s.CurrentBalance, s.IsActive, s.Notes, s.CreatedAt, s.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.NewConflictError("Supplier code already exists")
		}
		return fmt.Errorf("insert supplier: %w", err)
	}
	return nil
}

// GetByID obtiene un proveedor vivo por ID.
func (r *SupplierRepo) GetByID(ctx context.Context, id string) (*entity.Supplier, error) {
	s, err := scanSupplier(r.q.QueryRow(ctx,
		`SELECT `+supplierColumns+` FROM suppliers WHERE id = $1 AND deleted_at IS NULL`, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get supplier: %w", err)
	}
	return s, nil
}

func supplierWhere(f repository.SupplierFilter) (string, []any) {
	conds := []string{"deleted_at IS NULL"}
	var args []any
	if f.Search != "" {
		args = append(args, f.Search)
		n := len(args)
		conds = append(conds, fmt.Sprintf(
			"(name ILIKE '%%' || $%d || '%%' OR code ILIKE '%%' || $%d || '%%' OR email ILIKE '%%' || $%d || '%%' OR phone ILIKE '%%' || $%d || '%%')",
			n, n, n, n))
	}
	if f.IsActive != nil {
		args = append(args, *f.IsActive)
		conds = append(conds, fmt.Sprintf("is_active = $%d", len(args)))
	}
	return strings.Join(conds, " AND "), args
}

// List proveedores vivos ordenados por nombre.
func (r *SupplierRepo) List(ctx context.Context, f repository.SupplierFilter) ([]*entity.Supplier, error) {
	where, args := supplierWhere(f)
	args = append(args, limitOrDefault(f.Limit), f.Offset)
	query := `SELECT ` + supplierColumns + ` FROM suppliers WHERE ` + where +
		fmt.Sprintf(` ORDER BY name LIMIT $%d OFFSET $%d`, len(args)-1, len(args))
	rows, err := r.q.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list suppliers: %w", err)
	}
	defer rows.Close()
	var list []*entity.Supplier
	for rows.Next() {
		s, err := scanSupplier(rows)
		if err != nil {
			return nil, fmt.Errorf("scan supplier: %w", err)
		}
		list = append(list, s)
	}
	return list, rows.Err()
}

// Count total de proveedores que cumplen el filtro.
func (r *SupplierRepo) Count(ctx context.Context, f repository.SupplierFilter) (int, error) {
	where, args := supplierWhere(f)
	var n int
	if err := r.q.QueryRow(ctx, `SELECT COUNT(*) FROM suppliers WHERE `+where, args...).Scan(&n); err != nil {
		return 0, fmt.Errorf("count suppliers: %w", err)
	}
	return n, nil
}

// Update actualiza los datos del proveedor.
func (r *SupplierRepo) Update(ctx context.Context, s *entity.Supplier) error {
	query := `
		UPDATE suppliers SET code = $2, name = $3, email = $4, phone = $5, address = $6, city = $7, tax_id = $8,
			payment_terms = $9, credit_limit = $10, is_active = $11, notes = $12, updated_at = now()
		WHERE id = $1 AND deleted_at IS NULL`
	cmd, err := r.q.Exec(ctx, query, s.ID, s.Code, s.Name, s.Email, s.Phone, s.Address, s.City, s.TaxID,
		s.PaymentTerms, s.CreditLimit, s.IsActive, s.Notes)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.NewConflictError("Supplier code already exists")
		}
		return fmt.Errorf("update supplier: %w", err)
	}
	if cmd.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// SoftDelete marca el proveedor y libera su código; false si no existía.
func (r *SupplierRepo) SoftDelete(ctx context.Context, id string) (bool, error) {
	cmd, err := r.q.Exec(ctx, `
		UPDATE suppliers
		SET code = code || '_deleted_' || floor(extract(epoch FROM now()))::bigint,
			is_active = FALSE, deleted_at = now(), updated_at = now()
		WHERE id = $1 AND deleted_at IS NULL`, id)
	if err != nil {
		return false, fmt.Errorf("delete supplier: %w", err)
	}
	return cmd.RowsAffected() > 0, nil
}

// LastCode último código con el prefijo dado, incluidos los borrados.
func (r *SupplierRepo) LastCode(ctx context.Context, prefix string) (string, error) {
	var code string
	err := r.q.QueryRow(ctx, `
		SELECT split_part(code, '_deleted_', 1) AS base FROM suppliers
		WHERE code LIKE $1 || '%'
		ORDER BY base DESC LIMIT 1`, prefix).Scan(&code)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return "", nil
		}
		return "", fmt.Errorf("last supplier code: %w", err)
	}
	return code, nil
}
