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

var _ repository.SaleRepository = (*SaleRepo)(nil)

// SaleRepo persistencia de ventas y sus líneas (usable con pool o tx).
type SaleRepo struct {
	q Querier
}

// NewSaleRepository construye el adaptador. Pasar pool o tx (Querier).
func NewSaleRepository(q Querier) *SaleRepo {
	return &SaleRepo{q: q}
}

const saleSelect = `
	SELECT s.id, s.sale_number, s.branch_id, s.customer_id, s.cashier_id, s.subtotal, s.discount_amount,
		s.tax_amount, s.total_amount, s.paid_amount, s.change_amount, s.payment_method, s.payment_reference,
		s.status, s.notes, s.sale_date, s.created_at, s.updated_at,
		COALESCE(b.name, ''), COALESCE(c.name, ''), COALESCE(u.full_name, '')
	FROM sales s
	LEFT JOIN branches  b ON b.id = s.branch_id
	LEFT JOIN customers c ON c.id = s.customer_id
	LEFT JOIN users     u ON u.id = s.cashier_id`

func scanSale(row pgx.Row) (*entity.Sale, error) {
	var s entity.Sale
	err := row.Scan(&s.ID, &s.SaleNumber, &s.BranchID, &s.CustomerID, &s.CashierID, &s.Subtotal, &s.DiscountAmount,
		&s.TaxAmount, &s.TotalAmount, &s.PaidAmount, &s.ChangeAmount, &s.PaymentMethod, &s.PaymentReference,
		&s.Status, &s.Notes, &s.SaleDate, &s.CreatedAt, &s.UpdatedAt,
		&s.BranchName, &s.CustomerName, &s.CashierName)
	if err != nil {
		return nil, err
	}
	return &s, nil
}

// Create persiste la cabecera de la venta.
func (r *SaleRepo) Create(ctx context.Context, s *entity.Sale) error {
	query := `
		INSERT INTO sales (id, sale_number, branch_id, customer_id, cashier_id, subtotal, discount_amount, tax_amount,
			total_amount, paid_amount, change_amount, payment_method, payment_reference, status, notes, sale_date,
			created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18)`
	_, err := r.q.Exec(ctx, query,
		s.ID, s.SaleNumber, s.BranchID, s.CustomerID, s.CashierID, s.Subtotal, s.DiscountAmount, s.TaxAmount,
		s.TotalAmount, s.PaidAmount, s.ChangeAmount, s.PaymentMethod, s.PaymentReference, s.Status, s.Notes, s.SaleDate,
		s.CreatedAt, s.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.NewConflictError("Sale number already exists")
		}
		return fmt.Errorf("insert sale: %w", err)
	}
	return nil
}

// CreateItem persiste una línea de venta.
func (r *SaleRepo) CreateItem(ctx context.Context, it *entity.SaleItem) error {
	query := `
		INSERT INTO sale_items (id, sale_id, product_id, product_unit_id, product_name, sku, unit_name, quantity,
			base_quantity, unit_price, discount_amount, tax_amount, subtotal, total)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)`
	_, err := r.q.Exec(ctx, query,
		it.ID, it.SaleID, it.ProductID, it.ProductUnitID, it.ProductName, it.SKU, it.UnitName, it.Quantity,
		it.BaseQuantity, it.UnitPrice, it.DiscountAmount, it.TaxAmount, it.Subtotal, it.Total,
	)
	if err != nil {
		return fmt.Errorf("insert sale item: %w", err)
	}
	return nil
}

// GetByID obtiene la venta con sus líneas; nil si no existe.
func (r *SaleRepo) GetByID(ctx context.Context, id string) (*entity.Sale, error) {
	s, err := scanSale(r.q.QueryRow(ctx, saleSelect+` WHERE s.id = $1`, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get sale: %w", err)
	}
	items, err := r.listItems(ctx, id)
	if err != nil {
		return nil, err
	}
	s.Items = items
	return s, nil
}

// GetForUpdate bloquea la cabecera y carga las líneas.
func (r *SaleRepo) GetForUpdate(ctx context.Context, id string) (*entity.Sale, error) {
	s, err := scanSale(r.q.QueryRow(ctx, saleSelect+` WHERE s.id = $1 FOR UPDATE OF s`, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get sale for update: %w", err)
	}
	items, err := r.listItems(ctx, id)
	if err != nil {
		return nil, err
	}
	s.Items = items
	return s, nil
}

func (r *SaleRepo) listItems(ctx context.Context, saleID string) ([]*entity.SaleItem, error) {
	rows, err := r.q.Query(ctx, `
		SELECT id, sale_id, product_id, product_unit_id, product_name, sku, unit_name, quantity, base_quantity,
			unit_price, discount_amount, tax_amount, subtotal, total
		FROM sale_items WHERE sale_id = $1 ORDER BY product_name`, saleID)
	if err != nil {
		return nil, fmt.Errorf("list sale items: %w", err)
	}
	defer rows.Close()
	var items []*entity.SaleItem
	for rows.Next() {
		var it entity.SaleItem
		if err := rows.Scan(&it.ID, &it.SaleID, &it.ProductID, &it.ProductUnitID, &it.ProductName, &it.SKU,
			&it.UnitName, &it.Quantity, &it.BaseQuantity, &it.UnitPrice, &it.DiscountAmount, &it.TaxAmount,
			&it.Subtotal, &it.Total); err != nil {
			return nil, fmt.Errorf("scan sale item: %w", err)
		}
		items = append(items, &it)
	}
	return items, rows.Err()
}

func saleWhere(f repository.SaleFilter) (string, []any) {
	conds := []string{"TRUE"}
	var args []any
	add := func(cond string, v any) {
		args = append(args, v)
		conds = append(conds, fmt.Sprintf(cond, len(args)))
	}
	if f.BranchID != "" {
		add("s.branch_id = $%d", f.BranchID)
	}
	if f.CashierID != "" {
		add("s.cashier_id = $%d", f.CashierID)
	}
	if f.Status != "" {
		add("s.status = $%d", f.Status)
	}
	if f.From != nil {
		add("s.sale_date >= $%d", *f.From)
	}
	if f.To != nil {
		add("s.sale_date < $%d", *f.To)
	}
	return strings.Join(conds, " AND "), args
}

// List ventas (sin líneas) más recientes primero.
func (r *SaleRepo) List(ctx context.Context, f repository.SaleFilter) ([]*entity.Sale, error) {
	where, args := saleWhere(f)
	args = append(args, limitOrDefault(f.Limit), f.Offset)
	query := saleSelect + ` WHERE ` + where +
		fmt.Sprintf(` ORDER BY s.sale_date DESC LIMIT $%d OFFSET $%d`, len(args)-1, len(args))
	rows, err := r.q.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list sales: %w", err)
	}
	defer rows.Close()
	var list []*entity.Sale
	for rows.Next() {
		s, err := scanSale(rows)
		if err != nil {
			return nil, fmt.Errorf("scan sale: %w", err)
		}
		list = append(list, s)
	}
	return list, rows.Err()
}

// Count total de ventas que cumplen el filtro.
func (r *SaleRepo) Count(ctx context.Context, f repository.SaleFilter) (int, error) {
	where, args := saleWhere(f)
	var n int
	if err := r.q.QueryRow(ctx, `SELECT COUNT(*) FROM sales s WHERE `+where, args...).Scan(&n); err != nil {
		return 0, fmt.Errorf("count sales: %w", err)
	}
	return n, nil
}

// UpdateStatus cambia el estado de la venta.
func (r *SaleRepo) UpdateStatus(ctx context.Context, id, status string) error {
	cmd, err := r.q.Exec(ctx, `UPDATE sales SET status = $2, updated_at = now() WHERE id = $1`, id, status)
	if err != nil {
		return fmt.Errorf("update sale status: %w", err)
	}
	if cmd.RowsAffected() == 0 {
		return domain.NewNotFoundError("Sale not found")
	}
	return nil
}
