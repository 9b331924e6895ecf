package postgres

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"

	"github.com/ArtEnginer/POS/internal/domain"
	"github.com/ArtEnginer/POS/internal/domain/entity"
	"github.com/ArtEnginer/POS/internal/domain/repository"
)

var (
	_ repository.PurchaseReturnRepository = (*PurchaseReturnRepo)(nil)
	_ repository.SalesReturnRepository    = (*SalesReturnRepo)(nil)
)

// returnWhere arma el WHERE común; col es la columna del documento de origen.
func returnWhere(alias, col string, f repository.ReturnFilter) (string, []any) {
	conds := []string{"TRUE"}
	var args []any
	add := func(cond string, v any) {
		args = append(args, v)
		conds = append(conds, fmt.Sprintf(cond, len(args)))
	}
	if f.BranchID != "" {
		add(alias+".branch_id = $%d", f.BranchID)
	}
	if f.DocumentID != "" {
		add(alias+"."+col+" = $%d", f.DocumentID)
	}
	if f.Status != "" {
		add(alias+".status = $%d", f.Status)
	}
	return strings.Join(conds, " AND "), args
}

// returnedByItem suma lo devuelto por línea de origen en devoluciones no anuladas.
func returnedByItem(ctx context.Context, q Querier, query, docID string) (map[string]decimal.Decimal, error) {
	rows, err := q.Query(ctx, query, docID)
	if err != nil {
		return nil, fmt.Errorf("returned quantities: %w", err)
	}
	defer rows.Close()
	out := map[string]decimal.Decimal{}
	for rows.Next() {
		var id string
		var qty decimal.Decimal
		if err := rows.Scan(&id, &qty); err != nil {
			return nil, fmt.Errorf("scan returned quantity: %w", err)
		}
		out[id] = qty
	}
	return out, rows.Err()
}

// ── Devoluciones a proveedor ────────────────────────────────────────────────

// PurchaseReturnRepo persistencia de devoluciones a proveedor.
type PurchaseReturnRepo struct {
	q Querier
}

// NewPurchaseReturnRepository construye el adaptador. Pasar pool o tx (Querier).
func NewPurchaseReturnRepository(q Querier) *PurchaseReturnRepo {
	return &PurchaseReturnRepo{q: q}
}

const purchaseReturnSelect = `
	SELECT pr.id, pr.return_number, pr.receiving_id, pr.branch_id, pr.supplier_id, pr.reason, pr.notes, pr.status,
		pr.total_amount, pr.returned_by, pr.return_date, pr.created_at, pr.updated_at,
		COALESCE(r.receiving_number, ''), COALESCE(b.name, ''), COALESCE(s.name, r.supplier_name, '')
	FROM purchase_returns pr
	LEFT JOIN receivings r ON r.id = pr.receiving_id
	LEFT JOIN branches   b ON b.id = pr.branch_id
	LEFT JOIN suppliers  s ON s.id = pr.supplier_id`

func scanPurchaseReturn(row pgx.Row) (*entity.PurchaseReturn, error) {
	var pr entity.PurchaseReturn
	err := row.Scan(&pr.ID, &pr.ReturnNumber, &pr.ReceivingID, &pr.BranchID, &pr.SupplierID, &pr.Reason, &pr.Notes,
		&pr.Status, &pr.TotalAmount, &pr.ReturnedBy, &pr.ReturnDate, &pr.CreatedAt, &pr.UpdatedAt,
		&pr.ReceivingNumber, &pr.BranchName, &pr.SupplierName)
	if err != nil {
		return nil, err
	}
	return &pr, nil
}

// Create persiste la cabecera de la devolución.
func (r *PurchaseReturnRepo) Create(ctx context.Context, pr *entity.PurchaseReturn) error {
	_, err := r.q.Exec(ctx, `
		INSERT INTO purchase_returns (id, return_number, receiving_id, branch_id, supplier_id, reason, notes, status,
			total_amount, returned_by, return_date, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)`,
		pr.ID, pr.ReturnNumber, pr.ReceivingID, pr.BranchID, pr.SupplierID, pr.Reason, pr.Notes, pr.Status,
		pr.TotalAmount, pr.ReturnedBy, pr.ReturnDate, pr.CreatedAt, pr.UpdatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.NewConflictError("Return number already exists")
		}
		return fmt.Errorf("insert purchase return: %w", err)
	}
	return nil
}

// CreateItem persiste una línea devuelta.
func (r *PurchaseReturnRepo) CreateItem(ctx context.Context, it *entity.PurchaseReturnItem) error {
	_, err := r.q.Exec(ctx, `
		INSERT INTO purchase_return_items (id, return_id, receiving_item_id, product_id, product_unit_id, unit_name,
			quantity, base_quantity, cost_price, subtotal)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`,
		it.ID, it.ReturnID, it.ReceivingItemID, it.ProductID, it.ProductUnitID, it.UnitName,
		it.Quantity, it.BaseQuantity, it.CostPrice, it.Subtotal)
	if err != nil {
		return fmt.Errorf("insert purchase return item: %w", err)
	}
	return nil
}

func (r *PurchaseReturnRepo) get(ctx context.Context, query, id string) (*entity.PurchaseReturn, error) {
	pr, err := scanPurchaseReturn(r.q.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get purchase return: %w", err)
	}
	rows, err := r.q.Query(ctx, `
		SELECT id, return_id, receiving_item_id, product_id, product_unit_id, unit_name, quantity, base_quantity,
			cost_price, subtotal
		FROM purchase_return_items WHERE return_id = $1`, id)
	if err != nil {
		return nil, fmt.Errorf("list purchase return items: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var it entity.PurchaseReturnItem
		if err := rows.Scan(&it.ID, &it.ReturnID, &it.ReceivingItemID, &it.ProductID, &it.ProductUnitID,
			&it.UnitName, &it.Quantity, &it.BaseQuantity, &it.CostPrice, &it.Subtotal); err != nil {
			return nil, fmt.Errorf("scan purchase return item: %w", err)
		}
		pr.Items = append(pr.Items, &it)
	}
	return pr, rows.Err()
}

// GetByID devolución con sus líneas; nil si no existe.
func (r *PurchaseReturnRepo) GetByID(ctx context.Context, id string) (*entity.PurchaseReturn, error) {
	return r.get(ctx, purchaseReturnSelect+` WHERE pr.id = $1`, id)
}

// GetForUpdate bloquea la cabecera y carga las líneas.
func (r *PurchaseReturnRepo) GetForUpdate(ctx context.Context, id string) (*entity.PurchaseReturn, error) {
	return r.get(ctx, purchaseReturnSelect+` WHERE pr.id = $1 FOR UPDATE OF pr`, id)
}

// List devoluciones (sin líneas) más recientes primero.
func (r *PurchaseReturnRepo) List(ctx context.Context, f repository.ReturnFilter) ([]*entity.PurchaseReturn, error) {
	where, args := returnWhere("pr", "receiving_id", f)
	args = append(args, limitOrDefault(f.Limit), f.Offset)
	query := purchaseReturnSelect + ` WHERE ` + where +
		fmt.Sprintf(` ORDER BY pr.return_date DESC LIMIT $%d OFFSET $%d`, len(args)-1, len(args))
	rows, err := r.q.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list purchase returns: %w", err)
	}
	defer rows.Close()
	var list []*entity.PurchaseReturn
	for rows.Next() {
		pr, err := scanPurchaseReturn(rows)
		if err != nil {
			return nil, fmt.Errorf("scan purchase return: %w", err)
		}
		list = append(list, pr)
	}
	return list, rows.Err()
}

// Count total de devoluciones que cumplen el filtro.
func (r *PurchaseReturnRepo) Count(ctx context.Context, f repository.ReturnFilter) (int, error) {
	where, args := returnWhere("pr", "receiving_id", f)
	var n int
	if err := r.q.QueryRow(ctx, `SELECT COUNT(*) FROM purchase_returns pr WHERE `+where, args...).Scan(&n); err != nil {
		return 0, fmt.Errorf("count purchase returns: %w", err)
	}
	return n, nil
}

// UpdateStatus cambia el estado de la devolución.
func (r *PurchaseReturnRepo) UpdateStatus(ctx context.Context, id, status string) error {
	cmd, err := r.q.Exec(ctx, `UPDATE purchase_returns SET status = $2, updated_at = now() WHERE id = $1`, id, status)
	if err != nil {
		return fmt.Errorf("update purchase return status: %w", err)
	}
	if cmd.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// ReturnedByItem cantidad devuelta por receiving_item_id.
func (r *PurchaseReturnRepo) ReturnedByItem(ctx context.Context, receivingID string) (map[string]decimal.Decimal, error) {
	return returnedByItem(ctx, r.q, `
		SELECT i.receiving_item_id, SUM(i.quantity)
		FROM purchase_return_items i
		JOIN purchase_returns pr ON pr.id = i.return_id
		WHERE pr.receiving_id = $1 AND pr.status <> 'cancelled'
		GROUP BY i.receiving_item_id`, receivingID)
}

// ── Devoluciones de cliente ─────────────────────────────────────────────────

// SalesReturnRepo persistencia de devoluciones de cliente.
type SalesReturnRepo struct {
	q Querier
}

// NewSalesReturnRepository construye el adaptador. Pasar pool o tx (Querier).
func NewSalesReturnRepository(q Querier) *SalesReturnRepo {
	return &SalesReturnRepo{q: q}
}

const salesReturnSelect = `
	SELECT sr.id, sr.return_number, sr.sale_id, sr.branch_id, sr.customer_id, sr.reason, sr.notes, sr.refund_method,
		sr.total_refund, sr.status, sr.processed_by, sr.return_date, sr.created_at, sr.updated_at,
		COALESCE(s.sale_number, ''), COALESCE(b.name, '')
	FROM sales_returns sr
	LEFT JOIN sales    s ON s.id = sr.sale_id
	LEFT JOIN branches b ON b.id = sr.branch_id`

func scanSalesReturn(row pgx.Row) (*entity.SalesReturn, error) {
	var sr entity.SalesReturn
	err := row.Scan(&sr.ID, &sr.ReturnNumber, &sr.SaleID, &sr.BranchID, &sr.CustomerID, &sr.Reason, &sr.Notes,
		&sr.RefundMethod, &sr.TotalRefund, &sr.Status, &sr.ProcessedBy, &sr.ReturnDate, &sr.CreatedAt, &sr.UpdatedAt,
		&sr.SaleNumber, &sr.BranchName)
	if err != nil {
		return nil, err
	}
	return &sr, nil
}

// Create persiste la cabecera de la devolución.
func (r *SalesReturnRepo) Create(ctx context.Context, sr *entity.SalesReturn) error {
	_, err := r.q.Exec(ctx, `
		INSERT INTO sales_returns (id, return_number, sale_id, branch_id, customer_id, reason, notes, refund_method,
			total_refund, status, processed_by, return_date, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)`,
		sr.ID, sr.ReturnNumber, sr.SaleID, sr.BranchID, sr.CustomerID, sr.Reason, sr.Notes, sr.RefundMethod,
		sr.TotalRefund, sr.Status, sr.ProcessedBy, sr.ReturnDate, sr.CreatedAt, sr.UpdatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.NewConflictError("Return number already exists")
		}
		return fmt.Errorf("insert sales return: %w", err)
	}
	return nil
}

// CreateItem persiste una línea devuelta.
func (r *SalesReturnRepo) CreateItem(ctx context.Context, it *entity.SalesReturnItem) error {
	_, err := r.q.Exec(ctx, `
		INSERT INTO sales_return_items (id, return_id, sale_item_id, product_id, product_unit_id, product_name,
			unit_name, quantity, base_quantity, unit_price, subtotal)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`,
		it.ID, it.ReturnID, it.SaleItemID, it.ProductID, it.ProductUnitID, it.ProductName,
		it.UnitName, it.Quantity, it.BaseQuantity, it.UnitPrice, it.Subtotal)
	if err != nil {
		return fmt.Errorf("insert sales return item: %w", err)
	}
	return nil
}

func (r *SalesReturnRepo) get(ctx context.Context, query, id string) (*entity.SalesReturn, error) {
	sr, err := scanSalesReturn(r.q.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get sales return: %w", err)
	}
	rows, err := r.q.Query(ctx, `
		SELECT id, return_id, sale_item_id, product_id, product_unit_id, product_name, unit_name, quantity,
			base_quantity, unit_price, subtotal
		FROM sales_return_items WHERE return_id = $1 ORDER BY product_name`, id)
	if err != nil {
		return nil, fmt.Errorf("list sales return items: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var it entity.SalesReturnItem
		if err := rows.Scan(&it.ID, &it.ReturnID, &it.SaleItemID, &it.ProductID, &it.ProductUnitID,
			&it.ProductName, &it.UnitName, &it.Quantity, &it.BaseQuantity, &it.UnitPrice, &it.Subtotal); err != nil {
			return nil, fmt.Errorf("scan sales return item: %w", err)
		}
		sr.Items = append(sr.Items, &it)
	}
	return sr, rows.Err()
}

// GetByID devolución con sus líneas; nil si no existe.
func (r *SalesReturnRepo) GetByID(ctx context.Context, id string) (*entity.SalesReturn, error) {
	return r.get(ctx, salesReturnSelect+` WHERE sr.id = $1`, id)
}

// GetForUpdate bloquea la cabecera y carga las líneas.
func (r *SalesReturnRepo) GetForUpdate(ctx context.Context, id string) (*entity.SalesReturn, error) {
	return r.get(ctx, salesReturnSelect+` WHERE sr.id = $1 FOR UPDATE OF sr`, id)
}

// List devoluciones (sin líneas) más recientes primero.
func (r *SalesReturnRepo) List(ctx context.Context, f repository.ReturnFilter) ([]*entity.SalesReturn, error) {
	where, args := returnWhere("sr", "sale_id", f)
	args = append(args, limitOrDefault(f.Limit), f.Offset)
	query := salesReturnSelect + ` WHERE ` + where +
		fmt.Sprintf(` ORDER BY sr.return_date DESC LIMIT $%d OFFSET $%d`, len(args)-1, len(args))
	rows, err := r.q.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list sales returns: %w", err)
	}
	defer rows.Close()
	var list []*entity.SalesReturn
	for rows.Next() {
		sr, err := scanSalesReturn(rows)
		if err != nil {
			return nil, fmt.Errorf("scan sales return: %w", err)
		}
		list = append(list, sr)
	}
	return list, rows.Err()
}

// Count total de devoluciones que cumplen el filtro.
func (r *SalesReturnRepo) Count(ctx context.Context, f repository.ReturnFilter) (int, error) {
	where, args := returnWhere("sr", "sale_id", f)
	var n int
	if err := r.q.QueryRow(ctx, `SELECT COUNT(*) FROM sales_returns sr WHERE `+where, args...).Scan(&n); err != nil {
		return 0, fmt.Errorf("count sales returns: %w", err)
	}
	return n, nil
}

// UpdateStatus cambia el estado de la devolución.
func (r *SalesReturnRepo) UpdateStatus(ctx context.Context, id, status string) error {
	cmd, err := r.q.Exec(ctx, `UPDATE sales_returns SET status = $2, updated_at = now() WHERE id = $1`, id, status)
	if err != nil {
		return fmt.Errorf("update sales return status: %w", err)
	}
	if cmd.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// ReturnedByItem cantidad devuelta por sale_item_id.
func (r *SalesReturnRepo) ReturnedByItem(ctx context.Context, saleID string) (map[string]decimal.Decimal, error) {
	return returnedByItem(ctx, r.q, `
		SELECT i.sale_item_id, SUM(i.quantity)
		FROM sales_return_items i
		JOIN sales_returns sr ON sr.id = i.return_id
		WHERE sr.sale_id = $1 AND sr.status <> 'cancelled'
		GROUP BY i.sale_item_id`, saleID)
}
