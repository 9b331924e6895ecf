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

var _ repository.ReceivingRepository = (*ReceivingRepo)(nil)

// ReceivingRepo persistencia de recepciones de mercancía.
type ReceivingRepo struct {
	q Querier
}

// NewReceivingRepository construye el adaptador. Pasar pool o tx (Querier).
func NewReceivingRepository(q Querier) *ReceivingRepo {
	return &ReceivingRepo{q: q}
}

const receivingSelect = `
	SELECT r.id, r.receiving_number, r.branch_id, r.supplier_name, r.reference_number, r.received_by,
		r.total_cost, r.notes, r.received_at, r.created_at, COALESCE(b.name, '')
	FROM receivings r
	LEFT JOIN branches b ON b.id = r.branch_id`

func scanReceiving(row pgx.Row) (*entity.Receiving, error) {
	var rc entity.Receiving
	err := row.Scan(&rc.ID, &rc.ReceivingNumber, &rc.BranchID, &rc.SupplierName, &rc.ReferenceNumber,
		&rc.ReceivedBy, &rc.TotalCost, &rc.Notes, &rc.ReceivedAt, &rc.CreatedAt, &rc.BranchName)
	if err != nil {
		return nil, err
	}
	return &rc, nil
}

// Create persiste la cabecera de la recepción.
func (r *ReceivingRepo) Create(ctx context.Context, rc *entity.Receiving) error {
	_, err := r.q.Exec(ctx, `
		INSERT INTO receivings (id, receiving_number, branch_id, supplier_name, reference_number, received_by,
			total_cost, notes, received_at, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`,
		rc.ID, rc.ReceivingNumber, rc.BranchID, rc.SupplierName, rc.ReferenceNumber, rc.ReceivedBy,
		rc.TotalCost, rc.Notes, rc.ReceivedAt, rc.CreatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.NewConflictError("Receiving number already exists")
		}
		return fmt.Errorf("insert receiving: %w", err)
	}
	return nil
}

// CreateItem persiste una línea recibida.
func (r *ReceivingRepo) CreateItem(ctx context.Context, it *entity.ReceivingItem) error {
	_, err := r.q.Exec(ctx, `
		INSERT INTO receiving_items (id, receiving_id, product_id, product_unit_id, unit_name, quantity,
			base_quantity, cost_price, subtotal)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`,
		it.ID, it.ReceivingID, it.ProductID, it.ProductUnitID, it.UnitName, it.Quantity,
		it.BaseQuantity, it.CostPrice, it.Subtotal)
	if err != nil {
		return fmt.Errorf("insert receiving item: %w", err)
	}
	return nil
}

// GetByID recepción con sus líneas; nil si no existe.
func (r *ReceivingRepo) GetByID(ctx context.Context, id string) (*entity.Receiving, error) {
	return r.get(ctx, receivingSelect+` WHERE r.id = $1`, id)
}

// GetForUpdate bloquea la cabecera y carga las líneas.
func (r *ReceivingRepo) GetForUpdate(ctx context.Context, id string) (*entity.Receiving, error) {
	return r.get(ctx, receivingSelect+` WHERE r.id = $1 FOR UPDATE OF r`, id)
}

func (r *ReceivingRepo) get(ctx context.Context, query, id string) (*entity.Receiving, error) {
	rc, err := scanReceiving(r.q.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get receiving: %w", err)
	}
	rows, err := r.q.Query(ctx, `
		SELECT id, receiving_id, product_id, product_unit_id, unit_name, quantity, base_quantity, cost_price, subtotal
		FROM receiving_items WHERE receiving_id = $1`, id)
	if err != nil {
		return nil, fmt.Errorf("list receiving items: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var it entity.ReceivingItem
		if err := rows.Scan(&it.ID, &it.ReceivingID, &it.ProductID, &it.ProductUnitID, &it.UnitName,
			&it.Quantity, &it.BaseQuantity, &it.CostPrice, &it.Subtotal); err != nil {
			return nil, fmt.Errorf("scan receiving item: %w", err)
		}
		rc.Items = append(rc.Items, &it)
	}
	return rc, rows.Err()
}

// List recepciones más recientes primero; branchID vacío = todas.
func (r *ReceivingRepo) List(ctx context.Context, branchID string, limit, offset int) ([]*entity.Receiving, error) {
	rows, err := r.q.Query(ctx, receivingSelect+`
		WHERE ($1 = '' OR r.branch_id::text = $1)
		ORDER BY r.received_at DESC LIMIT $2 OFFSET $3`, branchID, limitOrDefault(limit), offset)
	if err != nil {
		return nil, fmt.Errorf("list receivings: %w", err)
	}
	defer rows.Close()
	var list []*entity.Receiving
	for rows.Next() {
		rc, err := scanReceiving(rows)
		if err != nil {
			return nil, fmt.Errorf("scan receiving: %w", err)
		}
		list = append(list, rc)
	}
	return list, rows.Err()
}
