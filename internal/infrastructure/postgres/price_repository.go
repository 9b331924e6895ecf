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

var _ repository.PriceRepository = (*PriceRepo)(nil)

// PriceRepo implementación de PriceRepository sobre product_branch_prices.
type PriceRepo struct {
	q Querier
}

// NewPriceRepository construye el adaptador de precios. Pasar pool o tx (Querier).
func NewPriceRepository(q Querier) *PriceRepo {
	return &PriceRepo{q: q}
}

// Upsert escribe la fila de la tripleta (producto, sucursal, unidad). Repetir la misma
// llamada deja una sola fila con los mismos valores.
func (r *PriceRepo) Upsert(ctx context.Context, p *entity.ProductBranchPrice) (*entity.ProductBranchPrice, error) {
	query := `
		INSERT INTO product_branch_prices (id, product_id, branch_id, product_unit_id, cost_price, selling_price,
			wholesale_price, member_price, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, now(), now())
		ON CONFLICT (product_id, branch_id, product_unit_id) DO UPDATE SET
			cost_price = EXCLUDED.cost_price,
			selling_price = EXCLUDED.selling_price,
			wholesale_price = EXCLUDED.wholesale_price,
			member_price = EXCLUDED.member_price,
			deleted_at = NULL,
			updated_at = now()
		RETURNING id, product_id, branch_id, product_unit_id, cost_price, selling_price,
			wholesale_price, member_price, created_at, updated_at`
	var out entity.ProductBranchPrice
	err := r.q.QueryRow(ctx, query,
		p.ID, p.ProductID, p.BranchID, p.ProductUnitID, p.CostPrice, p.SellingPrice, p.WholesalePrice, p.MemberPrice,
	).Scan(&out.ID, &out.ProductID, &out.BranchID, &out.ProductUnitID, &out.CostPrice, &out.SellingPrice,
		&out.WholesalePrice, &out.MemberPrice, &out.CreatedAt, &out.UpdatedAt)
	if err != nil {
		if isForeignKeyViolation(err) {
			return nil, domain.NewNotFoundError("Product, branch or unit not found")
		}
		if isCheckViolation(err) {
			return nil, domain.NewValidationError("Valid selling price is required", nil)
		}
		return nil, fmt.Errorf("upsert price: %w", err)
	}
	return &out, nil
}

// SeedForUnit crea una fila por sucursal activa con los precios dados; las existentes no se tocan.
func (r *PriceRepo) SeedForUnit(ctx context.Context, productID, unitID string, cost, selling decimal.Decimal) (int, error) {
	cmd, err := r.q.Exec(ctx, `
		INSERT INTO product_branch_prices (product_id, branch_id, product_unit_id, cost_price, selling_price,
			created_at, updated_at)
		SELECT $1, b.id, $2, $3, $4, now(), now()
		FROM branches b
		WHERE b.is_active = TRUE AND b.deleted_at IS NULL
		ON CONFLICT (product_id, branch_id, product_unit_id) DO NOTHING`,
		productID, unitID, cost, selling)
	if err != nil {
		return 0, fmt.Errorf("seed unit prices: %w", err)
	}
	return int(cmd.RowsAffected()), nil
}

const priceSelect = `
	SELECT pbp.id, pbp.product_id, pbp.branch_id, pbp.product_unit_id, pbp.cost_price, pbp.selling_price,
		pbp.wholesale_price, pbp.member_price, pbp.created_at, pbp.updated_at,
		b.code, b.name, u.unit_name, u.conversion_value
	FROM product_branch_prices pbp
	JOIN branches b ON b.id = pbp.branch_id AND b.deleted_at IS NULL
	JOIN product_units u ON u.id = pbp.product_unit_id AND u.deleted_at IS NULL
	WHERE pbp.deleted_at IS NULL`

func scanPrice(row pgx.Row) (*entity.ProductBranchPrice, error) {
	var p entity.ProductBranchPrice
	err := row.Scan(&p.ID, &p.ProductID, &p.BranchID, &p.ProductUnitID, &p.CostPrice, &p.SellingPrice,
		&p.WholesalePrice, &p.MemberPrice, &p.CreatedAt, &p.UpdatedAt,
		&p.BranchCode, &p.BranchName, &p.UnitName, &p.ConversionValue)
	if err != nil {
		return nil, err
	}
	return &p, nil
}

// Get precio vivo de la tripleta; nil si no existe.
func (r *PriceRepo) Get(ctx context.Context, productID, branchID, unitID string) (*entity.ProductBranchPrice, error) {
	query := priceSelect + ` AND pbp.product_id = $1 AND pbp.branch_id = $2 AND pbp.product_unit_id = $3`
	p, err := scanPrice(r.q.QueryRow(ctx, query, productID, branchID, unitID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get price: %w", err)
	}
	return p, nil
}

// ListByProduct matriz de precios del producto, filtrable por unidad y sucursal.
func (r *PriceRepo) ListByProduct(ctx context.Context, productID string, f repository.PriceFilter) ([]*entity.ProductBranchPrice, error) {
	query := priceSelect + `
		AND pbp.product_id = $1
		AND ($2 = '' OR pbp.product_unit_id::text = $2)
		AND ($3 = '' OR pbp.branch_id::text = $3)
		ORDER BY b.code, u.conversion_value`
	rows, err := r.q.Query(ctx, query, productID, f.UnitID, f.BranchID)
	if err != nil {
		return nil, fmt.Errorf("list prices: %w", err)
	}
	defer rows.Close()
	var list []*entity.ProductBranchPrice
	for rows.Next() {
		p, err := scanPrice(rows)
		if err != nil {
			return nil, fmt.Errorf("scan price: %w", err)
		}
		list = append(list, p)
	}
	return list, rows.Err()
}
