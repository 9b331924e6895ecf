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

var _ repository.ProductRepository = (*ProductRepo)(nil)

// ProductRepo implementación del puerto ProductRepository sobre PostgreSQL (usable con pool o tx).
type ProductRepo struct {
	q Querier
}

// NewProductRepository construye el adaptador de persistencia para productos. Pasar pool o tx (Querier).
func NewProductRepository(q Querier) *ProductRepo {
	return &ProductRepo{q: q}
}

const productColumns = `p.id, p.sku, p.barcode, p.name, p.description, p.category_id, p.unit,
	p.cost_price, p.selling_price, p.min_stock, p.max_stock, p.reorder_point, p.tax_rate,
	p.discount_percentage, p.is_active, p.is_trackable, p.image_url, p.attributes,
	p.created_at, p.updated_at, p.deleted_at`

func productDest(p *entity.Product) []any {
	return []any{
		&p.ID, &p.SKU, &p.Barcode, &p.Name, &p.Description, &p.CategoryID, &p.Unit,
		&p.CostPrice, &p.SellingPrice, &p.MinStock, &p.MaxStock, &p.ReorderPoint, &p.TaxRate,
		&p.DiscountPercentage, &p.IsActive, &p.IsTrackable, &p.ImageURL, &p.Attributes,
		&p.CreatedAt, &p.UpdatedAt, &p.DeletedAt,
	}
}

func (r *ProductRepo) getOne(ctx context.Context, where string, arg any) (*entity.Product, error) {
	query := `SELECT ` + productColumns + ` FROM products p WHERE ` + where + ` AND p.deleted_at IS NULL`
	var p entity.Product
	if err := r.q.QueryRow(ctx, query, arg).Scan(productDest(&p)...); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get product: %w", err)
	}
	return &p, nil
}

// Create persiste un nuevo producto.
func (r *ProductRepo) Create(ctx context.Context, p *entity.Product) error {
	query := `
		INSERT INTO products (id, sku, barcode, name, description, category_id, unit, cost_price, selling_price,
			min_stock, max_stock, reorder_point, tax_rate, discount_percentage, is_active, is_trackable,
			image_url, attributes, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17,
			COALESCE($18::jsonb, '{}'::jsonb), $19, $20)`
	_, err := r.q.Exec(ctx, query,
		p.ID, p.SKU, p.Barcode, p.Name, p.Description, p.CategoryID, p.Unit, p.CostPrice, p.SellingPrice,
		p.MinStock, p.MaxStock, p.ReorderPoint, p.TaxRate, p.DiscountPercentage, p.IsActive, p.IsTrackable,
		p.ImageURL, nullableJSON(p.Attributes), p.CreatedAt, p.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.NewConflictError("Product with this SKU or barcode already exists")
		}
		if isForeignKeyViolation(err) {
			return domain.NewValidationError("Category not found", map[string]any{"categoryId": p.CategoryID})
		}
		return fmt.Errorf("insert product: %w", err)
	}
	return nil
}

// GetByID obtiene un producto vivo por ID; nil si no existe.
func (r *ProductRepo) GetByID(ctx context.Context, id string) (*entity.Product, error) {
	return r.getOne(ctx, "p.id = $1", id)
}

// GetBySKU obtiene un producto vivo por SKU.
func (r *ProductRepo) GetBySKU(ctx context.Context, sku string) (*entity.Product, error) {
	return r.getOne(ctx, "p.sku = $1", sku)
}

// GetByBarcode busca por el código del producto o de alguna de sus unidades vivas.
func (r *ProductRepo) GetByBarcode(ctx context.Context, barcode string) (*entity.Product, error) {
	return r.getOne(ctx, `(p.barcode = $1 OR EXISTS (
		SELECT 1 FROM product_units u
		WHERE u.product_id = p.id AND u.barcode = $1 AND u.deleted_at IS NULL))`, barcode)
}

// productWhere arma el WHERE compartido por List y Count.
func productWhere(f repository.ProductFilter) (string, []any) {
	conds := []string{"p.deleted_at IS NULL"}
	var args []any
	if f.Search != "" {
		args = append(args, "%"+f.Search+"%")
		n := len(args)
		conds = append(conds, fmt.Sprintf("(p.name ILIKE $%d OR p.sku ILIKE $%d OR p.barcode ILIKE $%d)", n, n, n))
	}
	if f.CategoryID != "" {
		args = append(args, f.CategoryID)
		conds = append(conds, fmt.Sprintf("p.category_id = $%d", len(args)))
	}
	if f.IsActive != nil {
		args = append(args, *f.IsActive)
		conds = append(conds, fmt.Sprintf("p.is_active = $%d", len(args)))
	}
	return strings.Join(conds, " AND "), args
}

// List lista productos con el stock agregado: total de todas las sucursales o solo de BranchID.
func (r *ProductRepo) List(ctx context.Context, f repository.ProductFilter) ([]*entity.ProductListItem, error) {
	where, args := productWhere(f)
	stockFilter := ""
	if f.BranchID != "" {
		args = append(args, f.BranchID)
		stockFilter = fmt.Sprintf("WHERE branch_id = $%d", len(args))
	}
	args = append(args, limitOrDefault(f.Limit), f.Offset)
	query := `
		SELECT ` + productColumns + `, COALESCE(c.name, ''),
			COALESCE(s.quantity, 0), COALESCE(s.quantity - s.reserved, 0)
		FROM products p
		LEFT JOIN categories c ON c.id = p.category_id
		LEFT JOIN (
			SELECT product_id, SUM(quantity) AS quantity, SUM(reserved_quantity) AS reserved
			FROM product_stocks ` + stockFilter + `
			GROUP BY product_id
		) s ON s.product_id = p.id
		WHERE ` + where + fmt.Sprintf(`
		ORDER BY p.name LIMIT $%d OFFSET $%d`, len(args)-1, len(args))

	rows, err := r.q.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list products: %w", err)
	}
	defer rows.Close()
	var list []*entity.ProductListItem
	for rows.Next() {
		var it entity.ProductListItem
		dest := append(productDest(&it.Product), &it.CategoryName, &it.StockQuantity, &it.AvailableQuantity)
		if err := rows.Scan(dest...); err != nil {
			return nil, fmt.Errorf("scan product: %w", err)
		}
		it.BranchID = f.BranchID
		list = append(list, &it)
	}
	return list, rows.Err()
}

// Count total de productos que cumplen el filtro (para paginación).
func (r *ProductRepo) Count(ctx context.Context, f repository.ProductFilter) (int, error) {
	where, args := productWhere(f)
	var n int
	if err := r.q.QueryRow(ctx, `SELECT COUNT(*) FROM products p WHERE `+where, args...).Scan(&n); err != nil {
		return 0, fmt.Errorf("count products: %w", err)
	}
	return n, nil
}

// Search búsqueda rápida de POS por nombre, SKU o código de barras (productos activos).
func (r *ProductRepo) Search(ctx context.Context, q string, limit int) ([]*entity.Product, error) {
	query := `SELECT ` + productColumns + ` FROM products p
		WHERE p.deleted_at IS NULL AND p.is_active = TRUE
		  AND (p.name ILIKE $1 OR p.sku ILIKE $1 OR p.barcode = $2)
		ORDER BY (p.sku = $2 OR p.barcode = $2) DESC, p.name
		LIMIT $3`
	rows, err := r.q.Query(ctx, query, "%"+q+"%", q, limitOrDefault(limit))
	if err != nil {
		return nil, fmt.Errorf("search products: %w", err)
	}
	defer rows.Close()
	var list []*entity.Product
	for rows.Next() {
		var p entity.Product
		if err := rows.Scan(productDest(&p)...); err != nil {
			return nil, fmt.Errorf("scan product: %w", err)
		}
		list = append(list, &p)
	}
	return list, rows.Err()
}

// ListLowStock filas (producto, sucursal) cuyo disponible está en o bajo el punto de reorden.
func (r *ProductRepo) ListLowStock(ctx context.Context, branchID string) ([]*entity.ProductListItem, error) {
	query := `
		SELECT ` + productColumns + `, COALESCE(c.name, ''), ps.branch_id,
			ps.quantity, ps.quantity - ps.reserved_quantity
		FROM products p
		JOIN product_stocks ps ON ps.product_id = p.id
		LEFT JOIN categories c ON c.id = p.category_id
		WHERE p.deleted_at IS NULL AND p.is_trackable = TRUE
		  AND ps.quantity - ps.reserved_quantity <= p.reorder_point
		  AND ($1 = '' OR ps.branch_id::text = $1)
		ORDER BY ps.quantity - ps.reserved_quantity ASC`
	rows, err := r.q.Query(ctx, query, branchID)
	if err != nil {
		return nil, fmt.Errorf("list low stock: %w", err)
	}
	defer rows.Close()
	var list []*entity.ProductListItem
	for rows.Next() {
		var it entity.ProductListItem
		dest := append(productDest(&it.Product), &it.CategoryName, &it.BranchID, &it.StockQuantity, &it.AvailableQuantity)
		if err := rows.Scan(dest...); err != nil {
			return nil, fmt.Errorf("scan low stock: %w", err)
		}
		list = append(list, &it)
	}
	return list, rows.Err()
}

// Update actualiza un producto existente. El costo promedio se cambia solo con UpdateCost.
func (r *ProductRepo) Update(ctx context.Context, p *entity.Product) error {
	query := `
		UPDATE products SET sku = $2, barcode = $3, name = $4, description = $5, category_id = $6, unit = $7,
			selling_price = $8, min_stock = $9, max_stock = $10, reorder_point = $11, tax_rate = $12,
			discount_percentage = $13, is_active = $14, is_trackable = $15, image_url = $16,
			attributes = COALESCE($17::jsonb, attributes), updated_at = now()
		WHERE id = $1 AND deleted_at IS NULL`
	_, err := r.q.Exec(ctx, query,
		p.ID, p.SKU, p.Barcode, p.Name, p.Description, p.CategoryID, p.Unit,
		p.SellingPrice, p.MinStock, p.MaxStock, p.ReorderPoint, p.TaxRate,
		p.DiscountPercentage, p.IsActive, p.IsTrackable, p.ImageURL, nullableJSON(p.Attributes),
	)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.NewConflictError("Product with this SKU or barcode already exists")
		}
		return fmt.Errorf("update product: %w", err)
	}
	return nil
}

// UpdateCost actualiza solo el costo del producto (usado por recepciones).
func (r *ProductRepo) UpdateCost(ctx context.Context, productID string, cost decimal.Decimal) error {
	_, err := r.q.Exec(ctx,
		`UPDATE products SET cost_price = $2, updated_at = now() WHERE id = $1`,
		productID, cost,
	)
	if err != nil {
		return fmt.Errorf("update product cost: %w", err)
	}
	return nil
}

// SoftDelete marca el producto, sus unidades y sus precios como eliminados.
func (r *ProductRepo) SoftDelete(ctx context.Context, id string) (bool, error) {
	cmd, err := r.q.Exec(ctx,
		`UPDATE products SET deleted_at = now(), is_active = FALSE, updated_at = now() WHERE id = $1 AND deleted_at IS NULL`, id)
	if err != nil {
		return false, fmt.Errorf("delete product: %w", err)
	}
	if cmd.RowsAffected() == 0 {
		return false, nil
	}
	if _, err := r.q.Exec(ctx,
		`UPDATE product_units SET deleted_at = now() WHERE product_id = $1 AND deleted_at IS NULL`, id); err != nil {
		return false, fmt.Errorf("delete product units: %w", err)
	}
	if _, err := r.q.Exec(ctx,
		`UPDATE product_branch_prices SET deleted_at = now() WHERE product_id = $1 AND deleted_at IS NULL`, id); err != nil {
		return false, fmt.Errorf("delete product prices: %w", err)
	}
	return true, nil
}

// nullableJSON convierte un json vacío en NULL para que aplique el COALESCE del SQL.
func nullableJSON(b []byte) any {
	if len(b) == 0 {
		return nil
	}
	return string(b)
}
