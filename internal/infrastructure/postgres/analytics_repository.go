package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/ArtEnginer/POS/internal/domain/repository"
)

var _ repository.AnalyticsRepository = (*AnalyticsRepo)(nil)

// AnalyticsRepo consultas de solo lectura para el dashboard del POS.
type AnalyticsRepo struct {
	q Querier
}

// NewAnalyticsRepository construye el adaptador de analítica.
func NewAnalyticsRepository(q Querier) *AnalyticsRepo {
	return &AnalyticsRepo{q: q}
}

// GetSalesMetrics ingresos y número de ventas completadas del período.
// Usa COALESCE para devolver cero si no hay filas (período sin ventas).
func (r *AnalyticsRepo) GetSalesMetrics(ctx context.Context, branchID string, from, to time.Time) (repository.SalesMetrics, error) {
	const query = `
	SELECT
	    COALESCE(SUM(s.total_amount), 0) AS revenue,
	    COUNT(*)                         AS transactions
	FROM sales s
	WHERE s.status = 'completed'
	  AND s.sale_date >= $1 AND s.sale_date < $2
	  AND ($3 = '' OR s.branch_id::text = $3)`

	var m repository.SalesMetrics
	if err := r.q.QueryRow(ctx, query, from, to, branchID).Scan(&m.Revenue, &m.Transactions); err != nil {
		return m, fmt.Errorf("analytics.GetSalesMetrics: %w", err)
	}
	return m, nil
}

// GetSalesByBranch ingresos por sucursal; las sucursales sin ventas aparecen en cero.
func (r *AnalyticsRepo) GetSalesByBranch(ctx context.Context, from, to time.Time) ([]repository.BranchSalesResult, error) {
	const query = `
	SELECT
	    b.id::text,
	    b.name,
	    COUNT(s.id)                       AS transactions,
	    COALESCE(SUM(s.total_amount), 0)  AS revenue
	FROM branches b
	LEFT JOIN sales s ON s.branch_id = b.id
	     AND s.status = 'completed'
	     AND s.sale_date >= $1 AND s.sale_date < $2
	WHERE b.deleted_at IS NULL
	GROUP BY b.id, b.name
	ORDER BY revenue DESC`

	rows, err := r.q.Query(ctx, query, from, to)
	if err != nil {
		return nil, fmt.Errorf("analytics.GetSalesByBranch: %w", err)
	}
	defer rows.Close()

	var results []repository.BranchSalesResult
	for rows.Next() {
		var row repository.BranchSalesResult
		if err := rows.Scan(&row.BranchID, &row.BranchName, &row.Transactions, &row.Revenue); err != nil {
			return nil, fmt.Errorf("analytics.GetSalesByBranch scan: %w", err)
		}
		results = append(results, row)
	}
	return results, rows.Err()
}

// GetTopProducts los `limit` productos con más unidades base vendidas en el período.
func (r *AnalyticsRepo) GetTopProducts(ctx context.Context, branchID string, from, to time.Time, limit int) ([]repository.TopProductResult, error) {
	const query = `
	SELECT
	    si.product_id::text,
	    p.sku,
	    p.name,
	    SUM(si.base_quantity) AS quantity_sold,
	    SUM(si.total)         AS total_revenue
	FROM sale_items si
	JOIN sales    s ON s.id = si.sale_id
	JOIN products p ON p.id = si.product_id
	WHERE s.status = 'completed'
	  AND s.sale_date >= $1 AND s.sale_date < $2
	  AND ($3 = '' OR s.branch_id::text = $3)
	GROUP BY si.product_id, p.sku, p.name
	ORDER BY quantity_sold DESC
	LIMIT $4`

	rows, err := r.q.Query(ctx, query, from, to, branchID, limitOrDefault(limit))
	if err != nil {
		return nil, fmt.Errorf("analytics.GetTopProducts: %w", err)
	}
	defer rows.Close()

	var results []repository.TopProductResult
	for rows.Next() {
		var row repository.TopProductResult
		if err := rows.Scan(&row.ProductID, &row.SKU, &row.ProductName, &row.QuantitySold, &row.TotalRevenue); err != nil {
			return nil, fmt.Errorf("analytics.GetTopProducts scan: %w", err)
		}
		results = append(results, row)
	}
	return results, rows.Err()
}

// CountProducts productos vivos y activos.
func (r *AnalyticsRepo) CountProducts(ctx context.Context) (int, error) {
	var n int
	if err := r.q.QueryRow(ctx,
		`SELECT COUNT(*) FROM products WHERE deleted_at IS NULL AND is_active = TRUE`).Scan(&n); err != nil {
		return 0, fmt.Errorf("analytics.CountProducts: %w", err)
	}
	return n, nil
}

// CountLowStock productos cuyo stock está bajo el mínimo.
func (r *AnalyticsRepo) CountLowStock(ctx context.Context, branchID string) (int, error) {
	const query = `
	SELECT COUNT(DISTINCT ps.product_id)
	FROM product_stocks ps
	JOIN products p ON p.id = ps.product_id
	WHERE p.deleted_at IS NULL AND p.is_trackable = TRUE
	  AND ps.quantity < p.min_stock
	  AND ($1 = '' OR ps.branch_id::text = $1)`
	var n int
	if err := r.q.QueryRow(ctx, query, branchID).Scan(&n); err != nil {
		return 0, fmt.Errorf("analytics.CountLowStock: %w", err)
	}
	return n, nil
}
