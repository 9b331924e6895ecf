package repository

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
)

// SalesMetrics totales de ventas completadas en un rango.
type SalesMetrics struct {
	Revenue      decimal.Decimal
	Transactions int
}

// TopProductResult producto más vendido en el período.
type TopProductResult struct {
	ProductID    string
	SKU          string
	ProductName  string
	QuantitySold decimal.Decimal
	TotalRevenue decimal.Decimal
}

// BranchSalesResult ventas agrupadas por sucursal.
type BranchSalesResult struct {
	BranchID     string
	BranchName   string
	Transactions int
	Revenue      decimal.Decimal
}

// AnalyticsRepository consultas read-only del dashboard. branchID vacío = todas las sucursales.
type AnalyticsRepository interface {
	GetSalesMetrics(ctx context.Context, branchID string, from, to time.Time) (SalesMetrics, error)
	GetSalesByBranch(ctx context.Context, from, to time.Time) ([]BranchSalesResult, error)
	GetTopProducts(ctx context.Context, branchID string, from, to time.Time, limit int) ([]TopProductResult, error)
	CountProducts(ctx context.Context) (int, error)
	CountLowStock(ctx context.Context, branchID string) (int, error)
}
