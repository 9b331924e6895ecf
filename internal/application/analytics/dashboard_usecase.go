// Package analytics contiene los casos de uso de reportes de ventas y el dashboard del POS.
package analytics

import (
	"context"
	"fmt"
	"time"

	"github.com/ArtEnginer/POS/internal/application/dto"
	"github.com/ArtEnginer/POS/internal/domain/pricing"
	"github.com/ArtEnginer/POS/internal/domain/repository"
)

const dashboardTopProducts = 5 // productos en el widget del dashboard

// DashboardUseCase genera el resumen de ventas del día y del mes en curso.
//
// Fuente de datos: AnalyticsRepository (consultas read-only).
type DashboardUseCase struct {
	analyticsRepo repository.AnalyticsRepository
	now           func() time.Time
}

// NewDashboardUseCase construye el caso de uso.
func NewDashboardUseCase(analyticsRepo repository.AnalyticsRepository) *DashboardUseCase {
	return &DashboardUseCase{analyticsRepo: analyticsRepo, now: time.Now}
}

// GetSummary construye el DashboardSummaryDTO; branchID vacío suma todas las sucursales e incluye
// el desglose por sucursal.
//
// Consultas en paralelo:
//  1. GetSalesMetrics(hoy)
//  2. GetSalesMetrics(mes)
//  3. GetTopProducts(mes, top 5)
//  4. CountProducts / CountLowStock
//  5. GetSalesByBranch(mes), solo sin filtro de sucursal
func (uc *DashboardUseCase) GetSummary(ctx context.Context, branchID string) (*dto.DashboardSummaryDTO, error) {
	now := uc.now()

	// ── Rangos de fecha ────────────────────────────────────────────────────────
	todayStart := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	todayEnd := todayStart.Add(24 * time.Hour)
	monthStart := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, now.Location())

	// ── Goroutines para paralelizar las consultas ─────────────────────────────
	type metricsResult struct {
		m   repository.SalesMetrics
		err error
	}
	type topResult struct {
		rows []repository.TopProductResult
		err  error
	}
	type countResult struct {
		n   int
		err error
	}
	type branchResult struct {
		rows []repository.BranchSalesResult
		err  error
	}

	todayCh := make(chan metricsResult, 1)
	monthCh := make(chan metricsResult, 1)
	topCh := make(chan topResult, 1)
	productsCh := make(chan countResult, 1)
	lowCh := make(chan countResult, 1)
	branchCh := make(chan branchResult, 1)

	go func() {
		m, err := uc.analyticsRepo.GetSalesMetrics(ctx, branchID, todayStart, todayEnd)
		todayCh <- metricsResult{m, err}
	}()
	go func() {
		m, err := uc.analyticsRepo.GetSalesMetrics(ctx, branchID, monthStart, todayEnd)
		monthCh <- metricsResult{m, err}
	}()
	go func() {
		rows, err := uc.analyticsRepo.GetTopProducts(ctx, branchID, monthStart, todayEnd, dashboardTopProducts)
		topCh <- topResult{rows, err}
	}()
	go func() {
		n, err := uc.analyticsRepo.CountProducts(ctx)
		productsCh <- countResult{n, err}
	}()
	go func() {
		n, err := uc.analyticsRepo.CountLowStock(ctx, branchID)
		lowCh <- countResult{n, err}
	}()
	go func() {
		if branchID != "" {
			branchCh <- branchResult{}
			return
		}
		rows, err := uc.analyticsRepo.GetSalesByBranch(ctx, monthStart, todayEnd)
		branchCh <- branchResult{rows, err}
	}()

	today := <-todayCh
	month := <-monthCh
	top := <-topCh
	products := <-productsCh
	low := <-lowCh
	branches := <-branchCh

	if today.err != nil {
		return nil, fmt.Errorf("dashboard: métricas de hoy: %w", today.err)
	}
	if month.err != nil {
		return nil, fmt.Errorf("dashboard: métricas del mes: %w", month.err)
	}
	if top.err != nil {
		return nil, fmt.Errorf("dashboard: top productos: %w", top.err)
	}
	if products.err != nil {
		return nil, fmt.Errorf("dashboard: productos: %w", products.err)
	}
	if low.err != nil {
		return nil, fmt.Errorf("dashboard: stock bajo: %w", low.err)
	}
	if branches.err != nil {
		return nil, fmt.Errorf("dashboard: sucursales: %w", branches.err)
	}

	// ── Construir DTO ──────────────────────────────────────────────────────────
	out := &dto.DashboardSummaryDTO{
		BranchID:          branchID,
		TodaySales:        pricing.FormatMoney(today.m.Revenue),
		TodayTransactions: today.m.Transactions,
		MonthSales:        pricing.FormatMoney(month.m.Revenue),
		MonthTransactions: month.m.Transactions,
		TotalProducts:     products.n,
		LowStockProducts:  low.n,
		TopProducts:       make([]dto.TopProductDTO, 0, len(top.rows)),
	}
	for _, r := range top.rows {
		out.TopProducts = append(out.TopProducts, dto.TopProductDTO{
			ProductID:    r.ProductID,
			SKU:          r.SKU,
			ProductName:  r.ProductName,
			QuantitySold: r.QuantitySold,
			TotalRevenue: pricing.FormatMoney(r.TotalRevenue),
		})
	}
	for _, b := range branches.rows {
		out.SalesByBranch = append(out.SalesByBranch, dto.BranchSalesDTO{
			BranchID:     b.BranchID,
			BranchName:   b.BranchName,
			Transactions: b.Transactions,
			Revenue:      pricing.FormatMoney(b.Revenue),
		})
	}
	return out, nil
}
