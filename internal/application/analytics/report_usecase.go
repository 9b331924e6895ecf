package analytics

import (
	"context"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/ArtEnginer/POS/internal/application/dto"
	"github.com/ArtEnginer/POS/internal/domain"
	"github.com/ArtEnginer/POS/internal/domain/pricing"
	"github.com/ArtEnginer/POS/internal/domain/repository"
)

const (
	defaultTopN     = 20
	maxTopN         = 200
	paretoThreshold = 80 // el top de productos que acumula el 80% del ingreso
)

var (
	hundred  = decimal.NewFromInt(100)
	pareto80 = decimal.NewFromInt(paretoThreshold)
)

// ReportUseCase reporte de ventas de un período:
//   - Totales y participación por sucursal.
//   - Ranking de productos por ingreso con participación acumulada (Pareto).
type ReportUseCase struct {
	analyticsRepo repository.AnalyticsRepository
}

// NewReportUseCase construye el caso de uso.
func NewReportUseCase(analyticsRepo repository.AnalyticsRepository) *ReportUseCase {
	return &ReportUseCase{analyticsRepo: analyticsRepo}
}

// GetSalesReport genera el reporte para el período; fechas vacías = mes en curso.
func (uc *ReportUseCase) GetSalesReport(ctx context.Context, req dto.SalesReportRequest) (*dto.SalesReportDTO, error) {
	start, end, err := parsePeriod(req.StartDate, req.EndDate)
	if err != nil {
		return nil, domain.NewValidationError(err.Error(), nil)
	}
	topN := req.TopN
	if topN <= 0 {
		topN = defaultTopN
	}
	if topN > maxTopN {
		topN = maxTopN
	}

	// 1) Sucursales y productos en paralelo (llamadas independientes)
	type branchResult struct {
		rows []repository.BranchSalesResult
		err  error
	}
	type productResult struct {
		rows []repository.TopProductResult
		err  error
	}
	brChan := make(chan branchResult, 1)
	prChan := make(chan productResult, 1)

	go func() {
		rows, err := uc.analyticsRepo.GetSalesByBranch(ctx, start, end)
		brChan <- branchResult{rows, err}
	}()
	go func() {
		rows, err := uc.analyticsRepo.GetTopProducts(ctx, req.BranchID, start, end, topN)
		prChan <- productResult{rows, err}
	}()

	brRes := <-brChan
	prRes := <-prChan
	if brRes.err != nil {
		return nil, fmt.Errorf("report: sucursales: %w", brRes.err)
	}
	if prRes.err != nil {
		return nil, fmt.Errorf("report: productos: %w", prRes.err)
	}

	report := &dto.SalesReportDTO{
		Period: dto.PeriodDTO{
			StartDate: start.Format("2006-01-02"),
			EndDate:   end.Add(-time.Nanosecond).Format("2006-01-02"),
		},
	}
	report.Branches, report.TotalRevenue, report.Transactions = buildBranchShare(brRes.rows)
	report.Products = buildProductRanking(prRes.rows)
	for _, p := range report.Products {
		if p.IsTopPareto {
			report.ParetoProducts = append(report.ParetoProducts, p)
		}
	}
	return report, nil
}

// buildBranchShare totales globales y % de participación de cada sucursal.
func buildBranchShare(rows []repository.BranchSalesResult) ([]dto.BranchShareDTO, string, int) {
	var total decimal.Decimal
	transactions := 0
	for _, r := range rows {
		total = total.Add(r.Revenue)
		transactions += r.Transactions
	}
	out := make([]dto.BranchShareDTO, 0, len(rows))
	for _, r := range rows {
		pct := decimal.Zero
		if total.IsPositive() {
			pct = r.Revenue.Div(total).Mul(hundred).Round(2)
		}
		out = append(out, dto.BranchShareDTO{
			BranchID:     r.BranchID,
			BranchName:   r.BranchName,
			Transactions: r.Transactions,
			Revenue:      pricing.FormatMoney(r.Revenue),
			RevenuePct:   pct,
		})
	}
	return out, pricing.FormatMoney(total), transactions
}

// buildProductRanking ranking con:
//   - Rank (posición por ingreso descendente).
//   - RevenuePct y CumulativeRevPct (curva Pareto).
//   - IsTopPareto: true mientras el acumulado no supere el 80%.
func buildProductRanking(rows []repository.TopProductResult) []dto.ProductRankingDTO {
	if len(rows) == 0 {
		return []dto.ProductRankingDTO{}
	}
	var total decimal.Decimal
	for _, r := range rows {
		total = total.Add(r.TotalRevenue)
	}

	ranking := make([]dto.ProductRankingDTO, 0, len(rows))
	var cumulative decimal.Decimal
	for i, r := range rows {
		pct := decimal.Zero
		if total.IsPositive() {
			pct = r.TotalRevenue.Div(total).Mul(hundred).Round(2)
		}
		cumulative = cumulative.Add(pct)
		// el primero siempre cuenta aunque por sí solo supere el umbral
		isPareto := cumulative.LessThanOrEqual(pareto80) || i == 0

		ranking = append(ranking, dto.ProductRankingDTO{
			Rank:             i + 1,
			ProductID:        r.ProductID,
			SKU:              r.SKU,
			ProductName:      r.ProductName,
			QuantitySold:     r.QuantitySold,
			Revenue:          pricing.FormatMoney(r.TotalRevenue),
			RevenuePct:       pct,
			CumulativeRevPct: cumulative.Round(2),
			IsTopPareto:      isPareto,
		})
	}
	return ranking
}

// parsePeriod convierte las fechas en [start, end) con end exclusivo; por defecto el mes en curso.
func parsePeriod(startStr, endStr string) (start, end time.Time, err error) {
	now := time.Now()

	if endStr == "" {
		end = time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location()).AddDate(0, 0, 1)
	} else {
		end, err = time.ParseInLocation("2006-01-02", endStr, now.Location())
		if err != nil {
			return time.Time{}, time.Time{}, fmt.Errorf("Invalid endDate: %s", endStr)
		}
		end = end.AddDate(0, 0, 1) // inclusivo hasta el final del día
	}

	if startStr == "" {
		start = time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, now.Location())
	} else {
		start, err = time.ParseInLocation("2006-01-02", startStr, now.Location())
		if err != nil {
			return time.Time{}, time.Time{}, fmt.Errorf("Invalid startDate: %s", startStr)
		}
	}

	if !start.Before(end) {
		return time.Time{}, time.Time{}, fmt.Errorf("startDate cannot be after endDate")
	}
	return start, end, nil
}
