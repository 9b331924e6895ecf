package dto

import "github.com/shopspring/decimal"

// DashboardSummaryDTO resumen de ventas del día y del mes para el dashboard del POS.
type DashboardSummaryDTO struct {
	BranchID          string           `json:"branchId,omitempty"`
	TodaySales        string           `json:"todaySales"`
	TodayTransactions int              `json:"todayTransactions"`
	MonthSales        string           `json:"monthSales"`
	MonthTransactions int              `json:"monthTransactions"`
	TotalProducts     int              `json:"totalProducts"`
	LowStockProducts  int              `json:"lowStockProducts"`
	TopProducts       []TopProductDTO  `json:"topProducts"`
	SalesByBranch     []BranchSalesDTO `json:"salesByBranch,omitempty"`
}

// TopProductDTO producto más vendido del mes.
type TopProductDTO struct {
	ProductID    string          `json:"productId"`
	SKU          string          `json:"sku"`
	ProductName  string          `json:"productName"`
	QuantitySold decimal.Decimal `json:"quantitySold" swaggertype:"number"`
	TotalRevenue string          `json:"totalRevenue"`
}

// BranchSalesDTO ventas del mes por sucursal (solo sin filtro de sucursal).
type BranchSalesDTO struct {
	BranchID     string `json:"branchId"`
	BranchName   string `json:"branchName"`
	Transactions int    `json:"transactions"`
	Revenue      string `json:"revenue"`
}

// SalesReportRequest query de GET /api/dashboard/sales-report.
type SalesReportRequest struct {
	StartDate string `query:"startDate"` // YYYY-MM-DD
	EndDate   string `query:"endDate"`   // YYYY-MM-DD, inclusivo
	BranchID  string `query:"branchId"`
	TopN      int    `query:"topN"`
}

// PeriodDTO período del reporte.
type PeriodDTO struct {
	StartDate string `json:"startDate"`
	EndDate   string `json:"endDate"`
}

// SalesReportDTO reporte de ventas por sucursal y producto.
type SalesReportDTO struct {
	Period         PeriodDTO           `json:"period"`
	TotalRevenue   string              `json:"totalRevenue"`
	Transactions   int                 `json:"transactions"`
	Branches       []BranchShareDTO    `json:"branches"`
	Products       []ProductRankingDTO `json:"products"`
	ParetoProducts []ProductRankingDTO `json:"paretoProducts"`
}

// BranchShareDTO ventas de una sucursal y su participación en el total.
type BranchShareDTO struct {
	BranchID     string          `json:"branchId"`
	BranchName   string          `json:"branchName"`
	Transactions int             `json:"transactions"`
	Revenue      string          `json:"revenue"`
	RevenuePct   decimal.Decimal `json:"revenuePct" swaggertype:"number"`
}

// ProductRankingDTO posición de un producto en el ranking de ingresos.
type ProductRankingDTO struct {
	Rank             int             `json:"rank"`
	ProductID        string          `json:"productId"`
	SKU              string          `json:"sku"`
	ProductName      string          `json:"productName"`
	QuantitySold     decimal.Decimal `json:"quantitySold" swaggertype:"number"`
	Revenue          string          `json:"revenue"`
	RevenuePct       decimal.Decimal `json:"revenuePct" swaggertype:"number"`
	CumulativeRevPct decimal.Decimal `json:"cumulativeRevenuePct" swaggertype:"number"`
	IsTopPareto      bool            `json:"isTopPareto"`
}
