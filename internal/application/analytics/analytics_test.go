package analytics_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/ArtEnginer/POS/internal/application/analytics"
	"github.com/ArtEnginer/POS/internal/application/dto"
	"github.com/ArtEnginer/POS/internal/domain"
	"github.com/ArtEnginer/POS/internal/domain/repository"
)

type analyticsMock struct{ mock.Mock }

func (m *analyticsMock) GetSalesMetrics(_ context.Context, branchID string, from, to time.Time) (repository.SalesMetrics, error) {
	args := m.Called(branchID, from, to)
	return args.Get(0).(repository.SalesMetrics), args.Error(1)
}

func (m *analyticsMock) GetSalesByBranch(_ context.Context, from, to time.Time) ([]repository.BranchSalesResult, error) {
	args := m.Called(from, to)
	rows, _ := args.Get(0).([]repository.BranchSalesResult)
	return rows, args.Error(1)
}

func (m *analyticsMock) GetTopProducts(_ context.Context, branchID string, from, to time.Time, limit int) ([]repository.TopProductResult, error) {
	args := m.Called(branchID, from, to, limit)
	rows, _ := args.Get(0).([]repository.TopProductResult)
	return rows, args.Error(1)
}

func (m *analyticsMock) CountProducts(context.Context) (int, error) {
	args := m.Called()
	return args.Int(0), args.Error(1)
}

func (m *analyticsMock) CountLowStock(_ context.Context, branchID string) (int, error) {
	args := m.Called(branchID)
	return args.Int(0), args.Error(1)
}

func d(v string) decimal.Decimal { return decimal.RequireFromString(v) }

func TestDashboard_TodasLasSucursales(t *testing.T) {
	repo := &analyticsMock{}
	repo.On("GetSalesMetrics", "", mock.Anything, mock.Anything).
		Return(repository.SalesMetrics{Revenue: d("98000.5"), Transactions: 41}, nil).Twice()
	repo.On("GetTopProducts", "", mock.Anything, mock.Anything, 5).Return([]repository.TopProductResult{
		{ProductID: "p1", SKU: "A", ProductName: "Arroz", QuantitySold: d("12"), TotalRevenue: d("18000")},
	}, nil)
	repo.On("CountProducts").Return(120, nil)
	repo.On("CountLowStock", "").Return(7, nil)
	repo.On("GetSalesByBranch", mock.Anything, mock.Anything).Return([]repository.BranchSalesResult{
		{BranchID: "b1", BranchName: "Centro", Transactions: 41, Revenue: d("98000.5")},
	}, nil)

	out, err := analytics.NewDashboardUseCase(repo).GetSummary(context.Background(), "")
	require.NoError(t, err)
	assert.Equal(t, "98000.50", out.TodaySales)
	assert.Equal(t, "98000.50", out.MonthSales)
	assert.Equal(t, 41, out.MonthTransactions)
	assert.Equal(t, 120, out.TotalProducts)
	assert.Equal(t, 7, out.LowStockProducts)
	require.Len(t, out.TopProducts, 1)
	assert.Equal(t, "18000.00", out.TopProducts[0].TotalRevenue)
	require.Len(t, out.SalesByBranch, 1)
	assert.Equal(t, "Centro", out.SalesByBranch[0].BranchName)
	repo.AssertCalled(t, "GetSalesByBranch", mock.Anything, mock.Anything)
}

func TestDashboard_UnaSucursalNoDesglosa(t *testing.T) {
	repo := &analyticsMock{}
	repo.On("GetSalesMetrics", "b1", mock.Anything, mock.Anything).Return(repository.SalesMetrics{}, nil)
	repo.On("GetTopProducts", "b1", mock.Anything, mock.Anything, 5).Return(nil, nil)
	repo.On("CountProducts").Return(10, nil)
	repo.On("CountLowStock", "b1").Return(0, nil)

	out, err := analytics.NewDashboardUseCase(repo).GetSummary(context.Background(), "b1")
	require.NoError(t, err)
	assert.Equal(t, "b1", out.BranchID)
	assert.Equal(t, "0.00", out.TodaySales)
	assert.Empty(t, out.TopProducts)
	assert.Nil(t, out.SalesByBranch)
	repo.AssertNotCalled(t, "GetSalesByBranch", mock.Anything, mock.Anything)
}

func TestDashboard_PropagaError(t *testing.T) {
	repo := &analyticsMock{}
	boom := errors.New("db caída")
	repo.On("GetSalesMetrics", mock.Anything, mock.Anything, mock.Anything).Return(repository.SalesMetrics{}, nil)
	repo.On("GetTopProducts", mock.Anything, mock.Anything, mock.Anything, mock.Anything).Return(nil, nil)
	repo.On("CountProducts").Return(0, boom)
	repo.On("CountLowStock", mock.Anything).Return(0, nil)
	repo.On("GetSalesByBranch", mock.Anything, mock.Anything).Return(nil, nil)

	_, err := analytics.NewDashboardUseCase(repo).GetSummary(context.Background(), "")
	assert.ErrorIs(t, err, boom)
}

func TestSalesReport_ParticipacionYPareto(t *testing.T) {
	repo := &analyticsMock{}
	repo.On("GetSalesByBranch", mock.Anything, mock.Anything).Return([]repository.BranchSalesResult{
		{BranchID: "b1", BranchName: "Centro", Transactions: 6, Revenue: d("750")},
		{BranchID: "b2", BranchName: "Norte", Transactions: 2, Revenue: d("250")},
	}, nil)
	repo.On("GetTopProducts", "", mock.Anything, mock.Anything, 20).Return([]repository.TopProductResult{
		{ProductID: "p1", TotalRevenue: d("600")},
		{ProductID: "p2", TotalRevenue: d("200")},
		{ProductID: "p3", TotalRevenue: d("150")},
		{ProductID: "p4", TotalRevenue: d("50")},
	}, nil)

	out, err := analytics.NewReportUseCase(repo).GetSalesReport(context.Background(), dto.SalesReportRequest{
		StartDate: "2024-03-01", EndDate: "2024-03-31",
	})
	require.NoError(t, err)
	assert.Equal(t, "2024-03-01", out.Period.StartDate)
	assert.Equal(t, "2024-03-31", out.Period.EndDate)
	assert.Equal(t, "1000.00", out.TotalRevenue)
	assert.Equal(t, 8, out.Transactions)
	require.Len(t, out.Branches, 2)
	assert.True(t, out.Branches[0].RevenuePct.Equal(d("75")))

	require.Len(t, out.Products, 4)
	assert.Equal(t, 1, out.Products[0].Rank)
	assert.True(t, out.Products[1].CumulativeRevPct.Equal(d("80")))
	assert.False(t, out.Products[2].IsTopPareto)
	assert.Len(t, out.ParetoProducts, 2)
}

func TestSalesReport_FechasInvalidas(t *testing.T) {
	uc := analytics.NewReportUseCase(&analyticsMock{})
	ctx := context.Background()

	_, err := uc.GetSalesReport(ctx, dto.SalesReportRequest{StartDate: "03/01/2024"})
	assert.True(t, errors.Is(err, domain.ErrInvalidInput))

	_, err = uc.GetSalesReport(ctx, dto.SalesReportRequest{StartDate: "2024-04-02", EndDate: "2024-04-01"})
	assert.EqualError(t, err, "startDate cannot be after endDate")
}
