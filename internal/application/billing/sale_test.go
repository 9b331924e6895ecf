package billing_test

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/ArtEnginer/POS/internal/application/billing"
	"github.com/ArtEnginer/POS/internal/application/dto"
	"github.com/ArtEnginer/POS/internal/application/inventory"
	"github.com/ArtEnginer/POS/internal/application/ports"
	"github.com/ArtEnginer/POS/internal/domain"
	"github.com/ArtEnginer/POS/internal/domain/entity"
	"github.com/ArtEnginer/POS/internal/testutil/memstore"
)

type notifierMock struct{ mock.Mock }

func (m *notifierMock) Publish(eventType string, data any) { m.Called(eventType, data) }

func dec(v string) decimal.Decimal { return decimal.RequireFromString(v) }

func decPtr(v string) *decimal.Decimal {
	d := dec(v)
	return &d
}

func newSales(s *memstore.Store, n ports.Notifier) *billing.SaleUseCase {
	ledger := inventory.NewStockLedger(s, s.Products(), s.Branches(), s.Stocks(), s.Audit(), nil, n, nil)
	return billing.NewSaleUseCase(s, ledger, s.Customers(), s.Sales(), n, nil)
}

var cashier = inventory.Actor{UserID: "cashier-1"}

func TestCreateSale_TotalesYStock(t *testing.T) {
	s := memstore.New()
	b := s.AddBranch("B1", "Centro")
	rice, _ := s.AddProduct("SKU-1", "Arroz", "1000", "1500")
	water, _ := s.AddProduct("SKU-2", "Agua", "300", "500")
	box := s.AddUnit(water.ID, "BOX", "12")
	s.SetStock(rice.ID, b.ID, "10")
	s.SetStock(water.ID, b.ID, "24")

	n := &notifierMock{}
	n.On("Publish", ports.EventStockUpdate, mock.Anything).Twice()
	n.On("Publish", ports.EventSaleCreated, mock.Anything).Once()
	uc := newSales(s, n)

	out, err := uc.CreateSale(context.Background(), cashier, dto.CreateSaleRequest{
		BranchID: b.ID,
		Items: []dto.SaleItemInput{
			{ProductID: rice.ID, Quantity: dec("2")},
			{ProductID: water.ID, UnitID: box.ID, Quantity: dec("1")},
		},
		DiscountAmount: decPtr("500"),
		PaidAmount:     dec("10000"),
	})
	require.NoError(t, err)
	assert.Equal(t, "9000.00", out.Subtotal)
	assert.Equal(t, "500.00", out.DiscountAmount)
	assert.Equal(t, "8500.00", out.TotalAmount)
	assert.Equal(t, "1500.00", out.ChangeAmount)
	assert.Equal(t, "cash", out.PaymentMethod)
	assert.Equal(t, entity.SaleStatusCompleted, out.Status)
	assert.Regexp(t, `^INV-\d{8}-\d{6}$`, out.SaleNumber)
	require.Len(t, out.Items, 2)
	assert.Equal(t, "6000.00", out.Items[1].UnitPrice, "precio de referencia x conversión")
	assert.True(t, out.Items[1].BaseQuantity.Equal(dec("12")))

	assert.True(t, s.StockOf(rice.ID, b.ID).Equal(dec("8")))
	assert.True(t, s.StockOf(water.ID, b.ID).Equal(dec("12")))
	n.AssertExpectations(t)

	stored, err := uc.GetSale(context.Background(), out.ID)
	require.NoError(t, err)
	assert.Len(t, stored.Items, 2)
	assert.Equal(t, "Centro", stored.BranchName)
}

func TestCreateSale_StockInsuficienteRevierteTodo(t *testing.T) {
	s := memstore.New()
	b := s.AddBranch("B1", "Centro")
	rice, _ := s.AddProduct("SKU-1", "Arroz", "1000", "1500")
	water, _ := s.AddProduct("SKU-2", "Agua", "300", "500")
	s.SetStock(rice.ID, b.ID, "5")
	n := &notifierMock{}
	uc := newSales(s, n)

	_, err := uc.CreateSale(context.Background(), cashier, dto.CreateSaleRequest{
		BranchID: b.ID,
		Items: []dto.SaleItemInput{
			{ProductID: rice.ID, Quantity: dec("1")},
			{ProductID: water.ID, Quantity: dec("1")},
		},
		PaidAmount: dec("5000"),
	})
	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrInvalidInput))
	assert.Contains(t, err.Error(), "Stock cannot be negative")

	assert.True(t, s.StockOf(rice.ID, b.ID).Equal(dec("5")), "la primera línea también se revierte")
	list, pag, err := uc.ListSales(context.Background(), dto.SaleQuery{})
	require.NoError(t, err)
	assert.Empty(t, list)
	assert.Equal(t, 0, pag.Total)
	n.AssertNotCalled(t, "Publish", mock.Anything, mock.Anything)
}

func TestCreateSale_PrecioMiembro(t *testing.T) {
	s := memstore.New()
	b := s.AddBranch("B1", "Centro")
	rice, unit := s.AddProduct("SKU-1", "Arroz", "1000", "1500")
	s.SetStock(rice.ID, b.ID, "10")
	member := dec("1200")
	_, err := s.Prices().Upsert(context.Background(), &entity.ProductBranchPrice{
		ID: uuid.New().String(), ProductID: rice.ID, BranchID: b.ID, ProductUnitID: unit.ID,
		SellingPrice: dec("1500"), MemberPrice: &member,
	})
	require.NoError(t, err)
	customer := &entity.Customer{ID: uuid.New().String(), Code: "C-1", Name: "Ana", IsMember: true}
	require.NoError(t, s.Customers().Create(context.Background(), customer))
	uc := newSales(s, nil)

	out, err := uc.CreateSale(context.Background(), cashier, dto.CreateSaleRequest{
		BranchID:   b.ID,
		CustomerID: &customer.ID,
		Items:      []dto.SaleItemInput{{ProductID: rice.ID, Quantity: dec("1")}},
		PaidAmount: dec("1200"),
	})
	require.NoError(t, err)
	assert.Equal(t, "1200.00", out.TotalAmount)
	assert.Equal(t, "0.00", out.ChangeAmount)
}

func TestCreateSale_ImpuestoYDescuentoDeProducto(t *testing.T) {
	s := memstore.New()
	b := s.AddBranch("B1", "Centro")
	p, _ := s.AddProduct("SKU-1", "Aceite", "800", "1000")
	p.TaxRate = dec("10")
	p.DiscountPercentage = dec("5")
	require.NoError(t, s.Products().Update(context.Background(), p))
	s.SetStock(p.ID, b.ID, "10")
	uc := newSales(s, nil)

	out, err := uc.CreateSale(context.Background(), cashier, dto.CreateSaleRequest{
		BranchID:   b.ID,
		Items:      []dto.SaleItemInput{{ProductID: p.ID, Quantity: dec("2")}},
		PaidAmount: dec("3000"),
	})
	require.NoError(t, err)
	// 2000 - 100 de descuento + 190 de impuesto
	assert.Equal(t, "2000.00", out.Subtotal)
	assert.Equal(t, "100.00", out.DiscountAmount)
	assert.Equal(t, "190.00", out.TaxAmount)
	assert.Equal(t, "2090.00", out.TotalAmount)
}

func TestCreateSale_Validaciones(t *testing.T) {
	s := memstore.New()
	b := s.AddBranch("B1", "Centro")
	p, _ := s.AddProduct("SKU-1", "Arroz", "1000", "1500")
	s.SetStock(p.ID, b.ID, "10")
	uc := newSales(s, nil)
	ctx := context.Background()
	missing := uuid.New().String()

	tests := []struct {
		name   string
		req    dto.CreateSaleRequest
		target error
		msg    string
	}{
		{"sin líneas", dto.CreateSaleRequest{BranchID: b.ID}, domain.ErrInvalidInput, "Branch ID and at least one item are required"},
		{"cantidad cero", dto.CreateSaleRequest{BranchID: b.ID, Items: []dto.SaleItemInput{{ProductID: p.ID}}}, domain.ErrInvalidInput, ""},
		{"pago insuficiente", dto.CreateSaleRequest{BranchID: b.ID, Items: []dto.SaleItemInput{{ProductID: p.ID, Quantity: dec("1")}}, PaidAmount: dec("100")}, domain.ErrInvalidInput, "Paid amount is less than total amount"},
		{"descuento excesivo", dto.CreateSaleRequest{BranchID: b.ID, Items: []dto.SaleItemInput{{ProductID: p.ID, Quantity: dec("1"), DiscountAmount: decPtr("2000")}}, PaidAmount: dec("5000")}, domain.ErrInvalidInput, "Discount cannot exceed line subtotal"},
		{"cliente inexistente", dto.CreateSaleRequest{BranchID: b.ID, CustomerID: &missing, Items: []dto.SaleItemInput{{ProductID: p.ID, Quantity: dec("1")}}}, domain.ErrNotFound, "Customer not found"},
		{"sucursal inexistente", dto.CreateSaleRequest{BranchID: missing, Items: []dto.SaleItemInput{{ProductID: p.ID, Quantity: dec("1")}}, PaidAmount: dec("5000")}, domain.ErrNotFound, "Branch not found"},
		{"producto inexistente", dto.CreateSaleRequest{BranchID: b.ID, Items: []dto.SaleItemInput{{ProductID: missing, Quantity: dec("1")}}, PaidAmount: dec("5000")}, domain.ErrNotFound, "Product not found"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := uc.CreateSale(ctx, cashier, tt.req)
			require.Error(t, err)
			assert.True(t, errors.Is(err, tt.target))
			if tt.msg != "" {
				assert.EqualError(t, err, tt.msg)
			}
		})
	}
	assert.True(t, s.StockOf(p.ID, b.ID).Equal(dec("10")))
}

func TestCancelSale_DevuelveStock(t *testing.T) {
	s := memstore.New()
	b := s.AddBranch("B1", "Centro")
	p, _ := s.AddProduct("SKU-1", "Arroz", "1000", "1500")
	s.SetStock(p.ID, b.ID, "3")
	uc := newSales(s, nil)
	ctx := context.Background()

	sale, err := uc.CreateSale(ctx, cashier, dto.CreateSaleRequest{
		BranchID:   b.ID,
		Items:      []dto.SaleItemInput{{ProductID: p.ID, Quantity: dec("3")}},
		PaidAmount: dec("4500"),
	})
	require.NoError(t, err)
	assert.True(t, s.StockOf(p.ID, b.ID).IsZero())

	out, err := uc.CancelSale(ctx, inventory.Actor{UserID: "manager-1"}, sale.ID)
	require.NoError(t, err)
	assert.Equal(t, entity.SaleStatusCancelled, out.Status)
	assert.True(t, s.StockOf(p.ID, b.ID).Equal(dec("3")))

	_, err = uc.CancelSale(ctx, inventory.Actor{}, sale.ID)
	assert.EqualError(t, err, "Sale is already cancelled")

	_, err = uc.CancelSale(ctx, inventory.Actor{}, "nope")
	assert.True(t, errors.Is(err, domain.ErrNotFound))
}

func TestListSales_Filtros(t *testing.T) {
	s := memstore.New()
	b1 := s.AddBranch("B1", "Centro")
	b2 := s.AddBranch("B2", "Norte")
	p, _ := s.AddProduct("SKU-1", "Arroz", "1000", "1500")
	s.SetStock(p.ID, b1.ID, "10")
	s.SetStock(p.ID, b2.ID, "10")
	uc := newSales(s, nil)
	ctx := context.Background()

	for _, branchID := range []string{b1.ID, b1.ID, b2.ID} {
		_, err := uc.CreateSale(ctx, cashier, dto.CreateSaleRequest{
			BranchID:   branchID,
			Items:      []dto.SaleItemInput{{ProductID: p.ID, Quantity: dec("1")}},
			PaidAmount: dec("1500"),
		})
		require.NoError(t, err)
	}

	list, pag, err := uc.ListSales(ctx, dto.SaleQuery{BranchID: b1.ID})
	require.NoError(t, err)
	assert.Len(t, list, 2)
	assert.Equal(t, 2, pag.Total)

	list, _, err = uc.ListSales(ctx, dto.SaleQuery{From: "2000-01-01", To: "2000-01-31"})
	require.NoError(t, err)
	assert.Empty(t, list)

	_, _, err = uc.ListSales(ctx, dto.SaleQuery{From: "01/02/2024"})
	assert.True(t, errors.Is(err, domain.ErrInvalidInput))
}

type rendererFunc func(*entity.Sale) ([]byte, error)

func (f rendererFunc) Render(s *entity.Sale) ([]byte, error) { return f(s) }

func TestDownloadReceipt(t *testing.T) {
	s := memstore.New()
	b := s.AddBranch("B1", "Centro")
	p, _ := s.AddProduct("SKU-1", "Arroz", "1000", "1500")
	s.SetStock(p.ID, b.ID, "1")
	sales := newSales(s, nil)
	sale, err := sales.CreateSale(context.Background(), cashier, dto.CreateSaleRequest{
		SaleNumber: "INV-TEST-1",
		BranchID:   b.ID,
		Items:      []dto.SaleItemInput{{ProductID: p.ID, Quantity: dec("1")}},
		PaidAmount: dec("1500"),
	})
	require.NoError(t, err)

	uc := billing.NewReceiptUseCase(sales, rendererFunc(func(s *entity.Sale) ([]byte, error) {
		return []byte("%PDF-" + s.SaleNumber), nil
	}))
	pdf, name, err := uc.DownloadReceipt(context.Background(), sale.ID)
	require.NoError(t, err)
	assert.Equal(t, "receipt-INV-TEST-1.pdf", name)
	assert.Equal(t, "%PDF-INV-TEST-1", string(pdf))

	_, _, err = uc.DownloadReceipt(context.Background(), "nope")
	assert.True(t, errors.Is(err, domain.ErrNotFound))

	failing := billing.NewReceiptUseCase(sales, rendererFunc(func(*entity.Sale) ([]byte, error) {
		return nil, errors.New("boom")
	}))
	_, _, err = failing.DownloadReceipt(context.Background(), sale.ID)
	assert.ErrorContains(t, err, "boom")
}
