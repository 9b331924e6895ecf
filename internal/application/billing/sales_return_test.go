package billing_test

import (
	"context"
	"errors"
	"testing"

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

func newSalesReturns(s *memstore.Store, n ports.Notifier) *billing.SalesReturnUseCase {
	ledger := inventory.NewStockLedger(s, s.Products(), s.Branches(), s.Stocks(), s.Audit(), nil, n, nil)
	return billing.NewSalesReturnUseCase(s, ledger, s.SalesReturns(), n)
}

// vender registra una venta de qty unidades de p y devuelve la respuesta.
func vender(t *testing.T, s *memstore.Store, branchID, productID, qty string, discount *string) *dto.SaleResponse {
	t.Helper()
	in := dto.CreateSaleRequest{
		BranchID:   branchID,
		Items:      []dto.SaleItemInput{{ProductID: productID, Quantity: dec(qty)}},
		PaidAmount: dec("100000"),
	}
	if discount != nil {
		in.DiscountAmount = decPtr(*discount)
	}
	sale, err := newSales(s, nil).CreateSale(context.Background(), cashier, in)
	require.NoError(t, err)
	return sale
}

func devolver(saleID, branchID, saleItemID, qty string) dto.CreateSalesReturnRequest {
	return dto.CreateSalesReturnRequest{
		SaleID:   saleID,
		BranchID: branchID,
		Reason:   "producto dañado",
		Items:    []dto.SalesReturnItemInput{{SaleItemID: saleItemID, Quantity: dec(qty)}},
	}
}

func TestSalesReturn_RepoStockYReembolso(t *testing.T) {
	s := memstore.New()
	b := s.AddBranch("B1", "Centro")
	p, _ := s.AddProduct("SKU-1", "Arroz", "1000", "1500")
	s.SetStock(p.ID, b.ID, "10")
	sale := vender(t, s, b.ID, p.ID, "3", nil)
	require.True(t, s.StockOf(p.ID, b.ID).Equal(dec("7")))

	n := &notifierMock{}
	n.On("Publish", ports.EventStockUpdate, mock.Anything).Once()
	n.On("Publish", ports.EventSalesReturn, mock.Anything).Once()
	uc := newSalesReturns(s, n)
	ctx := context.Background()

	out, err := uc.Create(ctx, inventory.Actor{UserID: "u-1"}, devolver(sale.ID, b.ID, sale.Items[0].ID, "2"))
	require.NoError(t, err)
	n.AssertExpectations(t)
	assert.Regexp(t, `^RET-\d{8}-\d{6}$`, out.ReturnNumber)
	assert.Equal(t, "3000.00", out.TotalRefund)
	assert.Equal(t, "cash", out.RefundMethod)
	assert.Equal(t, entity.SalesReturnCompleted, out.Status)
	assert.Equal(t, sale.SaleNumber, out.SaleNumber)
	require.Len(t, out.Items, 1)
	assert.True(t, out.Items[0].BaseQuantity.Equal(dec("2")))
	assert.True(t, s.StockOf(p.ID, b.ID).Equal(dec("9")))

	t.Run("no supera lo vendido sumando devoluciones previas", func(t *testing.T) {
		rollbacks := s.Rollbacks()
		_, err := newSalesReturns(s, nil).Create(ctx, inventory.Actor{}, devolver(sale.ID, b.ID, sale.Items[0].ID, "2"))
		var verr *domain.ValidationError
		require.True(t, errors.As(err, &verr))
		assert.Equal(t, "Return quantity exceeds sold quantity", verr.Message)
		assert.Equal(t, "2", verr.Details["returned"])
		assert.Equal(t, s.Rollbacks(), rollbacks+1)
		assert.True(t, s.StockOf(p.ID, b.ID).Equal(dec("9")))
	})

	t.Run("el resto sí se acepta", func(t *testing.T) {
		_, err := newSalesReturns(s, nil).Create(ctx, inventory.Actor{}, devolver(sale.ID, b.ID, sale.Items[0].ID, "1"))
		require.NoError(t, err)
		assert.True(t, s.StockOf(p.ID, b.ID).Equal(dec("10")))
	})

	list, page, err := uc.List(ctx, dto.ReturnQuery{SaleID: sale.ID})
	require.NoError(t, err)
	assert.Len(t, list, 2)
	assert.Equal(t, 2, page.Total)
}

func TestSalesReturn_ProrrateaDescuentoDeCabecera(t *testing.T) {
	s := memstore.New()
	b := s.AddBranch("B1", "Centro")
	p, _ := s.AddProduct("SKU-1", "Arroz", "1000", "1500")
	s.SetStock(p.ID, b.ID, "10")
	discount := "300"
	sale := vender(t, s, b.ID, p.ID, "2", &discount)
	require.Equal(t, "2700.00", sale.TotalAmount)

	out, err := newSalesReturns(s, nil).Create(context.Background(), inventory.Actor{},
		devolver(sale.ID, b.ID, sale.Items[0].ID, "1"))
	require.NoError(t, err)
	assert.Equal(t, "1350.00", out.TotalRefund)
}

func TestSalesReturn_Rechazos(t *testing.T) {
	s := memstore.New()
	b1 := s.AddBranch("B1", "Centro")
	b2 := s.AddBranch("B2", "Norte")
	p, _ := s.AddProduct("SKU-1", "Arroz", "1000", "1500")
	s.SetStock(p.ID, b1.ID, "10")
	sale := vender(t, s, b1.ID, p.ID, "2", nil)
	uc := newSalesReturns(s, nil)
	ctx := context.Background()

	_, err := uc.Create(ctx, inventory.Actor{}, devolver(sale.ID, b2.ID, sale.Items[0].ID, "1"))
	assert.True(t, errors.Is(err, domain.ErrForbidden), "otra sucursal")

	_, err = uc.Create(ctx, inventory.Actor{}, devolver(sale.ID, b1.ID, sale.Items[0].ID, "0"))
	assert.True(t, errors.Is(err, domain.ErrInvalidInput), "cantidad cero")

	in := devolver(sale.ID, b1.ID, sale.Items[0].ID, "1")
	in.Reason = "  "
	_, err = uc.Create(ctx, inventory.Actor{}, in)
	assert.EqualError(t, err, "Return reason is required")

	_, err = uc.Create(ctx, inventory.Actor{}, devolver(sale.ID, b1.ID, "no-existe", "1"))
	assert.EqualError(t, err, "Sale item not found")

	_, err = newSales(s, nil).CancelSale(ctx, inventory.Actor{}, sale.ID)
	require.NoError(t, err)
	_, err = uc.Create(ctx, inventory.Actor{}, devolver(sale.ID, b1.ID, sale.Items[0].ID, "1"))
	assert.EqualError(t, err, "Only completed sales can be returned")
	assert.True(t, s.StockOf(p.ID, b1.ID).Equal(dec("10")))
}

func TestSalesReturn_AnularRevierteStockYLiberaLaVenta(t *testing.T) {
	s := memstore.New()
	b := s.AddBranch("B1", "Centro")
	p, _ := s.AddProduct("SKU-1", "Arroz", "1000", "1500")
	s.SetStock(p.ID, b.ID, "5")
	sale := vender(t, s, b.ID, p.ID, "2", nil)
	uc := newSalesReturns(s, nil)
	sales := newSales(s, nil)
	ctx := context.Background()

	ret, err := uc.Create(ctx, inventory.Actor{}, devolver(sale.ID, b.ID, sale.Items[0].ID, "2"))
	require.NoError(t, err)
	require.True(t, s.StockOf(p.ID, b.ID).Equal(dec("5")))

	_, err = sales.CancelSale(ctx, inventory.Actor{}, sale.ID)
	assert.EqualError(t, err, "Sale has active returns; cancel them first")
	assert.True(t, s.StockOf(p.ID, b.ID).Equal(dec("5")))

	_, err = uc.UpdateStatus(ctx, inventory.Actor{}, ret.ID, "refunded")
	assert.True(t, errors.Is(err, domain.ErrInvalidInput))

	out, err := uc.UpdateStatus(ctx, inventory.Actor{}, ret.ID, entity.SalesReturnProcessed)
	require.NoError(t, err)
	assert.Equal(t, entity.SalesReturnProcessed, out.Status)
	assert.True(t, s.StockOf(p.ID, b.ID).Equal(dec("5")), "cambiar de estado no mueve stock")

	out, err = uc.UpdateStatus(ctx, inventory.Actor{}, ret.ID, entity.SalesReturnCancelled)
	require.NoError(t, err)
	assert.Equal(t, entity.SalesReturnCancelled, out.Status)
	assert.True(t, s.StockOf(p.ID, b.ID).Equal(dec("3")))

	_, err = uc.UpdateStatus(ctx, inventory.Actor{}, ret.ID, entity.SalesReturnCompleted)
	assert.EqualError(t, err, "Cancelled return cannot change status")

	_, err = sales.CancelSale(ctx, inventory.Actor{}, sale.ID)
	require.NoError(t, err)
	assert.True(t, s.StockOf(p.ID, b.ID).Equal(dec("5")))

	stored, err := uc.Get(ctx, ret.ID)
	require.NoError(t, err)
	assert.Equal(t, entity.SalesReturnCancelled, stored.Status)
	_, err = uc.Get(ctx, "no-existe")
	assert.True(t, errors.Is(err, domain.ErrNotFound))
}
