package inventory_test

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/ArtEnginer/POS/internal/application/dto"
	"github.com/ArtEnginer/POS/internal/application/inventory"
	"github.com/ArtEnginer/POS/internal/application/ports"
	"github.com/ArtEnginer/POS/internal/domain"
	"github.com/ArtEnginer/POS/internal/domain/entity"
	"github.com/ArtEnginer/POS/internal/testutil/memstore"
)

func newPurchaseReturns(s *memstore.Store, n ports.Notifier) *inventory.PurchaseReturnUseCase {
	return inventory.NewPurchaseReturnUseCase(s, newLedger(s, n), s.PurchaseReturns(), n)
}

// recibir registra una recepción de una línea y devuelve la respuesta.
func recibir(t *testing.T, s *memstore.Store, branchID, productID, unitID, quantity, cost string) *dto.ReceivingResponse {
	t.Helper()
	out, err := newReceivings(s).Create(context.Background(), inventory.Actor{UserID: "u-1"}, dto.CreateReceivingRequest{
		BranchID:     branchID,
		SupplierName: "Distribuidora Sur",
		Items: []dto.ReceivingItemInput{
			{ProductID: productID, UnitID: unitID, Quantity: decimal.RequireFromString(quantity), CostPrice: qty(cost)},
		},
	})
	require.NoError(t, err)
	return out
}

func devolucion(receivingID, itemID, quantity string) dto.CreatePurchaseReturnRequest {
	return dto.CreatePurchaseReturnRequest{
		ReceivingID: receivingID,
		Reason:      "vencido",
		Items: []dto.PurchaseReturnItemInput{
			{ReceivingItemID: itemID, Quantity: decimal.RequireFromString(quantity)},
		},
	}
}

func TestPurchaseReturn_DescuentaStockEnUnidadBase(t *testing.T) {
	s := memstore.New()
	b := s.AddBranch("B1", "Centro")
	p, _ := s.AddProduct("SKU-1", "Agua", "100", "150")
	box := s.AddUnit(p.ID, "BOX", "10")
	rc := recibir(t, s, b.ID, p.ID, box.ID, "2", "1000")
	require.True(t, s.StockOf(p.ID, b.ID).Equal(decimal.NewFromInt(20)))

	supplier := &entity.Supplier{ID: uuid.New().String(), Code: "SUPP26100001", Name: "Aguas del Valle", IsActive: true}
	require.NoError(t, s.Suppliers().Create(context.Background(), supplier))

	n := &notifierMock{}
	n.On("Publish", ports.EventStockUpdate, mock.Anything).Once()
	n.On("Publish", ports.EventPurchaseReturn, mock.Anything).Once()
	uc := newPurchaseReturns(s, n)

	in := devolucion(rc.ID, rc.Items[0].ID, "1.5")
	in.SupplierID = &supplier.ID
	out, err := uc.Create(context.Background(), inventory.Actor{UserID: "u-1"}, in)
	require.NoError(t, err)
	n.AssertExpectations(t)

	assert.Regexp(t, `^RTN-\d{8}-\d{6}$`, out.ReturnNumber)
	assert.Equal(t, b.ID, out.BranchID)
	assert.Equal(t, rc.ReceivingNumber, out.ReceivingNumber)
	assert.Equal(t, "Aguas del Valle", out.SupplierName)
	assert.Equal(t, "1500.00", out.TotalAmount)
	require.Len(t, out.Items, 1)
	assert.Equal(t, "BOX", out.Items[0].UnitName)
	assert.True(t, out.Items[0].BaseQuantity.Equal(decimal.NewFromInt(15)))
	assert.True(t, s.StockOf(p.ID, b.ID).Equal(decimal.NewFromInt(5)))

	history, err := s.Audit().ListByEntity(context.Background(), entity.AuditEntityProductStock, p.ID, 10)
	require.NoError(t, err)
	require.NotEmpty(t, history)
	assert.Contains(t, string(history[0].NewData), "purchase_return:"+out.ReturnNumber)

	stored, err := uc.Get(context.Background(), out.ID)
	require.NoError(t, err)
	assert.Equal(t, "1500.00", stored.TotalAmount)
	assert.Len(t, stored.Items, 1)
}

func TestPurchaseReturn_NoSuperaLoRecibido(t *testing.T) {
	s := memstore.New()
	b := s.AddBranch("B1", "Centro")
	p, _ := s.AddProduct("SKU-1", "Agua", "100", "150")
	rc := recibir(t, s, b.ID, p.ID, "", "10", "100")
	uc := newPurchaseReturns(s, nil)
	ctx := context.Background()

	_, err := uc.Create(ctx, inventory.Actor{}, devolucion(rc.ID, rc.Items[0].ID, "6"))
	require.NoError(t, err)

	rollbacks := s.Rollbacks()
	_, err = uc.Create(ctx, inventory.Actor{}, devolucion(rc.ID, rc.Items[0].ID, "5"))
	var verr *domain.ValidationError
	require.True(t, errors.As(err, &verr))
	assert.Equal(t, "Return quantity exceeds received quantity", verr.Message)
	assert.Equal(t, "6", verr.Details["returned"])
	assert.Equal(t, rollbacks+1, s.Rollbacks())
	assert.True(t, s.StockOf(p.ID, b.ID).Equal(decimal.NewFromInt(4)))

	// dos líneas sobre el mismo ítem también suman
	in := devolucion(rc.ID, rc.Items[0].ID, "3")
	in.Items = append(in.Items, dto.PurchaseReturnItemInput{ReceivingItemID: rc.Items[0].ID, Quantity: decimal.NewFromInt(2)})
	_, err = uc.Create(ctx, inventory.Actor{}, in)
	assert.True(t, errors.Is(err, domain.ErrInvalidInput))
	assert.True(t, s.StockOf(p.ID, b.ID).Equal(decimal.NewFromInt(4)))
}

func TestPurchaseReturn_StockNegativoRevierteTodo(t *testing.T) {
	s := memstore.New()
	b := s.AddBranch("B1", "Centro")
	p, _ := s.AddProduct("SKU-1", "Agua", "100", "150")
	rc := recibir(t, s, b.ID, p.ID, "", "5", "100")
	s.SetStock(p.ID, b.ID, "2") // vendido después de recibir
	uc := newPurchaseReturns(s, nil)

	_, err := uc.Create(context.Background(), inventory.Actor{}, devolucion(rc.ID, rc.Items[0].ID, "5"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Stock cannot be negative")
	assert.True(t, s.StockOf(p.ID, b.ID).Equal(decimal.NewFromInt(2)))

	list, page, err := uc.List(context.Background(), dto.ReturnQuery{ReceivingID: rc.ID})
	require.NoError(t, err)
	assert.Empty(t, list)
	assert.Equal(t, 0, page.Total)
}

func TestPurchaseReturn_AnularRepone(t *testing.T) {
	s := memstore.New()
	b := s.AddBranch("B1", "Centro")
	p, _ := s.AddProduct("SKU-1", "Agua", "100", "150")
	rc := recibir(t, s, b.ID, p.ID, "", "4", "100")
	uc := newPurchaseReturns(s, nil)
	ctx := context.Background()

	ret, err := uc.Create(ctx, inventory.Actor{}, devolucion(rc.ID, rc.Items[0].ID, "4"))
	require.NoError(t, err)
	require.True(t, s.StockOf(p.ID, b.ID).IsZero())

	out, err := uc.Cancel(ctx, inventory.Actor{UserID: "manager-1"}, ret.ID)
	require.NoError(t, err)
	assert.Equal(t, entity.PurchaseReturnCancelled, out.Status)
	assert.True(t, s.StockOf(p.ID, b.ID).Equal(decimal.NewFromInt(4)))

	_, err = uc.Cancel(ctx, inventory.Actor{}, ret.ID)
	assert.EqualError(t, err, "Purchase return is already cancelled")

	// la anulada ya no cuenta contra lo recibido
	_, err = uc.Create(ctx, inventory.Actor{}, devolucion(rc.ID, rc.Items[0].ID, "4"))
	require.NoError(t, err)
	assert.True(t, s.StockOf(p.ID, b.ID).IsZero())
}

func TestPurchaseReturn_Referencias(t *testing.T) {
	s := memstore.New()
	b := s.AddBranch("B1", "Centro")
	p, _ := s.AddProduct("SKU-1", "Agua", "100", "150")
	rc := recibir(t, s, b.ID, p.ID, "", "4", "100")
	uc := newPurchaseReturns(s, nil)
	ctx := context.Background()

	_, err := uc.Create(ctx, inventory.Actor{}, devolucion(uuid.New().String(), rc.Items[0].ID, "1"))
	assert.EqualError(t, err, "Receiving not found")

	_, err = uc.Create(ctx, inventory.Actor{}, devolucion(rc.ID, uuid.New().String(), "1"))
	assert.EqualError(t, err, "Receiving item not found")

	in := devolucion(rc.ID, rc.Items[0].ID, "1")
	missing := uuid.New().String()
	in.SupplierID = &missing
	_, err = uc.Create(ctx, inventory.Actor{}, in)
	assert.EqualError(t, err, "Supplier not found")

	_, err = uc.Create(ctx, inventory.Actor{}, devolucion(rc.ID, rc.Items[0].ID, "0"))
	assert.True(t, errors.Is(err, domain.ErrInvalidInput))

	_, err = uc.Cancel(ctx, inventory.Actor{}, uuid.New().String())
	assert.True(t, errors.Is(err, domain.ErrNotFound))
	assert.True(t, s.StockOf(p.ID, b.ID).Equal(decimal.NewFromInt(4)))
}
