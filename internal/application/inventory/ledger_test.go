package inventory_test

import (
	"context"
	"encoding/json"
	"errors"
	"sort"
	"sync"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/ArtEnginer/POS/internal/application/inventory"
	"github.com/ArtEnginer/POS/internal/application/ports"
	"github.com/ArtEnginer/POS/internal/domain"
	"github.com/ArtEnginer/POS/internal/domain/entity"
	domaininv "github.com/ArtEnginer/POS/internal/domain/inventory"
	"github.com/ArtEnginer/POS/internal/domain/repository"
	"github.com/ArtEnginer/POS/internal/testutil/memstore"
)

type notifierMock struct{ mock.Mock }

func (m *notifierMock) Publish(eventType string, data any) { m.Called(eventType, data) }

func newLedger(s *memstore.Store, n ports.Notifier) *inventory.StockLedger {
	return inventory.NewStockLedger(s, s.Products(), s.Branches(), s.Stocks(), s.Audit(), nil, n, nil)
}

func qty(v string) *decimal.Decimal {
	d := decimal.RequireFromString(v)
	return &d
}

func TestAdjustStock_Operaciones(t *testing.T) {
	s := memstore.New()
	b := s.AddBranch("B1", "Centro")
	p, _ := s.AddProduct("SKU-1", "Arroz", "1000", "1500")
	l := newLedger(s, nil)
	ctx := context.Background()

	out, err := l.AdjustStock(ctx, inventory.AdjustStockInput{ProductID: p.ID, BranchID: b.ID, Quantity: qty("10"), Operation: "set"})
	require.NoError(t, err)
	assert.True(t, out.Stock.Quantity.Equal(decimal.NewFromInt(10)))
	assert.Equal(t, "Centro", out.Stock.BranchName)
	assert.Equal(t, "set", out.Change.Operation)

	out, err = l.AdjustStock(ctx, inventory.AdjustStockInput{ProductID: p.ID, BranchID: b.ID, Quantity: qty("5"), Operation: "add"})
	require.NoError(t, err)
	assert.True(t, out.Change.OldQuantity.Equal(decimal.NewFromInt(10)))
	assert.True(t, out.Change.NewQuantity.Equal(decimal.NewFromInt(15)))
	assert.True(t, out.Change.Difference.Equal(decimal.NewFromInt(5)))

	out, err = l.AdjustStock(ctx, inventory.AdjustStockInput{ProductID: p.ID, BranchID: b.ID, Quantity: qty("15"), Operation: "subtract"})
	require.NoError(t, err)
	assert.True(t, out.Stock.Quantity.IsZero())
	assert.True(t, out.Stock.AvailableQuantity.IsZero())

	// operación vacía equivale a set
	out, err = l.AdjustStock(ctx, inventory.AdjustStockInput{ProductID: p.ID, BranchID: b.ID, Quantity: qty("7")})
	require.NoError(t, err)
	assert.Equal(t, "set", out.Change.Operation)
	assert.True(t, s.StockOf(p.ID, b.ID).Equal(decimal.NewFromInt(7)))
}

func TestAdjustStock_NegativoRevierteSinCambios(t *testing.T) {
	s := memstore.New()
	b := s.AddBranch("B1", "Centro")
	p, _ := s.AddProduct("SKU-1", "Arroz", "1000", "1500")
	s.SetStock(p.ID, b.ID, "10")
	n := &notifierMock{}
	l := newLedger(s, n)

	_, err := l.AdjustStock(context.Background(), inventory.AdjustStockInput{
		ProductID: p.ID, BranchID: b.ID, Quantity: qty("15"), Operation: "subtract",
	})
	require.Error(t, err)
	var ve *domain.ValidationError
	require.ErrorAs(t, err, &ve)
	assert.Contains(t, ve.Message, "Stock cannot be negative")

	assert.True(t, s.StockOf(p.ID, b.ID).Equal(decimal.NewFromInt(10)))
	assert.EqualValues(t, 1, s.Rollbacks())
	logs, err := s.Audit().ListByEntity(context.Background(), entity.AuditEntityProductStock, p.ID, 10)
	require.NoError(t, err)
	assert.Empty(t, logs, "el rollback no deja audit log")
	n.AssertNotCalled(t, "Publish", mock.Anything, mock.Anything)
}

func TestAdjustStock_Validaciones(t *testing.T) {
	s := memstore.New()
	b := s.AddBranch("B1", "Centro")
	p, _ := s.AddProduct("SKU-1", "Arroz", "1000", "1500")
	l := newLedger(s, nil)
	ctx := context.Background()

	_, err := l.AdjustStock(ctx, inventory.AdjustStockInput{ProductID: p.ID, BranchID: b.ID})
	assert.True(t, errors.Is(err, domain.ErrInvalidInput), "quantity requerido")

	_, err = l.AdjustStock(ctx, inventory.AdjustStockInput{ProductID: p.ID, Quantity: qty("1")})
	assert.True(t, errors.Is(err, domain.ErrInvalidInput), "branch requerido")

	_, err = l.AdjustStock(ctx, inventory.AdjustStockInput{ProductID: p.ID, BranchID: b.ID, Quantity: qty("1"), Operation: "divide"})
	assert.True(t, errors.Is(err, domain.ErrInvalidInput))

	_, err = l.AdjustStock(ctx, inventory.AdjustStockInput{ProductID: "nope", BranchID: b.ID, Quantity: qty("1")})
	assert.True(t, errors.Is(err, domain.ErrNotFound))
	assert.EqualError(t, err, "Product not found")

	_, err = l.AdjustStock(ctx, inventory.AdjustStockInput{ProductID: p.ID, BranchID: "nope", Quantity: qty("1")})
	assert.EqualError(t, err, "Branch not found")

	assert.EqualValues(t, 0, s.Commits())
}

func TestAdjustStock_AuditaYPublica(t *testing.T) {
	s := memstore.New()
	b := s.AddBranch("B1", "Centro")
	p, _ := s.AddProduct("SKU-1", "Arroz", "1000", "1500")
	s.SetStock(p.ID, b.ID, "4")

	n := &notifierMock{}
	n.On("Publish", ports.EventStockUpdate, mock.MatchedBy(func(data map[string]any) bool {
		return data["productId"] == p.ID && data["branchId"] == b.ID && data["operation"] == "add"
	})).Once()
	l := newLedger(s, n)

	_, err := l.AdjustStock(context.Background(), inventory.AdjustStockInput{
		ProductID: p.ID, BranchID: b.ID, Quantity: qty("6"), Operation: "add",
		Actor: inventory.Actor{UserID: "u-1", IPAddress: "10.0.0.1", UserAgent: "test"},
	})
	require.NoError(t, err)
	n.AssertExpectations(t)

	history, err := l.History(context.Background(), p.ID, 10)
	require.NoError(t, err)
	require.Len(t, history, 1)
	assert.Equal(t, entity.AuditActionStockUpdate, history[0].Action)
	assert.Equal(t, "u-1", history[0].UserID)
	assert.Equal(t, b.ID, history[0].BranchID)
	assert.Equal(t, "10.0.0.1", history[0].IPAddress)

	raw, err := json.Marshal(history[0].NewData)
	require.NoError(t, err)
	assert.JSONEq(t, `{"quantity":10,"operation":"add"}`, string(raw))
}

func TestAdjustStock_SubtractConcurrenteSoloUnoGana(t *testing.T) {
	s := memstore.New()
	b := s.AddBranch("B1", "Centro")
	p, _ := s.AddProduct("SKU-1", "Arroz", "1000", "1500")
	s.SetStock(p.ID, b.ID, "1")
	l := newLedger(s, nil)

	const workers = 8
	var (
		wg       sync.WaitGroup
		mu       sync.Mutex
		ok, fail int
	)
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := l.AdjustStock(context.Background(), inventory.AdjustStockInput{
				ProductID: p.ID, BranchID: b.ID, Quantity: qty("1"), Operation: "subtract",
			})
			mu.Lock()
			defer mu.Unlock()
			if err == nil {
				ok++
			} else {
				fail++
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, 1, ok)
	assert.Equal(t, workers-1, fail)
	assert.True(t, s.StockOf(p.ID, b.ID).IsZero())
}

// stocksSpy registra el orden en que se bloquean las filas de stock.
type stocksSpy struct {
	repository.StockRepository
	mu     sync.Mutex
	locked []string
}

func (s *stocksSpy) GetForUpdate(ctx context.Context, productID, branchID string) (*entity.ProductStock, error) {
	s.mu.Lock()
	s.locked = append(s.locked, productID)
	s.mu.Unlock()
	return s.StockRepository.GetForUpdate(ctx, productID, branchID)
}

func subtractAll(branchID string, productIDs ...string) []inventory.ApplyInput {
	out := make([]inventory.ApplyInput, 0, len(productIDs))
	for _, id := range productIDs {
		out = append(out, inventory.ApplyInput{
			ProductID: id, BranchID: branchID, Quantity: decimal.NewFromInt(2), Operation: domaininv.OperationSubtract,
		})
	}
	return out
}

func TestApplyBatchInTx_BloqueaEnOrdenDeProducto(t *testing.T) {
	s := memstore.New()
	b := s.AddBranch("B1", "Centro")
	p1, _ := s.AddProduct("SKU-1", "Arroz", "1000", "1500")
	p2, _ := s.AddProduct("SKU-2", "Frijol", "1000", "1500")
	p3, _ := s.AddProduct("SKU-3", "Sal", "1000", "1500")
	for _, p := range []*entity.Product{p1, p2, p3} {
		s.SetStock(p.ID, b.ID, "10")
	}
	l := newLedger(s, nil)
	spy := &stocksSpy{}

	var results []*inventory.ApplyResult
	err := s.Run(context.Background(), func(repos repository.TxRepos) error {
		spy.StockRepository = repos.Stocks
		repos.Stocks = spy
		var err error
		results, err = l.ApplyBatchInTx(context.Background(), repos, subtractAll(b.ID, p3.ID, p1.ID, p2.ID, p1.ID))
		return err
	})
	require.NoError(t, err)

	assert.True(t, sort.StringsAreSorted(spy.locked), "orden de bloqueo %v", spy.locked)
	require.Len(t, results, 4)
	assert.Equal(t, p3.ID, results[0].Stock.ProductID, "resultados en el orden de entrada")
	assert.Equal(t, "10", results[1].OldQuantity.String())
	assert.Equal(t, "8", results[3].OldQuantity.String(), "la línea repetida ve la resta anterior")
	assert.Equal(t, "6", s.StockOf(p1.ID, b.ID).String())
	assert.Equal(t, "8", s.StockOf(p3.ID, b.ID).String())
}

func TestApplyBatchInTx_OrdenesCruzadasNoSeBloquean(t *testing.T) {
	s := memstore.New()
	b := s.AddBranch("B1", "Centro")
	p1, _ := s.AddProduct("SKU-1", "Arroz", "1000", "1500")
	p2, _ := s.AddProduct("SKU-2", "Frijol", "1000", "1500")
	s.SetStock(p1.ID, b.ID, "100")
	s.SetStock(p2.ID, b.ID, "100")
	l := newLedger(s, nil)

	const rounds = 20
	var wg sync.WaitGroup
	run := func(ids ...string) {
		defer wg.Done()
		for i := 0; i < rounds; i++ {
			err := s.Run(context.Background(), func(repos repository.TxRepos) error {
				_, err := l.ApplyBatchInTx(context.Background(), repos, subtractAll(b.ID, ids...))
				return err
			})
			assert.NoError(t, err)
		}
	}
	wg.Add(2)
	go run(p1.ID, p2.ID)
	go run(p2.ID, p1.ID)

	done := make(chan struct{})
	go func() {
		wg.Wait()
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("las transacciones cruzadas quedaron esperándose")
	}
	assert.Equal(t, "20", s.StockOf(p1.ID, b.ID).String())
	assert.Equal(t, "20", s.StockOf(p2.ID, b.ID).String())
}

func TestListStock(t *testing.T) {
	s := memstore.New()
	b1 := s.AddBranch("B1", "Centro")
	b2 := s.AddBranch("B2", "Norte")
	p, _ := s.AddProduct("SKU-1", "Arroz", "1000", "1500")
	s.SetStock(p.ID, b1.ID, "3")
	s.SetStock(p.ID, b2.ID, "8")
	l := newLedger(s, nil)

	all, err := l.ListStock(context.Background(), p.ID, "")
	require.NoError(t, err)
	assert.Len(t, all, 2)

	one, err := l.ListStock(context.Background(), p.ID, b2.ID)
	require.NoError(t, err)
	require.Len(t, one, 1)
	assert.True(t, one[0].Quantity.Equal(decimal.NewFromInt(8)))

	_, err = l.ListStock(context.Background(), "nope", "")
	assert.True(t, errors.Is(err, domain.ErrNotFound))
}
