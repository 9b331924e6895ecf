package usecase_test

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/ArtEnginer/POS/internal/application/dto"
	"github.com/ArtEnginer/POS/internal/application/ports"
	"github.com/ArtEnginer/POS/internal/application/usecase"
	"github.com/ArtEnginer/POS/internal/domain"
	"github.com/ArtEnginer/POS/internal/domain/repository"
	"github.com/ArtEnginer/POS/internal/testutil/memstore"
)

// ── dobles ──────────────────────────────────────────────────────────────────

type sheetStub struct {
	rows     []dto.ProductSheetRow
	exported []dto.ProductSheetRow
}

func (s *sheetStub) Export(rows []dto.ProductSheetRow) ([]byte, error) {
	s.exported = rows
	return []byte("xlsx"), nil
}

func (s *sheetStub) Template() ([]byte, error) { return []byte("template"), nil }

func (s *sheetStub) Parse(io.Reader, int) ([]dto.ProductSheetRow, error) { return s.rows, nil }

type lockerMock struct{ mock.Mock }

func (m *lockerMock) Obtain(ctx context.Context, key string, ttl time.Duration) (ports.Lock, error) {
	args := m.Called(key, ttl)
	lock, _ := args.Get(0).(ports.Lock)
	return lock, args.Error(1)
}

type lockMock struct{ mock.Mock }

func (m *lockMock) Release(context.Context) error { return m.Called().Error(0) }

type memCache struct {
	data map[string][]byte
}

func newMemCache() *memCache { return &memCache{data: map[string][]byte{}} }

func (c *memCache) Get(_ context.Context, key string, dest any) bool {
	raw, ok := c.data[key]
	return ok && json.Unmarshal(raw, dest) == nil
}

func (c *memCache) Set(_ context.Context, key string, value any, _ time.Duration) {
	raw, _ := json.Marshal(value)
	c.data[key] = raw
}

func (c *memCache) Del(_ context.Context, keys ...string) {
	for _, k := range keys {
		delete(c.data, k)
	}
}

func (c *memCache) DelPattern(_ context.Context, pattern string) int {
	prefix := pattern[:len(pattern)-1]
	n := 0
	for k := range c.data {
		if len(k) >= len(prefix) && k[:len(prefix)] == prefix {
			delete(c.data, k)
			n++
		}
	}
	return n
}

func (c *memCache) Exists(_ context.Context, key string) bool {
	_, ok := c.data[key]
	return ok
}

func newProducts(s *memstore.Store, d usecase.ProductDeps) *usecase.ProductUseCase {
	d.TxRunner, d.Products, d.Units, d.Prices, d.Stocks = s, s.Products(), s.Units(), s.Prices(), s.Stocks()
	return usecase.NewProductUseCase(d)
}

func raw(s string) json.RawMessage { return json.RawMessage(s) }

// ── tests ───────────────────────────────────────────────────────────────────

func TestCreateProduct_SiembraUnidadStockYPrecios(t *testing.T) {
	s := memstore.New()
	s.AddBranch("B1", "Centro")
	s.AddBranch("B2", "Norte")
	uc := newProducts(s, usecase.ProductDeps{})
	ctx := context.Background()

	out, err := uc.Create(ctx, dto.CreateProductRequest{
		SKU:          " SKU-1 ",
		Name:         "Arroz",
		Unit:         "kg",
		CostPrice:    raw(`"900.999"`),
		SellingPrice: raw(`1500`),
	})
	require.NoError(t, err)
	assert.Equal(t, "SKU-1", out.SKU)
	assert.Equal(t, "KG", out.Unit)
	assert.Equal(t, "901.00", out.CostPrice)
	assert.Equal(t, "1500.00", out.SellingPrice)
	assert.True(t, out.IsActive)

	complete, err := uc.GetComplete(ctx, out.ID, "")
	require.NoError(t, err)
	require.Len(t, complete.Units, 1)
	assert.True(t, complete.Units[0].IsBaseUnit)
	assert.Equal(t, "KG", complete.Units[0].UnitName)
	assert.Len(t, complete.Stocks, 2)
	require.Len(t, complete.Prices, 2)
	assert.Equal(t, "1500.00", complete.Prices[0].SellingPrice)
}

func TestCreateProduct_Validaciones(t *testing.T) {
	s := memstore.New()
	uc := newProducts(s, usecase.ProductDeps{})
	ctx := context.Background()

	_, err := uc.Create(ctx, dto.CreateProductRequest{SKU: "A", Name: "x"})
	assert.EqualError(t, err, "SKU, name, and selling price are required")

	_, err = uc.Create(ctx, dto.CreateProductRequest{SKU: "A", Name: "x", SellingPrice: raw(`"1e20"`)})
	assert.True(t, errors.Is(err, domain.ErrInvalidInput))

	neg := decimal.NewFromInt(-1)
	_, err = uc.Create(ctx, dto.CreateProductRequest{SKU: "A", Name: "x", SellingPrice: raw(`1`), MinStock: &neg})
	assert.EqualError(t, err, "minStock cannot be negative")

	_, err = uc.Create(ctx, dto.CreateProductRequest{SKU: "A", Name: "x", SellingPrice: raw(`1`)})
	require.NoError(t, err)
	_, err = uc.Create(ctx, dto.CreateProductRequest{SKU: "A", Name: "y", SellingPrice: raw(`1`)})
	assert.True(t, errors.Is(err, domain.ErrConflict))
}

func TestGetProduct_UsaCache(t *testing.T) {
	s := memstore.New()
	cache := newMemCache()
	p, _ := s.AddProduct("SKU-1", "Arroz", "1000", "1500")
	uc := newProducts(s, usecase.ProductDeps{Cache: cache})
	ctx := context.Background()

	first, err := uc.Get(ctx, p.ID)
	require.NoError(t, err)
	assert.True(t, cache.Exists(ctx, ports.ProductCacheKey(p.ID)))

	// cambio directo en el repositorio: la caché sigue sirviendo la versión anterior
	p.Name = "Arroz integral"
	require.NoError(t, s.Products().Update(ctx, p))
	cached, err := uc.Get(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, first.Name, cached.Name)

	// un update por el caso de uso invalida
	name := "Arroz blanco"
	_, err = uc.Update(ctx, p.ID, dto.UpdateProductRequest{Name: &name})
	require.NoError(t, err)
	fresh, err := uc.Get(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, "Arroz blanco", fresh.Name)
}

func TestUpdateProduct_RenombraUnidadBase(t *testing.T) {
	s := memstore.New()
	p, base := s.AddProduct("SKU-1", "Arroz", "1000", "1500")
	uc := newProducts(s, usecase.ProductDeps{})
	ctx := context.Background()

	unit := "kg"
	out, err := uc.Update(ctx, p.ID, dto.UpdateProductRequest{Unit: &unit, SellingPrice: raw(`"1750.5"`)})
	require.NoError(t, err)
	assert.Equal(t, "KG", out.Unit)
	assert.Equal(t, "1750.50", out.SellingPrice)
	assert.Equal(t, "1000.00", out.CostPrice, "el costo no se edita aquí")

	got, err := s.Units().GetByID(ctx, p.ID, base.ID)
	require.NoError(t, err)
	assert.Equal(t, "KG", got.UnitName)

	_, err = uc.Update(ctx, p.ID, dto.UpdateProductRequest{SellingPrice: raw(`-3`)})
	assert.EqualError(t, err, "Valid selling price is required")

	_, err = uc.Update(ctx, "nope", dto.UpdateProductRequest{})
	assert.True(t, errors.Is(err, domain.ErrNotFound))
}

func TestDeleteProduct(t *testing.T) {
	s := memstore.New()
	s.AddBranch("B1", "Centro")
	p, _ := s.AddProduct("SKU-1", "Arroz", "1000", "1500")
	uc := newProducts(s, usecase.ProductDeps{})
	ctx := context.Background()

	require.NoError(t, uc.Delete(ctx, p.ID))
	_, err := uc.Get(ctx, p.ID)
	assert.True(t, errors.Is(err, domain.ErrNotFound))
	prices, err := s.Prices().ListByProduct(ctx, p.ID, repository.PriceFilter{})
	require.NoError(t, err)
	assert.Empty(t, prices)

	assert.True(t, errors.Is(uc.Delete(ctx, p.ID), domain.ErrNotFound))
}

func TestListProducts_Paginado(t *testing.T) {
	s := memstore.New()
	b := s.AddBranch("B1", "Centro")
	for _, sku := range []string{"A", "B", "C"} {
		p, _ := s.AddProduct(sku, "Producto "+sku, "1", "2")
		s.SetStock(p.ID, b.ID, "4")
	}
	uc := newProducts(s, usecase.ProductDeps{Cache: newMemCache()})

	items, pag, err := uc.List(context.Background(), dto.ProductQuery{PageQuery: dto.PageQuery{Page: 1, Limit: 2}})
	require.NoError(t, err)
	assert.Len(t, items, 2)
	assert.Equal(t, 3, pag.Total)
	assert.Equal(t, 2, pag.TotalPages)
	require.NotNil(t, items[0].StockQuantity)
	assert.True(t, items[0].StockQuantity.Equal(decimal.NewFromInt(4)))

	// segunda lectura sale de caché con el mismo resultado
	again, pag2, err := uc.List(context.Background(), dto.ProductQuery{PageQuery: dto.PageQuery{Page: 1, Limit: 2}})
	require.NoError(t, err)
	assert.Equal(t, items[0].ID, again[0].ID)
	assert.Equal(t, pag.Total, pag2.Total)

	_, _, err = uc.List(context.Background(), dto.ProductQuery{IsActive: "quizás"})
	assert.True(t, errors.Is(err, domain.ErrInvalidInput))
}

func TestSearchProducts(t *testing.T) {
	s := memstore.New()
	s.AddProduct("SKU-1", "Arroz", "1", "2")
	s.AddProduct("SKU-2", "Aceite", "1", "2")
	uc := newProducts(s, usecase.ProductDeps{})

	out, err := uc.Search(context.Background(), "arroz", 0)
	require.NoError(t, err)
	require.Len(t, out, 1)
	assert.Equal(t, "SKU-1", out[0].SKU)

	_, err = uc.Search(context.Background(), "  ", 10)
	assert.True(t, errors.Is(err, domain.ErrInvalidInput))
}

func TestClearCache(t *testing.T) {
	s := memstore.New()
	cache := newMemCache()
	uc := newProducts(s, usecase.ProductDeps{Cache: cache})
	ctx := context.Background()

	cache.Set(ctx, ports.ProductCacheKey("p1"), "x", 0)
	cache.Set(ctx, ports.ProductCacheKey("p2"), "x", 0)
	cache.Set(ctx, ports.ProductsListPrefix+"list:a", "x", 0)

	assert.Equal(t, 2, uc.ClearCache(ctx, "p1"))
	assert.True(t, cache.Exists(ctx, ports.ProductCacheKey("p2")))
	assert.Equal(t, 1, uc.ClearCache(ctx, ""))
}

func TestImport_CreaYActualiza(t *testing.T) {
	s := memstore.New()
	b := s.AddBranch("B1", "Centro")
	existing, _ := s.AddProduct("SKU-1", "Arroz", "1000", "1500")
	sheet := &sheetStub{rows: []dto.ProductSheetRow{
		{Row: 2, SKU: "SKU-1", Name: "Arroz premium", SellingPrice: "1800"},
		{Row: 3, SKU: "SKU-9", Name: "Frijol", Unit: "kg", CostPrice: "700", SellingPrice: "950.499"},
		{Row: 4, SKU: "SKU-10", Name: "Sal", SellingPrice: "10", TaxRate: "-1"},
		{Row: 5, SKU: "", Name: "Sin sku", SellingPrice: "1"},
	}}
	lock := &lockMock{}
	lock.On("Release").Return(nil).Once()
	locker := &lockerMock{}
	locker.On("Obtain", "lock:products:import", 5*time.Minute).Return(lock, nil).Once()
	uc := newProducts(s, usecase.ProductDeps{Sheet: sheet, Locker: locker})
	ctx := context.Background()

	res, err := uc.Import(ctx, bytes.NewReader(nil))
	require.NoError(t, err)
	assert.Equal(t, 1, res.Imported)
	assert.Equal(t, 1, res.Updated)
	assert.Equal(t, 2, res.Failed)
	require.Len(t, res.Errors, 2)
	assert.Equal(t, 4, res.Errors[0].Row)
	assert.Equal(t, "Invalid taxRate: -1", res.Errors[0].Message)
	locker.AssertExpectations(t)
	lock.AssertExpectations(t)

	updated, err := s.Products().GetByID(ctx, existing.ID)
	require.NoError(t, err)
	assert.Equal(t, "Arroz premium", updated.Name)
	assert.Equal(t, "1800.00", updated.SellingPrice.StringFixed(2))

	created, err := s.Products().GetBySKU(ctx, "SKU-9")
	require.NoError(t, err)
	require.NotNil(t, created)
	assert.Equal(t, "KG", created.Unit)
	assert.Equal(t, "950.50", created.SellingPrice.StringFixed(2))
	stock, err := s.Stocks().ListByProduct(ctx, created.ID, b.ID)
	require.NoError(t, err)
	assert.Len(t, stock, 1, "la fila nueva siembra stock por sucursal")
}

func TestImport_LockOcupado(t *testing.T) {
	s := memstore.New()
	locker := &lockerMock{}
	locker.On("Obtain", mock.Anything, mock.Anything).Return(nil, ports.ErrLockNotObtained)
	uc := newProducts(s, usecase.ProductDeps{Sheet: &sheetStub{}, Locker: locker})

	_, err := uc.Import(context.Background(), bytes.NewReader(nil))
	assert.True(t, errors.Is(err, domain.ErrConflict))
	assert.EqualError(t, err, "Another product import is in progress")
}

func TestExport(t *testing.T) {
	s := memstore.New()
	b := s.AddBranch("B1", "Centro")
	p, _ := s.AddProduct("SKU-1", "Arroz", "1000", "1500")
	s.SetStock(p.ID, b.ID, "12")
	sheet := &sheetStub{}
	uc := newProducts(s, usecase.ProductDeps{Sheet: sheet})

	out, err := uc.Export(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "xlsx", string(out))
	require.Len(t, sheet.exported, 1)
	assert.Equal(t, "1500.00", sheet.exported[0].SellingPrice)
	assert.Equal(t, "12", sheet.exported[0].Stock)

	tpl, err := uc.Template()
	require.NoError(t, err)
	assert.Equal(t, "template", string(tpl))

	_, err = newProducts(s, usecase.ProductDeps{}).Export(context.Background())
	assert.Error(t, err)
}
