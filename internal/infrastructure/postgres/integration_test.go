package postgres_test

import (
	"context"
	"encoding/json"
	"errors"
	"os"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/joho/godotenv"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ArtEnginer/POS/internal/application/dto"
	"github.com/ArtEnginer/POS/internal/application/inventory"
	"github.com/ArtEnginer/POS/internal/application/pricing"
	"github.com/ArtEnginer/POS/internal/application/usecase"
	"github.com/ArtEnginer/POS/internal/domain"
	"github.com/ArtEnginer/POS/internal/infrastructure/postgres"
	"github.com/ArtEnginer/POS/pkg/config"
)

// setupTestDB conecta a TEST_DATABASE_URL, aplica migraciones y vacía las tablas.
// Sin la variable el test se omite para no tocar una base real.
func setupTestDB(t *testing.T) *pgxpool.Pool {
	t.Helper()
	_ = godotenv.Load("../../../.env")

	dbURL := os.Getenv("TEST_DATABASE_URL")
	if dbURL == "" {
		t.Skip("TEST_DATABASE_URL no definida: se omite el test de integración")
	}

	ctx := context.Background()
	pool, err := postgres.NewPool(ctx, config.DBConfig{DatabaseURL: dbURL, MaxConns: 10})
	require.NoError(t, err)
	t.Cleanup(pool.Close)

	_, err = postgres.Migrate(ctx, pool)
	require.NoError(t, err)

	_, err = pool.Exec(ctx, `
		TRUNCATE TABLE sales_return_items, sales_returns, purchase_return_items, purchase_returns, suppliers,
			receiving_items, receivings, sale_items, sales, customers, audit_logs,
			product_branch_prices, product_stocks, product_units, products, categories, users, branches
		CASCADE`)
	require.NoError(t, err)
	return pool
}

type fixture struct {
	ledger   *inventory.StockLedger
	prices   *pricing.PriceResolver
	branchID string
	product  *dto.ProductResponse
	baseUnit string
}

func newFixture(t *testing.T, pool *pgxpool.Pool) fixture {
	t.Helper()
	ctx := context.Background()
	tx := postgres.NewTxRunner(pool)
	products := postgres.NewProductRepository(pool)
	branches := postgres.NewBranchRepository(pool)
	units := postgres.NewUnitRepository(pool)
	prices := postgres.NewPriceRepository(pool)
	stocks := postgres.NewStockRepository(pool)

	branch, err := usecase.NewBranchUseCase(tx, branches).Create(ctx, dto.BranchRequest{Code: "B1", Name: "Centro"})
	require.NoError(t, err)

	productUC := usecase.NewProductUseCase(usecase.ProductDeps{
		TxRunner: tx, Products: products, Units: units, Prices: prices, Stocks: stocks,
	})
	product, err := productUC.Create(ctx, dto.CreateProductRequest{
		SKU:          "SKU-INT-1",
		Name:         "Arroz",
		CostPrice:    json.RawMessage(`"1000"`),
		SellingPrice: json.RawMessage(`"1500"`),
	})
	require.NoError(t, err)
	complete, err := productUC.GetComplete(ctx, product.ID, "")
	require.NoError(t, err)
	require.NotEmpty(t, complete.Units)

	return fixture{
		ledger:   inventory.NewStockLedger(tx, products, branches, stocks, postgres.NewAuditRepository(pool), nil, nil, nil),
		prices:   pricing.NewPriceResolver(tx, products, units, prices, nil, nil, nil),
		branchID: branch.ID,
		product:  product,
		baseUnit: complete.Units[0].ID,
	}
}

func qty(v string) *decimal.Decimal {
	d := decimal.RequireFromString(v)
	return &d
}

func TestIntegration_StockNuncaNegativoConConcurrencia(t *testing.T) {
	pool := setupTestDB(t)
	f := newFixture(t, pool)
	ctx := context.Background()

	_, err := f.ledger.AdjustStock(ctx, inventory.AdjustStockInput{
		ProductID: f.product.ID, BranchID: f.branchID, Quantity: qty("3"), Operation: "set",
	})
	require.NoError(t, err)

	const workers = 10
	var wg sync.WaitGroup
	var ok, rejected atomic.Int32
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := f.ledger.AdjustStock(ctx, inventory.AdjustStockInput{
				ProductID: f.product.ID, BranchID: f.branchID, Quantity: qty("1"), Operation: "subtract",
			})
			switch {
			case err == nil:
				ok.Add(1)
			case errors.Is(err, domain.ErrInvalidInput):
				rejected.Add(1)
			default:
				t.Errorf("error inesperado: %v", err)
			}
		}()
	}
	wg.Wait()

	assert.EqualValues(t, 3, ok.Load())
	assert.EqualValues(t, workers-3, rejected.Load())

	list, err := f.ledger.ListStock(ctx, f.product.ID, f.branchID)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.True(t, list[0].Quantity.IsZero(), "quedó %s", list[0].Quantity)

	history, err := f.ledger.History(ctx, f.product.ID, 50)
	require.NoError(t, err)
	assert.Len(t, history, 4, "set inicial más tres restas exitosas")
}

func TestIntegration_UpsertPrecioIdempotente(t *testing.T) {
	pool := setupTestDB(t)
	f := newFixture(t, pool)
	ctx := context.Background()

	in := dto.UpsertPriceRequest{
		BranchID:     f.branchID,
		UnitID:       f.baseUnit,
		SellingPrice: json.RawMessage(`"2500.555"`),
	}
	first, err := f.prices.UpsertPrice(ctx, f.product.ID, in)
	require.NoError(t, err)
	assert.Equal(t, "2500.56", first.SellingPrice)

	in.SellingPrice = json.RawMessage(`"99999999999999"`)
	_, err = f.prices.UpsertPrice(ctx, f.product.ID, in)
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	in.SellingPrice = json.RawMessage(`1800`)
	second, err := f.prices.UpsertPrice(ctx, f.product.ID, in)
	require.NoError(t, err)
	assert.Equal(t, first.ID, second.ID, "el upsert reutiliza la fila (branch, product, unit)")
	assert.Equal(t, "1800.00", second.SellingPrice)
}

func TestIntegration_ProveedorYDevolucion(t *testing.T) {
	pool := setupTestDB(t)
	f := newFixture(t, pool)
	ctx := context.Background()
	tx := postgres.NewTxRunner(pool)
	actor := inventory.Actor{UserID: "00000000-0000-0000-0000-0000000000aa"}

	suppliers := usecase.NewSupplierUseCase(postgres.NewSupplierRepository(pool))
	sup, err := suppliers.Create(ctx, dto.SupplierRequest{Code: "SUP-1", Name: "Distribuidora Norte"})
	require.NoError(t, err)
	_, err = suppliers.Create(ctx, dto.SupplierRequest{Code: "SUP-1", Name: "Duplicado"})
	assert.ErrorIs(t, err, domain.ErrConflict)

	receivings := inventory.NewReceivingUseCase(tx, f.ledger, postgres.NewReceivingRepository(pool), nil)
	rc, err := receivings.Create(ctx, actor, dto.CreateReceivingRequest{
		BranchID: f.branchID,
		Items:    []dto.ReceivingItemInput{{ProductID: f.product.ID, Quantity: decimal.NewFromInt(4)}},
	})
	require.NoError(t, err)
	require.Len(t, rc.Items, 1)

	returns := inventory.NewPurchaseReturnUseCase(tx, f.ledger, postgres.NewPurchaseReturnRepository(pool), nil)
	pr, err := returns.Create(ctx, actor, dto.CreatePurchaseReturnRequest{
		ReceivingID: rc.ID,
		SupplierID:  &sup.ID,
		Items:       []dto.PurchaseReturnItemInput{{ReceivingItemID: rc.Items[0].ID, Quantity: decimal.NewFromInt(3)}},
	})
	require.NoError(t, err)
	assert.Equal(t, "Distribuidora Norte", pr.SupplierName)

	_, err = returns.Create(ctx, actor, dto.CreatePurchaseReturnRequest{
		ReceivingID: rc.ID,
		Items:       []dto.PurchaseReturnItemInput{{ReceivingItemID: rc.Items[0].ID, Quantity: decimal.NewFromInt(2)}},
	})
	assert.ErrorIs(t, err, domain.ErrInvalidInput, "solo queda 1 por devolver")

	list, err := f.ledger.ListStock(ctx, f.product.ID, f.branchID)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, "1", list[0].Quantity.String())

	_, err = returns.Cancel(ctx, actor, pr.ID)
	require.NoError(t, err)
	list, err = f.ledger.ListStock(ctx, f.product.ID, f.branchID)
	require.NoError(t, err)
	assert.Equal(t, "4", list[0].Quantity.String())

	require.NoError(t, suppliers.Delete(ctx, sup.ID))
	_, err = suppliers.Create(ctx, dto.SupplierRequest{Code: "SUP-1", Name: "Reutiliza el código"})
	assert.NoError(t, err)
}
