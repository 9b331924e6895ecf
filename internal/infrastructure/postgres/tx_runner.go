package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/ArtEnginer/POS/internal/domain/repository"
)

var _ repository.TxRunner = (*TxRunner)(nil)

// TxRunner ejecuta callbacks dentro de una transacción PostgreSQL.
type TxRunner struct {
	pool *pgxpool.Pool
}

// NewTxRunner construye el runner con el pool.
func NewTxRunner(pool *pgxpool.Pool) *TxRunner {
	return &TxRunner{pool: pool}
}

// Run inicia una transacción, ejecuta fn con repos atados a la tx y hace Commit o Rollback.
// Los FOR UPDATE tomados por los repos se liberan al terminar.
func (r *TxRunner) Run(ctx context.Context, fn func(repos repository.TxRepos) error) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	repos := repository.TxRepos{
		Products:   NewProductRepository(tx),
		Stocks:     NewStockRepository(tx),
		Units:      NewUnitRepository(tx),
		Prices:     NewPriceRepository(tx),
		Branches:   NewBranchRepository(tx),
		Audit:      NewAuditRepository(tx),
		Sales:      NewSaleRepository(tx),
		Receivings: NewReceivingRepository(tx),

		Suppliers:       NewSupplierRepository(tx),
		PurchaseReturns: NewPurchaseReturnRepository(tx),
		SalesReturns:    NewSalesReturnRepository(tx),
	}

	if err := fn(repos); err != nil {
		return err
	}
	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}
	return nil
}
