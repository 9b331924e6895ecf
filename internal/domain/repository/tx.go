package repository

import "context"

// TxRepos repositorios atados a una misma transacción.
type TxRepos struct {
	Products   ProductRepository
	Stocks     StockRepository
	Units      UnitRepository
	Prices     PriceRepository
	Branches   BranchRepository
	Audit      AuditRepository
	Sales      SaleRepository
	Receivings ReceivingRepository

	Suppliers       SupplierRepository
	PurchaseReturns PurchaseReturnRepository
	SalesReturns    SalesReturnRepository
}

// TxRunner ejecuta fn dentro de una transacción de BD: Commit si fn retorna nil, Rollback si no.
type TxRunner interface {
	Run(ctx context.Context, fn func(repos TxRepos) error) error
}
