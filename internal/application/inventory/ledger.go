// Package inventory contiene el libro de stock: ajustes set/add/subtract por sucursal,
// serializados con bloqueo de fila y auditados en la misma transacción.
package inventory

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"

	"github.com/ArtEnginer/POS/internal/application/dto"
	"github.com/ArtEnginer/POS/internal/application/ports"
	"github.com/ArtEnginer/POS/internal/domain"
	"github.com/ArtEnginer/POS/internal/domain/entity"
	domaininv "github.com/ArtEnginer/POS/internal/domain/inventory"
	"github.com/ArtEnginer/POS/internal/domain/repository"
)

// Actor quién origina el cambio (para audit_logs).
type Actor struct {
	UserID    string
	IPAddress string
	UserAgent string
}

// AdjustStockInput entrada de AdjustStock. Quantity nil equivale a "no enviada".
type AdjustStockInput struct {
	ProductID string
	BranchID  string
	Quantity  *decimal.Decimal
	Operation string
	Actor     Actor
}

// ApplyInput ajuste ejecutado dentro de la transacción del caller (ventas, recepciones).
type ApplyInput struct {
	ProductID string
	BranchID  string
	Quantity  decimal.Decimal
	Operation domaininv.Operation
	Actor     Actor
	// Reference queda en new_data del audit log, ej. "sale:INV-20240101-0001".
	Reference string
}

// ApplyResult resultado del ajuste.
type ApplyResult struct {
	Stock       *entity.ProductStock
	OldQuantity decimal.Decimal
	NewQuantity decimal.Decimal
	Operation   domaininv.Operation
}

// Difference newQuantity - oldQuantity.
func (r *ApplyResult) Difference() decimal.Decimal {
	return r.NewQuantity.Sub(r.OldQuantity)
}

// StockLedger caso de uso del libro de stock.
type StockLedger struct {
	txRunner repository.TxRunner
	products repository.ProductRepository
	branches repository.BranchRepository
	stocks   repository.StockRepository
	audit    repository.AuditRepository
	cache    ports.Cache
	notifier ports.Notifier
	metrics  ports.Recorder
}

// NewStockLedger construye el caso de uso. cache, notifier y metrics pueden ser nil.
func NewStockLedger(
	txRunner repository.TxRunner,
	products repository.ProductRepository,
	branches repository.BranchRepository,
	stocks repository.StockRepository,
	audit repository.AuditRepository,
	cache ports.Cache,
	notifier ports.Notifier,
	metrics ports.Recorder,
) *StockLedger {
	if cache == nil {
		cache = ports.NopCache{}
	}
	if notifier == nil {
		notifier = ports.NopNotifier{}
	}
	if metrics == nil {
		metrics = ports.NopRecorder{}
	}
	return &StockLedger{
		txRunner: txRunner,
		products: products,
		branches: branches,
		stocks:   stocks,
		audit:    audit,
		cache:    cache,
		notifier: notifier,
		metrics:  metrics,
	}
}

// AdjustStock valida, abre una transacción, bloquea la fila (producto, sucursal), aplica la
// operación, persiste, audita y hace Commit. Un resultado negativo hace Rollback y la fila
// queda intacta.
func (l *StockLedger) AdjustStock(ctx context.Context, in AdjustStockInput) (*dto.AdjustStockResponse, error) {
	if in.BranchID == "" || in.Quantity == nil {
		return nil, domain.NewValidationError("Branch ID and quantity are required", nil)
	}
	op, err := domaininv.ParseOperation(in.Operation)
	if err != nil {
		return nil, err
	}

	product, err := l.products.GetByID(ctx, in.ProductID)
	if err != nil {
		return nil, err
	}
	if product == nil {
		return nil, domain.NewNotFoundError("Product not found")
	}
	branch, err := l.branches.GetByID(ctx, in.BranchID)
	if err != nil {
		return nil, err
	}
	if branch == nil {
		return nil, domain.NewNotFoundError("Branch not found")
	}

	var res *ApplyResult
	err = l.txRunner.Run(ctx, func(repos repository.TxRepos) error {
		var err error
		res, err = l.ApplyInTx(ctx, repos, ApplyInput{
			ProductID: in.ProductID,
			BranchID:  in.BranchID,
			Quantity:  *in.Quantity,
			Operation: op,
			Actor:     in.Actor,
		})
		return err
	})
	if err != nil {
		l.metrics.StockAdjusted(string(op), "rejected")
		return nil, err
	}
	l.metrics.StockAdjusted(string(op), "ok")

	res.Stock.BranchName = branch.Name
	l.AfterCommit(ctx, res)
	log.Info().
		Str("product_id", in.ProductID).
		Str("branch_id", in.BranchID).
		Str("operation", string(op)).
		Str("old", res.OldQuantity.String()).
		Str("new", res.NewQuantity.String()).
		Str("user_id", in.Actor.UserID).
		Msg("stock actualizado")

	return &dto.AdjustStockResponse{
		Stock: dto.FromStock(res.Stock),
		Change: dto.StockChange{
			OldQuantity: res.OldQuantity,
			NewQuantity: res.NewQuantity,
			Operation:   string(op),
			Difference:  res.Difference(),
		},
	}, nil
}

// ApplyInTx bloquea la fila con GetForUpdate, calcula la nueva cantidad, la persiste y escribe
// el audit log usando los repos de la transacción del caller. No hace Commit.
func (l *StockLedger) ApplyInTx(ctx context.Context, repos repository.TxRepos, in ApplyInput) (*ApplyResult, error) {
	stock, err := repos.Stocks.GetForUpdate(ctx, in.ProductID, in.BranchID)
	if err != nil {
		return nil, err
	}
	old := stock.Quantity
	next, err := domaininv.ApplyOperation(old, in.Quantity, in.Operation)
	if err != nil {
		return nil, err
	}
	stock.Quantity = next
	if err := repos.Stocks.Save(ctx, stock); err != nil {
		return nil, err
	}

	oldData, _ := json.Marshal(map[string]any{"quantity": old})
	newSnap := map[string]any{"quantity": next, "operation": string(in.Operation)}
	if in.Reference != "" {
		newSnap["reference"] = in.Reference
	}
	newData, _ := json.Marshal(newSnap)
	if err := repos.Audit.Create(ctx, &entity.AuditLog{
		ID:         uuid.New().String(),
		UserID:     in.Actor.UserID,
		BranchID:   in.BranchID,
		Action:     entity.AuditActionStockUpdate,
		EntityType: entity.AuditEntityProductStock,
		EntityID:   in.ProductID,
		OldData:    oldData,
		NewData:    newData,
		IPAddress:  in.Actor.IPAddress,
		UserAgent:  in.Actor.UserAgent,
		CreatedAt:  time.Now(),
	}); err != nil {
		return nil, fmt.Errorf("audit stock update: %w", err)
	}

	return &ApplyResult{Stock: stock, OldQuantity: old, NewQuantity: next, Operation: in.Operation}, nil
}

// ApplyBatchInTx aplica varios ajustes en la transacción del caller. Las filas se bloquean en
// orden (sucursal, producto) para que dos documentos con los mismos productos no se esperen en
// círculo; los resultados vuelven en el orden de inputs.
func (l *StockLedger) ApplyBatchInTx(ctx context.Context, repos repository.TxRepos, inputs []ApplyInput) ([]*ApplyResult, error) {
	order := make([]int, len(inputs))
	for i := range order {
		order[i] = i
	}
	sort.SliceStable(order, func(a, b int) bool {
		x, y := inputs[order[a]], inputs[order[b]]
		if x.BranchID != y.BranchID {
			return x.BranchID < y.BranchID
		}
		return x.ProductID < y.ProductID
	})

	out := make([]*ApplyResult, len(inputs))
	for _, i := range order {
		res, err := l.ApplyInTx(ctx, repos, inputs[i])
		if err != nil {
			return nil, err
		}
		out[i] = res
	}
	return out, nil
}

// AfterCommit invalida caché y publica el evento; llamar solo después del Commit.
func (l *StockLedger) AfterCommit(ctx context.Context, res *ApplyResult) {
	l.cache.Del(ctx, ports.ProductCacheKey(res.Stock.ProductID))
	l.cache.DelPattern(ctx, "stock:*:"+res.Stock.ProductID)
	l.cache.DelPattern(ctx, ports.ProductsListPrefix+"*")
	l.notifier.Publish(ports.EventStockUpdate, map[string]any{
		"productId":         res.Stock.ProductID,
		"branchId":          res.Stock.BranchID,
		"quantity":          res.NewQuantity,
		"availableQuantity": res.Stock.AvailableQuantity(),
		"oldQuantity":       res.OldQuantity,
		"operation":         string(res.Operation),
	})
}

// ListStock stock del producto por sucursal.
func (l *StockLedger) ListStock(ctx context.Context, productID, branchID string) ([]dto.StockResponse, error) {
	product, err := l.products.GetByID(ctx, productID)
	if err != nil {
		return nil, err
	}
	if product == nil {
		return nil, domain.NewNotFoundError("Product not found")
	}
	rows, err := l.stocks.ListByProduct(ctx, productID, branchID)
	if err != nil {
		return nil, err
	}
	out := make([]dto.StockResponse, 0, len(rows))
	for _, s := range rows {
		out = append(out, dto.FromStock(s))
	}
	return out, nil
}

// History historial de auditoría de stock del producto.
func (l *StockLedger) History(ctx context.Context, productID string, limit int) ([]dto.StockHistoryEntry, error) {
	logs, err := l.audit.ListByEntity(ctx, entity.AuditEntityProductStock, productID, limit)
	if err != nil {
		return nil, err
	}
	out := make([]dto.StockHistoryEntry, 0, len(logs))
	for _, e := range logs {
		out = append(out, dto.FromAuditLog(e))
	}
	return out, nil
}
