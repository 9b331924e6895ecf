package billing

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/ArtEnginer/POS/internal/application/dto"
	"github.com/ArtEnginer/POS/internal/application/inventory"
	"github.com/ArtEnginer/POS/internal/application/ports"
	"github.com/ArtEnginer/POS/internal/domain"
	"github.com/ArtEnginer/POS/internal/domain/entity"
	domaininv "github.com/ArtEnginer/POS/internal/domain/inventory"
	"github.com/ArtEnginer/POS/internal/domain/repository"
)

// SalesReturnUseCase devoluciones de clientes sobre ventas completadas: reponen el stock de la
// sucursal de la venta y calculan el reembolso.
type SalesReturnUseCase struct {
	txRunner repository.TxRunner
	ledger   *inventory.StockLedger
	returns  repository.SalesReturnRepository
	notifier ports.Notifier
}

// NewSalesReturnUseCase construye el caso de uso. notifier puede ser nil.
func NewSalesReturnUseCase(txRunner repository.TxRunner, ledger *inventory.StockLedger, returns repository.SalesReturnRepository, notifier ports.Notifier) *SalesReturnUseCase {
	if notifier == nil {
		notifier = ports.NopNotifier{}
	}
	return &SalesReturnUseCase{txRunner: txRunner, ledger: ledger, returns: returns, notifier: notifier}
}

// Create registra la devolución en una transacción. Por línea de venta, lo devuelto (sumando
// devoluciones anteriores no anuladas) no puede superar lo vendido.
func (uc *SalesReturnUseCase) Create(ctx context.Context, actor inventory.Actor, in dto.CreateSalesReturnRequest) (*dto.SalesReturnResponse, error) {
	if in.SaleID == "" || in.BranchID == "" || len(in.Items) == 0 {
		return nil, domain.NewValidationError("Sale ID, branch ID and at least one item are required", nil)
	}
	if strings.TrimSpace(in.Reason) == "" {
		return nil, domain.NewValidationError("Return reason is required", nil)
	}
	for i, it := range in.Items {
		if it.SaleItemID == "" || !it.Quantity.IsPositive() {
			return nil, domain.NewValidationError("Each item needs a sale item and a quantity greater than 0",
				map[string]any{"item": i})
		}
	}

	now := time.Now()
	ret := &entity.SalesReturn{
		ID:           uuid.New().String(),
		ReturnNumber: in.ReturnNumber,
		SaleID:       in.SaleID,
		BranchID:     in.BranchID,
		Reason:       strings.TrimSpace(in.Reason),
		Notes:        in.Notes,
		RefundMethod: in.RefundMethod,
		Status:       entity.SalesReturnCompleted,
		ProcessedBy:  actor.UserID,
		ReturnDate:   now,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if ret.ReturnNumber == "" {
		ret.ReturnNumber = inventory.NewDocumentNumber("RET", now)
	}
	if ret.RefundMethod == "" {
		ret.RefundMethod = "cash"
	}

	var applied []*inventory.ApplyResult
	err := uc.txRunner.Run(ctx, func(repos repository.TxRepos) error {
		sale, err := repos.Sales.GetForUpdate(ctx, in.SaleID)
		if err != nil {
			return err
		}
		if sale == nil {
			return domain.NewNotFoundError("Sale not found")
		}
		if sale.BranchID != in.BranchID {
			return fmt.Errorf("sale %s belongs to branch %s: %w", sale.SaleNumber, sale.BranchID, domain.ErrForbidden)
		}
		if sale.Status != entity.SaleStatusCompleted {
			return domain.NewValidationError("Only completed sales can be returned", map[string]any{"status": sale.Status})
		}
		ret.CustomerID = sale.CustomerID
		ret.SaleNumber = sale.SaleNumber
		ret.BranchName = sale.BranchName

		sold := make(map[string]*entity.SaleItem, len(sale.Items))
		itemsTotal := decimal.Zero
		for _, si := range sale.Items {
			sold[si.ID] = si
			itemsTotal = itemsTotal.Add(si.Total)
		}
		returned, err := repos.SalesReturns.ReturnedByItem(ctx, sale.ID)
		if err != nil {
			return err
		}

		inputs := make([]inventory.ApplyInput, 0, len(in.Items))
		for i, it := range in.Items {
			si, ok := sold[it.SaleItemID]
			if !ok {
				return domain.NewNotFoundError("Sale item not found")
			}
			already := returned[si.ID]
			if already.Add(it.Quantity).GreaterThan(si.Quantity) {
				return domain.NewValidationError("Return quantity exceeds sold quantity", map[string]any{
					"item":      i,
					"sold":      si.Quantity.String(),
					"returned":  already.String(),
					"requested": it.Quantity.String(),
				})
			}
			returned[si.ID] = already.Add(it.Quantity)

			item := &entity.SalesReturnItem{
				ID:            uuid.New().String(),
				ReturnID:      ret.ID,
				SaleItemID:    si.ID,
				ProductID:     si.ProductID,
				ProductUnitID: si.ProductUnitID,
				ProductName:   si.ProductName,
				UnitName:      si.UnitName,
				Quantity:      it.Quantity,
				BaseQuantity:  domaininv.Prorate(si.BaseQuantity, it.Quantity, si.Quantity).Round(3),
				UnitPrice:     si.UnitPrice,
				Subtotal:      refundFor(sale, si, it.Quantity, itemsTotal),
			}
			ret.Items = append(ret.Items, item)
			ret.TotalRefund = ret.TotalRefund.Add(item.Subtotal)
			inputs = append(inputs, inventory.ApplyInput{
				ProductID: item.ProductID,
				BranchID:  sale.BranchID,
				Quantity:  item.BaseQuantity,
				Operation: domaininv.OperationAdd,
				Actor:     actor,
				Reference: "sales_return:" + ret.ReturnNumber,
			})
		}

		if applied, err = uc.ledger.ApplyBatchInTx(ctx, repos, inputs); err != nil {
			return err
		}
		if err := repos.SalesReturns.Create(ctx, ret); err != nil {
			return err
		}
		for _, item := range ret.Items {
			if err := repos.SalesReturns.CreateItem(ctx, item); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	for _, res := range applied {
		uc.ledger.AfterCommit(ctx, res)
	}
	out := dto.FromSalesReturn(ret)
	uc.notifier.Publish(ports.EventSalesReturn, map[string]any{
		"id":           ret.ID,
		"returnNumber": ret.ReturnNumber,
		"saleId":       ret.SaleID,
		"branchId":     ret.BranchID,
		"status":       ret.Status,
		"totalRefund":  out.TotalRefund,
	})
	return &out, nil
}

// UpdateStatus cambia el estado de la devolución. Pasar a cancelled descuenta otra vez del stock
// lo repuesto; una devolución anulada no se reabre.
func (uc *SalesReturnUseCase) UpdateStatus(ctx context.Context, actor inventory.Actor, id, status string) (*dto.SalesReturnResponse, error) {
	switch status {
	case entity.SalesReturnPending, entity.SalesReturnProcessed, entity.SalesReturnCompleted, entity.SalesReturnCancelled:
	default:
		return nil, domain.NewValidationError("Invalid status. Must be one of: pending, processed, completed, cancelled", nil)
	}

	var ret *entity.SalesReturn
	var applied []*inventory.ApplyResult
	err := uc.txRunner.Run(ctx, func(repos repository.TxRepos) error {
		var err error
		ret, err = repos.SalesReturns.GetForUpdate(ctx, id)
		if err != nil {
			return err
		}
		if ret == nil {
			return domain.NewNotFoundError("Sales return not found")
		}
		if !ret.IsActive() {
			return domain.NewValidationError("Cancelled return cannot change status", nil)
		}
		if status == entity.SalesReturnCancelled {
			inputs := make([]inventory.ApplyInput, 0, len(ret.Items))
			for _, it := range ret.Items {
				inputs = append(inputs, inventory.ApplyInput{
					ProductID: it.ProductID,
					BranchID:  ret.BranchID,
					Quantity:  it.BaseQuantity,
					Operation: domaininv.OperationSubtract,
					Actor:     actor,
					Reference: "sales_return_cancel:" + ret.ReturnNumber,
				})
			}
			if applied, err = uc.ledger.ApplyBatchInTx(ctx, repos, inputs); err != nil {
				return err
			}
		}
		ret.Status = status
		return repos.SalesReturns.UpdateStatus(ctx, ret.ID, status)
	})
	if err != nil {
		return nil, err
	}

	for _, res := range applied {
		uc.ledger.AfterCommit(ctx, res)
	}
	uc.notifier.Publish(ports.EventSalesReturn, map[string]any{
		"id":           ret.ID,
		"returnNumber": ret.ReturnNumber,
		"saleId":       ret.SaleID,
		"branchId":     ret.BranchID,
		"status":       ret.Status,
	})
	out := dto.FromSalesReturn(ret)
	return &out, nil
}

// Get devolución con sus líneas.
func (uc *SalesReturnUseCase) Get(ctx context.Context, id string) (*dto.SalesReturnResponse, error) {
	ret, err := uc.returns.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if ret == nil {
		return nil, domain.NewNotFoundError("Sales return not found")
	}
	out := dto.FromSalesReturn(ret)
	return &out, nil
}

// List devoluciones paginadas por sucursal, venta o estado.
func (uc *SalesReturnUseCase) List(ctx context.Context, q dto.ReturnQuery) ([]dto.SalesReturnResponse, *dto.Pagination, error) {
	q.Normalize()
	f := repository.ReturnFilter{
		BranchID:   q.BranchID,
		DocumentID: q.SaleID,
		Status:     q.Status,
		Limit:      q.Limit,
		Offset:     q.Offset(),
	}
	rows, err := uc.returns.List(ctx, f)
	if err != nil {
		return nil, nil, err
	}
	total, err := uc.returns.Count(ctx, f)
	if err != nil {
		return nil, nil, err
	}
	out := make([]dto.SalesReturnResponse, 0, len(rows))
	for _, r := range rows {
		out = append(out, dto.FromSalesReturn(r))
	}
	return out, dto.NewPagination(q.PageQuery, total), nil
}

// refundFor importe a reembolsar por qty de la línea: su total (descuento e impuesto de línea
// incluidos) prorrateado, menos la parte del descuento de cabecera que le toca.
func refundFor(sale *entity.Sale, si *entity.SaleItem, qty, itemsTotal decimal.Decimal) decimal.Decimal {
	share := domaininv.Prorate(si.Total, qty, si.Quantity)
	if itemsTotal.IsPositive() && !sale.TotalAmount.Equal(itemsTotal) {
		share = domaininv.Prorate(sale.TotalAmount, share, itemsTotal)
	}
	return share.Round(2)
}
