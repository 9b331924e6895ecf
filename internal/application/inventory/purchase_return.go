package inventory

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/ArtEnginer/POS/internal/application/dto"
	"github.com/ArtEnginer/POS/internal/application/ports"
	"github.com/ArtEnginer/POS/internal/domain"
	"github.com/ArtEnginer/POS/internal/domain/entity"
	domaininv "github.com/ArtEnginer/POS/internal/domain/inventory"
	"github.com/ArtEnginer/POS/internal/domain/repository"
)

// PurchaseReturnUseCase devoluciones de mercancía recibida al proveedor: descuenta el stock de la
// sucursal de la recepción.
type PurchaseReturnUseCase struct {
	txRunner repository.TxRunner
	ledger   *StockLedger
	returns  repository.PurchaseReturnRepository
	notifier ports.Notifier
}

// NewPurchaseReturnUseCase construye el caso de uso.
func NewPurchaseReturnUseCase(txRunner repository.TxRunner, ledger *StockLedger, returns repository.PurchaseReturnRepository, notifier ports.Notifier) *PurchaseReturnUseCase {
	if notifier == nil {
		notifier = ports.NopNotifier{}
	}
	return &PurchaseReturnUseCase{txRunner: txRunner, ledger: ledger, returns: returns, notifier: notifier}
}

// Create registra la devolución. Lo devuelto por línea, sumando devoluciones anteriores no
// anuladas, no puede superar lo recibido; si el stock quedaría negativo se revierte todo.
func (uc *PurchaseReturnUseCase) Create(ctx context.Context, actor Actor, in dto.CreatePurchaseReturnRequest) (*dto.PurchaseReturnResponse, error) {
	if in.ReceivingID == "" || len(in.Items) == 0 {
		return nil, domain.NewValidationError("Receiving ID and at least one item are required", nil)
	}
	for i, it := range in.Items {
		if it.ReceivingItemID == "" || !it.Quantity.IsPositive() {
			return nil, domain.NewValidationError("Each item needs a receiving item and a quantity greater than 0",
				map[string]any{"item": i})
		}
	}

	now := time.Now()
	pr := &entity.PurchaseReturn{
		ID:           uuid.New().String(),
		ReturnNumber: in.ReturnNumber,
		ReceivingID:  in.ReceivingID,
		Reason:       in.Reason,
		Notes:        in.Notes,
		Status:       entity.PurchaseReturnCompleted,
		ReturnedBy:   actor.UserID,
		ReturnDate:   now,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if pr.ReturnNumber == "" {
		pr.ReturnNumber = NewDocumentNumber("RTN", now)
	}

	var applied []*ApplyResult
	err := uc.txRunner.Run(ctx, func(repos repository.TxRepos) error {
		rc, err := repos.Receivings.GetForUpdate(ctx, in.ReceivingID)
		if err != nil {
			return err
		}
		if rc == nil {
			return domain.NewNotFoundError("Receiving not found")
		}
		pr.BranchID = rc.BranchID
		pr.BranchName = rc.BranchName
		pr.ReceivingNumber = rc.ReceivingNumber
		pr.SupplierName = rc.SupplierName
		if in.SupplierID != nil && *in.SupplierID != "" {
			supplier, err := repos.Suppliers.GetByID(ctx, *in.SupplierID)
			if err != nil {
				return err
			}
			if supplier == nil {
				return domain.NewNotFoundError("Supplier not found")
			}
			pr.SupplierID = &supplier.ID
			pr.SupplierName = supplier.Name
		}

		received := make(map[string]*entity.ReceivingItem, len(rc.Items))
		for _, ri := range rc.Items {
			received[ri.ID] = ri
		}
		returned, err := repos.PurchaseReturns.ReturnedByItem(ctx, rc.ID)
		if err != nil {
			return err
		}

		inputs := make([]ApplyInput, 0, len(in.Items))
		for i, it := range in.Items {
			ri, ok := received[it.ReceivingItemID]
			if !ok {
				return domain.NewNotFoundError("Receiving item not found")
			}
			already := returned[ri.ID]
			if already.Add(it.Quantity).GreaterThan(ri.Quantity) {
				return domain.NewValidationError("Return quantity exceeds received quantity", map[string]any{
					"item":      i,
					"received":  ri.Quantity.String(),
					"returned":  already.String(),
					"requested": it.Quantity.String(),
				})
			}
			returned[ri.ID] = already.Add(it.Quantity)

			item := &entity.PurchaseReturnItem{
				ID:              uuid.New().String(),
				ReturnID:        pr.ID,
				ReceivingItemID: ri.ID,
				ProductID:       ri.ProductID,
				ProductUnitID:   ri.ProductUnitID,
				UnitName:        ri.UnitName,
				Quantity:        it.Quantity,
				BaseQuantity:    domaininv.Prorate(ri.BaseQuantity, it.Quantity, ri.Quantity).Round(3),
				CostPrice:       ri.CostPrice,
				Subtotal:        it.Quantity.Mul(ri.CostPrice).Round(2),
			}
			pr.Items = append(pr.Items, item)
			pr.TotalAmount = pr.TotalAmount.Add(item.Subtotal)
			inputs = append(inputs, ApplyInput{
				ProductID: item.ProductID,
				BranchID:  pr.BranchID,
				Quantity:  item.BaseQuantity,
				Operation: domaininv.OperationSubtract,
				Actor:     actor,
				Reference: "purchase_return:" + pr.ReturnNumber,
			})
		}

		if applied, err = uc.ledger.ApplyBatchInTx(ctx, repos, inputs); err != nil {
			return err
		}
		if err := repos.PurchaseReturns.Create(ctx, pr); err != nil {
			return err
		}
		for _, item := range pr.Items {
			if err := repos.PurchaseReturns.CreateItem(ctx, item); err != nil {
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
	out := dto.FromPurchaseReturn(pr)
	uc.notifier.Publish(ports.EventPurchaseReturn, map[string]any{
		"id":           pr.ID,
		"returnNumber": pr.ReturnNumber,
		"branchId":     pr.BranchID,
		"status":       pr.Status,
		"totalAmount":  out.TotalAmount,
	})
	return &out, nil
}

// Cancel anula una devolución completada y vuelve a sumar al stock lo devuelto.
func (uc *PurchaseReturnUseCase) Cancel(ctx context.Context, actor Actor, id string) (*dto.PurchaseReturnResponse, error) {
	var pr *entity.PurchaseReturn
	var applied []*ApplyResult
	err := uc.txRunner.Run(ctx, func(repos repository.TxRepos) error {
		var err error
		pr, err = repos.PurchaseReturns.GetForUpdate(ctx, id)
		if err != nil {
			return err
		}
		if pr == nil {
			return domain.NewNotFoundError("Purchase return not found")
		}
		if pr.Status == entity.PurchaseReturnCancelled {
			return domain.NewValidationError("Purchase return is already cancelled", nil)
		}
		inputs := make([]ApplyInput, 0, len(pr.Items))
		for _, it := range pr.Items {
			inputs = append(inputs, ApplyInput{
				ProductID: it.ProductID,
				BranchID:  pr.BranchID,
				Quantity:  it.BaseQuantity,
				Operation: domaininv.OperationAdd,
				Actor:     actor,
				Reference: "purchase_return_cancel:" + pr.ReturnNumber,
			})
		}
		if applied, err = uc.ledger.ApplyBatchInTx(ctx, repos, inputs); err != nil {
			return err
		}
		pr.Status = entity.PurchaseReturnCancelled
		return repos.PurchaseReturns.UpdateStatus(ctx, pr.ID, pr.Status)
	})
	if err != nil {
		return nil, err
	}

	for _, res := range applied {
		uc.ledger.AfterCommit(ctx, res)
	}
	uc.notifier.Publish(ports.EventPurchaseReturn, map[string]any{
		"id":           pr.ID,
		"returnNumber": pr.ReturnNumber,
		"branchId":     pr.BranchID,
		"status":       pr.Status,
	})
	out := dto.FromPurchaseReturn(pr)
	return &out, nil
}

// Get devolución con sus líneas.
func (uc *PurchaseReturnUseCase) Get(ctx context.Context, id string) (*dto.PurchaseReturnResponse, error) {
	pr, err := uc.returns.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if pr == nil {
		return nil, domain.NewNotFoundError("Purchase return not found")
	}
	out := dto.FromPurchaseReturn(pr)
	return &out, nil
}

// List devoluciones paginadas por sucursal, recepción o estado.
func (uc *PurchaseReturnUseCase) List(ctx context.Context, q dto.ReturnQuery) ([]dto.PurchaseReturnResponse, *dto.Pagination, error) {
	q.Normalize()
	f := repository.ReturnFilter{
		BranchID:   q.BranchID,
		DocumentID: q.ReceivingID,
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
	out := make([]dto.PurchaseReturnResponse, 0, len(rows))
	for _, pr := range rows {
		out = append(out, dto.FromPurchaseReturn(pr))
	}
	return out, dto.NewPagination(q.PageQuery, total), nil
}
