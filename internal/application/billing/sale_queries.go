package billing

import (
	"context"
	"fmt"
	"time"

	"github.com/ArtEnginer/POS/internal/application/dto"
	"github.com/ArtEnginer/POS/internal/application/inventory"
	"github.com/ArtEnginer/POS/internal/application/ports"
	"github.com/ArtEnginer/POS/internal/domain"
	"github.com/ArtEnginer/POS/internal/domain/entity"
	domaininv "github.com/ArtEnginer/POS/internal/domain/inventory"
	"github.com/ArtEnginer/POS/internal/domain/repository"
)

const dateLayout = "2006-01-02"

// CancelSale anula una venta completada y devuelve las cantidades base al stock de la sucursal.
func (uc *SaleUseCase) CancelSale(ctx context.Context, actor inventory.Actor, saleID string) (*dto.SaleResponse, error) {
	var sale *entity.Sale
	var applied []*inventory.ApplyResult
	err := uc.txRunner.Run(ctx, func(repos repository.TxRepos) error {
		var err error
		sale, err = repos.Sales.GetForUpdate(ctx, saleID)
		if err != nil {
			return err
		}
		if sale == nil {
			return domain.NewNotFoundError("Sale not found")
		}
		if sale.Status == entity.SaleStatusCancelled {
			return domain.NewValidationError("Sale is already cancelled", nil)
		}
		// Anular repone todo lo vendido; con devoluciones vivas se repondría dos veces.
		returned, err := repos.SalesReturns.ReturnedByItem(ctx, sale.ID)
		if err != nil {
			return err
		}
		if len(returned) > 0 {
			return domain.NewValidationError("Sale has active returns; cancel them first", nil)
		}
		inputs := make([]inventory.ApplyInput, 0, len(sale.Items))
		for _, it := range sale.Items {
			inputs = append(inputs, inventory.ApplyInput{
				ProductID: it.ProductID,
				BranchID:  sale.BranchID,
				Quantity:  it.BaseQuantity,
				Operation: domaininv.OperationAdd,
				Actor:     actor,
				Reference: "sale_cancel:" + sale.SaleNumber,
			})
		}
		if applied, err = uc.ledger.ApplyBatchInTx(ctx, repos, inputs); err != nil {
			return err
		}
		sale.Status = entity.SaleStatusCancelled
		return repos.Sales.UpdateStatus(ctx, sale.ID, sale.Status)
	})
	if err != nil {
		return nil, err
	}

	for _, res := range applied {
		uc.ledger.AfterCommit(ctx, res)
	}
	uc.notifier.Publish(ports.EventSaleCancelled, map[string]any{
		"id":         sale.ID,
		"saleNumber": sale.SaleNumber,
		"branchId":   sale.BranchID,
	})
	out := dto.FromSale(sale)
	return &out, nil
}

// GetSale venta con sus líneas.
func (uc *SaleUseCase) GetSale(ctx context.Context, id string) (*entity.Sale, error) {
	sale, err := uc.sales.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if sale == nil {
		return nil, domain.NewNotFoundError("Sale not found")
	}
	return sale, nil
}

// ListSales ventas paginadas; from/to en formato YYYY-MM-DD, to inclusivo.
func (uc *SaleUseCase) ListSales(ctx context.Context, q dto.SaleQuery) ([]dto.SaleResponse, *dto.Pagination, error) {
	q.Normalize()
	f := repository.SaleFilter{
		BranchID:  q.BranchID,
		CashierID: q.CashierID,
		Status:    q.Status,
		Limit:     q.Limit,
		Offset:    q.Offset(),
	}
	if q.From != "" {
		from, err := time.ParseInLocation(dateLayout, q.From, time.Local)
		if err != nil {
			return nil, nil, domain.NewValidationError(fmt.Sprintf("Invalid from date: %s", q.From), nil)
		}
		f.From = &from
	}
	if q.To != "" {
		to, err := time.ParseInLocation(dateLayout, q.To, time.Local)
		if err != nil {
			return nil, nil, domain.NewValidationError(fmt.Sprintf("Invalid to date: %s", q.To), nil)
		}
		to = to.AddDate(0, 0, 1)
		f.To = &to
	}

	rows, err := uc.sales.List(ctx, f)
	if err != nil {
		return nil, nil, err
	}
	total, err := uc.sales.Count(ctx, f)
	if err != nil {
		return nil, nil, err
	}
	out := make([]dto.SaleResponse, 0, len(rows))
	for _, s := range rows {
		out = append(out, dto.FromSale(s))
	}
	return out, dto.NewPagination(q.PageQuery, total), nil
}
