package inventory

import (
	"context"
	"fmt"
	"math/rand"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/ArtEnginer/POS/internal/application/dto"
	"github.com/ArtEnginer/POS/internal/application/ports"
	"github.com/ArtEnginer/POS/internal/domain"
	"github.com/ArtEnginer/POS/internal/domain/entity"
	domaininv "github.com/ArtEnginer/POS/internal/domain/inventory"
	"github.com/ArtEnginer/POS/internal/domain/repository"
)

// ReceivingUseCase recepción de mercancía: suma stock en unidad base y recalcula el costo promedio.
type ReceivingUseCase struct {
	txRunner   repository.TxRunner
	ledger     *StockLedger
	receivings repository.ReceivingRepository
	notifier   ports.Notifier
}

// NewReceivingUseCase construye el caso de uso.
func NewReceivingUseCase(txRunner repository.TxRunner, ledger *StockLedger, receivings repository.ReceivingRepository, notifier ports.Notifier) *ReceivingUseCase {
	if notifier == nil {
		notifier = ports.NopNotifier{}
	}
	return &ReceivingUseCase{txRunner: txRunner, ledger: ledger, receivings: receivings, notifier: notifier}
}

// Create registra la recepción y sus líneas en una transacción; cualquier línea inválida revierte todo.
func (uc *ReceivingUseCase) Create(ctx context.Context, actor Actor, in dto.CreateReceivingRequest) (*dto.ReceivingResponse, error) {
	if in.BranchID == "" || len(in.Items) == 0 {
		return nil, domain.NewValidationError("Branch ID and at least one item are required", nil)
	}
	for i, it := range in.Items {
		if it.ProductID == "" || !it.Quantity.IsPositive() {
			return nil, domain.NewValidationError("Each item needs a product and a quantity greater than 0",
				map[string]any{"item": i})
		}
		if it.CostPrice != nil && it.CostPrice.IsNegative() {
			return nil, domain.NewValidationError("Cost price cannot be negative", map[string]any{"item": i})
		}
	}

	now := time.Now()
	rc := &entity.Receiving{
		ID:              uuid.New().String(),
		ReceivingNumber: in.ReceivingNumber,
		BranchID:        in.BranchID,
		SupplierName:    in.SupplierName,
		ReferenceNumber: in.ReferenceNumber,
		ReceivedBy:      actor.UserID,
		Notes:           in.Notes,
		ReceivedAt:      now,
		CreatedAt:       now,
	}
	if rc.ReceivingNumber == "" {
		rc.ReceivingNumber = NewDocumentNumber("RCV", now)
	}

	var applied []*ApplyResult
	err := uc.txRunner.Run(ctx, func(repos repository.TxRepos) error {
		branch, err := repos.Branches.GetByID(ctx, in.BranchID)
		if err != nil {
			return err
		}
		if branch == nil {
			return domain.NewNotFoundError("Branch not found")
		}
		rc.BranchName = branch.Name

		type line struct {
			product  *entity.Product
			baseQty  decimal.Decimal
			baseCost decimal.Decimal
		}
		lines := make([]line, 0, len(in.Items))
		inputs := make([]ApplyInput, 0, len(in.Items))
		for _, it := range in.Items {
			product, err := repos.Products.GetByID(ctx, it.ProductID)
			if err != nil {
				return err
			}
			if product == nil {
				return domain.NewNotFoundError("Product not found")
			}
			unit, err := ResolveUnit(ctx, repos.Units, product, it.UnitID)
			if err != nil {
				return err
			}
			baseQty := domaininv.ToBaseQuantity(it.Quantity, unit.ConversionValue)
			cost := product.CostPrice.Mul(unit.ConversionValue)
			if it.CostPrice != nil {
				cost = *it.CostPrice
			}
			item := &entity.ReceivingItem{
				ID:            uuid.New().String(),
				ReceivingID:   rc.ID,
				ProductID:     product.ID,
				ProductUnitID: UnitRef(unit),
				UnitName:      unit.UnitName,
				Quantity:      it.Quantity,
				BaseQuantity:  baseQty,
				CostPrice:     cost.Round(2),
				Subtotal:      it.Quantity.Mul(cost).Round(2),
			}
			rc.Items = append(rc.Items, item)
			rc.TotalCost = rc.TotalCost.Add(item.Subtotal)

			// costo por unidad base
			baseCost := cost
			if unit.ConversionValue.IsPositive() {
				baseCost = cost.Div(unit.ConversionValue)
			}
			lines = append(lines, line{product: product, baseQty: baseQty, baseCost: baseCost})
			inputs = append(inputs, ApplyInput{
				ProductID: product.ID,
				BranchID:  in.BranchID,
				Quantity:  baseQty,
				Operation: domaininv.OperationAdd,
				Actor:     actor,
				Reference: "receiving:" + rc.ReceivingNumber,
			})
		}

		// La cabecera se guarda con el total ya calculado.
		if err := repos.Receivings.Create(ctx, rc); err != nil {
			return err
		}
		for _, item := range rc.Items {
			if err := repos.Receivings.CreateItem(ctx, item); err != nil {
				return err
			}
		}

		applied, err = uc.ledger.ApplyBatchInTx(ctx, repos, inputs)
		if err != nil {
			return err
		}

		// Costo promedio ponderado línea por línea; un producto repetido encadena su costo.
		costs := map[string]decimal.Decimal{}
		for i, ln := range lines {
			current, ok := costs[ln.product.ID]
			if !ok {
				current = ln.product.CostPrice
			}
			avg := domaininv.WeightedAverageCost(applied[i].OldQuantity, current, ln.baseQty, ln.baseCost)
			if err := repos.Products.UpdateCost(ctx, ln.product.ID, avg); err != nil {
				return fmt.Errorf("update product cost: %w", err)
			}
			costs[ln.product.ID] = avg
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	for _, res := range applied {
		uc.ledger.AfterCommit(ctx, res)
	}
	out := dto.FromReceiving(rc)
	uc.notifier.Publish(ports.EventReceivingCreate, map[string]any{
		"id":              rc.ID,
		"receivingNumber": rc.ReceivingNumber,
		"branchId":        rc.BranchID,
		"totalCost":       out.TotalCost,
	})
	return &out, nil
}

// Get recepción con sus líneas.
func (uc *ReceivingUseCase) Get(ctx context.Context, id string) (*dto.ReceivingResponse, error) {
	rc, err := uc.receivings.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if rc == nil {
		return nil, domain.NewNotFoundError("Receiving not found")
	}
	out := dto.FromReceiving(rc)
	return &out, nil
}

// List recepciones recientes, opcionalmente de una sucursal.
func (uc *ReceivingUseCase) List(ctx context.Context, branchID string, page dto.PageQuery) ([]dto.ReceivingResponse, error) {
	page.Normalize()
	rows, err := uc.receivings.List(ctx, branchID, page.Limit, page.Offset())
	if err != nil {
		return nil, err
	}
	out := make([]dto.ReceivingResponse, 0, len(rows))
	for _, rc := range rows {
		out = append(out, dto.FromReceiving(rc))
	}
	return out, nil
}

// NewDocumentNumber número de documento PREFIJO-YYYYMMDD-xxxxxx.
func NewDocumentNumber(prefix string, at time.Time) string {
	return fmt.Sprintf("%s-%s-%06d", prefix, at.Format("20060102"), rand.Intn(1000000))
}
