// Package billing contiene las ventas del punto de venta: registro con descuento de stock,
// anulación, consulta y ticket PDF.
package billing

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/ArtEnginer/POS/internal/application/dto"
	"github.com/ArtEnginer/POS/internal/application/inventory"
	"github.com/ArtEnginer/POS/internal/application/ports"
	"github.com/ArtEnginer/POS/internal/application/pricing"
	"github.com/ArtEnginer/POS/internal/domain"
	"github.com/ArtEnginer/POS/internal/domain/entity"
	domaininv "github.com/ArtEnginer/POS/internal/domain/inventory"
	"github.com/ArtEnginer/POS/internal/domain/repository"
)

var hundred = decimal.NewFromInt(100)

// SaleUseCase registra ventas y descuenta el inventario en una sola transacción.
type SaleUseCase struct {
	txRunner  repository.TxRunner
	ledger    *inventory.StockLedger
	customers repository.CustomerRepository
	sales     repository.SaleRepository
	notifier  ports.Notifier
	metrics   ports.Recorder
}

// NewSaleUseCase construye el caso de uso. notifier y metrics pueden ser nil.
func NewSaleUseCase(
	txRunner repository.TxRunner,
	ledger *inventory.StockLedger,
	customers repository.CustomerRepository,
	sales repository.SaleRepository,
	notifier ports.Notifier,
	metrics ports.Recorder,
) *SaleUseCase {
	if notifier == nil {
		notifier = ports.NopNotifier{}
	}
	if metrics == nil {
		metrics = ports.NopRecorder{}
	}
	return &SaleUseCase{
		txRunner:  txRunner,
		ledger:    ledger,
		customers: customers,
		sales:     sales,
		notifier:  notifier,
		metrics:   metrics,
	}
}

// CreateSale valida la venta, resuelve precios, descuenta stock por cada línea (en unidad base) y guarda
// cabecera y líneas. Si una línea deja stock negativo se revierte toda la venta.
func (uc *SaleUseCase) CreateSale(ctx context.Context, actor inventory.Actor, in dto.CreateSaleRequest) (*dto.SaleResponse, error) {
	if in.BranchID == "" || len(in.Items) == 0 {
		return nil, domain.NewValidationError("Branch ID and at least one item are required", nil)
	}
	for i, it := range in.Items {
		if it.ProductID == "" || !it.Quantity.IsPositive() {
			return nil, domain.NewValidationError("Each item needs a product and a quantity greater than 0",
				map[string]any{"item": i})
		}
		if (it.UnitPrice != nil && it.UnitPrice.IsNegative()) || (it.DiscountAmount != nil && it.DiscountAmount.IsNegative()) {
			return nil, domain.NewValidationError("Prices and discounts cannot be negative", map[string]any{"item": i})
		}
	}
	if in.DiscountAmount != nil && in.DiscountAmount.IsNegative() {
		return nil, domain.NewValidationError("Prices and discounts cannot be negative", nil)
	}
	if in.PaidAmount.IsNegative() {
		return nil, domain.NewValidationError("Paid amount cannot be negative", nil)
	}

	member := false
	if in.CustomerID != nil && *in.CustomerID != "" {
		customer, err := uc.customers.GetByID(ctx, *in.CustomerID)
		if err != nil {
			return nil, err
		}
		if customer == nil {
			return nil, domain.NewNotFoundError("Customer not found")
		}
		member = customer.IsMember
	}

	now := time.Now()
	sale := &entity.Sale{
		ID:               uuid.New().String(),
		SaleNumber:       in.SaleNumber,
		BranchID:         in.BranchID,
		CashierID:        actor.UserID,
		PaymentMethod:    in.PaymentMethod,
		PaymentReference: in.PaymentReference,
		PaidAmount:       in.PaidAmount.Round(2),
		Status:           entity.SaleStatusCompleted,
		Notes:            in.Notes,
		SaleDate:         now,
		CreatedAt:        now,
		UpdatedAt:        now,
	}
	if in.CustomerID != nil && *in.CustomerID != "" {
		sale.CustomerID = in.CustomerID
	}
	if sale.SaleNumber == "" {
		sale.SaleNumber = inventory.NewDocumentNumber("INV", now)
	}
	if sale.PaymentMethod == "" {
		sale.PaymentMethod = "cash"
	}

	var applied []*inventory.ApplyResult
	err := uc.txRunner.Run(ctx, func(repos repository.TxRepos) error {
		branch, err := repos.Branches.GetByID(ctx, in.BranchID)
		if err != nil {
			return err
		}
		if branch == nil {
			return domain.NewNotFoundError("Branch not found")
		}
		sale.BranchName = branch.Name

		// 1) Líneas: precio y totales en el orden recibido
		inputs := make([]inventory.ApplyInput, 0, len(in.Items))
		for _, it := range in.Items {
			item, err := uc.buildItem(ctx, repos, sale, it, member)
			if err != nil {
				return err
			}
			sale.Items = append(sale.Items, item)
			inputs = append(inputs, inventory.ApplyInput{
				ProductID: item.ProductID,
				BranchID:  sale.BranchID,
				Quantity:  item.BaseQuantity,
				Operation: domaininv.OperationSubtract,
				Actor:     actor,
				Reference: "sale:" + sale.SaleNumber,
			})
		}

		// Salida de stock (FOR UPDATE por producto/sucursal, en orden de producto)
		applied, err = uc.ledger.ApplyBatchInTx(ctx, repos, inputs)
		if err != nil {
			return err
		}

		// 2) Totales de cabecera
		if err := computeTotals(sale, in.DiscountAmount); err != nil {
			return err
		}

		// 3) Persistencia
		if err := repos.Sales.Create(ctx, sale); err != nil {
			return err
		}
		for _, item := range sale.Items {
			if err := repos.Sales.CreateItem(ctx, item); err != nil {
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
	uc.metrics.SaleCreated(sale.BranchID)
	out := dto.FromSale(sale)
	uc.notifier.Publish(ports.EventSaleCreated, map[string]any{
		"id":          sale.ID,
		"saleNumber":  sale.SaleNumber,
		"branchId":    sale.BranchID,
		"totalAmount": out.TotalAmount,
	})
	return &out, nil
}

// buildItem resuelve producto, unidad y precio de una línea y calcula sus importes.
func (uc *SaleUseCase) buildItem(ctx context.Context, repos repository.TxRepos, sale *entity.Sale, in dto.SaleItemInput, member bool) (*entity.SaleItem, error) {
	product, err := repos.Products.GetByID(ctx, in.ProductID)
	if err != nil {
		return nil, err
	}
	if product == nil {
		return nil, domain.NewNotFoundError("Product not found")
	}
	if !product.IsActive {
		return nil, domain.NewValidationError("Product is not active", map[string]any{"productId": product.ID})
	}
	unit, err := inventory.ResolveUnit(ctx, repos.Units, product, in.UnitID)
	if err != nil {
		return nil, err
	}
	if !unit.IsSellable && unit.ID != "" {
		return nil, domain.NewValidationError("Product unit is not sellable", map[string]any{"unitId": unit.ID})
	}

	price := decimal.Zero
	if in.UnitPrice != nil {
		price = *in.UnitPrice
	} else {
		price, err = pricing.ResolveSellingPrice(ctx, repos.Prices, product, sale.BranchID, unit, member)
		if err != nil {
			return nil, err
		}
	}

	subtotal := in.Quantity.Mul(price).Round(2)
	discount := decimal.Zero
	if in.DiscountAmount != nil {
		discount = in.DiscountAmount.Round(2)
	} else if product.DiscountPercentage.IsPositive() {
		discount = subtotal.Mul(product.DiscountPercentage).Div(hundred).Round(2)
	}
	if discount.GreaterThan(subtotal) {
		return nil, domain.NewValidationError("Discount cannot exceed line subtotal", map[string]any{"productId": product.ID})
	}
	tax := subtotal.Sub(discount).Mul(product.TaxRate).Div(hundred).Round(2)

	return &entity.SaleItem{
		ID:             uuid.New().String(),
		SaleID:         sale.ID,
		ProductID:      product.ID,
		ProductUnitID:  inventory.UnitRef(unit),
		ProductName:    product.Name,
		SKU:            product.SKU,
		UnitName:       unit.UnitName,
		Quantity:       in.Quantity,
		BaseQuantity:   domaininv.ToBaseQuantity(in.Quantity, unit.ConversionValue),
		UnitPrice:      price.Round(2),
		DiscountAmount: discount,
		TaxAmount:      tax,
		Subtotal:       subtotal,
		Total:          subtotal.Sub(discount).Add(tax),
	}, nil
}

// computeTotals suma las líneas, aplica el descuento global y valida el pago.
func computeTotals(sale *entity.Sale, extraDiscount *decimal.Decimal) error {
	sale.Subtotal, sale.DiscountAmount, sale.TaxAmount = decimal.Zero, decimal.Zero, decimal.Zero
	for _, it := range sale.Items {
		sale.Subtotal = sale.Subtotal.Add(it.Subtotal)
		sale.DiscountAmount = sale.DiscountAmount.Add(it.DiscountAmount)
		sale.TaxAmount = sale.TaxAmount.Add(it.TaxAmount)
	}
	if extraDiscount != nil {
		sale.DiscountAmount = sale.DiscountAmount.Add(extraDiscount.Round(2))
	}
	sale.TotalAmount = sale.Subtotal.Sub(sale.DiscountAmount).Add(sale.TaxAmount)
	if sale.TotalAmount.IsNegative() {
		return domain.NewValidationError("Discount cannot exceed sale subtotal", nil)
	}
	if sale.PaidAmount.LessThan(sale.TotalAmount) {
		return domain.NewValidationError("Paid amount is less than total amount", map[string]any{
			"totalAmount": sale.TotalAmount.StringFixed(2),
			"paidAmount":  sale.PaidAmount.StringFixed(2),
		})
	}
	sale.ChangeAmount = sale.PaidAmount.Sub(sale.TotalAmount)
	return nil
}
