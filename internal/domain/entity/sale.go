package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Estados de una venta.
const (
	SaleStatusCompleted = "completed"
	SaleStatusCancelled = "cancelled"
)

// Sale cabecera de una venta en una sucursal.
type Sale struct {
	ID               string
	SaleNumber       string
	BranchID         string
	CustomerID       *string
	CashierID        string
	Subtotal         decimal.Decimal
	DiscountAmount   decimal.Decimal
	TaxAmount        decimal.Decimal
	TotalAmount      decimal.Decimal
	PaidAmount       decimal.Decimal
	ChangeAmount     decimal.Decimal
	PaymentMethod    string
	PaymentReference string
	Status           string
	Notes            string
	SaleDate         time.Time
	CreatedAt        time.Time
	UpdatedAt        time.Time

	// Datos de join.
	BranchName   string
	CustomerName string
	CashierName  string
	Items        []*SaleItem
}

// SaleItem línea de venta. Quantity está en la unidad vendida y BaseQuantity en unidad base.
type SaleItem struct {
	ID             string
	SaleID         string
	ProductID      string
	ProductUnitID  *string
	ProductName    string
	SKU            string
	UnitName       string
	Quantity       decimal.Decimal
	BaseQuantity   decimal.Decimal
	UnitPrice      decimal.Decimal
	DiscountAmount decimal.Decimal
	TaxAmount      decimal.Decimal
	Subtotal       decimal.Decimal
	Total          decimal.Decimal
}
