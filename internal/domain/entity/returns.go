package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Estados de una devolución a proveedor.
const (
	PurchaseReturnCompleted = "completed"
	PurchaseReturnCancelled = "cancelled"
)

// Estados de una devolución de cliente.
const (
	SalesReturnPending   = "pending"
	SalesReturnProcessed = "processed"
	SalesReturnCompleted = "completed"
	SalesReturnCancelled = "cancelled"
)

// PurchaseReturn devolución de mercancía recibida al proveedor (descuenta stock).
type PurchaseReturn struct {
	ID           string
	ReturnNumber string
	ReceivingID  string
	BranchID     string
	SupplierID   *string
	Reason       string
	Notes        string
	Status       string
	TotalAmount  decimal.Decimal
	ReturnedBy   string
	ReturnDate   time.Time
	CreatedAt    time.Time
	UpdatedAt    time.Time

	// Datos de join.
	ReceivingNumber string
	BranchName      string
	SupplierName    string
	Items           []*PurchaseReturnItem
}

// PurchaseReturnItem línea devuelta; Quantity en la unidad de la línea recibida.
type PurchaseReturnItem struct {
	ID              string
	ReturnID        string
	ReceivingItemID string
	ProductID       string
	ProductUnitID   *string
	UnitName        string
	Quantity        decimal.Decimal
	BaseQuantity    decimal.Decimal
	CostPrice       decimal.Decimal
	Subtotal        decimal.Decimal
}

// SalesReturn devolución de un cliente sobre una venta completada (repone stock).
type SalesReturn struct {
	ID           string
	ReturnNumber string
	SaleID       string
	BranchID     string
	CustomerID   *string
	Reason       string
	Notes        string
	RefundMethod string
	TotalRefund  decimal.Decimal
	Status       string
	ProcessedBy  string
	ReturnDate   time.Time
	CreatedAt    time.Time
	UpdatedAt    time.Time

	// Datos de join.
	SaleNumber string
	BranchName string
	Items      []*SalesReturnItem
}

// SalesReturnItem línea devuelta; Quantity en la unidad vendida.
type SalesReturnItem struct {
	ID            string
	ReturnID      string
	SaleItemID    string
	ProductID     string
	ProductUnitID *string
	ProductName   string
	UnitName      string
	Quantity      decimal.Decimal
	BaseQuantity  decimal.Decimal
	UnitPrice     decimal.Decimal
	Subtotal      decimal.Decimal
}

// IsActive indica si la devolución sigue contando contra lo vendido.
func (r *SalesReturn) IsActive() bool { return r.Status != SalesReturnCancelled }
