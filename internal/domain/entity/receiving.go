package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Receiving recepción de mercancía en una sucursal (incrementa stock).
type Receiving struct {
	ID              string
	ReceivingNumber string
	BranchID        string
	SupplierName    string
	ReferenceNumber string
	ReceivedBy      string
	TotalCost       decimal.Decimal
	Notes           string
	ReceivedAt      time.Time
	CreatedAt       time.Time

	BranchName string
	Items      []*ReceivingItem
}

// ReceivingItem línea recibida; BaseQuantity es la cantidad sumada al stock.
type ReceivingItem struct {
	ID            string
	ReceivingID   string
	ProductID     string
	ProductUnitID *string
	UnitName      string
	Quantity      decimal.Decimal
	BaseQuantity  decimal.Decimal
	CostPrice     decimal.Decimal
	Subtotal      decimal.Decimal
}
