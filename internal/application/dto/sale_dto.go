package dto

import (
	"time"

	"github.com/shopspring/decimal"
)

// CreateSaleRequest body de POST /api/sales.
type CreateSaleRequest struct {
	SaleNumber       string           `json:"saleNumber" validate:"max=50"`
	BranchID         string           `json:"branchId" validate:"required,uuid_string"`
	CustomerID       *string          `json:"customerId" validate:"omitempty,uuid_string"`
	Items            []SaleItemInput  `json:"items" validate:"required,min=1,dive"`
	DiscountAmount   *decimal.Decimal `json:"discountAmount" swaggertype:"number"`
	PaidAmount       decimal.Decimal  `json:"paidAmount" swaggertype:"number"`
	PaymentMethod    string           `json:"paymentMethod" validate:"omitempty,oneof=cash card transfer qris ewallet"`
	PaymentReference string           `json:"paymentReference"`
	Notes            string           `json:"notes"`
}

// SaleItemInput línea solicitada; sin unitId se vende en la unidad base y sin unitPrice se
// resuelve el precio de la sucursal.
type SaleItemInput struct {
	ProductID      string           `json:"productId" validate:"required,uuid_string"`
	UnitID         string           `json:"unitId" validate:"omitempty,uuid_string"`
	Quantity       decimal.Decimal  `json:"quantity" swaggertype:"number"`
	UnitPrice      *decimal.Decimal `json:"unitPrice" swaggertype:"number"`
	DiscountAmount *decimal.Decimal `json:"discountAmount" swaggertype:"number"`
}

// SaleQuery filtros de GET /api/sales.
type SaleQuery struct {
	PageQuery
	BranchID  string `query:"branchId"`
	CashierID string `query:"cashierId"`
	Status    string `query:"status"`
	From      string `query:"from"` // YYYY-MM-DD
	To        string `query:"to"`   // YYYY-MM-DD, inclusivo
}

// SaleResponse venta con sus líneas.
type SaleResponse struct {
	ID               string             `json:"id"`
	SaleNumber       string             `json:"saleNumber"`
	BranchID         string             `json:"branchId"`
	BranchName       string             `json:"branchName,omitempty"`
	CustomerID       *string            `json:"customerId"`
	CustomerName     string             `json:"customerName,omitempty"`
	CashierID        string             `json:"cashierId"`
	CashierName      string             `json:"cashierName,omitempty"`
	Subtotal         string             `json:"subtotal"`
	DiscountAmount   string             `json:"discountAmount"`
	TaxAmount        string             `json:"taxAmount"`
	TotalAmount      string             `json:"totalAmount"`
	PaidAmount       string             `json:"paidAmount"`
	ChangeAmount     string             `json:"changeAmount"`
	PaymentMethod    string             `json:"paymentMethod"`
	PaymentReference string             `json:"paymentReference,omitempty"`
	Status           string             `json:"status"`
	Notes            string             `json:"notes,omitempty"`
	SaleDate         time.Time          `json:"saleDate"`
	Items            []SaleItemResponse `json:"items,omitempty"`
}

// SaleItemResponse línea de venta.
type SaleItemResponse struct {
	ID             string          `json:"id"`
	ProductID      string          `json:"productId"`
	UnitID         *string         `json:"unitId"`
	ProductName    string          `json:"productName"`
	SKU            string          `json:"sku"`
	UnitName       string          `json:"unitName"`
	Quantity       decimal.Decimal `json:"quantity" swaggertype:"number"`
	BaseQuantity   decimal.Decimal `json:"baseQuantity" swaggertype:"number"`
	UnitPrice      string          `json:"unitPrice"`
	DiscountAmount string          `json:"discountAmount"`
	TaxAmount      string          `json:"taxAmount"`
	Subtotal       string          `json:"subtotal"`
	Total          string          `json:"total"`
}

// CreateReceivingRequest body de POST /api/receivings.
type CreateReceivingRequest struct {
	ReceivingNumber string               `json:"receivingNumber" validate:"max=50"`
	BranchID        string               `json:"branchId" validate:"required,uuid_string"`
	SupplierName    string               `json:"supplierName" validate:"max=200"`
	ReferenceNumber string               `json:"referenceNumber" validate:"max=100"`
	Notes           string               `json:"notes"`
	Items           []ReceivingItemInput `json:"items" validate:"required,min=1,dive"`
}

// ReceivingItemInput línea recibida; sin costPrice se usa el costo actual del producto.
type ReceivingItemInput struct {
	ProductID string           `json:"productId" validate:"required,uuid_string"`
	UnitID    string           `json:"unitId" validate:"omitempty,uuid_string"`
	Quantity  decimal.Decimal  `json:"quantity" swaggertype:"number"`
	CostPrice *decimal.Decimal `json:"costPrice" swaggertype:"number"`
}

// ReceivingResponse recepción con sus líneas.
type ReceivingResponse struct {
	ID              string                  `json:"id"`
	ReceivingNumber string                  `json:"receivingNumber"`
	BranchID        string                  `json:"branchId"`
	BranchName      string                  `json:"branchName,omitempty"`
	SupplierName    string                  `json:"supplierName"`
	ReferenceNumber string                  `json:"referenceNumber"`
	ReceivedBy      string                  `json:"receivedBy"`
	TotalCost       string                  `json:"totalCost"`
	Notes           string                  `json:"notes,omitempty"`
	ReceivedAt      time.Time               `json:"receivedAt"`
	Items           []ReceivingItemResponse `json:"items,omitempty"`
}

// ReceivingItemResponse línea recibida.
type ReceivingItemResponse struct {
	ID           string          `json:"id"`
	ProductID    string          `json:"productId"`
	UnitID       *string         `json:"unitId"`
	UnitName     string          `json:"unitName"`
	Quantity     decimal.Decimal `json:"quantity" swaggertype:"number"`
	BaseQuantity decimal.Decimal `json:"baseQuantity" swaggertype:"number"`
	CostPrice    string          `json:"costPrice"`
	Subtotal     string          `json:"subtotal"`
}
