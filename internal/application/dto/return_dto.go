package dto

import (
	"time"

	"github.com/shopspring/decimal"
)

// ReturnQuery filtros de los listados de devoluciones.
type ReturnQuery struct {
	PageQuery
	BranchID    string `query:"branchId"`
	ReceivingID string `query:"receivingId"`
	SaleID      string `query:"saleId"`
	Status      string `query:"status"`
}

// CreatePurchaseReturnRequest body de POST /api/purchase-returns. Las cantidades se expresan
// en la unidad de la línea recibida.
type CreatePurchaseReturnRequest struct {
	ReturnNumber string                    `json:"returnNumber" validate:"max=50"`
	ReceivingID  string                    `json:"receivingId" validate:"required,uuid_string"`
	SupplierID   *string                   `json:"supplierId" validate:"omitempty,uuid_string"`
	Reason       string                    `json:"reason"`
	Notes        string                    `json:"notes"`
	Items        []PurchaseReturnItemInput `json:"items" validate:"required,min=1,dive"`
}

// PurchaseReturnItemInput línea a devolver.
type PurchaseReturnItemInput struct {
	ReceivingItemID string          `json:"receivingItemId" validate:"required,uuid_string"`
	Quantity        decimal.Decimal `json:"quantity" swaggertype:"number"`
}

// PurchaseReturnResponse devolución a proveedor con sus líneas.
type PurchaseReturnResponse struct {
	ID              string                       `json:"id"`
	ReturnNumber    string                       `json:"returnNumber"`
	ReceivingID     string                       `json:"receivingId"`
	ReceivingNumber string                       `json:"receivingNumber,omitempty"`
	BranchID        string                       `json:"branchId"`
	BranchName      string                       `json:"branchName,omitempty"`
	SupplierID      *string                      `json:"supplierId"`
	SupplierName    string                       `json:"supplierName,omitempty"`
	Reason          string                       `json:"reason,omitempty"`
	Notes           string                       `json:"notes,omitempty"`
	Status          string                       `json:"status"`
	TotalAmount     string                       `json:"totalAmount"`
	ReturnedBy      string                       `json:"returnedBy"`
	ReturnDate      time.Time                    `json:"returnDate"`
	Items           []PurchaseReturnItemResponse `json:"items,omitempty"`
}

// PurchaseReturnItemResponse línea devuelta al proveedor.
type PurchaseReturnItemResponse struct {
	ID              string          `json:"id"`
	ReceivingItemID string          `json:"receivingItemId"`
	ProductID       string          `json:"productId"`
	UnitID          *string         `json:"unitId"`
	UnitName        string          `json:"unitName"`
	Quantity        decimal.Decimal `json:"quantity" swaggertype:"number"`
	BaseQuantity    decimal.Decimal `json:"baseQuantity" swaggertype:"number"`
	CostPrice       string          `json:"costPrice"`
	Subtotal        string          `json:"subtotal"`
}

// CreateSalesReturnRequest body de POST /api/sales-returns. Las cantidades se expresan en la
// unidad vendida.
type CreateSalesReturnRequest struct {
	ReturnNumber string                 `json:"returnNumber" validate:"max=50"`
	SaleID       string                 `json:"saleId" validate:"required,uuid_string"`
	BranchID     string                 `json:"branchId" validate:"required,uuid_string"`
	Reason       string                 `json:"reason" validate:"required"`
	RefundMethod string                 `json:"refundMethod" validate:"omitempty,oneof=cash card transfer qris ewallet store_credit"`
	Notes        string                 `json:"notes"`
	Items        []SalesReturnItemInput `json:"items" validate:"required,min=1,dive"`
}

// SalesReturnItemInput línea a devolver.
type SalesReturnItemInput struct {
	SaleItemID string          `json:"saleItemId" validate:"required,uuid_string"`
	Quantity   decimal.Decimal `json:"quantity" swaggertype:"number"`
}

// UpdateReturnStatusRequest body de PATCH /api/sales-returns/:id/status.
type UpdateReturnStatusRequest struct {
	Status string `json:"status" validate:"required,oneof=pending processed completed cancelled"`
}

// SalesReturnResponse devolución de cliente con sus líneas.
type SalesReturnResponse struct {
	ID           string                    `json:"id"`
	ReturnNumber string                    `json:"returnNumber"`
	SaleID       string                    `json:"saleId"`
	SaleNumber   string                    `json:"saleNumber,omitempty"`
	BranchID     string                    `json:"branchId"`
	BranchName   string                    `json:"branchName,omitempty"`
	CustomerID   *string                   `json:"customerId"`
	Reason       string                    `json:"reason"`
	Notes        string                    `json:"notes,omitempty"`
	RefundMethod string                    `json:"refundMethod"`
	TotalRefund  string                    `json:"totalRefund"`
	Status       string                    `json:"status"`
	ProcessedBy  string                    `json:"processedBy"`
	ReturnDate   time.Time                 `json:"returnDate"`
	Items        []SalesReturnItemResponse `json:"items,omitempty"`
}

// SalesReturnItemResponse línea devuelta por el cliente.
type SalesReturnItemResponse struct {
	ID           string          `json:"id"`
	SaleItemID   string          `json:"saleItemId"`
	ProductID    string          `json:"productId"`
	UnitID       *string         `json:"unitId"`
	ProductName  string          `json:"productName"`
	UnitName     string          `json:"unitName"`
	Quantity     decimal.Decimal `json:"quantity" swaggertype:"number"`
	BaseQuantity decimal.Decimal `json:"baseQuantity" swaggertype:"number"`
	UnitPrice    string          `json:"unitPrice"`
	Subtotal     string          `json:"subtotal"`
}
