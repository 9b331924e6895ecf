package dto

import (
	"time"

	"github.com/shopspring/decimal"
)

// SupplierRequest entrada para crear o reemplazar un proveedor.
type SupplierRequest struct {
	Code         string           `json:"code" validate:"required,max=50"`
	Name         string           `json:"name" validate:"required,max=200"`
	Email        string           `json:"email" validate:"omitempty,email"`
	Phone        string           `json:"phone" validate:"max=50"`
	Address      string           `json:"address"`
	City         string           `json:"city" validate:"max=100"`
	TaxID        string           `json:"taxId" validate:"max=50"`
	PaymentTerms int              `json:"paymentTerms" validate:"gte=0"`
	CreditLimit  *decimal.Decimal `json:"creditLimit" swaggertype:"number"`
	IsActive     *bool            `json:"isActive"`
	Notes        string           `json:"notes"`
}

// SupplierQuery filtros de GET /api/suppliers.
type SupplierQuery struct {
	PageQuery
	Search   string `query:"search"`
	IsActive string `query:"isActive"` // "true" | "false" | ""
}

// SupplierResponse salida de proveedor.
type SupplierResponse struct {
	ID             string    `json:"id"`
	Code           string    `json:"code"`
	Name           string    `json:"name"`
	Email          string    `json:"email,omitempty"`
	Phone          string    `json:"phone,omitempty"`
	Address        string    `json:"address,omitempty"`
	City           string    `json:"city,omitempty"`
	TaxID          string    `json:"taxId,omitempty"`
	PaymentTerms   int       `json:"paymentTerms"`
	CreditLimit    string    `json:"creditLimit"`
	CurrentBalance string    `json:"currentBalance"`
	IsActive       bool      `json:"isActive"`
	Notes          string    `json:"notes,omitempty"`
	CreatedAt      time.Time `json:"createdAt"`
	UpdatedAt      time.Time `json:"updatedAt"`
}

// SupplierCodeResponse código sugerido para un proveedor nuevo.
type SupplierCodeResponse struct {
	Code string `json:"code"`
}
