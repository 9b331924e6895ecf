package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Supplier proveedor de mercancía. Al borrarse, el código se libera renombrándolo.
type Supplier struct {
	ID             string
	Code           string
	Name           string
	Email          string
	Phone          string
	Address        string
	City           string
	TaxID          string
	PaymentTerms   int // días
	CreditLimit    decimal.Decimal
	CurrentBalance decimal.Decimal
	IsActive       bool
	Notes          string
	CreatedAt      time.Time
	UpdatedAt      time.Time
	DeletedAt      *time.Time
}
