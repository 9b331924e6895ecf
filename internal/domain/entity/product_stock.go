package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// ProductStock existencias de un producto en una sucursal.
type ProductStock struct {
	ProductID        string
	BranchID         string
	BranchName       string // solo en lecturas con join
	Quantity         decimal.Decimal
	ReservedQuantity decimal.Decimal
	UpdatedAt        time.Time
}

// AvailableQuantity se calcula en cada lectura; nunca se persiste.
func (s *ProductStock) AvailableQuantity() decimal.Decimal {
	return s.Quantity.Sub(s.ReservedQuantity)
}
