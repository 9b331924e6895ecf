package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// ProductBranchPrice precio de un producto para una sucursal y unidad. Una sola fila por
// (ProductID, BranchID, ProductUnitID).
type ProductBranchPrice struct {
	ID             string
	ProductID      string
	BranchID       string
	ProductUnitID  string
	CostPrice      decimal.Decimal
	SellingPrice   decimal.Decimal
	WholesalePrice *decimal.Decimal
	MemberPrice    *decimal.Decimal
	CreatedAt      time.Time
	UpdatedAt      time.Time

	// Datos de join para listados.
	BranchCode      string
	BranchName      string
	UnitName        string
	ConversionValue decimal.Decimal
}
