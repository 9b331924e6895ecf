package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// ProductUnit unidad de medida alterna de un producto. ConversionValue es el multiplicador
// respecto a la unidad base; la unidad base tiene IsBaseUnit y conversión 1.
type ProductUnit struct {
	ID              string
	ProductID       string
	UnitName        string
	ConversionValue decimal.Decimal
	IsBaseUnit      bool
	IsPurchasable   bool
	IsSellable      bool
	Barcode         *string
	SortOrder       int
	CreatedAt       time.Time
	UpdatedAt       time.Time
	DeletedAt       *time.Time
}
