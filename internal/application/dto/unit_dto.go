package dto

import (
	"time"

	"github.com/shopspring/decimal"
)

// CreateUnitRequest body de POST /api/products/:id/units.
type CreateUnitRequest struct {
	UnitName        string           `json:"unitName"`
	ConversionValue *decimal.Decimal `json:"conversionValue" swaggertype:"number"`
	IsBaseUnit      bool             `json:"isBaseUnit"`
	IsPurchasable   *bool            `json:"isPurchasable"`
	IsSellable      *bool            `json:"isSellable"`
	Barcode         *string          `json:"barcode"`
	SortOrder       *int             `json:"sortOrder"`
}

// UpdateUnitRequest body de PUT /api/products/:id/units/:unitId; solo se aplican los campos presentes.
type UpdateUnitRequest struct {
	UnitName        *string          `json:"unitName"`
	ConversionValue *decimal.Decimal `json:"conversionValue" swaggertype:"number"`
	IsPurchasable   *bool            `json:"isPurchasable"`
	IsSellable      *bool            `json:"isSellable"`
	Barcode         *string          `json:"barcode"`
	SortOrder       *int             `json:"sortOrder"`
}

// Empty indica que no vino ningún campo.
func (r UpdateUnitRequest) Empty() bool {
	return r.UnitName == nil && r.ConversionValue == nil && r.IsPurchasable == nil &&
		r.IsSellable == nil && r.Barcode == nil && r.SortOrder == nil
}

// UnitResponse unidad de un producto.
type UnitResponse struct {
	ID              string          `json:"id"`
	ProductID       string          `json:"productId"`
	UnitName        string          `json:"unitName"`
	ConversionValue decimal.Decimal `json:"conversionValue" swaggertype:"number"`
	IsBaseUnit      bool            `json:"isBaseUnit"`
	IsPurchasable   bool            `json:"isPurchasable"`
	IsSellable      bool            `json:"isSellable"`
	Barcode         *string         `json:"barcode"`
	SortOrder       int             `json:"sortOrder"`
	CreatedAt       time.Time       `json:"createdAt"`
	UpdatedAt       time.Time       `json:"updatedAt"`
}
