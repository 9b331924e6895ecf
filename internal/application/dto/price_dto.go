package dto

import (
	"encoding/json"
	"time"

	"github.com/shopspring/decimal"
)

// UpsertPriceRequest body de PUT|POST /api/products/:id/price. Los precios llegan crudos
// (número, string o null) y se sanean en el caso de uso.
type UpsertPriceRequest struct {
	BranchID       string          `json:"branchId" validate:"uuid_string"`
	UnitID         string          `json:"unitId" validate:"uuid_string"`
	CostPrice      json.RawMessage `json:"costPrice" swaggertype:"string"`
	SellingPrice   json.RawMessage `json:"sellingPrice" swaggertype:"string"`
	WholesalePrice json.RawMessage `json:"wholesalePrice" swaggertype:"string"`
	MemberPrice    json.RawMessage `json:"memberPrice" swaggertype:"string"`
}

// BulkPriceRequest body de POST /api/products/:id/prices/bulk.
type BulkPriceRequest struct {
	UnitID         string          `json:"unitId" validate:"uuid_string"`
	CostPrice      json.RawMessage `json:"costPrice" swaggertype:"string"`
	SellingPrice   json.RawMessage `json:"sellingPrice" swaggertype:"string"`
	WholesalePrice json.RawMessage `json:"wholesalePrice" swaggertype:"string"`
	MemberPrice    json.RawMessage `json:"memberPrice" swaggertype:"string"`
}

// PriceResponse fila de la matriz de precios; el dinero va con 2 decimales fijos.
type PriceResponse struct {
	ID              string           `json:"id"`
	ProductID       string           `json:"productId"`
	BranchID        string           `json:"branchId"`
	UnitID          string           `json:"unitId"`
	BranchCode      string           `json:"branchCode,omitempty"`
	BranchName      string           `json:"branchName,omitempty"`
	UnitName        string           `json:"unitName,omitempty"`
	ConversionValue *decimal.Decimal `json:"conversionValue,omitempty"`
	CostPrice       string           `json:"costPrice"`
	SellingPrice    string           `json:"sellingPrice"`
	WholesalePrice  *string          `json:"wholesalePrice"`
	MemberPrice     *string          `json:"memberPrice"`
	UpdatedAt       time.Time        `json:"updatedAt"`
}

// BulkPriceResponse resultado de la actualización masiva.
type BulkPriceResponse struct {
	Updated   int    `json:"updated"`
	UnitID    string `json:"unitId"`
	ProductID string `json:"productId"`
}
