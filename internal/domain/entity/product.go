package entity

import (
	"encoding/json"
	"time"

	"github.com/shopspring/decimal"
)

// DefaultUnit unidad base asignada cuando el producto no indica una.
const DefaultUnit = "PCS"

// Product representa un producto del catálogo (compartido por todas las sucursales).
// El stock vive en ProductStock y los precios por sucursal/unidad en ProductBranchPrice.
type Product struct {
	ID                 string
	SKU                string  // único entre productos vivos
	Barcode            *string // opcional
	Name               string
	Description        string
	CategoryID         *string
	Unit               string          // nombre de la unidad base
	CostPrice          decimal.Decimal // costo promedio
	SellingPrice       decimal.Decimal // precio de referencia
	MinStock           decimal.Decimal
	MaxStock           decimal.Decimal
	ReorderPoint       decimal.Decimal
	TaxRate            decimal.Decimal // porcentaje, ej. 11 = 11%
	DiscountPercentage decimal.Decimal
	IsActive           bool
	IsTrackable        bool
	ImageURL           string
	Attributes         json.RawMessage
	CreatedAt          time.Time
	UpdatedAt          time.Time
	DeletedAt          *time.Time
}

// ProductListItem producto con el stock agregado (total o de una sucursal).
type ProductListItem struct {
	Product
	CategoryName      string
	BranchID          string // solo en listados por sucursal (low-stock)
	StockQuantity     decimal.Decimal
	AvailableQuantity decimal.Decimal
}
