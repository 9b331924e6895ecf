package dto

import (
	"encoding/json"
	"time"

	"github.com/shopspring/decimal"
)

// CreateProductRequest entrada para crear un producto. Los precios llegan crudos y se sanean.
type CreateProductRequest struct {
	SKU                string           `json:"sku" validate:"required,max=100"`
	Barcode            *string          `json:"barcode" validate:"omitempty,max=100"`
	Name               string           `json:"name" validate:"required,max=255"`
	Description        string           `json:"description"`
	CategoryID         *string          `json:"categoryId" validate:"omitempty,uuid_string"`
	Unit               string           `json:"unit" validate:"max=50"`
	CostPrice          json.RawMessage  `json:"costPrice" swaggertype:"string"`
	SellingPrice       json.RawMessage  `json:"sellingPrice" swaggertype:"string"`
	MinStock           *decimal.Decimal `json:"minStock" swaggertype:"number"`
	MaxStock           *decimal.Decimal `json:"maxStock" swaggertype:"number"`
	ReorderPoint       *decimal.Decimal `json:"reorderPoint" swaggertype:"number"`
	TaxRate            *decimal.Decimal `json:"taxRate" swaggertype:"number"`
	DiscountPercentage *decimal.Decimal `json:"discountPercentage" swaggertype:"number"`
	IsActive           *bool            `json:"isActive"`
	IsTrackable        *bool            `json:"isTrackable"`
	ImageURL           string           `json:"imageUrl"`
	Attributes         json.RawMessage  `json:"attributes" swaggertype:"object"`
}

// UpdateProductRequest entrada para actualizar un producto (sin costo ni stock).
type UpdateProductRequest struct {
	SKU                *string          `json:"sku" validate:"omitempty,min=1,max=100"`
	Barcode            *string          `json:"barcode" validate:"omitempty,max=100"`
	Name               *string          `json:"name" validate:"omitempty,min=1,max=255"`
	Description        *string          `json:"description"`
	CategoryID         *string          `json:"categoryId" validate:"omitempty,uuid_string"`
	Unit               *string          `json:"unit" validate:"omitempty,max=50"`
	SellingPrice       json.RawMessage  `json:"sellingPrice" swaggertype:"string"`
	MinStock           *decimal.Decimal `json:"minStock" swaggertype:"number"`
	MaxStock           *decimal.Decimal `json:"maxStock" swaggertype:"number"`
	ReorderPoint       *decimal.Decimal `json:"reorderPoint" swaggertype:"number"`
	TaxRate            *decimal.Decimal `json:"taxRate" swaggertype:"number"`
	DiscountPercentage *decimal.Decimal `json:"discountPercentage" swaggertype:"number"`
	IsActive           *bool            `json:"isActive"`
	IsTrackable        *bool            `json:"isTrackable"`
	ImageURL           *string          `json:"imageUrl"`
	Attributes         json.RawMessage  `json:"attributes" swaggertype:"object"`
}

// ProductQuery filtros de GET /api/products.
type ProductQuery struct {
	PageQuery
	Search     string `query:"search"`
	CategoryID string `query:"categoryId"`
	IsActive   string `query:"isActive"`
	BranchID   string `query:"branchId"`
}

// ProductResponse salida de un producto.
type ProductResponse struct {
	ID                 string          `json:"id"`
	SKU                string          `json:"sku"`
	Barcode            *string         `json:"barcode"`
	Name               string          `json:"name"`
	Description        string          `json:"description"`
	CategoryID         *string         `json:"categoryId"`
	CategoryName       string          `json:"categoryName,omitempty"`
	Unit               string          `json:"unit"`
	CostPrice          string          `json:"costPrice"`
	SellingPrice       string          `json:"sellingPrice"`
	MinStock           decimal.Decimal `json:"minStock" swaggertype:"number"`
	MaxStock           decimal.Decimal `json:"maxStock" swaggertype:"number"`
	ReorderPoint       decimal.Decimal `json:"reorderPoint" swaggertype:"number"`
	TaxRate            decimal.Decimal `json:"taxRate" swaggertype:"number"`
	DiscountPercentage decimal.Decimal `json:"discountPercentage" swaggertype:"number"`
	IsActive           bool            `json:"isActive"`
	IsTrackable        bool            `json:"isTrackable"`
	ImageURL           string          `json:"imageUrl"`
	Attributes         json.RawMessage `json:"attributes,omitempty" swaggertype:"object"`
	CreatedAt          time.Time       `json:"createdAt"`
	UpdatedAt          time.Time       `json:"updatedAt"`

	// Solo en listados.
	BranchID          string           `json:"branchId,omitempty"`
	StockQuantity     *decimal.Decimal `json:"stockQuantity,omitempty" swaggertype:"number"`
	AvailableQuantity *decimal.Decimal `json:"availableQuantity,omitempty" swaggertype:"number"`
}

// ProductCompleteResponse producto con unidades, precios y stock (GET /api/products/:id/complete).
type ProductCompleteResponse struct {
	Product ProductResponse `json:"product"`
	Units   []UnitResponse  `json:"units"`
	Prices  []PriceResponse `json:"prices"`
	Stocks  []StockResponse `json:"stocks"`
}

// ProductSheetRow fila de la hoja de importación/exportación de productos.
type ProductSheetRow struct {
	Row          int // número de fila en la hoja (1 = encabezado)
	SKU          string
	Barcode      string
	Name         string
	Description  string
	Unit         string
	CostPrice    string
	SellingPrice string
	MinStock     string
	ReorderPoint string
	TaxRate      string
	Stock        string // solo exportación: total en todas las sucursales
}

// ImportResult resultado de la importación masiva.
type ImportResult struct {
	Imported int           `json:"imported"`
	Updated  int           `json:"updated"`
	Failed   int           `json:"failed"`
	Errors   []ImportError `json:"errors"`
}

// ImportError fila rechazada.
type ImportError struct {
	Row     int    `json:"row"`
	SKU     string `json:"sku,omitempty"`
	Message string `json:"message"`
}
