package dto

import (
	"time"

	"github.com/shopspring/decimal"
)

// AdjustStockRequest body de PUT /api/products/:id/stock.
type AdjustStockRequest struct {
	BranchID  string           `json:"branchId" validate:"uuid_string"`
	Quantity  *decimal.Decimal `json:"quantity" swaggertype:"number"`
	Operation string           `json:"operation" enums:"set,add,subtract"`
}

// StockResponse stock de un producto en una sucursal; availableQuantity siempre calculado.
type StockResponse struct {
	ProductID         string          `json:"productId"`
	BranchID          string          `json:"branchId"`
	BranchName        string          `json:"branchName,omitempty"`
	Quantity          decimal.Decimal `json:"quantity" swaggertype:"number"`
	ReservedQuantity  decimal.Decimal `json:"reservedQuantity" swaggertype:"number"`
	AvailableQuantity decimal.Decimal `json:"availableQuantity" swaggertype:"number"`
	UpdatedAt         time.Time       `json:"updatedAt"`
}

// StockChange detalle del ajuste aplicado.
type StockChange struct {
	OldQuantity decimal.Decimal `json:"oldQuantity" swaggertype:"number"`
	NewQuantity decimal.Decimal `json:"newQuantity" swaggertype:"number"`
	Operation   string          `json:"operation"`
	Difference  decimal.Decimal `json:"difference" swaggertype:"number"`
}

// AdjustStockResponse stock resultante más el detalle del cambio.
type AdjustStockResponse struct {
	Stock  StockResponse `json:"stock"`
	Change StockChange   `json:"change"`
}

// StockHistoryEntry entrada del historial de auditoría de stock.
type StockHistoryEntry struct {
	ID        string    `json:"id"`
	UserID    string    `json:"userId,omitempty"`
	BranchID  string    `json:"branchId,omitempty"`
	Action    string    `json:"action"`
	OldData   any       `json:"oldData"`
	NewData   any       `json:"newData"`
	IPAddress string    `json:"ipAddress,omitempty"`
	CreatedAt time.Time `json:"createdAt"`
}
