package entity

import (
	"encoding/json"
	"time"
)

// Acciones y tipos de entidad registrados en audit_logs.
const (
	AuditActionStockUpdate  = "stock_update"
	AuditEntityProductStock = "product_stock"
)

// AuditLog registro inmutable: quién cambió qué, en qué sucursal, con foto antes/después.
// Solo se inserta; no existe ruta de update ni delete.
type AuditLog struct {
	ID         string
	UserID     string
	BranchID   string
	Action     string
	EntityType string
	EntityID   string
	OldData    json.RawMessage
	NewData    json.RawMessage
	IPAddress  string
	UserAgent  string
	CreatedAt  time.Time
}
