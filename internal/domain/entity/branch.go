package entity

import "time"

// Branch sucursal física o lógica; stock y precios se particionan por sucursal.
type Branch struct {
	ID        string
	Code      string // único
	Name      string
	Address   string
	Phone     string
	Email     string
	Type      string // store, warehouse, ...
	IsActive  bool
	CreatedAt time.Time
	UpdatedAt time.Time
	DeletedAt *time.Time
}
