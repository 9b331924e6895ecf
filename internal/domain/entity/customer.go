package entity

import "time"

// Customer cliente del POS (precio de miembro, historial de ventas).
type Customer struct {
	ID        string
	Code      string // único entre clientes vivos
	Name      string
	Email     string
	Phone     string
	Address   string
	IsMember  bool
	CreatedAt time.Time
	UpdatedAt time.Time
	DeletedAt *time.Time
}
