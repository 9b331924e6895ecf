package entity

import "time"

// Category agrupa productos (jerárquica opcional).
type Category struct {
	ID          string
	ParentID    *string // nil si es raíz
	Name        string
	Description string
	IsActive    bool
	CreatedAt   time.Time
	UpdatedAt   time.Time
}
