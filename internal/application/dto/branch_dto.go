package dto

import "time"

// BranchRequest entrada para crear o reemplazar una sucursal.
type BranchRequest struct {
	Code     string `json:"code" validate:"required,max=50"`
	Name     string `json:"name" validate:"required,max=200"`
	Address  string `json:"address"`
	Phone    string `json:"phone" validate:"max=50"`
	Email    string `json:"email" validate:"omitempty,email"`
	Type     string `json:"type" validate:"omitempty,oneof=store warehouse"`
	IsActive *bool  `json:"isActive"`
}

// BranchResponse salida de sucursal.
type BranchResponse struct {
	ID        string    `json:"id"`
	Code      string    `json:"code"`
	Name      string    `json:"name"`
	Address   string    `json:"address"`
	Phone     string    `json:"phone"`
	Email     string    `json:"email"`
	Type      string    `json:"type"`
	IsActive  bool      `json:"isActive"`
	CreatedAt time.Time `json:"createdAt"`
}

// CustomerRequest entrada para crear o reemplazar un cliente.
type CustomerRequest struct {
	Code     string `json:"code" validate:"required,max=50"`
	Name     string `json:"name" validate:"required,max=200"`
	Email    string `json:"email" validate:"omitempty,email"`
	Phone    string `json:"phone" validate:"max=50"`
	Address  string `json:"address"`
	IsMember bool   `json:"isMember"`
}

// CustomerResponse salida de cliente.
type CustomerResponse struct {
	ID        string    `json:"id"`
	Code      string    `json:"code"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	Phone     string    `json:"phone"`
	Address   string    `json:"address"`
	IsMember  bool      `json:"isMember"`
	CreatedAt time.Time `json:"createdAt"`
}

// CategoryRequest entrada para crear o reemplazar una categoría.
type CategoryRequest struct {
	ParentID    *string `json:"parentId" validate:"omitempty,uuid_string"`
	Name        string  `json:"name" validate:"required,max=200"`
	Description string  `json:"description"`
	IsActive    *bool   `json:"isActive"`
}

// CategoryResponse salida de categoría.
type CategoryResponse struct {
	ID          string    `json:"id"`
	ParentID    *string   `json:"parentId"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	IsActive    bool      `json:"isActive"`
	CreatedAt   time.Time `json:"createdAt"`
}
