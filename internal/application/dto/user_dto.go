package dto

import "time"

// LoginRequest entrada para login (username o email).
type LoginRequest struct {
	Login    string `json:"login" validate:"required"`
	Password string `json:"password" validate:"required"`
}

// LoginResponse token y datos del usuario.
type LoginResponse struct {
	Token     string       `json:"token"`
	ExpiresIn int          `json:"expiresIn"` // segundos
	User      UserResponse `json:"user"`
}

// CreateUserRequest entrada para crear un usuario.
type CreateUserRequest struct {
	Username string  `json:"username" validate:"required,min=3,max=100"`
	Email    string  `json:"email" validate:"required,email"`
	Password string  `json:"password" validate:"required,min=8"`
	FullName string  `json:"fullName" validate:"max=200"`
	Role     string  `json:"role" validate:"required,oneof=super_admin admin manager cashier"`
	BranchID *string `json:"branchId" validate:"omitempty,uuid_string"`
}

// UpdateUserRequest actualización parcial de usuario.
type UpdateUserRequest struct {
	Email    *string `json:"email" validate:"omitempty,email"`
	Password *string `json:"password" validate:"omitempty,min=8"`
	FullName *string `json:"fullName" validate:"omitempty,max=200"`
	Role     *string `json:"role" validate:"omitempty,oneof=super_admin admin manager cashier"`
	BranchID *string `json:"branchId" validate:"omitempty,uuid_string"`
	Status   *string `json:"status" validate:"omitempty,oneof=active inactive"`
}

// UserResponse salida de usuario (nunca incluye password).
type UserResponse struct {
	ID          string     `json:"id"`
	Username    string     `json:"username"`
	Email       string     `json:"email"`
	FullName    string     `json:"fullName"`
	Role        string     `json:"role"`
	BranchID    *string    `json:"branchId"`
	Status      string     `json:"status"`
	LastLoginAt *time.Time `json:"lastLoginAt,omitempty"`
	CreatedAt   time.Time  `json:"createdAt"`
}
