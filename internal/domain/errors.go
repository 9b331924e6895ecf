package domain

import "errors"

// Errores de dominio (sin dependencias externas).
var (
	ErrNotFound           = errors.New("recurso no encontrado")
	ErrUserNotFound       = errors.New("usuario no encontrado")
	ErrEmailAlreadyExists = errors.New("el email ya está registrado")
	ErrInvalidInput       = errors.New("entrada inválida")
	ErrDuplicate          = errors.New("recurso duplicado")
	ErrUnauthorized       = errors.New("no autorizado")
	ErrForbidden          = errors.New("acceso denegado")
	ErrConflict           = errors.New("conflicto con el estado actual")
	ErrInsufficientStock  = errors.New("stock insuficiente")
)

// ValidationError error corregible por el cliente (400). Details lleva los valores
// que causaron el rechazo (cantidades, límites) para depuración.
type ValidationError struct {
	Message string
	Details map[string]any
}

func (e *ValidationError) Error() string { return e.Message }

// Is permite errors.Is(err, ErrInvalidInput).
func (e *ValidationError) Is(target error) bool { return target == ErrInvalidInput }

// NotFoundError entidad referenciada ausente o con soft-delete (404).
type NotFoundError struct {
	Message string
}

func (e *NotFoundError) Error() string { return e.Message }

func (e *NotFoundError) Is(target error) bool { return target == ErrNotFound }

// ConflictError clave única duplicada u otro choque con el estado actual (409).
type ConflictError struct {
	Message string
}

func (e *ConflictError) Error() string { return e.Message }

func (e *ConflictError) Is(target error) bool { return target == ErrConflict || target == ErrDuplicate }

// NewValidationError construye un ValidationError; details puede ser nil.
func NewValidationError(message string, details map[string]any) *ValidationError {
	return &ValidationError{Message: message, Details: details}
}

// NewNotFoundError construye un NotFoundError.
func NewNotFoundError(message string) *NotFoundError {
	return &NotFoundError{Message: message}
}

// NewConflictError construye un ConflictError.
func NewConflictError(message string) *ConflictError {
	return &ConflictError{Message: message}
}
