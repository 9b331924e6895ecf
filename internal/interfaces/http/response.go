package http

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog/log"

	"github.com/ArtEnginer/POS/internal/application/dto"
	"github.com/ArtEnginer/POS/internal/domain"
	"github.com/ArtEnginer/POS/pkg/validator"
)

// ok responde 200 con el envelope de éxito.
func ok(c *fiber.Ctx, data any, message string) error {
	return c.JSON(dto.Envelope{Success: true, Data: data, Message: message})
}

// created responde 201 con el envelope de éxito.
func created(c *fiber.Ctx, data any, message string) error {
	return c.Status(fiber.StatusCreated).JSON(dto.Envelope{Success: true, Data: data, Message: message})
}

// page responde 200 con datos paginados.
func page(c *fiber.Ctx, data any, p *dto.Pagination) error {
	return c.JSON(dto.Envelope{Success: true, Data: data, Pagination: p})
}

// fail responde con el envelope de error.
func fail(c *fiber.Ctx, status int, code, message string, details any) error {
	return c.Status(status).JSON(dto.Envelope{
		Success: false,
		Error:   &dto.ErrorResponse{Code: code, Message: message},
		Details: details,
	})
}

func invalidBody(c *fiber.Ctx) error {
	return fail(c, fiber.StatusBadRequest, "INVALID_BODY", "Invalid request body", nil)
}

// validate aplica los tags `validate` del DTO; si falla ya escribió el 400.
func validate(c *fiber.Ctx, in any) (bool, error) {
	if errs := validator.ValidateStruct(in); len(errs) > 0 {
		return false, fail(c, fiber.StatusBadRequest, "VALIDATION", "Validation failed", validator.Details(errs))
	}
	return true, nil
}

// writeError traduce errores de dominio a HTTP. Lo no clasificado se registra y se oculta como 500.
func writeError(c *fiber.Ctx, err error) error {
	var verr *domain.ValidationError
	var nerr *domain.NotFoundError
	var cerr *domain.ConflictError
	switch {
	case errors.As(err, &verr):
		var details any
		if len(verr.Details) > 0 {
			details = verr.Details
		}
		return fail(c, fiber.StatusBadRequest, "VALIDATION", verr.Message, details)
	case errors.As(err, &nerr):
		return fail(c, fiber.StatusNotFound, "NOT_FOUND", nerr.Message, nil)
	case errors.As(err, &cerr):
		return fail(c, fiber.StatusConflict, "CONFLICT", cerr.Message, nil)
	case errors.Is(err, domain.ErrUserNotFound):
		return fail(c, fiber.StatusNotFound, "NOT_FOUND", "User not found", nil)
	case errors.Is(err, domain.ErrNotFound):
		return fail(c, fiber.StatusNotFound, "NOT_FOUND", "Resource not found", nil)
	case errors.Is(err, domain.ErrEmailAlreadyExists):
		return fail(c, fiber.StatusConflict, "CONFLICT", "Username or email already exists", nil)
	case errors.Is(err, domain.ErrDuplicate), errors.Is(err, domain.ErrConflict):
		return fail(c, fiber.StatusConflict, "CONFLICT", "Resource already exists", nil)
	case errors.Is(err, domain.ErrUnauthorized):
		return fail(c, fiber.StatusUnauthorized, "UNAUTHORIZED", "Invalid credentials", nil)
	case errors.Is(err, domain.ErrForbidden):
		return fail(c, fiber.StatusForbidden, "FORBIDDEN", "Access denied", nil)
	case errors.Is(err, domain.ErrInvalidInput):
		return fail(c, fiber.StatusBadRequest, "VALIDATION", "Invalid input", nil)
	}
	log.Error().Err(err).
		Str("method", c.Method()).
		Str("path", c.Path()).
		Msg("error no controlado en handler")
	return fail(c, fiber.StatusInternalServerError, "INTERNAL", "Internal server error", nil)
}

// ErrorHandler manejador global de Fiber (rutas inexistentes, panics recuperados, body demasiado grande).
func ErrorHandler(c *fiber.Ctx, err error) error {
	var fe *fiber.Error
	if errors.As(err, &fe) {
		return fail(c, fe.Code, "HTTP_ERROR", fe.Message, nil)
	}
	return writeError(c, err)
}

// pageQuery lee ?page=&limit= normalizados.
func pageQuery(c *fiber.Ctx) dto.PageQuery {
	p := dto.PageQuery{Page: c.QueryInt("page", 1), Limit: c.QueryInt("limit", 20)}
	p.Normalize()
	return p
}
