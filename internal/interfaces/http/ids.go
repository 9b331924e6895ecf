package http

import (
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

// Parámetros de query que filtran por id; se validan antes de llegar a una columna UUID.
var queryIDs = []string{"branchId", "unitId", "categoryId", "cashierId", "customerId", "supplierId", "receivingId", "saleId"}

// ValidQueryIDs responde 400 si un filtro de id en la query no es un UUID.
func ValidQueryIDs() fiber.Handler {
	return func(c *fiber.Ctx) error {
		details := map[string]any{}
		for _, name := range queryIDs {
			if v := c.Query(name); v != "" {
				if _, err := uuid.Parse(v); err != nil {
					details[name] = "uuid_string"
				}
			}
		}
		if len(details) > 0 {
			return fail(c, fiber.StatusBadRequest, "VALIDATION", "Validation failed", details)
		}
		return c.Next()
	}
}

// pathIDs valida los parámetros de ruta de la ruta actual. Un id que no es UUID no puede
// existir, así que responde 404 con el mensaje del recurso.
func pathIDs(resource string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		for _, name := range c.Route().Params {
			if _, err := uuid.Parse(c.Params(name)); err == nil {
				continue
			}
			msg := resource + " not found"
			if name == "unitId" {
				msg = "Product unit not found"
			}
			return fail(c, fiber.StatusNotFound, "NOT_FOUND", msg, nil)
		}
		return c.Next()
	}
}
