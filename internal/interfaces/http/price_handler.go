package http

import (
	"fmt"

	"github.com/gofiber/fiber/v2"

	"github.com/ArtEnginer/POS/internal/application/dto"
	"github.com/ArtEnginer/POS/internal/application/pricing"
)

// PriceHandler matriz de precios por sucursal y unidades de conversión de un producto.
type PriceHandler struct {
	prices *pricing.PriceResolver
	units  *pricing.UnitConverter
}

// NewPriceHandler construye el handler.
func NewPriceHandler(prices *pricing.PriceResolver, units *pricing.UnitConverter) *PriceHandler {
	return &PriceHandler{prices: prices, units: units}
}

// UpsertPrice godoc
// @Summary      Crear o actualizar el precio de un producto en una sucursal y unidad
// @Description  Los precios se sanean a 2 decimales; negativos quedan en 0.00 y el máximo es 9,999,999,999,999.99.
// @Tags         prices
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        id    path  string                  true  "ID del producto"
// @Param        body  body  dto.UpsertPriceRequest  true  "branchId, unitId y precios"
// @Success      200   {object}  dto.Envelope{data=dto.PriceResponse}
// @Failure      400   {object}  dto.Envelope
// @Failure      404   {object}  dto.Envelope
// @Router       /api/products/{id}/price [put]
func (h *PriceHandler) UpsertPrice(c *fiber.Ctx) error {
	var in dto.UpsertPriceRequest
	if err := c.BodyParser(&in); err != nil {
		return invalidBody(c)
	}
	if valid, err := validate(c, &in); !valid {
		return err
	}
	out, err := h.prices.UpsertPrice(c.UserContext(), c.Params("id"), in)
	if err != nil {
		return writeError(c, err)
	}
	return ok(c, out, "Product price updated successfully")
}

// BulkUpsertPrice godoc
// @Summary      Aplicar el mismo precio en todas las sucursales activas
// @Tags         prices
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        id    path  string                true  "ID del producto"
// @Param        body  body  dto.BulkPriceRequest  true  "unitId y precios"
// @Success      200   {object}  dto.Envelope{data=dto.BulkPriceResponse}
// @Failure      400   {object}  dto.Envelope
// @Failure      404   {object}  dto.Envelope
// @Router       /api/products/{id}/prices/bulk [post]
func (h *PriceHandler) BulkUpsertPrice(c *fiber.Ctx) error {
	var in dto.BulkPriceRequest
	if err := c.BodyParser(&in); err != nil {
		return invalidBody(c)
	}
	if valid, err := validate(c, &in); !valid {
		return err
	}
	out, err := h.prices.BulkUpsertPrice(c.UserContext(), c.Params("id"), in)
	if err != nil {
		return writeError(c, err)
	}
	return ok(c, out, fmt.Sprintf("Prices updated for %d branches", out.Updated))
}

// ListPrices godoc
// @Summary      Matriz de precios de un producto
// @Tags         prices
// @Security     Bearer
// @Produce      json
// @Param        id        path   string  true   "ID del producto"
// @Param        unitId    query  string  false  "Filtrar por unidad"
// @Param        branchId  query  string  false  "Filtrar por sucursal"
// @Success      200       {object}  dto.Envelope{data=[]dto.PriceResponse}
// @Router       /api/products/{id}/prices [get]
func (h *PriceHandler) ListPrices(c *fiber.Ctx) error {
	out, err := h.prices.ListPrices(c.UserContext(), c.Params("id"), c.Query("unitId"), c.Query("branchId"))
	if err != nil {
		return writeError(c, err)
	}
	return ok(c, out, "")
}

// CreateUnit godoc
// @Summary      Agregar unidad de conversión
// @Description  Siembra precios en cero para la unidad en cada sucursal activa.
// @Tags         units
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        id    path  string                 true  "ID del producto"
// @Param        body  body  dto.CreateUnitRequest  true  "unitName, conversionValue"
// @Success      201   {object}  dto.Envelope{data=dto.UnitResponse}
// @Failure      400   {object}  dto.Envelope
// @Failure      404   {object}  dto.Envelope
// @Failure      409   {object}  dto.Envelope
// @Router       /api/products/{id}/units [post]
func (h *PriceHandler) CreateUnit(c *fiber.Ctx) error {
	var in dto.CreateUnitRequest
	if err := c.BodyParser(&in); err != nil {
		return invalidBody(c)
	}
	out, err := h.units.CreateUnit(c.UserContext(), c.Params("id"), in)
	if err != nil {
		return writeError(c, err)
	}
	return created(c, out, "Product unit created successfully")
}

// ListUnits godoc
// @Summary      Unidades de un producto
// @Tags         units
// @Security     Bearer
// @Produce      json
// @Param        id   path  string  true  "ID del producto"
// @Success      200  {object}  dto.Envelope{data=[]dto.UnitResponse}
// @Router       /api/products/{id}/units [get]
func (h *PriceHandler) ListUnits(c *fiber.Ctx) error {
	out, err := h.units.ListUnits(c.UserContext(), c.Params("id"))
	if err != nil {
		return writeError(c, err)
	}
	return ok(c, out, "")
}

// UpdateUnit godoc
// @Summary      Actualizar unidad de conversión
// @Tags         units
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        id      path  string                 true  "ID del producto"
// @Param        unitId  path  string                 true  "ID de la unidad"
// @Param        body    body  dto.UpdateUnitRequest  true  "Campos a actualizar"
// @Success      200     {object}  dto.Envelope{data=dto.UnitResponse}
// @Failure      400     {object}  dto.Envelope
// @Failure      404     {object}  dto.Envelope
// @Router       /api/products/{id}/units/{unitId} [put]
func (h *PriceHandler) UpdateUnit(c *fiber.Ctx) error {
	var in dto.UpdateUnitRequest
	if err := c.BodyParser(&in); err != nil {
		return invalidBody(c)
	}
	out, err := h.units.UpdateUnit(c.UserContext(), c.Params("id"), c.Params("unitId"), in)
	if err != nil {
		return writeError(c, err)
	}
	return ok(c, out, "Product unit updated successfully")
}

// DeleteUnit godoc
// @Summary      Eliminar unidad de conversión (no la unidad base)
// @Tags         units
// @Security     Bearer
// @Produce      json
// @Param        id      path  string  true  "ID del producto"
// @Param        unitId  path  string  true  "ID de la unidad"
// @Success      200     {object}  dto.Envelope
// @Failure      400     {object}  dto.Envelope
// @Failure      404     {object}  dto.Envelope
// @Router       /api/products/{id}/units/{unitId} [delete]
func (h *PriceHandler) DeleteUnit(c *fiber.Ctx) error {
	if err := h.units.DeleteUnit(c.UserContext(), c.Params("id"), c.Params("unitId")); err != nil {
		return writeError(c, err)
	}
	return ok(c, nil, "Product unit deleted successfully")
}
