package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/ArtEnginer/POS/internal/application/billing"
	"github.com/ArtEnginer/POS/internal/application/dto"
)

// SaleHandler maneja ventas y tickets (protegido).
type SaleHandler struct {
	uc      *billing.SaleUseCase
	receipt *billing.ReceiptUseCase
}

// NewSaleHandler construye el handler.
func NewSaleHandler(uc *billing.SaleUseCase, receipt *billing.ReceiptUseCase) *SaleHandler {
	return &SaleHandler{uc: uc, receipt: receipt}
}

// Create godoc
// @Summary      Registrar venta
// @Description  Resuelve precios, convierte a unidad base y descuenta stock en la misma transacción.
//
//	Si alguna línea deja stock negativo se revierte la venta completa.
//
// @Tags         sales
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.CreateSaleRequest  true  "branchId, items, paidAmount"
// @Success      201   {object}  dto.Envelope{data=dto.SaleResponse}
// @Failure      400   {object}  dto.Envelope
// @Failure      404   {object}  dto.Envelope
// @Failure      409   {object}  dto.Envelope
// @Router       /api/sales [post]
func (h *SaleHandler) Create(c *fiber.Ctx) error {
	var in dto.CreateSaleRequest
	if err := c.BodyParser(&in); err != nil {
		return invalidBody(c)
	}
	if valid, err := validate(c, &in); !valid {
		return err
	}
	out, err := h.uc.CreateSale(c.UserContext(), actorFrom(c), in)
	if err != nil {
		return writeError(c, err)
	}
	return created(c, out, "Sale created successfully")
}

// List godoc
// @Summary      Listar ventas
// @Tags         sales
// @Security     Bearer
// @Produce      json
// @Param        branchId   query  string  false  "Filtrar por sucursal"
// @Param        cashierId  query  string  false  "Filtrar por cajero"
// @Param        status     query  string  false  "completed | cancelled"
// @Param        from       query  string  false  "Desde (YYYY-MM-DD)"
// @Param        to         query  string  false  "Hasta, inclusivo (YYYY-MM-DD)"
// @Param        page       query  int     false  "Página"  default(1)
// @Param        limit      query  int     false  "Límite"  default(20)
// @Success      200        {object}  dto.Envelope{data=[]dto.SaleResponse}
// @Failure      400        {object}  dto.Envelope
// @Router       /api/sales [get]
func (h *SaleHandler) List(c *fiber.Ctx) error {
	var q dto.SaleQuery
	if err := c.QueryParser(&q); err != nil {
		return fail(c, fiber.StatusBadRequest, "INVALID_PARAMS", "Invalid query parameters", nil)
	}
	q.PageQuery = pageQuery(c)
	out, pag, err := h.uc.ListSales(c.UserContext(), q)
	if err != nil {
		return writeError(c, err)
	}
	return page(c, out, pag)
}

// GetByID godoc
// @Summary      Obtener venta con sus líneas
// @Tags         sales
// @Security     Bearer
// @Produce      json
// @Param        id   path  string  true  "ID de la venta"
// @Success      200  {object}  dto.Envelope{data=dto.SaleResponse}
// @Failure      404  {object}  dto.Envelope
// @Router       /api/sales/{id} [get]
func (h *SaleHandler) GetByID(c *fiber.Ctx) error {
	sale, err := h.uc.GetSale(c.UserContext(), c.Params("id"))
	if err != nil {
		return writeError(c, err)
	}
	return ok(c, dto.FromSale(sale), "")
}

// Cancel godoc
// @Summary      Anular venta
// @Description  Devuelve el stock de cada línea a la sucursal mediante el libro de stock.
// @Tags         sales
// @Security     Bearer
// @Produce      json
// @Param        id   path  string  true  "ID de la venta"
// @Success      200  {object}  dto.Envelope{data=dto.SaleResponse}
// @Failure      400  {object}  dto.Envelope
// @Failure      404  {object}  dto.Envelope
// @Router       /api/sales/{id}/cancel [post]
func (h *SaleHandler) Cancel(c *fiber.Ctx) error {
	out, err := h.uc.CancelSale(c.UserContext(), actorFrom(c), c.Params("id"))
	if err != nil {
		return writeError(c, err)
	}
	return ok(c, out, "Sale cancelled successfully")
}

// Receipt godoc
// @Summary      Descargar ticket PDF de la venta
// @Tags         sales
// @Security     Bearer
// @Produce      application/pdf
// @Param        id   path  string  true  "ID de la venta"
// @Success      200  {file}    binary
// @Failure      404  {object}  dto.Envelope
// @Router       /api/sales/{id}/receipt [get]
func (h *SaleHandler) Receipt(c *fiber.Ctx) error {
	data, filename, err := h.receipt.DownloadReceipt(c.UserContext(), c.Params("id"))
	if err != nil {
		return writeError(c, err)
	}
	c.Set(fiber.HeaderContentType, "application/pdf")
	c.Set(fiber.HeaderContentDisposition, `inline; filename="`+filename+`"`)
	return c.Send(data)
}
