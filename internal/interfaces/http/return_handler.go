package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/ArtEnginer/POS/internal/application/billing"
	"github.com/ArtEnginer/POS/internal/application/dto"
	"github.com/ArtEnginer/POS/internal/application/inventory"
)

// ReturnHandler devoluciones a proveedor y de clientes.
type ReturnHandler struct {
	purchases *inventory.PurchaseReturnUseCase
	sales     *billing.SalesReturnUseCase
}

// NewReturnHandler construye el handler.
func NewReturnHandler(purchases *inventory.PurchaseReturnUseCase, sales *billing.SalesReturnUseCase) *ReturnHandler {
	return &ReturnHandler{purchases: purchases, sales: sales}
}

func returnQuery(c *fiber.Ctx) dto.ReturnQuery {
	return dto.ReturnQuery{
		PageQuery:   pageQuery(c),
		BranchID:    c.Query("branchId"),
		ReceivingID: c.Query("receivingId"),
		SaleID:      c.Query("saleId"),
		Status:      c.Query("status"),
	}
}

// CreatePurchaseReturn godoc
// @Summary      Devolver mercancía recibida al proveedor
// @Description  Descuenta del stock de la sucursal de la recepción. Lo devuelto por línea no puede
// @Description  superar lo recibido.
// @Tags         purchase-returns
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.CreatePurchaseReturnRequest  true  "receivingId, items"
// @Success      201   {object}  dto.Envelope{data=dto.PurchaseReturnResponse}
// @Failure      400   {object}  dto.Envelope
// @Failure      404   {object}  dto.Envelope
// @Router       /api/purchase-returns [post]
func (h *ReturnHandler) CreatePurchaseReturn(c *fiber.Ctx) error {
	var in dto.CreatePurchaseReturnRequest
	if err := c.BodyParser(&in); err != nil {
		return invalidBody(c)
	}
	if valid, err := validate(c, &in); !valid {
		return err
	}
	out, err := h.purchases.Create(c.UserContext(), actorFrom(c), in)
	if err != nil {
		return writeError(c, err)
	}
	return created(c, out, "Purchase return created successfully")
}

// ListPurchaseReturns godoc
// @Summary      Listar devoluciones a proveedor
// @Tags         purchase-returns
// @Security     Bearer
// @Produce      json
// @Param        branchId     query  string  false  "Filtrar por sucursal"
// @Param        receivingId  query  string  false  "Filtrar por recepción"
// @Param        status       query  string  false  "completed | cancelled"
// @Param        page         query  int     false  "Página"  default(1)
// @Param        limit        query  int     false  "Límite"  default(20)
// @Success      200          {object}  dto.Envelope{data=[]dto.PurchaseReturnResponse}
// @Router       /api/purchase-returns [get]
func (h *ReturnHandler) ListPurchaseReturns(c *fiber.Ctx) error {
	out, pag, err := h.purchases.List(c.UserContext(), returnQuery(c))
	if err != nil {
		return writeError(c, err)
	}
	return page(c, out, pag)
}

// GetPurchaseReturn godoc
// @Summary      Obtener devolución a proveedor
// @Tags         purchase-returns
// @Security     Bearer
// @Produce      json
// @Param        id   path  string  true  "ID de la devolución"
// @Success      200  {object}  dto.Envelope{data=dto.PurchaseReturnResponse}
// @Failure      404  {object}  dto.Envelope
// @Router       /api/purchase-returns/{id} [get]
func (h *ReturnHandler) GetPurchaseReturn(c *fiber.Ctx) error {
	out, err := h.purchases.Get(c.UserContext(), c.Params("id"))
	if err != nil {
		return writeError(c, err)
	}
	return ok(c, out, "")
}

// CancelPurchaseReturn godoc
// @Summary      Anular devolución a proveedor
// @Description  Vuelve a sumar al stock lo devuelto.
// @Tags         purchase-returns
// @Security     Bearer
// @Produce      json
// @Param        id   path  string  true  "ID de la devolución"
// @Success      200  {object}  dto.Envelope{data=dto.PurchaseReturnResponse}
// @Failure      400  {object}  dto.Envelope
// @Failure      404  {object}  dto.Envelope
// @Router       /api/purchase-returns/{id}/cancel [post]
func (h *ReturnHandler) CancelPurchaseReturn(c *fiber.Ctx) error {
	out, err := h.purchases.Cancel(c.UserContext(), actorFrom(c), c.Params("id"))
	if err != nil {
		return writeError(c, err)
	}
	return ok(c, out, "Purchase return cancelled successfully")
}

// CreateSalesReturn godoc
// @Summary      Registrar devolución de cliente
// @Description  Repone el stock de la sucursal de la venta y calcula el reembolso. La venta debe
// @Description  estar completada y pertenecer a branchId.
// @Tags         sales-returns
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.CreateSalesReturnRequest  true  "saleId, branchId, reason, items"
// @Success      201   {object}  dto.Envelope{data=dto.SalesReturnResponse}
// @Failure      400   {object}  dto.Envelope
// @Failure      403   {object}  dto.Envelope
// @Failure      404   {object}  dto.Envelope
// @Router       /api/sales-returns [post]
func (h *ReturnHandler) CreateSalesReturn(c *fiber.Ctx) error {
	var in dto.CreateSalesReturnRequest
	if err := c.BodyParser(&in); err != nil {
		return invalidBody(c)
	}
	if valid, err := validate(c, &in); !valid {
		return err
	}
	out, err := h.sales.Create(c.UserContext(), actorFrom(c), in)
	if err != nil {
		return writeError(c, err)
	}
	return created(c, out, "Sales return created successfully")
}

// ListSalesReturns godoc
// @Summary      Listar devoluciones de clientes
// @Tags         sales-returns
// @Security     Bearer
// @Produce      json
// @Param        branchId  query  string  false  "Filtrar por sucursal"
// @Param        saleId    query  string  false  "Filtrar por venta"
// @Param        status    query  string  false  "pending | processed | completed | cancelled"
// @Param        page      query  int     false  "Página"  default(1)
// @Param        limit     query  int     false  "Límite"  default(20)
// @Success      200       {object}  dto.Envelope{data=[]dto.SalesReturnResponse}
// @Router       /api/sales-returns [get]
func (h *ReturnHandler) ListSalesReturns(c *fiber.Ctx) error {
	out, pag, err := h.sales.List(c.UserContext(), returnQuery(c))
	if err != nil {
		return writeError(c, err)
	}
	return page(c, out, pag)
}

// GetSalesReturn godoc
// @Summary      Obtener devolución de cliente
// @Tags         sales-returns
// @Security     Bearer
// @Produce      json
// @Param        id   path  string  true  "ID de la devolución"
// @Success      200  {object}  dto.Envelope{data=dto.SalesReturnResponse}
// @Failure      404  {object}  dto.Envelope
// @Router       /api/sales-returns/{id} [get]
func (h *ReturnHandler) GetSalesReturn(c *fiber.Ctx) error {
	out, err := h.sales.Get(c.UserContext(), c.Params("id"))
	if err != nil {
		return writeError(c, err)
	}
	return ok(c, out, "")
}

// UpdateSalesReturnStatus godoc
// @Summary      Cambiar estado de una devolución de cliente
// @Description  cancelled descuenta otra vez del stock lo repuesto; una devolución anulada no se reabre.
// @Tags         sales-returns
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        id    path  string                         true  "ID de la devolución"
// @Param        body  body  dto.UpdateReturnStatusRequest  true  "status"
// @Success      200   {object}  dto.Envelope{data=dto.SalesReturnResponse}
// @Failure      400   {object}  dto.Envelope
// @Failure      404   {object}  dto.Envelope
// @Router       /api/sales-returns/{id}/status [patch]
func (h *ReturnHandler) UpdateSalesReturnStatus(c *fiber.Ctx) error {
	var in dto.UpdateReturnStatusRequest
	if err := c.BodyParser(&in); err != nil {
		return invalidBody(c)
	}
	if valid, err := validate(c, &in); !valid {
		return err
	}
	out, err := h.sales.UpdateStatus(c.UserContext(), actorFrom(c), c.Params("id"), in.Status)
	if err != nil {
		return writeError(c, err)
	}
	return ok(c, out, "Sales return status updated successfully")
}
