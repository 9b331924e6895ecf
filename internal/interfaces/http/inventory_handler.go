package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/ArtEnginer/POS/internal/application/dto"
	"github.com/ArtEnginer/POS/internal/application/inventory"
)

// InventoryHandler maneja el stock por sucursal y las recepciones de mercancía (protegido).
type InventoryHandler struct {
	ledger     *inventory.StockLedger
	receivings *inventory.ReceivingUseCase
}

// NewInventoryHandler construye el handler.
func NewInventoryHandler(ledger *inventory.StockLedger, receivings *inventory.ReceivingUseCase) *InventoryHandler {
	return &InventoryHandler{ledger: ledger, receivings: receivings}
}

// AdjustStock godoc
// @Summary      Ajustar stock de un producto en una sucursal
// @Description  operation: set (default), add o subtract. El stock nunca queda negativo;
//
//	los ajustes concurrentes sobre la misma fila se serializan con SELECT ... FOR UPDATE.
//
// @Tags         inventory
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        id    path  string                  true  "ID del producto"
// @Param        body  body  dto.AdjustStockRequest  true  "branchId, quantity, operation"
// @Success      200   {object}  dto.Envelope{data=dto.StockResponse,details=dto.StockChange}
// @Failure      400   {object}  dto.Envelope
// @Failure      404   {object}  dto.Envelope
// @Router       /api/products/{id}/stock [put]
func (h *InventoryHandler) AdjustStock(c *fiber.Ctx) error {
	var in dto.AdjustStockRequest
	if err := c.BodyParser(&in); err != nil {
		return invalidBody(c)
	}
	if valid, err := validate(c, &in); !valid {
		return err
	}
	out, err := h.ledger.AdjustStock(c.UserContext(), inventory.AdjustStockInput{
		ProductID: c.Params("id"),
		BranchID:  in.BranchID,
		Quantity:  in.Quantity,
		Operation: in.Operation,
		Actor:     actorFrom(c),
	})
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(dto.Envelope{
		Success: true,
		Data:    out.Stock,
		Message: "Stock updated successfully",
		Details: out.Change,
	})
}

// ListStock godoc
// @Summary      Stock de un producto por sucursal
// @Tags         inventory
// @Security     Bearer
// @Produce      json
// @Param        id        path   string  true   "ID del producto"
// @Param        branchId  query  string  false  "Filtrar por sucursal"
// @Success      200       {object}  dto.Envelope{data=[]dto.StockResponse}
// @Failure      404       {object}  dto.Envelope
// @Router       /api/products/{id}/stock [get]
func (h *InventoryHandler) ListStock(c *fiber.Ctx) error {
	out, err := h.ledger.ListStock(c.UserContext(), c.Params("id"), c.Query("branchId"))
	if err != nil {
		return writeError(c, err)
	}
	return ok(c, out, "")
}

// History godoc
// @Summary      Historial de ajustes de stock (auditoría)
// @Tags         inventory
// @Security     Bearer
// @Produce      json
// @Param        id     path   string  true   "ID del producto"
// @Param        limit  query  int     false  "Máximo de entradas"  default(50)
// @Success      200    {object}  dto.Envelope{data=[]dto.StockHistoryEntry}
// @Router       /api/products/{id}/stock/history [get]
func (h *InventoryHandler) History(c *fiber.Ctx) error {
	out, err := h.ledger.History(c.UserContext(), c.Params("id"), c.QueryInt("limit", 50))
	if err != nil {
		return writeError(c, err)
	}
	return ok(c, out, "")
}

// CreateReceiving godoc
// @Summary      Registrar recepción de mercancía
// @Description  Suma las cantidades (en unidad base) al stock de la sucursal en una sola transacción
//
//	y recalcula el costo promedio ponderado.
//
// @Tags         receivings
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.CreateReceivingRequest  true  "branchId, supplierName, items"
// @Success      201   {object}  dto.Envelope{data=dto.ReceivingResponse}
// @Failure      400   {object}  dto.Envelope
// @Failure      404   {object}  dto.Envelope
// @Router       /api/receivings [post]
func (h *InventoryHandler) CreateReceiving(c *fiber.Ctx) error {
	var in dto.CreateReceivingRequest
	if err := c.BodyParser(&in); err != nil {
		return invalidBody(c)
	}
	if valid, err := validate(c, &in); !valid {
		return err
	}
	out, err := h.receivings.Create(c.UserContext(), actorFrom(c), in)
	if err != nil {
		return writeError(c, err)
	}
	return created(c, out, "Receiving created successfully")
}

// ListReceivings godoc
// @Summary      Listar recepciones
// @Tags         receivings
// @Security     Bearer
// @Produce      json
// @Param        branchId  query  string  false  "Filtrar por sucursal"
// @Param        page      query  int     false  "Página"  default(1)
// @Param        limit     query  int     false  "Límite"  default(20)
// @Success      200       {object}  dto.Envelope{data=[]dto.ReceivingResponse}
// @Router       /api/receivings [get]
func (h *InventoryHandler) ListReceivings(c *fiber.Ctx) error {
	out, err := h.receivings.List(c.UserContext(), c.Query("branchId"), pageQuery(c))
	if err != nil {
		return writeError(c, err)
	}
	return ok(c, out, "")
}

// GetReceiving godoc
// @Summary      Obtener recepción con sus líneas
// @Tags         receivings
// @Security     Bearer
// @Produce      json
// @Param        id   path  string  true  "ID de la recepción"
// @Success      200  {object}  dto.Envelope{data=dto.ReceivingResponse}
// @Failure      404  {object}  dto.Envelope
// @Router       /api/receivings/{id} [get]
func (h *InventoryHandler) GetReceiving(c *fiber.Ctx) error {
	out, err := h.receivings.Get(c.UserContext(), c.Params("id"))
	if err != nil {
		return writeError(c, err)
	}
	return ok(c, out, "")
}
