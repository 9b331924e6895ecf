package http

import (
	"fmt"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/ArtEnginer/POS/internal/application/dto"
	"github.com/ArtEnginer/POS/internal/application/usecase"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

// ProductHandler maneja las peticiones HTTP del catálogo de productos (protegido).
type ProductHandler struct {
	uc *usecase.ProductUseCase
}

// NewProductHandler construye el handler.
func NewProductHandler(uc *usecase.ProductUseCase) *ProductHandler {
	return &ProductHandler{uc: uc}
}

// Create godoc
// @Summary      Crear producto
// @Description  Crea el producto con su unidad base, stock en cero y precios base en cada sucursal activa.
// @Tags         products
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.CreateProductRequest  true  "Datos del producto"
// @Success      201   {object}  dto.Envelope{data=dto.ProductResponse}
// @Failure      400   {object}  dto.Envelope
// @Failure      409   {object}  dto.Envelope
// @Router       /api/products [post]
func (h *ProductHandler) Create(c *fiber.Ctx) error {
	var in dto.CreateProductRequest
	if err := c.BodyParser(&in); err != nil {
		return invalidBody(c)
	}
	if valid, err := validate(c, &in); !valid {
		return err
	}
	out, err := h.uc.Create(c.UserContext(), in)
	if err != nil {
		return writeError(c, err)
	}
	return created(c, out, "Product created successfully")
}

// List godoc
// @Summary      Listar productos
// @Tags         products
// @Security     Bearer
// @Produce      json
// @Param        search      query  string  false  "SKU, nombre o código de barras"
// @Param        categoryId  query  string  false  "Filtrar por categoría"
// @Param        isActive    query  bool    false  "Filtrar por estado"
// @Param        branchId    query  string  false  "Incluir stock de la sucursal"
// @Param        page        query  int     false  "Página"  default(1)
// @Param        limit       query  int     false  "Límite"  default(20)
// @Success      200         {object}  dto.Envelope{data=[]dto.ProductResponse}
// @Router       /api/products [get]
func (h *ProductHandler) List(c *fiber.Ctx) error {
	var q dto.ProductQuery
	if err := c.QueryParser(&q); err != nil {
		return fail(c, fiber.StatusBadRequest, "INVALID_PARAMS", "Invalid query parameters", nil)
	}
	q.PageQuery = pageQuery(c)
	out, pag, err := h.uc.List(c.UserContext(), q)
	if err != nil {
		return writeError(c, err)
	}
	return page(c, out, pag)
}

// Search godoc
// @Summary      Búsqueda rápida para el punto de venta
// @Tags         products
// @Security     Bearer
// @Produce      json
// @Param        q      query  string  true   "Texto a buscar"
// @Param        limit  query  int     false  "Máximo de resultados"  default(20)
// @Success      200    {object}  dto.Envelope{data=[]dto.ProductResponse}
// @Router       /api/products/search [get]
func (h *ProductHandler) Search(c *fiber.Ctx) error {
	out, err := h.uc.Search(c.UserContext(), c.Query("q"), c.QueryInt("limit", 20))
	if err != nil {
		return writeError(c, err)
	}
	return ok(c, out, "")
}

// GetByBarcode godoc
// @Summary      Buscar producto por código de barras (producto o unidad)
// @Tags         products
// @Security     Bearer
// @Produce      json
// @Param        barcode  path  string  true  "Código de barras"
// @Success      200      {object}  dto.Envelope{data=dto.ProductResponse}
// @Failure      404      {object}  dto.Envelope
// @Router       /api/products/barcode/{barcode} [get]
func (h *ProductHandler) GetByBarcode(c *fiber.Ctx) error {
	out, err := h.uc.GetByBarcode(c.UserContext(), c.Params("barcode"))
	if err != nil {
		return writeError(c, err)
	}
	return ok(c, out, "")
}

// LowStock godoc
// @Summary      Productos con stock disponible en o bajo el punto de reorden
// @Tags         products
// @Security     Bearer
// @Produce      json
// @Param        branchId  query  string  false  "Filtrar por sucursal"
// @Success      200       {object}  dto.Envelope{data=[]dto.ProductResponse}
// @Router       /api/products/low-stock [get]
func (h *ProductHandler) LowStock(c *fiber.Ctx) error {
	out, err := h.uc.ListLowStock(c.UserContext(), c.Query("branchId"))
	if err != nil {
		return writeError(c, err)
	}
	return ok(c, out, "")
}

// GetByID godoc
// @Summary      Obtener producto por ID
// @Tags         products
// @Security     Bearer
// @Produce      json
// @Param        id   path  string  true  "ID del producto"
// @Success      200  {object}  dto.Envelope{data=dto.ProductResponse}
// @Failure      404  {object}  dto.Envelope
// @Router       /api/products/{id} [get]
func (h *ProductHandler) GetByID(c *fiber.Ctx) error {
	out, err := h.uc.Get(c.UserContext(), c.Params("id"))
	if err != nil {
		return writeError(c, err)
	}
	return ok(c, out, "")
}

// GetComplete godoc
// @Summary      Producto con unidades, precios y stock
// @Tags         products
// @Security     Bearer
// @Produce      json
// @Param        id        path   string  true   "ID del producto"
// @Param        branchId  query  string  false  "Limitar precios y stock a una sucursal"
// @Success      200       {object}  dto.Envelope{data=dto.ProductCompleteResponse}
// @Failure      404       {object}  dto.Envelope
// @Router       /api/products/{id}/complete [get]
func (h *ProductHandler) GetComplete(c *fiber.Ctx) error {
	out, err := h.uc.GetComplete(c.UserContext(), c.Params("id"), c.Query("branchId"))
	if err != nil {
		return writeError(c, err)
	}
	return ok(c, out, "")
}

// Update godoc
// @Summary      Actualizar producto
// @Tags         products
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        id    path  string                    true  "ID del producto"
// @Param        body  body  dto.UpdateProductRequest  true  "Datos a actualizar"
// @Success      200   {object}  dto.Envelope{data=dto.ProductResponse}
// @Failure      400   {object}  dto.Envelope
// @Failure      404   {object}  dto.Envelope
// @Failure      409   {object}  dto.Envelope
// @Router       /api/products/{id} [put]
func (h *ProductHandler) Update(c *fiber.Ctx) error {
	var in dto.UpdateProductRequest
	if err := c.BodyParser(&in); err != nil {
		return invalidBody(c)
	}
	if valid, err := validate(c, &in); !valid {
		return err
	}
	out, err := h.uc.Update(c.UserContext(), c.Params("id"), in)
	if err != nil {
		return writeError(c, err)
	}
	return ok(c, out, "Product updated successfully")
}

// Delete godoc
// @Summary      Eliminar producto (soft delete)
// @Tags         products
// @Security     Bearer
// @Produce      json
// @Param        id   path  string  true  "ID del producto"
// @Success      200  {object}  dto.Envelope
// @Failure      404  {object}  dto.Envelope
// @Router       /api/products/{id} [delete]
func (h *ProductHandler) Delete(c *fiber.Ctx) error {
	if err := h.uc.Delete(c.UserContext(), c.Params("id")); err != nil {
		return writeError(c, err)
	}
	return ok(c, nil, "Product deleted successfully")
}

// ClearCache godoc
// @Summary      Limpiar caché de productos
// @Description  Sin productId borra toda la caché de productos.
// @Tags         products
// @Security     Bearer
// @Produce      json
// @Param        productId  path  string  false  "ID del producto"
// @Success      200        {object}  dto.Envelope
// @Router       /api/products/cache/clear/{productId} [delete]
func (h *ProductHandler) ClearCache(c *fiber.Ctx) error {
	n := h.uc.ClearCache(c.UserContext(), c.Params("productId"))
	return ok(c, fiber.Map{"deletedKeys": n}, "Cache cleared successfully")
}

// Export godoc
// @Summary      Exportar catálogo a xlsx
// @Tags         products
// @Security     Bearer
// @Produce      application/vnd.openxmlformats-officedocument.spreadsheetml.sheet
// @Success      200  {file}  binary
// @Router       /api/products/export [get]
func (h *ProductHandler) Export(c *fiber.Ctx) error {
	data, err := h.uc.Export(c.UserContext())
	if err != nil {
		return writeError(c, err)
	}
	return sendXLSX(c, fmt.Sprintf("products-%s.xlsx", time.Now().Format("20060102")), data)
}

// Template godoc
// @Summary      Plantilla xlsx de importación
// @Tags         products
// @Security     Bearer
// @Produce      application/vnd.openxmlformats-officedocument.spreadsheetml.sheet
// @Success      200  {file}  binary
// @Router       /api/products/import/template [get]
func (h *ProductHandler) Template(c *fiber.Ctx) error {
	data, err := h.uc.Template()
	if err != nil {
		return writeError(c, err)
	}
	return sendXLSX(c, "products-template.xlsx", data)
}

// Import godoc
// @Summary      Importar productos desde xlsx
// @Description  Crea o actualiza por SKU; cada fila en su propia transacción. Solo una importación a la vez.
// @Tags         products
// @Security     Bearer
// @Accept       multipart/form-data
// @Produce      json
// @Param        file  formData  file  true  "Archivo xlsx"
// @Success      200   {object}  dto.Envelope{data=dto.ImportResult}
// @Failure      400   {object}  dto.Envelope
// @Failure      409   {object}  dto.Envelope
// @Router       /api/products/import [post]
func (h *ProductHandler) Import(c *fiber.Ctx) error {
	fh, err := c.FormFile("file")
	if err != nil {
		return fail(c, fiber.StatusBadRequest, "VALIDATION", "File is required", nil)
	}
	f, err := fh.Open()
	if err != nil {
		return fail(c, fiber.StatusBadRequest, "VALIDATION", "Unable to read uploaded file", nil)
	}
	defer f.Close()

	out, err := h.uc.Import(c.UserContext(), f)
	if err != nil {
		return writeError(c, err)
	}
	return ok(c, out, fmt.Sprintf("Import finished: %d imported, %d updated, %d failed", out.Imported, out.Updated, out.Failed))
}

func sendXLSX(c *fiber.Ctx, filename string, data []byte) error {
	c.Set(fiber.HeaderContentType, xlsxContentType)
	c.Set(fiber.HeaderContentDisposition, `attachment; filename="`+filename+`"`)
	return c.Send(data)
}
