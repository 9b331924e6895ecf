package http

import (
	"github.com/gofiber/fiber/v2"

	appanalytics "github.com/ArtEnginer/POS/internal/application/analytics"
	"github.com/ArtEnginer/POS/internal/application/dto"
)

// DashboardHandler maneja los endpoints del módulo de Dashboard.
type DashboardHandler struct {
	uc      *appanalytics.DashboardUseCase
	reports *appanalytics.ReportUseCase
}

// NewDashboardHandler construye el handler.
func NewDashboardHandler(uc *appanalytics.DashboardUseCase, reports *appanalytics.ReportUseCase) *DashboardHandler {
	return &DashboardHandler{uc: uc, reports: reports}
}

// GetSummary devuelve el resumen de ventas del día y del mes en curso.
// GET /api/dashboard/summary[?branchId=]
//
// Las fechas se calculan en el servidor. Sin branchId incluye además las ventas del mes por sucursal.
func (h *DashboardHandler) GetSummary(c *fiber.Ctx) error {
	summary, err := h.uc.GetSummary(c.UserContext(), c.Query("branchId"))
	if err != nil {
		return writeError(c, err)
	}
	return ok(c, summary, "")
}

// GetSalesReport godoc
// @Summary      Reporte de ventas por sucursal y ranking de productos (Pareto 80/20)
// @Tags         dashboard
// @Security     Bearer
// @Produce      json
// @Param        startDate  query  string  false  "Inicio del período (YYYY-MM-DD). Default: primer día del mes."
// @Param        endDate    query  string  false  "Fin del período, inclusivo (YYYY-MM-DD). Default: hoy."
// @Param        branchId   query  string  false  "Filtrar por sucursal"
// @Param        topN       query  int     false  "Máx. productos en el ranking (default 20, max 200)."
// @Success      200  {object}  dto.Envelope{data=dto.SalesReportDTO}
// @Failure      400  {object}  dto.Envelope
// @Router       /api/dashboard/sales-report [get]
func (h *DashboardHandler) GetSalesReport(c *fiber.Ctx) error {
	var req dto.SalesReportRequest
	if err := c.QueryParser(&req); err != nil {
		return fail(c, fiber.StatusBadRequest, "INVALID_PARAMS", "Invalid query parameters", nil)
	}
	report, err := h.reports.GetSalesReport(c.UserContext(), req)
	if err != nil {
		return writeError(c, err)
	}
	return ok(c, report, "")
}
