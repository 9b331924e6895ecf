package metrics_test

import (
	"io"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ArtEnginer/POS/internal/infrastructure/metrics"
)

func TestPrometheus_ContadoresDeNegocio(t *testing.T) {
	p := metrics.New()
	p.StockAdjusted("subtract", "ok")
	p.StockAdjusted("subtract", "rejected")
	p.PriceUpserted("bulk", 3)
	p.SaleCreated("b1")
	p.CacheLookup(true)
	p.CacheLookup(false)

	n, err := testutil.GatherAndCount(p.Registry, "pos_stock_adjustments_total")
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	expected := `
# HELP pos_price_rows_written_total Price rows written by mode.
# TYPE pos_price_rows_written_total counter
pos_price_rows_written_total{mode="bulk"} 3
`
	assert.NoError(t, testutil.GatherAndCompare(p.Registry, strings.NewReader(expected), "pos_price_rows_written_total"))
}

func TestPrometheus_MiddlewareYHandler(t *testing.T) {
	p := metrics.New()
	app := fiber.New()
	app.Use(p.Middleware())
	app.Get("/api/products/:id", func(c *fiber.Ctx) error { return c.SendString("ok") })
	app.Get("/metrics", p.Handler())

	resp, err := app.Test(httptest.NewRequest("GET", "/api/products/123", nil))
	require.NoError(t, err)
	assert.Equal(t, 200, resp.StatusCode)

	resp, err = app.Test(httptest.NewRequest("GET", "/metrics", nil))
	require.NoError(t, err)
	body, _ := io.ReadAll(resp.Body)
	assert.Contains(t, string(body), `route="/api/products/:id"`)
}
