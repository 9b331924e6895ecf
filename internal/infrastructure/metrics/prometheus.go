// Package metrics expone métricas Prometheus del POS: HTTP por ruta y contadores de negocio
// (ajustes de stock, precios, ventas, caché).
package metrics

import (
	"strconv"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/ArtEnginer/POS/internal/application/ports"
)

const namespace = "pos"

var _ ports.Recorder = (*Prometheus)(nil)

// Prometheus registro propio (no el global) con las métricas del servicio.
type Prometheus struct {
	Registry *prometheus.Registry

	requestDuration  *prometheus.HistogramVec
	requestTotal     *prometheus.CounterVec
	requestsInFlight prometheus.Gauge
	stockAdjustments *prometheus.CounterVec
	priceUpserts     *prometheus.CounterVec
	priceRows        *prometheus.CounterVec
	salesCreated     *prometheus.CounterVec
	cacheHits        prometheus.Counter
	cacheMisses      prometheus.Counter
}

// New crea y registra todas las métricas, más las del runtime de Go y del proceso.
func New() *Prometheus {
	p := &Prometheus{
		Registry: prometheus.NewRegistry(),
		requestDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "request_duration_seconds",
			Help:      "Duration of HTTP requests in seconds.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"method", "route", "status"}),
		requestTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "Total number of HTTP requests.",
		}, []string{"method", "route", "status"}),
		requestsInFlight: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "requests_in_flight",
			Help:      "Number of HTTP requests currently being served.",
		}),
		stockAdjustments: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "stock_adjustments_total",
			Help:      "Stock adjustments by operation and result.",
		}, []string{"operation", "result"}),
		priceUpserts: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "price_upserts_total",
			Help:      "Price upsert requests by mode (single, bulk).",
		}, []string{"mode"}),
		priceRows: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "price_rows_written_total",
			Help:      "Price rows written by mode.",
		}, []string{"mode"}),
		salesCreated: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "sales_created_total",
			Help:      "Completed sales by branch.",
		}, []string{"branch_id"}),
		cacheHits: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "cache",
			Name:      "hits_total",
			Help:      "Total product cache hits.",
		}),
		cacheMisses: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "cache",
			Name:      "misses_total",
			Help:      "Total product cache misses.",
		}),
	}
	p.Registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		p.requestDuration,
		p.requestTotal,
		p.requestsInFlight,
		p.stockAdjustments,
		p.priceUpserts,
		p.priceRows,
		p.salesCreated,
		p.cacheHits,
		p.cacheMisses,
	)
	return p
}

// StockAdjusted cuenta un ajuste de stock (result: ok | rejected).
func (p *Prometheus) StockAdjusted(operation, result string) {
	p.stockAdjustments.WithLabelValues(operation, result).Inc()
}

// PriceUpserted cuenta una escritura de precios y las filas afectadas.
func (p *Prometheus) PriceUpserted(mode string, rows int) {
	p.priceUpserts.WithLabelValues(mode).Inc()
	p.priceRows.WithLabelValues(mode).Add(float64(rows))
}

// SaleCreated cuenta una venta completada.
func (p *Prometheus) SaleCreated(branchID string) {
	p.salesCreated.WithLabelValues(branchID).Inc()
}

// CacheLookup cuenta un hit o un miss de la caché de productos.
func (p *Prometheus) CacheLookup(hit bool) {
	if hit {
		p.cacheHits.Inc()
		return
	}
	p.cacheMisses.Inc()
}

// Middleware registra duración, total y peticiones en curso. La etiqueta route es el patrón de
// la ruta (/api/products/:id), no la URL, para acotar la cardinalidad.
func (p *Prometheus) Middleware() fiber.Handler {
	return func(c *fiber.Ctx) error {
		start := time.Now()
		p.requestsInFlight.Inc()
		defer p.requestsInFlight.Dec()

		err := c.Next()

		status := c.Response().StatusCode()
		if err != nil {
			if fe, ok := err.(*fiber.Error); ok {
				status = fe.Code
			} else if status < fiber.StatusBadRequest {
				status = fiber.StatusInternalServerError
			}
		}
		route := c.Route().Path
		labels := []string{c.Method(), route, strconv.Itoa(status)}
		p.requestDuration.WithLabelValues(labels...).Observe(time.Since(start).Seconds())
		p.requestTotal.WithLabelValues(labels...).Inc()
		return err
	}
}

// Handler expone GET /metrics sobre Fiber.
func (p *Prometheus) Handler() fiber.Handler {
	return adaptor.HTTPHandler(promhttp.HandlerFor(p.Registry, promhttp.HandlerOpts{
		EnableOpenMetrics: true,
	}))
}
