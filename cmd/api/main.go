package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/contrib/swagger"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"

	_ "github.com/ArtEnginer/POS/docs"
	appanalytics "github.com/ArtEnginer/POS/internal/application/analytics"
	"github.com/ArtEnginer/POS/internal/application/auth"
	"github.com/ArtEnginer/POS/internal/application/billing"
	"github.com/ArtEnginer/POS/internal/application/inventory"
	"github.com/ArtEnginer/POS/internal/application/ports"
	"github.com/ArtEnginer/POS/internal/application/pricing"
	"github.com/ArtEnginer/POS/internal/application/usecase"
	infracache "github.com/ArtEnginer/POS/internal/infrastructure/cache"
	"github.com/ArtEnginer/POS/internal/infrastructure/metrics"
	infrapdf "github.com/ArtEnginer/POS/internal/infrastructure/pdf"
	"github.com/ArtEnginer/POS/internal/infrastructure/postgres"
	"github.com/ArtEnginer/POS/internal/infrastructure/realtime"
	"github.com/ArtEnginer/POS/internal/infrastructure/spreadsheet"
	httpRouter "github.com/ArtEnginer/POS/internal/interfaces/http"
	"github.com/ArtEnginer/POS/pkg/config"
	"github.com/ArtEnginer/POS/pkg/logger"
)

func main() {
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		panic("cargar configuración: " + err.Error())
	}

	log := logger.New(logger.Config{
		Env:     cfg.App.Env,
		Level:   cfg.Log.Level,
		Service: cfg.App.Name,
	})
	log.Info().
		Str("env", cfg.App.Env).
		Str("app", cfg.App.Name).
		Msg("iniciando aplicación")

	ctx, stop := context.WithCancel(context.Background())
	defer stop()

	pool, err := postgres.NewPool(ctx, cfg.DB)
	if err != nil {
		log.Fatal().Err(err).Msg("conexión a PostgreSQL")
	}
	defer pool.Close()

	// Redis es opcional: sin REDIS_ADDR la caché es vacía, no hay revocación de tokens y
	// la importación no se serializa entre instancias.
	var (
		cache  ports.Cache = ports.NopCache{}
		locker ports.Locker
		rdb    *redis.Client
	)
	if cfg.Redis.Enabled() {
		rdb, err = infracache.NewClient(ctx, cfg.Redis)
		if err != nil {
			log.Warn().Err(err).Msg("redis no disponible, se continúa sin caché")
		} else {
			defer rdb.Close()
			cache = infracache.NewRedisCache(rdb)
			locker = infracache.NewRedisLocker(rdb)
			log.Info().Str("addr", cfg.Redis.Addr).Msg("redis conectado")
		}
	}

	prom := metrics.New()
	hub := realtime.NewHub()
	go hub.Run(ctx)

	txRunner := postgres.NewTxRunner(pool)
	userRepo := postgres.NewUserRepository(pool)
	branchRepo := postgres.NewBranchRepository(pool)
	categoryRepo := postgres.NewCategoryRepository(pool)
	productRepo := postgres.NewProductRepository(pool)
	unitRepo := postgres.NewUnitRepository(pool)
	priceRepo := postgres.NewPriceRepository(pool)
	stockRepo := postgres.NewStockRepository(pool)
	auditRepo := postgres.NewAuditRepository(pool)
	customerRepo := postgres.NewCustomerRepository(pool)
	saleRepo := postgres.NewSaleRepository(pool)
	receivingRepo := postgres.NewReceivingRepository(pool)
	analyticsRepo := postgres.NewAnalyticsRepository(pool)
	supplierRepo := postgres.NewSupplierRepository(pool)
	purchaseReturnRepo := postgres.NewPurchaseReturnRepository(pool)
	salesReturnRepo := postgres.NewSalesReturnRepository(pool)

	ledger := inventory.NewStockLedger(txRunner, productRepo, branchRepo, stockRepo, auditRepo, cache, hub, prom)
	receivingUC := inventory.NewReceivingUseCase(txRunner, ledger, receivingRepo, hub)
	priceResolver := pricing.NewPriceResolver(txRunner, productRepo, unitRepo, priceRepo, cache, hub, prom)
	unitConverter := pricing.NewUnitConverter(txRunner, productRepo, unitRepo, cache, hub)
	saleUC := billing.NewSaleUseCase(txRunner, ledger, customerRepo, saleRepo, hub, prom)
	purchaseReturnUC := inventory.NewPurchaseReturnUseCase(txRunner, ledger, purchaseReturnRepo, hub)
	salesReturnUC := billing.NewSalesReturnUseCase(txRunner, ledger, salesReturnRepo, hub)
	receiptUC := billing.NewReceiptUseCase(saleUC, infrapdf.NewMarotoReceiptRenderer(cfg.App.Name))
	productUC := usecase.NewProductUseCase(usecase.ProductDeps{
		TxRunner:      txRunner,
		Products:      productRepo,
		Units:         unitRepo,
		Prices:        priceRepo,
		Stocks:        stockRepo,
		Cache:         cache,
		Locker:        locker,
		Sheet:         spreadsheet.NewProductSheet(),
		Notifier:      hub,
		Metrics:       prom,
		CacheTTL:      cfg.Cache.ProductTTL,
		ImportMaxRows: cfg.Import.MaxRows,
	})
	authUC := auth.NewAuthUseCase(userRepo, cache, auth.JWTConfig{
		Secret:     cfg.JWT.Secret,
		ExpMinutes: cfg.JWT.Expiration,
		Issuer:     cfg.JWT.Issuer,
	})

	app := fiber.New(fiber.Config{
		AppName:      cfg.App.Name,
		ReadTimeout:  time.Second * 10,
		WriteTimeout: time.Second * 30,
		IdleTimeout:  time.Second * 60,
		BodyLimit:    20 * 1024 * 1024, // importación xlsx
		ErrorHandler: httpRouter.ErrorHandler,
	})
	app.Use(prom.Middleware())
	app.Use(recover.New())
	app.Use(requestid.New())
	app.Use(httpRouter.RequestLogger())

	// Swagger UI en local: http://localhost:<port>/docs
	app.Use(swagger.New(swagger.Config{
		BasePath: "/",
		FilePath: "./docs/swagger.json",
		Path:     "docs",
		Title:    "POS API",
	}))

	app.Get("/health", func(c *fiber.Ctx) error {
		status := fiber.Map{"status": "ok", "service": cfg.App.Name, "database": "ok", "redis": "disabled"}
		code := fiber.StatusOK
		if err := pool.Ping(c.UserContext()); err != nil {
			status["status"], status["database"] = "degraded", "down"
			code = fiber.StatusServiceUnavailable
		}
		if rdb != nil {
			status["redis"] = "ok"
			if err := rdb.Ping(c.UserContext()).Err(); err != nil {
				status["redis"] = "down"
			}
		}
		status["wsClients"] = hub.Clients()
		return c.Status(code).JSON(status)
	})
	app.Get("/metrics", prom.Handler())
	app.Use("/ws", realtime.Upgrade)
	app.Get("/ws", hub.Handler())

	httpRouter.Router(app, httpRouter.RouterDeps{
		AuthUC:           authUC,
		UserUC:           usecase.NewUserUseCase(userRepo, branchRepo),
		BranchUC:         usecase.NewBranchUseCase(txRunner, branchRepo),
		CategoryUC:       usecase.NewCategoryUseCase(categoryRepo),
		ProductUC:        productUC,
		Ledger:           ledger,
		ReceivingUC:      receivingUC,
		Prices:           priceResolver,
		Units:            unitConverter,
		CustomerUC:       billing.NewCustomerUseCase(customerRepo),
		SaleUC:           saleUC,
		ReceiptUC:        receiptUC,
		DashboardUC:      appanalytics.NewDashboardUseCase(analyticsRepo),
		ReportUC:         appanalytics.NewReportUseCase(analyticsRepo),
		SupplierUC:       usecase.NewSupplierUseCase(supplierRepo),
		PurchaseReturnUC: purchaseReturnUC,
		SalesReturnUC:    salesReturnUC,
		JWTSecret:        cfg.JWT.Secret,
	})

	go func() {
		if err := app.Listen(cfg.HTTP.Addr()); err != nil {
			log.Error().Err(err).Msg("servidor HTTP finalizado")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("señal de apagado recibida, cerrando servidor...")

	// Primero el servidor HTTP; el hub se detiene después y cierra los websockets restantes.
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := app.ShutdownWithContext(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("apagado del servidor")
	}
	stop()

	log.Info().Msg("aplicación detenida")
}
