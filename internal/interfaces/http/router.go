package http

import (
	"github.com/gofiber/fiber/v2"

	appanalytics "github.com/ArtEnginer/POS/internal/application/analytics"
	"github.com/ArtEnginer/POS/internal/application/auth"
	"github.com/ArtEnginer/POS/internal/application/billing"
	"github.com/ArtEnginer/POS/internal/application/inventory"
	"github.com/ArtEnginer/POS/internal/application/pricing"
	"github.com/ArtEnginer/POS/internal/application/usecase"
	"github.com/ArtEnginer/POS/internal/domain/entity"
)

// RouterDeps dependencias para el router.
type RouterDeps struct {
	AuthUC           *auth.AuthUseCase
	UserUC           *usecase.UserUseCase
	BranchUC         *usecase.BranchUseCase
	CategoryUC       *usecase.CategoryUseCase
	ProductUC        *usecase.ProductUseCase
	Ledger           *inventory.StockLedger
	ReceivingUC      *inventory.ReceivingUseCase
	Prices           *pricing.PriceResolver
	Units            *pricing.UnitConverter
	CustomerUC       *billing.CustomerUseCase
	SaleUC           *billing.SaleUseCase
	ReceiptUC        *billing.ReceiptUseCase
	DashboardUC      *appanalytics.DashboardUseCase
	ReportUC         *appanalytics.ReportUseCase
	SupplierUC       *usecase.SupplierUseCase
	PurchaseReturnUC *inventory.PurchaseReturnUseCase
	SalesReturnUC    *billing.SalesReturnUseCase
	JWTSecret        string
}

// Router registra las rutas de la API bajo /api.
func Router(app *fiber.App, deps RouterDeps) {
	api := app.Group("/api")

	// Roles con permisos de escritura sobre catálogo e inventario.
	backOffice := RequireRole(entity.RoleAdmin, entity.RoleManager)
	adminOnly := RequireRole(entity.RoleAdmin)

	// Los :id de cada recurso deben ser UUID; si no, 404 antes de tocar la BD.
	userID := pathIDs("User")
	branchID := pathIDs("Branch")
	categoryID := pathIDs("Category")
	productID := pathIDs("Product")
	receivingID := pathIDs("Receiving")
	customerID := pathIDs("Customer")
	saleID := pathIDs("Sale")
	supplierID := pathIDs("Supplier")
	purchaseReturnID := pathIDs("Purchase return")
	salesReturnID := pathIDs("Sales return")

	// Auth (público)
	authHandler := NewAuthHandler(deps.AuthUC)
	api.Post("/auth/login", authHandler.Login)

	// Rutas protegidas (requieren Bearer Token no revocado)
	protected := api.Group("/", AuthMiddleware(deps.JWTSecret, deps.AuthUC), ValidQueryIDs())
	protected.Post("/auth/logout", authHandler.Logout)
	protected.Get("/auth/me", authHandler.Me)

	// Users (solo admin)
	users := protected.Group("/users", adminOnly)
	userHandler := NewUserHandler(deps.UserUC)
	users.Post("/", userHandler.Create)
	users.Get("/", userHandler.List)
	users.Get("/:id", userID, userHandler.GetByID)
	users.Put("/:id", userID, userHandler.Update)
	users.Delete("/:id", userID, userHandler.Delete)

	// Branches
	branches := protected.Group("/branches")
	branchHandler := NewBranchHandler(deps.BranchUC)
	branches.Get("/", branchHandler.List)
	branches.Get("/:id", branchID, branchHandler.GetByID)
	branches.Post("/", adminOnly, branchHandler.Create)
	branches.Put("/:id", adminOnly, branchID, branchHandler.Update)
	branches.Delete("/:id", adminOnly, branchID, branchHandler.Delete)

	// Categories
	categories := protected.Group("/categories")
	categoryHandler := NewCategoryHandler(deps.CategoryUC)
	categories.Get("/", categoryHandler.List)
	categories.Post("/", backOffice, categoryHandler.Create)
	categories.Put("/:id", backOffice, categoryID, categoryHandler.Update)
	categories.Delete("/:id", backOffice, categoryID, categoryHandler.Delete)

	// Products: las rutas fijas van antes de /:id
	products := protected.Group("/products")
	productHandler := NewProductHandler(deps.ProductUC)
	inventoryHandler := NewInventoryHandler(deps.Ledger, deps.ReceivingUC)
	priceHandler := NewPriceHandler(deps.Prices, deps.Units)
	products.Get("/", productHandler.List)
	products.Post("/", backOffice, productHandler.Create)
	products.Get("/search", productHandler.Search)
	products.Get("/low-stock", productHandler.LowStock)
	products.Get("/barcode/:barcode", productHandler.GetByBarcode)
	products.Get("/export", backOffice, productHandler.Export)
	products.Get("/import/template", backOffice, productHandler.Template)
	products.Post("/import", backOffice, productHandler.Import)
	products.Delete("/cache/clear", adminOnly, productHandler.ClearCache)
	products.Delete("/cache/clear/:productId", adminOnly, productHandler.ClearCache)
	products.Get("/:id", productID, productHandler.GetByID)
	products.Get("/:id/complete", productID, productHandler.GetComplete)
	products.Put("/:id", backOffice, productID, productHandler.Update)
	products.Delete("/:id", backOffice, productID, productHandler.Delete)

	// Stock por sucursal
	products.Get("/:id/stock", productID, inventoryHandler.ListStock)
	products.Get("/:id/stock/history", backOffice, productID, inventoryHandler.History)
	products.Put("/:id/stock", backOffice, productID, inventoryHandler.AdjustStock)

	// Precios y unidades
	products.Get("/:id/prices", productID, priceHandler.ListPrices)
	products.Put("/:id/price", backOffice, productID, priceHandler.UpsertPrice)
	products.Post("/:id/price", backOffice, productID, priceHandler.UpsertPrice)
	products.Post("/:id/prices/bulk", backOffice, productID, priceHandler.BulkUpsertPrice)
	products.Get("/:id/units", productID, priceHandler.ListUnits)
	products.Post("/:id/units", backOffice, productID, priceHandler.CreateUnit)
	products.Put("/:id/units/:unitId", backOffice, productID, priceHandler.UpdateUnit)
	products.Delete("/:id/units/:unitId", backOffice, productID, priceHandler.DeleteUnit)

	// Receivings
	receivings := protected.Group("/receivings", backOffice)
	receivings.Post("/", inventoryHandler.CreateReceiving)
	receivings.Get("/", inventoryHandler.ListReceivings)
	receivings.Get("/:id", receivingID, inventoryHandler.GetReceiving)

	// Customers
	customers := protected.Group("/customers")
	customerHandler := NewCustomerHandler(deps.CustomerUC)
	customers.Post("/", customerHandler.Create)
	customers.Get("/", customerHandler.List)
	customers.Get("/:id", customerID, customerHandler.GetByID)
	customers.Put("/:id", customerID, customerHandler.Update)
	customers.Delete("/:id", backOffice, customerID, customerHandler.Delete)

	// Sales (cualquier rol puede vender; anular requiere back office)
	sales := protected.Group("/sales")
	saleHandler := NewSaleHandler(deps.SaleUC, deps.ReceiptUC)
	sales.Post("/", saleHandler.Create)
	sales.Get("/", saleHandler.List)
	sales.Get("/:id", saleID, saleHandler.GetByID)
	sales.Get("/:id/receipt", saleID, saleHandler.Receipt)
	sales.Post("/:id/cancel", backOffice, saleID, saleHandler.Cancel)

	// Suppliers
	suppliers := protected.Group("/suppliers")
	supplierHandler := NewSupplierHandler(deps.SupplierUC)
	suppliers.Get("/", supplierHandler.List)
	suppliers.Get("/generate-code", backOffice, supplierHandler.GenerateCode)
	suppliers.Get("/:id", supplierID, supplierHandler.GetByID)
	suppliers.Post("/", backOffice, supplierHandler.Create)
	suppliers.Put("/:id", backOffice, supplierID, supplierHandler.Update)
	suppliers.Delete("/:id", backOffice, supplierID, supplierHandler.Delete)

	// Devoluciones: a proveedor solo back office; de clientes cualquier rol, el estado back office
	returnHandler := NewReturnHandler(deps.PurchaseReturnUC, deps.SalesReturnUC)
	purchaseReturns := protected.Group("/purchase-returns", backOffice)
	purchaseReturns.Post("/", returnHandler.CreatePurchaseReturn)
	purchaseReturns.Get("/", returnHandler.ListPurchaseReturns)
	purchaseReturns.Get("/:id", purchaseReturnID, returnHandler.GetPurchaseReturn)
	purchaseReturns.Post("/:id/cancel", purchaseReturnID, returnHandler.CancelPurchaseReturn)

	salesReturns := protected.Group("/sales-returns")
	salesReturns.Post("/", returnHandler.CreateSalesReturn)
	salesReturns.Get("/", returnHandler.ListSalesReturns)
	salesReturns.Get("/:id", salesReturnID, returnHandler.GetSalesReturn)
	salesReturns.Patch("/:id/status", backOffice, salesReturnID, returnHandler.UpdateSalesReturnStatus)

	// Dashboard
	dashboard := protected.Group("/dashboard", backOffice)
	dashboardHandler := NewDashboardHandler(deps.DashboardUC, deps.ReportUC)
	dashboard.Get("/summary", dashboardHandler.GetSummary)
	dashboard.Get("/sales-report", dashboardHandler.GetSalesReport)
}
