package usecase

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/ArtEnginer/POS/internal/application/dto"
	"github.com/ArtEnginer/POS/internal/application/ports"
	"github.com/ArtEnginer/POS/internal/application/pricing"
	"github.com/ArtEnginer/POS/internal/domain"
	"github.com/ArtEnginer/POS/internal/domain/entity"
	domainpricing "github.com/ArtEnginer/POS/internal/domain/pricing"
	"github.com/ArtEnginer/POS/internal/domain/repository"
)

// ProductDeps dependencias del caso de uso de productos. Cache, Locker, Sheet, Notifier y Metrics
// pueden quedar en nil.
type ProductDeps struct {
	TxRunner      repository.TxRunner
	Products      repository.ProductRepository
	Units         repository.UnitRepository
	Prices        repository.PriceRepository
	Stocks        repository.StockRepository
	Cache         ports.Cache
	Locker        ports.Locker
	Sheet         ports.ProductSheet
	Notifier      ports.Notifier
	Metrics       ports.Recorder
	CacheTTL      time.Duration
	ImportMaxRows int
}

// ProductUseCase casos de uso del catálogo. Costo y stock no se editan aquí: el costo cambia con las
// recepciones y el stock con el libro de stock.
type ProductUseCase struct {
	d ProductDeps
}

// NewProductUseCase construye el caso de uso.
func NewProductUseCase(d ProductDeps) *ProductUseCase {
	if d.Cache == nil {
		d.Cache = ports.NopCache{}
	}
	if d.Notifier == nil {
		d.Notifier = ports.NopNotifier{}
	}
	if d.Metrics == nil {
		d.Metrics = ports.NopRecorder{}
	}
	if d.CacheTTL <= 0 {
		d.CacheTTL = time.Hour
	}
	if d.ImportMaxRows <= 0 {
		d.ImportMaxRows = 5000
	}
	return &ProductUseCase{d: d}
}

// productList página de productos cacheada.
type productList struct {
	Items      []dto.ProductResponse `json:"items"`
	Pagination *dto.Pagination       `json:"pagination"`
}

// Create crea el producto con su unidad base, stock en cero por sucursal activa y la fila de precio
// de la unidad base por sucursal, todo en una transacción.
func (uc *ProductUseCase) Create(ctx context.Context, in dto.CreateProductRequest) (*dto.ProductResponse, error) {
	sku, name := strings.TrimSpace(in.SKU), strings.TrimSpace(in.Name)
	rawSelling := dto.RawValue(in.SellingPrice)
	selling, err := domainpricing.SanitizePrice(rawSelling, true)
	if err != nil {
		return nil, err
	}
	if sku == "" || name == "" || selling == nil {
		return nil, domain.NewValidationError("SKU, name, and selling price are required", nil)
	}
	cost, err := domainpricing.SanitizePrice(dto.RawValue(in.CostPrice), false)
	if err != nil {
		return nil, err
	}

	now := time.Now()
	product := &entity.Product{
		ID:                 uuid.New().String(),
		SKU:                sku,
		Barcode:            blankToNil(in.Barcode),
		Name:               name,
		Description:        in.Description,
		CategoryID:         blankToNil(in.CategoryID),
		Unit:               pricing.NormalizeUnitName(in.Unit),
		CostPrice:          domainpricing.MoneyOrZero(cost),
		SellingPrice:       domainpricing.ParseMoney(*selling),
		MinStock:           decOr(in.MinStock),
		MaxStock:           decOr(in.MaxStock),
		ReorderPoint:       decOr(in.ReorderPoint),
		TaxRate:            decOr(in.TaxRate),
		DiscountPercentage: decOr(in.DiscountPercentage),
		IsActive:           boolOr(in.IsActive, true),
		IsTrackable:        boolOr(in.IsTrackable, true),
		ImageURL:           in.ImageURL,
		Attributes:         in.Attributes,
		CreatedAt:          now,
		UpdatedAt:          now,
	}
	if product.Unit == "" {
		product.Unit = entity.DefaultUnit
	}
	if err := validateProductNumbers(product); err != nil {
		return nil, err
	}

	if err := uc.d.TxRunner.Run(ctx, func(repos repository.TxRepos) error {
		return createProductInTx(ctx, repos, product)
	}); err != nil {
		return nil, err
	}

	uc.d.Cache.DelPattern(ctx, ports.ProductsListPrefix+"*")
	out := dto.FromProduct(product)
	uc.d.Notifier.Publish(ports.EventProductCreated, out)
	return &out, nil
}

func createProductInTx(ctx context.Context, repos repository.TxRepos, product *entity.Product) error {
	if err := repos.Products.Create(ctx, product); err != nil {
		return err
	}
	base := &entity.ProductUnit{
		ID:              uuid.New().String(),
		ProductID:       product.ID,
		UnitName:        product.Unit,
		ConversionValue: decimal.NewFromInt(1),
		IsBaseUnit:      true,
		IsPurchasable:   true,
		IsSellable:      true,
		CreatedAt:       product.CreatedAt,
		UpdatedAt:       product.CreatedAt,
	}
	if err := repos.Units.Create(ctx, base); err != nil {
		return err
	}
	if _, err := repos.Stocks.SeedForProduct(ctx, product.ID); err != nil {
		return err
	}
	_, err := repos.Prices.SeedForUnit(ctx, product.ID, base.ID, product.CostPrice, product.SellingPrice)
	return err
}

// Get producto por ID, servido desde caché cuando existe.
func (uc *ProductUseCase) Get(ctx context.Context, id string) (*dto.ProductResponse, error) {
	key := ports.ProductCacheKey(id)
	var cached dto.ProductResponse
	if uc.d.Cache.Get(ctx, key, &cached) {
		uc.d.Metrics.CacheLookup(true)
		return &cached, nil
	}
	uc.d.Metrics.CacheLookup(false)

	product, err := uc.d.Products.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if product == nil {
		return nil, domain.NewNotFoundError("Product not found")
	}
	out := dto.FromProduct(product)
	uc.d.Cache.Set(ctx, key, out, uc.d.CacheTTL)
	return &out, nil
}

// GetByBarcode busca por código de barras del producto o de una de sus unidades.
func (uc *ProductUseCase) GetByBarcode(ctx context.Context, barcode string) (*dto.ProductResponse, error) {
	product, err := uc.d.Products.GetByBarcode(ctx, strings.TrimSpace(barcode))
	if err != nil {
		return nil, err
	}
	if product == nil {
		return nil, domain.NewNotFoundError("Product not found")
	}
	out := dto.FromProduct(product)
	return &out, nil
}

// List listado paginado con stock agregado; la página se cachea por combinación de filtros.
func (uc *ProductUseCase) List(ctx context.Context, q dto.ProductQuery) ([]dto.ProductResponse, *dto.Pagination, error) {
	q.Normalize()
	f := repository.ProductFilter{
		Search:     strings.TrimSpace(q.Search),
		CategoryID: q.CategoryID,
		BranchID:   q.BranchID,
		Limit:      q.Limit,
		Offset:     q.Offset(),
	}
	if q.IsActive != "" {
		v, err := strconv.ParseBool(q.IsActive)
		if err != nil {
			return nil, nil, domain.NewValidationError("isActive must be true or false", nil)
		}
		f.IsActive = &v
	}

	key := fmt.Sprintf("%slist:%s:%s:%s:%s:%d:%d", ports.ProductsListPrefix,
		f.Search, f.CategoryID, q.IsActive, f.BranchID, q.Page, q.Limit)
	var cached productList
	if uc.d.Cache.Get(ctx, key, &cached) {
		uc.d.Metrics.CacheLookup(true)
		return cached.Items, cached.Pagination, nil
	}
	uc.d.Metrics.CacheLookup(false)

	rows, err := uc.d.Products.List(ctx, f)
	if err != nil {
		return nil, nil, err
	}
	total, err := uc.d.Products.Count(ctx, f)
	if err != nil {
		return nil, nil, err
	}
	items := make([]dto.ProductResponse, 0, len(rows))
	for _, it := range rows {
		items = append(items, dto.FromProductListItem(it))
	}
	page := dto.NewPagination(q.PageQuery, total)
	uc.d.Cache.Set(ctx, key, productList{Items: items, Pagination: page}, uc.d.CacheTTL)
	return items, page, nil
}

// Search búsqueda rápida por nombre, SKU o código de barras.
func (uc *ProductUseCase) Search(ctx context.Context, q string, limit int) ([]dto.ProductResponse, error) {
	q = strings.TrimSpace(q)
	if q == "" {
		return nil, domain.NewValidationError("Search query is required", nil)
	}
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	rows, err := uc.d.Products.Search(ctx, q, limit)
	if err != nil {
		return nil, err
	}
	out := make([]dto.ProductResponse, 0, len(rows))
	for _, p := range rows {
		out = append(out, dto.FromProduct(p))
	}
	return out, nil
}

// ListLowStock productos cuyo disponible en una sucursal está en o bajo el punto de reorden.
func (uc *ProductUseCase) ListLowStock(ctx context.Context, branchID string) ([]dto.ProductResponse, error) {
	rows, err := uc.d.Products.ListLowStock(ctx, branchID)
	if err != nil {
		return nil, err
	}
	out := make([]dto.ProductResponse, 0, len(rows))
	for _, it := range rows {
		out = append(out, dto.FromProductListItem(it))
	}
	return out, nil
}

// GetComplete producto con unidades, matriz de precios y stock, opcionalmente de una sucursal.
func (uc *ProductUseCase) GetComplete(ctx context.Context, id, branchID string) (*dto.ProductCompleteResponse, error) {
	product, err := uc.d.Products.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if product == nil {
		return nil, domain.NewNotFoundError("Product not found")
	}
	units, err := uc.d.Units.ListByProduct(ctx, id)
	if err != nil {
		return nil, err
	}
	prices, err := uc.d.Prices.ListByProduct(ctx, id, repository.PriceFilter{BranchID: branchID})
	if err != nil {
		return nil, err
	}
	stocks, err := uc.d.Stocks.ListByProduct(ctx, id, branchID)
	if err != nil {
		return nil, err
	}

	out := &dto.ProductCompleteResponse{
		Product: dto.FromProduct(product),
		Units:   make([]dto.UnitResponse, 0, len(units)),
		Prices:  make([]dto.PriceResponse, 0, len(prices)),
		Stocks:  make([]dto.StockResponse, 0, len(stocks)),
	}
	for _, u := range units {
		out.Units = append(out.Units, dto.FromUnit(u))
	}
	for _, p := range prices {
		out.Prices = append(out.Prices, dto.FromPrice(p))
	}
	for _, s := range stocks {
		out.Stocks = append(out.Stocks, dto.FromStock(s))
	}
	return out, nil
}

// Update actualiza los datos del catálogo. Un cambio de unidad renombra también la unidad base.
func (uc *ProductUseCase) Update(ctx context.Context, id string, in dto.UpdateProductRequest) (*dto.ProductResponse, error) {
	product, err := uc.d.Products.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if product == nil {
		return nil, domain.NewNotFoundError("Product not found")
	}

	if in.SKU != nil {
		if product.SKU = strings.TrimSpace(*in.SKU); product.SKU == "" {
			return nil, domain.NewValidationError("SKU cannot be empty", nil)
		}
	}
	if in.Name != nil {
		if product.Name = strings.TrimSpace(*in.Name); product.Name == "" {
			return nil, domain.NewValidationError("Name cannot be empty", nil)
		}
	}
	if in.Barcode != nil {
		product.Barcode = blankToNil(in.Barcode)
	}
	if in.Description != nil {
		product.Description = *in.Description
	}
	if in.CategoryID != nil {
		product.CategoryID = blankToNil(in.CategoryID)
	}
	renameUnit := false
	if in.Unit != nil {
		if u := pricing.NormalizeUnitName(*in.Unit); u != "" && u != product.Unit {
			product.Unit = u
			renameUnit = true
		}
	}
	if len(in.SellingPrice) > 0 {
		raw := dto.RawValue(in.SellingPrice)
		s, err := domainpricing.SanitizePrice(raw, true)
		if err != nil {
			return nil, err
		}
		if s == nil || domainpricing.IsNegativeRaw(raw) {
			return nil, domain.NewValidationError("Valid selling price is required", nil)
		}
		product.SellingPrice = domainpricing.ParseMoney(*s)
	}
	setDec(&product.MinStock, in.MinStock)
	setDec(&product.MaxStock, in.MaxStock)
	setDec(&product.ReorderPoint, in.ReorderPoint)
	setDec(&product.TaxRate, in.TaxRate)
	setDec(&product.DiscountPercentage, in.DiscountPercentage)
	if in.IsActive != nil {
		product.IsActive = *in.IsActive
	}
	if in.IsTrackable != nil {
		product.IsTrackable = *in.IsTrackable
	}
	if in.ImageURL != nil {
		product.ImageURL = *in.ImageURL
	}
	if len(in.Attributes) > 0 && json.Valid(in.Attributes) {
		product.Attributes = in.Attributes
	}
	if err := validateProductNumbers(product); err != nil {
		return nil, err
	}
	product.UpdatedAt = time.Now()

	err = uc.d.TxRunner.Run(ctx, func(repos repository.TxRepos) error {
		if err := repos.Products.Update(ctx, product); err != nil {
			return err
		}
		if !renameUnit {
			return nil
		}
		base, err := repos.Units.GetBase(ctx, product.ID)
		if err != nil || base == nil {
			return err
		}
		base.UnitName = product.Unit
		base.UpdatedAt = product.UpdatedAt
		return repos.Units.Update(ctx, base)
	})
	if err != nil {
		return nil, err
	}

	uc.invalidate(ctx, id)
	out := dto.FromProduct(product)
	uc.d.Notifier.Publish(ports.EventProductUpdated, out)
	return &out, nil
}

// Delete soft-delete del producto con sus unidades y precios.
func (uc *ProductUseCase) Delete(ctx context.Context, id string) error {
	ok, err := uc.d.Products.SoftDelete(ctx, id)
	if err != nil {
		return err
	}
	if !ok {
		return domain.NewNotFoundError("Product not found")
	}
	uc.invalidate(ctx, id)
	uc.d.Notifier.Publish(ports.EventProductDeleted, map[string]any{"id": id})
	return nil
}

// ClearCache borra la caché de un producto o, con productID vacío, toda la caché de productos.
// Devuelve cuántas llaves se borraron.
func (uc *ProductUseCase) ClearCache(ctx context.Context, productID string) int {
	if productID != "" {
		n := uc.d.Cache.DelPattern(ctx, "stock:*:"+productID)
		if uc.d.Cache.Exists(ctx, ports.ProductCacheKey(productID)) {
			uc.d.Cache.Del(ctx, ports.ProductCacheKey(productID))
			n++
		}
		return n + uc.d.Cache.DelPattern(ctx, ports.ProductsListPrefix+"*")
	}
	return uc.d.Cache.DelPattern(ctx, ports.ProductCachePrefix+"*") +
		uc.d.Cache.DelPattern(ctx, ports.ProductsListPrefix+"*") +
		uc.d.Cache.DelPattern(ctx, "stock:*")
}

func (uc *ProductUseCase) invalidate(ctx context.Context, id string) {
	uc.d.Cache.Del(ctx, ports.ProductCacheKey(id))
	uc.d.Cache.DelPattern(ctx, "stock:*:"+id)
	uc.d.Cache.DelPattern(ctx, ports.ProductsListPrefix+"*")
}

func validateProductNumbers(p *entity.Product) error {
	for field, v := range map[string]decimal.Decimal{
		"minStock":     p.MinStock,
		"maxStock":     p.MaxStock,
		"reorderPoint": p.ReorderPoint,
		"taxRate":      p.TaxRate,
	} {
		if v.IsNegative() {
			return domain.NewValidationError(field+" cannot be negative", map[string]any{field: v})
		}
	}
	if p.DiscountPercentage.IsNegative() || p.DiscountPercentage.GreaterThan(decimal.NewFromInt(100)) {
		return domain.NewValidationError("discountPercentage must be between 0 and 100", nil)
	}
	return nil
}

func blankToNil(s *string) *string {
	if s == nil {
		return nil
	}
	v := strings.TrimSpace(*s)
	if v == "" {
		return nil
	}
	return &v
}

func decOr(d *decimal.Decimal) decimal.Decimal {
	if d == nil {
		return decimal.Zero
	}
	return *d
}

func setDec(dst *decimal.Decimal, v *decimal.Decimal) {
	if v != nil {
		*dst = *v
	}
}

func boolOr(v *bool, def bool) bool {
	if v == nil {
		return def
	}
	return *v
}
