// Package pricing contiene los casos de uso de la matriz de precios (producto × sucursal × unidad)
// y de las unidades de medida de cada producto.
package pricing

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/ArtEnginer/POS/internal/application/dto"
	"github.com/ArtEnginer/POS/internal/application/ports"
	"github.com/ArtEnginer/POS/internal/domain"
	"github.com/ArtEnginer/POS/internal/domain/entity"
	domainpricing "github.com/ArtEnginer/POS/internal/domain/pricing"
	"github.com/ArtEnginer/POS/internal/domain/repository"
)

// Mensajes de validación de precios.
const (
	msgBranchUnitRequired = "Branch ID and Unit ID are required"
	msgUnitRequired       = "Unit ID is required"
	msgSellingRequired    = "Valid selling price is required"
)

// sanitized los cuatro precios ya saneados.
type sanitized struct {
	cost      decimal.Decimal
	selling   decimal.Decimal
	wholesale *decimal.Decimal
	member    *decimal.Decimal
}

// PriceResolver caso de uso de precios por sucursal y unidad.
type PriceResolver struct {
	txRunner repository.TxRunner
	products repository.ProductRepository
	units    repository.UnitRepository
	prices   repository.PriceRepository
	cache    ports.Cache
	notifier ports.Notifier
	metrics  ports.Recorder
}

// NewPriceResolver construye el caso de uso. cache, notifier y metrics pueden ser nil.
func NewPriceResolver(
	txRunner repository.TxRunner,
	products repository.ProductRepository,
	units repository.UnitRepository,
	prices repository.PriceRepository,
	cache ports.Cache,
	notifier ports.Notifier,
	metrics ports.Recorder,
) *PriceResolver {
	if cache == nil {
		cache = ports.NopCache{}
	}
	if notifier == nil {
		notifier = ports.NopNotifier{}
	}
	if metrics == nil {
		metrics = ports.NopRecorder{}
	}
	return &PriceResolver{
		txRunner: txRunner,
		products: products,
		units:    units,
		prices:   prices,
		cache:    cache,
		notifier: notifier,
		metrics:  metrics,
	}
}

// sanitizeAll sanea costo (null → 0.00), venta (obligatoria, no negativa), mayoreo y miembro (null permitido).
func sanitizeAll(cost, selling, wholesale, member json.RawMessage) (*sanitized, error) {
	rawSelling := dto.RawValue(selling)
	if domainpricing.IsNegativeRaw(rawSelling) {
		return nil, domain.NewValidationError(msgSellingRequired, nil)
	}
	s, err := domainpricing.SanitizePrice(rawSelling, true)
	if err != nil {
		return nil, err
	}
	if s == nil {
		return nil, domain.NewValidationError(msgSellingRequired, nil)
	}
	c, err := domainpricing.SanitizePrice(dto.RawValue(cost), false)
	if err != nil {
		return nil, err
	}
	w, err := domainpricing.SanitizePrice(dto.RawValue(wholesale), true)
	if err != nil {
		return nil, err
	}
	m, err := domainpricing.SanitizePrice(dto.RawValue(member), true)
	if err != nil {
		return nil, err
	}
	return &sanitized{
		cost:      domainpricing.MoneyOrZero(c),
		selling:   domainpricing.ParseMoney(*s),
		wholesale: domainpricing.NullableMoney(w),
		member:    domainpricing.NullableMoney(m),
	}, nil
}

// UpsertPrice crea o sobrescribe el precio de (producto, sucursal, unidad).
func (r *PriceResolver) UpsertPrice(ctx context.Context, productID string, in dto.UpsertPriceRequest) (*dto.PriceResponse, error) {
	if in.BranchID == "" || in.UnitID == "" {
		return nil, domain.NewValidationError(msgBranchUnitRequired, nil)
	}
	vals, err := sanitizeAll(in.CostPrice, in.SellingPrice, in.WholesalePrice, in.MemberPrice)
	if err != nil {
		return nil, err
	}

	var saved *entity.ProductBranchPrice
	err = r.txRunner.Run(ctx, func(repos repository.TxRepos) error {
		if err := requireProductAndUnit(ctx, repos, productID, in.UnitID); err != nil {
			return err
		}
		branch, err := repos.Branches.GetByID(ctx, in.BranchID)
		if err != nil {
			return err
		}
		if branch == nil {
			return domain.NewNotFoundError("Branch not found")
		}
		saved, err = repos.Prices.Upsert(ctx, vals.row(productID, in.BranchID, in.UnitID))
		if err != nil {
			return err
		}
		saved.BranchCode, saved.BranchName = branch.Code, branch.Name
		return nil
	})
	if err != nil {
		return nil, err
	}

	r.invalidate(ctx, productID)
	r.metrics.PriceUpserted("single", 1)
	out := dto.FromPrice(saved)
	r.notifier.Publish(ports.EventPriceUpdate, out)
	return &out, nil
}

// BulkUpsertPrice aplica los mismos precios de una unidad en todas las sucursales activas, todo o nada.
func (r *PriceResolver) BulkUpsertPrice(ctx context.Context, productID string, in dto.BulkPriceRequest) (*dto.BulkPriceResponse, error) {
	if in.UnitID == "" {
		return nil, domain.NewValidationError(msgUnitRequired, nil)
	}
	vals, err := sanitizeAll(in.CostPrice, in.SellingPrice, in.WholesalePrice, in.MemberPrice)
	if err != nil {
		return nil, err
	}

	updated := 0
	err = r.txRunner.Run(ctx, func(repos repository.TxRepos) error {
		if err := requireProductAndUnit(ctx, repos, productID, in.UnitID); err != nil {
			return err
		}
		branchIDs, err := repos.Branches.ListActiveIDs(ctx)
		if err != nil {
			return err
		}
		for _, branchID := range branchIDs {
			if _, err := repos.Prices.Upsert(ctx, vals.row(productID, branchID, in.UnitID)); err != nil {
				return fmt.Errorf("upsert price branch %s: %w", branchID, err)
			}
			updated++
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	r.invalidate(ctx, productID)
	r.metrics.PriceUpserted("bulk", updated)
	out := &dto.BulkPriceResponse{Updated: updated, UnitID: in.UnitID, ProductID: productID}
	r.notifier.Publish(ports.EventPriceUpdate, out)
	return out, nil
}

// ListPrices matriz de precios del producto, filtrable por unidad y sucursal.
func (r *PriceResolver) ListPrices(ctx context.Context, productID, unitID, branchID string) ([]dto.PriceResponse, error) {
	product, err := r.products.GetByID(ctx, productID)
	if err != nil {
		return nil, err
	}
	if product == nil {
		return nil, domain.NewNotFoundError("Product not found")
	}
	rows, err := r.prices.ListByProduct(ctx, productID, repository.PriceFilter{UnitID: unitID, BranchID: branchID})
	if err != nil {
		return nil, err
	}
	out := make([]dto.PriceResponse, 0, len(rows))
	for _, p := range rows {
		out = append(out, dto.FromPrice(p))
	}
	return out, nil
}

// ResolveSellingPrice precio de venta de una unidad en una sucursal: la fila de la matriz si existe
// y es mayor que cero (precio de miembro cuando member y la fila lo trae); si no, el precio de
// referencia del producto por la conversión de la unidad.
func ResolveSellingPrice(ctx context.Context, prices repository.PriceRepository, product *entity.Product, branchID string, unit *entity.ProductUnit, member bool) (decimal.Decimal, error) {
	if unit.ID != "" {
		row, err := prices.Get(ctx, product.ID, branchID, unit.ID)
		if err != nil {
			return decimal.Zero, err
		}
		if row != nil {
			if member && row.MemberPrice != nil && row.MemberPrice.IsPositive() {
				return *row.MemberPrice, nil
			}
			if row.SellingPrice.IsPositive() {
				return row.SellingPrice, nil
			}
		}
	}
	return product.SellingPrice.Mul(unit.ConversionValue).Round(2), nil
}

// row arma la fila a escribir; el id nuevo solo se usa si la tripleta aún no existe.
func (v *sanitized) row(productID, branchID, unitID string) *entity.ProductBranchPrice {
	return &entity.ProductBranchPrice{
		ID:             uuid.New().String(),
		ProductID:      productID,
		BranchID:       branchID,
		ProductUnitID:  unitID,
		CostPrice:      v.cost,
		SellingPrice:   v.selling,
		WholesalePrice: v.wholesale,
		MemberPrice:    v.member,
	}
}

func requireProductAndUnit(ctx context.Context, repos repository.TxRepos, productID, unitID string) error {
	product, err := repos.Products.GetByID(ctx, productID)
	if err != nil {
		return err
	}
	if product == nil {
		return domain.NewNotFoundError("Product not found")
	}
	unit, err := repos.Units.GetByID(ctx, productID, unitID)
	if err != nil {
		return err
	}
	if unit == nil {
		return domain.NewNotFoundError("Product unit not found")
	}
	return nil
}

func (r *PriceResolver) invalidate(ctx context.Context, productID string) {
	r.cache.Del(ctx, ports.ProductCacheKey(productID))
	r.cache.DelPattern(ctx, ports.ProductsListPrefix+"*")
}
