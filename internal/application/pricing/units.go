package pricing

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/ArtEnginer/POS/internal/application/dto"
	"github.com/ArtEnginer/POS/internal/application/ports"
	"github.com/ArtEnginer/POS/internal/domain"
	"github.com/ArtEnginer/POS/internal/domain/entity"
	"github.com/ArtEnginer/POS/internal/domain/repository"
)

var upper = cases.Upper(language.Und)

// NormalizeUnitName nombre de unidad en mayúsculas sin espacios alrededor ("box " -> "BOX").
func NormalizeUnitName(name string) string {
	return upper.String(strings.TrimSpace(name))
}

// UnitConverter caso de uso de las unidades de medida de un producto.
type UnitConverter struct {
	txRunner repository.TxRunner
	products repository.ProductRepository
	units    repository.UnitRepository
	cache    ports.Cache
	notifier ports.Notifier
}

// NewUnitConverter construye el caso de uso. cache y notifier pueden ser nil.
func NewUnitConverter(
	txRunner repository.TxRunner,
	products repository.ProductRepository,
	units repository.UnitRepository,
	cache ports.Cache,
	notifier ports.Notifier,
) *UnitConverter {
	if cache == nil {
		cache = ports.NopCache{}
	}
	if notifier == nil {
		notifier = ports.NopNotifier{}
	}
	return &UnitConverter{txRunner: txRunner, products: products, units: units, cache: cache, notifier: notifier}
}

func validateConversion(conversion decimal.Decimal, isBase bool) error {
	if !conversion.IsPositive() {
		return domain.NewValidationError("Conversion value must be greater than 0", nil)
	}
	if isBase && !conversion.Equal(decimal.NewFromInt(1)) {
		return domain.NewValidationError("Base unit conversion must be 1", nil)
	}
	return nil
}

// CreateUnit agrega una unidad al producto y siembra su fila de precio en cero para cada sucursal activa.
func (c *UnitConverter) CreateUnit(ctx context.Context, productID string, in dto.CreateUnitRequest) (*dto.UnitResponse, error) {
	name := NormalizeUnitName(in.UnitName)
	if name == "" || in.ConversionValue == nil {
		return nil, domain.NewValidationError("Unit name and conversion value are required", nil)
	}
	if err := validateConversion(*in.ConversionValue, in.IsBaseUnit); err != nil {
		return nil, err
	}

	now := time.Now()
	unit := &entity.ProductUnit{
		ID:              uuid.New().String(),
		ProductID:       productID,
		UnitName:        name,
		ConversionValue: *in.ConversionValue,
		IsBaseUnit:      in.IsBaseUnit,
		IsPurchasable:   boolOr(in.IsPurchasable, true),
		IsSellable:      boolOr(in.IsSellable, true),
		Barcode:         in.Barcode,
		CreatedAt:       now,
		UpdatedAt:       now,
	}
	if in.SortOrder != nil {
		unit.SortOrder = *in.SortOrder
	}

	err := c.txRunner.Run(ctx, func(repos repository.TxRepos) error {
		product, err := repos.Products.GetByID(ctx, productID)
		if err != nil {
			return err
		}
		if product == nil {
			return domain.NewNotFoundError("Product not found")
		}
		if unit.IsBaseUnit {
			base, err := repos.Units.GetBase(ctx, productID)
			if err != nil {
				return err
			}
			if base != nil {
				return domain.NewValidationError("Product already has a base unit. Please update existing base unit instead.", nil)
			}
		}
		if err := repos.Units.Create(ctx, unit); err != nil {
			return err
		}
		_, err = repos.Prices.SeedForUnit(ctx, productID, unit.ID, decimal.Zero, decimal.Zero)
		return err
	})
	if err != nil {
		return nil, err
	}

	c.afterWrite(ctx, productID, "created", unit.ID)
	out := dto.FromUnit(unit)
	return &out, nil
}

// UpdateUnit aplica solo los campos presentes.
func (c *UnitConverter) UpdateUnit(ctx context.Context, productID, unitID string, in dto.UpdateUnitRequest) (*dto.UnitResponse, error) {
	if in.Empty() {
		return nil, domain.NewValidationError("No fields to update", nil)
	}
	unit, err := c.units.GetByID(ctx, productID, unitID)
	if err != nil {
		return nil, err
	}
	if unit == nil {
		return nil, domain.NewNotFoundError("Product unit not found")
	}

	if in.UnitName != nil {
		name := NormalizeUnitName(*in.UnitName)
		if name == "" {
			return nil, domain.NewValidationError("Unit name cannot be empty", nil)
		}
		unit.UnitName = name
	}
	if in.ConversionValue != nil {
		if err := validateConversion(*in.ConversionValue, unit.IsBaseUnit); err != nil {
			return nil, err
		}
		unit.ConversionValue = *in.ConversionValue
	}
	if in.IsPurchasable != nil {
		unit.IsPurchasable = *in.IsPurchasable
	}
	if in.IsSellable != nil {
		unit.IsSellable = *in.IsSellable
	}
	if in.Barcode != nil {
		unit.Barcode = in.Barcode
		if strings.TrimSpace(*in.Barcode) == "" {
			unit.Barcode = nil
		}
	}
	if in.SortOrder != nil {
		unit.SortOrder = *in.SortOrder
	}
	unit.UpdatedAt = time.Now()

	if err := c.units.Update(ctx, unit); err != nil {
		return nil, err
	}
	c.afterWrite(ctx, productID, "updated", unit.ID)
	out := dto.FromUnit(unit)
	return &out, nil
}

// DeleteUnit hace soft-delete de la unidad y de sus precios; la unidad base no se puede borrar.
func (c *UnitConverter) DeleteUnit(ctx context.Context, productID, unitID string) error {
	err := c.txRunner.Run(ctx, func(repos repository.TxRepos) error {
		unit, err := repos.Units.GetByID(ctx, productID, unitID)
		if err != nil {
			return err
		}
		if unit == nil {
			return domain.NewNotFoundError("Product unit not found")
		}
		if unit.IsBaseUnit {
			return domain.NewValidationError("Cannot delete base unit", nil)
		}
		return repos.Units.SoftDelete(ctx, productID, unitID)
	})
	if err != nil {
		return err
	}
	c.afterWrite(ctx, productID, "deleted", unitID)
	return nil
}

// ListUnits unidades vivas del producto ordenadas por sort_order y conversión.
func (c *UnitConverter) ListUnits(ctx context.Context, productID string) ([]dto.UnitResponse, error) {
	product, err := c.products.GetByID(ctx, productID)
	if err != nil {
		return nil, err
	}
	if product == nil {
		return nil, domain.NewNotFoundError("Product not found")
	}
	units, err := c.units.ListByProduct(ctx, productID)
	if err != nil {
		return nil, err
	}
	out := make([]dto.UnitResponse, 0, len(units))
	for _, u := range units {
		out = append(out, dto.FromUnit(u))
	}
	return out, nil
}

func (c *UnitConverter) afterWrite(ctx context.Context, productID, action, unitID string) {
	c.cache.Del(ctx, ports.ProductCacheKey(productID))
	c.cache.DelPattern(ctx, ports.ProductsListPrefix+"*")
	c.notifier.Publish(ports.EventUnitUpdate, map[string]any{
		"productId": productID,
		"unitId":    unitID,
		"action":    action,
	})
}

func boolOr(v *bool, def bool) bool {
	if v == nil {
		return def
	}
	return *v
}
