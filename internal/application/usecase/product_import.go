package usecase

import (
	"context"
	"errors"
	"fmt"
	"io"
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

const (
	importLockKey = "lock:products:import"
	importLockTTL = 5 * time.Minute
	exportPage    = 500
)

// Import carga productos desde una hoja xlsx. Cada fila se procesa en su propia transacción: un SKU
// existente se actualiza y uno nuevo se crea con su unidad base, stock y precios. Solo corre una
// importación a la vez.
func (uc *ProductUseCase) Import(ctx context.Context, r io.Reader) (*dto.ImportResult, error) {
	if uc.d.Sheet == nil {
		return nil, errors.New("import: hoja de cálculo no configurada")
	}
	if uc.d.Locker != nil {
		lock, err := uc.d.Locker.Obtain(ctx, importLockKey, importLockTTL)
		if err != nil {
			if errors.Is(err, ports.ErrLockNotObtained) {
				return nil, domain.NewConflictError("Another product import is in progress")
			}
			return nil, err
		}
		defer lock.Release(context.WithoutCancel(ctx))
	}

	rows, err := uc.d.Sheet.Parse(r, uc.d.ImportMaxRows)
	if err != nil {
		return nil, err
	}

	res := &dto.ImportResult{Errors: []dto.ImportError{}}
	for _, row := range rows {
		created, err := uc.importRow(ctx, row)
		if err != nil {
			res.Failed++
			res.Errors = append(res.Errors, dto.ImportError{Row: row.Row, SKU: row.SKU, Message: err.Error()})
			continue
		}
		if created {
			res.Imported++
		} else {
			res.Updated++
		}
	}

	if res.Imported+res.Updated > 0 {
		uc.d.Cache.DelPattern(ctx, ports.ProductCachePrefix+"*")
		uc.d.Cache.DelPattern(ctx, ports.ProductsListPrefix+"*")
	}
	return res, nil
}

func (uc *ProductUseCase) importRow(ctx context.Context, row dto.ProductSheetRow) (bool, error) {
	sku, name := strings.TrimSpace(row.SKU), strings.TrimSpace(row.Name)
	if sku == "" || name == "" {
		return false, domain.NewValidationError("SKU and name are required", nil)
	}
	selling, err := domainpricing.SanitizePrice(row.SellingPrice, false)
	if err != nil {
		return false, err
	}
	cost, err := domainpricing.SanitizePrice(row.CostPrice, false)
	if err != nil {
		return false, err
	}
	minStock, err := sheetDecimal("minStock", row.MinStock)
	if err != nil {
		return false, err
	}
	reorder, err := sheetDecimal("reorderPoint", row.ReorderPoint)
	if err != nil {
		return false, err
	}
	tax, err := sheetDecimal("taxRate", row.TaxRate)
	if err != nil {
		return false, err
	}

	created := false
	err = uc.d.TxRunner.Run(ctx, func(repos repository.TxRepos) error {
		existing, err := repos.Products.GetBySKU(ctx, sku)
		if err != nil {
			return err
		}
		now := time.Now()
		if existing != nil {
			existing.Name = name
			if row.Description != "" {
				existing.Description = row.Description
			}
			if row.Barcode != "" {
				existing.Barcode = &row.Barcode
			}
			existing.SellingPrice = domainpricing.ParseMoney(*selling)
			existing.MinStock, existing.ReorderPoint, existing.TaxRate = minStock, reorder, tax
			existing.UpdatedAt = now
			return repos.Products.Update(ctx, existing)
		}

		unit := pricing.NormalizeUnitName(row.Unit)
		if unit == "" {
			unit = entity.DefaultUnit
		}
		product := &entity.Product{
			ID:           uuid.New().String(),
			SKU:          sku,
			Barcode:      blankToNil(&row.Barcode),
			Name:         name,
			Description:  row.Description,
			Unit:         unit,
			CostPrice:    domainpricing.ParseMoney(*cost),
			SellingPrice: domainpricing.ParseMoney(*selling),
			MinStock:     minStock,
			ReorderPoint: reorder,
			TaxRate:      tax,
			IsActive:     true,
			IsTrackable:  true,
			CreatedAt:    now,
			UpdatedAt:    now,
		}
		created = true
		return createProductInTx(ctx, repos, product)
	})
	return created, err
}

// Export genera la hoja con todo el catálogo vivo y su stock total.
func (uc *ProductUseCase) Export(ctx context.Context) ([]byte, error) {
	if uc.d.Sheet == nil {
		return nil, errors.New("export: hoja de cálculo no configurada")
	}
	var rows []dto.ProductSheetRow
	for offset := 0; ; offset += exportPage {
		page, err := uc.d.Products.List(ctx, repository.ProductFilter{Limit: exportPage, Offset: offset})
		if err != nil {
			return nil, err
		}
		for _, it := range page {
			barcode := ""
			if it.Barcode != nil {
				barcode = *it.Barcode
			}
			rows = append(rows, dto.ProductSheetRow{
				SKU:          it.SKU,
				Barcode:      barcode,
				Name:         it.Name,
				Description:  it.Description,
				Unit:         it.Unit,
				CostPrice:    domainpricing.FormatMoney(it.CostPrice),
				SellingPrice: domainpricing.FormatMoney(it.SellingPrice),
				MinStock:     it.MinStock.String(),
				ReorderPoint: it.ReorderPoint.String(),
				TaxRate:      it.TaxRate.String(),
				Stock:        it.StockQuantity.String(),
			})
		}
		if len(page) < exportPage {
			break
		}
	}
	return uc.d.Sheet.Export(rows)
}

// Template hoja vacía con los encabezados de importación.
func (uc *ProductUseCase) Template() ([]byte, error) {
	if uc.d.Sheet == nil {
		return nil, errors.New("template: hoja de cálculo no configurada")
	}
	return uc.d.Sheet.Template()
}

func sheetDecimal(field, s string) (decimal.Decimal, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return decimal.Zero, nil
	}
	d, err := decimal.NewFromString(s)
	if err != nil || d.IsNegative() {
		return decimal.Zero, domain.NewValidationError(fmt.Sprintf("Invalid %s: %s", field, s), nil)
	}
	return d, nil
}
