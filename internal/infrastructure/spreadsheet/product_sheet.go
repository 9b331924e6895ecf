// Package spreadsheet lee y escribe el catálogo de productos en xlsx con excelize.
package spreadsheet

import (
	"bytes"
	"fmt"
	"io"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/ArtEnginer/POS/internal/application/dto"
	"github.com/ArtEnginer/POS/internal/application/ports"
	"github.com/ArtEnginer/POS/internal/domain"
)

var _ ports.ProductSheet = (*ProductSheet)(nil)

const sheetName = "Products"

// columnas de importación en orden; la exportación agrega Stock al final.
var importHeaders = []string{
	"SKU", "Barcode", "Name", "Description", "Unit",
	"Cost Price", "Selling Price", "Min Stock", "Reorder Point", "Tax Rate",
}

// ProductSheet implementación de ports.ProductSheet.
type ProductSheet struct{}

// NewProductSheet construye el adaptador.
func NewProductSheet() *ProductSheet { return &ProductSheet{} }

// Template hoja con encabezados y una fila de ejemplo.
func (s *ProductSheet) Template() ([]byte, error) {
	return s.write(importHeaders, [][]any{{
		"SKU-001", "8990001112223", "Example product", "", "PCS",
		"10000.00", "12500.00", "5", "10", "11",
	}})
}

// Export una fila por producto con el stock total.
func (s *ProductSheet) Export(rows []dto.ProductSheetRow) ([]byte, error) {
	headers := append(append([]string{}, importHeaders...), "Stock")
	data := make([][]any, 0, len(rows))
	for _, r := range rows {
		data = append(data, []any{
			r.SKU, r.Barcode, r.Name, r.Description, r.Unit,
			r.CostPrice, r.SellingPrice, r.MinStock, r.ReorderPoint, r.TaxRate, r.Stock,
		})
	}
	return s.write(headers, data)
}

func (s *ProductSheet) write(headers []string, rows [][]any) ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()
	if err := f.SetSheetName("Sheet1", sheetName); err != nil {
		return nil, err
	}

	// Encabezados
	for i, h := range headers {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		if err := f.SetCellValue(sheetName, cell, h); err != nil {
			return nil, err
		}
	}
	if style, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}}); err == nil {
		last, _ := excelize.CoordinatesToCellName(len(headers), 1)
		_ = f.SetCellStyle(sheetName, "A1", last, style)
	}

	// Datos
	for r, row := range rows {
		cell, _ := excelize.CoordinatesToCellName(1, r+2)
		if err := f.SetSheetRow(sheetName, cell, &row); err != nil {
			return nil, err
		}
	}

	var buf bytes.Buffer
	if err := f.Write(&buf); err != nil {
		return nil, fmt.Errorf("escribir xlsx: %w", err)
	}
	return buf.Bytes(), nil
}

// Parse lee la primera hoja. Las columnas se ubican por nombre de encabezado (sin distinguir
// mayúsculas), las filas vacías se ignoran y Row conserva el número de fila de la hoja.
func (s *ProductSheet) Parse(r io.Reader, maxRows int) ([]dto.ProductSheetRow, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, domain.NewValidationError("Invalid xlsx file", map[string]any{"error": err.Error()})
	}
	defer f.Close()

	rows, err := f.GetRows(f.GetSheetName(0))
	if err != nil {
		return nil, domain.NewValidationError("Unable to read sheet", map[string]any{"error": err.Error()})
	}
	if len(rows) == 0 {
		return nil, domain.NewValidationError("The file is empty", nil)
	}

	idx := make(map[string]int, len(rows[0]))
	for i, h := range rows[0] {
		idx[strings.ToLower(strings.TrimSpace(h))] = i
	}
	for _, required := range []string{"sku", "name", "selling price"} {
		if _, ok := idx[required]; !ok {
			return nil, domain.NewValidationError(fmt.Sprintf("Missing column: %s", required), nil)
		}
	}
	col := func(row []string, name string) string {
		i, ok := idx[name]
		if !ok || i >= len(row) {
			return ""
		}
		return strings.TrimSpace(row[i])
	}

	out := make([]dto.ProductSheetRow, 0, len(rows)-1)
	for n, row := range rows[1:] {
		if isBlank(row) {
			continue
		}
		if len(out) == maxRows {
			return nil, domain.NewValidationError(fmt.Sprintf("Too many rows. Maximum: %d", maxRows), nil)
		}
		out = append(out, dto.ProductSheetRow{
			Row:          n + 2,
			SKU:          col(row, "sku"),
			Barcode:      col(row, "barcode"),
			Name:         col(row, "name"),
			Description:  col(row, "description"),
			Unit:         col(row, "unit"),
			CostPrice:    col(row, "cost price"),
			SellingPrice: col(row, "selling price"),
			MinStock:     col(row, "min stock"),
			ReorderPoint: col(row, "reorder point"),
			TaxRate:      col(row, "tax rate"),
		})
	}
	return out, nil
}

func isBlank(row []string) bool {
	for _, v := range row {
		if strings.TrimSpace(v) != "" {
			return false
		}
	}
	return true
}
