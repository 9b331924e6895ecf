package spreadsheet_test

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ArtEnginer/POS/internal/application/dto"
	"github.com/ArtEnginer/POS/internal/domain"
	"github.com/ArtEnginer/POS/internal/infrastructure/spreadsheet"
)

func TestProductSheet_ExportLuegoParse(t *testing.T) {
	s := spreadsheet.NewProductSheet()
	data, err := s.Export([]dto.ProductSheetRow{
		{SKU: "A-1", Name: "Arroz 1kg", Unit: "PCS", CostPrice: "10.00", SellingPrice: "12.50", Stock: "7"},
		{SKU: "B-2", Name: "Azúcar", Unit: "KG", SellingPrice: "9.99"},
	})
	require.NoError(t, err)

	rows, err := s.Parse(bytes.NewReader(data), 10)
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, 2, rows[0].Row)
	assert.Equal(t, "A-1", rows[0].SKU)
	assert.Equal(t, "12.50", rows[0].SellingPrice)
	assert.Equal(t, "Azúcar", rows[1].Name)
	assert.Equal(t, 3, rows[1].Row)
}

func TestProductSheet_TemplateTieneFilaEjemplo(t *testing.T) {
	s := spreadsheet.NewProductSheet()
	data, err := s.Template()
	require.NoError(t, err)

	rows, err := s.Parse(bytes.NewReader(data), 10)
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, "SKU-001", rows[0].SKU)
}

func TestProductSheet_ParseExcedeMaximo(t *testing.T) {
	s := spreadsheet.NewProductSheet()
	data, err := s.Export([]dto.ProductSheetRow{
		{SKU: "1", Name: "a", SellingPrice: "1"},
		{SKU: "2", Name: "b", SellingPrice: "1"},
		{SKU: "3", Name: "c", SellingPrice: "1"},
	})
	require.NoError(t, err)

	_, err = s.Parse(bytes.NewReader(data), 2)
	var verr *domain.ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Contains(t, verr.Message, "Too many rows")
}

func TestProductSheet_ParseArchivoInvalido(t *testing.T) {
	_, err := spreadsheet.NewProductSheet().Parse(bytes.NewReader([]byte("no es xlsx")), 10)
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}
