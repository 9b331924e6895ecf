package ports

import (
	"io"

	"github.com/ArtEnginer/POS/internal/application/dto"
	"github.com/ArtEnginer/POS/internal/domain/entity"
)

// ProductSheet lectura y escritura del catálogo en hoja de cálculo.
type ProductSheet interface {
	Export(rows []dto.ProductSheetRow) ([]byte, error)
	Template() ([]byte, error)
	// Parse lee las filas de datos (sin encabezado); más de maxRows es error.
	Parse(r io.Reader, maxRows int) ([]dto.ProductSheetRow, error)
}

// ReceiptRenderer genera el ticket PDF de una venta.
type ReceiptRenderer interface {
	Render(sale *entity.Sale) ([]byte, error)
}
