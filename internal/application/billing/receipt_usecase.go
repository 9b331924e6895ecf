package billing

import (
	"context"
	"fmt"

	"github.com/ArtEnginer/POS/internal/application/ports"
)

// ReceiptUseCase genera el ticket PDF de una venta.
type ReceiptUseCase struct {
	sales    *SaleUseCase
	renderer ports.ReceiptRenderer
}

// NewReceiptUseCase construye el caso de uso.
func NewReceiptUseCase(sales *SaleUseCase, renderer ports.ReceiptRenderer) *ReceiptUseCase {
	return &ReceiptUseCase{sales: sales, renderer: renderer}
}

// DownloadReceipt devuelve el PDF y el nombre de archivo sugerido.
//
// Retorna:
//   - (pdfBytes, filename, nil) si todo sale bien.
//   - *domain.NotFoundError     si la venta no existe.
func (uc *ReceiptUseCase) DownloadReceipt(ctx context.Context, saleID string) ([]byte, string, error) {
	sale, err := uc.sales.GetSale(ctx, saleID)
	if err != nil {
		return nil, "", err
	}
	pdfBytes, err := uc.renderer.Render(sale)
	if err != nil {
		return nil, "", fmt.Errorf("receipt: generar pdf: %w", err)
	}
	return pdfBytes, fmt.Sprintf("receipt-%s.pdf", sale.SaleNumber), nil
}
