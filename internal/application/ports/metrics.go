package ports

// Recorder métricas de negocio del POS.
type Recorder interface {
	StockAdjusted(operation, result string)
	PriceUpserted(mode string, rows int)
	SaleCreated(branchID string)
	CacheLookup(hit bool)
}

// NopRecorder no registra nada.
type NopRecorder struct{}

func (NopRecorder) StockAdjusted(string, string) {}
func (NopRecorder) PriceUpserted(string, int)    {}
func (NopRecorder) SaleCreated(string)           {}
func (NopRecorder) CacheLookup(bool)             {}
