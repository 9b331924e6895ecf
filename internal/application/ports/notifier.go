package ports

// Tipos de evento publicados al hub en tiempo real.
const (
	EventStockUpdate     = "stock_update"
	EventPriceUpdate     = "price_update"
	EventUnitUpdate      = "unit_update"
	EventProductCreated  = "product_created"
	EventProductUpdated  = "product_updated"
	EventProductDeleted  = "product_deleted"
	EventSaleCreated     = "sale_created"
	EventSaleCancelled   = "sale_cancelled"
	EventReceivingCreate = "receiving_created"
	EventPurchaseReturn  = "purchase_return"
	EventSalesReturn     = "sales_return"
)

// Notifier publica eventos a los clientes conectados. Publish no bloquea ni falla: si nadie
// escucha el evento se descarta.
type Notifier interface {
	Publish(eventType string, data any)
}

// NopNotifier descarta todos los eventos.
type NopNotifier struct{}

// Publish no hace nada.
func (NopNotifier) Publish(string, any) {}
