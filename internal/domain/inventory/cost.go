package inventory

import "github.com/shopspring/decimal"

// WeightedAverageCost recalcula el costo unitario de un producto tras una recepción.
// nuevo = ((stock * costo) + (recibido * costoRecibido)) / (stock + recibido)
// Con stock resultante <= 0 se conserva el costo de la recepción.
func WeightedAverageCost(stock, cost, received, receivedCost decimal.Decimal) decimal.Decimal {
	total := stock.Add(received)
	if total.LessThanOrEqual(decimal.Zero) {
		return receivedCost.Round(2)
	}
	num := stock.Mul(cost).Add(received.Mul(receivedCost))
	return num.Div(total).Round(2)
}
