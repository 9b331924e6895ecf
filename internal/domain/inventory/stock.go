// Package inventory reúne la aritmética pura del libro de stock: operaciones set/add/subtract,
// conversión de unidades y costo promedio. No conoce la base de datos.
package inventory

import (
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/ArtEnginer/POS/internal/domain"
)

// Operation tipo de ajuste de stock.
type Operation string

// Operaciones válidas para ajustar stock.
const (
	OperationSet      Operation = "set"
	OperationAdd      Operation = "add"
	OperationSubtract Operation = "subtract"
)

// ParseOperation valida la operación recibida; vacío equivale a "set".
func ParseOperation(s string) (Operation, error) {
	switch Operation(s) {
	case "":
		return OperationSet, nil
	case OperationSet, OperationAdd, OperationSubtract:
		return Operation(s), nil
	}
	return "", domain.NewValidationError(
		"Invalid operation. Must be one of: set, add, subtract",
		map[string]any{"operation": s},
	)
}

// ApplyOperation calcula la nueva cantidad. Un resultado negativo se rechaza con
// ValidationError que incluye cantidad actual, solicitada y resultado.
func ApplyOperation(old, delta decimal.Decimal, op Operation) (decimal.Decimal, error) {
	var next decimal.Decimal
	switch op {
	case OperationSet:
		next = delta
	case OperationAdd:
		next = old.Add(delta)
	case OperationSubtract:
		next = old.Sub(delta)
	default:
		return decimal.Zero, domain.NewValidationError(
			"Invalid operation. Must be one of: set, add, subtract",
			map[string]any{"operation": string(op)},
		)
	}
	if next.IsNegative() {
		return decimal.Zero, domain.NewValidationError(
			fmt.Sprintf("Stock cannot be negative. Current: %s, Requested: %s, Result: %s",
				old.String(), delta.String(), next.String()),
			map[string]any{
				"oldQuantity": old,
				"requested":   delta,
				"result":      next,
				"operation":   string(op),
			},
		)
	}
	return next, nil
}

// ToBaseQuantity convierte una cantidad expresada en una unidad alterna a la unidad base
// (1 BOX con conversión 12 = 12 PCS).
func ToBaseQuantity(qty, conversion decimal.Decimal) decimal.Decimal {
	if conversion.LessThanOrEqual(decimal.Zero) {
		return qty
	}
	return qty.Mul(conversion)
}

// Prorate parte de total que corresponde a part sobre whole, sin redondear. Si part es todo
// whole devuelve total exacto; whole <= 0 da cero.
func Prorate(total, part, whole decimal.Decimal) decimal.Decimal {
	if !whole.IsPositive() {
		return decimal.Zero
	}
	if part.Equal(whole) {
		return total
	}
	return total.Mul(part).Div(whole)
}
