// Package pricing contiene las reglas puras de dinero del POS: saneamiento de precios
// antes de que lleguen a la base de datos (NUMERIC(15,2)).
package pricing

import (
	"encoding/json"
	"fmt"
	"math"
	"regexp"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/ArtEnginer/POS/internal/domain"
)

// MaxPriceText límite superior legible de cualquier campo monetario.
const MaxPriceText = "9,999,999,999,999.99"

// MaxPrice mayor valor representable en NUMERIC(15,2).
var MaxPrice = decimal.RequireFromString("9999999999999.99")

// zero es el valor de respaldo cuando allowNull es false.
const zero = "0.00"

// numericPrefix prefijo numérico de un texto: "12abc" vale 12 y "abc" no es número.
var numericPrefix = regexp.MustCompile(`^[+-]?(?:\d+(?:\.\d*)?|\.\d+)(?:[eE][+-]?\d+)?`)

// SanitizePrice normaliza un valor monetario crudo (string, número, nil) a un string
// con exactamente 2 decimales.
//
//   - nil, "" o sin prefijo numérico: nil si allowNull, si no "0.00". "12abc" se lee como 12.
//   - negativo: "0.00" (se recorta en silencio).
//   - mayor a MaxPrice: ValidationError.
//   - resto: redondeo half-up a 2 decimales.
func SanitizePrice(raw any, allowNull bool) (*string, error) {
	value, ok := parse(raw)
	if !ok {
		return fallback(allowNull), nil
	}
	if value.IsNegative() {
		s := zero
		return &s, nil
	}
	if value.GreaterThan(MaxPrice) {
		return nil, domain.NewValidationError(
			fmt.Sprintf("Price too large. Maximum value: %s (received: %s)", MaxPriceText, value.String()),
			map[string]any{"max": MaxPrice.StringFixed(2), "received": value.String()},
		)
	}
	// Round de shopspring redondea half away from zero; al ser >= 0 equivale a half-up.
	s := value.Round(2).StringFixed(2)
	return &s, nil
}

// ParseMoney convierte un precio ya saneado a decimal; un texto inválido produce cero.
func ParseMoney(s string) decimal.Decimal {
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero
	}
	return d
}

// MoneyOrZero igual que ParseMoney para un precio opcional; nil produce cero.
func MoneyOrZero(s *string) decimal.Decimal {
	if s == nil {
		return decimal.Zero
	}
	return ParseMoney(*s)
}

// NullableMoney convierte un precio saneado opcional a *decimal.
func NullableMoney(s *string) *decimal.Decimal {
	if s == nil {
		return nil
	}
	d := ParseMoney(*s)
	return &d
}

// FormatMoney serializa un monto con 2 decimales fijos.
func FormatMoney(d decimal.Decimal) string {
	return d.Round(2).StringFixed(2)
}

// FormatNullableMoney igual que FormatMoney pero conserva nil.
func FormatNullableMoney(d *decimal.Decimal) *string {
	if d == nil {
		return nil
	}
	s := FormatMoney(*d)
	return &s
}

// IsNegativeRaw indica si raw es un número válido menor que cero (antes del recorte a "0.00").
func IsNegativeRaw(raw any) bool {
	v, ok := parse(raw)
	return ok && v.IsNegative()
}

func fallback(allowNull bool) *string {
	if allowNull {
		return nil
	}
	s := zero
	return &s
}

// parse acepta los tipos que llegan desde JSON (float64, json.Number, string) y los
// usados internamente (decimal, enteros, punteros a string).
func parse(raw any) (decimal.Decimal, bool) {
	switch v := raw.(type) {
	case nil:
		return decimal.Zero, false
	case string:
		return parseString(v)
	case *string:
		if v == nil {
			return decimal.Zero, false
		}
		return parseString(*v)
	case json.Number:
		return parseString(v.String())
	case decimal.Decimal:
		return v, true
	case *decimal.Decimal:
		if v == nil {
			return decimal.Zero, false
		}
		return *v, true
	case float64:
		return parseFloat(v)
	case float32:
		return parseFloat(float64(v))
	case int:
		return decimal.NewFromInt(int64(v)), true
	case int32:
		return decimal.NewFromInt(int64(v)), true
	case int64:
		return decimal.NewFromInt(v), true
	default:
		return decimal.Zero, false
	}
}

func parseString(s string) (decimal.Decimal, bool) {
	s = numericPrefix.FindString(strings.TrimSpace(s))
	if s == "" {
		return decimal.Zero, false
	}
	s = strings.TrimSuffix(strings.TrimPrefix(s, "+"), ".")
	if i := strings.IndexAny(s, "eE"); i > 0 && s[i-1] == '.' {
		s = s[:i-1] + s[i:]
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero, false
	}
	return d, true
}

func parseFloat(f float64) (decimal.Decimal, bool) {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return decimal.Zero, false
	}
	return decimal.NewFromFloat(f), true
}
