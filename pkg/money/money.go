// Package money concentra el parseo tolerante y el formato de montos y porcentajes
// capturados por operadores o devueltos por servicios externos (IA, formularios).
//
// Regla general: nunca devuelve error. Un valor vacío, nulo o ilegible vale 0;
// el negocio prefiere guardar un borrador con ceros antes que rechazar la captura.
package money

import (
	"fmt"
	"math"
	"strings"

	"github.com/shopspring/decimal"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

// Decimales usados para montos monetarios.
const Places int32 = 2

var (
	hundred = decimal.NewFromInt(100)
	printer = message.NewPrinter(language.MustParse("es-MX"))
)

// Parse interpreta un monto o porcentaje capturado como texto.
// Acepta símbolos de moneda, espacios y separadores de miles en ambos estilos:
// "10,500.00" y "10.500,00" valen 10500. Cualquier basura vale 0.
func Parse(raw string) decimal.Decimal {
	s := clean(raw)
	if s == "" || s == "-" {
		return decimal.Zero
	}
	s = normalizeSeparators(s)
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero
	}
	return d
}

// ParseAny interpreta valores llegados en JSON sin tipo fijo
// (número, string, nulo). Usado para la salida de la extracción por IA.
func ParseAny(v any) decimal.Decimal {
	switch t := v.(type) {
	case nil:
		return decimal.Zero
	case decimal.Decimal:
		return t
	case float64:
		if math.IsNaN(t) || math.IsInf(t, 0) {
			return decimal.Zero
		}
		return decimal.NewFromFloat(t)
	case float32:
		return ParseAny(float64(t))
	case int:
		return decimal.NewFromInt(int64(t))
	case int64:
		return decimal.NewFromInt(t)
	case string:
		return Parse(t)
	case fmt.Stringer:
		return Parse(t.String())
	default:
		return decimal.Zero
	}
}

// Round redondea a centavos (mitad hacia arriba).
func Round(d decimal.Decimal) decimal.Decimal {
	return d.Round(Places)
}

// Percent calcula base × pct / 100 sin redondear.
func Percent(base, pct decimal.Decimal) decimal.Decimal {
	return base.Mul(pct).Div(hundred)
}

// PercentOf devuelve qué porcentaje de base representa amount.
// Con base cero devuelve cero.
func PercentOf(amount, base decimal.Decimal) decimal.Decimal {
	if base.IsZero() {
		return decimal.Zero
	}
	return amount.Mul(hundred).Div(base)
}

// NonNegative devuelve cero para valores negativos.
func NonNegative(d decimal.Decimal) decimal.Decimal {
	if d.IsNegative() {
		return decimal.Zero
	}
	return d
}

// Format devuelve el monto con separador de miles y dos decimales (es-MX): 12,180.00.
// Los centavos salen de la representación decimal, nunca de un float64.
func Format(d decimal.Decimal) string {
	r := Round(d)
	abs := r.Abs()
	intPart, cents, _ := strings.Cut(abs.StringFixed(Places), ".")

	grouped := groupThousands(intPart)
	if whole := abs.Truncate(0).BigInt(); whole.IsInt64() {
		grouped = printer.Sprintf("%d", whole.Int64())
	}
	if r.IsNegative() {
		return "-" + grouped + "." + cents
	}
	return grouped + "." + cents
}

// groupThousands separa con comas una cadena de dígitos; respaldo cuando no cabe en int64.
func groupThousands(digits string) string {
	var b strings.Builder
	for i, r := range digits {
		if i > 0 && (len(digits)-i)%3 == 0 {
			b.WriteByte(',')
		}
		b.WriteRune(r)
	}
	return b.String()
}

// CurrencySymbol devuelve el símbolo usado en los mensajes al cliente.
func CurrencySymbol(currency string) string {
	switch strings.ToUpper(strings.TrimSpace(currency)) {
	case "USD":
		return "u$s"
	case "EUR":
		return "€"
	default:
		return "$"
	}
}

// FormatWithSymbol antepone el símbolo de la moneda al monto formateado.
func FormatWithSymbol(d decimal.Decimal, currency string) string {
	return CurrencySymbol(currency) + Format(d)
}

// clean deja solo dígitos, separadores y el signo.
func clean(raw string) string {
	var b strings.Builder
	for _, r := range strings.TrimSpace(raw) {
		switch {
		case r >= '0' && r <= '9', r == '.', r == ',':
			b.WriteRune(r)
		case r == '-' && b.Len() == 0:
			b.WriteRune(r)
		}
	}
	return b.String()
}

// normalizeSeparators decide cuál separador es el decimal y elimina el de miles.
// Con ambos presentes, el último en aparecer es el decimal. Con una sola coma
// seguida de uno o dos dígitos, la coma es decimal; en cualquier otro caso es de miles.
func normalizeSeparators(s string) string {
	lastDot := strings.LastIndex(s, ".")
	lastComma := strings.LastIndex(s, ",")
	switch {
	case lastDot >= 0 && lastComma >= 0:
		if lastComma > lastDot {
			s = strings.ReplaceAll(s, ".", "")
			return strings.Replace(s, ",", ".", 1)
		}
		return strings.ReplaceAll(s, ",", "")
	case lastComma >= 0:
		if strings.Count(s, ",") == 1 {
			if decimals := len(s) - lastComma - 1; decimals == 1 || decimals == 2 {
				return strings.Replace(s, ",", ".", 1)
			}
		}
		return strings.ReplaceAll(s, ",", "")
	case strings.Count(s, ".") > 1:
		return strings.ReplaceAll(s, ".", "")
	}
	return s
}
