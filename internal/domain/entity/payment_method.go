package entity

import (
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// PaymentMethod forma de pago de la póliza.
type PaymentMethod string

const (
	PaymentContado     PaymentMethod = "Contado"
	PaymentAnual       PaymentMethod = "Anual"
	PaymentSemestral   PaymentMethod = "Semestral"
	PaymentTrimestral  PaymentMethod = "Trimestral"
	PaymentMensual     PaymentMethod = "Mensual"
	PaymentDomiciliado PaymentMethod = "Domiciliado"
)

// PaymentCategory agrupa las formas de pago según su régimen de cobranza.
type PaymentCategory int

const (
	// CategoryAnnual pago único con periodo de gracia de 30 días.
	CategoryAnnual PaymentCategory = iota
	// CategoryFractional pagos fraccionados, sin periodo de gracia.
	CategoryFractional
	// CategoryDomiciled cargo automático a tarjeta.
	CategoryDomiciled
)

// ParsePaymentMethod normaliza lo capturado (mayúsculas, acentos, sinónimos).
// Vacío o desconocido se interpreta como Anual; cualquier mención a tarjeta es Domiciliado.
func ParsePaymentMethod(raw string) PaymentMethod {
	key := Fold(raw)
	switch {
	case key == "":
		return PaymentAnual
	case strings.Contains(key, "tarjeta"), strings.HasPrefix(key, "domicil"):
		return PaymentDomiciliado
	case strings.HasPrefix(key, "contado"):
		return PaymentContado
	case strings.HasPrefix(key, "semestr"):
		return PaymentSemestral
	case strings.HasPrefix(key, "trimestr"):
		return PaymentTrimestral
	case strings.HasPrefix(key, "mensual"):
		return PaymentMensual
	default:
		return PaymentAnual
	}
}

// Category devuelve el régimen de cobranza de la forma de pago.
func (m PaymentMethod) Category() PaymentCategory {
	switch m {
	case PaymentSemestral, PaymentTrimestral, PaymentMensual:
		return CategoryFractional
	case PaymentDomiciliado:
		return CategoryDomiciled
	default:
		return CategoryAnnual
	}
}

// DefaultInstallments número de recibos por año para la forma de pago.
func (m PaymentMethod) DefaultInstallments() int {
	switch m {
	case PaymentSemestral:
		return 2
	case PaymentTrimestral:
		return 4
	case PaymentMensual:
		return 12
	default:
		return 1
	}
}

// Fold pasa a minúsculas, quita acentos y espacios sobrantes: "Quálitas " → "qualitas".
func Fold(s string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	out, _, err := transform.String(t, s)
	if err != nil {
		out = s
	}
	return strings.ToLower(strings.Join(strings.Fields(out), " "))
}
