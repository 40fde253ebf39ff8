package premium

import (
	"github.com/shopspring/decimal"

	"github.com/jhoicas/Seguros-api/internal/domain/entity"
)

// Warning advertencia de validación. No bloquea guardar un borrador.
type Warning struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// tolerance diferencia máxima aceptada entre el total guardado y el recalculado.
var tolerance = decimal.RequireFromString("0.01")

// Validate revisa el invariante de los económicos y devuelve advertencias.
func Validate(e entity.Economics) []Warning {
	var out []Warning
	if e.DiscountAmount.GreaterThan(e.PremiumNet) {
		out = append(out, Warning{Field: "discount_amount", Message: "el descuento supera la prima neta"})
	}
	if e.TaxableBase().IsNegative() {
		out = append(out, Warning{Field: "premium_subtotal", Message: "la base gravable es negativa"})
	}
	if e.PremiumTotal.IsNegative() {
		out = append(out, Warning{Field: "premium_total", Message: "la prima total es negativa"})
	}
	expected := e.TaxableBase().Add(e.VATAmount)
	if e.PremiumTotal.Sub(expected).Abs().GreaterThan(tolerance) {
		out = append(out, Warning{Field: "premium_total", Message: "la prima total no coincide con base gravable + IVA"})
	}
	return out
}
