package money

import (
	"bytes"
	"strconv"

	"github.com/shopspring/decimal"
)

// Raw conserva un valor numérico tal como llegó en el body (número, string o null).
// Se parsea de forma tolerante con Decimal; nunca hace fallar la decodificación.
type Raw string

// UnmarshalJSON acepta 10500, "10,500.00", "" o null.
func (r *Raw) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	switch {
	case len(b) == 0 || bytes.Equal(b, []byte("null")):
		*r = ""
	case b[0] == '"':
		s, err := strconv.Unquote(string(b))
		if err != nil {
			*r = ""
			return nil
		}
		*r = Raw(s)
	default:
		*r = Raw(b)
	}
	return nil
}

// MarshalJSON emite el valor como string para no perder el texto capturado.
func (r Raw) MarshalJSON() ([]byte, error) {
	return []byte(strconv.Quote(string(r))), nil
}

// Decimal devuelve el valor parseado (0 si está vacío o es ilegible).
func (r Raw) Decimal() decimal.Decimal {
	return Parse(string(r))
}

// IsBlank indica si no se capturó nada.
func (r Raw) IsBlank() bool {
	return clean(string(r)) == ""
}
