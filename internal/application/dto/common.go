package dto

import (
	"fmt"
	"strings"
	"time"

	"github.com/jhoicas/Seguros-api/internal/domain"
)

// ErrorResponse cuerpo de error HTTP.
type ErrorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// dateLayout formato de fechas en requests y responses.
const dateLayout = time.DateOnly

// ParseDate interpreta YYYY-MM-DD. Vacío devuelve la fecha cero sin error.
func ParseDate(field, s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, nil
	}
	t, err := time.Parse(dateLayout, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: %s debe tener formato YYYY-MM-DD", domain.ErrInvalidInput, field)
	}
	return t, nil
}

// FormatDate YYYY-MM-DD o vacío si la fecha es cero.
func FormatDate(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.Format(dateLayout)
}
