package whatsapp_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/jhoicas/Seguros-api/pkg/whatsapp"
)

func TestNormalizePhone(t *testing.T) {
	cases := []struct {
		name  string
		in    string
		want  string
		valid bool
	}{
		{"mexicano 12 dígitos agrega el 1", "+52 55 1234 5678", "5215512345678", true},
		{"ya viene con 521", "5215512345678", "5215512345678", true},
		{"diez dígitos locales se respetan", "(55) 1234-5678", "5512345678", true},
		{"otro país no se toca", "+54 9 11 2345 6789", "5491123456789", true},
		{"vacío", "", "", false},
		{"basura", "sin teléfono", "", false},
		{"muy corto", "12345", "12345", false},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			got, ok := whatsapp.NormalizePhone(c.in)
			assert.Equal(t, c.want, got)
			assert.Equal(t, c.valid, ok)
		})
	}
}

func TestLink_CodificaTexto(t *testing.T) {
	link := whatsapp.Link("+52 1 55 1234 5678", "Hola Ana & cía")
	assert.Equal(t, "https://wa.me/5215512345678?text=Hola%20Ana%20%26%20c%C3%ADa", link)
}

func TestLink_EspaciosComoPorcientoVeinte(t *testing.T) {
	link := whatsapp.Link("5512345678", "Total: $1,160.00 + IVA\nRecibo 1/4")
	assert.Equal(t, "https://wa.me/5512345678?text=Total%3A%20%241%2C160.00%20%2B%20IVA%0ARecibo%201%2F4", link)
	assert.NotContains(t, link[len("https://wa.me/5512345678?"):], "+", "ningún espacio se codifica como +")
}
