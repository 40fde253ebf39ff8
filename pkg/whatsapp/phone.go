// Package whatsapp aísla las particularidades del canal de mensajería de WhatsApp:
// formato del número destino y armado del enlace wa.me.
//
// El motor de cobranza no conoce estas reglas; solo llama a NormalizePhone.
package whatsapp

import (
	"net/url"
	"strings"
)

const (
	mexicoCountryCode  = "52"
	mexicoMobilePrefix = "521"

	// Menos dígitos que esto no es un número de celular utilizable.
	minDigits = 10
)

// NormalizePhone deja solo dígitos y aplica la convención de WhatsApp para México:
// un número de 12 dígitos que empieza con 52 se convierte a 521 + 10 dígitos.
// Devuelve ok=false si el número está vacío o no tiene suficientes dígitos.
func NormalizePhone(raw string) (phone string, ok bool) {
	digits := onlyDigits(raw)
	if len(digits) < minDigits {
		return digits, false
	}
	if len(digits) == 12 && strings.HasPrefix(digits, mexicoCountryCode) {
		digits = mexicoMobilePrefix + digits[len(mexicoCountryCode):]
	}
	return digits, true
}

// Link genera el enlace wa.me con el texto precargado.
// Los espacios van como %20: algunos clientes de WhatsApp muestran el "+" literal.
func Link(phone, text string) string {
	// QueryEscape deja un "+" literal como %2B, así que todo "+" restante es un espacio.
	text = strings.ReplaceAll(url.QueryEscape(text), "+", "%20")
	return "https://wa.me/" + onlyDigits(phone) + "?text=" + text
}

func onlyDigits(s string) string {
	var b strings.Builder
	for _, r := range s {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	return b.String()
}
