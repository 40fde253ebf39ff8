package http

import (
	"crypto/subtle"

	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/Seguros-api/internal/application/dto"
	"github.com/jhoicas/Seguros-api/pkg/logger"
)

// WebhookAuth protege los endpoints que consume el colaborador de mensajería (n8n)
// con una API key fija en Authorization: Bearer <key>.
// Con apiKey vacío el webhook queda abierto; solo para pruebas locales.
func WebhookAuth(apiKey string, log *logger.Logger) fiber.Handler {
	if log == nil {
		log = logger.Nop()
	}
	if apiKey == "" {
		log.Warn().Msg("N8N_API_KEY no configurado: webhook de cobranza sin autenticación")
		return func(c *fiber.Ctx) error { return c.Next() }
	}
	expected := []byte(apiKey)
	return func(c *fiber.Ctx) error {
		tok, ok := bearerToken(c)
		if !ok || subtle.ConstantTimeCompare([]byte(tok), expected) != 1 {
			log.Warn().Str("ip", c.IP()).Str("path", c.Path()).Msg("webhook: API key inválida")
			return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{Code: "INVALID_API_KEY", Message: "API key inválida"})
		}
		return c.Next()
	}
}
