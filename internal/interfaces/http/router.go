package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/Seguros-api/pkg/jwt"
	"github.com/jhoicas/Seguros-api/pkg/logger"
)

// RouterDeps dependencias para el router.
type RouterDeps struct {
	Auth        authService
	Policies    policyService
	Parser      policyParser
	Collections collectionsService
	JWTSecret   string
	N8NAPIKey   string
	Log         *logger.Logger
}

// Router registra las rutas de la API.
func Router(app *fiber.App, deps RouterDeps) {
	log := deps.Log
	if log == nil {
		log = logger.Nop()
	}

	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok"})
	})

	api := app.Group("/api")

	// Webhook del colaborador de mensajería (API key propia, no JWT)
	webhooks := api.Group("/webhooks", WebhookAuth(deps.N8NAPIKey, log.Component("webhook")))
	collectionsHandler := NewCollectionsHandler(deps.Collections, log.Component("http"))
	webhooks.Get("/collections", collectionsHandler.DailyNotifications)
	webhooks.Post("/collections/outcomes", collectionsHandler.RecordOutcomes)

	// Rutas protegidas (requieren Bearer Token)
	auth := AuthMiddleware(deps.JWTSecret)
	anyRole := RequireRole(jwt.RoleAdmin, jwt.RoleAgent)
	adminOnly := RequireRole(jwt.RoleAdmin)

	if deps.Auth != nil {
		authHandler := NewAuthHandler(deps.Auth, log.Component("http"))
		api.Post("/auth/login", authHandler.Login)
		api.Post("/auth/register", auth, adminOnly, authHandler.Register)
	}

	premiums := api.Group("/premiums", auth, anyRole)
	premiumHandler := NewPremiumHandler(deps.Policies, log.Component("http"))
	premiums.Post("/compute", premiumHandler.Compute)
	premiums.Get("/rules", premiumHandler.Rules)
	premiums.Post("/installments/preview", premiumHandler.PreviewInstallments)

	policies := api.Group("/policies", auth, anyRole)
	policyHandler := NewPolicyHandler(deps.Policies, deps.Parser, log.Component("http"))
	policies.Post("/parse", policyHandler.Parse)
	policies.Put("/:id/economics", policyHandler.UpdateEconomics)
	policies.Put("/:id/installments", adminOnly, policyHandler.OverrideInstallments)
	policies.Get("/:id/installments/pdf", policyHandler.SchedulePDF)

	coll := api.Group("/collections", auth, anyRole)
	coll.Get("/renewals", collectionsHandler.Renewals)
}
