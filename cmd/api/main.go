package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/goccy/go-json"
	"github.com/gofiber/contrib/swagger"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/swaggo/swag"

	_ "github.com/jhoicas/Seguros-api/docs"
	"github.com/jhoicas/Seguros-api/internal/application/auth"
	"github.com/jhoicas/Seguros-api/internal/application/collections"
	"github.com/jhoicas/Seguros-api/internal/application/extraction"
	"github.com/jhoicas/Seguros-api/internal/application/policy"
	"github.com/jhoicas/Seguros-api/internal/application/ports"
	"github.com/jhoicas/Seguros-api/internal/domain/entity"
	infraai "github.com/jhoicas/Seguros-api/internal/infrastructure/ai"
	infrapdf "github.com/jhoicas/Seguros-api/internal/infrastructure/pdf"
	"github.com/jhoicas/Seguros-api/internal/infrastructure/postgres"
	httpRouter "github.com/jhoicas/Seguros-api/internal/interfaces/http"
	"github.com/jhoicas/Seguros-api/pkg/config"
	"github.com/jhoicas/Seguros-api/pkg/logger"
)

// @title                       Seguros API
// @version                     1.0
// @description                 Primas, recibos y cobranza por WhatsApp para la cartera de pólizas.
// @BasePath                    /
// @securityDefinitions.apikey  Bearer
// @in                          header
// @name                        Authorization
// @securityDefinitions.apikey  N8NApiKey
// @in                          header
// @name                        Authorization
func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("cargar configuración: " + err.Error())
	}

	log := logger.New(logger.Config{
		Env:     cfg.App.Env,
		Level:   cfg.App.LogLevel,
		Service: cfg.App.Name,
	})
	log.Info().
		Str("env", cfg.App.Env).
		Str("app", cfg.App.Name).
		Msg("iniciando aplicación")

	entity.DefaultTaxPercent = cfg.Collections.DefaultTaxPercent

	ctx := context.Background()
	pool, err := postgres.NewPool(ctx, cfg.DB)
	if err != nil {
		log.Fatal().Err(err).Msg("conexión a PostgreSQL")
	}
	defer pool.Close()

	portfolioRepo := postgres.NewPortfolioRepository(pool)
	installmentRepo := postgres.NewInstallmentRepository(pool)
	insurerRepo := postgres.NewInsurerRepository(pool)
	txRunner := postgres.NewTxRunner(pool)

	rules := policy.LoadRuleTable(ctx, insurerRepo, log)
	pdfGenerator := infrapdf.NewMarotoScheduleGenerator(cfg.App.Agency)
	policyUC := policy.NewUseCase(txRunner, portfolioRepo, installmentRepo, insurerRepo, rules, pdfGenerator, log)

	collectionsUC := collections.NewUseCase(portfolioRepo, installmentRepo, collections.Config{
		Location:    cfg.Collections.Location(),
		Deadline:    cfg.Collections.Deadline,
		Concurrency: cfg.Collections.Concurrency,
	}, log)

	extractionUC := extraction.NewUseCase(newExtractor(cfg.AI, log), log)

	authUC := auth.NewUseCase(postgres.NewUserRepository(pool), auth.JWTConfig{
		Secret:     cfg.JWT.Secret,
		ExpMinutes: cfg.JWT.Expiration,
		Issuer:     cfg.JWT.Issuer,
	}, log)

	if cfg.Collections.N8NAPIKey == "" {
		log.Warn().Msg("N8N_API_KEY vacío: el webhook de cobranza queda sin autenticación")
	}

	app := fiber.New(fiber.Config{
		AppName:      cfg.App.Name,
		ReadTimeout:  time.Second * 10,
		WriteTimeout: time.Second * 90, // la lectura de PDF con IA puede tardar
		IdleTimeout:  time.Second * 60,
		BodyLimit:    extraction.MaxPDFSize + 1<<20,
		JSONEncoder:  json.Marshal,
		JSONDecoder:  json.Unmarshal,
	})
	app.Use(recover.New())
	app.Use(cors.New(cors.Config{
		AllowOrigins: cfg.HTTP.CORSOrigins,
		AllowHeaders: "Origin, Content-Type, Accept, Authorization",
	}))

	// Swagger UI en local: http://localhost:<port>/docs
	app.Use(swagger.New(swagger.Config{
		BasePath: "/",
		FilePath: "./docs/swagger.json",
		Path:     "docs",
		Title:    "Seguros API",
	}))
	app.Get("/openapi.json", func(c *fiber.Ctx) error {
		doc, err := swag.ReadDoc()
		if err != nil {
			return fiber.ErrNotFound
		}
		c.Set(fiber.HeaderContentType, fiber.MIMEApplicationJSON)
		return c.SendString(doc)
	})

	httpRouter.Router(app, httpRouter.RouterDeps{
		Auth:        authUC,
		Policies:    policyUC,
		Parser:      extractionUC,
		Collections: collectionsUC,
		JWTSecret:   cfg.JWT.Secret,
		N8NAPIKey:   cfg.Collections.N8NAPIKey,
		Log:         log,
	})

	go func() {
		if err := app.Listen(cfg.HTTP.Addr()); err != nil {
			log.Error().Err(err).Msg("servidor HTTP finalizado")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("señal de apagado recibida, cerrando servidor...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := app.ShutdownWithContext(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("apagado del servidor")
	}

	log.Info().Msg("aplicación detenida")
}

// newExtractor elige el proveedor de IA. Sin API key devuelve nil y /parse responde 503.
func newExtractor(cfg config.AIConfig, log *logger.Logger) ports.PolicyExtractor {
	switch cfg.Provider {
	case "gemini":
		if cfg.GeminiKey != "" {
			return infraai.NewGeminiService(cfg.GeminiKey, cfg.GeminiModel)
		}
	case "anthropic", "":
		if cfg.AnthropicKey != "" {
			return infraai.NewAnthropicService(cfg.AnthropicKey, cfg.AnthropicModel)
		}
	default:
		log.Warn().Str("provider", cfg.Provider).Msg("proveedor de IA desconocido")
		return nil
	}
	log.Warn().Str("provider", cfg.Provider).Msg("sin API key de IA: lectura de pólizas deshabilitada")
	return nil
}
