// cobranza ejecuta el lote diario de recordatorios sin levantar el servidor HTTP
// e imprime el resultado en JSON (para cron o para revisar una fecha a mano).
//
// Uso: go run ./cmd/cobranza [-date 2025-03-10] [-renewals]
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/goccy/go-json"

	"github.com/jhoicas/Seguros-api/internal/application/collections"
	"github.com/jhoicas/Seguros-api/internal/infrastructure/postgres"
	"github.com/jhoicas/Seguros-api/pkg/config"
	"github.com/jhoicas/Seguros-api/pkg/logger"
)

func main() {
	date := flag.String("date", "", "fecha a evaluar (YYYY-MM-DD); por defecto hoy en la zona de la agencia")
	renewals := flag.Bool("renewals", false, "listar renovaciones próximas en lugar de recordatorios")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "cargar configuración: %v\n", err)
		os.Exit(1)
	}
	// Los logs van a stderr; stdout queda solo para el JSON.
	log := logger.New(logger.Config{Env: cfg.App.Env, Level: cfg.App.LogLevel, Service: "cobranza", Out: os.Stderr})

	ctx := context.Background()
	pool, err := postgres.NewPool(ctx, cfg.DB)
	if err != nil {
		log.Fatal().Err(err).Msg("conexión a PostgreSQL")
	}
	defer pool.Close()

	uc := collections.NewUseCase(
		postgres.NewPortfolioRepository(pool),
		postgres.NewInstallmentRepository(pool),
		collections.Config{
			Location:    cfg.Collections.Location(),
			Deadline:    cfg.Collections.Deadline,
			Concurrency: cfg.Collections.Concurrency,
		},
		log,
	)

	today := uc.Today()
	if *date != "" {
		t, err := time.Parse(time.DateOnly, *date)
		if err != nil {
			log.Fatal().Str("date", *date).Msg("fecha inválida, use YYYY-MM-DD")
		}
		today = t
	}

	var out any
	if *renewals {
		out, err = uc.UpcomingRenewals(ctx, today, 0)
	} else {
		out, err = uc.RunDaily(ctx, today)
	}
	if err != nil {
		log.Fatal().Err(err).Msg("lote de cobranza")
	}

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	if err := enc.Encode(out); err != nil {
		log.Fatal().Err(err).Msg("escribir salida")
	}
}
