package postgres

import (
	"context"
	"fmt"
	"time"

	pgxdecimal "github.com/jackc/pgx-shopspring-decimal"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/jhoicas/Seguros-api/pkg/config"
)

// minBatchConns piso del pool: el lote de cobranza lee recibos en paralelo.
const minBatchConns = 4

// NewPool crea el pool de PostgreSQL. Usa DATABASE_URL si está definido; si no,
// arma el DSN con DB_HOST, DB_PORT y demás.
func NewPool(ctx context.Context, cfg config.DBConfig) (*pgxpool.Pool, error) {
	poolConfig, err := pgxpool.ParseConfig(cfg.ConnectionString())
	if err != nil {
		return nil, fmt.Errorf("parse DSN: %w", err)
	}
	configurePool(poolConfig, cfg)

	pool, err := pgxpool.NewWithConfig(ctx, poolConfig)
	if err != nil {
		return nil, fmt.Errorf("crear pool: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping DB: %w", err)
	}
	return pool, nil
}

// configurePool ajusta tamaños y tiempos del pool y registra el codec de NUMERIC.
func configurePool(pc *pgxpool.Config, cfg config.DBConfig) {
	pc.MaxConns = int32(max(cfg.MaxConns, minBatchConns))
	pc.MinConns = 2
	pc.MaxConnLifetime = time.Hour
	pc.MaxConnIdleTime = 30 * time.Minute
	pc.HealthCheckPeriod = time.Minute
	pc.ConnConfig.ConnectTimeout = 10 * time.Second

	// NUMERIC -> shopspring/decimal en todas las conexiones; primas y recibos nunca pasan por float.
	pc.AfterConnect = func(ctx context.Context, conn *pgx.Conn) error {
		pgxdecimal.Register(conn.TypeMap())
		return nil
	}
}
