package repository

import (
	"context"

	"github.com/jhoicas/Seguros-api/internal/domain/entity"
)

// PortfolioRepository lecturas de cartera con joins (cliente, aseguradora, ramo).
// Read-only: la cobranza diaria nunca escribe por aquí.
type PortfolioRepository interface {
	// ListActive devuelve las pólizas no canceladas.
	ListActive(ctx context.Context) ([]entity.PortfolioPolicy, error)

	// GetPortfolioPolicy devuelve una póliza con sus joins, para operaciones de una sola póliza.
	GetPortfolioPolicy(ctx context.Context, policyID string) (*entity.PortfolioPolicy, error)
}
