package repository

import (
	"context"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/Seguros-api/internal/domain/entity"
)

// PolicyRepository define el puerto de persistencia para Policy (DIP).
type PolicyRepository interface {
	GetByID(ctx context.Context, id string) (*entity.Policy, error)

	// UpdateEconomics guarda forma de pago, número de recibos y los campos económicos.
	// El resto de la póliza no se toca.
	UpdateEconomics(ctx context.Context, policy *entity.Policy) error

	// UpdateScheduleTotals fija la prima total reconciliada y el número de recibos
	// tras editar el calendario a mano.
	UpdateScheduleTotals(ctx context.Context, policyID string, premiumTotal decimal.Decimal, installments int) error
}
