package policy

import (
	"context"

	"github.com/jhoicas/Seguros-api/internal/domain/repository"
)

// TxRunner ejecuta una función dentro de una transacción de BD con los repositorios
// de póliza y recibos atados a esa tx. Económicos y calendario se guardan juntos o nada.
type TxRunner interface {
	RunPolicy(ctx context.Context, fn func(
		policies repository.PolicyRepository,
		installments repository.InstallmentRepository,
	) error) error
}

// SchedulePDFGenerator genera el PDF del calendario de recibos.
type SchedulePDFGenerator interface {
	GenerateSchedulePDF(ctx context.Context, schedule *Schedule) ([]byte, error)
}
