package repository

import (
	"context"

	"github.com/jhoicas/Seguros-api/internal/domain/entity"
)

// InsurerRepository define el puerto de lectura de aseguradoras y sus reglas de cobro.
type InsurerRepository interface {
	GetByID(ctx context.Context, id string) (*entity.Insurer, error)
	ListPaymentRules(ctx context.Context) ([]entity.InsurerPaymentRule, error)
}
