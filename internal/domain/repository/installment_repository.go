package repository

import (
	"context"

	"github.com/jhoicas/Seguros-api/internal/domain/entity"
)

// InstallmentRepository define el puerto de persistencia para los recibos de una póliza.
type InstallmentRepository interface {
	// ListByPolicy devuelve los recibos ordenados por número.
	ListByPolicy(ctx context.Context, policyID string) ([]entity.Installment, error)

	// ReplaceForPolicy borra todos los recibos de la póliza e inserta rows.
	// El calendario nunca se parchea fila por fila; debe correr dentro de una transacción.
	ReplaceForPolicy(ctx context.Context, policyID string, rows []entity.Installment) error

	// UpdateWhatsAppStatus registra el resultado que reporta el colaborador de envío.
	// Devuelve domain.ErrNotFound si el recibo no existe.
	UpdateWhatsAppStatus(ctx context.Context, policyID string, number int, sent bool, status string) error
}
