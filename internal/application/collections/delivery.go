package collections

import (
	"context"
	"fmt"
	"strings"

	"github.com/jhoicas/Seguros-api/internal/domain"
)

// Estados de envío reportados por el colaborador de mensajería.
const (
	DeliverySent   = "enviado"
	DeliveryFailed = "fallido"
)

// DeliveryOutcome resultado de un envío que reporta el colaborador externo.
type DeliveryOutcome struct {
	PolicyID          string
	InstallmentNumber int
	Sent              bool
	Status            string // texto libre del proveedor; vacío = enviado/fallido según Sent
}

// RecordDelivery guarda en el recibo si el recordatorio se envió.
// Es la única escritura del flujo de cobranza y la dispara el colaborador, no la corrida diaria.
func (uc *UseCase) RecordDelivery(ctx context.Context, in DeliveryOutcome) error {
	policyID := strings.TrimSpace(in.PolicyID)
	if policyID == "" {
		return fmt.Errorf("%w: policy_id requerido", domain.ErrInvalidInput)
	}
	if in.InstallmentNumber < 1 {
		return fmt.Errorf("%w: installment_number debe ser mayor o igual a 1", domain.ErrInvalidInput)
	}

	status := strings.TrimSpace(in.Status)
	if status == "" {
		status = DeliveryFailed
		if in.Sent {
			status = DeliverySent
		}
	}

	if err := uc.installments.UpdateWhatsAppStatus(ctx, policyID, in.InstallmentNumber, in.Sent, status); err != nil {
		return fmt.Errorf("registrar envío: %w", err)
	}

	uc.log.Info().
		Str("policy_id", policyID).
		Int("installment", in.InstallmentNumber).
		Bool("sent", in.Sent).
		Str("status", status).
		Msg("cobranza: envío registrado")
	return nil
}
