package dto

import (
	"github.com/jhoicas/Seguros-api/internal/application/collections"
)

// DeliveryOutcomeRequest resultado de envío que reporta el colaborador de mensajería.
type DeliveryOutcomeRequest struct {
	PolicyID          string `json:"policy_id"`
	InstallmentNumber int    `json:"installment_number"`
	Sent              bool   `json:"sent"`
	Status            string `json:"status"`
}

// ToOutcome convierte al input del caso de uso.
func (r DeliveryOutcomeRequest) ToOutcome() collections.DeliveryOutcome {
	return collections.DeliveryOutcome{
		PolicyID:          r.PolicyID,
		InstallmentNumber: r.InstallmentNumber,
		Sent:              r.Sent,
		Status:            r.Status,
	}
}

// DeliveryOutcomesRequest lote de resultados (el colaborador puede mandar varios).
type DeliveryOutcomesRequest struct {
	Outcomes []DeliveryOutcomeRequest `json:"outcomes"`
}

// DeliveryOutcomesResponse cuántos resultados se guardaron y cuáles fallaron.
type DeliveryOutcomesResponse struct {
	Recorded int             `json:"recorded"`
	Failed   []ErrorResponse `json:"failed"`
}

// RenewalsResponse listado de renovaciones.
type RenewalsResponse struct {
	Renewals []collections.Renewal `json:"renewals"`
	Total    int                   `json:"total"`
}
