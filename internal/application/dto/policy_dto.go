package dto

import (
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/Seguros-api/internal/application/extraction"
	"github.com/jhoicas/Seguros-api/internal/application/policy"
	"github.com/jhoicas/Seguros-api/internal/domain/premium"
	"github.com/jhoicas/Seguros-api/pkg/money"
)

// InstallmentEditRequest fila del calendario editada a mano.
type InstallmentEditRequest struct {
	Number     int       `json:"installment_number"`
	DueDate    string    `json:"due_date"` // YYYY-MM-DD
	PremiumNet money.Raw `json:"premium_net"`
	PolicyFee  money.Raw `json:"policy_fee"`
	Surcharges money.Raw `json:"surcharges"`
	VATAmount  money.Raw `json:"vat_amount"`
	Status     string    `json:"status"`
}

// OverrideInstallmentsRequest body de PUT /api/policies/:id/installments.
type OverrideInstallmentsRequest struct {
	Installments []InstallmentEditRequest `json:"installments"`
}

// ToEdits valida las fechas y arma las filas para el caso de uso.
func (r OverrideInstallmentsRequest) ToEdits() ([]policy.InstallmentEdit, error) {
	out := make([]policy.InstallmentEdit, 0, len(r.Installments))
	for i, in := range r.Installments {
		due, err := ParseDate(fmt.Sprintf("installments[%d].due_date", i), in.DueDate)
		if err != nil {
			return nil, err
		}
		out = append(out, policy.InstallmentEdit{
			Number:     in.Number,
			DueDate:    due,
			PremiumNet: in.PremiumNet,
			PolicyFee:  in.PolicyFee,
			Surcharges: in.Surcharges,
			VATAmount:  in.VATAmount,
			Status:     in.Status,
		})
	}
	return out, nil
}

// OverrideInstallmentsResponse calendario guardado.
type OverrideInstallmentsResponse struct {
	PremiumTotal decimal.Decimal       `json:"premium_total"`
	Installments []InstallmentResponse `json:"installments"`
	Warnings     []premium.Warning     `json:"warnings"`
}

// NewOverrideInstallmentsResponse mapea el resultado.
func NewOverrideInstallmentsResponse(r *policy.OverrideResult) OverrideInstallmentsResponse {
	return OverrideInstallmentsResponse{
		PremiumTotal: r.PremiumTotal,
		Installments: NewInstallmentResponses(r.Installments),
		Warnings:     nonNilWarnings(r.Warnings),
	}
}

// ParsedPolicyResponse borrador leído del PDF. Nada se guarda.
type ParsedPolicyResponse struct {
	PolicyNumber  string            `json:"policy_number"`
	InsurerName   string            `json:"insurer_name"`
	StartDate     string            `json:"start_date"`
	EndDate       string            `json:"end_date"`
	Currency      string            `json:"currency"`
	PaymentMethod string            `json:"payment_method"`
	Economics     EconomicsResponse `json:"economics"`
	ReportedVAT   decimal.Decimal   `json:"reported_vat_amount"`
	ReportedTotal decimal.Decimal   `json:"reported_premium_total"`
	Missing       []string          `json:"missing"`
	Warnings      []premium.Warning `json:"warnings"`
}

// NewParsedPolicyResponse mapea el borrador.
func NewParsedPolicyResponse(d *extraction.Draft) ParsedPolicyResponse {
	missing := d.Missing
	if missing == nil {
		missing = []string{}
	}
	return ParsedPolicyResponse{
		PolicyNumber:  d.PolicyNumber,
		InsurerName:   d.InsurerName,
		StartDate:     FormatDate(d.StartDate),
		EndDate:       FormatDate(d.EndDate),
		Currency:      d.Currency,
		PaymentMethod: string(d.PaymentMethod),
		Economics:     NewEconomicsResponse(d.Economics),
		ReportedVAT:   d.ReportedVAT,
		ReportedTotal: d.ReportedTotal,
		Missing:       missing,
		Warnings:      nonNilWarnings(d.Warnings),
	}
}
