package dto

import (
	"strings"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/Seguros-api/internal/application/policy"
	"github.com/jhoicas/Seguros-api/internal/domain/entity"
	"github.com/jhoicas/Seguros-api/internal/domain/premium"
	"github.com/jhoicas/Seguros-api/pkg/money"
)

// EconomicsRequest económicos capturados. Los montos aceptan número o texto
// ("10,500.00"); lo ilegible vale 0.
type EconomicsRequest struct {
	PremiumNet        money.Raw `json:"premium_net"`
	PolicyFee         money.Raw `json:"policy_fee"`
	SurchargePercent  money.Raw `json:"surcharge_percent"`
	SurchargeAmount   money.Raw `json:"surcharge_amount"`
	SurchargeSource   string    `json:"surcharge_source"` // "percent" (defecto) | "amount": el último campo editado
	DiscountPercent   money.Raw `json:"discount_percent"`
	DiscountAmount    money.Raw `json:"discount_amount"`
	DiscountSource    string    `json:"discount_source"`
	ExtraPremium      money.Raw `json:"extra_premium"`
	TaxPercentage     money.Raw `json:"tax_percentage"` // vacío = 16
	CommissionPercent money.Raw `json:"commission_percent"`
	FeesPercent       money.Raw `json:"fees_percent"`
	AdjustmentAmount  money.Raw `json:"adjustment_amount"`
}

// ToInput convierte al input del calculador.
func (r EconomicsRequest) ToInput() premium.Input {
	return premium.Input{
		PremiumNet:        r.PremiumNet,
		PolicyFee:         r.PolicyFee,
		Surcharge:         premium.Adjustment{Percent: r.SurchargePercent, Amount: r.SurchargeAmount, Source: editSource(r.SurchargeSource)},
		Discount:          premium.Adjustment{Percent: r.DiscountPercent, Amount: r.DiscountAmount, Source: editSource(r.DiscountSource)},
		ExtraPremium:      r.ExtraPremium,
		TaxPercent:        r.TaxPercentage,
		CommissionPercent: r.CommissionPercent,
		FeesPercent:       r.FeesPercent,
		AdjustmentAmount:  r.AdjustmentAmount,
	}
}

func editSource(s string) premium.EditSource {
	if strings.EqualFold(strings.TrimSpace(s), "amount") {
		return premium.EditedAmount
	}
	return premium.EditedPercent
}

// QuoteRequest económicos más aseguradora, forma de pago y vigencia.
type QuoteRequest struct {
	InsurerID     string `json:"insurer_id"`
	PaymentMethod string `json:"payment_method"`
	IsDomiciled   *bool  `json:"is_domiciled"`
	StartDate     string `json:"start_date"`  // YYYY-MM-DD
	ApplyRules    *bool  `json:"apply_rules"` // nil usa el valor por defecto del endpoint
	EconomicsRequest
}

// ToQuoteInput valida fechas y arma el input del caso de uso.
func (r QuoteRequest) ToQuoteInput(defaultApplyRules bool) (policy.QuoteInput, error) {
	start, err := ParseDate("start_date", r.StartDate)
	if err != nil {
		return policy.QuoteInput{}, err
	}
	apply := defaultApplyRules
	if r.ApplyRules != nil {
		apply = *r.ApplyRules
	}
	return policy.QuoteInput{
		InsurerID:     r.InsurerID,
		PaymentMethod: r.PaymentMethod,
		IsDomiciled:   r.IsDomiciled,
		StartDate:     start,
		ApplyRules:    apply,
		Economics:     r.ToInput(),
	}, nil
}

// EconomicsResponse económicos calculados.
type EconomicsResponse struct {
	PremiumNet        decimal.Decimal `json:"premium_net"`
	PolicyFee         decimal.Decimal `json:"policy_fee"`
	SurchargePercent  decimal.Decimal `json:"surcharge_percent"`
	SurchargeAmount   decimal.Decimal `json:"surcharge_amount"`
	DiscountPercent   decimal.Decimal `json:"discount_percent"`
	DiscountAmount    decimal.Decimal `json:"discount_amount"`
	ExtraPremium      decimal.Decimal `json:"extra_premium"`
	PremiumSubtotal   decimal.Decimal `json:"premium_subtotal"`
	TaxPercentage     decimal.Decimal `json:"tax_percentage"`
	VATAmount         decimal.Decimal `json:"vat_amount"`
	PremiumTotal      decimal.Decimal `json:"premium_total"`
	CommissionPercent decimal.Decimal `json:"commission_percent"`
	CommissionAmount  decimal.Decimal `json:"commission_amount"`
	FeesPercent       decimal.Decimal `json:"fees_percent"`
	FeesAmount        decimal.Decimal `json:"fees_amount"`
	AdjustmentAmount  decimal.Decimal `json:"adjustment_amount"`
}

// NewEconomicsResponse mapea la entidad.
func NewEconomicsResponse(e entity.Economics) EconomicsResponse {
	return EconomicsResponse{
		PremiumNet:        e.PremiumNet,
		PolicyFee:         e.PolicyFee,
		SurchargePercent:  e.SurchargePercent,
		SurchargeAmount:   e.SurchargeAmount,
		DiscountPercent:   e.DiscountPercent,
		DiscountAmount:    e.DiscountAmount,
		ExtraPremium:      e.ExtraPremium,
		PremiumSubtotal:   e.TaxableBase(),
		TaxPercentage:     e.TaxPercent,
		VATAmount:         e.VATAmount,
		PremiumTotal:      e.PremiumTotal,
		CommissionPercent: e.CommissionPercent,
		CommissionAmount:  e.CommissionAmount,
		FeesPercent:       e.FeesPercent,
		FeesAmount:        e.FeesAmount,
		AdjustmentAmount:  e.AdjustmentAmount,
	}
}

// ComputeResponse resultado de POST /api/premiums/compute.
type ComputeResponse struct {
	Economics EconomicsResponse `json:"economics"`
	Warnings  []premium.Warning `json:"warnings"`
}

// RulesResponse reglas de cobro de aseguradora + forma de pago.
type RulesResponse struct {
	PaymentMethod    string           `json:"payment_method"`
	InstallmentCount int              `json:"installment_count"`
	SurchargePercent decimal.Decimal  `json:"surcharge_percent"`
	PolicyFee        *decimal.Decimal `json:"policy_fee"` // null = la aseguradora no fija derecho
}

// NewRulesResponse mapea las reglas resueltas.
func NewRulesResponse(method entity.PaymentMethod, r premium.PaymentRules) RulesResponse {
	return RulesResponse{
		PaymentMethod:    string(method),
		InstallmentCount: r.InstallmentCount,
		SurchargePercent: r.SurchargePercent,
		PolicyFee:        r.PolicyFee,
	}
}

// InstallmentResponse recibo del calendario.
type InstallmentResponse struct {
	Number         int             `json:"installment_number"`
	DueDate        string          `json:"due_date"`
	PremiumNet     decimal.Decimal `json:"premium_net"`
	PolicyFee      decimal.Decimal `json:"policy_fee"`
	Surcharges     decimal.Decimal `json:"surcharges"`
	VATAmount      decimal.Decimal `json:"vat_amount"`
	TotalAmount    decimal.Decimal `json:"total_amount"`
	Status         string          `json:"status"`
	WhatsAppSent   bool            `json:"whatsapp_sent"`
	WhatsAppStatus string          `json:"whatsapp_status,omitempty"`
}

// NewInstallmentResponses mapea los recibos.
func NewInstallmentResponses(rows []entity.Installment) []InstallmentResponse {
	out := make([]InstallmentResponse, 0, len(rows))
	for _, r := range rows {
		out = append(out, InstallmentResponse{
			Number:         r.Number,
			DueDate:        FormatDate(r.DueDate),
			PremiumNet:     r.PremiumNet,
			PolicyFee:      r.PolicyFee,
			Surcharges:     r.Surcharges,
			VATAmount:      r.VATAmount,
			TotalAmount:    r.TotalAmount,
			Status:         r.Status,
			WhatsAppSent:   r.WhatsAppSent,
			WhatsAppStatus: r.WhatsAppStatus,
		})
	}
	return out
}

// QuoteResponse económicos, reglas aplicadas y calendario.
type QuoteResponse struct {
	Rules        RulesResponse         `json:"rules"`
	Economics    EconomicsResponse     `json:"economics"`
	Warnings     []premium.Warning     `json:"warnings"`
	Installments []InstallmentResponse `json:"installments"`
}

// NewQuoteResponse mapea la cotización.
func NewQuoteResponse(q *policy.Quote) QuoteResponse {
	return QuoteResponse{
		Rules:        NewRulesResponse(q.PaymentMethod, q.Rules),
		Economics:    NewEconomicsResponse(q.Economics),
		Warnings:     nonNilWarnings(q.Warnings),
		Installments: NewInstallmentResponses(q.Installments),
	}
}

func nonNilWarnings(w []premium.Warning) []premium.Warning {
	if w == nil {
		return []premium.Warning{}
	}
	return w
}
