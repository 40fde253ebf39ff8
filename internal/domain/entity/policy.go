package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Estados de la póliza.
const (
	PolicyStatusVigente   = "Vigente"
	PolicyStatusPendiente = "Pendiente"
	PolicyStatusVencida   = "Vencida"
	PolicyStatusCancelada = "Cancelada"
)

// DefaultTaxPercent IVA aplicado cuando no se captura otro.
var DefaultTaxPercent = decimal.NewFromInt(16)

// Economics campos económicos de la póliza. PremiumTotal siempre es derivado:
// PremiumTotal = base gravable + VATAmount.
type Economics struct {
	PremiumNet        decimal.Decimal
	PolicyFee         decimal.Decimal
	SurchargePercent  decimal.Decimal
	SurchargeAmount   decimal.Decimal
	DiscountPercent   decimal.Decimal
	DiscountAmount    decimal.Decimal
	ExtraPremium      decimal.Decimal
	TaxPercent        decimal.Decimal
	VATAmount         decimal.Decimal
	PremiumTotal      decimal.Decimal
	CommissionPercent decimal.Decimal // informativo
	CommissionAmount  decimal.Decimal // informativo
	FeesPercent       decimal.Decimal // informativo
	FeesAmount        decimal.Decimal // informativo
	AdjustmentAmount  decimal.Decimal // informativo, no entra al total
}

// TaxableBase prima neta + derecho + recargo − descuento + prima adicional.
func (e Economics) TaxableBase() decimal.Decimal {
	return e.PremiumNet.
		Add(e.PolicyFee).
		Add(e.SurchargeAmount).
		Sub(e.DiscountAmount).
		Add(e.ExtraPremium)
}

// Policy póliza con sus datos de vigencia, forma de pago y económicos.
type Policy struct {
	ID                 string
	ClientID           string
	InsurerID          string
	LineID             string
	PolicyNumber       string
	Status             string
	SubBranch          string
	StartDate          time.Time
	EndDate            time.Time
	Currency           string // MXN, USD, EUR
	PaymentMethod      PaymentMethod
	TotalInstallments  int
	CurrentInstallment int
	PaymentLink        string
	IsDomiciled        bool
	Notes              string
	Economics          Economics
	CreatedAt          time.Time
	UpdatedAt          time.Time
}

// IsCancelled indica si la póliza está cancelada.
func (p *Policy) IsCancelled() bool {
	return p.Status == PolicyStatusCancelada
}
