// Package premium contiene los servicios de dominio del cálculo de primas:
// económicos de la póliza, reglas por aseguradora/forma de pago y recibos.
//
// Todas las funciones son puras: sin I/O, sin estado compartido, seguras en paralelo.
package premium

import (
	"github.com/shopspring/decimal"

	"github.com/jhoicas/Seguros-api/internal/domain/entity"
	"github.com/jhoicas/Seguros-api/pkg/money"
)

// EditSource indica cuál de los dos campos de un ajuste editó el operador por última vez.
type EditSource int

const (
	// EditedPercent el monto se deriva del porcentaje (caso por defecto).
	EditedPercent EditSource = iota
	// EditedAmount el monto capturado manda y el porcentaje se deriva de él.
	EditedAmount
)

// Adjustment recargo o descuento expresado como porcentaje y monto.
type Adjustment struct {
	Percent money.Raw
	Amount  money.Raw
	Source  EditSource
}

// Input valores crudos de los económicos tal como los captura el operador
// o los devuelve la extracción por IA.
type Input struct {
	PremiumNet        money.Raw
	PolicyFee         money.Raw
	Surcharge         Adjustment
	Discount          Adjustment
	ExtraPremium      money.Raw
	TaxPercent        money.Raw // vacío = entity.DefaultTaxPercent
	CommissionPercent money.Raw
	FeesPercent       money.Raw
	AdjustmentAmount  money.Raw
}

// Result económicos calculados más las advertencias de validación.
type Result struct {
	Economics entity.Economics
	Warnings  []Warning
}

// ComputeEconomics calcula recargo, descuento, IVA y prima total. Nunca falla:
// lo ilegible vale 0 y los montos se redondean a centavos (mitad hacia arriba).
func ComputeEconomics(in Input) entity.Economics {
	return Compute(in).Economics
}

// Compute igual que ComputeEconomics pero devuelve además las advertencias.
func Compute(in Input) Result {
	var warnings []Warning

	nonNegative := func(field string, d decimal.Decimal) decimal.Decimal {
		if d.IsNegative() {
			warnings = append(warnings, Warning{Field: field, Message: "valor negativo, se tomó 0"})
			return decimal.Zero
		}
		return d
	}

	net := money.Round(nonNegative("premium_net", in.PremiumNet.Decimal()))
	fee := money.Round(nonNegative("policy_fee", in.PolicyFee.Decimal()))
	extra := money.Round(nonNegative("extra_premium", in.ExtraPremium.Decimal()))

	taxPct := entity.DefaultTaxPercent
	if !in.TaxPercent.IsBlank() {
		taxPct = nonNegative("tax_percentage", in.TaxPercent.Decimal())
	}

	surchargePct, surchargeAmt := resolveAdjustment(net, in.Surcharge)
	discountPct, discountAmt := resolveAdjustment(net, in.Discount)

	e := entity.Economics{
		PremiumNet:        net,
		PolicyFee:         fee,
		SurchargePercent:  surchargePct,
		SurchargeAmount:   surchargeAmt,
		DiscountPercent:   discountPct,
		DiscountAmount:    discountAmt,
		ExtraPremium:      extra,
		TaxPercent:        taxPct,
		CommissionPercent: in.CommissionPercent.Decimal(),
		FeesPercent:       in.FeesPercent.Decimal(),
		AdjustmentAmount:  money.Round(in.AdjustmentAmount.Decimal()),
	}
	e.CommissionAmount = money.Round(money.Percent(net, e.CommissionPercent))
	e.FeesAmount = money.Round(money.Percent(net, e.FeesPercent))

	base := e.TaxableBase()
	e.VATAmount = money.Round(money.Percent(base, taxPct))
	e.PremiumTotal = base.Add(e.VATAmount)

	warnings = append(warnings, Validate(e)...)
	return Result{Economics: e, Warnings: warnings}
}

// resolveAdjustment aplica "el último que escribe gana" entre porcentaje y monto.
func resolveAdjustment(net decimal.Decimal, adj Adjustment) (pct, amount decimal.Decimal) {
	if adj.Source == EditedAmount {
		amount = money.Round(adj.Amount.Decimal())
		if net.IsZero() {
			return adj.Percent.Decimal(), amount
		}
		return money.PercentOf(amount, net), amount
	}
	pct = adj.Percent.Decimal()
	return pct, money.Round(money.Percent(net, pct))
}

// FromEconomics arma un Input a partir de económicos ya guardados, con el porcentaje
// como fuente. Sirve para recalcular cuando cambian la forma de pago o la aseguradora.
func FromEconomics(e entity.Economics) Input {
	return Input{
		PremiumNet:        raw(e.PremiumNet),
		PolicyFee:         raw(e.PolicyFee),
		Surcharge:         Adjustment{Percent: raw(e.SurchargePercent), Amount: raw(e.SurchargeAmount)},
		Discount:          Adjustment{Percent: raw(e.DiscountPercent), Amount: raw(e.DiscountAmount)},
		ExtraPremium:      raw(e.ExtraPremium),
		TaxPercent:        raw(e.TaxPercent),
		CommissionPercent: raw(e.CommissionPercent),
		FeesPercent:       raw(e.FeesPercent),
		AdjustmentAmount:  raw(e.AdjustmentAmount),
	}
}

func raw(d decimal.Decimal) money.Raw {
	return money.Raw(d.String())
}
