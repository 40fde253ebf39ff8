package premium

import (
	"github.com/shopspring/decimal"

	"github.com/jhoicas/Seguros-api/internal/domain/entity"
)

// PaymentRules resultado de resolver aseguradora + forma de pago.
// PolicyFee es nil cuando la aseguradora no impone un derecho de póliza fijo.
type PaymentRules struct {
	InstallmentCount int
	SurchargePercent decimal.Decimal
	PolicyFee        *decimal.Decimal
}

// CarrierRule recargos por pago fraccionado y derecho de póliza fijo de una aseguradora.
type CarrierRule struct {
	Fractional  map[entity.PaymentMethod]decimal.Decimal
	FeeOverride *decimal.Decimal
}

// RuleTable tabla de reglas indexada por clave de aseguradora (normalizada con entity.Fold).
// Solo lectura después de construida.
type RuleTable struct {
	carriers map[string]CarrierRule
}

// NewRuleTable construye la tabla normalizando las claves.
func NewRuleTable(carriers map[string]CarrierRule) *RuleTable {
	t := &RuleTable{carriers: make(map[string]CarrierRule, len(carriers))}
	for k, v := range carriers {
		if key := entity.Fold(k); key != "" {
			t.carriers[key] = v
		}
	}
	return t
}

// RuleTableFromEntities construye la tabla desde las filas persistidas.
func RuleTableFromEntities(rules []entity.InsurerPaymentRule) *RuleTable {
	carriers := make(map[string]CarrierRule, len(rules))
	for _, r := range rules {
		cr := CarrierRule{Fractional: map[entity.PaymentMethod]decimal.Decimal{
			entity.PaymentSemestral:  r.SemestralPercent,
			entity.PaymentTrimestral: r.TrimestralPercent,
			entity.PaymentMensual:    r.MensualPercent,
		}}
		if r.PolicyFeeOverride.Valid {
			fee := r.PolicyFeeOverride.Decimal
			cr.FeeOverride = &fee
		}
		carriers[r.InsurerKey] = cr
	}
	return NewRuleTable(carriers)
}

// DefaultRuleTable reglas de fábrica: GNP cobra 5/7/9 % por pago fraccionado y
// un derecho de póliza fijo de 650; el resto de las aseguradoras no tiene recargo.
func DefaultRuleTable() *RuleTable {
	fee := decimal.NewFromInt(650)
	return NewRuleTable(map[string]CarrierRule{
		"gnp": {
			Fractional: map[entity.PaymentMethod]decimal.Decimal{
				entity.PaymentSemestral:  decimal.NewFromInt(5),
				entity.PaymentTrimestral: decimal.NewFromInt(7),
				entity.PaymentMensual:    decimal.NewFromInt(9),
			},
			FeeOverride: &fee,
		},
	})
}

// Len número de aseguradoras con reglas propias.
func (t *RuleTable) Len() int {
	return len(t.carriers)
}

// Resolve devuelve número de recibos, porcentaje de recargo y derecho de póliza.
// insurerKeys se prueban en orden (ID, alias, nombre); la primera que exista en la tabla gana.
func (t *RuleTable) Resolve(method entity.PaymentMethod, insurerKeys ...string) PaymentRules {
	rules := PaymentRules{
		InstallmentCount: method.DefaultInstallments(),
		SurchargePercent: decimal.Zero,
	}
	carrier, ok := t.lookup(insurerKeys)
	if !ok {
		return rules
	}
	if pct, ok := carrier.Fractional[method]; ok {
		rules.SurchargePercent = pct
	}
	if carrier.FeeOverride != nil {
		fee := *carrier.FeeOverride
		rules.PolicyFee = &fee
	}
	return rules
}

func (t *RuleTable) lookup(keys []string) (CarrierRule, bool) {
	if t == nil {
		return CarrierRule{}, false
	}
	for _, k := range keys {
		if cr, ok := t.carriers[entity.Fold(k)]; ok {
			return cr, true
		}
	}
	return CarrierRule{}, false
}
