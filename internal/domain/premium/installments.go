package premium

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/Seguros-api/internal/domain/entity"
	"github.com/jhoicas/Seguros-api/pkg/money"
)

// GenerateInstallments reparte los económicos en count recibos.
//
//   - Prima neta, recargo e IVA se dividen en partes iguales (redondeo a centavos por fila;
//     la diferencia residual de centavos no se redistribuye).
//   - El derecho de póliza se cobra completo en el recibo 1.
//   - Vencimiento del recibo i = startDate + (i−1) × floor(12/count) meses de calendario.
//
// count < 1 se trata como 1. Si startDate es cero se usa now como ancla.
func GenerateInstallments(e entity.Economics, count int, startDate, now time.Time) []entity.Installment {
	if count < 1 {
		count = 1
	}
	if startDate.IsZero() {
		startDate = now
	}
	n := decimal.NewFromInt(int64(count))
	step := 12 / count

	net := money.Round(e.PremiumNet.Div(n))
	surcharge := money.Round(e.SurchargeAmount.Div(n))
	vat := money.Round(e.VATAmount.Div(n))

	rows := make([]entity.Installment, count)
	for i := range rows {
		inst := entity.Installment{
			Number:     i + 1,
			DueDate:    AddMonths(startDate, i*step),
			PremiumNet: net,
			PolicyFee:  decimal.Zero,
			Surcharges: surcharge,
			VATAmount:  vat,
			Status:     entity.InstallmentPendiente,
		}
		if i == 0 {
			inst.PolicyFee = money.Round(e.PolicyFee)
		}
		RecalculateInstallment(&inst)
		rows[i] = inst
	}
	return rows
}

// RecalculateInstallment recalcula el total de un recibo desde sus componentes.
// Se usa también tras una edición manual de una sola fila.
func RecalculateInstallment(inst *entity.Installment) {
	inst.TotalAmount = inst.PremiumNet.
		Add(inst.PolicyFee).
		Add(inst.Surcharges).
		Add(inst.VATAmount)
}

// ReconcileTotal suma los totales de un calendario (editado o no). Es la única vía
// por la que el total de la póliza puede venir de los recibos y no del cálculo.
func ReconcileTotal(rows []entity.Installment) decimal.Decimal {
	total := decimal.Zero
	for _, r := range rows {
		total = total.Add(r.TotalAmount)
	}
	return total
}

// SumPremiumNet suma la prima neta de los recibos.
func SumPremiumNet(rows []entity.Installment) decimal.Decimal {
	total := decimal.Zero
	for _, r := range rows {
		total = total.Add(r.PremiumNet)
	}
	return total
}

// AddMonths suma meses de calendario conservando el día; si el mes destino es más
// corto, se ajusta al último día (31 ene + 1 mes = 28/29 feb).
func AddMonths(t time.Time, months int) time.Time {
	y, m, d := t.Date()
	first := time.Date(y, m+time.Month(months), 1, 0, 0, 0, 0, t.Location())
	if last := daysIn(first); d > last {
		d = last
	}
	return time.Date(first.Year(), first.Month(), d,
		t.Hour(), t.Minute(), t.Second(), t.Nanosecond(), t.Location())
}

func daysIn(firstOfMonth time.Time) int {
	return firstOfMonth.AddDate(0, 1, -1).Day()
}
