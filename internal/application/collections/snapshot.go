package collections

import (
	"sort"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/Seguros-api/internal/domain/collections"
	"github.com/jhoicas/Seguros-api/internal/domain/entity"
	"github.com/jhoicas/Seguros-api/pkg/whatsapp"
)

// Motivos con los que se marca una póliza con datos incompletos.
const (
	FlagMissingClient  = "sin_cliente"
	FlagMissingInsurer = "sin_aseguradora"
	FlagMissingLine    = "sin_ramo"
	FlagMissingPhone   = "sin_telefono"
)

// BuildSnapshot arma la entrada del motor a partir de la póliza con joins y sus recibos.
//
// El recibo objetivo es el primero no pagado; sin recibos se usa la fecha de fin de
// vigencia y la prima total de la póliza. Devuelve ok=false si todos los recibos están pagados.
// flags lista los joins faltantes, que se sustituyen por textos por defecto.
func BuildSnapshot(pp entity.PortfolioPolicy, installments []entity.Installment) (snap collections.Snapshot, flags []string, ok bool) {
	p := pp.Policy
	snap = collections.Snapshot{
		PolicyID:           p.ID,
		PolicyNumber:       p.PolicyNumber,
		PolicyType:         pp.LineName,
		PaymentMethod:      p.PaymentMethod,
		StartDate:          p.StartDate,
		EndDate:            p.EndDate,
		DueDate:            p.EndDate,
		AmountDue:          policyAmount(p.Economics),
		SubBranch:          p.SubBranch,
		Notes:              p.Notes,
		CurrentInstallment: p.CurrentInstallment,
		TotalInstallments:  p.TotalInstallments,
		PaymentLink:        p.PaymentLink,
		Currency:           p.Currency,
		Status:             p.Status,
		IsDomiciled:        p.IsDomiciled,
	}

	if pp.Client != nil {
		snap.ClientName = strings.TrimSpace(pp.Client.FirstName)
		snap.Phone = pp.Client.Phone
	} else {
		flags = append(flags, FlagMissingClient)
	}
	if pp.Insurer != nil {
		snap.InsurerName = pp.Insurer.DisplayName()
	} else {
		flags = append(flags, FlagMissingInsurer)
	}
	if strings.TrimSpace(pp.LineName) == "" {
		flags = append(flags, FlagMissingLine)
	}
	// Vacío o inutilizable para WhatsApp ("123") se marca igual.
	if pp.Client != nil {
		if _, ok := whatsapp.NormalizePhone(pp.Client.Phone); !ok {
			flags = append(flags, FlagMissingPhone)
		}
	}

	if len(installments) == 0 {
		return snap, flags, true
	}

	target, found := firstUnpaid(installments)
	if !found {
		return snap, flags, false
	}
	snap.DueDate = target.DueDate
	snap.CurrentInstallment = target.Number
	snap.TotalInstallments = max(len(installments), p.TotalInstallments)
	if target.TotalAmount.IsPositive() {
		snap.AmountDue = target.TotalAmount
	}
	return snap, flags, true
}

// policyAmount prima total; si no está capturada, prima neta.
func policyAmount(e entity.Economics) decimal.Decimal {
	if e.PremiumTotal.IsPositive() {
		return e.PremiumTotal
	}
	return e.PremiumNet
}

func firstUnpaid(rows []entity.Installment) (entity.Installment, bool) {
	sorted := make([]entity.Installment, len(rows))
	copy(sorted, rows)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].Number < sorted[j].Number })
	for _, r := range sorted {
		if !r.IsPaid() {
			return r, true
		}
	}
	return entity.Installment{}, false
}
