package policy

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/jhoicas/Seguros-api/internal/domain"
	"github.com/jhoicas/Seguros-api/internal/domain/entity"
	"github.com/jhoicas/Seguros-api/internal/domain/premium"
	"github.com/jhoicas/Seguros-api/internal/domain/repository"
	"github.com/jhoicas/Seguros-api/pkg/money"
)

// Schedule póliza con sus joins y su calendario de recibos.
type Schedule struct {
	Policy       entity.PortfolioPolicy
	Installments []entity.Installment
	Total        decimal.Decimal
}

// InstallmentEdit fila capturada a mano por el operador.
type InstallmentEdit struct {
	Number     int
	DueDate    time.Time
	PremiumNet money.Raw
	PolicyFee  money.Raw
	Surcharges money.Raw
	VATAmount  money.Raw
	Status     string
}

// OverrideResult calendario guardado tras la edición manual.
type OverrideResult struct {
	Installments []entity.Installment
	PremiumTotal decimal.Decimal
	Warnings     []premium.Warning
}

// OverrideInstallments reemplaza el calendario con filas editadas a mano. El total de
// cada fila se recalcula desde sus componentes y la prima total de la póliza pasa a ser
// la suma de los recibos. Los números deben ser 1..N sin huecos.
func (uc *UseCase) OverrideInstallments(ctx context.Context, policyID string, edits []InstallmentEdit) (*OverrideResult, error) {
	if strings.TrimSpace(policyID) == "" {
		return nil, fmt.Errorf("%w: id de póliza requerido", domain.ErrInvalidInput)
	}
	rows, err := buildRows(policyID, edits)
	if err != nil {
		return nil, err
	}

	var result *OverrideResult
	err = uc.tx.RunPolicy(ctx, func(policies repository.PolicyRepository, installments repository.InstallmentRepository) error {
		p, err := policies.GetByID(ctx, policyID)
		if err != nil {
			return err
		}
		if err := installments.ReplaceForPolicy(ctx, p.ID, rows); err != nil {
			return fmt.Errorf("guardar recibos: %w", err)
		}
		total := premium.ReconcileTotal(rows)
		if err := policies.UpdateScheduleTotals(ctx, p.ID, total, len(rows)); err != nil {
			return fmt.Errorf("actualizar prima total: %w", err)
		}

		result = &OverrideResult{Installments: rows, PremiumTotal: total, Warnings: overrideWarnings(p.Economics, rows, total)}
		return nil
	})
	if err != nil {
		return nil, err
	}

	uc.log.Info().
		Str("policy_id", policyID).
		Int("installments", len(rows)).
		Str("premium_total", result.PremiumTotal.StringFixed(money.Places)).
		Msg("calendario editado a mano")
	return result, nil
}

// GetSchedule devuelve la póliza con sus joins y recibos. Sin cliente o sin aseguradora
// no hay documento que mostrar: devuelve domain.ErrMissingClient / ErrMissingInsurer.
func (uc *UseCase) GetSchedule(ctx context.Context, policyID string) (*Schedule, error) {
	pp, err := uc.portfolio.GetPortfolioPolicy(ctx, policyID)
	if err != nil {
		return nil, err
	}
	if pp.Client == nil {
		return nil, domain.ErrMissingClient
	}
	if pp.Insurer == nil {
		return nil, domain.ErrMissingInsurer
	}
	rows, err := uc.installments.ListByPolicy(ctx, policyID)
	if err != nil {
		return nil, fmt.Errorf("obtener recibos: %w", err)
	}
	return &Schedule{Policy: *pp, Installments: rows, Total: premium.ReconcileTotal(rows)}, nil
}

// SchedulePDF genera el PDF del calendario y el nombre sugerido del archivo.
func (uc *UseCase) SchedulePDF(ctx context.Context, policyID string) ([]byte, string, error) {
	s, err := uc.GetSchedule(ctx, policyID)
	if err != nil {
		return nil, "", err
	}
	pdf, err := uc.pdf.GenerateSchedulePDF(ctx, s)
	if err != nil {
		return nil, "", fmt.Errorf("pdf: generación fallida: %w", err)
	}
	name := s.Policy.Policy.PolicyNumber
	if name == "" {
		name = s.Policy.Policy.ID
	}
	return pdf, fmt.Sprintf("recibos_%s.pdf", sanitizeFilename(name)), nil
}

func buildRows(policyID string, edits []InstallmentEdit) ([]entity.Installment, error) {
	if len(edits) == 0 {
		return nil, fmt.Errorf("%w: el calendario debe tener al menos un recibo", domain.ErrInvalidInput)
	}
	sorted := make([]InstallmentEdit, len(edits))
	copy(sorted, edits)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].Number < sorted[j].Number })

	rows := make([]entity.Installment, 0, len(sorted))
	for i, e := range sorted {
		if e.Number != i+1 {
			return nil, fmt.Errorf("%w: los recibos deben numerarse 1..%d sin huecos", domain.ErrInvalidInput, len(sorted))
		}
		if e.DueDate.IsZero() {
			return nil, fmt.Errorf("%w: recibo %d sin fecha de vencimiento", domain.ErrInvalidInput, e.Number)
		}
		status, err := parseInstallmentStatus(e.Status)
		if err != nil {
			return nil, err
		}
		inst := entity.Installment{
			ID:         uuid.New().String(),
			PolicyID:   policyID,
			Number:     e.Number,
			DueDate:    e.DueDate,
			PremiumNet: money.Round(e.PremiumNet.Decimal()),
			PolicyFee:  money.Round(e.PolicyFee.Decimal()),
			Surcharges: money.Round(e.Surcharges.Decimal()),
			VATAmount:  money.Round(e.VATAmount.Decimal()),
			Status:     status,
		}
		premium.RecalculateInstallment(&inst)
		rows = append(rows, inst)
	}
	return rows, nil
}

func parseInstallmentStatus(raw string) (string, error) {
	switch entity.Fold(raw) {
	case "", "pendiente":
		return entity.InstallmentPendiente, nil
	case "pagado":
		return entity.InstallmentPagado, nil
	case "vencido":
		return entity.InstallmentVencido, nil
	default:
		return "", fmt.Errorf("%w: estado de recibo desconocido %q", domain.ErrInvalidInput, raw)
	}
}

func overrideWarnings(computed entity.Economics, rows []entity.Installment, total decimal.Decimal) []premium.Warning {
	var out []premium.Warning
	for _, r := range rows {
		if r.TotalAmount.IsNegative() {
			out = append(out, premium.Warning{
				Field:   fmt.Sprintf("installments[%d].total_amount", r.Number),
				Message: "el recibo quedó con total negativo",
			})
		}
	}
	if hasEconomics(computed) && !total.Equal(computed.PremiumTotal) {
		out = append(out, premium.Warning{
			Field:   "premium_total",
			Message: fmt.Sprintf("la suma de recibos (%s) difiere de la prima calculada (%s)",
				money.Format(total), money.Format(computed.PremiumTotal)),
		})
	}
	return out
}

func sanitizeFilename(s string) string {
	return strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '-', r == '_':
			return r
		default:
			return '_'
		}
	}, s)
}
