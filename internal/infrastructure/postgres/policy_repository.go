package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/shopspring/decimal"

	"github.com/jhoicas/Seguros-api/internal/domain"
	"github.com/jhoicas/Seguros-api/internal/domain/entity"
	"github.com/jhoicas/Seguros-api/internal/domain/repository"
)

var _ repository.PolicyRepository = (*PolicyRepo)(nil)

// PolicyRepo implementación del puerto PolicyRepository sobre PostgreSQL (usable con pool o tx).
type PolicyRepo struct {
	q Querier
}

// NewPolicyRepository construye el adaptador. Pasar pool o tx (Querier).
func NewPolicyRepository(q Querier) *PolicyRepo {
	return &PolicyRepo{q: q}
}

// policyColumns columnas de policies en el orden que espera scanPolicy.
const policyColumns = `
	p.id::text, p.client_id::text, p.insurer_id::text, p.line_id::text, p.policy_number, p.status, p.sub_branch,
	p.start_date, p.end_date, p.currency, p.payment_method, p.total_installments, p.current_installment,
	p.payment_link, p.is_domiciled, p.notes,
	p.premium_net, p.policy_fee, p.surcharge_percent, p.surcharge_amount, p.discount_percent, p.discount_amount,
	p.extra_premium, p.tax_percentage, p.vat_amount, p.premium_total,
	p.commission_percent, p.commission_amount, p.fees_percent, p.fees_amount, p.adjustment_amount,
	p.created_at, p.updated_at`

// policyTargets destinos de Scan para policyColumns. finish completa los campos nullable.
func policyTargets(p *entity.Policy) (targets []any, finish func()) {
	var clientID, insurerID, lineID *string
	var start, end pgtype.Date
	var method string
	e := &p.Economics
	targets = []any{
		&p.ID, &clientID, &insurerID, &lineID, &p.PolicyNumber, &p.Status, &p.SubBranch,
		&start, &end, &p.Currency, &method, &p.TotalInstallments, &p.CurrentInstallment,
		&p.PaymentLink, &p.IsDomiciled, &p.Notes,
		&e.PremiumNet, &e.PolicyFee, &e.SurchargePercent, &e.SurchargeAmount, &e.DiscountPercent, &e.DiscountAmount,
		&e.ExtraPremium, &e.TaxPercent, &e.VATAmount, &e.PremiumTotal,
		&e.CommissionPercent, &e.CommissionAmount, &e.FeesPercent, &e.FeesAmount, &e.AdjustmentAmount,
		&p.CreatedAt, &p.UpdatedAt,
	}
	finish = func() {
		p.ClientID = deref(clientID)
		p.InsurerID = deref(insurerID)
		p.LineID = deref(lineID)
		p.StartDate = dateOf(start)
		p.EndDate = dateOf(end)
		p.PaymentMethod = entity.ParsePaymentMethod(method)
	}
	return targets, finish
}

// GetByID obtiene una póliza por ID. domain.ErrNotFound si no existe.
func (r *PolicyRepo) GetByID(ctx context.Context, id string) (*entity.Policy, error) {
	if !isUUID(id) {
		return nil, domain.ErrNotFound
	}
	var p entity.Policy
	targets, finish := policyTargets(&p)
	err := r.q.QueryRow(ctx, `SELECT `+policyColumns+` FROM policies p WHERE p.id = $1`, id).Scan(targets...)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("get policy: %w", err)
	}
	finish()
	return &p, nil
}

// UpdateEconomics guarda forma de pago, recibos y todos los campos económicos.
func (r *PolicyRepo) UpdateEconomics(ctx context.Context, p *entity.Policy) error {
	e := p.Economics
	query := `
		UPDATE policies SET
			insurer_id = NULLIF($2, '')::uuid, payment_method = $3, is_domiciled = $4, total_installments = $5,
			start_date = $6, end_date = $7,
			premium_net = $8, policy_fee = $9, surcharge_percent = $10, surcharge_amount = $11,
			discount_percent = $12, discount_amount = $13, extra_premium = $14, tax_percentage = $15,
			vat_amount = $16, premium_total = $17, commission_percent = $18, commission_amount = $19,
			fees_percent = $20, fees_amount = $21, adjustment_amount = $22, updated_at = now()
		WHERE id = $1`
	cmd, err := r.q.Exec(ctx, query,
		p.ID, p.InsurerID, string(p.PaymentMethod), p.IsDomiciled, p.TotalInstallments,
		nullDate(p.StartDate), nullDate(p.EndDate),
		e.PremiumNet, e.PolicyFee, e.SurchargePercent, e.SurchargeAmount,
		e.DiscountPercent, e.DiscountAmount, e.ExtraPremium, e.TaxPercent,
		e.VATAmount, e.PremiumTotal, e.CommissionPercent, e.CommissionAmount,
		e.FeesPercent, e.FeesAmount, e.AdjustmentAmount,
	)
	if err != nil {
		return fmt.Errorf("update policy economics: %w", err)
	}
	if cmd.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// UpdateScheduleTotals fija prima total y número de recibos tras editar el calendario a mano.
func (r *PolicyRepo) UpdateScheduleTotals(ctx context.Context, policyID string, premiumTotal decimal.Decimal, installments int) error {
	cmd, err := r.q.Exec(ctx,
		`UPDATE policies SET premium_total = $2, total_installments = $3, updated_at = now() WHERE id = $1`,
		policyID, premiumTotal, installments,
	)
	if err != nil {
		return fmt.Errorf("update policy totals: %w", err)
	}
	if cmd.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}
