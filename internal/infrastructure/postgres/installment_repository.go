package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/jhoicas/Seguros-api/internal/domain"
	"github.com/jhoicas/Seguros-api/internal/domain/entity"
	"github.com/jhoicas/Seguros-api/internal/domain/repository"
)

var _ repository.InstallmentRepository = (*InstallmentRepo)(nil)

// InstallmentRepo implementación del puerto InstallmentRepository (usable con pool o tx).
type InstallmentRepo struct {
	q Querier
}

// NewInstallmentRepository construye el adaptador. Pasar pool o tx (Querier).
func NewInstallmentRepository(q Querier) *InstallmentRepo {
	return &InstallmentRepo{q: q}
}

var installmentColumns = []string{
	"id", "policy_id", "installment_number", "due_date", "premium_net", "policy_fee",
	"surcharges", "vat_amount", "total_amount", "status", "whatsapp_sent", "whatsapp_status",
}

// ListByPolicy recibos de la póliza ordenados por número.
func (r *InstallmentRepo) ListByPolicy(ctx context.Context, policyID string) ([]entity.Installment, error) {
	if !isUUID(policyID) {
		return nil, nil
	}
	query := `
		SELECT id::text, policy_id::text, installment_number, due_date, premium_net, policy_fee,
		       surcharges, vat_amount, total_amount, status, whatsapp_sent, whatsapp_status
		FROM installments WHERE policy_id = $1 ORDER BY installment_number`
	rows, err := r.q.Query(ctx, query, policyID)
	if err != nil {
		return nil, fmt.Errorf("list installments: %w", err)
	}
	defer rows.Close()

	var list []entity.Installment
	for rows.Next() {
		var i entity.Installment
		if err := rows.Scan(&i.ID, &i.PolicyID, &i.Number, &i.DueDate, &i.PremiumNet, &i.PolicyFee,
			&i.Surcharges, &i.VATAmount, &i.TotalAmount, &i.Status, &i.WhatsAppSent, &i.WhatsAppStatus); err != nil {
			return nil, fmt.Errorf("scan installment: %w", err)
		}
		list = append(list, i)
	}
	return list, rows.Err()
}

// ReplaceForPolicy borra el calendario de la póliza y carga las filas nuevas con COPY.
// Debe ejecutarse dentro de una transacción.
func (r *InstallmentRepo) ReplaceForPolicy(ctx context.Context, policyID string, rows []entity.Installment) error {
	if _, err := r.q.Exec(ctx, `DELETE FROM installments WHERE policy_id = $1`, policyID); err != nil {
		return fmt.Errorf("delete installments: %w", err)
	}
	if len(rows) == 0 {
		return nil
	}
	_, err := r.q.CopyFrom(ctx, pgx.Identifier{"installments"}, installmentColumns,
		pgx.CopyFromSlice(len(rows), func(i int) ([]any, error) {
			in := rows[i]
			return []any{
				in.ID, policyID, in.Number, in.DueDate, in.PremiumNet, in.PolicyFee,
				in.Surcharges, in.VATAmount, in.TotalAmount, in.Status, in.WhatsAppSent, in.WhatsAppStatus,
			}, nil
		}),
	)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("%w: número de recibo duplicado", domain.ErrConflict)
		}
		return fmt.Errorf("copy installments: %w", err)
	}
	return nil
}

// UpdateWhatsAppStatus registra el resultado del envío del aviso de un recibo.
func (r *InstallmentRepo) UpdateWhatsAppStatus(ctx context.Context, policyID string, number int, sent bool, status string) error {
	if !isUUID(policyID) {
		return domain.ErrNotFound
	}
	cmd, err := r.q.Exec(ctx,
		`UPDATE installments SET whatsapp_sent = $3, whatsapp_status = $4 WHERE policy_id = $1 AND installment_number = $2`,
		policyID, number, sent, status,
	)
	if err != nil {
		return fmt.Errorf("update whatsapp status: %w", err)
	}
	if cmd.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}
