package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/jhoicas/Seguros-api/internal/domain"
	"github.com/jhoicas/Seguros-api/internal/domain/entity"
	"github.com/jhoicas/Seguros-api/internal/domain/repository"
)

var _ repository.InsurerRepository = (*InsurerRepo)(nil)

// InsurerRepo implementación del puerto InsurerRepository sobre PostgreSQL.
type InsurerRepo struct {
	pool *pgxpool.Pool
}

// NewInsurerRepository construye el adaptador.
func NewInsurerRepository(pool *pgxpool.Pool) *InsurerRepo {
	return &InsurerRepo{pool: pool}
}

// GetByID obtiene una aseguradora. domain.ErrNotFound si no existe o el ID no es UUID.
func (r *InsurerRepo) GetByID(ctx context.Context, id string) (*entity.Insurer, error) {
	if !isUUID(id) {
		return nil, domain.ErrNotFound
	}
	var ins entity.Insurer
	err := r.pool.QueryRow(ctx, `SELECT id::text, name, alias FROM insurers WHERE id = $1`, id).
		Scan(&ins.ID, &ins.Name, &ins.Alias)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("get insurer: %w", err)
	}
	return &ins, nil
}

// ListPaymentRules todas las reglas de recargo por aseguradora.
func (r *InsurerRepo) ListPaymentRules(ctx context.Context) ([]entity.InsurerPaymentRule, error) {
	query := `
		SELECT insurer_key, semestral_percent, trimestral_percent, mensual_percent, policy_fee_override
		FROM insurer_payment_rules ORDER BY insurer_key`
	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("list payment rules: %w", err)
	}
	defer rows.Close()

	var list []entity.InsurerPaymentRule
	for rows.Next() {
		var rule entity.InsurerPaymentRule
		if err := rows.Scan(&rule.InsurerKey, &rule.SemestralPercent, &rule.TrimestralPercent,
			&rule.MensualPercent, &rule.PolicyFeeOverride); err != nil {
			return nil, fmt.Errorf("scan payment rule: %w", err)
		}
		list = append(list, rule)
	}
	return list, rows.Err()
}
