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

var _ repository.PortfolioRepository = (*PortfolioRepo)(nil)

// PortfolioRepo lectura de cartera: pólizas con cliente, aseguradora y ramo.
type PortfolioRepo struct {
	pool *pgxpool.Pool
}

// NewPortfolioRepository construye el adaptador.
func NewPortfolioRepository(pool *pgxpool.Pool) *PortfolioRepo {
	return &PortfolioRepo{pool: pool}
}

// LEFT JOIN: un cliente o aseguradora borrados no deben sacar la póliza de la cartera.
const portfolioSelect = `
	SELECT ` + policyColumns + `,
		c.id::text, c.first_name, c.last_name, c.phone, c.email,
		i.id::text, i.name, i.alias,
		l.name
	FROM policies p
	LEFT JOIN clients c ON c.id = p.client_id
	LEFT JOIN insurers i ON i.id = p.insurer_id
	LEFT JOIN insurance_lines l ON l.id = p.line_id`

// ListActive pólizas no canceladas con sus joins.
func (r *PortfolioRepo) ListActive(ctx context.Context) ([]entity.PortfolioPolicy, error) {
	rows, err := r.pool.Query(ctx, portfolioSelect+` WHERE p.status <> $1 ORDER BY p.end_date NULLS LAST, p.id`,
		entity.PolicyStatusCancelada)
	if err != nil {
		return nil, fmt.Errorf("list portfolio: %w", err)
	}
	defer rows.Close()

	var list []entity.PortfolioPolicy
	for rows.Next() {
		pp, err := scanPortfolio(rows)
		if err != nil {
			return nil, err
		}
		list = append(list, *pp)
	}
	return list, rows.Err()
}

// GetPortfolioPolicy una póliza con sus joins. domain.ErrNotFound si no existe.
func (r *PortfolioRepo) GetPortfolioPolicy(ctx context.Context, policyID string) (*entity.PortfolioPolicy, error) {
	if !isUUID(policyID) {
		return nil, domain.ErrNotFound
	}
	pp, err := scanPortfolio(r.pool.QueryRow(ctx, portfolioSelect+` WHERE p.id = $1`, policyID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return pp, nil
}

func scanPortfolio(row pgx.Row) (*entity.PortfolioPolicy, error) {
	var pp entity.PortfolioPolicy
	var (
		clientID, firstName, lastName, phone, email *string
		insurerID, insurerName, insurerAlias        *string
		lineName                                    *string
	)
	targets, finish := policyTargets(&pp.Policy)
	targets = append(targets,
		&clientID, &firstName, &lastName, &phone, &email,
		&insurerID, &insurerName, &insurerAlias,
		&lineName,
	)
	if err := row.Scan(targets...); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("scan portfolio policy: %w", err)
	}
	finish()

	if clientID != nil {
		pp.Client = &entity.Client{
			ID:        *clientID,
			FirstName: deref(firstName),
			LastName:  deref(lastName),
			Phone:     deref(phone),
			Email:     deref(email),
		}
	}
	if insurerID != nil {
		pp.Insurer = &entity.Insurer{ID: *insurerID, Name: deref(insurerName), Alias: deref(insurerAlias)}
	}
	pp.LineName = deref(lineName)
	return &pp, nil
}
