package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/jhoicas/Seguros-api/internal/application/policy"
	"github.com/jhoicas/Seguros-api/internal/domain/repository"
)

// Ensure TxRunner implements policy.TxRunner.
var _ policy.TxRunner = (*TxRunner)(nil)

// TxRunner ejecuta callbacks dentro de una transacción PostgreSQL.
type TxRunner struct {
	pool *pgxpool.Pool
}

// NewTxRunner construye el runner con el pool.
func NewTxRunner(pool *pgxpool.Pool) *TxRunner {
	return &TxRunner{pool: pool}
}

// RunPolicy inicia una transacción, ejecuta fn con los repos de póliza y recibos atados
// a la tx y hace Commit o Rollback.
func (r *TxRunner) RunPolicy(ctx context.Context, fn func(
	policies repository.PolicyRepository,
	installments repository.InstallmentRepository,
) error) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	if err := fn(NewPolicyRepository(tx), NewInstallmentRepository(tx)); err != nil {
		return err
	}
	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}
	return nil
}
