package postgres

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/jhoicas/inventario-ledger/internal/domain/entity"
	"github.com/jhoicas/inventario-ledger/internal/domain/repository"
)

var _ repository.MovementRepository = (*MovementRepo)(nil)

// MovementRepo libro de movimientos sobre PostgreSQL. La tabla no admite UPDATE ni DELETE
// (trigger en la migración); seq desempata movimientos con el mismo created_at.
type MovementRepo struct {
	q Querier
}

// NewMovementRepository construye el adaptador del libro.
func NewMovementRepository(q Querier) *MovementRepo {
	return &MovementRepo{q: q}
}

const movementColumns = `id, transaction_id, pool_id, kind, field, quantity, balance,
	remaining_delta, consigned_delta, agent_assigned_delta,
	remaining_after, consigned_after, agent_assigned_after,
	reference_id, remark, created_at, created_by`

func scanMovement(row pgx.Row) (*entity.Movement, error) {
	var m entity.Movement
	err := row.Scan(
		&m.ID, &m.TransactionID, &m.PoolID, &m.Kind, &m.Field, &m.Quantity, &m.Balance,
		&m.RemainingDelta, &m.ConsignedDelta, &m.AgentAssignedDelta,
		&m.RemainingAfter, &m.ConsignedAfter, &m.AgentAssignedAfter,
		&m.ReferenceID, &m.Remark, &m.CreatedAt, &m.CreatedBy,
	)
	if err != nil {
		return nil, err
	}
	return &m, nil
}

// Create agrega una entrada al libro.
func (r *MovementRepo) Create(ctx context.Context, m *entity.Movement) error {
	query := `
		INSERT INTO stock_movements (` + movementColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17)`
	_, err := r.q.Exec(ctx, query,
		m.ID, m.TransactionID, m.PoolID, m.Kind, m.Field, m.Quantity, m.Balance,
		m.RemainingDelta, m.ConsignedDelta, m.AgentAssignedDelta,
		m.RemainingAfter, m.ConsignedAfter, m.AgentAssignedAfter,
		m.ReferenceID, m.Remark, m.CreatedAt, m.CreatedBy,
	)
	return wrapErr("insert stock movement", err)
}

// ListByPool movimientos del pool en orden de inserción; from y to son inclusivos.
func (r *MovementRepo) ListByPool(ctx context.Context, poolID string, from, to *time.Time) ([]*entity.Movement, error) {
	query := `SELECT ` + movementColumns + ` FROM stock_movements
		WHERE pool_id = $1
		  AND ($2::timestamptz IS NULL OR created_at >= $2)
		  AND ($3::timestamptz IS NULL OR created_at <= $3)
		ORDER BY created_at, seq`
	rows, err := r.q.Query(ctx, query, poolID, from, to)
	if err != nil {
		return nil, wrapErr("list stock movements", err)
	}
	list, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (*entity.Movement, error) {
		return scanMovement(row)
	})
	if err != nil {
		return nil, wrapErr("scan stock movement", err)
	}
	return list, nil
}

// LastBefore último movimiento del pool anterior a t.
func (r *MovementRepo) LastBefore(ctx context.Context, poolID string, t time.Time) (*entity.Movement, error) {
	query := `SELECT ` + movementColumns + ` FROM stock_movements
		WHERE pool_id = $1 AND created_at < $2
		ORDER BY created_at DESC, seq DESC LIMIT 1`
	m, err := scanMovement(r.q.QueryRow(ctx, query, poolID, t))
	if err != nil {
		return nil, errNoRows("last stock movement", err)
	}
	return m, nil
}
