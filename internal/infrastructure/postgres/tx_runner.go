package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/jhoicas/inventario-ledger/internal/application/inventory"
	"github.com/jhoicas/inventario-ledger/internal/domain"
)

// Ensure TxRunner implements inventory.TxRunner.
var _ inventory.TxRunner = (*TxRunner)(nil)

// TxRunner ejecuta callbacks dentro de una transacción PostgreSQL.
// Un conflicto de concurrencia (versión, serialización o deadlock) repite la transacción
// completa hasta maxRetries veces; fn debe construir sus entidades dentro del callback.
type TxRunner struct {
	pool       *pgxpool.Pool
	maxRetries int
}

// NewTxRunner construye el runner con el pool.
func NewTxRunner(pool *pgxpool.Pool, maxRetries int) *TxRunner {
	if maxRetries < 0 {
		maxRetries = 0
	}
	return &TxRunner{pool: pool, maxRetries: maxRetries}
}

// NewRepos repositorios atados a q: el pool para lecturas o una tx abierta.
func NewRepos(q Querier) inventory.Repos {
	return inventory.Repos{
		Pools:      NewStockPoolRepository(q),
		Movements:  NewMovementRepository(q),
		Aggregates: NewAggregateRepository(q),
		Sales:      NewSaleRepository(q),
	}
}

// Run inicia una transacción, ejecuta fn con repos atados a la tx y hace Commit o Rollback.
func (r *TxRunner) Run(ctx context.Context, fn func(ctx context.Context, repos inventory.Repos) error) error {
	var err error
	for attempt := 0; attempt <= r.maxRetries; attempt++ {
		err = r.runOnce(ctx, fn)
		if err == nil || !errors.Is(err, domain.ErrConcurrentModification) || ctx.Err() != nil {
			return err
		}
	}
	return err
}

func (r *TxRunner) runOnce(ctx context.Context, fn func(ctx context.Context, repos inventory.Repos) error) error {
	tx, err := r.pool.BeginTx(ctx, pgx.TxOptions{IsoLevel: pgx.ReadCommitted})
	if err != nil {
		return wrapErr("begin transaction", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	if err := fn(ctx, NewRepos(tx)); err != nil {
		return err
	}
	if err := tx.Commit(ctx); err != nil {
		return wrapErr("commit transaction", err)
	}
	return nil
}

// errNoRows nil para (nil, nil) cuando la fila no existe.
func errNoRows(op string, err error) error {
	if errors.Is(err, pgx.ErrNoRows) {
		return nil
	}
	return wrapErr(op, err)
}

var errVersion = fmt.Errorf("versión desactualizada: %w", domain.ErrConcurrentModification)
