package postgres

import (
	"context"
	"sync"

	"github.com/jackc/pgx/v5/pgxpool"
)

// AdvisoryLocker implementa sequence.Locker con pg_advisory_lock. El lock es de sesión:
// se toma en una conexión reservada del pool y se suelta al liberar, así lo respetan
// todas las instancias conectadas a la misma base.
type AdvisoryLocker struct {
	pool *pgxpool.Pool
}

// NewAdvisoryLocker construye el locker sobre pool.
func NewAdvisoryLocker(pool *pgxpool.Pool) *AdvisoryLocker {
	return &AdvisoryLocker{pool: pool}
}

// Lock espera el lock de key; si ctx vence, Postgres cancela la espera.
func (l *AdvisoryLocker) Lock(ctx context.Context, key string) (func(context.Context) error, error) {
	conn, err := l.pool.Acquire(ctx)
	if err != nil {
		return nil, wrapErr("acquire lock connection", err)
	}
	if _, err := conn.Exec(ctx, `SELECT pg_advisory_lock(hashtext($1))`, key); err != nil {
		conn.Release()
		return nil, wrapErr("advisory lock "+key, err)
	}

	var (
		once      sync.Once
		unlockErr error
	)
	return func(ctx context.Context) error {
		once.Do(func() {
			defer conn.Release()
			if _, err := conn.Exec(ctx, `SELECT pg_advisory_unlock(hashtext($1))`, key); err != nil {
				// cerrar la sesión suelta el lock en el servidor
				_ = conn.Conn().Close(context.WithoutCancel(ctx))
				unlockErr = wrapErr("advisory unlock "+key, err)
			}
		})
		return unlockErr
	}, nil
}
