package redislock

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/bsm/redislock"
	"github.com/redis/go-redis/v9"

	"github.com/jhoicas/inventario-ledger/internal/domain"
)

// Locker implementa sequence.Locker sobre bsm/redislock.
type Locker struct {
	client  *redislock.Client
	ttl     time.Duration
	backoff time.Duration
	retries int
}

// Option ajusta el Locker.
type Option func(*Locker)

// WithTTL vida máxima del lock si el proceso muere sin liberarlo.
func WithTTL(ttl time.Duration) Option { return func(l *Locker) { l.ttl = ttl } }

// WithRetry reintentos con espera lineal antes de rendirse.
func WithRetry(backoff time.Duration, retries int) Option {
	return func(l *Locker) {
		l.backoff = backoff
		l.retries = retries
	}
}

// NewLocker crea el locker; por defecto TTL 30s y 50 reintentos cada 20ms.
func NewLocker(rdb redis.UniversalClient, opts ...Option) *Locker {
	l := &Locker{
		client:  redislock.New(rdb),
		ttl:     30 * time.Second,
		backoff: 20 * time.Millisecond,
		retries: 50,
	}
	for _, o := range opts {
		o(l)
	}
	return l
}

// Lock obtiene el lock de key. Si no se consigue tras los reintentos devuelve
// ErrConcurrentModification (reintentable).
func (l *Locker) Lock(ctx context.Context, key string) (func(context.Context) error, error) {
	lock, err := l.client.Obtain(ctx, key, l.ttl, &redislock.Options{
		RetryStrategy: redislock.LimitRetry(redislock.LinearBackoff(l.backoff), l.retries),
	})
	if errors.Is(err, redislock.ErrNotObtained) {
		return nil, fmt.Errorf("lock %s: %w", key, domain.ErrConcurrentModification)
	}
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, ctxErr
		}
		return nil, fmt.Errorf("lock %s: %v: %w", key, err, domain.ErrStorageUnavailable)
	}
	return func(ctx context.Context) error {
		if err := lock.Release(ctx); err != nil && !errors.Is(err, redislock.ErrLockNotHeld) {
			return err
		}
		return nil
	}, nil
}
