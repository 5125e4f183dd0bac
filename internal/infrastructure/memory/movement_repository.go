package memory

import (
	"context"
	"time"

	"github.com/jhoicas/inventario-ledger/internal/domain/entity"
)

// movementRepo libro append-only: los movimientos se guardan en orden de inserción.
type movementRepo struct{ a accessor }

func (r *movementRepo) Create(ctx context.Context, m *entity.Movement) error {
	return r.a.update(ctx, func(st *state) error {
		st.movements = append(st.movements, *m)
		return nil
	})
}

func (r *movementRepo) ListByPool(_ context.Context, poolID string, from, to *time.Time) ([]*entity.Movement, error) {
	out := make([]*entity.Movement, 0)
	for _, m := range r.a.view().movements {
		if m.PoolID != poolID {
			continue
		}
		if from != nil && m.CreatedAt.Before(*from) {
			continue
		}
		if to != nil && m.CreatedAt.After(*to) {
			continue
		}
		mc := m
		out = append(out, &mc)
	}
	return out, nil
}

func (r *movementRepo) LastBefore(_ context.Context, poolID string, t time.Time) (*entity.Movement, error) {
	var last *entity.Movement
	for _, m := range r.a.view().movements {
		if m.PoolID == poolID && m.CreatedAt.Before(t) {
			mc := m
			last = &mc
		}
	}
	return last, nil
}
