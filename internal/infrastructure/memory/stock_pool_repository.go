package memory

import (
	"context"
	"sort"
	"time"

	"github.com/jhoicas/inventario-ledger/internal/domain"
	"github.com/jhoicas/inventario-ledger/internal/domain/entity"
	"github.com/jhoicas/inventario-ledger/internal/domain/repository"
)

type stockPoolRepo struct{ a accessor }

func clonePool(p entity.StockPool) *entity.StockPool {
	p.ManufactureDate = cloneTime(p.ManufactureDate)
	p.ExpirationDate = cloneTime(p.ExpirationDate)
	return &p
}

func cloneTime(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	v := *t
	return &v
}

func (r *stockPoolRepo) Create(ctx context.Context, pool *entity.StockPool) error {
	return r.a.update(ctx, func(st *state) error {
		if _, ok := st.pools[pool.ID]; ok {
			return domain.ErrDuplicate
		}
		for _, p := range st.pools {
			if p.ProductID == pool.ProductID && p.LocationID == pool.LocationID && p.BatchNumber == pool.BatchNumber {
				return domain.ErrDuplicate
			}
		}
		st.pools[pool.ID] = *clonePool(*pool)
		return nil
	})
}

func (r *stockPoolRepo) GetByID(_ context.Context, id string) (*entity.StockPool, error) {
	p, ok := r.a.view().pools[id]
	if !ok {
		return nil, nil
	}
	return clonePool(p), nil
}

// GetForUpdate: la tx ya tiene el store en exclusiva.
func (r *stockPoolRepo) GetForUpdate(ctx context.Context, id string) (*entity.StockPool, error) {
	return r.GetByID(ctx, id)
}

func (r *stockPoolRepo) FindByBatch(_ context.Context, productID, locationID, batchNumber string) (*entity.StockPool, error) {
	for _, p := range r.a.view().pools {
		if p.ProductID == productID && p.LocationID == locationID && p.BatchNumber == batchNumber {
			return clonePool(p), nil
		}
	}
	return nil, nil
}

func (r *stockPoolRepo) Update(ctx context.Context, pool *entity.StockPool) error {
	return r.a.update(ctx, func(st *state) error {
		cur, ok := st.pools[pool.ID]
		if !ok {
			return domain.ErrNotFound
		}
		if cur.Version != pool.Version {
			return domain.ErrConcurrentModification
		}
		next := *clonePool(*pool)
		next.Version++
		st.pools[pool.ID] = next
		pool.Version = next.Version
		return nil
	})
}

func (r *stockPoolRepo) List(_ context.Context, filter repository.PoolFilter) ([]*entity.StockPool, error) {
	out := make([]*entity.StockPool, 0)
	for _, p := range r.a.view().pools {
		if filter.LocationID != "" && p.LocationID != filter.LocationID {
			continue
		}
		if filter.ProductID != "" && p.ProductID != filter.ProductID {
			continue
		}
		out = append(out, clonePool(p))
	}
	sortPools(out)
	return out, nil
}

func (r *stockPoolRepo) ListExpiring(_ context.Context, locationID string, before time.Time) ([]*entity.StockPool, error) {
	out := make([]*entity.StockPool, 0)
	for _, p := range r.a.view().pools {
		if p.LocationID != locationID || p.ExpirationDate == nil || !p.ExpirationDate.Before(before) {
			continue
		}
		if p.Total() == 0 {
			continue
		}
		out = append(out, clonePool(p))
	}
	sortPools(out)
	return out, nil
}

func sortPools(list []*entity.StockPool) {
	sort.Slice(list, func(i, j int) bool {
		if !list[i].CreatedAt.Equal(list[j].CreatedAt) {
			return list[i].CreatedAt.Before(list[j].CreatedAt)
		}
		return list[i].ID < list[j].ID
	})
}
