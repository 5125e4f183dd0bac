package memory

import (
	"context"
	"fmt"
	"sort"

	"github.com/jhoicas/inventario-ledger/internal/domain"
	"github.com/jhoicas/inventario-ledger/internal/domain/entity"
	"github.com/jhoicas/inventario-ledger/internal/domain/repository"
)

type aggregateRepo struct{ a accessor }

func storeAggregate(st *state, agg *entity.Aggregate) {
	row := *agg
	row.Lines = nil
	if agg.Period != nil {
		p := *agg.Period
		row.Period = &p
	}
	row.ClosedAt = cloneTime(agg.ClosedAt)
	st.aggregates[agg.ID] = row
	lines := make([]entity.AggregateLine, 0, len(agg.Lines))
	for _, l := range agg.Lines {
		lc := *l
		lc.AggregateID = agg.ID
		lines = append(lines, lc)
	}
	st.lines[agg.ID] = lines
}

func loadAggregate(st *state, id string) *entity.Aggregate {
	row, ok := st.aggregates[id]
	if !ok {
		return nil
	}
	agg := row
	if row.Period != nil {
		p := *row.Period
		agg.Period = &p
	}
	agg.ClosedAt = cloneTime(row.ClosedAt)
	for _, l := range st.lines[id] {
		lc := l
		agg.Lines = append(agg.Lines, &lc)
	}
	return &agg
}

func (r *aggregateRepo) Create(ctx context.Context, agg *entity.Aggregate) error {
	return r.a.update(ctx, func(st *state) error {
		if _, ok := st.aggregates[agg.ID]; ok {
			return domain.ErrDuplicate
		}
		for _, a := range st.aggregates {
			if a.Number == agg.Number {
				return fmt.Errorf("número %s ya emitido: %w", agg.Number, domain.ErrConcurrentModification)
			}
		}
		storeAggregate(st, agg)
		return nil
	})
}

func (r *aggregateRepo) GetByID(_ context.Context, id string) (*entity.Aggregate, error) {
	return loadAggregate(r.a.view(), id), nil
}

func (r *aggregateRepo) GetForUpdate(ctx context.Context, id string) (*entity.Aggregate, error) {
	return r.GetByID(ctx, id)
}

func (r *aggregateRepo) Update(ctx context.Context, agg *entity.Aggregate) error {
	return r.a.update(ctx, func(st *state) error {
		cur, ok := st.aggregates[agg.ID]
		if !ok {
			return domain.ErrNotFound
		}
		if cur.Version != agg.Version {
			return domain.ErrConcurrentModification
		}
		agg.Version++
		storeAggregate(st, agg)
		return nil
	})
}

func (r *aggregateRepo) List(_ context.Context, f repository.AggregateFilter) ([]*entity.Aggregate, error) {
	st := r.a.view()
	out := make([]*entity.Aggregate, 0)
	for id, a := range st.aggregates {
		if f.Kind != "" && a.Kind != f.Kind {
			continue
		}
		if f.CounterpartyID != "" && a.CounterpartyID != f.CounterpartyID {
			continue
		}
		if f.Status != "" && a.Status != f.Status {
			continue
		}
		out = append(out, loadAggregate(st, id))
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.Before(out[j].CreatedAt)
		}
		return out[i].Number < out[j].Number
	})
	return out, nil
}

func (r *aggregateRepo) CreatePayment(ctx context.Context, p *entity.Payment) error {
	return r.a.update(ctx, func(st *state) error {
		if _, ok := st.aggregates[p.AggregateID]; !ok {
			return domain.ErrNotFound
		}
		st.payments[p.AggregateID] = append(st.payments[p.AggregateID], *p)
		return nil
	})
}

func (r *aggregateRepo) ListPayments(_ context.Context, aggregateID string) ([]*entity.Payment, error) {
	list := r.a.view().payments[aggregateID]
	out := make([]*entity.Payment, 0, len(list))
	for _, p := range list {
		pc := p
		out = append(out, &pc)
	}
	return out, nil
}
