package memory

import (
	"context"
	"sort"

	"github.com/jhoicas/inventario-ledger/internal/domain"
	"github.com/jhoicas/inventario-ledger/internal/domain/entity"
	"github.com/jhoicas/inventario-ledger/internal/domain/inventory"
)

type productRepo struct{ a accessor }

func (r *productRepo) Create(ctx context.Context, p *entity.Product) error {
	return r.a.update(ctx, func(st *state) error {
		for _, e := range st.products {
			if e.ID == p.ID || e.SKU == p.SKU {
				return domain.ErrDuplicate
			}
		}
		st.products[p.ID] = *p
		return nil
	})
}

func (r *productRepo) GetByID(_ context.Context, id string) (*entity.Product, error) {
	p, ok := r.a.view().products[id]
	if !ok {
		return nil, nil
	}
	return &p, nil
}

func (r *productRepo) GetBySKU(_ context.Context, sku string) (*entity.Product, error) {
	for _, p := range r.a.view().products {
		if p.SKU == sku {
			pc := p
			return &pc, nil
		}
	}
	return nil, nil
}

func (r *productRepo) List(_ context.Context, limit, offset int) ([]*entity.Product, error) {
	all := make([]*entity.Product, 0)
	for _, p := range r.a.view().products {
		pc := p
		all = append(all, &pc)
	}
	sort.Slice(all, func(i, j int) bool { return all[i].SKU < all[j].SKU })
	return page(all, limit, offset), nil
}

type warehouseRepo struct{ a accessor }

func (r *warehouseRepo) Create(ctx context.Context, w *entity.Warehouse) error {
	return r.a.update(ctx, func(st *state) error {
		if _, ok := st.warehouses[w.ID]; ok {
			return domain.ErrDuplicate
		}
		st.warehouses[w.ID] = *w
		return nil
	})
}

func (r *warehouseRepo) GetByID(_ context.Context, id string) (*entity.Warehouse, error) {
	w, ok := r.a.view().warehouses[id]
	if !ok {
		return nil, nil
	}
	return &w, nil
}

func (r *warehouseRepo) List(_ context.Context, limit, offset int) ([]*entity.Warehouse, error) {
	all := make([]*entity.Warehouse, 0)
	for _, w := range r.a.view().warehouses {
		wc := w
		all = append(all, &wc)
	}
	sort.Slice(all, func(i, j int) bool { return all[i].Name < all[j].Name })
	return page(all, limit, offset), nil
}

func page[T any](all []T, limit, offset int) []T {
	if offset >= len(all) {
		return all[:0]
	}
	all = all[offset:]
	if limit > 0 && limit < len(all) {
		all = all[:limit]
	}
	return all
}

// sequenceRepo calcula el mayor consecutivo entre números de documentos, ventas y SKUs.
type sequenceRepo struct{ a accessor }

func (r *sequenceRepo) MaxNumber(_ context.Context, prefix, scope string) (int64, error) {
	st := r.a.view()
	var highest int64
	consider := func(id string) {
		p, s, n, err := inventory.ParseIdentifier(id)
		if err == nil && p == prefix && s == scope && n > highest {
			highest = n
		}
	}
	for _, a := range st.aggregates {
		consider(a.Number)
	}
	for _, s := range st.sales {
		consider(s.Number)
	}
	for _, p := range st.products {
		consider(p.SKU)
	}
	return highest, nil
}

func (r *sequenceRepo) Reserve(ctx context.Context, prefix, scope string, floor int64) (int64, error) {
	key := prefix + ":" + scope
	var next int64
	err := r.a.update(ctx, func(st *state) error {
		next = max(st.counters[key], floor) + 1
		st.counters[key] = next
		return nil
	})
	if err != nil {
		return 0, err
	}
	return next, nil
}
