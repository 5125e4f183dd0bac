package memory

import (
	"context"
	"fmt"

	"github.com/jhoicas/inventario-ledger/internal/domain"
	"github.com/jhoicas/inventario-ledger/internal/domain/entity"
)

type saleRepo struct{ a accessor }

func storeSale(st *state, sale *entity.Sale) {
	row := *sale
	row.Lines = nil
	st.sales[sale.ID] = row
	lines := make([]entity.SaleLine, 0, len(sale.Lines))
	for _, l := range sale.Lines {
		lc := *l
		lc.SaleID = sale.ID
		lines = append(lines, lc)
	}
	st.saleLines[sale.ID] = lines
}

func (r *saleRepo) Create(ctx context.Context, sale *entity.Sale) error {
	return r.a.update(ctx, func(st *state) error {
		if _, ok := st.sales[sale.ID]; ok {
			return domain.ErrDuplicate
		}
		for _, s := range st.sales {
			if s.Number == sale.Number {
				return fmt.Errorf("número %s ya emitido: %w", sale.Number, domain.ErrConcurrentModification)
			}
		}
		storeSale(st, sale)
		return nil
	})
}

func (r *saleRepo) GetByID(_ context.Context, id string) (*entity.Sale, error) {
	st := r.a.view()
	row, ok := st.sales[id]
	if !ok {
		return nil, nil
	}
	sale := row
	for _, l := range st.saleLines[id] {
		lc := l
		sale.Lines = append(sale.Lines, &lc)
	}
	return &sale, nil
}

func (r *saleRepo) GetForUpdate(ctx context.Context, id string) (*entity.Sale, error) {
	return r.GetByID(ctx, id)
}

func (r *saleRepo) Update(ctx context.Context, sale *entity.Sale) error {
	return r.a.update(ctx, func(st *state) error {
		if _, ok := st.sales[sale.ID]; !ok {
			return domain.ErrNotFound
		}
		storeSale(st, sale)
		return nil
	})
}
