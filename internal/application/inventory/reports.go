package inventory

import (
	"context"
	"fmt"
	"sort"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/jhoicas/inventario-ledger/internal/domain"
	"github.com/jhoicas/inventario-ledger/internal/domain/entity"
)

// StockCard kardex de un pool en un rango: saldo de apertura y movimientos en orden cronológico.
type StockCard struct {
	Pool                 *entity.StockPool
	OpeningRemaining     int64
	OpeningConsigned     int64
	OpeningAgentAssigned int64
	Movements            []*entity.Movement
}

// ListMovements movimientos del pool en orden ascendente; from/to opcionales.
func (uc *PoolUseCase) ListMovements(ctx context.Context, poolID string, from, to *time.Time) ([]*entity.Movement, error) {
	if from != nil && to != nil && to.Before(*from) {
		return nil, fmt.Errorf("rango de fechas: %w", domain.ErrInvalidInput)
	}
	if _, err := uc.GetPool(ctx, poolID); err != nil {
		return nil, err
	}
	return uc.repos.Movements.ListByPool(ctx, poolID, from, to)
}

// StockCard arma el kardex: el saldo de apertura sale del último movimiento anterior a from
// (cada entrada guarda el estado completo del pool después del cambio).
// Pool, apertura y movimientos se consultan en paralelo.
func (uc *PoolUseCase) StockCard(ctx context.Context, poolID string, from, to time.Time) (*StockCard, error) {
	if to.Before(from) {
		return nil, fmt.Errorf("rango de fechas: %w", domain.ErrInvalidInput)
	}
	card := &StockCard{}
	var opening *entity.Movement

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		pool, err := uc.GetPool(gctx, poolID)
		card.Pool = pool
		return err
	})
	g.Go(func() error {
		m, err := uc.repos.Movements.LastBefore(gctx, poolID, from)
		opening = m
		return err
	})
	g.Go(func() error {
		list, err := uc.repos.Movements.ListByPool(gctx, poolID, &from, &to)
		card.Movements = list
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}
	if opening != nil {
		card.OpeningRemaining = opening.RemainingAfter
		card.OpeningConsigned = opening.ConsignedAfter
		card.OpeningAgentAssigned = opening.AgentAssignedAfter
	}
	return card, nil
}

// ExpiringPools pools de la bodega con unidades que vencen antes de before, el más próximo primero.
func (uc *PoolUseCase) ExpiringPools(ctx context.Context, locationID string, before time.Time) ([]*entity.StockPool, error) {
	if locationID == "" {
		return nil, fmt.Errorf("location_id requerido: %w", domain.ErrInvalidInput)
	}
	list, err := uc.repos.Pools.ListExpiring(ctx, locationID, before)
	if err != nil {
		return nil, err
	}
	out := make([]*entity.StockPool, 0, len(list))
	for _, p := range list {
		if p.ExpirationDate == nil || !p.ExpirationDate.Before(before) || p.Total() == 0 {
			continue
		}
		out = append(out, p)
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].ExpirationDate.Before(*out[j].ExpirationDate)
	})
	return out, nil
}
