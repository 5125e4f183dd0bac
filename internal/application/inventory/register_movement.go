package inventory

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/jhoicas/inventario-ledger/internal/domain"
	"github.com/jhoicas/inventario-ledger/internal/domain/entity"
	"github.com/jhoicas/inventario-ledger/internal/domain/inventory"
)

// Entry datos de la entrada del libro que acompaña a un delta.
type Entry struct {
	TransactionID string
	Kind          entity.MovementKind
	Field         entity.PoolField
	ReferenceID   string
	Remark        string
	Actor         string
	At            time.Time
}

// NewEntry entrada con un TransactionID nuevo y la hora actual.
func NewEntry(kind entity.MovementKind, actor string) Entry {
	return Entry{
		TransactionID: uuid.New().String(),
		Kind:          kind,
		Field:         entity.FieldRemaining,
		Actor:         actor,
		At:            time.Now().UTC(),
	}
}

// LockPool bloquea la fila del pool (SELECT FOR UPDATE) dentro de la transacción.
func LockPool(ctx context.Context, r Repos, poolID string) (*entity.StockPool, error) {
	pool, err := r.Pools.GetForUpdate(ctx, poolID)
	if err != nil {
		return nil, err
	}
	if pool == nil {
		return nil, fmt.Errorf("pool %s: %w", poolID, domain.ErrNotFound)
	}
	return pool, nil
}

// ApplyInTx aplica d sobre un pool ya bloqueado, lo persiste y agrega la entrada del libro
// en la misma transacción. Si algún campo quedaría negativo no escribe nada.
func ApplyInTx(ctx context.Context, r Repos, pool *entity.StockPool, d inventory.PoolDelta, e Entry) (*entity.Movement, error) {
	if err := inventory.Apply(pool, d); err != nil {
		return nil, err
	}
	pool.UpdatedAt = e.At
	if err := r.Pools.Update(ctx, pool); err != nil {
		return nil, fmt.Errorf("actualizar pool %s: %w", pool.ID, err)
	}
	field := e.Field
	if !field.Valid() {
		field = entity.FieldRemaining
	}
	qty := d.Net()
	if qty == 0 {
		// traslado interno entre campos: se reporta el delta del campo principal
		qty = d.Of(field)
	}
	mov := &entity.Movement{
		ID:                 uuid.New().String(),
		TransactionID:      e.TransactionID,
		PoolID:             pool.ID,
		Kind:               e.Kind,
		Field:              field,
		Quantity:           qty,
		Balance:            pool.Quantity(field),
		RemainingDelta:     d.Remaining,
		ConsignedDelta:     d.Consigned,
		AgentAssignedDelta: d.AgentAssigned,
		RemainingAfter:     pool.RemainingQuantity,
		ConsignedAfter:     pool.ConsignedQuantity,
		AgentAssignedAfter: pool.AgentAssignedQuantity,
		ReferenceID:        e.ReferenceID,
		Remark:             e.Remark,
		CreatedAt:          e.At,
		CreatedBy:          e.Actor,
	}
	if err := r.Movements.Create(ctx, mov); err != nil {
		return nil, fmt.Errorf("registrar movimiento: %w", err)
	}
	return mov, nil
}

// ReconcileInTx absorbe la edición de una cantidad vendida (oldQty -> newQty) sobre el pool
// bloqueado: una sola entrada de libro de tipo sale (diff > 0) o return (diff < 0).
// Con diff = 0 no toca el pool y devuelve (nil, nil).
func ReconcileInTx(ctx context.Context, r Repos, pool *entity.StockPool, held entity.PoolField, oldQty, newQty int64, e Entry) (*entity.Movement, error) {
	d, err := inventory.Reconcile(*pool, held, oldQty, newQty)
	if err != nil {
		return nil, err
	}
	if d.IsZero() {
		return nil, nil
	}
	e.Kind = entity.MovementSale
	if newQty < oldQty {
		e.Kind = entity.MovementReturn
	}
	e.Field = entity.FieldRemaining
	if d.Of(held) != 0 {
		e.Field = held
	}
	return ApplyInTx(ctx, r, pool, d, e)
}
