package inventory

import (
	"github.com/jhoicas/inventario-ledger/internal/domain"
	"github.com/jhoicas/inventario-ledger/internal/domain/entity"
)

// Reconcile calcula cómo se absorbe la edición de una cantidad vendida (oldQty -> newQty)
// sobre el pool. No modifica el pool; el resultado se aplica con Apply.
//
// diff > 0: se descuenta primero del campo retenido (held) y el resto del disponible.
// diff < 0: se acredita solo el disponible; el campo retenido nunca se incrementa.
// diff = 0: delta vacío.
//
// held puede ser FieldRemaining para ventas tomadas directamente del disponible.
func Reconcile(pool entity.StockPool, held entity.PoolField, oldQty, newQty int64) (PoolDelta, error) {
	if !held.Valid() {
		return PoolDelta{}, domain.ErrInvalidInput
	}
	if oldQty < 0 || newQty < 0 {
		return PoolDelta{}, domain.ErrInvalidQuantity
	}
	diff := newQty - oldQty
	switch {
	case diff > 0:
		needed := diff
		var d PoolDelta
		if held != entity.FieldRemaining {
			take := min(pool.Quantity(held), needed)
			d = deltaFor(held, -take)
			needed -= take
		}
		if needed > 0 {
			if pool.RemainingQuantity < needed {
				return PoolDelta{}, domain.ErrInsufficientStock
			}
			d.Remaining -= needed
		}
		return d, nil
	case diff < 0:
		return PoolDelta{Remaining: -diff}, nil
	}
	return PoolDelta{}, nil
}
