package inventory

import (
	"github.com/jhoicas/inventario-ledger/internal/domain"
	"github.com/jhoicas/inventario-ledger/internal/domain/entity"
)

// PoolDelta cambios con signo sobre las tres cantidades de un pool.
type PoolDelta struct {
	Remaining     int64
	Consigned     int64
	AgentAssigned int64
}

// IsZero indica que el delta no modifica ningún campo.
func (d PoolDelta) IsZero() bool {
	return d.Remaining == 0 && d.Consigned == 0 && d.AgentAssigned == 0
}

// Net cambio neto en el total del pool.
func (d PoolDelta) Net() int64 {
	return d.Remaining + d.Consigned + d.AgentAssigned
}

// Add suma dos deltas.
func (d PoolDelta) Add(o PoolDelta) PoolDelta {
	return PoolDelta{
		Remaining:     d.Remaining + o.Remaining,
		Consigned:     d.Consigned + o.Consigned,
		AgentAssigned: d.AgentAssigned + o.AgentAssigned,
	}
}

// Of devuelve el componente del delta para el campo indicado.
func (d PoolDelta) Of(f entity.PoolField) int64 {
	switch f {
	case entity.FieldConsigned:
		return d.Consigned
	case entity.FieldAgentAssigned:
		return d.AgentAssigned
	default:
		return d.Remaining
	}
}

func deltaFor(f entity.PoolField, q int64) PoolDelta {
	switch f {
	case entity.FieldConsigned:
		return PoolDelta{Consigned: q}
	case entity.FieldAgentAssigned:
		return PoolDelta{AgentAssigned: q}
	default:
		return PoolDelta{Remaining: q}
	}
}

// Apply aplica d sobre el pool. Si algún campo quedaría negativo devuelve
// ErrNegativeBalance sin modificar nada.
func Apply(pool *entity.StockPool, d PoolDelta) error {
	remaining := pool.RemainingQuantity + d.Remaining
	consigned := pool.ConsignedQuantity + d.Consigned
	assigned := pool.AgentAssignedQuantity + d.AgentAssigned
	if remaining < 0 || consigned < 0 || assigned < 0 {
		return domain.ErrNegativeBalance
	}
	pool.RemainingQuantity = remaining
	pool.ConsignedQuantity = consigned
	pool.AgentAssignedQuantity = assigned
	return nil
}

// Receive calcula la entrada de quantity al disponible.
func Receive(pool *entity.StockPool, quantity int64) (PoolDelta, error) {
	if quantity <= 0 {
		return PoolDelta{}, domain.ErrInvalidQuantity
	}
	return PoolDelta{Remaining: quantity}, nil
}

// TransferToHeld mueve quantity del disponible al campo retenido (consignado o asignado).
func TransferToHeld(pool *entity.StockPool, held entity.PoolField, quantity int64) (PoolDelta, error) {
	if held != entity.FieldConsigned && held != entity.FieldAgentAssigned {
		return PoolDelta{}, domain.ErrInvalidInput
	}
	if quantity <= 0 {
		return PoolDelta{}, domain.ErrInvalidQuantity
	}
	if pool.RemainingQuantity < quantity {
		return PoolDelta{}, domain.ErrInsufficientStock
	}
	return deltaFor(held, quantity).Add(PoolDelta{Remaining: -quantity}), nil
}

// Adjust primitiva interna: delta con signo sobre un campo. Falla con ErrNegativeBalance
// si el resultado sería negativo.
func Adjust(pool *entity.StockPool, field entity.PoolField, delta int64) (PoolDelta, error) {
	if !field.Valid() {
		return PoolDelta{}, domain.ErrInvalidInput
	}
	if pool.Quantity(field)+delta < 0 {
		return PoolDelta{}, domain.ErrNegativeBalance
	}
	return deltaFor(field, delta), nil
}

// Release devuelve al disponible hasta quantity unidades del campo retenido.
// Solo se libera lo que el campo tiene: las unidades que ya volvieron al disponible
// por una corrección de venta no se acreditan dos veces.
func Release(pool *entity.StockPool, held entity.PoolField, quantity int64) (PoolDelta, error) {
	if held != entity.FieldConsigned && held != entity.FieldAgentAssigned {
		return PoolDelta{}, domain.ErrInvalidInput
	}
	if quantity <= 0 {
		return PoolDelta{}, domain.ErrInvalidQuantity
	}
	released := min(pool.Quantity(held), quantity)
	return deltaFor(held, -released).Add(PoolDelta{Remaining: released}), nil
}
