package entity

import "time"

// Tipos de movimiento del libro de movimientos.
type MovementKind string

const (
	MovementReceive    MovementKind = "receive"
	MovementConsign    MovementKind = "consign"
	MovementAssign     MovementKind = "assign"
	MovementSale       MovementKind = "sale"
	MovementReturn     MovementKind = "return"
	MovementTransfer   MovementKind = "transfer"
	MovementAdjustment MovementKind = "adjustment"
)

// Movement es una entrada inmutable del libro: un cambio atómico aplicado a un pool.
// Field es el campo principal afectado y Balance su valor resultante; los deltas y
// saldos por campo permiten reconstruir el pool completo en cualquier punto.
type Movement struct {
	ID                 string
	TransactionID      string // agrupa los movimientos de una misma operación
	PoolID             string
	Kind               MovementKind
	Field              PoolField
	Quantity           int64 // delta neto del pool; en traslados entre campos, delta de Field
	Balance            int64 // saldo de Field después del movimiento
	RemainingDelta     int64
	ConsignedDelta     int64
	AgentAssignedDelta int64
	RemainingAfter     int64
	ConsignedAfter     int64
	AgentAssignedAfter int64
	ReferenceID        string // consignación, asignación o venta que originó el movimiento
	Remark             string
	CreatedAt          time.Time
	CreatedBy          string
}
