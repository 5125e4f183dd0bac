package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// PoolField identifica una de las tres cantidades de un pool.
type PoolField string

const (
	FieldRemaining     PoolField = "remaining"      // disponible para venta en la bodega
	FieldConsigned     PoolField = "consigned"      // en poder de un cliente en consignación
	FieldAgentAssigned PoolField = "agent_assigned" // en poder de un agente de campo
)

// Valid indica si f es uno de los campos conocidos.
func (f PoolField) Valid() bool {
	switch f {
	case FieldRemaining, FieldConsigned, FieldAgentAssigned:
		return true
	}
	return false
}

// StockPool representa el stock de un lote de producto en una bodega (unidad de contención).
// Las tres cantidades nunca son negativas. Nunca se elimina, solo se lleva a cero.
type StockPool struct {
	ID                    string
	ProductID             string
	LocationID            string
	BatchNumber           string // opcional
	RemainingQuantity     int64
	ConsignedQuantity     int64
	AgentAssignedQuantity int64
	ReceivedQuantity      int64 // acumulado histórico de entradas
	PurchasePrice         decimal.Decimal
	Manufacturer          string
	ManufactureDate       *time.Time
	ExpirationDate        *time.Time
	Version               int64
	CreatedAt             time.Time
	UpdatedAt             time.Time
}

// Quantity devuelve la cantidad del campo indicado.
func (p *StockPool) Quantity(f PoolField) int64 {
	switch f {
	case FieldConsigned:
		return p.ConsignedQuantity
	case FieldAgentAssigned:
		return p.AgentAssignedQuantity
	default:
		return p.RemainingQuantity
	}
}

// Total suma las tres cantidades del pool.
func (p *StockPool) Total() int64 {
	return p.RemainingQuantity + p.ConsignedQuantity + p.AgentAssignedQuantity
}
