package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// AggregateKind distingue consignaciones de asignaciones a agentes.
type AggregateKind string

const (
	AggregateConsignment AggregateKind = "consignment"
	AggregateAgent       AggregateKind = "agent"
)

// HeldField devuelve el campo del pool que retiene la mercancía de este tipo de documento.
func (k AggregateKind) HeldField() PoolField {
	if k == AggregateAgent {
		return FieldAgentAssigned
	}
	return FieldConsigned
}

// Estados del ciclo de vida: draft -> active -> closed (terminal).
type AggregateStatus string

const (
	StatusDraft  AggregateStatus = "draft"
	StatusActive AggregateStatus = "active"
	StatusClosed AggregateStatus = "closed"
)

// Period mes/año de una consignación.
type Period struct {
	Month int
	Year  int
}

// Aggregate cabecera de una consignación o asignación a agente.
type Aggregate struct {
	ID             string
	Number         string // CSG-2025-0001, AGT-2025-0001
	Kind           AggregateKind
	CounterpartyID string
	LocationID     string
	Period         *Period // solo consignaciones
	Status         AggregateStatus
	TotalValue     decimal.Decimal // valoración de lo que sigue en poder de la contraparte
	TotalSold      decimal.Decimal
	TotalPaid      decimal.Decimal
	BalanceDue     decimal.Decimal
	Notes          string
	SaleID         string
	Lines          []*AggregateLine
	Version        int64
	CreatedAt      time.Time
	UpdatedAt      time.Time
	ClosedAt       *time.Time
	CreatedBy      string
}

// LineByPool devuelve la línea que referencia el pool, o nil.
func (a *Aggregate) LineByPool(poolID string) *AggregateLine {
	for _, l := range a.Lines {
		if l.PoolID == poolID {
			return l
		}
	}
	return nil
}

// Line devuelve la línea por ID, o nil.
func (a *Aggregate) Line(id string) *AggregateLine {
	for _, l := range a.Lines {
		if l.ID == id {
			return l
		}
	}
	return nil
}

// AggregateLine una línea por lote (pool) asignado al documento.
// CurrentBalance = PreviousBalance + QuantityAdded - QuantitySold - QuantityReturned, siempre >= 0.
type AggregateLine struct {
	ID               string
	AggregateID      string
	PoolID           string
	ProductID        string
	PreviousBalance  int64
	QuantityAdded    int64
	QuantitySold     int64
	QuantityReturned int64
	CurrentBalance   int64
	UnitPrice        decimal.Decimal
	TotalValue       decimal.Decimal // CurrentBalance * UnitPrice
}

// Balance calcula el saldo actual a partir de los contadores de la línea.
func (l *AggregateLine) Balance() int64 {
	return l.PreviousBalance + l.QuantityAdded - l.QuantitySold - l.QuantityReturned
}
