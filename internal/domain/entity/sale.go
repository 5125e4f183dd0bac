package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Tipos y estados de pago de una venta.
const (
	PaymentTypeCash        = "cash"
	PaymentTypeCredit      = "credit"
	PaymentTypeConsignment = "consignment"
	PaymentTypeAgent       = "agent"

	PaymentStatusUnpaid  = "unpaid"
	PaymentStatusPartial = "partial"
	PaymentStatusPaid    = "paid"
)

// Sale cabecera de un registro de venta. Nunca se elimina.
type Sale struct {
	ID             string
	Number         string // TXN-2025-0001
	CounterpartyID string
	AggregateID    string // vacío en ventas directas
	PaymentType    string
	PaymentStatus  string
	Total          decimal.Decimal
	Lines          []*SaleLine
	CreatedAt      time.Time
	UpdatedAt      time.Time
	CreatedBy      string
}

// Line devuelve la línea por ID, o nil.
func (s *Sale) Line(id string) *SaleLine {
	for _, l := range s.Lines {
		if l.ID == id {
			return l
		}
	}
	return nil
}

// LineByAggregateLine devuelve la línea originada en la línea de documento indicada, o nil.
func (s *Sale) LineByAggregateLine(aggregateLineID string) *SaleLine {
	for _, l := range s.Lines {
		if l.AggregateLineID == aggregateLineID {
			return l
		}
	}
	return nil
}

// SaleLine línea de venta: cantidad tomada de un pool.
type SaleLine struct {
	ID              string
	SaleID          string
	PoolID          string
	AggregateLineID string
	Source          PoolField // campo del pool del que se descuenta primero
	Quantity        int64
	UnitPrice       decimal.Decimal
	LineTotal       decimal.Decimal
}

// Payment abono aplicado a una consignación o asignación.
type Payment struct {
	ID          string
	AggregateID string
	Amount      decimal.Decimal
	Method      string
	CreatedAt   time.Time
	CreatedBy   string
}
