package dto

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/inventario-ledger/internal/domain/entity"
)

// DirectSaleItemRequest línea de una venta directa.
type DirectSaleItemRequest struct {
	PoolID    string           `json:"pool_id" validate:"required"`
	Source    entity.PoolField `json:"source" validate:"required,oneof=remaining consigned agent_assigned"`
	Quantity  int64            `json:"quantity" validate:"gt=0"`
	UnitPrice decimal.Decimal  `json:"unit_price"`
}

// DirectSaleRequest body para POST /api/sales.
type DirectSaleRequest struct {
	CounterpartyID string                  `json:"counterparty_id" validate:"required"`
	PaymentType    string                  `json:"payment_type" validate:"required,oneof=cash credit"`
	Items          []DirectSaleItemRequest `json:"items" validate:"required,min=1,dive"`
}

// SaleLineResponse línea de venta en respuestas.
type SaleLineResponse struct {
	ID              string           `json:"id"`
	PoolID          string           `json:"pool_id"`
	AggregateLineID string           `json:"aggregate_line_id,omitempty"`
	Source          entity.PoolField `json:"source"`
	Quantity        int64            `json:"quantity"`
	UnitPrice       decimal.Decimal  `json:"unit_price"`
	LineTotal       decimal.Decimal  `json:"line_total"`
}

// SaleResponse venta en respuestas.
type SaleResponse struct {
	ID             string             `json:"id"`
	Number         string             `json:"number"`
	CounterpartyID string             `json:"counterparty_id"`
	AggregateID    string             `json:"aggregate_id,omitempty"`
	PaymentType    string             `json:"payment_type"`
	PaymentStatus  string             `json:"payment_status"`
	Total          decimal.Decimal    `json:"total"`
	Lines          []SaleLineResponse `json:"lines"`
	CreatedAt      time.Time          `json:"created_at"`
}

// FromSale convierte la entidad a respuesta.
func FromSale(s *entity.Sale) SaleResponse {
	resp := SaleResponse{
		ID:             s.ID,
		Number:         s.Number,
		CounterpartyID: s.CounterpartyID,
		AggregateID:    s.AggregateID,
		PaymentType:    s.PaymentType,
		PaymentStatus:  s.PaymentStatus,
		Total:          s.Total,
		CreatedAt:      s.CreatedAt,
		Lines:          make([]SaleLineResponse, 0, len(s.Lines)),
	}
	for _, l := range s.Lines {
		resp.Lines = append(resp.Lines, SaleLineResponse{
			ID:              l.ID,
			PoolID:          l.PoolID,
			AggregateLineID: l.AggregateLineID,
			Source:          l.Source,
			Quantity:        l.Quantity,
			UnitPrice:       l.UnitPrice,
			LineTotal:       l.LineTotal,
		})
	}
	return resp
}

// NextSequenceRequest body para POST /api/sequences/next.
type NextSequenceRequest struct {
	Prefix string `json:"prefix" validate:"required,alphanum,uppercase"`
	Scope  string `json:"scope" validate:"required,alphanum"`
}

// NextSequenceResponse identificador generado.
type NextSequenceResponse struct {
	Identifier string `json:"identifier"`
}
