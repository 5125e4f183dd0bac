package dto

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/inventario-ledger/internal/domain/entity"
)

// AggregateItemRequest lote y cantidad a entregar a la contraparte.
type AggregateItemRequest struct {
	PoolID    string          `json:"pool_id" validate:"required"`
	Quantity  int64           `json:"quantity" validate:"gt=0"`
	UnitPrice decimal.Decimal `json:"unit_price"`
}

// PeriodRequest mes/año de una consignación.
type PeriodRequest struct {
	Month int `json:"month" validate:"min=1,max=12"`
	Year  int `json:"year" validate:"min=2000,max=9999"`
}

// CreateAggregateRequest body para POST /api/consignments y /api/agent-assignments.
type CreateAggregateRequest struct {
	Kind           entity.AggregateKind   `json:"-" validate:"required,oneof=consignment agent"`
	CounterpartyID string                 `json:"counterparty_id" validate:"required"`
	LocationID     string                 `json:"location_id" validate:"required"`
	Period         *PeriodRequest         `json:"period,omitempty"`
	Notes          string                 `json:"notes,omitempty"`
	Items          []AggregateItemRequest `json:"items" validate:"required,min=1,dive"`
}

// AddItemsRequest body para POST /api/aggregates/:id/items.
type AddItemsRequest struct {
	Items []AggregateItemRequest `json:"items" validate:"required,min=1,dive"`
}

// QuantityItemRequest lote y cantidad vendida o devuelta.
type QuantityItemRequest struct {
	PoolID   string `json:"pool_id" validate:"required"`
	Quantity int64  `json:"quantity" validate:"gt=0"`
}

// SaleItemsRequest body para POST /api/aggregates/:id/sales y /returns.
type SaleItemsRequest struct {
	Items  []QuantityItemRequest `json:"items" validate:"required,min=1,dive"`
	Remark string                `json:"remark,omitempty"`
}

// PaymentRequest body para POST /api/aggregates/:id/payments.
type PaymentRequest struct {
	Amount decimal.Decimal `json:"amount"`
	Method string          `json:"method" validate:"required"`
}

// EditQuantityRequest corrección de una cantidad vendida ya registrada.
type EditQuantityRequest struct {
	NewQuantity int64  `json:"new_quantity" validate:"gte=0"`
	Remark      string `json:"remark,omitempty"`
}

// AggregateLineResponse línea en respuestas.
type AggregateLineResponse struct {
	ID               string          `json:"id"`
	PoolID           string          `json:"pool_id"`
	ProductID        string          `json:"product_id"`
	PreviousBalance  int64           `json:"previous_balance"`
	QuantityAdded    int64           `json:"quantity_added"`
	QuantitySold     int64           `json:"quantity_sold"`
	QuantityReturned int64           `json:"quantity_returned"`
	CurrentBalance   int64           `json:"current_balance"`
	UnitPrice        decimal.Decimal `json:"unit_price"`
	TotalValue       decimal.Decimal `json:"total_value"`
}

// AggregateResponse consignación/asignación con sus líneas.
type AggregateResponse struct {
	ID             string                  `json:"id"`
	Number         string                  `json:"number"`
	Kind           entity.AggregateKind    `json:"kind"`
	CounterpartyID string                  `json:"counterparty_id"`
	LocationID     string                  `json:"location_id"`
	Period         *PeriodRequest          `json:"period,omitempty"`
	Status         entity.AggregateStatus  `json:"status"`
	TotalValue     decimal.Decimal         `json:"total_value"`
	TotalSold      decimal.Decimal         `json:"total_sold"`
	TotalPaid      decimal.Decimal         `json:"total_paid"`
	BalanceDue     decimal.Decimal         `json:"balance_due"`
	Notes          string                  `json:"notes,omitempty"`
	SaleID         string                  `json:"sale_id,omitempty"`
	Lines          []AggregateLineResponse `json:"lines"`
	CreatedAt      time.Time               `json:"created_at"`
	ClosedAt       *time.Time              `json:"closed_at,omitempty"`
}

// FromAggregate convierte la entidad a respuesta.
func FromAggregate(a *entity.Aggregate) AggregateResponse {
	resp := AggregateResponse{
		ID:             a.ID,
		Number:         a.Number,
		Kind:           a.Kind,
		CounterpartyID: a.CounterpartyID,
		LocationID:     a.LocationID,
		Status:         a.Status,
		TotalValue:     a.TotalValue,
		TotalSold:      a.TotalSold,
		TotalPaid:      a.TotalPaid,
		BalanceDue:     a.BalanceDue,
		Notes:          a.Notes,
		SaleID:         a.SaleID,
		CreatedAt:      a.CreatedAt,
		ClosedAt:       a.ClosedAt,
		Lines:          make([]AggregateLineResponse, 0, len(a.Lines)),
	}
	if a.Period != nil {
		resp.Period = &PeriodRequest{Month: a.Period.Month, Year: a.Period.Year}
	}
	for _, l := range a.Lines {
		resp.Lines = append(resp.Lines, AggregateLineResponse{
			ID:               l.ID,
			PoolID:           l.PoolID,
			ProductID:        l.ProductID,
			PreviousBalance:  l.PreviousBalance,
			QuantityAdded:    l.QuantityAdded,
			QuantitySold:     l.QuantitySold,
			QuantityReturned: l.QuantityReturned,
			CurrentBalance:   l.CurrentBalance,
			UnitPrice:        l.UnitPrice,
			TotalValue:       l.TotalValue,
		})
	}
	return resp
}

// FromAggregates convierte una lista.
func FromAggregates(list []*entity.Aggregate) []AggregateResponse {
	out := make([]AggregateResponse, 0, len(list))
	for _, a := range list {
		out = append(out, FromAggregate(a))
	}
	return out
}

// PaymentResponse abono registrado.
type PaymentResponse struct {
	ID          string          `json:"id"`
	AggregateID string          `json:"aggregate_id"`
	Amount      decimal.Decimal `json:"amount"`
	Method      string          `json:"method"`
	CreatedAt   time.Time       `json:"created_at"`
	CreatedBy   string          `json:"created_by,omitempty"`
}

// FromPayments convierte abonos a respuesta.
func FromPayments(list []*entity.Payment) []PaymentResponse {
	out := make([]PaymentResponse, 0, len(list))
	for _, p := range list {
		out = append(out, PaymentResponse{
			ID:          p.ID,
			AggregateID: p.AggregateID,
			Amount:      p.Amount,
			Method:      p.Method,
			CreatedAt:   p.CreatedAt,
			CreatedBy:   p.CreatedBy,
		})
	}
	return out
}
