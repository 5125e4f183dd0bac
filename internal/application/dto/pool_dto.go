package dto

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/inventario-ledger/internal/domain/entity"
)

// CreatePoolRequest body para POST /api/pools.
type CreatePoolRequest struct {
	ProductID       string          `json:"product_id" validate:"required"`
	LocationID      string          `json:"location_id" validate:"required"`
	BatchNumber     string          `json:"batch_number,omitempty"`
	InitialQuantity int64           `json:"initial_quantity" validate:"gte=0"`
	PurchasePrice   decimal.Decimal `json:"purchase_price"`
	Manufacturer    string          `json:"manufacturer,omitempty"`
	ManufactureDate *time.Time      `json:"manufacture_date,omitempty"`
	ExpirationDate  *time.Time      `json:"expiration_date,omitempty"`
	Remark          string          `json:"remark,omitempty"`
}

// ReceiveRequest body para POST /api/pools/:id/receive.
type ReceiveRequest struct {
	Quantity      int64            `json:"quantity" validate:"gt=0"`
	PurchasePrice *decimal.Decimal `json:"purchase_price,omitempty"`
	Remark        string           `json:"remark,omitempty"`
}

// HoldRequest traslado del disponible a consignado o asignado.
type HoldRequest struct {
	Field       entity.PoolField `json:"field" validate:"required,oneof=consigned agent_assigned"`
	Quantity    int64            `json:"quantity" validate:"gt=0"`
	ReferenceID string           `json:"reference_id,omitempty"`
	Remark      string           `json:"remark,omitempty"`
}

// AdjustRequest body para POST /api/pools/:id/adjust (conteo físico).
type AdjustRequest struct {
	Field  entity.PoolField `json:"field" validate:"required,oneof=remaining consigned agent_assigned"`
	Delta  int64            `json:"delta" validate:"ne=0"`
	Remark string           `json:"remark" validate:"required"`
}

// TransferRequest body para POST /api/pools/:id/transfer (entre bodegas).
type TransferRequest struct {
	ToLocationID string `json:"to_location_id" validate:"required"`
	Quantity     int64  `json:"quantity" validate:"gt=0"`
	Remark       string `json:"remark,omitempty"`
}

// PoolResponse pool en respuestas.
type PoolResponse struct {
	ID                    string          `json:"id"`
	ProductID             string          `json:"product_id"`
	LocationID            string          `json:"location_id"`
	BatchNumber           string          `json:"batch_number,omitempty"`
	RemainingQuantity     int64           `json:"remaining_quantity"`
	ConsignedQuantity     int64           `json:"consigned_quantity"`
	AgentAssignedQuantity int64           `json:"agent_assigned_quantity"`
	ReceivedQuantity      int64           `json:"received_quantity"`
	PurchasePrice         decimal.Decimal `json:"purchase_price"`
	Manufacturer          string          `json:"manufacturer,omitempty"`
	ManufactureDate       *time.Time      `json:"manufacture_date,omitempty"`
	ExpirationDate        *time.Time      `json:"expiration_date,omitempty"`
	UpdatedAt             time.Time       `json:"updated_at"`
}

// FromPool convierte la entidad a respuesta.
func FromPool(p *entity.StockPool) PoolResponse {
	return PoolResponse{
		ID:                    p.ID,
		ProductID:             p.ProductID,
		LocationID:            p.LocationID,
		BatchNumber:           p.BatchNumber,
		RemainingQuantity:     p.RemainingQuantity,
		ConsignedQuantity:     p.ConsignedQuantity,
		AgentAssignedQuantity: p.AgentAssignedQuantity,
		ReceivedQuantity:      p.ReceivedQuantity,
		PurchasePrice:         p.PurchasePrice,
		Manufacturer:          p.Manufacturer,
		ManufactureDate:       p.ManufactureDate,
		ExpirationDate:        p.ExpirationDate,
		UpdatedAt:             p.UpdatedAt,
	}
}

// FromPools convierte una lista de pools.
func FromPools(list []*entity.StockPool) []PoolResponse {
	out := make([]PoolResponse, 0, len(list))
	for _, p := range list {
		out = append(out, FromPool(p))
	}
	return out
}

// MovementResponse entrada del libro de movimientos.
type MovementResponse struct {
	ID                 string              `json:"id"`
	TransactionID      string              `json:"transaction_id"`
	PoolID             string              `json:"pool_id"`
	Kind               entity.MovementKind `json:"kind"`
	Field              entity.PoolField    `json:"field"`
	Quantity           int64               `json:"quantity"`
	Balance            int64               `json:"balance"`
	RemainingAfter     int64               `json:"remaining_after"`
	ConsignedAfter     int64               `json:"consigned_after"`
	AgentAssignedAfter int64               `json:"agent_assigned_after"`
	ReferenceID        string              `json:"reference_id,omitempty"`
	Remark             string              `json:"remark,omitempty"`
	CreatedAt          time.Time           `json:"created_at"`
	CreatedBy          string              `json:"created_by,omitempty"`
}

// FromMovements convierte movimientos a respuesta.
func FromMovements(list []*entity.Movement) []MovementResponse {
	out := make([]MovementResponse, 0, len(list))
	for _, m := range list {
		out = append(out, MovementResponse{
			ID:                 m.ID,
			TransactionID:      m.TransactionID,
			PoolID:             m.PoolID,
			Kind:               m.Kind,
			Field:              m.Field,
			Quantity:           m.Quantity,
			Balance:            m.Balance,
			RemainingAfter:     m.RemainingAfter,
			ConsignedAfter:     m.ConsignedAfter,
			AgentAssignedAfter: m.AgentAssignedAfter,
			ReferenceID:        m.ReferenceID,
			Remark:             m.Remark,
			CreatedAt:          m.CreatedAt,
			CreatedBy:          m.CreatedBy,
		})
	}
	return out
}

// StockCardResponse kardex de un pool: saldo inicial y movimientos del rango.
type StockCardResponse struct {
	PoolID               string             `json:"pool_id"`
	OpeningRemaining     int64              `json:"opening_remaining"`
	OpeningConsigned     int64              `json:"opening_consigned"`
	OpeningAgentAssigned int64              `json:"opening_agent_assigned"`
	Movements            []MovementResponse `json:"movements"`
	Pool                 PoolResponse       `json:"pool"`
}
