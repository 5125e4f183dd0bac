package repository

import (
	"context"

	"github.com/jhoicas/inventario-ledger/internal/domain/entity"
)

// AggregateFilter filtros para listar consignaciones y asignaciones.
type AggregateFilter struct {
	Kind           entity.AggregateKind
	CounterpartyID string
	Status         entity.AggregateStatus
}

// AggregateRepository persistencia de consignaciones/asignaciones con sus líneas y abonos.
// GetByID/GetForUpdate devuelven (nil, nil) si no existe.
type AggregateRepository interface {
	Create(ctx context.Context, agg *entity.Aggregate) error
	GetByID(ctx context.Context, id string) (*entity.Aggregate, error)
	GetForUpdate(ctx context.Context, id string) (*entity.Aggregate, error)
	// Update persiste cabecera e inserta/actualiza líneas; control de versión optimista.
	Update(ctx context.Context, agg *entity.Aggregate) error
	List(ctx context.Context, filter AggregateFilter) ([]*entity.Aggregate, error)
	CreatePayment(ctx context.Context, payment *entity.Payment) error
	ListPayments(ctx context.Context, aggregateID string) ([]*entity.Payment, error)
}
