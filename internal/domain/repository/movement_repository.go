package repository

import (
	"context"
	"time"

	"github.com/jhoicas/inventario-ledger/internal/domain/entity"
)

// MovementRepository libro de movimientos: solo inserción y lectura, sin update ni delete.
type MovementRepository interface {
	Create(ctx context.Context, movement *entity.Movement) error
	// ListByPool devuelve los movimientos del pool en orden cronológico ascendente.
	ListByPool(ctx context.Context, poolID string, from, to *time.Time) ([]*entity.Movement, error)
	// LastBefore devuelve el último movimiento anterior a t, o nil.
	LastBefore(ctx context.Context, poolID string, t time.Time) (*entity.Movement, error)
}
