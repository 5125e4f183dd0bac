package repository

import (
	"context"
	"time"

	"github.com/jhoicas/inventario-ledger/internal/domain/entity"
)

// PoolFilter filtros para listar pools de una bodega.
type PoolFilter struct {
	LocationID string
	ProductID  string // opcional
}

// StockPoolRepository define el puerto de persistencia para los pools de stock.
// GetByID/GetForUpdate/FindByBatch devuelven (nil, nil) si no existe.
type StockPoolRepository interface {
	Create(ctx context.Context, pool *entity.StockPool) error
	GetByID(ctx context.Context, id string) (*entity.StockPool, error)
	// GetForUpdate bloquea la fila del pool hasta el fin de la transacción (SELECT FOR UPDATE).
	GetForUpdate(ctx context.Context, id string) (*entity.StockPool, error)
	FindByBatch(ctx context.Context, productID, locationID, batchNumber string) (*entity.StockPool, error)
	// Update persiste las cantidades; falla con ErrConcurrentModification si Version cambió.
	Update(ctx context.Context, pool *entity.StockPool) error
	List(ctx context.Context, filter PoolFilter) ([]*entity.StockPool, error)
	ListExpiring(ctx context.Context, locationID string, before time.Time) ([]*entity.StockPool, error)
}
