package inventory

import (
	"context"

	"github.com/jhoicas/inventario-ledger/internal/domain/repository"
)

// Repos repositorios atados a una misma transacción (o al pool de conexiones fuera de ella).
type Repos struct {
	Pools      repository.StockPoolRepository
	Movements  repository.MovementRepository
	Aggregates repository.AggregateRepository
	Sales      repository.SaleRepository
}

// TxRunner ejecuta una función dentro de una transacción, pasando repositorios atados a esa tx.
// Si fn devuelve error se hace Rollback y nada de lo escrito queda visible.
// Garantiza atomicidad entre la mutación del pool y su entrada en el libro.
type TxRunner interface {
	Run(ctx context.Context, fn func(ctx context.Context, r Repos) error) error
}

// NumberGenerator emite identificadores de negocio (TXN-2025-0001).
// Se invoca fuera de la transacción: un número descartado deja un hueco, nunca un duplicado.
type NumberGenerator interface {
	Next(ctx context.Context, prefix, scope string) (string, error)
}
