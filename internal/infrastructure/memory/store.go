// Package memory almacenamiento embebido con el mismo contrato transaccional que Postgres.
// Las transacciones se serializan con un mutex del store; cada una trabaja sobre una copia
// del estado que reemplaza al vigente solo en el Commit. Las lecturas fuera de tx ven
// siempre un estado confirmado.
//
// Pensado para tests y ejecución local: la copia de los mapas crece con el catálogo y los
// documentos. El ledger no se copia (ver clone).
package memory

import (
	"context"
	"sync"

	"github.com/jhoicas/inventario-ledger/internal/application/inventory"
	"github.com/jhoicas/inventario-ledger/internal/domain/entity"
	"github.com/jhoicas/inventario-ledger/internal/domain/repository"
)

type state struct {
	pools      map[string]entity.StockPool
	movements  []entity.Movement
	aggregates map[string]entity.Aggregate
	lines      map[string][]entity.AggregateLine // por aggregate_id
	payments   map[string][]entity.Payment       // por aggregate_id
	sales      map[string]entity.Sale
	saleLines  map[string][]entity.SaleLine // por sale_id
	products   map[string]entity.Product
	warehouses map[string]entity.Warehouse
	counters   map[string]int64 // último consecutivo reservado por prefijo:ámbito
}

func newState() *state {
	return &state{
		pools:      map[string]entity.StockPool{},
		aggregates: map[string]entity.Aggregate{},
		lines:      map[string][]entity.AggregateLine{},
		payments:   map[string][]entity.Payment{},
		sales:      map[string]entity.Sale{},
		saleLines:  map[string][]entity.SaleLine{},
		products:   map[string]entity.Product{},
		warehouses: map[string]entity.Warehouse{},
		counters:   map[string]int64{},
	}
}

// clone copia el estado; las entidades se guardan por valor y los slices se copian,
// así la tx nunca toca memoria del estado confirmado. El ledger es solo de inserción: la
// copia comparte el arreglo y agrega después del largo confirmado, posiciones que ningún
// lector del estado confirmado alcanza. Una tx abortada deja basura ahí que la siguiente
// sobrescribe.
func (s *state) clone() *state {
	c := newState()
	for k, v := range s.pools {
		c.pools[k] = v
	}
	c.movements = s.movements
	for k, v := range s.aggregates {
		c.aggregates[k] = v
	}
	for k, v := range s.lines {
		c.lines[k] = append([]entity.AggregateLine(nil), v...)
	}
	for k, v := range s.payments {
		c.payments[k] = append([]entity.Payment(nil), v...)
	}
	for k, v := range s.sales {
		c.sales[k] = v
	}
	for k, v := range s.saleLines {
		c.saleLines[k] = append([]entity.SaleLine(nil), v...)
	}
	for k, v := range s.products {
		c.products[k] = v
	}
	for k, v := range s.warehouses {
		c.warehouses[k] = v
	}
	for k, v := range s.counters {
		c.counters[k] = v
	}
	return c
}

// Store base de datos en memoria. El valor cero no es usable; usar New.
type Store struct {
	txMu sync.Mutex // serializa escrituras

	mu      sync.RWMutex // protege el puntero current
	current *state
}

// New crea un store vacío.
func New() *Store {
	return &Store{current: newState()}
}

func (s *Store) snapshot() *state {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.current
}

// write ejecuta fn sobre una copia del estado y la confirma si fn no falla.
func (s *Store) write(ctx context.Context, fn func(st *state) error) error {
	s.txMu.Lock()
	defer s.txMu.Unlock()
	if err := ctx.Err(); err != nil {
		return err
	}
	staged := s.snapshot().clone()
	if err := fn(staged); err != nil {
		return err
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	s.current = staged
	s.mu.Unlock()
	return nil
}

// accessor resuelve el estado sobre el que opera un repositorio: dentro de una tx es la
// copia en curso; fuera, el último estado confirmado (y cada escritura es su propia tx).
type accessor struct {
	view   func() *state
	update func(ctx context.Context, fn func(st *state) error) error
}

func (s *Store) committed() accessor {
	return accessor{view: s.snapshot, update: s.write}
}

func staged(st *state) accessor {
	return accessor{
		view:   func() *state { return st },
		update: func(_ context.Context, fn func(st *state) error) error { return fn(st) },
	}
}

// Run implementa inventory.TxRunner.
func (s *Store) Run(ctx context.Context, fn func(ctx context.Context, r inventory.Repos) error) error {
	return s.write(ctx, func(st *state) error {
		return fn(ctx, reposFor(staged(st)))
	})
}

func reposFor(a accessor) inventory.Repos {
	return inventory.Repos{
		Pools:      &stockPoolRepo{a},
		Movements:  &movementRepo{a},
		Aggregates: &aggregateRepo{a},
		Sales:      &saleRepo{a},
	}
}

// Repos repositorios de lectura sobre el estado confirmado.
func (s *Store) Repos() inventory.Repos {
	return reposFor(s.committed())
}

// Products repositorio de productos.
func (s *Store) Products() repository.ProductRepository {
	return &productRepo{s.committed()}
}

// Warehouses repositorio de bodegas.
func (s *Store) Warehouses() repository.WarehouseRepository {
	return &warehouseRepo{s.committed()}
}

// Sequences consecutivos sobre el estado confirmado; las reservas son escrituras propias.
func (s *Store) Sequences() repository.SequenceRepository {
	return &sequenceRepo{s.committed()}
}

var _ inventory.TxRunner = (*Store)(nil)
