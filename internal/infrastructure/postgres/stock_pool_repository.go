package postgres

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/jhoicas/inventario-ledger/internal/domain"
	"github.com/jhoicas/inventario-ledger/internal/domain/entity"
	"github.com/jhoicas/inventario-ledger/internal/domain/repository"
)

var _ repository.StockPoolRepository = (*StockPoolRepo)(nil)

// StockPoolRepo implementación del puerto StockPoolRepository sobre PostgreSQL.
type StockPoolRepo struct {
	q Querier
}

// NewStockPoolRepository construye el adaptador; q puede ser el pool o una tx.
func NewStockPoolRepository(q Querier) *StockPoolRepo {
	return &StockPoolRepo{q: q}
}

const poolColumns = `id, product_id, location_id, batch_number,
	remaining_quantity, consigned_quantity, agent_assigned_quantity, received_quantity,
	purchase_price, manufacturer, manufacture_date, expiration_date,
	version, created_at, updated_at`

func scanPool(row pgx.Row) (*entity.StockPool, error) {
	var p entity.StockPool
	err := row.Scan(
		&p.ID, &p.ProductID, &p.LocationID, &p.BatchNumber,
		&p.RemainingQuantity, &p.ConsignedQuantity, &p.AgentAssignedQuantity, &p.ReceivedQuantity,
		&p.PurchasePrice, &p.Manufacturer, &p.ManufactureDate, &p.ExpirationDate,
		&p.Version, &p.CreatedAt, &p.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &p, nil
}

func collectPools(rows pgx.Rows, err error) ([]*entity.StockPool, error) {
	if err != nil {
		return nil, wrapErr("list stock pools", err)
	}
	list, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (*entity.StockPool, error) {
		return scanPool(row)
	})
	if err != nil {
		return nil, wrapErr("scan stock pool", err)
	}
	return list, nil
}

// Create persiste un pool nuevo con sus cantidades iniciales.
func (r *StockPoolRepo) Create(ctx context.Context, p *entity.StockPool) error {
	query := `
		INSERT INTO stock_pools (` + poolColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15)`
	_, err := r.q.Exec(ctx, query,
		p.ID, p.ProductID, p.LocationID, p.BatchNumber,
		p.RemainingQuantity, p.ConsignedQuantity, p.AgentAssignedQuantity, p.ReceivedQuantity,
		p.PurchasePrice, p.Manufacturer, p.ManufactureDate, p.ExpirationDate,
		p.Version, p.CreatedAt, p.UpdatedAt,
	)
	return wrapErr("insert stock pool", err)
}

// GetByID obtiene un pool por ID sin bloquear la fila.
func (r *StockPoolRepo) GetByID(ctx context.Context, id string) (*entity.StockPool, error) {
	p, err := scanPool(r.q.QueryRow(ctx, `SELECT `+poolColumns+` FROM stock_pools WHERE id = $1`, id))
	if err != nil {
		return nil, errNoRows("get stock pool", err)
	}
	return p, nil
}

// GetForUpdate obtiene el pool y bloquea la fila hasta el fin de la transacción.
func (r *StockPoolRepo) GetForUpdate(ctx context.Context, id string) (*entity.StockPool, error) {
	p, err := scanPool(r.q.QueryRow(ctx, `SELECT `+poolColumns+` FROM stock_pools WHERE id = $1 FOR UPDATE`, id))
	if err != nil {
		return nil, errNoRows("lock stock pool", err)
	}
	return p, nil
}

// FindByBatch busca el pool de un lote en una bodega.
func (r *StockPoolRepo) FindByBatch(ctx context.Context, productID, locationID, batchNumber string) (*entity.StockPool, error) {
	query := `SELECT ` + poolColumns + ` FROM stock_pools
		WHERE product_id = $1 AND location_id = $2 AND batch_number = $3`
	p, err := scanPool(r.q.QueryRow(ctx, query, productID, locationID, batchNumber))
	if err != nil {
		return nil, errNoRows("find stock pool by batch", err)
	}
	return p, nil
}

// Update persiste cantidades y precio; la fila debe conservar la versión leída.
func (r *StockPoolRepo) Update(ctx context.Context, p *entity.StockPool) error {
	query := `
		UPDATE stock_pools SET
			remaining_quantity = $3, consigned_quantity = $4, agent_assigned_quantity = $5,
			received_quantity = $6, purchase_price = $7, updated_at = $8, version = version + 1
		WHERE id = $1 AND version = $2`
	cmd, err := r.q.Exec(ctx, query,
		p.ID, p.Version,
		p.RemainingQuantity, p.ConsignedQuantity, p.AgentAssignedQuantity,
		p.ReceivedQuantity, p.PurchasePrice, p.UpdatedAt,
	)
	if err != nil {
		return wrapErr("update stock pool", err)
	}
	if cmd.RowsAffected() == 0 {
		exists, err := r.GetByID(ctx, p.ID)
		if err != nil {
			return err
		}
		if exists == nil {
			return domain.ErrNotFound
		}
		return errVersion
	}
	p.Version++
	return nil
}

// List pools por bodega y, opcionalmente, producto.
func (r *StockPoolRepo) List(ctx context.Context, f repository.PoolFilter) ([]*entity.StockPool, error) {
	query := `SELECT ` + poolColumns + ` FROM stock_pools
		WHERE ($1 = '' OR location_id = $1) AND ($2 = '' OR product_id = $2)
		ORDER BY created_at, id`
	return collectPools(r.q.Query(ctx, query, f.LocationID, f.ProductID))
}

// ListExpiring pools con existencias que vencen antes de la fecha indicada.
func (r *StockPoolRepo) ListExpiring(ctx context.Context, locationID string, before time.Time) ([]*entity.StockPool, error) {
	query := `SELECT ` + poolColumns + ` FROM stock_pools
		WHERE location_id = $1 AND expiration_date IS NOT NULL AND expiration_date < $2
		  AND remaining_quantity + consigned_quantity + agent_assigned_quantity > 0
		ORDER BY created_at, id`
	return collectPools(r.q.Query(ctx, query, locationID, before))
}
