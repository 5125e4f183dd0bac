package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/jhoicas/inventario-ledger/internal/domain"
	"github.com/jhoicas/inventario-ledger/internal/domain/entity"
	"github.com/jhoicas/inventario-ledger/internal/domain/repository"
)

var _ repository.SaleRepository = (*SaleRepo)(nil)

// SaleRepo ventas (sales) y sus líneas (sale_lines) sobre PostgreSQL.
type SaleRepo struct {
	q Querier
}

// NewSaleRepository construye el adaptador.
func NewSaleRepository(q Querier) *SaleRepo {
	return &SaleRepo{q: q}
}

const saleColumns = `id, number, counterparty_id, aggregate_id, payment_type, payment_status,
	total, created_at, updated_at, created_by`

const saleLineColumns = `id, sale_id, pool_id, aggregate_line_id, source, quantity, unit_price, line_total`

// Create persiste la venta con sus líneas.
func (r *SaleRepo) Create(ctx context.Context, s *entity.Sale) error {
	query := `
		INSERT INTO sales (` + saleColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`
	_, err := r.q.Exec(ctx, query,
		s.ID, s.Number, s.CounterpartyID, s.AggregateID, s.PaymentType, s.PaymentStatus,
		s.Total, s.CreatedAt, s.UpdatedAt, s.CreatedBy,
	)
	if numberTaken(err, "sales_number_key") {
		return fmt.Errorf("insert sale: número %s ya emitido: %w", s.Number, domain.ErrConcurrentModification)
	}
	if err != nil {
		return wrapErr("insert sale", err)
	}
	return r.upsertLines(ctx, s)
}

// GetByID venta con sus líneas.
func (r *SaleRepo) GetByID(ctx context.Context, id string) (*entity.Sale, error) {
	return r.get(ctx, `SELECT `+saleColumns+` FROM sales WHERE id = $1`, id)
}

// GetForUpdate bloquea la cabecera de la venta.
func (r *SaleRepo) GetForUpdate(ctx context.Context, id string) (*entity.Sale, error) {
	return r.get(ctx, `SELECT `+saleColumns+` FROM sales WHERE id = $1 FOR UPDATE`, id)
}

func (r *SaleRepo) get(ctx context.Context, query, id string) (*entity.Sale, error) {
	var s entity.Sale
	err := r.q.QueryRow(ctx, query, id).Scan(
		&s.ID, &s.Number, &s.CounterpartyID, &s.AggregateID, &s.PaymentType, &s.PaymentStatus,
		&s.Total, &s.CreatedAt, &s.UpdatedAt, &s.CreatedBy,
	)
	if err != nil {
		return nil, errNoRows("get sale", err)
	}
	rows, err := r.q.Query(ctx, `SELECT `+saleLineColumns+` FROM sale_lines WHERE sale_id = $1 ORDER BY seq`, id)
	if err != nil {
		return nil, wrapErr("list sale lines", err)
	}
	s.Lines, err = pgx.CollectRows(rows, func(row pgx.CollectableRow) (*entity.SaleLine, error) {
		var l entity.SaleLine
		err := row.Scan(&l.ID, &l.SaleID, &l.PoolID, &l.AggregateLineID, &l.Source, &l.Quantity, &l.UnitPrice, &l.LineTotal)
		return &l, err
	})
	if err != nil {
		return nil, wrapErr("scan sale line", err)
	}
	return &s, nil
}

// Update persiste estado de pago, total y líneas.
func (r *SaleRepo) Update(ctx context.Context, s *entity.Sale) error {
	query := `
		UPDATE sales SET payment_status = $2, total = $3, updated_at = $4
		WHERE id = $1`
	cmd, err := r.q.Exec(ctx, query, s.ID, s.PaymentStatus, s.Total, s.UpdatedAt)
	if err != nil {
		return wrapErr("update sale", err)
	}
	if cmd.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return r.upsertLines(ctx, s)
}

func (r *SaleRepo) upsertLines(ctx context.Context, s *entity.Sale) error {
	if len(s.Lines) == 0 {
		return nil
	}
	query := `
		INSERT INTO sale_lines (` + saleLineColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		ON CONFLICT (id) DO UPDATE SET
			quantity = EXCLUDED.quantity,
			line_total = EXCLUDED.line_total`
	batch := &pgx.Batch{}
	for _, l := range s.Lines {
		l.SaleID = s.ID
		batch.Queue(query, l.ID, l.SaleID, l.PoolID, l.AggregateLineID, l.Source, l.Quantity, l.UnitPrice, l.LineTotal)
	}
	return wrapErr("upsert sale lines", r.q.SendBatch(ctx, batch).Close())
}
