package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/jhoicas/inventario-ledger/internal/domain"
	"github.com/jhoicas/inventario-ledger/internal/domain/entity"
	"github.com/jhoicas/inventario-ledger/internal/domain/repository"
)

var _ repository.AggregateRepository = (*AggregateRepo)(nil)

// AggregateRepo consignaciones y asignaciones: cabecera en aggregates, líneas en
// aggregate_lines y abonos en payments.
type AggregateRepo struct {
	q Querier
}

// NewAggregateRepository construye el adaptador.
func NewAggregateRepository(q Querier) *AggregateRepo {
	return &AggregateRepo{q: q}
}

const aggregateColumns = `id, number, kind, counterparty_id, location_id, period_month, period_year,
	status, total_value, total_sold, total_paid, balance_due, notes, sale_id,
	version, created_at, updated_at, closed_at, created_by`

const aggregateLineColumns = `id, aggregate_id, pool_id, product_id, previous_balance,
	quantity_added, quantity_sold, quantity_returned, current_balance, unit_price, total_value`

func scanAggregate(row pgx.Row) (*entity.Aggregate, error) {
	var (
		a           entity.Aggregate
		month, year *int
	)
	err := row.Scan(
		&a.ID, &a.Number, &a.Kind, &a.CounterpartyID, &a.LocationID, &month, &year,
		&a.Status, &a.TotalValue, &a.TotalSold, &a.TotalPaid, &a.BalanceDue, &a.Notes, &a.SaleID,
		&a.Version, &a.CreatedAt, &a.UpdatedAt, &a.ClosedAt, &a.CreatedBy,
	)
	if err != nil {
		return nil, err
	}
	if month != nil && year != nil {
		a.Period = &entity.Period{Month: *month, Year: *year}
	}
	return &a, nil
}

func periodArgs(p *entity.Period) (month, year *int) {
	if p == nil {
		return nil, nil
	}
	return &p.Month, &p.Year
}

// Create persiste cabecera y líneas.
func (r *AggregateRepo) Create(ctx context.Context, a *entity.Aggregate) error {
	month, year := periodArgs(a.Period)
	query := `
		INSERT INTO aggregates (` + aggregateColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18, $19)`
	_, err := r.q.Exec(ctx, query,
		a.ID, a.Number, a.Kind, a.CounterpartyID, a.LocationID, month, year,
		a.Status, a.TotalValue, a.TotalSold, a.TotalPaid, a.BalanceDue, a.Notes, a.SaleID,
		a.Version, a.CreatedAt, a.UpdatedAt, a.ClosedAt, a.CreatedBy,
	)
	if numberTaken(err, "aggregates_number_key") {
		return fmt.Errorf("insert aggregate: número %s ya emitido: %w", a.Number, domain.ErrConcurrentModification)
	}
	if err != nil {
		return wrapErr("insert aggregate", err)
	}
	return r.upsertLines(ctx, a)
}

// GetByID cabecera con sus líneas.
func (r *AggregateRepo) GetByID(ctx context.Context, id string) (*entity.Aggregate, error) {
	return r.get(ctx, `SELECT `+aggregateColumns+` FROM aggregates WHERE id = $1`, id)
}

// GetForUpdate bloquea la cabecera; las líneas solo se escriben con la cabecera tomada.
func (r *AggregateRepo) GetForUpdate(ctx context.Context, id string) (*entity.Aggregate, error) {
	return r.get(ctx, `SELECT `+aggregateColumns+` FROM aggregates WHERE id = $1 FOR UPDATE`, id)
}

func (r *AggregateRepo) get(ctx context.Context, query, id string) (*entity.Aggregate, error) {
	a, err := scanAggregate(r.q.QueryRow(ctx, query, id))
	if err != nil {
		return nil, errNoRows("get aggregate", err)
	}
	if err := r.loadLines(ctx, []*entity.Aggregate{a}); err != nil {
		return nil, err
	}
	return a, nil
}

// Update persiste cabecera y líneas con control de versión.
func (r *AggregateRepo) Update(ctx context.Context, a *entity.Aggregate) error {
	query := `
		UPDATE aggregates SET
			status = $3, total_value = $4, total_sold = $5, total_paid = $6, balance_due = $7,
			notes = $8, sale_id = $9, updated_at = $10, closed_at = $11, version = version + 1
		WHERE id = $1 AND version = $2`
	cmd, err := r.q.Exec(ctx, query,
		a.ID, a.Version,
		a.Status, a.TotalValue, a.TotalSold, a.TotalPaid, a.BalanceDue,
		a.Notes, a.SaleID, a.UpdatedAt, a.ClosedAt,
	)
	if err != nil {
		return wrapErr("update aggregate", err)
	}
	if cmd.RowsAffected() == 0 {
		var exists bool
		if err := r.q.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM aggregates WHERE id = $1)`, a.ID).Scan(&exists); err != nil {
			return wrapErr("check aggregate", err)
		}
		if !exists {
			return domain.ErrNotFound
		}
		return errVersion
	}
	a.Version++
	return r.upsertLines(ctx, a)
}

func (r *AggregateRepo) upsertLines(ctx context.Context, a *entity.Aggregate) error {
	if len(a.Lines) == 0 {
		return nil
	}
	query := `
		INSERT INTO aggregate_lines (` + aggregateLineColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		ON CONFLICT (id) DO UPDATE SET
			quantity_added = EXCLUDED.quantity_added,
			quantity_sold = EXCLUDED.quantity_sold,
			quantity_returned = EXCLUDED.quantity_returned,
			current_balance = EXCLUDED.current_balance,
			unit_price = EXCLUDED.unit_price,
			total_value = EXCLUDED.total_value`
	batch := &pgx.Batch{}
	for _, l := range a.Lines {
		l.AggregateID = a.ID
		batch.Queue(query,
			l.ID, l.AggregateID, l.PoolID, l.ProductID, l.PreviousBalance,
			l.QuantityAdded, l.QuantitySold, l.QuantityReturned, l.CurrentBalance, l.UnitPrice, l.TotalValue,
		)
	}
	return wrapErr("upsert aggregate lines", r.q.SendBatch(ctx, batch).Close())
}

func (r *AggregateRepo) loadLines(ctx context.Context, aggs []*entity.Aggregate) error {
	if len(aggs) == 0 {
		return nil
	}
	byID := make(map[string]*entity.Aggregate, len(aggs))
	ids := make([]string, 0, len(aggs))
	for _, a := range aggs {
		byID[a.ID] = a
		ids = append(ids, a.ID)
	}
	query := `SELECT ` + aggregateLineColumns + ` FROM aggregate_lines
		WHERE aggregate_id = ANY($1) ORDER BY aggregate_id, seq`
	rows, err := r.q.Query(ctx, query, ids)
	if err != nil {
		return wrapErr("list aggregate lines", err)
	}
	lines, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (*entity.AggregateLine, error) {
		var l entity.AggregateLine
		err := row.Scan(
			&l.ID, &l.AggregateID, &l.PoolID, &l.ProductID, &l.PreviousBalance,
			&l.QuantityAdded, &l.QuantitySold, &l.QuantityReturned, &l.CurrentBalance, &l.UnitPrice, &l.TotalValue,
		)
		return &l, err
	})
	if err != nil {
		return wrapErr("scan aggregate line", err)
	}
	for _, l := range lines {
		if a := byID[l.AggregateID]; a != nil {
			a.Lines = append(a.Lines, l)
		}
	}
	return nil
}

// List documentos filtrados por tipo, contraparte y estado, del más antiguo al más reciente.
func (r *AggregateRepo) List(ctx context.Context, f repository.AggregateFilter) ([]*entity.Aggregate, error) {
	query := `SELECT ` + aggregateColumns + ` FROM aggregates
		WHERE ($1 = '' OR kind = $1) AND ($2 = '' OR counterparty_id = $2) AND ($3 = '' OR status = $3)
		ORDER BY created_at, number`
	rows, err := r.q.Query(ctx, query, string(f.Kind), f.CounterpartyID, string(f.Status))
	if err != nil {
		return nil, wrapErr("list aggregates", err)
	}
	list, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (*entity.Aggregate, error) {
		return scanAggregate(row)
	})
	if err != nil {
		return nil, wrapErr("scan aggregate", err)
	}
	if err := r.loadLines(ctx, list); err != nil {
		return nil, err
	}
	return list, nil
}

// CreatePayment registra un abono.
func (r *AggregateRepo) CreatePayment(ctx context.Context, p *entity.Payment) error {
	query := `
		INSERT INTO payments (id, aggregate_id, amount, method, created_at, created_by)
		VALUES ($1, $2, $3, $4, $5, $6)`
	_, err := r.q.Exec(ctx, query, p.ID, p.AggregateID, p.Amount, p.Method, p.CreatedAt, p.CreatedBy)
	return wrapErr("insert payment", err)
}

// ListPayments abonos del documento en orden de registro.
func (r *AggregateRepo) ListPayments(ctx context.Context, aggregateID string) ([]*entity.Payment, error) {
	query := `SELECT id, aggregate_id, amount, method, created_at, created_by
		FROM payments WHERE aggregate_id = $1 ORDER BY seq`
	rows, err := r.q.Query(ctx, query, aggregateID)
	if err != nil {
		return nil, wrapErr("list payments", err)
	}
	list, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (*entity.Payment, error) {
		var p entity.Payment
		err := row.Scan(&p.ID, &p.AggregateID, &p.Amount, &p.Method, &p.CreatedAt, &p.CreatedBy)
		return &p, err
	})
	if err != nil {
		return nil, wrapErr("scan payment", err)
	}
	return list, nil
}

