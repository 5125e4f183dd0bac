// Package lifecycle ciclo de vida de consignaciones y asignaciones a agentes:
// draft -> active -> closed. Cada transición corre en una transacción que bloquea el
// documento y los pools que toca.
package lifecycle

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/jhoicas/inventario-ledger/internal/application/dto"
	appinv "github.com/jhoicas/inventario-ledger/internal/application/inventory"
	"github.com/jhoicas/inventario-ledger/internal/domain"
	"github.com/jhoicas/inventario-ledger/internal/domain/entity"
	"github.com/jhoicas/inventario-ledger/internal/domain/inventory"
	"github.com/jhoicas/inventario-ledger/internal/domain/repository"
)

// UseCase operaciones del documento (consignación o asignación).
type UseCase struct {
	txRunner appinv.TxRunner
	repos    appinv.Repos
	numbers  appinv.NumberGenerator
}

// NewUseCase construye el caso de uso. repos son los repositorios de lectura fuera de tx.
func NewUseCase(txRunner appinv.TxRunner, repos appinv.Repos, numbers appinv.NumberGenerator) *UseCase {
	return &UseCase{txRunner: txRunner, repos: repos, numbers: numbers}
}

// CreateConsignment crea una consignación mensual para un cliente.
func (uc *UseCase) CreateConsignment(ctx context.Context, actor string, req dto.CreateAggregateRequest) (*entity.Aggregate, error) {
	req.Kind = entity.AggregateConsignment
	return uc.Create(ctx, actor, req)
}

// CreateAgentAssignment crea una asignación de mercancía a un agente de campo.
func (uc *UseCase) CreateAgentAssignment(ctx context.Context, actor string, req dto.CreateAggregateRequest) (*entity.Aggregate, error) {
	req.Kind = entity.AggregateAgent
	return uc.Create(ctx, actor, req)
}

// Create traslada cada ítem del disponible al campo retenido del pool y deja el documento activo.
func (uc *UseCase) Create(ctx context.Context, actor string, req dto.CreateAggregateRequest) (*entity.Aggregate, error) {
	if err := dto.Validate(req); err != nil {
		return nil, err
	}
	switch {
	case req.Kind == entity.AggregateConsignment && req.Period == nil:
		return nil, fmt.Errorf("la consignación requiere periodo: %w", domain.ErrInvalidInput)
	case req.Kind == entity.AggregateAgent && req.Period != nil:
		return nil, fmt.Errorf("la asignación no lleva periodo: %w", domain.ErrInvalidInput)
	}
	if err := checkItems(req.Items); err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	prefix := inventory.PrefixConsignment
	if req.Kind == entity.AggregateAgent {
		prefix = inventory.PrefixAgent
	}
	number, err := uc.numbers.Next(ctx, prefix, inventory.YearScope(now))
	if err != nil {
		return nil, err
	}
	id := uuid.New().String()

	var out *entity.Aggregate
	err = uc.txRunner.Run(ctx, func(ctx context.Context, r appinv.Repos) error {
		agg := &entity.Aggregate{
			ID:             id,
			Number:         number,
			Kind:           req.Kind,
			CounterpartyID: req.CounterpartyID,
			LocationID:     req.LocationID,
			Status:         entity.StatusDraft,
			Notes:          req.Notes,
			CreatedAt:      now,
			UpdatedAt:      now,
			CreatedBy:      actor,
		}
		if req.Period != nil {
			agg.Period = &entity.Period{Month: req.Period.Month, Year: req.Period.Year}
		}
		e := holdEntry(agg, actor)
		for _, it := range req.Items {
			if err := addItem(ctx, r, agg, it, e); err != nil {
				return err
			}
		}
		agg.Status = entity.StatusActive
		inventory.RecalculateAggregate(agg, nil, nil)
		if err := r.Aggregates.Create(ctx, agg); err != nil {
			return err
		}
		out = agg
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// AddItems entrega más unidades a la contraparte; una línea por pool.
func (uc *UseCase) AddItems(ctx context.Context, actor, aggregateID string, req dto.AddItemsRequest) (*entity.Aggregate, error) {
	if err := dto.Validate(req); err != nil {
		return nil, err
	}
	if err := checkItems(req.Items); err != nil {
		return nil, err
	}
	return uc.mutate(ctx, aggregateID, func(ctx context.Context, r appinv.Repos, agg *entity.Aggregate) error {
		e := holdEntry(agg, actor)
		for _, it := range req.Items {
			if err := addItem(ctx, r, agg, it, e); err != nil {
				return err
			}
		}
		return nil
	})
}

// RecordSale registra ventas de la contraparte. Cada cantidad se concilia contra el campo
// retenido del pool (diff = +q) y se acumula en la venta única del documento.
func (uc *UseCase) RecordSale(ctx context.Context, actor, aggregateID string, req dto.SaleItemsRequest) (*entity.Aggregate, error) {
	if err := dto.Validate(req); err != nil {
		return nil, err
	}
	current, err := uc.Get(ctx, aggregateID)
	if err != nil {
		return nil, err
	}
	// el número se emite fuera de la tx; si otra venta crea el registro antes, queda un hueco
	var number string
	if current.SaleID == "" && current.Status == entity.StatusActive {
		if number, err = uc.numbers.Next(ctx, inventory.PrefixSale, inventory.YearScope(time.Now().UTC())); err != nil {
			return nil, err
		}
	}
	saleID := uuid.New().String()

	return uc.mutate(ctx, aggregateID, func(ctx context.Context, r appinv.Repos, agg *entity.Aggregate) error {
		sale, err := loadSale(ctx, r, agg)
		if err != nil {
			return err
		}
		created := false
		if sale == nil {
			if number == "" {
				return fmt.Errorf("documento %s sin venta asociada: %w", agg.ID, domain.ErrConcurrentModification)
			}
			sale = newSale(saleID, number, agg, actor)
			agg.SaleID = sale.ID
			created = true
		}

		held := agg.Kind.HeldField()
		e := appinv.NewEntry(entity.MovementSale, actor)
		e.ReferenceID = agg.ID
		e.Remark = req.Remark
		for _, it := range req.Items {
			line := agg.LineByPool(it.PoolID)
			if line == nil {
				return fmt.Errorf("pool %s no pertenece al documento: %w", it.PoolID, domain.ErrInvalidInput)
			}
			if it.Quantity > line.Balance() {
				return fmt.Errorf("línea %s: saldo %d: %w", line.ID, line.Balance(), domain.ErrInsufficientStock)
			}
			pool, err := appinv.LockPool(ctx, r, it.PoolID)
			if err != nil {
				return err
			}
			if _, err := appinv.ReconcileInTx(ctx, r, pool, held, line.QuantitySold, line.QuantitySold+it.Quantity, e); err != nil {
				return err
			}
			line.QuantitySold += it.Quantity
			line.CurrentBalance = line.Balance()

			sl := sale.LineByAggregateLine(line.ID)
			if sl == nil {
				sl = &entity.SaleLine{
					ID:              uuid.New().String(),
					SaleID:          sale.ID,
					PoolID:          line.PoolID,
					AggregateLineID: line.ID,
					Source:          held,
					UnitPrice:       line.UnitPrice,
				}
				sale.Lines = append(sale.Lines, sl)
			}
			sl.Quantity += it.Quantity
		}
		return saveSale(ctx, r, sale, created)
	})
}

// ReturnItems devuelve unidades de la contraparte al disponible. Solo se libera lo que el
// campo retenido conserva: las unidades ya acreditadas al disponible por una corrección de
// venta no se acreditan de nuevo.
func (uc *UseCase) ReturnItems(ctx context.Context, actor, aggregateID string, req dto.SaleItemsRequest) (*entity.Aggregate, error) {
	if err := dto.Validate(req); err != nil {
		return nil, err
	}
	return uc.mutate(ctx, aggregateID, func(ctx context.Context, r appinv.Repos, agg *entity.Aggregate) error {
		held := agg.Kind.HeldField()
		e := appinv.NewEntry(entity.MovementReturn, actor)
		e.Field = held
		e.ReferenceID = agg.ID
		e.Remark = req.Remark
		for _, it := range req.Items {
			line := agg.LineByPool(it.PoolID)
			if line == nil {
				return fmt.Errorf("pool %s no pertenece al documento: %w", it.PoolID, domain.ErrInvalidInput)
			}
			if it.Quantity > line.Balance() {
				return fmt.Errorf("línea %s: saldo %d: %w", line.ID, line.Balance(), domain.ErrInsufficientStock)
			}
			pool, err := appinv.LockPool(ctx, r, it.PoolID)
			if err != nil {
				return err
			}
			d, err := inventory.Release(pool, held, it.Quantity)
			if err != nil {
				return err
			}
			if !d.IsZero() {
				if _, err := appinv.ApplyInTx(ctx, r, pool, d, e); err != nil {
					return err
				}
			}
			line.QuantityReturned += it.Quantity
			line.CurrentBalance = line.Balance()
		}
		return nil
	})
}

// RecordPayment abona al saldo del documento. El abono no puede superar el saldo pendiente.
func (uc *UseCase) RecordPayment(ctx context.Context, actor, aggregateID string, req dto.PaymentRequest) (*entity.Aggregate, error) {
	if err := dto.Validate(req); err != nil {
		return nil, err
	}
	amount := inventory.Money(req.Amount)
	if !amount.IsPositive() {
		return nil, domain.ErrInvalidQuantity
	}
	return uc.mutate(ctx, aggregateID, func(ctx context.Context, r appinv.Repos, agg *entity.Aggregate) error {
		totals, err := recalc(ctx, r, agg)
		if err != nil {
			return err
		}
		if amount.GreaterThan(totals.BalanceDue) {
			return fmt.Errorf("abono %s supera el saldo %s: %w", amount, totals.BalanceDue, domain.ErrInvalidInput)
		}
		return r.Aggregates.CreatePayment(ctx, &entity.Payment{
			ID:          uuid.New().String(),
			AggregateID: agg.ID,
			Amount:      amount,
			Method:      req.Method,
			CreatedAt:   time.Now().UTC(),
			CreatedBy:   actor,
		})
	})
}

// EditSaleQuantity corrige la cantidad vendida de una línea (quantity_sold -> newQuantity)
// y concilia el pool con diff = new - old.
func (uc *UseCase) EditSaleQuantity(ctx context.Context, actor, aggregateID, lineID string, req dto.EditQuantityRequest) (*entity.Aggregate, error) {
	if err := dto.Validate(req); err != nil {
		return nil, err
	}
	return uc.mutate(ctx, aggregateID, func(ctx context.Context, r appinv.Repos, agg *entity.Aggregate) error {
		line := agg.Line(lineID)
		if line == nil {
			return fmt.Errorf("línea %s: %w", lineID, domain.ErrNotFound)
		}
		sale, err := loadSale(ctx, r, agg)
		if err != nil {
			return err
		}
		var sl *entity.SaleLine
		if sale != nil {
			sl = sale.LineByAggregateLine(line.ID)
		}
		if sl == nil {
			return fmt.Errorf("la línea %s no tiene ventas registradas: %w", lineID, domain.ErrInvalidState)
		}
		oldQty := line.QuantitySold
		if req.NewQuantity-oldQty > line.Balance() {
			return fmt.Errorf("línea %s: saldo %d: %w", line.ID, line.Balance(), domain.ErrInsufficientStock)
		}
		pool, err := appinv.LockPool(ctx, r, line.PoolID)
		if err != nil {
			return err
		}
		e := appinv.NewEntry(entity.MovementSale, actor)
		e.ReferenceID = agg.ID
		e.Remark = req.Remark
		if _, err := appinv.ReconcileInTx(ctx, r, pool, agg.Kind.HeldField(), oldQty, req.NewQuantity, e); err != nil {
			return err
		}
		line.QuantitySold = req.NewQuantity
		line.CurrentBalance = line.Balance()
		sl.Quantity += req.NewQuantity - oldQty
		return saveSale(ctx, r, sale, false)
	})
}

// Close cierra el documento. Requiere todas las líneas en cero y saldo pendiente cero.
func (uc *UseCase) Close(ctx context.Context, actor, aggregateID string) (*entity.Aggregate, error) {
	var out *entity.Aggregate
	err := uc.txRunner.Run(ctx, func(ctx context.Context, r appinv.Repos) error {
		agg, err := lockAggregate(ctx, r, aggregateID)
		if err != nil {
			return err
		}
		if err := requireActive(agg); err != nil {
			return err
		}
		if _, err := recalc(ctx, r, agg); err != nil {
			return err
		}
		for _, l := range agg.Lines {
			if l.CurrentBalance != 0 {
				return fmt.Errorf("línea %s con saldo %d: %w", l.ID, l.CurrentBalance, domain.ErrOutstandingBalance)
			}
		}
		if !agg.BalanceDue.IsZero() {
			return fmt.Errorf("saldo pendiente %s: %w", agg.BalanceDue, domain.ErrOutstandingBalance)
		}
		now := time.Now().UTC()
		agg.Status = entity.StatusClosed
		agg.ClosedAt = &now
		agg.UpdatedAt = now
		if err := r.Aggregates.Update(ctx, agg); err != nil {
			return err
		}
		out = agg
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// Get devuelve el documento con sus líneas.
func (uc *UseCase) Get(ctx context.Context, aggregateID string) (*entity.Aggregate, error) {
	agg, err := uc.repos.Aggregates.GetByID(ctx, aggregateID)
	if err != nil {
		return nil, err
	}
	if agg == nil {
		return nil, fmt.Errorf("documento %s: %w", aggregateID, domain.ErrNotFound)
	}
	return agg, nil
}

// List documentos filtrados por tipo, contraparte y estado (todos opcionales).
func (uc *UseCase) List(ctx context.Context, filter repository.AggregateFilter) ([]*entity.Aggregate, error) {
	return uc.repos.Aggregates.List(ctx, filter)
}

// Payments abonos del documento.
func (uc *UseCase) Payments(ctx context.Context, aggregateID string) ([]*entity.Payment, error) {
	if _, err := uc.Get(ctx, aggregateID); err != nil {
		return nil, err
	}
	return uc.repos.Aggregates.ListPayments(ctx, aggregateID)
}

// mutate bloquea el documento activo, aplica fn, recalcula los acumulados y lo persiste.
func (uc *UseCase) mutate(ctx context.Context, aggregateID string, fn func(ctx context.Context, r appinv.Repos, agg *entity.Aggregate) error) (*entity.Aggregate, error) {
	var out *entity.Aggregate
	err := uc.txRunner.Run(ctx, func(ctx context.Context, r appinv.Repos) error {
		agg, err := lockAggregate(ctx, r, aggregateID)
		if err != nil {
			return err
		}
		if err := requireActive(agg); err != nil {
			return err
		}
		if err := fn(ctx, r, agg); err != nil {
			return err
		}
		totals, err := recalc(ctx, r, agg)
		if err != nil {
			return err
		}
		if totals.BalanceDue.IsNegative() {
			return fmt.Errorf("los abonos superan el total vendido: %w", domain.ErrInvalidState)
		}
		agg.UpdatedAt = time.Now().UTC()
		if err := r.Aggregates.Update(ctx, agg); err != nil {
			return err
		}
		out = agg
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

func lockAggregate(ctx context.Context, r appinv.Repos, id string) (*entity.Aggregate, error) {
	agg, err := r.Aggregates.GetForUpdate(ctx, id)
	if err != nil {
		return nil, err
	}
	if agg == nil {
		return nil, fmt.Errorf("documento %s: %w", id, domain.ErrNotFound)
	}
	return agg, nil
}

func requireActive(agg *entity.Aggregate) error {
	switch agg.Status {
	case entity.StatusActive:
		return nil
	case entity.StatusClosed:
		return fmt.Errorf("documento %s: %w", agg.Number, domain.ErrAggregateClosed)
	default:
		return fmt.Errorf("documento %s en estado %s: %w", agg.Number, agg.Status, domain.ErrInvalidState)
	}
}

// recalc recalcula líneas y acumulados a partir de la venta y los abonos persistidos.
func recalc(ctx context.Context, r appinv.Repos, agg *entity.Aggregate) (inventory.Totals, error) {
	sale, err := loadSale(ctx, r, agg)
	if err != nil {
		return inventory.Totals{}, err
	}
	payments, err := r.Aggregates.ListPayments(ctx, agg.ID)
	if err != nil {
		return inventory.Totals{}, err
	}
	amounts := make([]decimal.Decimal, 0, len(payments))
	for _, p := range payments {
		amounts = append(amounts, p.Amount)
	}
	totals := inventory.RecalculateAggregate(agg, sale, amounts)
	if sale != nil && sale.PaymentStatus != inventory.PaymentStatus(totals) {
		sale.PaymentStatus = inventory.PaymentStatus(totals)
		sale.UpdatedAt = time.Now().UTC()
		if err := r.Sales.Update(ctx, sale); err != nil {
			return inventory.Totals{}, err
		}
	}
	return totals, nil
}

func loadSale(ctx context.Context, r appinv.Repos, agg *entity.Aggregate) (*entity.Sale, error) {
	if agg.SaleID == "" {
		return nil, nil
	}
	sale, err := r.Sales.GetForUpdate(ctx, agg.SaleID)
	if err != nil {
		return nil, err
	}
	if sale == nil {
		return nil, fmt.Errorf("venta %s: %w", agg.SaleID, domain.ErrNotFound)
	}
	return sale, nil
}

// saveSale persiste la venta con sus totales de línea actualizados.
func saveSale(ctx context.Context, r appinv.Repos, sale *entity.Sale, created bool) error {
	inventory.RecalculateSale(sale)
	sale.UpdatedAt = time.Now().UTC()
	if created {
		return r.Sales.Create(ctx, sale)
	}
	return r.Sales.Update(ctx, sale)
}

func newSale(id, number string, agg *entity.Aggregate, actor string) *entity.Sale {
	now := time.Now().UTC()
	paymentType := entity.PaymentTypeConsignment
	if agg.Kind == entity.AggregateAgent {
		paymentType = entity.PaymentTypeAgent
	}
	return &entity.Sale{
		ID:             id,
		Number:         number,
		CounterpartyID: agg.CounterpartyID,
		AggregateID:    agg.ID,
		PaymentType:    paymentType,
		PaymentStatus:  entity.PaymentStatusUnpaid,
		CreatedAt:      now,
		UpdatedAt:      now,
		CreatedBy:      actor,
	}
}

func holdEntry(agg *entity.Aggregate, actor string) appinv.Entry {
	kind := entity.MovementConsign
	if agg.Kind == entity.AggregateAgent {
		kind = entity.MovementAssign
	}
	e := appinv.NewEntry(kind, actor)
	e.Field = agg.Kind.HeldField()
	e.ReferenceID = agg.ID
	return e
}

// addItem traslada el ítem al campo retenido y lo suma a la línea del pool (la crea si no existe).
func addItem(ctx context.Context, r appinv.Repos, agg *entity.Aggregate, it dto.AggregateItemRequest, e appinv.Entry) error {
	pool, err := appinv.LockPool(ctx, r, it.PoolID)
	if err != nil {
		return err
	}
	if pool.LocationID != agg.LocationID {
		return fmt.Errorf("pool %s no pertenece a la bodega %s: %w", pool.ID, agg.LocationID, domain.ErrInvalidInput)
	}
	price := inventory.Money(it.UnitPrice)
	line := agg.LineByPool(pool.ID)
	if line != nil && !price.IsZero() && !price.Equal(line.UnitPrice) {
		return fmt.Errorf("precio unitario distinto al de la línea %s: %w", line.ID, domain.ErrInvalidInput)
	}
	d, err := inventory.TransferToHeld(pool, agg.Kind.HeldField(), it.Quantity)
	if err != nil {
		return fmt.Errorf("pool %s: %w", pool.ID, err)
	}
	if _, err := appinv.ApplyInTx(ctx, r, pool, d, e); err != nil {
		return err
	}
	if line == nil {
		line = &entity.AggregateLine{
			ID:          uuid.New().String(),
			AggregateID: agg.ID,
			PoolID:      pool.ID,
			ProductID:   pool.ProductID,
			UnitPrice:   price,
		}
		agg.Lines = append(agg.Lines, line)
	}
	line.QuantityAdded += it.Quantity
	line.CurrentBalance = line.Balance()
	return nil
}

func checkItems(items []dto.AggregateItemRequest) error {
	seen := make(map[string]bool, len(items))
	for _, it := range items {
		if it.UnitPrice.IsNegative() {
			return fmt.Errorf("precio unitario: %w", domain.ErrInvalidInput)
		}
		if seen[it.PoolID] {
			return fmt.Errorf("pool %s repetido: %w", it.PoolID, domain.ErrInvalidInput)
		}
		seen[it.PoolID] = true
	}
	return nil
}
