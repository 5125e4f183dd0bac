package lifecycle_test

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/sync/errgroup"

	"github.com/jhoicas/inventario-ledger/internal/application/dto"
	appinv "github.com/jhoicas/inventario-ledger/internal/application/inventory"
	"github.com/jhoicas/inventario-ledger/internal/application/lifecycle"
	"github.com/jhoicas/inventario-ledger/internal/application/sequence"
	"github.com/jhoicas/inventario-ledger/internal/domain"
	"github.com/jhoicas/inventario-ledger/internal/domain/entity"
	"github.com/jhoicas/inventario-ledger/internal/domain/inventory"
	"github.com/jhoicas/inventario-ledger/internal/domain/repository"
	"github.com/jhoicas/inventario-ledger/internal/infrastructure/memory"
)

const actor = "user-1"

type fixture struct {
	store *memory.Store
	pools *appinv.PoolUseCase
	uc    *lifecycle.UseCase
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	ctx := context.Background()
	store := memory.New()
	require.NoError(t, store.Products().Create(ctx, &entity.Product{ID: "prod-1", SKU: "SKU-2025-0001", Name: "Crema"}))
	require.NoError(t, store.Warehouses().Create(ctx, &entity.Warehouse{ID: "wh-1", Name: "Principal"}))
	require.NoError(t, store.Warehouses().Create(ctx, &entity.Warehouse{ID: "wh-2", Name: "Sucursal"}))
	gen := sequence.NewGenerator(store.Sequences(), nil)
	return &fixture{
		store: store,
		pools: appinv.NewPoolUseCase(store, store.Repos(), store.Products(), store.Warehouses()),
		uc:    lifecycle.NewUseCase(store, store.Repos(), gen),
	}
}

func (f *fixture) pool(t *testing.T, batch string, qty int64) *entity.StockPool {
	t.Helper()
	p, err := f.pools.CreatePool(context.Background(), actor, dto.CreatePoolRequest{
		ProductID: "prod-1", LocationID: "wh-1", BatchNumber: batch, InitialQuantity: qty,
		PurchasePrice: decimal.NewFromInt(60),
	})
	require.NoError(t, err)
	return p
}

func (f *fixture) reload(t *testing.T, id string) *entity.StockPool {
	t.Helper()
	p, err := f.pools.GetPool(context.Background(), id)
	require.NoError(t, err)
	return p
}

func consignment(poolID string, qty int64, price int64) dto.CreateAggregateRequest {
	return dto.CreateAggregateRequest{
		CounterpartyID: "cliente-1",
		LocationID:     "wh-1",
		Period:         &dto.PeriodRequest{Month: 3, Year: 2025},
		Items:          []dto.AggregateItemRequest{{PoolID: poolID, Quantity: qty, UnitPrice: decimal.NewFromInt(price)}},
	}
}

func sell(poolID string, qty int64) dto.SaleItemsRequest {
	return dto.SaleItemsRequest{Items: []dto.QuantityItemRequest{{PoolID: poolID, Quantity: qty}}}
}

func year() string { return inventory.YearScope(time.Now().UTC()) }

// ---------------------------------------------------------------------------
// Creación
// ---------------------------------------------------------------------------

func TestCreateConsignment_TrasladaAlConsignado(t *testing.T) {
	f := newFixture(t)
	p := f.pool(t, "L1", 10)

	agg, err := f.uc.CreateConsignment(context.Background(), actor, consignment(p.ID, 5, 100))
	require.NoError(t, err)
	assert.Equal(t, "CSG-"+year()+"-0001", agg.Number)
	assert.Equal(t, entity.StatusActive, agg.Status)
	require.Len(t, agg.Lines, 1)
	assert.Equal(t, int64(5), agg.Lines[0].CurrentBalance)
	assert.True(t, agg.TotalValue.Equal(decimal.NewFromInt(500)))
	assert.True(t, agg.BalanceDue.IsZero())

	got := f.reload(t, p.ID)
	assert.Equal(t, int64(5), got.RemainingQuantity)
	assert.Equal(t, int64(5), got.ConsignedQuantity)
}

func TestCreate_ValidaPeriodo(t *testing.T) {
	f := newFixture(t)
	p := f.pool(t, "L1", 10)
	ctx := context.Background()

	req := consignment(p.ID, 1, 10)
	req.Period = nil
	_, err := f.uc.CreateConsignment(ctx, actor, req)
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	req = consignment(p.ID, 1, 10)
	req.Period.Month = 13
	_, err = f.uc.CreateConsignment(ctx, actor, req)
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	_, err = f.uc.CreateAgentAssignment(ctx, actor, consignment(p.ID, 1, 10))
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	req = consignment(p.ID, 0, 10)
	_, err = f.uc.CreateConsignment(ctx, actor, req)
	assert.ErrorIs(t, err, domain.ErrInvalidQuantity)
}

func TestCreate_StockInsuficienteNoMuta(t *testing.T) {
	f := newFixture(t)
	p := f.pool(t, "L1", 10)
	other := f.pool(t, "L2", 3)
	req := consignment(p.ID, 4, 10)
	req.Items = append(req.Items, dto.AggregateItemRequest{PoolID: other.ID, Quantity: 5})

	_, err := f.uc.CreateConsignment(context.Background(), actor, req)
	require.ErrorIs(t, err, domain.ErrInsufficientStock)

	// el primer ítem tampoco quedó aplicado
	got := f.reload(t, p.ID)
	assert.Equal(t, int64(10), got.RemainingQuantity)
	assert.Zero(t, got.ConsignedQuantity)
	list, err := f.uc.List(context.Background(), repository.AggregateFilter{})
	require.NoError(t, err)
	assert.Empty(t, list)
}

func TestCreate_PoolDeOtraBodega(t *testing.T) {
	f := newFixture(t)
	p := f.pool(t, "L1", 10)
	req := consignment(p.ID, 1, 10)
	req.LocationID = "wh-2"
	_, err := f.uc.CreateConsignment(context.Background(), actor, req)
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

// ---------------------------------------------------------------------------
// Ventas, devoluciones y abonos
// ---------------------------------------------------------------------------

func TestRecordSale_DescuentaDelConsignado(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	p := f.pool(t, "L1", 10)
	agg, err := f.uc.CreateConsignment(ctx, actor, consignment(p.ID, 5, 100))
	require.NoError(t, err)

	agg, err = f.uc.RecordSale(ctx, actor, agg.ID, sell(p.ID, 3))
	require.NoError(t, err)
	line := agg.Lines[0]
	assert.Equal(t, int64(3), line.QuantitySold)
	assert.Equal(t, int64(2), line.CurrentBalance)
	assert.True(t, agg.TotalSold.Equal(decimal.NewFromInt(300)))
	assert.True(t, agg.BalanceDue.Equal(decimal.NewFromInt(300)))
	assert.True(t, agg.TotalValue.Equal(decimal.NewFromInt(200)))
	require.NotEmpty(t, agg.SaleID)

	got := f.reload(t, p.ID)
	assert.Equal(t, int64(5), got.RemainingQuantity)
	assert.Equal(t, int64(2), got.ConsignedQuantity)

	sale, err := f.store.Repos().Sales.GetByID(ctx, agg.SaleID)
	require.NoError(t, err)
	assert.Equal(t, "TXN-"+year()+"-0001", sale.Number)
	assert.Equal(t, entity.PaymentTypeConsignment, sale.PaymentType)

	// segunda venta: mismo registro, misma línea
	agg, err = f.uc.RecordSale(ctx, actor, agg.ID, sell(p.ID, 1))
	require.NoError(t, err)
	sale, err = f.store.Repos().Sales.GetByID(ctx, agg.SaleID)
	require.NoError(t, err)
	require.Len(t, sale.Lines, 1)
	assert.Equal(t, int64(4), sale.Lines[0].Quantity)
	assert.True(t, sale.Total.Equal(decimal.NewFromInt(400)))
}

func TestRecordSale_SuperaSaldoDeLinea(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	p := f.pool(t, "L1", 10)
	agg, err := f.uc.CreateConsignment(ctx, actor, consignment(p.ID, 5, 100))
	require.NoError(t, err)

	_, err = f.uc.RecordSale(ctx, actor, agg.ID, sell(p.ID, 6))
	assert.ErrorIs(t, err, domain.ErrInsufficientStock)

	got, err := f.uc.Get(ctx, agg.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(5), got.Lines[0].CurrentBalance)
	assert.Empty(t, got.SaleID)
}

func TestReturnItems_LiberaConsignado(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	p := f.pool(t, "L1", 10)
	agg, err := f.uc.CreateConsignment(ctx, actor, consignment(p.ID, 5, 100))
	require.NoError(t, err)
	_, err = f.uc.RecordSale(ctx, actor, agg.ID, sell(p.ID, 2))
	require.NoError(t, err)

	agg, err = f.uc.ReturnItems(ctx, actor, agg.ID, sell(p.ID, 3))
	require.NoError(t, err)
	assert.Equal(t, int64(3), agg.Lines[0].QuantityReturned)
	assert.Zero(t, agg.Lines[0].CurrentBalance)

	got := f.reload(t, p.ID)
	assert.Equal(t, int64(8), got.RemainingQuantity)
	assert.Zero(t, got.ConsignedQuantity)

	_, err = f.uc.ReturnItems(ctx, actor, agg.ID, sell(p.ID, 1))
	assert.ErrorIs(t, err, domain.ErrInsufficientStock)
}

func TestRecordPayment(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	p := f.pool(t, "L1", 10)
	agg, err := f.uc.CreateConsignment(ctx, actor, consignment(p.ID, 5, 100))
	require.NoError(t, err)
	_, err = f.uc.RecordSale(ctx, actor, agg.ID, sell(p.ID, 2))
	require.NoError(t, err)

	_, err = f.uc.RecordPayment(ctx, actor, agg.ID, dto.PaymentRequest{Amount: decimal.Zero, Method: "cash"})
	assert.ErrorIs(t, err, domain.ErrInvalidQuantity)
	_, err = f.uc.RecordPayment(ctx, actor, agg.ID, dto.PaymentRequest{Amount: decimal.NewFromInt(201), Method: "cash"})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	agg, err = f.uc.RecordPayment(ctx, actor, agg.ID, dto.PaymentRequest{Amount: decimal.NewFromInt(50), Method: "cash"})
	require.NoError(t, err)
	assert.True(t, agg.TotalPaid.Equal(decimal.NewFromInt(50)))
	assert.True(t, agg.BalanceDue.Equal(decimal.NewFromInt(150)))

	sale, err := f.store.Repos().Sales.GetByID(ctx, agg.SaleID)
	require.NoError(t, err)
	assert.Equal(t, entity.PaymentStatusPartial, sale.PaymentStatus)

	payments, err := f.uc.Payments(ctx, agg.ID)
	require.NoError(t, err)
	assert.Len(t, payments, 1)
}

func TestRecordPayment_RedondeoACeroSeRechaza(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	p := f.pool(t, "L1", 10)
	agg, err := f.uc.CreateConsignment(ctx, actor, consignment(p.ID, 5, 100))
	require.NoError(t, err)
	_, err = f.uc.RecordSale(ctx, actor, agg.ID, sell(p.ID, 1))
	require.NoError(t, err)

	_, err = f.uc.RecordPayment(ctx, actor, agg.ID, dto.PaymentRequest{Amount: decimal.RequireFromString("0.004"), Method: "cash"})
	assert.ErrorIs(t, err, domain.ErrInvalidQuantity)

	payments, err := f.uc.Payments(ctx, agg.ID)
	require.NoError(t, err)
	assert.Empty(t, payments)

	agg, err = f.uc.RecordPayment(ctx, actor, agg.ID, dto.PaymentRequest{Amount: decimal.RequireFromString("0.005"), Method: "cash"})
	require.NoError(t, err)
	assert.True(t, agg.TotalPaid.Equal(decimal.RequireFromString("0.01")))
}

// ---------------------------------------------------------------------------
// Corrección de cantidades vendidas
// ---------------------------------------------------------------------------

func TestEditSaleQuantity_ConservaUnidades(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	p := f.pool(t, "L1", 10)
	agg, err := f.uc.CreateConsignment(ctx, actor, consignment(p.ID, 5, 100))
	require.NoError(t, err)
	agg, err = f.uc.RecordSale(ctx, actor, agg.ID, sell(p.ID, 3))
	require.NoError(t, err)
	lineID := agg.Lines[0].ID

	// 3 -> 1: el disponible recibe 2, el consignado no se toca
	agg, err = f.uc.EditSaleQuantity(ctx, actor, agg.ID, lineID, dto.EditQuantityRequest{NewQuantity: 1})
	require.NoError(t, err)
	assert.Equal(t, int64(1), agg.Lines[0].QuantitySold)
	assert.Equal(t, int64(4), agg.Lines[0].CurrentBalance)
	assert.True(t, agg.TotalSold.Equal(decimal.NewFromInt(100)))
	got := f.reload(t, p.ID)
	assert.Equal(t, int64(7), got.RemainingQuantity)
	assert.Equal(t, int64(2), got.ConsignedQuantity)

	// devolver todo el saldo de la línea solo libera lo que queda en consignado
	agg, err = f.uc.ReturnItems(ctx, actor, agg.ID, sell(p.ID, 4))
	require.NoError(t, err)
	got = f.reload(t, p.ID)
	assert.Equal(t, int64(9), got.RemainingQuantity)
	assert.Zero(t, got.ConsignedQuantity)

	// conservación: unidades en el pool + vendidas = recibidas
	sale, err := f.store.Repos().Sales.GetByID(ctx, agg.SaleID)
	require.NoError(t, err)
	var sold int64
	for _, l := range sale.Lines {
		sold += l.Quantity
	}
	assert.Equal(t, got.ReceivedQuantity, got.Total()+sold)
}

func TestEditSaleQuantity_SinVentas(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	p := f.pool(t, "L1", 10)
	agg, err := f.uc.CreateConsignment(ctx, actor, consignment(p.ID, 5, 100))
	require.NoError(t, err)

	_, err = f.uc.EditSaleQuantity(ctx, actor, agg.ID, agg.Lines[0].ID, dto.EditQuantityRequest{NewQuantity: 2})
	assert.ErrorIs(t, err, domain.ErrInvalidState)
	_, err = f.uc.EditSaleQuantity(ctx, actor, agg.ID, "no-existe", dto.EditQuantityRequest{NewQuantity: 2})
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestEditSaleQuantity_AbonosSuperanTotal(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	p := f.pool(t, "L1", 10)
	agg, err := f.uc.CreateConsignment(ctx, actor, consignment(p.ID, 5, 100))
	require.NoError(t, err)
	agg, err = f.uc.RecordSale(ctx, actor, agg.ID, sell(p.ID, 3))
	require.NoError(t, err)
	_, err = f.uc.RecordPayment(ctx, actor, agg.ID, dto.PaymentRequest{Amount: decimal.NewFromInt(300), Method: "cash"})
	require.NoError(t, err)

	_, err = f.uc.EditSaleQuantity(ctx, actor, agg.ID, agg.Lines[0].ID, dto.EditQuantityRequest{NewQuantity: 1})
	assert.ErrorIs(t, err, domain.ErrInvalidState)
	got := f.reload(t, p.ID)
	assert.Equal(t, int64(2), got.ConsignedQuantity)
	assert.Equal(t, int64(5), got.RemainingQuantity)
}

// ---------------------------------------------------------------------------
// Cierre
// ---------------------------------------------------------------------------

func TestClose_GuardasDeSaldo(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	p := f.pool(t, "L1", 10)
	agg, err := f.uc.CreateConsignment(ctx, actor, consignment(p.ID, 5, 100))
	require.NoError(t, err)
	_, err = f.uc.RecordSale(ctx, actor, agg.ID, sell(p.ID, 2))
	require.NoError(t, err)

	_, err = f.uc.Close(ctx, actor, agg.ID)
	assert.ErrorIs(t, err, domain.ErrOutstandingBalance)

	_, err = f.uc.ReturnItems(ctx, actor, agg.ID, sell(p.ID, 3))
	require.NoError(t, err)
	// líneas en cero pero con saldo por cobrar
	_, err = f.uc.Close(ctx, actor, agg.ID)
	assert.ErrorIs(t, err, domain.ErrOutstandingBalance)

	_, err = f.uc.RecordPayment(ctx, actor, agg.ID, dto.PaymentRequest{Amount: decimal.NewFromInt(200), Method: "transfer"})
	require.NoError(t, err)
	agg, err = f.uc.Close(ctx, actor, agg.ID)
	require.NoError(t, err)
	assert.Equal(t, entity.StatusClosed, agg.Status)
	require.NotNil(t, agg.ClosedAt)

	sale, err := f.store.Repos().Sales.GetByID(ctx, agg.SaleID)
	require.NoError(t, err)
	assert.Equal(t, entity.PaymentStatusPaid, sale.PaymentStatus)
}

func TestClose_DocumentoCerradoRechazaOperaciones(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	p := f.pool(t, "L1", 10)
	agg, err := f.uc.CreateConsignment(ctx, actor, consignment(p.ID, 5, 100))
	require.NoError(t, err)
	_, err = f.uc.ReturnItems(ctx, actor, agg.ID, sell(p.ID, 5))
	require.NoError(t, err)
	_, err = f.uc.Close(ctx, actor, agg.ID)
	require.NoError(t, err)

	_, err = f.uc.AddItems(ctx, actor, agg.ID, dto.AddItemsRequest{Items: []dto.AggregateItemRequest{{PoolID: p.ID, Quantity: 1}}})
	assert.ErrorIs(t, err, domain.ErrAggregateClosed)
	_, err = f.uc.RecordSale(ctx, actor, agg.ID, sell(p.ID, 1))
	assert.ErrorIs(t, err, domain.ErrAggregateClosed)
	_, err = f.uc.ReturnItems(ctx, actor, agg.ID, sell(p.ID, 1))
	assert.ErrorIs(t, err, domain.ErrAggregateClosed)
	_, err = f.uc.Close(ctx, actor, agg.ID)
	assert.ErrorIs(t, err, domain.ErrAggregateClosed)

	_, err = f.uc.Close(ctx, actor, "no-existe")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

// ---------------------------------------------------------------------------
// Agentes y concurrencia
// ---------------------------------------------------------------------------

func TestAgentAssignment_UsaCampoAsignado(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	p := f.pool(t, "L1", 10)
	req := consignment(p.ID, 4, 50)
	req.Period = nil

	agg, err := f.uc.CreateAgentAssignment(ctx, actor, req)
	require.NoError(t, err)
	assert.Equal(t, "AGT-"+year()+"-0001", agg.Number)

	agg, err = f.uc.AddItems(ctx, actor, agg.ID, dto.AddItemsRequest{Items: []dto.AggregateItemRequest{{PoolID: p.ID, Quantity: 2}}})
	require.NoError(t, err)
	assert.Equal(t, int64(6), agg.Lines[0].QuantityAdded)

	agg, err = f.uc.RecordSale(ctx, actor, agg.ID, sell(p.ID, 5))
	require.NoError(t, err)
	got := f.reload(t, p.ID)
	assert.Equal(t, int64(4), got.RemainingQuantity)
	assert.Equal(t, int64(1), got.AgentAssignedQuantity)
	assert.Zero(t, got.ConsignedQuantity)

	sale, err := f.store.Repos().Sales.GetByID(ctx, agg.SaleID)
	require.NoError(t, err)
	assert.Equal(t, entity.PaymentTypeAgent, sale.PaymentType)

	_, err = f.uc.AddItems(ctx, actor, agg.ID, dto.AddItemsRequest{Items: []dto.AggregateItemRequest{{PoolID: p.ID, Quantity: 1, UnitPrice: decimal.NewFromInt(99)}}})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestRecordSale_ConcurrenteUnSoloRegistro(t *testing.T) {
	f := newFixture(t)
	p := f.pool(t, "L1", 20)
	agg, err := f.uc.CreateConsignment(context.Background(), actor, consignment(p.ID, 10, 10))
	require.NoError(t, err)

	g, ctx := errgroup.WithContext(context.Background())
	for i := 0; i < 10; i++ {
		g.Go(func() error {
			_, err := f.uc.RecordSale(ctx, actor, agg.ID, sell(p.ID, 1))
			return err
		})
	}
	// alguna llamada puede perder la carrera por el registro de venta: reintentable
	err = g.Wait()
	if err != nil {
		require.True(t, domain.KindOf(err).Retryable(), err)
	}

	got, err := f.uc.Get(context.Background(), agg.ID)
	require.NoError(t, err)
	sale, err := f.store.Repos().Sales.GetByID(context.Background(), got.SaleID)
	require.NoError(t, err)
	require.Len(t, sale.Lines, 1)
	assert.Equal(t, got.Lines[0].QuantitySold, sale.Lines[0].Quantity)

	pool := f.reload(t, p.ID)
	assert.Equal(t, int64(10)-got.Lines[0].QuantitySold, pool.ConsignedQuantity)
}
