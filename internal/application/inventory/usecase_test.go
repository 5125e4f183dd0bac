package inventory_test

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/inventario-ledger/internal/application/dto"
	appinv "github.com/jhoicas/inventario-ledger/internal/application/inventory"
	"github.com/jhoicas/inventario-ledger/internal/application/sequence"
	"github.com/jhoicas/inventario-ledger/internal/domain"
	"github.com/jhoicas/inventario-ledger/internal/domain/entity"
	"github.com/jhoicas/inventario-ledger/internal/infrastructure/memory"
)

const actor = "user-1"

func setup(t *testing.T) (*memory.Store, *appinv.PoolUseCase, *appinv.SaleUseCase) {
	t.Helper()
	ctx := context.Background()
	store := memory.New()
	require.NoError(t, store.Products().Create(ctx, &entity.Product{ID: "prod-1", SKU: "SKU-2025-0001", Name: "Crema"}))
	require.NoError(t, store.Warehouses().Create(ctx, &entity.Warehouse{ID: "wh-1", Name: "Principal"}))
	require.NoError(t, store.Warehouses().Create(ctx, &entity.Warehouse{ID: "wh-2", Name: "Sucursal"}))
	pools := appinv.NewPoolUseCase(store, store.Repos(), store.Products(), store.Warehouses())
	sales := appinv.NewSaleUseCase(store, store.Repos(), sequence.NewGenerator(store.Sequences(), nil))
	return store, pools, sales
}

func createPool(t *testing.T, uc *appinv.PoolUseCase, batch string, qty int64) *entity.StockPool {
	t.Helper()
	p, err := uc.CreatePool(context.Background(), actor, dto.CreatePoolRequest{
		ProductID: "prod-1", LocationID: "wh-1", BatchNumber: batch, InitialQuantity: qty,
		PurchasePrice: decimal.NewFromInt(100),
	})
	require.NoError(t, err)
	return p
}

// ---------------------------------------------------------------------------
// Pools
// ---------------------------------------------------------------------------

func TestCreatePool_RegistraEntrada(t *testing.T) {
	_, uc, _ := setup(t)
	p := createPool(t, uc, "L1", 10)
	assert.Equal(t, int64(10), p.RemainingQuantity)
	assert.Equal(t, int64(10), p.ReceivedQuantity)

	movs, err := uc.ListMovements(context.Background(), p.ID, nil, nil)
	require.NoError(t, err)
	require.Len(t, movs, 1)
	assert.Equal(t, entity.MovementReceive, movs[0].Kind)
	assert.Equal(t, int64(10), movs[0].Quantity)
	assert.Equal(t, int64(10), movs[0].Balance)
}

func TestCreatePool_Validaciones(t *testing.T) {
	_, uc, _ := setup(t)
	ctx := context.Background()
	createPool(t, uc, "L1", 0)

	_, err := uc.CreatePool(ctx, actor, dto.CreatePoolRequest{ProductID: "prod-1", LocationID: "wh-1", BatchNumber: "L1"})
	assert.ErrorIs(t, err, domain.ErrDuplicate)
	assert.Equal(t, domain.KindInvalidInput, domain.KindOf(err))

	_, err = uc.CreatePool(ctx, actor, dto.CreatePoolRequest{ProductID: "nope", LocationID: "wh-1"})
	assert.ErrorIs(t, err, domain.ErrNotFound)

	_, err = uc.CreatePool(ctx, actor, dto.CreatePoolRequest{ProductID: "prod-1", LocationID: "wh-1", InitialQuantity: -1})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	_, err = uc.CreatePool(ctx, actor, dto.CreatePoolRequest{LocationID: "wh-1"})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestReceive_CostoPromedioPonderado(t *testing.T) {
	_, uc, _ := setup(t)
	p := createPool(t, uc, "L1", 10)
	price := decimal.NewFromInt(130)

	got, err := uc.Receive(context.Background(), actor, p.ID, dto.ReceiveRequest{Quantity: 5, PurchasePrice: &price})
	require.NoError(t, err)
	assert.Equal(t, int64(15), got.RemainingQuantity)
	assert.Equal(t, int64(15), got.ReceivedQuantity)
	assert.True(t, got.PurchasePrice.Equal(decimal.NewFromInt(110)), got.PurchasePrice.String())

	_, err = uc.Receive(context.Background(), actor, p.ID, dto.ReceiveRequest{Quantity: 0})
	assert.ErrorIs(t, err, domain.ErrInvalidQuantity)
	_, err = uc.Receive(context.Background(), actor, "nope", dto.ReceiveRequest{Quantity: 1})
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestHold_StockInsuficienteNoMuta(t *testing.T) {
	_, uc, _ := setup(t)
	ctx := context.Background()
	p := createPool(t, uc, "L1", 10)

	got, err := uc.TransferToConsigned(ctx, actor, p.ID, 4)
	require.NoError(t, err)
	assert.Equal(t, int64(6), got.RemainingQuantity)
	assert.Equal(t, int64(4), got.ConsignedQuantity)

	got, err = uc.TransferToAssigned(ctx, actor, p.ID, 6)
	require.NoError(t, err)
	assert.Zero(t, got.RemainingQuantity)
	assert.Equal(t, int64(6), got.AgentAssignedQuantity)

	_, err = uc.TransferToConsigned(ctx, actor, p.ID, 1)
	assert.ErrorIs(t, err, domain.ErrInsufficientStock)

	after, err := uc.GetPool(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(4), after.ConsignedQuantity)
	assert.Equal(t, int64(6), after.AgentAssignedQuantity)
	assert.Equal(t, after.ReceivedQuantity, after.Total())

	movs, err := uc.ListMovements(ctx, p.ID, nil, nil)
	require.NoError(t, err)
	require.Len(t, movs, 3)
	assert.Equal(t, entity.MovementConsign, movs[1].Kind)
	assert.Equal(t, entity.FieldConsigned, movs[1].Field)
	assert.Equal(t, int64(4), movs[1].Quantity)
	assert.Equal(t, int64(-4), movs[1].RemainingDelta)
	assert.Equal(t, entity.MovementAssign, movs[2].Kind)
}

func TestAdjustStock(t *testing.T) {
	_, uc, _ := setup(t)
	ctx := context.Background()
	p := createPool(t, uc, "L1", 10)

	got, err := uc.AdjustStock(ctx, actor, p.ID, dto.AdjustRequest{Field: entity.FieldRemaining, Delta: -3, Remark: "conteo"})
	require.NoError(t, err)
	assert.Equal(t, int64(7), got.RemainingQuantity)

	_, err = uc.AdjustStock(ctx, actor, p.ID, dto.AdjustRequest{Field: entity.FieldConsigned, Delta: -1, Remark: "conteo"})
	assert.ErrorIs(t, err, domain.ErrNegativeBalance)

	_, err = uc.AdjustStock(ctx, actor, p.ID, dto.AdjustRequest{Field: entity.FieldRemaining, Delta: 0, Remark: "conteo"})
	assert.ErrorIs(t, err, domain.ErrInvalidQuantity)

	_, err = uc.AdjustStock(ctx, actor, p.ID, dto.AdjustRequest{Field: entity.FieldRemaining, Delta: 1})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestTransferBetweenLocations(t *testing.T) {
	_, uc, _ := setup(t)
	ctx := context.Background()
	p := createPool(t, uc, "L1", 10)

	res, err := uc.TransferBetweenLocations(ctx, actor, p.ID, dto.TransferRequest{ToLocationID: "wh-2", Quantity: 4})
	require.NoError(t, err)
	assert.Equal(t, int64(6), res.From.RemainingQuantity)
	assert.Equal(t, int64(4), res.To.RemainingQuantity)
	assert.Equal(t, "wh-2", res.To.LocationID)
	assert.Equal(t, "L1", res.To.BatchNumber)

	// segundo traslado reutiliza el pool destino
	res2, err := uc.TransferBetweenLocations(ctx, actor, p.ID, dto.TransferRequest{ToLocationID: "wh-2", Quantity: 1})
	require.NoError(t, err)
	assert.Equal(t, res.To.ID, res2.To.ID)
	assert.Equal(t, int64(5), res2.To.RemainingQuantity)

	_, err = uc.TransferBetweenLocations(ctx, actor, p.ID, dto.TransferRequest{ToLocationID: "wh-2", Quantity: 99})
	assert.ErrorIs(t, err, domain.ErrInsufficientStock)
	_, err = uc.TransferBetweenLocations(ctx, actor, p.ID, dto.TransferRequest{ToLocationID: "wh-1", Quantity: 1})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	movs, err := uc.ListMovements(ctx, res.To.ID, nil, nil)
	require.NoError(t, err)
	require.Len(t, movs, 2)
	assert.Equal(t, entity.MovementTransfer, movs[0].Kind)
	assert.Equal(t, p.ID, movs[0].ReferenceID)

	list, err := uc.ListPools(ctx, "wh-2", "")
	require.NoError(t, err)
	assert.Len(t, list, 1)
	_, err = uc.ListPools(ctx, "", "")
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

// ---------------------------------------------------------------------------
// Reportes
// ---------------------------------------------------------------------------

func TestStockCard_SaldoDeApertura(t *testing.T) {
	_, uc, _ := setup(t)
	ctx := context.Background()
	p := createPool(t, uc, "L1", 10)
	_, err := uc.TransferToConsigned(ctx, actor, p.ID, 3)
	require.NoError(t, err)

	mark := time.Now().UTC()
	time.Sleep(2 * time.Millisecond)
	_, err = uc.Receive(ctx, actor, p.ID, dto.ReceiveRequest{Quantity: 5})
	require.NoError(t, err)

	card, err := uc.StockCard(ctx, p.ID, mark, time.Now().UTC().Add(time.Minute))
	require.NoError(t, err)
	assert.Equal(t, int64(7), card.OpeningRemaining)
	assert.Equal(t, int64(3), card.OpeningConsigned)
	require.Len(t, card.Movements, 1)
	assert.Equal(t, int64(12), card.Movements[0].RemainingAfter)
	assert.Equal(t, int64(12), card.Pool.RemainingQuantity)

	_, err = uc.StockCard(ctx, p.ID, mark, mark.Add(-time.Hour))
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
	_, err = uc.StockCard(ctx, "nope", mark, mark)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestExpiringPools(t *testing.T) {
	_, uc, _ := setup(t)
	ctx := context.Background()
	soon := time.Now().UTC().AddDate(0, 0, 10)
	later := time.Now().UTC().AddDate(1, 0, 0)
	for _, c := range []struct {
		batch string
		qty   int64
		exp   *time.Time
	}{{"A", 5, &later}, {"B", 5, &soon}, {"C", 0, &soon}, {"D", 5, nil}} {
		_, err := uc.CreatePool(ctx, actor, dto.CreatePoolRequest{ProductID: "prod-1", LocationID: "wh-1", BatchNumber: c.batch, InitialQuantity: c.qty, ExpirationDate: c.exp})
		require.NoError(t, err)
	}

	list, err := uc.ExpiringPools(ctx, "wh-1", time.Now().UTC().AddDate(0, 1, 0))
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, "B", list[0].BatchNumber)

	list, err = uc.ExpiringPools(ctx, "wh-1", time.Now().UTC().AddDate(2, 0, 0))
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, "B", list[0].BatchNumber)
	assert.Equal(t, "A", list[1].BatchNumber)
}

// ---------------------------------------------------------------------------
// Ventas directas y conciliación
// ---------------------------------------------------------------------------

func TestRecordDirectSale(t *testing.T) {
	_, pools, uc := setup(t)
	ctx := context.Background()
	p := createPool(t, pools, "L1", 10)

	sale, err := uc.RecordDirectSale(ctx, actor, dto.DirectSaleRequest{
		CounterpartyID: "cliente-1",
		PaymentType:    entity.PaymentTypeCash,
		Items:          []dto.DirectSaleItemRequest{{PoolID: p.ID, Source: entity.FieldRemaining, Quantity: 4, UnitPrice: decimal.RequireFromString("12.345")}},
	})
	require.NoError(t, err)
	assert.Regexp(t, `^TXN-\d{4}-0001$`, sale.Number)
	assert.Equal(t, entity.PaymentStatusPaid, sale.PaymentStatus)
	// el precio se guarda con dos decimales antes de valorar la línea
	assert.Equal(t, "12.35", sale.Lines[0].UnitPrice.String())
	assert.True(t, sale.Total.Equal(decimal.RequireFromString("49.40")), sale.Total.String())

	got, err := pools.GetPool(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(6), got.RemainingQuantity)

	_, err = uc.RecordDirectSale(ctx, actor, dto.DirectSaleRequest{
		CounterpartyID: "cliente-1",
		PaymentType:    entity.PaymentTypeCredit,
		Items:          []dto.DirectSaleItemRequest{{PoolID: p.ID, Source: entity.FieldRemaining, Quantity: 7}},
	})
	assert.ErrorIs(t, err, domain.ErrInsufficientStock)
}

// Conciliación sobre una venta tomada del consignado: primero se agota el consignado,
// luego el disponible; al reducir la cantidad solo se acredita el disponible.
func TestEditSaleLineQuantity_OrdenDeDescuentoYAsimetria(t *testing.T) {
	_, pools, uc := setup(t)
	ctx := context.Background()
	p := createPool(t, pools, "L1", 15)
	_, err := pools.TransferToConsigned(ctx, actor, p.ID, 5)
	require.NoError(t, err)

	sale, err := uc.RecordDirectSale(ctx, actor, dto.DirectSaleRequest{
		CounterpartyID: "cliente-1",
		PaymentType:    entity.PaymentTypeCredit,
		Items:          []dto.DirectSaleItemRequest{{PoolID: p.ID, Source: entity.FieldConsigned, Quantity: 1, UnitPrice: decimal.NewFromInt(10)}},
	})
	require.NoError(t, err)
	lineID := sale.Lines[0].ID

	// remaining 10, consigned 4: 1 -> 8 toma 4 del consignado y 3 del disponible
	sale, err = uc.EditSaleLineQuantity(ctx, actor, sale.ID, lineID, dto.EditQuantityRequest{NewQuantity: 8})
	require.NoError(t, err)
	assert.True(t, sale.Total.Equal(decimal.NewFromInt(80)))
	got, _ := pools.GetPool(ctx, p.ID)
	assert.Equal(t, int64(7), got.RemainingQuantity)
	assert.Zero(t, got.ConsignedQuantity)

	// 8 -> 5: el disponible recibe 3, el consignado sigue en cero
	_, err = uc.EditSaleLineQuantity(ctx, actor, sale.ID, lineID, dto.EditQuantityRequest{NewQuantity: 5})
	require.NoError(t, err)
	got, _ = pools.GetPool(ctx, p.ID)
	assert.Equal(t, int64(10), got.RemainingQuantity)
	assert.Zero(t, got.ConsignedQuantity)

	// sin cambio: ni pool ni libro
	before, _ := pools.ListMovements(ctx, p.ID, nil, nil)
	_, err = uc.EditSaleLineQuantity(ctx, actor, sale.ID, lineID, dto.EditQuantityRequest{NewQuantity: 5})
	require.NoError(t, err)
	after, _ := pools.ListMovements(ctx, p.ID, nil, nil)
	assert.Len(t, after, len(before))

	// faltante: no se aplica nada
	_, err = uc.EditSaleLineQuantity(ctx, actor, sale.ID, lineID, dto.EditQuantityRequest{NewQuantity: 16})
	assert.ErrorIs(t, err, domain.ErrInsufficientStock)
	got, _ = pools.GetPool(ctx, p.ID)
	assert.Equal(t, int64(10), got.RemainingQuantity)
	assert.Equal(t, got.ReceivedQuantity, got.Total()+5)

	last := after[len(after)-1]
	assert.Equal(t, entity.MovementReturn, last.Kind)
	assert.Equal(t, int64(3), last.Quantity)
	assert.Equal(t, int64(10), last.RemainingAfter)
}

func TestEditSaleLineQuantity_Errores(t *testing.T) {
	store, pools, uc := setup(t)
	ctx := context.Background()
	p := createPool(t, pools, "L1", 10)

	_, err := uc.EditSaleLineQuantity(ctx, actor, "nope", "x", dto.EditQuantityRequest{NewQuantity: 1})
	assert.ErrorIs(t, err, domain.ErrNotFound)

	require.NoError(t, store.Repos().Sales.Create(ctx, &entity.Sale{
		ID: "s-agg", Number: "TXN-2025-0100", AggregateID: "agg-1",
		Lines: []*entity.SaleLine{{ID: "l1", PoolID: p.ID, Source: entity.FieldConsigned, Quantity: 1}},
	}))
	_, err = uc.EditSaleLineQuantity(ctx, actor, "s-agg", "l1", dto.EditQuantityRequest{NewQuantity: 2})
	assert.ErrorIs(t, err, domain.ErrInvalidState)
	_, err = uc.EditSaleLineQuantity(ctx, actor, "s-agg", "l2", dto.EditQuantityRequest{NewQuantity: 2})
	assert.ErrorIs(t, err, domain.ErrNotFound)
	_, err = uc.EditSaleLineQuantity(ctx, actor, "s-agg", "l1", dto.EditQuantityRequest{NewQuantity: -1})
	assert.ErrorIs(t, err, domain.ErrInvalidQuantity)
}
