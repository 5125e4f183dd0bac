package inventory_test

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/inventario-ledger/internal/domain"
	"github.com/jhoicas/inventario-ledger/internal/domain/entity"
	"github.com/jhoicas/inventario-ledger/internal/domain/inventory"
)

func TestReceive(t *testing.T) {
	pool := poolWith(0, 0, 0)

	d, err := inventory.Receive(&pool, 12)
	require.NoError(t, err)
	require.NoError(t, inventory.Apply(&pool, d))
	assert.Equal(t, int64(12), pool.RemainingQuantity)

	_, err = inventory.Receive(&pool, 0)
	require.ErrorIs(t, err, domain.ErrInvalidQuantity)
	_, err = inventory.Receive(&pool, -3)
	require.ErrorIs(t, err, domain.ErrInvalidQuantity)
}

func TestTransferToHeld(t *testing.T) {
	pool := poolWith(10, 0, 0)

	d, err := inventory.TransferToHeld(&pool, entity.FieldConsigned, 4)
	require.NoError(t, err)
	require.NoError(t, inventory.Apply(&pool, d))

	d, err = inventory.TransferToHeld(&pool, entity.FieldAgentAssigned, 6)
	require.NoError(t, err)
	require.NoError(t, inventory.Apply(&pool, d))

	assert.Equal(t, int64(0), pool.RemainingQuantity)
	assert.Equal(t, int64(4), pool.ConsignedQuantity)
	assert.Equal(t, int64(6), pool.AgentAssignedQuantity)
	assert.Equal(t, int64(10), pool.Total(), "una transferencia conserva el total")

	_, err = inventory.TransferToHeld(&pool, entity.FieldConsigned, 1)
	require.ErrorIs(t, err, domain.ErrInsufficientStock)

	_, err = inventory.TransferToHeld(&pool, entity.FieldRemaining, 1)
	require.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestAdjust_SaldoNegativo(t *testing.T) {
	pool := poolWith(3, 2, 0)

	_, err := inventory.Adjust(&pool, entity.FieldConsigned, -3)
	require.ErrorIs(t, err, domain.ErrNegativeBalance)

	d, err := inventory.Adjust(&pool, entity.FieldConsigned, -2)
	require.NoError(t, err)
	require.NoError(t, inventory.Apply(&pool, d))
	assert.Equal(t, int64(0), pool.ConsignedQuantity)
}

func TestApply_TodoONada(t *testing.T) {
	pool := poolWith(1, 1, 0)

	err := inventory.Apply(&pool, inventory.PoolDelta{Remaining: 5, Consigned: -2})
	require.ErrorIs(t, err, domain.ErrNegativeBalance)
	assert.Equal(t, int64(1), pool.RemainingQuantity)
	assert.Equal(t, int64(1), pool.ConsignedQuantity)
}

func TestRelease_SoloLoRetenido(t *testing.T) {
	pool := poolWith(5, 2, 0)

	d, err := inventory.Release(&pool, entity.FieldConsigned, 4)
	require.NoError(t, err)
	assert.Equal(t, inventory.PoolDelta{Remaining: 2, Consigned: -2}, d)
	assert.Zero(t, d.Net())
}

func TestCostCalculator_PromedioPonderado(t *testing.T) {
	cost := inventory.CostCalculator(10, decimal.NewFromInt(100), 5, decimal.NewFromInt(130))
	assert.True(t, cost.Equal(decimal.NewFromInt(110)), "got %s", cost)

	assert.True(t, inventory.CostCalculator(0, decimal.Zero, 0, decimal.NewFromInt(5)).IsZero())

	// 2 a 10 + 1 a 11 = 31/3: se guarda con dos decimales, igual que NUMERIC(18,2)
	cost = inventory.CostCalculator(2, decimal.NewFromInt(10), 1, decimal.NewFromInt(11))
	assert.Equal(t, "10.33", cost.String())
}
