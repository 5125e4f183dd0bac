package config_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/inventario-ledger/pkg/config"
)

func TestLoad_ValoresPorDefecto(t *testing.T) {
	t.Setenv("STORE_DRIVER", "postgres")
	cfg, err := config.Load()
	require.NoError(t, err)
	assert.Equal(t, config.StorePostgres, cfg.Store.Driver)
	assert.Equal(t, 3, cfg.Ledger.TxMaxRetries)
	assert.Equal(t, "inventario-ledger", cfg.App.Name)
	assert.Equal(t, "info", cfg.App.LogLevel)
	assert.Equal(t, int32(25), cfg.DB.Pool.MaxConns)
	assert.Equal(t, time.Minute, cfg.DB.Pool.HealthCheckPeriod)
	assert.False(t, cfg.DB.Pool.ForceIPv4)
}

func TestLoad_PoolDesdeEntorno(t *testing.T) {
	t.Setenv("STORE_DRIVER", "postgres")
	t.Setenv("DB_MAX_CONNS", "10")
	t.Setenv("DB_MIN_CONNS", "1")
	t.Setenv("DB_MAX_CONN_LIFETIME", "15m")
	t.Setenv("DB_HEALTH_CHECK_PERIOD", "30s")
	t.Setenv("DB_FORCE_IPV4", "true")

	cfg, err := config.Load()
	require.NoError(t, err)
	assert.Equal(t, int32(10), cfg.DB.Pool.MaxConns)
	assert.Equal(t, int32(1), cfg.DB.Pool.MinConns)
	assert.Equal(t, 15*time.Minute, cfg.DB.Pool.MaxConnLifetime)
	assert.Equal(t, 30*time.Minute, cfg.DB.Pool.MaxConnIdleTime)
	assert.Equal(t, 30*time.Second, cfg.DB.Pool.HealthCheckPeriod)
	assert.True(t, cfg.DB.Pool.ForceIPv4)
}

func TestLoad_PoolSinConexiones(t *testing.T) {
	t.Setenv("STORE_DRIVER", "postgres")
	t.Setenv("DB_MAX_CONNS", "0")
	_, err := config.Load()
	assert.Error(t, err)
}

func TestLoad_DriverNoSoportado(t *testing.T) {
	t.Setenv("STORE_DRIVER", "mongo")
	cfg, err := config.Load()
	require.Error(t, err)
	assert.Nil(t, cfg)
}

func TestLoad_DesdeEntorno(t *testing.T) {
	t.Setenv("STORE_DRIVER", "Memory")
	t.Setenv("REDIS_ADDR", "localhost:6379")
	t.Setenv("LEDGER_TX_MAX_RETRIES", "5")
	t.Setenv("HTTP_PORT", "9090")

	cfg, err := config.Load()
	require.NoError(t, err)
	assert.Equal(t, config.StoreMemory, cfg.Store.Driver)
	assert.True(t, cfg.Redis.Enabled())
	assert.Equal(t, 5, cfg.Ledger.TxMaxRetries)
	assert.Equal(t, "0.0.0.0:9090", cfg.HTTP.Addr())
}

func TestLoad_ReintentosNegativos(t *testing.T) {
	t.Setenv("STORE_DRIVER", "postgres")
	t.Setenv("LEDGER_TX_MAX_RETRIES", "-1")
	_, err := config.Load()
	assert.Error(t, err)
}

func TestDSN(t *testing.T) {
	c := config.DBConfig{Host: "db", Port: 5432, User: "app", Password: "p@ss", DBName: "ledger", SSLMode: "disable"}
	assert.Equal(t, "postgres://app:p%40ss@db:5432/ledger?sslmode=disable", c.DSN())
	c.DatabaseURL = "postgres://x"
	assert.Equal(t, "postgres://x", c.ConnectionString())
}
