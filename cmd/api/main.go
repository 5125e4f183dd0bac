package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/contrib/swagger"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/recover"

	"github.com/jhoicas/inventario-ledger/internal/application/inventory"
	"github.com/jhoicas/inventario-ledger/internal/application/lifecycle"
	"github.com/jhoicas/inventario-ledger/internal/application/sequence"
	"github.com/jhoicas/inventario-ledger/internal/application/usecase"
	"github.com/jhoicas/inventario-ledger/internal/domain/repository"
	"github.com/jhoicas/inventario-ledger/internal/infrastructure/memory"
	"github.com/jhoicas/inventario-ledger/internal/infrastructure/postgres"
	"github.com/jhoicas/inventario-ledger/internal/infrastructure/redislock"
	httpRouter "github.com/jhoicas/inventario-ledger/internal/interfaces/http"
	"github.com/jhoicas/inventario-ledger/pkg/config"
	"github.com/jhoicas/inventario-ledger/pkg/logger"
)

// backend almacenamiento elegido por configuración.
type backend struct {
	txRunner   inventory.TxRunner
	repos      inventory.Repos
	products   repository.ProductRepository
	warehouses repository.WarehouseRepository
	sequences  repository.SequenceRepository
	locker     sequence.Locker // nil: lock en proceso
	close      func()
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("cargar configuración: " + err.Error())
	}

	log := logger.New(logger.Config{
		Env:     cfg.App.Env,
		Level:   cfg.App.LogLevel,
		Service: cfg.App.Name,
	})
	log.Info().
		Str("env", cfg.App.Env).
		Str("app", cfg.App.Name).
		Str("store", cfg.Store.Driver).
		Msg("iniciando aplicación")

	ctx := context.Background()

	var store backend
	switch cfg.Store.Driver {
	case config.StoreMemory:
		mem := memory.New()
		store = backend{
			txRunner:   mem,
			repos:      mem.Repos(),
			products:   mem.Products(),
			warehouses: mem.Warehouses(),
			sequences:  mem.Sequences(),
			close:      func() {},
		}
		log.Warn().Msg("almacenamiento en memoria: los datos se pierden al reiniciar")
	default:
		pool, err := postgres.NewPool(ctx, cfg.DB)
		if err != nil {
			log.Fatal().Err(err).Msg("conexión a PostgreSQL")
		}
		store = backend{
			txRunner:   postgres.NewTxRunner(pool, cfg.Ledger.TxMaxRetries),
			repos:      postgres.NewRepos(pool),
			products:   postgres.NewProductRepository(pool),
			warehouses: postgres.NewWarehouseRepository(pool),
			sequences:  postgres.NewSequenceRepository(pool),
			locker:     postgres.NewAdvisoryLocker(pool),
			close:      pool.Close,
		}
	}
	defer store.close()

	// Secuenciador: el contador vive en el almacenamiento; la exclusión por (prefijo, ámbito)
	// usa Redis si está configurado, si no el advisory lock de Postgres o, en memoria, un lock local.
	locker := store.locker
	if cfg.Redis.Enabled() {
		rdb, err := redislock.NewClient(ctx, cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB)
		if err != nil {
			log.Fatal().Err(err).Str("addr", cfg.Redis.Addr).Msg("conexión a Redis")
		}
		defer rdb.Close()
		locker = redislock.NewLocker(rdb)
		log.Info().Str("addr", cfg.Redis.Addr).Msg("secuenciador con bloqueo distribuido")
	}
	numbers := sequence.NewGenerator(store.sequences, locker)

	poolUC := inventory.NewPoolUseCase(store.txRunner, store.repos, store.products, store.warehouses)
	saleUC := inventory.NewSaleUseCase(store.txRunner, store.repos, numbers)
	lifecycleUC := lifecycle.NewUseCase(store.txRunner, store.repos, numbers)
	warehouseUC := usecase.NewWarehouseUseCase(store.warehouses)
	productUC := usecase.NewProductUseCase(store.products, numbers)

	app := fiber.New(fiber.Config{
		AppName:      cfg.App.Name,
		ReadTimeout:  time.Second * 10,
		WriteTimeout: time.Second * 10,
		IdleTimeout:  time.Second * 60,
	})
	app.Use(recover.New())

	// Swagger UI en local: http://localhost:<port>/docs
	app.Use(swagger.New(swagger.Config{
		BasePath: "/",
		FilePath: "./docs/swagger.json",
		Path:     "docs",
		Title:    "Inventario Ledger API",
	}))

	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok", "service": cfg.App.Name, "store": cfg.Store.Driver})
	})

	httpRouter.Router(app, httpRouter.RouterDeps{
		WarehouseUC: warehouseUC,
		ProductUC:   productUC,
		PoolUC:      poolUC,
		SaleUC:      saleUC,
		LifecycleUC: lifecycleUC,
		Numbers:     numbers,
		Logger:      log,
		JWTSecret:   cfg.JWT.Secret,
	})

	go func() {
		if err := app.Listen(cfg.HTTP.Addr()); err != nil {
			log.Error().Err(err).Msg("servidor HTTP finalizado")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("señal de apagado recibida, cerrando servidor...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := app.ShutdownWithContext(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("apagado del servidor")
	}

	log.Info().Msg("aplicación detenida")
}
