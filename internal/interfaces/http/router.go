package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/inventario-ledger/internal/application/inventory"
	"github.com/jhoicas/inventario-ledger/internal/application/lifecycle"
	"github.com/jhoicas/inventario-ledger/internal/application/usecase"
	"github.com/jhoicas/inventario-ledger/pkg/logger"
)

// RouterDeps dependencias para el router.
type RouterDeps struct {
	WarehouseUC *usecase.WarehouseUseCase
	ProductUC   *usecase.ProductUseCase
	PoolUC      *inventory.PoolUseCase
	SaleUC      *inventory.SaleUseCase
	LifecycleUC *lifecycle.UseCase
	Numbers     inventory.NumberGenerator
	Logger      *logger.Logger
	JWTSecret   string
}

// Router registra las rutas de la API.
func Router(app *fiber.App, deps RouterDeps) {
	api := app.Group("/api")

	// Todas las rutas requieren Bearer Token: el actor queda en el libro.
	protected := api.Group("/", AuthMiddleware(deps.JWTSecret))

	// Warehouses
	warehouses := protected.Group("/warehouses")
	warehouseHandler := NewWarehouseHandler(deps.WarehouseUC, deps.Logger)
	warehouses.Post("/", warehouseHandler.Create)
	warehouses.Get("/", warehouseHandler.List)
	warehouses.Get("/:id", warehouseHandler.GetByID)

	// Products
	products := protected.Group("/products")
	productHandler := NewProductHandler(deps.ProductUC, deps.Logger)
	products.Post("/", productHandler.Create)
	products.Get("/", productHandler.List)
	products.Get("/:id", productHandler.GetByID)

	// Pools y libro de movimientos
	pools := protected.Group("/pools")
	poolHandler := NewPoolHandler(deps.PoolUC, deps.Logger)
	pools.Post("/", poolHandler.Create)
	pools.Get("/", poolHandler.List)
	pools.Get("/expiring", poolHandler.Expiring)
	pools.Get("/:id", poolHandler.GetByID)
	pools.Post("/:id/receive", poolHandler.Receive)
	pools.Post("/:id/hold", poolHandler.Hold)
	pools.Post("/:id/adjust", poolHandler.Adjust)
	pools.Post("/:id/transfer", poolHandler.Transfer)
	pools.Get("/:id/movements", poolHandler.Movements)
	pools.Get("/:id/stock-card", poolHandler.StockCard)

	// Consignaciones y asignaciones
	aggHandler := NewAggregateHandler(deps.LifecycleUC, deps.Logger)
	protected.Post("/consignments", aggHandler.CreateConsignment)
	protected.Post("/agent-assignments", aggHandler.CreateAgentAssignment)
	aggregates := protected.Group("/aggregates")
	aggregates.Get("/", aggHandler.List)
	aggregates.Get("/:id", aggHandler.GetByID)
	aggregates.Post("/:id/items", aggHandler.AddItems)
	aggregates.Post("/:id/sales", aggHandler.RecordSale)
	aggregates.Post("/:id/returns", aggHandler.ReturnItems)
	aggregates.Post("/:id/payments", aggHandler.RecordPayment)
	aggregates.Get("/:id/payments", aggHandler.Payments)
	aggregates.Put("/:id/lines/:lineId/sold", aggHandler.EditSold)
	aggregates.Post("/:id/close", aggHandler.Close)

	// Ventas directas
	sales := protected.Group("/sales")
	saleHandler := NewSaleHandler(deps.SaleUC, deps.Logger)
	sales.Post("/", saleHandler.Create)
	sales.Get("/:id", saleHandler.GetByID)
	sales.Put("/:id/lines/:lineId/quantity", saleHandler.EditLineQuantity)

	// Secuenciador
	seqHandler := NewSequenceHandler(deps.Numbers, deps.Logger)
	protected.Post("/sequences/next", seqHandler.Next)
}
