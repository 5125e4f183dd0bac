package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Product representa un producto o SKU del inventario (multi-bodega, multi-lote).
type Product struct {
	ID          string
	SKU         string // único; se genera con el secuenciador si viene vacío
	Name        string
	Description string
	Price       decimal.Decimal // precio de referencia; el precio de venta lo decide el llamador
	UnitMeasure string
	CreatedAt   time.Time
	UpdatedAt   time.Time
}
