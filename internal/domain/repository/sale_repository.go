package repository

import (
	"context"

	"github.com/jhoicas/inventario-ledger/internal/domain/entity"
)

// SaleRepository persistencia de ventas; no existe delete.
type SaleRepository interface {
	Create(ctx context.Context, sale *entity.Sale) error
	GetByID(ctx context.Context, id string) (*entity.Sale, error)
	GetForUpdate(ctx context.Context, id string) (*entity.Sale, error)
	// Update persiste cabecera e inserta/actualiza líneas.
	Update(ctx context.Context, sale *entity.Sale) error
}
