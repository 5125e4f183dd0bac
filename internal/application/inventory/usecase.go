package inventory

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/jhoicas/inventario-ledger/internal/application/dto"
	"github.com/jhoicas/inventario-ledger/internal/domain"
	"github.com/jhoicas/inventario-ledger/internal/domain/entity"
	"github.com/jhoicas/inventario-ledger/internal/domain/inventory"
	"github.com/jhoicas/inventario-ledger/internal/domain/repository"
)

// PoolUseCase operaciones sobre pools de stock: creación, entradas, traslados y ajustes.
// Toda mutación corre en una transacción que bloquea la fila del pool (SELECT FOR UPDATE)
// y agrega su entrada en el libro de movimientos antes del Commit.
type PoolUseCase struct {
	txRunner      TxRunner
	repos         Repos
	productRepo   repository.ProductRepository
	warehouseRepo repository.WarehouseRepository
}

// NewPoolUseCase construye el caso de uso. repos son los repositorios de lectura fuera de tx.
func NewPoolUseCase(
	txRunner TxRunner,
	repos Repos,
	productRepo repository.ProductRepository,
	warehouseRepo repository.WarehouseRepository,
) *PoolUseCase {
	return &PoolUseCase{
		txRunner:      txRunner,
		repos:         repos,
		productRepo:   productRepo,
		warehouseRepo: warehouseRepo,
	}
}

// CreatePool crea el pool de un lote en una bodega; si InitialQuantity > 0 registra la entrada.
func (uc *PoolUseCase) CreatePool(ctx context.Context, actor string, req dto.CreatePoolRequest) (*entity.StockPool, error) {
	if err := dto.Validate(req); err != nil {
		return nil, err
	}
	if req.PurchasePrice.IsNegative() {
		return nil, fmt.Errorf("precio de compra: %w", domain.ErrInvalidInput)
	}
	if err := uc.checkRefs(ctx, req.ProductID, req.LocationID); err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	id := uuid.New().String()
	var pool *entity.StockPool
	err := uc.txRunner.Run(ctx, func(ctx context.Context, r Repos) error {
		existing, err := r.Pools.FindByBatch(ctx, req.ProductID, req.LocationID, req.BatchNumber)
		if err != nil {
			return err
		}
		if existing != nil {
			return fmt.Errorf("lote %q en bodega %s: %w", req.BatchNumber, req.LocationID, domain.ErrDuplicate)
		}
		pool = &entity.StockPool{
			ID:              id,
			ProductID:       req.ProductID,
			LocationID:      req.LocationID,
			BatchNumber:     req.BatchNumber,
			PurchasePrice:   inventory.Money(req.PurchasePrice),
			Manufacturer:    req.Manufacturer,
			ManufactureDate: req.ManufactureDate,
			ExpirationDate:  req.ExpirationDate,
			CreatedAt:       now,
			UpdatedAt:       now,
		}
		if err := r.Pools.Create(ctx, pool); err != nil {
			return err
		}
		if req.InitialQuantity == 0 {
			return nil
		}
		pool.ReceivedQuantity = req.InitialQuantity
		e := NewEntry(entity.MovementReceive, actor)
		e.At = now
		e.Remark = req.Remark
		_, err = ApplyInTx(ctx, r, pool, inventory.PoolDelta{Remaining: req.InitialQuantity}, e)
		return err
	})
	if err != nil {
		return nil, err
	}
	return pool, nil
}

// Receive suma quantity al disponible. Si llega precio de compra, el precio del pool se
// recalcula con el costo promedio ponderado sobre todas las unidades del lote.
func (uc *PoolUseCase) Receive(ctx context.Context, actor, poolID string, req dto.ReceiveRequest) (*entity.StockPool, error) {
	if err := dto.Validate(req); err != nil {
		return nil, err
	}
	if req.PurchasePrice != nil && req.PurchasePrice.IsNegative() {
		return nil, fmt.Errorf("precio de compra: %w", domain.ErrInvalidInput)
	}
	var out *entity.StockPool
	err := uc.txRunner.Run(ctx, func(ctx context.Context, r Repos) error {
		pool, err := LockPool(ctx, r, poolID)
		if err != nil {
			return err
		}
		d, err := inventory.Receive(pool, req.Quantity)
		if err != nil {
			return err
		}
		if req.PurchasePrice != nil {
			pool.PurchasePrice = inventory.CostCalculator(pool.Total(), pool.PurchasePrice, req.Quantity, *req.PurchasePrice)
		}
		pool.ReceivedQuantity += req.Quantity
		e := NewEntry(entity.MovementReceive, actor)
		e.Remark = req.Remark
		if _, err := ApplyInTx(ctx, r, pool, d, e); err != nil {
			return err
		}
		out = pool
		return nil
	})
	return out, err
}

// TransferToConsigned mueve quantity del disponible al campo consignado.
func (uc *PoolUseCase) TransferToConsigned(ctx context.Context, actor, poolID string, quantity int64) (*entity.StockPool, error) {
	return uc.Hold(ctx, actor, poolID, dto.HoldRequest{Field: entity.FieldConsigned, Quantity: quantity})
}

// TransferToAssigned mueve quantity del disponible al campo asignado a agentes.
func (uc *PoolUseCase) TransferToAssigned(ctx context.Context, actor, poolID string, quantity int64) (*entity.StockPool, error) {
	return uc.Hold(ctx, actor, poolID, dto.HoldRequest{Field: entity.FieldAgentAssigned, Quantity: quantity})
}

// Hold traslado del disponible a un campo retenido; InsufficientStock si no alcanza.
func (uc *PoolUseCase) Hold(ctx context.Context, actor, poolID string, req dto.HoldRequest) (*entity.StockPool, error) {
	if err := dto.Validate(req); err != nil {
		return nil, err
	}
	kind := entity.MovementConsign
	if req.Field == entity.FieldAgentAssigned {
		kind = entity.MovementAssign
	}
	var out *entity.StockPool
	err := uc.txRunner.Run(ctx, func(ctx context.Context, r Repos) error {
		pool, err := LockPool(ctx, r, poolID)
		if err != nil {
			return err
		}
		d, err := inventory.TransferToHeld(pool, req.Field, req.Quantity)
		if err != nil {
			return err
		}
		e := NewEntry(kind, actor)
		e.Field = req.Field
		e.ReferenceID = req.ReferenceID
		e.Remark = req.Remark
		if _, err := ApplyInTx(ctx, r, pool, d, e); err != nil {
			return err
		}
		out = pool
		return nil
	})
	return out, err
}

// AdjustStock ajuste por conteo físico sobre un campo; NegativeBalance si el resultado es < 0.
func (uc *PoolUseCase) AdjustStock(ctx context.Context, actor, poolID string, req dto.AdjustRequest) (*entity.StockPool, error) {
	if err := dto.Validate(req); err != nil {
		return nil, err
	}
	var out *entity.StockPool
	err := uc.txRunner.Run(ctx, func(ctx context.Context, r Repos) error {
		pool, err := LockPool(ctx, r, poolID)
		if err != nil {
			return err
		}
		d, err := inventory.Adjust(pool, req.Field, req.Delta)
		if err != nil {
			return err
		}
		e := NewEntry(entity.MovementAdjustment, actor)
		e.Field = req.Field
		e.Remark = req.Remark
		if _, err := ApplyInTx(ctx, r, pool, d, e); err != nil {
			return err
		}
		out = pool
		return nil
	})
	return out, err
}

// TransferResult pools de origen y destino después de un traslado entre bodegas.
type TransferResult struct {
	From *entity.StockPool
	To   *entity.StockPool
}

// TransferBetweenLocations resta del disponible en origen y suma en el pool del mismo lote
// en la bodega destino (se crea si no existe). Dos movimientos transfer, misma transacción.
func (uc *PoolUseCase) TransferBetweenLocations(ctx context.Context, actor, poolID string, req dto.TransferRequest) (*TransferResult, error) {
	if err := dto.Validate(req); err != nil {
		return nil, err
	}
	if err := uc.checkWarehouse(ctx, req.ToLocationID); err != nil {
		return nil, err
	}
	var out *TransferResult
	err := uc.txRunner.Run(ctx, func(ctx context.Context, r Repos) error {
		origin, err := LockPool(ctx, r, poolID)
		if err != nil {
			return err
		}
		if origin.LocationID == req.ToLocationID {
			return fmt.Errorf("bodega destino igual a la de origen: %w", domain.ErrInvalidInput)
		}
		if origin.RemainingQuantity < req.Quantity {
			return domain.ErrInsufficientStock
		}
		dest, err := r.Pools.FindByBatch(ctx, origin.ProductID, req.ToLocationID, origin.BatchNumber)
		if err != nil {
			return err
		}
		if dest == nil {
			now := time.Now().UTC()
			dest = &entity.StockPool{
				ID:              uuid.New().String(),
				ProductID:       origin.ProductID,
				LocationID:      req.ToLocationID,
				BatchNumber:     origin.BatchNumber,
				PurchasePrice:   origin.PurchasePrice,
				Manufacturer:    origin.Manufacturer,
				ManufactureDate: origin.ManufactureDate,
				ExpirationDate:  origin.ExpirationDate,
				CreatedAt:       now,
				UpdatedAt:       now,
			}
			if err := r.Pools.Create(ctx, dest); err != nil {
				return err
			}
		} else if dest, err = LockPool(ctx, r, dest.ID); err != nil {
			return err
		}

		e := NewEntry(entity.MovementTransfer, actor)
		e.Remark = req.Remark
		e.ReferenceID = dest.ID
		if _, err := ApplyInTx(ctx, r, origin, inventory.PoolDelta{Remaining: -req.Quantity}, e); err != nil {
			return err
		}
		e.ReferenceID = origin.ID
		if _, err := ApplyInTx(ctx, r, dest, inventory.PoolDelta{Remaining: req.Quantity}, e); err != nil {
			return err
		}
		out = &TransferResult{From: origin, To: dest}
		return nil
	})
	return out, err
}

// GetPool devuelve un pool por ID.
func (uc *PoolUseCase) GetPool(ctx context.Context, poolID string) (*entity.StockPool, error) {
	pool, err := uc.repos.Pools.GetByID(ctx, poolID)
	if err != nil {
		return nil, err
	}
	if pool == nil {
		return nil, fmt.Errorf("pool %s: %w", poolID, domain.ErrNotFound)
	}
	return pool, nil
}

// ListPools pools de una bodega, opcionalmente filtrados por producto.
func (uc *PoolUseCase) ListPools(ctx context.Context, locationID, productID string) ([]*entity.StockPool, error) {
	if locationID == "" {
		return nil, fmt.Errorf("location_id requerido: %w", domain.ErrInvalidInput)
	}
	return uc.repos.Pools.List(ctx, repository.PoolFilter{LocationID: locationID, ProductID: productID})
}

func (uc *PoolUseCase) checkRefs(ctx context.Context, productID, locationID string) error {
	product, err := uc.productRepo.GetByID(ctx, productID)
	if err != nil {
		return err
	}
	if product == nil {
		return fmt.Errorf("producto %s: %w", productID, domain.ErrNotFound)
	}
	return uc.checkWarehouse(ctx, locationID)
}

func (uc *PoolUseCase) checkWarehouse(ctx context.Context, locationID string) error {
	wh, err := uc.warehouseRepo.GetByID(ctx, locationID)
	if err != nil {
		return err
	}
	if wh == nil {
		return fmt.Errorf("bodega %s: %w", locationID, domain.ErrNotFound)
	}
	return nil
}
