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
)

// SaleUseCase ventas directas desde un pool y corrección de cantidades vendidas.
// Las ventas de consignaciones y asignaciones las maneja el ciclo de vida del documento.
type SaleUseCase struct {
	txRunner TxRunner
	repos    Repos
	numbers  NumberGenerator
}

// NewSaleUseCase construye el caso de uso.
func NewSaleUseCase(txRunner TxRunner, repos Repos, numbers NumberGenerator) *SaleUseCase {
	return &SaleUseCase{txRunner: txRunner, repos: repos, numbers: numbers}
}

// RecordDirectSale registra una venta tomando cada línea del campo Source del pool
// (si Source es un campo retenido y no alcanza, el resto sale del disponible).
func (uc *SaleUseCase) RecordDirectSale(ctx context.Context, actor string, req dto.DirectSaleRequest) (*entity.Sale, error) {
	if err := dto.Validate(req); err != nil {
		return nil, err
	}
	for _, it := range req.Items {
		if it.UnitPrice.IsNegative() {
			return nil, fmt.Errorf("precio unitario: %w", domain.ErrInvalidInput)
		}
	}
	now := time.Now().UTC()
	number, err := uc.numbers.Next(ctx, inventory.PrefixSale, inventory.YearScope(now))
	if err != nil {
		return nil, err
	}
	saleID := uuid.New().String()

	var sale *entity.Sale
	err = uc.txRunner.Run(ctx, func(ctx context.Context, r Repos) error {
		sale = &entity.Sale{
			ID:             saleID,
			Number:         number,
			CounterpartyID: req.CounterpartyID,
			PaymentType:    req.PaymentType,
			CreatedAt:      now,
			UpdatedAt:      now,
			CreatedBy:      actor,
		}
		e := NewEntry(entity.MovementSale, actor)
		e.ReferenceID = saleID
		for _, it := range req.Items {
			pool, err := LockPool(ctx, r, it.PoolID)
			if err != nil {
				return err
			}
			if _, err := ReconcileInTx(ctx, r, pool, it.Source, 0, it.Quantity, e); err != nil {
				return fmt.Errorf("pool %s: %w", it.PoolID, err)
			}
			sale.Lines = append(sale.Lines, &entity.SaleLine{
				ID:        uuid.New().String(),
				SaleID:    saleID,
				PoolID:    it.PoolID,
				Source:    it.Source,
				Quantity:  it.Quantity,
				UnitPrice: inventory.Money(it.UnitPrice),
			})
		}
		inventory.RecalculateSale(sale)
		sale.PaymentStatus = entity.PaymentStatusUnpaid
		if req.PaymentType == entity.PaymentTypeCash {
			sale.PaymentStatus = entity.PaymentStatusPaid
		}
		return r.Sales.Create(ctx, sale)
	})
	if err != nil {
		return nil, err
	}
	return sale, nil
}

// EditSaleLineQuantity corrige la cantidad de una línea de venta directa y concilia el pool.
// Las líneas originadas en una consignación o asignación se corrigen desde su documento.
func (uc *SaleUseCase) EditSaleLineQuantity(ctx context.Context, actor, saleID, lineID string, req dto.EditQuantityRequest) (*entity.Sale, error) {
	if err := dto.Validate(req); err != nil {
		return nil, err
	}
	var out *entity.Sale
	err := uc.txRunner.Run(ctx, func(ctx context.Context, r Repos) error {
		sale, err := r.Sales.GetForUpdate(ctx, saleID)
		if err != nil {
			return err
		}
		if sale == nil {
			return fmt.Errorf("venta %s: %w", saleID, domain.ErrNotFound)
		}
		line := sale.Line(lineID)
		if line == nil {
			return fmt.Errorf("línea %s: %w", lineID, domain.ErrNotFound)
		}
		if sale.AggregateID != "" {
			return fmt.Errorf("la venta pertenece al documento %s: %w", sale.AggregateID, domain.ErrInvalidState)
		}
		pool, err := LockPool(ctx, r, line.PoolID)
		if err != nil {
			return err
		}
		e := NewEntry(entity.MovementSale, actor)
		e.ReferenceID = sale.ID
		e.Remark = req.Remark
		if _, err := ReconcileInTx(ctx, r, pool, line.Source, line.Quantity, req.NewQuantity, e); err != nil {
			return err
		}
		line.Quantity = req.NewQuantity
		inventory.RecalculateSale(sale)
		sale.UpdatedAt = e.At
		if err := r.Sales.Update(ctx, sale); err != nil {
			return err
		}
		out = sale
		return nil
	})
	return out, err
}

// GetSale devuelve una venta con sus líneas.
func (uc *SaleUseCase) GetSale(ctx context.Context, saleID string) (*entity.Sale, error) {
	sale, err := uc.repos.Sales.GetByID(ctx, saleID)
	if err != nil {
		return nil, err
	}
	if sale == nil {
		return nil, fmt.Errorf("venta %s: %w", saleID, domain.ErrNotFound)
	}
	return sale, nil
}
