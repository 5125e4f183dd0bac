package usecase

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/jhoicas/inventario-ledger/internal/application/dto"
	"github.com/jhoicas/inventario-ledger/internal/application/inventory"
	"github.com/jhoicas/inventario-ledger/internal/domain"
	"github.com/jhoicas/inventario-ledger/internal/domain/entity"
	domaininv "github.com/jhoicas/inventario-ledger/internal/domain/inventory"
	"github.com/jhoicas/inventario-ledger/internal/domain/repository"
)

// ProductUseCase alta y consulta de productos. Las existencias viven en los pools.
type ProductUseCase struct {
	repo    repository.ProductRepository
	numbers inventory.NumberGenerator
}

// NewProductUseCase construye el caso de uso; numbers emite los SKU automáticos.
func NewProductUseCase(repo repository.ProductRepository, numbers inventory.NumberGenerator) *ProductUseCase {
	return &ProductUseCase{repo: repo, numbers: numbers}
}

// Create crea un nuevo producto. Un SKU existente devuelve ErrDuplicate.
func (uc *ProductUseCase) Create(ctx context.Context, in dto.CreateProductRequest) (*dto.ProductResponse, error) {
	if err := dto.Validate(in); err != nil {
		return nil, err
	}
	if in.Price.IsNegative() {
		return nil, fmt.Errorf("precio: %w", domain.ErrInvalidInput)
	}
	now := time.Now().UTC()
	if in.SKU == "" {
		sku, err := uc.numbers.Next(ctx, domaininv.PrefixSKU, domaininv.YearScope(now))
		if err != nil {
			return nil, err
		}
		in.SKU = sku
	} else {
		existing, err := uc.repo.GetBySKU(ctx, in.SKU)
		if err != nil {
			return nil, err
		}
		if existing != nil {
			return nil, fmt.Errorf("sku %q: %w", in.SKU, domain.ErrDuplicate)
		}
	}
	if in.UnitMeasure == "" {
		in.UnitMeasure = "unidad"
	}
	product := &entity.Product{
		ID:          uuid.New().String(),
		SKU:         in.SKU,
		Name:        in.Name,
		Description: in.Description,
		Price:       domaininv.Money(in.Price),
		UnitMeasure: in.UnitMeasure,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := uc.repo.Create(ctx, product); err != nil {
		return nil, err
	}
	out := dto.FromProduct(product)
	return &out, nil
}

// GetByID obtiene un producto por ID.
func (uc *ProductUseCase) GetByID(ctx context.Context, id string) (*dto.ProductResponse, error) {
	product, err := uc.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if product == nil {
		return nil, fmt.Errorf("producto %s: %w", id, domain.ErrNotFound)
	}
	out := dto.FromProduct(product)
	return &out, nil
}

// List lista productos con paginación.
func (uc *ProductUseCase) List(ctx context.Context, page dto.PageRequest) (*dto.ProductListResponse, error) {
	page.DefaultPage()
	list, err := uc.repo.List(ctx, page.Limit, page.Offset)
	if err != nil {
		return nil, err
	}
	items := make([]dto.ProductResponse, 0, len(list))
	for _, p := range list {
		items = append(items, dto.FromProduct(p))
	}
	return &dto.ProductListResponse{
		Items: items,
		Page:  dto.PageResponse{Limit: page.Limit, Offset: page.Offset, Count: len(items)},
	}, nil
}
