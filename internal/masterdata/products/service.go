package products

import (
	"context"
	"fmt"

	"github.com/tokokas/tokokas/internal/shared"
)

type Service struct {
	repo Repository
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

func (s *Service) List(ctx context.Context, skip, limit int) ([]Product, error) {
	return s.repo.List(ctx, skip, limit)
}

func (s *Service) LowStock(ctx context.Context) ([]Product, error) {
	return s.repo.LowStock(ctx)
}

func (s *Service) Get(ctx context.Context, id int64) (Product, error) {
	if id <= 0 {
		return Product{}, fmt.Errorf("%w: invalid product id", shared.ErrInvalidInput)
	}
	return s.repo.Get(ctx, id)
}

func (s *Service) Create(ctx context.Context, req CreateProductRequest) (Product, error) {
	if !req.Type.Valid() {
		return Product{}, fmt.Errorf("%w: unknown product_type %q", shared.ErrInvalidInput, req.Type)
	}
	if req.StockQty.IsNegative() || req.MinStock.IsNegative() {
		return Product{}, fmt.Errorf("%w: stock quantities must not be negative", shared.ErrInvalidInput)
	}
	if req.BaseCost.IsNegative() || req.SellPrice.IsNegative() {
		return Product{}, fmt.Errorf("%w: prices must not be negative", shared.ErrInvalidInput)
	}
	active := true
	if req.IsActive != nil {
		active = *req.IsActive
	}
	product := Product{
		SKU:       req.SKU,
		Name:      req.Name,
		Category:  req.Category,
		Unit:      req.Unit,
		Type:      req.Type,
		BaseCost:  req.BaseCost,
		SellPrice: req.SellPrice,
		StockQty:  req.StockQty,
		MinStock:  req.MinStock,
		IsActive:  active,
	}
	created, err := s.repo.Create(ctx, product)
	if err != nil {
		if err == shared.ErrDuplicate {
			return Product{}, fmt.Errorf("%w: sku %q already exists", shared.ErrDuplicate, req.SKU)
		}
		return Product{}, fmt.Errorf("create product: %w", err)
	}
	return created, nil
}

func (s *Service) Update(ctx context.Context, id int64, req UpdateProductRequest) (Product, error) {
	existing, err := s.Get(ctx, id)
	if err != nil {
		return Product{}, err
	}
	if req.Name != nil {
		existing.Name = *req.Name
	}
	if req.Category != nil {
		existing.Category = *req.Category
	}
	if req.Unit != nil {
		existing.Unit = *req.Unit
	}
	if req.BaseCost != nil {
		if req.BaseCost.IsNegative() {
			return Product{}, fmt.Errorf("%w: base_cost must not be negative", shared.ErrInvalidInput)
		}
		existing.BaseCost = *req.BaseCost
	}
	if req.SellPrice != nil {
		if req.SellPrice.IsNegative() {
			return Product{}, fmt.Errorf("%w: sell_price must not be negative", shared.ErrInvalidInput)
		}
		existing.SellPrice = *req.SellPrice
	}
	if req.MinStock != nil {
		if req.MinStock.IsNegative() {
			return Product{}, fmt.Errorf("%w: min_stock must not be negative", shared.ErrInvalidInput)
		}
		existing.MinStock = *req.MinStock
	}
	if req.IsActive != nil {
		existing.IsActive = *req.IsActive
	}
	if err := s.repo.Update(ctx, existing); err != nil {
		return Product{}, fmt.Errorf("update product: %w", err)
	}
	return s.repo.Get(ctx, id)
}

func (s *Service) Delete(ctx context.Context, id int64) error {
	if id <= 0 {
		return fmt.Errorf("%w: invalid product id", shared.ErrInvalidInput)
	}
	return s.repo.Delete(ctx, id)
}
