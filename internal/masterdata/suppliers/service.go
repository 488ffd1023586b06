package suppliers

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

func (s *Service) List(ctx context.Context) ([]Supplier, error) {
	return s.repo.List(ctx)
}

func (s *Service) Get(ctx context.Context, id int64) (Supplier, error) {
	if id <= 0 {
		return Supplier{}, fmt.Errorf("%w: invalid supplier id", shared.ErrInvalidInput)
	}
	return s.repo.Get(ctx, id)
}

func (s *Service) Create(ctx context.Context, req CreateSupplierRequest) (Supplier, error) {
	created, err := s.repo.Create(ctx, Supplier{
		Name:    req.Name,
		Contact: req.Contact,
		Phone:   req.Phone,
		Address: req.Address,
	})
	if err != nil {
		if err == shared.ErrDuplicate {
			return Supplier{}, fmt.Errorf("%w: supplier name %q already exists", shared.ErrDuplicate, req.Name)
		}
		return Supplier{}, fmt.Errorf("create supplier: %w", err)
	}
	return created, nil
}
