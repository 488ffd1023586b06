package customers

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

func (s *Service) List(ctx context.Context, req ListCustomersRequest) ([]Customer, error) {
	return s.repo.List(ctx, req)
}

func (s *Service) Get(ctx context.Context, id int64) (Customer, error) {
	if id <= 0 {
		return Customer{}, fmt.Errorf("%w: invalid customer id", shared.ErrInvalidInput)
	}
	return s.repo.Get(ctx, id)
}

func (s *Service) Create(ctx context.Context, req CreateCustomerRequest) (Customer, error) {
	created, err := s.repo.Create(ctx, Customer{
		Name:          req.Name,
		Phone:         req.Phone,
		Email:         req.Email,
		Address:       req.Address,
		SourceChannel: req.SourceChannel,
		Notes:         req.Notes,
	})
	if err != nil {
		return Customer{}, fmt.Errorf("create customer: %w", err)
	}
	return created, nil
}

func (s *Service) Update(ctx context.Context, id int64, req UpdateCustomerRequest) (Customer, error) {
	existing, err := s.Get(ctx, id)
	if err != nil {
		return Customer{}, err
	}
	if req.Name != nil {
		existing.Name = *req.Name
	}
	if req.Phone != nil {
		existing.Phone = *req.Phone
	}
	if req.Email != nil {
		existing.Email = *req.Email
	}
	if req.Address != nil {
		existing.Address = *req.Address
	}
	if req.SourceChannel != nil {
		existing.SourceChannel = *req.SourceChannel
	}
	if req.Notes != nil {
		existing.Notes = *req.Notes
	}
	if req.IsActive != nil {
		existing.IsActive = *req.IsActive
	}
	if err := s.repo.Update(ctx, existing); err != nil {
		return Customer{}, fmt.Errorf("update customer: %w", err)
	}
	return s.repo.Get(ctx, id)
}

// Delete removes a customer. Soft deletion flips is_active; hard
// deletion removes the row.
func (s *Service) Delete(ctx context.Context, id int64, soft bool) error {
	if id <= 0 {
		return fmt.Errorf("%w: invalid customer id", shared.ErrInvalidInput)
	}
	if soft {
		return s.repo.Deactivate(ctx, id)
	}
	return s.repo.Delete(ctx, id)
}
