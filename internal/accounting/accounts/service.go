package accounts

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

func (s *Service) List(ctx context.Context) ([]Account, error) {
	return s.repo.List(ctx)
}

func (s *Service) Get(ctx context.Context, id int64) (Account, error) {
	if id <= 0 {
		return Account{}, fmt.Errorf("%w: invalid account id", shared.ErrInvalidInput)
	}
	return s.repo.Get(ctx, id)
}

func (s *Service) Create(ctx context.Context, req CreateAccountRequest) (Account, error) {
	if req.CurrentBalance.IsNegative() {
		return Account{}, fmt.Errorf("%w: opening balance must not be negative", shared.ErrInvalidInput)
	}
	created, err := s.repo.Create(ctx, Account{
		Name:           req.Name,
		Type:           req.Type,
		Number:         req.Number,
		CurrentBalance: req.CurrentBalance,
	})
	if err != nil {
		return Account{}, fmt.Errorf("create account: %w", err)
	}
	return created, nil
}
