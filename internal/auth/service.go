package auth

import (
	"context"
	"errors"
	"fmt"

	"golang.org/x/crypto/bcrypt"

	"github.com/tokokas/tokokas/internal/shared"
)

// UserStore is the persistence surface the service needs.
type UserStore interface {
	FindByUsername(ctx context.Context, username string) (User, error)
	Create(ctx context.Context, user User) (User, error)
}

// Service wraps authentication business rules.
type Service struct {
	repo UserStore
}

// NewService constructs Service.
func NewService(repo UserStore) *Service {
	return &Service{repo: repo}
}

// Register creates a new admin user with a bcrypt password hash.
func (s *Service) Register(ctx context.Context, req RegisterRequest) (User, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return User{}, fmt.Errorf("hash password: %w", err)
	}
	user, err := s.repo.Create(ctx, User{
		Username:     req.Username,
		PasswordHash: string(hash),
		IsActive:     true,
		IsAdmin:      true,
	})
	if errors.Is(err, shared.ErrDuplicate) {
		return User{}, fmt.Errorf("%w: username already registered", shared.ErrDuplicate)
	}
	return user, err
}

// Authenticate validates username/password credentials.
func (s *Service) Authenticate(ctx context.Context, username, password string) (User, error) {
	user, err := s.repo.FindByUsername(ctx, username)
	if err != nil {
		return User{}, shared.ErrInvalidCredentials
	}
	if !user.IsActive {
		return User{}, shared.ErrInvalidCredentials
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return User{}, shared.ErrInvalidCredentials
	}
	return user, nil
}
