package auth

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/tokokas/tokokas/internal/shared"
)

type memoryUserStore struct {
	users  map[string]User
	nextID int64
}

func newMemoryUserStore() *memoryUserStore {
	return &memoryUserStore{users: map[string]User{}, nextID: 1}
}

func (m *memoryUserStore) FindByUsername(_ context.Context, username string) (User, error) {
	u, ok := m.users[username]
	if !ok {
		return User{}, shared.ErrNotFound
	}
	return u, nil
}

func (m *memoryUserStore) Create(_ context.Context, user User) (User, error) {
	if _, exists := m.users[user.Username]; exists {
		return User{}, shared.ErrDuplicate
	}
	user.ID = m.nextID
	m.nextID++
	m.users[user.Username] = user
	return user, nil
}

func TestRegisterHashesPassword(t *testing.T) {
	store := newMemoryUserStore()
	service := NewService(store)

	user, err := service.Register(context.Background(), RegisterRequest{Username: "owner", Password: "rahasia-banget"})
	require.NoError(t, err)
	require.NotEqual(t, "rahasia-banget", user.PasswordHash)
	require.NoError(t, bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte("rahasia-banget")))
	require.True(t, user.IsAdmin)
}

func TestRegisterRejectsDuplicateUsername(t *testing.T) {
	store := newMemoryUserStore()
	service := NewService(store)

	_, err := service.Register(context.Background(), RegisterRequest{Username: "owner", Password: "rahasia-banget"})
	require.NoError(t, err)
	_, err = service.Register(context.Background(), RegisterRequest{Username: "owner", Password: "rahasia-lain"})
	require.ErrorIs(t, err, shared.ErrDuplicate)
}

func TestAuthenticate(t *testing.T) {
	store := newMemoryUserStore()
	service := NewService(store)
	_, err := service.Register(context.Background(), RegisterRequest{Username: "owner", Password: "rahasia-banget"})
	require.NoError(t, err)

	user, err := service.Authenticate(context.Background(), "owner", "rahasia-banget")
	require.NoError(t, err)
	require.Equal(t, "owner", user.Username)

	_, err = service.Authenticate(context.Background(), "owner", "salah")
	require.ErrorIs(t, err, shared.ErrInvalidCredentials)

	_, err = service.Authenticate(context.Background(), "nobody", "rahasia-banget")
	require.ErrorIs(t, err, shared.ErrInvalidCredentials)
}

func TestAuthenticateRejectsInactiveUser(t *testing.T) {
	store := newMemoryUserStore()
	service := NewService(store)
	user, err := service.Register(context.Background(), RegisterRequest{Username: "owner", Password: "rahasia-banget"})
	require.NoError(t, err)
	user.IsActive = false
	store.users[user.Username] = user

	_, err = service.Authenticate(context.Background(), "owner", "rahasia-banget")
	require.ErrorIs(t, err, shared.ErrInvalidCredentials)
}
