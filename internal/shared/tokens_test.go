package shared_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"

	"github.com/tokokas/tokokas/internal/shared"
)

func newTokenManager(t *testing.T) (*shared.TokenManager, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	return shared.NewTokenManager(client, time.Hour), mr
}

func TestIssueAndResolve(t *testing.T) {
	tm, _ := newTokenManager(t)
	ctx := context.Background()

	token, err := tm.Issue(ctx, shared.Identity{UserID: 7, Username: "kasir", IsAdmin: true})
	require.NoError(t, err)
	require.NotEmpty(t, token)

	id, err := tm.Resolve(ctx, token)
	require.NoError(t, err)
	require.Equal(t, int64(7), id.UserID)
	require.Equal(t, "kasir", id.Username)
	require.True(t, id.IsAdmin)
}

func TestResolveUnknownToken(t *testing.T) {
	tm, _ := newTokenManager(t)

	_, err := tm.Resolve(context.Background(), "nope")
	require.True(t, errors.Is(err, shared.ErrUnauthorized))

	_, err = tm.Resolve(context.Background(), "")
	require.True(t, errors.Is(err, shared.ErrUnauthorized))
}

func TestRevoke(t *testing.T) {
	tm, _ := newTokenManager(t)
	ctx := context.Background()

	token, err := tm.Issue(ctx, shared.Identity{UserID: 1, Username: "owner"})
	require.NoError(t, err)

	require.NoError(t, tm.Revoke(ctx, token))

	_, err = tm.Resolve(ctx, token)
	require.True(t, errors.Is(err, shared.ErrUnauthorized))
}

func TestTokenExpiry(t *testing.T) {
	tm, mr := newTokenManager(t)
	ctx := context.Background()

	token, err := tm.Issue(ctx, shared.Identity{UserID: 2, Username: "staff"})
	require.NoError(t, err)

	mr.FastForward(2 * time.Hour)

	_, err = tm.Resolve(ctx, token)
	require.True(t, errors.Is(err, shared.ErrUnauthorized))
}
