package recipes

import (
	"context"
	"log/slog"
	"sync"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"github.com/tokokas/tokokas/internal/masterdata/products"
	"github.com/tokokas/tokokas/internal/shared"
)

type memoryRecipeRepo struct {
	mu sync.Mutex
	*memoryStockTx
}

func newMemoryRecipeRepo() *memoryRecipeRepo {
	return &memoryRecipeRepo{memoryStockTx: newMemoryStockTx()}
}

func (m *memoryStockTx) CreateComponent(_ context.Context, component Component) (Component, error) {
	total := 0
	for _, edges := range m.recipes {
		total += len(edges)
	}
	component.ID = int64(total + 1)
	m.recipes[component.ProductID] = append(m.recipes[component.ProductID], component)
	return component, nil
}

// WithTx serializes transactions the way the locked product rows
// would for edits touching the same part of the recipe graph.
func (m *memoryRecipeRepo) WithTx(ctx context.Context, fn func(context.Context, ComponentTx) error) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	return fn(ctx, m.memoryStockTx)
}

func TestAddComponent(t *testing.T) {
	repo := newMemoryRecipeRepo()
	repo.addProduct(1, "Kopi Susu", products.TypeInternal, 0)
	repo.addProduct(2, "Kopi Bubuk", products.TypeRaw, 0)
	service := NewService(repo, slog.Default())

	component, err := service.AddComponent(context.Background(), CreateComponentRequest{
		ProductID:          1,
		ComponentProductID: 2,
		QtyPerUnit:         decimal.NewFromInt(2),
	})
	require.NoError(t, err)
	require.Equal(t, int64(1), component.ID)
	require.Equal(t, "Kopi Bubuk", component.ComponentName)
}

func TestAddComponentRejectsNonInternalParent(t *testing.T) {
	repo := newMemoryRecipeRepo()
	repo.addProduct(1, "Kopi Bubuk", products.TypeRaw, 0)
	repo.addProduct(2, "Gula", products.TypeRaw, 0)
	service := NewService(repo, slog.Default())

	_, err := service.AddComponent(context.Background(), CreateComponentRequest{
		ProductID:          1,
		ComponentProductID: 2,
		QtyPerUnit:         decimal.NewFromInt(1),
	})
	require.ErrorIs(t, err, shared.ErrInvalidInput)
}

func TestAddComponentRejectsMissingComponent(t *testing.T) {
	repo := newMemoryRecipeRepo()
	repo.addProduct(1, "Kopi Susu", products.TypeInternal, 0)
	service := NewService(repo, slog.Default())

	_, err := service.AddComponent(context.Background(), CreateComponentRequest{
		ProductID:          1,
		ComponentProductID: 99,
		QtyPerUnit:         decimal.NewFromInt(1),
	})
	require.ErrorIs(t, err, shared.ErrNotFound)
}

func TestAddComponentRejectsCycle(t *testing.T) {
	repo := newMemoryRecipeRepo()
	repo.addProduct(1, "Paket A", products.TypeInternal, 0)
	repo.addProduct(2, "Paket B", products.TypeInternal, 0)
	repo.addProduct(3, "Paket C", products.TypeInternal, 0)
	service := NewService(repo, slog.Default())

	// A -> B -> C is fine, C -> A closes the loop
	for _, edge := range [][2]int64{{1, 2}, {2, 3}} {
		_, err := service.AddComponent(context.Background(), CreateComponentRequest{
			ProductID:          edge[0],
			ComponentProductID: edge[1],
			QtyPerUnit:         decimal.NewFromInt(1),
		})
		require.NoError(t, err)
	}

	_, err := service.AddComponent(context.Background(), CreateComponentRequest{
		ProductID:          3,
		ComponentProductID: 1,
		QtyPerUnit:         decimal.NewFromInt(1),
	})
	require.ErrorIs(t, err, shared.ErrInvalidInput)
	require.Contains(t, err.Error(), "cycle")
}

func TestConcurrentComponentAddsCannotCloseCycle(t *testing.T) {
	repo := newMemoryRecipeRepo()
	repo.addProduct(1, "Paket A", products.TypeInternal, 0)
	repo.addProduct(2, "Paket B", products.TypeInternal, 0)
	service := NewService(repo, slog.Default())

	// A -> B and B -> A raced together would close a cycle neither
	// edit sees on its own.
	edges := [][2]int64{{1, 2}, {2, 1}}
	errs := make([]error, len(edges))
	var wg sync.WaitGroup
	for i := range edges {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = service.AddComponent(context.Background(), CreateComponentRequest{
				ProductID:          edges[i][0],
				ComponentProductID: edges[i][1],
				QtyPerUnit:         decimal.NewFromInt(1),
			})
		}(i)
	}
	wg.Wait()

	succeeded := 0
	for _, err := range errs {
		if err == nil {
			succeeded++
			continue
		}
		require.ErrorIs(t, err, shared.ErrInvalidInput)
		require.Contains(t, err.Error(), "cycle")
	}
	require.Equal(t, 1, succeeded)
	require.Equal(t, 1, len(repo.recipes[1])+len(repo.recipes[2]))
}

func TestAddComponentRejectsSelfReference(t *testing.T) {
	repo := newMemoryRecipeRepo()
	repo.addProduct(1, "Paket A", products.TypeInternal, 0)
	service := NewService(repo, slog.Default())

	_, err := service.AddComponent(context.Background(), CreateComponentRequest{
		ProductID:          1,
		ComponentProductID: 1,
		QtyPerUnit:         decimal.NewFromInt(1),
	})
	require.ErrorIs(t, err, shared.ErrInvalidInput)
}

func TestServiceBuildRunsInTransaction(t *testing.T) {
	repo := newMemoryRecipeRepo()
	repo.addProduct(1, "Kopi Susu", products.TypeInternal, 0)
	repo.addProduct(2, "Kopi Bubuk", products.TypeRaw, 10)
	repo.addRecipe(1, 2, "2")
	service := NewService(repo, slog.Default())

	result, err := service.Build(context.Background(), BuildRequest{ProductID: 1, QtyToBuild: decimal.NewFromInt(3)})
	require.NoError(t, err)
	require.True(t, result.StockQty.Equal(decimal.NewFromInt(3)))
	require.True(t, repo.products[2].StockQty.Equal(decimal.NewFromInt(4)))
}
