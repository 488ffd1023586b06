package recipes

import (
	"context"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"github.com/tokokas/tokokas/internal/inventory"
	"github.com/tokokas/tokokas/internal/masterdata/products"
	"github.com/tokokas/tokokas/internal/shared"
)

type memoryStockTx struct {
	products  map[int64]ProductState
	recipes   map[int64][]Component
	movements []inventory.Movement
}

func newMemoryStockTx() *memoryStockTx {
	return &memoryStockTx{
		products: map[int64]ProductState{},
		recipes:  map[int64][]Component{},
	}
}

func (m *memoryStockTx) Components(_ context.Context, productID int64) ([]Component, error) {
	return m.recipes[productID], nil
}

func (m *memoryStockTx) GetProductForUpdate(_ context.Context, id int64) (ProductState, error) {
	state, ok := m.products[id]
	if !ok {
		return ProductState{}, shared.ErrNotFound
	}
	return state, nil
}

func (m *memoryStockTx) UpdateProductStock(_ context.Context, id int64, qty decimal.Decimal) error {
	state := m.products[id]
	state.StockQty = qty
	m.products[id] = state
	return nil
}

func (m *memoryStockTx) InsertMovement(_ context.Context, mv inventory.Movement) (int64, error) {
	mv.ID = int64(len(m.movements) + 1)
	m.movements = append(m.movements, mv)
	return mv.ID, nil
}

func (m *memoryStockTx) addProduct(id int64, name string, productType products.ProductType, stock int64) {
	m.products[id] = ProductState{ID: id, Name: name, Type: productType, StockQty: decimal.NewFromInt(stock)}
}

func (m *memoryStockTx) addRecipe(productID, componentID int64, qtyPerUnit string) {
	qty, _ := decimal.NewFromString(qtyPerUnit)
	m.recipes[productID] = append(m.recipes[productID], Component{
		ProductID:          productID,
		ComponentProductID: componentID,
		QtyPerUnit:         qty,
	})
}

func TestBuildDeductsComponentsAndCreditsProduct(t *testing.T) {
	tx := newMemoryStockTx()
	tx.addProduct(1, "Kopi Susu", products.TypeInternal, 0)
	tx.addProduct(2, "Kopi Bubuk", products.TypeRaw, 100)
	tx.addProduct(3, "Susu", products.TypeRaw, 50)
	tx.addRecipe(1, 2, "2")
	tx.addRecipe(1, 3, "1.5")

	result, err := Build(context.Background(), tx, 1, decimal.NewFromInt(10))
	require.NoError(t, err)
	require.True(t, result.QtyBuilt.Equal(decimal.NewFromInt(10)))
	require.True(t, result.StockQty.Equal(decimal.NewFromInt(10)))
	require.True(t, tx.products[2].StockQty.Equal(decimal.NewFromInt(80)))
	require.True(t, tx.products[3].StockQty.Equal(decimal.NewFromInt(35)))

	// two component OUT movements and one product IN, all PRODUCTION
	require.Len(t, tx.movements, 3)
	for _, mv := range tx.movements {
		require.Equal(t, inventory.RefProduction, mv.RefType)
	}
	last := tx.movements[2]
	require.Equal(t, inventory.MovementIn, last.Type)
	require.True(t, last.StockBefore.Equal(decimal.Zero))
	require.True(t, last.StockAfter.Equal(decimal.NewFromInt(10)))
}

func TestBuildFailsWholeOperationOnShortage(t *testing.T) {
	tx := newMemoryStockTx()
	tx.addProduct(1, "Kopi Susu", products.TypeInternal, 0)
	tx.addProduct(2, "Kopi Bubuk", products.TypeRaw, 100)
	tx.addProduct(3, "Susu", products.TypeRaw, 4)
	tx.addRecipe(1, 2, "2")
	tx.addRecipe(1, 3, "1.5")

	_, err := Build(context.Background(), tx, 1, decimal.NewFromInt(10))
	require.ErrorIs(t, err, shared.ErrInsufficientStock)
	require.Contains(t, err.Error(), "Susu")

	// nothing mutated, even for the component that had enough stock
	require.True(t, tx.products[2].StockQty.Equal(decimal.NewFromInt(100)))
	require.True(t, tx.products[3].StockQty.Equal(decimal.NewFromInt(4)))
	require.Empty(t, tx.movements)
}

func TestBuildRejectsNonInternalProduct(t *testing.T) {
	tx := newMemoryStockTx()
	tx.addProduct(2, "Kopi Bubuk", products.TypeRaw, 100)

	_, err := Build(context.Background(), tx, 2, decimal.NewFromInt(1))
	require.ErrorIs(t, err, shared.ErrInvalidInput)
	require.Empty(t, tx.movements)
}

func TestBuildRejectsNonPositiveQty(t *testing.T) {
	tx := newMemoryStockTx()
	_, err := Build(context.Background(), tx, 1, decimal.Zero)
	require.ErrorIs(t, err, shared.ErrInvalidInput)
}

func TestBuildRejectsProductWithoutRecipe(t *testing.T) {
	tx := newMemoryStockTx()
	tx.addProduct(1, "Kopi Susu", products.TypeInternal, 0)

	_, err := Build(context.Background(), tx, 1, decimal.NewFromInt(1))
	require.ErrorIs(t, err, shared.ErrInvalidInput)
}

func TestAutoBuildFloorsBuildableUnits(t *testing.T) {
	tx := newMemoryStockTx()
	tx.addProduct(1, "Kopi Susu", products.TypeInternal, 0)
	tx.addProduct(2, "Kopi Bubuk", products.TypeRaw, 0)
	tx.addRecipe(1, 2, "2")
	stock, _ := decimal.NewFromString("5.9")
	state := tx.products[2]
	state.StockQty = stock
	tx.products[2] = state

	built, err := AutoBuild(context.Background(), tx, tx.products[1], decimal.NewFromInt(10), 7)
	require.NoError(t, err)
	// 5.9 / 2 = 2.95 floors to 2 units
	require.True(t, built.Equal(decimal.NewFromInt(2)))
	want, _ := decimal.NewFromString("1.9")
	require.True(t, tx.products[2].StockQty.Equal(want))
	require.True(t, tx.products[1].StockQty.Equal(decimal.NewFromInt(2)))
}

func TestAutoBuildCapsAtShortfall(t *testing.T) {
	tx := newMemoryStockTx()
	tx.addProduct(1, "Kopi Susu", products.TypeInternal, 2)
	tx.addProduct(2, "Kopi Bubuk", products.TypeRaw, 5)
	tx.addRecipe(1, 2, "1")

	built, err := AutoBuild(context.Background(), tx, tx.products[1], decimal.NewFromInt(1), 3)
	require.NoError(t, err)
	require.True(t, built.Equal(decimal.NewFromInt(1)))
	require.True(t, tx.products[2].StockQty.Equal(decimal.NewFromInt(4)))
	require.True(t, tx.products[1].StockQty.Equal(decimal.NewFromInt(3)))

	// one component OUT and one product IN, both tagged BUILD
	require.Len(t, tx.movements, 2)
	require.Equal(t, inventory.RefBuild, tx.movements[0].RefType)
	require.Equal(t, inventory.MovementOut, tx.movements[0].Type)
	require.Equal(t, inventory.RefBuild, tx.movements[1].RefType)
	require.Equal(t, inventory.MovementIn, tx.movements[1].Type)
}

func TestAutoBuildTakesMinimumAcrossComponents(t *testing.T) {
	tx := newMemoryStockTx()
	tx.addProduct(1, "Kopi Susu", products.TypeInternal, 0)
	tx.addProduct(2, "Kopi Bubuk", products.TypeRaw, 100)
	tx.addProduct(3, "Susu", products.TypeRaw, 3)
	tx.addRecipe(1, 2, "1")
	tx.addRecipe(1, 3, "2")

	built, err := AutoBuild(context.Background(), tx, tx.products[1], decimal.NewFromInt(50), 9)
	require.NoError(t, err)
	// Susu supports floor(3/2)=1 unit only
	require.True(t, built.Equal(decimal.NewFromInt(1)))
}

func TestAutoBuildWithoutRecipeBuildsNothing(t *testing.T) {
	tx := newMemoryStockTx()
	tx.addProduct(1, "Kopi Susu", products.TypeInternal, 0)

	built, err := AutoBuild(context.Background(), tx, tx.products[1], decimal.NewFromInt(5), 1)
	require.NoError(t, err)
	require.True(t, built.IsZero())
	require.Empty(t, tx.movements)
}

func TestAutoBuildWithEmptyComponentBuildsNothing(t *testing.T) {
	tx := newMemoryStockTx()
	tx.addProduct(1, "Kopi Susu", products.TypeInternal, 0)
	tx.addProduct(2, "Kopi Bubuk", products.TypeRaw, 0)
	tx.addRecipe(1, 2, "2")

	built, err := AutoBuild(context.Background(), tx, tx.products[1], decimal.NewFromInt(5), 1)
	require.NoError(t, err)
	require.True(t, built.IsZero())
	require.Empty(t, tx.movements)
}

func TestConsumeNamesShortComponent(t *testing.T) {
	tx := newMemoryStockTx()
	tx.addProduct(1, "Kopi Susu", products.TypeInternal, 0)
	tx.addProduct(2, "Kopi Bubuk", products.TypeRaw, 1)
	tx.addRecipe(1, 2, "2")

	err := Consume(context.Background(), tx, 1, decimal.NewFromInt(1), inventory.RefSale, 5, "test")
	require.ErrorIs(t, err, shared.ErrInsufficientStock)
	require.Contains(t, err.Error(), "Kopi Bubuk")
}
