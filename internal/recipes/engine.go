package recipes

import (
	"context"
	"fmt"
	"sort"

	"github.com/shopspring/decimal"

	"github.com/tokokas/tokokas/internal/inventory"
	"github.com/tokokas/tokokas/internal/masterdata/products"
	"github.com/tokokas/tokokas/internal/shared"
)

// Consume deducts the component stock needed to produce qty finished
// units of productID. Components are locked in ascending product id
// order. Any shortage fails with the component named; the caller's
// transaction rolls back all prior deductions.
func Consume(ctx context.Context, tx StockTx, productID int64, qty decimal.Decimal, refType string, refID int64, notes string) error {
	components, err := tx.Components(ctx, productID)
	if err != nil {
		return fmt.Errorf("load recipe for product %d: %w", productID, err)
	}
	sortComponents(components)

	for _, component := range components {
		if !component.QtyPerUnit.IsPositive() {
			continue
		}
		needed := component.QtyPerUnit.Mul(qty)
		state, err := tx.GetProductForUpdate(ctx, component.ComponentProductID)
		if err != nil {
			return fmt.Errorf("lock component %d: %w", component.ComponentProductID, err)
		}
		if state.StockQty.LessThan(needed) {
			return fmt.Errorf("%w: component %s requires %s, available %s",
				shared.ErrInsufficientStock, state.Name, needed, state.StockQty)
		}
		after := state.StockQty.Sub(needed)
		if err := tx.UpdateProductStock(ctx, state.ID, after); err != nil {
			return fmt.Errorf("deduct component %d: %w", state.ID, err)
		}
		if _, err := tx.InsertMovement(ctx, inventory.Movement{
			ProductID:   state.ID,
			Type:        inventory.MovementOut,
			RefType:     refType,
			RefID:       refID,
			QtyChange:   needed.Neg(),
			StockBefore: state.StockQty,
			StockAfter:  after,
			Notes:       notes,
		}); err != nil {
			return fmt.Errorf("movement for component %d: %w", state.ID, err)
		}
	}
	return nil
}

// Build produces qty finished units of productID from its recipe. All
// components are locked and checked before any stock changes, so a
// shortage fails the whole build with nothing mutated.
func Build(ctx context.Context, tx StockTx, productID int64, qty decimal.Decimal) (BuildResult, error) {
	if !qty.IsPositive() {
		return BuildResult{}, fmt.Errorf("%w: qty_to_build must be positive", shared.ErrInvalidInput)
	}

	product, err := tx.GetProductForUpdate(ctx, productID)
	if err != nil {
		return BuildResult{}, fmt.Errorf("lock product %d: %w", productID, err)
	}
	if product.Type != products.TypeInternal {
		return BuildResult{}, fmt.Errorf("%w: product %s is not buildable (type=%s)", shared.ErrInvalidInput, product.Name, product.Type)
	}

	components, err := tx.Components(ctx, productID)
	if err != nil {
		return BuildResult{}, fmt.Errorf("load recipe for product %d: %w", productID, err)
	}
	if len(components) == 0 {
		return BuildResult{}, fmt.Errorf("%w: product %s has no recipe", shared.ErrInvalidInput, product.Name)
	}
	sortComponents(components)

	states := make([]ProductState, len(components))
	for i, component := range components {
		state, err := tx.GetProductForUpdate(ctx, component.ComponentProductID)
		if err != nil {
			return BuildResult{}, fmt.Errorf("lock component %d: %w", component.ComponentProductID, err)
		}
		needed := component.QtyPerUnit.Mul(qty)
		if state.StockQty.LessThan(needed) {
			return BuildResult{}, fmt.Errorf("%w: component %s requires %s, available %s",
				shared.ErrInsufficientStock, state.Name, needed, state.StockQty)
		}
		states[i] = state
	}

	for i, component := range components {
		needed := component.QtyPerUnit.Mul(qty)
		after := states[i].StockQty.Sub(needed)
		if err := tx.UpdateProductStock(ctx, states[i].ID, after); err != nil {
			return BuildResult{}, fmt.Errorf("deduct component %d: %w", states[i].ID, err)
		}
		if _, err := tx.InsertMovement(ctx, inventory.Movement{
			ProductID:   states[i].ID,
			Type:        inventory.MovementOut,
			RefType:     inventory.RefProduction,
			RefID:       productID,
			QtyChange:   needed.Neg(),
			StockBefore: states[i].StockQty,
			StockAfter:  after,
			Notes:       fmt.Sprintf("Component consumption for build of %s", product.Name),
		}); err != nil {
			return BuildResult{}, fmt.Errorf("movement for component %d: %w", states[i].ID, err)
		}
	}

	after := product.StockQty.Add(qty)
	if err := tx.UpdateProductStock(ctx, product.ID, after); err != nil {
		return BuildResult{}, fmt.Errorf("credit product %d: %w", product.ID, err)
	}
	if _, err := tx.InsertMovement(ctx, inventory.Movement{
		ProductID:   product.ID,
		Type:        inventory.MovementIn,
		RefType:     inventory.RefProduction,
		RefID:       productID,
		QtyChange:   qty,
		StockBefore: product.StockQty,
		StockAfter:  after,
		Notes:       fmt.Sprintf("Built %s units of %s", qty, product.Name),
	}); err != nil {
		return BuildResult{}, fmt.Errorf("movement for product %d: %w", product.ID, err)
	}

	return BuildResult{ProductID: product.ID, QtyBuilt: qty, StockQty: after}, nil
}

// AutoBuild covers a sale-time shortfall by building as many whole
// units as the recipe's component stock allows, capped at the
// shortfall rounded up to whole units. The caller already holds the
// product's row lock; product is that locked snapshot. Returns the
// quantity built, which is zero when the product has no recipe or no
// component supports a full unit.
func AutoBuild(ctx context.Context, tx StockTx, product ProductState, shortfall decimal.Decimal, refID int64) (decimal.Decimal, error) {
	components, err := tx.Components(ctx, product.ID)
	if err != nil {
		return decimal.Zero, fmt.Errorf("load recipe for product %d: %w", product.ID, err)
	}
	if len(components) == 0 {
		return decimal.Zero, nil
	}
	sortComponents(components)

	buildable := decimal.Zero
	first := true
	for _, component := range components {
		if !component.QtyPerUnit.IsPositive() {
			continue
		}
		state, err := tx.GetProductForUpdate(ctx, component.ComponentProductID)
		if err != nil {
			return decimal.Zero, fmt.Errorf("lock component %d: %w", component.ComponentProductID, err)
		}
		// Floor, never round: 2.9 units of component stock supports
		// 2 finished units, not 3.
		supported := state.StockQty.Div(component.QtyPerUnit).Floor()
		if first || supported.LessThan(buildable) {
			buildable = supported
			first = false
		}
	}
	if first {
		return decimal.Zero, nil
	}

	target := shortfall.Ceil()
	build := decimal.Min(buildable, target)
	if !build.IsPositive() {
		return decimal.Zero, nil
	}

	if err := Consume(ctx, tx, product.ID, build, inventory.RefBuild, refID,
		fmt.Sprintf("Component consumption for auto-build of %s", product.Name)); err != nil {
		return decimal.Zero, err
	}

	after := product.StockQty.Add(build)
	if err := tx.UpdateProductStock(ctx, product.ID, after); err != nil {
		return decimal.Zero, fmt.Errorf("credit product %d: %w", product.ID, err)
	}
	if _, err := tx.InsertMovement(ctx, inventory.Movement{
		ProductID:   product.ID,
		Type:        inventory.MovementIn,
		RefType:     inventory.RefBuild,
		RefID:       refID,
		QtyChange:   build,
		StockBefore: product.StockQty,
		StockAfter:  after,
		Notes:       fmt.Sprintf("Auto-built %s units of %s", build, product.Name),
	}); err != nil {
		return decimal.Zero, fmt.Errorf("movement for product %d: %w", product.ID, err)
	}
	return build, nil
}

func sortComponents(components []Component) {
	sort.Slice(components, func(i, j int) bool {
		return components[i].ComponentProductID < components[j].ComponentProductID
	})
}
