package recipes

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/tokokas/tokokas/internal/masterdata/products"
	"github.com/tokokas/tokokas/internal/shared"
)

// Service validates recipe edits and runs explicit builds.
type Service struct {
	repo   RepositoryPort
	logger *slog.Logger
}

// NewService constructs Service.
func NewService(repo RepositoryPort, logger *slog.Logger) *Service {
	return &Service{repo: repo, logger: logger}
}

// AddComponent adds one BOM edge after checking both products exist,
// the parent is INTERNAL and the edge does not close a cycle. The
// checks and the insert share one transaction, with both product rows
// locked in ascending id order, so two edits racing to close a cycle
// serialize instead of slipping past each other's check.
func (s *Service) AddComponent(ctx context.Context, req CreateComponentRequest) (Component, error) {
	if !req.QtyPerUnit.IsPositive() {
		return Component{}, fmt.Errorf("%w: qty_per_unit must be positive", shared.ErrInvalidInput)
	}
	if req.ProductID == req.ComponentProductID {
		return Component{}, fmt.Errorf("%w: a product cannot be its own component", shared.ErrInvalidInput)
	}

	var created Component
	err := s.repo.WithTx(ctx, func(ctx context.Context, tx ComponentTx) error {
		first, second := req.ProductID, req.ComponentProductID
		if second < first {
			first, second = second, first
		}
		states := make(map[int64]ProductState, 2)
		for _, id := range []int64{first, second} {
			state, err := tx.GetProductForUpdate(ctx, id)
			if err != nil {
				if id == req.ComponentProductID {
					return fmt.Errorf("component product %d: %w", id, err)
				}
				return fmt.Errorf("product %d: %w", id, err)
			}
			states[id] = state
		}
		product := states[req.ProductID]
		component := states[req.ComponentProductID]
		if product.Type != products.TypeInternal {
			return fmt.Errorf("%w: recipes are only for INTERNAL products", shared.ErrInvalidInput)
		}

		cyclic, err := reaches(ctx, tx, req.ComponentProductID, req.ProductID, map[int64]bool{})
		if err != nil {
			return err
		}
		if cyclic {
			return fmt.Errorf("%w: adding %s to the recipe of %s creates a cycle",
				shared.ErrInvalidInput, component.Name, product.Name)
		}

		created, err = tx.CreateComponent(ctx, Component{
			ProductID:          req.ProductID,
			ComponentProductID: req.ComponentProductID,
			QtyPerUnit:         req.QtyPerUnit,
		})
		if err != nil {
			return err
		}
		created.ComponentName = component.Name
		return nil
	})
	if err != nil {
		return Component{}, err
	}
	s.logger.InfoContext(ctx, "recipe component added",
		slog.Int64("product_id", created.ProductID),
		slog.Int64("component_product_id", created.ComponentProductID))
	return created, nil
}

// Components returns a product's direct recipe rows.
func (s *Service) Components(ctx context.Context, productID int64) ([]Component, error) {
	return s.repo.Components(ctx, productID)
}

// Build executes an explicit all-or-nothing build in one transaction.
func (s *Service) Build(ctx context.Context, req BuildRequest) (BuildResult, error) {
	var result BuildResult
	err := s.repo.WithTx(ctx, func(ctx context.Context, tx ComponentTx) error {
		built, err := Build(ctx, tx, req.ProductID, req.QtyToBuild)
		if err != nil {
			return err
		}
		result = built
		return nil
	})
	if err != nil {
		return BuildResult{}, err
	}
	s.logger.InfoContext(ctx, "build completed",
		slog.Int64("product_id", result.ProductID),
		slog.String("qty_built", result.QtyBuilt.String()))
	return result, nil
}

// reaches walks recipe edges depth-first inside tx checking whether
// target is reachable from start.
func reaches(ctx context.Context, tx ComponentTx, start, target int64, seen map[int64]bool) (bool, error) {
	if start == target {
		return true, nil
	}
	if seen[start] {
		return false, nil
	}
	seen[start] = true
	components, err := tx.Components(ctx, start)
	if err != nil {
		return false, err
	}
	for _, component := range components {
		found, err := reaches(ctx, tx, component.ComponentProductID, target, seen)
		if err != nil {
			return false, err
		}
		if found {
			return true, nil
		}
	}
	return false, nil
}
