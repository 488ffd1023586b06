// Package recipes owns the bill-of-materials graph and the build
// engine. A recipe row says one finished unit of an INTERNAL product
// consumes qty_per_unit of a component product. Resolution is single
// level: components are consumed directly, never expanded recursively.
package recipes

import (
	"context"

	"github.com/shopspring/decimal"

	"github.com/tokokas/tokokas/internal/inventory"
	"github.com/tokokas/tokokas/internal/masterdata/products"
)

// Component is one BOM edge of a product's recipe.
type Component struct {
	ID                 int64           `json:"id"`
	ProductID          int64           `json:"product_id"`
	ComponentProductID int64           `json:"component_product_id"`
	ComponentName      string          `json:"component_name,omitempty"`
	QtyPerUnit         decimal.Decimal `json:"qty_per_unit"`
}

// ProductState is a locked product snapshot used during stock math.
type ProductState struct {
	ID       int64
	Name     string
	Type     products.ProductType
	StockQty decimal.Decimal
}

// StockTx is the transactional surface the engine mutates stock
// through. The recipes repository and the sales order repository both
// provide it, so builds run inside whichever transaction needs them.
type StockTx interface {
	Components(ctx context.Context, productID int64) ([]Component, error)
	GetProductForUpdate(ctx context.Context, id int64) (ProductState, error)
	UpdateProductStock(ctx context.Context, id int64, qty decimal.Decimal) error
	InsertMovement(ctx context.Context, mv inventory.Movement) (int64, error)
}

// ComponentTx extends StockTx with the edge insert, so a cycle check
// and the insert it guards commit or roll back together.
type ComponentTx interface {
	StockTx
	CreateComponent(ctx context.Context, component Component) (Component, error)
}

// CreateComponentRequest is the POST /recipes payload.
type CreateComponentRequest struct {
	ProductID          int64           `json:"product_id" validate:"required"`
	ComponentProductID int64           `json:"component_product_id" validate:"required"`
	QtyPerUnit         decimal.Decimal `json:"qty_per_unit"`
}

// BuildRequest is the POST /recipes/build payload.
type BuildRequest struct {
	ProductID  int64           `json:"product_id" validate:"required"`
	QtyToBuild decimal.Decimal `json:"qty_to_build"`
}

// BuildResult reports the outcome of an explicit build.
type BuildResult struct {
	ProductID int64           `json:"product_id"`
	QtyBuilt  decimal.Decimal `json:"qty_built"`
	StockQty  decimal.Decimal `json:"stock_qty"`
}
