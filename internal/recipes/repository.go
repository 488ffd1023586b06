package recipes

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"github.com/tokokas/tokokas/internal/inventory"
	"github.com/tokokas/tokokas/internal/shared"
)

// RepositoryPort abstracts repository usage for the service.
type RepositoryPort interface {
	Components(ctx context.Context, productID int64) ([]Component, error)
	WithTx(ctx context.Context, fn func(context.Context, ComponentTx) error) error
}

// Repository persists recipe edges in PostgreSQL.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs Repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// Components returns the direct recipe rows of a product ordered by
// component product id.
func (r *Repository) Components(ctx context.Context, productID int64) ([]Component, error) {
	return queryComponents(ctx, r.pool, productID)
}

// WithTx runs fn inside a repeatable-read transaction exposing the
// engine's stock operations plus the edge insert.
func (r *Repository) WithTx(ctx context.Context, fn func(context.Context, ComponentTx) error) error {
	tx, err := r.pool.BeginTx(ctx, pgx.TxOptions{IsoLevel: pgx.RepeatableRead})
	if err != nil {
		return err
	}
	defer func() {
		_ = tx.Rollback(ctx)
	}()
	if err := fn(ctx, &stockTx{tx: tx}); err != nil {
		return err
	}
	return tx.Commit(ctx)
}

type stockTx struct {
	tx pgx.Tx
}

func (s *stockTx) Components(ctx context.Context, productID int64) ([]Component, error) {
	return queryComponents(ctx, s.tx, productID)
}

func (s *stockTx) GetProductForUpdate(ctx context.Context, id int64) (ProductState, error) {
	var state ProductState
	err := s.tx.QueryRow(ctx, `SELECT id, name, product_type, stock_qty FROM products WHERE id = $1 FOR UPDATE`, id).
		Scan(&state.ID, &state.Name, &state.Type, &state.StockQty)
	if errors.Is(err, pgx.ErrNoRows) {
		return ProductState{}, shared.ErrNotFound
	}
	return state, err
}

func (s *stockTx) UpdateProductStock(ctx context.Context, id int64, qty decimal.Decimal) error {
	_, err := s.tx.Exec(ctx, `UPDATE products SET stock_qty = $1, updated_at = NOW() WHERE id = $2`, qty, id)
	return err
}

func (s *stockTx) InsertMovement(ctx context.Context, mv inventory.Movement) (int64, error) {
	return inventory.Insert(ctx, s.tx, mv)
}

func (s *stockTx) CreateComponent(ctx context.Context, component Component) (Component, error) {
	err := s.tx.QueryRow(ctx, `INSERT INTO product_recipes (product_id, component_product_id, qty_per_unit)
VALUES ($1, $2, $3) RETURNING id`,
		component.ProductID, component.ComponentProductID, component.QtyPerUnit).Scan(&component.ID)
	if err != nil {
		return Component{}, err
	}
	return component, nil
}

func queryComponents(ctx context.Context, db inventory.DBTX, productID int64) ([]Component, error) {
	rows, err := db.Query(ctx, `SELECT r.id, r.product_id, r.component_product_id, p.name, r.qty_per_unit
FROM product_recipes r
JOIN products p ON p.id = r.component_product_id
WHERE r.product_id = $1
ORDER BY r.component_product_id`, productID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	components := []Component{}
	for rows.Next() {
		var c Component
		if err := rows.Scan(&c.ID, &c.ProductID, &c.ComponentProductID, &c.ComponentName, &c.QtyPerUnit); err != nil {
			return nil, err
		}
		components = append(components, c)
	}
	return components, rows.Err()
}
