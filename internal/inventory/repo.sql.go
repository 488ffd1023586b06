package inventory

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

// DBTX is satisfied by both *pgxpool.Pool and pgx.Tx so Insert can run
// inside a caller's transaction.
type DBTX interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// Insert appends a movement row. Callers pass their open transaction so
// the movement commits or rolls back with the rest of the operation.
func Insert(ctx context.Context, db DBTX, mv Movement) (int64, error) {
	var id int64
	err := db.QueryRow(ctx, `INSERT INTO stock_movements (product_id, movement_date, type, ref_type, ref_id, qty_change, stock_before, stock_after, notes)
VALUES ($1, NOW(), $2, $3, $4, $5, $6, $7, $8) RETURNING id`,
		mv.ProductID, string(mv.Type), mv.RefType, nullInt(mv.RefID), mv.QtyChange, mv.StockBefore, mv.StockAfter, mv.Notes).Scan(&id)
	return id, err
}

// Repository reads the movement log from PostgreSQL.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs Repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// List returns movements newest first, optionally filtered by product.
func (r *Repository) List(ctx context.Context, filter ListFilter) ([]Movement, error) {
	if r == nil {
		return nil, errors.New("inventory repository not initialised")
	}
	limit := filter.Limit
	if limit <= 0 {
		limit = 200
	}
	rows, err := r.pool.Query(ctx, `SELECT m.id, m.product_id, p.name, m.movement_date, m.type, COALESCE(m.ref_type, ''), COALESCE(m.ref_id, 0), m.qty_change, m.stock_before, m.stock_after, COALESCE(m.notes, '')
FROM stock_movements m
JOIN products p ON p.id = m.product_id
WHERE ($1 = 0 OR m.product_id = $1)
ORDER BY m.movement_date DESC, m.id DESC
LIMIT $2`, filter.ProductID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	movements := []Movement{}
	for rows.Next() {
		var mv Movement
		if err := rows.Scan(&mv.ID, &mv.ProductID, &mv.ProductName, &mv.MovementDate, &mv.Type, &mv.RefType, &mv.RefID, &mv.QtyChange, &mv.StockBefore, &mv.StockAfter, &mv.Notes); err != nil {
			return nil, err
		}
		movements = append(movements, mv)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return movements, nil
}

func nullInt(value int64) any {
	if value == 0 {
		return nil
	}
	return value
}
