package ledger

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"
)

// DBTX is satisfied by both *pgxpool.Pool and pgx.Tx so Insert can run
// inside a caller's transaction.
type DBTX interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// Insert appends a ledger entry within the caller's transaction.
func Insert(ctx context.Context, db DBTX, entry Entry) (int64, error) {
	var id int64
	err := db.QueryRow(ctx, `INSERT INTO cash_ledger (entry_date, type, source, ref_id, amount, notes)
VALUES (NOW(), $1, $2, $3, $4, $5) RETURNING id`,
		string(entry.Type), entry.Source, nullInt(entry.RefID), entry.Amount, entry.Notes).Scan(&id)
	return id, err
}

// Repository reads ledger aggregates from PostgreSQL.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs Repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// Summarize sums ledger amounts per type/source between from and to,
// both dates inclusive.
func (r *Repository) Summarize(ctx context.Context, from, to time.Time) (Summary, error) {
	rows, err := r.pool.Query(ctx, `SELECT type, source, COALESCE(SUM(amount), 0)
FROM cash_ledger
WHERE entry_date::date BETWEEN $1 AND $2
GROUP BY type, source`, from, to)
	if err != nil {
		return Summary{}, err
	}
	defer rows.Close()

	var s Summary
	for rows.Next() {
		var entryType, source string
		var amount decimal.Decimal
		if err := rows.Scan(&entryType, &source, &amount); err != nil {
			return Summary{}, err
		}
		switch {
		case entryType == string(EntryIn) && source == SourceSale:
			s.TotalSales = s.TotalSales.Add(amount)
		case entryType == string(EntryOut) && source == SourcePurchase:
			s.TotalPurchase = s.TotalPurchase.Add(amount)
		case entryType == string(EntryOut) && source == SourceExpense:
			s.TotalExpense = s.TotalExpense.Add(amount)
		case entryType == string(EntryIn) && source == SourceOther:
			s.TotalOtherIncome = s.TotalOtherIncome.Add(amount)
		case entryType == string(EntryOut) && source == SourceOther:
			s.TotalOtherOut = s.TotalOtherOut.Add(amount)
		}
	}
	if err := rows.Err(); err != nil {
		return Summary{}, err
	}
	s.NetIncome = s.TotalSales.Add(s.TotalOtherIncome).Sub(s.TotalPurchase).Sub(s.TotalExpense).Sub(s.TotalOtherOut)
	return s, nil
}

func nullInt(value int64) any {
	if value == 0 {
		return nil
	}
	return value
}
