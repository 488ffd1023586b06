package expenses

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"github.com/tokokas/tokokas/internal/accounting/ledger"
	"github.com/tokokas/tokokas/internal/shared"
)

// TxRepository exposes the transactional operations used by the service.
type TxRepository interface {
	GetAccountForUpdate(ctx context.Context, id int64) (AccountState, error)
	UpdateAccountBalance(ctx context.Context, id int64, balance decimal.Decimal) error
	InsertExpense(ctx context.Context, expense Expense) (int64, error)
	InsertLedgerEntry(ctx context.Context, entry ledger.Entry) (int64, error)
}

// AccountState is the locked account snapshot used for the funds check.
type AccountState struct {
	ID      int64
	Name    string
	Balance decimal.Decimal
}

// RepositoryPort abstracts repository usage for the service.
type RepositoryPort interface {
	WithTx(ctx context.Context, fn func(context.Context, TxRepository) error) error
	List(ctx context.Context, filter ListFilter) ([]Expense, error)
	Get(ctx context.Context, id int64) (Expense, error)
}

// Repository persists expenses in PostgreSQL.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs Repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

type txRepository struct {
	tx pgx.Tx
}

// WithTx executes the callback inside a repeatable-read transaction.
func (r *Repository) WithTx(ctx context.Context, fn func(context.Context, TxRepository) error) error {
	tx, err := r.pool.BeginTx(ctx, pgx.TxOptions{IsoLevel: pgx.RepeatableRead})
	if err != nil {
		return err
	}
	defer func() {
		_ = tx.Rollback(ctx)
	}()
	if err := fn(ctx, &txRepository{tx: tx}); err != nil {
		return err
	}
	return tx.Commit(ctx)
}

const expenseColumns = `id, expense_date, category, COALESCE(description, ''), amount, COALESCE(payment_method, ''), COALESCE(notes, ''), COALESCE(source_account_id, 0)`

// List returns expenses newest first with an optional category filter.
func (r *Repository) List(ctx context.Context, filter ListFilter) ([]Expense, error) {
	limit := filter.Limit
	if limit <= 0 {
		limit = 100
	}
	rows, err := r.pool.Query(ctx, `SELECT `+expenseColumns+` FROM expenses
WHERE ($1 = '' OR category ILIKE '%' || $1 || '%')
ORDER BY expense_date DESC, id DESC
OFFSET $2 LIMIT $3`, filter.Category, filter.Skip, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	expensesList := []Expense{}
	for rows.Next() {
		var e Expense
		if err := scanExpense(rows, &e); err != nil {
			return nil, err
		}
		expensesList = append(expensesList, e)
	}
	return expensesList, rows.Err()
}

// Get returns a single expense.
func (r *Repository) Get(ctx context.Context, id int64) (Expense, error) {
	var e Expense
	err := scanExpense(r.pool.QueryRow(ctx, `SELECT `+expenseColumns+` FROM expenses WHERE id = $1`, id), &e)
	if errors.Is(err, pgx.ErrNoRows) {
		return Expense{}, shared.ErrNotFound
	}
	return e, err
}

func (r *txRepository) GetAccountForUpdate(ctx context.Context, id int64) (AccountState, error) {
	var state AccountState
	err := r.tx.QueryRow(ctx, `SELECT id, name, current_balance FROM accounts WHERE id = $1 FOR UPDATE`, id).
		Scan(&state.ID, &state.Name, &state.Balance)
	if errors.Is(err, pgx.ErrNoRows) {
		return AccountState{}, shared.ErrNotFound
	}
	return state, err
}

func (r *txRepository) UpdateAccountBalance(ctx context.Context, id int64, balance decimal.Decimal) error {
	_, err := r.tx.Exec(ctx, `UPDATE accounts SET current_balance = $1, updated_at = NOW() WHERE id = $2`, balance, id)
	return err
}

func (r *txRepository) InsertExpense(ctx context.Context, expense Expense) (int64, error) {
	var id int64
	date := expense.ExpenseDate
	if date.IsZero() {
		date = time.Now().UTC()
	}
	err := r.tx.QueryRow(ctx, `INSERT INTO expenses (expense_date, category, description, amount, payment_method, notes, source_account_id)
VALUES ($1,$2,$3,$4,$5,$6,$7) RETURNING id`,
		date, expense.Category, expense.Description, expense.Amount, expense.PaymentMethod, expense.Notes, nullInt(expense.SourceAccountID)).Scan(&id)
	return id, err
}

func (r *txRepository) InsertLedgerEntry(ctx context.Context, entry ledger.Entry) (int64, error) {
	return ledger.Insert(ctx, r.tx, entry)
}

func scanExpense(row pgx.Row, e *Expense) error {
	return row.Scan(&e.ID, &e.ExpenseDate, &e.Category, &e.Description, &e.Amount, &e.PaymentMethod, &e.Notes, &e.SourceAccountID)
}

func nullInt(value int64) any {
	if value == 0 {
		return nil
	}
	return value
}
