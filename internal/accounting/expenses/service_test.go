package expenses

import (
	"context"
	"log/slog"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"github.com/tokokas/tokokas/internal/accounting/ledger"
	"github.com/tokokas/tokokas/internal/shared"
)

type memoryExpenseRepo struct {
	accounts map[int64]AccountState
	expenses []Expense
	entries  []ledger.Entry
	nextID   int64
}

func newMemoryExpenseRepo() *memoryExpenseRepo {
	return &memoryExpenseRepo{accounts: map[int64]AccountState{}, nextID: 1}
}

func (m *memoryExpenseRepo) WithTx(ctx context.Context, fn func(context.Context, TxRepository) error) error {
	snapshot := make(map[int64]AccountState, len(m.accounts))
	for id, acc := range m.accounts {
		snapshot[id] = acc
	}
	expenseLen, entryLen := len(m.expenses), len(m.entries)
	if err := fn(ctx, m); err != nil {
		m.accounts = snapshot
		m.expenses = m.expenses[:expenseLen]
		m.entries = m.entries[:entryLen]
		return err
	}
	return nil
}

func (m *memoryExpenseRepo) List(_ context.Context, _ ListFilter) ([]Expense, error) {
	return m.expenses, nil
}

func (m *memoryExpenseRepo) Get(_ context.Context, id int64) (Expense, error) {
	for _, e := range m.expenses {
		if e.ID == id {
			return e, nil
		}
	}
	return Expense{}, shared.ErrNotFound
}

func (m *memoryExpenseRepo) GetAccountForUpdate(_ context.Context, id int64) (AccountState, error) {
	acc, ok := m.accounts[id]
	if !ok {
		return AccountState{}, shared.ErrNotFound
	}
	return acc, nil
}

func (m *memoryExpenseRepo) UpdateAccountBalance(_ context.Context, id int64, balance decimal.Decimal) error {
	acc := m.accounts[id]
	acc.Balance = balance
	m.accounts[id] = acc
	return nil
}

func (m *memoryExpenseRepo) InsertExpense(_ context.Context, expense Expense) (int64, error) {
	expense.ID = m.nextID
	m.nextID++
	m.expenses = append(m.expenses, expense)
	return expense.ID, nil
}

func (m *memoryExpenseRepo) InsertLedgerEntry(_ context.Context, entry ledger.Entry) (int64, error) {
	entry.ID = int64(len(m.entries) + 1)
	m.entries = append(m.entries, entry)
	return entry.ID, nil
}

func newTestService(repo *memoryExpenseRepo) *Service {
	return NewService(repo, slog.Default())
}

func TestCreateCashExpenseDebitsAccount(t *testing.T) {
	repo := newMemoryExpenseRepo()
	repo.accounts[1] = AccountState{ID: 1, Name: "Kas Toko", Balance: decimal.NewFromInt(100000)}
	service := newTestService(repo)

	expense, err := service.Create(context.Background(), CreateExpenseRequest{
		Category:        "Listrik",
		Amount:          decimal.NewFromInt(35000),
		PaymentMethod:   "CASH",
		SourceAccountID: 1,
	})
	require.NoError(t, err)
	require.Equal(t, int64(1), expense.ID)
	require.True(t, repo.accounts[1].Balance.Equal(decimal.NewFromInt(65000)))
	require.Len(t, repo.entries, 1)
	require.Equal(t, ledger.EntryOut, repo.entries[0].Type)
	require.Equal(t, ledger.SourceExpense, repo.entries[0].Source)
	require.True(t, repo.entries[0].Amount.Equal(decimal.NewFromInt(35000)))
}

func TestCreateRejectsInsufficientFunds(t *testing.T) {
	repo := newMemoryExpenseRepo()
	repo.accounts[1] = AccountState{ID: 1, Name: "Kas Toko", Balance: decimal.NewFromInt(10000)}
	service := newTestService(repo)

	_, err := service.Create(context.Background(), CreateExpenseRequest{
		Category:        "Sewa",
		Amount:          decimal.NewFromInt(50000),
		PaymentMethod:   "TRANSFER",
		SourceAccountID: 1,
	})
	require.ErrorIs(t, err, shared.ErrInsufficientFunds)
	require.True(t, repo.accounts[1].Balance.Equal(decimal.NewFromInt(10000)))
	require.Empty(t, repo.expenses)
	require.Empty(t, repo.entries)
}

func TestCreateRequiresAccountForCashMethods(t *testing.T) {
	service := newTestService(newMemoryExpenseRepo())

	_, err := service.Create(context.Background(), CreateExpenseRequest{
		Category:      "Lainnya",
		Amount:        decimal.NewFromInt(5000),
		PaymentMethod: "CASH",
	})
	require.ErrorIs(t, err, shared.ErrInvalidInput)
}

func TestCreateRejectsNonPositiveAmount(t *testing.T) {
	service := newTestService(newMemoryExpenseRepo())

	_, err := service.Create(context.Background(), CreateExpenseRequest{
		Category:      "Lainnya",
		Amount:        decimal.Zero,
		PaymentMethod: "OTHER",
	})
	require.ErrorIs(t, err, shared.ErrInvalidInput)
}

func TestCreateWithoutAccountSkipsBalanceCheck(t *testing.T) {
	repo := newMemoryExpenseRepo()
	service := newTestService(repo)

	expense, err := service.Create(context.Background(), CreateExpenseRequest{
		Category:      "Piutang",
		Amount:        decimal.NewFromInt(12000),
		PaymentMethod: "OTHER",
	})
	require.NoError(t, err)
	require.Equal(t, int64(1), expense.ID)
	require.Len(t, repo.entries, 1)
}
