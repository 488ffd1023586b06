package expenses

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/tokokas/tokokas/internal/accounting/ledger"
	"github.com/tokokas/tokokas/internal/shared"
)

// Service coordinates expense recording and account debits.
type Service struct {
	repo   RepositoryPort
	logger *slog.Logger
}

// NewService constructs Service.
func NewService(repo RepositoryPort, logger *slog.Logger) *Service {
	return &Service{repo: repo, logger: logger}
}

// Create records an expense and, for CASH or TRANSFER payments, debits
// the source account and writes a cash ledger entry in the same
// transaction.
func (s *Service) Create(ctx context.Context, req CreateExpenseRequest) (Expense, error) {
	if !req.Amount.IsPositive() {
		return Expense{}, fmt.Errorf("%w: amount must be positive", shared.ErrInvalidInput)
	}
	if requiresAccount(req.PaymentMethod) && req.SourceAccountID == 0 {
		return Expense{}, fmt.Errorf("%w: payment method %s requires a source account", shared.ErrInvalidInput, req.PaymentMethod)
	}

	expenseDate := time.Now().UTC()
	if req.ExpenseDate != nil {
		expenseDate = *req.ExpenseDate
	}
	created := Expense{
		ExpenseDate:     expenseDate,
		Category:        req.Category,
		Description:     req.Description,
		Amount:          req.Amount,
		PaymentMethod:   req.PaymentMethod,
		Notes:           req.Notes,
		SourceAccountID: req.SourceAccountID,
	}

	err := s.repo.WithTx(ctx, func(ctx context.Context, tx TxRepository) error {
		if requiresAccount(req.PaymentMethod) {
			account, err := tx.GetAccountForUpdate(ctx, req.SourceAccountID)
			if err != nil {
				return fmt.Errorf("lock account %d: %w", req.SourceAccountID, err)
			}
			if account.Balance.LessThan(req.Amount) {
				return fmt.Errorf("%w: account %s balance %s below expense %s",
					shared.ErrInsufficientFunds, account.Name, account.Balance, req.Amount)
			}
			if err := tx.UpdateAccountBalance(ctx, account.ID, account.Balance.Sub(req.Amount)); err != nil {
				return fmt.Errorf("debit account %d: %w", account.ID, err)
			}
		}

		id, err := tx.InsertExpense(ctx, created)
		if err != nil {
			return fmt.Errorf("insert expense: %w", err)
		}
		created.ID = id

		if _, err := tx.InsertLedgerEntry(ctx, ledger.Entry{
			Type:   ledger.EntryOut,
			Source: ledger.SourceExpense,
			RefID:  id,
			Amount: req.Amount,
			Notes:  req.Category,
		}); err != nil {
			return fmt.Errorf("ledger entry: %w", err)
		}
		return nil
	})
	if err != nil {
		return Expense{}, err
	}

	s.logger.InfoContext(ctx, "expense recorded",
		slog.Int64("expense_id", created.ID),
		slog.String("category", created.Category),
		slog.String("amount", created.Amount.String()))
	return created, nil
}

// List returns expenses matching the filter.
func (s *Service) List(ctx context.Context, filter ListFilter) ([]Expense, error) {
	return s.repo.List(ctx, filter)
}

// Get returns one expense by id.
func (s *Service) Get(ctx context.Context, id int64) (Expense, error) {
	return s.repo.Get(ctx, id)
}
