package expenses

import (
	"time"

	"github.com/shopspring/decimal"
)

// Expense records a cash outflow that is not a purchase.
type Expense struct {
	ID              int64           `json:"id"`
	ExpenseDate     time.Time       `json:"expense_date"`
	Category        string          `json:"category"`
	Description     string          `json:"description,omitempty"`
	Amount          decimal.Decimal `json:"amount"`
	PaymentMethod   string          `json:"payment_method,omitempty"`
	Notes           string          `json:"notes,omitempty"`
	SourceAccountID int64           `json:"source_account_id,omitempty"`
}

// CreateExpenseRequest is the POST /expenses payload.
type CreateExpenseRequest struct {
	ExpenseDate     *time.Time      `json:"expense_date,omitempty"`
	Category        string          `json:"category" validate:"required,max=100"`
	Description     string          `json:"description" validate:"max=255"`
	Amount          decimal.Decimal `json:"amount"`
	PaymentMethod   string          `json:"payment_method" validate:"required,max=50"`
	Notes           string          `json:"notes"`
	SourceAccountID int64           `json:"source_account_id,omitempty"`
}

// ListFilter narrows the expense listing.
type ListFilter struct {
	Category string
	Skip     int
	Limit    int
}

func requiresAccount(method string) bool {
	return method == "CASH" || method == "TRANSFER"
}
