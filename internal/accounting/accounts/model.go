package accounts

import (
	"time"

	"github.com/shopspring/decimal"
)

// Account is a named cash or bank balance. The balance is mutated only
// inside sale, purchase and expense transactions.
type Account struct {
	ID             int64           `json:"id"`
	Name           string          `json:"name"`
	Type           string          `json:"type"`
	Number         string          `json:"number,omitempty"`
	CurrentBalance decimal.Decimal `json:"current_balance"`
	IsActive       bool            `json:"is_active"`
	CreatedAt      time.Time       `json:"created_at"`
	UpdatedAt      time.Time       `json:"updated_at"`
}

type CreateAccountRequest struct {
	Name           string          `json:"name" validate:"required,max=255"`
	Type           string          `json:"type" validate:"required,max=50"`
	Number         string          `json:"number" validate:"max=50"`
	CurrentBalance decimal.Decimal `json:"current_balance"`
}
