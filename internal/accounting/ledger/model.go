// Package ledger owns the append-only cash ledger. Sales, purchases and
// expenses append entries inside their own transactions; reports read
// the aggregates.
package ledger

import (
	"time"

	"github.com/shopspring/decimal"
)

// EntryType marks the cash direction of an entry.
type EntryType string

const (
	EntryIn  EntryType = "IN"
	EntryOut EntryType = "OUT"
)

// Source tags identifying the originating financial event.
const (
	SourceSale     = "SALE"
	SourcePurchase = "PURCHASE"
	SourceExpense  = "EXPENSE"
	SourceOther    = "OTHER"
)

// Entry is an immutable cash-equivalent inflow or outflow record.
type Entry struct {
	ID        int64           `json:"id"`
	EntryDate time.Time       `json:"entry_date"`
	Type      EntryType       `json:"type"`
	Source    string          `json:"source"`
	RefID     int64           `json:"ref_id,omitempty"`
	Amount    decimal.Decimal `json:"amount"`
	Notes     string          `json:"notes,omitempty"`
}

// Summary aggregates ledger amounts over a date range.
type Summary struct {
	TotalSales       decimal.Decimal `json:"total_sales"`
	TotalPurchase    decimal.Decimal `json:"total_purchase"`
	TotalExpense     decimal.Decimal `json:"total_expense"`
	TotalOtherIncome decimal.Decimal `json:"total_other_income"`
	TotalOtherOut    decimal.Decimal `json:"total_other_out"`
	NetIncome        decimal.Decimal `json:"net_income"`
}
