// Package orders implements sale creation, the busiest write path of
// the system. One request creates the order header, its items, every
// stock deduction (with auto-build from recipes when stock falls
// short), the account credit and the cash ledger entry in a single
// transaction.
package orders

import (
	"time"

	"github.com/shopspring/decimal"
)

// Order is a sales order header with its line items.
type Order struct {
	ID              int64           `json:"id"`
	CustomerID      int64           `json:"customer_id,omitempty"`
	CustomerName    string          `json:"customer_name,omitempty"`
	OrderDate       time.Time       `json:"order_date"`
	Status          string          `json:"status"`
	TotalAmount     decimal.Decimal `json:"total_amount"`
	PaymentMethod   string          `json:"payment_method,omitempty"`
	SourceAccountID int64           `json:"source_account_id,omitempty"`
	Notes           string          `json:"notes,omitempty"`
	Items           []OrderItem     `json:"items,omitempty"`
}

// OrderItem is one immutable sale line.
type OrderItem struct {
	ID           int64           `json:"id"`
	SalesOrderID int64           `json:"sales_order_id"`
	ProductID    int64           `json:"product_id"`
	ProductName  string          `json:"product_name,omitempty"`
	Qty          decimal.Decimal `json:"qty"`
	UnitPrice    decimal.Decimal `json:"unit_price"`
	Discount     decimal.Decimal `json:"discount"`
	Subtotal     decimal.Decimal `json:"subtotal"`
}

// StatusPaid is the only status the current flow writes. DRAFT and
// CANCELLED exist in the taxonomy for data restored from backups.
const (
	StatusDraft     = "DRAFT"
	StatusPaid      = "PAID"
	StatusCancelled = "CANCELLED"
)

// ListFilter narrows the order listing.
type ListFilter struct {
	CustomerID int64
	Skip       int
	Limit      int
}
