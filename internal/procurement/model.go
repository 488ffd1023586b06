// Package procurement implements purchase receipts and purchase
// plans. A purchase increases product stock, reports received
// quantities against any linked plan items and debits the paying
// account, all in one transaction.
package procurement

import (
	"time"

	"github.com/shopspring/decimal"
)

// Plan statuses. A plan moves OPEN to PARTIAL to COMPLETED as
// receipts arrive; CANCELLED is reachable only by explicit
// cancellation and is terminal.
const (
	StatusOpen      = "OPEN"
	StatusPartial   = "PARTIAL"
	StatusCompleted = "COMPLETED"
	StatusCancelled = "CANCELLED"
)

// Purchase is a purchase order header with its line items.
type Purchase struct {
	ID              int64           `json:"id"`
	SupplierID      int64           `json:"supplier_id,omitempty"`
	SupplierName    string          `json:"supplier_name,omitempty"`
	InvoiceNumber   string          `json:"invoice_number,omitempty"`
	PurchaseDate    time.Time       `json:"purchase_date"`
	TotalAmount     decimal.Decimal `json:"total_amount"`
	PaymentMethod   string          `json:"payment_method,omitempty"`
	SourceAccountID int64           `json:"source_account_id,omitempty"`
	Notes           string          `json:"notes,omitempty"`
	Items           []PurchaseItem  `json:"items,omitempty"`
}

// PurchaseItem is one immutable receipt line, optionally linked to a
// purchase plan item.
type PurchaseItem struct {
	ID              int64           `json:"id"`
	PurchaseOrderID int64           `json:"purchase_order_id"`
	ProductID       int64           `json:"product_id"`
	ProductName     string          `json:"product_name,omitempty"`
	Qty             decimal.Decimal `json:"qty"`
	UnitCost        decimal.Decimal `json:"unit_cost"`
	Discount        decimal.Decimal `json:"discount"`
	Subtotal        decimal.Decimal `json:"subtotal"`
	PlanItemID      int64           `json:"plan_item_id,omitempty"`
}

// Plan tracks planned versus received quantities per product.
type Plan struct {
	ID           int64      `json:"id"`
	SupplierID   int64      `json:"supplier_id,omitempty"`
	SupplierName string     `json:"supplier_name,omitempty"`
	TargetDate   *time.Time `json:"target_date,omitempty"`
	Notes        string     `json:"notes,omitempty"`
	Status       string     `json:"status"`
	CreatedAt    time.Time  `json:"created_at"`
	Items        []PlanItem `json:"items,omitempty"`
}

// PlanItem accumulates receipts for one planned product.
// ReceivedQty only grows and never exceeds PlannedQty.
type PlanItem struct {
	ID          int64           `json:"id"`
	PlanID      int64           `json:"plan_id"`
	ProductID   int64           `json:"product_id"`
	ProductName string          `json:"product_name,omitempty"`
	PlannedQty  decimal.Decimal `json:"planned_qty"`
	ReceivedQty decimal.Decimal `json:"received_qty"`
}

// ProductStock is a locked product snapshot.
type ProductStock struct {
	ID       int64
	Name     string
	StockQty decimal.Decimal
}

// ReceiptFilter narrows the receipts listing.
type ReceiptFilter struct {
	SupplierName  string
	InvoiceNumber string
	DateFrom      *time.Time
	DateTo        *time.Time
	Skip          int
	Limit         int
}

// deriveStatus recomputes a plan's status from its items.
func deriveStatus(items []PlanItem) string {
	if len(items) == 0 {
		return StatusOpen
	}
	completed := true
	progress := false
	for _, item := range items {
		if item.ReceivedQty.LessThan(item.PlannedQty) {
			completed = false
		}
		if item.ReceivedQty.IsPositive() {
			progress = true
		}
	}
	switch {
	case completed:
		return StatusCompleted
	case progress:
		return StatusPartial
	default:
		return StatusOpen
	}
}
