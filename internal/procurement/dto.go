package procurement

import (
	"time"

	"github.com/shopspring/decimal"
)

// CreatePurchaseItem is one requested receipt line.
type CreatePurchaseItem struct {
	ProductID  int64           `json:"product_id" validate:"required"`
	Qty        decimal.Decimal `json:"qty"`
	UnitCost   decimal.Decimal `json:"unit_cost"`
	Discount   decimal.Decimal `json:"discount"`
	PlanItemID int64           `json:"plan_item_id,omitempty"`
}

// CreatePurchaseRequest is the POST /purchases payload.
type CreatePurchaseRequest struct {
	SupplierID      int64                `json:"supplier_id,omitempty"`
	SupplierName    string               `json:"supplier_name,omitempty" validate:"max=255"`
	InvoiceNumber   string               `json:"invoice_number,omitempty" validate:"max=100"`
	PurchaseDate    *time.Time           `json:"purchase_date,omitempty"`
	PaymentMethod   string               `json:"payment_method" validate:"required,max=50"`
	SourceAccountID int64                `json:"source_account_id,omitempty"`
	Notes           string               `json:"notes,omitempty"`
	Items           []CreatePurchaseItem `json:"items" validate:"required,min=1,dive"`
}

// CreatePlanItem is one planned product line.
type CreatePlanItem struct {
	ProductID  int64           `json:"product_id" validate:"required"`
	PlannedQty decimal.Decimal `json:"planned_qty"`
}

// CreatePlanRequest is the POST /purchase-plans payload.
type CreatePlanRequest struct {
	SupplierID   int64            `json:"supplier_id,omitempty"`
	SupplierName string           `json:"supplier_name,omitempty" validate:"max=255"`
	TargetDate   *time.Time       `json:"target_date,omitempty"`
	Notes        string           `json:"notes,omitempty"`
	Items        []CreatePlanItem `json:"items" validate:"required,min=1,dive"`
}
