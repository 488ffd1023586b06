// Package inventory owns the append-only stock movement log. Order
// processors and the recipe engine write movements inside their own
// transactions; this package provides the row shape, the insert helper
// and the listing API.
package inventory

import (
	"time"

	"github.com/shopspring/decimal"
)

// MovementType enumerates stock quantity change directions.
type MovementType string

const (
	// MovementIn represents an inbound change.
	MovementIn MovementType = "IN"
	// MovementOut represents an outbound change.
	MovementOut MovementType = "OUT"
	// MovementAdjust indicates manual adjustments.
	MovementAdjust MovementType = "ADJUST"
)

// Reference tags naming the originating operation of a movement.
const (
	RefSale       = "SALE"
	RefPurchase   = "PURCHASE"
	RefProduction = "PRODUCTION"
	RefBuild      = "BUILD"
	RefAdjustment = "ADJUSTMENT"
	RefRestore    = "RESTORE"
)

// Movement is an immutable audit record of a single stock change.
// StockAfter always equals the product's stock at write time.
type Movement struct {
	ID           int64           `json:"id"`
	ProductID    int64           `json:"product_id"`
	ProductName  string          `json:"product_name,omitempty"`
	MovementDate time.Time       `json:"movement_date"`
	Type         MovementType    `json:"type"`
	RefType      string          `json:"ref_type,omitempty"`
	RefID        int64           `json:"ref_id,omitempty"`
	QtyChange    decimal.Decimal `json:"qty_change"`
	StockBefore  decimal.Decimal `json:"stock_before"`
	StockAfter   decimal.Decimal `json:"stock_after"`
	Notes        string          `json:"notes,omitempty"`
}

// ListFilter narrows the movement listing.
type ListFilter struct {
	ProductID int64
	Limit     int
}
