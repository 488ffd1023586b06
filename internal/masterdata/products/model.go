package products

import (
	"time"

	"github.com/shopspring/decimal"
)

// ProductType classifies how a product participates in flows. Only
// INTERNAL products are sellable or buildable; RAW products are recipe
// components; SERVICE products carry no stock.
type ProductType string

const (
	TypeInternal ProductType = "INTERNAL"
	TypeRaw      ProductType = "RAW"
	TypeService  ProductType = "SERVICE"
)

// Valid reports whether the type is one of the known values.
func (t ProductType) Valid() bool {
	switch t {
	case TypeInternal, TypeRaw, TypeService:
		return true
	}
	return false
}

// Product represents a catalog entry. StockQty is mutated only by the
// order processors, the recipe engine and admin restore.
type Product struct {
	ID        int64           `json:"id"`
	SKU       string          `json:"sku"`
	Name      string          `json:"name"`
	Category  string          `json:"category,omitempty"`
	Unit      string          `json:"unit,omitempty"`
	Type      ProductType     `json:"product_type"`
	BaseCost  decimal.Decimal `json:"base_cost"`
	SellPrice decimal.Decimal `json:"sell_price"`
	StockQty  decimal.Decimal `json:"stock_qty"`
	MinStock  decimal.Decimal `json:"min_stock"`
	IsActive  bool            `json:"is_active"`
	CreatedAt time.Time       `json:"created_at"`
	UpdatedAt time.Time       `json:"updated_at"`
}
