package products

import "github.com/shopspring/decimal"

type CreateProductRequest struct {
	SKU       string           `json:"sku" validate:"required,max=100"`
	Name      string           `json:"name" validate:"required,max=255"`
	Category  string           `json:"category" validate:"max=100"`
	Unit      string           `json:"unit" validate:"max=50"`
	Type      ProductType      `json:"product_type" validate:"required"`
	BaseCost  decimal.Decimal  `json:"base_cost"`
	SellPrice decimal.Decimal  `json:"sell_price"`
	StockQty  decimal.Decimal  `json:"stock_qty"`
	MinStock  decimal.Decimal  `json:"min_stock"`
	IsActive  *bool            `json:"is_active,omitempty"`
}

type UpdateProductRequest struct {
	Name      *string          `json:"name,omitempty" validate:"omitempty,max=255"`
	Category  *string          `json:"category,omitempty" validate:"omitempty,max=100"`
	Unit      *string          `json:"unit,omitempty" validate:"omitempty,max=50"`
	BaseCost  *decimal.Decimal `json:"base_cost,omitempty"`
	SellPrice *decimal.Decimal `json:"sell_price,omitempty"`
	MinStock  *decimal.Decimal `json:"min_stock,omitempty"`
	IsActive  *bool            `json:"is_active,omitempty"`
}
