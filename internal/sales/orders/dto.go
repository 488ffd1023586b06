package orders

import "github.com/shopspring/decimal"

// CreateSaleItem is one requested sale line.
type CreateSaleItem struct {
	ProductID int64           `json:"product_id" validate:"required"`
	Qty       decimal.Decimal `json:"qty"`
	UnitPrice decimal.Decimal `json:"unit_price"`
	Discount  decimal.Decimal `json:"discount"`
}

// CreateSaleRequest is the POST /sales payload. Either customer_id or
// customer_name must be set; a name with no matching customer creates
// one inside the sale transaction.
type CreateSaleRequest struct {
	CustomerID      int64            `json:"customer_id,omitempty"`
	CustomerName    string           `json:"customer_name,omitempty" validate:"max=255"`
	CustomerPhone   string           `json:"customer_phone,omitempty" validate:"max=50"`
	CustomerEmail   string           `json:"customer_email,omitempty" validate:"omitempty,email"`
	SourceChannel   string           `json:"source_channel,omitempty" validate:"max=50"`
	PaymentMethod   string           `json:"payment_method" validate:"required,max=50"`
	SourceAccountID int64            `json:"source_account_id,omitempty"`
	Notes           string           `json:"notes,omitempty"`
	Items           []CreateSaleItem `json:"items" validate:"required,min=1,dive"`
}
