package orders

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/tokokas/tokokas/internal/accounting/accounts"
	"github.com/tokokas/tokokas/internal/accounting/ledger"
	"github.com/tokokas/tokokas/internal/inventory"
	"github.com/tokokas/tokokas/internal/masterdata/products"
	"github.com/tokokas/tokokas/internal/recipes"
	"github.com/tokokas/tokokas/internal/sales/customers"
	"github.com/tokokas/tokokas/internal/shared"
)

// Service is the sale processor.
type Service struct {
	repo   RepositoryPort
	logger *slog.Logger
}

// NewService constructs Service.
func NewService(repo RepositoryPort, logger *slog.Logger) *Service {
	return &Service{repo: repo, logger: logger}
}

func requiresAccount(method string) bool {
	return method == "CASH" || method == "TRANSFER"
}

// CreateSale runs the whole sale in one transaction: customer
// resolution (creating one by name when needed), stock deduction with
// auto-build on shortfall, order and item rows, movement log entries,
// the account credit and the cash ledger entry. Any failure rolls the
// whole sale back, including an auto-created customer.
func (s *Service) CreateSale(ctx context.Context, req CreateSaleRequest) (Order, error) {
	if len(req.Items) == 0 {
		return Order{}, fmt.Errorf("%w: no items in sale", shared.ErrInvalidInput)
	}
	for _, item := range req.Items {
		if !item.Qty.IsPositive() {
			return Order{}, fmt.Errorf("%w: qty must be positive for product %d", shared.ErrInvalidInput, item.ProductID)
		}
		if item.UnitPrice.IsNegative() || item.Discount.IsNegative() {
			return Order{}, fmt.Errorf("%w: unit_price and discount must not be negative", shared.ErrInvalidInput)
		}
	}
	if requiresAccount(req.PaymentMethod) && req.SourceAccountID == 0 {
		return Order{}, fmt.Errorf("%w: payment method %s requires a source account", shared.ErrInvalidInput, req.PaymentMethod)
	}

	// Items are locked in ascending product id order so two concurrent
	// sales touching the same products cannot deadlock.
	items := make([]CreateSaleItem, len(req.Items))
	copy(items, req.Items)
	sort.Slice(items, func(i, j int) bool { return items[i].ProductID < items[j].ProductID })

	var created Order
	err := s.repo.WithTx(ctx, func(ctx context.Context, tx TxRepository) error {
		customer, err := s.resolveCustomer(ctx, tx, req)
		if err != nil {
			return err
		}

		// Resolve the payment account before touching stock, like the
		// purchase path does.
		var account accounts.Account
		if requiresAccount(req.PaymentMethod) {
			account, err = tx.GetAccountForUpdate(ctx, req.SourceAccountID)
			if err != nil {
				return fmt.Errorf("account %d: %w", req.SourceAccountID, err)
			}
		}

		total := decimal.Zero
		for _, item := range items {
			total = total.Add(item.UnitPrice.Mul(item.Qty).Sub(item.Discount))
		}

		order := Order{
			CustomerID:      customer.ID,
			CustomerName:    customer.Name,
			Status:          StatusPaid,
			TotalAmount:     total,
			PaymentMethod:   req.PaymentMethod,
			SourceAccountID: req.SourceAccountID,
			Notes:           req.Notes,
		}
		saleID, err := tx.InsertOrder(ctx, order)
		if err != nil {
			return fmt.Errorf("insert order: %w", err)
		}
		order.ID = saleID

		for _, item := range items {
			line, err := s.processItem(ctx, tx, saleID, customer.Name, item)
			if err != nil {
				return err
			}
			order.Items = append(order.Items, line)
		}

		if requiresAccount(req.PaymentMethod) {
			if err := tx.UpdateAccountBalance(ctx, account.ID, account.CurrentBalance.Add(total)); err != nil {
				return fmt.Errorf("credit account %d: %w", account.ID, err)
			}
		}

		if _, err := tx.InsertLedgerEntry(ctx, ledger.Entry{
			Type:   ledger.EntryIn,
			Source: ledger.SourceSale,
			RefID:  saleID,
			Amount: total,
			Notes:  fmt.Sprintf("Sales payment from %s via %s", customer.Name, req.PaymentMethod),
		}); err != nil {
			return fmt.Errorf("ledger entry: %w", err)
		}

		created = order
		return nil
	})
	if err != nil {
		return Order{}, err
	}

	s.logger.InfoContext(ctx, "sale created",
		slog.Int64("sale_id", created.ID),
		slog.String("customer", created.CustomerName),
		slog.String("total", created.TotalAmount.String()))
	return created, nil
}

// processItem locks the product, covers any shortfall via auto-build,
// deducts stock and writes the movement and item rows.
func (s *Service) processItem(ctx context.Context, tx TxRepository, saleID int64, customerName string, item CreateSaleItem) (OrderItem, error) {
	product, err := tx.GetProductForUpdate(ctx, item.ProductID)
	if err != nil {
		return OrderItem{}, fmt.Errorf("product %d: %w", item.ProductID, err)
	}
	if product.Type != products.TypeInternal {
		return OrderItem{}, fmt.Errorf("%w: product %s is not for sale (type=%s)", shared.ErrInvalidInput, product.Name, product.Type)
	}

	if product.StockQty.LessThan(item.Qty) {
		shortfall := item.Qty.Sub(product.StockQty)
		built, err := recipes.AutoBuild(ctx, tx, product, shortfall, saleID)
		if err != nil {
			return OrderItem{}, err
		}
		product.StockQty = product.StockQty.Add(built)
		if product.StockQty.LessThan(item.Qty) {
			return OrderItem{}, fmt.Errorf("%w: insufficient stock for %s, available: %s, requested: %s",
				shared.ErrInsufficientStock, product.Name, product.StockQty, item.Qty)
		}
	}

	after := product.StockQty.Sub(item.Qty)
	if err := tx.UpdateProductStock(ctx, product.ID, after); err != nil {
		return OrderItem{}, fmt.Errorf("deduct stock for product %d: %w", product.ID, err)
	}
	if _, err := tx.InsertMovement(ctx, inventory.Movement{
		ProductID:   product.ID,
		Type:        inventory.MovementOut,
		RefType:     inventory.RefSale,
		RefID:       saleID,
		QtyChange:   item.Qty.Neg(),
		StockBefore: product.StockQty,
		StockAfter:  after,
		Notes:       fmt.Sprintf("Sale to customer: %s", customerName),
	}); err != nil {
		return OrderItem{}, fmt.Errorf("movement for product %d: %w", product.ID, err)
	}

	line := OrderItem{
		SalesOrderID: saleID,
		ProductID:    product.ID,
		ProductName:  product.Name,
		Qty:          item.Qty,
		UnitPrice:    item.UnitPrice,
		Discount:     item.Discount,
		Subtotal:     item.UnitPrice.Mul(item.Qty).Sub(item.Discount),
	}
	id, err := tx.InsertOrderItem(ctx, line)
	if err != nil {
		return OrderItem{}, fmt.Errorf("insert item for product %d: %w", product.ID, err)
	}
	line.ID = id
	return line, nil
}

func (s *Service) resolveCustomer(ctx context.Context, tx TxRepository, req CreateSaleRequest) (customers.Customer, error) {
	if req.CustomerID != 0 {
		customer, err := tx.GetCustomer(ctx, req.CustomerID)
		if err != nil {
			return customers.Customer{}, fmt.Errorf("customer %d: %w", req.CustomerID, err)
		}
		return customer, nil
	}
	name := strings.TrimSpace(req.CustomerName)
	if name == "" {
		return customers.Customer{}, fmt.Errorf("%w: customer_name is required when customer_id is not provided", shared.ErrInvalidInput)
	}
	customer, err := tx.FindCustomerByName(ctx, name)
	if err == nil {
		return customer, nil
	}
	if !errors.Is(err, shared.ErrNotFound) {
		return customers.Customer{}, err
	}
	return tx.CreateCustomer(ctx, customers.Customer{
		Name:          name,
		Phone:         req.CustomerPhone,
		Email:         req.CustomerEmail,
		SourceChannel: req.SourceChannel,
	})
}

// List returns sale headers matching the filter.
func (s *Service) List(ctx context.Context, filter ListFilter) ([]Order, error) {
	return s.repo.List(ctx, filter)
}

// Get returns one sale with its items.
func (s *Service) Get(ctx context.Context, id int64) (Order, error) {
	return s.repo.Get(ctx, id)
}
