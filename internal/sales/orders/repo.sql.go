package orders

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"github.com/tokokas/tokokas/internal/accounting/accounts"
	"github.com/tokokas/tokokas/internal/accounting/ledger"
	"github.com/tokokas/tokokas/internal/inventory"
	"github.com/tokokas/tokokas/internal/recipes"
	"github.com/tokokas/tokokas/internal/sales/customers"
	"github.com/tokokas/tokokas/internal/shared"
)

// TxRepository is the transactional surface of the sale processor. It
// embeds the recipe engine's stock operations so auto-build runs in
// the same transaction as the sale.
type TxRepository interface {
	recipes.StockTx

	GetCustomer(ctx context.Context, id int64) (customers.Customer, error)
	FindCustomerByName(ctx context.Context, name string) (customers.Customer, error)
	CreateCustomer(ctx context.Context, customer customers.Customer) (customers.Customer, error)

	GetAccountForUpdate(ctx context.Context, id int64) (accounts.Account, error)
	UpdateAccountBalance(ctx context.Context, id int64, balance decimal.Decimal) error

	InsertOrder(ctx context.Context, order Order) (int64, error)
	InsertOrderItem(ctx context.Context, item OrderItem) (int64, error)
	InsertLedgerEntry(ctx context.Context, entry ledger.Entry) (int64, error)
}

// RepositoryPort abstracts repository usage for the service.
type RepositoryPort interface {
	WithTx(ctx context.Context, fn func(context.Context, TxRepository) error) error
	List(ctx context.Context, filter ListFilter) ([]Order, error)
	Get(ctx context.Context, id int64) (Order, error)
}

// Repository persists sales orders in PostgreSQL.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs Repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// WithTx runs fn inside a repeatable-read transaction.
func (r *Repository) WithTx(ctx context.Context, fn func(context.Context, TxRepository) error) error {
	tx, err := r.pool.BeginTx(ctx, pgx.TxOptions{IsoLevel: pgx.RepeatableRead})
	if err != nil {
		return err
	}
	defer func() {
		_ = tx.Rollback(ctx)
	}()
	if err := fn(ctx, &txRepository{tx: tx}); err != nil {
		return err
	}
	return tx.Commit(ctx)
}

const orderColumns = `id, COALESCE(customer_id, 0), COALESCE(customer_name, ''), order_date, status, total_amount, COALESCE(payment_method, ''), COALESCE(source_account_id, 0), COALESCE(notes, '')`

// List returns order headers newest first, optionally filtered by
// customer. Items are not loaded; Get returns them.
func (r *Repository) List(ctx context.Context, filter ListFilter) ([]Order, error) {
	limit := filter.Limit
	if limit <= 0 {
		limit = 100
	}
	rows, err := r.pool.Query(ctx, `SELECT `+orderColumns+` FROM sales_orders
WHERE ($1 = 0 OR customer_id = $1)
ORDER BY order_date DESC, id DESC
OFFSET $2 LIMIT $3`, filter.CustomerID, filter.Skip, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	ordersList := []Order{}
	for rows.Next() {
		var o Order
		if err := scanOrder(rows, &o); err != nil {
			return nil, err
		}
		ordersList = append(ordersList, o)
	}
	return ordersList, rows.Err()
}

// Get returns one order with its items.
func (r *Repository) Get(ctx context.Context, id int64) (Order, error) {
	var o Order
	err := scanOrder(r.pool.QueryRow(ctx, `SELECT `+orderColumns+` FROM sales_orders WHERE id = $1`, id), &o)
	if errors.Is(err, pgx.ErrNoRows) {
		return Order{}, shared.ErrNotFound
	}
	if err != nil {
		return Order{}, err
	}

	rows, err := r.pool.Query(ctx, `SELECT i.id, i.sales_order_id, i.product_id, p.name, i.qty, i.unit_price, i.discount, i.subtotal
FROM sales_order_items i
JOIN products p ON p.id = i.product_id
WHERE i.sales_order_id = $1
ORDER BY i.id`, id)
	if err != nil {
		return Order{}, err
	}
	defer rows.Close()
	for rows.Next() {
		var item OrderItem
		if err := rows.Scan(&item.ID, &item.SalesOrderID, &item.ProductID, &item.ProductName, &item.Qty, &item.UnitPrice, &item.Discount, &item.Subtotal); err != nil {
			return Order{}, err
		}
		o.Items = append(o.Items, item)
	}
	return o, rows.Err()
}

type txRepository struct {
	tx pgx.Tx
}

func (r *txRepository) Components(ctx context.Context, productID int64) ([]recipes.Component, error) {
	rows, err := r.tx.Query(ctx, `SELECT r.id, r.product_id, r.component_product_id, p.name, r.qty_per_unit
FROM product_recipes r
JOIN products p ON p.id = r.component_product_id
WHERE r.product_id = $1
ORDER BY r.component_product_id`, productID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	components := []recipes.Component{}
	for rows.Next() {
		var c recipes.Component
		if err := rows.Scan(&c.ID, &c.ProductID, &c.ComponentProductID, &c.ComponentName, &c.QtyPerUnit); err != nil {
			return nil, err
		}
		components = append(components, c)
	}
	return components, rows.Err()
}

func (r *txRepository) GetProductForUpdate(ctx context.Context, id int64) (recipes.ProductState, error) {
	var state recipes.ProductState
	err := r.tx.QueryRow(ctx, `SELECT id, name, product_type, stock_qty FROM products WHERE id = $1 FOR UPDATE`, id).
		Scan(&state.ID, &state.Name, &state.Type, &state.StockQty)
	if errors.Is(err, pgx.ErrNoRows) {
		return recipes.ProductState{}, shared.ErrNotFound
	}
	return state, err
}

func (r *txRepository) UpdateProductStock(ctx context.Context, id int64, qty decimal.Decimal) error {
	_, err := r.tx.Exec(ctx, `UPDATE products SET stock_qty = $1, updated_at = NOW() WHERE id = $2`, qty, id)
	return err
}

func (r *txRepository) InsertMovement(ctx context.Context, mv inventory.Movement) (int64, error) {
	return inventory.Insert(ctx, r.tx, mv)
}

func (r *txRepository) GetCustomer(ctx context.Context, id int64) (customers.Customer, error) {
	var c customers.Customer
	err := r.tx.QueryRow(ctx, `SELECT id, name, COALESCE(phone, ''), COALESCE(email, ''), COALESCE(source_channel, '') FROM customers WHERE id = $1`, id).
		Scan(&c.ID, &c.Name, &c.Phone, &c.Email, &c.SourceChannel)
	if errors.Is(err, pgx.ErrNoRows) {
		return customers.Customer{}, shared.ErrNotFound
	}
	return c, err
}

func (r *txRepository) FindCustomerByName(ctx context.Context, name string) (customers.Customer, error) {
	var c customers.Customer
	err := r.tx.QueryRow(ctx, `SELECT id, name, COALESCE(phone, ''), COALESCE(email, ''), COALESCE(source_channel, '') FROM customers WHERE name = $1`, name).
		Scan(&c.ID, &c.Name, &c.Phone, &c.Email, &c.SourceChannel)
	if errors.Is(err, pgx.ErrNoRows) {
		return customers.Customer{}, shared.ErrNotFound
	}
	return c, err
}

func (r *txRepository) CreateCustomer(ctx context.Context, customer customers.Customer) (customers.Customer, error) {
	err := r.tx.QueryRow(ctx, `INSERT INTO customers (name, phone, email, source_channel, is_active)
VALUES ($1, $2, $3, $4, TRUE) RETURNING id`,
		customer.Name, customer.Phone, customer.Email, customer.SourceChannel).Scan(&customer.ID)
	if err != nil {
		return customers.Customer{}, err
	}
	return customer, nil
}

func (r *txRepository) GetAccountForUpdate(ctx context.Context, id int64) (accounts.Account, error) {
	var a accounts.Account
	err := r.tx.QueryRow(ctx, `SELECT id, name, type, current_balance FROM accounts WHERE id = $1 FOR UPDATE`, id).
		Scan(&a.ID, &a.Name, &a.Type, &a.CurrentBalance)
	if errors.Is(err, pgx.ErrNoRows) {
		return accounts.Account{}, shared.ErrNotFound
	}
	return a, err
}

func (r *txRepository) UpdateAccountBalance(ctx context.Context, id int64, balance decimal.Decimal) error {
	_, err := r.tx.Exec(ctx, `UPDATE accounts SET current_balance = $1, updated_at = NOW() WHERE id = $2`, balance, id)
	return err
}

func (r *txRepository) InsertOrder(ctx context.Context, order Order) (int64, error) {
	var id int64
	err := r.tx.QueryRow(ctx, `INSERT INTO sales_orders (customer_id, customer_name, order_date, status, total_amount, payment_method, source_account_id, notes)
VALUES ($1, $2, NOW(), $3, $4, $5, $6, $7) RETURNING id`,
		nullInt(order.CustomerID), order.CustomerName, order.Status, order.TotalAmount,
		order.PaymentMethod, nullInt(order.SourceAccountID), order.Notes).Scan(&id)
	return id, err
}

func (r *txRepository) InsertOrderItem(ctx context.Context, item OrderItem) (int64, error) {
	var id int64
	err := r.tx.QueryRow(ctx, `INSERT INTO sales_order_items (sales_order_id, product_id, qty, unit_price, discount, subtotal)
VALUES ($1, $2, $3, $4, $5, $6) RETURNING id`,
		item.SalesOrderID, item.ProductID, item.Qty, item.UnitPrice, item.Discount, item.Subtotal).Scan(&id)
	return id, err
}

func (r *txRepository) InsertLedgerEntry(ctx context.Context, entry ledger.Entry) (int64, error) {
	return ledger.Insert(ctx, r.tx, entry)
}

func scanOrder(row pgx.Row, o *Order) error {
	return row.Scan(&o.ID, &o.CustomerID, &o.CustomerName, &o.OrderDate, &o.Status, &o.TotalAmount, &o.PaymentMethod, &o.SourceAccountID, &o.Notes)
}

func nullInt(value int64) any {
	if value == 0 {
		return nil
	}
	return value
}
