package procurement

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"github.com/tokokas/tokokas/internal/accounting/accounts"
	"github.com/tokokas/tokokas/internal/accounting/ledger"
	"github.com/tokokas/tokokas/internal/inventory"
	"github.com/tokokas/tokokas/internal/shared"
)

// TxRepository is the transactional surface of the purchase processor.
type TxRepository interface {
	GetProductForUpdate(ctx context.Context, id int64) (ProductStock, error)
	UpdateProductStock(ctx context.Context, id int64, qty decimal.Decimal) error
	InsertMovement(ctx context.Context, mv inventory.Movement) (int64, error)

	GetAccountForUpdate(ctx context.Context, id int64) (accounts.Account, error)
	UpdateAccountBalance(ctx context.Context, id int64, balance decimal.Decimal) error

	InsertPurchase(ctx context.Context, purchase Purchase) (int64, error)
	InsertPurchaseItem(ctx context.Context, item PurchaseItem) (int64, error)

	GetPlanItemForUpdate(ctx context.Context, id int64) (PlanItem, error)
	UpdatePlanItemReceived(ctx context.Context, id int64, received decimal.Decimal) error
	GetPlanStatus(ctx context.Context, id int64) (string, error)
	GetPlanForUpdate(ctx context.Context, id int64) (Plan, error)
	UpdatePlanStatus(ctx context.Context, id int64, status string) error

	InsertPlan(ctx context.Context, plan Plan) (int64, error)
	InsertPlanItem(ctx context.Context, item PlanItem) (int64, error)

	InsertLedgerEntry(ctx context.Context, entry ledger.Entry) (int64, error)
}

// RepositoryPort abstracts repository usage for the service.
type RepositoryPort interface {
	WithTx(ctx context.Context, fn func(context.Context, TxRepository) error) error
	ListReceipts(ctx context.Context, filter ReceiptFilter) ([]Purchase, error)
	GetReceipt(ctx context.Context, id int64) (Purchase, error)
	ListPlans(ctx context.Context, page shared.Page) ([]Plan, error)
	GetPlan(ctx context.Context, id int64) (Plan, error)
}

// Repository persists purchases and plans in PostgreSQL.
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

const purchaseColumns = `id, COALESCE(supplier_id, 0), COALESCE(supplier_name, ''), COALESCE(invoice_number, ''), purchase_date, total_amount, COALESCE(payment_method, ''), COALESCE(source_account_id, 0), COALESCE(notes, '')`

// ListReceipts returns purchases newest first with optional supplier,
// invoice and date range filters.
func (r *Repository) ListReceipts(ctx context.Context, filter ReceiptFilter) ([]Purchase, error) {
	limit := filter.Limit
	if limit <= 0 {
		limit = 100
	}
	rows, err := r.pool.Query(ctx, `SELECT `+purchaseColumns+` FROM purchase_orders
WHERE ($1 = '' OR supplier_name ILIKE '%' || $1 || '%')
  AND ($2 = '' OR invoice_number ILIKE '%' || $2 || '%')
  AND ($3::timestamptz IS NULL OR purchase_date >= $3)
  AND ($4::timestamptz IS NULL OR purchase_date <= $4)
ORDER BY purchase_date DESC, id DESC
OFFSET $5 LIMIT $6`,
		filter.SupplierName, filter.InvoiceNumber, filter.DateFrom, filter.DateTo, filter.Skip, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	purchases := []Purchase{}
	for rows.Next() {
		var p Purchase
		if err := scanPurchase(rows, &p); err != nil {
			return nil, err
		}
		purchases = append(purchases, p)
	}
	return purchases, rows.Err()
}

// GetReceipt returns one purchase with its items.
func (r *Repository) GetReceipt(ctx context.Context, id int64) (Purchase, error) {
	var p Purchase
	err := scanPurchase(r.pool.QueryRow(ctx, `SELECT `+purchaseColumns+` FROM purchase_orders WHERE id = $1`, id), &p)
	if errors.Is(err, pgx.ErrNoRows) {
		return Purchase{}, shared.ErrNotFound
	}
	if err != nil {
		return Purchase{}, err
	}

	rows, err := r.pool.Query(ctx, `SELECT i.id, i.purchase_order_id, i.product_id, p.name, i.qty, i.unit_cost, i.discount, i.subtotal, COALESCE(i.plan_item_id, 0)
FROM purchase_order_items i
JOIN products p ON p.id = i.product_id
WHERE i.purchase_order_id = $1
ORDER BY i.id`, id)
	if err != nil {
		return Purchase{}, err
	}
	defer rows.Close()
	for rows.Next() {
		var item PurchaseItem
		if err := rows.Scan(&item.ID, &item.PurchaseOrderID, &item.ProductID, &item.ProductName, &item.Qty, &item.UnitCost, &item.Discount, &item.Subtotal, &item.PlanItemID); err != nil {
			return Purchase{}, err
		}
		p.Items = append(p.Items, item)
	}
	return p, rows.Err()
}

const planColumns = `id, COALESCE(supplier_id, 0), COALESCE(supplier_name, ''), target_date, COALESCE(notes, ''), status, created_at`

// ListPlans returns plans newest first.
func (r *Repository) ListPlans(ctx context.Context, page shared.Page) ([]Plan, error) {
	rows, err := r.pool.Query(ctx, `SELECT `+planColumns+` FROM purchase_plans
ORDER BY created_at DESC, id DESC
OFFSET $1 LIMIT $2`, page.Skip, page.Limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	plans := []Plan{}
	for rows.Next() {
		var p Plan
		if err := scanPlan(rows, &p); err != nil {
			return nil, err
		}
		plans = append(plans, p)
	}
	return plans, rows.Err()
}

// GetPlan returns one plan with its items.
func (r *Repository) GetPlan(ctx context.Context, id int64) (Plan, error) {
	var p Plan
	err := scanPlan(r.pool.QueryRow(ctx, `SELECT `+planColumns+` FROM purchase_plans WHERE id = $1`, id), &p)
	if errors.Is(err, pgx.ErrNoRows) {
		return Plan{}, shared.ErrNotFound
	}
	if err != nil {
		return Plan{}, err
	}
	items, err := queryPlanItems(ctx, r.pool, id)
	if err != nil {
		return Plan{}, err
	}
	p.Items = items
	return p, nil
}

type txRepository struct {
	tx pgx.Tx
}

func (r *txRepository) GetProductForUpdate(ctx context.Context, id int64) (ProductStock, error) {
	var p ProductStock
	err := r.tx.QueryRow(ctx, `SELECT id, name, stock_qty FROM products WHERE id = $1 FOR UPDATE`, id).
		Scan(&p.ID, &p.Name, &p.StockQty)
	if errors.Is(err, pgx.ErrNoRows) {
		return ProductStock{}, shared.ErrNotFound
	}
	return p, err
}

func (r *txRepository) UpdateProductStock(ctx context.Context, id int64, qty decimal.Decimal) error {
	_, err := r.tx.Exec(ctx, `UPDATE products SET stock_qty = $1, updated_at = NOW() WHERE id = $2`, qty, id)
	return err
}

func (r *txRepository) InsertMovement(ctx context.Context, mv inventory.Movement) (int64, error) {
	return inventory.Insert(ctx, r.tx, mv)
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

func (r *txRepository) InsertPurchase(ctx context.Context, purchase Purchase) (int64, error) {
	var id int64
	err := r.tx.QueryRow(ctx, `INSERT INTO purchase_orders (supplier_id, supplier_name, invoice_number, purchase_date, total_amount, payment_method, source_account_id, notes)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8) RETURNING id`,
		nullInt(purchase.SupplierID), purchase.SupplierName, purchase.InvoiceNumber, purchase.PurchaseDate,
		purchase.TotalAmount, purchase.PaymentMethod, nullInt(purchase.SourceAccountID), purchase.Notes).Scan(&id)
	return id, err
}

func (r *txRepository) InsertPurchaseItem(ctx context.Context, item PurchaseItem) (int64, error) {
	var id int64
	err := r.tx.QueryRow(ctx, `INSERT INTO purchase_order_items (purchase_order_id, product_id, qty, unit_cost, discount, subtotal, plan_item_id)
VALUES ($1, $2, $3, $4, $5, $6, $7) RETURNING id`,
		item.PurchaseOrderID, item.ProductID, item.Qty, item.UnitCost, item.Discount, item.Subtotal, nullInt(item.PlanItemID)).Scan(&id)
	return id, err
}

func (r *txRepository) GetPlanStatus(ctx context.Context, id int64) (string, error) {
	var status string
	err := r.tx.QueryRow(ctx, `SELECT status FROM purchase_plans WHERE id = $1`, id).Scan(&status)
	if errors.Is(err, pgx.ErrNoRows) {
		return "", shared.ErrNotFound
	}
	return status, err
}

func (r *txRepository) GetPlanItemForUpdate(ctx context.Context, id int64) (PlanItem, error) {
	var item PlanItem
	err := r.tx.QueryRow(ctx, `SELECT id, plan_id, product_id, planned_qty, received_qty FROM purchase_plan_items WHERE id = $1 FOR UPDATE`, id).
		Scan(&item.ID, &item.PlanID, &item.ProductID, &item.PlannedQty, &item.ReceivedQty)
	if errors.Is(err, pgx.ErrNoRows) {
		return PlanItem{}, shared.ErrNotFound
	}
	return item, err
}

func (r *txRepository) UpdatePlanItemReceived(ctx context.Context, id int64, received decimal.Decimal) error {
	_, err := r.tx.Exec(ctx, `UPDATE purchase_plan_items SET received_qty = $1 WHERE id = $2`, received, id)
	return err
}

func (r *txRepository) GetPlanForUpdate(ctx context.Context, id int64) (Plan, error) {
	var p Plan
	err := r.tx.QueryRow(ctx, `SELECT `+planColumns+` FROM purchase_plans WHERE id = $1 FOR UPDATE`, id).Scan(
		&p.ID, &p.SupplierID, &p.SupplierName, &p.TargetDate, &p.Notes, &p.Status, &p.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return Plan{}, shared.ErrNotFound
	}
	if err != nil {
		return Plan{}, err
	}
	items, err := queryPlanItems(ctx, r.tx, id)
	if err != nil {
		return Plan{}, err
	}
	p.Items = items
	return p, nil
}

func (r *txRepository) UpdatePlanStatus(ctx context.Context, id int64, status string) error {
	_, err := r.tx.Exec(ctx, `UPDATE purchase_plans SET status = $1, updated_at = NOW() WHERE id = $2`, status, id)
	return err
}

func (r *txRepository) InsertPlan(ctx context.Context, plan Plan) (int64, error) {
	var id int64
	err := r.tx.QueryRow(ctx, `INSERT INTO purchase_plans (supplier_id, supplier_name, target_date, notes, status)
VALUES ($1, $2, $3, $4, $5) RETURNING id`,
		nullInt(plan.SupplierID), plan.SupplierName, plan.TargetDate, plan.Notes, plan.Status).Scan(&id)
	return id, err
}

func (r *txRepository) InsertPlanItem(ctx context.Context, item PlanItem) (int64, error) {
	var id int64
	err := r.tx.QueryRow(ctx, `INSERT INTO purchase_plan_items (plan_id, product_id, planned_qty, received_qty)
VALUES ($1, $2, $3, $4) RETURNING id`,
		item.PlanID, item.ProductID, item.PlannedQty, item.ReceivedQty).Scan(&id)
	return id, err
}

func (r *txRepository) InsertLedgerEntry(ctx context.Context, entry ledger.Entry) (int64, error) {
	return ledger.Insert(ctx, r.tx, entry)
}

func scanPurchase(row pgx.Row, p *Purchase) error {
	return row.Scan(&p.ID, &p.SupplierID, &p.SupplierName, &p.InvoiceNumber, &p.PurchaseDate, &p.TotalAmount, &p.PaymentMethod, &p.SourceAccountID, &p.Notes)
}

func scanPlan(row pgx.Row, p *Plan) error {
	return row.Scan(&p.ID, &p.SupplierID, &p.SupplierName, &p.TargetDate, &p.Notes, &p.Status, &p.CreatedAt)
}

func queryPlanItems(ctx context.Context, db inventory.DBTX, planID int64) ([]PlanItem, error) {
	rows, err := db.Query(ctx, `SELECT i.id, i.plan_id, i.product_id, p.name, i.planned_qty, i.received_qty
FROM purchase_plan_items i
JOIN products p ON p.id = i.product_id
WHERE i.plan_id = $1
ORDER BY i.id`, planID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	items := []PlanItem{}
	for rows.Next() {
		var item PlanItem
		if err := rows.Scan(&item.ID, &item.PlanID, &item.ProductID, &item.ProductName, &item.PlannedQty, &item.ReceivedQty); err != nil {
			return nil, err
		}
		items = append(items, item)
	}
	return items, rows.Err()
}

func nullInt(value int64) any {
	if value == 0 {
		return nil
	}
	return value
}
