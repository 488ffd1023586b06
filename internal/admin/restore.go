// Package admin implements the backup restore endpoint: per table,
// wipe then reinsert the payload's rows, all inside one transaction.
package admin

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/tokokas/tokokas/internal/accounting/expenses"
	"github.com/tokokas/tokokas/internal/masterdata/products"
	"github.com/tokokas/tokokas/internal/masterdata/suppliers"
	"github.com/tokokas/tokokas/internal/platform/db"
	"github.com/tokokas/tokokas/internal/recipes"
	"github.com/tokokas/tokokas/internal/sales/customers"
)

// BackupMeta describes the backup file being restored.
type BackupMeta struct {
	GeneratedAt *time.Time `json:"generated_at,omitempty"`
	App         string     `json:"app,omitempty"`
	Version     string     `json:"version,omitempty"`
}

// BackupPayload is the POST /admin/restore body. Only the sections
// present are restored; each restored table is wiped first.
type BackupPayload struct {
	Meta      *BackupMeta                  `json:"meta,omitempty"`
	Products  []products.Product           `json:"products,omitempty"`
	Customers []customers.Customer         `json:"customers,omitempty"`
	Suppliers []suppliers.Supplier         `json:"suppliers,omitempty"`
	Expenses  []expenses.Expense           `json:"expenses,omitempty"`
	Recipes   map[int64][]recipes.Component `json:"recipes,omitempty"`
}

// RestoreResult is the restore response body.
type RestoreResult struct {
	Status  string      `json:"status"`
	Message string      `json:"message"`
	Meta    *BackupMeta `json:"meta,omitempty"`
}

// Service executes restores.
type Service struct {
	pool   *pgxpool.Pool
	logger *slog.Logger
}

// NewService constructs Service.
func NewService(pool *pgxpool.Pool, logger *slog.Logger) *Service {
	return &Service{pool: pool, logger: logger}
}

// Restore wipes and reinserts every table present in the payload in
// one transaction.
func (s *Service) Restore(ctx context.Context, payload BackupPayload) (RestoreResult, error) {
	err := db.WithTx(ctx, s.pool, func(tx pgx.Tx) error {
		if len(payload.Products) > 0 {
			if err := restoreProducts(ctx, tx, payload.Products); err != nil {
				return fmt.Errorf("restore products: %w", err)
			}
		}
		if len(payload.Customers) > 0 {
			if err := restoreCustomers(ctx, tx, payload.Customers); err != nil {
				return fmt.Errorf("restore customers: %w", err)
			}
		}
		if len(payload.Suppliers) > 0 {
			if err := restoreSuppliers(ctx, tx, payload.Suppliers); err != nil {
				return fmt.Errorf("restore suppliers: %w", err)
			}
		}
		if len(payload.Expenses) > 0 {
			if err := restoreExpenses(ctx, tx, payload.Expenses); err != nil {
				return fmt.Errorf("restore expenses: %w", err)
			}
		}
		if len(payload.Recipes) > 0 {
			if err := restoreRecipes(ctx, tx, payload.Recipes); err != nil {
				return fmt.Errorf("restore recipes: %w", err)
			}
		}
		return nil
	})
	if err != nil {
		return RestoreResult{}, err
	}

	s.logger.InfoContext(ctx, "restore completed",
		slog.Int("products", len(payload.Products)),
		slog.Int("customers", len(payload.Customers)),
		slog.Int("suppliers", len(payload.Suppliers)),
		slog.Int("expenses", len(payload.Expenses)))
	return RestoreResult{Status: "ok", Message: "restore completed", Meta: payload.Meta}, nil
}

func restoreProducts(ctx context.Context, tx pgx.Tx, rows []products.Product) error {
	if _, err := tx.Exec(ctx, `DELETE FROM products`); err != nil {
		return err
	}
	for _, p := range rows {
		if _, err := tx.Exec(ctx, `INSERT INTO products (id, sku, name, category, unit, product_type, base_cost, sell_price, stock_qty, min_stock, is_active)
VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11)`,
			p.ID, p.SKU, p.Name, p.Category, p.Unit, string(p.Type), p.BaseCost, p.SellPrice, p.StockQty, p.MinStock, p.IsActive); err != nil {
			return err
		}
	}
	_, err := tx.Exec(ctx, `SELECT setval(pg_get_serial_sequence('products', 'id'), COALESCE(MAX(id), 1)) FROM products`)
	return err
}

func restoreCustomers(ctx context.Context, tx pgx.Tx, rows []customers.Customer) error {
	if _, err := tx.Exec(ctx, `DELETE FROM customers`); err != nil {
		return err
	}
	for _, c := range rows {
		if _, err := tx.Exec(ctx, `INSERT INTO customers (id, name, phone, email, address, source_channel, notes, is_active)
VALUES ($1,$2,$3,$4,$5,$6,$7,$8)`,
			c.ID, c.Name, c.Phone, c.Email, c.Address, c.SourceChannel, c.Notes, c.IsActive); err != nil {
			return err
		}
	}
	_, err := tx.Exec(ctx, `SELECT setval(pg_get_serial_sequence('customers', 'id'), COALESCE(MAX(id), 1)) FROM customers`)
	return err
}

func restoreSuppliers(ctx context.Context, tx pgx.Tx, rows []suppliers.Supplier) error {
	if _, err := tx.Exec(ctx, `DELETE FROM suppliers`); err != nil {
		return err
	}
	for _, s := range rows {
		if _, err := tx.Exec(ctx, `INSERT INTO suppliers (id, name, contact, phone, address, is_active)
VALUES ($1,$2,$3,$4,$5,$6)`,
			s.ID, s.Name, s.Contact, s.Phone, s.Address, s.IsActive); err != nil {
			return err
		}
	}
	_, err := tx.Exec(ctx, `SELECT setval(pg_get_serial_sequence('suppliers', 'id'), COALESCE(MAX(id), 1)) FROM suppliers`)
	return err
}

func restoreExpenses(ctx context.Context, tx pgx.Tx, rows []expenses.Expense) error {
	if _, err := tx.Exec(ctx, `DELETE FROM expenses`); err != nil {
		return err
	}
	for _, e := range rows {
		if _, err := tx.Exec(ctx, `INSERT INTO expenses (id, expense_date, category, description, amount, payment_method, notes, source_account_id)
VALUES ($1,$2,$3,$4,$5,$6,$7,NULLIF($8, 0))`,
			e.ID, e.ExpenseDate, e.Category, e.Description, e.Amount, e.PaymentMethod, e.Notes, e.SourceAccountID); err != nil {
			return err
		}
	}
	_, err := tx.Exec(ctx, `SELECT setval(pg_get_serial_sequence('expenses', 'id'), COALESCE(MAX(id), 1)) FROM expenses`)
	return err
}

func restoreRecipes(ctx context.Context, tx pgx.Tx, byProduct map[int64][]recipes.Component) error {
	if _, err := tx.Exec(ctx, `DELETE FROM product_recipes`); err != nil {
		return err
	}
	for productID, components := range byProduct {
		for _, c := range components {
			if _, err := tx.Exec(ctx, `INSERT INTO product_recipes (id, product_id, component_product_id, qty_per_unit)
VALUES ($1,$2,$3,$4)`,
				c.ID, productID, c.ComponentProductID, c.QtyPerUnit); err != nil {
				return err
			}
		}
	}
	_, err := tx.Exec(ctx, `SELECT setval(pg_get_serial_sequence('product_recipes', 'id'), COALESCE(MAX(id), 1)) FROM product_recipes`)
	return err
}
