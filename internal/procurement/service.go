package procurement

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"time"

	"github.com/shopspring/decimal"

	"github.com/tokokas/tokokas/internal/accounting/accounts"
	"github.com/tokokas/tokokas/internal/accounting/ledger"
	"github.com/tokokas/tokokas/internal/inventory"
	"github.com/tokokas/tokokas/internal/shared"
)

// Service is the purchase processor and plan manager.
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

// CreatePurchase receipts goods in one transaction: stock goes up with
// an IN movement per item, linked plan items accumulate received
// quantities with their plans' status re-derived, and account-backed
// payments debit the account and append a cash ledger entry. The
// account balance is checked against the total before any mutation.
func (s *Service) CreatePurchase(ctx context.Context, req CreatePurchaseRequest) (Purchase, error) {
	if len(req.Items) == 0 {
		return Purchase{}, fmt.Errorf("%w: purchase items cannot be empty", shared.ErrInvalidInput)
	}
	for _, item := range req.Items {
		if !item.Qty.IsPositive() {
			return Purchase{}, fmt.Errorf("%w: qty must be positive for product %d", shared.ErrInvalidInput, item.ProductID)
		}
		if item.UnitCost.IsNegative() || item.Discount.IsNegative() {
			return Purchase{}, fmt.Errorf("%w: unit_cost and discount must not be negative", shared.ErrInvalidInput)
		}
	}
	if requiresAccount(req.PaymentMethod) && req.SourceAccountID == 0 {
		return Purchase{}, fmt.Errorf("%w: source_account_id is required for %s payments", shared.ErrInvalidInput, req.PaymentMethod)
	}

	// Products are locked in ascending id order, same as the sale path.
	items := make([]CreatePurchaseItem, len(req.Items))
	copy(items, req.Items)
	sort.Slice(items, func(i, j int) bool { return items[i].ProductID < items[j].ProductID })

	purchaseDate := time.Now().UTC()
	if req.PurchaseDate != nil {
		purchaseDate = *req.PurchaseDate
	}

	total := decimal.Zero
	for _, item := range items {
		total = total.Add(item.UnitCost.Mul(item.Qty).Sub(item.Discount))
	}

	var created Purchase
	err := s.repo.WithTx(ctx, func(ctx context.Context, tx TxRepository) error {
		var account accounts.Account
		if requiresAccount(req.PaymentMethod) {
			var err error
			account, err = tx.GetAccountForUpdate(ctx, req.SourceAccountID)
			if err != nil {
				return fmt.Errorf("account %d: %w", req.SourceAccountID, err)
			}
			if account.CurrentBalance.LessThan(total) {
				return fmt.Errorf("%w: insufficient account balance, needed %s, available %s",
					shared.ErrInsufficientFunds, total, account.CurrentBalance)
			}
		}

		purchase := Purchase{
			SupplierID:      req.SupplierID,
			SupplierName:    req.SupplierName,
			InvoiceNumber:   req.InvoiceNumber,
			PurchaseDate:    purchaseDate,
			TotalAmount:     total,
			PaymentMethod:   req.PaymentMethod,
			SourceAccountID: req.SourceAccountID,
			Notes:           req.Notes,
		}
		purchaseID, err := tx.InsertPurchase(ctx, purchase)
		if err != nil {
			return fmt.Errorf("insert purchase: %w", err)
		}
		purchase.ID = purchaseID

		affectedPlans := map[int64]bool{}
		for _, item := range items {
			line, planID, err := s.receiveItem(ctx, tx, purchaseID, req.InvoiceNumber, item)
			if err != nil {
				return err
			}
			if planID != 0 {
				affectedPlans[planID] = true
			}
			purchase.Items = append(purchase.Items, line)
		}

		planIDs := make([]int64, 0, len(affectedPlans))
		for id := range affectedPlans {
			planIDs = append(planIDs, id)
		}
		sort.Slice(planIDs, func(i, j int) bool { return planIDs[i] < planIDs[j] })
		for _, planID := range planIDs {
			if err := s.refreshPlanStatus(ctx, tx, planID); err != nil {
				return err
			}
		}

		if requiresAccount(req.PaymentMethod) {
			if err := tx.UpdateAccountBalance(ctx, account.ID, account.CurrentBalance.Sub(total)); err != nil {
				return fmt.Errorf("debit account %d: %w", account.ID, err)
			}
			if _, err := tx.InsertLedgerEntry(ctx, ledger.Entry{
				Type:   ledger.EntryOut,
				Source: ledger.SourcePurchase,
				RefID:  purchaseID,
				Amount: total,
				Notes:  fmt.Sprintf("Purchase %s %s", req.SupplierName, req.InvoiceNumber),
			}); err != nil {
				return fmt.Errorf("ledger entry: %w", err)
			}
		}

		created = purchase
		return nil
	})
	if err != nil {
		return Purchase{}, err
	}

	s.logger.InfoContext(ctx, "purchase created",
		slog.Int64("purchase_id", created.ID),
		slog.String("supplier", created.SupplierName),
		slog.String("total", created.TotalAmount.String()))
	return created, nil
}

// receiveItem locks the product, adds the received quantity and, for
// plan-linked items, accumulates received_qty with the over-receipt
// guard. Cancelled plans accept no receipts. Returns the affected
// plan id, zero when unlinked.
func (s *Service) receiveItem(ctx context.Context, tx TxRepository, purchaseID int64, invoice string, item CreatePurchaseItem) (PurchaseItem, int64, error) {
	product, err := tx.GetProductForUpdate(ctx, item.ProductID)
	if err != nil {
		return PurchaseItem{}, 0, fmt.Errorf("product %d: %w", item.ProductID, err)
	}

	after := product.StockQty.Add(item.Qty)
	if err := tx.UpdateProductStock(ctx, product.ID, after); err != nil {
		return PurchaseItem{}, 0, fmt.Errorf("add stock for product %d: %w", product.ID, err)
	}
	if _, err := tx.InsertMovement(ctx, inventory.Movement{
		ProductID:   product.ID,
		Type:        inventory.MovementIn,
		RefType:     inventory.RefPurchase,
		RefID:       purchaseID,
		QtyChange:   item.Qty,
		StockBefore: product.StockQty,
		StockAfter:  after,
		Notes:       fmt.Sprintf("Purchase #%d %s", purchaseID, invoice),
	}); err != nil {
		return PurchaseItem{}, 0, fmt.Errorf("movement for product %d: %w", product.ID, err)
	}

	line := PurchaseItem{
		PurchaseOrderID: purchaseID,
		ProductID:       product.ID,
		ProductName:     product.Name,
		Qty:             item.Qty,
		UnitCost:        item.UnitCost,
		Discount:        item.Discount,
		Subtotal:        item.UnitCost.Mul(item.Qty).Sub(item.Discount),
		PlanItemID:      item.PlanItemID,
	}
	id, err := tx.InsertPurchaseItem(ctx, line)
	if err != nil {
		return PurchaseItem{}, 0, fmt.Errorf("insert item for product %d: %w", product.ID, err)
	}
	line.ID = id

	if item.PlanItemID == 0 {
		return line, 0, nil
	}

	planItem, err := tx.GetPlanItemForUpdate(ctx, item.PlanItemID)
	if err != nil {
		return PurchaseItem{}, 0, fmt.Errorf("purchase plan item %d: %w", item.PlanItemID, err)
	}
	planStatus, err := tx.GetPlanStatus(ctx, planItem.PlanID)
	if err != nil {
		return PurchaseItem{}, 0, fmt.Errorf("purchase plan %d: %w", planItem.PlanID, err)
	}
	if planStatus == StatusCancelled {
		return PurchaseItem{}, 0, fmt.Errorf("%w: purchase plan %d is cancelled and cannot receive goods", shared.ErrInvalidInput, planItem.PlanID)
	}
	newReceived := planItem.ReceivedQty.Add(item.Qty)
	if newReceived.GreaterThan(planItem.PlannedQty) {
		return PurchaseItem{}, 0, fmt.Errorf("%w: received qty for product %s would exceed planned qty (%s), current received: %s, new receive: %s",
			shared.ErrInvalidInput, product.Name, planItem.PlannedQty, planItem.ReceivedQty, item.Qty)
	}
	if err := tx.UpdatePlanItemReceived(ctx, planItem.ID, newReceived); err != nil {
		return PurchaseItem{}, 0, fmt.Errorf("update plan item %d: %w", planItem.ID, err)
	}
	return line, planItem.PlanID, nil
}

// refreshPlanStatus re-derives a plan's status from its items.
// Cancelled plans stay cancelled.
func (s *Service) refreshPlanStatus(ctx context.Context, tx TxRepository, planID int64) error {
	plan, err := tx.GetPlanForUpdate(ctx, planID)
	if err != nil {
		return fmt.Errorf("purchase plan %d: %w", planID, err)
	}
	if plan.Status == StatusCancelled {
		return nil
	}
	status := deriveStatus(plan.Items)
	if status == plan.Status {
		return nil
	}
	if err := tx.UpdatePlanStatus(ctx, planID, status); err != nil {
		return fmt.Errorf("update plan %d status: %w", planID, err)
	}
	return nil
}

// ListReceipts returns purchases matching the filter.
func (s *Service) ListReceipts(ctx context.Context, filter ReceiptFilter) ([]Purchase, error) {
	return s.repo.ListReceipts(ctx, filter)
}

// GetReceipt returns one purchase with its items.
func (s *Service) GetReceipt(ctx context.Context, id int64) (Purchase, error) {
	return s.repo.GetReceipt(ctx, id)
}

// CreatePlan records a new purchase plan with its items.
func (s *Service) CreatePlan(ctx context.Context, req CreatePlanRequest) (Plan, error) {
	if len(req.Items) == 0 {
		return Plan{}, fmt.Errorf("%w: plan items cannot be empty", shared.ErrInvalidInput)
	}
	for _, item := range req.Items {
		if !item.PlannedQty.IsPositive() {
			return Plan{}, fmt.Errorf("%w: planned_qty must be positive for product %d", shared.ErrInvalidInput, item.ProductID)
		}
	}

	var created Plan
	err := s.repo.WithTx(ctx, func(ctx context.Context, tx TxRepository) error {
		plan := Plan{
			SupplierID:   req.SupplierID,
			SupplierName: req.SupplierName,
			TargetDate:   req.TargetDate,
			Notes:        req.Notes,
			Status:       StatusOpen,
		}
		planID, err := tx.InsertPlan(ctx, plan)
		if err != nil {
			return fmt.Errorf("insert plan: %w", err)
		}
		plan.ID = planID

		for _, item := range req.Items {
			product, err := tx.GetProductForUpdate(ctx, item.ProductID)
			if err != nil {
				return fmt.Errorf("product %d: %w", item.ProductID, err)
			}
			planItem := PlanItem{
				PlanID:      planID,
				ProductID:   product.ID,
				ProductName: product.Name,
				PlannedQty:  item.PlannedQty,
				ReceivedQty: decimal.Zero,
			}
			id, err := tx.InsertPlanItem(ctx, planItem)
			if err != nil {
				return fmt.Errorf("insert plan item for product %d: %w", product.ID, err)
			}
			planItem.ID = id
			plan.Items = append(plan.Items, planItem)
		}
		created = plan
		return nil
	})
	if err != nil {
		return Plan{}, err
	}

	s.logger.InfoContext(ctx, "purchase plan created", slog.Int64("plan_id", created.ID))
	return created, nil
}

// CancelPlan moves an OPEN or PARTIAL plan to CANCELLED.
func (s *Service) CancelPlan(ctx context.Context, id int64) (Plan, error) {
	var cancelled Plan
	err := s.repo.WithTx(ctx, func(ctx context.Context, tx TxRepository) error {
		plan, err := tx.GetPlanForUpdate(ctx, id)
		if err != nil {
			return fmt.Errorf("purchase plan %d: %w", id, err)
		}
		if plan.Status != StatusOpen && plan.Status != StatusPartial {
			return fmt.Errorf("%w: plan %d is %s and cannot be cancelled", shared.ErrInvalidInput, id, plan.Status)
		}
		if err := tx.UpdatePlanStatus(ctx, id, StatusCancelled); err != nil {
			return fmt.Errorf("update plan %d status: %w", id, err)
		}
		plan.Status = StatusCancelled
		cancelled = plan
		return nil
	})
	if err != nil {
		return Plan{}, err
	}
	return cancelled, nil
}

// ListPlans returns plans newest first.
func (s *Service) ListPlans(ctx context.Context, page shared.Page) ([]Plan, error) {
	return s.repo.ListPlans(ctx, page)
}

// GetPlan returns one plan with its items.
func (s *Service) GetPlan(ctx context.Context, id int64) (Plan, error) {
	return s.repo.GetPlan(ctx, id)
}
