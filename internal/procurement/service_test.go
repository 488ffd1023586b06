package procurement

import (
	"context"
	"log/slog"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"github.com/tokokas/tokokas/internal/accounting/accounts"
	"github.com/tokokas/tokokas/internal/accounting/ledger"
	"github.com/tokokas/tokokas/internal/inventory"
	"github.com/tokokas/tokokas/internal/shared"
)

type memoryProcRepo struct {
	products  map[int64]ProductStock
	accounts  map[int64]accounts.Account
	plans     map[int64]*Plan
	planItems map[int64]*PlanItem
	purchases []Purchase
	items     []PurchaseItem
	movements []inventory.Movement
	entries   []ledger.Entry
	nextID    int64
}

func newMemoryProcRepo() *memoryProcRepo {
	return &memoryProcRepo{
		products:  map[int64]ProductStock{},
		accounts:  map[int64]accounts.Account{},
		plans:     map[int64]*Plan{},
		planItems: map[int64]*PlanItem{},
		nextID:    1,
	}
}

func (m *memoryProcRepo) WithTx(ctx context.Context, fn func(context.Context, TxRepository) error) error {
	products := map[int64]ProductStock{}
	for id, p := range m.products {
		products[id] = p
	}
	accountsCopy := map[int64]accounts.Account{}
	for id, a := range m.accounts {
		accountsCopy[id] = a
	}
	plans := map[int64]*Plan{}
	for id, p := range m.plans {
		cp := *p
		plans[id] = &cp
	}
	planItems := map[int64]*PlanItem{}
	for id, it := range m.planItems {
		cp := *it
		planItems[id] = &cp
	}
	purchases, items, movements, entries := len(m.purchases), len(m.items), len(m.movements), len(m.entries)
	if err := fn(ctx, m); err != nil {
		m.products = products
		m.accounts = accountsCopy
		m.plans = plans
		m.planItems = planItems
		m.purchases = m.purchases[:purchases]
		m.items = m.items[:items]
		m.movements = m.movements[:movements]
		m.entries = m.entries[:entries]
		return err
	}
	return nil
}

func (m *memoryProcRepo) ListReceipts(_ context.Context, _ ReceiptFilter) ([]Purchase, error) {
	return m.purchases, nil
}

func (m *memoryProcRepo) GetReceipt(_ context.Context, id int64) (Purchase, error) {
	for _, p := range m.purchases {
		if p.ID == id {
			return p, nil
		}
	}
	return Purchase{}, shared.ErrNotFound
}

func (m *memoryProcRepo) ListPlans(_ context.Context, _ shared.Page) ([]Plan, error) {
	plans := []Plan{}
	for _, p := range m.plans {
		plans = append(plans, *p)
	}
	return plans, nil
}

func (m *memoryProcRepo) GetPlan(_ context.Context, id int64) (Plan, error) {
	return m.getPlanWithItems(id)
}

func (m *memoryProcRepo) getPlanWithItems(id int64) (Plan, error) {
	p, ok := m.plans[id]
	if !ok {
		return Plan{}, shared.ErrNotFound
	}
	plan := *p
	plan.Items = nil
	for _, item := range m.planItems {
		if item.PlanID == id {
			plan.Items = append(plan.Items, *item)
		}
	}
	return plan, nil
}

func (m *memoryProcRepo) GetProductForUpdate(_ context.Context, id int64) (ProductStock, error) {
	p, ok := m.products[id]
	if !ok {
		return ProductStock{}, shared.ErrNotFound
	}
	return p, nil
}

func (m *memoryProcRepo) UpdateProductStock(_ context.Context, id int64, qty decimal.Decimal) error {
	p := m.products[id]
	p.StockQty = qty
	m.products[id] = p
	return nil
}

func (m *memoryProcRepo) InsertMovement(_ context.Context, mv inventory.Movement) (int64, error) {
	mv.ID = int64(len(m.movements) + 1)
	m.movements = append(m.movements, mv)
	return mv.ID, nil
}

func (m *memoryProcRepo) GetAccountForUpdate(_ context.Context, id int64) (accounts.Account, error) {
	a, ok := m.accounts[id]
	if !ok {
		return accounts.Account{}, shared.ErrNotFound
	}
	return a, nil
}

func (m *memoryProcRepo) UpdateAccountBalance(_ context.Context, id int64, balance decimal.Decimal) error {
	a := m.accounts[id]
	a.CurrentBalance = balance
	m.accounts[id] = a
	return nil
}

func (m *memoryProcRepo) InsertPurchase(_ context.Context, purchase Purchase) (int64, error) {
	purchase.ID = m.nextID
	m.nextID++
	m.purchases = append(m.purchases, purchase)
	return purchase.ID, nil
}

func (m *memoryProcRepo) InsertPurchaseItem(_ context.Context, item PurchaseItem) (int64, error) {
	item.ID = int64(len(m.items) + 1)
	m.items = append(m.items, item)
	return item.ID, nil
}

func (m *memoryProcRepo) GetPlanItemForUpdate(_ context.Context, id int64) (PlanItem, error) {
	item, ok := m.planItems[id]
	if !ok {
		return PlanItem{}, shared.ErrNotFound
	}
	return *item, nil
}

func (m *memoryProcRepo) UpdatePlanItemReceived(_ context.Context, id int64, received decimal.Decimal) error {
	m.planItems[id].ReceivedQty = received
	return nil
}

func (m *memoryProcRepo) GetPlanStatus(_ context.Context, id int64) (string, error) {
	p, ok := m.plans[id]
	if !ok {
		return "", shared.ErrNotFound
	}
	return p.Status, nil
}

func (m *memoryProcRepo) GetPlanForUpdate(_ context.Context, id int64) (Plan, error) {
	return m.getPlanWithItems(id)
}

func (m *memoryProcRepo) UpdatePlanStatus(_ context.Context, id int64, status string) error {
	m.plans[id].Status = status
	return nil
}

func (m *memoryProcRepo) InsertPlan(_ context.Context, plan Plan) (int64, error) {
	plan.ID = m.nextID
	m.nextID++
	m.plans[plan.ID] = &plan
	return plan.ID, nil
}

func (m *memoryProcRepo) InsertPlanItem(_ context.Context, item PlanItem) (int64, error) {
	item.ID = m.nextID
	m.nextID++
	m.planItems[item.ID] = &item
	return item.ID, nil
}

func (m *memoryProcRepo) InsertLedgerEntry(_ context.Context, entry ledger.Entry) (int64, error) {
	entry.ID = int64(len(m.entries) + 1)
	m.entries = append(m.entries, entry)
	return entry.ID, nil
}

func (m *memoryProcRepo) addProduct(id int64, name string, stock int64) {
	m.products[id] = ProductStock{ID: id, Name: name, StockQty: decimal.NewFromInt(stock)}
}

func (m *memoryProcRepo) addPlan(id int64, status string) {
	m.plans[id] = &Plan{ID: id, Status: status}
}

func (m *memoryProcRepo) addPlanItem(id, planID, productID int64, planned, received string) {
	m.planItems[id] = &PlanItem{
		ID:          id,
		PlanID:      planID,
		ProductID:   productID,
		PlannedQty:  dec(planned),
		ReceivedQty: dec(received),
	}
}

func dec(s string) decimal.Decimal {
	d, err := decimal.NewFromString(s)
	if err != nil {
		panic(err)
	}
	return d
}

func newTestService(repo *memoryProcRepo) *Service {
	return NewService(repo, slog.Default())
}

func TestCreatePurchaseIncreasesStockAndDebitsAccount(t *testing.T) {
	repo := newMemoryProcRepo()
	repo.addProduct(1, "Kopi Bubuk", 5)
	repo.accounts[3] = accounts.Account{ID: 3, Name: "BCA", CurrentBalance: dec("100000")}
	service := newTestService(repo)

	purchase, err := service.CreatePurchase(context.Background(), CreatePurchaseRequest{
		SupplierName:    "PT Kopi Nusantara",
		InvoiceNumber:   "INV-001",
		PaymentMethod:   "TRANSFER",
		SourceAccountID: 3,
		Items: []CreatePurchaseItem{
			{ProductID: 1, Qty: dec("10"), UnitCost: dec("5.00"), Discount: dec("2.00")},
		},
	})
	require.NoError(t, err)
	require.Len(t, purchase.Items, 1)
	require.True(t, purchase.Items[0].Subtotal.Equal(dec("48.00")))
	require.True(t, purchase.TotalAmount.Equal(dec("48.00")))
	require.True(t, repo.products[1].StockQty.Equal(dec("15")))
	require.True(t, repo.accounts[3].CurrentBalance.Equal(dec("99952")))

	require.Len(t, repo.movements, 1)
	mv := repo.movements[0]
	require.Equal(t, inventory.MovementIn, mv.Type)
	require.Equal(t, inventory.RefPurchase, mv.RefType)
	require.True(t, mv.StockBefore.Equal(dec("5")))
	require.True(t, mv.StockAfter.Equal(dec("15")))

	require.Len(t, repo.entries, 1)
	require.Equal(t, ledger.EntryOut, repo.entries[0].Type)
	require.Equal(t, ledger.SourcePurchase, repo.entries[0].Source)
}

func TestCreatePurchaseRejectsInsufficientBalance(t *testing.T) {
	repo := newMemoryProcRepo()
	repo.addProduct(1, "Kopi Bubuk", 5)
	repo.accounts[3] = accounts.Account{ID: 3, Name: "BCA", CurrentBalance: dec("10")}
	service := newTestService(repo)

	_, err := service.CreatePurchase(context.Background(), CreatePurchaseRequest{
		PaymentMethod:   "CASH",
		SourceAccountID: 3,
		Items: []CreatePurchaseItem{
			{ProductID: 1, Qty: dec("10"), UnitCost: dec("5.00")},
		},
	})
	require.ErrorIs(t, err, shared.ErrInsufficientFunds)
	require.True(t, repo.products[1].StockQty.Equal(dec("5")))
	require.True(t, repo.accounts[3].CurrentBalance.Equal(dec("10")))
	require.Empty(t, repo.purchases)
	require.Empty(t, repo.movements)
}

func TestCreatePurchaseSkipsLedgerForNonCashMethods(t *testing.T) {
	repo := newMemoryProcRepo()
	repo.addProduct(1, "Kopi Bubuk", 0)
	service := newTestService(repo)

	_, err := service.CreatePurchase(context.Background(), CreatePurchaseRequest{
		PaymentMethod: "CREDIT",
		Items: []CreatePurchaseItem{
			{ProductID: 1, Qty: dec("2"), UnitCost: dec("100")},
		},
	})
	require.NoError(t, err)
	require.Empty(t, repo.entries)
	require.True(t, repo.products[1].StockQty.Equal(dec("2")))
}

func TestCreatePurchaseReportsPlanReceipt(t *testing.T) {
	repo := newMemoryProcRepo()
	repo.addProduct(1, "Kopi Bubuk", 0)
	repo.addPlan(10, StatusOpen)
	repo.addPlanItem(11, 10, 1, "50", "0")
	service := newTestService(repo)

	_, err := service.CreatePurchase(context.Background(), CreatePurchaseRequest{
		PaymentMethod: "CREDIT",
		Items: []CreatePurchaseItem{
			{ProductID: 1, Qty: dec("20"), UnitCost: dec("5"), PlanItemID: 11},
		},
	})
	require.NoError(t, err)
	require.True(t, repo.planItems[11].ReceivedQty.Equal(dec("20")))
	require.Equal(t, StatusPartial, repo.plans[10].Status)
}

func TestCreatePurchaseCompletesPlan(t *testing.T) {
	repo := newMemoryProcRepo()
	repo.addProduct(1, "Kopi Bubuk", 0)
	repo.addPlan(10, StatusPartial)
	repo.addPlanItem(11, 10, 1, "50", "30")
	service := newTestService(repo)

	_, err := service.CreatePurchase(context.Background(), CreatePurchaseRequest{
		PaymentMethod: "CREDIT",
		Items: []CreatePurchaseItem{
			{ProductID: 1, Qty: dec("20"), UnitCost: dec("5"), PlanItemID: 11},
		},
	})
	require.NoError(t, err)
	require.True(t, repo.planItems[11].ReceivedQty.Equal(dec("50")))
	require.Equal(t, StatusCompleted, repo.plans[10].Status)
}

func TestCreatePurchaseRejectsOverReceipt(t *testing.T) {
	repo := newMemoryProcRepo()
	repo.addProduct(1, "Kopi Bubuk", 0)
	repo.addPlan(10, StatusPartial)
	repo.addPlanItem(11, 10, 1, "50", "45")
	service := newTestService(repo)

	_, err := service.CreatePurchase(context.Background(), CreatePurchaseRequest{
		PaymentMethod: "CREDIT",
		Items: []CreatePurchaseItem{
			{ProductID: 1, Qty: dec("10"), UnitCost: dec("5"), PlanItemID: 11},
		},
	})
	require.ErrorIs(t, err, shared.ErrInvalidInput)

	// everything rolled back, including the stock increase
	require.True(t, repo.planItems[11].ReceivedQty.Equal(dec("45")))
	require.Equal(t, StatusPartial, repo.plans[10].Status)
	require.True(t, repo.products[1].StockQty.Equal(dec("0")))
	require.Empty(t, repo.purchases)
}

func TestCreatePurchaseRejectsCancelledPlanReceipt(t *testing.T) {
	repo := newMemoryProcRepo()
	repo.addProduct(1, "Kopi Bubuk", 0)
	repo.addPlan(10, StatusCancelled)
	repo.addPlanItem(11, 10, 1, "50", "0")
	service := newTestService(repo)

	_, err := service.CreatePurchase(context.Background(), CreatePurchaseRequest{
		PaymentMethod: "CREDIT",
		Items: []CreatePurchaseItem{
			{ProductID: 1, Qty: dec("10"), UnitCost: dec("5"), PlanItemID: 11},
		},
	})
	require.ErrorIs(t, err, shared.ErrInvalidInput)

	// the whole purchase rolls back, the plan stays terminal
	require.True(t, repo.planItems[11].ReceivedQty.IsZero())
	require.Equal(t, StatusCancelled, repo.plans[10].Status)
	require.True(t, repo.products[1].StockQty.IsZero())
	require.Empty(t, repo.purchases)
}

func TestCreatePurchaseRequiresAccountForCashMethods(t *testing.T) {
	service := newTestService(newMemoryProcRepo())

	_, err := service.CreatePurchase(context.Background(), CreatePurchaseRequest{
		PaymentMethod: "CASH",
		Items: []CreatePurchaseItem{
			{ProductID: 1, Qty: dec("1"), UnitCost: dec("5")},
		},
	})
	require.ErrorIs(t, err, shared.ErrInvalidInput)
}

func TestCreatePlan(t *testing.T) {
	repo := newMemoryProcRepo()
	repo.addProduct(1, "Kopi Bubuk", 0)
	repo.addProduct(2, "Gula", 0)
	service := newTestService(repo)

	plan, err := service.CreatePlan(context.Background(), CreatePlanRequest{
		SupplierName: "PT Kopi Nusantara",
		Items: []CreatePlanItem{
			{ProductID: 1, PlannedQty: dec("50")},
			{ProductID: 2, PlannedQty: dec("25")},
		},
	})
	require.NoError(t, err)
	require.Equal(t, StatusOpen, plan.Status)
	require.Len(t, plan.Items, 2)
	require.True(t, plan.Items[0].ReceivedQty.IsZero())
}

func TestCreatePlanRejectsUnknownProduct(t *testing.T) {
	service := newTestService(newMemoryProcRepo())

	_, err := service.CreatePlan(context.Background(), CreatePlanRequest{
		Items: []CreatePlanItem{{ProductID: 9, PlannedQty: dec("5")}},
	})
	require.ErrorIs(t, err, shared.ErrNotFound)
}

func TestCancelPlan(t *testing.T) {
	repo := newMemoryProcRepo()
	repo.addPlan(10, StatusOpen)
	service := newTestService(repo)

	plan, err := service.CancelPlan(context.Background(), 10)
	require.NoError(t, err)
	require.Equal(t, StatusCancelled, plan.Status)
}

func TestCancelPlanRejectsCompleted(t *testing.T) {
	repo := newMemoryProcRepo()
	repo.addPlan(10, StatusCompleted)
	service := newTestService(repo)

	_, err := service.CancelPlan(context.Background(), 10)
	require.ErrorIs(t, err, shared.ErrInvalidInput)
	require.Equal(t, StatusCompleted, repo.plans[10].Status)
}
