package app

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/tokokas/tokokas/internal/accounting/accounts"
	"github.com/tokokas/tokokas/internal/accounting/expenses"
	"github.com/tokokas/tokokas/internal/admin"
	"github.com/tokokas/tokokas/internal/auth"
	"github.com/tokokas/tokokas/internal/inventory"
	"github.com/tokokas/tokokas/internal/masterdata/products"
	"github.com/tokokas/tokokas/internal/masterdata/suppliers"
	"github.com/tokokas/tokokas/internal/observability"
	"github.com/tokokas/tokokas/internal/procurement"
	"github.com/tokokas/tokokas/internal/recipes"
	"github.com/tokokas/tokokas/internal/reports"
	"github.com/tokokas/tokokas/internal/sales/customers"
	"github.com/tokokas/tokokas/internal/sales/orders"
	"github.com/tokokas/tokokas/internal/shared"
)

// RouterParams groups dependencies for building the HTTP router.
type RouterParams struct {
	Logger             *slog.Logger
	Config             *Config
	Tokens             *shared.TokenManager
	Metrics            *observability.Metrics
	AuthHandler        *auth.Handler
	ProductsHandler    *products.Handler
	SuppliersHandler   *suppliers.Handler
	CustomersHandler   *customers.Handler
	SalesHandler       *orders.Handler
	ProcurementHandler *procurement.Handler
	RecipesHandler     *recipes.Handler
	ExpensesHandler    *expenses.Handler
	AccountsHandler    *accounts.Handler
	InventoryHandler   *inventory.Handler
	ReportsHandler     *reports.Handler
	AdminHandler       *admin.Handler
}

// NewRouter constructs the chi.Router. Register and login are public;
// everything else requires a bearer token.
func NewRouter(params RouterParams) http.Handler {
	r := chi.NewRouter()

	for _, mw := range MiddlewareStack(MiddlewareConfig{
		Logger: params.Logger,
		Config: params.Config,
	}) {
		r.Use(mw)
	}
	r.Use(params.Metrics.Middleware)

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
	r.Method(http.MethodGet, "/metrics", params.Metrics.Handler())

	r.Route("/auth", params.AuthHandler.MountRoutes)

	r.Group(func(r chi.Router) {
		r.Use(RequireAuth(params.Tokens, params.Logger))

		r.Route("/products", params.ProductsHandler.MountRoutes)
		r.Route("/suppliers", params.SuppliersHandler.MountRoutes)
		r.Route("/customers", params.CustomersHandler.MountRoutes)
		r.Route("/sales", params.SalesHandler.MountRoutes)
		r.Route("/purchases", params.ProcurementHandler.MountPurchaseRoutes)
		r.Route("/purchase-plans", params.ProcurementHandler.MountPlanRoutes)
		r.Route("/recipes", params.RecipesHandler.MountRoutes)
		r.Route("/expenses", params.ExpensesHandler.MountRoutes)
		r.Route("/accounts", params.AccountsHandler.MountRoutes)
		r.Route("/stock-movements", params.InventoryHandler.MountRoutes)
		r.Route("/reports", params.ReportsHandler.MountRoutes)
		r.Route("/admin", params.AdminHandler.MountRoutes)
	})

	return r
}
