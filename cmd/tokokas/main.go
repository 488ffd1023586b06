package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"
	"golang.org/x/sync/errgroup"

	"github.com/tokokas/tokokas/internal/accounting/accounts"
	"github.com/tokokas/tokokas/internal/accounting/expenses"
	"github.com/tokokas/tokokas/internal/accounting/ledger"
	"github.com/tokokas/tokokas/internal/admin"
	"github.com/tokokas/tokokas/internal/app"
	"github.com/tokokas/tokokas/internal/auth"
	"github.com/tokokas/tokokas/internal/inventory"
	"github.com/tokokas/tokokas/internal/masterdata/products"
	"github.com/tokokas/tokokas/internal/masterdata/suppliers"
	"github.com/tokokas/tokokas/internal/observability"
	"github.com/tokokas/tokokas/internal/platform/db"
	"github.com/tokokas/tokokas/internal/procurement"
	"github.com/tokokas/tokokas/internal/recipes"
	"github.com/tokokas/tokokas/internal/reports"
	"github.com/tokokas/tokokas/internal/sales/customers"
	"github.com/tokokas/tokokas/internal/sales/orders"
	"github.com/tokokas/tokokas/internal/shared"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := app.LoadConfig()
	if err != nil {
		slog.Default().Error("load config", slog.Any("error", err))
		os.Exit(1)
	}

	logger := app.NewLogger(cfg)

	pool, err := db.New(ctx, cfg.PGDSN, cfg.PGMaxConns)
	if err != nil {
		logger.Error("connect postgres", slog.Any("error", err))
		os.Exit(1)
	}
	defer pool.Close()

	redisClient := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr})
	if err := redisClient.Ping(ctx).Err(); err != nil {
		logger.Warn("redis ping", slog.Any("error", err))
	}
	defer func() {
		if err := redisClient.Close(); err != nil {
			logger.Warn("redis close", slog.Any("error", err))
		}
	}()

	tokens := shared.NewTokenManager(redisClient, cfg.TokenTTL)
	metrics := observability.NewMetrics()

	authRepo := auth.NewRepository(pool)
	authService := auth.NewService(authRepo)
	authHandler := auth.NewHandler(logger, authService, tokens)

	productsRepo := products.NewRepository(pool)
	productsService := products.NewService(productsRepo)
	productsHandler := products.NewHandler(logger, productsService)

	suppliersRepo := suppliers.NewRepository(pool)
	suppliersService := suppliers.NewService(suppliersRepo)
	suppliersHandler := suppliers.NewHandler(logger, suppliersService)

	customersRepo := customers.NewRepository(pool)
	customersService := customers.NewService(customersRepo)
	customersHandler := customers.NewHandler(logger, customersService)

	salesRepo := orders.NewRepository(pool)
	salesService := orders.NewService(salesRepo, logger)
	salesHandler := orders.NewHandler(logger, salesService)

	procurementRepo := procurement.NewRepository(pool)
	procurementService := procurement.NewService(procurementRepo, logger)
	procurementHandler := procurement.NewHandler(logger, procurementService)

	recipesRepo := recipes.NewRepository(pool)
	recipesService := recipes.NewService(recipesRepo, logger)
	recipesHandler := recipes.NewHandler(logger, recipesService)

	expensesRepo := expenses.NewRepository(pool)
	expensesService := expenses.NewService(expensesRepo, logger)
	expensesHandler := expenses.NewHandler(logger, expensesService)

	accountsRepo := accounts.NewRepository(pool)
	accountsService := accounts.NewService(accountsRepo)
	accountsHandler := accounts.NewHandler(logger, accountsService)

	inventoryRepo := inventory.NewRepository(pool)
	inventoryHandler := inventory.NewHandler(logger, inventoryRepo)

	ledgerRepo := ledger.NewRepository(pool)
	reportsService := reports.NewService(ledgerRepo, pool)
	reportsHandler := reports.NewHandler(logger, reportsService)

	adminService := admin.NewService(pool, logger)
	adminHandler := admin.NewHandler(logger, adminService)

	router := app.NewRouter(app.RouterParams{
		Logger:             logger,
		Config:             cfg,
		Tokens:             tokens,
		Metrics:            metrics,
		AuthHandler:        authHandler,
		ProductsHandler:    productsHandler,
		SuppliersHandler:   suppliersHandler,
		CustomersHandler:   customersHandler,
		SalesHandler:       salesHandler,
		ProcurementHandler: procurementHandler,
		RecipesHandler:     recipesHandler,
		ExpensesHandler:    expensesHandler,
		AccountsHandler:    accountsHandler,
		InventoryHandler:   inventoryHandler,
		ReportsHandler:     reportsHandler,
		AdminHandler:       adminHandler,
	})

	server := &http.Server{
		Addr:         cfg.AppAddr,
		Handler:      router,
		ReadTimeout:  cfg.AppReadTimeout,
		WriteTimeout: cfg.AppWriteTimeout,
	}

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		logger.Info("starting http server", slog.String("addr", cfg.AppAddr))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-ctx.Done()
		logger.Info("shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return server.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil {
		logger.Error("server stopped", slog.Any("error", err))
		os.Exit(1)
	}
}
