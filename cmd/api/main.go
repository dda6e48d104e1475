package main

import (
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"

	"github.com/excelkipini/zolltaxforex-sub003/internal/adapter/handler"
	"github.com/excelkipini/zolltaxforex-sub003/internal/adapter/middleware"
	"github.com/excelkipini/zolltaxforex-sub003/internal/adapter/storage"
	"github.com/excelkipini/zolltaxforex-sub003/internal/core/config"
	"github.com/excelkipini/zolltaxforex-sub003/internal/core/worker"
)

func main() {
	cfg := config.LoadConfig()

	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	slog.SetDefault(logger)

	dbPool, err := storage.ConnectDB(cfg.DatabaseURL)
	if err != nil {
		slog.Error("database connection failed", "error", err)
		os.Exit(1)
	}

	cashRepo := storage.NewCashRepository(dbPool)
	exchangeRepo := storage.NewExchangeRepository(dbPool)
	opsRepo := storage.NewOperationsRepository(dbPool)
	transferRepo := storage.NewTransferRepository(dbPool, cfg.CommissionThreshold)
	userRepo := storage.NewUserRepository(dbPool)
	notifyQueue := storage.NewNotificationQueue(dbPool, cfg.NotifyURL)

	ledgerHandler := &handler.LedgerHandler{Cash: cashRepo, Notify: notifyQueue}
	exchangeHandler := &handler.ExchangeHandler{Repo: exchangeRepo, Ops: opsRepo}
	transferHandler := &handler.TransferHandler{Repo: transferRepo, Notify: notifyQueue}
	userHandler := &handler.UserHandler{Repo: userRepo}

	app := fiber.New(fiber.Config{
		DisableStartupMessage: true,
	})
	app.Use(cors.New())

	app.Get("/healthz", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok"})
	})

	api := app.Group("/v1")

	// Public: first-boot provisioning (locks itself down once users exist).
	api.Post("/users", userHandler.Create)

	private := api.Use(middleware.Protected(userRepo))

	private.Get("/balances/:owner", ledgerHandler.GetBalances)
	private.Post("/ledger/set-balance", ledgerHandler.SetBalance)

	private.Post("/exchange/purchase", exchangeHandler.Purchase)
	private.Post("/exchange/sale", exchangeHandler.Sale)
	private.Post("/exchange/cession", exchangeHandler.Cession)
	private.Post("/exchange/replenish", exchangeHandler.Replenish)
	private.Get("/operations", exchangeHandler.ListOperations)
	private.Get("/operations/commissions", exchangeHandler.CommissionTotal)

	private.Post("/transfers", transferHandler.Create)
	private.Get("/transfers", transferHandler.List)
	private.Get("/transfers/:id", transferHandler.Get)
	private.Post("/transfers/:id/audit", transferHandler.Audit)
	private.Post("/transfers/:id/reject", transferHandler.Reject)
	private.Post("/transfers/:id/execute", transferHandler.Execute)
	private.Post("/transfers/:id/complete", transferHandler.Complete)
	private.Delete("/transfers", transferHandler.Purge)

	worker.StartNotificationWorker(dbPool, time.Duration(cfg.WorkerInterval)*time.Second)

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)

	go func() {
		slog.Info("server starting", "env", cfg.Env, "port", cfg.Port)
		if err := app.Listen(":" + cfg.Port); err != nil {
			slog.Error("server stopped", "error", err)
		}
	}()

	<-stop
	slog.Info("shutting down server")

	if err := app.Shutdown(); err != nil {
		slog.Error("server shutdown failed", "error", err)
	}
	dbPool.Close()
	slog.Info("server exited")
}
