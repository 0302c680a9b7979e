package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	"github.com/stellarnova/limitd/internal/config"
	"github.com/stellarnova/limitd/internal/domain"
	"github.com/stellarnova/limitd/internal/engine"
	"github.com/stellarnova/limitd/internal/exchange"
	"github.com/stellarnova/limitd/internal/handler"
	"github.com/stellarnova/limitd/internal/service"
	"github.com/stellarnova/limitd/internal/store"
)

func main() {
	healthcheck := flag.Bool("healthcheck", false, "Run health check against running server")
	flag.Parse()

	// Handle -healthcheck flag: HTTP GET to localhost:PORT/healthz, exit 0/1.
	if *healthcheck {
		port := os.Getenv("PORT")
		if port == "" {
			port = "8080"
		}
		resp, err := http.Get(fmt.Sprintf("http://localhost:%s/healthz", port))
		if err != nil || resp.StatusCode != http.StatusOK {
			os.Exit(1)
		}
		os.Exit(0)
	}

	// Load .env if present; real env vars take precedence.
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", slog.String("error", err.Error()))
		os.Exit(1)
	}

	// Set up slog logger with configured level.
	var logLevel slog.Level
	switch cfg.LogLevel {
	case "debug":
		logLevel = slog.LevelDebug
	case "warn":
		logLevel = slog.LevelWarn
	case "error":
		logLevel = slog.LevelError
	default:
		logLevel = slog.LevelInfo
	}
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: logLevel,
	}))
	slog.SetDefault(logger)

	// Instantiate stores. The context store is the only durable one;
	// everything it guards must survive a restart mid-execution.
	orderStore := store.NewOrderStore()
	balanceStore := store.NewBalanceStore()
	webhookStore := store.NewWebhookStore()

	contextStore, err := store.NewContextStore(cfg.DBPath)
	if err != nil {
		logger.Error("failed to open context store", slog.String("error", err.Error()))
		os.Exit(1)
	}
	defer contextStore.Close()

	// Domain policy.
	assets := domain.NewAssetRegistry()
	params, err := domain.NewExecutionParams(cfg.ExecutorID, cfg.MaxSlippageBP, cfg.ExecutionFeeBPS)
	if err != nil {
		logger.Error("invalid execution parameters", slog.String("error", err.Error()))
		os.Exit(1)
	}

	// Engine.
	ledger := engine.NewLedger(orderStore, balanceStore, contextStore, assets, params)

	// Venue client.
	venue := exchange.NewClient(cfg.VenueURL, cfg.VenueTimeout)

	// Services (webhook first — needed by the sweeper as notifier).
	webhookSvc := service.NewWebhookService(webhookStore, cfg.WebhookTimeout)
	orderSvc := service.NewOrderService(ledger, orderStore, webhookSvc, logger)
	execSvc := service.NewExecutionService(ledger, venue, webhookSvc, logger)
	balanceSvc := service.NewBalanceService(ledger, balanceStore, assets, logger)
	adminSvc := service.NewAdminService(assets, params, logger)

	// Sweeper reclaims stale contexts and expires past-due orders.
	sweeper := engine.NewSweeper(cfg.SweepInterval, cfg.ContextTTL, ledger, webhookSvc, logger)

	// Router.
	router := handler.NewRouter(orderSvc, execSvc, balanceSvc, adminSvc, webhookSvc, logger)

	// Start sweeper goroutine with cancellable context.
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	sweeper.Start(ctx)

	// Configure HTTP server.
	addr := fmt.Sprintf(":%d", cfg.Port)
	srv := &http.Server{
		Addr:         addr,
		Handler:      router,
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
		IdleTimeout:  cfg.IdleTimeout,
	}

	// Start HTTP server in a goroutine.
	go func() {
		logger.Info("server starting", slog.String("addr", addr))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("server error", slog.String("error", err.Error()))
			os.Exit(1)
		}
	}()

	// Wait for SIGINT/SIGTERM.
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	sig := <-sigCh
	logger.Info("shutdown signal received", slog.String("signal", sig.String()))

	// Graceful shutdown: stop HTTP server, cancel context (stops sweeper).
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("server shutdown error", slog.String("error", err.Error()))
	}
	cancel()

	logger.Info("server stopped")
}
