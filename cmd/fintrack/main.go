package main

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"os"
	"time"

	"fintrack/internal/backend"
	"fintrack/internal/cache"
	"fintrack/internal/cli"
	apphttp "fintrack/internal/http"
	"fintrack/internal/insight"
	applog "fintrack/internal/log"
	gsheet "fintrack/internal/sheets/google"
	"fintrack/internal/services"
)

// pinger is implemented by stores that can report reachability.
type pinger interface {
	Ping(ctx context.Context) error
}

func main() {
	cli.LoadEnvFile()
	cfg := cli.LoadAndValidateConfig()
	logger := cli.SetupLogger(cfg.LogLevel, applog.ComponentApp)
	ctx := context.Background()

	backendCfg, err := backend.FromAppConfig(cfg)
	if err != nil {
		logger.ErrorContext(ctx, "Invalid backend configuration", "error", err)
		os.Exit(1)
	}
	be, err := backend.NewFactory(slog.Default()).CreateBackend(ctx, backendCfg)
	if err != nil {
		logger.ErrorContext(ctx, "Failed to initialize backend", "error", err, "backend", cfg.DataBackend)
		os.Exit(1)
	}
	store := be.Store

	var (
		events  services.EventPublisher
		closers []io.Closer
	)
	if client := cli.ConnectEvents(ctx, logger, cfg); client != nil {
		events = client
		closers = append(closers, client)
	}

	var sheet services.SheetAppender
	if cfg.SheetsEnabled() {
		client, err := gsheet.NewFromEnv(ctx)
		if err != nil {
			logger.ErrorContext(ctx, "Failed to initialize Google Sheets client", "error", err)
			os.Exit(1)
		}
		sheet = client
		logger.InfoContext(ctx, "Google Sheets export enabled", "spreadsheet_id", cfg.GoogleSpreadsheetID)
	}

	currency := cfg.DisplayCurrency()
	snapshots := cache.NewLRUCache[insight.Snapshot](cfg.InsightCacheSize, cfg.InsightCacheTTL)

	svc := apphttp.Services{
		Expenses:   services.NewExpenseService(store),
		Budgets:    services.NewBudgetService(store),
		Goals:      services.NewGoalService(store, events),
		Insights:   services.NewInsightService(store, currency, snapshots),
		Onboarding: services.NewOnboardingService(store, events),
		Reports:    services.NewReportService(store),
		Exports:    services.NewExportService(store, sheet),
	}

	opts := []apphttp.Option{apphttp.WithLogger(logger.WithComponent(applog.ComponentHTTP))}
	if p, ok := store.(pinger); ok {
		opts = append(opts, apphttp.WithReadiness(p.Ping))
	}
	srv := apphttp.NewServer(":"+cfg.Port, svc, opts...)
	srv.ReadTimeout = 10 * time.Second
	srv.WriteTimeout = 30 * time.Second
	srv.IdleTimeout = 60 * time.Second
	srv.MaxHeaderBytes = 1 << 16

	caches := cache.NewManager()
	caches.Register("insight_snapshots", snapshots)
	caches.Register("rate_limit", srv.Limiter())
	caches.StartCleanup(5 * time.Minute)

	_, done := cli.GracefulShutdown(logger, 30*time.Second, func(ctx context.Context) {
		if err := srv.Shutdown(ctx); err != nil {
			logger.ErrorContext(ctx, "Server shutdown error", "error", err)
		}
		caches.Stop()
		m := srv.Metrics()
		logger.InfoContext(ctx, "Request totals",
			"total", m.TotalRequests,
			"failed", m.FailedRequests,
			"rate_limited", srv.Limiter().Rejected())
		if err := svc.Expenses.Close(closers...); err != nil {
			logger.ErrorContext(ctx, "Failed to close resources", "error", err)
		}
	})

	logger.InfoContext(ctx, "Starting fintrack server",
		"port", cfg.Port,
		"backend", cfg.DataBackend,
		"currency", currency.Code,
		"events", events != nil)
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logger.ErrorContext(ctx, "Server error", "error", err, "port", cfg.Port)
		os.Exit(1)
	}

	<-done
	logger.InfoContext(ctx, "Server stopped gracefully")
}
