package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"time"

	"fintrack/internal/backend"
	"fintrack/internal/cli"
	"fintrack/internal/config"
	"fintrack/internal/core"
	applog "fintrack/internal/log"
	gsheet "fintrack/internal/sheets/google"
	"fintrack/internal/services"
)

func main() {
	var (
		user    = flag.String("user", "", "user ID whose ledger is exported (required)")
		start   = flag.String("start", "", "first day to include, YYYY-MM-DD (default: open)")
		end     = flag.String("end", "", "last day to include, YYYY-MM-DD (default: open)")
		out     = flag.String("out", "", "CSV output file (default: stdout)")
		toSheet = flag.Bool("sheet", false, "append to the configured Google Sheet instead of writing CSV")
		timeout = flag.Duration("timeout", 2*time.Minute, "overall timeout")
	)
	flag.Parse()

	cli.LoadEnvFile()
	cfg := cli.LoadAndValidateConfig()
	// Stdout may carry the CSV, so logs go to stderr.
	logger := cli.SetupLoggerTo(os.Stderr, cfg.LogLevel, applog.ComponentExport)

	if *user == "" {
		fmt.Fprintln(os.Stderr, "fintrack-export: -user is required")
		flag.Usage()
		os.Exit(2)
	}
	from, err := parseBound(*start)
	if err != nil {
		logger.Error("Invalid -start", "error", err)
		os.Exit(2)
	}
	to, err := parseBound(*end)
	if err != nil {
		logger.Error("Invalid -end", "error", err)
		os.Exit(2)
	}

	ctx, cancel := context.WithTimeout(context.Background(), *timeout)
	err = run(ctx, cfg, *user, from, to, *out, *toSheet)
	cancel()
	if err != nil {
		logger.Error("Export failed", "error", err, "user_id", *user)
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg *config.Config, user string, from, to core.Date, out string, toSheet bool) error {
	backendCfg, err := backend.FromAppConfig(cfg)
	if err != nil {
		return err
	}
	be, err := backend.NewFactory(slog.Default()).CreateBackend(ctx, backendCfg)
	if err != nil {
		return fmt.Errorf("open %s backend: %w", cfg.DataBackend, err)
	}
	defer be.Cleanup()

	var sheet services.SheetAppender
	if toSheet {
		client, err := gsheet.NewFromEnv(ctx)
		if err != nil {
			return fmt.Errorf("init sheets client: %w", err)
		}
		sheet = client
	}
	exports := services.NewExportService(be.Store, sheet)

	if toSheet {
		n, err := exports.ToSheet(ctx, user, from, to)
		if err != nil {
			return fmt.Errorf("export to sheet: %w", err)
		}
		slog.InfoContext(ctx, "Rows appended", "rows", n)
		return nil
	}

	body, err := exports.CSV(ctx, user, from, to)
	if err != nil {
		return fmt.Errorf("export csv: %w", err)
	}
	if out == "" {
		_, err = os.Stdout.WriteString(body)
		return err
	}
	if err := os.WriteFile(out, []byte(body), 0o644); err != nil {
		return fmt.Errorf("write %s: %w", out, err)
	}
	slog.InfoContext(ctx, "CSV written", "path", out)
	return nil
}

func parseBound(s string) (core.Date, error) {
	if s == "" {
		return core.Date{}, nil
	}
	return core.ParseDate(s)
}
