package services

import (
	"context"
	"errors"
	"log/slog"

	"fintrack/internal/core"
	"fintrack/internal/export"
	"fintrack/internal/ledger"
)

var ErrNoSheet = errors.New("spreadsheet export is not configured")

type ExportService struct {
	store ledger.Store
	sheet SheetAppender
}

// NewExportService builds an exporter. sheet may be nil when no spreadsheet
// is configured.
func NewExportService(store ledger.Store, sheet SheetAppender) *ExportService {
	return &ExportService{store: store, sheet: sheet}
}

func (s *ExportService) load(ctx context.Context, userID string, start, end core.Date) ([]core.Transaction, []core.Category, error) {
	txs, err := s.store.ListTransactions(ctx, userID, ledger.TransactionFilter{Start: start, End: end})
	if err != nil {
		return nil, nil, core.StoreFailure("list transactions", err)
	}
	cats, err := s.store.ListCategories(ctx, userID, "")
	if err != nil {
		return nil, nil, core.StoreFailure("list categories", err)
	}
	return txs, cats, nil
}

// CSV exports the user's transactions dated within [start, end]; zero bounds
// are open.
func (s *ExportService) CSV(ctx context.Context, userID string, start, end core.Date) (string, error) {
	txs, cats, err := s.load(ctx, userID, start, end)
	if err != nil {
		return "", err
	}
	out, err := export.ToCSV(txs, cats)
	if err != nil {
		return "", err
	}
	slog.InfoContext(ctx, "Ledger exported", "user_id", userID, "format", "csv", "rows", len(txs))
	return out, nil
}

// ToSheet appends the same rows as CSV, without the header, to the
// configured spreadsheet and returns the number of rows written.
func (s *ExportService) ToSheet(ctx context.Context, userID string, start, end core.Date) (int, error) {
	if s.sheet == nil {
		return 0, ErrNoSheet
	}
	txs, cats, err := s.load(ctx, userID, start, end)
	if err != nil {
		return 0, err
	}
	if len(txs) == 0 {
		return 0, nil
	}
	n, err := s.sheet.AppendRows(ctx, export.Rows(txs, cats))
	if err != nil {
		return 0, err
	}
	slog.InfoContext(ctx, "Ledger exported", "user_id", userID, "format", "sheet", "rows", n)
	return n, nil
}
