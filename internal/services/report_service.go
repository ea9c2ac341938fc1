package services

import (
	"context"
	"time"

	"golang.org/x/sync/errgroup"

	"fintrack/internal/budget"
	"fintrack/internal/core"
	"fintrack/internal/ledger"
	"fintrack/internal/report"
)

type ReportService struct {
	store ledger.Store
}

func NewReportService(store ledger.Store) *ReportService {
	return &ReportService{store: store}
}

// Summary compares the period ("week", "month" or "year") containing now
// with the one before it.
func (s *ReportService) Summary(ctx context.Context, userID, period string, now time.Time) (report.SpendingSummary, error) {
	cur, prev, err := report.Periods(period, now)
	if err != nil {
		return report.SpendingSummary{}, err
	}

	var (
		current, previous []core.Transaction
		cats              []core.Category
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		current, err = s.window(gctx, userID, cur)
		return err
	})
	g.Go(func() error {
		var err error
		previous, err = s.window(gctx, userID, prev)
		return err
	})
	g.Go(func() error {
		var err error
		cats, err = s.store.ListCategories(gctx, userID, core.KindExpense)
		return core.StoreFailure("list categories", err)
	})
	if err := g.Wait(); err != nil {
		return report.SpendingSummary{}, err
	}
	return report.Summary(current, previous, cats), nil
}

func (s *ReportService) Categories(ctx context.Context, userID string, start, end core.Date) (report.CategoryReport, error) {
	txs, err := s.window(ctx, userID, budget.Window{Start: start, End: end})
	if err != nil {
		return report.CategoryReport{}, err
	}
	cats, err := s.store.ListCategories(ctx, userID, core.KindExpense)
	if err != nil {
		return report.CategoryReport{}, core.StoreFailure("list categories", err)
	}
	return report.Categories(txs, cats), nil
}

func (s *ReportService) Monthly(ctx context.Context, userID string, start, end core.Date) (report.MonthlyReport, error) {
	txs, err := s.window(ctx, userID, budget.Window{Start: start, End: end})
	if err != nil {
		return report.MonthlyReport{}, err
	}
	return report.Monthly(txs), nil
}

// Predict projects next month's spending from the last 90 days.
func (s *ReportService) Predict(ctx context.Context, userID string, now time.Time) (report.Prediction, error) {
	today := core.DateOf(now)
	txs, err := s.window(ctx, userID, budget.Window{Start: today.AddDays(-report.PredictionDays), End: today})
	if err != nil {
		return report.Prediction{}, err
	}
	cats, err := s.store.ListCategories(ctx, userID, core.KindExpense)
	if err != nil {
		return report.Prediction{}, core.StoreFailure("list categories", err)
	}
	return report.Predict(txs, cats, now), nil
}

func (s *ReportService) window(ctx context.Context, userID string, w budget.Window) ([]core.Transaction, error) {
	txs, err := s.store.ListTransactions(ctx, userID, ledger.TransactionFilter{Start: w.Start, End: w.End})
	return txs, core.StoreFailure("list transactions", err)
}
