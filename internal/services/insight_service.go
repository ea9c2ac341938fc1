package services

import (
	"context"
	"log/slog"
	"time"

	"golang.org/x/sync/errgroup"

	"fintrack/internal/budget"
	"fintrack/internal/cache"
	"fintrack/internal/core"
	"fintrack/internal/insight"
	"fintrack/internal/ledger"
)

// InsightService generates spending insights for the current month and
// keeps each user's latest snapshot for follow-up questions.
type InsightService struct {
	store     ledger.Store
	currency  core.Currency
	snapshots *cache.LRUCache[insight.Snapshot]
}

func NewInsightService(store ledger.Store, currency core.Currency, snapshots *cache.LRUCache[insight.Snapshot]) *InsightService {
	return &InsightService{store: store, currency: currency, snapshots: snapshots}
}

// Generate reads the month containing now and evaluates the insight rules.
// The three ledger reads run concurrently.
func (s *InsightService) Generate(ctx context.Context, userID string, now time.Time) (insight.Snapshot, error) {
	w := budget.CurrentWindow(now)

	var (
		txs     []core.Transaction
		budgets []core.Budget
		cats    []core.Category
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		txs, err = s.store.ListTransactions(gctx, userID, ledger.TransactionFilter{Start: w.Start, End: w.End})
		return core.StoreFailure("list transactions", err)
	})
	g.Go(func() error {
		var err error
		budgets, err = s.store.ListBudgets(gctx, userID)
		return core.StoreFailure("list budgets", err)
	})
	g.Go(func() error {
		var err error
		cats, err = s.store.ListCategories(gctx, userID, core.KindExpense)
		return core.StoreFailure("list categories", err)
	})
	if err := g.Wait(); err != nil {
		return insight.Snapshot{}, err
	}

	snap := insight.Generate(insight.Input{
		Transactions: txs,
		Budgets:      budgets,
		Categories:   cats,
		Period: insight.Period{
			Start:   w.Start,
			Days:    w.Days(),
			Elapsed: core.DateOf(now).DaysSince(w.Start) + 1,
		},
		Currency: s.currency,
	})
	if s.snapshots != nil {
		s.snapshots.Set(userID, snap)
	}

	slog.InfoContext(ctx, "Insights generated",
		"user_id", userID,
		"transactions", len(txs),
		"tips", len(snap.Tips),
		"warnings", len(snap.Warnings))
	return snap, nil
}

// Ask answers question from the user's last generated snapshot.
func (s *InsightService) Ask(ctx context.Context, userID, question string) string {
	var last *insight.Snapshot
	if s.snapshots != nil {
		if snap, ok := s.snapshots.Get(userID); ok {
			last = &snap
		}
	}
	slog.DebugContext(ctx, "Answering insight question", "user_id", userID, "has_snapshot", last != nil)
	return insight.Ask(question, last)
}
