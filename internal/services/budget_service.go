package services

import (
	"context"
	"log/slog"
	"time"

	"fintrack/internal/budget"
	"fintrack/internal/core"
	"fintrack/internal/ledger"
)

type BudgetService struct {
	store ledger.Store
}

func NewBudgetService(store ledger.Store) *BudgetService {
	return &BudgetService{store: store}
}

// Status reconciles every budget of userID against the month containing now.
func (s *BudgetService) Status(ctx context.Context, userID string, now time.Time) ([]budget.Status, error) {
	w := budget.CurrentWindow(now)
	budgets, err := s.store.ListBudgets(ctx, userID)
	if err != nil {
		return nil, core.StoreFailure("list budgets", err)
	}
	if len(budgets) == 0 {
		return []budget.Status{}, nil
	}
	txs, err := s.store.ListTransactions(ctx, userID, ledger.TransactionFilter{Start: w.Start, End: w.End})
	if err != nil {
		return nil, core.StoreFailure("list transactions", err)
	}
	return budget.ReconcileAll(budgets, txs, w), nil
}

// Create validates b before touching the ledger. Missing period, threshold
// and start date default to monthly, 80% and the first of now's month.
func (s *BudgetService) Create(ctx context.Context, b core.Budget, now time.Time) (core.Budget, error) {
	if b.Period == "" {
		b.Period = core.Monthly
	}
	if b.AlertThreshold == 0 {
		b.AlertThreshold = 80
	}
	if b.StartDate.IsZero() {
		b.StartDate = core.DateOf(now).FirstOfMonth()
	}
	if err := b.Validate(); err != nil {
		return core.Budget{}, err
	}
	if err := requireExpenseCategory(ctx, s.store, b.UserID, b.CategoryID); err != nil {
		return core.Budget{}, err
	}

	saved, err := s.store.InsertBudget(ctx, b)
	if err != nil {
		return core.Budget{}, core.StoreFailure("insert budget", err)
	}
	slog.InfoContext(ctx, "Budget created",
		"id", saved.ID,
		"user_id", saved.UserID,
		"category_id", saved.CategoryID,
		"amount_cents", saved.Amount.Cents)
	return saved, nil
}

func (s *BudgetService) Update(ctx context.Context, b core.Budget) error {
	if err := b.Validate(); err != nil {
		return err
	}
	if err := requireExpenseCategory(ctx, s.store, b.UserID, b.CategoryID); err != nil {
		return err
	}
	return core.StoreFailure("update budget", s.store.UpdateBudget(ctx, b))
}

func (s *BudgetService) Delete(ctx context.Context, userID, id string) error {
	if err := s.store.DeleteBudget(ctx, userID, id); err != nil {
		return core.StoreFailure("delete budget", err)
	}
	slog.InfoContext(ctx, "Budget deleted", "id", id, "user_id", userID)
	return nil
}
