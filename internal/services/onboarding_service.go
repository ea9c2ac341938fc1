package services

import (
	"context"
	"log/slog"
	"time"

	"fintrack/internal/amqp"
	"fintrack/internal/budget"
	"fintrack/internal/core"
	"fintrack/internal/ledger"
)

// OnboardingService runs first-time setup.
type OnboardingService struct {
	store  ledger.Store
	events EventPublisher
}

func NewOnboardingService(store ledger.Store, events EventPublisher) *OnboardingService {
	return &OnboardingService{store: store, events: events}
}

// InitializeBudgets creates starter budgets from a template and the declared
// monthly income. It only adds budgets and refuses to run once the user has
// any.
func (s *OnboardingService) InitializeBudgets(ctx context.Context, userID, template string, income core.Money, now time.Time) (budget.Plan, error) {
	existing, err := s.store.ListBudgets(ctx, userID)
	if err != nil {
		return budget.Plan{}, core.StoreFailure("list budgets", err)
	}
	if len(existing) > 0 {
		return budget.Plan{}, core.Invalid("budgets", "already initialized")
	}

	cats, err := s.store.ListCategories(ctx, userID, core.KindExpense)
	if err != nil {
		return budget.Plan{}, core.StoreFailure("list categories", err)
	}
	plan, err := budget.NewPlan(template, income, cats, now)
	if err != nil {
		return budget.Plan{}, err
	}
	if len(plan.Unmatched) > 0 {
		slog.WarnContext(ctx, "Starter template categories not found, skipping",
			"user_id", userID,
			"template", template,
			"categories", plan.Unmatched)
	}

	created := make([]core.Budget, 0, len(plan.Budgets))
	for _, b := range plan.Budgets {
		b.UserID = userID
		saved, err := s.store.InsertBudget(ctx, b)
		if err != nil {
			return budget.Plan{Budgets: created, Unmatched: plan.Unmatched}, core.StoreFailure("insert budget", err)
		}
		created = append(created, saved)
	}
	plan.Budgets = created

	slog.InfoContext(ctx, "Starter budgets initialized",
		"user_id", userID,
		"template", template,
		"count", len(created))
	if len(created) > 0 {
		publish(ctx, s.events, amqp.NewLedgerEvent(amqp.EventBudgetsInitialized, userID, "", income.Cents))
	}
	return plan, nil
}
