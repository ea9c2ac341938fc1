package worker

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"fintrack/internal/amqp"
	"fintrack/internal/core"
)

// GoalReconciler recomputes a goal's total from its contribution history.
type GoalReconciler interface {
	Reconcile(ctx context.Context, userID, goalID string) (core.Goal, error)
}

// ReconcileWorker consumes ledger events and repairs goal totals left stale
// by a partially failed contribution.
type ReconcileWorker struct {
	goals GoalReconciler
}

func NewReconcileWorker(goals GoalReconciler) *ReconcileWorker {
	return &ReconcileWorker{goals: goals}
}

// HandleEvent processes a single ledger event. Goal events trigger a
// reconcile; everything else is acknowledged and logged. A goal that no
// longer exists is not retried.
func (w *ReconcileWorker) HandleEvent(ctx context.Context, e *amqp.LedgerEvent) error {
	if !e.IsGoalEvent() {
		slog.DebugContext(ctx, "Ignoring ledger event",
			"type", e.Type,
			"user_id", e.UserID)
		return nil
	}
	if e.GoalID == "" {
		slog.WarnContext(ctx, "Goal event without goal id, dropping",
			"type", e.Type,
			"user_id", e.UserID)
		return nil
	}

	g, err := w.goals.Reconcile(ctx, e.UserID, e.GoalID)
	switch {
	case errors.Is(err, core.ErrNotFound):
		slog.WarnContext(ctx, "Goal gone before reconcile",
			"goal_id", e.GoalID,
			"user_id", e.UserID)
		return nil
	case err != nil:
		return fmt.Errorf("reconcile goal %s: %w", e.GoalID, err)
	}

	slog.InfoContext(ctx, "Goal reconciled",
		"goal_id", g.ID,
		"user_id", g.UserID,
		"current_cents", g.CurrentAmount.Cents,
		"status", g.Status,
		"trigger", e.Type)
	return nil
}
