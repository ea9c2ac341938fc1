package services

import (
	"context"
	"log/slog"

	"fintrack/internal/amqp"
	"fintrack/internal/core"
	"fintrack/internal/ledger"
)

// EventPublisher announces ledger changes. *amqp.Client implements it.
type EventPublisher interface {
	Publish(ctx context.Context, event *amqp.LedgerEvent) error
}

// SheetAppender appends rows to an external spreadsheet.
type SheetAppender interface {
	AppendRows(ctx context.Context, rows [][]string) (int, error)
}

// publish sends event when a publisher is configured. Failures are logged
// and never fail the caller: the ledger already holds the change.
func publish(ctx context.Context, events EventPublisher, event *amqp.LedgerEvent) {
	if events == nil {
		slog.DebugContext(ctx, "AMQP publisher not available, skipping event", "type", event.Type)
		return
	}
	if err := events.Publish(ctx, event); err != nil {
		slog.ErrorContext(ctx, "Failed to publish ledger event",
			"type", event.Type,
			"user_id", event.UserID,
			"goal_id", event.GoalID,
			"error", err)
	}
}

// requireExpenseCategory checks that id names an expense category visible to
// userID. An empty id means uncategorized and always passes.
func requireExpenseCategory(ctx context.Context, store ledger.CategoryStore, userID, id string) error {
	if id == "" {
		return nil
	}
	cats, err := store.ListCategories(ctx, userID, core.KindExpense)
	if err != nil {
		return core.StoreFailure("list categories", err)
	}
	for _, c := range cats {
		if c.ID == id {
			return nil
		}
	}
	return core.Invalid("category_id", "unknown category "+id)
}
