// Package ledger defines the Ledger Accessor: the persistent store of
// transactions, contributions, categories, budgets and goals that the engine
// reads from and writes to.
package ledger

import (
	"context"

	"fintrack/internal/core"
)

type (
	// TransactionFilter narrows ListTransactions. Zero values mean "no bound".
	// Limit <= 0 returns every matching row.
	TransactionFilter struct {
		Start      core.Date
		End        core.Date
		CategoryID string
		Search     string
		Limit      int
		Offset     int
	}

	ContributionFilter struct {
		Start  core.Date
		End    core.Date
		GoalID string
		Search string
	}

	TransactionStore interface {
		ListTransactions(ctx context.Context, userID string, f TransactionFilter) ([]core.Transaction, error)
		InsertTransaction(ctx context.Context, t core.Transaction) (core.Transaction, error)
	}

	ContributionStore interface {
		ListContributions(ctx context.Context, userID string, f ContributionFilter) ([]core.Contribution, error)
		InsertContribution(ctx context.Context, userID, goalID string, amount core.Money, note string) (core.Contribution, error)
	}

	// CategoryStore returns user-owned categories together with shared defaults.
	// An empty kind returns both kinds.
	CategoryStore interface {
		ListCategories(ctx context.Context, userID string, kind core.Kind) ([]core.Category, error)
		InsertCategory(ctx context.Context, c core.Category) (core.Category, error)
	}

	BudgetStore interface {
		ListBudgets(ctx context.Context, userID string) ([]core.Budget, error)
		InsertBudget(ctx context.Context, b core.Budget) (core.Budget, error)
		UpdateBudget(ctx context.Context, b core.Budget) error
		DeleteBudget(ctx context.Context, userID, id string) error
	}

	// GoalStore lists goals by status; an empty status returns all goals.
	GoalStore interface {
		ListGoals(ctx context.Context, userID string, status core.GoalStatus) ([]core.Goal, error)
		GetGoal(ctx context.Context, userID, id string) (core.Goal, error)
		InsertGoal(ctx context.Context, g core.Goal) (core.Goal, error)
		UpdateGoal(ctx context.Context, g core.Goal) error
		DeleteGoal(ctx context.Context, userID, id string) error
	}

	// Store is the full Ledger Accessor.
	Store interface {
		TransactionStore
		ContributionStore
		CategoryStore
		BudgetStore
		GoalStore
		Close() error
	}
)
