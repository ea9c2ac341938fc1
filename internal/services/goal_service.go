package services

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"fintrack/internal/amqp"
	"fintrack/internal/core"
	"fintrack/internal/goal"
	"fintrack/internal/ledger"
)

// GoalProgress pairs a goal with its computed progress.
type GoalProgress struct {
	Goal     core.Goal     `json:"goal"`
	Progress goal.Progress `json:"progress"`
}

// GoalService manages savings goals. A goal's current amount is always
// recomputed from its contribution history, never incremented in place.
type GoalService struct {
	store  ledger.Store
	events EventPublisher
	now    func() time.Time
}

func NewGoalService(store ledger.Store, events EventPublisher) *GoalService {
	return &GoalService{store: store, events: events, now: time.Now}
}

// Create stores a new active goal with nothing saved yet.
func (s *GoalService) Create(ctx context.Context, g core.Goal) (core.Goal, error) {
	g.Name = strings.TrimSpace(g.Name)
	g.CurrentAmount = core.Money{}
	if g.Status == "" {
		g.Status = core.GoalActive
	}
	if err := g.Validate(); err != nil {
		return core.Goal{}, err
	}
	saved, err := s.store.InsertGoal(ctx, g)
	if err != nil {
		return core.Goal{}, core.StoreFailure("insert goal", err)
	}
	slog.InfoContext(ctx, "Goal created",
		"id", saved.ID,
		"user_id", saved.UserID,
		"target_cents", saved.TargetAmount.Cents)
	return saved, nil
}

// Progress lists the user's goals filtered by status (empty for all) with
// their progress at now.
func (s *GoalService) Progress(ctx context.Context, userID string, status core.GoalStatus, now time.Time) ([]GoalProgress, error) {
	if status != "" && !status.Valid() {
		return nil, core.Invalid("status", "must be active, completed or cancelled")
	}
	goals, err := s.store.ListGoals(ctx, userID, status)
	if err != nil {
		return nil, core.StoreFailure("list goals", err)
	}
	out := make([]GoalProgress, 0, len(goals))
	for _, g := range goals {
		out = append(out, GoalProgress{Goal: g, Progress: goal.Track(g, now)})
	}
	return out, nil
}

// Contribute appends a contribution and then recomputes the goal total. When
// the second step fails the contribution stays recorded, a reconcile event is
// published and a *core.StaleGoalError is returned.
func (s *GoalService) Contribute(ctx context.Context, userID, goalID string, amount core.Money, note string) (core.Goal, core.Contribution, error) {
	if err := amount.Validate(); err != nil {
		return core.Goal{}, core.Contribution{}, err
	}
	g, err := s.store.GetGoal(ctx, userID, goalID)
	if err != nil {
		return core.Goal{}, core.Contribution{}, core.StoreFailure("get goal", err)
	}
	if _, _, err := goal.Contribute(g, amount, note, s.now()); err != nil {
		return core.Goal{}, core.Contribution{}, err
	}

	c, err := s.store.InsertContribution(ctx, userID, goalID, amount, strings.TrimSpace(note))
	if err != nil {
		return core.Goal{}, core.Contribution{}, core.StoreFailure("insert contribution", err)
	}

	updated, err := s.recompute(ctx, g)
	if err != nil {
		slog.ErrorContext(ctx, "Goal total is stale after contribution",
			"goal_id", goalID,
			"contribution_id", c.ID,
			"error", err)
		publish(ctx, s.events, amqp.NewLedgerEvent(amqp.EventGoalReconcile, userID, goalID, amount.Cents))
		return g, c, &core.StaleGoalError{GoalID: goalID, Contribution: c, Err: err}
	}

	slog.InfoContext(ctx, "Contribution recorded",
		"goal_id", goalID,
		"contribution_id", c.ID,
		"amount_cents", amount.Cents,
		"current_cents", updated.CurrentAmount.Cents,
		"status", updated.Status)
	publish(ctx, s.events, amqp.NewLedgerEvent(amqp.EventContributionRecorded, userID, goalID, amount.Cents))
	return updated, c, nil
}

// Update edits a goal's name, target, deadline, status, icon and color. The
// current amount is rederived from the contribution history, and completion
// follows from it: asking for "completed" reopens the goal as active unless
// its contributions already reach the target. Cancelled goals stay cancelled
// until set back to active.
func (s *GoalService) Update(ctx context.Context, g core.Goal) (core.Goal, error) {
	existing, err := s.store.GetGoal(ctx, g.UserID, g.ID)
	if err != nil {
		return core.Goal{}, core.StoreFailure("get goal", err)
	}

	patched := existing
	patched.Name = strings.TrimSpace(g.Name)
	patched.TargetAmount = g.TargetAmount
	patched.Deadline = g.Deadline
	patched.Icon = g.Icon
	patched.Color = g.Color
	if g.Status != "" {
		patched.Status = g.Status
	}
	if patched.Status == core.GoalCompleted {
		patched.Status = core.GoalActive
	}
	if err := patched.Validate(); err != nil {
		return core.Goal{}, err
	}

	contributions, err := s.store.ListContributions(ctx, g.UserID, ledger.ContributionFilter{GoalID: g.ID})
	if err != nil {
		return core.Goal{}, core.StoreFailure("list contributions", err)
	}
	updated := goal.Recompute(patched, contributions)
	if err := s.store.UpdateGoal(ctx, updated); err != nil {
		return core.Goal{}, core.StoreFailure("update goal", err)
	}
	slog.InfoContext(ctx, "Goal updated",
		"id", updated.ID,
		"user_id", updated.UserID,
		"status", updated.Status,
		"current_cents", updated.CurrentAmount.Cents)
	return updated, nil
}

// Delete removes a goal together with its contributions.
func (s *GoalService) Delete(ctx context.Context, userID, goalID string) error {
	if err := s.store.DeleteGoal(ctx, userID, goalID); err != nil {
		return core.StoreFailure("delete goal", err)
	}
	slog.InfoContext(ctx, "Goal deleted", "id", goalID, "user_id", userID)
	return nil
}

// Reconcile recomputes a goal's total from its contributions. Running it
// repeatedly yields the same result.
func (s *GoalService) Reconcile(ctx context.Context, userID, goalID string) (core.Goal, error) {
	g, err := s.store.GetGoal(ctx, userID, goalID)
	if err != nil {
		return core.Goal{}, core.StoreFailure("get goal", err)
	}
	return s.recompute(ctx, g)
}

func (s *GoalService) recompute(ctx context.Context, g core.Goal) (core.Goal, error) {
	contributions, err := s.store.ListContributions(ctx, g.UserID, ledger.ContributionFilter{GoalID: g.ID})
	if err != nil {
		return g, core.StoreFailure("list contributions", err)
	}
	updated := goal.Recompute(g, contributions)
	if updated == g {
		return updated, nil
	}
	if err := s.store.UpdateGoal(ctx, updated); err != nil {
		return g, core.StoreFailure("update goal", err)
	}
	return updated, nil
}
