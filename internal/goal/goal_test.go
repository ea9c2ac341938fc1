package goal

import (
	"errors"
	"testing"
	"time"

	"fintrack/internal/core"
)

func TestTrack(t *testing.T) {
	now := time.Date(2024, 3, 10, 12, 0, 0, 0, time.UTC)
	tests := []struct {
		name        string
		goal        core.Goal
		wantPct     float64
		wantDone    bool
		wantDays    int
		wantOverdue bool
	}{
		{
			name:     "halfway",
			goal:     core.Goal{TargetAmount: core.Cents(1000), CurrentAmount: core.Cents(500), Deadline: core.NewDate(2024, 3, 20), Status: core.GoalActive},
			wantPct:  50,
			wantDays: 10, // 9.5 days rounds up
		},
		{
			name:     "over target clamps to 100",
			goal:     core.Goal{TargetAmount: core.Cents(1000), CurrentAmount: core.Cents(1500), Deadline: core.NewDate(2024, 4, 1), Status: core.GoalActive},
			wantPct:  100,
			wantDone: true,
			wantDays: 22,
		},
		{
			name:     "completed status wins",
			goal:     core.Goal{TargetAmount: core.Cents(1000), CurrentAmount: core.Cents(10), Deadline: core.NewDate(2024, 4, 1), Status: core.GoalCompleted},
			wantPct:  1,
			wantDone: true,
			wantDays: 22,
		},
		{
			name:        "deadline today is overdue with zero days",
			goal:        core.Goal{TargetAmount: core.Cents(1000), Deadline: core.NewDate(2024, 3, 10), Status: core.GoalActive},
			wantDays:    0,
			wantOverdue: true,
		},
		{
			name:        "past deadline clamps",
			goal:        core.Goal{TargetAmount: core.Cents(1000), Deadline: core.NewDate(2024, 1, 1), Status: core.GoalActive},
			wantDays:    0,
			wantOverdue: true,
		},
		{
			name:     "zero target does not divide",
			goal:     core.Goal{TargetAmount: core.Cents(0), CurrentAmount: core.Cents(50), Deadline: core.NewDate(2024, 3, 11), Status: core.GoalActive},
			wantPct:  0,
			wantDays: 1,
		},
		{
			name:     "negative current floors at zero",
			goal:     core.Goal{TargetAmount: core.Cents(100), CurrentAmount: core.Cents(-50), Deadline: core.NewDate(2024, 3, 11), Status: core.GoalActive},
			wantPct:  0,
			wantDays: 1,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Track(tt.goal, now)
			if got.Percentage != tt.wantPct {
				t.Errorf("Percentage = %v, want %v", got.Percentage, tt.wantPct)
			}
			if got.Percentage < 0 || got.Percentage > 100 {
				t.Errorf("Percentage out of bounds: %v", got.Percentage)
			}
			if got.IsCompleted != tt.wantDone {
				t.Errorf("IsCompleted = %v, want %v", got.IsCompleted, tt.wantDone)
			}
			if got.DaysRemaining != tt.wantDays {
				t.Errorf("DaysRemaining = %d, want %d", got.DaysRemaining, tt.wantDays)
			}
			if got.Overdue != tt.wantOverdue {
				t.Errorf("Overdue = %v, want %v", got.Overdue, tt.wantOverdue)
			}
		})
	}
}

func TestContributeCompletesGoal(t *testing.T) {
	now := time.Date(2024, 3, 10, 8, 0, 0, 0, time.UTC)
	g := core.Goal{ID: "g1", UserID: "u1", TargetAmount: core.Cents(100000), CurrentAmount: core.Cents(95000), Deadline: core.NewDate(2024, 12, 31), Status: core.GoalActive}

	updated, c, err := Contribute(g, core.Cents(10000), "bonus", now)
	if err != nil {
		t.Fatalf("Contribute: %v", err)
	}
	if updated.CurrentAmount.Cents != 105000 {
		t.Errorf("CurrentAmount = %d, want 105000", updated.CurrentAmount.Cents)
	}
	if updated.Status != core.GoalCompleted {
		t.Errorf("Status = %s, want completed", updated.Status)
	}
	if p := Track(updated, now); p.Percentage != 100 || !p.IsCompleted {
		t.Errorf("progress = %+v", p)
	}
	if c.GoalID != "g1" || c.UserID != "u1" || c.Amount.Cents != 10000 || c.Note != "bonus" || c.Date.String() != "2024-03-10" {
		t.Errorf("contribution = %+v", c)
	}
	if g.CurrentAmount.Cents != 95000 {
		t.Errorf("input goal must not be mutated")
	}
}

func TestContributeRejects(t *testing.T) {
	g := core.Goal{ID: "g1", TargetAmount: core.Cents(1000), Status: core.GoalActive}
	for _, amount := range []int64{0, -100} {
		if _, _, err := Contribute(g, core.Cents(amount), "", time.Now()); !errors.Is(err, core.ErrValidation) {
			t.Errorf("amount %d: expected validation error, got %v", amount, err)
		}
	}
	g.Status = core.GoalCancelled
	if _, _, err := Contribute(g, core.Cents(100), "", time.Now()); !errors.Is(err, core.ErrValidation) {
		t.Errorf("cancelled goal: expected validation error, got %v", err)
	}
}

func TestRecompute(t *testing.T) {
	g := core.Goal{ID: "g1", TargetAmount: core.Cents(1000), CurrentAmount: core.Cents(999999), Status: core.GoalActive}
	contributions := []core.Contribution{
		{GoalID: "g1", Amount: core.Cents(300)},
		{GoalID: "other", Amount: core.Cents(5000)},
		{GoalID: "g1", Amount: core.Cents(200)},
	}
	got := Recompute(g, contributions)
	if got.CurrentAmount.Cents != 500 || got.Status != core.GoalActive {
		t.Fatalf("Recompute = %+v", got)
	}

	// Recomputing twice applies each contribution once.
	again := Recompute(got, contributions)
	if again.CurrentAmount != got.CurrentAmount {
		t.Fatalf("Recompute is not idempotent: %d vs %d", again.CurrentAmount.Cents, got.CurrentAmount.Cents)
	}

	contributions = append(contributions, core.Contribution{GoalID: "g1", Amount: core.Cents(500)})
	if done := Recompute(g, contributions); done.Status != core.GoalCompleted {
		t.Fatalf("expected completed at target, got %s", done.Status)
	}

	g.Status = core.GoalCancelled
	if c := Recompute(g, contributions); c.Status != core.GoalCancelled {
		t.Fatalf("cancelled goals stay cancelled, got %s", c.Status)
	}
}
