// Package goal tracks savings goal progress. A goal's current amount is the
// sum of its contributions; Recompute derives it from the contribution ledger.
package goal

import (
	"math"
	"time"

	"fintrack/internal/core"
)

type Progress struct {
	Percentage    float64 `json:"percentage"`
	IsCompleted   bool    `json:"is_completed"`
	DaysRemaining int     `json:"days_remaining"`
	// Overdue is set once the deadline has been reached, even when
	// DaysRemaining is already clamped to 0.
	Overdue bool `json:"overdue"`
}

// Track computes progress of g at now. The deadline is midnight UTC of the
// deadline day.
func Track(g core.Goal, now time.Time) Progress {
	pct := math.Max(0, math.Min(g.CurrentAmount.Percent(g.TargetAmount), 100))
	raw := g.Deadline.Sub(now).Hours() / 24
	days := int(math.Ceil(raw))
	if days < 0 {
		days = 0
	}
	return Progress{
		Percentage:    pct,
		IsCompleted:   g.Status == core.GoalCompleted || pct >= 100,
		DaysRemaining: days,
		Overdue:       raw <= 0,
	}
}

// Contribute plans a contribution of amount to g made at now. It returns the
// goal with the contribution applied and the record to append. Cancelled goals
// accept no contributions.
func Contribute(g core.Goal, amount core.Money, note string, now time.Time) (core.Goal, core.Contribution, error) {
	if err := amount.Validate(); err != nil {
		return g, core.Contribution{}, err
	}
	if g.Status == core.GoalCancelled {
		return g, core.Contribution{}, core.Invalid("goal", "cancelled goals accept no contributions")
	}
	c := core.Contribution{
		UserID: g.UserID,
		GoalID: g.ID,
		Amount: amount,
		Date:   core.DateOf(now.UTC()),
		Note:   note,
	}
	g.CurrentAmount = g.CurrentAmount.Add(amount)
	return settle(g), c, nil
}

// Recompute sets g's current amount to the sum of its contributions. Records
// for other goals are ignored.
func Recompute(g core.Goal, contributions []core.Contribution) core.Goal {
	var total core.Money
	for _, c := range contributions {
		if c.GoalID == g.ID {
			total = total.Add(c.Amount)
		}
	}
	g.CurrentAmount = total
	return settle(g)
}

func settle(g core.Goal) core.Goal {
	if g.Status == core.GoalActive && g.CurrentAmount.Cents >= g.TargetAmount.Cents {
		g.Status = core.GoalCompleted
	}
	return g
}
