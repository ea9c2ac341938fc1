// Package budget reconciles budgets against spending and builds starter
// budgets from declared income.
package budget

import (
	"time"

	"fintrack/internal/aggregate"
	"fintrack/internal/core"
)

// Window is an inclusive range of calendar days.
type Window struct {
	Start core.Date `json:"start"`
	End   core.Date `json:"end"`
}

// CurrentWindow returns the calendar month containing now.
//
// TODO: honour Budget.Period (weekly, yearly) once period-aware windows are
// agreed; every budget is evaluated over the calendar month today.
func CurrentWindow(now time.Time) Window {
	today := core.DateOf(now)
	return Window{Start: today.FirstOfMonth(), End: today.LastOfMonth()}
}

// Days returns the number of days in the window.
func (w Window) Days() int {
	return w.End.DaysSince(w.Start) + 1
}

type Status struct {
	Budget      core.Budget `json:"budget"`
	Spent       core.Money  `json:"spent"`
	Remaining   core.Money  `json:"remaining"`
	Percentage  float64     `json:"percentage"`
	IsOver      bool        `json:"is_over"`
	IsNearLimit bool        `json:"is_near_limit"`
}

// Spent sums the transactions inside w that fall under b. A budget without a
// category covers every transaction.
func Spent(b core.Budget, transactions []core.Transaction, w Window) core.Money {
	return aggregate.Total(aggregate.Filter(transactions, w.Start, w.End, b.CategoryID))
}

// Reconcile computes utilisation of b. A non-positive amount reports 0%.
// Over and near-limit are mutually exclusive.
func Reconcile(b core.Budget, transactions []core.Transaction, w Window) Status {
	spent := Spent(b, transactions, w)
	pct := spent.Percent(b.Amount)
	return Status{
		Budget:      b,
		Spent:       spent,
		Remaining:   b.Amount.Sub(spent),
		Percentage:  pct,
		IsOver:      pct > 100,
		IsNearLimit: pct >= float64(b.AlertThreshold) && pct <= 100,
	}
}

// ReconcileAll evaluates each budget independently. Budgets sharing a
// category each count the same spending.
func ReconcileAll(budgets []core.Budget, transactions []core.Transaction, w Window) []Status {
	out := make([]Status, 0, len(budgets))
	for _, b := range budgets {
		out = append(out, Reconcile(b, transactions, w))
	}
	return out
}
