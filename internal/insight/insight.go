// Package insight turns a period of spending into a rule-based summary, tips
// and warnings, and answers simple questions about the result.
package insight

import (
	"fmt"
	"math"
	"sort"

	"github.com/shopspring/decimal"

	"fintrack/internal/aggregate"
	"fintrack/internal/core"
)

// NoTopCategory is reported when nothing was spent in the period.
const NoTopCategory = "N/A"

const (
	tipTrackDaily      = "Track your daily expenses to identify patterns and areas for improvement."
	tipCategoryBudgets = "Set up category-specific budgets to better manage spending in different areas."
	tipNearLimit       = "You're approaching your budget limit. Try to limit non-essential purchases for the rest of the month."
)

// Period describes the evaluation window. Days is its full length and
// Elapsed the number of days already lived through, today included.
type Period struct {
	Start   core.Date `json:"start"`
	Days    int       `json:"days"`
	Elapsed int       `json:"elapsed"`
}

type Input struct {
	// Transactions must already be limited to the period.
	Transactions []core.Transaction
	Budgets      []core.Budget
	Categories   []core.Category
	Period       Period
	Currency     core.Currency
}

type Slice struct {
	Name       string     `json:"name"`
	Amount     core.Money `json:"amount"`
	Percentage float64    `json:"percentage"`
	Color      string     `json:"color"`
}

type Stats struct {
	TotalSpent       core.Money `json:"total_spent"`
	AvgPerDay        core.Money `json:"avg_per_day"`
	TransactionCount int        `json:"transaction_count"`
	TopCategory      string     `json:"top_category"`
}

type Snapshot struct {
	Summary           string        `json:"summary"`
	Tips              []string      `json:"tips"`
	Warnings          []string      `json:"warnings"`
	CategoryBreakdown []Slice       `json:"category_breakdown"`
	Stats             Stats         `json:"stats"`
	Currency          core.Currency `json:"currency"`
}

// Generate applies every rule in a fixed order. Rules never suppress each
// other, and the tip list always ends with two generic tips.
func Generate(in Input) Snapshot {
	cur := in.Currency
	total := aggregate.Total(in.Transactions)
	breakdown := breakdownByName(in.Transactions, in.Categories, total)

	var totalBudget core.Money
	for _, b := range in.Budgets {
		totalBudget = totalBudget.Add(b.Amount)
	}

	stats := Stats{
		TotalSpent:       total,
		AvgPerDay:        total.Div(in.Period.Elapsed),
		TransactionCount: len(in.Transactions),
		TopCategory:      NoTopCategory,
	}
	if len(breakdown) > 0 {
		stats.TopCategory = breakdown[0].Name
	}

	summary := "This period you spent " + cur.Format(total)
	if totalBudget.Cents > 0 {
		summary += fmt.Sprintf(", which is %.0f%% of your total budget of %s",
			math.Round(total.Percent(totalBudget)), cur.Format(totalBudget))
	}
	if len(breakdown) > 0 {
		summary += fmt.Sprintf(". Your highest spending category is %s at %s", breakdown[0].Name, cur.Format(breakdown[0].Amount))
	}
	summary += "."

	tips := []string{}
	if len(breakdown) > 0 && breakdown[0].Percentage > 40 {
		tips = append(tips, fmt.Sprintf("Consider reviewing your %s expenses - they account for over 40%% of your spending.", breakdown[0].Name))
	}
	if totalBudget.Cents > 0 && total.Cents*10 > totalBudget.Cents*8 {
		tips = append(tips, tipNearLimit)
	}
	if stats.AvgPerDay.Cents > 0 && totalBudget.Cents > 0 {
		if projected := project(total, in.Period); projected.Cents > totalBudget.Cents {
			tips = append(tips, fmt.Sprintf("At your current pace, you'll spend %s by month end. Consider reducing daily spending.", cur.Format(projected)))
		}
	}
	tips = append(tips, tipTrackDaily, tipCategoryBudgets)

	warnings := []string{}
	if totalBudget.Cents > 0 && total.Cents > totalBudget.Cents {
		warnings = append(warnings, fmt.Sprintf("You've exceeded your monthly budget by %s. Review your spending to get back on track.",
			cur.Format(total.Sub(totalBudget))))
	}
	idx := core.IndexCategories(in.Categories)
	for _, b := range in.Budgets {
		if w, ok := budgetWarning(b, in.Transactions, idx, cur); ok {
			warnings = append(warnings, w)
		}
	}

	return Snapshot{
		Summary:           summary,
		Tips:              tips,
		Warnings:          warnings,
		CategoryBreakdown: breakdown,
		Stats:             stats,
		Currency:          cur,
	}
}

// budgetWarning scopes spend like the reconciler: a budget without a
// category covers every transaction.
func budgetWarning(b core.Budget, txs []core.Transaction, idx core.CategoryIndex, cur core.Currency) (string, bool) {
	name := "Overall"
	if b.CategoryID != "" {
		cat, _ := idx.Resolve(b.CategoryID)
		name = cat.Name
	}
	spent := aggregate.Total(aggregate.Filter(txs, core.Date{}, core.Date{}, b.CategoryID))

	switch {
	case spent.Cents > b.Amount.Cents:
		return fmt.Sprintf("%s budget exceeded by %s.", name, cur.Format(spent.Sub(b.Amount))), true
	case b.Amount.Cents > 0 && spent.Cents*100 >= b.Amount.Cents*int64(b.AlertThreshold):
		return fmt.Sprintf("%s spending is at %.0f%% of budget.", name, math.Round(spent.Percent(b.Amount))), true
	}
	return "", false
}

// project extrapolates the daily average over the whole period.
func project(total core.Money, p Period) core.Money {
	if p.Elapsed <= 0 {
		return core.Money{}
	}
	days := decimal.NewFromInt(int64(p.Days)).Div(decimal.NewFromInt(int64(p.Elapsed)))
	return total.Mul(days)
}

// breakdownByName merges categories sharing a display name, as users see them.
func breakdownByName(txs []core.Transaction, cats []core.Category, total core.Money) []Slice {
	res := aggregate.ByCategory(txs, cats)
	pos := map[string]int{}
	out := []Slice{}
	for _, b := range res.ByCategory {
		i, ok := pos[b.Name]
		if !ok {
			i = len(out)
			pos[b.Name] = i
			out = append(out, Slice{Name: b.Name, Color: b.Color})
		}
		out[i].Amount = out[i].Amount.Add(b.Amount)
	}
	for i := range out {
		out[i].Percentage = out[i].Amount.Percent(total)
	}
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Amount.Cents != out[j].Amount.Cents {
			return out[i].Amount.Cents > out[j].Amount.Cents
		}
		return out[i].Name < out[j].Name
	})
	return out
}
