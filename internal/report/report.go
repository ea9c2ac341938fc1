// Package report builds period summaries, category and monthly reports and a
// naive next-month spending prediction.
package report

import (
	"fmt"
	"math"
	"time"

	"fintrack/internal/aggregate"
	"fintrack/internal/budget"
	"fintrack/internal/core"
)

const (
	TrendUp     = "up"
	TrendDown   = "down"
	TrendStable = "stable"

	// trendBand is the change, in percent, below which spending is stable.
	trendBand = 5
	topN      = 5

	// PredictionDays is the look-back used by Predict.
	PredictionDays       = 90
	predictionMonths     = 3
	predictionConfidence = 0.75
)

// Periods returns the window containing now and the one before it for
// "week" (Monday based), "month" or "year".
func Periods(period string, now time.Time) (current, previous budget.Window, err error) {
	today := core.DateOf(now)
	switch period {
	case "week":
		offset := (int(today.Weekday()) + 6) % 7
		start := today.AddDays(-offset)
		current = budget.Window{Start: start, End: start.AddDays(6)}
		previous = budget.Window{Start: start.AddDays(-7), End: start.AddDays(-1)}
	case "month", "":
		current = budget.CurrentWindow(now)
		prev := current.Start.AddDays(-1)
		previous = budget.Window{Start: prev.FirstOfMonth(), End: prev}
	case "year":
		y := today.Year()
		current = budget.Window{Start: core.NewDate(y, 1, 1), End: core.NewDate(y, 12, 31)}
		previous = budget.Window{Start: core.NewDate(y-1, 1, 1), End: core.NewDate(y-1, 12, 31)}
	default:
		return current, previous, core.Invalid("period", fmt.Sprintf("unknown period %q", period))
	}
	return current, previous, nil
}

type CategoryShare struct {
	aggregate.CategoryTotal
	Percentage float64 `json:"percentage"`
}

type Comparison struct {
	PreviousPeriod   core.Money `json:"previous_period"`
	ChangePercentage float64    `json:"change_percentage"`
	Trend            string     `json:"trend"`
}

type SpendingSummary struct {
	TotalSpent    core.Money      `json:"total_spent"`
	TopCategories []CategoryShare `json:"top_categories"`
	Comparison    Comparison      `json:"comparison"`
}

// Summary compares spending in current against previous and lists the five
// largest categories of current.
func Summary(current, previous []core.Transaction, categories []core.Category) SpendingSummary {
	res := aggregate.ByCategory(current, categories)
	shares := sharesOf(res)
	if len(shares) > topN {
		shares = shares[:topN]
	}

	prev := aggregate.Total(previous)
	cmp := Comparison{PreviousPeriod: prev, Trend: TrendStable}
	if prev.Cents > 0 {
		cmp.ChangePercentage = round2(res.Total.Sub(prev).Percent(prev))
	}
	switch {
	case cmp.ChangePercentage > trendBand:
		cmp.Trend = TrendUp
	case cmp.ChangePercentage < -trendBand:
		cmp.Trend = TrendDown
	}

	return SpendingSummary{TotalSpent: res.Total, TopCategories: shares, Comparison: cmp}
}

type CategoryLine struct {
	CategoryShare
	AveragePerTransaction core.Money `json:"average_per_transaction"`
}

type CategoryReport struct {
	Breakdown  []CategoryLine `json:"breakdown"`
	TotalSpent core.Money     `json:"total_spent"`
}

func Categories(transactions []core.Transaction, categories []core.Category) CategoryReport {
	res := aggregate.ByCategory(transactions, categories)
	rep := CategoryReport{Breakdown: []CategoryLine{}, TotalSpent: res.Total}
	for _, s := range sharesOf(res) {
		rep.Breakdown = append(rep.Breakdown, CategoryLine{
			CategoryShare:         s,
			AveragePerTransaction: s.Amount.Div(s.Count),
		})
	}
	return rep
}

type MonthlyReport struct {
	Months                 []aggregate.MonthTotal `json:"months"`
	TotalSpent             core.Money             `json:"total_spent"`
	AverageMonthlySpending core.Money             `json:"average_monthly_spending"`
}

// Monthly totals spending per calendar month. Months without transactions
// are not listed and do not count towards the average.
func Monthly(transactions []core.Transaction) MonthlyReport {
	months := aggregate.ByMonth(transactions)
	if months == nil {
		months = []aggregate.MonthTotal{}
	}
	total := aggregate.Total(transactions)
	return MonthlyReport{
		Months:                 months,
		TotalSpent:             total,
		AverageMonthlySpending: total.Div(len(months)),
	}
}

type PredictionLine struct {
	CategoryID      string     `json:"category_id"`
	Name            string     `json:"name"`
	PredictedAmount core.Money `json:"predicted_amount"`
}

type Prediction struct {
	Period          string           `json:"period"`
	PredictedAmount core.Money       `json:"predicted_amount"`
	Confidence      float64          `json:"confidence"`
	Breakdown       []PredictionLine `json:"breakdown"`
}

// Predict expects the transactions of the last PredictionDays days and
// projects their monthly average onto the month after now.
func Predict(transactions []core.Transaction, categories []core.Category, now time.Time) Prediction {
	res := aggregate.ByCategory(transactions, categories)
	p := Prediction{
		Period:          core.DateOf(now).FirstOfMonth().AddDate(0, 1, 0).Format("January 2006"),
		PredictedAmount: res.Total.Div(predictionMonths),
		Confidence:      predictionConfidence,
		Breakdown:       []PredictionLine{},
	}
	for _, c := range res.Sorted() {
		p.Breakdown = append(p.Breakdown, PredictionLine{
			CategoryID:      c.CategoryID,
			Name:            c.Name,
			PredictedAmount: c.Amount.Div(predictionMonths),
		})
	}
	return p
}

func sharesOf(res aggregate.Result) []CategoryShare {
	out := []CategoryShare{}
	for _, c := range res.Sorted() {
		out = append(out, CategoryShare{CategoryTotal: c, Percentage: round2(c.Amount.Percent(res.Total))})
	}
	return out
}

func round2(f float64) float64 {
	return math.Round(f*100) / 100
}
