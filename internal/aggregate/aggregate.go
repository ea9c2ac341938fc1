// Package aggregate sums ledger transactions by category, day and month.
// Every function is pure; sums are in integer cents so results do not depend
// on input order.
package aggregate

import (
	"sort"

	"fintrack/internal/core"
)

// CategoryTotal is one bucket of a breakdown. Transactions whose category is
// absent or unknown land in the Other bucket (core.OtherCategoryID), shared
// with transactions filed under the seeded Other category.
type CategoryTotal struct {
	CategoryID string     `json:"category_id"`
	Name       string     `json:"name"`
	Icon       string     `json:"icon"`
	Color      string     `json:"color"`
	Amount     core.Money `json:"amount"`
	Count      int        `json:"count"`
}

type Result struct {
	Total      core.Money      `json:"total"`
	ByCategory []CategoryTotal `json:"by_category"`
}

// ByCategory groups transactions by resolved category. Buckets appear in
// first-seen order; use Sorted for a ranking.
func ByCategory(transactions []core.Transaction, categories []core.Category) Result {
	idx := core.IndexCategories(categories)
	res := Result{ByCategory: []CategoryTotal{}}
	pos := map[string]int{}

	for _, t := range transactions {
		cat, _ := idx.Resolve(t.CategoryID)
		key := cat.ID
		i, seen := pos[key]
		if !seen {
			i = len(res.ByCategory)
			pos[key] = i
			res.ByCategory = append(res.ByCategory, CategoryTotal{
				CategoryID: key,
				Name:       cat.Name,
				Icon:       cat.Icon,
				Color:      cat.Color,
			})
		}
		res.ByCategory[i].Amount = res.ByCategory[i].Amount.Add(t.Amount)
		res.ByCategory[i].Count++
		res.Total = res.Total.Add(t.Amount)
	}
	return res
}

// Sorted returns a copy of the buckets ordered by amount descending, then name.
func (r Result) Sorted() []CategoryTotal {
	out := append([]CategoryTotal(nil), r.ByCategory...)
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Amount.Cents != out[j].Amount.Cents {
			return out[i].Amount.Cents > out[j].Amount.Cents
		}
		return out[i].Name < out[j].Name
	})
	return out
}

// Top returns the largest bucket, if any.
func (r Result) Top() (CategoryTotal, bool) {
	sorted := r.Sorted()
	if len(sorted) == 0 {
		return CategoryTotal{}, false
	}
	return sorted[0], true
}

// ByDay returns a dense series of daysInPeriod daily totals starting at start.
// Transactions outside the period are ignored.
func ByDay(transactions []core.Transaction, start core.Date, daysInPeriod int) []core.Money {
	if daysInPeriod < 0 {
		daysInPeriod = 0
	}
	out := make([]core.Money, daysInPeriod)
	for _, t := range transactions {
		i := t.Date.DaysSince(start)
		if i < 0 || i >= daysInPeriod {
			continue
		}
		out[i] = out[i].Add(t.Amount)
	}
	return out
}

// Total sums every transaction amount.
func Total(transactions []core.Transaction) core.Money {
	var m core.Money
	for _, t := range transactions {
		m = m.Add(t.Amount)
	}
	return m
}

// Filter returns the transactions dated within [start, end] that belong to
// categoryID. An empty categoryID matches every transaction.
func Filter(transactions []core.Transaction, start, end core.Date, categoryID string) []core.Transaction {
	var out []core.Transaction
	for _, t := range transactions {
		if !t.Date.Within(start, end) {
			continue
		}
		if categoryID != "" && t.CategoryID != categoryID {
			continue
		}
		out = append(out, t)
	}
	return out
}

type MonthTotal struct {
	Month  string     `json:"month"` // YYYY-MM
	Amount core.Money `json:"amount"`
	Count  int        `json:"count"`
}

// ByMonth groups transactions by calendar month, ascending.
func ByMonth(transactions []core.Transaction) []MonthTotal {
	pos := map[string]int{}
	var out []MonthTotal
	for _, t := range transactions {
		key := t.Date.Format("2006-01")
		i, ok := pos[key]
		if !ok {
			i = len(out)
			pos[key] = i
			out = append(out, MonthTotal{Month: key})
		}
		out[i].Amount = out[i].Amount.Add(t.Amount)
		out[i].Count++
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Month < out[j].Month })
	return out
}
