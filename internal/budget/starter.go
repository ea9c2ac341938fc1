package budget

import (
	"time"

	"github.com/shopspring/decimal"

	"fintrack/internal/core"
)

const (
	TemplateMinimal  = "minimal"
	TemplateStandard = "standard"
	TemplateDetailed = "detailed"
	TemplateCustom   = "custom"

	starterThreshold = 80
)

type share struct {
	category string
	fraction decimal.Decimal
}

func entry(category, fraction string) share {
	return share{category: category, fraction: decimal.RequireFromString(fraction)}
}

var templates = map[string][]share{
	TemplateMinimal: {
		entry("Food & Dining", "0.30"),
		entry("Transportation", "0.15"),
		entry("Bills & Utilities", "0.25"),
	},
	TemplateStandard: {
		entry("Food & Dining", "0.25"),
		entry("Transportation", "0.10"),
		entry("Bills & Utilities", "0.20"),
		entry("Shopping", "0.10"),
		entry("Entertainment", "0.10"),
		entry("Health", "0.05"),
	},
	TemplateDetailed: {
		entry("Food & Dining", "0.20"),
		entry("Transportation", "0.10"),
		entry("Bills & Utilities", "0.15"),
		entry("Shopping", "0.10"),
		entry("Entertainment", "0.08"),
		entry("Health", "0.05"),
		entry("Education", "0.05"),
		entry("Travel", "0.07"),
	},
	TemplateCustom: nil,
}

// Templates lists the accepted template names.
func Templates() []string {
	return []string{TemplateMinimal, TemplateStandard, TemplateDetailed, TemplateCustom}
}

// Plan is the outcome of applying a template. Unmatched holds template
// category names that had no category to attach to.
type Plan struct {
	Budgets   []core.Budget `json:"budgets"`
	Unmatched []string      `json:"unmatched,omitempty"`
}

// NewPlan applies template to monthlyIncome. Each entry becomes a monthly
// budget of round(income * fraction) whole units with an 80% alert threshold
// starting on the first day of now's month. Entries whose category name is
// not among categories are skipped and reported in Unmatched.
func NewPlan(template string, monthlyIncome core.Money, categories []core.Category, now time.Time) (Plan, error) {
	shares, ok := templates[template]
	if !ok {
		return Plan{}, core.Invalid("template", "unknown template "+template)
	}
	if len(shares) == 0 {
		return Plan{Budgets: []core.Budget{}}, nil
	}
	if err := monthlyIncome.Validate(); err != nil {
		return Plan{}, core.Invalid("monthly_income", "must be greater than zero")
	}

	byName := make(map[string]core.Category, len(categories))
	for _, c := range categories {
		if _, dup := byName[c.Name]; !dup {
			byName[c.Name] = c
		}
	}

	start := core.DateOf(now).FirstOfMonth()
	plan := Plan{Budgets: make([]core.Budget, 0, len(shares))}
	for _, sh := range shares {
		cat, ok := byName[sh.category]
		if !ok {
			plan.Unmatched = append(plan.Unmatched, sh.category)
			continue
		}
		units := monthlyIncome.Decimal().Mul(sh.fraction).Round(0)
		plan.Budgets = append(plan.Budgets, core.Budget{
			CategoryID:     cat.ID,
			Amount:         core.FromDecimal(units),
			Period:         core.Monthly,
			AlertThreshold: starterThreshold,
			StartDate:      start,
		})
	}
	return plan, nil
}

// Initialize returns the starter budgets for template, silently dropping
// entries without a matching category.
func Initialize(template string, monthlyIncome core.Money, categories []core.Category, now time.Time) ([]core.Budget, error) {
	plan, err := NewPlan(template, monthlyIncome, categories, now)
	if err != nil {
		return nil, err
	}
	return plan.Budgets, nil
}
