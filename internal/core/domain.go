package core

import (
	"bytes"
	"math"
	"strings"
	"time"
)

const (
	KindExpense Kind = "expense"
	KindIncome  Kind = "income"
)

const (
	Weekly  Period = "weekly"
	Monthly Period = "monthly"
	Yearly  Period = "yearly"
)

const (
	GoalActive    GoalStatus = "active"
	GoalCompleted GoalStatus = "completed"
	GoalCancelled GoalStatus = "cancelled"
)

const dateLayout = "2006-01-02"

type (
	// Kind distinguishes expense and income categories.
	Kind string

	// Period is informational on budgets; reconciliation always uses the calendar month.
	Period string

	GoalStatus string

	// Date is a calendar day at UTC midnight.
	Date struct {
		time.Time
	}

	Money struct {
		Cents int64
	}

	Transaction struct {
		ID            string `json:"id"`
		UserID        string `json:"user_id"`
		Amount        Money  `json:"amount"`
		Date          Date   `json:"date"`
		CategoryID    string `json:"category_id,omitempty"` // empty means uncategorized
		Kind          Kind   `json:"kind"`
		PaymentMethod string `json:"payment_method"`
		Description   string `json:"description"`
	}

	// Contribution is an append-only deposit toward a goal.
	Contribution struct {
		ID     string `json:"id"`
		UserID string `json:"user_id"`
		GoalID string `json:"goal_id"`
		Amount Money  `json:"amount"`
		Date   Date   `json:"date"`
		Note   string `json:"note,omitempty"`
	}

	Category struct {
		ID     string `json:"id"`
		UserID string `json:"user_id,omitempty"` // empty for shared defaults
		Name   string `json:"name"`
		Icon   string `json:"icon"`
		Color  string `json:"color"`
		Kind   Kind   `json:"kind"`
	}

	Budget struct {
		ID             string `json:"id"`
		UserID         string `json:"user_id"`
		CategoryID     string `json:"category_id,omitempty"` // empty means all categories
		Amount         Money  `json:"amount"`
		Period         Period `json:"period"`
		AlertThreshold int    `json:"alert_threshold"`
		StartDate      Date   `json:"start_date"`
	}

	Goal struct {
		ID            string     `json:"id"`
		UserID        string     `json:"user_id"`
		Name          string     `json:"name"`
		TargetAmount  Money      `json:"target_amount"`
		CurrentAmount Money      `json:"current_amount"`
		Deadline      Date       `json:"deadline"`
		Status        GoalStatus `json:"status"`
		Icon          string     `json:"icon,omitempty"`
		Color         string     `json:"color,omitempty"`
	}
)

// NewDate creates a new Date from year, month, day
func NewDate(year, month, day int) Date {
	return Date{Time: time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC)}
}

// DateOf truncates t to its calendar day, keeping t's wall clock date.
func DateOf(t time.Time) Date {
	return NewDate(t.Year(), int(t.Month()), t.Day())
}

// ParseDate parses YYYY-MM-DD.
func ParseDate(s string) (Date, error) {
	t, err := time.Parse(dateLayout, strings.TrimSpace(s))
	if err != nil {
		return Date{}, Invalid("date", "must be YYYY-MM-DD")
	}
	return Date{Time: t}, nil
}

func (d Date) String() string {
	if d.IsZero() {
		return ""
	}
	return d.Format(dateLayout)
}

func (d Date) Validate() error {
	if d.IsZero() {
		return ErrInvalidDate
	}
	return nil
}

// FirstOfMonth returns the first day of d's month.
func (d Date) FirstOfMonth() Date {
	return NewDate(d.Year(), int(d.Month()), 1)
}

// LastOfMonth returns the last day of d's month.
func (d Date) LastOfMonth() Date {
	return NewDate(d.Year(), int(d.Month())+1, 0)
}

// DaysInMonth returns the number of days in d's month.
func (d Date) DaysInMonth() int {
	return d.LastOfMonth().Day()
}

func (d Date) AddDays(n int) Date {
	return Date{Time: d.Time.AddDate(0, 0, n)}
}

// DaysSince returns the whole days between start and d.
func (d Date) DaysSince(start Date) int {
	return int(math.Round(d.Sub(start.Time).Hours() / 24))
}

// Within reports whether d falls in [start, end]. Zero bounds are open.
func (d Date) Within(start, end Date) bool {
	if !start.IsZero() && d.Before(start.Time) {
		return false
	}
	if !end.IsZero() && d.After(end.Time) {
		return false
	}
	return true
}

func (d Date) MarshalJSON() ([]byte, error) {
	if d.IsZero() {
		return []byte("null"), nil
	}
	return []byte(`"` + d.String() + `"`), nil
}

func (d *Date) UnmarshalJSON(b []byte) error {
	b = bytes.Trim(b, `"`)
	if len(b) == 0 || string(b) == "null" {
		*d = Date{}
		return nil
	}
	// Accept full timestamps from clients that send them.
	if len(b) > len(dateLayout) {
		t, err := time.Parse(time.RFC3339, string(b))
		if err != nil {
			return Invalid("date", "must be YYYY-MM-DD")
		}
		*d = DateOf(t.UTC())
		return nil
	}
	parsed, err := ParseDate(string(b))
	if err != nil {
		return err
	}
	*d = parsed
	return nil
}

func (k Kind) Valid() bool {
	return k == KindExpense || k == KindIncome
}

func (p Period) Valid() bool {
	switch p {
	case Weekly, Monthly, Yearly:
		return true
	}
	return false
}

func (s GoalStatus) Valid() bool {
	switch s {
	case GoalActive, GoalCompleted, GoalCancelled:
		return true
	}
	return false
}

func (m Money) Validate() error {
	if m.Cents <= 0 {
		return ErrInvalidAmount
	}
	return nil
}

func (t Transaction) Validate() error {
	if err := t.Amount.Validate(); err != nil {
		return err
	}
	if err := t.Date.Validate(); err != nil {
		return err
	}
	if t.Kind != KindExpense {
		return Invalid("kind", "only expense transactions are supported")
	}
	if len(t.Description) > 200 {
		return Invalid("description", "too long (max 200 characters)")
	}
	if !IsPaymentMethod(t.PaymentMethod) {
		return Invalid("payment_method", "unknown payment method "+t.PaymentMethod)
	}
	return nil
}

func (c Contribution) Validate() error {
	if strings.TrimSpace(c.GoalID) == "" {
		return Invalid("goal_id", "cannot be empty")
	}
	return c.Amount.Validate()
}

func (c Category) Validate() error {
	if strings.TrimSpace(c.Name) == "" {
		return ErrEmptyName
	}
	if !c.Kind.Valid() {
		return Invalid("kind", "must be expense or income")
	}
	return nil
}

func (b Budget) Validate() error {
	if err := b.Amount.Validate(); err != nil {
		return err
	}
	if !b.Period.Valid() {
		return Invalid("period", "must be weekly, monthly or yearly")
	}
	if b.AlertThreshold < 1 || b.AlertThreshold > 100 {
		return ErrInvalidThreshold
	}
	if err := b.StartDate.Validate(); err != nil {
		return Invalid("start_date", "cannot be zero")
	}
	return nil
}

func (g Goal) Validate() error {
	if strings.TrimSpace(g.Name) == "" {
		return ErrEmptyName
	}
	if g.TargetAmount.Cents <= 0 {
		return Invalid("target_amount", "must be greater than zero")
	}
	if g.Deadline.IsZero() {
		return Invalid("deadline", "cannot be zero")
	}
	if !g.Status.Valid() {
		return Invalid("status", "must be active, completed or cancelled")
	}
	return nil
}
