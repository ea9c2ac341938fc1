package http

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"fintrack/internal/cache"
	"fintrack/internal/core"
	"fintrack/internal/insight"
	"fintrack/internal/ledger"
	"fintrack/internal/ledger/memory"
	applog "fintrack/internal/log"
	"fintrack/internal/middleware/trace"
	"fintrack/internal/services"
)

var march10 = time.Date(2024, 3, 10, 12, 0, 0, 0, time.UTC)

// staleStore fails goal updates so contributions leave the goal stale.
type staleStore struct {
	*memory.Store
}

func (staleStore) UpdateGoal(context.Context, core.Goal) error {
	return errors.New("disk full")
}

func newMemoryStore() *memory.Store {
	store := memory.New(core.DefaultCategories)
	store.Now = func() time.Time { return march10 }
	return store
}

func newServerFor(store ledger.Store, opts ...Option) *Server {
	svc := Services{
		Expenses:   services.NewExpenseService(store),
		Budgets:    services.NewBudgetService(store),
		Goals:      services.NewGoalService(store, nil),
		Insights:   services.NewInsightService(store, core.USD, cache.NewLRUCache[insight.Snapshot](10, time.Minute)),
		Onboarding: services.NewOnboardingService(store, nil),
		Reports:    services.NewReportService(store),
		Exports:    services.NewExportService(store, nil),
	}
	opts = append([]Option{WithClock(func() time.Time { return march10 })}, opts...)
	return NewServer(":0", svc, opts...)
}

func do(t *testing.T, s *Server, method, path, user, body string) *httptest.ResponseRecorder {
	t.Helper()
	var rd io.Reader
	if body != "" {
		rd = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, rd)
	if user != "" {
		req.Header.Set(UserHeader, user)
	}
	rec := httptest.NewRecorder()
	s.Handler.ServeHTTP(rec, req)
	return rec
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &v), rec.Body.String())
	return v
}

func TestHealthAndReadiness(t *testing.T) {
	s := newServerFor(newMemoryStore())

	rec := do(t, s, http.MethodGet, "/healthz", "", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "ok", rec.Body.String())
	assert.NotEmpty(t, rec.Header().Get(trace.RequestIDHeader))
	assert.Equal(t, "nosniff", rec.Header().Get("X-Content-Type-Options"))

	down := newServerFor(newMemoryStore(), WithReadiness(func(context.Context) error { return errors.New("db gone") }))
	assert.Equal(t, http.StatusServiceUnavailable, do(t, down, http.MethodGet, "/readyz", "", "").Code)
	assert.Equal(t, http.StatusOK, do(t, s, http.MethodGet, "/readyz", "", "").Code)
}

func TestRequestIDIsEchoed(t *testing.T) {
	s := newServerFor(newMemoryStore())
	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	req.Header.Set(trace.RequestIDHeader, "req-42")
	rec := httptest.NewRecorder()
	s.Handler.ServeHTTP(rec, req)

	assert.Equal(t, "req-42", rec.Header().Get(trace.RequestIDHeader))
	assert.EqualValues(t, 1, s.Metrics().TotalRequests)
}

func TestMissingUser(t *testing.T) {
	s := newServerFor(newMemoryStore())
	rec := do(t, s, http.MethodGet, "/api/expenses", "", "")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Contains(t, decode[errorBody](t, rec).Error, UserHeader)
}

func TestExpenses(t *testing.T) {
	s := newServerFor(newMemoryStore())

	rec := do(t, s, http.MethodPost, "/api/expenses", "u1",
		`{"amount":"12.50","date":"2024-03-05","category_id":"default-food-dining","payment_method":"cash","description":" Lunch "}`)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	created := decode[core.Transaction](t, rec)
	assert.Equal(t, int64(1250), created.Amount.Cents)
	assert.Equal(t, "u1", created.UserID)
	assert.Equal(t, "Lunch", created.Description)
	assert.Equal(t, "/api/expenses/"+created.ID, rec.Header().Get("Location"))

	rec = do(t, s, http.MethodGet, "/api/expenses?start=2024-03-01&end=2024-03-31&q=lunch", "u1", "")
	require.Equal(t, http.StatusOK, rec.Code)
	listed := decode[[]core.Transaction](t, rec)
	require.Len(t, listed, 1)
	assert.Equal(t, created.ID, listed[0].ID)

	rec = do(t, s, http.MethodGet, "/api/expenses", "u2", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "[]\n", rec.Body.String())

	rec = do(t, s, http.MethodGet, "/api/categories?kind=income", "u1", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Len(t, decode[[]core.Category](t, rec), 4)
}

func TestValidationErrors(t *testing.T) {
	s := newServerFor(newMemoryStore())

	tests := []struct {
		name      string
		method    string
		path      string
		body      string
		wantField string
	}{
		{"zero amount", http.MethodPost, "/api/expenses", `{"amount":0,"date":"2024-03-05","payment_method":"cash"}`, "amount"},
		{"bad payment method", http.MethodPost, "/api/expenses", `{"amount":5,"date":"2024-03-05","payment_method":"barter"}`, "payment_method"},
		{"malformed body", http.MethodPost, "/api/expenses", `{"amount":`, "body"},
		{"empty body", http.MethodPost, "/api/goals", ``, "body"},
		{"bad date query", http.MethodGet, "/api/expenses?start=03/01/2024", "", "start"},
		{"negative limit", http.MethodGet, "/api/expenses?limit=-1", "", "limit"},
		{"bad kind", http.MethodGet, "/api/categories?kind=transfer", "", "kind"},
		{"inverted range", http.MethodGet, "/api/reports/categories?start=2024-03-10&end=2024-03-01", "", "end"},
		{"unknown period", http.MethodGet, "/api/reports/summary?period=decade", "", "period"},
		{"budget threshold", http.MethodPost, "/api/budgets", `{"amount":100,"alert_threshold":120}`, "alert_threshold"},
		{"goal without name", http.MethodPost, "/api/goals", `{"target_amount":100,"deadline":"2024-12-31"}`, "name"},
		{"empty question", http.MethodPost, "/api/insights/ask", `{"question":"  "}`, "question"},
		{"unknown template", http.MethodPost, "/api/onboarding/budgets", `{"template":"lavish","monthly_income":4000}`, "template"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := do(t, s, tt.method, tt.path, "u1", tt.body)
			require.Equal(t, http.StatusUnprocessableEntity, rec.Code, rec.Body.String())
			assert.Equal(t, tt.wantField, decode[errorBody](t, rec).Field)
		})
	}
}

func TestBudgets(t *testing.T) {
	s := newServerFor(newMemoryStore())

	rec := do(t, s, http.MethodPost, "/api/expenses", "u1", `{"amount":90,"date":"2024-03-05","payment_method":"cash"}`)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	rec = do(t, s, http.MethodPost, "/api/budgets", "u1", `{"amount":100}`)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	b := decode[core.Budget](t, rec)
	assert.Equal(t, core.Monthly, b.Period)
	assert.Equal(t, "2024-03-01", b.StartDate.String())

	rec = do(t, s, http.MethodGet, "/api/budgets/status", "u1", "")
	require.Equal(t, http.StatusOK, rec.Code)
	var statuses []struct {
		Percentage  float64 `json:"percentage"`
		IsNearLimit bool    `json:"is_near_limit"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &statuses))
	require.Len(t, statuses, 1)
	assert.InDelta(t, 90.0, statuses[0].Percentage, 0.001)
	assert.True(t, statuses[0].IsNearLimit)

	rec = do(t, s, http.MethodPut, "/api/budgets/"+b.ID, "u1", `{"amount":200,"period":"monthly","alert_threshold":95,"start_date":"2024-03-01"}`)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	assert.Equal(t, http.StatusNotFound, do(t, s, http.MethodDelete, "/api/budgets/"+b.ID, "u2", "").Code)
	assert.Equal(t, http.StatusNoContent, do(t, s, http.MethodDelete, "/api/budgets/"+b.ID, "u1", "").Code)
	assert.Equal(t, http.StatusNotFound, do(t, s, http.MethodDelete, "/api/budgets/"+b.ID, "u1", "").Code)
}

func TestOnboarding(t *testing.T) {
	s := newServerFor(newMemoryStore())

	rec := do(t, s, http.MethodPost, "/api/onboarding/budgets", "u1", `{"template":"standard","monthly_income":4000}`)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	var plan struct {
		Budgets []core.Budget `json:"budgets"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &plan))
	assert.Len(t, plan.Budgets, 6)

	rec = do(t, s, http.MethodPost, "/api/onboarding/budgets", "u1", `{"template":"minimal","monthly_income":4000}`)
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
}

func TestGoals(t *testing.T) {
	s := newServerFor(newMemoryStore())

	rec := do(t, s, http.MethodPost, "/api/goals", "u1", `{"name":"Laptop","target_amount":"1000","deadline":"2024-12-31"}`)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	g := decode[core.Goal](t, rec)
	assert.Equal(t, core.GoalActive, g.Status)

	rec = do(t, s, http.MethodPost, "/api/goals/"+g.ID+"/contributions", "u1", `{"amount":250,"note":"bonus"}`)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	got := decode[contributionResponse](t, rec)
	assert.Equal(t, int64(25000), got.Goal.CurrentAmount.Cents)
	assert.Equal(t, "bonus", got.Contribution.Note)

	rec = do(t, s, http.MethodPost, "/api/goals/missing/contributions", "u1", `{"amount":1}`)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = do(t, s, http.MethodGet, "/api/goals?status=active", "u1", "")
	require.Equal(t, http.StatusOK, rec.Code)
	listed := decode[[]services.GoalProgress](t, rec)
	require.Len(t, listed, 1)
	assert.InDelta(t, 25.0, listed[0].Progress.Percentage, 0.001)

	rec = do(t, s, http.MethodPost, "/api/goals/"+g.ID+"/reconcile", "u1", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, int64(25000), decode[core.Goal](t, rec).CurrentAmount.Cents)
}

func TestGoalUpdateAndDelete(t *testing.T) {
	s := newServerFor(newMemoryStore())

	rec := do(t, s, http.MethodPost, "/api/goals", "u1", `{"name":"Bike","target_amount":500,"deadline":"2024-09-01"}`)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	g := decode[core.Goal](t, rec)
	require.Equal(t, http.StatusCreated, do(t, s, http.MethodPost, "/api/goals/"+g.ID+"/contributions", "u1", `{"amount":100}`).Code)

	tests := []struct {
		name       string
		user       string
		body       string
		wantCode   int
		wantStatus core.GoalStatus
	}{
		{"rename and lower target", "u1", `{"name":"Road bike","target_amount":100,"deadline":"2024-09-01","current_amount":0}`, http.StatusOK, core.GoalCompleted},
		{"cancel", "u1", `{"name":"Road bike","target_amount":400,"deadline":"2024-09-01","status":"cancelled"}`, http.StatusOK, core.GoalCancelled},
		{"bad target", "u1", `{"name":"Road bike","target_amount":0,"deadline":"2024-09-01"}`, http.StatusUnprocessableEntity, ""},
		{"other user", "u2", `{"name":"Mine now","target_amount":400,"deadline":"2024-09-01"}`, http.StatusNotFound, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := do(t, s, http.MethodPut, "/api/goals/"+g.ID, tt.user, tt.body)
			require.Equal(t, tt.wantCode, rec.Code, rec.Body.String())
			if tt.wantStatus == "" {
				return
			}
			got := decode[core.Goal](t, rec)
			assert.Equal(t, tt.wantStatus, got.Status)
			assert.Equal(t, int64(10000), got.CurrentAmount.Cents)
		})
	}

	rec = do(t, s, http.MethodPost, "/api/goals/"+g.ID+"/contributions", "u1", `{"amount":5}`)
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code, "cancelled goals take no contributions")

	assert.Equal(t, http.StatusNotFound, do(t, s, http.MethodDelete, "/api/goals/"+g.ID, "u2", "").Code)
	assert.Equal(t, http.StatusNoContent, do(t, s, http.MethodDelete, "/api/goals/"+g.ID, "u1", "").Code)
	assert.Empty(t, decode[[]core.Goal](t, do(t, s, http.MethodGet, "/api/goals", "u1", "")))
}

func TestCategories(t *testing.T) {
	s := newServerFor(newMemoryStore())

	rec := do(t, s, http.MethodPost, "/api/categories", "u1", `{"name":"Pets","color":"#123456"}`)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	pets := decode[core.Category](t, rec)
	assert.Equal(t, "u1", pets.UserID)
	assert.Equal(t, core.KindExpense, pets.Kind)

	rec = do(t, s, http.MethodPost, "/api/categories", "u1", `{"name":"pets"}`)
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)

	expense := `{"amount":5,"date":"2024-03-05","payment_method":"cash","category_id":"` + pets.ID + `"}`
	assert.Equal(t, http.StatusCreated, do(t, s, http.MethodPost, "/api/expenses", "u1", expense).Code)

	rec = do(t, s, http.MethodPost, "/api/expenses", "u2", expense)
	require.Equal(t, http.StatusUnprocessableEntity, rec.Code, "another user's category is not visible")
	assert.Equal(t, "category_id", decode[errorBody](t, rec).Field)

	rec = do(t, s, http.MethodPost, "/api/budgets", "u1", `{"amount":100,"category_id":"no-such-category"}`)
	require.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	assert.Equal(t, "category_id", decode[errorBody](t, rec).Field)
}

func TestStaleGoalReturnsConflict(t *testing.T) {
	store := newMemoryStore()
	g, err := store.InsertGoal(context.Background(), core.Goal{UserID: "u1", Name: "Trip", TargetAmount: core.Cents(50000), Deadline: core.NewDate(2024, 8, 1), Status: core.GoalActive})
	require.NoError(t, err)
	var logs bytes.Buffer
	s := newServerFor(staleStore{store}, WithLogger(applog.New(applog.Config{Output: &logs})))

	rec := do(t, s, http.MethodPost, "/api/goals/"+g.ID+"/contributions", "u1", `{"amount":"20"}`)
	require.Equal(t, http.StatusConflict, rec.Code, rec.Body.String())
	body := decode[errorBody](t, rec)
	require.NotNil(t, body.Contribution)
	assert.Equal(t, int64(2000), body.Contribution.Amount.Cents)
	assert.NotEmpty(t, body.Contribution.ID)

	assert.Contains(t, logs.String(), "Goal left stale")
	assert.Contains(t, logs.String(), "user_id=u1")
	assert.Contains(t, logs.String(), "goal_id="+g.ID)
}

func TestInsightsAndReports(t *testing.T) {
	s := newServerFor(newMemoryStore())
	for _, body := range []string{
		`{"amount":300,"date":"2024-03-02","category_id":"default-food-dining","payment_method":"cash"}`,
		`{"amount":300,"date":"2024-03-04","category_id":"default-transportation","payment_method":"cash"}`,
	} {
		require.Equal(t, http.StatusCreated, do(t, s, http.MethodPost, "/api/expenses", "u1", body).Code)
	}

	rec := do(t, s, http.MethodGet, "/api/insights", "u1", "")
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Contains(t, rec.Body.String(), "This period you spent $600.00")

	rec = do(t, s, http.MethodPost, "/api/insights/ask", "u1", `{"question":"How much do I spend?"}`)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, decode[askResponse](t, rec).Answer, "Total spent this month: $600.00")

	for _, path := range []string{
		"/api/reports/summary",
		"/api/reports/summary?period=year",
		"/api/reports/categories",
		"/api/reports/monthly?start=2024-01-01&end=2024-03-31",
		"/api/reports/prediction",
	} {
		t.Run(path, func(t *testing.T) {
			rec := do(t, s, http.MethodGet, path, "u1", "")
			assert.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
			assert.Equal(t, "application/json; charset=utf-8", rec.Header().Get("Content-Type"))
		})
	}
}

func TestExport(t *testing.T) {
	s := newServerFor(newMemoryStore())
	rec := do(t, s, http.MethodPost, "/api/expenses", "u1", `{"amount":12.5,"date":"2024-03-05","category_id":"default-food-dining","payment_method":"cash","description":"Lunch"}`)
	require.Equal(t, http.StatusCreated, rec.Code)

	rec = do(t, s, http.MethodGet, "/api/export.csv", "u1", "")
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, "text/csv; charset=utf-8", rec.Header().Get("Content-Type"))
	assert.Contains(t, rec.Header().Get("Content-Disposition"), "transactions_2024-03-01_2024-03-31.csv")
	lines := strings.Split(strings.TrimSpace(rec.Body.String()), "\n")
	require.Len(t, lines, 2)
	assert.Equal(t, "Date,Category,Description,Amount,Payment Method", strings.TrimSpace(lines[0]))

	rec = do(t, s, http.MethodPost, "/api/export/sheet", "u1", "")
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}

func TestRateLimit(t *testing.T) {
	s := newServerFor(newMemoryStore(), WithRateLimit(2))

	assert.Equal(t, http.StatusOK, do(t, s, http.MethodGet, "/api/expenses", "u1", "").Code)
	assert.Equal(t, http.StatusOK, do(t, s, http.MethodGet, "/api/expenses", "u1", "").Code)
	rec := do(t, s, http.MethodGet, "/api/expenses", "u1", "")
	assert.Equal(t, http.StatusTooManyRequests, rec.Code)
	assert.Equal(t, "60", rec.Header().Get("Retry-After"))

	assert.Equal(t, http.StatusOK, do(t, s, http.MethodGet, "/api/expenses", "u2", "").Code)
	assert.EqualValues(t, 1, s.Limiter().Rejected())
}

func TestShutdownIsIdempotent(t *testing.T) {
	s := newServerFor(newMemoryStore())
	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	assert.NoError(t, s.Shutdown(ctx))
	assert.NoError(t, s.Shutdown(ctx))
}
