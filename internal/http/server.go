// Package http serves the JSON API over net/http.
package http

import (
	"context"
	"net/http"
	"sync"
	"time"

	applog "fintrack/internal/log"
	"fintrack/internal/middleware/ratelimit"
	"fintrack/internal/middleware/security"
	"fintrack/internal/middleware/trace"
	"fintrack/internal/services"
)

// UserHeader identifies the caller. Authentication happens upstream.
const UserHeader = "X-User-ID"

// Services are the application services the handlers call.
type Services struct {
	Expenses   *services.ExpenseService
	Budgets    *services.BudgetService
	Goals      *services.GoalService
	Insights   *services.InsightService
	Onboarding *services.OnboardingService
	Reports    *services.ReportService
	Exports    *services.ExportService
}

type Server struct {
	http.Server
	svc      Services
	logger   *applog.Logger
	now      func() time.Time
	ready    func(context.Context) error
	limiter  *ratelimit.Limiter
	ips      *security.IPResolver
	tracer   *trace.Middleware
	shutdown sync.Once
}

type Option func(*Server)

// WithClock sets the time source used for "current period" computations.
func WithClock(now func() time.Time) Option {
	return func(s *Server) { s.now = now }
}

// WithReadiness sets the check behind /readyz, usually a store ping.
func WithReadiness(check func(context.Context) error) Option {
	return func(s *Server) { s.ready = check }
}

func WithLogger(l *applog.Logger) Option {
	return func(s *Server) { s.logger = l }
}

// WithRateLimit caps requests per caller per minute.
func WithRateLimit(perMinute int) Option {
	return func(s *Server) { s.limiter = ratelimit.NewLimiter(ratelimit.Config{RequestsPerMinute: perMinute}) }
}

// NewServer configures routes and middleware, returning a ready-to-run server.
func NewServer(addr string, svc Services, opts ...Option) *Server {
	s := &Server{
		svc:     svc,
		logger:  applog.New(applog.DefaultConfig()),
		now:     time.Now,
		limiter: ratelimit.NewLimiter(ratelimit.DefaultConfig()),
		ips:     security.NewIPResolver(),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.tracer = trace.NewMiddleware(s.ips.ClientIP)

	mux := http.NewServeMux()
	mux.HandleFunc("GET /healthz", handleHealth)
	mux.HandleFunc("GET /readyz", s.handleReady)

	mux.HandleFunc("GET /api/categories", s.withUser(s.handleListCategories))
	mux.HandleFunc("POST /api/categories", s.withUser(s.handleCreateCategory))
	mux.HandleFunc("GET /api/expenses", s.withUser(s.handleListExpenses))
	mux.HandleFunc("POST /api/expenses", s.withUser(s.handleCreateExpense))

	mux.HandleFunc("GET /api/budgets/status", s.withUser(s.handleBudgetStatus))
	mux.HandleFunc("POST /api/budgets", s.withUser(s.handleCreateBudget))
	mux.HandleFunc("PUT /api/budgets/{id}", s.withUser(s.handleUpdateBudget))
	mux.HandleFunc("DELETE /api/budgets/{id}", s.withUser(s.handleDeleteBudget))
	mux.HandleFunc("POST /api/onboarding/budgets", s.withUser(s.handleInitializeBudgets))

	mux.HandleFunc("GET /api/goals", s.withUser(s.handleListGoals))
	mux.HandleFunc("POST /api/goals", s.withUser(s.handleCreateGoal))
	mux.HandleFunc("PUT /api/goals/{id}", s.withUser(s.handleUpdateGoal))
	mux.HandleFunc("DELETE /api/goals/{id}", s.withUser(s.handleDeleteGoal))
	mux.HandleFunc("POST /api/goals/{id}/contributions", s.withUser(s.handleContribute))
	mux.HandleFunc("POST /api/goals/{id}/reconcile", s.withUser(s.handleReconcileGoal))

	mux.HandleFunc("GET /api/insights", s.withUser(s.handleInsights))
	mux.HandleFunc("POST /api/insights/ask", s.withUser(s.handleAsk))

	mux.HandleFunc("GET /api/reports/summary", s.withUser(s.handleReportSummary))
	mux.HandleFunc("GET /api/reports/categories", s.withUser(s.handleReportCategories))
	mux.HandleFunc("GET /api/reports/monthly", s.withUser(s.handleReportMonthly))
	mux.HandleFunc("GET /api/reports/prediction", s.withUser(s.handleReportPrediction))

	mux.HandleFunc("GET /api/export.csv", s.withUser(s.handleExportCSV))
	mux.HandleFunc("POST /api/export/sheet", s.withUser(s.handleExportSheet))

	limited := s.limiter.Middleware(s.callerKey, func(w http.ResponseWriter, r *http.Request) {
		NewJSONResponse().Status(http.StatusTooManyRequests).Send(w, errorBody{Error: "rate limit exceeded"})
	})(mux)

	var h http.Handler = limited
	h = security.HeadersMiddleware(h)
	h = applog.RequestIDMiddleware(trace.GetRequestID)(h)
	h = s.tracer.Middleware(h)
	h = applog.Middleware(s.logger)(h)

	s.Server = http.Server{
		Addr:              addr,
		Handler:           h,
		ReadHeaderTimeout: 10 * time.Second,
	}
	return s
}

// callerKey rate-limits by user, or by client IP for anonymous calls.
func (s *Server) callerKey(r *http.Request) string {
	if id := userID(r); id != "" {
		return "user:" + id
	}
	return "ip:" + s.ips.ClientIP(r)
}

// Shutdown gracefully shuts down the server.
func (s *Server) Shutdown(ctx context.Context) error {
	var err error
	s.shutdown.Do(func() {
		err = s.Server.Shutdown(ctx)
	})
	return err
}

// Limiter exposes the rate limiter so it can join the cache cleanup cycle.
func (s *Server) Limiter() *ratelimit.Limiter { return s.limiter }

func handleHealth(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}

func (s *Server) handleReady(w http.ResponseWriter, r *http.Request) {
	if s.ready != nil {
		if err := s.ready(r.Context()); err != nil {
			applog.FromContext(r.Context()).WarnContext(r.Context(), "Readiness check failed", applog.FieldError, err)
			http.Error(w, "not ready", http.StatusServiceUnavailable)
			return
		}
	}
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ready"))
}

// Metrics reports request counters collected by the trace middleware.
func (s *Server) Metrics() trace.Metrics { return s.tracer.GetMetrics() }
