package http

import (
	"net/http"

	"fintrack/internal/core"
	applog "fintrack/internal/log"
)

func (s *Server) handleBudgetStatus(w http.ResponseWriter, r *http.Request, user string) {
	statuses, err := s.svc.Budgets.Status(r.Context(), user, s.now())
	if err != nil {
		writeError(w, r, applog.OpRead, err)
		return
	}
	NewJSONResponse().Send(w, statuses)
}

func (s *Server) handleCreateBudget(w http.ResponseWriter, r *http.Request, user string) {
	var b core.Budget
	if err := decodeJSON(r, &b); err != nil {
		writeError(w, r, applog.OpCreate, err)
		return
	}
	b.ID = ""
	b.UserID = user

	saved, err := s.svc.Budgets.Create(r.Context(), b, s.now())
	if err != nil {
		writeError(w, r, applog.OpCreate, err)
		return
	}
	NewJSONResponse().Status(http.StatusCreated).Send(w, saved)
}

func (s *Server) handleUpdateBudget(w http.ResponseWriter, r *http.Request, user string) {
	var b core.Budget
	if err := decodeJSON(r, &b); err != nil {
		writeError(w, r, applog.OpUpdate, err)
		return
	}
	b.ID = r.PathValue("id")
	b.UserID = user

	if err := s.svc.Budgets.Update(r.Context(), b); err != nil {
		writeError(w, r, applog.OpUpdate, err)
		return
	}
	NewJSONResponse().Send(w, b)
}

func (s *Server) handleDeleteBudget(w http.ResponseWriter, r *http.Request, user string) {
	if err := s.svc.Budgets.Delete(r.Context(), user, r.PathValue("id")); err != nil {
		writeError(w, r, applog.OpDelete, err)
		return
	}
	NewJSONResponse().Status(http.StatusNoContent).Send(w, nil)
}

type onboardingRequest struct {
	Template      string     `json:"template"`
	MonthlyIncome core.Money `json:"monthly_income"`
}

func (s *Server) handleInitializeBudgets(w http.ResponseWriter, r *http.Request, user string) {
	var req onboardingRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, r, applog.OpCreate, err)
		return
	}
	plan, err := s.svc.Onboarding.InitializeBudgets(r.Context(), user, sanitizeInput(req.Template), req.MonthlyIncome, s.now())
	if err != nil {
		writeError(w, r, applog.OpCreate, err)
		return
	}
	NewJSONResponse().Status(http.StatusCreated).Send(w, plan)
}
