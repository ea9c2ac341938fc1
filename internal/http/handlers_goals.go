package http

import (
	"net/http"

	"fintrack/internal/core"
	applog "fintrack/internal/log"
)

func (s *Server) handleListGoals(w http.ResponseWriter, r *http.Request, user string) {
	status := core.GoalStatus(sanitizeInput(r.URL.Query().Get("status")))
	goals, err := s.svc.Goals.Progress(r.Context(), user, status, s.now())
	if err != nil {
		writeError(w, r, applog.OpList, err)
		return
	}
	NewJSONResponse().Send(w, goals)
}

func (s *Server) handleCreateGoal(w http.ResponseWriter, r *http.Request, user string) {
	var g core.Goal
	if err := decodeJSON(r, &g); err != nil {
		writeError(w, r, applog.OpCreate, err)
		return
	}
	g.ID = ""
	g.UserID = user

	saved, err := s.svc.Goals.Create(r.Context(), g)
	if err != nil {
		writeError(w, r, applog.OpCreate, err)
		return
	}
	NewJSONResponse().Status(http.StatusCreated).Send(w, saved)
}

func (s *Server) handleUpdateGoal(w http.ResponseWriter, r *http.Request, user string) {
	var g core.Goal
	if err := decodeJSON(r, &g); err != nil {
		writeError(w, r, applog.OpUpdate, err)
		return
	}
	g.ID = r.PathValue("id")
	g.UserID = user

	updated, err := s.svc.Goals.Update(r.Context(), g)
	if err != nil {
		writeError(w, r, applog.OpUpdate, err)
		return
	}
	NewJSONResponse().Send(w, updated)
}

func (s *Server) handleDeleteGoal(w http.ResponseWriter, r *http.Request, user string) {
	if err := s.svc.Goals.Delete(r.Context(), user, r.PathValue("id")); err != nil {
		writeError(w, r, applog.OpDelete, err)
		return
	}
	NewJSONResponse().Status(http.StatusNoContent).Send(w, nil)
}

type contributionRequest struct {
	Amount core.Money `json:"amount"`
	Note   string     `json:"note"`
}

type contributionResponse struct {
	Goal         core.Goal         `json:"goal"`
	Contribution core.Contribution `json:"contribution"`
}

func (s *Server) handleContribute(w http.ResponseWriter, r *http.Request, user string) {
	var req contributionRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, r, applog.OpContribute, err)
		return
	}
	g, c, err := s.svc.Goals.Contribute(r.Context(), user, r.PathValue("id"), req.Amount, sanitizeInput(req.Note))
	if err != nil {
		writeError(w, r, applog.OpContribute, err)
		return
	}
	NewJSONResponse().Status(http.StatusCreated).Send(w, contributionResponse{Goal: g, Contribution: c})
}

func (s *Server) handleReconcileGoal(w http.ResponseWriter, r *http.Request, user string) {
	g, err := s.svc.Goals.Reconcile(r.Context(), user, r.PathValue("id"))
	if err != nil {
		writeError(w, r, applog.OpReconcile, err)
		return
	}
	NewJSONResponse().Send(w, g)
}
