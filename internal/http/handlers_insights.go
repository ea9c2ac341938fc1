package http

import (
	"net/http"

	"fintrack/internal/core"
	applog "fintrack/internal/log"
)

func (s *Server) handleInsights(w http.ResponseWriter, r *http.Request, user string) {
	snap, err := s.svc.Insights.Generate(r.Context(), user, s.now())
	if err != nil {
		writeError(w, r, applog.OpGenerate, err)
		return
	}
	NewJSONResponse().Send(w, snap)
}

type askRequest struct {
	Question string `json:"question"`
}

type askResponse struct {
	Answer string `json:"answer"`
}

func (s *Server) handleAsk(w http.ResponseWriter, r *http.Request, user string) {
	var req askRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, r, applog.OpRead, err)
		return
	}
	q := sanitizeInput(req.Question)
	if q == "" {
		writeError(w, r, applog.OpRead, core.Invalid("question", "cannot be empty"))
		return
	}
	NewJSONResponse().Send(w, askResponse{Answer: s.svc.Insights.Ask(r.Context(), user, q)})
}
