package http

import (
	"fmt"
	"net/http"

	applog "fintrack/internal/log"
)

func (s *Server) handleReportSummary(w http.ResponseWriter, r *http.Request, user string) {
	period := sanitizeInput(r.URL.Query().Get("period"))
	if period == "" {
		period = "month"
	}
	sum, err := s.svc.Reports.Summary(r.Context(), user, period, s.now())
	if err != nil {
		writeError(w, r, applog.OpRead, err)
		return
	}
	NewJSONResponse().Send(w, sum)
}

func (s *Server) handleReportCategories(w http.ResponseWriter, r *http.Request, user string) {
	start, end, err := parseDateRange(r, s.now())
	if err != nil {
		writeError(w, r, applog.OpRead, err)
		return
	}
	rep, err := s.svc.Reports.Categories(r.Context(), user, start, end)
	if err != nil {
		writeError(w, r, applog.OpRead, err)
		return
	}
	NewJSONResponse().Send(w, rep)
}

func (s *Server) handleReportMonthly(w http.ResponseWriter, r *http.Request, user string) {
	start, end, err := parseDateRange(r, s.now())
	if err != nil {
		writeError(w, r, applog.OpRead, err)
		return
	}
	rep, err := s.svc.Reports.Monthly(r.Context(), user, start, end)
	if err != nil {
		writeError(w, r, applog.OpRead, err)
		return
	}
	NewJSONResponse().Send(w, rep)
}

func (s *Server) handleReportPrediction(w http.ResponseWriter, r *http.Request, user string) {
	p, err := s.svc.Reports.Predict(r.Context(), user, s.now())
	if err != nil {
		writeError(w, r, applog.OpRead, err)
		return
	}
	NewJSONResponse().Send(w, p)
}

func (s *Server) handleExportCSV(w http.ResponseWriter, r *http.Request, user string) {
	start, end, err := parseDateRange(r, s.now())
	if err != nil {
		writeError(w, r, applog.OpExport, err)
		return
	}
	body, err := s.svc.Exports.CSV(r.Context(), user, start, end)
	if err != nil {
		writeError(w, r, applog.OpExport, err)
		return
	}
	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition", fmt.Sprintf(`attachment; filename="transactions_%s_%s.csv"`, start, end))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte(body))
}

type sheetExportResponse struct {
	Appended int `json:"appended"`
}

func (s *Server) handleExportSheet(w http.ResponseWriter, r *http.Request, user string) {
	start, end, err := parseDateRange(r, s.now())
	if err != nil {
		writeError(w, r, applog.OpExport, err)
		return
	}
	n, err := s.svc.Exports.ToSheet(r.Context(), user, start, end)
	if err != nil {
		writeError(w, r, applog.OpExport, err)
		return
	}
	NewJSONResponse().Send(w, sheetExportResponse{Appended: n})
}
