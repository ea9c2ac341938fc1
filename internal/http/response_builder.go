package http

import (
	"encoding/json"
	"errors"
	"net/http"

	"fintrack/internal/core"
	applog "fintrack/internal/log"
	"fintrack/internal/services"
)

// JSONResponse is a fluent builder for JSON replies.
type JSONResponse struct {
	status  int
	headers map[string]string
}

func NewJSONResponse() *JSONResponse {
	return &JSONResponse{status: http.StatusOK, headers: map[string]string{}}
}

func (b *JSONResponse) Status(code int) *JSONResponse {
	b.status = code
	return b
}

func (b *JSONResponse) Header(key, value string) *JSONResponse {
	b.headers[key] = value
	return b
}

// Send writes body as JSON. A nil body writes the status alone.
func (b *JSONResponse) Send(w http.ResponseWriter, body any) {
	for k, v := range b.headers {
		w.Header().Set(k, v)
	}
	if body == nil {
		w.WriteHeader(b.status)
		return
	}
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(b.status)
	_ = json.NewEncoder(w).Encode(body)
}

type errorBody struct {
	Error        string             `json:"error"`
	Field        string             `json:"field,omitempty"`
	Contribution *core.Contribution `json:"contribution,omitempty"`
}

// writeError maps err onto a status code and JSON body.
func writeError(w http.ResponseWriter, r *http.Request, op string, err error) {
	var (
		ve    *core.ValidationError
		stale *core.StaleGoalError
	)
	resp := NewJSONResponse()
	switch {
	case errors.As(err, &stale):
		fields := applog.NewFields().WithUser(userID(r))
		fields[applog.FieldGoalID] = stale.GoalID
		applog.LogError(r.Context(), "Goal left stale", err, applog.ErrorTypeConflict, op, fields)
		resp.Status(http.StatusConflict).Send(w, errorBody{Error: err.Error(), Contribution: &stale.Contribution})
	case errors.As(err, &ve):
		resp.Status(http.StatusUnprocessableEntity).Send(w, errorBody{Error: ve.Error(), Field: ve.Field})
	case errors.Is(err, core.ErrValidation):
		resp.Status(http.StatusUnprocessableEntity).Send(w, errorBody{Error: err.Error()})
	case errors.Is(err, core.ErrNotFound):
		resp.Status(http.StatusNotFound).Send(w, errorBody{Error: err.Error()})
	case errors.Is(err, services.ErrNoSheet):
		resp.Status(http.StatusServiceUnavailable).Send(w, errorBody{Error: err.Error()})
	default:
		errType := applog.ErrorTypeInternal
		var se *core.StoreError
		if errors.As(err, &se) {
			errType = applog.ErrorTypeDatabase
		}
		applog.LogError(r.Context(), "Request failed", err, errType, op, applog.NewFields().WithUser(userID(r)))
		resp.Status(http.StatusInternalServerError).Send(w, errorBody{Error: "internal error"})
	}
}
