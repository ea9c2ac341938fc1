package http

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"fintrack/internal/core"
)

const maxBodyBytes = 1 << 20

// userID returns the caller from the X-User-ID header, trimmed.
func userID(r *http.Request) string {
	return sanitizeInput(r.Header.Get(UserHeader))
}

// withUser rejects requests that carry no user before calling h.
func (s *Server) withUser(h func(http.ResponseWriter, *http.Request, string)) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := userID(r)
		if id == "" {
			NewJSONResponse().Status(http.StatusUnauthorized).Send(w, errorBody{Error: "missing " + UserHeader + " header"})
			return
		}
		h(w, r, id)
	}
}

// sanitizeInput trims whitespace and drops control characters.
func sanitizeInput(s string) string {
	s = strings.TrimSpace(s)
	return strings.Map(func(r rune) rune {
		if r < 32 && r != '\t' {
			return -1
		}
		return r
	}, s)
}

// decodeJSON reads a single JSON object from the body into dst.
func decodeJSON(r *http.Request, dst any) error {
	dec := json.NewDecoder(io.LimitReader(r.Body, maxBodyBytes))
	if err := dec.Decode(dst); err != nil {
		var ve *core.ValidationError
		if errors.As(err, &ve) {
			return err
		}
		if errors.Is(err, io.EOF) {
			return core.Invalid("body", "cannot be empty")
		}
		return core.Invalid("body", "malformed JSON")
	}
	return nil
}

// queryDate parses an optional YYYY-MM-DD query parameter.
func queryDate(r *http.Request, name string) (core.Date, error) {
	v := sanitizeInput(r.URL.Query().Get(name))
	if v == "" {
		return core.Date{}, nil
	}
	d, err := core.ParseDate(v)
	if err != nil {
		return core.Date{}, core.Invalid(name, "must be a YYYY-MM-DD date")
	}
	return d, nil
}

// parseDateRange reads start and end, defaulting to the calendar month of now.
func parseDateRange(r *http.Request, now time.Time) (start, end core.Date, err error) {
	if start, err = queryDate(r, "start"); err != nil {
		return
	}
	if end, err = queryDate(r, "end"); err != nil {
		return
	}
	today := core.DateOf(now)
	if start.IsZero() {
		start = today.FirstOfMonth()
	}
	if end.IsZero() {
		end = today.LastOfMonth()
	}
	if end.Before(start.Time) {
		err = core.Invalid("end", "must not be before start")
	}
	return
}

// queryInt parses an optional non-negative integer query parameter.
func queryInt(r *http.Request, name string) (int, error) {
	v := sanitizeInput(r.URL.Query().Get(name))
	if v == "" {
		return 0, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil || n < 0 {
		return 0, core.Invalid(name, "must be a non-negative integer")
	}
	return n, nil
}
