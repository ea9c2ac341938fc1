package http

import (
	"net/http"

	"fintrack/internal/core"
	applog "fintrack/internal/log"
	"fintrack/internal/ledger"
)

func (s *Server) handleListCategories(w http.ResponseWriter, r *http.Request, user string) {
	kind := core.Kind(sanitizeInput(r.URL.Query().Get("kind")))
	if kind != "" && !kind.Valid() {
		writeError(w, r, applog.OpList, core.Invalid("kind", "must be expense or income"))
		return
	}
	cats, err := s.svc.Expenses.Categories(r.Context(), user, kind)
	if err != nil {
		writeError(w, r, applog.OpList, err)
		return
	}
	NewJSONResponse().Send(w, cats)
}

func (s *Server) handleCreateCategory(w http.ResponseWriter, r *http.Request, user string) {
	var c core.Category
	if err := decodeJSON(r, &c); err != nil {
		writeError(w, r, applog.OpCreate, err)
		return
	}
	c.ID = ""
	c.UserID = user
	c.Name = sanitizeInput(c.Name)

	saved, err := s.svc.Expenses.CreateCategory(r.Context(), c)
	if err != nil {
		writeError(w, r, applog.OpCreate, err)
		return
	}
	NewJSONResponse().Status(http.StatusCreated).Send(w, saved)
}

func (s *Server) handleListExpenses(w http.ResponseWriter, r *http.Request, user string) {
	var (
		f   ledger.TransactionFilter
		err error
	)
	if f.Start, err = queryDate(r, "start"); err != nil {
		writeError(w, r, applog.OpList, err)
		return
	}
	if f.End, err = queryDate(r, "end"); err != nil {
		writeError(w, r, applog.OpList, err)
		return
	}
	if f.Limit, err = queryInt(r, "limit"); err != nil {
		writeError(w, r, applog.OpList, err)
		return
	}
	if f.Offset, err = queryInt(r, "offset"); err != nil {
		writeError(w, r, applog.OpList, err)
		return
	}
	q := r.URL.Query()
	f.CategoryID = sanitizeInput(q.Get("category_id"))
	f.Search = sanitizeInput(q.Get("q"))

	txs, err := s.svc.Expenses.List(r.Context(), user, f)
	if err != nil {
		writeError(w, r, applog.OpList, err)
		return
	}
	NewJSONResponse().Send(w, txs)
}

func (s *Server) handleCreateExpense(w http.ResponseWriter, r *http.Request, user string) {
	var t core.Transaction
	if err := decodeJSON(r, &t); err != nil {
		writeError(w, r, applog.OpCreate, err)
		return
	}
	t.ID = ""
	t.UserID = user
	t.Description = sanitizeInput(t.Description)

	saved, err := s.svc.Expenses.Create(r.Context(), t)
	if err != nil {
		writeError(w, r, applog.OpCreate, err)
		return
	}
	NewJSONResponse().Status(http.StatusCreated).Header("Location", "/api/expenses/"+saved.ID).Send(w, saved)
}
