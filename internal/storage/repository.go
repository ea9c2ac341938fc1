// Package storage is the SQLite Ledger Accessor.
package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"

	"fintrack/internal/core"
	"fintrack/internal/ledger"

	_ "modernc.org/sqlite"
)

var _ ledger.Store = (*SQLiteRepository)(nil)

const dsnPragmas = "?_pragma=foreign_keys(1)&_pragma=busy_timeout(5000)"

type SQLiteRepository struct {
	db *sql.DB

	// now stamps new contributions.
	now func() time.Time
}

func NewSQLiteRepository(dbPath string) (*SQLiteRepository, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, fmt.Errorf("create db directory: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath+dsnPragmas)
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	if err := RunMigrations(dbPath); err != nil {
		db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	return &SQLiteRepository{db: db, now: time.Now}, nil
}

func (r *SQLiteRepository) Close() error {
	if r.db != nil {
		return r.db.Close()
	}
	return nil
}

// Ping reports whether the database is reachable.
func (r *SQLiteRepository) Ping(ctx context.Context) error {
	return core.StoreFailure("ping", r.db.PingContext(ctx))
}

type scanner interface {
	Scan(dest ...any) error
}

func (r *SQLiteRepository) ListTransactions(ctx context.Context, userID string, f ledger.TransactionFilter) ([]core.Transaction, error) {
	q := `SELECT id, user_id, amount_cents, date, category_id, kind, payment_method, description
		FROM transactions WHERE user_id = ?`
	args := []any{userID}
	q, args = dateBounds(q, args, f.Start, f.End)
	if f.CategoryID != "" {
		q += " AND category_id = ?"
		args = append(args, f.CategoryID)
	}
	if s := strings.TrimSpace(f.Search); s != "" {
		q += " AND description LIKE '%' || ? || '%'"
		args = append(args, s)
	}
	q += " ORDER BY date DESC, created_at DESC"
	if f.Limit > 0 {
		q += " LIMIT ? OFFSET ?"
		args = append(args, f.Limit, max(f.Offset, 0))
	}

	rows, err := r.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, core.StoreFailure("list transactions", err)
	}
	defer rows.Close()

	var out []core.Transaction
	for rows.Next() {
		t, err := scanTransaction(rows)
		if err != nil {
			return nil, core.StoreFailure("list transactions", err)
		}
		out = append(out, t)
	}
	return out, core.StoreFailure("list transactions", rows.Err())
}

func scanTransaction(s scanner) (core.Transaction, error) {
	var (
		t    core.Transaction
		cat  sql.NullString
		date string
	)
	if err := s.Scan(&t.ID, &t.UserID, &t.Amount.Cents, &date, &cat, &t.Kind, &t.PaymentMethod, &t.Description); err != nil {
		return t, err
	}
	t.CategoryID = cat.String
	d, err := core.ParseDate(date)
	if err != nil {
		return t, fmt.Errorf("transaction %s: %w", t.ID, err)
	}
	t.Date = d
	return t, nil
}

func (r *SQLiteRepository) InsertTransaction(ctx context.Context, t core.Transaction) (core.Transaction, error) {
	if err := t.Validate(); err != nil {
		return core.Transaction{}, err
	}
	t.ID = uuid.NewString()
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO transactions (id, user_id, amount_cents, date, category_id, kind, payment_method, description)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		t.ID, t.UserID, t.Amount.Cents, t.Date.String(), nullable(t.CategoryID), string(t.Kind), t.PaymentMethod, t.Description)
	if err != nil {
		return core.Transaction{}, core.StoreFailure("insert transaction", err)
	}

	slog.InfoContext(ctx, "Transaction saved to SQLite",
		"id", t.ID,
		"user_id", t.UserID,
		"amount_cents", t.Amount.Cents,
		"date", t.Date.String())
	return t, nil
}

func (r *SQLiteRepository) ListContributions(ctx context.Context, userID string, f ledger.ContributionFilter) ([]core.Contribution, error) {
	q := `SELECT id, user_id, goal_id, amount_cents, date, note FROM contributions WHERE user_id = ?`
	args := []any{userID}
	q, args = dateBounds(q, args, f.Start, f.End)
	if f.GoalID != "" {
		q += " AND goal_id = ?"
		args = append(args, f.GoalID)
	}
	if s := strings.TrimSpace(f.Search); s != "" {
		q += " AND note LIKE '%' || ? || '%'"
		args = append(args, s)
	}
	q += " ORDER BY date DESC, created_at DESC"

	rows, err := r.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, core.StoreFailure("list contributions", err)
	}
	defer rows.Close()

	var out []core.Contribution
	for rows.Next() {
		var (
			c    core.Contribution
			date string
		)
		if err := rows.Scan(&c.ID, &c.UserID, &c.GoalID, &c.Amount.Cents, &date, &c.Note); err != nil {
			return nil, core.StoreFailure("list contributions", err)
		}
		if c.Date, err = core.ParseDate(date); err != nil {
			return nil, core.StoreFailure("list contributions", err)
		}
		out = append(out, c)
	}
	return out, core.StoreFailure("list contributions", rows.Err())
}

func (r *SQLiteRepository) InsertContribution(ctx context.Context, userID, goalID string, amount core.Money, note string) (core.Contribution, error) {
	c := core.Contribution{
		ID:     uuid.NewString(),
		UserID: userID,
		GoalID: goalID,
		Amount: amount,
		Date:   core.DateOf(r.now().UTC()),
		Note:   note,
	}
	if err := c.Validate(); err != nil {
		return core.Contribution{}, err
	}

	res, err := r.db.ExecContext(ctx,
		`INSERT INTO contributions (id, user_id, goal_id, amount_cents, date, note)
		SELECT ?, ?, ?, ?, ?, ? WHERE EXISTS (SELECT 1 FROM goals WHERE id = ? AND user_id = ?)`,
		c.ID, c.UserID, c.GoalID, c.Amount.Cents, c.Date.String(), c.Note, goalID, userID)
	if err != nil {
		return core.Contribution{}, core.StoreFailure("insert contribution", err)
	}
	if err := expectRow(res, "goal", goalID); err != nil {
		return core.Contribution{}, err
	}

	slog.InfoContext(ctx, "Contribution saved to SQLite",
		"id", c.ID,
		"goal_id", goalID,
		"amount_cents", amount.Cents)
	return c, nil
}

func (r *SQLiteRepository) ListCategories(ctx context.Context, userID string, kind core.Kind) ([]core.Category, error) {
	q := `SELECT id, user_id, name, icon, color, kind FROM categories
		WHERE (user_id IS NULL OR user_id = ?)`
	args := []any{userID}
	if kind != "" {
		q += " AND kind = ?"
		args = append(args, string(kind))
	}
	q += " ORDER BY user_id IS NOT NULL, created_at, rowid"

	rows, err := r.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, core.StoreFailure("list categories", err)
	}
	defer rows.Close()

	var out []core.Category
	for rows.Next() {
		var (
			c     core.Category
			owner sql.NullString
		)
		if err := rows.Scan(&c.ID, &owner, &c.Name, &c.Icon, &c.Color, &c.Kind); err != nil {
			return nil, core.StoreFailure("list categories", err)
		}
		c.UserID = owner.String
		out = append(out, c)
	}
	return out, core.StoreFailure("list categories", rows.Err())
}

// InsertCategory stores a user-owned category.
func (r *SQLiteRepository) InsertCategory(ctx context.Context, c core.Category) (core.Category, error) {
	if err := c.Validate(); err != nil {
		return core.Category{}, err
	}
	c.ID = uuid.NewString()
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO categories (id, user_id, name, icon, color, kind) VALUES (?, ?, ?, ?, ?, ?)`,
		c.ID, nullable(c.UserID), c.Name, c.Icon, c.Color, string(c.Kind))
	if err != nil {
		return core.Category{}, core.StoreFailure("insert category", err)
	}
	return c, nil
}

func (r *SQLiteRepository) ListBudgets(ctx context.Context, userID string) ([]core.Budget, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, user_id, category_id, amount_cents, period, alert_threshold, start_date
		FROM budgets WHERE user_id = ? ORDER BY created_at, rowid`, userID)
	if err != nil {
		return nil, core.StoreFailure("list budgets", err)
	}
	defer rows.Close()

	var out []core.Budget
	for rows.Next() {
		var (
			b     core.Budget
			cat   sql.NullString
			start string
		)
		if err := rows.Scan(&b.ID, &b.UserID, &cat, &b.Amount.Cents, &b.Period, &b.AlertThreshold, &start); err != nil {
			return nil, core.StoreFailure("list budgets", err)
		}
		b.CategoryID = cat.String
		if b.StartDate, err = core.ParseDate(start); err != nil {
			return nil, core.StoreFailure("list budgets", err)
		}
		out = append(out, b)
	}
	return out, core.StoreFailure("list budgets", rows.Err())
}

func (r *SQLiteRepository) InsertBudget(ctx context.Context, b core.Budget) (core.Budget, error) {
	if err := b.Validate(); err != nil {
		return core.Budget{}, err
	}
	b.ID = uuid.NewString()
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO budgets (id, user_id, category_id, amount_cents, period, alert_threshold, start_date)
		VALUES (?, ?, ?, ?, ?, ?, ?)`,
		b.ID, b.UserID, nullable(b.CategoryID), b.Amount.Cents, string(b.Period), b.AlertThreshold, b.StartDate.String())
	if err != nil {
		return core.Budget{}, core.StoreFailure("insert budget", err)
	}
	return b, nil
}

func (r *SQLiteRepository) UpdateBudget(ctx context.Context, b core.Budget) error {
	if err := b.Validate(); err != nil {
		return err
	}
	res, err := r.db.ExecContext(ctx,
		`UPDATE budgets SET category_id = ?, amount_cents = ?, period = ?, alert_threshold = ?, start_date = ?
		WHERE id = ? AND user_id = ?`,
		nullable(b.CategoryID), b.Amount.Cents, string(b.Period), b.AlertThreshold, b.StartDate.String(), b.ID, b.UserID)
	if err != nil {
		return core.StoreFailure("update budget", err)
	}
	return expectRow(res, "budget", b.ID)
}

func (r *SQLiteRepository) DeleteBudget(ctx context.Context, userID, id string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM budgets WHERE id = ? AND user_id = ?`, id, userID)
	if err != nil {
		return core.StoreFailure("delete budget", err)
	}
	return expectRow(res, "budget", id)
}

const goalColumns = `id, user_id, name, target_amount_cents, current_amount_cents, deadline, status, icon, color`

func scanGoal(s scanner) (core.Goal, error) {
	var (
		g        core.Goal
		deadline string
	)
	if err := s.Scan(&g.ID, &g.UserID, &g.Name, &g.TargetAmount.Cents, &g.CurrentAmount.Cents, &deadline, &g.Status, &g.Icon, &g.Color); err != nil {
		return g, err
	}
	d, err := core.ParseDate(deadline)
	if err != nil {
		return g, fmt.Errorf("goal %s: %w", g.ID, err)
	}
	g.Deadline = d
	return g, nil
}

func (r *SQLiteRepository) ListGoals(ctx context.Context, userID string, status core.GoalStatus) ([]core.Goal, error) {
	q := `SELECT ` + goalColumns + ` FROM goals WHERE user_id = ?`
	args := []any{userID}
	if status != "" {
		q += " AND status = ?"
		args = append(args, string(status))
	}
	q += " ORDER BY deadline, created_at"

	rows, err := r.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, core.StoreFailure("list goals", err)
	}
	defer rows.Close()

	var out []core.Goal
	for rows.Next() {
		g, err := scanGoal(rows)
		if err != nil {
			return nil, core.StoreFailure("list goals", err)
		}
		out = append(out, g)
	}
	return out, core.StoreFailure("list goals", rows.Err())
}

func (r *SQLiteRepository) GetGoal(ctx context.Context, userID, id string) (core.Goal, error) {
	row := r.db.QueryRowContext(ctx, `SELECT `+goalColumns+` FROM goals WHERE id = ? AND user_id = ?`, id, userID)
	g, err := scanGoal(row)
	if errors.Is(err, sql.ErrNoRows) {
		return core.Goal{}, fmt.Errorf("goal %s: %w", id, core.ErrNotFound)
	}
	return g, core.StoreFailure("get goal", err)
}

func (r *SQLiteRepository) InsertGoal(ctx context.Context, g core.Goal) (core.Goal, error) {
	if err := g.Validate(); err != nil {
		return core.Goal{}, err
	}
	g.ID = uuid.NewString()
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO goals (`+goalColumns+`) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		g.ID, g.UserID, g.Name, g.TargetAmount.Cents, g.CurrentAmount.Cents, g.Deadline.String(), string(g.Status), g.Icon, g.Color)
	if err != nil {
		return core.Goal{}, core.StoreFailure("insert goal", err)
	}
	return g, nil
}

func (r *SQLiteRepository) UpdateGoal(ctx context.Context, g core.Goal) error {
	if err := g.Validate(); err != nil {
		return err
	}
	res, err := r.db.ExecContext(ctx,
		`UPDATE goals SET name = ?, target_amount_cents = ?, current_amount_cents = ?, deadline = ?,
			status = ?, icon = ?, color = ?, updated_at = CURRENT_TIMESTAMP
		WHERE id = ? AND user_id = ?`,
		g.Name, g.TargetAmount.Cents, g.CurrentAmount.Cents, g.Deadline.String(), string(g.Status), g.Icon, g.Color, g.ID, g.UserID)
	if err != nil {
		return core.StoreFailure("update goal", err)
	}
	return expectRow(res, "goal", g.ID)
}

func (r *SQLiteRepository) DeleteGoal(ctx context.Context, userID, id string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM goals WHERE id = ? AND user_id = ?`, id, userID)
	if err != nil {
		return core.StoreFailure("delete goal", err)
	}
	return expectRow(res, "goal", id)
}

// dateBounds appends inclusive date predicates for the non-zero bounds.
func dateBounds(q string, args []any, start, end core.Date) (string, []any) {
	if !start.IsZero() {
		q += " AND date >= ?"
		args = append(args, start.String())
	}
	if !end.IsZero() {
		q += " AND date <= ?"
		args = append(args, end.String())
	}
	return q, args
}

func expectRow(res sql.Result, kind, id string) error {
	n, err := res.RowsAffected()
	if err != nil {
		return core.StoreFailure("rows affected", err)
	}
	if n == 0 {
		return fmt.Errorf("%s %s: %w", kind, id, core.ErrNotFound)
	}
	return nil
}

func nullable(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}
