// Package memory is an in-process Ledger Accessor used for local runs and tests.
package memory

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"fintrack/internal/core"
	"fintrack/internal/ledger"
)

var _ ledger.Store = (*Store)(nil)

type Store struct {
	mu            sync.Mutex
	categories    []core.Category
	transactions  []core.Transaction
	contributions []core.Contribution
	budgets       []core.Budget
	goals         []core.Goal

	// Now stamps new contributions. Defaults to time.Now.
	Now func() time.Time
}

// New returns a store seeded with cats. Categories without an ID get one.
func New(cats []core.Category) *Store {
	s := &Store{Now: time.Now}
	for _, c := range cats {
		if c.ID == "" {
			c.ID = uuid.NewString()
		}
		s.categories = append(s.categories, c)
	}
	return s
}

// NewFromFiles seeds the shared default categories plus any extra expense
// category names listed one per line in base/seed_categories.txt.
func NewFromFiles(base string) *Store {
	cats := append([]core.Category(nil), core.DefaultCategories...)
	known := map[string]struct{}{}
	for _, c := range cats {
		known[c.Name] = struct{}{}
	}
	for _, name := range readLines(filepath.Join(base, "seed_categories.txt")) {
		if _, ok := known[name]; ok {
			continue
		}
		known[name] = struct{}{}
		cats = append(cats, core.Category{
			Name:  name,
			Icon:  core.OtherCategoryIcon,
			Color: core.OtherCategoryColor,
			Kind:  core.KindExpense,
		})
	}
	return New(cats)
}

func (s *Store) Close() error { return nil }

func (s *Store) ListTransactions(_ context.Context, userID string, f ledger.TransactionFilter) ([]core.Transaction, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	search := strings.ToLower(strings.TrimSpace(f.Search))
	var out []core.Transaction
	for _, t := range s.transactions {
		if t.UserID != userID || !t.Date.Within(f.Start, f.End) {
			continue
		}
		if f.CategoryID != "" && t.CategoryID != f.CategoryID {
			continue
		}
		if search != "" && !strings.Contains(strings.ToLower(t.Description), search) {
			continue
		}
		out = append(out, t)
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Date.After(out[j].Date.Time) })
	return page(out, f.Offset, f.Limit), nil
}

func (s *Store) InsertTransaction(_ context.Context, t core.Transaction) (core.Transaction, error) {
	if err := t.Validate(); err != nil {
		return core.Transaction{}, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	t.ID = uuid.NewString()
	s.transactions = append(s.transactions, t)
	return t, nil
}

func (s *Store) ListContributions(_ context.Context, userID string, f ledger.ContributionFilter) ([]core.Contribution, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	search := strings.ToLower(strings.TrimSpace(f.Search))
	var out []core.Contribution
	for _, c := range s.contributions {
		if c.UserID != userID || !c.Date.Within(f.Start, f.End) {
			continue
		}
		if f.GoalID != "" && c.GoalID != f.GoalID {
			continue
		}
		if search != "" && !strings.Contains(strings.ToLower(c.Note), search) {
			continue
		}
		out = append(out, c)
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Date.After(out[j].Date.Time) })
	return out, nil
}

func (s *Store) InsertContribution(_ context.Context, userID, goalID string, amount core.Money, note string) (core.Contribution, error) {
	c := core.Contribution{
		UserID: userID,
		GoalID: goalID,
		Amount: amount,
		Date:   core.DateOf(s.Now().UTC()),
		Note:   note,
	}
	if err := c.Validate(); err != nil {
		return core.Contribution{}, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.goalIndex(userID, goalID) < 0 {
		return core.Contribution{}, fmt.Errorf("goal %s: %w", goalID, core.ErrNotFound)
	}
	c.ID = uuid.NewString()
	s.contributions = append(s.contributions, c)
	return c, nil
}

func (s *Store) ListCategories(_ context.Context, userID string, kind core.Kind) ([]core.Category, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []core.Category
	for _, c := range s.categories {
		if c.UserID != "" && c.UserID != userID {
			continue
		}
		if kind != "" && c.Kind != kind {
			continue
		}
		out = append(out, c)
	}
	return out, nil
}

func (s *Store) InsertCategory(_ context.Context, c core.Category) (core.Category, error) {
	if err := c.Validate(); err != nil {
		return core.Category{}, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	c.ID = uuid.NewString()
	s.categories = append(s.categories, c)
	return c, nil
}

func (s *Store) ListBudgets(_ context.Context, userID string) ([]core.Budget, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []core.Budget
	for _, b := range s.budgets {
		if b.UserID == userID {
			out = append(out, b)
		}
	}
	return out, nil
}

func (s *Store) InsertBudget(_ context.Context, b core.Budget) (core.Budget, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	b.ID = uuid.NewString()
	s.budgets = append(s.budgets, b)
	return b, nil
}

func (s *Store) UpdateBudget(_ context.Context, b core.Budget) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.budgets {
		if s.budgets[i].ID == b.ID && s.budgets[i].UserID == b.UserID {
			s.budgets[i] = b
			return nil
		}
	}
	return fmt.Errorf("budget %s: %w", b.ID, core.ErrNotFound)
}

func (s *Store) DeleteBudget(_ context.Context, userID, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.budgets {
		if s.budgets[i].ID == id && s.budgets[i].UserID == userID {
			s.budgets = append(s.budgets[:i], s.budgets[i+1:]...)
			return nil
		}
	}
	return fmt.Errorf("budget %s: %w", id, core.ErrNotFound)
}

func (s *Store) ListGoals(_ context.Context, userID string, status core.GoalStatus) ([]core.Goal, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []core.Goal
	for _, g := range s.goals {
		if g.UserID != userID || (status != "" && g.Status != status) {
			continue
		}
		out = append(out, g)
	}
	return out, nil
}

func (s *Store) GetGoal(_ context.Context, userID, id string) (core.Goal, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if i := s.goalIndex(userID, id); i >= 0 {
		return s.goals[i], nil
	}
	return core.Goal{}, fmt.Errorf("goal %s: %w", id, core.ErrNotFound)
}

func (s *Store) InsertGoal(_ context.Context, g core.Goal) (core.Goal, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	g.ID = uuid.NewString()
	s.goals = append(s.goals, g)
	return g, nil
}

func (s *Store) UpdateGoal(_ context.Context, g core.Goal) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if i := s.goalIndex(g.UserID, g.ID); i >= 0 {
		s.goals[i] = g
		return nil
	}
	return fmt.Errorf("goal %s: %w", g.ID, core.ErrNotFound)
}

func (s *Store) DeleteGoal(_ context.Context, userID, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	i := s.goalIndex(userID, id)
	if i < 0 {
		return fmt.Errorf("goal %s: %w", id, core.ErrNotFound)
	}
	s.goals = append(s.goals[:i], s.goals[i+1:]...)
	kept := s.contributions[:0]
	for _, c := range s.contributions {
		if c.GoalID != id {
			kept = append(kept, c)
		}
	}
	s.contributions = kept
	return nil
}

// goalIndex must be called with mu held.
func (s *Store) goalIndex(userID, id string) int {
	for i, g := range s.goals {
		if g.ID == id && g.UserID == userID {
			return i
		}
	}
	return -1
}

func page[T any](in []T, offset, limit int) []T {
	if offset < 0 {
		offset = 0
	}
	if offset >= len(in) {
		return nil
	}
	in = in[offset:]
	if limit > 0 && limit < len(in) {
		in = in[:limit]
	}
	return in
}

func readLines(path string) []string {
	f, err := os.Open(path)
	if err != nil {
		return nil
	}
	defer f.Close()
	var out []string
	sc := bufio.NewScanner(f)
	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		out = append(out, line)
	}
	return out
}
