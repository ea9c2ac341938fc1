package services

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"fintrack/internal/core"
	"fintrack/internal/ledger"
)

const (
	defaultPageSize = 50
	maxPageSize     = 500
)

// ExpenseService records and lists expense transactions.
type ExpenseService struct {
	store ledger.Store
}

func NewExpenseService(store ledger.Store) *ExpenseService {
	return &ExpenseService{store: store}
}

// Create validates t and appends it to the ledger.
func (s *ExpenseService) Create(ctx context.Context, t core.Transaction) (core.Transaction, error) {
	if t.Kind == "" {
		t.Kind = core.KindExpense
	}
	t.Description = strings.TrimSpace(t.Description)
	if err := t.Validate(); err != nil {
		return core.Transaction{}, err
	}
	if err := requireExpenseCategory(ctx, s.store, t.UserID, t.CategoryID); err != nil {
		return core.Transaction{}, err
	}

	saved, err := s.store.InsertTransaction(ctx, t)
	if err != nil {
		return core.Transaction{}, core.StoreFailure("insert transaction", err)
	}

	slog.InfoContext(ctx, "Expense recorded",
		"id", saved.ID,
		"user_id", saved.UserID,
		"amount_cents", saved.Amount.Cents,
		"category_id", saved.CategoryID)
	return saved, nil
}

// List returns one page of the user's transactions, newest first. The page
// size defaults to 50 and is capped at 500.
func (s *ExpenseService) List(ctx context.Context, userID string, f ledger.TransactionFilter) ([]core.Transaction, error) {
	switch {
	case f.Limit <= 0:
		f.Limit = defaultPageSize
	case f.Limit > maxPageSize:
		f.Limit = maxPageSize
	}
	if f.Offset < 0 {
		f.Offset = 0
	}

	txs, err := s.store.ListTransactions(ctx, userID, f)
	if err != nil {
		return nil, core.StoreFailure("list transactions", err)
	}
	if txs == nil {
		txs = []core.Transaction{}
	}
	return txs, nil
}

// Categories lists the categories visible to userID.
func (s *ExpenseService) Categories(ctx context.Context, userID string, kind core.Kind) ([]core.Category, error) {
	cats, err := s.store.ListCategories(ctx, userID, kind)
	if err != nil {
		return nil, core.StoreFailure("list categories", err)
	}
	return cats, nil
}

// CreateCategory adds a category owned by c.UserID. The kind defaults to
// expense and the name must not clash with a category the user already sees.
func (s *ExpenseService) CreateCategory(ctx context.Context, c core.Category) (core.Category, error) {
	c.Name = strings.TrimSpace(c.Name)
	if c.Kind == "" {
		c.Kind = core.KindExpense
	}
	if c.Icon == "" {
		c.Icon = core.OtherCategoryIcon
	}
	if c.Color == "" {
		c.Color = core.OtherCategoryColor
	}
	if err := c.Validate(); err != nil {
		return core.Category{}, err
	}

	visible, err := s.store.ListCategories(ctx, c.UserID, c.Kind)
	if err != nil {
		return core.Category{}, core.StoreFailure("list categories", err)
	}
	for _, v := range visible {
		if strings.EqualFold(v.Name, c.Name) {
			return core.Category{}, core.Invalid("name", "category "+c.Name+" already exists")
		}
	}

	saved, err := s.store.InsertCategory(ctx, c)
	if err != nil {
		return core.Category{}, core.StoreFailure("insert category", err)
	}
	slog.InfoContext(ctx, "Category created",
		"id", saved.ID,
		"user_id", saved.UserID,
		"kind", saved.Kind)
	return saved, nil
}

// Close closes the ledger and every extra closer, such as the event client.
func (s *ExpenseService) Close(extra ...io.Closer) error {
	var errs []error

	if s.store != nil {
		if err := s.store.Close(); err != nil {
			errs = append(errs, fmt.Errorf("storage: %w", err))
		}
	}
	for _, c := range extra {
		if c == nil {
			continue
		}
		if err := c.Close(); err != nil {
			errs = append(errs, err)
		}
	}

	if err := errors.Join(errs...); err != nil {
		return fmt.Errorf("close expense service: %w", err)
	}
	return nil
}
