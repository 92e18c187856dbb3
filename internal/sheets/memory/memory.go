// Package memory implements the sheets ports with in-process slices. It is
// the default backend for local development and the fixture for handler
// tests.
package memory

import (
	"context"
	"fmt"
	"strconv"
	"sync"

	"github.com/pspuri91/expense-tracker/internal/core"
	ports "github.com/pspuri91/expense-tracker/internal/sheets"
)

type Store struct {
	mu        sync.Mutex
	expenses  []core.Record
	groceries []core.Record
	budgets   []core.Budget
}

var _ ports.Store = (*Store)(nil)

// New creates a store seeded with the given budgets.
func New(budgets []core.Budget) *Store {
	return &Store{budgets: append([]core.Budget(nil), budgets...)}
}

// Append stores the record, assigning the next sequential id when it has
// none. Ids mirror the spreadsheet numbering: row 1 is the header, so the
// first record gets id 2.
func (s *Store) Append(_ context.Context, r core.Record) (core.Record, error) {
	if err := r.Validate(); err != nil {
		return core.Record{}, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	tab := &s.expenses
	if r.IsGrocery {
		tab = &s.groceries
	}
	if r.ID == "" {
		r.ID = strconv.Itoa(len(*tab) + 2)
	}
	*tab = append(*tab, r)
	return r, nil
}

// ListRecords returns every record, expenses first.
func (s *Store) ListRecords(_ context.Context) ([]core.Record, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]core.Record, 0, len(s.expenses)+len(s.groceries))
	out = append(out, s.expenses...)
	out = append(out, s.groceries...)
	return out, nil
}

// Update overwrites the stored record with the same id.
func (s *Store) Update(_ context.Context, r core.Record) error {
	if err := r.Validate(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	tab := s.expenses
	if r.IsGrocery {
		tab = s.groceries
	}
	for i := range tab {
		if tab[i].ID == r.ID {
			tab[i] = r
			return nil
		}
	}
	return fmt.Errorf("record %s: %w", r.ID, core.ErrNotFound)
}

// ListBudgets returns the configured budgets in seed order.
func (s *Store) ListBudgets(_ context.Context) ([]core.Budget, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]core.Budget(nil), s.budgets...), nil
}

// UpdateBudget overwrites the budget of an existing category.
func (s *Store) UpdateBudget(_ context.Context, category string, budget float64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i := range s.budgets {
		if s.budgets[i].Category == category {
			s.budgets[i].Budget = budget
			return nil
		}
	}
	return fmt.Errorf("category %s: %w", category, core.ErrNotFound)
}
