// Package sheets defines the ports the tracker's handlers and services use
// to talk to record storage, whatever backs it.
package sheets

import (
	"context"

	"github.com/pspuri91/expense-tracker/internal/core"
)

// Ports for outbound adapters.
type (
	// RecordAppender persists a new record. The adapter assigns the next
	// sequential id and returns the stored record.
	RecordAppender interface {
		Append(ctx context.Context, r core.Record) (core.Record, error)
	}

	// RecordLister returns every stored record, expenses and groceries
	// merged.
	RecordLister interface {
		ListRecords(ctx context.Context) ([]core.Record, error)
	}

	// RecordUpdater overwrites the stored record with the same id.
	// Returns core.ErrNotFound when the id does not exist.
	RecordUpdater interface {
		Update(ctx context.Context, r core.Record) error
	}

	// BudgetReader returns the configured category budgets in sheet order.
	BudgetReader interface {
		ListBudgets(ctx context.Context) ([]core.Budget, error)
	}

	// BudgetUpdater overwrites the budget of an existing category.
	// Returns core.ErrNotFound when the category does not exist.
	BudgetUpdater interface {
		UpdateBudget(ctx context.Context, category string, budget float64) error
	}
)

// Store groups every port; full backends satisfy it.
type Store interface {
	RecordAppender
	RecordLister
	RecordUpdater
	BudgetReader
	BudgetUpdater
}
