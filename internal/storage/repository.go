// Package storage keeps a local SQLite mirror of the spreadsheet. Writes land
// here first and a worker replays them into the sheet, so the app stays
// usable when the Sheets API is slow or down.
package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	_ "modernc.org/sqlite"

	"github.com/pspuri91/expense-tracker/internal/core"
	"github.com/pspuri91/expense-tracker/internal/log"
	ports "github.com/pspuri91/expense-tracker/internal/sheets"
)

type SQLiteRepository struct {
	db      *sql.DB
	queries *Queries
	logger  *log.Logger
}

var _ ports.Store = (*SQLiteRepository)(nil)

func NewSQLiteRepository(dbPath string, logger *log.Logger) (*SQLiteRepository, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, fmt.Errorf("create db directory: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath)
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

	return &SQLiteRepository{
		db:      db,
		queries: New(db),
		logger:  logger.WithComponent(log.ComponentStorage),
	}, nil
}

func (r *SQLiteRepository) Close() error {
	if r.db != nil {
		return r.db.Close()
	}
	return nil
}

// Append stores the record, assigning the next id inside a transaction so
// concurrent appends cannot collide.
func (r *SQLiteRepository) Append(ctx context.Context, rec core.Record) (core.Record, error) {
	if err := rec.Validate(); err != nil {
		return core.Record{}, err
	}

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return core.Record{}, fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	q := r.queries.WithTx(tx)
	next, err := q.NextRecordID(ctx, rec.IsGrocery)
	if err != nil {
		return core.Record{}, err
	}
	rec.ID = strconv.FormatInt(next, 10)
	if err := q.InsertRecord(ctx, rec); err != nil {
		return core.Record{}, err
	}
	if err := tx.Commit(); err != nil {
		return core.Record{}, fmt.Errorf("commit tx: %w", err)
	}

	r.logger.InfoContext(ctx, "record saved",
		log.FieldOperation, log.OpAppend,
		log.FieldRecordID, rec.ID,
		log.FieldRecordName, rec.Name,
		log.FieldGrocery, rec.IsGrocery)
	return rec, nil
}

// ListRecords returns every stored record, expenses first.
func (r *SQLiteRepository) ListRecords(ctx context.Context) ([]core.Record, error) {
	return r.queries.ListRecords(ctx)
}

// Update overwrites the stored record with the same id and re-queues it for
// sheet sync. Returns core.ErrNotFound when the id does not exist.
func (r *SQLiteRepository) Update(ctx context.Context, rec core.Record) error {
	if err := rec.Validate(); err != nil {
		return err
	}
	affected, err := r.queries.UpdateRecord(ctx, rec)
	if err != nil {
		return err
	}
	if affected == 0 {
		return fmt.Errorf("record %s: %w", rec.ID, core.ErrNotFound)
	}

	r.logger.InfoContext(ctx, "record updated",
		log.FieldOperation, log.OpUpdate,
		log.FieldRecordID, rec.ID,
		log.FieldGrocery, rec.IsGrocery)
	return nil
}

// GetRecord loads a single record for sync replay.
func (r *SQLiteRepository) GetRecord(ctx context.Context, id string, isGrocery bool) (core.Record, error) {
	numeric, err := strconv.ParseInt(id, 10, 64)
	if err != nil {
		return core.Record{}, fmt.Errorf("record id %q is not numeric: %w", id, err)
	}
	rec, err := r.queries.GetRecord(ctx, numeric, isGrocery)
	if errors.Is(err, sql.ErrNoRows) {
		return core.Record{}, fmt.Errorf("record %s: %w", id, core.ErrNotFound)
	}
	return rec, err
}

// ListBudgets returns configured budgets in sheet order.
func (r *SQLiteRepository) ListBudgets(ctx context.Context) ([]core.Budget, error) {
	return r.queries.ListBudgets(ctx)
}

// UpdateBudget overwrites an existing category budget. Returns
// core.ErrNotFound for an unknown category.
func (r *SQLiteRepository) UpdateBudget(ctx context.Context, category string, budget float64) error {
	affected, err := r.queries.UpdateBudget(ctx, category, budget)
	if err != nil {
		return err
	}
	if affected == 0 {
		return fmt.Errorf("category %s: %w", category, core.ErrNotFound)
	}
	return nil
}

// GetPendingSync returns up to limit records awaiting sheet sync.
func (r *SQLiteRepository) GetPendingSync(ctx context.Context, limit int) ([]PendingSyncRecord, error) {
	return r.queries.GetPendingSync(ctx, limit)
}

// MarkSynced flags a record as mirrored to the sheet.
func (r *SQLiteRepository) MarkSynced(ctx context.Context, id string, isGrocery bool) error {
	numeric, err := strconv.ParseInt(id, 10, 64)
	if err != nil {
		return fmt.Errorf("record id %q is not numeric: %w", id, err)
	}
	if err := r.queries.MarkSynced(ctx, numeric, isGrocery); err != nil {
		return err
	}
	r.logger.InfoContext(ctx, "record marked synced", log.FieldRecordID, id, log.FieldGrocery, isGrocery)
	return nil
}

// MarkSyncError flags a record as having failed sheet sync.
func (r *SQLiteRepository) MarkSyncError(ctx context.Context, id string, isGrocery bool) error {
	numeric, err := strconv.ParseInt(id, 10, 64)
	if err != nil {
		return fmt.Errorf("record id %q is not numeric: %w", id, err)
	}
	if err := r.queries.MarkSyncError(ctx, numeric, isGrocery); err != nil {
		return err
	}
	r.logger.WarnContext(ctx, "record marked with sync error", log.FieldRecordID, id, log.FieldGrocery, isGrocery)
	return nil
}
