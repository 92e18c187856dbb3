package storage

import (
	"context"
	"database/sql"
	"fmt"
	"strconv"
	"time"

	"github.com/pspuri91/expense-tracker/internal/core"
)

// DBTX is satisfied by both *sql.DB and *sql.Tx.
type DBTX interface {
	ExecContext(context.Context, string, ...any) (sql.Result, error)
	QueryContext(context.Context, string, ...any) (*sql.Rows, error)
	QueryRowContext(context.Context, string, ...any) *sql.Row
}

// Queries wraps the raw SQL statements against the records mirror.
type Queries struct {
	db DBTX
}

func New(db DBTX) *Queries {
	return &Queries{db: db}
}

// WithTx returns Queries bound to the transaction.
func (q *Queries) WithTx(tx *sql.Tx) *Queries {
	return &Queries{db: tx}
}

const recordColumns = `id, is_grocery, date, name, category, price, store,
	additional_details, is_long_term_buy, expected_duration, duration_unit,
	unit, quantity, sub_category, seller_rate, seller_rate_lb`

// NextRecordID returns the next id for the given tab. Ids mirror the
// spreadsheet numbering, where row 1 is the header: an empty tab yields 2.
func (q *Queries) NextRecordID(ctx context.Context, isGrocery bool) (int64, error) {
	var next int64
	err := q.db.QueryRowContext(ctx,
		`SELECT COALESCE(MAX(id), 1) + 1 FROM records WHERE is_grocery = ?`,
		isGrocery).Scan(&next)
	if err != nil {
		return 0, fmt.Errorf("next record id: %w", err)
	}
	return next, nil
}

// InsertRecord stores a record whose id has already been assigned.
func (q *Queries) InsertRecord(ctx context.Context, r core.Record) error {
	id, err := recordID(r)
	if err != nil {
		return err
	}
	_, err = q.db.ExecContext(ctx, `
		INSERT INTO records (`+recordColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		id, r.IsGrocery, r.Date.String(), r.Name, r.Category, r.Price,
		r.Store, r.AdditionalDetails, r.IsLongTermBuy, r.ExpectedDuration,
		r.DurationUnit, r.Unit, r.Quantity, r.SubCategory, r.SellerRate,
		r.SellerRateInLb)
	if err != nil {
		return fmt.Errorf("insert record: %w", err)
	}
	return nil
}

// UpdateRecord overwrites a record and re-queues it for sheet sync. A record
// whose initial append has not synced yet stays an append; anything else
// becomes an update.
func (q *Queries) UpdateRecord(ctx context.Context, r core.Record) (int64, error) {
	id, err := recordID(r)
	if err != nil {
		return 0, err
	}
	res, err := q.db.ExecContext(ctx, `
		UPDATE records SET
			date = ?, name = ?, category = ?, price = ?, store = ?,
			additional_details = ?, is_long_term_buy = ?, expected_duration = ?,
			duration_unit = ?, unit = ?, quantity = ?, sub_category = ?,
			seller_rate = ?, seller_rate_lb = ?,
			sync_op = CASE WHEN sync_status = 'pending' AND sync_op = 'append' THEN 'append' ELSE 'update' END,
			sync_status = 'pending',
			updated_at = CURRENT_TIMESTAMP
		WHERE id = ? AND is_grocery = ?`,
		r.Date.String(), r.Name, r.Category, r.Price, r.Store,
		r.AdditionalDetails, r.IsLongTermBuy, r.ExpectedDuration,
		r.DurationUnit, r.Unit, r.Quantity, r.SubCategory, r.SellerRate,
		r.SellerRateInLb, id, r.IsGrocery)
	if err != nil {
		return 0, fmt.Errorf("update record: %w", err)
	}
	return res.RowsAffected()
}

// GetRecord loads one record by id and tab.
func (q *Queries) GetRecord(ctx context.Context, id int64, isGrocery bool) (core.Record, error) {
	row := q.db.QueryRowContext(ctx,
		`SELECT `+recordColumns+` FROM records WHERE id = ? AND is_grocery = ?`,
		id, isGrocery)
	return scanRecord(row)
}

// ListRecords returns every record, expenses first, in id order.
func (q *Queries) ListRecords(ctx context.Context) ([]core.Record, error) {
	rows, err := q.db.QueryContext(ctx,
		`SELECT `+recordColumns+` FROM records ORDER BY is_grocery, id`)
	if err != nil {
		return nil, fmt.Errorf("list records: %w", err)
	}
	defer rows.Close()

	var records []core.Record
	for rows.Next() {
		r, err := scanRecord(rows)
		if err != nil {
			return nil, err
		}
		records = append(records, r)
	}
	return records, rows.Err()
}

// PendingSyncRecord is the minimal row needed to queue a sheet sync.
type PendingSyncRecord struct {
	ID        int64
	IsGrocery bool
	Op        string
	CreatedAt time.Time
}

// GetPendingSync returns records awaiting sheet sync, oldest first.
func (q *Queries) GetPendingSync(ctx context.Context, limit int) ([]PendingSyncRecord, error) {
	rows, err := q.db.QueryContext(ctx, `
		SELECT id, is_grocery, sync_op, created_at FROM records
		WHERE sync_status = 'pending'
		ORDER BY created_at
		LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("get pending sync: %w", err)
	}
	defer rows.Close()

	var pending []PendingSyncRecord
	for rows.Next() {
		var p PendingSyncRecord
		if err := rows.Scan(&p.ID, &p.IsGrocery, &p.Op, &p.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan pending sync: %w", err)
		}
		pending = append(pending, p)
	}
	return pending, rows.Err()
}

// MarkSynced flags the record as mirrored to the sheet.
func (q *Queries) MarkSynced(ctx context.Context, id int64, isGrocery bool) error {
	_, err := q.db.ExecContext(ctx, `
		UPDATE records SET sync_status = 'synced', updated_at = CURRENT_TIMESTAMP
		WHERE id = ? AND is_grocery = ?`, id, isGrocery)
	if err != nil {
		return fmt.Errorf("mark synced: %w", err)
	}
	return nil
}

// MarkSyncError flags the record as having failed sheet sync.
func (q *Queries) MarkSyncError(ctx context.Context, id int64, isGrocery bool) error {
	_, err := q.db.ExecContext(ctx, `
		UPDATE records SET sync_status = 'error', updated_at = CURRENT_TIMESTAMP
		WHERE id = ? AND is_grocery = ?`, id, isGrocery)
	if err != nil {
		return fmt.Errorf("mark sync error: %w", err)
	}
	return nil
}

// ListBudgets returns budgets in sheet order.
func (q *Queries) ListBudgets(ctx context.Context) ([]core.Budget, error) {
	rows, err := q.db.QueryContext(ctx,
		`SELECT category, budget FROM budgets ORDER BY position`)
	if err != nil {
		return nil, fmt.Errorf("list budgets: %w", err)
	}
	defer rows.Close()

	var budgets []core.Budget
	for rows.Next() {
		var b core.Budget
		if err := rows.Scan(&b.Category, &b.Budget); err != nil {
			return nil, fmt.Errorf("scan budget: %w", err)
		}
		budgets = append(budgets, b)
	}
	return budgets, rows.Err()
}

// UpdateBudget overwrites an existing category budget, reporting how many
// rows matched.
func (q *Queries) UpdateBudget(ctx context.Context, category string, budget float64) (int64, error) {
	res, err := q.db.ExecContext(ctx,
		`UPDATE budgets SET budget = ? WHERE category = ?`, budget, category)
	if err != nil {
		return 0, fmt.Errorf("update budget: %w", err)
	}
	return res.RowsAffected()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanRecord(row rowScanner) (core.Record, error) {
	var (
		r       core.Record
		id      int64
		rawDate string
	)
	err := row.Scan(&id, &r.IsGrocery, &rawDate, &r.Name, &r.Category,
		&r.Price, &r.Store, &r.AdditionalDetails, &r.IsLongTermBuy,
		&r.ExpectedDuration, &r.DurationUnit, &r.Unit, &r.Quantity,
		&r.SubCategory, &r.SellerRate, &r.SellerRateInLb)
	if err != nil {
		return core.Record{}, err
	}
	r.ID = strconv.FormatInt(id, 10)
	r.Date, err = core.ParseDate(rawDate)
	if err != nil {
		return core.Record{}, fmt.Errorf("parse stored date %q: %w", rawDate, err)
	}
	return r, nil
}

func recordID(r core.Record) (int64, error) {
	id, err := strconv.ParseInt(r.ID, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("record id %q is not numeric: %w", r.ID, err)
	}
	return id, nil
}
