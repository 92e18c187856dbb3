// Package worker replays locally stored records into the spreadsheet. It
// consumes sync messages from AMQP and, as a safety net, periodically scans
// the database for pending rows in case messages were lost.
package worker

import (
	"context"
	"errors"
	"fmt"

	"github.com/pspuri91/expense-tracker/internal/amqp"
	"github.com/pspuri91/expense-tracker/internal/core"
	"github.com/pspuri91/expense-tracker/internal/log"
	"github.com/pspuri91/expense-tracker/internal/sheets"
	"github.com/pspuri91/expense-tracker/internal/storage"
)

// SyncWorker mirrors records from the SQLite database to the spreadsheet.
type SyncWorker struct {
	storage   *storage.SQLiteRepository
	appender  sheets.RecordAppender
	updater   sheets.RecordUpdater
	batchSize int
	logger    *log.Logger
}

func NewSyncWorker(store *storage.SQLiteRepository, appender sheets.RecordAppender, updater sheets.RecordUpdater, batchSize int, logger *log.Logger) *SyncWorker {
	return &SyncWorker{
		storage:   store,
		appender:  appender,
		updater:   updater,
		batchSize: batchSize,
		logger:    logger.WithComponent(log.ComponentWorker),
	}
}

// HandleSyncMessage processes a single sync message. The message carries only
// the record identity; the current row is always read from the database, so a
// message replayed after further edits still writes the latest state.
// Returning an error requeues the delivery.
func (w *SyncWorker) HandleSyncMessage(ctx context.Context, msg *amqp.RecordSyncMessage) error {
	w.logger.InfoContext(ctx, "processing sync message",
		log.FieldRecordID, msg.ID,
		log.FieldGrocery, msg.IsGrocery,
		log.FieldOperation, msg.Op)

	rec, err := w.storage.GetRecord(ctx, msg.ID, msg.IsGrocery)
	if err != nil {
		if errors.Is(err, core.ErrNotFound) {
			// the row is gone locally; nothing to mirror
			w.logger.WarnContext(ctx, "record missing locally, dropping sync message",
				log.FieldRecordID, msg.ID)
			return nil
		}
		return fmt.Errorf("get record from storage: %w", err)
	}

	if err := w.syncRecordToSheet(ctx, rec, msg.Op); err != nil {
		return fmt.Errorf("sync record to sheet: %w", err)
	}
	return nil
}

// ProcessPendingRecords replays records that never made it to the sheet.
// This is the backup path for lost AMQP messages.
func (w *SyncWorker) ProcessPendingRecords(ctx context.Context) error {
	return w.processPending(ctx, w.batchSize)
}

// StartupSyncCheck drains the pending backlog once at worker startup, with a
// larger batch to recover from downtime.
func (w *SyncWorker) StartupSyncCheck(ctx context.Context) error {
	return w.processPending(ctx, w.batchSize*5)
}

func (w *SyncWorker) processPending(ctx context.Context, limit int) error {
	pending, err := w.storage.GetPendingSync(ctx, limit)
	if err != nil {
		return fmt.Errorf("get pending records: %w", err)
	}
	if len(pending) == 0 {
		return nil
	}

	w.logger.InfoContext(ctx, "processing pending records", "count", len(pending))

	synced := 0
	failed := 0
	for _, p := range pending {
		id := fmt.Sprintf("%d", p.ID)
		rec, err := w.storage.GetRecord(ctx, id, p.IsGrocery)
		if err != nil {
			w.logger.ErrorContext(ctx, "failed to load pending record",
				log.FieldRecordID, id, log.FieldError, err.Error())
			if err := w.storage.MarkSyncError(ctx, id, p.IsGrocery); err != nil {
				w.logger.ErrorContext(ctx, "failed to mark sync error",
					log.FieldRecordID, id, log.FieldError, err.Error())
			}
			failed++
			continue
		}

		if err := w.syncRecordToSheet(ctx, rec, p.Op); err != nil {
			w.logger.ErrorContext(ctx, "failed to sync pending record",
				log.FieldRecordID, id, log.FieldError, err.Error())
			failed++
			continue
		}
		synced++
	}

	w.logger.InfoContext(ctx, "pending scan completed",
		"total", len(pending), "synced", synced, "errors", failed)
	return nil
}

// syncRecordToSheet writes the record to the spreadsheet and marks it synced.
// An update whose row has vanished from the sheet falls back to an append so
// the mirror converges.
func (w *SyncWorker) syncRecordToSheet(ctx context.Context, rec core.Record, op string) error {
	var err error
	switch op {
	case amqp.OpUpdate:
		err = w.updater.Update(ctx, rec)
		if errors.Is(err, core.ErrNotFound) {
			w.logger.WarnContext(ctx, "sheet row missing for update, appending instead",
				log.FieldRecordID, rec.ID)
			_, err = w.appender.Append(ctx, rec)
		}
	default:
		_, err = w.appender.Append(ctx, rec)
	}
	if err != nil {
		return err
	}

	if err := w.storage.MarkSynced(ctx, rec.ID, rec.IsGrocery); err != nil {
		return fmt.Errorf("mark synced: %w", err)
	}
	return nil
}
