// Package services holds the orchestration layer between the HTTP handlers
// and the backends: local-first record writes with queued sheet sync, and
// cached lookups over the record set.
package services

import (
	"context"
	"fmt"

	"github.com/pspuri91/expense-tracker/internal/amqp"
	"github.com/pspuri91/expense-tracker/internal/core"
	"github.com/pspuri91/expense-tracker/internal/log"
	ports "github.com/pspuri91/expense-tracker/internal/sheets"
	"github.com/pspuri91/expense-tracker/internal/storage"
)

// RecordService writes records to the local SQLite mirror and queues a sync
// message so the worker replays them into the spreadsheet. Publish failures
// never fail the request: the record is already stored locally and the
// worker's pending scan will pick it up.
type RecordService struct {
	storage    *storage.SQLiteRepository
	amqpClient *amqp.Client
	logger     *log.Logger
}

var _ ports.Store = (*RecordService)(nil)

func NewRecordService(storage *storage.SQLiteRepository, amqpClient *amqp.Client, logger *log.Logger) *RecordService {
	return &RecordService{
		storage:    storage,
		amqpClient: amqpClient,
		logger:     logger.WithComponent(log.ComponentRecord),
	}
}

// Append saves the record locally and queues its append to the sheet.
func (s *RecordService) Append(ctx context.Context, r core.Record) (core.Record, error) {
	r.SyncSellerRate()
	stored, err := s.storage.Append(ctx, r)
	if err != nil {
		return core.Record{}, fmt.Errorf("save record: %w", err)
	}

	s.publishSync(ctx, stored.ID, stored.IsGrocery, amqp.OpAppend)
	return stored, nil
}

// Update overwrites the record locally and queues its sheet update.
func (s *RecordService) Update(ctx context.Context, r core.Record) error {
	r.SyncSellerRate()
	if err := s.storage.Update(ctx, r); err != nil {
		return err
	}

	s.publishSync(ctx, r.ID, r.IsGrocery, amqp.OpUpdate)
	return nil
}

// ListRecords reads from the local mirror.
func (s *RecordService) ListRecords(ctx context.Context) ([]core.Record, error) {
	return s.storage.ListRecords(ctx)
}

// ListBudgets reads from the local mirror.
func (s *RecordService) ListBudgets(ctx context.Context) ([]core.Budget, error) {
	return s.storage.ListBudgets(ctx)
}

// UpdateBudget writes the budget locally. Budgets are configuration, not
// records, so they do not go through the sync queue.
func (s *RecordService) UpdateBudget(ctx context.Context, category string, budget float64) error {
	return s.storage.UpdateBudget(ctx, category, budget)
}

func (s *RecordService) publishSync(ctx context.Context, id string, isGrocery bool, op string) {
	if s.amqpClient == nil {
		s.logger.WarnContext(ctx, "AMQP client not available, skipping sync message",
			log.FieldRecordID, id, log.FieldOperation, op)
		return
	}
	if err := s.amqpClient.PublishRecordSync(ctx, id, isGrocery, op); err != nil {
		s.logger.ErrorContext(ctx, "failed to publish sync message",
			log.FieldRecordID, id,
			log.FieldOperation, op,
			log.FieldError, err.Error())
	}
}

// Close closes both storage and AMQP connections.
func (s *RecordService) Close() error {
	var errs []error
	if s.storage != nil {
		if err := s.storage.Close(); err != nil {
			errs = append(errs, fmt.Errorf("storage: %w", err))
		}
	}
	if s.amqpClient != nil {
		if err := s.amqpClient.Close(); err != nil {
			errs = append(errs, fmt.Errorf("amqp: %w", err))
		}
	}
	if len(errs) > 0 {
		return fmt.Errorf("close record service: %v", errs)
	}
	return nil
}
