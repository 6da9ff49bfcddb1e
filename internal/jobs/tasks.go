package jobs

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	"github.com/hibiken/asynq"
	"github.com/shopspring/decimal"

	"github.com/jamila-bank/backoffice-api/internal/core/domain"
	portssvc "github.com/jamila-bank/backoffice-api/internal/core/ports/services"
	"github.com/jamila-bank/backoffice-api/internal/middleware"
)

const (
	// QueueDefault is the queue all background tasks run on.
	QueueDefault = "default"

	// TaskTypeArchiveWeek exports one ISO week of the ledger to the archive store.
	TaskTypeArchiveWeek = "ledger:archive_week"
	// TaskTypeLifecycleSweep runs the hourly account state sweep.
	TaskTypeLifecycleSweep = "accounts:lifecycle_sweep"
	// TaskTypeTransactionCompleted delivers the post-commit notification.
	TaskTypeTransactionCompleted = "ledger:transaction_completed"
)

// ArchiveWeekPayload identifies the ISO week to export.
type ArchiveWeekPayload struct {
	WeekNumber int `json:"weekNumber"`
	Year       int `json:"year"`
}

// TransactionCompletedPayload carries the facts a notification needs, so the
// handler never has to read the ledger.
type TransactionCompletedPayload struct {
	TransactionID     string          `json:"transactionID"`
	TransactionNumber string          `json:"transactionNumber"`
	AccountID         string          `json:"accountID"`
	Kind              string          `json:"kind"`
	Amount            decimal.Decimal `json:"amount"`
	TransactedAt      time.Time       `json:"transactedAt"`
}

// NewArchiveWeekTask constructs the weekly export task.
func NewArchiveWeekTask(payload ArchiveWeekPayload) (*asynq.Task, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskTypeArchiveWeek, data), nil
}

// NewLifecycleSweepTask constructs the hourly sweep task. It carries no
// payload; the sweep derives everything from the database.
func NewLifecycleSweepTask() *asynq.Task {
	return asynq.NewTask(TaskTypeLifecycleSweep, nil)
}

// NewTransactionCompletedTask constructs the post-commit notification task.
func NewTransactionCompletedTask(txn domain.Transaction) (*asynq.Task, error) {
	data, err := json.Marshal(TransactionCompletedPayload{
		TransactionID:     txn.TransactionID,
		TransactionNumber: txn.TransactionNumber,
		AccountID:         txn.AccountID,
		Kind:              string(txn.Kind),
		Amount:            txn.Amount,
		TransactedAt:      txn.TransactedAt,
	})
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskTypeTransactionCompleted, data), nil
}

// NewArchiveWeekHandler processes TaskTypeArchiveWeek tasks. A failed export
// is returned to asynq so the retry policy kicks in; the driver keys documents
// by week and year, so a retried export is safe.
func NewArchiveWeekHandler(archival portssvc.ArchivalSvcFacade, logger *slog.Logger) asynq.HandlerFunc {
	return func(ctx context.Context, t *asynq.Task) error {
		var payload ArchiveWeekPayload
		if err := json.Unmarshal(t.Payload(), &payload); err != nil {
			return asynq.SkipRetry
		}
		ctx = middleware.WithLogger(ctx, logger.With(
			slog.String("task", TaskTypeArchiveWeek),
			slog.Int("week", payload.WeekNumber),
			slog.Int("year", payload.Year),
		))
		_, err := archival.ArchiveWeek(ctx, payload.WeekNumber, payload.Year)
		return err
	}
}

// NewLifecycleSweepHandler processes TaskTypeLifecycleSweep tasks. Which
// transition the sweep applies is a deployment decision; exactly one is live
// at a time.
func NewLifecycleSweepHandler(lifecycle portssvc.LifecycleSvcFacade, unblockInsteadOfArchive bool, logger *slog.Logger) asynq.HandlerFunc {
	return func(ctx context.Context, t *asynq.Task) error {
		ctx = middleware.WithLogger(ctx, logger.With(slog.String("task", TaskTypeLifecycleSweep)))
		var err error
		if unblockInsteadOfArchive {
			_, err = lifecycle.RunBlockedToActiveSweep(ctx)
		} else {
			_, err = lifecycle.RunBlockedToArchivedSweep(ctx)
		}
		return err
	}
}

// NewTransactionCompletedHandler processes post-commit notifications. Delivery
// is a log line here; a real channel (SMS, email) plugs in behind the same
// task type.
func NewTransactionCompletedHandler(logger *slog.Logger) asynq.HandlerFunc {
	return func(ctx context.Context, t *asynq.Task) error {
		var payload TransactionCompletedPayload
		if err := json.Unmarshal(t.Payload(), &payload); err != nil {
			return asynq.SkipRetry
		}
		logger.Info("Transaction completed notification",
			slog.String("transaction_id", payload.TransactionID),
			slog.String("transaction_number", payload.TransactionNumber),
			slog.String("kind", payload.Kind),
			slog.String("amount", payload.Amount.String()),
		)
		return nil
	}
}
