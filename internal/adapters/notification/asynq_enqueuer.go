package notification

import (
	"context"

	"github.com/hibiken/asynq"

	"github.com/jamila-bank/backoffice-api/internal/core/domain"
	"github.com/jamila-bank/backoffice-api/internal/core/ports"
	"github.com/jamila-bank/backoffice-api/internal/jobs"
)

// AsynqEnqueuer schedules notification tasks on the shared Redis queue.
type AsynqEnqueuer struct {
	client *asynq.Client
}

// NewAsynqEnqueuer creates the queue-backed notification enqueuer.
func NewAsynqEnqueuer(client *asynq.Client) *AsynqEnqueuer {
	return &AsynqEnqueuer{client: client}
}

var _ ports.NotificationEnqueuer = (*AsynqEnqueuer)(nil)

// EnqueueTransactionCompleted schedules the post-commit notification.
func (e *AsynqEnqueuer) EnqueueTransactionCompleted(ctx context.Context, txn domain.Transaction) error {
	task, err := jobs.NewTransactionCompletedTask(txn)
	if err != nil {
		return err
	}
	_, err = e.client.EnqueueContext(ctx, task, jobs.TaskOptions(jobs.TaskTypeTransactionCompleted)...)
	return err
}

// NoopEnqueuer discards notifications. Used where no queue is configured.
type NoopEnqueuer struct{}

var _ ports.NotificationEnqueuer = NoopEnqueuer{}

func (NoopEnqueuer) EnqueueTransactionCompleted(context.Context, domain.Transaction) error {
	return nil
}
