package jobs

import (
	"context"
	"log/slog"
	"time"

	"github.com/hibiken/asynq"

	portssvc "github.com/jamila-bank/backoffice-api/internal/core/ports/services"
	"github.com/jamila-bank/backoffice-api/pkg/config"
)

// archiveMaxRetries and archiveRetryDelays match the export retry policy:
// three attempts with growing backoff before the task parks in the dead queue.
const archiveMaxRetries = 3

var archiveRetryDelays = []time.Duration{
	60 * time.Second,
	300 * time.Second,
	600 * time.Second,
}

// retryDelay maps the attempt count to the fixed backoff schedule. Attempts
// beyond the schedule reuse the last delay.
func retryDelay(n int, _ error, _ *asynq.Task) time.Duration {
	if n < 1 {
		n = 1
	}
	if n > len(archiveRetryDelays) {
		n = len(archiveRetryDelays)
	}
	return archiveRetryDelays[n-1]
}

// Worker wraps the asynq server processing background tasks.
type Worker struct {
	server *asynq.Server
	mux    *asynq.ServeMux
	logger *slog.Logger
}

// NewWorker constructs the background task processor with every handler
// registered.
func NewWorker(
	redisOpts asynq.RedisClientOpt,
	services *portssvc.ServiceContainer,
	cfg *config.AppConfig,
	logger *slog.Logger,
) *Worker {
	srv := asynq.NewServer(redisOpts, asynq.Config{
		Concurrency:    5,
		Queues:         map[string]int{QueueDefault: 1},
		RetryDelayFunc: retryDelay,
	})

	mux := asynq.NewServeMux()
	mux.HandleFunc(TaskTypeArchiveWeek, NewArchiveWeekHandler(services.Archival, logger))
	mux.HandleFunc(TaskTypeLifecycleSweep, NewLifecycleSweepHandler(services.Lifecycle, cfg.UnblockInsteadOfArchive, logger))
	mux.HandleFunc(TaskTypeTransactionCompleted, NewTransactionCompletedHandler(logger))

	return &Worker{server: srv, mux: mux, logger: logger}
}

// Run processes tasks until the context is cancelled.
func (w *Worker) Run(ctx context.Context) error {
	errCh := make(chan error, 1)
	go func() {
		errCh <- w.server.Run(w.mux)
	}()
	select {
	case <-ctx.Done():
		w.server.Shutdown()
		return ctx.Err()
	case err := <-errCh:
		return err
	}
}

// TaskOptions returns the enqueue options for a task type. The archive export
// is the only type with a bounded retry count; everything else keeps the
// asynq default.
func TaskOptions(taskType string) []asynq.Option {
	switch taskType {
	case TaskTypeArchiveWeek:
		return []asynq.Option{asynq.Queue(QueueDefault), asynq.MaxRetry(archiveMaxRetries)}
	default:
		return []asynq.Option{asynq.Queue(QueueDefault)}
	}
}
