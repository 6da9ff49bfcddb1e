package ports

import (
	"context"

	"github.com/jamila-bank/backoffice-api/internal/core/domain"
)

// ArchiveStore is the external document store the weekly archival driver
// exports to. Write must be safe to retry for the same week/year key: the
// driver dedupes by collection key, so a retried write lands in the same
// collection rather than under a new one.
type ArchiveStore interface {
	// Write persists the weekly summary document under a key scoped to the
	// archive's week and year, returning the stored document id.
	Write(ctx context.Context, archive domain.WeeklyArchive) (string, error)
}

// NotificationEnqueuer schedules the fire-and-forget "transaction completed"
// notification after a successful commit. Enqueue failures are logged by the
// caller and never affect transaction durability.
type NotificationEnqueuer interface {
	EnqueueTransactionCompleted(ctx context.Context, txn domain.Transaction) error
}
