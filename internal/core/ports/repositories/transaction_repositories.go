package repositories

import (
	"context"
	"time"

	"github.com/jamila-bank/backoffice-api/internal/core/domain"
	"github.com/shopspring/decimal"
)

// TransactionListFilters narrows ledger listings. Zero values mean "no filter".
// Archived rows are excluded unless IncludeArchived is set explicitly.
type TransactionListFilters struct {
	Kind            domain.TransactionKind
	Status          domain.TransactionStatus
	AccountID       string // matches source or destination
	OwnerUserID     string // matches accounts owned by this user's client
	From            *time.Time
	To              *time.Time
	IncludeArchived bool
	Limit           int
	Offset          int
}

// TransactionReader defines read operations over the ledger store.
type TransactionReader interface {
	// FindTransactionByID retrieves one ledger row by primary key.
	FindTransactionByID(ctx context.Context, transactionID string) (*domain.Transaction, error)

	// FindTransactionByNumber retrieves one ledger row by its human-facing number.
	FindTransactionByNumber(ctx context.Context, transactionNumber string) (*domain.Transaction, error)

	// ListTransactions retrieves a filtered, paginated ledger listing ordered by
	// transaction timestamp descending.
	ListTransactions(ctx context.Context, filters TransactionListFilters) ([]domain.Transaction, error)

	// ListTransactionsByAccount retrieves every validated row where the account
	// is source or destination, most recent first.
	ListTransactionsByAccount(ctx context.Context, accountID string, filters TransactionListFilters) ([]domain.Transaction, error)

	// ListValidatedBetween selects all validated rows whose timestamp falls in
	// [from, to), oldest first. Used by the weekly archival driver.
	ListValidatedBetween(ctx context.Context, from, to time.Time) ([]domain.Transaction, error)

	// GetBalance derives the account's current balance from its validated rows.
	// Returns zero when no qualifying rows exist.
	GetBalance(ctx context.Context, accountID string) (decimal.Decimal, error)

	// GetStatistics aggregates count and net balance over all validated rows.
	GetStatistics(ctx context.Context) (*domain.LedgerStatistics, error)
}

// TransactionWriter defines write operations on the ledger store.
type TransactionWriter interface {
	// SaveTransaction atomically commits a primary row and, for two-party kinds,
	// its mirror row. The source account row is locked for the duration; when
	// requireFunds is set the balance is recomputed under the lock and
	// apperrors.ErrInsufficientFunds is returned if it does not cover the
	// amount. On any failure nothing is persisted.
	SaveTransaction(ctx context.Context, primary domain.Transaction, mirror *domain.Transaction, requireFunds bool) error

	// UpdateTransactionStatus overwrites the status of a single row. Admin-only
	// escape hatch: no balance invariants are re-validated.
	UpdateTransactionStatus(ctx context.Context, transactionID string, status domain.TransactionStatus, now time.Time) error

	// DeleteTransaction removes a row by primary key.
	DeleteTransaction(ctx context.Context, transactionID string) error

	// DeleteTransactionPair removes a two-party row and its mirror in one
	// database transaction; a failure leaves both rows in place.
	DeleteTransactionPair(ctx context.Context, primaryID string, mirrorID string) error

	// MarkTransactionsArchived bulk-flips the given rows to archived status.
	MarkTransactionsArchived(ctx context.Context, transactionIDs []string, now time.Time) error
}

// TransactionRepositoryFacade combines the ledger store read and write interfaces.
type TransactionRepositoryFacade interface {
	TransactionReader
	TransactionWriter
}

// TransactionRepositoryWithTx extends the facade with transaction capabilities.
type TransactionRepositoryWithTx interface {
	TransactionRepositoryFacade
	TransactionManager
}
