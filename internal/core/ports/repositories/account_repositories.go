package repositories

import (
	"context"
	"time"

	"github.com/jamila-bank/backoffice-api/internal/core/domain"
	"github.com/jackc/pgx/v5"
)

// AccountReader defines read operations for the account directory.
type AccountReader interface {
	// FindAccountByID retrieves an account by its unique identifier.
	// Archived accounts are returned too; callers decide what to do with them.
	FindAccountByID(ctx context.Context, accountID string) (*domain.Account, error)

	// FindAccountByNumber retrieves an account by its human-facing number.
	FindAccountByNumber(ctx context.Context, accountNumber string) (*domain.Account, error)

	// FindActiveAccountByOwner retrieves the owner's first active account, if any.
	FindActiveAccountByOwner(ctx context.Context, ownerID string) (*domain.Account, error)

	// ListAccountsByOwner retrieves every non-archived account of one owner.
	ListAccountsByOwner(ctx context.Context, ownerID string, includeArchived bool) ([]domain.Account, error)

	// ListAccounts retrieves a paginated account listing, optionally narrowed to
	// one status. Archived accounts are excluded unless includeArchived is set;
	// this is an explicit parameter, not an implicit query scope.
	ListAccounts(ctx context.Context, status domain.AccountStatus, includeArchived bool, limit int, offset int) ([]domain.Account, error)

	// ListBlockedWithExpiredWindow selects the candidates of the blocked->archived
	// sweep: blocked accounts whose block_end has elapsed.
	ListBlockedWithExpiredWindow(ctx context.Context, now time.Time) ([]domain.Account, error)

	// ListBlockedSavingsToUnblock selects the candidates of the blocked->active
	// sweep: blocked savings accounts whose block_end has elapsed.
	ListBlockedSavingsToUnblock(ctx context.Context, now time.Time) ([]domain.Account, error)
}

// AccountWriter defines write operations for the account directory.
type AccountWriter interface {
	// SaveAccount persists a new account.
	SaveAccount(ctx context.Context, account domain.Account) error

	// UpdateAccount updates mutable account details (status, block window).
	// The account number is immutable and never written here.
	UpdateAccount(ctx context.Context, account domain.Account) error

	// ArchiveAccount moves one blocked account to archived and flips every one
	// of its transactions to archived, in a single database transaction guarded
	// by a row lock. It is a no-op (returns false) if the account no longer
	// matches the sweep condition, which makes sweep re-runs safe.
	ArchiveAccount(ctx context.Context, accountID string, now time.Time) (bool, error)

	// UnblockAccount moves one blocked savings account back to active and clears
	// its block window fields, under the same row-lock discipline as
	// ArchiveAccount. Returns false when the account no longer qualifies.
	UnblockAccount(ctx context.Context, accountID string, now time.Time) (bool, error)

	// CloseAccount archives an account and every one of its transactions in a
	// single database transaction, regardless of block window. Archived
	// accounts are terminal and yield ErrInvalidState.
	CloseAccount(ctx context.Context, accountID string, now time.Time) error
}

// AccountTransactionSupport exposes the row-locking read used inside the
// transaction engine's atomic commit.
type AccountTransactionSupport interface {
	// FindAccountByIDForUpdate selects an account and locks its row within tx.
	FindAccountByIDForUpdate(ctx context.Context, tx pgx.Tx, accountID string) (*domain.Account, error)
}

// AccountRepositoryFacade combines all account-related repository interfaces.
type AccountRepositoryFacade interface {
	AccountReader
	AccountWriter
	AccountTransactionSupport
}

// AccountRepositoryWithTx extends AccountRepositoryFacade with transaction capabilities.
type AccountRepositoryWithTx interface {
	AccountRepositoryFacade
	TransactionManager
}
