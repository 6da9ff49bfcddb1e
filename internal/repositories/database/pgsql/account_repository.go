package pgsql

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jamila-bank/backoffice-api/internal/apperrors"
	"github.com/jamila-bank/backoffice-api/internal/core/domain"
	portsrepo "github.com/jamila-bank/backoffice-api/internal/core/ports/repositories"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type PgxAccountRepository struct {
	BaseRepository
}

// newPgxAccountRepository creates the pgx-backed account directory.
func newPgxAccountRepository(pool *pgxpool.Pool) portsrepo.AccountRepositoryWithTx {
	return &PgxAccountRepository{BaseRepository: BaseRepository{Pool: pool}}
}

var _ portsrepo.AccountRepositoryWithTx = (*PgxAccountRepository)(nil)

const accountColumns = `account_id, account_number, owner_id, account_kind, status, opened_at, block_start, block_end, block_duration_days, created_at, last_updated_at`

func scanAccount(row pgx.Row) (*domain.Account, error) {
	var acc domain.Account
	err := row.Scan(
		&acc.AccountID,
		&acc.AccountNumber,
		&acc.OwnerID,
		&acc.Kind,
		&acc.Status,
		&acc.OpenedAt,
		&acc.BlockStart,
		&acc.BlockEnd,
		&acc.BlockDurationDays,
		&acc.CreatedAt,
		&acc.LastUpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, fmt.Errorf("failed to scan account: %w", err)
	}
	return &acc, nil
}

// SaveAccount inserts a new account row.
func (r *PgxAccountRepository) SaveAccount(ctx context.Context, account domain.Account) error {
	query := `
		INSERT INTO accounts (account_id, account_number, owner_id, account_kind, status, opened_at, block_start, block_end, block_duration_days, created_at, last_updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11);
	`
	_, err := r.Pool.Exec(ctx, query,
		account.AccountID,
		account.AccountNumber,
		account.OwnerID,
		account.Kind,
		account.Status,
		account.OpenedAt,
		account.BlockStart,
		account.BlockEnd,
		account.BlockDurationDays,
		account.CreatedAt,
		account.LastUpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("account number %s: %w", account.AccountNumber, apperrors.ErrDuplicate)
		}
		return fmt.Errorf("failed to save account %s: %w", account.AccountID, err)
	}
	return nil
}

// UpdateAccount updates the mutable account fields. The account number is
// immutable once assigned and is deliberately absent from the SET list.
func (r *PgxAccountRepository) UpdateAccount(ctx context.Context, account domain.Account) error {
	query := `
		UPDATE accounts
		SET account_kind = $2, status = $3, block_start = $4, block_end = $5, block_duration_days = $6, last_updated_at = $7
		WHERE account_id = $1;
	`
	tag, err := r.Pool.Exec(ctx, query,
		account.AccountID,
		account.Kind,
		account.Status,
		account.BlockStart,
		account.BlockEnd,
		account.BlockDurationDays,
		account.LastUpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to update account %s: %w", account.AccountID, err)
	}
	if tag.RowsAffected() == 0 {
		return apperrors.ErrNotFound
	}
	return nil
}

// FindAccountByID retrieves an account by its primary key.
func (r *PgxAccountRepository) FindAccountByID(ctx context.Context, accountID string) (*domain.Account, error) {
	query := `SELECT ` + accountColumns + ` FROM accounts WHERE account_id = $1;`
	return scanAccount(r.Pool.QueryRow(ctx, query, accountID))
}

// FindAccountByNumber retrieves an account by its human-facing number.
func (r *PgxAccountRepository) FindAccountByNumber(ctx context.Context, accountNumber string) (*domain.Account, error) {
	query := `SELECT ` + accountColumns + ` FROM accounts WHERE account_number = $1;`
	return scanAccount(r.Pool.QueryRow(ctx, query, accountNumber))
}

// FindActiveAccountByOwner retrieves the owner's oldest active account.
func (r *PgxAccountRepository) FindActiveAccountByOwner(ctx context.Context, ownerID string) (*domain.Account, error) {
	query := `SELECT ` + accountColumns + ` FROM accounts WHERE owner_id = $1 AND status = 'active' ORDER BY opened_at ASC LIMIT 1;`
	return scanAccount(r.Pool.QueryRow(ctx, query, ownerID))
}

// ListAccountsByOwner retrieves every account of one owner, oldest first.
func (r *PgxAccountRepository) ListAccountsByOwner(ctx context.Context, ownerID string, includeArchived bool) ([]domain.Account, error) {
	query := `SELECT ` + accountColumns + ` FROM accounts WHERE owner_id = $1`
	if !includeArchived {
		query += ` AND status != 'archived'`
	}
	query += ` ORDER BY opened_at ASC;`
	rows, err := r.Pool.Query(ctx, query, ownerID)
	if err != nil {
		return nil, fmt.Errorf("failed to list accounts for owner %s: %w", ownerID, err)
	}
	defer rows.Close()
	return collectAccounts(rows)
}

// FindAccountByIDForUpdate selects an account and locks its row within tx.
func (r *PgxAccountRepository) FindAccountByIDForUpdate(ctx context.Context, tx pgx.Tx, accountID string) (*domain.Account, error) {
	query := `SELECT ` + accountColumns + ` FROM accounts WHERE account_id = $1 FOR UPDATE;`
	return scanAccount(tx.QueryRow(ctx, query, accountID))
}

// ListAccounts retrieves a paginated listing, newest first. Archived accounts
// are excluded unless includeArchived is set or status names them directly.
func (r *PgxAccountRepository) ListAccounts(ctx context.Context, status domain.AccountStatus, includeArchived bool, limit int, offset int) ([]domain.Account, error) {
	query := `SELECT ` + accountColumns + ` FROM accounts`
	args := []any{}
	where := ""

	switch {
	case status != "":
		args = append(args, status)
		where = ` WHERE status = $1`
	case !includeArchived:
		where = ` WHERE status != 'archived'`
	}

	args = append(args, limit, offset)
	query += where + fmt.Sprintf(` ORDER BY created_at DESC LIMIT $%d OFFSET $%d;`, len(args)-1, len(args))

	rows, err := r.Pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list accounts: %w", err)
	}
	defer rows.Close()
	return collectAccounts(rows)
}

// ListBlockedWithExpiredWindow selects the blocked->archived sweep candidates.
func (r *PgxAccountRepository) ListBlockedWithExpiredWindow(ctx context.Context, now time.Time) ([]domain.Account, error) {
	query := `SELECT ` + accountColumns + ` FROM accounts WHERE status = 'blocked' AND block_end IS NOT NULL AND block_end < $1;`
	rows, err := r.Pool.Query(ctx, query, now)
	if err != nil {
		return nil, fmt.Errorf("failed to list blocked accounts with expired window: %w", err)
	}
	defer rows.Close()
	return collectAccounts(rows)
}

// ListBlockedSavingsToUnblock selects the blocked->active sweep candidates.
func (r *PgxAccountRepository) ListBlockedSavingsToUnblock(ctx context.Context, now time.Time) ([]domain.Account, error) {
	query := `SELECT ` + accountColumns + ` FROM accounts WHERE status = 'blocked' AND account_kind = 'savings' AND block_end IS NOT NULL AND block_end <= $1;`
	rows, err := r.Pool.Query(ctx, query, now)
	if err != nil {
		return nil, fmt.Errorf("failed to list blocked savings accounts: %w", err)
	}
	defer rows.Close()
	return collectAccounts(rows)
}

func collectAccounts(rows pgx.Rows) ([]domain.Account, error) {
	accounts := make([]domain.Account, 0)
	for rows.Next() {
		acc, err := scanAccount(rows)
		if err != nil {
			return nil, err
		}
		accounts = append(accounts, *acc)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate accounts: %w", err)
	}
	return accounts, nil
}

// ArchiveAccount moves one blocked account with an elapsed window to archived
// and flips all of its transactions to archived, inside a single database
// transaction. The row lock re-checks the sweep condition so that concurrent
// or repeated sweeps apply the transition exactly once.
func (r *PgxAccountRepository) ArchiveAccount(ctx context.Context, accountID string, now time.Time) (bool, error) {
	tx, err := r.Begin(ctx)
	if err != nil {
		return false, err
	}
	defer r.Rollback(ctx, tx)

	acc, err := r.FindAccountByIDForUpdate(ctx, tx, accountID)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return false, nil
		}
		return false, err
	}
	if !acc.BlockExpired(now) {
		return false, nil
	}

	if _, err := tx.Exec(ctx,
		`UPDATE accounts SET status = 'archived', last_updated_at = $2 WHERE account_id = $1;`,
		accountID, now,
	); err != nil {
		return false, fmt.Errorf("failed to archive account %s: %w", accountID, err)
	}

	if _, err := tx.Exec(ctx,
		`UPDATE transactions SET status = 'archived', last_updated_at = $2 WHERE account_id = $1;`,
		accountID, now,
	); err != nil {
		return false, fmt.Errorf("failed to archive transactions of account %s: %w", accountID, err)
	}

	if err := r.Commit(ctx, tx); err != nil {
		return false, err
	}
	return true, nil
}

// CloseAccount archives an account and flips all of its transactions to
// archived, inside one database transaction. Unlike ArchiveAccount this is an
// operator action and does not depend on a block window; only an already
// archived account is rejected.
func (r *PgxAccountRepository) CloseAccount(ctx context.Context, accountID string, now time.Time) error {
	tx, err := r.Begin(ctx)
	if err != nil {
		return err
	}
	defer r.Rollback(ctx, tx)

	acc, err := r.FindAccountByIDForUpdate(ctx, tx, accountID)
	if err != nil {
		return err
	}
	if acc.Status == domain.StatusArchived {
		return fmt.Errorf("account %s is already archived: %w", accountID, apperrors.ErrInvalidState)
	}

	if _, err := tx.Exec(ctx,
		`UPDATE accounts SET status = 'archived', last_updated_at = $2 WHERE account_id = $1;`,
		accountID, now,
	); err != nil {
		return fmt.Errorf("failed to close account %s: %w", accountID, err)
	}

	if _, err := tx.Exec(ctx,
		`UPDATE transactions SET status = 'archived', last_updated_at = $2 WHERE account_id = $1;`,
		accountID, now,
	); err != nil {
		return fmt.Errorf("failed to archive transactions of account %s: %w", accountID, err)
	}

	return r.Commit(ctx, tx)
}

// UnblockAccount moves one blocked savings account with an elapsed window back
// to active and clears the block window fields, under the same row-lock
// discipline as ArchiveAccount.
func (r *PgxAccountRepository) UnblockAccount(ctx context.Context, accountID string, now time.Time) (bool, error) {
	tx, err := r.Begin(ctx)
	if err != nil {
		return false, err
	}
	defer r.Rollback(ctx, tx)

	acc, err := r.FindAccountByIDForUpdate(ctx, tx, accountID)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return false, nil
		}
		return false, err
	}
	if acc.Status != domain.StatusBlocked || acc.Kind != domain.KindSavings ||
		acc.BlockEnd == nil || acc.BlockEnd.After(now) {
		return false, nil
	}

	if _, err := tx.Exec(ctx,
		`UPDATE accounts SET status = 'active', block_start = NULL, block_end = NULL, block_duration_days = NULL, last_updated_at = $2 WHERE account_id = $1;`,
		accountID, now,
	); err != nil {
		return false, fmt.Errorf("failed to unblock account %s: %w", accountID, err)
	}

	if err := r.Commit(ctx, tx); err != nil {
		return false, err
	}
	return true, nil
}
