package pgsql

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/jamila-bank/backoffice-api/internal/apperrors"
	"github.com/jamila-bank/backoffice-api/internal/core/domain"
	portsrepo "github.com/jamila-bank/backoffice-api/internal/core/ports/repositories"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"
)

type PgxTransactionRepository struct {
	BaseRepository
	accountRepo portsrepo.AccountRepositoryFacade
}

// newPgxTransactionRepository creates the pgx-backed ledger store.
func newPgxTransactionRepository(pool *pgxpool.Pool, accountRepo portsrepo.AccountRepositoryFacade) portsrepo.TransactionRepositoryWithTx {
	return &PgxTransactionRepository{
		BaseRepository: BaseRepository{Pool: pool},
		accountRepo:    accountRepo,
	}
}

var _ portsrepo.TransactionRepositoryWithTx = (*PgxTransactionRepository)(nil)

const transactionColumns = `transaction_id, transaction_number, account_id, destination_account_id, kind, amount, description, status, transacted_at, created_at, last_updated_at`

// balanceQuery derives a balance from the validated rows where the account is
// the source: deposits credit, every other kind debits. Destination-side rows
// carry no contribution; the receiving side of a transfer is credited by its
// own mirror deposit row.
const balanceQuery = `
	SELECT COALESCE(SUM(CASE WHEN kind = 'deposit' THEN amount ELSE -amount END), 0)
	FROM transactions
	WHERE account_id = $1 AND status = 'validated';
`

func scanTransaction(row pgx.Row) (*domain.Transaction, error) {
	var txn domain.Transaction
	var description *string
	err := row.Scan(
		&txn.TransactionID,
		&txn.TransactionNumber,
		&txn.AccountID,
		&txn.DestinationAccountID,
		&txn.Kind,
		&txn.Amount,
		&description,
		&txn.Status,
		&txn.TransactedAt,
		&txn.CreatedAt,
		&txn.LastUpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, fmt.Errorf("failed to scan transaction: %w", err)
	}
	if description != nil {
		txn.Description = *description
	}
	return &txn, nil
}

func collectTransactions(rows pgx.Rows) ([]domain.Transaction, error) {
	txns := make([]domain.Transaction, 0)
	for rows.Next() {
		txn, err := scanTransaction(rows)
		if err != nil {
			return nil, err
		}
		txns = append(txns, *txn)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate transactions: %w", err)
	}
	return txns, nil
}

func insertTransactionTx(ctx context.Context, tx pgx.Tx, txn domain.Transaction) error {
	query := `
		INSERT INTO transactions (transaction_id, transaction_number, account_id, destination_account_id, kind, amount, description, status, transacted_at, created_at, last_updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11);
	`
	var description *string
	if txn.Description != "" {
		description = &txn.Description
	}
	_, err := tx.Exec(ctx, query,
		txn.TransactionID,
		txn.TransactionNumber,
		txn.AccountID,
		txn.DestinationAccountID,
		txn.Kind,
		txn.Amount,
		description,
		txn.Status,
		txn.TransactedAt,
		txn.CreatedAt,
		txn.LastUpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("transaction number %s: %w", txn.TransactionNumber, apperrors.ErrDuplicate)
		}
		return fmt.Errorf("failed to insert transaction %s: %w", txn.TransactionID, err)
	}
	return nil
}

// SaveTransaction commits the primary row and, when present, its mirror as one
// database transaction. The source account row (and the destination row for
// two-party movements) is locked first, so a concurrent debit cannot slip in
// between the funds check and the insert, and a lifecycle sweep cannot archive
// the account mid-commit.
func (r *PgxTransactionRepository) SaveTransaction(ctx context.Context, primary domain.Transaction, mirror *domain.Transaction, requireFunds bool) error {
	tx, err := r.Begin(ctx)
	if err != nil {
		return err
	}
	defer r.Rollback(ctx, tx)

	// Lock in deterministic order to avoid deadlocks between crossing transfers.
	lockIDs := []string{primary.AccountID}
	if mirror != nil {
		if mirror.AccountID < primary.AccountID {
			lockIDs = []string{mirror.AccountID, primary.AccountID}
		} else {
			lockIDs = append(lockIDs, mirror.AccountID)
		}
	}
	var source *domain.Account
	for _, id := range lockIDs {
		acc, err := r.accountRepo.FindAccountByIDForUpdate(ctx, tx, id)
		if err != nil {
			return fmt.Errorf("failed to lock account %s: %w", id, err)
		}
		if id == primary.AccountID {
			source = acc
		}
	}

	// The account may have been blocked or archived since the pre-validation
	// read; the lock makes this re-check authoritative.
	if !source.IsActive() {
		return fmt.Errorf("account %s is %s: %w", source.AccountID, source.Status, apperrors.ErrInvalidState)
	}

	if requireFunds {
		balance, err := getBalance(ctx, tx, primary.AccountID)
		if err != nil {
			return err
		}
		if balance.LessThan(primary.Amount) {
			return fmt.Errorf("balance %s below amount %s: %w", balance, primary.Amount, apperrors.ErrInsufficientFunds)
		}
	}

	if err := insertTransactionTx(ctx, tx, primary); err != nil {
		return err
	}
	if mirror != nil {
		if err := insertTransactionTx(ctx, tx, *mirror); err != nil {
			return err
		}
	}

	return r.Commit(ctx, tx)
}

// FindTransactionByID retrieves one ledger row by primary key.
func (r *PgxTransactionRepository) FindTransactionByID(ctx context.Context, transactionID string) (*domain.Transaction, error) {
	query := `SELECT ` + transactionColumns + ` FROM transactions WHERE transaction_id = $1;`
	return scanTransaction(r.Pool.QueryRow(ctx, query, transactionID))
}

// FindTransactionByNumber retrieves one ledger row by its human-facing number.
func (r *PgxTransactionRepository) FindTransactionByNumber(ctx context.Context, transactionNumber string) (*domain.Transaction, error) {
	query := `SELECT ` + transactionColumns + ` FROM transactions WHERE transaction_number = $1;`
	return scanTransaction(r.Pool.QueryRow(ctx, query, transactionNumber))
}

// ListTransactions retrieves a filtered ledger listing, newest first.
func (r *PgxTransactionRepository) ListTransactions(ctx context.Context, filters portsrepo.TransactionListFilters) ([]domain.Transaction, error) {
	var conditions []string
	var args []any

	arg := func(v any) string {
		args = append(args, v)
		return "$" + strconv.Itoa(len(args))
	}

	if filters.Kind != "" {
		conditions = append(conditions, "kind = "+arg(filters.Kind))
	}
	if filters.Status != "" {
		conditions = append(conditions, "status = "+arg(filters.Status))
	} else if !filters.IncludeArchived {
		conditions = append(conditions, "status != 'archived'")
	}
	if filters.AccountID != "" {
		p := arg(filters.AccountID)
		conditions = append(conditions, "(account_id = "+p+" OR destination_account_id = "+p+")")
	}
	if filters.OwnerUserID != "" {
		p := arg(filters.OwnerUserID)
		conditions = append(conditions, `EXISTS (
			SELECT 1 FROM accounts a
			JOIN clients c ON c.client_id = a.owner_id
			WHERE c.user_id = `+p+` AND (a.account_id = transactions.account_id OR a.account_id = transactions.destination_account_id)
		)`)
	}
	if filters.From != nil {
		conditions = append(conditions, "transacted_at >= "+arg(*filters.From))
	}
	if filters.To != nil {
		conditions = append(conditions, "transacted_at < "+arg(*filters.To))
	}

	query := `SELECT ` + transactionColumns + ` FROM transactions`
	if len(conditions) > 0 {
		query += " WHERE " + strings.Join(conditions, " AND ")
	}
	query += " ORDER BY transacted_at DESC"

	limit := filters.Limit
	if limit <= 0 {
		limit = 10
	}
	query += " LIMIT " + arg(limit) + " OFFSET " + arg(filters.Offset) + ";"

	rows, err := r.Pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list transactions: %w", err)
	}
	defer rows.Close()
	return collectTransactions(rows)
}

// ListTransactionsByAccount retrieves every validated row touching the account,
// most recent first.
func (r *PgxTransactionRepository) ListTransactionsByAccount(ctx context.Context, accountID string, filters portsrepo.TransactionListFilters) ([]domain.Transaction, error) {
	query := `SELECT ` + transactionColumns + `
		FROM transactions
		WHERE (account_id = $1 OR destination_account_id = $1) AND status = 'validated'`
	args := []any{accountID}
	if filters.Kind != "" {
		args = append(args, filters.Kind)
		query += ` AND kind = $2`
	}
	query += ` ORDER BY transacted_at DESC;`

	rows, err := r.Pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list transactions for account %s: %w", accountID, err)
	}
	defer rows.Close()
	return collectTransactions(rows)
}

// ListValidatedBetween selects all validated rows with transacted_at in [from, to), oldest first.
func (r *PgxTransactionRepository) ListValidatedBetween(ctx context.Context, from, to time.Time) ([]domain.Transaction, error) {
	query := `SELECT ` + transactionColumns + `
		FROM transactions
		WHERE status = 'validated' AND transacted_at >= $1 AND transacted_at < $2
		ORDER BY transacted_at ASC;`
	rows, err := r.Pool.Query(ctx, query, from, to)
	if err != nil {
		return nil, fmt.Errorf("failed to list validated transactions between %s and %s: %w", from, to, err)
	}
	defer rows.Close()
	return collectTransactions(rows)
}

func getBalance(ctx context.Context, q queryRower, accountID string) (decimal.Decimal, error) {
	var balance decimal.Decimal
	if err := q.QueryRow(ctx, balanceQuery, accountID).Scan(&balance); err != nil {
		return decimal.Zero, fmt.Errorf("failed to compute balance for account %s: %w", accountID, err)
	}
	return balance, nil
}

// GetBalance derives the account's current balance from its validated rows.
func (r *PgxTransactionRepository) GetBalance(ctx context.Context, accountID string) (decimal.Decimal, error) {
	return getBalance(ctx, r.Pool, accountID)
}

// GetStatistics aggregates count and net balance over all validated rows.
func (r *PgxTransactionRepository) GetStatistics(ctx context.Context) (*domain.LedgerStatistics, error) {
	query := `
		SELECT COUNT(*),
			COALESCE(SUM(CASE WHEN kind = 'deposit' THEN amount ELSE 0 END), 0)
			- COALESCE(SUM(CASE WHEN kind IN ('withdrawal', 'transfer', 'payment') THEN amount ELSE 0 END), 0)
		FROM transactions
		WHERE status = 'validated';
	`
	var stats domain.LedgerStatistics
	if err := r.Pool.QueryRow(ctx, query).Scan(&stats.TotalTransactions, &stats.NetBalance); err != nil {
		return nil, fmt.Errorf("failed to compute ledger statistics: %w", err)
	}
	return &stats, nil
}

// UpdateTransactionStatus overwrites a row's status without re-validating
// balance invariants. Admin-only escape hatch.
func (r *PgxTransactionRepository) UpdateTransactionStatus(ctx context.Context, transactionID string, status domain.TransactionStatus, now time.Time) error {
	tag, err := r.Pool.Exec(ctx,
		`UPDATE transactions SET status = $2, last_updated_at = $3 WHERE transaction_id = $1;`,
		transactionID, status, now,
	)
	if err != nil {
		return fmt.Errorf("failed to update status of transaction %s: %w", transactionID, err)
	}
	if tag.RowsAffected() == 0 {
		return apperrors.ErrNotFound
	}
	return nil
}

// DeleteTransaction removes a row by primary key.
func (r *PgxTransactionRepository) DeleteTransaction(ctx context.Context, transactionID string) error {
	tag, err := r.Pool.Exec(ctx, `DELETE FROM transactions WHERE transaction_id = $1;`, transactionID)
	if err != nil {
		return fmt.Errorf("failed to delete transaction %s: %w", transactionID, err)
	}
	if tag.RowsAffected() == 0 {
		return apperrors.ErrNotFound
	}
	return nil
}

// DeleteTransactionPair removes a two-party row and its mirror inside one
// database transaction. The mirror may already be gone; only a missing
// primary row is an error.
func (r *PgxTransactionRepository) DeleteTransactionPair(ctx context.Context, primaryID string, mirrorID string) error {
	tx, err := r.Begin(ctx)
	if err != nil {
		return err
	}
	defer r.Rollback(ctx, tx)

	tag, err := tx.Exec(ctx, `DELETE FROM transactions WHERE transaction_id = $1;`, primaryID)
	if err != nil {
		return fmt.Errorf("failed to delete transaction %s: %w", primaryID, err)
	}
	if tag.RowsAffected() == 0 {
		return apperrors.ErrNotFound
	}

	if _, err := tx.Exec(ctx, `DELETE FROM transactions WHERE transaction_id = $1;`, mirrorID); err != nil {
		return fmt.Errorf("failed to delete mirror transaction %s: %w", mirrorID, err)
	}

	return r.Commit(ctx, tx)
}

// MarkTransactionsArchived bulk-flips the given rows to archived status.
func (r *PgxTransactionRepository) MarkTransactionsArchived(ctx context.Context, transactionIDs []string, now time.Time) error {
	if len(transactionIDs) == 0 {
		return nil
	}
	_, err := r.Pool.Exec(ctx,
		`UPDATE transactions SET status = 'archived', last_updated_at = $2 WHERE transaction_id = ANY($1);`,
		transactionIDs, now,
	)
	if err != nil {
		return fmt.Errorf("failed to mark %d transactions archived: %w", len(transactionIDs), err)
	}
	return nil
}
