package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/jamila-bank/backoffice-api/internal/apperrors"
	"github.com/jamila-bank/backoffice-api/internal/core/domain"
	"github.com/jamila-bank/backoffice-api/internal/core/ports"
	portsrepo "github.com/jamila-bank/backoffice-api/internal/core/ports/repositories"
	portssvc "github.com/jamila-bank/backoffice-api/internal/core/ports/services"
	"github.com/jamila-bank/backoffice-api/internal/dto"
	"github.com/jamila-bank/backoffice-api/internal/middleware"
	"github.com/jamila-bank/backoffice-api/internal/utils"
)

// MinTransactionAmount is the business-rule floor for any movement.
var MinTransactionAmount = decimal.NewFromInt(100)

// numberGenerationAttempts bounds retries when a generated transaction number
// collides with an existing one.
const numberGenerationAttempts = 3

// transactionService is the transaction engine: it validates and commits
// ledger movements, derives balances, and serves the ledger read paths.
type transactionService struct {
	txnRepo     portsrepo.TransactionRepositoryWithTx
	accountRepo portsrepo.AccountRepositoryFacade
	clientRepo  portsrepo.ClientRepositoryFacade
	accountSvc  portssvc.AccountSvcFacade
	notifier    ports.NotificationEnqueuer
	now         func() time.Time
}

// NewTransactionService creates a new transaction engine.
func NewTransactionService(
	txnRepo portsrepo.TransactionRepositoryWithTx,
	accountRepo portsrepo.AccountRepositoryFacade,
	clientRepo portsrepo.ClientRepositoryFacade,
	accountSvc portssvc.AccountSvcFacade,
	notifier ports.NotificationEnqueuer,
) portssvc.TransactionSvcFacade {
	return &transactionService{
		txnRepo:     txnRepo,
		accountRepo: accountRepo,
		clientRepo:  clientRepo,
		accountSvc:  accountSvc,
		notifier:    notifier,
		now:         time.Now,
	}
}

var _ portssvc.TransactionSvcFacade = (*transactionService)(nil)

// callerClientID resolves the client profile behind a non-admin caller.
func (s *transactionService) callerClientID(ctx context.Context, caller domain.Caller) (string, error) {
	client, err := s.clientRepo.FindClientByUserID(ctx, caller.UserID)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return "", fmt.Errorf("no client profile for user %s: %w", caller.UserID, apperrors.ErrForbidden)
		}
		return "", err
	}
	return client.ClientID, nil
}

// checkAccountAccess rejects client callers that do not own the account.
func (s *transactionService) checkAccountAccess(ctx context.Context, caller domain.Caller, account *domain.Account) error {
	if caller.IsAdmin() {
		return nil
	}
	clientID, err := s.callerClientID(ctx, caller)
	if err != nil {
		return err
	}
	if account.OwnerID != clientID {
		return fmt.Errorf("account %s does not belong to caller: %w", account.AccountID, apperrors.ErrForbidden)
	}
	return nil
}

// resolveSourceAccount picks the account a movement debits or credits. Client
// callers may omit the account id, in which case their first active account is
// used, mirroring the phone-driven flow of the public API.
func (s *transactionService) resolveSourceAccount(ctx context.Context, caller domain.Caller, accountID string) (*domain.Account, error) {
	if accountID != "" {
		account, err := s.accountRepo.FindAccountByID(ctx, accountID)
		if err != nil {
			if errors.Is(err, apperrors.ErrNotFound) {
				return nil, fmt.Errorf("source account %s: %w", accountID, apperrors.ErrNotFound)
			}
			return nil, err
		}
		if err := s.checkAccountAccess(ctx, caller, account); err != nil {
			return nil, err
		}
		return account, nil
	}

	if caller.IsAdmin() {
		return nil, fmt.Errorf("source account id is required: %w", apperrors.ErrValidation)
	}
	clientID, err := s.callerClientID(ctx, caller)
	if err != nil {
		return nil, err
	}
	account, err := s.accountRepo.FindActiveAccountByOwner(ctx, clientID)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return nil, fmt.Errorf("no active account for caller: %w", apperrors.ErrNotFound)
		}
		return nil, err
	}
	return account, nil
}

// resolveDestinationAccount finds the receiving account of a transfer/payment.
func (s *transactionService) resolveDestinationAccount(ctx context.Context, kind domain.TransactionKind, req dto.CreateTransactionRequest) (*domain.Account, error) {
	switch {
	case req.DestinationAccountID != "":
		account, err := s.accountRepo.FindAccountByID(ctx, req.DestinationAccountID)
		if err != nil {
			if errors.Is(err, apperrors.ErrNotFound) {
				return nil, fmt.Errorf("destination account %s: %w", req.DestinationAccountID, apperrors.ErrNotFound)
			}
			return nil, err
		}
		return account, nil
	case kind == domain.KindPayment && req.MerchantCode != "":
		return s.accountSvc.ResolvePaymentDestination(ctx, req.MerchantCode)
	default:
		return nil, fmt.Errorf("destination account is required for %s: %w", kind, apperrors.ErrValidation)
	}
}

// CreateTransaction validates and commits a new ledger movement as one atomic
// unit. Validation is fail-fast and happens before any write; the repository
// re-checks state and funds under a row lock so concurrent debits cannot
// overdraw the account. On success a completion notification is enqueued;
// enqueue failures are logged and never affect the committed transaction.
func (s *transactionService) CreateTransaction(ctx context.Context, caller domain.Caller, req dto.CreateTransactionRequest) (*domain.Transaction, error) {
	logger := middleware.GetLoggerFromCtx(ctx)

	kind := domain.TransactionKind(req.Kind)
	if req.Amount.LessThanOrEqual(decimal.Zero) {
		return nil, fmt.Errorf("amount must be positive: %w", apperrors.ErrValidation)
	}
	if req.Amount.LessThan(MinTransactionAmount) {
		return nil, fmt.Errorf("amount below the minimum of %s: %w", MinTransactionAmount, apperrors.ErrValidation)
	}

	source, err := s.resolveSourceAccount(ctx, caller, req.AccountID)
	if err != nil {
		return nil, err
	}
	if !source.IsActive() {
		return nil, fmt.Errorf("source account is %s, must be active: %w", source.Status, apperrors.ErrInvalidState)
	}

	var destination *domain.Account
	if kind == domain.KindTransfer || kind == domain.KindPayment {
		destination, err = s.resolveDestinationAccount(ctx, kind, req)
		if err != nil {
			return nil, err
		}
		if destination.AccountID == source.AccountID {
			return nil, fmt.Errorf("destination must differ from source: %w", apperrors.ErrValidation)
		}
		if !destination.IsActive() {
			return nil, fmt.Errorf("destination account is %s, must be active: %w", destination.Status, apperrors.ErrInvalidState)
		}
	}

	requireFunds := kind != domain.KindDeposit
	if requireFunds {
		balance, err := s.txnRepo.GetBalance(ctx, source.AccountID)
		if err != nil {
			return nil, err
		}
		if balance.LessThan(req.Amount) {
			return nil, fmt.Errorf("balance %s below amount %s: %w", balance, req.Amount, apperrors.ErrInsufficientFunds)
		}
	}

	var primary domain.Transaction
	for attempt := 0; ; attempt++ {
		now := s.now().UTC()
		number, err := utils.GenerateTransactionNumber(now)
		if err != nil {
			return nil, fmt.Errorf("failed to generate transaction number: %w", err)
		}

		primary = domain.Transaction{
			TransactionID:     uuid.NewString(),
			TransactionNumber: number,
			AccountID:         source.AccountID,
			Kind:              kind,
			Amount:            req.Amount,
			Description:       req.Description,
			Status:            domain.TxnValidated, // auto-validation, no reachable pending state
			TransactedAt:      now,
			AuditFields:       domain.AuditFields{CreatedAt: now, LastUpdatedAt: now},
		}

		var mirror *domain.Transaction
		if destination != nil {
			destID := destination.AccountID
			primary.DestinationAccountID = &destID

			sourceID := source.AccountID
			mirror = &domain.Transaction{
				TransactionID:        uuid.NewString(),
				TransactionNumber:    number + domain.MirrorNumberSuffix,
				AccountID:            destID,
				DestinationAccountID: &sourceID,
				Kind:                 domain.KindDeposit,
				Amount:               req.Amount,
				Description:          mirrorDescription(req.Description),
				Status:               domain.TxnValidated,
				TransactedAt:         now,
				AuditFields:          domain.AuditFields{CreatedAt: now, LastUpdatedAt: now},
			}
		}

		err = s.txnRepo.SaveTransaction(ctx, primary, mirror, requireFunds)
		if err == nil {
			break
		}
		if errors.Is(err, apperrors.ErrDuplicate) && attempt < numberGenerationAttempts-1 {
			continue
		}
		return nil, err
	}

	logger.Info("Transaction committed",
		slog.String("transaction_id", primary.TransactionID),
		slog.String("transaction_number", primary.TransactionNumber),
		slog.String("kind", string(kind)),
		slog.String("amount", req.Amount.String()),
	)

	if err := s.notifier.EnqueueTransactionCompleted(ctx, primary); err != nil {
		// Delivery must not affect transaction durability.
		logger.Warn("Failed to enqueue transaction notification",
			slog.String("transaction_id", primary.TransactionID),
			slog.String("error", err.Error()),
		)
	}

	return &primary, nil
}

func mirrorDescription(desc string) string {
	if desc == "" {
		desc = "Transaction"
	}
	return "Transfer received - " + desc
}

// GetTransactionByID retrieves one ledger row, enforcing that client callers
// only see rows touching their own accounts.
func (s *transactionService) GetTransactionByID(ctx context.Context, caller domain.Caller, transactionID string) (*domain.Transaction, error) {
	txn, err := s.txnRepo.FindTransactionByID(ctx, transactionID)
	if err != nil {
		return nil, err
	}
	if err := s.checkTransactionAccess(ctx, caller, txn); err != nil {
		return nil, err
	}
	return txn, nil
}

func (s *transactionService) checkTransactionAccess(ctx context.Context, caller domain.Caller, txn *domain.Transaction) error {
	if caller.IsAdmin() {
		return nil
	}
	clientID, err := s.callerClientID(ctx, caller)
	if err != nil {
		return err
	}
	source, err := s.accountRepo.FindAccountByID(ctx, txn.AccountID)
	if err == nil && source.OwnerID == clientID {
		return nil
	}
	if txn.DestinationAccountID != nil {
		dest, err := s.accountRepo.FindAccountByID(ctx, *txn.DestinationAccountID)
		if err == nil && dest.OwnerID == clientID {
			return nil
		}
	}
	return fmt.Errorf("transaction %s does not touch caller's accounts: %w", txn.TransactionID, apperrors.ErrForbidden)
}

// ListTransactions retrieves a filtered ledger listing. Client callers are
// scoped to rows touching their own accounts.
func (s *transactionService) ListTransactions(ctx context.Context, caller domain.Caller, req dto.ListTransactionsRequest) ([]domain.Transaction, error) {
	kind, status := req.Filters()
	filters := portsrepo.TransactionListFilters{
		Kind:            kind,
		Status:          status,
		AccountID:       req.AccountID,
		IncludeArchived: req.IncludeArchived,
		Limit:           req.Limit,
		Offset:          req.Offset,
	}
	if !caller.IsAdmin() {
		filters.OwnerUserID = caller.UserID
	}
	if req.DateFrom != "" {
		from, err := time.Parse("2006-01-02", req.DateFrom)
		if err != nil {
			return nil, fmt.Errorf("invalid dateFrom: %w", apperrors.ErrValidation)
		}
		filters.From = &from
	}
	if req.DateTo != "" {
		to, err := time.Parse("2006-01-02", req.DateTo)
		if err != nil {
			return nil, fmt.Errorf("invalid dateTo: %w", apperrors.ErrValidation)
		}
		// Inclusive end date: the repository uses transacted_at < To.
		end := to.AddDate(0, 0, 1)
		filters.To = &end
	}
	return s.txnRepo.ListTransactions(ctx, filters)
}

// ListTransactionsByAccount retrieves an account's validated history.
func (s *transactionService) ListTransactionsByAccount(ctx context.Context, caller domain.Caller, accountID string, req dto.ListTransactionsRequest) ([]domain.Transaction, error) {
	account, err := s.accountRepo.FindAccountByID(ctx, accountID)
	if err != nil {
		return nil, err
	}
	if err := s.checkAccountAccess(ctx, caller, account); err != nil {
		return nil, err
	}
	kind, _ := req.Filters()
	return s.txnRepo.ListTransactionsByAccount(ctx, accountID, portsrepo.TransactionListFilters{Kind: kind})
}

// GetBalance derives the account's current balance from the ledger.
func (s *transactionService) GetBalance(ctx context.Context, caller domain.Caller, accountID string) (decimal.Decimal, error) {
	account, err := s.accountRepo.FindAccountByID(ctx, accountID)
	if err != nil {
		return decimal.Zero, err
	}
	if err := s.checkAccountAccess(ctx, caller, account); err != nil {
		return decimal.Zero, err
	}
	return s.txnRepo.GetBalance(ctx, accountID)
}

// GetStatistics aggregates all validated rows (admin dashboards).
func (s *transactionService) GetStatistics(ctx context.Context, caller domain.Caller) (*domain.LedgerStatistics, error) {
	if !caller.IsAdmin() {
		return nil, fmt.Errorf("statistics are admin-only: %w", apperrors.ErrForbidden)
	}
	return s.txnRepo.GetStatistics(ctx)
}

// GetAccountStatistics aggregates one account's validated rows: totals in and
// out, row count, derived balance and the most recent movement.
func (s *transactionService) GetAccountStatistics(ctx context.Context, caller domain.Caller, accountID string) (*domain.AccountStatistics, error) {
	account, err := s.accountRepo.FindAccountByID(ctx, accountID)
	if err != nil {
		return nil, err
	}
	if err := s.checkAccountAccess(ctx, caller, account); err != nil {
		return nil, err
	}

	txns, err := s.txnRepo.ListTransactionsByAccount(ctx, accountID, portsrepo.TransactionListFilters{})
	if err != nil {
		return nil, err
	}

	stats := domain.AccountStatistics{
		AccountID:        accountID,
		TotalDeposits:    decimal.Zero,
		TotalDebits:      decimal.Zero,
		CurrentBalance:   decimal.Zero,
		TransactionCount: len(txns),
	}
	for i := range txns {
		txn := txns[i]
		signed := txn.SignedAmountFor(accountID)
		stats.CurrentBalance = stats.CurrentBalance.Add(signed)
		if txn.AccountID != accountID {
			continue
		}
		if txn.Kind == domain.KindDeposit {
			stats.TotalDeposits = stats.TotalDeposits.Add(txn.Amount)
		} else {
			stats.TotalDebits = stats.TotalDebits.Add(txn.Amount)
		}
	}
	if len(txns) > 0 {
		// Rows arrive most recent first.
		stats.LastTransaction = &txns[0]
	}
	return &stats, nil
}

// dashboardRecentLimit caps the movements shown on the client dashboard.
const dashboardRecentLimit = 5

// GetClientDashboard summarizes the caller's position: accounts held, their
// combined derived balance, and the most recent movements across them.
// Callers without a client profile (pure admin logins) are rejected.
func (s *transactionService) GetClientDashboard(ctx context.Context, caller domain.Caller) (*domain.ClientDashboard, error) {
	clientID, err := s.callerClientID(ctx, caller)
	if err != nil {
		return nil, err
	}

	accounts, err := s.accountRepo.ListAccountsByOwner(ctx, clientID, false)
	if err != nil {
		return nil, err
	}

	dashboard := domain.ClientDashboard{
		ClientID:     clientID,
		AccountCount: len(accounts),
		TotalBalance: decimal.Zero,
	}
	for i := range accounts {
		balance, err := s.txnRepo.GetBalance(ctx, accounts[i].AccountID)
		if err != nil {
			return nil, err
		}
		dashboard.TotalBalance = dashboard.TotalBalance.Add(balance)
	}

	recent, err := s.txnRepo.ListTransactions(ctx, portsrepo.TransactionListFilters{
		OwnerUserID: caller.UserID,
		Limit:       dashboardRecentLimit,
	})
	if err != nil {
		return nil, err
	}
	dashboard.RecentTransactions = recent

	return &dashboard, nil
}

// UpdateTransactionStatus is the admin-only direct status override. It is a
// raw write with no re-validation of balance invariants; a documented
// limitation inherited from the system this replaces.
func (s *transactionService) UpdateTransactionStatus(ctx context.Context, caller domain.Caller, transactionID string, status domain.TransactionStatus) (*domain.Transaction, error) {
	if !caller.IsAdmin() {
		return nil, fmt.Errorf("status override is admin-only: %w", apperrors.ErrForbidden)
	}
	txn, err := s.txnRepo.FindTransactionByID(ctx, transactionID)
	if err != nil {
		return nil, err
	}
	now := s.now().UTC()
	if err := s.txnRepo.UpdateTransactionStatus(ctx, transactionID, status, now); err != nil {
		return nil, err
	}
	middleware.GetLoggerFromCtx(ctx).Info("Transaction status overridden",
		slog.String("transaction_id", transactionID),
		slog.String("from", string(txn.Status)),
		slog.String("to", string(status)),
	)
	txn.Status = status
	txn.LastUpdatedAt = now
	return txn, nil
}

// DeleteTransaction removes a row; for transfers and payments the paired
// mirror row (primary number + suffix) is removed in the same operation.
func (s *transactionService) DeleteTransaction(ctx context.Context, caller domain.Caller, transactionID string) error {
	if !caller.IsAdmin() {
		return fmt.Errorf("delete is admin-only: %w", apperrors.ErrForbidden)
	}
	txn, err := s.txnRepo.FindTransactionByID(ctx, transactionID)
	if err != nil {
		return err
	}

	if txn.IsTwoParty() {
		mirror, err := s.txnRepo.FindTransactionByNumber(ctx, txn.TransactionNumber+domain.MirrorNumberSuffix)
		switch {
		case err == nil:
			return s.txnRepo.DeleteTransactionPair(ctx, txn.TransactionID, mirror.TransactionID)
		case !errors.Is(err, apperrors.ErrNotFound):
			return err
		}
	}

	return s.txnRepo.DeleteTransaction(ctx, txn.TransactionID)
}
