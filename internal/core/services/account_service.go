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
	portsrepo "github.com/jamila-bank/backoffice-api/internal/core/ports/repositories"
	portssvc "github.com/jamila-bank/backoffice-api/internal/core/ports/services"
	"github.com/jamila-bank/backoffice-api/internal/dto"
	"github.com/jamila-bank/backoffice-api/internal/middleware"
	"github.com/jamila-bank/backoffice-api/internal/utils"
)

// accountService manages the account directory: opening accounts, owner and
// merchant provisioning, block windows, and directory reads.
type accountService struct {
	accountRepo portsrepo.AccountRepositoryWithTx
	txnRepo     portsrepo.TransactionRepositoryWithTx
	clientRepo  portsrepo.ClientRepositoryFacade
	userRepo    portsrepo.UserRepositoryFacade
	now         func() time.Time
}

// NewAccountService creates a new account directory service.
func NewAccountService(
	accountRepo portsrepo.AccountRepositoryWithTx,
	txnRepo portsrepo.TransactionRepositoryWithTx,
	clientRepo portsrepo.ClientRepositoryFacade,
	userRepo portsrepo.UserRepositoryFacade,
) portssvc.AccountSvcFacade {
	return &accountService{
		accountRepo: accountRepo,
		txnRepo:     txnRepo,
		clientRepo:  clientRepo,
		userRepo:    userRepo,
		now:         time.Now,
	}
}

var _ portssvc.AccountSvcFacade = (*accountService)(nil)

// blockWindow is the parsed savings freeze schedule of a create request.
type blockWindow struct {
	start        time.Time
	end          time.Time
	durationDays int
}

func parseBlockWindow(req dto.CreateAccountRequest) (*blockWindow, error) {
	if req.BlockStart == "" && req.BlockEnd == "" {
		return nil, nil
	}
	if req.BlockStart == "" || req.BlockEnd == "" {
		return nil, fmt.Errorf("blockStart and blockEnd must be provided together: %w", apperrors.ErrValidation)
	}
	start, err := time.Parse("2006-01-02", req.BlockStart)
	if err != nil {
		return nil, fmt.Errorf("invalid blockStart: %w", apperrors.ErrValidation)
	}
	end, err := time.Parse("2006-01-02", req.BlockEnd)
	if err != nil {
		return nil, fmt.Errorf("invalid blockEnd: %w", apperrors.ErrValidation)
	}
	if !end.After(start) {
		return nil, fmt.Errorf("blockEnd must be after blockStart: %w", apperrors.ErrValidation)
	}
	return &blockWindow{
		start:        start,
		end:          end,
		durationDays: int(end.Sub(start).Hours() / 24),
	}, nil
}

// resolveOwner finds the client a new account belongs to, provisioning a
// fresh client (with its login user) when no identifier matches.
func (s *accountService) resolveOwner(ctx context.Context, details dto.ClientDetails) (*domain.Client, error) {
	if details.ClientID != "" {
		client, err := s.clientRepo.FindClientByID(ctx, details.ClientID)
		if err != nil {
			return nil, fmt.Errorf("owner client %s: %w", details.ClientID, err)
		}
		return client, nil
	}
	if details.Phone == "" {
		return nil, fmt.Errorf("client phone is required to provision an owner: %w", apperrors.ErrValidation)
	}

	client, err := s.clientRepo.FindClientByPhone(ctx, details.Phone)
	if err == nil {
		return client, nil
	}
	if !errors.Is(err, apperrors.ErrNotFound) {
		return nil, err
	}
	return s.provisionClient(ctx, details)
}

// provisionClient creates a login user and a client profile for a first-seen
// owner. The user gets a random password; credentials are handed out through
// the back office, not this API.
func (s *accountService) provisionClient(ctx context.Context, details dto.ClientDetails) (*domain.Client, error) {
	now := s.now().UTC()

	email := details.Email
	if email == "" {
		email = details.Phone + "@clients.jamila-bank.local"
	}
	randomPassword, err := utils.GenerateSecureRandomString(16)
	if err != nil {
		return nil, fmt.Errorf("failed to generate initial password: %w", err)
	}
	hash, err := utils.HashPassword(randomPassword)
	if err != nil {
		return nil, err
	}

	user := domain.User{
		UserID:       uuid.NewString(),
		Name:         fmt.Sprintf("%s %s", details.FirstName, details.LastName),
		Email:        email,
		PasswordHash: hash,
		Role:         domain.RoleClient,
		AuditFields:  domain.AuditFields{CreatedAt: now, LastUpdatedAt: now},
	}
	if err := s.userRepo.SaveUser(ctx, user); err != nil {
		return nil, err
	}

	client := domain.Client{
		ClientID:    uuid.NewString(),
		UserID:      user.UserID,
		Phone:       details.Phone,
		FirstName:   details.FirstName,
		LastName:    details.LastName,
		Address:     details.Address,
		AuditFields: domain.AuditFields{CreatedAt: now, LastUpdatedAt: now},
	}
	if err := s.clientRepo.SaveClient(ctx, client); err != nil {
		return nil, err
	}

	middleware.GetLoggerFromCtx(ctx).Info("Provisioned new client",
		slog.String("client_id", client.ClientID),
		slog.String("user_id", user.UserID),
	)
	return &client, nil
}

// CreateAccount opens a new account. Providing a block window makes it a
// savings account; a window that has already started blocks the account from
// day one. A nonzero initial deposit is recorded as the account's first
// ledger row.
func (s *accountService) CreateAccount(ctx context.Context, caller domain.Caller, req dto.CreateAccountRequest) (*domain.Account, error) {
	if !caller.IsAdmin() {
		return nil, fmt.Errorf("account opening is admin-only: %w", apperrors.ErrForbidden)
	}

	window, err := parseBlockWindow(req)
	if err != nil {
		return nil, err
	}
	if !req.InitialDeposit.IsZero() {
		if req.InitialDeposit.LessThan(MinTransactionAmount) {
			return nil, fmt.Errorf("initial deposit below the minimum of %s: %w", MinTransactionAmount, apperrors.ErrValidation)
		}
	}

	owner, err := s.resolveOwner(ctx, req.Client)
	if err != nil {
		return nil, err
	}

	now := s.now().UTC()
	account := domain.Account{
		AccountID:   uuid.NewString(),
		OwnerID:     owner.ClientID,
		Kind:        domain.KindCurrent,
		Status:      domain.StatusActive,
		OpenedAt:    now,
		AuditFields: domain.AuditFields{CreatedAt: now, LastUpdatedAt: now},
	}

	blockImmediately := false
	if window != nil {
		account.Kind = domain.KindSavings
		start, end, days := window.start, window.end, window.durationDays
		account.BlockStart = &start
		account.BlockEnd = &end
		account.BlockDurationDays = &days
		blockImmediately = !start.After(now)
	}

	for attempt := 0; ; attempt++ {
		number, err := utils.GenerateAccountNumber(now)
		if err != nil {
			return nil, fmt.Errorf("failed to generate account number: %w", err)
		}
		account.AccountNumber = number

		err = s.accountRepo.SaveAccount(ctx, account)
		if err == nil {
			break
		}
		if errors.Is(err, apperrors.ErrDuplicate) && attempt < numberGenerationAttempts-1 {
			continue
		}
		return nil, err
	}

	if !req.InitialDeposit.IsZero() {
		if err := s.recordInitialDeposit(ctx, account, req.InitialDeposit); err != nil {
			return nil, err
		}
	}

	// The deposit commit path requires an active source, so an immediate
	// block is applied only after the opening balance lands.
	if blockImmediately {
		account.Status = domain.StatusBlocked
		account.LastUpdatedAt = s.now().UTC()
		if err := s.accountRepo.UpdateAccount(ctx, account); err != nil {
			return nil, err
		}
	}

	middleware.GetLoggerFromCtx(ctx).Info("Account opened",
		slog.String("account_id", account.AccountID),
		slog.String("account_number", account.AccountNumber),
		slog.String("kind", string(account.Kind)),
		slog.String("status", string(account.Status)),
	)
	return &account, nil
}

func (s *accountService) recordInitialDeposit(ctx context.Context, account domain.Account, amount decimal.Decimal) error {
	for attempt := 0; ; attempt++ {
		now := s.now().UTC()
		number, err := utils.GenerateTransactionNumber(now)
		if err != nil {
			return fmt.Errorf("failed to generate transaction number: %w", err)
		}
		deposit := domain.Transaction{
			TransactionID:     uuid.NewString(),
			TransactionNumber: number,
			AccountID:         account.AccountID,
			Kind:              domain.KindDeposit,
			Amount:            amount,
			Description:       "Initial deposit",
			Status:            domain.TxnValidated,
			TransactedAt:      now,
			AuditFields:       domain.AuditFields{CreatedAt: now, LastUpdatedAt: now},
		}
		err = s.txnRepo.SaveTransaction(ctx, deposit, nil, false)
		if err == nil {
			return nil
		}
		if errors.Is(err, apperrors.ErrDuplicate) && attempt < numberGenerationAttempts-1 {
			continue
		}
		return err
	}
}

// ResolvePaymentDestination finds the active account behind a merchant code.
// Unknown codes provision a merchant on the fly: client, login user, and a
// current account, all in one call.
func (s *accountService) ResolvePaymentDestination(ctx context.Context, merchantCode string) (*domain.Account, error) {
	client, err := s.clientRepo.FindClientByPhone(ctx, merchantCode)
	if err != nil {
		if !errors.Is(err, apperrors.ErrNotFound) {
			return nil, err
		}
		client, err = s.provisionClient(ctx, dto.ClientDetails{
			Phone:     merchantCode,
			FirstName: "Merchant",
			LastName:  merchantCode,
		})
		if err != nil {
			return nil, err
		}
	}

	account, err := s.accountRepo.FindActiveAccountByOwner(ctx, client.ClientID)
	if err == nil {
		return account, nil
	}
	if !errors.Is(err, apperrors.ErrNotFound) {
		return nil, err
	}

	now := s.now().UTC()
	fresh := domain.Account{
		AccountID:   uuid.NewString(),
		OwnerID:     client.ClientID,
		Kind:        domain.KindCurrent,
		Status:      domain.StatusActive,
		OpenedAt:    now,
		AuditFields: domain.AuditFields{CreatedAt: now, LastUpdatedAt: now},
	}
	for attempt := 0; ; attempt++ {
		number, err := utils.GenerateAccountNumber(now)
		if err != nil {
			return nil, fmt.Errorf("failed to generate account number: %w", err)
		}
		fresh.AccountNumber = number
		err = s.accountRepo.SaveAccount(ctx, fresh)
		if err == nil {
			break
		}
		if errors.Is(err, apperrors.ErrDuplicate) && attempt < numberGenerationAttempts-1 {
			continue
		}
		return nil, err
	}

	middleware.GetLoggerFromCtx(ctx).Info("Provisioned merchant account",
		slog.String("merchant_code", merchantCode),
		slog.String("account_id", fresh.AccountID),
	)
	return &fresh, nil
}

func (s *accountService) checkAccess(ctx context.Context, caller domain.Caller, account *domain.Account) error {
	if caller.IsAdmin() {
		return nil
	}
	client, err := s.clientRepo.FindClientByUserID(ctx, caller.UserID)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return fmt.Errorf("no client profile for user %s: %w", caller.UserID, apperrors.ErrForbidden)
		}
		return err
	}
	if account.OwnerID != client.ClientID {
		return fmt.Errorf("account %s does not belong to caller: %w", account.AccountID, apperrors.ErrForbidden)
	}
	return nil
}

// GetAccountByID retrieves an account; client callers may only see their own.
func (s *accountService) GetAccountByID(ctx context.Context, caller domain.Caller, accountID string) (*domain.Account, error) {
	account, err := s.accountRepo.FindAccountByID(ctx, accountID)
	if err != nil {
		return nil, err
	}
	if err := s.checkAccess(ctx, caller, account); err != nil {
		return nil, err
	}
	return account, nil
}

// GetAccountByNumber retrieves an account by its human-facing number.
func (s *accountService) GetAccountByNumber(ctx context.Context, caller domain.Caller, accountNumber string) (*domain.Account, error) {
	account, err := s.accountRepo.FindAccountByNumber(ctx, accountNumber)
	if err != nil {
		return nil, err
	}
	if err := s.checkAccess(ctx, caller, account); err != nil {
		return nil, err
	}
	return account, nil
}

// ListAccounts retrieves a paginated listing. Admins see the whole directory;
// client callers only their own accounts. Archived accounts require an
// explicit opt-in either way.
func (s *accountService) ListAccounts(ctx context.Context, caller domain.Caller, req dto.ListAccountsRequest) ([]domain.Account, error) {
	if caller.IsAdmin() {
		return s.accountRepo.ListAccounts(ctx, domain.AccountStatus(req.Status), req.IncludeArchived, req.Limit, req.Offset)
	}
	client, err := s.clientRepo.FindClientByUserID(ctx, caller.UserID)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return nil, fmt.Errorf("no client profile for user %s: %w", caller.UserID, apperrors.ErrForbidden)
		}
		return nil, err
	}
	return s.accountRepo.ListAccountsByOwner(ctx, client.ClientID, req.IncludeArchived)
}

// FindActiveAccountByOwner retrieves the owner's first active account.
func (s *accountService) FindActiveAccountByOwner(ctx context.Context, ownerID string) (*domain.Account, error) {
	return s.accountRepo.FindActiveAccountByOwner(ctx, ownerID)
}

// CloseAccount archives an account along with its transactions (admin only).
// The archived status is terminal; closing an already archived account fails.
func (s *accountService) CloseAccount(ctx context.Context, caller domain.Caller, accountID string) error {
	if !caller.IsAdmin() {
		return fmt.Errorf("account closing is admin-only: %w", apperrors.ErrForbidden)
	}
	if err := s.accountRepo.CloseAccount(ctx, accountID, s.now().UTC()); err != nil {
		return err
	}
	middleware.GetLoggerFromCtx(ctx).Info("Account closed",
		slog.String("account_id", accountID),
	)
	return nil
}

// UpdateAccount modifies mutable account details (admin only). Archived
// accounts are terminal and reject every modification.
func (s *accountService) UpdateAccount(ctx context.Context, caller domain.Caller, accountID string, req dto.UpdateAccountRequest) (*domain.Account, error) {
	if !caller.IsAdmin() {
		return nil, fmt.Errorf("account modification is admin-only: %w", apperrors.ErrForbidden)
	}
	account, err := s.accountRepo.FindAccountByID(ctx, accountID)
	if err != nil {
		return nil, err
	}
	if account.IsArchived() {
		return nil, fmt.Errorf("account %s is archived: %w", accountID, apperrors.ErrInvalidState)
	}

	if req.Status != "" {
		account.Status = domain.AccountStatus(req.Status)
	}
	if req.Kind != "" {
		account.Kind = domain.AccountKind(req.Kind)
	}
	account.LastUpdatedAt = s.now().UTC()

	if err := s.accountRepo.UpdateAccount(ctx, *account); err != nil {
		return nil, err
	}
	return account, nil
}
