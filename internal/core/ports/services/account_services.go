package services

import (
	"context"

	"github.com/jamila-bank/backoffice-api/internal/core/domain"
	"github.com/jamila-bank/backoffice-api/internal/dto"
)

// AccountReaderSvc defines read operations for the account directory.
type AccountReaderSvc interface {
	// GetAccountByID retrieves an account; client callers may only see their own.
	GetAccountByID(ctx context.Context, caller domain.Caller, accountID string) (*domain.Account, error)

	// GetAccountByNumber retrieves an account by its human-facing number.
	GetAccountByNumber(ctx context.Context, caller domain.Caller, accountNumber string) (*domain.Account, error)

	// ListAccounts retrieves a paginated listing; archived accounts only appear
	// when the request asks for them explicitly.
	ListAccounts(ctx context.Context, caller domain.Caller, req dto.ListAccountsRequest) ([]domain.Account, error)

	// FindActiveAccountByOwner retrieves the owner's first active account.
	FindActiveAccountByOwner(ctx context.Context, ownerID string) (*domain.Account, error)
}

// AccountWriterSvc defines write operations for the account directory.
type AccountWriterSvc interface {
	// CreateAccount opens a new account, provisioning owner and user when
	// needed, applying the savings block-window rules, and recording the
	// initial deposit in the ledger.
	CreateAccount(ctx context.Context, caller domain.Caller, req dto.CreateAccountRequest) (*domain.Account, error)

	// UpdateAccount modifies mutable details (admin only).
	UpdateAccount(ctx context.Context, caller domain.Caller, accountID string, req dto.UpdateAccountRequest) (*domain.Account, error)

	// ResolvePaymentDestination finds the active account behind a merchant code,
	// provisioning a first-seen merchant (client + current account) on the fly.
	ResolvePaymentDestination(ctx context.Context, merchantCode string) (*domain.Account, error)

	// CloseAccount archives an account and its transactions (admin only).
	CloseAccount(ctx context.Context, caller domain.Caller, accountID string) error
}

// AccountSvcFacade combines the account directory service interfaces.
type AccountSvcFacade interface {
	AccountReaderSvc
	AccountWriterSvc
}
