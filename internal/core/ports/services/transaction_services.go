package services

import (
	"context"

	"github.com/jamila-bank/backoffice-api/internal/core/domain"
	"github.com/jamila-bank/backoffice-api/internal/dto"
	"github.com/shopspring/decimal"
)

// TransactionReaderSvc defines read operations over the ledger.
type TransactionReaderSvc interface {
	// GetTransactionByID retrieves one ledger row. Client callers may only see
	// rows touching their own accounts.
	GetTransactionByID(ctx context.Context, caller domain.Caller, transactionID string) (*domain.Transaction, error)

	// ListTransactions retrieves a filtered ledger listing. Client callers are
	// implicitly scoped to their own accounts.
	ListTransactions(ctx context.Context, caller domain.Caller, req dto.ListTransactionsRequest) ([]domain.Transaction, error)

	// ListTransactionsByAccount retrieves an account's validated history.
	ListTransactionsByAccount(ctx context.Context, caller domain.Caller, accountID string, req dto.ListTransactionsRequest) ([]domain.Transaction, error)

	// GetBalance derives the account's current balance from the ledger.
	GetBalance(ctx context.Context, caller domain.Caller, accountID string) (decimal.Decimal, error)

	// GetStatistics aggregates all validated rows (admin dashboards).
	GetStatistics(ctx context.Context, caller domain.Caller) (*domain.LedgerStatistics, error)

	// GetAccountStatistics aggregates one account's validated rows.
	GetAccountStatistics(ctx context.Context, caller domain.Caller, accountID string) (*domain.AccountStatistics, error)

	// GetClientDashboard summarizes the caller's accounts, combined balance,
	// and most recent movements. Requires a client profile.
	GetClientDashboard(ctx context.Context, caller domain.Caller) (*domain.ClientDashboard, error)
}

// TransactionWriterSvc defines the commit path and the admin overrides.
type TransactionWriterSvc interface {
	// CreateTransaction validates and commits a new movement as one atomic unit,
	// including the mirror row for transfers and payments.
	CreateTransaction(ctx context.Context, caller domain.Caller, req dto.CreateTransactionRequest) (*domain.Transaction, error)

	// UpdateTransactionStatus is the admin-only direct status override.
	UpdateTransactionStatus(ctx context.Context, caller domain.Caller, transactionID string, status domain.TransactionStatus) (*domain.Transaction, error)

	// DeleteTransaction removes a row; for transfers/payments the mirror row is
	// removed in the same operation.
	DeleteTransaction(ctx context.Context, caller domain.Caller, transactionID string) error
}

// TransactionSvcFacade combines the ledger service interfaces.
type TransactionSvcFacade interface {
	TransactionReaderSvc
	TransactionWriterSvc
}
