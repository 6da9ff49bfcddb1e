package services_test

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/suite"

	"github.com/jamila-bank/backoffice-api/internal/apperrors"
	"github.com/jamila-bank/backoffice-api/internal/core/domain"
	portsrepo "github.com/jamila-bank/backoffice-api/internal/core/ports/repositories"
	portssvc "github.com/jamila-bank/backoffice-api/internal/core/ports/services"
	"github.com/jamila-bank/backoffice-api/internal/core/services"
	"github.com/jamila-bank/backoffice-api/internal/dto"
)

type TransactionServiceTestSuite struct {
	suite.Suite
	txnRepo     *MockTransactionRepository
	accountRepo *MockAccountRepository
	clientRepo  *MockClientRepository
	accountSvc  *MockAccountService
	notifier    *MockNotificationEnqueuer
	service     portssvc.TransactionSvcFacade

	admin  domain.Caller
	client domain.Caller
}

func (s *TransactionServiceTestSuite) SetupTest() {
	s.txnRepo = new(MockTransactionRepository)
	s.accountRepo = new(MockAccountRepository)
	s.clientRepo = new(MockClientRepository)
	s.accountSvc = new(MockAccountService)
	s.notifier = new(MockNotificationEnqueuer)
	s.service = services.NewTransactionService(s.txnRepo, s.accountRepo, s.clientRepo, s.accountSvc, s.notifier)

	s.admin = domain.Caller{UserID: uuid.NewString(), Role: domain.RoleAdmin}
	s.client = domain.Caller{UserID: uuid.NewString(), Role: domain.RoleClient}
}

func activeAccount(ownerID string) *domain.Account {
	return &domain.Account{
		AccountID:     uuid.NewString(),
		AccountNumber: "C-20250101-AB12",
		OwnerID:       ownerID,
		Kind:          domain.KindCurrent,
		Status:        domain.StatusActive,
		OpenedAt:      time.Now().UTC(),
	}
}

func (s *TransactionServiceTestSuite) TestCreateDeposit_Success() {
	ctx := context.Background()
	account := activeAccount(uuid.NewString())
	req := dto.CreateTransactionRequest{
		AccountID: account.AccountID,
		Kind:      "deposit",
		Amount:    decimal.NewFromInt(500),
	}

	s.accountRepo.On("FindAccountByID", ctx, account.AccountID).Return(account, nil).Once()
	s.txnRepo.On("SaveTransaction", ctx, mock.AnythingOfType("domain.Transaction"), (*domain.Transaction)(nil), false).Return(nil).Once()
	s.notifier.On("EnqueueTransactionCompleted", ctx, mock.AnythingOfType("domain.Transaction")).Return(nil).Once()

	txn, err := s.service.CreateTransaction(ctx, s.admin, req)

	s.Require().NoError(err)
	s.Require().NotNil(txn)
	s.Equal(domain.KindDeposit, txn.Kind)
	s.Equal(domain.TxnValidated, txn.Status)
	s.True(strings.HasPrefix(txn.TransactionNumber, "TXN-"))
	s.Nil(txn.DestinationAccountID)
	s.txnRepo.AssertExpectations(s.T())
	s.notifier.AssertExpectations(s.T())
}

func (s *TransactionServiceTestSuite) TestCreateTransaction_BelowMinimum() {
	ctx := context.Background()
	req := dto.CreateTransactionRequest{
		AccountID: uuid.NewString(),
		Kind:      "deposit",
		Amount:    decimal.NewFromInt(50),
	}

	txn, err := s.service.CreateTransaction(ctx, s.admin, req)

	s.Require().Error(err)
	s.Nil(txn)
	s.ErrorIs(err, apperrors.ErrValidation)
	s.txnRepo.AssertNotCalled(s.T(), "SaveTransaction")
}

func (s *TransactionServiceTestSuite) TestCreateWithdrawal_InsufficientFunds() {
	ctx := context.Background()
	account := activeAccount(uuid.NewString())
	req := dto.CreateTransactionRequest{
		AccountID: account.AccountID,
		Kind:      "withdrawal",
		Amount:    decimal.NewFromInt(1000),
	}

	s.accountRepo.On("FindAccountByID", ctx, account.AccountID).Return(account, nil).Once()
	s.txnRepo.On("GetBalance", ctx, account.AccountID).Return(decimal.NewFromInt(200), nil).Once()

	txn, err := s.service.CreateTransaction(ctx, s.admin, req)

	s.Require().Error(err)
	s.Nil(txn)
	s.ErrorIs(err, apperrors.ErrInsufficientFunds)
	s.txnRepo.AssertNotCalled(s.T(), "SaveTransaction")
}

func (s *TransactionServiceTestSuite) TestCreateTransfer_BuildsMirrorRow() {
	ctx := context.Background()
	source := activeAccount(uuid.NewString())
	destination := activeAccount(uuid.NewString())
	req := dto.CreateTransactionRequest{
		AccountID:            source.AccountID,
		Kind:                 "transfer",
		Amount:               decimal.NewFromInt(300),
		DestinationAccountID: destination.AccountID,
		Description:          "Rent",
	}

	s.accountRepo.On("FindAccountByID", ctx, source.AccountID).Return(source, nil).Once()
	s.accountRepo.On("FindAccountByID", ctx, destination.AccountID).Return(destination, nil).Once()
	s.txnRepo.On("GetBalance", ctx, source.AccountID).Return(decimal.NewFromInt(1000), nil).Once()

	var captured *domain.Transaction
	s.txnRepo.On("SaveTransaction", ctx, mock.AnythingOfType("domain.Transaction"), mock.AnythingOfType("*domain.Transaction"), true).
		Run(func(args mock.Arguments) {
			captured = args.Get(2).(*domain.Transaction)
		}).Return(nil).Once()
	s.notifier.On("EnqueueTransactionCompleted", ctx, mock.AnythingOfType("domain.Transaction")).Return(nil).Once()

	txn, err := s.service.CreateTransaction(ctx, s.admin, req)

	s.Require().NoError(err)
	s.Require().NotNil(txn)
	s.Require().NotNil(txn.DestinationAccountID)
	s.Equal(destination.AccountID, *txn.DestinationAccountID)

	s.Require().NotNil(captured)
	s.Equal(txn.TransactionNumber+domain.MirrorNumberSuffix, captured.TransactionNumber)
	s.Equal(destination.AccountID, captured.AccountID)
	s.Equal(domain.KindDeposit, captured.Kind)
	s.True(captured.Amount.Equal(txn.Amount))
	s.True(captured.IsMirror())
	s.txnRepo.AssertExpectations(s.T())
}

func (s *TransactionServiceTestSuite) TestCreateTransfer_SameAccountRejected() {
	ctx := context.Background()
	account := activeAccount(uuid.NewString())
	req := dto.CreateTransactionRequest{
		AccountID:            account.AccountID,
		Kind:                 "transfer",
		Amount:               decimal.NewFromInt(200),
		DestinationAccountID: account.AccountID,
	}

	s.accountRepo.On("FindAccountByID", ctx, account.AccountID).Return(account, nil).Twice()

	txn, err := s.service.CreateTransaction(ctx, s.admin, req)

	s.Require().Error(err)
	s.Nil(txn)
	s.ErrorIs(err, apperrors.ErrValidation)
}

func (s *TransactionServiceTestSuite) TestCreateTransfer_InactiveDestination() {
	ctx := context.Background()
	source := activeAccount(uuid.NewString())
	destination := activeAccount(uuid.NewString())
	destination.Status = domain.StatusBlocked
	req := dto.CreateTransactionRequest{
		AccountID:            source.AccountID,
		Kind:                 "transfer",
		Amount:               decimal.NewFromInt(200),
		DestinationAccountID: destination.AccountID,
	}

	s.accountRepo.On("FindAccountByID", ctx, source.AccountID).Return(source, nil).Once()
	s.accountRepo.On("FindAccountByID", ctx, destination.AccountID).Return(destination, nil).Once()

	txn, err := s.service.CreateTransaction(ctx, s.admin, req)

	s.Require().Error(err)
	s.Nil(txn)
	s.ErrorIs(err, apperrors.ErrInvalidState)
	s.txnRepo.AssertNotCalled(s.T(), "SaveTransaction")
}

func (s *TransactionServiceTestSuite) TestCreatePayment_ResolvesMerchant() {
	ctx := context.Background()
	source := activeAccount(uuid.NewString())
	merchantAccount := activeAccount(uuid.NewString())
	req := dto.CreateTransactionRequest{
		AccountID:    source.AccountID,
		Kind:         "payment",
		Amount:       decimal.NewFromInt(450),
		MerchantCode: "SHOP-42",
	}

	s.accountRepo.On("FindAccountByID", ctx, source.AccountID).Return(source, nil).Once()
	s.accountSvc.On("ResolvePaymentDestination", ctx, "SHOP-42").Return(merchantAccount, nil).Once()
	s.txnRepo.On("GetBalance", ctx, source.AccountID).Return(decimal.NewFromInt(1000), nil).Once()
	s.txnRepo.On("SaveTransaction", ctx, mock.AnythingOfType("domain.Transaction"), mock.AnythingOfType("*domain.Transaction"), true).Return(nil).Once()
	s.notifier.On("EnqueueTransactionCompleted", ctx, mock.AnythingOfType("domain.Transaction")).Return(nil).Once()

	txn, err := s.service.CreateTransaction(ctx, s.admin, req)

	s.Require().NoError(err)
	s.Require().NotNil(txn.DestinationAccountID)
	s.Equal(merchantAccount.AccountID, *txn.DestinationAccountID)
	s.accountSvc.AssertExpectations(s.T())
}

func (s *TransactionServiceTestSuite) TestCreateTransaction_ClientUsesOwnActiveAccount() {
	ctx := context.Background()
	clientProfile := &domain.Client{ClientID: uuid.NewString(), UserID: s.client.UserID}
	account := activeAccount(clientProfile.ClientID)
	req := dto.CreateTransactionRequest{
		Kind:   "deposit",
		Amount: decimal.NewFromInt(250),
	}

	s.clientRepo.On("FindClientByUserID", ctx, s.client.UserID).Return(clientProfile, nil).Once()
	s.accountRepo.On("FindActiveAccountByOwner", ctx, clientProfile.ClientID).Return(account, nil).Once()
	s.txnRepo.On("SaveTransaction", ctx, mock.AnythingOfType("domain.Transaction"), (*domain.Transaction)(nil), false).Return(nil).Once()
	s.notifier.On("EnqueueTransactionCompleted", ctx, mock.AnythingOfType("domain.Transaction")).Return(nil).Once()

	txn, err := s.service.CreateTransaction(ctx, s.client, req)

	s.Require().NoError(err)
	s.Equal(account.AccountID, txn.AccountID)
}

func (s *TransactionServiceTestSuite) TestCreateTransaction_ClientForbiddenOnForeignAccount() {
	ctx := context.Background()
	clientProfile := &domain.Client{ClientID: uuid.NewString(), UserID: s.client.UserID}
	foreign := activeAccount(uuid.NewString())
	req := dto.CreateTransactionRequest{
		AccountID: foreign.AccountID,
		Kind:      "deposit",
		Amount:    decimal.NewFromInt(250),
	}

	s.accountRepo.On("FindAccountByID", ctx, foreign.AccountID).Return(foreign, nil).Once()
	s.clientRepo.On("FindClientByUserID", ctx, s.client.UserID).Return(clientProfile, nil).Once()

	txn, err := s.service.CreateTransaction(ctx, s.client, req)

	s.Require().Error(err)
	s.Nil(txn)
	s.ErrorIs(err, apperrors.ErrForbidden)
}

func (s *TransactionServiceTestSuite) TestCreateTransaction_NotificationFailureDoesNotFailCommit() {
	ctx := context.Background()
	account := activeAccount(uuid.NewString())
	req := dto.CreateTransactionRequest{
		AccountID: account.AccountID,
		Kind:      "deposit",
		Amount:    decimal.NewFromInt(500),
	}

	s.accountRepo.On("FindAccountByID", ctx, account.AccountID).Return(account, nil).Once()
	s.txnRepo.On("SaveTransaction", ctx, mock.AnythingOfType("domain.Transaction"), (*domain.Transaction)(nil), false).Return(nil).Once()
	s.notifier.On("EnqueueTransactionCompleted", ctx, mock.AnythingOfType("domain.Transaction")).Return(assert.AnError).Once()

	txn, err := s.service.CreateTransaction(ctx, s.admin, req)

	s.Require().NoError(err)
	s.Require().NotNil(txn)
	s.notifier.AssertExpectations(s.T())
}

func (s *TransactionServiceTestSuite) TestCreateTransaction_RetriesOnDuplicateNumber() {
	ctx := context.Background()
	account := activeAccount(uuid.NewString())
	req := dto.CreateTransactionRequest{
		AccountID: account.AccountID,
		Kind:      "deposit",
		Amount:    decimal.NewFromInt(500),
	}

	s.accountRepo.On("FindAccountByID", ctx, account.AccountID).Return(account, nil).Once()
	s.txnRepo.On("SaveTransaction", ctx, mock.AnythingOfType("domain.Transaction"), (*domain.Transaction)(nil), false).
		Return(apperrors.ErrDuplicate).Once()
	s.txnRepo.On("SaveTransaction", ctx, mock.AnythingOfType("domain.Transaction"), (*domain.Transaction)(nil), false).
		Return(nil).Once()
	s.notifier.On("EnqueueTransactionCompleted", ctx, mock.AnythingOfType("domain.Transaction")).Return(nil).Once()

	txn, err := s.service.CreateTransaction(ctx, s.admin, req)

	s.Require().NoError(err)
	s.Require().NotNil(txn)
	s.txnRepo.AssertExpectations(s.T())
}

func (s *TransactionServiceTestSuite) TestGetStatistics_AdminOnly() {
	ctx := context.Background()

	stats, err := s.service.GetStatistics(ctx, s.client)

	s.Require().Error(err)
	s.Nil(stats)
	s.ErrorIs(err, apperrors.ErrForbidden)
}

func (s *TransactionServiceTestSuite) TestGetAccountStatistics_ComputesAggregates() {
	ctx := context.Background()
	account := activeAccount(uuid.NewString())
	otherID := uuid.NewString()

	rows := []domain.Transaction{
		{
			TransactionID: uuid.NewString(),
			AccountID:     account.AccountID,
			Kind:          domain.KindWithdrawal,
			Amount:        decimal.NewFromInt(200),
			Status:        domain.TxnValidated,
		},
		{
			TransactionID: uuid.NewString(),
			AccountID:     account.AccountID,
			Kind:          domain.KindDeposit,
			Amount:        decimal.NewFromInt(1000),
			Status:        domain.TxnValidated,
		},
		{
			// Destination-side view of someone else's transfer: the mirror
			// deposit row on this account carries the credit, a row whose
			// source is another account contributes nothing.
			TransactionID:        uuid.NewString(),
			AccountID:            otherID,
			DestinationAccountID: &account.AccountID,
			Kind:                 domain.KindTransfer,
			Amount:               decimal.NewFromInt(300),
			Status:               domain.TxnValidated,
		},
	}

	s.accountRepo.On("FindAccountByID", ctx, account.AccountID).Return(account, nil).Once()
	s.txnRepo.On("ListTransactionsByAccount", ctx, account.AccountID, mock.AnythingOfType("repositories.TransactionListFilters")).Return(rows, nil).Once()

	stats, err := s.service.GetAccountStatistics(ctx, s.admin, account.AccountID)

	s.Require().NoError(err)
	s.Equal(3, stats.TransactionCount)
	s.True(stats.TotalDeposits.Equal(decimal.NewFromInt(1000)))
	s.True(stats.TotalDebits.Equal(decimal.NewFromInt(200)))
	s.True(stats.CurrentBalance.Equal(decimal.NewFromInt(800)))
	s.Require().NotNil(stats.LastTransaction)
	s.Equal(rows[0].TransactionID, stats.LastTransaction.TransactionID)
}

func (s *TransactionServiceTestSuite) TestDeleteTransaction_RemovesMirrorPair() {
	ctx := context.Background()
	destID := uuid.NewString()
	primary := &domain.Transaction{
		TransactionID:        uuid.NewString(),
		TransactionNumber:    "TXN-20250101-AA11",
		AccountID:            uuid.NewString(),
		DestinationAccountID: &destID,
		Kind:                 domain.KindTransfer,
		Amount:               decimal.NewFromInt(500),
		Status:               domain.TxnValidated,
	}
	mirror := &domain.Transaction{
		TransactionID:     uuid.NewString(),
		TransactionNumber: primary.TransactionNumber + domain.MirrorNumberSuffix,
		AccountID:         destID,
		Kind:              domain.KindDeposit,
		Amount:            primary.Amount,
		Status:            domain.TxnValidated,
	}

	s.txnRepo.On("FindTransactionByID", ctx, primary.TransactionID).Return(primary, nil).Once()
	s.txnRepo.On("FindTransactionByNumber", ctx, mirror.TransactionNumber).Return(mirror, nil).Once()
	s.txnRepo.On("DeleteTransactionPair", ctx, primary.TransactionID, mirror.TransactionID).Return(nil).Once()

	err := s.service.DeleteTransaction(ctx, s.admin, primary.TransactionID)

	s.Require().NoError(err)
	s.txnRepo.AssertExpectations(s.T())
	s.txnRepo.AssertNotCalled(s.T(), "DeleteTransaction", mock.Anything, mock.Anything)
}

func (s *TransactionServiceTestSuite) TestDeleteTransaction_NonAdminForbidden() {
	ctx := context.Background()

	err := s.service.DeleteTransaction(ctx, s.client, uuid.NewString())

	s.Require().Error(err)
	s.ErrorIs(err, apperrors.ErrForbidden)
	s.txnRepo.AssertNotCalled(s.T(), "DeleteTransaction")
}

func (s *TransactionServiceTestSuite) TestUpdateTransactionStatus_NonAdminForbidden() {
	ctx := context.Background()

	txn, err := s.service.UpdateTransactionStatus(ctx, s.client, uuid.NewString(), domain.TxnRejected)

	s.Require().Error(err)
	s.Nil(txn)
	s.ErrorIs(err, apperrors.ErrForbidden)
}

func (s *TransactionServiceTestSuite) TestListTransactions_ClientScopedToOwnAccounts() {
	ctx := context.Background()

	s.txnRepo.On("ListTransactions", ctx, mock.MatchedBy(func(f portsrepo.TransactionListFilters) bool {
		return f.OwnerUserID == s.client.UserID
	})).Return([]domain.Transaction{}, nil).Once()

	_, err := s.service.ListTransactions(ctx, s.client, dto.ListTransactionsRequest{})

	s.Require().NoError(err)
	s.txnRepo.AssertExpectations(s.T())
}

func (s *TransactionServiceTestSuite) TestGetClientDashboard_AggregatesAccounts() {
	ctx := context.Background()
	clientID := uuid.NewString()
	first := activeAccount(clientID)
	second := activeAccount(clientID)
	recent := []domain.Transaction{
		{TransactionID: uuid.NewString(), AccountID: first.AccountID, Kind: domain.KindDeposit, Amount: decimal.NewFromInt(1000), Status: domain.TxnValidated},
	}

	s.clientRepo.On("FindClientByUserID", ctx, s.client.UserID).Return(&domain.Client{ClientID: clientID, UserID: s.client.UserID}, nil).Once()
	s.accountRepo.On("ListAccountsByOwner", ctx, clientID, false).Return([]domain.Account{*first, *second}, nil).Once()
	s.txnRepo.On("GetBalance", ctx, first.AccountID).Return(decimal.NewFromInt(700), nil).Once()
	s.txnRepo.On("GetBalance", ctx, second.AccountID).Return(decimal.NewFromInt(300), nil).Once()
	s.txnRepo.On("ListTransactions", ctx, mock.MatchedBy(func(f portsrepo.TransactionListFilters) bool {
		return f.OwnerUserID == s.client.UserID && f.Limit == 5
	})).Return(recent, nil).Once()

	dashboard, err := s.service.GetClientDashboard(ctx, s.client)

	s.Require().NoError(err)
	s.Equal(clientID, dashboard.ClientID)
	s.Equal(2, dashboard.AccountCount)
	s.True(dashboard.TotalBalance.Equal(decimal.NewFromInt(1000)))
	s.Len(dashboard.RecentTransactions, 1)
	s.txnRepo.AssertExpectations(s.T())
}

func (s *TransactionServiceTestSuite) TestGetClientDashboard_NoClientProfileForbidden() {
	ctx := context.Background()

	s.clientRepo.On("FindClientByUserID", ctx, s.admin.UserID).Return(nil, apperrors.ErrNotFound).Once()

	dashboard, err := s.service.GetClientDashboard(ctx, s.admin)

	s.Require().Error(err)
	s.Nil(dashboard)
	s.ErrorIs(err, apperrors.ErrForbidden)
}

func TestTransactionServiceTestSuite(t *testing.T) {
	suite.Run(t, new(TransactionServiceTestSuite))
}
