package services_test

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/suite"

	"github.com/jamila-bank/backoffice-api/internal/apperrors"
	"github.com/jamila-bank/backoffice-api/internal/core/domain"
	portssvc "github.com/jamila-bank/backoffice-api/internal/core/ports/services"
	"github.com/jamila-bank/backoffice-api/internal/core/services"
)

type ArchivalServiceTestSuite struct {
	suite.Suite
	txnRepo *MockTransactionRepository
	store   *MockArchiveStore
	service portssvc.ArchivalSvcFacade
}

func (s *ArchivalServiceTestSuite) SetupTest() {
	s.txnRepo = new(MockTransactionRepository)
	s.store = new(MockArchiveStore)
	s.service = services.NewArchivalService(s.txnRepo, s.store)
}

func validatedTxn(kind domain.TransactionKind, amount int64, at time.Time) domain.Transaction {
	return domain.Transaction{
		TransactionID:     uuid.NewString(),
		TransactionNumber: "TXN-20250106-EF56",
		AccountID:         uuid.NewString(),
		Kind:              kind,
		Amount:            decimal.NewFromInt(amount),
		Status:            domain.TxnValidated,
		TransactedAt:      at,
	}
}

func (s *ArchivalServiceTestSuite) TestArchiveWeek_ExportsAndMarksArchived() {
	ctx := context.Background()
	// ISO week 2 of 2025 runs Monday Jan 6 through Sunday Jan 12.
	weekStart := time.Date(2025, time.January, 6, 0, 0, 0, 0, time.UTC)
	txns := []domain.Transaction{
		validatedTxn(domain.KindDeposit, 1000, weekStart.Add(10*time.Hour)),
		validatedTxn(domain.KindWithdrawal, 300, weekStart.AddDate(0, 0, 3)),
	}

	s.txnRepo.On("ListValidatedBetween", ctx, weekStart, weekStart.AddDate(0, 0, 7)).Return(txns, nil).Once()
	s.store.On("Write", ctx, mock.MatchedBy(func(a domain.WeeklyArchive) bool {
		return a.WeekNumber == 2 && a.Year == 2025 &&
			a.TotalTransactions == 2 &&
			a.TotalDeposits.Equal(decimal.NewFromInt(1000)) &&
			a.TotalDebits.Equal(decimal.NewFromInt(300)) &&
			a.NetBalance.Equal(decimal.NewFromInt(700))
	})).Return("transactions_week_2_2025", nil).Once()
	s.txnRepo.On("MarkTransactionsArchived", ctx, []string{txns[0].TransactionID, txns[1].TransactionID}, mock.AnythingOfType("time.Time")).Return(nil).Once()

	archive, err := s.service.ArchiveWeek(ctx, 2, 2025)

	s.Require().NoError(err)
	s.Require().NotNil(archive)
	s.Equal(2, archive.TotalTransactions)
	s.store.AssertExpectations(s.T())
	s.txnRepo.AssertExpectations(s.T())
}

func (s *ArchivalServiceTestSuite) TestArchiveWeek_EmptyWeekIsNoOp() {
	ctx := context.Background()

	s.txnRepo.On("ListValidatedBetween", ctx, mock.AnythingOfType("time.Time"), mock.AnythingOfType("time.Time")).Return([]domain.Transaction{}, nil).Once()

	archive, err := s.service.ArchiveWeek(ctx, 30, 2025)

	s.Require().NoError(err)
	s.Nil(archive)
	s.store.AssertNotCalled(s.T(), "Write")
	s.txnRepo.AssertNotCalled(s.T(), "MarkTransactionsArchived")
}

func (s *ArchivalServiceTestSuite) TestArchiveWeek_StoreFailureLeavesRowsUnarchived() {
	ctx := context.Background()
	weekStart := time.Date(2025, time.January, 6, 0, 0, 0, 0, time.UTC)
	txns := []domain.Transaction{validatedTxn(domain.KindDeposit, 500, weekStart.Add(time.Hour))}

	s.txnRepo.On("ListValidatedBetween", ctx, weekStart, weekStart.AddDate(0, 0, 7)).Return(txns, nil).Once()
	s.store.On("Write", ctx, mock.AnythingOfType("domain.WeeklyArchive")).Return("", assert.AnError).Once()

	archive, err := s.service.ArchiveWeek(ctx, 2, 2025)

	s.Require().Error(err)
	s.Nil(archive)
	s.ErrorIs(err, apperrors.ErrExternalDependency)
	s.txnRepo.AssertNotCalled(s.T(), "MarkTransactionsArchived")
}

func (s *ArchivalServiceTestSuite) TestArchiveWeek_InvalidWeekNumber() {
	ctx := context.Background()

	archive, err := s.service.ArchiveWeek(ctx, 0, 2025)

	s.Require().Error(err)
	s.Nil(archive)
	s.ErrorIs(err, apperrors.ErrValidation)
}

func (s *ArchivalServiceTestSuite) TestArchiveWeek_Week53RejectedInShortYear() {
	ctx := context.Background()

	// 2021 has 52 ISO weeks; a week-53 request must not roll into 2022-W1.
	archive, err := s.service.ArchiveWeek(ctx, 53, 2021)

	s.Require().Error(err)
	s.Nil(archive)
	s.ErrorIs(err, apperrors.ErrValidation)
	s.txnRepo.AssertNotCalled(s.T(), "ListValidatedBetween")
}

func (s *ArchivalServiceTestSuite) TestArchiveWeek_Week53AcceptedInLongYear() {
	ctx := context.Background()

	// 2020 has 53 ISO weeks, so the same week number is legitimate there.
	s.txnRepo.On("ListValidatedBetween", ctx, mock.AnythingOfType("time.Time"), mock.AnythingOfType("time.Time")).Return([]domain.Transaction{}, nil).Once()

	archive, err := s.service.ArchiveWeek(ctx, 53, 2020)

	s.Require().NoError(err)
	s.Nil(archive)
	s.txnRepo.AssertExpectations(s.T())
}

func TestArchivalServiceTestSuite(t *testing.T) {
	suite.Run(t, new(ArchivalServiceTestSuite))
}
