package services_test

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/suite"

	"github.com/jamila-bank/backoffice-api/internal/core/domain"
	portssvc "github.com/jamila-bank/backoffice-api/internal/core/ports/services"
	"github.com/jamila-bank/backoffice-api/internal/core/services"
)

type LifecycleServiceTestSuite struct {
	suite.Suite
	accountRepo *MockAccountRepository
	service     portssvc.LifecycleSvcFacade
}

func (s *LifecycleServiceTestSuite) SetupTest() {
	s.accountRepo = new(MockAccountRepository)
	s.service = services.NewLifecycleService(s.accountRepo)
}

func blockedAccount(kind domain.AccountKind, blockEnd time.Time) domain.Account {
	start := blockEnd.AddDate(0, 0, -30)
	return domain.Account{
		AccountID:     uuid.NewString(),
		AccountNumber: "C-20250101-CD34",
		OwnerID:       uuid.NewString(),
		Kind:          kind,
		Status:        domain.StatusBlocked,
		BlockStart:    &start,
		BlockEnd:      &blockEnd,
	}
}

func (s *LifecycleServiceTestSuite) TestArchiveSweep_ArchivesAllCandidates() {
	ctx := context.Background()
	expired := time.Now().UTC().Add(-time.Hour)
	candidates := []domain.Account{
		blockedAccount(domain.KindSavings, expired),
		blockedAccount(domain.KindCurrent, expired),
	}

	s.accountRepo.On("ListBlockedWithExpiredWindow", ctx, mock.AnythingOfType("time.Time")).Return(candidates, nil).Once()
	s.accountRepo.On("ArchiveAccount", ctx, candidates[0].AccountID, mock.AnythingOfType("time.Time")).Return(true, nil).Once()
	s.accountRepo.On("ArchiveAccount", ctx, candidates[1].AccountID, mock.AnythingOfType("time.Time")).Return(true, nil).Once()

	count, err := s.service.RunBlockedToArchivedSweep(ctx)

	s.Require().NoError(err)
	s.Equal(2, count)
	s.accountRepo.AssertExpectations(s.T())
}

func (s *LifecycleServiceTestSuite) TestArchiveSweep_SkipsAlreadyTransitioned() {
	ctx := context.Background()
	expired := time.Now().UTC().Add(-time.Hour)
	candidates := []domain.Account{
		blockedAccount(domain.KindSavings, expired),
		blockedAccount(domain.KindSavings, expired),
	}

	s.accountRepo.On("ListBlockedWithExpiredWindow", ctx, mock.AnythingOfType("time.Time")).Return(candidates, nil).Once()
	s.accountRepo.On("ArchiveAccount", ctx, candidates[0].AccountID, mock.AnythingOfType("time.Time")).Return(true, nil).Once()
	// Second candidate was handled by a concurrent run; the repository
	// re-check makes it a no-op.
	s.accountRepo.On("ArchiveAccount", ctx, candidates[1].AccountID, mock.AnythingOfType("time.Time")).Return(false, nil).Once()

	count, err := s.service.RunBlockedToArchivedSweep(ctx)

	s.Require().NoError(err)
	s.Equal(1, count)
}

func (s *LifecycleServiceTestSuite) TestArchiveSweep_NoCandidates() {
	ctx := context.Background()

	s.accountRepo.On("ListBlockedWithExpiredWindow", ctx, mock.AnythingOfType("time.Time")).Return([]domain.Account{}, nil).Once()

	count, err := s.service.RunBlockedToArchivedSweep(ctx)

	s.Require().NoError(err)
	s.Zero(count)
	s.accountRepo.AssertNotCalled(s.T(), "ArchiveAccount")
}

func (s *LifecycleServiceTestSuite) TestArchiveSweep_StopsOnError() {
	ctx := context.Background()
	expired := time.Now().UTC().Add(-time.Hour)
	candidates := []domain.Account{
		blockedAccount(domain.KindSavings, expired),
		blockedAccount(domain.KindSavings, expired),
	}

	s.accountRepo.On("ListBlockedWithExpiredWindow", ctx, mock.AnythingOfType("time.Time")).Return(candidates, nil).Once()
	s.accountRepo.On("ArchiveAccount", ctx, candidates[0].AccountID, mock.AnythingOfType("time.Time")).Return(false, assert.AnError).Once()

	count, err := s.service.RunBlockedToArchivedSweep(ctx)

	s.Require().Error(err)
	s.Zero(count)
	s.accountRepo.AssertNotCalled(s.T(), "ArchiveAccount", ctx, candidates[1].AccountID, mock.Anything)
}

func (s *LifecycleServiceTestSuite) TestUnblockSweep_ReactivatesSavings() {
	ctx := context.Background()
	expired := time.Now().UTC().Add(-time.Minute)
	candidates := []domain.Account{blockedAccount(domain.KindSavings, expired)}

	s.accountRepo.On("ListBlockedSavingsToUnblock", ctx, mock.AnythingOfType("time.Time")).Return(candidates, nil).Once()
	s.accountRepo.On("UnblockAccount", ctx, candidates[0].AccountID, mock.AnythingOfType("time.Time")).Return(true, nil).Once()

	count, err := s.service.RunBlockedToActiveSweep(ctx)

	s.Require().NoError(err)
	s.Equal(1, count)
	s.accountRepo.AssertExpectations(s.T())
}

func TestLifecycleServiceTestSuite(t *testing.T) {
	suite.Run(t, new(LifecycleServiceTestSuite))
}
