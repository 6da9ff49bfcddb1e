package services

import (
	"context"
	"log/slog"
	"time"

	portsrepo "github.com/jamila-bank/backoffice-api/internal/core/ports/repositories"
	portssvc "github.com/jamila-bank/backoffice-api/internal/core/ports/services"
	"github.com/jamila-bank/backoffice-api/internal/middleware"
)

// lifecycleService runs the periodic account state sweeps. Each candidate is
// handled in its own database transaction; the repository re-checks the
// trigger condition under a row lock before applying the transition, so
// overlapping sweep runs cannot double-apply a transition.
type lifecycleService struct {
	accountRepo portsrepo.AccountRepositoryWithTx
	now         func() time.Time
}

// NewLifecycleService creates the sweep runner.
func NewLifecycleService(accountRepo portsrepo.AccountRepositoryWithTx) portssvc.LifecycleSvcFacade {
	return &lifecycleService{accountRepo: accountRepo, now: time.Now}
}

var _ portssvc.LifecycleSvcFacade = (*lifecycleService)(nil)

// RunBlockedToArchivedSweep archives every blocked account whose block window
// end has elapsed, flipping the account and all of its transactions to the
// archived state. Returns the number of accounts transitioned.
func (s *lifecycleService) RunBlockedToArchivedSweep(ctx context.Context) (int, error) {
	logger := middleware.GetLoggerFromCtx(ctx)
	now := s.now().UTC()

	candidates, err := s.accountRepo.ListBlockedWithExpiredWindow(ctx, now)
	if err != nil {
		return 0, err
	}

	archived := 0
	for _, account := range candidates {
		done, err := s.accountRepo.ArchiveAccount(ctx, account.AccountID, now)
		if err != nil {
			logger.Error("Failed to archive account",
				slog.String("account_id", account.AccountID),
				slog.String("error", err.Error()),
			)
			return archived, err
		}
		if !done {
			// Condition no longer holds; a concurrent run got there first.
			continue
		}
		archived++
		logger.Info("Account archived by sweep",
			slog.String("account_id", account.AccountID),
			slog.String("account_number", account.AccountNumber),
		)
	}

	logger.Info("Blocked-to-archived sweep finished",
		slog.Int("candidates", len(candidates)),
		slog.Int("archived", archived),
	)
	return archived, nil
}

// RunBlockedToActiveSweep unblocks every blocked savings account whose block
// window end has elapsed, clearing the window fields. Returns the number of
// accounts transitioned.
func (s *lifecycleService) RunBlockedToActiveSweep(ctx context.Context) (int, error) {
	logger := middleware.GetLoggerFromCtx(ctx)
	now := s.now().UTC()

	candidates, err := s.accountRepo.ListBlockedSavingsToUnblock(ctx, now)
	if err != nil {
		return 0, err
	}

	unblocked := 0
	for _, account := range candidates {
		done, err := s.accountRepo.UnblockAccount(ctx, account.AccountID, now)
		if err != nil {
			logger.Error("Failed to unblock account",
				slog.String("account_id", account.AccountID),
				slog.String("error", err.Error()),
			)
			return unblocked, err
		}
		if !done {
			continue
		}
		unblocked++
		logger.Info("Account unblocked by sweep",
			slog.String("account_id", account.AccountID),
			slog.String("account_number", account.AccountNumber),
		)
	}

	logger.Info("Blocked-to-active sweep finished",
		slog.Int("candidates", len(candidates)),
		slog.Int("unblocked", unblocked),
	)
	return unblocked, nil
}
