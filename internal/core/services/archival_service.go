package services

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/shopspring/decimal"

	"github.com/jamila-bank/backoffice-api/internal/apperrors"
	"github.com/jamila-bank/backoffice-api/internal/core/domain"
	"github.com/jamila-bank/backoffice-api/internal/core/ports"
	portsrepo "github.com/jamila-bank/backoffice-api/internal/core/ports/repositories"
	portssvc "github.com/jamila-bank/backoffice-api/internal/core/ports/services"
	"github.com/jamila-bank/backoffice-api/internal/middleware"
)

const archiveSource = "backoffice-api"

// archivalService exports one ISO week of validated transactions to the
// external archive store and soft-archives them locally. The export happens
// before the local flip, so a crash between the two leaves the rows eligible
// for the next run; the store keys documents by week and year, making the
// retry land on the same collection.
type archivalService struct {
	txnRepo portsrepo.TransactionRepositoryWithTx
	store   ports.ArchiveStore
	now     func() time.Time
}

// NewArchivalService creates the weekly archival driver.
func NewArchivalService(txnRepo portsrepo.TransactionRepositoryWithTx, store ports.ArchiveStore) portssvc.ArchivalSvcFacade {
	return &archivalService{txnRepo: txnRepo, store: store, now: time.Now}
}

var _ portssvc.ArchivalSvcFacade = (*archivalService)(nil)

// isoWeekRange returns the [start, end) bounds of an ISO week: Monday 00:00
// UTC to the following Monday 00:00 UTC. ISO 8601 places January 4th in week
// one, which anchors the computation.
func isoWeekRange(weekNumber, year int) (time.Time, time.Time) {
	jan4 := time.Date(year, time.January, 4, 0, 0, 0, 0, time.UTC)
	weekday := int(jan4.Weekday())
	if weekday == 0 {
		weekday = 7
	}
	week1Monday := jan4.AddDate(0, 0, 1-weekday)
	start := week1Monday.AddDate(0, 0, (weekNumber-1)*7)
	return start, start.AddDate(0, 0, 7)
}

// ArchiveWeek exports the validated rows transacted during the given ISO week.
// A week with no eligible rows is a successful no-op and returns (nil, nil).
func (s *archivalService) ArchiveWeek(ctx context.Context, weekNumber, year int) (*domain.WeeklyArchive, error) {
	logger := middleware.GetLoggerFromCtx(ctx)

	if weekNumber < 1 || weekNumber > 53 {
		return nil, fmt.Errorf("week number %d out of range: %w", weekNumber, apperrors.ErrValidation)
	}

	start, end := isoWeekRange(weekNumber, year)
	// Week 53 only exists in long ISO years. Round-tripping the computed
	// start through ISOWeek catches requests for a week the year does not
	// have, which would otherwise select the next year's first week and
	// mislabel its archive document.
	if y, w := start.ISOWeek(); y != year || w != weekNumber {
		return nil, fmt.Errorf("year %d has no week %d: %w", year, weekNumber, apperrors.ErrValidation)
	}

	txns, err := s.txnRepo.ListValidatedBetween(ctx, start, end)
	if err != nil {
		return nil, err
	}
	if len(txns) == 0 {
		logger.Info("No transactions to archive",
			slog.Int("week", weekNumber),
			slog.Int("year", year),
		)
		return nil, nil
	}

	archive := domain.WeeklyArchive{
		WeekNumber:        weekNumber,
		Year:              year,
		PeriodStart:       start,
		PeriodEnd:         end,
		TotalTransactions: len(txns),
		TotalDeposits:     decimal.Zero,
		TotalDebits:       decimal.Zero,
		Transactions:      txns,
		ArchivedAt:        s.now().UTC(),
		Source:            archiveSource,
	}
	for _, txn := range txns {
		if txn.Kind == domain.KindDeposit {
			archive.TotalDeposits = archive.TotalDeposits.Add(txn.Amount)
		} else {
			archive.TotalDebits = archive.TotalDebits.Add(txn.Amount)
		}
	}
	archive.NetBalance = archive.TotalDeposits.Sub(archive.TotalDebits)

	docID, err := s.store.Write(ctx, archive)
	if err != nil {
		return nil, fmt.Errorf("archive store write for week %d/%d: %w: %v", weekNumber, year, apperrors.ErrExternalDependency, err)
	}

	ids := make([]string, len(txns))
	for i, txn := range txns {
		ids[i] = txn.TransactionID
	}
	if err := s.txnRepo.MarkTransactionsArchived(ctx, ids, s.now().UTC()); err != nil {
		return nil, err
	}

	logger.Info("Week archived",
		slog.Int("week", weekNumber),
		slog.Int("year", year),
		slog.Int("transactions", len(txns)),
		slog.String("document_id", docID),
	)
	return &archive, nil
}
