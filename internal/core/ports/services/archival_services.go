package services

import (
	"context"

	"github.com/jamila-bank/backoffice-api/internal/core/domain"
)

// ArchivalSvcFacade exports a week of validated transactions to the archive
// store and soft-archives them locally. A nil archive with a nil error means
// the week had no eligible rows (successful no-op).
type ArchivalSvcFacade interface {
	ArchiveWeek(ctx context.Context, weekNumber, year int) (*domain.WeeklyArchive, error)
}
