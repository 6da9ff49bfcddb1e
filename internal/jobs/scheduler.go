package jobs

import (
	"context"
	"log/slog"
	"time"

	"github.com/hibiken/asynq"
	"github.com/robfig/cron/v3"

	"github.com/jamila-bank/backoffice-api/pkg/config"
)

// Scheduler turns the cron schedule into queued tasks. Using the queue as the
// execution path gives every scheduled run the same retry policy as an ad-hoc
// enqueue.
type Scheduler struct {
	cron   *cron.Cron
	client *asynq.Client
	cfg    *config.AppConfig
	logger *slog.Logger
}

// NewScheduler creates the cron driver.
func NewScheduler(client *asynq.Client, cfg *config.AppConfig, logger *slog.Logger) *Scheduler {
	cronLogger := cron.PrintfLogger(slog.NewLogLogger(logger.Handler(), slog.LevelInfo))
	c := cron.New(cron.WithChain(cron.Recover(cronLogger)), cron.WithLocation(time.UTC))
	return &Scheduler{cron: c, client: client, cfg: cfg, logger: logger}
}

// Start registers the periodic jobs and starts the cron loop.
func (s *Scheduler) Start() {
	if _, err := s.cron.AddFunc(s.cfg.SweepCronSpec, s.enqueueLifecycleSweep); err != nil {
		s.logger.Error("Failed to schedule lifecycle sweep", slog.String("error", err.Error()))
	} else {
		s.logger.Info("Scheduled lifecycle sweep", slog.String("spec", s.cfg.SweepCronSpec))
	}

	if _, err := s.cron.AddFunc(s.cfg.ArchiveCronSpec, s.enqueueWeeklyArchive); err != nil {
		s.logger.Error("Failed to schedule weekly archive", slog.String("error", err.Error()))
	} else {
		s.logger.Info("Scheduled weekly archive", slog.String("spec", s.cfg.ArchiveCronSpec))
	}

	s.cron.Start()
}

// Stop halts the cron loop, returning a context that is done once running
// jobs have finished.
func (s *Scheduler) Stop() context.Context {
	return s.cron.Stop()
}

func (s *Scheduler) enqueueLifecycleSweep() {
	_, err := s.client.Enqueue(NewLifecycleSweepTask(), TaskOptions(TaskTypeLifecycleSweep)...)
	if err != nil {
		s.logger.Error("Failed to enqueue lifecycle sweep", slog.String("error", err.Error()))
		return
	}
	s.logger.Info("Enqueued lifecycle sweep")
}

// enqueueWeeklyArchive targets the week that just ended, so the export always
// covers a complete Monday-to-Sunday range.
func (s *Scheduler) enqueueWeeklyArchive() {
	year, week := time.Now().UTC().AddDate(0, 0, -7).ISOWeek()
	task, err := NewArchiveWeekTask(ArchiveWeekPayload{WeekNumber: week, Year: year})
	if err != nil {
		s.logger.Error("Failed to build archive task", slog.String("error", err.Error()))
		return
	}
	if _, err := s.client.Enqueue(task, TaskOptions(TaskTypeArchiveWeek)...); err != nil {
		s.logger.Error("Failed to enqueue weekly archive", slog.String("error", err.Error()))
		return
	}
	s.logger.Info("Enqueued weekly archive", slog.Int("week", week), slog.Int("year", year))
}
