package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/hibiken/asynq"

	"github.com/jamila-bank/backoffice-api/internal/adapters/archive"
	"github.com/jamila-bank/backoffice-api/internal/adapters/notification"
	"github.com/jamila-bank/backoffice-api/internal/core/services"
	"github.com/jamila-bank/backoffice-api/internal/jobs"
	"github.com/jamila-bank/backoffice-api/internal/repositories/database/pgsql"
	"github.com/jamila-bank/backoffice-api/pkg/config"
	"github.com/jamila-bank/backoffice-api/pkg/database"
)

// The worker process runs the background side of the system: the hourly
// account lifecycle sweep, the weekly ledger export, and notification
// delivery. The API process only enqueues; this process executes.
func main() {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	slog.SetDefault(logger)

	cfg, err := config.LoadConfig()
	if err != nil {
		logger.Error("Failed to load config", slog.String("error", err.Error()))
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	dbPool, err := database.NewPgxPool(ctx, cfg.DatabaseURL)
	if err != nil {
		logger.Error("Failed to initialize database pool", slog.String("error", err.Error()))
		os.Exit(1)
	}
	defer database.ClosePgxPool(dbPool)

	archiveStore, err := archive.NewMongoStore(ctx, cfg.MongoURI, cfg.MongoDatabase)
	if err != nil {
		logger.Error("Failed to connect to archive store", slog.String("error", err.Error()))
		os.Exit(1)
	}
	defer func() { _ = archiveStore.Close(context.Background()) }()

	redisOpts := asynq.RedisClientOpt{Addr: cfg.RedisAddr}
	asynqClient := asynq.NewClient(redisOpts)
	defer func() { _ = asynqClient.Close() }()

	repos := pgsql.NewRepositoryProvider(dbPool)
	serviceContainer := services.NewServiceContainer(
		repos,
		notification.NewAsynqEnqueuer(asynqClient),
		archiveStore,
		cfg,
	)

	scheduler := jobs.NewScheduler(asynqClient, cfg, logger)
	scheduler.Start()
	defer func() { <-scheduler.Stop().Done() }()

	worker := jobs.NewWorker(redisOpts, serviceContainer, cfg, logger)
	logger.Info("Worker starting",
		slog.String("sweep_spec", cfg.SweepCronSpec),
		slog.String("archive_spec", cfg.ArchiveCronSpec),
		slog.Bool("unblock_instead_of_archive", cfg.UnblockInsteadOfArchive),
	)
	if err := worker.Run(ctx); err != nil && err != context.Canceled {
		logger.Error("Worker stopped with error", slog.String("error", err.Error()))
		os.Exit(1)
	}
	logger.Info("Worker shut down")
}
