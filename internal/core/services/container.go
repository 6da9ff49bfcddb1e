package services

import (
	"github.com/jamila-bank/backoffice-api/internal/core/ports"
	portsrepo "github.com/jamila-bank/backoffice-api/internal/core/ports/repositories"
	portssvc "github.com/jamila-bank/backoffice-api/internal/core/ports/services"
	"github.com/jamila-bank/backoffice-api/pkg/config"
)

// NewServiceContainer wires every service with its dependencies. The account
// service is built before the transaction engine, which depends on it for
// merchant resolution.
func NewServiceContainer(
	repos portsrepo.RepositoryProvider,
	notifier ports.NotificationEnqueuer,
	archiveStore ports.ArchiveStore,
	cfg *config.AppConfig,
) *portssvc.ServiceContainer {
	accountSvc := NewAccountService(repos.AccountRepo, repos.TransactionRepo, repos.ClientRepo, repos.UserRepo)

	return &portssvc.ServiceContainer{
		Auth:        NewAuthService(repos.UserRepo, cfg.JWTSecret, cfg.JWTExpiry, cfg.JWTIssuer),
		User:        NewUserService(repos.UserRepo),
		Client:      NewClientService(repos.ClientRepo),
		Account:     accountSvc,
		Transaction: NewTransactionService(repos.TransactionRepo, repos.AccountRepo, repos.ClientRepo, accountSvc, notifier),
		Lifecycle:   NewLifecycleService(repos.AccountRepo),
		Archival:    NewArchivalService(repos.TransactionRepo, archiveStore),
	}
}
