package pgsql

import (
	portsrepo "github.com/jamila-bank/backoffice-api/internal/core/ports/repositories"
	"github.com/jackc/pgx/v5/pgxpool"
)

func NewRepositoryProvider(dbPool *pgxpool.Pool) portsrepo.RepositoryProvider {
	accountRepo := newPgxAccountRepository(dbPool)
	transactionRepo := newPgxTransactionRepository(dbPool, accountRepo)
	clientRepo := newPgxClientRepository(dbPool)
	userRepo := newPgxUserRepository(dbPool)

	return portsrepo.RepositoryProvider{
		AccountRepo:     accountRepo,
		TransactionRepo: transactionRepo,
		ClientRepo:      clientRepo,
		UserRepo:        userRepo,
	}
}
