package repositories

import (
	"context"

	"github.com/jamila-bank/backoffice-api/internal/core/domain"
)

// ClientRepositoryFacade defines storage operations for account owners.
type ClientRepositoryFacade interface {
	// FindClientByID retrieves a client by identifier.
	FindClientByID(ctx context.Context, clientID string) (*domain.Client, error)

	// FindClientByUserID retrieves the client profile linked to a user.
	FindClientByUserID(ctx context.Context, userID string) (*domain.Client, error)

	// FindClientByPhone retrieves a client by phone number / merchant code.
	FindClientByPhone(ctx context.Context, phone string) (*domain.Client, error)

	// ListClients retrieves a paginated client listing, oldest first.
	ListClients(ctx context.Context, limit int, offset int) ([]domain.Client, error)

	// SaveClient persists a new client.
	SaveClient(ctx context.Context, client domain.Client) error

	// UpdateClient updates mutable client details. Phone is immutable once
	// assigned; merchant codes and account resolution depend on it.
	UpdateClient(ctx context.Context, client domain.Client) error
}
