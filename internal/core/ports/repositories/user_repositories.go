package repositories

import (
	"context"

	"github.com/jamila-bank/backoffice-api/internal/core/domain"
)

// UserRepositoryFacade defines storage operations for API principals.
type UserRepositoryFacade interface {
	// FindUserByID retrieves a user by identifier.
	FindUserByID(ctx context.Context, userID string) (*domain.User, error)

	// FindUserByEmail retrieves a user by email address.
	FindUserByEmail(ctx context.Context, email string) (*domain.User, error)

	// SaveUser persists a new user.
	SaveUser(ctx context.Context, user domain.User) error
}
