package services

import (
	"context"

	"github.com/jamila-bank/backoffice-api/internal/core/domain"
	"github.com/jamila-bank/backoffice-api/internal/dto"
)

// UserSvcFacade manages API principals.
type UserSvcFacade interface {
	// CreateUser registers a new user (admin only).
	CreateUser(ctx context.Context, caller domain.Caller, req dto.CreateUserRequest) (*domain.User, error)

	// GetUserByID retrieves a user.
	GetUserByID(ctx context.Context, userID string) (*domain.User, error)
}

// ClientSvcFacade is the client directory: account owners and merchants.
type ClientSvcFacade interface {
	// GetClientByUserID retrieves the client profile linked to a user.
	GetClientByUserID(ctx context.Context, userID string) (*domain.Client, error)

	// GetClientByID retrieves a client; non-admin callers only see their own
	// profile.
	GetClientByID(ctx context.Context, caller domain.Caller, clientID string) (*domain.Client, error)

	// FindClientByPhone retrieves a client by phone number or merchant code
	// (admin only).
	FindClientByPhone(ctx context.Context, caller domain.Caller, phone string) (*domain.Client, error)

	// ListClients retrieves a paginated client listing (admin only).
	ListClients(ctx context.Context, caller domain.Caller, req dto.ListClientsRequest) ([]domain.Client, error)

	// UpdateClient modifies mutable client details (admin only).
	UpdateClient(ctx context.Context, caller domain.Caller, clientID string, req dto.UpdateClientRequest) (*domain.Client, error)
}
