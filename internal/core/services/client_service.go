package services

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/jamila-bank/backoffice-api/internal/apperrors"
	"github.com/jamila-bank/backoffice-api/internal/core/domain"
	portsrepo "github.com/jamila-bank/backoffice-api/internal/core/ports/repositories"
	portssvc "github.com/jamila-bank/backoffice-api/internal/core/ports/services"
	"github.com/jamila-bank/backoffice-api/internal/dto"
	"github.com/jamila-bank/backoffice-api/internal/middleware"
)

// clientService is the client directory: account owners and the merchants
// provisioned from first-seen merchant codes.
type clientService struct {
	clientRepo portsrepo.ClientRepositoryFacade
	now        func() time.Time
}

// NewClientService creates a new client directory service.
func NewClientService(clientRepo portsrepo.ClientRepositoryFacade) portssvc.ClientSvcFacade {
	return &clientService{clientRepo: clientRepo, now: time.Now}
}

var _ portssvc.ClientSvcFacade = (*clientService)(nil)

// GetClientByUserID retrieves the client profile linked to a user.
func (s *clientService) GetClientByUserID(ctx context.Context, userID string) (*domain.Client, error) {
	return s.clientRepo.FindClientByUserID(ctx, userID)
}

// GetClientByID retrieves a client; non-admin callers only see their own
// profile.
func (s *clientService) GetClientByID(ctx context.Context, caller domain.Caller, clientID string) (*domain.Client, error) {
	client, err := s.clientRepo.FindClientByID(ctx, clientID)
	if err != nil {
		return nil, err
	}
	if !caller.IsAdmin() && client.UserID != caller.UserID {
		return nil, fmt.Errorf("client %s does not belong to caller: %w", clientID, apperrors.ErrForbidden)
	}
	return client, nil
}

// FindClientByPhone retrieves a client by phone number or merchant code.
func (s *clientService) FindClientByPhone(ctx context.Context, caller domain.Caller, phone string) (*domain.Client, error) {
	if !caller.IsAdmin() {
		return nil, fmt.Errorf("phone lookup is admin-only: %w", apperrors.ErrForbidden)
	}
	return s.clientRepo.FindClientByPhone(ctx, phone)
}

// ListClients retrieves a paginated client listing (admin only).
func (s *clientService) ListClients(ctx context.Context, caller domain.Caller, req dto.ListClientsRequest) ([]domain.Client, error) {
	if !caller.IsAdmin() {
		return nil, fmt.Errorf("client listing is admin-only: %w", apperrors.ErrForbidden)
	}
	return s.clientRepo.ListClients(ctx, req.Limit, req.Offset)
}

// UpdateClient modifies mutable client details (admin only). The phone number
// is immutable; merchant codes and payment resolution depend on it.
func (s *clientService) UpdateClient(ctx context.Context, caller domain.Caller, clientID string, req dto.UpdateClientRequest) (*domain.Client, error) {
	if !caller.IsAdmin() {
		return nil, fmt.Errorf("client modification is admin-only: %w", apperrors.ErrForbidden)
	}
	client, err := s.clientRepo.FindClientByID(ctx, clientID)
	if err != nil {
		return nil, err
	}

	if req.FirstName != "" {
		client.FirstName = req.FirstName
	}
	if req.LastName != "" {
		client.LastName = req.LastName
	}
	if req.Address != "" {
		client.Address = req.Address
	}
	client.LastUpdatedAt = s.now().UTC()

	if err := s.clientRepo.UpdateClient(ctx, *client); err != nil {
		return nil, err
	}

	middleware.GetLoggerFromCtx(ctx).Info("Client updated",
		slog.String("client_id", client.ClientID),
	)
	return client, nil
}
