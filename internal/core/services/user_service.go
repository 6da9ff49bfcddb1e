package services

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/jamila-bank/backoffice-api/internal/apperrors"
	"github.com/jamila-bank/backoffice-api/internal/core/domain"
	portsrepo "github.com/jamila-bank/backoffice-api/internal/core/ports/repositories"
	portssvc "github.com/jamila-bank/backoffice-api/internal/core/ports/services"
	"github.com/jamila-bank/backoffice-api/internal/dto"
	"github.com/jamila-bank/backoffice-api/internal/utils"
)

// userService manages API principals.
type userService struct {
	userRepo portsrepo.UserRepositoryFacade
	now      func() time.Time
}

// NewUserService creates a new user service.
func NewUserService(userRepo portsrepo.UserRepositoryFacade) portssvc.UserSvcFacade {
	return &userService{userRepo: userRepo, now: time.Now}
}

var _ portssvc.UserSvcFacade = (*userService)(nil)

// CreateUser registers a new API principal (admin only).
func (s *userService) CreateUser(ctx context.Context, caller domain.Caller, req dto.CreateUserRequest) (*domain.User, error) {
	if !caller.IsAdmin() {
		return nil, fmt.Errorf("user registration is admin-only: %w", apperrors.ErrForbidden)
	}

	hash, err := utils.HashPassword(req.Password)
	if err != nil {
		return nil, err
	}

	now := s.now().UTC()
	user := domain.User{
		UserID:       uuid.NewString(),
		Name:         req.Name,
		Email:        req.Email,
		PasswordHash: hash,
		Role:         domain.Role(req.Role),
		AuditFields:  domain.AuditFields{CreatedAt: now, LastUpdatedAt: now},
	}
	if err := s.userRepo.SaveUser(ctx, user); err != nil {
		return nil, err
	}
	return &user, nil
}

// GetUserByID retrieves a user.
func (s *userService) GetUserByID(ctx context.Context, userID string) (*domain.User, error) {
	return s.userRepo.FindUserByID(ctx, userID)
}
