package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/jamila-bank/backoffice-api/internal/apperrors"
	portsrepo "github.com/jamila-bank/backoffice-api/internal/core/ports/repositories"
	portssvc "github.com/jamila-bank/backoffice-api/internal/core/ports/services"
	"github.com/jamila-bank/backoffice-api/internal/dto"
	"github.com/jamila-bank/backoffice-api/internal/middleware"
	"github.com/jamila-bank/backoffice-api/internal/utils"
)

// authService issues bearer tokens for valid email/password credentials.
type authService struct {
	userRepo  portsrepo.UserRepositoryFacade
	jwtSecret string
	jwtExpiry time.Duration
	jwtIssuer string
}

// NewAuthService creates a new authentication service.
func NewAuthService(userRepo portsrepo.UserRepositoryFacade, jwtSecret string, jwtExpiry time.Duration, jwtIssuer string) portssvc.AuthSvcFacade {
	return &authService{
		userRepo:  userRepo,
		jwtSecret: jwtSecret,
		jwtExpiry: jwtExpiry,
		jwtIssuer: jwtIssuer,
	}
}

var _ portssvc.AuthSvcFacade = (*authService)(nil)

// Login verifies the credentials and returns a signed bearer token carrying
// the user's id and role. Unknown emails and bad passwords produce the same
// error so the response does not leak which part failed.
func (s *authService) Login(ctx context.Context, req dto.LoginRequest) (*dto.LoginResponse, error) {
	user, err := s.userRepo.FindUserByEmail(ctx, req.Email)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return nil, fmt.Errorf("invalid credentials: %w", apperrors.ErrForbidden)
		}
		return nil, err
	}
	if !utils.CheckPasswordHash(req.Password, user.PasswordHash) {
		return nil, fmt.Errorf("invalid credentials: %w", apperrors.ErrForbidden)
	}

	token, err := utils.GenerateJWT(user.UserID, string(user.Role), s.jwtSecret, s.jwtExpiry, s.jwtIssuer)
	if err != nil {
		return nil, fmt.Errorf("failed to sign token: %w", err)
	}

	middleware.GetLoggerFromCtx(ctx).Info("User logged in",
		slog.String("user_id", user.UserID),
		slog.String("role", string(user.Role)),
	)
	return &dto.LoginResponse{
		Token:     token,
		TokenType: "Bearer",
		ExpiresIn: int64(s.jwtExpiry.Seconds()),
		UserID:    user.UserID,
		Role:      string(user.Role),
	}, nil
}
