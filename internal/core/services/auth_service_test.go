package services_test

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/suite"

	"github.com/jamila-bank/backoffice-api/internal/apperrors"
	"github.com/jamila-bank/backoffice-api/internal/core/domain"
	portssvc "github.com/jamila-bank/backoffice-api/internal/core/ports/services"
	"github.com/jamila-bank/backoffice-api/internal/core/services"
	"github.com/jamila-bank/backoffice-api/internal/dto"
	"github.com/jamila-bank/backoffice-api/internal/utils"
)

const testJWTSecret = "test-secret-key-for-signing"

type AuthServiceTestSuite struct {
	suite.Suite
	userRepo *MockUserRepository
	service  portssvc.AuthSvcFacade
}

func (s *AuthServiceTestSuite) SetupTest() {
	s.userRepo = new(MockUserRepository)
	s.service = services.NewAuthService(s.userRepo, testJWTSecret, time.Hour, "jamila-bank")
}

func (s *AuthServiceTestSuite) TestLogin_Success() {
	ctx := context.Background()
	hash, err := utils.HashPassword("correct-horse-battery")
	s.Require().NoError(err)
	user := &domain.User{
		UserID:       uuid.NewString(),
		Email:        "admin@jamila-bank.example",
		PasswordHash: hash,
		Role:         domain.RoleAdmin,
	}

	s.userRepo.On("FindUserByEmail", ctx, user.Email).Return(user, nil).Once()

	resp, err := s.service.Login(ctx, dto.LoginRequest{Email: user.Email, Password: "correct-horse-battery"})

	s.Require().NoError(err)
	s.Require().NotNil(resp)
	s.Equal("Bearer", resp.TokenType)
	s.Equal(user.UserID, resp.UserID)
	s.Equal("admin", resp.Role)

	claims, err := utils.ParseAndValidateJWT(resp.Token, testJWTSecret)
	s.Require().NoError(err)
	s.Equal(user.UserID, claims.Subject)
	s.Equal("admin", claims.Role)
}

func (s *AuthServiceTestSuite) TestLogin_WrongPassword() {
	ctx := context.Background()
	hash, err := utils.HashPassword("real-password")
	s.Require().NoError(err)
	user := &domain.User{
		UserID:       uuid.NewString(),
		Email:        "client@jamila-bank.example",
		PasswordHash: hash,
		Role:         domain.RoleClient,
	}

	s.userRepo.On("FindUserByEmail", ctx, user.Email).Return(user, nil).Once()

	resp, err := s.service.Login(ctx, dto.LoginRequest{Email: user.Email, Password: "wrong-password"})

	s.Require().Error(err)
	s.Nil(resp)
	s.ErrorIs(err, apperrors.ErrForbidden)
}

func (s *AuthServiceTestSuite) TestLogin_UnknownEmail() {
	ctx := context.Background()

	s.userRepo.On("FindUserByEmail", ctx, "nobody@example.com").Return(nil, apperrors.ErrNotFound).Once()

	resp, err := s.service.Login(ctx, dto.LoginRequest{Email: "nobody@example.com", Password: "whatever-pass"})

	s.Require().Error(err)
	s.Nil(resp)
	s.ErrorIs(err, apperrors.ErrForbidden)
}

func TestAuthServiceTestSuite(t *testing.T) {
	suite.Run(t, new(AuthServiceTestSuite))
}
