package services

import (
	"context"

	"github.com/jamila-bank/backoffice-api/internal/dto"
)

// AuthSvcFacade issues bearer tokens for valid credentials.
type AuthSvcFacade interface {
	Login(ctx context.Context, req dto.LoginRequest) (*dto.LoginResponse, error)
}
