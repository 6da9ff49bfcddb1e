package mapping

import (
	"github.com/jamila-bank/backoffice-api/internal/core/domain"
	"github.com/jamila-bank/backoffice-api/internal/dto"
)

// ToUserResponse converts a domain User to its API representation.
func ToUserResponse(u domain.User) dto.UserResponse {
	return dto.UserResponse{
		UserID:    u.UserID,
		Name:      u.Name,
		Email:     u.Email,
		Role:      string(u.Role),
		CreatedAt: u.CreatedAt,
	}
}
