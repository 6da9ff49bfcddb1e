package mapping

import (
	"github.com/jamila-bank/backoffice-api/internal/core/domain"
	"github.com/jamila-bank/backoffice-api/internal/dto"
)

// ToClientResponse converts a domain Client to its API representation.
func ToClientResponse(c domain.Client) dto.ClientResponse {
	return dto.ClientResponse{
		ClientID:  c.ClientID,
		UserID:    c.UserID,
		Phone:     c.Phone,
		FirstName: c.FirstName,
		LastName:  c.LastName,
		Address:   c.Address,
		CreatedAt: c.CreatedAt,
	}
}

// ToClientResponses converts a slice of domain Clients.
func ToClientResponses(clients []domain.Client) []dto.ClientResponse {
	responses := make([]dto.ClientResponse, len(clients))
	for i, c := range clients {
		responses[i] = ToClientResponse(c)
	}
	return responses
}
