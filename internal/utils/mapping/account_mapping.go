package mapping

import (
	"github.com/jamila-bank/backoffice-api/internal/core/domain"
	"github.com/jamila-bank/backoffice-api/internal/dto"
	"github.com/shopspring/decimal"
)

// ToAccountResponse converts a domain Account to its API representation.
func ToAccountResponse(a domain.Account) dto.AccountResponse {
	return dto.AccountResponse{
		AccountID:         a.AccountID,
		AccountNumber:     a.AccountNumber,
		OwnerID:           a.OwnerID,
		Kind:              string(a.Kind),
		Status:            string(a.Status),
		OpenedAt:          a.OpenedAt,
		BlockStart:        a.BlockStart,
		BlockEnd:          a.BlockEnd,
		BlockDurationDays: a.BlockDurationDays,
	}
}

// ToAccountResponseWithBalance attaches a derived balance to the representation.
func ToAccountResponseWithBalance(a domain.Account, balance decimal.Decimal) dto.AccountResponse {
	resp := ToAccountResponse(a)
	resp.Balance = &balance
	return resp
}

// ToAccountResponses converts a slice of domain Accounts.
func ToAccountResponses(as []domain.Account) []dto.AccountResponse {
	out := make([]dto.AccountResponse, 0, len(as))
	for _, a := range as {
		out = append(out, ToAccountResponse(a))
	}
	return out
}
