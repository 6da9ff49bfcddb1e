package mapping

import (
	"github.com/jamila-bank/backoffice-api/internal/core/domain"
	"github.com/jamila-bank/backoffice-api/internal/dto"
)

// ToTransactionResponse converts a domain Transaction to its API representation.
func ToTransactionResponse(t domain.Transaction) dto.TransactionResponse {
	return dto.TransactionResponse{
		TransactionID:        t.TransactionID,
		TransactionNumber:    t.TransactionNumber,
		AccountID:            t.AccountID,
		DestinationAccountID: t.DestinationAccountID,
		Kind:                 string(t.Kind),
		Amount:               t.Amount,
		Description:          t.Description,
		Status:               string(t.Status),
		TransactedAt:         t.TransactedAt,
	}
}

// ToTransactionResponses converts a slice of domain Transactions.
func ToTransactionResponses(ts []domain.Transaction) []dto.TransactionResponse {
	out := make([]dto.TransactionResponse, 0, len(ts))
	for _, t := range ts {
		out = append(out, ToTransactionResponse(t))
	}
	return out
}

// ToAccountStatisticsResponse converts one account's aggregates.
func ToAccountStatisticsResponse(s domain.AccountStatistics) dto.AccountStatisticsResponse {
	resp := dto.AccountStatisticsResponse{
		AccountID:        s.AccountID,
		TotalDeposits:    s.TotalDeposits,
		TotalDebits:      s.TotalDebits,
		CurrentBalance:   s.CurrentBalance,
		TransactionCount: s.TransactionCount,
	}
	if s.LastTransaction != nil {
		last := ToTransactionResponse(*s.LastTransaction)
		resp.LastTransaction = &last
	}
	return resp
}

// ToClientDashboardResponse converts a client's position summary.
func ToClientDashboardResponse(d domain.ClientDashboard) dto.ClientDashboardResponse {
	return dto.ClientDashboardResponse{
		ClientID:           d.ClientID,
		AccountCount:       d.AccountCount,
		TotalBalance:       d.TotalBalance,
		RecentTransactions: ToTransactionResponses(d.RecentTransactions),
	}
}
