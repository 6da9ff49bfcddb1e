package dto

import (
	"time"

	"github.com/jamila-bank/backoffice-api/internal/core/domain"
	"github.com/shopspring/decimal"
)

// CreateTransactionRequest is the payload to commit a new ledger movement.
// DestinationAccountID is required for transfers; payments accept either a
// destination account or a merchant code (a first-seen merchant is provisioned
// on the fly).
type CreateTransactionRequest struct {
	AccountID            string          `json:"accountID" binding:"omitempty,uuid"`
	Kind                 string          `json:"kind" binding:"required,oneof=deposit withdrawal transfer payment"`
	Amount               decimal.Decimal `json:"amount" binding:"required"`
	DestinationAccountID string          `json:"destinationAccountID" binding:"omitempty,uuid"`
	MerchantCode         string          `json:"merchantCode" binding:"omitempty,max=32"`
	Description          string          `json:"description" binding:"omitempty,max=255"`
}

// UpdateTransactionStatusRequest is the admin-only status override payload.
type UpdateTransactionStatusRequest struct {
	Status string `json:"status" binding:"required,oneof=pending validated rejected cancelled archived"`
}

// ListTransactionsRequest carries the ledger listing query parameters.
type ListTransactionsRequest struct {
	Kind            string `form:"kind" binding:"omitempty,oneof=deposit withdrawal transfer payment"`
	Status          string `form:"status" binding:"omitempty,oneof=pending validated rejected cancelled archived"`
	AccountID       string `form:"accountID" binding:"omitempty,uuid"`
	DateFrom        string `form:"dateFrom" binding:"omitempty,datetime=2006-01-02"`
	DateTo          string `form:"dateTo" binding:"omitempty,datetime=2006-01-02"`
	IncludeArchived bool   `form:"includeArchived"`
	Limit           int    `form:"limit,default=10" binding:"omitempty,min=1,max=100"`
	Offset          int    `form:"offset" binding:"omitempty,min=0"`
}

// TransactionResponse is the API representation of one ledger row.
type TransactionResponse struct {
	TransactionID        string          `json:"transactionID"`
	TransactionNumber    string          `json:"transactionNumber"`
	AccountID            string          `json:"accountID"`
	DestinationAccountID *string         `json:"destinationAccountID,omitempty"`
	Kind                 string          `json:"kind"`
	Amount               decimal.Decimal `json:"amount"`
	Description          string          `json:"description,omitempty"`
	Status               string          `json:"status"`
	TransactedAt         time.Time       `json:"transactedAt"`
}

// LedgerStatisticsResponse is the admin dashboard aggregate.
type LedgerStatisticsResponse struct {
	TotalTransactions int64           `json:"totalTransactions"`
	NetBalance        decimal.Decimal `json:"netBalance"`
}

// AccountStatisticsResponse aggregates one account's validated rows.
type AccountStatisticsResponse struct {
	AccountID        string               `json:"accountID"`
	TotalDeposits    decimal.Decimal      `json:"totalDeposits"`
	TotalDebits      decimal.Decimal      `json:"totalDebits"`
	CurrentBalance   decimal.Decimal      `json:"currentBalance"`
	TransactionCount int                  `json:"transactionCount"`
	LastTransaction  *TransactionResponse `json:"lastTransaction,omitempty"`
}

// ClientDashboardResponse summarizes the caller's accounts, combined balance,
// and latest movements.
type ClientDashboardResponse struct {
	ClientID           string                `json:"clientID"`
	AccountCount       int                   `json:"accountCount"`
	TotalBalance       decimal.Decimal       `json:"totalBalance"`
	RecentTransactions []TransactionResponse `json:"recentTransactions"`
}

// BalanceResponse reports a derived account balance.
type BalanceResponse struct {
	AccountID string          `json:"accountID"`
	Balance   decimal.Decimal `json:"balance"`
}

// Filters converts the request into repository-level listing filters.
func (r ListTransactionsRequest) Filters() (domain.TransactionKind, domain.TransactionStatus) {
	return domain.TransactionKind(r.Kind), domain.TransactionStatus(r.Status)
}
