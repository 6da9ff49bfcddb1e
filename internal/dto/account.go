package dto

import (
	"time"

	"github.com/shopspring/decimal"
)

// ClientDetails identifies a new or existing account owner. When ClientID is
// empty a fresh client (and its user) is provisioned.
type ClientDetails struct {
	ClientID  string `json:"clientID" binding:"omitempty,uuid"`
	FirstName string `json:"firstName" binding:"omitempty,max=100"`
	LastName  string `json:"lastName" binding:"omitempty,max=100"`
	Phone     string `json:"phone" binding:"omitempty,e164"`
	Email     string `json:"email" binding:"omitempty,email"`
	Address   string `json:"address" binding:"omitempty,max=255"`
}

// CreateAccountRequest opens an account. Providing both block dates turns the
// request into a savings account with a scheduled freeze; a block start at or
// before today blocks the account immediately.
type CreateAccountRequest struct {
	Client         ClientDetails   `json:"client" binding:"required"`
	InitialDeposit decimal.Decimal `json:"initialDeposit"`
	BlockStart     string          `json:"blockStart" binding:"omitempty,datetime=2006-01-02"`
	BlockEnd       string          `json:"blockEnd" binding:"omitempty,datetime=2006-01-02"`
}

// UpdateAccountRequest modifies mutable account details (admin only).
type UpdateAccountRequest struct {
	Status string `json:"status" binding:"omitempty,oneof=active inactive blocked"`
	Kind   string `json:"kind" binding:"omitempty,oneof=current savings check"`
}

// ListAccountsRequest carries account listing query parameters. Archived
// accounts only appear when explicitly requested.
type ListAccountsRequest struct {
	Status          string `form:"status" binding:"omitempty,oneof=active inactive blocked archived"`
	IncludeArchived bool   `form:"includeArchived"`
	Limit           int    `form:"limit,default=10" binding:"omitempty,min=1,max=100"`
	Offset          int    `form:"offset" binding:"omitempty,min=0"`
}

// AccountResponse is the API representation of an account. The balance is
// derived on demand and only populated by endpoints that ask for it.
type AccountResponse struct {
	AccountID         string           `json:"accountID"`
	AccountNumber     string           `json:"accountNumber"`
	OwnerID           string           `json:"ownerID"`
	Kind              string           `json:"kind"`
	Status            string           `json:"status"`
	OpenedAt          time.Time        `json:"openedAt"`
	BlockStart        *time.Time       `json:"blockStart,omitempty"`
	BlockEnd          *time.Time       `json:"blockEnd,omitempty"`
	BlockDurationDays *int             `json:"blockDurationDays,omitempty"`
	Balance           *decimal.Decimal `json:"balance,omitempty"`
}
