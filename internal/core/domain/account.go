package domain

import "time"

// AccountKind defines the product type of a bank account.
type AccountKind string

const (
	KindCurrent AccountKind = "current"
	KindSavings AccountKind = "savings"
	KindCheck   AccountKind = "check"
)

// AccountStatus is the lifecycle state of an account.
type AccountStatus string

const (
	StatusActive   AccountStatus = "active"
	StatusInactive AccountStatus = "inactive"
	StatusBlocked  AccountStatus = "blocked"
	StatusArchived AccountStatus = "archived"
)

// Account represents a bank account within the core domain.
// The balance is never stored on the account; it is always derived from the
// ledger by the balance calculator.
type Account struct {
	AccountID     string        `json:"accountID"`     // Primary key (UUID)
	AccountNumber string        `json:"accountNumber"` // Human-facing number, unique, immutable once assigned
	OwnerID       string        `json:"ownerID"`       // FK -> clients.client_id
	Kind          AccountKind   `json:"kind"`
	Status        AccountStatus `json:"status"`
	OpenedAt      time.Time     `json:"openedAt"`

	// Block window, set together for savings accounts with a scheduled freeze.
	BlockStart        *time.Time `json:"blockStart,omitempty"`
	BlockEnd          *time.Time `json:"blockEnd,omitempty"`
	BlockDurationDays *int       `json:"blockDurationDays,omitempty"`

	AuditFields
}

// IsActive reports whether the account may originate or receive transactions.
func (a Account) IsActive() bool {
	return a.Status == StatusActive
}

// IsArchived reports whether the account has reached its terminal soft-closed state.
func (a Account) IsArchived() bool {
	return a.Status == StatusArchived
}

// BlockExpired reports whether the account's block window has elapsed at the given instant.
func (a Account) BlockExpired(now time.Time) bool {
	return a.Status == StatusBlocked && a.BlockEnd != nil && a.BlockEnd.Before(now)
}
