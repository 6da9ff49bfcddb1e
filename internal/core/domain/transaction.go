package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// TransactionKind is the business type of a ledger movement.
type TransactionKind string

const (
	KindDeposit    TransactionKind = "deposit"
	KindWithdrawal TransactionKind = "withdrawal"
	KindTransfer   TransactionKind = "transfer"
	KindPayment    TransactionKind = "payment"
)

// TransactionStatus is the validation state of a ledger record. The public
// creation path auto-validates; pending/rejected/cancelled are only reachable
// through the admin status override.
type TransactionStatus string

const (
	TxnPending   TransactionStatus = "pending"
	TxnValidated TransactionStatus = "validated"
	TxnRejected  TransactionStatus = "rejected"
	TxnCancelled TransactionStatus = "cancelled"
	TxnArchived  TransactionStatus = "archived"
)

// MirrorNumberSuffix is appended to a primary transaction number to form the
// number of its paired mirror deposit on the receiving account.
const MirrorNumberSuffix = "-DEST"

// Transaction is one row of the append-only ledger. Transfers and payments
// occupy two rows: the primary row on the sender and a mirror deposit row on
// the receiver, created in the same atomic unit of work.
type Transaction struct {
	TransactionID        string          `json:"transactionID"`     // Primary key (UUID)
	TransactionNumber    string          `json:"transactionNumber"` // Human-facing, unique (TXN-<yyyymmdd>-<rand>)
	AccountID            string          `json:"accountID"`         // Source account
	DestinationAccountID *string         `json:"destinationAccountID,omitempty"`
	Kind                 TransactionKind `json:"kind"`
	Amount               decimal.Decimal `json:"amount"` // Always positive
	Description          string          `json:"description,omitempty"`
	Status               TransactionStatus `json:"status"`
	TransactedAt         time.Time       `json:"transactedAt"`
	AuditFields
}

// IsDebit reports whether the row debits its source account.
func (t Transaction) IsDebit() bool {
	return t.Kind != KindDeposit
}

// IsTwoParty reports whether the kind requires a destination account and a mirror row.
func (t Transaction) IsTwoParty() bool {
	return t.Kind == KindTransfer || t.Kind == KindPayment
}

// IsMirror reports whether the row is the receiving side of a transfer/payment pair.
func (t Transaction) IsMirror() bool {
	return len(t.TransactionNumber) > len(MirrorNumberSuffix) &&
		t.TransactionNumber[len(t.TransactionNumber)-len(MirrorNumberSuffix):] == MirrorNumberSuffix
}

// SignedAmountFor returns the row's contribution to the balance of accountID.
// Only the source side carries a contribution: deposits credit, every other
// kind debits. Destination-side rows contribute nothing; the receiving account
// is credited by its own mirror deposit row. Rows in any status other than
// validated never contribute.
func (t Transaction) SignedAmountFor(accountID string) decimal.Decimal {
	if t.Status != TxnValidated || t.AccountID != accountID {
		return decimal.Zero
	}
	if t.Kind == KindDeposit {
		return t.Amount
	}
	return t.Amount.Neg()
}
