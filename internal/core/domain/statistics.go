package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// LedgerStatistics aggregates all validated rows for the admin dashboard.
type LedgerStatistics struct {
	TotalTransactions int64           `json:"totalTransactions"`
	NetBalance        decimal.Decimal `json:"netBalance"` // sum(deposits) - sum(debits)
}

// AccountStatistics aggregates the validated rows of one account.
type AccountStatistics struct {
	AccountID        string          `json:"accountID"`
	TotalDeposits    decimal.Decimal `json:"totalDeposits"`
	TotalDebits      decimal.Decimal `json:"totalDebits"`
	CurrentBalance   decimal.Decimal `json:"currentBalance"`
	TransactionCount int             `json:"transactionCount"`
	LastTransaction  *Transaction    `json:"lastTransaction,omitempty"`
}

// ClientDashboard summarizes a client's overall position: accounts held,
// their combined derived balance, and the latest movements across them.
type ClientDashboard struct {
	ClientID           string          `json:"clientID"`
	AccountCount       int             `json:"accountCount"`
	TotalBalance       decimal.Decimal `json:"totalBalance"`
	RecentTransactions []Transaction   `json:"recentTransactions"`
}

// WeeklyArchive is the summary document written to the archive store for one
// ISO week of validated transactions.
type WeeklyArchive struct {
	WeekNumber        int             `bson:"week_number" json:"weekNumber"`
	Year              int             `bson:"year" json:"year"`
	PeriodStart       time.Time       `bson:"period_start" json:"periodStart"`
	PeriodEnd         time.Time       `bson:"period_end" json:"periodEnd"`
	TotalTransactions int             `bson:"total_transactions" json:"totalTransactions"`
	TotalDeposits     decimal.Decimal `bson:"total_deposits" json:"totalDeposits"`
	TotalDebits       decimal.Decimal `bson:"total_debits" json:"totalDebits"`
	NetBalance        decimal.Decimal `bson:"net_balance" json:"netBalance"`
	Transactions      []Transaction   `bson:"transactions" json:"transactions"`
	ArchivedAt        time.Time       `bson:"archived_at" json:"archivedAt"`
	Source            string          `bson:"source" json:"source"`
}
