package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// TransactionKind defines the direction of a transaction's effect on balances.
type TransactionKind string

const (
	Expense  TransactionKind = "EXPENSE"
	Income   TransactionKind = "INCOME"
	Transfer TransactionKind = "TRANSFER"
)

// CategoryName is the free-text category label carried by transactions and
// budgets. It is deliberately not a foreign key to Category; matching is
// case-sensitive exact string equality.
type CategoryName string

// Equal reports whether two category names match. Comparison is
// case-sensitive; "Food" and "food" are distinct categories.
func (c CategoryName) Equal(other CategoryName) bool {
	return string(c) == string(other)
}

// Transaction represents a single posted ledger entry.
// The creation timestamp is authoritative for month/year budget attribution.
type Transaction struct {
	TransactionID int64           `json:"transactionID"`
	Kind          TransactionKind `json:"kind"`
	Amount        decimal.Decimal `json:"amount"` // always positive; sign comes from Kind
	Description   string          `json:"description"`
	Category      CategoryName    `json:"category"`
	AccountID     int64           `json:"accountID"`
	ToAccountID   *int64          `json:"toAccountID,omitempty"` // set only for Transfer
	CreatedAt     time.Time       `json:"createdAt"`
}

// Period returns the calendar month/year the transaction is attributed to.
func (t Transaction) Period() Period {
	return PeriodOf(t.CreatedAt)
}
