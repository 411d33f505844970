package repositories

import (
	"context"

	"github.com/ajudi46/expense-tracker-server/internal/core/domain"
	"github.com/shopspring/decimal"
)

// TransactionReader defines read operations for transaction data.
type TransactionReader interface {
	// FindTransactionByID retrieves a specific transaction by its identifier.
	FindTransactionByID(ctx context.Context, transactionID int64) (*domain.Transaction, error)

	// ListTransactions retrieves every transaction, newest first.
	ListTransactions(ctx context.Context) ([]domain.Transaction, error)

	// SumExpenses returns the exact decimal sum of all Expense-kind
	// transactions whose category matches exactly and whose creation
	// timestamp falls within the given calendar month. Zero when none match.
	SumExpenses(ctx context.Context, category domain.CategoryName, period domain.Period) (decimal.Decimal, error)
}

// TransactionWriter defines write operations for transaction data.
type TransactionWriter interface {
	// SaveTransaction inserts a transaction without touching balances.
	// Used by the cloud merge path; returns apperrors.ErrDuplicate on
	// identifier collision.
	SaveTransaction(ctx context.Context, txn domain.Transaction) error

	// UpdateTransaction overwrites a transaction row without touching balances.
	UpdateTransaction(ctx context.Context, txn domain.Transaction) error

	// SaveTransactionWithBalances inserts the transaction and applies the
	// given per-account balance deltas in one atomic database transaction.
	SaveTransactionWithBalances(ctx context.Context, txn domain.Transaction, changes map[int64]decimal.Decimal) error

	// UpdateTransactionWithBalances overwrites the transaction row and applies
	// the given balance deltas in one atomic database transaction.
	UpdateTransactionWithBalances(ctx context.Context, txn domain.Transaction, changes map[int64]decimal.Decimal) error

	// DeleteTransactionWithBalances removes the transaction row and applies
	// the given balance deltas in one atomic database transaction.
	DeleteTransactionWithBalances(ctx context.Context, transactionID int64, changes map[int64]decimal.Decimal) error
}

// TransactionRepositoryFacade combines all transaction-related repository interfaces.
type TransactionRepositoryFacade interface {
	TransactionReader
	TransactionWriter
}
