package services

import (
	"context"

	"github.com/ajudi46/expense-tracker-server/internal/core/domain"
	"github.com/ajudi46/expense-tracker-server/internal/dto"
)

// LedgerSvcFacade posts transactions and keeps account balances consistent
// with them. Every mutation is atomic with its balance effects.
type LedgerSvcFacade interface {
	// PostTransaction inserts the transaction and applies its directional
	// balance deltas in one unit of work. Expense postings additionally
	// trigger budget reconciliation for the affected (category, period).
	PostTransaction(ctx context.Context, req dto.CreateTransactionRequest) (*domain.Transaction, error)

	// GetTransactionByID retrieves a single transaction.
	GetTransactionByID(ctx context.Context, transactionID int64) (*domain.Transaction, error)

	// ListTransactions retrieves every transaction, newest first.
	ListTransactions(ctx context.Context) ([]domain.Transaction, error)

	// UpdateTransaction replaces a posted transaction, reversing the old
	// balance effects and applying the new ones atomically.
	UpdateTransaction(ctx context.Context, transactionID int64, req dto.UpdateTransactionRequest) (*domain.Transaction, error)

	// DeleteTransaction removes a posted transaction, reversing its balance
	// effects atomically.
	DeleteTransaction(ctx context.Context, transactionID int64) error
}
