package repositories

import (
	"context"

	"github.com/ajudi46/expense-tracker-server/internal/core/domain"
	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"
)

// AccountReader defines read operations for account data.
type AccountReader interface {
	// FindAccountByID retrieves a specific account by its identifier.
	FindAccountByID(ctx context.Context, accountID int64) (*domain.Account, error)

	// ListAccounts retrieves every account, ordered by name.
	ListAccounts(ctx context.Context) ([]domain.Account, error)
}

// AccountWriter defines write operations for account data.
type AccountWriter interface {
	// SaveAccount persists a new account. Returns apperrors.ErrDuplicate when
	// the identifier is already present.
	SaveAccount(ctx context.Context, account domain.Account) error

	// UpdateAccount overwrites an existing account row.
	UpdateAccount(ctx context.Context, account domain.Account) error

	// DeleteAccount removes an account by identifier.
	DeleteAccount(ctx context.Context, accountID int64) error
}

// AccountTransactionSupport defines balance operations that participate in a
// caller-owned database transaction.
type AccountTransactionSupport interface {
	// FindAccountsByIDsForUpdate selects accounts and locks them for update
	// within the given transaction. Missing IDs yield apperrors.ErrNotFound.
	FindAccountsByIDsForUpdate(ctx context.Context, tx pgx.Tx, accountIDs []int64) (map[int64]domain.Account, error)

	// ApplyBalanceChangesInTx adds the signed delta to each account's balance
	// within the given transaction.
	ApplyBalanceChangesInTx(ctx context.Context, tx pgx.Tx, changes map[int64]decimal.Decimal) error
}

// AccountRepositoryFacade combines all account-related repository interfaces.
type AccountRepositoryFacade interface {
	AccountReader
	AccountWriter
	AccountTransactionSupport
}
