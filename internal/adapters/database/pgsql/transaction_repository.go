package pgsql

import (
	"context"
	"errors"
	"fmt"

	"github.com/ajudi46/expense-tracker-server/internal/apperrors"
	"github.com/ajudi46/expense-tracker-server/internal/core/domain"
	portsrepo "github.com/ajudi46/expense-tracker-server/internal/core/ports/repositories"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"
)

type transactionRepository struct {
	pool     *pgxpool.Pool
	accounts portsrepo.AccountTransactionSupport
}

// NewTransactionRepository creates a new repository for transaction data.
// The account support dependency provides in-transaction balance operations
// so that a posting and its balance effects commit or roll back together.
func NewTransactionRepository(pool *pgxpool.Pool, accounts portsrepo.AccountTransactionSupport) portsrepo.TransactionRepositoryFacade {
	return &transactionRepository{pool: pool, accounts: accounts}
}

var _ portsrepo.TransactionRepositoryFacade = (*transactionRepository)(nil)

const insertTransactionQuery = `
	INSERT INTO transactions (transaction_id, kind, amount, description, category, account_id, to_account_id, created_at)
	VALUES ($1, $2, $3, $4, $5, $6, $7, $8);
`

const updateTransactionQuery = `
	UPDATE transactions
	SET kind = $2, amount = $3, description = $4, category = $5, account_id = $6, to_account_id = $7, created_at = $8
	WHERE transaction_id = $1;
`

func insertArgs(txn domain.Transaction) []any {
	return []any{
		txn.TransactionID,
		txn.Kind,
		txn.Amount,
		txn.Description,
		txn.Category,
		txn.AccountID,
		txn.ToAccountID,
		txn.CreatedAt,
	}
}

func (r *transactionRepository) SaveTransaction(ctx context.Context, txn domain.Transaction) error {
	_, err := r.pool.Exec(ctx, insertTransactionQuery, insertArgs(txn)...)
	if err != nil {
		if mapped := mapWriteError(err); errors.Is(mapped, apperrors.ErrDuplicate) {
			return mapped
		}
		return fmt.Errorf("failed to save transaction %d: %w", txn.TransactionID, err)
	}
	return nil
}

func (r *transactionRepository) UpdateTransaction(ctx context.Context, txn domain.Transaction) error {
	tag, err := r.pool.Exec(ctx, updateTransactionQuery, insertArgs(txn)...)
	if err != nil {
		return fmt.Errorf("failed to update transaction %d: %w", txn.TransactionID, err)
	}
	if tag.RowsAffected() == 0 {
		return apperrors.ErrNotFound
	}
	return nil
}

// inBalanceTx runs fn inside one database transaction after locking and
// adjusting every account named in changes. The lock step also verifies the
// accounts exist, failing the whole unit of work when one is missing.
func (r *transactionRepository) inBalanceTx(ctx context.Context, changes map[int64]decimal.Decimal, fn func(tx pgx.Tx) error) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() {
		_ = tx.Rollback(ctx)
	}()

	if len(changes) > 0 {
		ids := make([]int64, 0, len(changes))
		for id := range changes {
			ids = append(ids, id)
		}
		if _, err := r.accounts.FindAccountsByIDsForUpdate(ctx, tx, ids); err != nil {
			return err
		}
		if err := r.accounts.ApplyBalanceChangesInTx(ctx, tx, changes); err != nil {
			return err
		}
	}

	if err := fn(tx); err != nil {
		return err
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

func (r *transactionRepository) SaveTransactionWithBalances(ctx context.Context, txn domain.Transaction, changes map[int64]decimal.Decimal) error {
	return r.inBalanceTx(ctx, changes, func(tx pgx.Tx) error {
		if _, err := tx.Exec(ctx, insertTransactionQuery, insertArgs(txn)...); err != nil {
			if mapped := mapWriteError(err); errors.Is(mapped, apperrors.ErrDuplicate) {
				return mapped
			}
			return fmt.Errorf("failed to insert transaction %d: %w", txn.TransactionID, err)
		}
		return nil
	})
}

func (r *transactionRepository) UpdateTransactionWithBalances(ctx context.Context, txn domain.Transaction, changes map[int64]decimal.Decimal) error {
	return r.inBalanceTx(ctx, changes, func(tx pgx.Tx) error {
		tag, err := tx.Exec(ctx, updateTransactionQuery, insertArgs(txn)...)
		if err != nil {
			return fmt.Errorf("failed to update transaction %d: %w", txn.TransactionID, err)
		}
		if tag.RowsAffected() == 0 {
			return apperrors.ErrNotFound
		}
		return nil
	})
}

func (r *transactionRepository) DeleteTransactionWithBalances(ctx context.Context, transactionID int64, changes map[int64]decimal.Decimal) error {
	return r.inBalanceTx(ctx, changes, func(tx pgx.Tx) error {
		tag, err := tx.Exec(ctx, `DELETE FROM transactions WHERE transaction_id = $1;`, transactionID)
		if err != nil {
			return fmt.Errorf("failed to delete transaction %d: %w", transactionID, err)
		}
		if tag.RowsAffected() == 0 {
			return apperrors.ErrNotFound
		}
		return nil
	})
}

func (r *transactionRepository) FindTransactionByID(ctx context.Context, transactionID int64) (*domain.Transaction, error) {
	query := `
		SELECT transaction_id, kind, amount, description, category, account_id, to_account_id, created_at
		FROM transactions
		WHERE transaction_id = $1;
	`
	var txn domain.Transaction
	err := r.pool.QueryRow(ctx, query, transactionID).Scan(
		&txn.TransactionID,
		&txn.Kind,
		&txn.Amount,
		&txn.Description,
		&txn.Category,
		&txn.AccountID,
		&txn.ToAccountID,
		&txn.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, fmt.Errorf("failed to find transaction by ID %d: %w", transactionID, err)
	}
	return &txn, nil
}

func (r *transactionRepository) ListTransactions(ctx context.Context) ([]domain.Transaction, error) {
	query := `
		SELECT transaction_id, kind, amount, description, category, account_id, to_account_id, created_at
		FROM transactions
		ORDER BY created_at DESC, transaction_id DESC;
	`
	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to query transactions: %w", err)
	}
	defer rows.Close()

	txns := []domain.Transaction{}
	for rows.Next() {
		var txn domain.Transaction
		if err := rows.Scan(
			&txn.TransactionID,
			&txn.Kind,
			&txn.Amount,
			&txn.Description,
			&txn.Category,
			&txn.AccountID,
			&txn.ToAccountID,
			&txn.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan transaction row: %w", err)
		}
		txns = append(txns, txn)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed iterating transaction rows: %w", err)
	}
	return txns, nil
}

// SumExpenses aggregates in the database rather than in memory; the sum is
// exact because the amount column is NUMERIC and scanned as decimal.
func (r *transactionRepository) SumExpenses(ctx context.Context, category domain.CategoryName, period domain.Period) (decimal.Decimal, error) {
	start, end := period.Bounds()
	query := `
		SELECT COALESCE(SUM(amount), 0)
		FROM transactions
		WHERE kind = $1
		  AND category = $2
		  AND created_at >= $3
		  AND created_at < $4;
	`
	var sum decimal.Decimal
	err := r.pool.QueryRow(ctx, query, domain.Expense, category, start, end).Scan(&sum)
	if err != nil {
		return decimal.Zero, fmt.Errorf("failed to sum expenses for category %q: %w", category, err)
	}
	return sum, nil
}
