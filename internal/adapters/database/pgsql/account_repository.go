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

type accountRepository struct {
	pool *pgxpool.Pool
}

// NewAccountRepository creates a new repository for account data.
func NewAccountRepository(pool *pgxpool.Pool) portsrepo.AccountRepositoryFacade {
	return &accountRepository{pool: pool}
}

var _ portsrepo.AccountRepositoryFacade = (*accountRepository)(nil)

func (r *accountRepository) SaveAccount(ctx context.Context, account domain.Account) error {
	query := `
		INSERT INTO accounts (account_id, name, icon, balance, created_at)
		VALUES ($1, $2, $3, $4, $5);
	`
	_, err := r.pool.Exec(ctx, query,
		account.AccountID,
		account.Name,
		account.Icon,
		account.Balance,
		account.CreatedAt,
	)
	if err != nil {
		if mapped := mapWriteError(err); errors.Is(mapped, apperrors.ErrDuplicate) {
			return mapped
		}
		return fmt.Errorf("failed to save account %d: %w", account.AccountID, err)
	}
	return nil
}

func (r *accountRepository) FindAccountByID(ctx context.Context, accountID int64) (*domain.Account, error) {
	query := `
		SELECT account_id, name, icon, balance, created_at
		FROM accounts
		WHERE account_id = $1;
	`
	var acc domain.Account
	err := r.pool.QueryRow(ctx, query, accountID).Scan(
		&acc.AccountID,
		&acc.Name,
		&acc.Icon,
		&acc.Balance,
		&acc.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, fmt.Errorf("failed to find account by ID %d: %w", accountID, err)
	}
	return &acc, nil
}

func (r *accountRepository) ListAccounts(ctx context.Context) ([]domain.Account, error) {
	query := `
		SELECT account_id, name, icon, balance, created_at
		FROM accounts
		ORDER BY name;
	`
	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to query accounts: %w", err)
	}
	defer rows.Close()

	accounts := []domain.Account{}
	for rows.Next() {
		var acc domain.Account
		if err := rows.Scan(&acc.AccountID, &acc.Name, &acc.Icon, &acc.Balance, &acc.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan account row: %w", err)
		}
		accounts = append(accounts, acc)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed iterating account rows: %w", err)
	}
	return accounts, nil
}

func (r *accountRepository) UpdateAccount(ctx context.Context, account domain.Account) error {
	query := `
		UPDATE accounts
		SET name = $2, icon = $3, balance = $4
		WHERE account_id = $1;
	`
	tag, err := r.pool.Exec(ctx, query,
		account.AccountID,
		account.Name,
		account.Icon,
		account.Balance,
	)
	if err != nil {
		return fmt.Errorf("failed to update account %d: %w", account.AccountID, err)
	}
	if tag.RowsAffected() == 0 {
		return apperrors.ErrNotFound
	}
	return nil
}

func (r *accountRepository) DeleteAccount(ctx context.Context, accountID int64) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM accounts WHERE account_id = $1;`, accountID)
	if err != nil {
		return fmt.Errorf("failed to delete account %d: %w", accountID, err)
	}
	if tag.RowsAffected() == 0 {
		return apperrors.ErrNotFound
	}
	return nil
}

// FindAccountsByIDsForUpdate locks the given accounts inside the caller's
// transaction so concurrent postings serialize on balance updates.
func (r *accountRepository) FindAccountsByIDsForUpdate(ctx context.Context, tx pgx.Tx, accountIDs []int64) (map[int64]domain.Account, error) {
	if len(accountIDs) == 0 {
		return map[int64]domain.Account{}, nil
	}
	query := `
		SELECT account_id, name, icon, balance, created_at
		FROM accounts
		WHERE account_id = ANY($1)
		FOR UPDATE;
	`
	rows, err := tx.Query(ctx, query, accountIDs)
	if err != nil {
		return nil, fmt.Errorf("failed to lock accounts for update: %w", err)
	}
	defer rows.Close()

	found := make(map[int64]domain.Account, len(accountIDs))
	for rows.Next() {
		var acc domain.Account
		if err := rows.Scan(&acc.AccountID, &acc.Name, &acc.Icon, &acc.Balance, &acc.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan locked account row: %w", err)
		}
		found[acc.AccountID] = acc
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed iterating locked account rows: %w", err)
	}

	for _, id := range accountIDs {
		if _, ok := found[id]; !ok {
			return nil, fmt.Errorf("account %d: %w", id, apperrors.ErrNotFound)
		}
	}
	return found, nil
}

// ApplyBalanceChangesInTx adds each signed delta to its account's balance
// within the caller's transaction.
func (r *accountRepository) ApplyBalanceChangesInTx(ctx context.Context, tx pgx.Tx, changes map[int64]decimal.Decimal) error {
	query := `UPDATE accounts SET balance = balance + $2 WHERE account_id = $1;`

	batch := &pgx.Batch{}
	for accountID, delta := range changes {
		batch.Queue(query, accountID, delta)
	}
	br := tx.SendBatch(ctx, batch)
	if err := br.Close(); err != nil {
		return fmt.Errorf("failed to apply balance changes: %w", err)
	}
	return nil
}
