package pgsql

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/ajudi46/expense-tracker-server/internal/apperrors"
	"github.com/ajudi46/expense-tracker-server/internal/core/domain"
	portsrepo "github.com/ajudi46/expense-tracker-server/internal/core/ports/repositories"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type userRepository struct {
	pool *pgxpool.Pool
}

// NewUserRepository creates a new repository for user data.
func NewUserRepository(pool *pgxpool.Pool) portsrepo.UserRepositoryFacade {
	return &userRepository{pool: pool}
}

var _ portsrepo.UserRepositoryFacade = (*userRepository)(nil)

const selectUserColumns = `user_id, email, display_name, is_signed_in, last_sync_at, created_at`

func scanUser(row pgx.Row) (*domain.User, error) {
	var u domain.User
	err := row.Scan(
		&u.UserID,
		&u.Email,
		&u.DisplayName,
		&u.IsSignedIn,
		&u.LastSyncAt,
		&u.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &u, nil
}

func (r *userRepository) SaveUser(ctx context.Context, user domain.User) error {
	query := `
		INSERT INTO users (user_id, email, display_name, is_signed_in, last_sync_at, created_at)
		VALUES ($1, $2, $3, $4, $5, $6);
	`
	_, err := r.pool.Exec(ctx, query,
		user.UserID,
		user.Email,
		user.DisplayName,
		user.IsSignedIn,
		user.LastSyncAt,
		user.CreatedAt,
	)
	if err != nil {
		if mapped := mapWriteError(err); errors.Is(mapped, apperrors.ErrDuplicate) {
			return mapped
		}
		return fmt.Errorf("failed to save user %s: %w", user.UserID, err)
	}
	return nil
}

func (r *userRepository) FindUserByID(ctx context.Context, userID string) (*domain.User, error) {
	query := `SELECT ` + selectUserColumns + ` FROM users WHERE user_id = $1;`
	u, err := scanUser(r.pool.QueryRow(ctx, query, userID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, fmt.Errorf("failed to find user by ID %s: %w", userID, err)
	}
	return u, nil
}

func (r *userRepository) FindSignedInUser(ctx context.Context) (*domain.User, error) {
	query := `SELECT ` + selectUserColumns + ` FROM users WHERE is_signed_in LIMIT 1;`
	u, err := scanUser(r.pool.QueryRow(ctx, query))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotSignedIn
		}
		return nil, fmt.Errorf("failed to find signed-in user: %w", err)
	}
	return u, nil
}

func (r *userRepository) UpdateUser(ctx context.Context, user domain.User) error {
	query := `
		UPDATE users
		SET email = $2, display_name = $3
		WHERE user_id = $1;
	`
	tag, err := r.pool.Exec(ctx, query, user.UserID, user.Email, user.DisplayName)
	if err != nil {
		return fmt.Errorf("failed to update user %s: %w", user.UserID, err)
	}
	if tag.RowsAffected() == 0 {
		return apperrors.ErrNotFound
	}
	return nil
}

// MarkSignedIn clears every flag and sets the new one inside one database
// transaction so at most one user is ever observed signed-in.
func (r *userRepository) MarkSignedIn(ctx context.Context, userID string) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() {
		_ = tx.Rollback(ctx)
	}()

	if _, err := tx.Exec(ctx, `UPDATE users SET is_signed_in = FALSE WHERE is_signed_in;`); err != nil {
		return fmt.Errorf("failed to clear signed-in flags: %w", err)
	}
	tag, err := tx.Exec(ctx, `UPDATE users SET is_signed_in = TRUE WHERE user_id = $1;`, userID)
	if err != nil {
		return fmt.Errorf("failed to mark user %s signed in: %w", userID, err)
	}
	if tag.RowsAffected() == 0 {
		return apperrors.ErrNotFound
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("failed to commit sign-in: %w", err)
	}
	return nil
}

func (r *userRepository) MarkAllSignedOut(ctx context.Context) error {
	if _, err := r.pool.Exec(ctx, `UPDATE users SET is_signed_in = FALSE WHERE is_signed_in;`); err != nil {
		return fmt.Errorf("failed to clear signed-in flags: %w", err)
	}
	return nil
}

func (r *userRepository) UpdateLastSyncAt(ctx context.Context, userID string, at time.Time) error {
	tag, err := r.pool.Exec(ctx, `UPDATE users SET last_sync_at = $2 WHERE user_id = $1;`, userID, at)
	if err != nil {
		return fmt.Errorf("failed to update last sync time for user %s: %w", userID, err)
	}
	if tag.RowsAffected() == 0 {
		return apperrors.ErrNotFound
	}
	return nil
}
