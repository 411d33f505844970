package repositories

import (
	"context"
	"time"

	"github.com/ajudi46/expense-tracker-server/internal/core/domain"
)

// UserReader defines read operations for user data.
type UserReader interface {
	// FindUserByID retrieves a user by their provider-issued uid.
	FindUserByID(ctx context.Context, userID string) (*domain.User, error)

	// FindSignedInUser retrieves the single user currently marked signed-in,
	// or apperrors.ErrNotSignedIn when nobody is.
	FindSignedInUser(ctx context.Context) (*domain.User, error)
}

// UserWriter defines write operations for user data.
type UserWriter interface {
	// SaveUser inserts a new user row. Returns apperrors.ErrDuplicate when
	// the uid is already known.
	SaveUser(ctx context.Context, user domain.User) error

	// UpdateUser overwrites the user's profile fields.
	UpdateUser(ctx context.Context, user domain.User) error

	// MarkSignedIn clears every signed-in flag and then marks the given user,
	// preserving the at-most-one-signed-in invariant in a single unit of work.
	MarkSignedIn(ctx context.Context, userID string) error

	// MarkAllSignedOut clears every signed-in flag.
	MarkAllSignedOut(ctx context.Context) error

	// UpdateLastSyncAt records the completion time of the latest full sync.
	UpdateLastSyncAt(ctx context.Context, userID string, at time.Time) error
}

// UserRepositoryFacade combines all user-related repository interfaces.
type UserRepositoryFacade interface {
	UserReader
	UserWriter
}
