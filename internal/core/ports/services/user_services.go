package services

import (
	"context"

	"github.com/ajudi46/expense-tracker-server/internal/core/domain"
)

// UserSvcFacade manages the locally known identity issued by the external
// authentication provider.
type UserSvcFacade interface {
	// GetUserByID retrieves a user by provider-issued uid.
	GetUserByID(ctx context.Context, userID string) (*domain.User, error)

	// CurrentUser retrieves the single signed-in user, or
	// apperrors.ErrNotSignedIn when nobody is.
	CurrentUser(ctx context.Context) (*domain.User, error)

	// SignIn upserts the user's profile and marks them as the one signed-in
	// identity (all other signed-in flags are cleared first).
	SignIn(ctx context.Context, userID, email, displayName string) (*domain.User, error)

	// SignOut clears every signed-in flag.
	SignOut(ctx context.Context) error
}
