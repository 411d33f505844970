package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/ajudi46/expense-tracker-server/internal/apperrors"
	"github.com/ajudi46/expense-tracker-server/internal/core/domain"
	portsrepo "github.com/ajudi46/expense-tracker-server/internal/core/ports/repositories"
	portssvc "github.com/ajudi46/expense-tracker-server/internal/core/ports/services"
	"github.com/ajudi46/expense-tracker-server/internal/middleware"
)

type userService struct {
	userRepo portsrepo.UserRepositoryFacade
}

// NewUserService creates a new user service.
func NewUserService(userRepo portsrepo.UserRepositoryFacade) portssvc.UserSvcFacade {
	return &userService{userRepo: userRepo}
}

var _ portssvc.UserSvcFacade = (*userService)(nil)

func (s *userService) GetUserByID(ctx context.Context, userID string) (*domain.User, error) {
	return s.userRepo.FindUserByID(ctx, userID)
}

func (s *userService) CurrentUser(ctx context.Context) (*domain.User, error) {
	return s.userRepo.FindSignedInUser(ctx)
}

// SignIn upserts the profile issued by the authentication provider and marks
// it as the one signed-in identity. Signing in a second identity implicitly
// signs out the first; their data stays local but is no longer reachable
// through sync until they sign back in.
func (s *userService) SignIn(ctx context.Context, userID, email, displayName string) (*domain.User, error) {
	logger := middleware.GetLoggerFromCtx(ctx)

	user, err := s.userRepo.FindUserByID(ctx, userID)
	switch {
	case err == nil:
		user.Email = email
		user.DisplayName = displayName
		if err := s.userRepo.UpdateUser(ctx, *user); err != nil {
			return nil, fmt.Errorf("failed to update user profile: %w", err)
		}
	case errors.Is(err, apperrors.ErrNotFound):
		user = &domain.User{
			UserID:      userID,
			Email:       email,
			DisplayName: displayName,
			CreatedAt:   time.Now().UTC(),
		}
		if err := s.userRepo.SaveUser(ctx, *user); err != nil {
			return nil, fmt.Errorf("failed to save user: %w", err)
		}
	default:
		return nil, err
	}

	if err := s.userRepo.MarkSignedIn(ctx, userID); err != nil {
		return nil, fmt.Errorf("failed to mark user signed in: %w", err)
	}
	user.IsSignedIn = true

	logger.Info("User signed in", slog.String("user_id", userID))
	return user, nil
}

func (s *userService) SignOut(ctx context.Context) error {
	if err := s.userRepo.MarkAllSignedOut(ctx); err != nil {
		return fmt.Errorf("failed to sign out: %w", err)
	}
	middleware.GetLoggerFromCtx(ctx).Info("User signed out")
	return nil
}
