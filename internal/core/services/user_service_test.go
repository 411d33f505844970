package services_test

import (
	"context"
	"errors"
	"testing"

	"github.com/ajudi46/expense-tracker-server/internal/apperrors"
	"github.com/ajudi46/expense-tracker-server/internal/core/domain"
	portssvc "github.com/ajudi46/expense-tracker-server/internal/core/ports/services"
	"github.com/ajudi46/expense-tracker-server/internal/core/services"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/suite"
)

type UserServiceTestSuite struct {
	suite.Suite
	userRepo *MockUserRepository
	service  portssvc.UserSvcFacade
}

func (s *UserServiceTestSuite) SetupTest() {
	s.userRepo = new(MockUserRepository)
	s.service = services.NewUserService(s.userRepo)
}

func (s *UserServiceTestSuite) TestSignIn_NewUserIsCreatedAndMarked() {
	ctx := context.Background()

	s.userRepo.On("FindUserByID", ctx, "uid-1").Return(nil, apperrors.ErrNotFound).Once()
	s.userRepo.On("SaveUser", ctx, mock.MatchedBy(func(u domain.User) bool {
		return u.UserID == "uid-1" && u.Email == "a@b.c" && u.DisplayName == "Ada"
	})).Return(nil).Once()
	s.userRepo.On("MarkSignedIn", ctx, "uid-1").Return(nil).Once()

	user, err := s.service.SignIn(ctx, "uid-1", "a@b.c", "Ada")

	s.Require().NoError(err)
	s.True(user.IsSignedIn)
	s.userRepo.AssertExpectations(s.T())
}

func (s *UserServiceTestSuite) TestSignIn_ExistingUserProfileIsRefreshed() {
	ctx := context.Background()
	existing := &domain.User{UserID: "uid-1", Email: "old@b.c", DisplayName: "Old"}

	s.userRepo.On("FindUserByID", ctx, "uid-1").Return(existing, nil).Once()
	s.userRepo.On("UpdateUser", ctx, mock.MatchedBy(func(u domain.User) bool {
		return u.Email == "new@b.c" && u.DisplayName == "New"
	})).Return(nil).Once()
	s.userRepo.On("MarkSignedIn", ctx, "uid-1").Return(nil).Once()

	user, err := s.service.SignIn(ctx, "uid-1", "new@b.c", "New")

	s.Require().NoError(err)
	s.Equal("new@b.c", user.Email)
	s.userRepo.AssertExpectations(s.T())
}

func (s *UserServiceTestSuite) TestSignIn_RepoErrorPropagates() {
	ctx := context.Background()
	s.userRepo.On("FindUserByID", ctx, "uid-1").Return(nil, errors.New("db down")).Once()

	_, err := s.service.SignIn(ctx, "uid-1", "a@b.c", "Ada")

	s.Require().Error(err)
	s.userRepo.AssertNotCalled(s.T(), "MarkSignedIn")
}

func (s *UserServiceTestSuite) TestCurrentUser_NotSignedIn() {
	ctx := context.Background()
	s.userRepo.On("FindSignedInUser", ctx).Return(nil, apperrors.ErrNotSignedIn).Once()

	_, err := s.service.CurrentUser(ctx)

	s.Require().Error(err)
	s.ErrorIs(err, apperrors.ErrNotSignedIn)
}

func (s *UserServiceTestSuite) TestSignOut_ClearsAllFlags() {
	ctx := context.Background()
	s.userRepo.On("MarkAllSignedOut", ctx).Return(nil).Once()

	err := s.service.SignOut(ctx)

	s.Require().NoError(err)
	s.userRepo.AssertExpectations(s.T())
}

func TestUserServiceTestSuite(t *testing.T) {
	suite.Run(t, new(UserServiceTestSuite))
}
