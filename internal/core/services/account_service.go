package services

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/ajudi46/expense-tracker-server/internal/core/domain"
	portsrepo "github.com/ajudi46/expense-tracker-server/internal/core/ports/repositories"
	portssvc "github.com/ajudi46/expense-tracker-server/internal/core/ports/services"
	"github.com/ajudi46/expense-tracker-server/internal/dto"
	"github.com/ajudi46/expense-tracker-server/internal/middleware"
	"github.com/ajudi46/expense-tracker-server/internal/utils"
)

type accountService struct {
	accountRepo portsrepo.AccountRepositoryFacade
}

// NewAccountService creates a new account service.
func NewAccountService(accountRepo portsrepo.AccountRepositoryFacade) portssvc.AccountSvcFacade {
	return &accountService{accountRepo: accountRepo}
}

var _ portssvc.AccountSvcFacade = (*accountService)(nil)

// CreateAccount persists a new account with a service-assigned identifier.
// The initial balance is recorded directly; it is not modeled as a posting.
func (s *accountService) CreateAccount(ctx context.Context, req dto.CreateAccountRequest) (*domain.Account, error) {
	account := domain.Account{
		AccountID: utils.NewNumericID(),
		Name:      req.Name,
		Icon:      req.Icon,
		Balance:   req.InitialBalance,
		CreatedAt: time.Now().UTC(),
	}

	if err := s.accountRepo.SaveAccount(ctx, account); err != nil {
		return nil, fmt.Errorf("failed to save account: %w", err)
	}

	middleware.GetLoggerFromCtx(ctx).Info("Account created",
		slog.Int64("account_id", account.AccountID),
		slog.String("name", account.Name))
	return &account, nil
}

func (s *accountService) GetAccountByID(ctx context.Context, accountID int64) (*domain.Account, error) {
	return s.accountRepo.FindAccountByID(ctx, accountID)
}

func (s *accountService) ListAccounts(ctx context.Context) ([]domain.Account, error) {
	return s.accountRepo.ListAccounts(ctx)
}

// UpdateAccount edits display metadata only. Balance never moves here.
func (s *accountService) UpdateAccount(ctx context.Context, accountID int64, req dto.UpdateAccountRequest) (*domain.Account, error) {
	account, err := s.accountRepo.FindAccountByID(ctx, accountID)
	if err != nil {
		return nil, err
	}

	if req.Name != nil {
		account.Name = *req.Name
	}
	if req.Icon != nil {
		account.Icon = *req.Icon
	}

	if err := s.accountRepo.UpdateAccount(ctx, *account); err != nil {
		return nil, fmt.Errorf("failed to update account: %w", err)
	}
	return account, nil
}

func (s *accountService) DeleteAccount(ctx context.Context, accountID int64) error {
	if _, err := s.accountRepo.FindAccountByID(ctx, accountID); err != nil {
		return err
	}
	if err := s.accountRepo.DeleteAccount(ctx, accountID); err != nil {
		return fmt.Errorf("failed to delete account: %w", err)
	}
	middleware.GetLoggerFromCtx(ctx).Info("Account deleted", slog.Int64("account_id", accountID))
	return nil
}
