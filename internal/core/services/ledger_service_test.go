package services_test

import (
	"context"
	"testing"
	"time"

	"github.com/ajudi46/expense-tracker-server/internal/apperrors"
	"github.com/ajudi46/expense-tracker-server/internal/core/domain"
	portssvc "github.com/ajudi46/expense-tracker-server/internal/core/ports/services"
	"github.com/ajudi46/expense-tracker-server/internal/core/services"
	"github.com/ajudi46/expense-tracker-server/internal/dto"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/suite"
)

type LedgerServiceTestSuite struct {
	suite.Suite
	txnRepo     *MockTransactionRepository
	accountRepo *MockAccountRepository
	budgetSvc   *MockBudgetService
	service     portssvc.LedgerSvcFacade
}

func (s *LedgerServiceTestSuite) SetupTest() {
	s.txnRepo = new(MockTransactionRepository)
	s.accountRepo = new(MockAccountRepository)
	s.budgetSvc = new(MockBudgetService)
	s.service = services.NewLedgerService(s.txnRepo, s.accountRepo, s.budgetSvc)
}

func (s *LedgerServiceTestSuite) expectAccount(id int64) {
	s.accountRepo.On("FindAccountByID", mock.Anything, id).
		Return(&domain.Account{AccountID: id, Name: "acc"}, nil)
}

func changesEqual(changes map[int64]decimal.Decimal, want map[int64]string) bool {
	if len(changes) != len(want) {
		return false
	}
	for id, amount := range want {
		got, ok := changes[id]
		if !ok || !got.Equal(decimal.RequireFromString(amount)) {
			return false
		}
	}
	return true
}

func (s *LedgerServiceTestSuite) TestPostTransaction_ExpenseDebitsSource() {
	ctx := context.Background()
	s.expectAccount(10)

	s.txnRepo.On("SaveTransactionWithBalances", ctx, mock.AnythingOfType("domain.Transaction"),
		mock.MatchedBy(func(changes map[int64]decimal.Decimal) bool {
			return changesEqual(changes, map[int64]string{10: "-42.50"})
		})).Return(nil).Once()
	s.budgetSvc.On("Reconcile", ctx, domain.CategoryName("Food"), mock.AnythingOfType("domain.Period")).Return(nil).Once()

	txn, err := s.service.PostTransaction(ctx, dto.CreateTransactionRequest{
		Kind:      domain.Expense,
		Amount:    decimal.RequireFromString("42.50"),
		Category:  "Food",
		AccountID: 10,
	})

	s.Require().NoError(err)
	s.Require().NotNil(txn)
	s.NotZero(txn.TransactionID)
	s.Equal(domain.Expense, txn.Kind)
	s.txnRepo.AssertExpectations(s.T())
	s.budgetSvc.AssertExpectations(s.T())
}

func (s *LedgerServiceTestSuite) TestPostTransaction_IncomeCreditsSource() {
	ctx := context.Background()
	s.expectAccount(10)

	s.txnRepo.On("SaveTransactionWithBalances", ctx, mock.AnythingOfType("domain.Transaction"),
		mock.MatchedBy(func(changes map[int64]decimal.Decimal) bool {
			return changesEqual(changes, map[int64]string{10: "100"})
		})).Return(nil).Once()

	_, err := s.service.PostTransaction(ctx, dto.CreateTransactionRequest{
		Kind:      domain.Income,
		Amount:    decimal.NewFromInt(100),
		Category:  "Salary",
		AccountID: 10,
	})

	s.Require().NoError(err)
	s.budgetSvc.AssertNotCalled(s.T(), "Reconcile")
}

func (s *LedgerServiceTestSuite) TestPostTransaction_TransferMovesBothLegs() {
	ctx := context.Background()
	s.expectAccount(10)
	s.expectAccount(20)
	dest := int64(20)

	s.txnRepo.On("SaveTransactionWithBalances", ctx, mock.AnythingOfType("domain.Transaction"),
		mock.MatchedBy(func(changes map[int64]decimal.Decimal) bool {
			return changesEqual(changes, map[int64]string{10: "-75", 20: "75"})
		})).Return(nil).Once()

	_, err := s.service.PostTransaction(ctx, dto.CreateTransactionRequest{
		Kind:        domain.Transfer,
		Amount:      decimal.NewFromInt(75),
		Category:    "Moves",
		AccountID:   10,
		ToAccountID: &dest,
	})

	s.Require().NoError(err)
	s.txnRepo.AssertExpectations(s.T())
}

// A transfer without a destination still debits the source; the credit leg
// is skipped rather than failing the posting.
func (s *LedgerServiceTestSuite) TestPostTransaction_TransferWithoutDestinationSkipsCredit() {
	ctx := context.Background()
	s.expectAccount(10)

	s.txnRepo.On("SaveTransactionWithBalances", ctx, mock.AnythingOfType("domain.Transaction"),
		mock.MatchedBy(func(changes map[int64]decimal.Decimal) bool {
			return changesEqual(changes, map[int64]string{10: "-75"})
		})).Return(nil).Once()

	_, err := s.service.PostTransaction(ctx, dto.CreateTransactionRequest{
		Kind:      domain.Transfer,
		Amount:    decimal.NewFromInt(75),
		Category:  "Moves",
		AccountID: 10,
	})

	s.Require().NoError(err)
}

func (s *LedgerServiceTestSuite) TestPostTransaction_RejectsNonPositiveAmount() {
	_, err := s.service.PostTransaction(context.Background(), dto.CreateTransactionRequest{
		Kind:      domain.Expense,
		Amount:    decimal.NewFromInt(-5),
		Category:  "Food",
		AccountID: 10,
	})

	s.Require().Error(err)
	s.ErrorIs(err, apperrors.ErrValidation)
	s.txnRepo.AssertNotCalled(s.T(), "SaveTransactionWithBalances")
}

func (s *LedgerServiceTestSuite) TestPostTransaction_RejectsUnknownAccount() {
	ctx := context.Background()
	s.accountRepo.On("FindAccountByID", mock.Anything, int64(99)).Return(nil, apperrors.ErrNotFound)

	_, err := s.service.PostTransaction(ctx, dto.CreateTransactionRequest{
		Kind:      domain.Expense,
		Amount:    decimal.NewFromInt(5),
		Category:  "Food",
		AccountID: 99,
	})

	s.Require().Error(err)
	s.ErrorIs(err, services.ErrAccountNotFound)
}

// Budget reconciliation failure must not fail the posting itself.
func (s *LedgerServiceTestSuite) TestPostTransaction_ReconcileFailureIsNonFatal() {
	ctx := context.Background()
	s.expectAccount(10)

	s.txnRepo.On("SaveTransactionWithBalances", ctx, mock.Anything, mock.Anything).Return(nil).Once()
	s.budgetSvc.On("Reconcile", ctx, domain.CategoryName("Food"), mock.AnythingOfType("domain.Period")).
		Return(apperrors.ErrNotFound).Once()

	_, err := s.service.PostTransaction(ctx, dto.CreateTransactionRequest{
		Kind:      domain.Expense,
		Amount:    decimal.NewFromInt(5),
		Category:  "Food",
		AccountID: 10,
	})

	s.Require().NoError(err)
}

// Editing an expense into a different amount reverses the old delta and
// applies the new one in a single combined change set.
func (s *LedgerServiceTestSuite) TestUpdateTransaction_ReversesOldAndAppliesNew() {
	ctx := context.Background()
	existing := &domain.Transaction{
		TransactionID: 7,
		Kind:          domain.Expense,
		Amount:        decimal.NewFromInt(40),
		Category:      "Food",
		AccountID:     10,
		CreatedAt:     time.Date(2025, 3, 10, 12, 0, 0, 0, time.UTC),
	}
	s.txnRepo.On("FindTransactionByID", ctx, int64(7)).Return(existing, nil).Once()
	s.expectAccount(10)

	// -40 reversed (+40) plus new -60 nets to -20.
	s.txnRepo.On("UpdateTransactionWithBalances", ctx, mock.AnythingOfType("domain.Transaction"),
		mock.MatchedBy(func(changes map[int64]decimal.Decimal) bool {
			return changesEqual(changes, map[int64]string{10: "-20"})
		})).Return(nil).Once()
	s.budgetSvc.On("Reconcile", ctx, domain.CategoryName("Food"), mock.AnythingOfType("domain.Period")).Return(nil).Twice()

	updated, err := s.service.UpdateTransaction(ctx, 7, dto.UpdateTransactionRequest{
		Kind:      domain.Expense,
		Amount:    decimal.NewFromInt(60),
		Category:  "Food",
		AccountID: 10,
	})

	s.Require().NoError(err)
	s.True(updated.Amount.Equal(decimal.NewFromInt(60)))
	s.Equal(existing.CreatedAt, updated.CreatedAt)
	s.txnRepo.AssertExpectations(s.T())
}

// Recategorizing an expense reconciles both the old and the new tuple.
func (s *LedgerServiceTestSuite) TestUpdateTransaction_ReconcilesBothCategories() {
	ctx := context.Background()
	existing := &domain.Transaction{
		TransactionID: 7,
		Kind:          domain.Expense,
		Amount:        decimal.NewFromInt(40),
		Category:      "Food",
		AccountID:     10,
		CreatedAt:     time.Date(2025, 3, 10, 12, 0, 0, 0, time.UTC),
	}
	s.txnRepo.On("FindTransactionByID", ctx, int64(7)).Return(existing, nil).Once()
	s.expectAccount(10)
	s.txnRepo.On("UpdateTransactionWithBalances", ctx, mock.Anything, mock.Anything).Return(nil).Once()

	s.budgetSvc.On("Reconcile", ctx, domain.CategoryName("Food"), mock.AnythingOfType("domain.Period")).Return(nil).Once()
	s.budgetSvc.On("Reconcile", ctx, domain.CategoryName("Travel"), mock.AnythingOfType("domain.Period")).Return(nil).Once()

	_, err := s.service.UpdateTransaction(ctx, 7, dto.UpdateTransactionRequest{
		Kind:      domain.Expense,
		Amount:    decimal.NewFromInt(40),
		Category:  "Travel",
		AccountID: 10,
	})

	s.Require().NoError(err)
	s.budgetSvc.AssertExpectations(s.T())
}

func (s *LedgerServiceTestSuite) TestDeleteTransaction_ReversesBalances() {
	ctx := context.Background()
	dest := int64(20)
	existing := &domain.Transaction{
		TransactionID: 9,
		Kind:          domain.Transfer,
		Amount:        decimal.NewFromInt(30),
		Category:      "Moves",
		AccountID:     10,
		ToAccountID:   &dest,
		CreatedAt:     time.Now().UTC(),
	}
	s.txnRepo.On("FindTransactionByID", ctx, int64(9)).Return(existing, nil).Once()

	s.txnRepo.On("DeleteTransactionWithBalances", ctx, int64(9),
		mock.MatchedBy(func(changes map[int64]decimal.Decimal) bool {
			return changesEqual(changes, map[int64]string{10: "30", 20: "-30"})
		})).Return(nil).Once()

	err := s.service.DeleteTransaction(ctx, 9)

	s.Require().NoError(err)
	s.txnRepo.AssertExpectations(s.T())
}

func TestLedgerServiceTestSuite(t *testing.T) {
	suite.Run(t, new(LedgerServiceTestSuite))
}
