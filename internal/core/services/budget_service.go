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
	"github.com/ajudi46/expense-tracker-server/internal/dto"
	"github.com/ajudi46/expense-tracker-server/internal/middleware"
	"github.com/ajudi46/expense-tracker-server/internal/utils"
	"github.com/shopspring/decimal"
)

var ErrInvalidPeriod = errors.New("month must be between 1 and 12")

// budgetService keeps per-(category, month, year) spent totals consistent
// with the transaction ledger. Reconciliation always recomputes from scratch
// with an aggregate query rather than accumulating incrementally, so repeated
// runs cannot drift.
type budgetService struct {
	budgetRepo portsrepo.BudgetRepositoryFacade
	txnRepo    portsrepo.TransactionReader
}

// NewBudgetService creates a new budget service.
func NewBudgetService(budgetRepo portsrepo.BudgetRepositoryFacade, txnRepo portsrepo.TransactionReader) portssvc.BudgetSvcFacade {
	return &budgetService{
		budgetRepo: budgetRepo,
		txnRepo:    txnRepo,
	}
}

var _ portssvc.BudgetSvcFacade = (*budgetService)(nil)

// CreateBudget upserts the budget for its (category, month, year) tuple: a
// second insert for the same tuple updates the limit of the existing row
// instead of creating a duplicate. Spent starts at zero and only changes
// through explicit reconciliation.
func (s *budgetService) CreateBudget(ctx context.Context, req dto.CreateBudgetRequest) (*domain.Budget, error) {
	period := domain.Period{Month: req.Month, Year: req.Year}
	if !period.Valid() {
		return nil, fmt.Errorf("%w: %s", apperrors.ErrValidation, ErrInvalidPeriod.Error())
	}
	if req.LimitAmount.LessThanOrEqual(decimal.Zero) {
		return nil, fmt.Errorf("%w: budget limit must be positive", apperrors.ErrValidation)
	}

	budget := domain.Budget{
		BudgetID:    utils.NewNumericID(),
		Category:    domain.CategoryName(req.Category),
		LimitAmount: req.LimitAmount,
		Spent:       decimal.Zero,
		Month:       req.Month,
		Year:        req.Year,
		CreatedAt:   time.Now().UTC(),
	}

	saved, err := s.budgetRepo.UpsertBudget(ctx, budget)
	if err != nil {
		return nil, fmt.Errorf("failed to upsert budget for %s %d/%d: %w", req.Category, req.Month, req.Year, err)
	}
	return saved, nil
}

// GetBudgetByID retrieves a single budget.
func (s *budgetService) GetBudgetByID(ctx context.Context, budgetID int64) (*domain.Budget, error) {
	budget, err := s.budgetRepo.FindBudgetByID(ctx, budgetID)
	if err != nil {
		return nil, fmt.Errorf("failed to find budget %d: %w", budgetID, err)
	}
	return budget, nil
}

// ListBudgets retrieves every budget, ordered by category.
func (s *budgetService) ListBudgets(ctx context.Context) ([]domain.Budget, error) {
	budgets, err := s.budgetRepo.ListBudgets(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list budgets: %w", err)
	}
	return budgets, nil
}

// DeleteBudget removes a budget.
func (s *budgetService) DeleteBudget(ctx context.Context, budgetID int64) error {
	if err := s.budgetRepo.DeleteBudget(ctx, budgetID); err != nil {
		return fmt.Errorf("failed to delete budget %d: %w", budgetID, err)
	}
	return nil
}

// Reconcile recomputes the spent total for one (category, period) tuple as
// the exact decimal sum of matching Expense transactions and writes it back.
// When no budget row exists for the tuple the computed total is discarded;
// budgets are opt-in per category and month.
func (s *budgetService) Reconcile(ctx context.Context, category domain.CategoryName, period domain.Period) error {
	if !period.Valid() {
		return fmt.Errorf("%w: %s", apperrors.ErrValidation, ErrInvalidPeriod.Error())
	}

	spent, err := s.txnRepo.SumExpenses(ctx, category, period)
	if err != nil {
		return fmt.Errorf("failed to sum expenses for %s %d/%d: %w", category, period.Month, period.Year, err)
	}

	if err := s.budgetRepo.UpdateSpent(ctx, category, period, spent); err != nil {
		return fmt.Errorf("failed to write spent total for %s %d/%d: %w", category, period.Month, period.Year, err)
	}
	return nil
}

// ReconcileAll reconciles every existing budget independently. A failure on
// one row is collected and does not prevent reconciling the others.
func (s *budgetService) ReconcileAll(ctx context.Context) error {
	logger := middleware.GetLoggerFromCtx(ctx)

	budgets, err := s.budgetRepo.ListBudgets(ctx)
	if err != nil {
		return fmt.Errorf("failed to list budgets for reconciliation: %w", err)
	}

	var errs []error
	for _, b := range budgets {
		if err := s.Reconcile(ctx, b.Category, b.Period()); err != nil {
			logger.Warn("Failed to reconcile budget",
				slog.Int64("budget_id", b.BudgetID),
				slog.String("category", string(b.Category)),
				slog.String("error", err.Error()))
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
