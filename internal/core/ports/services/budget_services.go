package services

import (
	"context"

	"github.com/ajudi46/expense-tracker-server/internal/core/domain"
	"github.com/ajudi46/expense-tracker-server/internal/dto"
)

// BudgetSvcFacade manages budgets and keeps their cached spent totals
// consistent with the transaction ledger.
type BudgetSvcFacade interface {
	// CreateBudget upserts the budget for its (category, month, year) tuple.
	CreateBudget(ctx context.Context, req dto.CreateBudgetRequest) (*domain.Budget, error)

	// GetBudgetByID retrieves a single budget.
	GetBudgetByID(ctx context.Context, budgetID int64) (*domain.Budget, error)

	// ListBudgets retrieves every budget, ordered by category.
	ListBudgets(ctx context.Context) ([]domain.Budget, error)

	// DeleteBudget removes a budget.
	DeleteBudget(ctx context.Context, budgetID int64) error

	// Reconcile recomputes the spent total for one (category, period) tuple
	// from the full transaction history and writes it back. A missing budget
	// row makes the write a silent no-op.
	Reconcile(ctx context.Context, category domain.CategoryName, period domain.Period) error

	// ReconcileAll reconciles every existing budget independently; one row's
	// failure does not stop the others.
	ReconcileAll(ctx context.Context) error
}
