package repositories

import (
	"context"

	"github.com/ajudi46/expense-tracker-server/internal/core/domain"
	"github.com/shopspring/decimal"
)

// BudgetReader defines read operations for budget data.
type BudgetReader interface {
	// FindBudgetByID retrieves a budget by its identifier.
	FindBudgetByID(ctx context.Context, budgetID int64) (*domain.Budget, error)

	// FindBudgetByPeriod retrieves the budget for a (category, month, year)
	// tuple, or apperrors.ErrNotFound when none exists.
	FindBudgetByPeriod(ctx context.Context, category domain.CategoryName, period domain.Period) (*domain.Budget, error)

	// ListBudgets retrieves every budget, ordered by category.
	ListBudgets(ctx context.Context) ([]domain.Budget, error)
}

// BudgetWriter defines write operations for budget data.
type BudgetWriter interface {
	// UpsertBudget inserts the budget, or on a (category, month, year)
	// conflict updates the existing row's limit in place. The surviving row
	// is returned; its Spent value is never reset by the upsert.
	UpsertBudget(ctx context.Context, budget domain.Budget) (*domain.Budget, error)

	// SaveBudget inserts a budget without conflict handling. Used by the
	// cloud merge path; returns apperrors.ErrDuplicate on collision.
	SaveBudget(ctx context.Context, budget domain.Budget) error

	// UpdateBudget overwrites an existing budget row.
	UpdateBudget(ctx context.Context, budget domain.Budget) error

	// UpdateSpent writes the recomputed spent total for the budget matching
	// the tuple. A missing budget row is a silent no-op.
	UpdateSpent(ctx context.Context, category domain.CategoryName, period domain.Period, spent decimal.Decimal) error

	// DeleteBudget removes a budget by identifier.
	DeleteBudget(ctx context.Context, budgetID int64) error
}

// BudgetRepositoryFacade combines all budget-related repository interfaces.
type BudgetRepositoryFacade interface {
	BudgetReader
	BudgetWriter
}
