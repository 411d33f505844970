package pgsql

import (
	"context"
	"errors"
	"fmt"

	"github.com/ajudi46/expense-tracker-server/internal/apperrors"
	"github.com/ajudi46/expense-tracker-server/internal/core/domain"
	portsrepo "github.com/ajudi46/expense-tracker-server/internal/core/ports/repositories"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"
)

type budgetRepository struct {
	pool *pgxpool.Pool
}

// NewBudgetRepository creates a new repository for budget data.
func NewBudgetRepository(pool *pgxpool.Pool) portsrepo.BudgetRepositoryFacade {
	return &budgetRepository{pool: pool}
}

var _ portsrepo.BudgetRepositoryFacade = (*budgetRepository)(nil)

const selectBudgetColumns = `budget_id, category, limit_amount, spent, month, year, created_at`

func scanBudget(row pgx.Row) (*domain.Budget, error) {
	var b domain.Budget
	err := row.Scan(
		&b.BudgetID,
		&b.Category,
		&b.LimitAmount,
		&b.Spent,
		&b.Month,
		&b.Year,
		&b.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &b, nil
}

// UpsertBudget inserts the budget or, when the (category, month, year) tuple
// already exists, updates the surviving row's limit in place. Spent is
// deliberately untouched on conflict; the reconciler owns that column.
func (r *budgetRepository) UpsertBudget(ctx context.Context, budget domain.Budget) (*domain.Budget, error) {
	query := `
		INSERT INTO budgets (budget_id, category, limit_amount, spent, month, year, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		ON CONFLICT (category, month, year)
		DO UPDATE SET limit_amount = EXCLUDED.limit_amount
		RETURNING ` + selectBudgetColumns + `;
	`
	b, err := scanBudget(r.pool.QueryRow(ctx, query,
		budget.BudgetID,
		budget.Category,
		budget.LimitAmount,
		budget.Spent,
		budget.Month,
		budget.Year,
		budget.CreatedAt,
	))
	if err != nil {
		return nil, fmt.Errorf("failed to upsert budget for category %q: %w", budget.Category, err)
	}
	return b, nil
}

func (r *budgetRepository) SaveBudget(ctx context.Context, budget domain.Budget) error {
	query := `
		INSERT INTO budgets (budget_id, category, limit_amount, spent, month, year, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7);
	`
	_, err := r.pool.Exec(ctx, query,
		budget.BudgetID,
		budget.Category,
		budget.LimitAmount,
		budget.Spent,
		budget.Month,
		budget.Year,
		budget.CreatedAt,
	)
	if err != nil {
		if mapped := mapWriteError(err); errors.Is(mapped, apperrors.ErrDuplicate) {
			return mapped
		}
		return fmt.Errorf("failed to save budget %d: %w", budget.BudgetID, err)
	}
	return nil
}

func (r *budgetRepository) UpdateBudget(ctx context.Context, budget domain.Budget) error {
	query := `
		UPDATE budgets
		SET category = $2, limit_amount = $3, spent = $4, month = $5, year = $6
		WHERE budget_id = $1;
	`
	tag, err := r.pool.Exec(ctx, query,
		budget.BudgetID,
		budget.Category,
		budget.LimitAmount,
		budget.Spent,
		budget.Month,
		budget.Year,
	)
	if err != nil {
		return fmt.Errorf("failed to update budget %d: %w", budget.BudgetID, err)
	}
	if tag.RowsAffected() == 0 {
		return apperrors.ErrNotFound
	}
	return nil
}

// UpdateSpent writes the recomputed spent total. Affecting zero rows is not
// an error: spending without a budget for that tuple is allowed.
func (r *budgetRepository) UpdateSpent(ctx context.Context, category domain.CategoryName, period domain.Period, spent decimal.Decimal) error {
	query := `
		UPDATE budgets
		SET spent = $4
		WHERE category = $1 AND month = $2 AND year = $3;
	`
	if _, err := r.pool.Exec(ctx, query, category, period.Month, period.Year, spent); err != nil {
		return fmt.Errorf("failed to update spent for category %q: %w", category, err)
	}
	return nil
}

func (r *budgetRepository) FindBudgetByID(ctx context.Context, budgetID int64) (*domain.Budget, error) {
	query := `SELECT ` + selectBudgetColumns + ` FROM budgets WHERE budget_id = $1;`
	b, err := scanBudget(r.pool.QueryRow(ctx, query, budgetID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, fmt.Errorf("failed to find budget by ID %d: %w", budgetID, err)
	}
	return b, nil
}

func (r *budgetRepository) FindBudgetByPeriod(ctx context.Context, category domain.CategoryName, period domain.Period) (*domain.Budget, error) {
	query := `SELECT ` + selectBudgetColumns + ` FROM budgets WHERE category = $1 AND month = $2 AND year = $3;`
	b, err := scanBudget(r.pool.QueryRow(ctx, query, category, period.Month, period.Year))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, fmt.Errorf("failed to find budget for category %q: %w", category, err)
	}
	return b, nil
}

func (r *budgetRepository) ListBudgets(ctx context.Context) ([]domain.Budget, error) {
	query := `SELECT ` + selectBudgetColumns + ` FROM budgets ORDER BY category, year, month;`
	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to query budgets: %w", err)
	}
	defer rows.Close()

	budgets := []domain.Budget{}
	for rows.Next() {
		b, err := scanBudget(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan budget row: %w", err)
		}
		budgets = append(budgets, *b)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed iterating budget rows: %w", err)
	}
	return budgets, nil
}

func (r *budgetRepository) DeleteBudget(ctx context.Context, budgetID int64) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM budgets WHERE budget_id = $1;`, budgetID)
	if err != nil {
		return fmt.Errorf("failed to delete budget %d: %w", budgetID, err)
	}
	if tag.RowsAffected() == 0 {
		return apperrors.ErrNotFound
	}
	return nil
}
