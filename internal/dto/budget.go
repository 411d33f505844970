package dto

import (
	"time"

	"github.com/ajudi46/expense-tracker-server/internal/core/domain"
	"github.com/shopspring/decimal"
)

// CreateBudgetRequest defines the data needed to create (or upsert) a budget.
type CreateBudgetRequest struct {
	Category    string          `json:"category" binding:"required,notblank"`
	LimitAmount decimal.Decimal `json:"limitAmount" binding:"required"`
	Month       int             `json:"month" binding:"required,min=1,max=12"`
	Year        int             `json:"year" binding:"required,min=1970"`
}

// ReconcileBudgetRequest identifies one (category, month, year) tuple to recompute.
type ReconcileBudgetRequest struct {
	Category string `json:"category" binding:"required,notblank"`
	Month    int    `json:"month" binding:"required,min=1,max=12"`
	Year     int    `json:"year" binding:"required,min=1970"`
}

// BudgetResponse defines the data returned for a budget, including the
// attributes derived from limit and spent.
type BudgetResponse struct {
	BudgetID     int64           `json:"budgetID"`
	Category     string          `json:"category"`
	LimitAmount  decimal.Decimal `json:"limitAmount"`
	Spent        decimal.Decimal `json:"spent"`
	Remaining    decimal.Decimal `json:"remaining"`
	PercentUsed  decimal.Decimal `json:"percentUsed"`
	IsOverBudget bool            `json:"isOverBudget"`
	Month        int             `json:"month"`
	Year         int             `json:"year"`
	CreatedAt    time.Time       `json:"createdAt"`
}

// ToBudgetResponse converts a domain.Budget to its response DTO.
func ToBudgetResponse(b *domain.Budget) BudgetResponse {
	return BudgetResponse{
		BudgetID:     b.BudgetID,
		Category:     string(b.Category),
		LimitAmount:  b.LimitAmount,
		Spent:        b.Spent,
		Remaining:    b.Remaining(),
		PercentUsed:  b.PercentUsed(),
		IsOverBudget: b.IsOverBudget(),
		Month:        b.Month,
		Year:         b.Year,
		CreatedAt:    b.CreatedAt,
	}
}
