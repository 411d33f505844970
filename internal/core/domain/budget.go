package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// Budget caps spending for one category within one calendar month.
// At most one budget may exist per (category, month, year) tuple; inserts for
// an existing tuple upsert the limit rather than creating a second row.
// Spent is a derived cache: it only changes through explicit reconciliation
// against the transaction history, never incrementally.
type Budget struct {
	BudgetID    int64           `json:"budgetID"`
	Category    CategoryName    `json:"category"`
	LimitAmount decimal.Decimal `json:"limitAmount"`
	Spent       decimal.Decimal `json:"spent"`
	Month       int             `json:"month"` // 1-12
	Year        int             `json:"year"`
	CreatedAt   time.Time       `json:"createdAt"`
}

// Period returns the calendar period this budget covers.
func (b Budget) Period() Period {
	return Period{Month: b.Month, Year: b.Year}
}

// Remaining returns limit minus spent. Negative when over budget.
func (b Budget) Remaining() decimal.Decimal {
	return b.LimitAmount.Sub(b.Spent)
}

// PercentUsed returns spent/limit, or zero when the limit is not positive.
func (b Budget) PercentUsed() decimal.Decimal {
	if b.LimitAmount.LessThanOrEqual(decimal.Zero) {
		return decimal.Zero
	}
	return b.Spent.Div(b.LimitAmount)
}

// IsOverBudget reports whether spending exceeds the limit.
func (b Budget) IsOverBudget() bool {
	return b.Spent.GreaterThan(b.LimitAmount)
}
