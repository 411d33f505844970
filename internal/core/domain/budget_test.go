package domain_test

import (
	"testing"
	"time"

	"github.com/ajudi46/expense-tracker-server/internal/core/domain"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func TestBudget_Remaining(t *testing.T) {
	tests := []struct {
		name   string
		budget domain.Budget
		want   string
	}{
		{
			name:   "under budget",
			budget: domain.Budget{LimitAmount: decimal.NewFromInt(500), Spent: decimal.NewFromInt(120)},
			want:   "380",
		},
		{
			name:   "over budget goes negative",
			budget: domain.Budget{LimitAmount: decimal.NewFromInt(100), Spent: decimal.RequireFromString("150.25")},
			want:   "-50.25",
		},
		{
			name:   "untouched budget",
			budget: domain.Budget{LimitAmount: decimal.NewFromInt(200)},
			want:   "200",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.True(t, tt.budget.Remaining().Equal(decimal.RequireFromString(tt.want)))
		})
	}
}

func TestBudget_PercentUsed(t *testing.T) {
	b := domain.Budget{LimitAmount: decimal.NewFromInt(200), Spent: decimal.NewFromInt(50)}
	assert.True(t, b.PercentUsed().Equal(decimal.RequireFromString("0.25")))

	// A non-positive limit yields zero instead of dividing by zero.
	zero := domain.Budget{LimitAmount: decimal.Zero, Spent: decimal.NewFromInt(50)}
	assert.True(t, zero.PercentUsed().IsZero())
}

func TestBudget_IsOverBudget(t *testing.T) {
	assert.False(t, domain.Budget{LimitAmount: decimal.NewFromInt(100), Spent: decimal.NewFromInt(100)}.IsOverBudget())
	assert.True(t, domain.Budget{LimitAmount: decimal.NewFromInt(100), Spent: decimal.RequireFromString("100.01")}.IsOverBudget())
}

func TestPeriod_Bounds(t *testing.T) {
	start, end := domain.Period{Month: 12, Year: 2025}.Bounds()
	assert.Equal(t, time.Date(2025, 12, 1, 0, 0, 0, 0, time.UTC), start)
	assert.Equal(t, time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC), end)
}

func TestPeriod_Contains(t *testing.T) {
	p := domain.Period{Month: 3, Year: 2025}

	assert.True(t, p.Contains(time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC)))
	assert.True(t, p.Contains(time.Date(2025, 3, 31, 23, 59, 59, 0, time.UTC)))
	assert.False(t, p.Contains(time.Date(2025, 4, 1, 0, 0, 0, 0, time.UTC)))

	// Attribution is by UTC month, not local time: April 1st 02:00 at UTC+5
	// is still March 31st in UTC.
	loc := time.FixedZone("UTC+5", 5*3600)
	assert.True(t, p.Contains(time.Date(2025, 4, 1, 2, 0, 0, 0, loc)))
}

func TestCategoryName_EqualIsCaseSensitive(t *testing.T) {
	assert.True(t, domain.CategoryName("Food").Equal("Food"))
	assert.False(t, domain.CategoryName("Food").Equal("food"))
}

func TestTransaction_Period(t *testing.T) {
	txn := domain.Transaction{CreatedAt: time.Date(2025, 7, 15, 10, 0, 0, 0, time.UTC)}
	assert.Equal(t, domain.Period{Month: 7, Year: 2025}, txn.Period())
}
