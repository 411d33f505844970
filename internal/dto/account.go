package dto

import (
	"time"

	"github.com/ajudi46/expense-tracker-server/internal/core/domain"
	"github.com/shopspring/decimal"
)

// CreateAccountRequest defines the data needed to create a new account.
type CreateAccountRequest struct {
	Name           string          `json:"name" binding:"required,notblank"`
	Icon           string          `json:"icon"`
	InitialBalance decimal.Decimal `json:"initialBalance"`
}

// UpdateAccountRequest defines the metadata fields a user may edit.
// Pointers distinguish zero-value updates from fields not provided.
// Balance is intentionally absent: it only moves through posted transactions.
type UpdateAccountRequest struct {
	Name *string `json:"name"`
	Icon *string `json:"icon"`
}

// AccountResponse defines the data returned for an account.
type AccountResponse struct {
	AccountID int64           `json:"accountID"`
	Name      string          `json:"name"`
	Icon      string          `json:"icon"`
	Balance   decimal.Decimal `json:"balance"`
	CreatedAt time.Time       `json:"createdAt"`
}

// ToAccountResponse converts a domain.Account to its response DTO.
func ToAccountResponse(acc *domain.Account) AccountResponse {
	return AccountResponse{
		AccountID: acc.AccountID,
		Name:      acc.Name,
		Icon:      acc.Icon,
		Balance:   acc.Balance,
		CreatedAt: acc.CreatedAt,
	}
}
