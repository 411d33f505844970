package dto

import (
	"time"

	"github.com/ajudi46/expense-tracker-server/internal/core/domain"
	"github.com/shopspring/decimal"
)

// CreateTransactionRequest defines the data needed to post a transaction.
type CreateTransactionRequest struct {
	Kind        domain.TransactionKind `json:"kind" binding:"required,oneof=EXPENSE INCOME TRANSFER"`
	Amount      decimal.Decimal        `json:"amount" binding:"required"`
	Description string                 `json:"description"`
	Category    string                 `json:"category" binding:"required,notblank"`
	AccountID   int64                  `json:"accountID" binding:"required"`
	ToAccountID *int64                 `json:"toAccountID"` // Transfer destination
	CreatedAt   *time.Time             `json:"createdAt"`   // optional backdating; defaults to now
}

// UpdateTransactionRequest carries the full replacement state for an edit.
type UpdateTransactionRequest struct {
	Kind        domain.TransactionKind `json:"kind" binding:"required,oneof=EXPENSE INCOME TRANSFER"`
	Amount      decimal.Decimal        `json:"amount" binding:"required"`
	Description string                 `json:"description"`
	Category    string                 `json:"category" binding:"required,notblank"`
	AccountID   int64                  `json:"accountID" binding:"required"`
	ToAccountID *int64                 `json:"toAccountID"`
	CreatedAt   *time.Time             `json:"createdAt"`
}

// TransactionResponse defines the data returned for a transaction.
type TransactionResponse struct {
	TransactionID int64                  `json:"transactionID"`
	Kind          domain.TransactionKind `json:"kind"`
	Amount        decimal.Decimal        `json:"amount"`
	Description   string                 `json:"description"`
	Category      string                 `json:"category"`
	AccountID     int64                  `json:"accountID"`
	ToAccountID   *int64                 `json:"toAccountID,omitempty"`
	CreatedAt     time.Time              `json:"createdAt"`
}

// ToTransactionResponse converts a domain.Transaction to its response DTO.
func ToTransactionResponse(t *domain.Transaction) TransactionResponse {
	return TransactionResponse{
		TransactionID: t.TransactionID,
		Kind:          t.Kind,
		Amount:        t.Amount,
		Description:   t.Description,
		Category:      string(t.Category),
		AccountID:     t.AccountID,
		ToAccountID:   t.ToAccountID,
		CreatedAt:     t.CreatedAt,
	}
}
