package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// Account represents a financial account within the core domain.
// Balance is the running sum of every directional delta applied by posted
// transactions referencing this account as source or destination. It is
// mutated only through the ledger service; metadata edits never touch it.
type Account struct {
	AccountID int64           `json:"accountID"`
	Name      string          `json:"name"`
	Icon      string          `json:"icon"`
	Balance   decimal.Decimal `json:"balance"`
	CreatedAt time.Time       `json:"createdAt"`
}
