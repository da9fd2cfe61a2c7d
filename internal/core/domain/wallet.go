package domain

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// DefaultCurrency is assigned to wallets created lazily on first access.
const DefaultCurrency = "USD"

// Wallet holds a single user's balance in one currency. Exactly one
// wallet exists per user; it is created on first access and never
// deleted. Version increments on every balance mutation but is not
// checked as a write precondition; concurrent mutations are serialized
// by the store's transaction isolation, and the counter is advisory
// change detection only.
type Wallet struct {
	ID        uuid.UUID       `json:"id"`
	UserID    uuid.UUID       `json:"user_id"`
	Balance   decimal.Decimal `json:"balance"`
	Currency  string          `json:"currency"`
	Version   int64           `json:"version"`
	CreatedAt time.Time       `json:"created_at"`
	UpdatedAt time.Time       `json:"updated_at"`
}

// CanWithdraw reports whether the balance covers amount. This is the
// pre-flight check; the store does not enforce non-negative balances.
func (w *Wallet) CanWithdraw(amount decimal.Decimal) bool {
	return w.Balance.GreaterThanOrEqual(amount)
}
