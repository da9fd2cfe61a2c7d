package domain

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// OutboxEntry durably records that the payment processor reported a
// succeeded movement before the ledger commit is attempted. The entry
// is marked resolved inside the same atomic unit that writes the
// transaction row; an unresolved entry therefore means money moved at
// the processor with no matching ledger record, and the reconciler
// surfaces it.
type OutboxEntry struct {
	ID                uuid.UUID       `json:"id"`
	WalletID          uuid.UUID       `json:"wallet_id"`
	Operation         TransactionType `json:"operation"`
	ExternalReference string          `json:"external_reference"`
	Processor         string          `json:"processor"`
	Amount            decimal.Decimal `json:"amount"`
	Currency          string          `json:"currency"`
	Resolved          bool            `json:"resolved"`
	CreatedAt         time.Time       `json:"created_at"`
	ResolvedAt        *time.Time      `json:"resolved_at,omitempty"`
}
