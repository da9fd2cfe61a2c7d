package domain

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// TransactionType is the direction of a funds movement. Direction is
// always carried by the type, never by the sign of the amount.
type TransactionType string

const (
	TransactionTypeDeposit    TransactionType = "DEPOSIT"
	TransactionTypeWithdrawal TransactionType = "WITHDRAWAL"
)

// TransactionStatus is the recorded outcome of one movement attempt.
// The status is decided before the row is written; only a future
// asynchronous confirmation flow would update it afterwards.
type TransactionStatus string

const (
	TransactionStatusPending   TransactionStatus = "PENDING"
	TransactionStatusSucceeded TransactionStatus = "SUCCEEDED"
	TransactionStatusFailed    TransactionStatus = "FAILED"
)

// Transaction is an immutable journal entry for one deposit or
// withdrawal attempt, including attempts the processor rejected.
type Transaction struct {
	ID                uuid.UUID         `json:"id"`
	WalletID          uuid.UUID         `json:"wallet_id"`
	Type              TransactionType   `json:"type"`
	Status            TransactionStatus `json:"status"`
	Amount            decimal.Decimal   `json:"amount"`
	Currency          string            `json:"currency"`
	ExternalReference *string           `json:"external_reference,omitempty"`
	Processor         *string           `json:"processor,omitempty"`
	ProcessorPayload  json.RawMessage   `json:"-"`
	IdempotencyKey    *string           `json:"idempotency_key,omitempty"`
	Metadata          json.RawMessage   `json:"metadata,omitempty"`
	OccurredAt        time.Time         `json:"occurred_at"`
	CreatedAt         time.Time         `json:"created_at"`
	UpdatedAt         time.Time         `json:"updated_at"`
}

// MovesBalance reports whether this entry changed the wallet balance.
// Only SUCCEEDED entries do; PENDING and FAILED leave it untouched.
func (t *Transaction) MovesBalance() bool {
	return t.Status == TransactionStatusSucceeded
}

// SignedAmount is the balance delta this entry represents when it
// succeeded: positive for deposits, negative for withdrawals.
func (t *Transaction) SignedAmount() decimal.Decimal {
	if t.Type == TransactionTypeWithdrawal {
		return t.Amount.Neg()
	}
	return t.Amount
}
