package domain

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// Audit action tags for the funds protocol.
const (
	AuditActionDeposit  = "wallet.deposit"
	AuditActionWithdraw = "wallet.withdraw"
)

// AuditLogEntry records a single business event. Entries are
// write-once, best-effort, and never read back by the ledger core.
type AuditLogEntry struct {
	ID         uuid.UUID       `json:"id"`
	UserID     *uuid.UUID      `json:"user_id,omitempty"`
	WalletID   *uuid.UUID      `json:"wallet_id,omitempty"`
	Action     string          `json:"action"`
	EntityType string          `json:"entity_type"`
	EntityID   string          `json:"entity_id,omitempty"`
	Context    json.RawMessage `json:"context,omitempty"`
	CreatedAt  time.Time       `json:"created_at"`
}
