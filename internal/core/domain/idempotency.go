package domain

import (
	"time"

	"github.com/google/uuid"
)

// IdempotencyRecord caches the result of a completed funds operation
// so a retried request returns the original result instead of moving
// money twice. Keyed on wallet, operation and the caller's key.
type IdempotencyRecord struct {
	Key           string    `json:"key"` // "<wallet_id>:<op>:<client_key>"
	TransactionID uuid.UUID `json:"transaction_id"`
	ResponseJSON  []byte    `json:"response_json"`
	CreatedAt     time.Time `json:"created_at"`
}

// BuildIdempotencyKey constructs the dedup key for a funds operation.
// op is "deposit" or "withdraw".
func BuildIdempotencyKey(walletID uuid.UUID, op, clientKey string) string {
	return walletID.String() + ":" + op + ":" + clientKey
}
