package ports

import (
	"context"
	"encoding/json"
	"time"

	"wallet-ledger/internal/core/domain"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"
)

// Outcome is the payment processor's verdict on a single attempt as
// reported in its synchronous response.
type Outcome string

const (
	OutcomeSucceeded Outcome = "succeeded"
	OutcomePending   Outcome = "pending"
	OutcomeFailed    Outcome = "failed"
)

// ChargeRequest is the provider call input for deposits.
type ChargeRequest struct {
	UserID   uuid.UUID
	WalletID uuid.UUID
	Amount   decimal.Decimal
	Currency string
	Metadata map[string]string
}

// PayoutRequest is the provider call input for withdrawals.
type PayoutRequest struct {
	UserID      uuid.UUID
	WalletID    uuid.UUID
	Amount      decimal.Decimal
	Currency    string
	Destination *string
	Metadata    map[string]string
}

// ProviderResponse is the provider's synchronous answer. Raw is the
// opaque processor payload, stored as-is for audit and debugging.
type ProviderResponse struct {
	ID        string
	Status    Outcome
	Amount    decimal.Decimal
	Currency  string
	Processor string
	Raw       json.RawMessage
}

// PaymentProvider is the external processor capability. Calls are
// network operations of unknown duration and must never run inside a
// database transaction. A returned error is a transport failure: no
// ledger record is written. A business rejection arrives as a normal
// response with Status "failed".
type PaymentProvider interface {
	CreateDeposit(ctx context.Context, req ChargeRequest) (*ProviderResponse, error)
	CreateWithdrawal(ctx context.Context, req PayoutRequest) (*ProviderResponse, error)
}

// --- Service Ports (Business Logic) ---

// FundsRequest holds validated input for a deposit or withdrawal.
// Amount is the caller's textual decimal, parsed by the engine.
type FundsRequest struct {
	UserID         uuid.UUID
	Amount         string
	Currency       string
	Metadata       map[string]string
	IdempotencyKey *string
}

// FundsResult is the composed result of one funds operation.
type FundsResult struct {
	Wallet      *domain.Wallet
	Transaction *domain.Transaction
	Status      domain.TransactionStatus
}

// WalletStatement pairs a wallet with its journal snapshot.
type WalletStatement struct {
	Wallet       *domain.Wallet
	Transactions []domain.Transaction
}

// FundsService is the funds-movement core.
type FundsService interface {
	Deposit(ctx context.Context, req FundsRequest) (*FundsResult, error)
	Withdraw(ctx context.Context, req FundsRequest) (*FundsResult, error)
	GetWallet(ctx context.Context, userID uuid.UUID) (*domain.Wallet, error)
	ListTransactions(ctx context.Context, userID uuid.UUID) (*WalletStatement, error)
}

// UserService defines user management at the ledger's boundary.
type UserService interface {
	Create(ctx context.Context, req CreateUserRequest) (*domain.User, error)
	GetByID(ctx context.Context, id uuid.UUID) (*domain.User, error)
}

// CreateUserRequest holds validated input for user creation.
type CreateUserRequest struct {
	Email     string
	FirstName *string
	LastName  *string
}

// AuditSink records business events inside the caller's atomic unit.
// Record never returns an error: failures are logged and swallowed so
// the enclosing unit is never aborted by the side channel.
type AuditSink interface {
	Record(ctx context.Context, tx pgx.Tx, entry *domain.AuditLogEntry)
}

// IdempotencyCache is the fast read-through layer in front of the
// durable idempotency records. A cache miss is not authoritative; the
// database record is.
type IdempotencyCache interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
}

// Reconciler surfaces provider-side effects that never reached the
// ledger. It reports; it does not mutate balances.
type Reconciler interface {
	SweepOnce(ctx context.Context) ([]domain.OutboxEntry, error)
}
