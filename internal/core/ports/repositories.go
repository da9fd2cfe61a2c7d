package ports

import (
	"context"
	"errors"
	"time"

	"wallet-ledger/internal/core/domain"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"
)

// ErrDuplicateWallet reports a unique-constraint violation on wallet
// creation. It signals a lost creation race; callers re-read the
// winner's row instead of failing.
var ErrDuplicateWallet = errors.New("wallet already exists for user")

// UserRepository defines persistence operations for users.
type UserRepository interface {
	Create(ctx context.Context, user *domain.User) error
	GetByID(ctx context.Context, id uuid.UUID) (*domain.User, error)
	GetByEmail(ctx context.Context, email string) (*domain.User, error)
}

// WalletRepository defines persistence operations for wallets.
// Balance mutations take pgx.Tx explicitly: they participate in the
// caller's atomic unit, and each returns the updated row with the
// version counter bumped by one.
type WalletRepository interface {
	// CreateForUser inserts a zero-balance wallet in the default
	// currency. A unique constraint on user_id turns a creation race
	// into ErrDuplicateWallet; callers re-read instead of failing.
	CreateForUser(ctx context.Context, userID uuid.UUID, currency string) (*domain.Wallet, error)
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Wallet, error)
	GetByUserID(ctx context.Context, userID uuid.UUID) (*domain.Wallet, error)
	IncrementBalance(ctx context.Context, tx pgx.Tx, walletID uuid.UUID, amount decimal.Decimal) (*domain.Wallet, error)
	DecrementBalance(ctx context.Context, tx pgx.Tx, walletID uuid.UUID, amount decimal.Decimal) (*domain.Wallet, error)
}

// TransactionRepository defines persistence for the immutable journal.
type TransactionRepository interface {
	Create(ctx context.Context, tx pgx.Tx, transaction *domain.Transaction) error
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Transaction, error)
	// GetByIdempotencyKey looks up a prior attempt by its dedup key.
	// Returns nil, nil when no such attempt exists.
	GetByIdempotencyKey(ctx context.Context, walletID uuid.UUID, key string) (*domain.Transaction, error)
	// UpdateStatus is reserved for a future asynchronous confirmation
	// flow; the synchronous protocol never calls it.
	UpdateStatus(ctx context.Context, tx pgx.Tx, id uuid.UUID, status domain.TransactionStatus) (*domain.Transaction, error)
	// ListByWallet returns a snapshot ordered newest occurred_at first.
	ListByWallet(ctx context.Context, walletID uuid.UUID) ([]domain.Transaction, error)
}

// AuditRepository persists audit entries. Create participates in the
// caller's transaction so the entry commits with the business write.
type AuditRepository interface {
	Create(ctx context.Context, tx pgx.Tx, entry *domain.AuditLogEntry) error
}

// IdempotencyRepository is the durable layer of the dedup check.
type IdempotencyRepository interface {
	Create(ctx context.Context, tx pgx.Tx, record *domain.IdempotencyRecord) error
	Get(ctx context.Context, key string) (*domain.IdempotencyRecord, error)
}

// OutboxRepository records provider-side effects awaiting their ledger
// commit. Create runs as its own statement before the atomic unit;
// MarkResolved runs inside it.
type OutboxRepository interface {
	Create(ctx context.Context, entry *domain.OutboxEntry) error
	MarkResolved(ctx context.Context, tx pgx.Tx, id uuid.UUID) error
	// ListUnresolved returns entries older than the threshold, oldest
	// first, capped at limit.
	ListUnresolved(ctx context.Context, olderThan time.Time, limit int) ([]domain.OutboxEntry, error)
}

// DBTransactor provides database transaction management.
type DBTransactor interface {
	Begin(ctx context.Context) (pgx.Tx, error)
}
