package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"wallet-ledger/internal/core/domain"
	"wallet-ledger/internal/core/ports"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/shopspring/decimal"
)

const uniqueViolationCode = "23505"

// WalletRepo implements ports.WalletRepository.
type WalletRepo struct {
	pool Pool
}

// NewWalletRepo creates a new WalletRepo.
func NewWalletRepo(pool Pool) *WalletRepo {
	return &WalletRepo{pool: pool}
}

const walletColumns = `id, user_id, balance, currency, version, created_at, updated_at`

// CreateForUser inserts a zero-balance wallet for the user. The unique
// index on user_id turns a concurrent create into ports.ErrDuplicateWallet.
func (r *WalletRepo) CreateForUser(ctx context.Context, userID uuid.UUID, currency string) (*domain.Wallet, error) {
	query := `INSERT INTO wallets (id, user_id, balance, currency, version, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING ` + walletColumns

	now := time.Now().UTC()
	w := &domain.Wallet{}
	err := r.pool.QueryRow(ctx, query,
		uuid.New(), userID, decimal.Zero, currency, int64(0), now, now,
	).Scan(
		&w.ID, &w.UserID, &w.Balance, &w.Currency,
		&w.Version, &w.CreatedAt, &w.UpdatedAt,
	)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolationCode {
			return nil, ports.ErrDuplicateWallet
		}
		return nil, fmt.Errorf("insert wallet: %w", err)
	}
	return w, nil
}

// GetByID fetches a wallet by its UUID.
func (r *WalletRepo) GetByID(ctx context.Context, id uuid.UUID) (*domain.Wallet, error) {
	query := `SELECT ` + walletColumns + ` FROM wallets WHERE id = $1`
	return r.scanWallet(r.pool.QueryRow(ctx, query, id))
}

// GetByUserID fetches a user's wallet. Returns nil, nil when the user
// has no wallet yet.
func (r *WalletRepo) GetByUserID(ctx context.Context, userID uuid.UUID) (*domain.Wallet, error) {
	query := `SELECT ` + walletColumns + ` FROM wallets WHERE user_id = $1`
	return r.scanWallet(r.pool.QueryRow(ctx, query, userID))
}

// IncrementBalance atomically adds amount and bumps the version
// counter, returning the updated row. Must run inside the caller's
// transaction.
func (r *WalletRepo) IncrementBalance(ctx context.Context, tx pgx.Tx, walletID uuid.UUID, amount decimal.Decimal) (*domain.Wallet, error) {
	return r.applyDelta(ctx, tx, walletID, amount, "+")
}

// DecrementBalance atomically subtracts amount and bumps the version
// counter, returning the updated row. The non-negative invariant is
// enforced by the engine's pre-flight check, not here.
func (r *WalletRepo) DecrementBalance(ctx context.Context, tx pgx.Tx, walletID uuid.UUID, amount decimal.Decimal) (*domain.Wallet, error) {
	return r.applyDelta(ctx, tx, walletID, amount, "-")
}

func (r *WalletRepo) applyDelta(ctx context.Context, tx pgx.Tx, walletID uuid.UUID, amount decimal.Decimal, op string) (*domain.Wallet, error) {
	query := `UPDATE wallets
		SET balance = balance ` + op + ` $1, version = version + 1, updated_at = NOW()
		WHERE id = $2
		RETURNING ` + walletColumns

	w := &domain.Wallet{}
	err := tx.QueryRow(ctx, query, amount, walletID).Scan(
		&w.ID, &w.UserID, &w.Balance, &w.Currency,
		&w.Version, &w.CreatedAt, &w.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("wallet not found: %s", walletID)
		}
		return nil, fmt.Errorf("update wallet balance: %w", err)
	}
	return w, nil
}

func (r *WalletRepo) scanWallet(row pgx.Row) (*domain.Wallet, error) {
	w := &domain.Wallet{}
	err := row.Scan(
		&w.ID, &w.UserID, &w.Balance, &w.Currency,
		&w.Version, &w.CreatedAt, &w.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("scan wallet: %w", err)
	}
	return w, nil
}
