package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"wallet-ledger/internal/core/domain"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

// TransactionRepo implements ports.TransactionRepository.
type TransactionRepo struct {
	pool Pool
}

// NewTransactionRepo creates a new TransactionRepo.
func NewTransactionRepo(pool Pool) *TransactionRepo {
	return &TransactionRepo{pool: pool}
}

const transactionColumns = `id, wallet_id, type, status, amount, currency,
		external_reference, processor, processor_payload, idempotency_key, metadata,
		occurred_at, created_at, updated_at`

// Create inserts a journal entry within a database transaction. The
// row is immutable once written: status is decided before the insert.
func (r *TransactionRepo) Create(ctx context.Context, tx pgx.Tx, t *domain.Transaction) error {
	query := `INSERT INTO transactions (id, wallet_id, type, status, amount, currency,
		external_reference, processor, processor_payload, idempotency_key, metadata,
		occurred_at, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)`

	_, err := tx.Exec(ctx, query,
		t.ID, t.WalletID, t.Type, t.Status, t.Amount, t.Currency,
		t.ExternalReference, t.Processor, t.ProcessorPayload, t.IdempotencyKey, t.Metadata,
		t.OccurredAt, t.CreatedAt, t.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert transaction: %w", err)
	}
	return nil
}

// GetByID fetches a transaction by UUID. Returns nil, nil when absent.
func (r *TransactionRepo) GetByID(ctx context.Context, id uuid.UUID) (*domain.Transaction, error) {
	query := `SELECT ` + transactionColumns + ` FROM transactions WHERE id = $1`
	return r.scanTransaction(r.pool.QueryRow(ctx, query, id))
}

// GetByIdempotencyKey fetches a prior attempt by wallet and dedup key.
func (r *TransactionRepo) GetByIdempotencyKey(ctx context.Context, walletID uuid.UUID, key string) (*domain.Transaction, error) {
	query := `SELECT ` + transactionColumns + ` FROM transactions
		WHERE wallet_id = $1 AND idempotency_key = $2`
	return r.scanTransaction(r.pool.QueryRow(ctx, query, walletID, key))
}

// UpdateStatus sets a transaction's status and returns the updated
// row. Reserved for asynchronous confirmation; the synchronous
// deposit/withdraw protocol never calls it.
func (r *TransactionRepo) UpdateStatus(ctx context.Context, tx pgx.Tx, id uuid.UUID, status domain.TransactionStatus) (*domain.Transaction, error) {
	query := `UPDATE transactions SET status = $1, updated_at = $2 WHERE id = $3
		RETURNING ` + transactionColumns

	t, err := r.scanTransaction(tx.QueryRow(ctx, query, status, time.Now().UTC(), id))
	if err != nil {
		return nil, err
	}
	if t == nil {
		return nil, fmt.Errorf("transaction not found: %s", id)
	}
	return t, nil
}

// ListByWallet returns the wallet's journal, newest occurred_at first.
// The result is a snapshot at call time.
func (r *TransactionRepo) ListByWallet(ctx context.Context, walletID uuid.UUID) ([]domain.Transaction, error) {
	query := `SELECT ` + transactionColumns + ` FROM transactions
		WHERE wallet_id = $1 ORDER BY occurred_at DESC`

	rows, err := r.pool.Query(ctx, query, walletID)
	if err != nil {
		return nil, fmt.Errorf("list transactions: %w", err)
	}
	defer rows.Close()

	var txns []domain.Transaction
	for rows.Next() {
		t := domain.Transaction{}
		err := rows.Scan(
			&t.ID, &t.WalletID, &t.Type, &t.Status, &t.Amount, &t.Currency,
			&t.ExternalReference, &t.Processor, &t.ProcessorPayload, &t.IdempotencyKey, &t.Metadata,
			&t.OccurredAt, &t.CreatedAt, &t.UpdatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("scan transaction row: %w", err)
		}
		txns = append(txns, t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate transaction rows: %w", err)
	}
	return txns, nil
}

func (r *TransactionRepo) scanTransaction(row pgx.Row) (*domain.Transaction, error) {
	t := &domain.Transaction{}
	err := row.Scan(
		&t.ID, &t.WalletID, &t.Type, &t.Status, &t.Amount, &t.Currency,
		&t.ExternalReference, &t.Processor, &t.ProcessorPayload, &t.IdempotencyKey, &t.Metadata,
		&t.OccurredAt, &t.CreatedAt, &t.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("scan transaction: %w", err)
	}
	return t, nil
}
