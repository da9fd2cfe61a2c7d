package postgres

import (
	"context"
	"fmt"
	"time"

	"wallet-ledger/internal/core/domain"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

// OutboxRepo implements ports.OutboxRepository.
type OutboxRepo struct {
	pool Pool
}

// NewOutboxRepo creates a new OutboxRepo.
func NewOutboxRepo(pool Pool) *OutboxRepo {
	return &OutboxRepo{pool: pool}
}

// Create durably records a provider-side effect. Runs as its own
// statement so the record survives a failed ledger commit.
func (r *OutboxRepo) Create(ctx context.Context, e *domain.OutboxEntry) error {
	query := `INSERT INTO outbox_entries (id, wallet_id, operation, external_reference, processor, amount, currency, resolved, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`

	_, err := r.pool.Exec(ctx, query,
		e.ID, e.WalletID, e.Operation, e.ExternalReference, e.Processor,
		e.Amount, e.Currency, e.Resolved, e.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert outbox entry: %w", err)
	}
	return nil
}

// MarkResolved flags an entry inside the same transaction that writes
// the matching ledger row.
func (r *OutboxRepo) MarkResolved(ctx context.Context, tx pgx.Tx, id uuid.UUID) error {
	query := `UPDATE outbox_entries SET resolved = TRUE, resolved_at = $1 WHERE id = $2`

	tag, err := tx.Exec(ctx, query, time.Now().UTC(), id)
	if err != nil {
		return fmt.Errorf("resolve outbox entry: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("outbox entry not found: %s", id)
	}
	return nil
}

// ListUnresolved returns unresolved entries older than the threshold,
// oldest first.
func (r *OutboxRepo) ListUnresolved(ctx context.Context, olderThan time.Time, limit int) ([]domain.OutboxEntry, error) {
	query := `SELECT id, wallet_id, operation, external_reference, processor, amount, currency, resolved, created_at, resolved_at
		FROM outbox_entries
		WHERE resolved = FALSE AND created_at < $1
		ORDER BY created_at ASC LIMIT $2`

	rows, err := r.pool.Query(ctx, query, olderThan, limit)
	if err != nil {
		return nil, fmt.Errorf("list unresolved outbox entries: %w", err)
	}
	defer rows.Close()

	var entries []domain.OutboxEntry
	for rows.Next() {
		e := domain.OutboxEntry{}
		err := rows.Scan(
			&e.ID, &e.WalletID, &e.Operation, &e.ExternalReference, &e.Processor,
			&e.Amount, &e.Currency, &e.Resolved, &e.CreatedAt, &e.ResolvedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("scan outbox row: %w", err)
		}
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate outbox rows: %w", err)
	}
	return entries, nil
}
