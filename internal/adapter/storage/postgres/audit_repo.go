package postgres

import (
	"context"
	"fmt"

	"wallet-ledger/internal/core/domain"

	"github.com/jackc/pgx/v5"
)

// AuditRepo implements ports.AuditRepository.
type AuditRepo struct {
	pool Pool
}

// NewAuditRepo creates a new AuditRepo.
func NewAuditRepo(pool Pool) *AuditRepo {
	return &AuditRepo{pool: pool}
}

// Create inserts an audit entry within the caller's transaction so the
// entry commits together with the business writes it describes.
func (r *AuditRepo) Create(ctx context.Context, tx pgx.Tx, e *domain.AuditLogEntry) error {
	query := `INSERT INTO audit_log_entries (id, user_id, wallet_id, action, entity_type, entity_id, context, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`

	_, err := tx.Exec(ctx, query,
		e.ID, e.UserID, e.WalletID, e.Action, e.EntityType, e.EntityID, e.Context, e.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert audit entry: %w", err)
	}
	return nil
}
