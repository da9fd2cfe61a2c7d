package service

import (
	"context"

	"wallet-ledger/internal/core/domain"
	"wallet-ledger/internal/core/ports"

	"github.com/jackc/pgx/v5"
	"github.com/rs/zerolog"
)

type auditSink struct {
	repo ports.AuditRepository
	log  zerolog.Logger
}

// NewAuditSink creates the audit sink. If repo is nil, entries are
// only written to the logger.
func NewAuditSink(repo ports.AuditRepository, log zerolog.Logger) ports.AuditSink {
	return &auditSink{repo: repo, log: log}
}

// Record writes an audit entry inside the caller's transaction. The
// insert runs in a savepoint so a failed audit write never aborts the
// enclosing unit; failures are logged and swallowed.
func (s *auditSink) Record(ctx context.Context, tx pgx.Tx, entry *domain.AuditLogEntry) {
	s.log.Info().
		Str("action", entry.Action).
		Str("entity_type", entry.EntityType).
		Str("entity_id", entry.EntityID).
		Msg("audit")

	if s.repo == nil {
		return
	}

	sp, err := tx.Begin(ctx) // savepoint on an open tx
	if err != nil {
		s.log.Warn().Err(err).Str("action", entry.Action).Msg("failed to open audit savepoint")
		return
	}
	if err := s.repo.Create(ctx, sp, entry); err != nil {
		_ = sp.Rollback(ctx)
		s.log.Warn().Err(err).Str("action", entry.Action).Msg("failed to persist audit entry")
		return
	}
	if err := sp.Commit(ctx); err != nil {
		s.log.Warn().Err(err).Str("action", entry.Action).Msg("failed to commit audit savepoint")
	}
}
