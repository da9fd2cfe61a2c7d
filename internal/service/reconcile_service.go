package service

import (
	"context"
	"fmt"
	"time"

	"wallet-ledger/internal/core/domain"
	"wallet-ledger/internal/core/ports"

	"github.com/rs/zerolog"
)

// ReconcileServiceImpl implements ports.Reconciler. It surfaces
// provider-side effects whose ledger commit never happened; resolving
// them is an operator decision, so the sweep reports and does not
// touch balances.
type ReconcileServiceImpl struct {
	outboxRepo ports.OutboxRepository
	age        time.Duration
	limit      int
	log        zerolog.Logger
}

// NewReconcileService creates a new ReconcileServiceImpl. Entries
// younger than age are skipped: their atomic unit may still be in
// flight.
func NewReconcileService(outboxRepo ports.OutboxRepository, age time.Duration, limit int, log zerolog.Logger) *ReconcileServiceImpl {
	return &ReconcileServiceImpl{
		outboxRepo: outboxRepo,
		age:        age,
		limit:      limit,
		log:        log,
	}
}

// SweepOnce lists unresolved entries past the age threshold and logs
// each one.
func (s *ReconcileServiceImpl) SweepOnce(ctx context.Context) ([]domain.OutboxEntry, error) {
	cutoff := time.Now().UTC().Add(-s.age)

	entries, err := s.outboxRepo.ListUnresolved(ctx, cutoff, s.limit)
	if err != nil {
		return nil, fmt.Errorf("list unresolved outbox entries: %w", err)
	}

	for _, e := range entries {
		s.log.Warn().
			Str("outbox_id", e.ID.String()).
			Str("wallet_id", e.WalletID.String()).
			Str("operation", string(e.Operation)).
			Str("external_reference", e.ExternalReference).
			Str("processor", e.Processor).
			Str("amount", e.Amount.StringFixed(2)).
			Str("currency", e.Currency).
			Time("created_at", e.CreatedAt).
			Msg("provider effect has no matching ledger commit")
	}

	if len(entries) > 0 {
		s.log.Info().Int("count", len(entries)).Msg("reconciliation sweep found unresolved entries")
	}

	return entries, nil
}
