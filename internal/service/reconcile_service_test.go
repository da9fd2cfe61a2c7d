package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"wallet-ledger/internal/core/domain"
	"wallet-ledger/internal/core/ports/mocks"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
)

func TestReconcileService_SweepOnce(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	repo := mocks.NewMockOutboxRepository(ctrl)
	svc := NewReconcileService(repo, 5*time.Minute, 100, zerolog.Nop())
	ctx := context.Background()

	stale := domain.OutboxEntry{
		ID:                uuid.New(),
		WalletID:          uuid.New(),
		Operation:         domain.TransactionTypeDeposit,
		ExternalReference: "deposit_lost",
		Processor:         "stripe",
		Amount:            decimal.RequireFromString("50.00"),
		Currency:          "USD",
		CreatedAt:         time.Now().UTC().Add(-time.Hour),
	}

	repo.EXPECT().ListUnresolved(ctx, gomock.Any(), 100).DoAndReturn(
		func(_ context.Context, olderThan time.Time, _ int) ([]domain.OutboxEntry, error) {
			// Cutoff sits roughly one age-window in the past.
			assert.WithinDuration(t, time.Now().UTC().Add(-5*time.Minute), olderThan, time.Minute)
			return []domain.OutboxEntry{stale}, nil
		})

	entries, err := svc.SweepOnce(ctx)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, stale.ID, entries[0].ID)
}

func TestReconcileService_SweepOnce_Empty(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	repo := mocks.NewMockOutboxRepository(ctrl)
	svc := NewReconcileService(repo, 5*time.Minute, 100, zerolog.Nop())
	ctx := context.Background()

	repo.EXPECT().ListUnresolved(ctx, gomock.Any(), 100).Return(nil, nil)

	entries, err := svc.SweepOnce(ctx)
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestReconcileService_SweepOnce_RepoError(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	repo := mocks.NewMockOutboxRepository(ctrl)
	svc := NewReconcileService(repo, 5*time.Minute, 100, zerolog.Nop())
	ctx := context.Background()

	repo.EXPECT().ListUnresolved(ctx, gomock.Any(), 100).Return(nil, errors.New("db down"))

	_, err := svc.SweepOnce(ctx)
	assert.Error(t, err)
}
