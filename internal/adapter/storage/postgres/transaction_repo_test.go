package postgres

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"wallet-ledger/internal/core/domain"

	"github.com/google/uuid"
	"github.com/pashagolub/pgxmock/v4"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestTransaction(walletID uuid.UUID) *domain.Transaction {
	ref := "deposit_abc123"
	proc := "stripe"
	key := walletID.String() + ":deposit:req-001"
	now := time.Now().UTC().Truncate(time.Microsecond)
	return &domain.Transaction{
		ID:                uuid.New(),
		WalletID:          walletID,
		Type:              domain.TransactionTypeDeposit,
		Status:            domain.TransactionStatusSucceeded,
		Amount:            decimal.RequireFromString("50.00"),
		Currency:          "USD",
		ExternalReference: &ref,
		Processor:         &proc,
		ProcessorPayload:  json.RawMessage(`{"id":"deposit_abc123"}`),
		IdempotencyKey:    &key,
		Metadata:          json.RawMessage(`{"note":"test"}`),
		OccurredAt:        now,
		CreatedAt:         now,
		UpdatedAt:         now,
	}
}

func transactionColumnNames() []string {
	return []string{
		"id", "wallet_id", "type", "status", "amount", "currency",
		"external_reference", "processor", "processor_payload",
		"idempotency_key", "metadata", "occurred_at", "created_at", "updated_at",
	}
}

func transactionRow(tr *domain.Transaction) *pgxmock.Rows {
	return pgxmock.NewRows(transactionColumnNames()).AddRow(
		tr.ID, tr.WalletID, tr.Type, tr.Status, tr.Amount, tr.Currency,
		tr.ExternalReference, tr.Processor, tr.ProcessorPayload,
		tr.IdempotencyKey, tr.Metadata, tr.OccurredAt, tr.CreatedAt, tr.UpdatedAt,
	)
}

func TestTransactionRepo_Create(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	repo := NewTransactionRepo(mock)
	tr := newTestTransaction(uuid.New())

	mock.ExpectBegin()
	mock.ExpectExec("INSERT INTO transactions").
		WithArgs(
			tr.ID, tr.WalletID, tr.Type, tr.Status, tr.Amount, tr.Currency,
			tr.ExternalReference, tr.Processor, tr.ProcessorPayload,
			tr.IdempotencyKey, tr.Metadata, tr.OccurredAt, tr.CreatedAt, tr.UpdatedAt,
		).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))

	tx, err := mock.Begin(context.Background())
	require.NoError(t, err)

	err = repo.Create(context.Background(), tx, tr)
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestTransactionRepo_GetByIdempotencyKey(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	repo := NewTransactionRepo(mock)
	tr := newTestTransaction(uuid.New())

	mock.ExpectQuery("SELECT .+ FROM transactions WHERE wallet_id = .+ AND idempotency_key").
		WithArgs(tr.WalletID, *tr.IdempotencyKey).
		WillReturnRows(transactionRow(tr))

	result, err := repo.GetByIdempotencyKey(context.Background(), tr.WalletID, *tr.IdempotencyKey)
	require.NoError(t, err)
	require.NotNil(t, result)
	assert.Equal(t, tr.ID, result.ID)
	assert.Equal(t, domain.TransactionStatusSucceeded, result.Status)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestTransactionRepo_GetByIdempotencyKey_Absent(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	repo := NewTransactionRepo(mock)
	walletID := uuid.New()

	mock.ExpectQuery("SELECT .+ FROM transactions WHERE wallet_id = .+ AND idempotency_key").
		WithArgs(walletID, "missing-key").
		WillReturnRows(pgxmock.NewRows(transactionColumnNames()))

	result, err := repo.GetByIdempotencyKey(context.Background(), walletID, "missing-key")
	require.NoError(t, err)
	assert.Nil(t, result)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestTransactionRepo_UpdateStatus(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	repo := NewTransactionRepo(mock)
	tr := newTestTransaction(uuid.New())
	tr.Status = domain.TransactionStatusSucceeded

	mock.ExpectBegin()
	mock.ExpectQuery("UPDATE transactions SET status").
		WithArgs(domain.TransactionStatusSucceeded, pgxmock.AnyArg(), tr.ID).
		WillReturnRows(transactionRow(tr))

	tx, err := mock.Begin(context.Background())
	require.NoError(t, err)

	result, err := repo.UpdateStatus(context.Background(), tx, tr.ID, domain.TransactionStatusSucceeded)
	require.NoError(t, err)
	assert.Equal(t, domain.TransactionStatusSucceeded, result.Status)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestTransactionRepo_ListByWallet(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	repo := NewTransactionRepo(mock)
	walletID := uuid.New()

	first := newTestTransaction(walletID)
	second := newTestTransaction(walletID)
	second.Type = domain.TransactionTypeWithdrawal
	second.Status = domain.TransactionStatusPending

	rows := pgxmock.NewRows(transactionColumnNames())
	for _, tr := range []*domain.Transaction{first, second} {
		rows.AddRow(
			tr.ID, tr.WalletID, tr.Type, tr.Status, tr.Amount, tr.Currency,
			tr.ExternalReference, tr.Processor, tr.ProcessorPayload,
			tr.IdempotencyKey, tr.Metadata, tr.OccurredAt, tr.CreatedAt, tr.UpdatedAt,
		)
	}

	mock.ExpectQuery("SELECT .+ FROM transactions WHERE wallet_id").
		WithArgs(walletID).
		WillReturnRows(rows)

	result, err := repo.ListByWallet(context.Background(), walletID)
	require.NoError(t, err)
	require.Len(t, result, 2)
	assert.Equal(t, first.ID, result[0].ID)
	assert.Equal(t, domain.TransactionTypeWithdrawal, result[1].Type)
	assert.NoError(t, mock.ExpectationsWereMet())
}
