package postgres

import (
	"context"
	"testing"
	"time"

	"wallet-ledger/internal/core/domain"

	"github.com/google/uuid"
	"github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIdempotencyRepo_Create(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	repo := NewIdempotencyRepo(mock)
	rec := &domain.IdempotencyRecord{
		Key:           uuid.New().String() + ":deposit:req-001",
		TransactionID: uuid.New(),
		ResponseJSON:  []byte(`{"status":"SUCCEEDED"}`),
		CreatedAt:     time.Now().UTC().Truncate(time.Microsecond),
	}

	mock.ExpectBegin()
	mock.ExpectExec("INSERT INTO idempotency_records").
		WithArgs(rec.Key, rec.TransactionID, rec.ResponseJSON, rec.CreatedAt).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))

	tx, err := mock.Begin(context.Background())
	require.NoError(t, err)

	err = repo.Create(context.Background(), tx, rec)
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestIdempotencyRepo_Get(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	repo := NewIdempotencyRepo(mock)
	rec := &domain.IdempotencyRecord{
		Key:           uuid.New().String() + ":withdraw:req-002",
		TransactionID: uuid.New(),
		ResponseJSON:  []byte(`{"status":"SUCCEEDED"}`),
		CreatedAt:     time.Now().UTC().Truncate(time.Microsecond),
	}

	mock.ExpectQuery("SELECT .+ FROM idempotency_records WHERE key").
		WithArgs(rec.Key).
		WillReturnRows(pgxmock.NewRows([]string{"key", "transaction_id", "response_json", "created_at"}).
			AddRow(rec.Key, rec.TransactionID, rec.ResponseJSON, rec.CreatedAt))

	result, err := repo.Get(context.Background(), rec.Key)
	require.NoError(t, err)
	require.NotNil(t, result)
	assert.Equal(t, rec.TransactionID, result.TransactionID)
	assert.JSONEq(t, `{"status":"SUCCEEDED"}`, string(result.ResponseJSON))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestIdempotencyRepo_Get_Absent(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	repo := NewIdempotencyRepo(mock)

	mock.ExpectQuery("SELECT .+ FROM idempotency_records WHERE key").
		WithArgs("no-such-key").
		WillReturnRows(pgxmock.NewRows([]string{"key", "transaction_id", "response_json", "created_at"}))

	result, err := repo.Get(context.Background(), "no-such-key")
	require.NoError(t, err)
	assert.Nil(t, result)
	assert.NoError(t, mock.ExpectationsWereMet())
}
