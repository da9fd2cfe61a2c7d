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

func TestUserRepo_Create(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	repo := NewUserRepo(mock)
	first := "Alice"
	now := time.Now().UTC().Truncate(time.Microsecond)
	u := &domain.User{
		ID:        uuid.New(),
		Email:     "alice@example.com",
		FirstName: &first,
		CreatedAt: now,
		UpdatedAt: now,
	}

	mock.ExpectExec("INSERT INTO users").
		WithArgs(u.ID, u.Email, u.FirstName, u.LastName, u.CreatedAt, u.UpdatedAt).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))

	err = repo.Create(context.Background(), u)
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUserRepo_GetByID(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	repo := NewUserRepo(mock)
	id := uuid.New()
	now := time.Now().UTC().Truncate(time.Microsecond)

	mock.ExpectQuery("SELECT .+ FROM users WHERE id").
		WithArgs(id).
		WillReturnRows(pgxmock.NewRows([]string{"id", "email", "first_name", "last_name", "created_at", "updated_at"}).
			AddRow(id, "bob@example.com", nil, nil, now, now))

	u, err := repo.GetByID(context.Background(), id)
	require.NoError(t, err)
	require.NotNil(t, u)
	assert.Equal(t, "bob@example.com", u.Email)
	assert.Nil(t, u.FirstName)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUserRepo_GetByID_Absent(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	repo := NewUserRepo(mock)
	id := uuid.New()

	mock.ExpectQuery("SELECT .+ FROM users WHERE id").
		WithArgs(id).
		WillReturnRows(pgxmock.NewRows([]string{"id", "email", "first_name", "last_name", "created_at", "updated_at"}))

	u, err := repo.GetByID(context.Background(), id)
	require.NoError(t, err)
	assert.Nil(t, u)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUserRepo_GetByEmail(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	repo := NewUserRepo(mock)
	id := uuid.New()
	now := time.Now().UTC().Truncate(time.Microsecond)

	mock.ExpectQuery("SELECT .+ FROM users WHERE email").
		WithArgs("carol@example.com").
		WillReturnRows(pgxmock.NewRows([]string{"id", "email", "first_name", "last_name", "created_at", "updated_at"}).
			AddRow(id, "carol@example.com", nil, nil, now, now))

	u, err := repo.GetByEmail(context.Background(), "carol@example.com")
	require.NoError(t, err)
	require.NotNil(t, u)
	assert.Equal(t, id, u.ID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAuditRepo_Create(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	repo := NewAuditRepo(mock)
	userID := uuid.New()
	walletID := uuid.New()
	entry := &domain.AuditLogEntry{
		ID:         uuid.New(),
		UserID:     &userID,
		WalletID:   &walletID,
		Action:     domain.AuditActionDeposit,
		EntityType: "transaction",
		EntityID:   uuid.New().String(),
		Context:    []byte(`{"amount":"50.00","currency":"USD","status":"SUCCEEDED"}`),
		CreatedAt:  time.Now().UTC().Truncate(time.Microsecond),
	}

	mock.ExpectBegin()
	mock.ExpectExec("INSERT INTO audit_log_entries").
		WithArgs(entry.ID, entry.UserID, entry.WalletID, entry.Action, entry.EntityType, entry.EntityID, entry.Context, entry.CreatedAt).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))

	tx, err := mock.Begin(context.Background())
	require.NoError(t, err)

	err = repo.Create(context.Background(), tx, entry)
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}
