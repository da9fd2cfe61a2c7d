package integration

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	httpHandler "wallet-ledger/internal/adapter/http/handler"
	redisStorage "wallet-ledger/internal/adapter/storage/redis"
	"wallet-ledger/internal/core/ports"
	"wallet-ledger/internal/service"
	"wallet-ledger/pkg/logger"

	"github.com/alicebob/miniredis/v2"
	goredis "github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// testApp builds a full application stack with in-memory repos and
// miniredis. This exercises the real HTTP layer, middleware, handlers,
// and services end-to-end; only PostgreSQL and the payment processor
// are replaced.

type testApp struct {
	server     *httptest.Server
	redis      *miniredis.Miniredis
	provider   *scriptedProvider
	outboxRepo *inMemoryOutboxRepo
	auditRepo  *inMemoryAuditRepo
}

func newTestApp(t *testing.T) *testApp {
	t.Helper()

	mr, err := miniredis.Run()
	require.NoError(t, err)

	rdb := goredis.NewClient(&goredis.Options{Addr: mr.Addr()})
	idempotencyCache := redisStorage.NewIdempotencyCache(rdb)

	// In-memory repos
	userRepo := newInMemoryUserRepo()
	walletRepo := newInMemoryWalletRepo()
	txRepo := newInMemoryTransactionRepo()
	idempotencyRepo := newInMemoryIdempotencyRepo()
	auditRepo := newInMemoryAuditRepo()
	outboxRepo := newInMemoryOutboxRepo()
	transactor := newInMemoryTransactor()
	provider := newScriptedProvider()

	// Business services
	log := logger.New("debug", false)
	auditSink := service.NewAuditSink(auditRepo, log)
	userSvc := service.NewUserService(userRepo, log)
	fundsSvc := service.NewFundsService(
		userRepo,
		walletRepo,
		txRepo,
		idempotencyRepo,
		idempotencyCache,
		outboxRepo,
		provider,
		auditSink,
		transactor,
		"USD",
		log,
	)

	router := httpHandler.SetupRouter(httpHandler.RouterDeps{
		FundsSvc:       fundsSvc,
		UserSvc:        userSvc,
		HealthCheckers: []ports.HealthChecker{redisStorage.NewHealthCheck(rdb)},
		Logger:         log,
	})

	server := httptest.NewServer(router)

	return &testApp{
		server:     server,
		redis:      mr,
		provider:   provider,
		outboxRepo: outboxRepo,
		auditRepo:  auditRepo,
	}
}

func (a *testApp) close() {
	a.server.Close()
	a.redis.Close()
}

// postJSON sends a POST with optional headers and decodes the response
// envelope into a map.
func (a *testApp) postJSON(t *testing.T, path string, body any, headers map[string]string) (int, map[string]any) {
	t.Helper()

	raw, err := json.Marshal(body)
	require.NoError(t, err)

	req, err := http.NewRequest(http.MethodPost, a.server.URL+path, bytes.NewReader(raw))
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")
	for k, v := range headers {
		req.Header.Set(k, v)
	}

	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	var decoded map[string]any
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&decoded))
	return resp.StatusCode, decoded
}

func (a *testApp) getJSON(t *testing.T, path string) (int, map[string]any) {
	t.Helper()

	resp, err := http.Get(a.server.URL + path)
	require.NoError(t, err)
	defer resp.Body.Close()

	var decoded map[string]any
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&decoded))
	return resp.StatusCode, decoded
}

func (a *testApp) createUser(t *testing.T, email string) string {
	t.Helper()

	status, body := a.postJSON(t, "/api/v1/users", map[string]string{"email": email}, nil)
	require.Equal(t, http.StatusCreated, status)
	data := body["data"].(map[string]any)
	return data["id"].(string)
}

func (a *testApp) deposit(t *testing.T, userID, amount string, headers map[string]string) (int, map[string]any) {
	t.Helper()
	return a.postJSON(t, "/api/v1/users/"+userID+"/wallet/deposit", map[string]string{"amount": amount}, headers)
}

func (a *testApp) withdraw(t *testing.T, userID, amount string, headers map[string]string) (int, map[string]any) {
	t.Helper()
	return a.postJSON(t, "/api/v1/users/"+userID+"/wallet/withdraw", map[string]string{"amount": amount}, headers)
}

func (a *testApp) walletBalance(t *testing.T, userID string) string {
	t.Helper()

	status, body := a.getJSON(t, "/api/v1/users/"+userID+"/wallet")
	require.Equal(t, http.StatusOK, status)
	data := body["data"].(map[string]any)
	return data["balance"].(string)
}

func (a *testApp) transactions(t *testing.T, userID string) []any {
	t.Helper()

	status, body := a.getJSON(t, "/api/v1/users/"+userID+"/wallet/transactions")
	require.Equal(t, http.StatusOK, status)
	data := body["data"].(map[string]any)
	txns, _ := data["transactions"].([]any)
	return txns
}

// --- Integration Tests ---

func TestIntegration_HealthCheck(t *testing.T) {
	app := newTestApp(t)
	defer app.close()

	status, body := app.getJSON(t, "/health")
	assert.Equal(t, http.StatusOK, status)
	assert.Equal(t, "healthy", body["status"])
}

func TestIntegration_DepositLifecycle(t *testing.T) {
	app := newTestApp(t)
	defer app.close()

	userID := app.createUser(t, "alice@example.com")

	// First wallet read creates the wallet lazily at zero.
	assert.Equal(t, "0.00", app.walletBalance(t, userID))

	status, body := app.deposit(t, userID, "50.00", nil)
	require.Equal(t, http.StatusCreated, status)
	data := body["data"].(map[string]any)
	assert.Equal(t, "SUCCEEDED", data["status"])
	wallet := data["wallet"].(map[string]any)
	assert.Equal(t, "50.00", wallet["balance"])

	status, _ = app.deposit(t, userID, "25.50", nil)
	require.Equal(t, http.StatusCreated, status)
	assert.Equal(t, "75.50", app.walletBalance(t, userID))

	txns := app.transactions(t, userID)
	assert.Len(t, txns, 2)
}

func TestIntegration_DepositForUnknownUser(t *testing.T) {
	app := newTestApp(t)
	defer app.close()

	status, body := app.deposit(t, "0b8e88ac-93a9-4a0d-8e9e-000000000000", "10.00", nil)
	assert.Equal(t, http.StatusNotFound, status)
	assert.Equal(t, "FUNDS_003", body["error_code"])
}

func TestIntegration_WithdrawFlow(t *testing.T) {
	app := newTestApp(t)
	defer app.close()

	userID := app.createUser(t, "bob@example.com")
	app.deposit(t, userID, "100.00", nil)

	status, body := app.withdraw(t, userID, "25.50", nil)
	require.Equal(t, http.StatusCreated, status)
	data := body["data"].(map[string]any)
	txn := data["transaction"].(map[string]any)
	assert.Equal(t, "WITHDRAWAL", txn["type"])
	assert.Equal(t, "74.50", app.walletBalance(t, userID))
}

func TestIntegration_WithdrawInsufficientFunds(t *testing.T) {
	app := newTestApp(t)
	defer app.close()

	userID := app.createUser(t, "carol@example.com")
	app.deposit(t, userID, "10.00", nil)
	callsBefore := app.provider.callCount()

	status, body := app.withdraw(t, userID, "20.00", nil)
	assert.Equal(t, http.StatusPaymentRequired, status)
	assert.Equal(t, "FUNDS_001", body["error_code"])

	// Rejected before the processor; no journal entry is written.
	assert.Equal(t, callsBefore, app.provider.callCount())
	assert.Len(t, app.transactions(t, userID), 1)
	assert.Equal(t, "10.00", app.walletBalance(t, userID))
}

func TestIntegration_IdempotentReplay(t *testing.T) {
	app := newTestApp(t)
	defer app.close()

	userID := app.createUser(t, "dave@example.com")
	headers := map[string]string{"Idempotency-Key": "replay-001"}

	status, first := app.deposit(t, userID, "40.00", headers)
	require.Equal(t, http.StatusCreated, status)

	status, second := app.deposit(t, userID, "40.00", headers)
	require.Equal(t, http.StatusCreated, status)

	firstTxn := first["data"].(map[string]any)["transaction"].(map[string]any)
	secondTxn := second["data"].(map[string]any)["transaction"].(map[string]any)
	assert.Equal(t, firstTxn["id"], secondTxn["id"])

	// Balance moved exactly once, and the processor was hit once.
	assert.Equal(t, "40.00", app.walletBalance(t, userID))
	assert.Equal(t, 1, app.provider.callCount())
	assert.Len(t, app.transactions(t, userID), 1)
}

func TestIntegration_IdempotentReplay_SurvivesCacheLoss(t *testing.T) {
	app := newTestApp(t)
	defer app.close()

	userID := app.createUser(t, "erin@example.com")
	headers := map[string]string{"Idempotency-Key": "replay-002"}

	status, first := app.deposit(t, userID, "15.00", headers)
	require.Equal(t, http.StatusCreated, status)

	// Wipe Redis; the durable record still dedups the retry.
	app.redis.FlushAll()

	status, second := app.deposit(t, userID, "15.00", headers)
	require.Equal(t, http.StatusCreated, status)

	firstTxn := first["data"].(map[string]any)["transaction"].(map[string]any)
	secondTxn := second["data"].(map[string]any)["transaction"].(map[string]any)
	assert.Equal(t, firstTxn["id"], secondTxn["id"])
	assert.Equal(t, "15.00", app.walletBalance(t, userID))
}

func TestIntegration_PendingOutcome_NoBalanceChange(t *testing.T) {
	app := newTestApp(t)
	defer app.close()

	userID := app.createUser(t, "frank@example.com")
	app.provider.setOutcome(ports.OutcomePending)

	status, body := app.deposit(t, userID, "30.00", nil)
	require.Equal(t, http.StatusCreated, status)
	data := body["data"].(map[string]any)
	assert.Equal(t, "PENDING", data["status"])

	// The attempt is journaled but the balance is untouched.
	assert.Equal(t, "0.00", app.walletBalance(t, userID))
	assert.Len(t, app.transactions(t, userID), 1)
}

func TestIntegration_FailedOutcome_RowWithoutBalanceChange(t *testing.T) {
	app := newTestApp(t)
	defer app.close()

	userID := app.createUser(t, "grace@example.com")
	app.provider.setOutcome(ports.OutcomeFailed)

	status, body := app.deposit(t, userID, "60.00", nil)
	require.Equal(t, http.StatusCreated, status)
	data := body["data"].(map[string]any)
	assert.Equal(t, "FAILED", data["status"])

	assert.Equal(t, "0.00", app.walletBalance(t, userID))
	assert.Len(t, app.transactions(t, userID), 1)
}

func TestIntegration_ProviderTransportError(t *testing.T) {
	app := newTestApp(t)
	defer app.close()

	userID := app.createUser(t, "heidi@example.com")
	app.provider.setError(fmt.Errorf("connection reset"))

	status, body := app.deposit(t, userID, "20.00", nil)
	assert.Equal(t, http.StatusBadGateway, status)
	assert.Equal(t, "FUNDS_004", body["error_code"])

	// Transport failures leave no trace in the journal.
	assert.Len(t, app.transactions(t, userID), 0)
	assert.Equal(t, "0.00", app.walletBalance(t, userID))
}

func TestIntegration_OutboxResolvedOnCommit(t *testing.T) {
	app := newTestApp(t)
	defer app.close()

	userID := app.createUser(t, "ivan@example.com")
	status, _ := app.deposit(t, userID, "10.00", nil)
	require.Equal(t, http.StatusCreated, status)

	// The succeeded movement recorded an outbox entry and resolved it
	// with the ledger commit, so nothing is left for the reconciler.
	assert.Equal(t, 0, app.outboxRepo.unresolvedCount())
	assert.Len(t, app.outboxRepo.entries, 1)
}

func TestIntegration_AuditFailureDoesNotBlockMovement(t *testing.T) {
	app := newTestApp(t)
	defer app.close()

	userID := app.createUser(t, "judy@example.com")
	app.auditRepo.setFailing(true)

	status, _ := app.deposit(t, userID, "10.00", nil)
	require.Equal(t, http.StatusCreated, status)
	assert.Equal(t, "10.00", app.walletBalance(t, userID))
	assert.Equal(t, 0, app.auditRepo.count())
}

// TestIntegration_BalanceReconstruction drives a mixed sequence of
// movements and checks that the final balance equals the sum of signed
// succeeded amounts in the journal.
func TestIntegration_BalanceReconstruction(t *testing.T) {
	app := newTestApp(t)
	defer app.close()

	userID := app.createUser(t, "mallory@example.com")

	app.deposit(t, userID, "100.00", nil)
	app.deposit(t, userID, "40.25", nil)
	app.withdraw(t, userID, "30.00", nil)

	app.provider.setOutcome(ports.OutcomePending)
	app.deposit(t, userID, "999.00", nil)

	app.provider.setOutcome(ports.OutcomeFailed)
	app.withdraw(t, userID, "5.00", nil)

	app.provider.setOutcome(ports.OutcomeSucceeded)
	app.withdraw(t, userID, "10.25", nil)

	txns := app.transactions(t, userID)
	require.Len(t, txns, 6)

	expected := decimal.Zero
	for _, raw := range txns {
		txn := raw.(map[string]any)
		if txn["status"] != "SUCCEEDED" {
			continue
		}
		amount, err := decimal.NewFromString(txn["amount"].(string))
		require.NoError(t, err)
		if txn["type"] == "WITHDRAWAL" {
			expected = expected.Sub(amount)
		} else {
			expected = expected.Add(amount)
		}
	}

	assert.Equal(t, expected.StringFixed(2), app.walletBalance(t, userID))
	assert.Equal(t, "100.00", app.walletBalance(t, userID))
}

func TestIntegration_MalformedAmountRejected(t *testing.T) {
	app := newTestApp(t)
	defer app.close()

	userID := app.createUser(t, "oscar@example.com")

	for _, amount := range []string{"-5.00", "12.345", "abc", ""} {
		status, body := app.deposit(t, userID, amount, nil)
		assert.Equal(t, http.StatusBadRequest, status, "amount %q", amount)
		assert.Equal(t, "FUNDS_002", body["error_code"], "amount %q", amount)
	}
	assert.Equal(t, 0, app.provider.callCount())
}
