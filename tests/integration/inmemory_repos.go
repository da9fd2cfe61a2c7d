package integration

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"wallet-ledger/internal/core/domain"
	"wallet-ledger/internal/core/ports"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/shopspring/decimal"
)

// --- In-Memory User Repo ---

type inMemoryUserRepo struct {
	mu    sync.RWMutex
	users map[uuid.UUID]*domain.User
}

func newInMemoryUserRepo() *inMemoryUserRepo {
	return &inMemoryUserRepo{users: make(map[uuid.UUID]*domain.User)}
}

func (r *inMemoryUserRepo) Create(ctx context.Context, u *domain.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, existing := range r.users {
		if existing.Email == u.Email {
			return fmt.Errorf("email already exists")
		}
	}
	cp := *u
	r.users[u.ID] = &cp
	return nil
}

func (r *inMemoryUserRepo) GetByID(ctx context.Context, id uuid.UUID) (*domain.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	u, ok := r.users[id]
	if !ok {
		return nil, nil
	}
	cp := *u
	return &cp, nil
}

func (r *inMemoryUserRepo) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, u := range r.users {
		if u.Email == email {
			cp := *u
			return &cp, nil
		}
	}
	return nil, nil
}

// --- In-Memory Wallet Repo ---

type inMemoryWalletRepo struct {
	mu      sync.RWMutex
	wallets map[uuid.UUID]*domain.Wallet
}

func newInMemoryWalletRepo() *inMemoryWalletRepo {
	return &inMemoryWalletRepo{wallets: make(map[uuid.UUID]*domain.Wallet)}
}

func (r *inMemoryWalletRepo) CreateForUser(ctx context.Context, userID uuid.UUID, currency string) (*domain.Wallet, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, w := range r.wallets {
		if w.UserID == userID {
			return nil, ports.ErrDuplicateWallet
		}
	}
	now := time.Now().UTC()
	w := &domain.Wallet{
		ID:        uuid.New(),
		UserID:    userID,
		Balance:   decimal.Zero,
		Currency:  currency,
		Version:   0,
		CreatedAt: now,
		UpdatedAt: now,
	}
	r.wallets[w.ID] = w
	cp := *w
	return &cp, nil
}

func (r *inMemoryWalletRepo) GetByID(ctx context.Context, id uuid.UUID) (*domain.Wallet, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	w, ok := r.wallets[id]
	if !ok {
		return nil, nil
	}
	cp := *w
	return &cp, nil
}

func (r *inMemoryWalletRepo) GetByUserID(ctx context.Context, userID uuid.UUID) (*domain.Wallet, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, w := range r.wallets {
		if w.UserID == userID {
			cp := *w
			return &cp, nil
		}
	}
	return nil, nil
}

func (r *inMemoryWalletRepo) IncrementBalance(ctx context.Context, tx pgx.Tx, walletID uuid.UUID, amount decimal.Decimal) (*domain.Wallet, error) {
	return r.applyDelta(walletID, amount)
}

func (r *inMemoryWalletRepo) DecrementBalance(ctx context.Context, tx pgx.Tx, walletID uuid.UUID, amount decimal.Decimal) (*domain.Wallet, error) {
	return r.applyDelta(walletID, amount.Neg())
}

func (r *inMemoryWalletRepo) applyDelta(walletID uuid.UUID, delta decimal.Decimal) (*domain.Wallet, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	w, ok := r.wallets[walletID]
	if !ok {
		return nil, fmt.Errorf("wallet not found")
	}
	w.Balance = w.Balance.Add(delta)
	w.Version++
	w.UpdatedAt = time.Now().UTC()
	cp := *w
	return &cp, nil
}

// --- In-Memory Transaction Repo ---

type inMemoryTransactionRepo struct {
	mu   sync.RWMutex
	txns map[uuid.UUID]*domain.Transaction
}

func newInMemoryTransactionRepo() *inMemoryTransactionRepo {
	return &inMemoryTransactionRepo{txns: make(map[uuid.UUID]*domain.Transaction)}
}

func (r *inMemoryTransactionRepo) Create(ctx context.Context, tx pgx.Tx, t *domain.Transaction) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	cp := *t
	r.txns[t.ID] = &cp
	return nil
}

func (r *inMemoryTransactionRepo) GetByID(ctx context.Context, id uuid.UUID) (*domain.Transaction, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	t, ok := r.txns[id]
	if !ok {
		return nil, nil
	}
	cp := *t
	return &cp, nil
}

func (r *inMemoryTransactionRepo) GetByIdempotencyKey(ctx context.Context, walletID uuid.UUID, key string) (*domain.Transaction, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, t := range r.txns {
		if t.WalletID == walletID && t.IdempotencyKey != nil && *t.IdempotencyKey == key {
			cp := *t
			return &cp, nil
		}
	}
	return nil, nil
}

func (r *inMemoryTransactionRepo) UpdateStatus(ctx context.Context, tx pgx.Tx, id uuid.UUID, status domain.TransactionStatus) (*domain.Transaction, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	t, ok := r.txns[id]
	if !ok {
		return nil, fmt.Errorf("transaction not found")
	}
	t.Status = status
	t.UpdatedAt = time.Now().UTC()
	cp := *t
	return &cp, nil
}

func (r *inMemoryTransactionRepo) ListByWallet(ctx context.Context, walletID uuid.UUID) ([]domain.Transaction, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var result []domain.Transaction
	for _, t := range r.txns {
		if t.WalletID == walletID {
			result = append(result, *t)
		}
	}
	sort.Slice(result, func(i, j int) bool {
		return result[i].OccurredAt.After(result[j].OccurredAt)
	})
	return result, nil
}

// --- In-Memory Audit Repo ---

type inMemoryAuditRepo struct {
	mu      sync.RWMutex
	entries []domain.AuditLogEntry
	failing bool
}

func newInMemoryAuditRepo() *inMemoryAuditRepo {
	return &inMemoryAuditRepo{}
}

func (r *inMemoryAuditRepo) Create(ctx context.Context, tx pgx.Tx, e *domain.AuditLogEntry) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.failing {
		return fmt.Errorf("audit store unavailable")
	}
	r.entries = append(r.entries, *e)
	return nil
}

func (r *inMemoryAuditRepo) count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.entries)
}

func (r *inMemoryAuditRepo) setFailing(failing bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.failing = failing
}

// --- In-Memory Idempotency Repo ---

type inMemoryIdempotencyRepo struct {
	mu      sync.RWMutex
	records map[string]*domain.IdempotencyRecord
}

func newInMemoryIdempotencyRepo() *inMemoryIdempotencyRepo {
	return &inMemoryIdempotencyRepo{records: make(map[string]*domain.IdempotencyRecord)}
}

func (r *inMemoryIdempotencyRepo) Create(ctx context.Context, tx pgx.Tx, rec *domain.IdempotencyRecord) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.records[rec.Key]; exists {
		return fmt.Errorf("duplicate idempotency key")
	}
	cp := *rec
	r.records[rec.Key] = &cp
	return nil
}

func (r *inMemoryIdempotencyRepo) Get(ctx context.Context, key string) (*domain.IdempotencyRecord, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	rec, ok := r.records[key]
	if !ok {
		return nil, nil
	}
	cp := *rec
	return &cp, nil
}

// --- In-Memory Outbox Repo ---

type inMemoryOutboxRepo struct {
	mu      sync.RWMutex
	entries map[uuid.UUID]*domain.OutboxEntry
}

func newInMemoryOutboxRepo() *inMemoryOutboxRepo {
	return &inMemoryOutboxRepo{entries: make(map[uuid.UUID]*domain.OutboxEntry)}
}

func (r *inMemoryOutboxRepo) Create(ctx context.Context, e *domain.OutboxEntry) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	cp := *e
	r.entries[e.ID] = &cp
	return nil
}

func (r *inMemoryOutboxRepo) MarkResolved(ctx context.Context, tx pgx.Tx, id uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	e, ok := r.entries[id]
	if !ok {
		return fmt.Errorf("outbox entry not found: %s", id)
	}
	now := time.Now().UTC()
	e.Resolved = true
	e.ResolvedAt = &now
	return nil
}

func (r *inMemoryOutboxRepo) ListUnresolved(ctx context.Context, olderThan time.Time, limit int) ([]domain.OutboxEntry, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var result []domain.OutboxEntry
	for _, e := range r.entries {
		if !e.Resolved && e.CreatedAt.Before(olderThan) {
			result = append(result, *e)
		}
	}
	sort.Slice(result, func(i, j int) bool {
		return result[i].CreatedAt.Before(result[j].CreatedAt)
	})
	if len(result) > limit {
		result = result[:limit]
	}
	return result, nil
}

func (r *inMemoryOutboxRepo) unresolvedCount() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	n := 0
	for _, e := range r.entries {
		if !e.Resolved {
			n++
		}
	}
	return n
}

// --- In-Memory Transactor (no-op tx) ---

type inMemoryTransactor struct{}

func newInMemoryTransactor() *inMemoryTransactor {
	return &inMemoryTransactor{}
}

func (t *inMemoryTransactor) Begin(ctx context.Context) (pgx.Tx, error) {
	return &noopTx{}, nil
}

// noopTx is a no-op pgx.Tx implementation for in-memory testing.
type noopTx struct{}

func (t *noopTx) Begin(ctx context.Context) (pgx.Tx, error) { return t, nil }
func (t *noopTx) Commit(ctx context.Context) error          { return nil }
func (t *noopTx) Rollback(ctx context.Context) error        { return nil }
func (t *noopTx) CopyFrom(ctx context.Context, tableName pgx.Identifier, columnNames []string, rowSrc pgx.CopyFromSource) (int64, error) {
	return 0, nil
}
func (t *noopTx) SendBatch(ctx context.Context, b *pgx.Batch) pgx.BatchResults { return nil }
func (t *noopTx) LargeObjects() pgx.LargeObjects                               { return pgx.LargeObjects{} }
func (t *noopTx) Prepare(ctx context.Context, name, sql string) (*pgconn.StatementDescription, error) {
	return nil, nil
}
func (t *noopTx) Exec(ctx context.Context, sql string, arguments ...any) (pgconn.CommandTag, error) {
	return pgconn.NewCommandTag(""), nil
}
func (t *noopTx) Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error) {
	return nil, nil
}
func (t *noopTx) QueryRow(ctx context.Context, sql string, args ...any) pgx.Row {
	return nil
}
func (t *noopTx) Conn() *pgx.Conn { return nil }

// --- Scripted Payment Provider ---

// scriptedProvider returns a fixed outcome and counts calls, standing
// in for the external processor.
type scriptedProvider struct {
	mu      sync.Mutex
	outcome ports.Outcome
	err     error
	calls   int
}

func newScriptedProvider() *scriptedProvider {
	return &scriptedProvider{outcome: ports.OutcomeSucceeded}
}

func (p *scriptedProvider) setOutcome(o ports.Outcome) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.outcome = o
}

func (p *scriptedProvider) setError(err error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.err = err
}

func (p *scriptedProvider) callCount() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.calls
}

func (p *scriptedProvider) CreateDeposit(ctx context.Context, req ports.ChargeRequest) (*ports.ProviderResponse, error) {
	return p.respond("deposit_", req.Amount, req.Currency)
}

func (p *scriptedProvider) CreateWithdrawal(ctx context.Context, req ports.PayoutRequest) (*ports.ProviderResponse, error) {
	return p.respond("withdrawal_", req.Amount, req.Currency)
}

func (p *scriptedProvider) respond(prefix string, amount decimal.Decimal, currency string) (*ports.ProviderResponse, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.calls++
	if p.err != nil {
		return nil, p.err
	}
	return &ports.ProviderResponse{
		ID:        prefix + uuid.NewString(),
		Status:    p.outcome,
		Amount:    amount,
		Currency:  currency,
		Processor: "scripted",
		Raw:       []byte(`{"scripted":true}`),
	}, nil
}
