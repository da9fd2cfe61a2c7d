package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"wallet-ledger/internal/core/domain"
	"wallet-ledger/internal/core/ports"
	"wallet-ledger/pkg/apperror"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
)

const idempotencyTTL = 24 * time.Hour

// FundsServiceImpl implements ports.FundsService. Deposit and
// Withdraw run the same five-step protocol: resolve the wallet,
// normalize the request, call the provider outside any transaction,
// map the provider's verdict, then commit the ledger writes as one
// atomic unit.
type FundsServiceImpl struct {
	userRepo        ports.UserRepository
	walletRepo      ports.WalletRepository
	txRepo          ports.TransactionRepository
	idempRepo       ports.IdempotencyRepository
	idempCache      ports.IdempotencyCache
	outboxRepo      ports.OutboxRepository
	provider        ports.PaymentProvider
	audit           ports.AuditSink
	transactor      ports.DBTransactor
	defaultCurrency string
	log             zerolog.Logger
}

// NewFundsService creates a new FundsServiceImpl.
func NewFundsService(
	userRepo ports.UserRepository,
	walletRepo ports.WalletRepository,
	txRepo ports.TransactionRepository,
	idempRepo ports.IdempotencyRepository,
	idempCache ports.IdempotencyCache,
	outboxRepo ports.OutboxRepository,
	provider ports.PaymentProvider,
	audit ports.AuditSink,
	transactor ports.DBTransactor,
	defaultCurrency string,
	log zerolog.Logger,
) *FundsServiceImpl {
	if defaultCurrency == "" {
		defaultCurrency = domain.DefaultCurrency
	}
	return &FundsServiceImpl{
		userRepo:        userRepo,
		walletRepo:      walletRepo,
		txRepo:          txRepo,
		idempRepo:       idempRepo,
		idempCache:      idempCache,
		outboxRepo:      outboxRepo,
		provider:        provider,
		audit:           audit,
		transactor:      transactor,
		defaultCurrency: defaultCurrency,
		log:             log,
	}
}

// Deposit moves external funds into the user's wallet.
func (s *FundsServiceImpl) Deposit(ctx context.Context, req ports.FundsRequest) (*ports.FundsResult, error) {
	return s.execute(ctx, req, domain.TransactionTypeDeposit)
}

// Withdraw moves wallet funds out to the external destination.
func (s *FundsServiceImpl) Withdraw(ctx context.Context, req ports.FundsRequest) (*ports.FundsResult, error) {
	return s.execute(ctx, req, domain.TransactionTypeWithdrawal)
}

func (s *FundsServiceImpl) execute(ctx context.Context, req ports.FundsRequest, op domain.TransactionType) (*ports.FundsResult, error) {
	// Step 1: resolve wallet. The user must exist; the wallet is
	// created lazily on first use.
	wallet, err := s.resolveWallet(ctx, req.UserID)
	if err != nil {
		return nil, err
	}

	// Step 2: normalize.
	currency := strings.ToUpper(strings.TrimSpace(req.Currency))
	if currency == "" {
		currency = s.defaultCurrency
	}

	amount, err := decimal.NewFromString(strings.TrimSpace(req.Amount))
	if err != nil || !amount.IsPositive() {
		return nil, apperror.ErrInvalidAmount()
	}

	// Idempotency: the dedup check happens before the provider call so
	// a retried request never charges twice.
	idempKey := ""
	if req.IdempotencyKey != nil && *req.IdempotencyKey != "" {
		idempKey = domain.BuildIdempotencyKey(wallet.ID, opName(op), *req.IdempotencyKey)

		if result, ok := s.lookupIdempotent(ctx, idempKey); ok {
			return result, nil
		}
	}

	// Pre-flight balance check for withdrawals. The store does not
	// enforce non-negative balances; this check is the only gate, and
	// it runs before any provider money moves.
	if op == domain.TransactionTypeWithdrawal && !wallet.CanWithdraw(amount) {
		return nil, apperror.ErrInsufficientFunds()
	}

	// Step 3: provider call, outside any database transaction. A
	// transport error means no ledger record at all.
	resp, err := s.callProvider(ctx, req, wallet, op, amount, currency)
	if err != nil {
		return nil, apperror.ErrProviderFailure(err)
	}

	// Step 4: map the provider's verdict.
	status := MapOutcome(resp.Status)

	// A succeeded provider effect gets an outbox entry before the
	// ledger commit. If the commit fails, the entry stays unresolved
	// and the reconciliation sweep surfaces it.
	var outboxID *uuid.UUID
	if status == domain.TransactionStatusSucceeded {
		entry := &domain.OutboxEntry{
			ID:                uuid.New(),
			WalletID:          wallet.ID,
			Operation:         op,
			ExternalReference: resp.ID,
			Processor:         resp.Processor,
			Amount:            amount,
			Currency:          currency,
			CreatedAt:         time.Now().UTC(),
		}
		if err := s.outboxRepo.Create(ctx, entry); err != nil {
			return nil, apperror.ErrPersistence(fmt.Errorf("record outbox entry: %w", err))
		}
		outboxID = &entry.ID
	}

	// Step 5: atomic commit.
	result, err := s.commit(ctx, req, wallet, op, amount, currency, resp, status, idempKey, outboxID)
	if err != nil {
		return nil, err
	}

	s.log.Info().
		Str("tx_id", result.Transaction.ID.String()).
		Str("wallet_id", wallet.ID.String()).
		Str("operation", opName(op)).
		Str("amount", amount.StringFixed(2)).
		Str("currency", currency).
		Str("status", string(status)).
		Msg("funds operation recorded")

	return result, nil
}

// commit writes the journal row, the balance mutation, the outbox
// resolution and the idempotency record as one transaction.
func (s *FundsServiceImpl) commit(
	ctx context.Context,
	req ports.FundsRequest,
	wallet *domain.Wallet,
	op domain.TransactionType,
	amount decimal.Decimal,
	currency string,
	resp *ports.ProviderResponse,
	status domain.TransactionStatus,
	idempKey string,
	outboxID *uuid.UUID,
) (*ports.FundsResult, error) {
	dbTx, err := s.transactor.Begin(ctx)
	if err != nil {
		return nil, apperror.ErrPersistence(fmt.Errorf("begin tx: %w", err))
	}
	defer dbTx.Rollback(ctx) //nolint:errcheck

	now := time.Now().UTC()

	var metadata json.RawMessage
	if len(req.Metadata) > 0 {
		metadata, err = json.Marshal(req.Metadata)
		if err != nil {
			return nil, apperror.InternalError(fmt.Errorf("marshal metadata: %w", err))
		}
	}

	txn := &domain.Transaction{
		ID:                uuid.New(),
		WalletID:          wallet.ID,
		Type:              op,
		Status:            status,
		Amount:            amount,
		Currency:          currency,
		ExternalReference: &resp.ID,
		Processor:         &resp.Processor,
		ProcessorPayload:  resp.Raw,
		Metadata:          metadata,
		OccurredAt:        now,
		CreatedAt:         now,
		UpdatedAt:         now,
	}
	if idempKey != "" {
		txn.IdempotencyKey = &idempKey
	}

	if err := s.txRepo.Create(ctx, dbTx, txn); err != nil {
		return nil, apperror.ErrPersistence(fmt.Errorf("create transaction: %w", err))
	}

	// Only a SUCCEEDED verdict moves the balance. PENDING and FAILED
	// leave the wallet untouched; the row alone records the attempt.
	if txn.MovesBalance() {
		switch op {
		case domain.TransactionTypeDeposit:
			wallet, err = s.walletRepo.IncrementBalance(ctx, dbTx, wallet.ID, amount)
		case domain.TransactionTypeWithdrawal:
			wallet, err = s.walletRepo.DecrementBalance(ctx, dbTx, wallet.ID, amount)
		}
		if err != nil {
			return nil, apperror.ErrPersistence(fmt.Errorf("apply balance delta: %w", err))
		}
	}

	if outboxID != nil {
		if err := s.outboxRepo.MarkResolved(ctx, dbTx, *outboxID); err != nil {
			return nil, apperror.ErrPersistence(fmt.Errorf("resolve outbox entry: %w", err))
		}
	}

	result := &ports.FundsResult{
		Wallet:      wallet,
		Transaction: txn,
		Status:      status,
	}

	var respJSON []byte
	if idempKey != "" {
		respJSON, err = json.Marshal(result)
		if err != nil {
			return nil, apperror.InternalError(fmt.Errorf("marshal result: %w", err))
		}
		record := &domain.IdempotencyRecord{
			Key:           idempKey,
			TransactionID: txn.ID,
			ResponseJSON:  respJSON,
			CreatedAt:     now,
		}
		if err := s.idempRepo.Create(ctx, dbTx, record); err != nil {
			return nil, apperror.ErrPersistence(fmt.Errorf("save idempotency record: %w", err))
		}
	}

	s.audit.Record(ctx, dbTx, s.auditEntry(req.UserID, wallet.ID, txn))

	if err := dbTx.Commit(ctx); err != nil {
		return nil, apperror.ErrPersistence(fmt.Errorf("commit tx: %w", err))
	}

	// Post-commit: cache the response for fast replay (best-effort).
	if idempKey != "" && respJSON != nil {
		if err := s.idempCache.Set(ctx, idempKey, respJSON, idempotencyTTL); err != nil {
			s.log.Warn().Err(err).Str("key", idempKey).Msg("failed to cache idempotency record in redis")
		}
	}

	return result, nil
}

// lookupIdempotent runs the two-layer dedup check: Redis first, the
// durable record second. Cache errors fall through to the database.
func (s *FundsServiceImpl) lookupIdempotent(ctx context.Context, key string) (*ports.FundsResult, bool) {
	cached, err := s.idempCache.Get(ctx, key)
	if err != nil {
		s.log.Warn().Err(err).Str("key", key).Msg("redis idempotency check failed, falling through to DB")
	}
	if cached != nil {
		if result, err := unmarshalCachedResult(cached); err == nil {
			return result, true
		}
	}

	record, err := s.idempRepo.Get(ctx, key)
	if err != nil {
		s.log.Warn().Err(err).Str("key", key).Msg("db idempotency check failed")
		return nil, false
	}
	if record != nil {
		if result, err := unmarshalCachedResult(record.ResponseJSON); err == nil {
			return result, true
		}
	}
	return nil, false
}

// resolveWallet loads the user's wallet, creating it on first access.
// A lost creation race is absorbed by re-reading the winner's row.
func (s *FundsServiceImpl) resolveWallet(ctx context.Context, userID uuid.UUID) (*domain.Wallet, error) {
	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		return nil, apperror.InternalError(fmt.Errorf("get user: %w", err))
	}
	if user == nil {
		return nil, apperror.ErrNotFound("user")
	}

	wallet, err := s.walletRepo.GetByUserID(ctx, userID)
	if err != nil {
		return nil, apperror.InternalError(fmt.Errorf("get wallet: %w", err))
	}
	if wallet != nil {
		return wallet, nil
	}

	wallet, err = s.walletRepo.CreateForUser(ctx, userID, s.defaultCurrency)
	if err != nil {
		if errors.Is(err, ports.ErrDuplicateWallet) {
			wallet, err = s.walletRepo.GetByUserID(ctx, userID)
			if err != nil || wallet == nil {
				return nil, apperror.InternalError(fmt.Errorf("re-read wallet after lost race: %w", err))
			}
			return wallet, nil
		}
		return nil, apperror.InternalError(fmt.Errorf("create wallet: %w", err))
	}

	s.log.Info().
		Str("wallet_id", wallet.ID.String()).
		Str("user_id", userID.String()).
		Msg("wallet created on first access")

	return wallet, nil
}

// GetWallet returns the user's wallet, creating it on first access.
func (s *FundsServiceImpl) GetWallet(ctx context.Context, userID uuid.UUID) (*domain.Wallet, error) {
	return s.resolveWallet(ctx, userID)
}

// ListTransactions returns the wallet with its journal snapshot,
// newest first.
func (s *FundsServiceImpl) ListTransactions(ctx context.Context, userID uuid.UUID) (*ports.WalletStatement, error) {
	wallet, err := s.resolveWallet(ctx, userID)
	if err != nil {
		return nil, err
	}

	txns, err := s.txRepo.ListByWallet(ctx, wallet.ID)
	if err != nil {
		return nil, apperror.InternalError(fmt.Errorf("list transactions: %w", err))
	}

	return &ports.WalletStatement{Wallet: wallet, Transactions: txns}, nil
}

func (s *FundsServiceImpl) callProvider(
	ctx context.Context,
	req ports.FundsRequest,
	wallet *domain.Wallet,
	op domain.TransactionType,
	amount decimal.Decimal,
	currency string,
) (*ports.ProviderResponse, error) {
	if op == domain.TransactionTypeDeposit {
		return s.provider.CreateDeposit(ctx, ports.ChargeRequest{
			UserID:   req.UserID,
			WalletID: wallet.ID,
			Amount:   amount,
			Currency: currency,
			Metadata: req.Metadata,
		})
	}
	return s.provider.CreateWithdrawal(ctx, ports.PayoutRequest{
		UserID:   req.UserID,
		WalletID: wallet.ID,
		Amount:   amount,
		Currency: currency,
		Metadata: req.Metadata,
	})
}

func (s *FundsServiceImpl) auditEntry(userID, walletID uuid.UUID, txn *domain.Transaction) *domain.AuditLogEntry {
	action := domain.AuditActionDeposit
	if txn.Type == domain.TransactionTypeWithdrawal {
		action = domain.AuditActionWithdraw
	}

	auditCtx, _ := json.Marshal(map[string]string{
		"amount":   txn.Amount.StringFixed(2),
		"currency": txn.Currency,
		"status":   string(txn.Status),
	})

	return &domain.AuditLogEntry{
		ID:         uuid.New(),
		UserID:     &userID,
		WalletID:   &walletID,
		Action:     action,
		EntityType: "transaction",
		EntityID:   txn.ID.String(),
		Context:    auditCtx,
		CreatedAt:  time.Now().UTC(),
	}
}

func opName(op domain.TransactionType) string {
	if op == domain.TransactionTypeWithdrawal {
		return "withdraw"
	}
	return "deposit"
}

func unmarshalCachedResult(data []byte) (*ports.FundsResult, error) {
	result := &ports.FundsResult{}
	if err := json.Unmarshal(data, result); err != nil {
		return nil, fmt.Errorf("unmarshal cached result: %w", err)
	}
	return result, nil
}
