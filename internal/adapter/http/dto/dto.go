package dto

import (
	"encoding/json"
	"time"

	"wallet-ledger/internal/core/domain"
	"wallet-ledger/internal/core/ports"
)

// CreateUserRequest is the request body for user registration.
type CreateUserRequest struct {
	Email     string  `json:"email" binding:"required,email,max=254"`
	FirstName *string `json:"first_name,omitempty" binding:"omitempty,max=100"`
	LastName  *string `json:"last_name,omitempty" binding:"omitempty,max=100"`
}

// FundsRequest is the request body for deposits and withdrawals.
// Amount is textual so the wire format never loses decimal precision.
type FundsRequest struct {
	Amount         string            `json:"amount" binding:"required,money"`
	Currency       string            `json:"currency,omitempty" binding:"omitempty,len=3"`
	Metadata       map[string]string `json:"metadata,omitempty"`
	IdempotencyKey *string           `json:"idempotency_key,omitempty" binding:"omitempty,max=100,safe_id"`
}

// UserResponse is the response body for user queries.
type UserResponse struct {
	ID        string  `json:"id"`
	Email     string  `json:"email"`
	FirstName *string `json:"first_name,omitempty"`
	LastName  *string `json:"last_name,omitempty"`
	CreatedAt string  `json:"created_at"`
}

// WalletResponse is the response body for wallet queries. Balance is
// rendered with two decimal places.
type WalletResponse struct {
	ID        string `json:"id"`
	UserID    string `json:"user_id"`
	Balance   string `json:"balance"`
	Currency  string `json:"currency"`
	Version   int64  `json:"version"`
	UpdatedAt string `json:"updated_at"`
}

// TransactionResponse is the response body for a single journal entry.
type TransactionResponse struct {
	ID                string          `json:"id"`
	WalletID          string          `json:"wallet_id"`
	Type              string          `json:"type"`
	Status            string          `json:"status"`
	Amount            string          `json:"amount"`
	Currency          string          `json:"currency"`
	ExternalReference *string         `json:"external_reference,omitempty"`
	Processor         *string         `json:"processor,omitempty"`
	Metadata          json.RawMessage `json:"metadata,omitempty"`
	OccurredAt        string          `json:"occurred_at"`
}

// FundsResponse is the response body for deposit and withdrawal calls.
type FundsResponse struct {
	Transaction TransactionResponse `json:"transaction"`
	Wallet      WalletResponse      `json:"wallet"`
	Status      string              `json:"status"`
}

// StatementResponse pairs the wallet with its journal snapshot.
type StatementResponse struct {
	Wallet       WalletResponse        `json:"wallet"`
	Transactions []TransactionResponse `json:"transactions"`
}

// NewUserResponse maps a domain user onto the wire format.
func NewUserResponse(u *domain.User) UserResponse {
	return UserResponse{
		ID:        u.ID.String(),
		Email:     u.Email,
		FirstName: u.FirstName,
		LastName:  u.LastName,
		CreatedAt: u.CreatedAt.Format(time.RFC3339),
	}
}

// NewWalletResponse maps a domain wallet onto the wire format.
func NewWalletResponse(w *domain.Wallet) WalletResponse {
	return WalletResponse{
		ID:        w.ID.String(),
		UserID:    w.UserID.String(),
		Balance:   w.Balance.StringFixed(2),
		Currency:  w.Currency,
		Version:   w.Version,
		UpdatedAt: w.UpdatedAt.Format(time.RFC3339),
	}
}

// NewTransactionResponse maps a journal entry onto the wire format.
// The raw processor payload stays internal.
func NewTransactionResponse(t *domain.Transaction) TransactionResponse {
	return TransactionResponse{
		ID:                t.ID.String(),
		WalletID:          t.WalletID.String(),
		Type:              string(t.Type),
		Status:            string(t.Status),
		Amount:            t.Amount.StringFixed(2),
		Currency:          t.Currency,
		ExternalReference: t.ExternalReference,
		Processor:         t.Processor,
		Metadata:          t.Metadata,
		OccurredAt:        t.OccurredAt.Format(time.RFC3339),
	}
}

// NewFundsResponse maps a funds operation result onto the wire format.
func NewFundsResponse(r *ports.FundsResult) FundsResponse {
	return FundsResponse{
		Transaction: NewTransactionResponse(r.Transaction),
		Wallet:      NewWalletResponse(r.Wallet),
		Status:      string(r.Status),
	}
}

// NewStatementResponse maps a wallet statement onto the wire format.
func NewStatementResponse(s *ports.WalletStatement) StatementResponse {
	txns := make([]TransactionResponse, 0, len(s.Transactions))
	for i := range s.Transactions {
		txns = append(txns, NewTransactionResponse(&s.Transactions[i]))
	}
	return StatementResponse{
		Wallet:       NewWalletResponse(s.Wallet),
		Transactions: txns,
	}
}
