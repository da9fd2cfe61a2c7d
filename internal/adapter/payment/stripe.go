package payment

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"wallet-ledger/config"
	"wallet-ledger/internal/core/ports"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/stripe/stripe-go/v72"
	"github.com/stripe/stripe-go/v72/client"
)

const processorName = "stripe"

// StripeProvider implements ports.PaymentProvider against the Stripe
// API. Without a usable secret key it runs in mock mode and confirms
// every operation locally, which keeps development environments free
// of external calls.
type StripeProvider struct {
	api  *client.API
	mock bool
	log  zerolog.Logger
}

// NewStripeProvider creates the provider. Mock mode engages when the
// secret key is empty or still a placeholder.
func NewStripeProvider(cfg config.StripeConfig, log zerolog.Logger) *StripeProvider {
	key := strings.TrimSpace(cfg.SecretKey)
	if key == "" || strings.Contains(key, "placeholder") {
		log.Warn().Msg("Stripe secret key not configured, payment provider running in mock mode")
		return &StripeProvider{mock: true, log: log}
	}

	api := &client.API{}
	api.Init(key, nil)
	return &StripeProvider{api: api, log: log}
}

// CreateDeposit charges the external source backing the wallet.
func (p *StripeProvider) CreateDeposit(ctx context.Context, req ports.ChargeRequest) (*ports.ProviderResponse, error) {
	if p.mock {
		return p.mockResponse("deposit_", req.Amount, req.Currency), nil
	}

	params := &stripe.PaymentIntentParams{
		Params:             stripe.Params{Context: ctx},
		Amount:             stripe.Int64(minorUnits(req.Amount)),
		Currency:           stripe.String(strings.ToLower(req.Currency)),
		PaymentMethodTypes: stripe.StringSlice([]string{"card"}),
	}
	for k, v := range req.Metadata {
		params.AddMetadata(k, v)
	}
	params.AddMetadata("wallet_id", req.WalletID.String())
	params.AddMetadata("user_id", req.UserID.String())

	intent, err := p.api.PaymentIntents.New(params)
	if err != nil {
		return nil, fmt.Errorf("stripe payment intent: %w", err)
	}

	raw, _ := json.Marshal(intent)
	return &ports.ProviderResponse{
		ID:        intent.ID,
		Status:    mapIntentStatus(string(intent.Status)),
		Amount:    req.Amount,
		Currency:  req.Currency,
		Processor: processorName,
		Raw:       raw,
	}, nil
}

// CreateWithdrawal pays out to the destination backing the wallet.
func (p *StripeProvider) CreateWithdrawal(ctx context.Context, req ports.PayoutRequest) (*ports.ProviderResponse, error) {
	if p.mock {
		return p.mockResponse("withdrawal_", req.Amount, req.Currency), nil
	}

	params := &stripe.PayoutParams{
		Params:   stripe.Params{Context: ctx},
		Amount:   stripe.Int64(minorUnits(req.Amount)),
		Currency: stripe.String(strings.ToLower(req.Currency)),
	}
	if req.Destination != nil {
		params.Destination = stripe.String(*req.Destination)
	}
	for k, v := range req.Metadata {
		params.AddMetadata(k, v)
	}
	params.AddMetadata("wallet_id", req.WalletID.String())
	params.AddMetadata("user_id", req.UserID.String())

	payout, err := p.api.Payouts.New(params)
	if err != nil {
		return nil, fmt.Errorf("stripe payout: %w", err)
	}

	raw, _ := json.Marshal(payout)
	return &ports.ProviderResponse{
		ID:        payout.ID,
		Status:    mapPayoutStatus(string(payout.Status)),
		Amount:    req.Amount,
		Currency:  req.Currency,
		Processor: processorName,
		Raw:       raw,
	}, nil
}

func (p *StripeProvider) mockResponse(prefix string, amount decimal.Decimal, currency string) *ports.ProviderResponse {
	id := prefix + uuid.NewString()
	raw, _ := json.Marshal(map[string]any{
		"id":     id,
		"status": "succeeded",
		"mock":   true,
	})
	return &ports.ProviderResponse{
		ID:        id,
		Status:    ports.OutcomeSucceeded,
		Amount:    amount,
		Currency:  currency,
		Processor: "stripe-mock",
		Raw:       raw,
	}
}

// minorUnits converts a major-unit decimal amount to the smallest
// currency unit Stripe expects.
func minorUnits(amount decimal.Decimal) int64 {
	return amount.Shift(2).IntPart()
}

// mapIntentStatus folds a payment intent status into the three
// outcomes the ledger understands. Anything unrecognized is a failure.
func mapIntentStatus(status string) ports.Outcome {
	switch status {
	case "succeeded":
		return ports.OutcomeSucceeded
	case "processing", "requires_action", "requires_confirmation", "requires_payment_method", "requires_capture":
		return ports.OutcomePending
	default:
		return ports.OutcomeFailed
	}
}

func mapPayoutStatus(status string) ports.Outcome {
	switch status {
	case "paid":
		return ports.OutcomeSucceeded
	case "pending", "in_transit":
		return ports.OutcomePending
	default:
		return ports.OutcomeFailed
	}
}
