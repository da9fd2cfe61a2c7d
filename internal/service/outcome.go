package service

import (
	"wallet-ledger/internal/core/domain"
	"wallet-ledger/internal/core/ports"
)

// MapOutcome folds a provider verdict into the recorded transaction
// status. The mapping is total: any outcome the provider invents later
// lands on FAILED rather than leaking an unknown status into the
// journal.
func MapOutcome(o ports.Outcome) domain.TransactionStatus {
	switch o {
	case ports.OutcomeSucceeded:
		return domain.TransactionStatusSucceeded
	case ports.OutcomePending:
		return domain.TransactionStatusPending
	default:
		return domain.TransactionStatusFailed
	}
}
