package domain

import "time"

// Event types published for market transactions.
const (
	EventTransactionPaid      = "transaction.paid"
	EventTransactionCompleted = "transaction.completed"
	EventTransactionCancelled = "transaction.cancelled"
)

// TransactionEvent notifies other systems about a market transaction change.
type TransactionEvent struct {
	Type        string            `json:"type"`
	Transaction MarketTransaction `json:"transaction"`
	OccurredAt  time.Time         `json:"occurred_at"`
}
