package domain

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

var (
	// ErrTransactionNotFound indicates that the transaction is not found.
	ErrTransactionNotFound = errors.New("transaction not found")
	// ErrDuplicateTransaction indicates that the transaction id is already recorded.
	ErrDuplicateTransaction = errors.New("transaction already exists")
	// ErrInvalidStatus indicates an unknown transaction status.
	ErrInvalidStatus = errors.New("invalid transaction status")
	// ErrInvalidStatusTransition indicates that the status cannot move to the requested one.
	ErrInvalidStatusTransition = errors.New("invalid transaction status transition")
	// ErrInvalidQuantity indicates that the quantity is not positive.
	ErrInvalidQuantity = errors.New("invalid quantity")
)

// TransactionStatus is the fulfilment state of a market transaction.
// The numeric values are the persisted status codes.
type TransactionStatus int

// Supported statuses.
const (
	StatusPaid TransactionStatus = iota
	StatusCompleted
	StatusCancelled
)

var statusNames = [...]string{"PAID", "COMPLETED", "CANCELLED"}

// Valid reports whether s is a known status.
func (s TransactionStatus) Valid() bool {
	return s >= StatusPaid && s <= StatusCancelled
}

func (s TransactionStatus) String() string {
	if !s.Valid() {
		return fmt.Sprintf("TransactionStatus(%d)", int(s))
	}

	return statusNames[s]
}

// MarshalText renders the status by name.
func (s TransactionStatus) MarshalText() ([]byte, error) {
	if !s.Valid() {
		return nil, ErrInvalidStatus
	}

	return []byte(s.String()), nil
}

// UnmarshalText parses the status by name.
func (s *TransactionStatus) UnmarshalText(b []byte) error {
	parsed, err := ParseStatus(string(b))
	if err != nil {
		return err
	}

	*s = parsed

	return nil
}

// ParseStatus parses a case-insensitive status name.
func ParseStatus(name string) (TransactionStatus, error) {
	for i, n := range statusNames {
		if strings.EqualFold(n, name) {
			return TransactionStatus(i), nil
		}
	}

	return 0, ErrInvalidStatus
}

// CanTransitionTo reports whether the fulfilment workflow allows moving from s to next.
// Only paid transactions move, and only once.
func (s TransactionStatus) CanTransitionTo(next TransactionStatus) bool {
	return s == StatusPaid && (next == StatusCompleted || next == StatusCancelled)
}

// MarketTransaction holds a marketplace purchase.
// Only Status changes after creation.
type MarketTransaction struct {
	ID        string            `json:"id"`
	ItemID    string            `json:"item_id"`
	BuyerID   string            `json:"buyer_id"`
	SellerID  string            `json:"seller_id"`
	Amount    decimal.Decimal   `json:"amount"`
	Quantity  int32             `json:"quantity"`
	Timestamp time.Time         `json:"timestamp"`
	Status    TransactionStatus `json:"status"`
}

// CreateTransactionParams is the input data to record a market transaction.
type CreateTransactionParams struct {
	ID       string
	ItemID   string
	BuyerID  string
	SellerID string
	Amount   decimal.Decimal
	Quantity int32
}
