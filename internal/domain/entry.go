package domain

import (
	"errors"
	"time"

	"github.com/shopspring/decimal"
)

// ErrInvalidEntryKind indicates an unknown journal entry kind.
var ErrInvalidEntryKind = errors.New("invalid entry kind")

// EntryKind tells bank originated movement apart from marketplace movement.
type EntryKind string

// Supported entry kinds.
const (
	KindTopUp      EntryKind = "TOP_UP"
	KindWithdrawal EntryKind = "WITHDRAWAL"
	KindPurchase   EntryKind = "PURCHASE"
)

// Valid reports whether k is a known kind.
func (k EntryKind) Valid() bool {
	switch k {
	case KindTopUp, KindWithdrawal, KindPurchase:
		return true
	}

	return false
}

// IsBank reports whether the entry was caused by a top up or a withdrawal.
func (k EntryKind) IsBank() bool {
	return k == KindTopUp || k == KindWithdrawal
}

// Entry holds balance change data for an account.
type Entry struct {
	TransactionID string          `json:"transaction_id"`
	Timestamp     time.Time       `json:"timestamp"`
	Amount        decimal.Decimal `json:"amount"` // negative for debits
	Kind          EntryKind       `json:"kind"`
}

// AccountEntry is an entry tagged with the account it belongs to.
type AccountEntry struct {
	AccountID string `json:"account_id"`
	OwnerID   string `json:"owner_id"`
	Entry
}
