// Package domain provides defenitions of all entities.
package domain

import (
	"errors"
	"time"

	"github.com/shopspring/decimal"
)

var (
	// ErrAccountNotFound indicates that the account is not found.
	ErrAccountNotFound = errors.New("account not found")
	// ErrInvalidAmount indicates that the amount is not a positive number.
	ErrInvalidAmount = errors.New("invalid amount")
	// ErrInsufficientFunds indicates that the account balance does not cover the amount.
	ErrInsufficientFunds = errors.New("insufficient funds")
	// ErrCorruptSnapshot indicates that restored entries do not add up to the stored balance.
	ErrCorruptSnapshot = errors.New("corrupt snapshot")
)

// AccountIDPrefix prefixes the owner id to build the account id.
const AccountIDPrefix = "BA_"

// AccountIDFor returns the account id owned by the given owner.
func AccountIDFor(ownerID string) string {
	return AccountIDPrefix + ownerID
}

// Account holds a read copy of an owner's balance.
type Account struct {
	ID        string          `json:"id"`
	OwnerID   string          `json:"owner_id"`
	Balance   decimal.Decimal `json:"balance"`
	CreatedAt time.Time       `json:"created_at"`
}

// AccountView is an account together with a copy of its journal.
type AccountView struct {
	Account Account `json:"account"`
	Journal Journal `json:"journal"`
}
