package domain

import (
	"errors"

	"github.com/shopspring/decimal"
)

// ErrSameAccount indicates a transfer whose both sides are the same account.
var ErrSameAccount = errors.New("transfer between the same account")

// TransferParams is the input data for the transfer transaction.
type TransferParams struct {
	FromAccountID string          `json:"from_account_id"`
	ToAccountID   string          `json:"to_account_id"`
	Amount        decimal.Decimal `json:"amount"`
	TransactionID string          `json:"transaction_id"`
}

// TransferResult is the result of the transfer transaction.
type TransferResult struct {
	TransactionID string  `json:"transaction_id"`
	FromAccount   Account `json:"from_account"`
	ToAccount     Account `json:"to_account"`
	FromEntry     Entry   `json:"from_entry"`
	ToEntry       Entry   `json:"to_entry"`
}
