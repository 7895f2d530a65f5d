package accountrepo

import (
	"sync"
	"time"

	"github.com/go-petr/market-ledger/internal/domain"
	"github.com/shopspring/decimal"
)

// account is the live balance and journal pair. mu guards every field but id and ownerID.
type account struct {
	mu        sync.Mutex
	id        string
	ownerID   string
	createdAt time.Time
	balance   decimal.Decimal
	journal   domain.Journal
}

func (a *account) view() domain.Account {
	return domain.Account{
		ID:        a.id,
		OwnerID:   a.ownerID,
		Balance:   a.balance,
		CreatedAt: a.createdAt,
	}
}

// appendEntry records a signed amount. Timestamps never go backwards within a journal.
func (a *account) appendEntry(now time.Time, amount decimal.Decimal, kind domain.EntryKind, txID string) domain.Entry {
	if last, ok := a.journal.Last(); ok && now.Before(last.Timestamp) {
		now = last.Timestamp
	}

	e := domain.Entry{
		TransactionID: txID,
		Timestamp:     now,
		Amount:        amount,
		Kind:          kind,
	}

	a.journal = append(a.journal, e)
	a.balance = a.balance.Add(amount)

	return e
}

func (a *account) credit(now time.Time, amount decimal.Decimal, kind domain.EntryKind, txID string) (domain.Entry, error) {
	if !amount.IsPositive() {
		return domain.Entry{}, domain.ErrInvalidAmount
	}

	if !kind.Valid() {
		return domain.Entry{}, domain.ErrInvalidEntryKind
	}

	return a.appendEntry(now, amount, kind, txID), nil
}

func (a *account) debit(now time.Time, amount decimal.Decimal, kind domain.EntryKind, txID string) (domain.Entry, error) {
	if !amount.IsPositive() {
		return domain.Entry{}, domain.ErrInvalidAmount
	}

	if !kind.Valid() {
		return domain.Entry{}, domain.ErrInvalidEntryKind
	}

	if amount.GreaterThan(a.balance) {
		return domain.Entry{}, domain.ErrInsufficientFunds
	}

	return a.appendEntry(now, amount.Neg(), kind, txID), nil
}

// Handle gives mutable access to an account locked by RepoMem.Tx.
// It must not be retained after the Tx callback returns.
type Handle struct {
	a   *account
	now time.Time
}

// Credit adds amount to the account.
func (h *Handle) Credit(amount decimal.Decimal, kind domain.EntryKind, txID string) (domain.Entry, error) {
	return h.a.credit(h.now, amount, kind, txID)
}

// Debit removes amount from the account, failing with ErrInsufficientFunds
// without any change when the balance does not cover it.
func (h *Handle) Debit(amount decimal.Decimal, kind domain.EntryKind, txID string) (domain.Entry, error) {
	return h.a.debit(h.now, amount, kind, txID)
}

// Account returns the current state of the account.
func (h *Handle) Account() domain.Account {
	return h.a.view()
}
