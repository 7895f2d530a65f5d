// Package accountrepo manages repository layer of accounts.
//
// Accounts and their journals live in memory. Every account carries its own
// lock; operations spanning several accounts acquire the locks in ascending
// account id order.
package accountrepo

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/go-petr/market-ledger/internal/domain"
	"github.com/go-petr/market-ledger/pkg/errorspkg"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
)

// RepoMem facilitates account repository layer logic.
type RepoMem struct {
	mu       sync.RWMutex
	accounts map[string]*account
	owners   map[string]string // owner id -> account id
	now      func() time.Time
}

// NewRepoMem returns an empty account RepoMem. A nil clock means time.Now.
func NewRepoMem(clock func() time.Time) *RepoMem {
	if clock == nil {
		clock = time.Now
	}

	return &RepoMem{
		accounts: make(map[string]*account),
		owners:   make(map[string]string),
		now:      clock,
	}
}

// Create creates the account of the given owner and then returns it.
//
// Creating an account for an owner that already has one returns the existing account.
func (r *RepoMem) Create(ctx context.Context, ownerID string) (domain.Account, error) {
	if err := errorspkg.CheckContext(ctx); err != nil {
		return domain.Account{}, err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if id, ok := r.owners[ownerID]; ok {
		a := r.accounts[id]

		a.mu.Lock()
		defer a.mu.Unlock()

		zerolog.Ctx(ctx).Debug().Str("owner_id", ownerID).Msg("account already exists")

		return a.view(), nil
	}

	a := &account{
		id:        domain.AccountIDFor(ownerID),
		ownerID:   ownerID,
		createdAt: r.now(),
		balance:   decimal.Zero,
		journal:   domain.Journal{},
	}

	r.accounts[a.id] = a
	r.owners[ownerID] = a.id

	return a.view(), nil
}

// Remove drops the owner's account. Accounts with entries are never removed.
func (r *RepoMem) Remove(ctx context.Context, ownerID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	id, ok := r.owners[ownerID]
	if !ok {
		return domain.ErrAccountNotFound
	}

	a := r.accounts[id]

	a.mu.Lock()
	defer a.mu.Unlock()

	if len(a.journal) > 0 {
		zerolog.Ctx(ctx).Error().Str("account_id", id).Int("entries", len(a.journal)).Msg("cannot remove account with entries")
		return errorspkg.ErrInternal
	}

	delete(r.accounts, id)
	delete(r.owners, ownerID)

	return nil
}

func (r *RepoMem) lookup(id string) (*account, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	a, ok := r.accounts[id]

	return a, ok
}

// Get returns the account with the given id.
func (r *RepoMem) Get(ctx context.Context, id string) (domain.Account, error) {
	a, ok := r.lookup(id)
	if !ok {
		return domain.Account{}, domain.ErrAccountNotFound
	}

	a.mu.Lock()
	defer a.mu.Unlock()

	return a.view(), nil
}

// GetByOwner returns the account owned by the given owner.
func (r *RepoMem) GetByOwner(ctx context.Context, ownerID string) (domain.Account, error) {
	r.mu.RLock()
	id, ok := r.owners[ownerID]
	r.mu.RUnlock()

	if !ok {
		return domain.Account{}, domain.ErrAccountNotFound
	}

	return r.Get(ctx, id)
}

// List returns all accounts ordered by account id.
func (r *RepoMem) List(ctx context.Context) ([]domain.Account, error) {
	views, err := r.Snapshot(ctx)
	if err != nil {
		return nil, err
	}

	items := make([]domain.Account, len(views))
	for i, v := range views {
		items[i] = v.Account
	}

	return items, nil
}

// Credit adds amount to the account and returns the changed account with the new entry.
func (r *RepoMem) Credit(ctx context.Context, id string, amount decimal.Decimal, kind domain.EntryKind, txID string) (domain.Account, domain.Entry, error) {
	var (
		acc   domain.Account
		entry domain.Entry
	)

	err := r.Tx(ctx, []string{id}, func(h map[string]*Handle) error {
		var err error

		entry, err = h[id].Credit(amount, kind, txID)
		acc = h[id].Account()

		return err
	})

	return acc, entry, err
}

// Debit removes amount from the account and returns the changed account with the new entry.
func (r *RepoMem) Debit(ctx context.Context, id string, amount decimal.Decimal, kind domain.EntryKind, txID string) (domain.Account, domain.Entry, error) {
	var (
		acc   domain.Account
		entry domain.Entry
	)

	err := r.Tx(ctx, []string{id}, func(h map[string]*Handle) error {
		var err error

		entry, err = h[id].Debit(amount, kind, txID)
		acc = h[id].Account()

		return err
	})

	return acc, entry, err
}

// Journal returns a copy of the whole journal of the account.
func (r *RepoMem) Journal(ctx context.Context, id string) (domain.Journal, error) {
	a, ok := r.lookup(id)
	if !ok {
		return nil, domain.ErrAccountNotFound
	}

	a.mu.Lock()
	defer a.mu.Unlock()

	return a.journal.Clone(), nil
}

// EntriesSince returns the entries of the account with a timestamp at or after threshold.
func (r *RepoMem) EntriesSince(ctx context.Context, id string, threshold time.Time) (domain.Journal, error) {
	a, ok := r.lookup(id)
	if !ok {
		return nil, domain.ErrAccountNotFound
	}

	a.mu.Lock()
	defer a.mu.Unlock()

	return a.journal.Since(threshold), nil
}

// Tx locks the given accounts and runs fn with mutable handles to them.
//
// Locks are taken in ascending account id order to avoid deadlocks between
// concurrent callers. fn is responsible for leaving the accounts unchanged
// when it returns an error.
func (r *RepoMem) Tx(ctx context.Context, ids []string, fn func(map[string]*Handle) error) error {
	if err := errorspkg.CheckContext(ctx); err != nil {
		return err
	}

	ordered := uniqueSorted(ids)
	locked := make([]*account, 0, len(ordered))

	r.mu.RLock()
	for _, id := range ordered {
		a, ok := r.accounts[id]
		if !ok {
			r.mu.RUnlock()
			return domain.ErrAccountNotFound
		}

		locked = append(locked, a)
	}
	r.mu.RUnlock()

	for _, a := range locked {
		a.mu.Lock()
	}

	defer func() {
		for i := len(locked) - 1; i >= 0; i-- {
			locked[i].mu.Unlock()
		}
	}()

	if err := errorspkg.CheckContext(ctx); err != nil {
		return err
	}

	now := r.now()
	handles := make(map[string]*Handle, len(locked))

	for _, a := range locked {
		handles[a.id] = &Handle{a: a, now: now}
	}

	return fn(handles)
}

// Snapshot returns a consistent copy of every account and its journal, ordered by account id.
//
// All account locks are held while copying, so a transfer is observed either
// completely or not at all.
func (r *RepoMem) Snapshot(ctx context.Context) ([]domain.AccountView, error) {
	if err := errorspkg.CheckContext(ctx); err != nil {
		return nil, err
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	ids := make([]string, 0, len(r.accounts))
	for id := range r.accounts {
		ids = append(ids, id)
	}

	sort.Strings(ids)

	for _, id := range ids {
		r.accounts[id].mu.Lock()
	}

	views := make([]domain.AccountView, len(ids))

	for i, id := range ids {
		a := r.accounts[id]
		views[i] = domain.AccountView{Account: a.view(), Journal: a.journal.Clone()}
	}

	for i := len(ids) - 1; i >= 0; i-- {
		r.accounts[ids[i]].mu.Unlock()
	}

	return views, nil
}

// Restore replaces all accounts with the given records.
func (r *RepoMem) Restore(ctx context.Context, records []domain.AccountRecord, entries []domain.EntryRecord) error {
	commit, err := r.PrepareRestore(ctx, records, entries)
	if err != nil {
		return err
	}

	commit()

	return nil
}

// PrepareRestore validates the records and returns a commit func that swaps them in.
// The live accounts are untouched until commit is called.
//
// Entries are replayed in Seq order per account and must add up to the stored balance.
func (r *RepoMem) PrepareRestore(ctx context.Context, records []domain.AccountRecord, entries []domain.EntryRecord) (func(), error) {
	l := zerolog.Ctx(ctx)

	accounts := make(map[string]*account, len(records))
	owners := make(map[string]string, len(records))

	for _, rec := range records {
		if _, ok := accounts[rec.AccountID]; ok {
			l.Error().Str("account_id", rec.AccountID).Msg("duplicate account in snapshot")
			return nil, domain.ErrCorruptSnapshot
		}

		accounts[rec.AccountID] = &account{
			id:        rec.AccountID,
			ownerID:   rec.OwnerID,
			createdAt: r.now(),
			balance:   decimal.Zero,
			journal:   domain.Journal{},
		}
		owners[rec.OwnerID] = rec.AccountID
	}

	sorted := make([]domain.EntryRecord, len(entries))
	copy(sorted, entries)
	sort.SliceStable(sorted, func(i, j int) bool {
		if sorted[i].AccountID != sorted[j].AccountID {
			return sorted[i].AccountID < sorted[j].AccountID
		}

		return sorted[i].Seq < sorted[j].Seq
	})

	for _, e := range sorted {
		a, ok := accounts[e.AccountID]
		if !ok || !e.Kind.Valid() || e.Amount.IsZero() {
			l.Error().Str("account_id", e.AccountID).Str("transaction_id", e.TransactionID).Msg("invalid entry in snapshot")
			return nil, domain.ErrCorruptSnapshot
		}

		a.appendEntry(e.Timestamp, e.Amount, e.Kind, e.TransactionID)

		if a.balance.IsNegative() {
			l.Error().Str("account_id", e.AccountID).Msg("negative balance while replaying snapshot")
			return nil, domain.ErrCorruptSnapshot
		}
	}

	for _, rec := range records {
		if !accounts[rec.AccountID].balance.Equal(rec.Balance) {
			l.Error().
				Str("account_id", rec.AccountID).
				Str("balance", rec.Balance.String()).
				Str("replayed", accounts[rec.AccountID].balance.String()).
				Msg("snapshot balance does not match its entries")

			return nil, domain.ErrCorruptSnapshot
		}
	}

	return func() {
		r.mu.Lock()
		defer r.mu.Unlock()

		r.accounts = accounts
		r.owners = owners
	}, nil
}

func uniqueSorted(ids []string) []string {
	seen := make(map[string]struct{}, len(ids))
	out := make([]string, 0, len(ids))

	for _, id := range ids {
		if _, ok := seen[id]; ok {
			continue
		}

		seen[id] = struct{}{}
		out = append(out, id)
	}

	sort.Strings(out)

	return out
}
