// Package snapshotservice exports the ledger state into a snapshot store and rebuilds it on start.
package snapshotservice

import (
	"context"
	"errors"
	"sort"
	"sync"
	"time"

	"github.com/go-petr/market-ledger/internal/domain"
	"github.com/rs/zerolog"
)

//go:generate mockgen -source service.go -destination service_mock.go -package snapshotservice

// Store persists the latest snapshot.
type Store interface {
	Save(ctx context.Context, snap domain.Snapshot) error
	Load(ctx context.Context) (domain.Snapshot, error)
}

// AccountRepo provides the accounts with their journals.
type AccountRepo interface {
	Snapshot(ctx context.Context) ([]domain.AccountView, error)
	PrepareRestore(ctx context.Context, records []domain.AccountRecord, entries []domain.EntryRecord) (func(), error)
}

// UserRepo provides the registered users.
type UserRepo interface {
	List(ctx context.Context) ([]domain.User, error)
	PrepareRestore(ctx context.Context, users []domain.User) (func(), error)
}

// ItemRepo provides the seller items.
type ItemRepo interface {
	List(ctx context.Context) ([]domain.Item, error)
	PrepareRestore(ctx context.Context, items []domain.Item) (func(), error)
}

// TransactionRepo provides the market transactions.
type TransactionRepo interface {
	List(ctx context.Context) ([]domain.MarketTransaction, error)
	PrepareRestore(ctx context.Context, txs []domain.MarketTransaction) (func(), error)
}

// Service moves the ledger state between the in-memory repos and a Store.
type Service struct {
	accounts AccountRepo
	users    UserRepo
	items    ItemRepo
	txs      TransactionRepo
	store    Store
	state    *sync.RWMutex
	now      func() time.Time
}

// New returns a Service.
func New(ar AccountRepo, ur UserRepo, ir ItemRepo, tr TransactionRepo, s Store) *Service {
	return &Service{
		accounts: ar,
		users:    ur,
		items:    ir,
		txs:      tr,
		store:    s,
		state:    &sync.RWMutex{},
		now:      time.Now,
	}
}

// WithStateLock makes Build and Apply hold mu exclusively.
// Services that write to more than one repo hold it shared, so an export never sees half of their work.
func (s *Service) WithStateLock(mu *sync.RWMutex) *Service {
	s.state = mu
	return s
}

// Build exports the current state.
//
// Accounts are copied under their locks, so every transfer appears on both sides or on none.
func (s *Service) Build(ctx context.Context) (domain.Snapshot, error) {
	s.state.Lock()
	defer s.state.Unlock()

	snap := domain.Snapshot{
		Version: domain.SnapshotVersion,
		TakenAt: s.now().UTC(),
	}

	users, err := s.users.List(ctx)
	if err != nil {
		return domain.Snapshot{}, err
	}

	for _, u := range users {
		snap.Users = append(snap.Users, domain.UserRecord{
			UserID:    u.ID,
			Username:  u.Username,
			Role:      u.Role,
			CreatedAt: u.CreatedAt,
		})
	}

	if snap.Items, err = s.items.List(ctx); err != nil {
		return domain.Snapshot{}, err
	}

	views, err := s.accounts.Snapshot(ctx)
	if err != nil {
		return domain.Snapshot{}, err
	}

	for _, v := range views {
		snap.Accounts = append(snap.Accounts, domain.AccountRecord{
			AccountID: v.Account.ID,
			OwnerID:   v.Account.OwnerID,
			Balance:   v.Account.Balance,
		})

		for i, e := range v.Journal {
			snap.Entries = append(snap.Entries, domain.EntryRecord{
				AccountID:     v.Account.ID,
				Seq:           i,
				TransactionID: e.TransactionID,
				Timestamp:     e.Timestamp,
				Amount:        e.Amount,
				Kind:          e.Kind,
			})
		}
	}

	txs, err := s.txs.List(ctx)
	if err != nil {
		return domain.Snapshot{}, err
	}

	for _, t := range txs {
		snap.Transactions = append(snap.Transactions, domain.NewTransactionRecord(t))
	}

	return snap, nil
}

// Apply replaces the current state with snap.
// Order ids of every user are rebuilt from the transactions they bought.
func (s *Service) Apply(ctx context.Context, snap domain.Snapshot) error {
	l := zerolog.Ctx(ctx)

	if snap.Version != domain.SnapshotVersion {
		return domain.ErrUnsupportedSnapshot
	}

	txs := make([]domain.MarketTransaction, 0, len(snap.Transactions))

	for _, rec := range snap.Transactions {
		t, err := rec.Transaction()
		if err != nil {
			l.Error().Err(err).Str("transaction_id", rec.TransactionID).Msg("invalid transaction in snapshot")
			return domain.ErrCorruptSnapshot
		}

		txs = append(txs, t)
	}

	sort.Slice(txs, func(i, j int) bool { return txs[i].ID < txs[j].ID })

	orders := make(map[string][]string)
	for _, t := range txs {
		orders[t.BuyerID] = append(orders[t.BuyerID], t.ID)
	}

	users := make([]domain.User, 0, len(snap.Users))
	for _, rec := range snap.Users {
		users = append(users, domain.User{
			ID:        rec.UserID,
			Username:  rec.Username,
			Role:      rec.Role,
			AccountID: domain.AccountIDFor(rec.UserID),
			OrderIDs:  orders[rec.UserID],
			CreatedAt: rec.CreatedAt,
		})
	}

	// Nothing is swapped in until every repo accepted its part.
	commitAccounts, err := s.accounts.PrepareRestore(ctx, snap.Accounts, snap.Entries)
	if err != nil {
		return err
	}

	commitItems, err := s.items.PrepareRestore(ctx, snap.Items)
	if err != nil {
		return err
	}

	commitTxs, err := s.txs.PrepareRestore(ctx, txs)
	if err != nil {
		return err
	}

	commitUsers, err := s.users.PrepareRestore(ctx, users)
	if err != nil {
		return err
	}

	s.state.Lock()
	commitAccounts()
	commitItems()
	commitTxs()
	commitUsers()
	s.state.Unlock()

	l.Info().
		Int("users", len(users)).
		Int("accounts", len(snap.Accounts)).
		Int("transactions", len(txs)).
		Time("taken_at", snap.TakenAt).
		Msg("snapshot restored")

	return nil
}

// Save builds a snapshot and writes it to the store.
func (s *Service) Save(ctx context.Context) error {
	snap, err := s.Build(ctx)
	if err != nil {
		return err
	}

	return s.store.Save(ctx, snap)
}

// Load reads the stored snapshot and applies it.
// It returns false without error when the store is still empty.
func (s *Service) Load(ctx context.Context) (bool, error) {
	snap, err := s.store.Load(ctx)
	if err != nil {
		if errors.Is(err, domain.ErrSnapshotNotFound) {
			return false, nil
		}

		return false, err
	}

	if err := s.Apply(ctx, snap); err != nil {
		return false, err
	}

	return true, nil
}

// Run saves a snapshot every interval until ctx is done, then saves once more.
func (s *Service) Run(ctx context.Context, interval time.Duration) error {
	l := zerolog.Ctx(ctx)

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			if err := s.Save(context.WithoutCancel(ctx)); err != nil {
				l.Error().Err(err).Msg("cannot save final snapshot")
				return err
			}

			l.Info().Msg("final snapshot saved")

			return nil
		case <-ticker.C:
			if err := s.Save(ctx); err != nil {
				l.Error().Err(err).Msg("cannot save snapshot")
			}
		}
	}
}
