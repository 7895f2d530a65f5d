// Package transactionrepo manages repository layer of market transactions.
package transactionrepo

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/go-petr/market-ledger/internal/domain"
	"github.com/go-petr/market-ledger/pkg/errorspkg"
	"github.com/rs/zerolog"
)

// RepoMem facilitates market transaction repository layer logic.
type RepoMem struct {
	mu  sync.RWMutex
	txs map[string]domain.MarketTransaction
	now func() time.Time
}

// NewRepoMem returns an empty transaction RepoMem. A nil clock means time.Now.
func NewRepoMem(clock func() time.Time) *RepoMem {
	if clock == nil {
		clock = time.Now
	}

	return &RepoMem{
		txs: make(map[string]domain.MarketTransaction),
		now: clock,
	}
}

// Create records a paid transaction under the id chosen by the caller and then returns it.
func (r *RepoMem) Create(ctx context.Context, arg domain.CreateTransactionParams) (domain.MarketTransaction, error) {
	if err := errorspkg.CheckContext(ctx); err != nil {
		return domain.MarketTransaction{}, err
	}

	if !arg.Amount.IsPositive() {
		return domain.MarketTransaction{}, domain.ErrInvalidAmount
	}

	if arg.Quantity <= 0 {
		return domain.MarketTransaction{}, domain.ErrInvalidQuantity
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.txs[arg.ID]; ok {
		zerolog.Ctx(ctx).Warn().Str("transaction_id", arg.ID).Msg("duplicate transaction id")
		return domain.MarketTransaction{}, domain.ErrDuplicateTransaction
	}

	t := domain.MarketTransaction{
		ID:        arg.ID,
		ItemID:    arg.ItemID,
		BuyerID:   arg.BuyerID,
		SellerID:  arg.SellerID,
		Amount:    arg.Amount,
		Quantity:  arg.Quantity,
		Timestamp: r.now(),
		Status:    domain.StatusPaid,
	}

	r.txs[t.ID] = t

	return t, nil
}

// Get returns the transaction with the given id.
func (r *RepoMem) Get(ctx context.Context, id string) (domain.MarketTransaction, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	t, ok := r.txs[id]
	if !ok {
		return domain.MarketTransaction{}, domain.ErrTransactionNotFound
	}

	return t, nil
}

// StatusOf returns the status of the transaction with the given id.
func (r *RepoMem) StatusOf(ctx context.Context, id string) (domain.TransactionStatus, error) {
	t, err := r.Get(ctx, id)
	if err != nil {
		return 0, err
	}

	return t.Status, nil
}

// SetStatus overwrites the status of the transaction and returns the updated transaction.
func (r *RepoMem) SetStatus(ctx context.Context, id string, status domain.TransactionStatus) (domain.MarketTransaction, error) {
	if !status.Valid() {
		return domain.MarketTransaction{}, domain.ErrInvalidStatus
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	t, ok := r.txs[id]
	if !ok {
		return domain.MarketTransaction{}, domain.ErrTransactionNotFound
	}

	t.Status = status
	r.txs[id] = t

	return t, nil
}

// Transition moves the transaction from its current status to next if the workflow allows it.
// The check and the update happen atomically.
func (r *RepoMem) Transition(ctx context.Context, id string, next domain.TransactionStatus) (domain.MarketTransaction, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	t, ok := r.txs[id]
	if !ok {
		return domain.MarketTransaction{}, domain.ErrTransactionNotFound
	}

	if !t.Status.CanTransitionTo(next) {
		zerolog.Ctx(ctx).Info().
			Str("transaction_id", id).
			Stringer("from", t.Status).
			Stringer("to", next).
			Msg("status transition rejected")

		return domain.MarketTransaction{}, domain.ErrInvalidStatusTransition
	}

	t.Status = next
	r.txs[id] = t

	return t, nil
}

// ByStatus returns the given ids whose transaction has the given status.
// Input order is kept and unknown ids are skipped.
func (r *RepoMem) ByStatus(ctx context.Context, ids []string, status domain.TransactionStatus) ([]string, error) {
	if !status.Valid() {
		return nil, domain.ErrInvalidStatus
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	out := []string{}

	for _, id := range ids {
		if t, ok := r.txs[id]; ok && t.Status == status {
			out = append(out, id)
		}
	}

	return out, nil
}

// List returns every transaction ordered by id.
func (r *RepoMem) List(ctx context.Context) ([]domain.MarketTransaction, error) {
	if err := errorspkg.CheckContext(ctx); err != nil {
		return nil, err
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	items := make([]domain.MarketTransaction, 0, len(r.txs))
	for _, t := range r.txs {
		items = append(items, t)
	}

	sort.Slice(items, func(i, j int) bool { return items[i].ID < items[j].ID })

	return items, nil
}

// Restore replaces all transactions with the given ones.
func (r *RepoMem) Restore(ctx context.Context, txs []domain.MarketTransaction) error {
	commit, err := r.PrepareRestore(ctx, txs)
	if err != nil {
		return err
	}

	commit()

	return nil
}

// PrepareRestore validates txs and returns a commit func that swaps them in.
func (r *RepoMem) PrepareRestore(ctx context.Context, txs []domain.MarketTransaction) (func(), error) {
	restored := make(map[string]domain.MarketTransaction, len(txs))

	for _, t := range txs {
		if _, ok := restored[t.ID]; ok {
			zerolog.Ctx(ctx).Error().Str("transaction_id", t.ID).Msg("duplicate transaction in snapshot")
			return nil, domain.ErrDuplicateTransaction
		}

		if !t.Status.Valid() {
			return nil, domain.ErrInvalidStatus
		}

		restored[t.ID] = t
	}

	return func() {
		r.mu.Lock()
		defer r.mu.Unlock()

		r.txs = restored
	}, nil
}
