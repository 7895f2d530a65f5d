// Package itemrepo manages repository layer of seller items.
package itemrepo

import (
	"context"
	"math"
	"sort"
	"sync"

	"github.com/go-petr/market-ledger/internal/domain"
	"github.com/go-petr/market-ledger/pkg/idpkg"
	"github.com/rs/zerolog"
)

// RepoMem facilitates item repository layer logic.
type RepoMem struct {
	mu    sync.RWMutex
	items map[string]domain.Item
}

// NewRepoMem returns an empty item RepoMem.
func NewRepoMem() *RepoMem {
	return &RepoMem{items: make(map[string]domain.Item)}
}

// Create registers the item and then returns it.
func (r *RepoMem) Create(ctx context.Context, arg domain.CreateItemParams) (domain.Item, error) {
	if !arg.Price.IsPositive() {
		return domain.Item{}, domain.ErrInvalidAmount
	}

	if arg.Stock < 0 {
		return domain.Item{}, domain.ErrInvalidQuantity
	}

	it := domain.Item{
		ID:       idpkg.New(),
		SellerID: arg.SellerID,
		Name:     arg.Name,
		Price:    arg.Price,
		Stock:    arg.Stock,
	}

	r.mu.Lock()
	r.items[it.ID] = it
	r.mu.Unlock()

	return it, nil
}

// Get returns the item with the given id.
func (r *RepoMem) Get(ctx context.Context, id string) (domain.Item, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	it, ok := r.items[id]
	if !ok {
		return domain.Item{}, domain.ErrItemNotFound
	}

	return it, nil
}

// ListBySeller returns the items of the seller ordered by id.
func (r *RepoMem) ListBySeller(ctx context.Context, sellerID string) ([]domain.Item, error) {
	return r.list(func(it domain.Item) bool { return it.SellerID == sellerID }), nil
}

// List returns all items ordered by id.
func (r *RepoMem) List(ctx context.Context) ([]domain.Item, error) {
	return r.list(func(domain.Item) bool { return true }), nil
}

func (r *RepoMem) list(keep func(domain.Item) bool) []domain.Item {
	r.mu.RLock()
	defer r.mu.RUnlock()

	items := []domain.Item{}

	for _, it := range r.items {
		if keep(it) {
			items = append(items, it)
		}
	}

	sort.Slice(items, func(i, j int) bool { return items[i].ID < items[j].ID })

	return items
}

// AddStock increases the stock of the item by qty.
// A qty that would take the stock past math.MaxInt32 is rejected with ErrInvalidQuantity.
func (r *RepoMem) AddStock(ctx context.Context, id string, qty int32) (domain.Item, error) {
	if qty <= 0 {
		return domain.Item{}, domain.ErrInvalidQuantity
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	it, ok := r.items[id]
	if !ok {
		return domain.Item{}, domain.ErrItemNotFound
	}

	if qty > math.MaxInt32-it.Stock {
		zerolog.Ctx(ctx).Info().Str("item_id", id).Int32("stock", it.Stock).Int32("quantity", qty).Msg("stock overflow")
		return domain.Item{}, domain.ErrInvalidQuantity
	}

	it.Stock += qty
	r.items[id] = it

	return it, nil
}

// TakeStock decreases the stock of the item by qty when enough is available.
func (r *RepoMem) TakeStock(ctx context.Context, id string, qty int32) (domain.Item, error) {
	if qty <= 0 {
		return domain.Item{}, domain.ErrInvalidQuantity
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	it, ok := r.items[id]
	if !ok {
		return domain.Item{}, domain.ErrItemNotFound
	}

	if it.Stock < qty {
		zerolog.Ctx(ctx).Info().Str("item_id", id).Int32("stock", it.Stock).Int32("quantity", qty).Msg("insufficient stock")
		return domain.Item{}, domain.ErrInsufficientStock
	}

	it.Stock -= qty
	r.items[id] = it

	return it, nil
}

// Restore replaces all items with the given ones.
func (r *RepoMem) Restore(ctx context.Context, items []domain.Item) error {
	commit, err := r.PrepareRestore(ctx, items)
	if err != nil {
		return err
	}

	commit()

	return nil
}

// PrepareRestore validates items and returns a commit func that swaps them in.
func (r *RepoMem) PrepareRestore(ctx context.Context, items []domain.Item) (func(), error) {
	restored := make(map[string]domain.Item, len(items))

	for _, it := range items {
		if _, ok := restored[it.ID]; ok || it.Stock < 0 {
			zerolog.Ctx(ctx).Error().Str("item_id", it.ID).Int32("stock", it.Stock).Msg("invalid item in snapshot")
			return nil, domain.ErrCorruptSnapshot
		}

		restored[it.ID] = it
	}

	return func() {
		r.mu.Lock()
		defer r.mu.Unlock()

		r.items = restored
	}, nil
}
