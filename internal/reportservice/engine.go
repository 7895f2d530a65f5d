// Package reportservice answers read-only analytics queries over the ledger and the catalog.
//
// Every query takes the reference time explicitly. Account listings are ordered
// by account id then journal order, catalog listings by transaction id, and
// rankings by value descending with ties broken by ascending id.
package reportservice

import (
	"context"
	"sort"
	"time"

	"github.com/go-petr/market-ledger/internal/domain"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
)

// Day is the length of one reporting day.
const Day = 24 * time.Hour

// PopularityWindow bounds the seller rankings.
const PopularityWindow = 30 * Day

// AccountRepo provides consistent account reads.
type AccountRepo interface {
	Snapshot(ctx context.Context) ([]domain.AccountView, error)
	GetByOwner(ctx context.Context, ownerID string) (domain.Account, error)
	EntriesSince(ctx context.Context, id string, threshold time.Time) (domain.Journal, error)
}

// TransactionRepo provides catalog reads.
type TransactionRepo interface {
	List(ctx context.Context) ([]domain.MarketTransaction, error)
	ByStatus(ctx context.Context, ids []string, status domain.TransactionStatus) ([]string, error)
}

// UserRepo provides the order ids of a user.
type UserRepo interface {
	Get(ctx context.Context, id string) (domain.User, error)
}

// Engine facilitates analytics logic.
type Engine struct {
	accounts AccountRepo
	txs      TransactionRepo
	users    UserRepo
}

// New returns the analytics engine.
func New(ar AccountRepo, tr TransactionRepo, ur UserRepo) *Engine {
	return &Engine{accounts: ar, txs: tr, users: ur}
}

// StartOfDay returns midnight of now's day in now's location.
func StartOfDay(now time.Time) time.Time {
	y, m, d := now.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, now.Location())
}

func daysAgo(now time.Time, days int) time.Time {
	return now.Add(-time.Duration(days) * Day)
}

// rank orders ids by value descending, ties by ascending id, and keeps at most n.
func rank(values map[string]decimal.Decimal, n int) []domain.RankedID {
	out := make([]domain.RankedID, 0, len(values))
	for id, v := range values {
		out = append(out, domain.RankedID{ID: id, Value: v})
	}

	sort.Slice(out, func(i, j int) bool {
		if c := out[i].Value.Cmp(out[j].Value); c != 0 {
			return c > 0
		}

		return out[i].ID < out[j].ID
	})

	if n < 0 {
		n = 0
	}

	if n < len(out) {
		out = out[:n]
	}

	return out
}

// BankActivity returns top ups and withdrawals recorded within window before now.
func (e *Engine) BankActivity(ctx context.Context, now time.Time, window time.Duration) ([]domain.AccountEntry, error) {
	views, err := e.accounts.Snapshot(ctx)
	if err != nil {
		return nil, err
	}

	threshold := now.Add(-window)
	out := []domain.AccountEntry{}

	for _, v := range views {
		for _, entry := range v.Journal.Since(threshold) {
			if entry.Kind.IsBank() {
				out = append(out, domain.AccountEntry{
					AccountID: v.Account.ID,
					OwnerID:   v.Account.OwnerID,
					Entry:     entry,
				})
			}
		}
	}

	return out, nil
}

// CashFlow returns the owner's entries recorded within window before now.
func (e *Engine) CashFlow(ctx context.Context, ownerID string, now time.Time, window time.Duration) (domain.Journal, error) {
	return e.cashFlowSince(ctx, ownerID, now.Add(-window))
}

// CashFlowToday returns the owner's entries recorded since midnight.
func (e *Engine) CashFlowToday(ctx context.Context, ownerID string, now time.Time) (domain.Journal, error) {
	return e.cashFlowSince(ctx, ownerID, StartOfDay(now))
}

func (e *Engine) cashFlowSince(ctx context.Context, ownerID string, threshold time.Time) (domain.Journal, error) {
	acc, err := e.accounts.GetByOwner(ctx, ownerID)
	if err != nil {
		return nil, err
	}

	return e.accounts.EntriesSince(ctx, acc.ID, threshold)
}

// Customers returns every account owner ordered by owner id.
func (e *Engine) Customers(ctx context.Context) ([]domain.Customer, error) {
	views, err := e.accounts.Snapshot(ctx)
	if err != nil {
		return nil, err
	}

	out := make([]domain.Customer, len(views))
	for i, v := range views {
		out[i] = domain.Customer{OwnerID: v.Account.OwnerID, AccountID: v.Account.ID}
	}

	sort.Slice(out, func(i, j int) bool { return out[i].OwnerID < out[j].OwnerID })

	return out, nil
}

// DormantAccounts returns the accounts without any entry within the dormancy period before now.
func (e *Engine) DormantAccounts(ctx context.Context, now time.Time) ([]domain.Account, error) {
	views, err := e.accounts.Snapshot(ctx)
	if err != nil {
		return nil, err
	}

	out := []domain.Account{}

	for _, v := range views {
		if v.Journal.IsDormant(now) {
			out = append(out, v.Account)
		}
	}

	return out, nil
}

// TopUsersToday ranks owners by the number of entries recorded since midnight.
func (e *Engine) TopUsersToday(ctx context.Context, now time.Time, n int) ([]domain.RankedID, error) {
	views, err := e.accounts.Snapshot(ctx)
	if err != nil {
		return nil, err
	}

	midnight := StartOfDay(now)
	counts := make(map[string]decimal.Decimal)

	for _, v := range views {
		if c := len(v.Journal.Since(midnight)); c > 0 {
			counts[v.Account.OwnerID] = decimal.NewFromInt(int64(c))
		}
	}

	return rank(counts, n), nil
}

// TransactionsSince returns the transactions recorded within the last days before now.
func (e *Engine) TransactionsSince(ctx context.Context, now time.Time, days int) ([]domain.MarketTransaction, error) {
	threshold := daysAgo(now, days)

	return e.filter(ctx, func(t domain.MarketTransaction) bool {
		return !t.Timestamp.Before(threshold)
	})
}

// PaidUncompleted returns the transactions still waiting for fulfilment.
func (e *Engine) PaidUncompleted(ctx context.Context) ([]domain.MarketTransaction, error) {
	return e.filter(ctx, func(t domain.MarketTransaction) bool {
		return t.Status == domain.StatusPaid
	})
}

func (e *Engine) filter(ctx context.Context, keep func(domain.MarketTransaction) bool) ([]domain.MarketTransaction, error) {
	txs, err := e.txs.List(ctx)
	if err != nil {
		return nil, err
	}

	out := []domain.MarketTransaction{}

	for _, t := range txs {
		if keep(t) {
			out = append(out, t)
		}
	}

	return out, nil
}

// TopItems ranks items by the number of transactions that were not cancelled.
func (e *Engine) TopItems(ctx context.Context, m int) ([]domain.RankedID, error) {
	return e.countBy(ctx, m, func(t domain.MarketTransaction) string { return t.ItemID })
}

// TopBuyers ranks buyers by the number of transactions that were not cancelled.
func (e *Engine) TopBuyers(ctx context.Context, m int) ([]domain.RankedID, error) {
	return e.countBy(ctx, m, func(t domain.MarketTransaction) string { return t.BuyerID })
}

// TopSellers ranks sellers by the number of transactions that were not cancelled.
func (e *Engine) TopSellers(ctx context.Context, m int) ([]domain.RankedID, error) {
	return e.countBy(ctx, m, func(t domain.MarketTransaction) string { return t.SellerID })
}

func (e *Engine) countBy(ctx context.Context, m int, key func(domain.MarketTransaction) string) ([]domain.RankedID, error) {
	txs, err := e.txs.List(ctx)
	if err != nil {
		return nil, err
	}

	counts := make(map[string]decimal.Decimal)
	one := decimal.NewFromInt(1)

	for _, t := range txs {
		if t.Status == domain.StatusCancelled {
			continue
		}

		k := key(t)
		counts[k] = counts[k].Add(one)
	}

	return rank(counts, m), nil
}

// Spending sums what the buyer paid for orders placed within the last days before now,
// ignoring cancelled ones.
func (e *Engine) Spending(ctx context.Context, buyerID string, now time.Time, days int) (decimal.Decimal, error) {
	u, err := e.users.Get(ctx, buyerID)
	if err != nil {
		return decimal.Zero, err
	}

	txs, err := e.txs.List(ctx)
	if err != nil {
		return decimal.Zero, err
	}

	orders := make(map[string]struct{}, len(u.OrderIDs))
	for _, id := range u.OrderIDs {
		orders[id] = struct{}{}
	}

	threshold := daysAgo(now, days)
	total := decimal.Zero

	for _, t := range txs {
		if _, ok := orders[t.ID]; !ok {
			continue
		}

		if t.Status != domain.StatusCancelled && !t.Timestamp.Before(threshold) {
			total = total.Add(t.Amount)
		}
	}

	return total, nil
}

// Orders returns the user's order ids having the given status, in order of purchase.
func (e *Engine) Orders(ctx context.Context, userID string, status domain.TransactionStatus) ([]string, error) {
	u, err := e.users.Get(ctx, userID)
	if err != nil {
		return nil, err
	}

	return e.txs.ByStatus(ctx, u.OrderIDs, status)
}

// PopularItems ranks the seller's items by units sold within PopularityWindow before now.
func (e *Engine) PopularItems(ctx context.Context, sellerID string, now time.Time, k int) ([]domain.RankedID, error) {
	sold, err := e.sellerTotals(ctx, sellerID, now,
		func(t domain.MarketTransaction) (string, decimal.Decimal) {
			return t.ItemID, decimal.NewFromInt32(t.Quantity)
		})
	if err != nil {
		return nil, err
	}

	return rank(sold, k), nil
}

// LoyalCustomer returns the buyer who spent most with the seller within PopularityWindow before now.
// found is false when nobody bought from the seller in that window.
func (e *Engine) LoyalCustomer(ctx context.Context, sellerID string, now time.Time) (domain.LoyalCustomer, bool, error) {
	spent, err := e.sellerTotals(ctx, sellerID, now,
		func(t domain.MarketTransaction) (string, decimal.Decimal) {
			return t.BuyerID, t.Amount
		})
	if err != nil {
		return domain.LoyalCustomer{}, false, err
	}

	top := rank(spent, 1)
	if len(top) == 0 {
		zerolog.Ctx(ctx).Debug().Str("seller_id", sellerID).Msg("no recent buyers")
		return domain.LoyalCustomer{}, false, nil
	}

	return domain.LoyalCustomer{BuyerID: top[0].ID, Total: top[0].Value}, true, nil
}

func (e *Engine) sellerTotals(
	ctx context.Context,
	sellerID string,
	now time.Time,
	value func(domain.MarketTransaction) (string, decimal.Decimal),
) (map[string]decimal.Decimal, error) {
	txs, err := e.txs.List(ctx)
	if err != nil {
		return nil, err
	}

	threshold := now.Add(-PopularityWindow)
	totals := make(map[string]decimal.Decimal)

	for _, t := range txs {
		if t.SellerID != sellerID || t.Status == domain.StatusCancelled || t.Timestamp.Before(threshold) {
			continue
		}

		k, v := value(t)
		totals[k] = totals[k].Add(v)
	}

	return totals, nil
}
