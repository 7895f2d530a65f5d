package marketservice

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/go-petr/market-ledger/internal/accountrepo"
	"github.com/go-petr/market-ledger/internal/domain"
	"github.com/go-petr/market-ledger/internal/itemrepo"
	"github.com/go-petr/market-ledger/internal/transactionrepo"
	"github.com/go-petr/market-ledger/internal/transferrepo"
	"github.com/go-petr/market-ledger/internal/transferservice"
	"github.com/go-petr/market-ledger/internal/userrepo"
	"github.com/go-petr/market-ledger/internal/userservice"
	"github.com/go-petr/market-ledger/pkg/errorspkg"
	"github.com/go-petr/market-ledger/pkg/randompkg"
	"github.com/golang/mock/gomock"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
)

var testNow = time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)

type env struct {
	accounts  *accountrepo.RepoMem
	items     *itemrepo.RepoMem
	txs       *transactionrepo.RepoMem
	users     *userservice.Service
	userRepo  *userrepo.RepoMem
	transfers *transferservice.Service
	service   *Service
	publisher *MockPublisher
}

func newEnv(t *testing.T) *env {
	ctrl := gomock.NewController(t)
	clock := func() time.Time { return testNow }

	e := &env{
		accounts:  accountrepo.NewRepoMem(clock),
		items:     itemrepo.NewRepoMem(),
		txs:       transactionrepo.NewRepoMem(clock),
		publisher: NewMockPublisher(ctrl),
	}

	e.userRepo = userrepo.NewRepoMem(clock)
	e.users = userservice.New(e.userRepo, e.accounts)

	e.transfers = transferservice.New(transferrepo.NewRepoMem(e.accounts), e.accounts)
	e.service = New(e.userRepo, e.items, e.txs, e.transfers, e.publisher)
	e.service.now = clock

	return e
}

func (e *env) user(t *testing.T, role domain.Role, balance string) domain.User {
	ctx := context.Background()

	u, err := e.users.Register(ctx, randompkg.Username(), role)
	require.NoError(t, err)

	if b := decimal.RequireFromString(balance); b.IsPositive() {
		_, _, err = e.accounts.Credit(ctx, u.AccountID, b, domain.KindTopUp, randompkg.String(8))
		require.NoError(t, err)
	}

	return u
}

func (e *env) balance(t *testing.T, u domain.User) decimal.Decimal {
	acc, err := e.accounts.Get(context.Background(), u.AccountID)
	require.NoError(t, err)

	return acc.Balance
}

type eventTypeMatcher struct {
	eventType string
}

func (m eventTypeMatcher) Matches(x interface{}) bool {
	ev, ok := x.(domain.TransactionEvent)
	return ok && ev.Type == m.eventType && ev.OccurredAt.Equal(testNow)
}

func (m eventTypeMatcher) String() string {
	return "is a " + m.eventType + " event"
}

func eventOfType(eventType string) gomock.Matcher {
	return eventTypeMatcher{eventType}
}

func TestRegisterItem(t *testing.T) {
	ctx := context.Background()
	e := newEnv(t)

	seller := e.user(t, domain.RoleSeller, "0")
	buyer := e.user(t, domain.RoleBuyer, "0")

	it, err := e.service.RegisterItem(ctx, seller.ID, "lamp", decimal.NewFromInt(10), 3)
	require.NoError(t, err)
	require.Equal(t, seller.ID, it.SellerID)

	_, err = e.service.RegisterItem(ctx, buyer.ID, "lamp", decimal.NewFromInt(10), 3)
	require.ErrorIs(t, err, domain.ErrNotSeller)

	_, err = e.service.RegisterItem(ctx, "missing", "lamp", decimal.NewFromInt(10), 3)
	require.ErrorIs(t, err, domain.ErrUserNotFound)

	it, err = e.service.Replenish(ctx, seller.ID, it.ID, 2)
	require.NoError(t, err)
	require.Equal(t, int32(5), it.Stock)

	it, err = e.service.Discard(ctx, seller.ID, it.ID, 4)
	require.NoError(t, err)
	require.Equal(t, int32(1), it.Stock)

	_, err = e.service.Discard(ctx, seller.ID, it.ID, 2)
	require.ErrorIs(t, err, domain.ErrInsufficientStock)

	other := e.user(t, domain.RoleSeller, "0")
	_, err = e.service.Replenish(ctx, other.ID, it.ID, 1)
	require.ErrorIs(t, err, domain.ErrNotSeller)

	items, err := e.service.ListItems(ctx, seller.ID)
	require.NoError(t, err)
	require.Equal(t, []domain.Item{it}, items)
}

func TestPurchase(t *testing.T) {
	ctx := context.Background()

	testCases := []struct {
		name        string
		buyerFunds  string
		qty         int32
		sellerBuys  bool
		buildStubs  func(p *MockPublisher)
		wantErr     error
		wantBuyer   string
		wantSeller  string
		wantStock   int32
		wantRecords int
	}{
		{
			name:       "OK",
			buyerFunds: "100",
			qty:        3,
			buildStubs: func(p *MockPublisher) {
				p.EXPECT().Publish(gomock.Any(), eventOfType(domain.EventTransactionPaid)).Times(1).Return(nil)
			},
			wantBuyer:   "70",
			wantSeller:  "30",
			wantStock:   2,
			wantRecords: 1,
		},
		{
			name:       "Insufficient funds",
			buyerFunds: "25",
			qty:        3,
			buildStubs: func(p *MockPublisher) {
				p.EXPECT().Publish(gomock.Any(), gomock.Any()).Times(0)
			},
			wantErr:    domain.ErrInsufficientFunds,
			wantBuyer:  "25",
			wantSeller: "0",
			wantStock:  5,
		},
		{
			name:       "Insufficient stock",
			buyerFunds: "1000",
			qty:        6,
			buildStubs: func(p *MockPublisher) {
				p.EXPECT().Publish(gomock.Any(), gomock.Any()).Times(0)
			},
			wantErr:    domain.ErrInsufficientStock,
			wantBuyer:  "1000",
			wantSeller: "0",
			wantStock:  5,
		},
		{
			name:       "Invalid quantity",
			buyerFunds: "100",
			qty:        0,
			buildStubs: func(p *MockPublisher) {
				p.EXPECT().Publish(gomock.Any(), gomock.Any()).Times(0)
			},
			wantErr:    domain.ErrInvalidQuantity,
			wantBuyer:  "100",
			wantSeller: "0",
			wantStock:  5,
		},
		{
			name:       "Seller buys own item",
			buyerFunds: "100",
			qty:        1,
			sellerBuys: true,
			buildStubs: func(p *MockPublisher) {
				p.EXPECT().Publish(gomock.Any(), gomock.Any()).Times(0)
			},
			wantErr:    domain.ErrSameAccount,
			wantBuyer:  "100",
			wantSeller: "0",
			wantStock:  5,
		},
	}

	for i := range testCases {
		tc := testCases[i]

		t.Run(tc.name, func(t *testing.T) {
			e := newEnv(t)
			tc.buildStubs(e.publisher)

			seller := e.user(t, domain.RoleSeller, "0")
			buyer := e.user(t, domain.RoleBuyer, tc.buyerFunds)

			it, err := e.service.RegisterItem(ctx, seller.ID, "mug", decimal.NewFromInt(10), 5)
			require.NoError(t, err)

			buyerID := buyer.ID
			if tc.sellerBuys {
				buyerID = seller.ID
			}

			tx, err := e.service.Purchase(ctx, buyerID, it.ID, tc.qty)
			require.ErrorIs(t, err, tc.wantErr)

			if tc.wantErr == nil {
				require.Equal(t, domain.StatusPaid, tx.Status)
				require.True(t, tx.Amount.Equal(decimal.NewFromInt(10*int64(tc.qty))))
				require.Equal(t, tc.qty, tx.Quantity)
				require.Equal(t, testNow, tx.Timestamp)

				u, err := e.users.Get(ctx, buyer.ID)
				require.NoError(t, err)
				require.Equal(t, []string{tx.ID}, u.OrderIDs)

				journal, err := e.accounts.Journal(ctx, buyer.AccountID)
				require.NoError(t, err)
				last, _ := journal.Last()
				require.Equal(t, tx.ID, last.TransactionID)
			}

			if !tc.sellerBuys {
				require.True(t, e.balance(t, buyer).Equal(decimal.RequireFromString(tc.wantBuyer)))
			}

			require.True(t, e.balance(t, seller).Equal(decimal.RequireFromString(tc.wantSeller)))

			got, err := e.items.Get(ctx, it.ID)
			require.NoError(t, err)
			require.Equal(t, tc.wantStock, got.Stock)

			txs, err := e.txs.List(ctx)
			require.NoError(t, err)
			require.Len(t, txs, tc.wantRecords)
		})
	}
}

// orderlessUsers serves lookups from the wrapped repo but cannot record orders.
type orderlessUsers struct {
	UserRepo
}

func (orderlessUsers) AddOrder(context.Context, string, string) error {
	return errorspkg.ErrInternal
}

func TestPurchaseOrderNotRecorded(t *testing.T) {
	ctx := context.Background()
	e := newEnv(t)
	e.publisher.EXPECT().Publish(gomock.Any(), gomock.Any()).Times(0)

	seller := e.user(t, domain.RoleSeller, "0")
	buyer := e.user(t, domain.RoleBuyer, "100")

	it, err := e.service.RegisterItem(ctx, seller.ID, "mug", decimal.NewFromInt(10), 5)
	require.NoError(t, err)

	svc := New(orderlessUsers{e.userRepo}, e.items, e.txs, e.transfers, e.publisher)
	svc.now = e.service.now

	_, err = svc.Purchase(ctx, buyer.ID, it.ID, 2)
	require.ErrorIs(t, err, errorspkg.ErrInternal)

	require.True(t, e.balance(t, buyer).Equal(decimal.NewFromInt(100)))
	require.True(t, e.balance(t, seller).Equal(decimal.Zero))

	got, err := e.items.Get(ctx, it.ID)
	require.NoError(t, err)
	require.Equal(t, int32(5), got.Stock)

	txs, err := e.txs.List(ctx)
	require.NoError(t, err)
	require.Len(t, txs, 1)
	require.Equal(t, domain.StatusCancelled, txs[0].Status)
}

func TestPurchaseWaitsForStateLock(t *testing.T) {
	ctx := context.Background()
	e := newEnv(t)
	e.publisher.EXPECT().Publish(gomock.Any(), eventOfType(domain.EventTransactionPaid)).Times(1).Return(nil)

	seller := e.user(t, domain.RoleSeller, "0")
	buyer := e.user(t, domain.RoleBuyer, "100")

	it, err := e.service.RegisterItem(ctx, seller.ID, "mug", decimal.NewFromInt(10), 5)
	require.NoError(t, err)

	mu := &sync.RWMutex{}
	e.service.WithStateLock(mu)

	// A snapshot export holds the lock exclusively.
	mu.Lock()

	done := make(chan error, 1)

	go func() {
		_, err := e.service.Purchase(ctx, buyer.ID, it.ID, 1)
		done <- err
	}()

	select {
	case <-done:
		t.Fatal("Purchase finished during a snapshot export")
	case <-time.After(50 * time.Millisecond):
	}

	require.True(t, e.balance(t, buyer).Equal(decimal.NewFromInt(100)))

	mu.Unlock()

	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(time.Second):
		t.Fatal("Purchase did not finish after the export")
	}

	require.True(t, e.balance(t, buyer).Equal(decimal.NewFromInt(90)))
}

func TestPurchaseUnknownItem(t *testing.T) {
	e := newEnv(t)
	buyer := e.user(t, domain.RoleBuyer, "10")

	_, err := e.service.Purchase(context.Background(), buyer.ID, "missing", 1)
	require.ErrorIs(t, err, domain.ErrItemNotFound)
}

func TestCompleteCancel(t *testing.T) {
	ctx := context.Background()

	t.Run("Complete", func(t *testing.T) {
		e := newEnv(t)
		e.publisher.EXPECT().Publish(gomock.Any(), eventOfType(domain.EventTransactionPaid)).Return(nil)
		e.publisher.EXPECT().Publish(gomock.Any(), eventOfType(domain.EventTransactionCompleted)).Return(nil)

		seller := e.user(t, domain.RoleSeller, "0")
		buyer := e.user(t, domain.RoleBuyer, "50")
		it, err := e.service.RegisterItem(ctx, seller.ID, "pen", decimal.NewFromInt(5), 10)
		require.NoError(t, err)

		tx, err := e.service.Purchase(ctx, buyer.ID, it.ID, 2)
		require.NoError(t, err)

		done, err := e.service.Complete(ctx, tx.ID)
		require.NoError(t, err)
		require.Equal(t, domain.StatusCompleted, done.Status)

		_, err = e.service.Cancel(ctx, tx.ID)
		require.ErrorIs(t, err, domain.ErrInvalidStatusTransition)

		_, err = e.service.Complete(ctx, "missing")
		require.ErrorIs(t, err, domain.ErrTransactionNotFound)
	})

	t.Run("Cancel refunds and restocks", func(t *testing.T) {
		e := newEnv(t)
		e.publisher.EXPECT().Publish(gomock.Any(), eventOfType(domain.EventTransactionPaid)).Return(nil)
		e.publisher.EXPECT().Publish(gomock.Any(), eventOfType(domain.EventTransactionCancelled)).Return(nil)

		seller := e.user(t, domain.RoleSeller, "0")
		buyer := e.user(t, domain.RoleBuyer, "50")
		it, err := e.service.RegisterItem(ctx, seller.ID, "pen", decimal.NewFromInt(5), 10)
		require.NoError(t, err)

		tx, err := e.service.Purchase(ctx, buyer.ID, it.ID, 2)
		require.NoError(t, err)

		cancelled, err := e.service.Cancel(ctx, tx.ID)
		require.NoError(t, err)
		require.Equal(t, domain.StatusCancelled, cancelled.Status)

		require.True(t, e.balance(t, buyer).Equal(decimal.NewFromInt(50)))
		require.True(t, e.balance(t, seller).IsZero())

		got, err := e.items.Get(ctx, it.ID)
		require.NoError(t, err)
		require.Equal(t, int32(10), got.Stock)

		journal, err := e.accounts.Journal(ctx, buyer.AccountID)
		require.NoError(t, err)
		last, _ := journal.Last()
		require.Equal(t, tx.ID+RefundSuffix, last.TransactionID)
		require.Equal(t, domain.KindPurchase, last.Kind)

		_, err = e.service.Complete(ctx, tx.ID)
		require.ErrorIs(t, err, domain.ErrInvalidStatusTransition)
	})

	t.Run("Cancel fails when seller spent the money", func(t *testing.T) {
		e := newEnv(t)
		e.publisher.EXPECT().Publish(gomock.Any(), eventOfType(domain.EventTransactionPaid)).Return(nil)

		seller := e.user(t, domain.RoleSeller, "0")
		buyer := e.user(t, domain.RoleBuyer, "50")
		it, err := e.service.RegisterItem(ctx, seller.ID, "pen", decimal.NewFromInt(5), 10)
		require.NoError(t, err)

		tx, err := e.service.Purchase(ctx, buyer.ID, it.ID, 2)
		require.NoError(t, err)

		_, _, err = e.accounts.Debit(ctx, seller.AccountID, decimal.NewFromInt(10), domain.KindWithdrawal, "W")
		require.NoError(t, err)

		_, err = e.service.Cancel(ctx, tx.ID)
		require.ErrorIs(t, err, domain.ErrInsufficientFunds)

		status, err := e.txs.StatusOf(ctx, tx.ID)
		require.NoError(t, err)
		require.Equal(t, domain.StatusPaid, status)
	})
}
