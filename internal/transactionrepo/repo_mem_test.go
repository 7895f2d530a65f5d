package transactionrepo

import (
	"context"
	"testing"
	"time"

	"github.com/go-petr/market-ledger/internal/domain"
	"github.com/go-petr/market-ledger/pkg/idpkg"
	"github.com/go-petr/market-ledger/pkg/randompkg"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
)

var testNow = time.Date(2024, 5, 20, 15, 30, 0, 0, time.UTC)

func clock() time.Time { return testNow }

func createRandomTransaction(t *testing.T, r *RepoMem) domain.MarketTransaction {
	arg := domain.CreateTransactionParams{
		ID:       idpkg.New(),
		ItemID:   randompkg.String(6),
		BuyerID:  randompkg.String(6),
		SellerID: randompkg.String(6),
		Amount:   randompkg.MoneyBetween(1, 100),
		Quantity: randompkg.IntBetween(1, 5),
	}

	tx, err := r.Create(context.Background(), arg)
	require.NoError(t, err)

	require.Equal(t, arg.ID, tx.ID)
	require.Equal(t, arg.ItemID, tx.ItemID)
	require.Equal(t, arg.BuyerID, tx.BuyerID)
	require.Equal(t, arg.SellerID, tx.SellerID)
	require.True(t, arg.Amount.Equal(tx.Amount))
	require.Equal(t, arg.Quantity, tx.Quantity)
	require.Equal(t, testNow, tx.Timestamp)
	require.Equal(t, domain.StatusPaid, tx.Status)

	return tx
}

func TestCreate(t *testing.T) {
	r := NewRepoMem(clock)
	existing := createRandomTransaction(t, r)

	testCases := []struct {
		name    string
		arg     domain.CreateTransactionParams
		wantErr error
	}{
		{
			name:    "ErrDuplicateTransaction",
			arg:     domain.CreateTransactionParams{ID: existing.ID, Amount: decimal.NewFromInt(1), Quantity: 1},
			wantErr: domain.ErrDuplicateTransaction,
		},
		{
			name:    "ErrInvalidAmount",
			arg:     domain.CreateTransactionParams{ID: idpkg.New(), Amount: decimal.Zero, Quantity: 1},
			wantErr: domain.ErrInvalidAmount,
		},
		{
			name:    "ErrInvalidQuantity",
			arg:     domain.CreateTransactionParams{ID: idpkg.New(), Amount: decimal.NewFromInt(1), Quantity: 0},
			wantErr: domain.ErrInvalidQuantity,
		},
	}

	for i := range testCases {
		tc := testCases[i]

		t.Run(tc.name, func(t *testing.T) {
			res, err := r.Create(context.Background(), tc.arg)
			require.ErrorIs(t, err, tc.wantErr)
			require.Empty(t, res)
		})
	}

	got, err := r.Get(context.Background(), existing.ID)
	require.NoError(t, err)
	require.Equal(t, existing, got)
}

func TestGetNotFound(t *testing.T) {
	r := NewRepoMem(clock)

	_, err := r.Get(context.Background(), "missing")
	require.ErrorIs(t, err, domain.ErrTransactionNotFound)

	_, err = r.StatusOf(context.Background(), "missing")
	require.ErrorIs(t, err, domain.ErrTransactionNotFound)
}

func TestSetStatus(t *testing.T) {
	ctx := context.Background()
	r := NewRepoMem(clock)
	tx := createRandomTransaction(t, r)

	updated, err := r.SetStatus(ctx, tx.ID, domain.StatusCompleted)
	require.NoError(t, err)
	require.Equal(t, domain.StatusCompleted, updated.Status)

	// Only the status changes.
	tx.Status = domain.StatusCompleted
	require.Equal(t, tx, updated)

	status, err := r.StatusOf(ctx, tx.ID)
	require.NoError(t, err)
	require.Equal(t, domain.StatusCompleted, status)

	_, err = r.SetStatus(ctx, tx.ID, domain.TransactionStatus(7))
	require.ErrorIs(t, err, domain.ErrInvalidStatus)

	_, err = r.SetStatus(ctx, "missing", domain.StatusPaid)
	require.ErrorIs(t, err, domain.ErrTransactionNotFound)
}

func TestTransition(t *testing.T) {
	ctx := context.Background()

	testCases := []struct {
		name    string
		steps   []domain.TransactionStatus
		wantErr error
		want    domain.TransactionStatus
	}{
		{name: "Complete", steps: []domain.TransactionStatus{domain.StatusCompleted}, want: domain.StatusCompleted},
		{name: "Cancel", steps: []domain.TransactionStatus{domain.StatusCancelled}, want: domain.StatusCancelled},
		{
			name:    "Cancel completed",
			steps:   []domain.TransactionStatus{domain.StatusCompleted, domain.StatusCancelled},
			wantErr: domain.ErrInvalidStatusTransition,
			want:    domain.StatusCompleted,
		},
		{
			name:    "Complete twice",
			steps:   []domain.TransactionStatus{domain.StatusCompleted, domain.StatusCompleted},
			wantErr: domain.ErrInvalidStatusTransition,
			want:    domain.StatusCompleted,
		},
		{
			name:    "Back to paid",
			steps:   []domain.TransactionStatus{domain.StatusPaid},
			wantErr: domain.ErrInvalidStatusTransition,
			want:    domain.StatusPaid,
		},
	}

	for i := range testCases {
		tc := testCases[i]

		t.Run(tc.name, func(t *testing.T) {
			r := NewRepoMem(clock)
			tx := createRandomTransaction(t, r)

			var err error
			for _, s := range tc.steps {
				_, err = r.Transition(ctx, tx.ID, s)
			}

			require.ErrorIs(t, err, tc.wantErr)

			status, err := r.StatusOf(ctx, tx.ID)
			require.NoError(t, err)
			require.Equal(t, tc.want, status)
		})
	}
}

func TestByStatus(t *testing.T) {
	ctx := context.Background()
	r := NewRepoMem(clock)

	tx1 := createRandomTransaction(t, r)
	tx2 := createRandomTransaction(t, r)
	tx3 := createRandomTransaction(t, r)

	_, err := r.SetStatus(ctx, tx2.ID, domain.StatusCompleted)
	require.NoError(t, err)

	ids := []string{tx3.ID, "unknown", tx2.ID, tx1.ID}

	paid, err := r.ByStatus(ctx, ids, domain.StatusPaid)
	require.NoError(t, err)
	require.Equal(t, []string{tx3.ID, tx1.ID}, paid)

	completed, err := r.ByStatus(ctx, ids, domain.StatusCompleted)
	require.NoError(t, err)
	require.Equal(t, []string{tx2.ID}, completed)

	cancelled, err := r.ByStatus(ctx, ids, domain.StatusCancelled)
	require.NoError(t, err)
	require.Empty(t, cancelled)

	_, err = r.ByStatus(ctx, ids, domain.TransactionStatus(-1))
	require.ErrorIs(t, err, domain.ErrInvalidStatus)
}

func TestListRestore(t *testing.T) {
	ctx := context.Background()
	r := NewRepoMem(clock)

	var want []domain.MarketTransaction
	for i := 0; i < 5; i++ {
		want = append(want, createRandomTransaction(t, r))
	}

	got, err := r.List(ctx)
	require.NoError(t, err)
	require.Equal(t, want, got)

	restored := NewRepoMem(clock)
	require.NoError(t, restored.Restore(ctx, got))

	again, err := restored.List(ctx)
	require.NoError(t, err)
	require.Equal(t, want, again)

	dup := append(got, got[0])
	require.ErrorIs(t, restored.Restore(ctx, dup), domain.ErrDuplicateTransaction)
}
