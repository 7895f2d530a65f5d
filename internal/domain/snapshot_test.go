package domain

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
)

func TestTransactionRecord(t *testing.T) {
	ts := time.Date(2024, 8, 1, 23, 59, 59, 999_000_000, time.UTC)

	tx := MarketTransaction{
		ID:        "T1",
		ItemID:    "i1",
		BuyerID:   "u1",
		SellerID:  "u2",
		Amount:    decimal.NewFromInt(25),
		Quantity:  2,
		Timestamp: ts,
		Status:    StatusCompleted,
	}

	rec := NewTransactionRecord(tx)
	require.Equal(t, ts.Unix(), rec.TimestampEpochSeconds)
	require.EqualValues(t, 999_000_000, rec.TimestampNanos)

	got, err := rec.Transaction()
	require.NoError(t, err)
	require.True(t, got.Timestamp.Equal(ts), "got %v, want %v", got.Timestamp, ts)

	// A journal entry written right after the transaction still sorts after it.
	entryAt := ts.Add(time.Millisecond / 2)
	require.True(t, got.Timestamp.Before(entryAt))

	testCases := []struct {
		name    string
		mutate  func(r *TransactionRecord)
		wantErr error
	}{
		{name: "UnknownStatus", mutate: func(r *TransactionRecord) { r.StatusCode = 7 }, wantErr: ErrInvalidStatus},
		{name: "NegativeNanos", mutate: func(r *TransactionRecord) { r.TimestampNanos = -1 }, wantErr: ErrCorruptSnapshot},
		{name: "NanosOverflow", mutate: func(r *TransactionRecord) { r.TimestampNanos = int32(time.Second) }, wantErr: ErrCorruptSnapshot},
	}

	for i := range testCases {
		tc := testCases[i]

		t.Run(tc.name, func(t *testing.T) {
			r := rec
			tc.mutate(&r)

			_, err := r.Transaction()
			require.ErrorIs(t, err, tc.wantErr)
		})
	}
}
