package snapshotrepo

import (
	"context"
	"database/sql"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/go-petr/market-ledger/internal/domain"
	"github.com/go-petr/market-ledger/pkg/configpkg"
	"github.com/go-petr/market-ledger/pkg/dbpkg"
	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
)

// store is implemented by every snapshot repo.
type store interface {
	Save(ctx context.Context, snap domain.Snapshot) error
	Load(ctx context.Context) (domain.Snapshot, error)
}

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func testSnapshot() domain.Snapshot {
	ts := time.Date(2024, 8, 1, 10, 20, 30, 123456000, time.UTC)

	return domain.Snapshot{
		Version: domain.SnapshotVersion,
		TakenAt: ts,
		Users: []domain.UserRecord{
			{UserID: "u1", Username: "alice", Role: domain.RoleBuyer, CreatedAt: ts},
			{UserID: "u2", Username: "bob", Role: domain.RoleSeller, CreatedAt: ts},
		},
		Items: []domain.Item{
			{ID: "i1", SellerID: "u2", Name: "lamp", Price: dec("12.5"), Stock: 4},
		},
		Accounts: []domain.AccountRecord{
			{AccountID: "BA_u1", OwnerID: "u1", Balance: dec("75")},
			{AccountID: "BA_u2", OwnerID: "u2", Balance: dec("25")},
		},
		Entries: []domain.EntryRecord{
			{AccountID: "BA_u1", Seq: 0, TransactionID: "T0", Timestamp: ts, Amount: dec("100"), Kind: domain.KindTopUp},
			{AccountID: "BA_u1", Seq: 1, TransactionID: "T1", Timestamp: ts.Add(time.Second), Amount: dec("-25"), Kind: domain.KindPurchase},
			{AccountID: "BA_u2", Seq: 0, TransactionID: "T1", Timestamp: ts.Add(time.Second), Amount: dec("25"), Kind: domain.KindPurchase},
		},
		Transactions: []domain.TransactionRecord{
			{
				TransactionID:         "T1",
				ItemID:                "i1",
				BuyerID:               "u1",
				SellerID:              "u2",
				Amount:                dec("25"),
				Quantity:              2,
				TimestampEpochSeconds: ts.Unix(),
				TimestampNanos:        int32(ts.Nanosecond()),
				StatusCode:            int(domain.StatusCompleted),
			},
		},
	}
}

var snapshotCmp = []cmp.Option{
	cmpopts.EquateEmpty(),
	cmp.Comparer(func(a, b decimal.Decimal) bool { return a.Equal(b) }),
	cmp.Comparer(func(a, b time.Time) bool { return a.Equal(b) }),
}

func testRoundTrip(t *testing.T, s store) {
	ctx := context.Background()

	_, err := s.Load(ctx)
	require.ErrorIs(t, err, domain.ErrSnapshotNotFound)

	want := testSnapshot()
	require.NoError(t, s.Save(ctx, want))

	got, err := s.Load(ctx)
	require.NoError(t, err)

	if diff := cmp.Diff(want, got, snapshotCmp...); diff != "" {
		t.Fatalf("Load() mismatch (-want +got):\n%s", diff)
	}

	// A second save replaces the first one.
	next := testSnapshot()
	next.Items = nil
	next.Entries = next.Entries[:1]
	next.Accounts = next.Accounts[:1]
	next.Accounts[0].Balance = dec("100")
	next.Transactions = nil

	require.NoError(t, s.Save(ctx, next))

	got, err = s.Load(ctx)
	require.NoError(t, err)

	if diff := cmp.Diff(next, got, snapshotCmp...); diff != "" {
		t.Fatalf("Load() after overwrite mismatch (-want +got):\n%s", diff)
	}
}

func TestRepoFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "ledger.yaml")
	testRoundTrip(t, NewRepoFile(path))

	_, err := os.Stat(path + ".tmp")
	require.ErrorIs(t, err, os.ErrNotExist)
}

func TestRepoFileCorrupt(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "ledger.yaml")

	require.NoError(t, os.WriteFile(path, []byte("version: [not a number"), 0o600))

	_, err := NewRepoFile(path).Load(ctx)
	require.ErrorIs(t, err, domain.ErrCorruptSnapshot)

	require.NoError(t, os.WriteFile(path, []byte("version: 99\n"), 0o600))

	_, err = NewRepoFile(path).Load(ctx)
	require.ErrorIs(t, err, domain.ErrUnsupportedSnapshot)
}

func TestRepoSQLite(t *testing.T) {
	ctx := context.Background()

	db, err := dbpkg.Setup(configpkg.DriverSQLite, filepath.Join(t.TempDir(), "ledger.db"))
	require.NoError(t, err)

	r, err := NewRepoSQL(ctx, db, configpkg.DriverSQLite)
	require.NoError(t, err)

	t.Cleanup(func() { require.NoError(t, r.Close()) })

	testRoundTrip(t, r)
}

func TestNewRepoSQLUnsupportedDriver(t *testing.T) {
	_, err := NewRepoSQL(context.Background(), &sql.DB{}, "mysql")
	require.Error(t, err)
}
