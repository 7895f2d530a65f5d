package snapshotrepo

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/go-petr/market-ledger/internal/domain"
	"github.com/go-petr/market-ledger/pkg/configpkg"
	"github.com/go-petr/market-ledger/pkg/dbpkg"
	"github.com/go-petr/market-ledger/pkg/errorspkg"
	"github.com/lib/pq"
	"github.com/rs/zerolog"

	// Registers the sqlite3 driver.
	_ "github.com/mattn/go-sqlite3"
)

const postgresSchema = `
CREATE TABLE IF NOT EXISTS snapshot_meta (
    id integer PRIMARY KEY,
    version integer NOT NULL,
    taken_at timestamptz NOT NULL
);
CREATE TABLE IF NOT EXISTS snapshot_users (
    user_id varchar PRIMARY KEY,
    username varchar NOT NULL UNIQUE,
    role varchar NOT NULL,
    created_at timestamptz NOT NULL
);
CREATE TABLE IF NOT EXISTS snapshot_items (
    item_id varchar PRIMARY KEY,
    seller_id varchar NOT NULL,
    name varchar NOT NULL,
    price numeric NOT NULL CHECK (price > 0),
    stock integer NOT NULL CHECK (stock >= 0)
);
CREATE TABLE IF NOT EXISTS snapshot_accounts (
    account_id varchar PRIMARY KEY,
    owner_id varchar NOT NULL UNIQUE,
    balance numeric NOT NULL CHECK (balance >= 0)
);
CREATE TABLE IF NOT EXISTS snapshot_entries (
    account_id varchar NOT NULL,
    seq integer NOT NULL,
    transaction_id varchar NOT NULL,
    ts timestamptz NOT NULL,
    amount numeric NOT NULL,
    kind varchar NOT NULL,
    PRIMARY KEY (account_id, seq)
);
CREATE TABLE IF NOT EXISTS snapshot_transactions (
    transaction_id varchar PRIMARY KEY,
    item_id varchar NOT NULL,
    buyer_id varchar NOT NULL,
    seller_id varchar NOT NULL,
    amount numeric NOT NULL CHECK (amount > 0),
    quantity integer NOT NULL CHECK (quantity > 0),
    ts bigint NOT NULL,
    ts_nanos integer NOT NULL DEFAULT 0 CHECK (ts_nanos >= 0 AND ts_nanos < 1000000000),
    status integer NOT NULL
);
`

const sqliteSchema = `
CREATE TABLE IF NOT EXISTS snapshot_meta (
    id INTEGER PRIMARY KEY,
    version INTEGER NOT NULL,
    taken_at TIMESTAMP NOT NULL
);
CREATE TABLE IF NOT EXISTS snapshot_users (
    user_id TEXT PRIMARY KEY,
    username TEXT NOT NULL UNIQUE,
    role TEXT NOT NULL,
    created_at TIMESTAMP NOT NULL
);
CREATE TABLE IF NOT EXISTS snapshot_items (
    item_id TEXT PRIMARY KEY,
    seller_id TEXT NOT NULL,
    name TEXT NOT NULL,
    price TEXT NOT NULL,
    stock INTEGER NOT NULL
);
CREATE TABLE IF NOT EXISTS snapshot_accounts (
    account_id TEXT PRIMARY KEY,
    owner_id TEXT NOT NULL UNIQUE,
    balance TEXT NOT NULL
);
CREATE TABLE IF NOT EXISTS snapshot_entries (
    account_id TEXT NOT NULL,
    seq INTEGER NOT NULL,
    transaction_id TEXT NOT NULL,
    ts TIMESTAMP NOT NULL,
    amount TEXT NOT NULL,
    kind TEXT NOT NULL,
    PRIMARY KEY (account_id, seq)
);
CREATE TABLE IF NOT EXISTS snapshot_transactions (
    transaction_id TEXT PRIMARY KEY,
    item_id TEXT NOT NULL,
    buyer_id TEXT NOT NULL,
    seller_id TEXT NOT NULL,
    amount TEXT NOT NULL,
    quantity INTEGER NOT NULL,
    ts INTEGER NOT NULL,
    ts_nanos INTEGER NOT NULL DEFAULT 0,
    status INTEGER NOT NULL
);
`

var tables = []string{
	"snapshot_meta",
	"snapshot_users",
	"snapshot_items",
	"snapshot_accounts",
	"snapshot_entries",
	"snapshot_transactions",
}

// RepoSQL keeps the latest snapshot in relational tables.
// Each Save replaces the previous snapshot inside one database transaction.
type RepoSQL struct {
	db     *sql.DB
	driver string
}

// NewRepoSQL returns a RepoSQL for a postgres or sqlite3 connection and creates the tables.
func NewRepoSQL(ctx context.Context, db *sql.DB, driver string) (*RepoSQL, error) {
	schema := sqliteSchema

	switch driver {
	case configpkg.DriverPostgres:
		schema = postgresSchema
	case configpkg.DriverSQLite:
	default:
		return nil, fmt.Errorf("unsupported snapshot driver %q", driver)
	}

	if _, err := db.ExecContext(ctx, schema); err != nil {
		return nil, fmt.Errorf("create snapshot schema: %w", err)
	}

	return &RepoSQL{db: db, driver: driver}, nil
}

// query adapts a '?' query to the driver placeholders.
func (r *RepoSQL) query(q string) string {
	if r.driver == configpkg.DriverPostgres {
		return dbpkg.RebindDollar(q)
	}

	return q
}

// Save replaces the stored snapshot with snap.
func (r *RepoSQL) Save(ctx context.Context, snap domain.Snapshot) error {
	l := zerolog.Ctx(ctx)

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		l.Error().Err(err).Send()
		return errorspkg.ErrInternal
	}

	defer func() {
		if err := tx.Rollback(); err != nil && !errors.Is(err, sql.ErrTxDone) {
			l.Error().Err(err).Send()
		}
	}()

	if err := r.save(ctx, tx, snap); err != nil {
		l.Error().Err(err).Msg("cannot save snapshot")
		return errorspkg.ErrInternal
	}

	if err := tx.Commit(); err != nil {
		l.Error().Err(err).Send()
		return errorspkg.ErrInternal
	}

	return nil
}

func (r *RepoSQL) save(ctx context.Context, tx *sql.Tx, snap domain.Snapshot) error {
	for _, t := range tables {
		if _, err := tx.ExecContext(ctx, "DELETE FROM "+t); err != nil {
			return fmt.Errorf("clear %s: %w", t, err)
		}
	}

	if _, err := tx.ExecContext(ctx, r.query(`INSERT INTO snapshot_meta (id, version, taken_at) VALUES (1, ?, ?)`),
		snap.Version, snap.TakenAt); err != nil {
		return fmt.Errorf("insert meta: %w", err)
	}

	if err := r.insertEach(ctx, tx,
		`INSERT INTO snapshot_users (user_id, username, role, created_at) VALUES (?, ?, ?, ?)`,
		len(snap.Users), func(i int) []any {
			u := snap.Users[i]
			return []any{u.UserID, u.Username, string(u.Role), u.CreatedAt}
		}); err != nil {
		return fmt.Errorf("insert users: %w", err)
	}

	if err := r.insertEach(ctx, tx,
		`INSERT INTO snapshot_items (item_id, seller_id, name, price, stock) VALUES (?, ?, ?, ?, ?)`,
		len(snap.Items), func(i int) []any {
			it := snap.Items[i]
			return []any{it.ID, it.SellerID, it.Name, it.Price, it.Stock}
		}); err != nil {
		return fmt.Errorf("insert items: %w", err)
	}

	if err := r.insertEach(ctx, tx,
		`INSERT INTO snapshot_accounts (account_id, owner_id, balance) VALUES (?, ?, ?)`,
		len(snap.Accounts), func(i int) []any {
			a := snap.Accounts[i]
			return []any{a.AccountID, a.OwnerID, a.Balance}
		}); err != nil {
		return fmt.Errorf("insert accounts: %w", err)
	}

	if err := r.insertEach(ctx, tx,
		`INSERT INTO snapshot_transactions (transaction_id, item_id, buyer_id, seller_id, amount, quantity, ts, ts_nanos, status)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		len(snap.Transactions), func(i int) []any {
			t := snap.Transactions[i]
			return []any{t.TransactionID, t.ItemID, t.BuyerID, t.SellerID, t.Amount, t.Quantity, t.TimestampEpochSeconds, t.TimestampNanos, t.StatusCode}
		}); err != nil {
		return fmt.Errorf("insert transactions: %w", err)
	}

	if err := r.insertEntries(ctx, tx, snap.Entries); err != nil {
		return fmt.Errorf("insert entries: %w", err)
	}

	return nil
}

func (r *RepoSQL) insertEach(ctx context.Context, tx *sql.Tx, q string, n int, row func(int) []any) error {
	if n == 0 {
		return nil
	}

	stmt, err := tx.PrepareContext(ctx, r.query(q))
	if err != nil {
		return err
	}
	defer stmt.Close()

	for i := 0; i < n; i++ {
		if _, err := stmt.ExecContext(ctx, row(i)...); err != nil {
			return err
		}
	}

	return nil
}

var entryColumns = []string{"account_id", "seq", "transaction_id", "ts", "amount", "kind"}

// insertEntries bulk loads the journals. Postgres uses COPY since journals dominate the snapshot size.
func (r *RepoSQL) insertEntries(ctx context.Context, tx *sql.Tx, entries []domain.EntryRecord) error {
	row := func(i int) []any {
		e := entries[i]
		return []any{e.AccountID, e.Seq, e.TransactionID, e.Timestamp, e.Amount, string(e.Kind)}
	}

	if r.driver != configpkg.DriverPostgres {
		return r.insertEach(ctx, tx,
			`INSERT INTO snapshot_entries (account_id, seq, transaction_id, ts, amount, kind) VALUES (?, ?, ?, ?, ?, ?)`,
			len(entries), row)
	}

	stmt, err := tx.PrepareContext(ctx, pq.CopyIn("snapshot_entries", entryColumns...))
	if err != nil {
		return err
	}

	for i := range entries {
		if _, err := stmt.ExecContext(ctx, row(i)...); err != nil {
			stmt.Close()
			return err
		}
	}

	if _, err := stmt.ExecContext(ctx); err != nil {
		stmt.Close()
		return err
	}

	return stmt.Close()
}

// Load returns the stored snapshot.
func (r *RepoSQL) Load(ctx context.Context) (domain.Snapshot, error) {
	l := zerolog.Ctx(ctx)

	var snap domain.Snapshot

	err := r.db.QueryRowContext(ctx, `SELECT version, taken_at FROM snapshot_meta WHERE id = 1`).
		Scan(&snap.Version, &snap.TakenAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return snap, domain.ErrSnapshotNotFound
		}

		l.Error().Err(err).Send()

		return snap, errorspkg.ErrInternal
	}

	if snap.Version != domain.SnapshotVersion {
		return domain.Snapshot{}, domain.ErrUnsupportedSnapshot
	}

	if err := r.load(ctx, &snap); err != nil {
		l.Error().Err(err).Msg("cannot load snapshot")
		return domain.Snapshot{}, errorspkg.ErrInternal
	}

	snap.TakenAt = snap.TakenAt.UTC()

	return snap, nil
}

func (r *RepoSQL) load(ctx context.Context, snap *domain.Snapshot) error {
	err := scanAll(ctx, r.db, `SELECT user_id, username, role, created_at FROM snapshot_users ORDER BY user_id`,
		func(rows *sql.Rows) error {
			var u domain.UserRecord
			if err := rows.Scan(&u.UserID, &u.Username, &u.Role, &u.CreatedAt); err != nil {
				return err
			}

			u.CreatedAt = u.CreatedAt.UTC()
			snap.Users = append(snap.Users, u)

			return nil
		})
	if err != nil {
		return fmt.Errorf("users: %w", err)
	}

	err = scanAll(ctx, r.db, `SELECT item_id, seller_id, name, price, stock FROM snapshot_items ORDER BY item_id`,
		func(rows *sql.Rows) error {
			var it domain.Item
			if err := rows.Scan(&it.ID, &it.SellerID, &it.Name, &it.Price, &it.Stock); err != nil {
				return err
			}

			snap.Items = append(snap.Items, it)

			return nil
		})
	if err != nil {
		return fmt.Errorf("items: %w", err)
	}

	err = scanAll(ctx, r.db, `SELECT account_id, owner_id, balance FROM snapshot_accounts ORDER BY account_id`,
		func(rows *sql.Rows) error {
			var a domain.AccountRecord
			if err := rows.Scan(&a.AccountID, &a.OwnerID, &a.Balance); err != nil {
				return err
			}

			snap.Accounts = append(snap.Accounts, a)

			return nil
		})
	if err != nil {
		return fmt.Errorf("accounts: %w", err)
	}

	err = scanAll(ctx, r.db,
		`SELECT account_id, seq, transaction_id, ts, amount, kind FROM snapshot_entries ORDER BY account_id, seq`,
		func(rows *sql.Rows) error {
			var e domain.EntryRecord
			if err := rows.Scan(&e.AccountID, &e.Seq, &e.TransactionID, &e.Timestamp, &e.Amount, &e.Kind); err != nil {
				return err
			}

			e.Timestamp = e.Timestamp.UTC()
			snap.Entries = append(snap.Entries, e)

			return nil
		})
	if err != nil {
		return fmt.Errorf("entries: %w", err)
	}

	err = scanAll(ctx, r.db,
		`SELECT transaction_id, item_id, buyer_id, seller_id, amount, quantity, ts, ts_nanos, status
		FROM snapshot_transactions ORDER BY transaction_id`,
		func(rows *sql.Rows) error {
			var t domain.TransactionRecord
			if err := rows.Scan(&t.TransactionID, &t.ItemID, &t.BuyerID, &t.SellerID,
				&t.Amount, &t.Quantity, &t.TimestampEpochSeconds, &t.TimestampNanos, &t.StatusCode); err != nil {
				return err
			}

			snap.Transactions = append(snap.Transactions, t)

			return nil
		})
	if err != nil {
		return fmt.Errorf("transactions: %w", err)
	}

	return nil
}

func scanAll(ctx context.Context, db dbpkg.SQLInterface, q string, scan func(*sql.Rows) error) error {
	rows, err := db.QueryContext(ctx, q)
	if err != nil {
		return err
	}
	defer rows.Close()

	for rows.Next() {
		if err := scan(rows); err != nil {
			return err
		}
	}

	if err := rows.Close(); err != nil {
		return err
	}

	return rows.Err()
}

// Close closes the database connection.
func (r *RepoSQL) Close() error {
	return r.db.Close()
}
