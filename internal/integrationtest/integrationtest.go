// Package integrationtest provides db helpers used in integration tests.
package integrationtest

import (
	"database/sql"
	"testing"

	"github.com/go-petr/market-ledger/pkg/configpkg"
	"github.com/go-petr/market-ledger/pkg/dbpkg"
)

// Flush deletes all rows of the given tables without droping them.
func Flush(t *testing.T, db *sql.DB, tables ...string) {
	t.Helper()

	for _, table := range tables {
		if _, err := db.Exec(`DELETE FROM ` + table); err != nil {
			t.Fatalf("db cleanup failed. err: %v", err)
		}
	}
}

// SetupDB connects to the postgres database configured in configDir.
//
// The test is skipped when DB_DRIVER is not postgres. The given tables are
// flushed before the test, and again once it is done.
func SetupDB(t *testing.T, configDir string, tables ...string) *sql.DB {
	t.Helper()

	config, err := configpkg.Load(configDir)
	if err != nil {
		t.Fatalf(`configpkg.Load(%q) returned error: %v`, configDir, err)
	}

	if config.DBDriver != configpkg.DriverPostgres {
		t.Skipf("DB_DRIVER is %q, postgres required", config.DBDriver)
	}

	db, err := dbpkg.Setup(config.DBDriver, config.DBSource)
	if err != nil {
		t.Fatalf("db initialization failed. err: %v", err)
	}

	t.Cleanup(func() {
		Flush(t, db, tables...)

		if err := db.Close(); err != nil {
			t.Fatalf("db cleanup failed. err: %v", err)
		}
	})

	return db
}
