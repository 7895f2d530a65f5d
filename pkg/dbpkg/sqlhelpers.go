// Package dbpkg provides helpers to open sql databases and write portable queries.
package dbpkg

import (
	"context"
	"database/sql"
	"strconv"
	"strings"
)

// Setup sets up connection with database.
func Setup(driver, source string) (*sql.DB, error) {
	db, err := sql.Open(driver, source)
	if err != nil {
		return nil, err
	}

	if err = db.Ping(); err != nil {
		return nil, err
	}

	return db, nil
}

// SQLInterface provides neccessary db methods to perform queries.
type SQLInterface interface {
	ExecContext(context.Context, string, ...interface{}) (sql.Result, error)
	PrepareContext(context.Context, string) (*sql.Stmt, error)
	QueryContext(context.Context, string, ...interface{}) (*sql.Rows, error)
	QueryRowContext(context.Context, string, ...interface{}) *sql.Row
}

// RebindDollar rewrites '?' placeholders into the $1, $2, ... form used by Postgres.
func RebindDollar(query string) string {
	var (
		sb strings.Builder
		n  int
	)

	sb.Grow(len(query) + 8)

	for _, r := range query {
		if r != '?' {
			sb.WriteRune(r)
			continue
		}

		n++
		sb.WriteByte('$')
		sb.WriteString(strconv.Itoa(n))
	}

	return sb.String()
}
