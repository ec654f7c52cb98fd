// Package database opens the SQL backends the services run on and papers
// over the few places where PostgreSQL and SQLite disagree.
package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/lib/pq"
	msqlite "modernc.org/sqlite"
	sqlite3lib "modernc.org/sqlite/lib"
)

// Dialect names a supported SQL backend. Its value doubles as the
// database/sql driver name.
type Dialect string

const (
	Postgres Dialect = "postgres"
	SQLite   Dialect = "sqlite"
)

// ParseDialect maps a configured driver name onto a Dialect.
func ParseDialect(driver string) (Dialect, error) {
	switch strings.ToLower(strings.TrimSpace(driver)) {
	case "postgres", "postgresql", "pg":
		return Postgres, nil
	case "sqlite", "sqlite3":
		return SQLite, nil
	default:
		return "", fmt.Errorf("unsupported store driver %q", driver)
	}
}

// Open connects to dsn and verifies the connection. For SQLite, ":memory:"
// yields a private in-memory database pinned to a single connection; any
// other value is treated as a file path.
func Open(ctx context.Context, d Dialect, dsn string) (*sql.DB, error) {
	if strings.TrimSpace(dsn) == "" {
		return nil, fmt.Errorf("%s dsn is required", d)
	}

	var (
		db  *sql.DB
		err error
	)
	switch d {
	case Postgres:
		db, err = sql.Open(string(Postgres), dsn)
		if err == nil {
			db.SetMaxOpenConns(25)
			db.SetMaxIdleConns(5)
			db.SetConnMaxLifetime(30 * time.Minute)
		}
	case SQLite:
		if dsn == ":memory:" {
			db, err = sql.Open(string(SQLite), dsn)
			if err == nil {
				db.SetMaxOpenConns(1)
			}
		} else {
			db, err = sql.Open(string(SQLite), dsn+"?_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)&_pragma=foreign_keys(1)")
		}
	default:
		return nil, fmt.Errorf("unsupported dialect %q", d)
	}
	if err != nil {
		return nil, fmt.Errorf("open %s db: %w", d, err)
	}

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := db.PingContext(pingCtx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping %s db: %w", d, err)
	}
	return db, nil
}

// Rebind rewrites ? placeholders into the dialect's bind syntax.
func (d Dialect) Rebind(query string) string {
	if d != Postgres {
		return query
	}
	var b strings.Builder
	b.Grow(len(query) + 8)
	n := 0
	for _, r := range query {
		if r == '?' {
			n++
			b.WriteByte('$')
			b.WriteString(strconv.Itoa(n))
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}

// IsUniqueViolation reports whether err is a unique-constraint failure on
// table.column. An empty table matches any unique violation. PostgreSQL
// constraints are expected to carry the default <table>_<column>_key name.
func (d Dialect) IsUniqueViolation(err error, table, column string) bool {
	if err == nil {
		return false
	}
	switch d {
	case Postgres:
		var pqErr *pq.Error
		if !errors.As(err, &pqErr) || pqErr.Code != "23505" {
			return false
		}
		return table == "" || pqErr.Constraint == table+"_"+column+"_key"
	case SQLite:
		var sqliteErr *msqlite.Error
		if errors.As(err, &sqliteErr) {
			switch sqliteErr.Code() {
			case sqlite3lib.SQLITE_CONSTRAINT_UNIQUE, sqlite3lib.SQLITE_CONSTRAINT_PRIMARYKEY:
				return table == "" || strings.Contains(err.Error(), table+"."+column)
			}
			return false
		}
		message := strings.ToLower(err.Error())
		return strings.Contains(message, "unique constraint failed") &&
			(table == "" || strings.Contains(message, strings.ToLower(table+"."+column)))
	}
	return false
}

// ToMillis and FromMillis convert timestamps to the BIGINT epoch-millisecond
// columns both backends share.
func ToMillis(t time.Time) int64 {
	return t.UTC().UnixMilli()
}

func FromMillis(ms int64) time.Time {
	return time.UnixMilli(ms).UTC()
}
