package implementations

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	_ "github.com/lib/pq"
	_ "modernc.org/sqlite"
)

// DB wraps the sql handle with the driver it was opened with so repositories
// can write queries once, with ? placeholders, and rebind for postgres.
type DB struct {
	*sql.DB
	driver string
}

func Open(ctx context.Context, driver, dsn string) (*DB, error) {
	var sqlDB *sql.DB
	var err error

	switch driver {
	case "sqlite":
		sqlDB, err = sql.Open("sqlite", dsn)
		if err != nil {
			return nil, fmt.Errorf("open sqlite connection: %w", err)
		}
		// A single connection serializes writers; with the conditional
		// debit this is what makes concurrent transfers safe on sqlite.
		sqlDB.SetMaxOpenConns(1)
	case "postgres":
		sqlDB, err = sql.Open("postgres", dsn)
		if err != nil {
			return nil, fmt.Errorf("open postgres connection: %w", err)
		}
		sqlDB.SetMaxIdleConns(20)
		sqlDB.SetMaxOpenConns(30)
		sqlDB.SetConnMaxIdleTime(5 * time.Minute)
		sqlDB.SetConnMaxLifetime(15 * time.Minute)
	default:
		return nil, fmt.Errorf("unsupported database driver %q", driver)
	}

	if err := sqlDB.PingContext(ctx); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("ping %s: %w", driver, err)
	}

	return &DB{DB: sqlDB, driver: driver}, nil
}

func (d *DB) Driver() string {
	return d.driver
}

// Rebind rewrites ? placeholders into $1..$n for postgres. Queries must not
// reuse a placeholder; repeated values are passed repeatedly.
func (d *DB) Rebind(query string) string {
	if d.driver != "postgres" {
		return query
	}

	var b strings.Builder
	b.Grow(len(query) + 8)
	n := 0
	for i := 0; i < len(query); i++ {
		if query[i] == '?' {
			n++
			fmt.Fprintf(&b, "$%d", n)
			continue
		}
		b.WriteByte(query[i])
	}

	return b.String()
}

// Timestamps are persisted as unix milliseconds so both drivers round-trip
// them identically.
func toMillis(value time.Time) int64 {
	return value.UTC().UnixMilli()
}

func fromMillis(value int64) time.Time {
	return time.UnixMilli(value).UTC()
}
