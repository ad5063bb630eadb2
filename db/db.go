// Package db opens the database named by DATABASE_URL and holds the
// action-history queries.
package db

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/avast/retry-go"
	_ "github.com/go-sql-driver/mysql"                   // mysql://
	_ "github.com/jackc/pgx/v5/stdlib"                   // postgres://
	_ "github.com/mattn/go-sqlite3"                      // sqlite:// (local file)
	_ "github.com/tursodatabase/libsql-client-go/libsql" // libsql:// (Turso)
	"go.uber.org/zap"

	"msgvis/config"
)

// Dialect tells queries how the backend spells bind parameters.
type Dialect int

const (
	DialectQuestion Dialect = iota // ?, ?, ...
	DialectDollar                  // $1, $2, ...
)

// DB is an open database together with its dialect.
type DB struct {
	*sql.DB
	Dialect Dialect
	Backend string
}

// Open connects to the database described by u and waits until it answers a
// ping, retrying with backoff.
func Open(ctx context.Context, u config.DatabaseURL, log *zap.Logger) (*DB, error) {
	conn, err := sql.Open(u.Driver(), u.DSN())
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", u.Driver(), err)
	}

	d := &DB{DB: conn, Backend: u.Backend()}
	switch u.Backend() {
	case config.BackendPostgres:
		d.Dialect = DialectDollar
	case config.BackendSQLite:
		conn.SetMaxOpenConns(1)
		conn.SetMaxIdleConns(1)
		_, _ = conn.ExecContext(ctx, "PRAGMA journal_mode=WAL;")
		_, _ = conn.ExecContext(ctx, "PRAGMA synchronous=NORMAL;")
	default:
		conn.SetMaxOpenConns(10)
		conn.SetMaxIdleConns(5)
		conn.SetConnMaxLifetime(30 * time.Minute)
	}

	err = retry.Do(
		func() error { return conn.PingContext(ctx) },
		retry.Context(ctx),
		retry.Attempts(5),
		retry.Delay(200*time.Millisecond),
		retry.DelayType(retry.BackOffDelay),
		retry.LastErrorOnly(true),
		retry.OnRetry(func(n uint, err error) {
			log.Warn("database not ready", zap.Uint("attempt", n+1), zap.String("database", u.String()), zap.Error(err))
		}),
	)
	if err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("ping %s: %w", u.String(), err)
	}

	log.Info("database connected", zap.String("database", u.String()), zap.String("driver", u.Driver()))
	return d, nil
}
