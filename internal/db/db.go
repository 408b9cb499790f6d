package db

import (
	"context"
	"embed"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
	_ "github.com/mattn/go-sqlite3"
)

const (
	DriverSQLite   = "sqlite3"
	DriverPostgres = "postgres"
)

// connectMaxElapsed bounds how long Open keeps retrying the first ping.
// Postgres in particular may still be starting when the server boots.
const connectMaxElapsed = 30 * time.Second

//go:embed schema/*.sql
var schemaFS embed.FS

// Options configure Open.
type Options struct {
	Driver       string
	DSN          string
	MaxOpenConns int
	// ConnectTimeout overrides connectMaxElapsed; tests use a short one.
	ConnectTimeout time.Duration
}

// Open connects to the configured store, applies pragmas for SQLite and
// creates the schema if it does not exist yet.
func Open(ctx context.Context, opts Options) (*sqlx.DB, error) {
	if opts.Driver == "" {
		opts.Driver = DriverSQLite
	}
	if opts.DSN == "" && opts.Driver == DriverSQLite {
		opts.DSN = "bugtracker.db"
	}
	dsn := opts.DSN
	if opts.Driver == DriverSQLite {
		dsn = sqliteDSN(dsn)
		// SQLite only supports one writer at a time; a single connection
		// avoids SQLITE_BUSY and table-locked errors under shared cache.
		if opts.MaxOpenConns <= 0 {
			opts.MaxOpenConns = 1
		}
	}
	d, err := sqlx.Open(opts.Driver, dsn)
	if err != nil {
		return nil, err
	}
	if opts.MaxOpenConns > 0 {
		d.SetMaxOpenConns(opts.MaxOpenConns)
	}
	if err := pingWithRetry(ctx, d, opts.ConnectTimeout); err != nil {
		_ = d.Close()
		return nil, err
	}
	if opts.Driver == DriverSQLite {
		if err := applyPragmas(ctx, d); err != nil {
			_ = d.Close()
			return nil, err
		}
	}
	if err := applySchema(ctx, d, opts.Driver); err != nil {
		_ = d.Close()
		return nil, err
	}
	return d, nil
}

// OpenSQLite opens a SQLite database at path with default options.
func OpenSQLite(path string) (*sqlx.DB, error) {
	return Open(context.Background(), Options{Driver: DriverSQLite, DSN: path, ConnectTimeout: time.Second})
}

// sqliteDSN adds the connection parameters every pooled connection needs.
// PRAGMA statements only affect the connection they run on, so foreign keys
// and the busy timeout are requested through the DSN instead.
func sqliteDSN(dsn string) string {
	var params []string
	if !strings.Contains(dsn, "_fk=") && !strings.Contains(dsn, "_foreign_keys=") {
		params = append(params, "_fk=1")
	}
	if !strings.Contains(dsn, "_busy_timeout=") && !strings.Contains(dsn, "_timeout=") {
		params = append(params, "_busy_timeout=5000")
	}
	if len(params) == 0 {
		return dsn
	}
	sep := "?"
	if strings.Contains(dsn, "?") {
		sep = "&"
	}
	return dsn + sep + strings.Join(params, "&")
}

func pingWithRetry(ctx context.Context, d *sqlx.DB, maxElapsed time.Duration) error {
	if maxElapsed <= 0 {
		maxElapsed = connectMaxElapsed
	}
	bo := backoff.NewExponentialBackOff()
	bo.MaxElapsedTime = maxElapsed
	return backoff.Retry(func() error {
		err := d.PingContext(ctx)
		if err != nil && errors.Is(err, context.Canceled) {
			return backoff.Permanent(err)
		}
		return err
	}, backoff.WithContext(bo, ctx))
}

func applyPragmas(ctx context.Context, d *sqlx.DB) error {
	// journal_mode may not be supported in some contexts (e.g., in-memory). Ignore errors.
	_, _ = d.ExecContext(ctx, `PRAGMA journal_mode=WAL`)
	if _, err := d.ExecContext(ctx, `PRAGMA synchronous=NORMAL`); err != nil {
		return fmt.Errorf("apply synchronous pragma: %w", err)
	}
	return nil
}

func applySchema(ctx context.Context, d *sqlx.DB, driver string) error {
	text, err := schemaFS.ReadFile("schema/" + driver + ".sql")
	if err != nil {
		return fmt.Errorf("no schema for driver %q: %w", driver, err)
	}
	if strings.TrimSpace(string(text)) == "" {
		return nil
	}
	tx, err := d.BeginTxx(ctx, nil)
	if err != nil {
		return err
	}
	if _, err := tx.ExecContext(ctx, string(text)); err != nil {
		_ = tx.Rollback()
		return fmt.Errorf("apply schema: %w", err)
	}
	return tx.Commit()
}
