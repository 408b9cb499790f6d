// Package store is the single point through which repositories reach the
// relational store. Statements are written with `?` placeholders and rebound
// to the driver's bind style; caller values are always passed as parameters.
package store

import (
	"context"
	"database/sql"
	"errors"
	"io"

	"github.com/jmoiron/sqlx"
	"github.com/sirupsen/logrus"
)

// Gateway runs parameterized statements against the relational store.
type Gateway interface {
	// Get scans a single row into dest. found is false when no row matched.
	Get(ctx context.Context, dest any, query string, args ...any) (found bool, err error)
	// Select scans every matching row into dest, which must be a pointer to a slice.
	Select(ctx context.Context, dest any, query string, args ...any) error
	// Exec runs a statement and returns the number of affected rows.
	Exec(ctx context.Context, query string, args ...any) (int64, error)
	// InsertID runs an INSERT ... RETURNING id statement and returns the id.
	InsertID(ctx context.Context, query string, args ...any) (int64, error)
	// InTx runs fn inside one transaction. Gateway calls made with the ctx
	// handed to fn join that transaction; nested InTx calls join the outer one.
	InTx(ctx context.Context, fn func(ctx context.Context) error) error
	// Ping checks that the store is reachable.
	Ping(ctx context.Context) error
}

type txKey struct{}

// SQLGateway implements Gateway on top of sqlx, for any driver sqlx can rebind for.
type SQLGateway struct {
	db  *sqlx.DB
	log logrus.FieldLogger
}

var _ Gateway = (*SQLGateway)(nil)

// NewSQLGateway wraps db. A nil logger discards output.
func NewSQLGateway(db *sqlx.DB, log logrus.FieldLogger) *SQLGateway {
	if log == nil {
		l := logrus.New()
		l.SetOutput(io.Discard)
		log = l
	}
	return &SQLGateway{db: db, log: log.WithField("component", "store")}
}

// ext returns the transaction bound to ctx, or the pool.
func (g *SQLGateway) ext(ctx context.Context) sqlx.ExtContext {
	if tx, ok := ctx.Value(txKey{}).(*sqlx.Tx); ok && tx != nil {
		return tx
	}
	return g.db
}

func (g *SQLGateway) Get(ctx context.Context, dest any, query string, args ...any) (bool, error) {
	q := g.ext(ctx)
	err := sqlx.GetContext(ctx, q, dest, q.Rebind(query), args...)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return false, nil
		}
		return false, g.fail("get", query, err)
	}
	return true, nil
}

func (g *SQLGateway) Select(ctx context.Context, dest any, query string, args ...any) error {
	q := g.ext(ctx)
	if err := sqlx.SelectContext(ctx, q, dest, q.Rebind(query), args...); err != nil {
		return g.fail("select", query, err)
	}
	return nil
}

func (g *SQLGateway) Exec(ctx context.Context, query string, args ...any) (int64, error) {
	q := g.ext(ctx)
	res, err := q.ExecContext(ctx, q.Rebind(query), args...)
	if err != nil {
		return 0, g.fail("exec", query, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, g.fail("exec", query, err)
	}
	return n, nil
}

func (g *SQLGateway) InsertID(ctx context.Context, query string, args ...any) (int64, error) {
	q := g.ext(ctx)
	var id int64
	if err := q.QueryRowxContext(ctx, q.Rebind(query), args...).Scan(&id); err != nil {
		return 0, g.fail("insert", query, err)
	}
	return id, nil
}

func (g *SQLGateway) InTx(ctx context.Context, fn func(ctx context.Context) error) error {
	if tx, ok := ctx.Value(txKey{}).(*sqlx.Tx); ok && tx != nil {
		return fn(ctx)
	}
	tx, err := g.db.BeginTxx(ctx, nil)
	if err != nil {
		return g.fail("begin", "", err)
	}
	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback()
		}
	}()
	if err := fn(context.WithValue(ctx, txKey{}, tx)); err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return g.fail("commit", "", err)
	}
	committed = true
	return nil
}

func (g *SQLGateway) Ping(ctx context.Context) error {
	if err := g.db.PingContext(ctx); err != nil {
		return g.fail("ping", "", err)
	}
	return nil
}

// fail logs a store failure and wraps it as *Error.
func (g *SQLGateway) fail(op, query string, err error) error {
	e := newError(op, err)
	entry := g.log.WithError(err).WithField("op", op)
	if query != "" {
		entry = entry.WithField("query", query)
	}
	if e.Unavailable {
		entry.Error("store unavailable")
	} else {
		entry.Error("query failed")
	}
	return e
}
