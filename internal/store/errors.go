package store

import (
	"context"
	"database/sql/driver"
	"errors"
	"net"
	"strings"
)

// Error is a failure of the store call itself. It carries no domain meaning;
// callers decide what, if anything, to make of it.
type Error struct {
	Op          string
	Err         error
	Unavailable bool // the store could not be reached
}

func (e *Error) Error() string {
	if e.Unavailable {
		return "store unavailable: " + e.Op + ": " + e.Err.Error()
	}
	return "query failed: " + e.Op + ": " + e.Err.Error()
}

func (e *Error) Unwrap() error { return e.Err }

// IsStoreError reports whether err is or wraps a *Error.
func IsStoreError(err error) bool {
	var e *Error
	return errors.As(err, &e)
}

func newError(op string, err error) *Error {
	return &Error{Op: op, Err: err, Unavailable: isUnavailable(err)}
}

func isUnavailable(err error) bool {
	if errors.Is(err, driver.ErrBadConn) || errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var netErr net.Error
	if errors.As(err, &netErr) {
		return true
	}
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "connection refused") ||
		strings.Contains(msg, "database is closed") ||
		strings.Contains(msg, "unable to open database")
}
