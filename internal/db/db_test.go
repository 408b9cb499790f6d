package db

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestOpenSQLite_CreatesSchema(t *testing.T) {
	path := filepath.Join(t.TempDir(), "schema.db")
	d, err := OpenSQLite(path)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	t.Cleanup(func() { _ = d.Close() })

	for _, table := range []string{"users", "projects", "bugs", "comments"} {
		var name string
		err := d.QueryRow(`SELECT name FROM sqlite_master WHERE type='table' AND name = ?`, table).Scan(&name)
		if err != nil {
			t.Fatalf("table %s missing: %v", table, err)
		}
	}

	var fk int
	if err := d.QueryRow(`PRAGMA foreign_keys`).Scan(&fk); err != nil {
		t.Fatalf("read pragma: %v", err)
	}
	if fk != 1 {
		t.Fatalf("foreign_keys = %d, want 1", fk)
	}
}

func TestOpenSQLite_Idempotent(t *testing.T) {
	path := filepath.Join(t.TempDir(), "twice.db")
	d1, err := OpenSQLite(path)
	if err != nil {
		t.Fatalf("first open: %v", err)
	}
	if _, err := d1.Exec(`INSERT INTO users (username, email, password_hash) VALUES ('a','a@x','h')`); err != nil {
		t.Fatalf("seed: %v", err)
	}
	_ = d1.Close()

	d2, err := OpenSQLite(path)
	if err != nil {
		t.Fatalf("second open: %v", err)
	}
	defer d2.Close()
	var n int
	if err := d2.Get(&n, `SELECT COUNT(*) FROM users`); err != nil {
		t.Fatalf("count: %v", err)
	}
	if n != 1 {
		t.Fatalf("rows after reopen = %d, want 1", n)
	}
}

func TestOpen_UnknownDriver(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	if _, err := Open(ctx, Options{Driver: "nope", DSN: "x"}); err == nil {
		t.Fatalf("expected error for unknown driver")
	}
}

func TestOpenPostgres_Integration(t *testing.T) {
	dsn := os.Getenv("TEST_POSTGRES_DSN")
	if dsn == "" {
		t.Skip("TEST_POSTGRES_DSN not set; skipping postgres integration test")
	}
	d, err := Open(context.Background(), Options{Driver: DriverPostgres, DSN: dsn, ConnectTimeout: 5 * time.Second})
	if err != nil {
		t.Fatalf("open postgres: %v", err)
	}
	defer d.Close()
	var n int
	if err := d.Get(&n, `SELECT COUNT(*) FROM comments`); err != nil {
		t.Fatalf("query comments: %v", err)
	}
}

func TestSQLiteDSN(t *testing.T) {
	cases := []struct{ in, want string }{
		{in: "app.db", want: "app.db?_fk=1&_busy_timeout=5000"},
		{in: "file:x?mode=memory&cache=shared", want: "file:x?mode=memory&cache=shared&_fk=1&_busy_timeout=5000"},
		{in: "app.db?_fk=0&_busy_timeout=10", want: "app.db?_fk=0&_busy_timeout=10"},
		{in: "app.db?_foreign_keys=1", want: "app.db?_foreign_keys=1&_busy_timeout=5000"},
	}
	for _, c := range cases {
		if got := sqliteDSN(c.in); got != c.want {
			t.Errorf("sqliteDSN(%q) = %q, want %q", c.in, got, c.want)
		}
	}
}
