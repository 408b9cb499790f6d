package testutil

import (
	"context"
	"strconv"
	"testing"
	"time"

	jwt "github.com/golang-jwt/jwt/v5"
	"github.com/jmoiron/sqlx"
	"google.golang.org/grpc/metadata"

	"bugTracker/internal/db"
	"bugTracker/internal/store"
)

// OpenInMemoryDB opens an in-memory SQLite database and applies the schema.
// The DB is closed through t.Cleanup.
func OpenInMemoryDB(t *testing.T, name string) *sqlx.DB {
	t.Helper()
	// Shared cache so every pooled connection sees the same database.
	d, err := db.Open(context.Background(), db.Options{
		Driver:         db.DriverSQLite,
		DSN:            "file:" + name + "?mode=memory&cache=shared",
		ConnectTimeout: time.Second,
	})
	if err != nil {
		t.Fatalf("open test db: %v", err)
	}
	t.Cleanup(func() { _ = d.Close() })
	return d
}

// NewGateway returns a store gateway over a fresh in-memory database.
func NewGateway(t *testing.T, name string) store.Gateway {
	t.Helper()
	return store.NewSQLGateway(OpenInMemoryDB(t, name), nil)
}

// SeedUser inserts a developer with a placeholder password hash and returns its id.
func SeedUser(t *testing.T, gw store.Gateway, username string) int64 {
	t.Helper()
	return insert(t, gw, `INSERT INTO users (username, email, password_hash) VALUES (?, ?, ?) RETURNING id`,
		username, username+"@example.com", "x")
}

// SeedProject inserts a project created by userID and returns its id.
func SeedProject(t *testing.T, gw store.Gateway, name string, userID int64) int64 {
	t.Helper()
	return insert(t, gw, `INSERT INTO projects (project_name, created_by) VALUES (?, ?) RETURNING id`, name, userID)
}

// SeedBug inserts an open bug in projectID reported by userID and returns its id.
func SeedBug(t *testing.T, gw store.Gateway, projectID int64, title string, userID int64) int64 {
	t.Helper()
	return insert(t, gw, `INSERT INTO bugs (project_id, title, reported_by) VALUES (?, ?, ?) RETURNING id`, projectID, title, userID)
}

func insert(t *testing.T, gw store.Gateway, query string, args ...any) int64 {
	t.Helper()
	id, err := gw.InsertID(context.Background(), query, args...)
	if err != nil {
		t.Fatalf("seed: %v", err)
	}
	return id
}

// GenerateJWT returns a signed HS256 token carrying the claims the app expects.
func GenerateJWT(t *testing.T, secret string, userID int64, username, role string) string {
	t.Helper()
	claims := jwt.MapClaims{
		"sub":  strconv.FormatInt(userID, 10),
		"name": username,
		"role": role,
		"exp":  time.Now().Add(time.Hour).Unix(),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	s, err := token.SignedString([]byte(secret))
	if err != nil {
		t.Fatalf("sign token: %v", err)
	}
	return s
}

// CtxWithBearer returns a context containing gRPC metadata Authorization header with the given token.
func CtxWithBearer(ctx context.Context, token string) context.Context {
	md := metadata.Pairs("authorization", "Bearer "+token)
	return metadata.NewIncomingContext(ctx, md)
}
