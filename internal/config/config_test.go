package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func TestLoadWithDefaults_Succeeds(t *testing.T) {
	// Ensure envs are clean to use defaults
	for _, k := range []string{"DB_DRIVER", "DB_DSN", "HTTP_ADDRESS", "GRPC_ADDRESS", "JWT_SECRET", "JWT_TTL_MINUTES", "OTEL_STDOUT"} {
		os.Unsetenv(k)
	}
	cfg, err := LoadWithDefaults()
	if err != nil {
		t.Fatalf("LoadWithDefaults: %v", err)
	}
	if cfg.HTTP.Address == "" || cfg.Database.DSN == "" || cfg.Auth.JWTSecret == "" {
		t.Fatalf("unexpected empty defaults: %+v", cfg)
	}
	if cfg.Database.Driver != "sqlite3" {
		t.Fatalf("default driver = %q, want sqlite3", cfg.Database.Driver)
	}
	if cfg.Auth.TokenTTL != time.Hour {
		t.Fatalf("default token ttl = %v, want 1h", cfg.Auth.TokenTTL)
	}
}

func TestLoad_RequiresJWTSecret(t *testing.T) {
	// Clear JWT_SECRET ensures error
	os.Unsetenv("JWT_SECRET")
	t.Setenv("DB_DSN", "test.db")
	t.Setenv("HTTP_ADDRESS", ":1234")
	if _, err := Load(); err == nil {
		t.Fatalf("expected error when JWT_SECRET is not set")
	}
	// When set, it should succeed
	t.Setenv("JWT_SECRET", "x")
	if _, err := Load(); err != nil {
		t.Fatalf("Load with secret set: %v", err)
	}
}

func TestLoad_RejectsBadValues(t *testing.T) {
	t.Setenv("JWT_SECRET", "x")

	t.Setenv("DB_DRIVER", "mysql")
	if _, err := Load(); err == nil {
		t.Fatalf("expected error for unsupported driver")
	}
	t.Setenv("DB_DRIVER", "postgres")

	t.Setenv("JWT_TTL_MINUTES", "soon")
	if _, err := Load(); err == nil {
		t.Fatalf("expected error for non-numeric ttl")
	}
	t.Setenv("JWT_TTL_MINUTES", "0")
	if _, err := Load(); err == nil {
		t.Fatalf("expected error for zero ttl")
	}
	t.Setenv("JWT_TTL_MINUTES", "5")

	t.Setenv("OTEL_STDOUT", "maybe")
	if _, err := Load(); err == nil {
		t.Fatalf("expected error for bad bool")
	}
}

func TestLoadEnvFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), ".env")
	if err := os.WriteFile(path, []byte("BT_TEST_FROM_FILE=hello\n"), 0o600); err != nil {
		t.Fatalf("write env file: %v", err)
	}
	os.Unsetenv("BT_TEST_FROM_FILE")
	t.Cleanup(func() { os.Unsetenv("BT_TEST_FROM_FILE") })

	if err := LoadEnvFile(path); err != nil {
		t.Fatalf("LoadEnvFile: %v", err)
	}
	if got := os.Getenv("BT_TEST_FROM_FILE"); got != "hello" {
		t.Fatalf("env from file = %q, want hello", got)
	}
	if err := LoadEnvFile(filepath.Join(t.TempDir(), "missing.env")); err != nil {
		t.Fatalf("missing file should be ignored: %v", err)
	}
}

func TestString_MasksSecrets(t *testing.T) {
	cfg := &Config{
		Database: DatabaseConfig{Driver: "postgres", DSN: "postgres://u:pw@host/db"},
		Auth:     AuthConfig{JWTSecret: "topsecret"},
	}
	s := cfg.String()
	if strings.Contains(s, "topsecret") || strings.Contains(s, "pw@host") {
		t.Fatalf("secrets leaked: %s", s)
	}
}
