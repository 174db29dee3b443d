package database

import (
	"context"
	"os"
	"strconv"
	"testing"
	"time"

	"github.com/yourusername/injury-edge/internal/config"
)

// SetupTestDB creates a test database connection and bootstraps the schema.
// Tests are skipped in short mode or when no test database is reachable, so
// the suite passes on machines without Postgres.
func SetupTestDB(t *testing.T) *DB {
	t.Helper()

	if testing.Short() {
		t.Skip("Skipping database test in short mode")
	}

	host := os.Getenv("INJURY_EDGE_TEST_DB_HOST")
	if host == "" {
		t.Skip("INJURY_EDGE_TEST_DB_HOST not set, skipping database test")
	}

	cfg := &config.DatabaseConfig{
		Host:               host,
		Port:               envInt("INJURY_EDGE_TEST_DB_PORT", 5432),
		User:               envOr("INJURY_EDGE_TEST_DB_USER", "postgres"),
		Password:           envOr("INJURY_EDGE_TEST_DB_PASSWORD", "postgres"),
		Name:               envOr("INJURY_EDGE_TEST_DB_NAME", "injury_edge_test"),
		SSLMode:            "disable",
		MaxConnections:     5,
		MaxIdleConnections: 2,
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	db, err := NewDB(ctx, cfg)
	if err != nil {
		t.Skipf("Could not connect to test database: %v", err)
	}

	if err := db.EnsureSchema(ctx); err != nil {
		db.Close()
		t.Fatalf("failed to bootstrap test schema: %v", err)
	}

	return db
}

// TeardownTestDB closes the database connection cleanly
func TeardownTestDB(t *testing.T, db *DB) {
	t.Helper()
	if db != nil {
		db.Close()
	}
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}
