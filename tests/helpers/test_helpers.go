package helpers

import (
	"context"
	"log"
	"os"
	"testing"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/joho/godotenv"
)

// SetupTestDB connects to the test database, skipping the test when no
// database is configured so the pure-core suites stay runnable anywhere.
func SetupTestDB(t *testing.T) *pgxpool.Pool {
	if err := godotenv.Load("../../.env"); err != nil {
		log.Println("Warning: .env file not found via godotenv")
	}

	dbURL := os.Getenv("TEST_DATABASE_URL")
	if dbURL == "" {
		dbURL = os.Getenv("DATABASE_URL")
	}
	if dbURL == "" {
		t.Skip("TEST_DATABASE_URL or DATABASE_URL not set; skipping integration test")
	}

	ctx := context.Background()
	pool, err := pgxpool.New(ctx, dbURL)
	if err != nil {
		t.Fatalf("Failed to connect to test database: %v", err)
	}

	if err := pool.Ping(ctx); err != nil {
		t.Fatalf("Failed to ping test database: %v", err)
	}

	return pool
}

// NewTestUserID returns a fresh user ID; rows keyed by it are cleaned up
// by CleanupTestUser.
func NewTestUserID() uuid.UUID {
	return uuid.New()
}

// CleanupTestUser removes every row the integration tests created for the
// given user.
func CleanupTestUser(t *testing.T, pool *pgxpool.Pool, userID uuid.UUID) {
	ctx := context.Background()
	for _, table := range []string{"completion_events", "focus_sessions", "notifications", "device_tokens", "streak_freezes", "streaks"} {
		if _, err := pool.Exec(ctx, "DELETE FROM "+table+" WHERE user_id = $1", userID); err != nil {
			t.Logf("Warning: failed to clean up %s: %v", table, err)
		}
	}
	pool.Close()
}
