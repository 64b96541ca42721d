// Package testutil holds helpers shared by integration tests.
package testutil

import (
	"context"
	"fmt"
	"os"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/oklog/ulid/v2"
	"github.com/redis/go-redis/v9"

	"github.com/scenevault/scenevault/internal/model"
)

// RequireEnv returns an environment variable or skips the test if missing.
func RequireEnv(t testing.TB, key string) string {
	t.Helper()
	value := os.Getenv(key)
	if value == "" {
		t.Skipf("%s not set", key)
	}
	return value
}

const advisoryLockID int64 = 420420

// AcquireDBLock grabs a global advisory lock to serialize DB tests.
func AcquireDBLock(ctx context.Context, pool *pgxpool.Pool) (func() error, error) {
	conn, err := pool.Acquire(ctx)
	if err != nil {
		return nil, fmt.Errorf("acquire connection: %w", err)
	}

	if _, err := conn.Exec(ctx, "SELECT pg_advisory_lock($1)", advisoryLockID); err != nil {
		conn.Release()
		return nil, fmt.Errorf("acquire advisory lock: %w", err)
	}

	unlock := func() error {
		defer conn.Release()
		if _, err := conn.Exec(ctx, "SELECT pg_advisory_unlock($1)", advisoryLockID); err != nil {
			return fmt.Errorf("release advisory lock: %w", err)
		}
		return nil
	}

	return unlock, nil
}

// ResetSchema drops the scene tables and recreates them from schemaSQL.
func ResetSchema(ctx context.Context, pool *pgxpool.Pool, schemaSQL string) error {
	if _, err := pool.Exec(ctx, `DROP TABLE IF EXISTS user_data; DROP TABLE IF EXISTS users;`); err != nil {
		return fmt.Errorf("drop tables: %w", err)
	}
	if _, err := pool.Exec(ctx, schemaSQL); err != nil {
		return fmt.Errorf("apply schema: %w", err)
	}
	return nil
}

// FlushRedis clears the current Redis database.
func FlushRedis(ctx context.Context, client *redis.Client) error {
	return client.FlushDB(ctx).Err()
}

// ============================================================================
// Test Data Factories
// ============================================================================

// NewTestUser creates an active user with a unique username and email.
func NewTestUser(t testing.TB, hashedPassword string) *model.User {
	t.Helper()
	name := UniqueName("user")
	return &model.User{
		ID:             ulid.Make().String(),
		Username:       name,
		Email:          name + "@example.com",
		HashedPassword: hashedPassword,
		IsActive:       true,
		CreatedAt:      time.Now().UTC(),
	}
}

// NewTestScene returns a small scene with two cubes, one selected.
func NewTestScene() model.Scene {
	return model.Scene{
		Cubes: []model.Cube{
			{UUID: "cube-a", Position: model.Position{X: 0, Y: 0.5, Z: -1}},
			{UUID: "cube-b", Position: model.Position{X: 1.25, Y: 0.5, Z: 2}},
		},
		SelectedCubes: []string{"cube-b"},
		HingePoints: []map[string]any{
			{"cubeA": "cube-a", "cubeB": "cube-b", "axis": "y"},
		},
	}
}

// UniqueName generates a unique, short identifier for tests.
func UniqueName(prefix string) string {
	return fmt.Sprintf("%s%d", prefix, time.Now().UnixNano()%1_000_000_000_000)
}
