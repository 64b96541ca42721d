//go:build integration

package repository

import (
	"context"
	"errors"
	"reflect"
	"sync"
	"testing"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/oklog/ulid/v2"

	"github.com/scenevault/scenevault/internal/model"
	"github.com/scenevault/scenevault/internal/testutil"
)

func newTestRepository(t *testing.T) (context.Context, *Repository, *pgxpool.Pool) {
	t.Helper()
	if testing.Short() {
		t.Skip("skipping integration tests in short mode")
	}

	ctx := context.Background()
	dbURL := testutil.RequireEnv(t, "DATABASE_URL")

	pool, err := pgxpool.New(ctx, dbURL)
	if err != nil {
		t.Fatalf("connect db: %v", err)
	}
	t.Cleanup(pool.Close)

	unlock, err := testutil.AcquireDBLock(ctx, pool)
	if err != nil {
		t.Fatalf("acquire db lock: %v", err)
	}
	t.Cleanup(func() {
		_ = unlock()
	})

	if err := testutil.ResetSchema(ctx, pool, SchemaSQL()); err != nil {
		t.Fatalf("reset schema: %v", err)
	}

	return ctx, NewWithPool(pool), pool
}

func TestIntegrationSchema_TablesExist(t *testing.T) {
	ctx, repo, _ := newTestRepository(t)

	exists, err := repo.TablesExist(ctx)
	if err != nil {
		t.Fatalf("TablesExist failed: %v", err)
	}
	if !exists {
		t.Error("tables should exist after reset")
	}

	// Applying the schema again must be a no-op.
	if err := repo.EnsureSchema(ctx); err != nil {
		t.Fatalf("EnsureSchema should be idempotent: %v", err)
	}
}

func TestIntegrationUser_CreateAndLookup(t *testing.T) {
	ctx, repo, _ := newTestRepository(t)

	user := testutil.NewTestUser(t, "hash")
	if err := repo.CreateUser(ctx, user); err != nil {
		t.Fatalf("CreateUser failed: %v", err)
	}

	byName, err := repo.GetUserByUsername(ctx, user.Username)
	if err != nil {
		t.Fatalf("GetUserByUsername failed: %v", err)
	}
	if byName.ID != user.ID || byName.Email != user.Email || !byName.IsActive {
		t.Errorf("unexpected user: %+v", byName)
	}

	byEmail, err := repo.GetUserByEmail(ctx, user.Email)
	if err != nil {
		t.Fatalf("GetUserByEmail failed: %v", err)
	}
	if byEmail.Username != user.Username {
		t.Errorf("GetUserByEmail username = %s, want %s", byEmail.Username, user.Username)
	}

	exists, err := repo.UsernameExists(ctx, user.Username)
	if err != nil || !exists {
		t.Errorf("UsernameExists = %v, %v", exists, err)
	}
	exists, err = repo.EmailExists(ctx, "nobody@example.com")
	if err != nil || exists {
		t.Errorf("EmailExists(nobody) = %v, %v", exists, err)
	}

	if _, err := repo.GetUserByUsername(ctx, "ghost"); !errors.Is(err, ErrUserNotFound) {
		t.Errorf("expected ErrUserNotFound, got %v", err)
	}
}

func TestIntegrationUser_UniqueConstraints(t *testing.T) {
	ctx, repo, _ := newTestRepository(t)

	user := testutil.NewTestUser(t, "hash")
	if err := repo.CreateUser(ctx, user); err != nil {
		t.Fatalf("CreateUser failed: %v", err)
	}

	sameName := testutil.NewTestUser(t, "hash")
	sameName.Username = user.Username
	if err := repo.CreateUser(ctx, sameName); !errors.Is(err, ErrUsernameExists) {
		t.Errorf("expected ErrUsernameExists, got %v", err)
	}

	sameEmail := testutil.NewTestUser(t, "hash")
	sameEmail.Email = user.Email
	if err := repo.CreateUser(ctx, sameEmail); !errors.Is(err, ErrEmailExists) {
		t.Errorf("expected ErrEmailExists, got %v", err)
	}
}

func TestIntegrationScene_UpsertAndLoad(t *testing.T) {
	ctx, repo, pool := newTestRepository(t)

	user := testutil.NewTestUser(t, "hash")
	if err := repo.CreateUser(ctx, user); err != nil {
		t.Fatalf("CreateUser failed: %v", err)
	}

	if _, err := repo.GetSceneByUserID(ctx, user.ID); !errors.Is(err, ErrSceneNotFound) {
		t.Fatalf("expected ErrSceneNotFound before first save, got %v", err)
	}

	first := &model.SceneDocument{ID: ulid.Make().String(), UserID: user.ID, Content: testutil.NewTestScene()}
	created, err := repo.UpsertScene(ctx, first)
	if err != nil {
		t.Fatalf("UpsertScene failed: %v", err)
	}
	if !created {
		t.Error("first save should insert")
	}

	updatedScene := model.Scene{
		Cubes:         []model.Cube{{UUID: "only", Position: model.Position{X: 9, Y: 9, Z: 9}}},
		SelectedCubes: []string{},
		HingePoints:   []map[string]any{},
	}
	second := &model.SceneDocument{ID: ulid.Make().String(), UserID: user.ID, Content: updatedScene}
	created, err = repo.UpsertScene(ctx, second)
	if err != nil {
		t.Fatalf("UpsertScene (update) failed: %v", err)
	}
	if created {
		t.Error("second save should update in place")
	}
	if second.ID != first.ID {
		t.Errorf("update should keep row id %s, got %s", first.ID, second.ID)
	}

	loaded, err := repo.GetSceneByUserID(ctx, user.ID)
	if err != nil {
		t.Fatalf("GetSceneByUserID failed: %v", err)
	}
	if !reflect.DeepEqual(loaded.Content, updatedScene) {
		t.Errorf("loaded content = %#v, want %#v", loaded.Content, updatedScene)
	}

	var rows int
	if err := pool.QueryRow(ctx, `SELECT COUNT(*) FROM user_data WHERE user_id = $1`, user.ID).Scan(&rows); err != nil {
		t.Fatalf("count rows: %v", err)
	}
	if rows != 1 {
		t.Errorf("expected exactly one scene row, got %d", rows)
	}
}

func TestIntegrationScene_ConcurrentUpserts(t *testing.T) {
	ctx, repo, pool := newTestRepository(t)

	user := testutil.NewTestUser(t, "hash")
	if err := repo.CreateUser(ctx, user); err != nil {
		t.Fatalf("CreateUser failed: %v", err)
	}

	var wg sync.WaitGroup
	errs := make(chan error, 8)
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			doc := &model.SceneDocument{ID: ulid.Make().String(), UserID: user.ID, Content: testutil.NewTestScene()}
			if _, err := repo.UpsertScene(ctx, doc); err != nil {
				errs <- err
			}
		}()
	}
	wg.Wait()
	close(errs)

	for err := range errs {
		t.Errorf("concurrent UpsertScene failed: %v", err)
	}

	var rows int
	if err := pool.QueryRow(ctx, `SELECT COUNT(*) FROM user_data WHERE user_id = $1`, user.ID).Scan(&rows); err != nil {
		t.Fatalf("count rows: %v", err)
	}
	if rows != 1 {
		t.Errorf("expected exactly one scene row after concurrent saves, got %d", rows)
	}
}
