package service

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/scenevault/scenevault/internal/auth"
	"github.com/scenevault/scenevault/internal/metrics"
	"github.com/scenevault/scenevault/internal/model"
	"github.com/scenevault/scenevault/internal/repository"
)

func newAccountService(t *testing.T) (*AccountService, *memoryStore, *metrics.InMemoryRecorder) {
	t.Helper()

	issuer, err := auth.NewTokenIssuer("test-secret", 30*time.Minute)
	require.NoError(t, err)

	store := newMemoryStore()
	recorder := metrics.NewInMemory()
	return NewAccountService(store, issuer, recorder), store, recorder
}

func register(t *testing.T, svc *AccountService, username, email, password string) *model.User {
	t.Helper()
	user, err := svc.Register(context.Background(), model.RegisterRequest{
		Username: username,
		Email:    email,
		Password: password,
	})
	require.NoError(t, err)
	return user
}

func TestRegister_Success(t *testing.T) {
	t.Parallel()
	svc, _, recorder := newAccountService(t)

	user := register(t, svc, "alice", "alice@example.com", "hunter2")

	assert.Len(t, user.ID, 26)
	assert.Equal(t, "alice", user.Username)
	assert.True(t, user.IsActive)
	assert.NotEqual(t, "hunter2", user.HashedPassword)
	assert.True(t, auth.VerifyPassword("hunter2", user.HashedPassword))
	assert.Equal(t, uint64(1), recorder.Snapshot().UsersRegistered)
}

func TestRegister_DuplicateUsername(t *testing.T) {
	t.Parallel()
	svc, _, _ := newAccountService(t)
	register(t, svc, "alice", "alice@example.com", "pw")

	_, err := svc.Register(context.Background(), model.RegisterRequest{
		Username: "alice",
		Email:    "different@example.com",
		Password: "pw",
	})
	assert.ErrorIs(t, err, ErrDuplicateUsername)
}

func TestRegister_DuplicateEmail(t *testing.T) {
	t.Parallel()
	svc, _, _ := newAccountService(t)
	register(t, svc, "alice", "shared@example.com", "pw")

	_, err := svc.Register(context.Background(), model.RegisterRequest{
		Username: "bob",
		Email:    "shared@example.com",
		Password: "pw",
	})
	assert.ErrorIs(t, err, ErrDuplicateEmail)
}

func TestRegister_UsernameCheckedBeforeEmail(t *testing.T) {
	t.Parallel()
	svc, _, _ := newAccountService(t)
	register(t, svc, "alice", "alice@example.com", "pw")

	_, err := svc.Register(context.Background(), model.RegisterRequest{
		Username: "alice",
		Email:    "alice@example.com",
		Password: "pw",
	})
	assert.ErrorIs(t, err, ErrDuplicateUsername)
}

func TestRegister_ConcurrentInsertMapsToDuplicate(t *testing.T) {
	t.Parallel()
	svc, store, _ := newAccountService(t)
	store.raceUsername = true

	_, err := svc.Register(context.Background(), model.RegisterRequest{
		Username: "alice",
		Email:    "alice@example.com",
		Password: "pw",
	})
	assert.ErrorIs(t, err, ErrDuplicateUsername)
}

func TestRegister_InvalidInput(t *testing.T) {
	t.Parallel()
	svc, _, _ := newAccountService(t)

	_, err := svc.Register(context.Background(), model.RegisterRequest{
		Username: "alice",
		Email:    "no-at-sign",
		Password: "pw",
	})
	require.ErrorIs(t, err, ErrInvalidInput)

	var verr *model.ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, "email", verr.Field)
}

func TestRegister_StorageUnavailable(t *testing.T) {
	t.Parallel()
	svc, store, _ := newAccountService(t)
	store.err = fmt.Errorf("%w: dial tcp: connection refused", repository.ErrUnavailable)

	_, err := svc.Register(context.Background(), model.RegisterRequest{
		Username: "alice",
		Email:    "alice@example.com",
		Password: "pw",
	})
	assert.ErrorIs(t, err, ErrStorageUnavailable)
}

func TestRegister_OtherStorageErrorIsNotUnavailable(t *testing.T) {
	t.Parallel()
	svc, store, _ := newAccountService(t)
	store.err = errors.New("syntax error at or near")

	_, err := svc.Register(context.Background(), model.RegisterRequest{
		Username: "alice",
		Email:    "alice@example.com",
		Password: "pw",
	})
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrStorageUnavailable)
	assert.NotErrorIs(t, err, ErrDuplicateUsername)
}

func TestLogin_SuccessByUsername(t *testing.T) {
	t.Parallel()
	svc, _, recorder := newAccountService(t)
	register(t, svc, "alice", "alice@example.com", "hunter2")

	resp, err := svc.Login(context.Background(), model.LoginRequest{Username: "alice", Password: "hunter2"})
	require.NoError(t, err)
	assert.Equal(t, "bearer", resp.TokenType)

	claims, err := svc.tokens.Verify(resp.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, "alice", claims.Username())
	assert.Equal(t, uint64(1), recorder.Snapshot().LoginsSucceeded)
}

func TestLogin_SuccessByEmail(t *testing.T) {
	t.Parallel()
	svc, _, _ := newAccountService(t)
	register(t, svc, "alice", "alice@example.com", "hunter2")

	resp, err := svc.Login(context.Background(), model.LoginRequest{Email: "alice@example.com", Password: "hunter2"})
	require.NoError(t, err)

	claims, err := svc.tokens.Verify(resp.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, "alice", claims.Username(), "subject is always the username")
}

func TestLogin_FailuresAreIndistinguishable(t *testing.T) {
	t.Parallel()
	svc, store, recorder := newAccountService(t)
	register(t, svc, "alice", "alice@example.com", "hunter2")

	inactive := register(t, svc, "carol", "carol@example.com", "pw")
	store.mu.Lock()
	store.users[inactive.ID].IsActive = false
	store.mu.Unlock()

	tests := []struct {
		name string
		req  model.LoginRequest
	}{
		{"wrong password", model.LoginRequest{Username: "alice", Password: "wrong"}},
		{"unknown username", model.LoginRequest{Username: "mallory", Password: "hunter2"}},
		{"unknown email", model.LoginRequest{Email: "nobody@example.com", Password: "hunter2"}},
		{"inactive account", model.LoginRequest{Username: "carol", Password: "pw"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.Login(context.Background(), tt.req)
			assert.ErrorIs(t, err, ErrInvalidCredentials)
			assert.Equal(t, ErrInvalidCredentials.Error(), err.Error())
		})
	}

	assert.Equal(t, uint64(len(tests)), recorder.Snapshot().LoginsFailed)
}

func TestLogin_RequiresIdentifier(t *testing.T) {
	t.Parallel()
	svc, _, _ := newAccountService(t)

	_, err := svc.Login(context.Background(), model.LoginRequest{Password: "pw"})
	require.ErrorIs(t, err, ErrInvalidInput)

	var verr *model.ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, "Either username or email must be provided", verr.Message)
}

func TestLogin_StorageUnavailable(t *testing.T) {
	t.Parallel()
	svc, store, _ := newAccountService(t)
	store.err = fmt.Errorf("%w: timeout", repository.ErrUnavailable)

	_, err := svc.Login(context.Background(), model.LoginRequest{Username: "alice", Password: "pw"})
	assert.ErrorIs(t, err, ErrStorageUnavailable)
}

func TestAuthenticate(t *testing.T) {
	t.Parallel()
	svc, _, _ := newAccountService(t)
	user := register(t, svc, "alice", "alice@example.com", "hunter2")

	resp, err := svc.Login(context.Background(), model.LoginRequest{Username: "alice", Password: "hunter2"})
	require.NoError(t, err)

	authCtx, err := svc.Authenticate(context.Background(), resp.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, user.ID, authCtx.UserID)
	assert.Equal(t, "alice", authCtx.Username)
}

func TestAuthenticate_Rejections(t *testing.T) {
	t.Parallel()
	svc, _, _ := newAccountService(t)

	ghostToken, err := svc.tokens.Issue("ghost")
	require.NoError(t, err)

	for _, token := range []string{"", "garbage", ghostToken} {
		_, err := svc.Authenticate(context.Background(), token)
		assert.ErrorIs(t, err, ErrUnauthenticated)
	}
}
