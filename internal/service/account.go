package service

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/oklog/ulid/v2"

	"github.com/scenevault/scenevault/internal/auth"
	"github.com/scenevault/scenevault/internal/metrics"
	"github.com/scenevault/scenevault/internal/model"
	"github.com/scenevault/scenevault/internal/repository"
)

// UserStore is the persistence AccountService needs.
type UserStore interface {
	CreateUser(ctx context.Context, user *model.User) error
	UsernameExists(ctx context.Context, username string) (bool, error)
	EmailExists(ctx context.Context, email string) (bool, error)
	GetUserByUsername(ctx context.Context, username string) (*model.User, error)
	GetUserByEmail(ctx context.Context, email string) (*model.User, error)
}

// Tokens issues and verifies bearer tokens.
type Tokens interface {
	Issue(subject string) (string, error)
	Verify(token string) (*auth.Claims, error)
}

// AccountService handles registration, login and token resolution.
type AccountService struct {
	users   UserStore
	tokens  Tokens
	metrics metrics.Recorder

	dummyOnce sync.Once
	dummyHash string
}

// NewAccountService creates a new AccountService.
func NewAccountService(users UserStore, tokens Tokens, recorder metrics.Recorder) *AccountService {
	if recorder == nil {
		recorder = metrics.NewNoop()
	}
	return &AccountService{
		users:   users,
		tokens:  tokens,
		metrics: recorder,
	}
}

// Register creates an account. Username uniqueness is checked before email.
func (s *AccountService) Register(ctx context.Context, req model.RegisterRequest) (*model.User, error) {
	if err := req.Validate(); err != nil {
		return nil, invalidInput(err)
	}

	taken, err := s.users.UsernameExists(ctx, req.Username)
	if err != nil {
		return nil, storageError("check username", err)
	}
	if taken {
		return nil, ErrDuplicateUsername
	}

	taken, err = s.users.EmailExists(ctx, req.Email)
	if err != nil {
		return nil, storageError("check email", err)
	}
	if taken {
		return nil, ErrDuplicateEmail
	}

	hashed, err := auth.HashPassword(req.Password)
	if err != nil {
		return nil, err
	}

	user := &model.User{
		ID:             ulid.Make().String(),
		Username:       req.Username,
		Email:          req.Email,
		HashedPassword: hashed,
		IsActive:       true,
		CreatedAt:      time.Now().UTC(),
	}

	// A concurrent registration can still win between the checks and the insert.
	if err := s.users.CreateUser(ctx, user); err != nil {
		switch {
		case errors.Is(err, repository.ErrUsernameExists):
			return nil, ErrDuplicateUsername
		case errors.Is(err, repository.ErrEmailExists):
			return nil, ErrDuplicateEmail
		}
		return nil, storageError("create user", err)
	}

	s.metrics.IncUserRegistered()

	return user, nil
}

// Login checks credentials and issues an access token for the username.
// Unknown accounts, wrong passwords and inactive accounts all return
// ErrInvalidCredentials.
func (s *AccountService) Login(ctx context.Context, req model.LoginRequest) (*model.TokenResponse, error) {
	if err := req.Validate(); err != nil {
		return nil, invalidInput(err)
	}

	var (
		user *model.User
		err  error
	)
	if req.Username != "" {
		user, err = s.users.GetUserByUsername(ctx, req.Username)
	} else {
		user, err = s.users.GetUserByEmail(ctx, req.Email)
	}

	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			// Burn the same hashing cost as a real check.
			auth.VerifyPassword(req.Password, s.dummyDigest())
			s.metrics.IncLogin(metrics.LoginFailure)
			return nil, ErrInvalidCredentials
		}
		return nil, storageError("get user", err)
	}

	if !auth.VerifyPassword(req.Password, user.HashedPassword) || !user.IsActive {
		s.metrics.IncLogin(metrics.LoginFailure)
		return nil, ErrInvalidCredentials
	}

	token, err := s.tokens.Issue(user.Username)
	if err != nil {
		return nil, err
	}

	s.metrics.IncLogin(metrics.LoginSuccess)

	return &model.TokenResponse{
		AccessToken: token,
		TokenType:   auth.TokenType,
	}, nil
}

// Authenticate resolves a bearer token to the active account it was issued for.
// Every token or account problem returns ErrUnauthenticated.
func (s *AccountService) Authenticate(ctx context.Context, token string) (*model.AuthContext, error) {
	claims, err := s.tokens.Verify(token)
	if err != nil {
		return nil, ErrUnauthenticated
	}

	user, err := s.users.GetUserByUsername(ctx, claims.Username())
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return nil, ErrUnauthenticated
		}
		return nil, storageError("resolve token user", err)
	}
	if !user.IsActive {
		return nil, ErrUnauthenticated
	}

	return &model.AuthContext{
		UserID:   user.ID,
		Username: user.Username,
	}, nil
}

func (s *AccountService) dummyDigest() string {
	s.dummyOnce.Do(func() {
		// An error leaves the digest empty; VerifyPassword then returns false early.
		s.dummyHash, _ = auth.HashPassword(ulid.Make().String())
	})
	return s.dummyHash
}
