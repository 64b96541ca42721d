// Package model defines domain entities for the application.
package model

import (
	"strings"
	"time"
	"unicode/utf8"
)

// Column widths of the users table, in characters.
const (
	MaxUsernameLength = 50
	MaxEmailLength    = 100
)

// User is an account that owns at most one scene document.
type User struct {
	ID             string    `json:"id"`
	Username       string    `json:"username"`
	Email          string    `json:"email"`
	HashedPassword string    `json:"-"`
	IsActive       bool      `json:"is_active"`
	CreatedAt      time.Time `json:"created_at"`
}

// AuthContext holds authenticated request context.
// This is injected into the request context by auth middleware.
type AuthContext struct {
	UserID   string
	Username string
}

// RegisterRequest is the body of POST /register.
type RegisterRequest struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

// Validate trims identifiers and checks required fields.
func (r *RegisterRequest) Validate() error {
	r.Username = strings.TrimSpace(r.Username)
	r.Email = strings.TrimSpace(r.Email)

	switch {
	case r.Username == "":
		return &ValidationError{Field: "username", Message: "username is required"}
	case utf8.RuneCountInString(r.Username) > MaxUsernameLength:
		return &ValidationError{Field: "username", Message: "username is too long"}
	case hasNUL(r.Username):
		return &ValidationError{Field: "username", Message: "username contains invalid characters"}
	case r.Email == "":
		return &ValidationError{Field: "email", Message: "email is required"}
	case utf8.RuneCountInString(r.Email) > MaxEmailLength:
		return &ValidationError{Field: "email", Message: "email is too long"}
	case !strings.Contains(r.Email, "@") || hasNUL(r.Email):
		return &ValidationError{Field: "email", Message: "email is invalid"}
	case r.Password == "":
		return &ValidationError{Field: "password", Message: "password is required"}
	}
	return nil
}

// LoginRequest is the body of POST /login. Username takes precedence over email.
type LoginRequest struct {
	Username string `json:"username,omitempty"`
	Email    string `json:"email,omitempty"`
	Password string `json:"password"`
}

// Validate requires one identifier and a password.
func (r *LoginRequest) Validate() error {
	r.Username = strings.TrimSpace(r.Username)
	r.Email = strings.TrimSpace(r.Email)

	if r.Username == "" && r.Email == "" {
		return &ValidationError{Field: "username", Message: "Either username or email must be provided"}
	}
	if r.Password == "" {
		return &ValidationError{Field: "password", Message: "password is required"}
	}
	return nil
}

// ValidationError reports a request field that failed validation.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}

// TokenResponse is the body returned by a successful login.
type TokenResponse struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
}

// hasNUL reports whether s contains a NUL byte, which PostgreSQL text
// columns cannot store.
func hasNUL(s string) bool {
	return strings.IndexByte(s, 0) >= 0
}
