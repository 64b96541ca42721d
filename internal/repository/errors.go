package repository

import (
	"errors"
	"fmt"
	"net"

	"github.com/jackc/pgx/v5/pgconn"
)

// ErrUnavailable indicates the database could not be reached.
var ErrUnavailable = errors.New("database unavailable")

// PostgreSQL error codes.
const (
	codeUniqueViolation = "23505"
)

// Constraint names declared in schema.sql.
const (
	constraintUsersUsername = "users_username_key"
	constraintUsersEmail    = "users_email_key"
)

// classify maps connection failures to ErrUnavailable, keeping the cause.
func classify(err error) error {
	if err == nil {
		return nil
	}
	if isUnavailable(err) {
		return fmt.Errorf("%w: %w", ErrUnavailable, err)
	}
	return err
}

func isUnavailable(err error) bool {
	var connectErr *pgconn.ConnectError
	if errors.As(err, &connectErr) {
		return true
	}

	var netErr net.Error
	if errors.As(err, &netErr) {
		return true
	}

	return false
}

// uniqueViolation returns the violated constraint name, or "" if err is
// not a unique violation.
func uniqueViolation(err error) string {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == codeUniqueViolation {
		if pgErr.ConstraintName == "" {
			return "unknown"
		}
		return pgErr.ConstraintName
	}
	return ""
}
