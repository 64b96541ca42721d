package repository

import (
	"context"
	_ "embed"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/lib/pq"
)

//go:embed schema.sql
var schemaSQL string

// SchemaTables lists the tables created by schema.sql.
var SchemaTables = []string{"users", "user_data"}

// SchemaSQL returns the embedded schema definition.
func SchemaSQL() string {
	return schemaSQL
}

// EnsureSchema creates missing tables. Existing tables are left untouched.
func (r *Repository) EnsureSchema(ctx context.Context) error {
	if _, err := r.pool.Exec(ctx, schemaSQL); err != nil {
		return fmt.Errorf("failed to apply schema: %w", classify(err))
	}
	return nil
}

// TablesExist reports whether every table in SchemaTables is present.
func (r *Repository) TablesExist(ctx context.Context) (bool, error) {
	query := `
		SELECT COUNT(*)
		FROM information_schema.tables
		WHERE table_schema = current_schema()
		  AND table_name = ANY($1)
	`

	var count int
	if err := r.pool.QueryRow(ctx, query, SchemaTables).Scan(&count); err != nil {
		return false, fmt.Errorf("failed to check tables: %w", classify(err))
	}

	return count == len(SchemaTables), nil
}

// EnsureDatabase connects to the maintenance database at adminURL and
// creates database name if it does not exist. It reports whether the
// database was created.
func EnsureDatabase(ctx context.Context, adminURL, name string) (bool, error) {
	conn, err := pgx.Connect(ctx, adminURL)
	if err != nil {
		return false, fmt.Errorf("failed to connect to maintenance database: %w", classify(err))
	}
	defer conn.Close(ctx)

	var exists bool
	err = conn.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM pg_database WHERE datname = $1)`, name).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("failed to look up database: %w", classify(err))
	}
	if exists {
		return false, nil
	}

	if _, err := conn.Exec(ctx, createDatabaseStatement(name)); err != nil {
		return false, fmt.Errorf("failed to create database %s: %w", name, classify(err))
	}

	return true, nil
}

// createDatabaseStatement quotes name so identifiers like "3d" are accepted.
func createDatabaseStatement(name string) string {
	return "CREATE DATABASE " + pq.QuoteIdentifier(name)
}
