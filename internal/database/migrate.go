package database

import (
	"context"
	"embed"
	"fmt"
	"io/fs"
	"sort"

	"github.com/immowerk/fiskal-api/internal/logger"
)

//go:embed migrations/*.sql
var migrationFS embed.FS

// migrationLockID keys the Postgres advisory lock that serializes
// concurrent migration runs (e.g. overlapping deploys).
const migrationLockID = 7491205

// Migrate applies all pending SQL migrations in lexicographic order.
// It creates the schema_migrations tracking table if needed, then applies
// any embedded .sql file not yet recorded.
func Migrate(ctx context.Context, q Querier, log *logger.Logger) error {
	if _, err := q.Exec(ctx, "SELECT pg_advisory_lock($1)", migrationLockID); err != nil {
		return fmt.Errorf("failed to acquire migration advisory lock: %w", err)
	}
	defer func() {
		if _, err := q.Exec(ctx, "SELECT pg_advisory_unlock($1)", migrationLockID); err != nil {
			log.Warn("Failed to release migration advisory lock", map[string]interface{}{
				"error": err.Error(),
			})
		}
	}()

	if err := ensureMigrationTable(ctx, q); err != nil {
		return err
	}

	entries, err := fs.ReadDir(migrationFS, "migrations")
	if err != nil {
		return fmt.Errorf("failed to read migration dir: %w", err)
	}

	// Lexicographic order equals numeric order with zero-padded names.
	sort.Slice(entries, func(i, j int) bool {
		return entries[i].Name() < entries[j].Name()
	})

	applied, err := appliedMigrations(ctx, q)
	if err != nil {
		return err
	}

	for _, entry := range entries {
		name := entry.Name()
		if applied[name] {
			continue
		}

		data, err := migrationFS.ReadFile("migrations/" + name)
		if err != nil {
			return fmt.Errorf("failed to read migration %s: %w", name, err)
		}

		log.Info("Applying migration", map[string]interface{}{"file": name})

		if _, err := q.Exec(ctx, string(data)); err != nil {
			return fmt.Errorf("failed to apply migration %s: %w", name, err)
		}

		if _, err := q.Exec(ctx,
			"INSERT INTO schema_migrations (filename) VALUES ($1)",
			name,
		); err != nil {
			return fmt.Errorf("failed to record migration %s: %w", name, err)
		}
	}

	return nil
}

// ensureMigrationTable creates the migration tracking table if it doesn't exist.
func ensureMigrationTable(ctx context.Context, q Querier) error {
	sql := `
		CREATE TABLE IF NOT EXISTS schema_migrations (
			id         SERIAL PRIMARY KEY,
			filename   TEXT NOT NULL UNIQUE,
			applied_at TIMESTAMPTZ NOT NULL DEFAULT now()
		)
	`
	if _, err := q.Exec(ctx, sql); err != nil {
		return fmt.Errorf("failed to ensure migration table: %w", err)
	}
	return nil
}

// appliedMigrations returns the set of already-applied migration filenames.
func appliedMigrations(ctx context.Context, q Querier) (map[string]bool, error) {
	rows, err := q.Query(ctx, "SELECT filename FROM schema_migrations")
	if err != nil {
		return nil, fmt.Errorf("failed to query applied migrations: %w", err)
	}
	defer rows.Close()

	applied := make(map[string]bool)
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, fmt.Errorf("failed to scan migration row: %w", err)
		}
		applied[name] = true
	}
	return applied, rows.Err()
}
