package storage

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
)

// ExpectedSchemaVersion is the latest schema version that the application
// expects. If the database cannot be migrated to this version, it's a
// fatal error.
const ExpectedSchemaVersion = 1

// Migration represents a database schema migration.
type Migration struct {
	Up          func(*sql.Tx) error
	Description string
	Version     int
}

var migrations = []Migration{
	{
		Version:     1,
		Description: "Initial schema",
		Up: func(tx *sql.Tx) error {
			queries := []string{
				`CREATE TABLE IF NOT EXISTS runs (
					id INTEGER PRIMARY KEY AUTOINCREMENT,
					started_at DATETIME NOT NULL,
					ledger_path TEXT NOT NULL,
					entry_count INTEGER NOT NULL,
					outbound_count INTEGER NOT NULL,
					matched_count INTEGER NOT NULL
				)`,

				`CREATE TABLE IF NOT EXISTS matches (
					run_id INTEGER NOT NULL,
					entry_id TEXT NOT NULL,
					transaction_hash TEXT NOT NULL,
					time DATETIME NOT NULL,
					value TEXT NOT NULL,
					recipient TEXT,
					FOREIGN KEY (run_id) REFERENCES runs(id)
				)`,
				`CREATE INDEX IF NOT EXISTS idx_matches_run ON matches(run_id)`,
				`CREATE INDEX IF NOT EXISTS idx_matches_entry ON matches(entry_id)`,
			}
			for _, q := range queries {
				if _, err := tx.Exec(q); err != nil {
					return fmt.Errorf("failed to execute %q: %w", q, err)
				}
			}
			return nil
		},
	},
}

// Migrate brings the database schema up to the expected version.
func (s *SQLiteStorage) Migrate(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx,
		`CREATE TABLE IF NOT EXISTS schema_versions (
			version INTEGER PRIMARY KEY,
			applied_at DATETIME DEFAULT CURRENT_TIMESTAMP
		)`); err != nil {
		return fmt.Errorf("failed to create schema_versions table: %w", err)
	}

	var current sql.NullInt64
	if err := s.db.QueryRowContext(ctx,
		`SELECT MAX(version) FROM schema_versions`).Scan(&current); err != nil {
		return fmt.Errorf("failed to read schema version: %w", err)
	}

	for _, m := range migrations {
		if current.Valid && m.Version <= int(current.Int64) {
			continue
		}

		slog.Debug("Applying migration",
			"version", m.Version,
			"description", m.Description)

		tx, err := s.db.BeginTx(ctx, nil)
		if err != nil {
			return fmt.Errorf("failed to begin migration %d: %w", m.Version, err)
		}
		if err := m.Up(tx); err != nil {
			_ = tx.Rollback()
			return fmt.Errorf("migration %d failed: %w", m.Version, err)
		}
		if _, err := tx.Exec(`INSERT INTO schema_versions (version) VALUES (?)`, m.Version); err != nil {
			_ = tx.Rollback()
			return fmt.Errorf("failed to record migration %d: %w", m.Version, err)
		}
		if err := tx.Commit(); err != nil {
			return fmt.Errorf("failed to commit migration %d: %w", m.Version, err)
		}
	}

	var final sql.NullInt64
	if err := s.db.QueryRowContext(ctx,
		`SELECT MAX(version) FROM schema_versions`).Scan(&final); err != nil {
		return fmt.Errorf("failed to read schema version: %w", err)
	}
	if !final.Valid || int(final.Int64) != ExpectedSchemaVersion {
		return fmt.Errorf("database is at schema version %d, expected %d", final.Int64, ExpectedSchemaVersion)
	}

	return nil
}
