// Package sqlite provides local persistence: a self-contained ledger backend
// for running without remote credentials, and a best-effort archive of every
// confirmed entry for a durable local audit trail.
package sqlite

import (
	"database/sql"
	"fmt"

	_ "modernc.org/sqlite"
)

// DB wraps the sqlite connection.
type DB struct {
	db *sql.DB
}

// Open opens (or creates) the database at path and applies migrations.
// Use ":memory:" for tests.
func Open(path string) (*DB, error) {
	conn, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	// Serialized access: the bridge is personal-scale, a single writer is fine.
	conn.SetMaxOpenConns(1)

	d := &DB{db: conn}
	if err := d.migrate(); err != nil {
		conn.Close()
		return nil, err
	}
	return d, nil
}

// Close closes the underlying connection.
func (d *DB) Close() error {
	return d.db.Close()
}

// migrate applies the schema statements one at a time.
func (d *DB) migrate() error {
	for _, stmt := range migrations() {
		if _, err := d.db.Exec(stmt); err != nil {
			return fmt.Errorf("migrate: %w", err)
		}
	}
	return nil
}

// migrations returns the schema migration statements.
// Each string is a single SQL statement (SQLite executes one at a time).
// Amounts are stored as TEXT to keep decimal exactness.
func migrations() []string {
	return []string{
		`CREATE TABLE IF NOT EXISTS ledger_entries (
			id         INTEGER PRIMARY KEY AUTOINCREMENT,
			name       TEXT NOT NULL,
			amount     TEXT NOT NULL,
			entry_date TEXT NOT NULL,
			category   TEXT,
			created_at TEXT NOT NULL DEFAULT (datetime('now'))
		)`,
		`CREATE INDEX IF NOT EXISTS idx_ledger_entries_date ON ledger_entries(entry_date)`,

		`CREATE TABLE IF NOT EXISTS archive_entries (
			id         INTEGER PRIMARY KEY AUTOINCREMENT,
			record_id  TEXT NOT NULL,
			name       TEXT NOT NULL,
			amount     TEXT NOT NULL,
			entry_date TEXT NOT NULL,
			category   TEXT,
			created_at TEXT NOT NULL DEFAULT (datetime('now'))
		)`,
	}
}
