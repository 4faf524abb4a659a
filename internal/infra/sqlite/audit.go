// Package sqlite persists journal entries as an audit trail. The sink is
// optional: when disabled the engine runs fully in memory. Entries are stored
// as JSON alongside the indexed fields used for range queries.
package sqlite

import (
	"database/sql"
	"encoding/json"
	"fmt"

	_ "modernc.org/sqlite"

	"github.com/mintebank/minte/internal/journal"
)

// DB wraps the sqlite handle.
type DB struct {
	db *sql.DB
}

// Open opens (or creates) the database at path and applies the schema.
// Use ":memory:" for an ephemeral database.
func Open(path string) (*DB, error) {
	handle, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite %s: %w", path, err)
	}
	db := &DB{db: handle}
	if err := db.migrate(); err != nil {
		handle.Close()
		return nil, err
	}
	return db, nil
}

// Close releases the underlying handle.
func (db *DB) Close() error {
	return db.db.Close()
}

// Migrations returns the schema statements. Each string is a single SQL
// statement (SQLite executes one at a time).
func Migrations() []string {
	return []string{
		`CREATE TABLE IF NOT EXISTS audit_entries (
			id          INTEGER PRIMARY KEY AUTOINCREMENT,
			entity      TEXT NOT NULL,
			timestamp   INTEGER NOT NULL,
			description TEXT NOT NULL,
			payload     TEXT NOT NULL,
			recorded_at TEXT NOT NULL DEFAULT (datetime('now'))
		)`,
		`CREATE INDEX IF NOT EXISTS idx_audit_entity ON audit_entries(entity)`,
		`CREATE INDEX IF NOT EXISTS idx_audit_entity_ts ON audit_entries(entity, timestamp)`,
	}
}

func (db *DB) migrate() error {
	for _, stmt := range Migrations() {
		if _, err := db.db.Exec(stmt); err != nil {
			return fmt.Errorf("migrate: %w", err)
		}
	}
	return nil
}

// ─── Audit Operations ───────────────────────────────────────────────────────

// Record mirrors one journal entry for the given entity (an account IBAN or a
// user email). It satisfies the engine's audit-sink contract.
func (db *DB) Record(entity string, entry journal.Entry) error {
	payload, err := json.Marshal(entry)
	if err != nil {
		return fmt.Errorf("marshal audit entry: %w", err)
	}
	_, err = db.db.Exec(`
		INSERT INTO audit_entries (entity, timestamp, description, payload)
		VALUES (?, ?, ?, ?)
	`, entity, entry.Timestamp, entry.Description, string(payload))
	return err
}

// EntriesFor returns every recorded entry for an entity, in insert order.
func (db *DB) EntriesFor(entity string) ([]journal.Entry, error) {
	rows, err := db.db.Query(`
		SELECT payload FROM audit_entries WHERE entity = ? ORDER BY id
	`, entity)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanEntries(rows)
}

// EntriesInRange returns an entity's entries with start <= timestamp <= end,
// in insert order.
func (db *DB) EntriesInRange(entity string, start, end int) ([]journal.Entry, error) {
	rows, err := db.db.Query(`
		SELECT payload FROM audit_entries
		WHERE entity = ? AND timestamp >= ? AND timestamp <= ?
		ORDER BY id
	`, entity, start, end)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanEntries(rows)
}

// CountFor returns the number of recorded entries for an entity.
func (db *DB) CountFor(entity string) (int, error) {
	var count int
	err := db.db.QueryRow(`
		SELECT COUNT(*) FROM audit_entries WHERE entity = ?
	`, entity).Scan(&count)
	return count, err
}

func scanEntries(rows *sql.Rows) ([]journal.Entry, error) {
	var result []journal.Entry
	for rows.Next() {
		var payload string
		if err := rows.Scan(&payload); err != nil {
			return nil, err
		}
		var entry journal.Entry
		if err := json.Unmarshal([]byte(payload), &entry); err != nil {
			return nil, fmt.Errorf("unmarshal audit entry: %w", err)
		}
		result = append(result, entry)
	}
	return result, rows.Err()
}
