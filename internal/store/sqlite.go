package store

import (
	"database/sql"
	"fmt"
	"time"

	_ "modernc.org/sqlite"
)

// SQLiteStore tracks seen posting keys and run history in a SQLite
// database. Seen keys drive new-posting notifications across runs.
type SQLiteStore struct {
	db *sql.DB
}

// RunRecord is one row of collection run history.
type RunRecord struct {
	ID          string
	CollectedAt time.Time
	Total       int
	Analyzed    int
}

// NewSQLiteStore opens (or creates) a SQLite database at dbPath and
// ensures the schema exists.
func NewSQLiteStore(dbPath string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("opening sqlite db: %w", err)
	}

	// Verify the connection is alive.
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("pinging sqlite db: %w", err)
	}

	schema := `
	CREATE TABLE IF NOT EXISTS seen_postings (
		key        TEXT PRIMARY KEY,
		first_seen DATETIME DEFAULT CURRENT_TIMESTAMP
	);
	CREATE TABLE IF NOT EXISTS runs (
		id           TEXT PRIMARY KEY,
		collected_at DATETIME NOT NULL,
		total        INTEGER NOT NULL,
		analyzed     INTEGER NOT NULL
	);`
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("creating schema: %w", err)
	}

	return &SQLiteStore{db: db}, nil
}

// HasSeen returns true if the given posting key has already been recorded.
func (s *SQLiteStore) HasSeen(key string) (bool, error) {
	var exists int
	err := s.db.QueryRow("SELECT 1 FROM seen_postings WHERE key = ?", key).Scan(&exists)
	if err == sql.ErrNoRows {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("checking seen status for %s: %w", key, err)
	}
	return true, nil
}

// MarkSeen records a posting key as seen. If it already exists the call
// is a no-op.
func (s *SQLiteStore) MarkSeen(key string) error {
	_, err := s.db.Exec("INSERT OR IGNORE INTO seen_postings (key) VALUES (?)", key)
	if err != nil {
		return fmt.Errorf("marking posting %s as seen: %w", key, err)
	}
	return nil
}

// Cleanup deletes seen-posting entries older than the given duration.
func (s *SQLiteStore) Cleanup(olderThan time.Duration) error {
	cutoff := time.Now().Add(-olderThan)
	_, err := s.db.Exec("DELETE FROM seen_postings WHERE first_seen < ?", cutoff)
	if err != nil {
		return fmt.Errorf("cleaning up postings older than %v: %w", olderThan, err)
	}
	return nil
}

// IsEmpty returns true if no posting has ever been recorded. The first
// run suppresses notifications so a fresh install does not flood.
func (s *SQLiteStore) IsEmpty() (bool, error) {
	var count int
	err := s.db.QueryRow("SELECT COUNT(*) FROM seen_postings").Scan(&count)
	if err != nil {
		return false, fmt.Errorf("checking if store is empty: %w", err)
	}
	return count == 0, nil
}

// RecordRun appends one entry to the run history.
func (s *SQLiteStore) RecordRun(r RunRecord) error {
	_, err := s.db.Exec(
		"INSERT INTO runs (id, collected_at, total, analyzed) VALUES (?, ?, ?, ?)",
		r.ID, r.CollectedAt, r.Total, r.Analyzed,
	)
	if err != nil {
		return fmt.Errorf("recording run %s: %w", r.ID, err)
	}
	return nil
}

// RecentRuns returns the most recent runs, newest first.
func (s *SQLiteStore) RecentRuns(limit int) ([]RunRecord, error) {
	rows, err := s.db.Query(
		"SELECT id, collected_at, total, analyzed FROM runs ORDER BY collected_at DESC LIMIT ?",
		limit,
	)
	if err != nil {
		return nil, fmt.Errorf("querying run history: %w", err)
	}
	defer rows.Close()

	var runs []RunRecord
	for rows.Next() {
		var r RunRecord
		if err := rows.Scan(&r.ID, &r.CollectedAt, &r.Total, &r.Analyzed); err != nil {
			return nil, fmt.Errorf("scanning run row: %w", err)
		}
		runs = append(runs, r)
	}
	return runs, rows.Err()
}

// Close closes the underlying database connection.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}
