// Package frecency keeps the per-entry access log that feeds the ranker's
// frequency and recency bonuses.
//
// The log is append-only in SQLite (WAL mode, busy timeout) with an
// in-memory summary per id. The summary is the contract the ranker reads;
// SQLite only makes it survive restarts.
package frecency

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	_ "modernc.org/sqlite"

	"github.com/tomhartill/omnidex/internal/logging"
)

var frecLog = logging.ForComponent(logging.CompFrecency)

// SchemaVersion tracks the database schema. Bump when adding migrations.
const SchemaVersion = 1

// Record is the in-memory summary for one entry id.
type Record struct {
	Count  uint32
	LastTS time.Time
}

// Store owns the access log. Its lock is always acquired last in the
// engine's lock order.
type Store struct {
	mu      sync.RWMutex
	records map[string]Record
	db      *sql.DB
	now     func() time.Time
}

// Open creates or opens the store at dbPath. An empty dbPath gives a pure
// in-memory store (used by tests and callers that delegate persistence).
func Open(dbPath string) (*Store, error) {
	s := &Store{
		records: make(map[string]Record),
		now:     time.Now,
	}
	if dbPath == "" {
		return s, nil
	}

	if err := os.MkdirAll(filepath.Dir(dbPath), 0o700); err != nil {
		return nil, fmt.Errorf("frecency: mkdir: %w", err)
	}
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("frecency: open: %w", err)
	}
	// WAL allows the engine's readers while an access is being appended
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("frecency: wal mode: %w", err)
	}
	if _, err := db.Exec("PRAGMA busy_timeout=5000"); err != nil {
		db.Close()
		return nil, fmt.Errorf("frecency: busy timeout: %w", err)
	}
	s.db = db

	if err := s.migrate(); err != nil {
		db.Close()
		return nil, err
	}
	if err := s.load(); err != nil {
		db.Close()
		return nil, err
	}
	return s, nil
}

func (s *Store) migrate() error {
	_, err := s.db.Exec(`
		CREATE TABLE IF NOT EXISTS metadata (
			key TEXT PRIMARY KEY,
			value TEXT NOT NULL
		);
		CREATE TABLE IF NOT EXISTS accesses (
			entry_id TEXT NOT NULL,
			ts INTEGER NOT NULL
		);
		CREATE INDEX IF NOT EXISTS idx_accesses_entry ON accesses(entry_id);
	`)
	if err != nil {
		return fmt.Errorf("frecency: migrate: %w", err)
	}
	_, err = s.db.Exec(
		`INSERT OR REPLACE INTO metadata (key, value) VALUES ('schema_version', ?)`,
		fmt.Sprint(SchemaVersion))
	if err != nil {
		return fmt.Errorf("frecency: schema version: %w", err)
	}
	return nil
}

// load rebuilds the in-memory summary from the log.
func (s *Store) load() error {
	rows, err := s.db.Query(
		`SELECT entry_id, COUNT(*), MAX(ts) FROM accesses GROUP BY entry_id`)
	if err != nil {
		return fmt.Errorf("frecency: load: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var id string
		var count uint32
		var last int64
		if err := rows.Scan(&id, &count, &last); err != nil {
			return fmt.Errorf("frecency: scan: %w", err)
		}
		s.records[id] = Record{Count: count, LastTS: time.Unix(last, 0)}
	}
	return rows.Err()
}

// Close closes the backing database, if any.
func (s *Store) Close() error {
	if s.db == nil {
		return nil
	}
	_, _ = s.db.Exec("PRAGMA wal_checkpoint(TRUNCATE)")
	return s.db.Close()
}

// RecordAccess appends one access for id. Called by the embedding process
// after a result row is activated.
func (s *Store) RecordAccess(id string) {
	ts := s.now()

	s.mu.Lock()
	r := s.records[id]
	r.Count++
	r.LastTS = ts
	s.records[id] = r
	s.mu.Unlock()

	if s.db != nil {
		if _, err := s.db.Exec(
			`INSERT INTO accesses (entry_id, ts) VALUES (?, ?)`, id, ts.Unix()); err != nil {
			frecLog.Warn("access_append_failed", "id", id, "error", err.Error())
		}
	}
}

// Get returns the summary for id; ok is false when the id was never
// accessed.
func (s *Store) Get(id string) (Record, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	r, ok := s.records[id]
	return r, ok
}

// Purge drops every record, memory and log both.
func (s *Store) Purge() error {
	s.mu.Lock()
	s.records = make(map[string]Record)
	s.mu.Unlock()

	if s.db != nil {
		if _, err := s.db.Exec(`DELETE FROM accesses`); err != nil {
			return fmt.Errorf("frecency: purge: %w", err)
		}
	}
	return nil
}

// SetClock overrides the timestamp source, for tests.
func (s *Store) SetClock(now func() time.Time) {
	s.now = now
}
