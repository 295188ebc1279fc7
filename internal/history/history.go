// Package history persists build run records so `stylebook history` can list
// recent outcomes.
package history

import (
	"context"
	"database/sql"
	"fmt"
	"sync"
	"time"

	_ "modernc.org/sqlite"
)

// Record is one completed build run.
type Record struct {
	BuildID    string
	Started    time.Time
	Finished   time.Time
	Outcome    string
	Commit     string
	Rulesets   int
	Guidelines int
	Pages      int
	Warnings   int
}

// Store is a SQLite-backed build history.
type Store struct {
	db *sql.DB
	mu sync.RWMutex
}

// Open opens (and initializes) the history database.
// Use ":memory:" for an in-memory database, or a file path for persistence.
func Open(dbPath string) (*Store, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}

	s := &Store{db: db}
	if err := s.initialize(); err != nil {
		_ = db.Close() // Best effort cleanup on initialization error
		return nil, fmt.Errorf("initialize schema: %w", err)
	}
	return s, nil
}

func (s *Store) initialize() error {
	schema := `
	CREATE TABLE IF NOT EXISTS builds (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		build_id TEXT NOT NULL,
		started INTEGER NOT NULL,
		finished INTEGER NOT NULL,
		outcome TEXT NOT NULL,
		commit_hash TEXT,
		rulesets INTEGER NOT NULL,
		guidelines INTEGER NOT NULL,
		pages INTEGER NOT NULL,
		warnings INTEGER NOT NULL
	);
	CREATE INDEX IF NOT EXISTS idx_builds_started ON builds(started);
	`
	_, err := s.db.Exec(schema)
	return err
}

// Append stores a completed build record.
func (s *Store) Append(ctx context.Context, r Record) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, err := s.db.ExecContext(ctx,
		`INSERT INTO builds (build_id, started, finished, outcome, commit_hash, rulesets, guidelines, pages, warnings)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		r.BuildID, r.Started.Unix(), r.Finished.Unix(), r.Outcome, r.Commit,
		r.Rulesets, r.Guidelines, r.Pages, r.Warnings,
	)
	if err != nil {
		return fmt.Errorf("insert build record: %w", err)
	}
	return nil
}

// Recent returns up to limit build records, most recent first.
func (s *Store) Recent(ctx context.Context, limit int) ([]Record, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.QueryContext(ctx,
		`SELECT build_id, started, finished, outcome, commit_hash, rulesets, guidelines, pages, warnings
		 FROM builds ORDER BY id DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("query builds: %w", err)
	}
	defer rows.Close()

	var records []Record
	for rows.Next() {
		var r Record
		var started, finished int64
		if err := rows.Scan(&r.BuildID, &started, &finished, &r.Outcome, &r.Commit,
			&r.Rulesets, &r.Guidelines, &r.Pages, &r.Warnings); err != nil {
			return nil, fmt.Errorf("scan build record: %w", err)
		}
		r.Started = time.Unix(started, 0)
		r.Finished = time.Unix(finished, 0)
		records = append(records, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate rows: %w", err)
	}
	return records, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.db.Close()
}
