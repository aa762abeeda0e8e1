// Package catalog maintains an ephemeral SQLite index over saved sessions
// for fast listing and aggregate queries. The per-session artifacts remain
// canonical; the catalog can be dropped and rebuilt from them at any time.
package catalog

import (
	"database/sql"
	"fmt"
	"path/filepath"

	"github.com/matsen/vocabmap/internal/session"
	_ "modernc.org/sqlite"
)

// DBFile is the catalog database file name under the sessions root.
const DBFile = "catalog.db"

// DB wraps the catalog SQLite connection.
type DB struct {
	db *sql.DB
}

// Entry is one cataloged session with its match status tallies.
type Entry struct {
	SessionName string `json:"session_name"`
	ProjectName string `json:"project_name"`
	Timestamp   string `json:"timestamp"`
	SourceCount int    `json:"source_count"`
	TargetCount int    `json:"target_count"`
	MatchCount  int    `json:"matches_count"`
	Confirmed   int    `json:"confirmed"`
	Rejected    int    `json:"rejected"`
	Unconfirmed int    `json:"unconfirmed"`
}

// FullyMapped reports whether every match in the session is resolved.
func (e Entry) FullyMapped() bool {
	return e.Unconfirmed == 0
}

// Path returns the catalog database path for a sessions root.
func Path(root string) string {
	return filepath.Join(root, DBFile)
}

// OpenDB opens or creates the catalog database at the given path.
func OpenDB(path string) (*DB, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("opening catalog: %w", err)
	}

	db.SetMaxOpenConns(1) // SQLite doesn't support concurrent writes

	if err := createSchema(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("creating catalog schema: %w", err)
	}

	return &DB{db: db}, nil
}

// Close closes the database connection.
func (d *DB) Close() error {
	return d.db.Close()
}

// createSchema creates the catalog schema if it doesn't exist.
func createSchema(db *sql.DB) error {
	schema := `
		CREATE TABLE IF NOT EXISTS sessions (
			session_name TEXT PRIMARY KEY,
			project_name TEXT NOT NULL,
			timestamp TEXT NOT NULL,
			source_count INTEGER NOT NULL,
			target_count INTEGER NOT NULL,
			match_count INTEGER NOT NULL,
			confirmed INTEGER NOT NULL,
			rejected INTEGER NOT NULL,
			unconfirmed INTEGER NOT NULL
		);

		CREATE INDEX IF NOT EXISTS idx_sessions_timestamp ON sessions(timestamp);
	`
	_, err := db.Exec(schema)
	return err
}

// Rebuild clears the catalog and re-indexes every session under the root,
// returning the number of sessions indexed. Sessions that fail to load are
// skipped; the canonical artifacts stay untouched either way.
func (d *DB) Rebuild(root string) (int, error) {
	metas, err := session.List(root)
	if err != nil {
		return 0, fmt.Errorf("listing sessions: %w", err)
	}

	if _, err := d.db.Exec("DELETE FROM sessions"); err != nil {
		return 0, fmt.Errorf("clearing sessions table: %w", err)
	}

	stmt, err := d.db.Prepare(`
		INSERT INTO sessions (session_name, project_name, timestamp,
			source_count, target_count, match_count,
			confirmed, rejected, unconfirmed)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		return 0, fmt.Errorf("preparing insert: %w", err)
	}
	defer stmt.Close()

	indexed := 0
	for _, meta := range metas {
		s, err := session.Load(root, meta.SessionName)
		if err != nil {
			continue
		}
		sum := s.Summarize()

		_, err = stmt.Exec(meta.SessionName, meta.ProjectName, meta.Timestamp,
			meta.SourceCount, meta.TargetCount, meta.MatchCount,
			sum.Confirmed, sum.Rejected, sum.Unconfirmed)
		if err != nil {
			return indexed, fmt.Errorf("inserting session %s: %w", meta.SessionName, err)
		}
		indexed++
	}

	return indexed, nil
}

// List returns all cataloged sessions, newest first.
func (d *DB) List() ([]Entry, error) {
	rows, err := d.db.Query(`
		SELECT session_name, project_name, timestamp,
			source_count, target_count, match_count,
			confirmed, rejected, unconfirmed
		FROM sessions
		ORDER BY timestamp DESC
	`)
	if err != nil {
		return nil, fmt.Errorf("querying sessions: %w", err)
	}
	defer rows.Close()

	var entries []Entry
	for rows.Next() {
		var e Entry
		err := rows.Scan(&e.SessionName, &e.ProjectName, &e.Timestamp,
			&e.SourceCount, &e.TargetCount, &e.MatchCount,
			&e.Confirmed, &e.Rejected, &e.Unconfirmed)
		if err != nil {
			return nil, fmt.Errorf("scanning session row: %w", err)
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

// Stats aggregates match status counts across all cataloged sessions.
type Stats struct {
	Sessions    int `json:"sessions"`
	FullyMapped int `json:"fully_mapped"`
	Matches     int `json:"matches"`
	Confirmed   int `json:"confirmed"`
	Rejected    int `json:"rejected"`
	Unconfirmed int `json:"unconfirmed"`
}

// Stats returns aggregate counts over the catalog.
func (d *DB) Stats() (Stats, error) {
	var s Stats
	err := d.db.QueryRow(`
		SELECT COUNT(*),
			COALESCE(SUM(CASE WHEN unconfirmed = 0 THEN 1 ELSE 0 END), 0),
			COALESCE(SUM(match_count), 0),
			COALESCE(SUM(confirmed), 0),
			COALESCE(SUM(rejected), 0),
			COALESCE(SUM(unconfirmed), 0)
		FROM sessions
	`).Scan(&s.Sessions, &s.FullyMapped, &s.Matches, &s.Confirmed, &s.Rejected, &s.Unconfirmed)
	if err != nil {
		return Stats{}, fmt.Errorf("querying stats: %w", err)
	}
	return s, nil
}
