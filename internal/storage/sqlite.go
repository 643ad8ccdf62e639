// Package storage provides the SQLite session journal.
// Uses the pure-Go modernc.org/sqlite driver to avoid CGO dependencies.
//
// The journal is an audit trail: it records how sessions went tick by tick
// but nothing is ever read back into a running game.
package storage

import (
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite" // Pure Go SQLite driver
)

// Journal manages the SQLite database connection for session records.
type Journal struct {
	db *sql.DB
}

// Open creates or opens a SQLite database at the given path.
// It creates the parent directories if needed and runs migrations.
func Open(dbPath string) (*Journal, error) {
	// Expand ~ to home directory
	if dbPath != "" && dbPath[0] == '~' {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("storage: cannot expand home directory: %w", err)
		}
		dbPath = filepath.Join(home, dbPath[1:])
	}

	dir := filepath.Dir(dbPath)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("storage: cannot create directory %s: %w", dir, err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("storage: cannot open database: %w", err)
	}
	// SSH sessions record concurrently; sqlite allows a single writer.
	db.SetMaxOpenConns(1)

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("storage: cannot connect to database: %w", err)
	}

	j := &Journal{db: db}
	if err := j.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("storage: migration failed: %w", err)
	}

	return j, nil
}

// migrate creates the database schema if it doesn't exist.
func (j *Journal) migrate() error {
	schema := `
		CREATE TABLE IF NOT EXISTS sessions (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			surface TEXT NOT NULL,
			player TEXT NOT NULL DEFAULT '',
			seed INTEGER NOT NULL DEFAULT 0,
			outcome TEXT NOT NULL DEFAULT 'running',
			length INTEGER NOT NULL DEFAULT 0,
			total INTEGER NOT NULL DEFAULT 0,
			ticks INTEGER NOT NULL DEFAULT 0,
			grid_cols INTEGER NOT NULL DEFAULT 0,
			grid_rows INTEGER NOT NULL DEFAULT 0,
			interval_ms INTEGER NOT NULL DEFAULT 0,
			duration_ms INTEGER NOT NULL DEFAULT 0,
			error TEXT NOT NULL DEFAULT '',
			started_at DATETIME DEFAULT CURRENT_TIMESTAMP
		);
		CREATE INDEX IF NOT EXISTS idx_sessions_outcome ON sessions(outcome);

		CREATE TABLE IF NOT EXISTS ticks (
			session_id INTEGER NOT NULL,
			tick INTEGER NOT NULL,
			length INTEGER NOT NULL,
			head_x INTEGER NOT NULL,
			head_y INTEGER NOT NULL,
			dir INTEGER NOT NULL,
			food_x INTEGER NOT NULL,
			food_y INTEGER NOT NULL,
			food_eaten INTEGER NOT NULL,
			state TEXT NOT NULL,
			PRIMARY KEY (session_id, tick)
		);
	`

	_, err := j.db.Exec(schema)
	return err
}

// Close closes the database connection.
func (j *Journal) Close() error {
	if j.db != nil {
		return j.db.Close()
	}
	return nil
}

// Prune deletes all but the newest keep sessions and their ticks.
// Returns the number of sessions removed.
func (j *Journal) Prune(keep int) (int64, error) {
	if keep < 0 {
		keep = 0
	}

	tx, err := j.db.Begin()
	if err != nil {
		return 0, fmt.Errorf("storage: cannot begin prune: %w", err)
	}
	defer tx.Rollback()

	const stale = `SELECT id FROM sessions ORDER BY id DESC LIMIT -1 OFFSET ?`
	if _, err := tx.Exec(`DELETE FROM ticks WHERE session_id IN (`+stale+`)`, keep); err != nil {
		return 0, fmt.Errorf("storage: cannot prune ticks: %w", err)
	}
	res, err := tx.Exec(`DELETE FROM sessions WHERE id IN (`+stale+`)`, keep)
	if err != nil {
		return 0, fmt.Errorf("storage: cannot prune sessions: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("storage: cannot count pruned sessions: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("storage: cannot commit prune: %w", err)
	}
	return n, nil
}

// parseTime handles both time.Time and string datetimes returned by the driver.
func parseTime(v any) time.Time {
	switch v := v.(type) {
	case time.Time:
		return v
	case string:
		if parsed, err := time.Parse("2006-01-02 15:04:05", v); err == nil {
			return parsed
		}
	}
	return time.Time{}
}

func isNoRows(err error) bool {
	return errors.Is(err, sql.ErrNoRows)
}
