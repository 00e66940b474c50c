// Package storage persists the NetSnake leaderboard in SQLite.
// Uses the pure-Go modernc.org/sqlite driver to avoid CGO dependencies.
package storage

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite" // Pure Go SQLite driver

	"github.com/vovakirdan/netsnake/internal/games/netsnake"
	"github.com/vovakirdan/netsnake/internal/netsim"
)

// DefaultCapacity is the number of results the leaderboard keeps.
const DefaultCapacity = 20

const timeLayout = "2006-01-02 15:04:05"

// Store manages the SQLite leaderboard.
type Store struct {
	db       *sql.DB
	capacity int
}

// Entry is one leaderboard row.
type Entry struct {
	ID           int64
	SessionID    string
	Name         string
	Mode         netsim.Mode
	Score        int
	AvgMs        int
	JitterMs     int
	LossPct      int
	Reason       string
	DurationSecs int
	CreatedAt    time.Time
}

// Open creates or opens a SQLite database at the given path.
// It creates the parent directories if needed and runs migrations.
// A capacity <= 0 uses DefaultCapacity.
func Open(dbPath string, capacity int) (*Store, error) {
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
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("storage: cannot connect to database: %w", err)
	}

	if capacity <= 0 {
		capacity = DefaultCapacity
	}
	store := &Store{db: db, capacity: capacity}

	if err := store.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("storage: migration failed: %w", err)
	}

	return store, nil
}

func (s *Store) migrate() error {
	schema := `
		CREATE TABLE IF NOT EXISTS results (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			session_id TEXT NOT NULL,
			name TEXT NOT NULL,
			mode TEXT NOT NULL,
			score INTEGER NOT NULL,
			avg_ms INTEGER NOT NULL DEFAULT 0,
			jitter_ms INTEGER NOT NULL DEFAULT 0,
			loss_pct INTEGER NOT NULL DEFAULT 0,
			reason TEXT NOT NULL DEFAULT '',
			duration_secs INTEGER NOT NULL DEFAULT 0,
			created_at DATETIME DEFAULT CURRENT_TIMESTAMP
		);
		CREATE INDEX IF NOT EXISTS idx_results_rank ON results(score DESC, id ASC);
		CREATE INDEX IF NOT EXISTS idx_results_mode ON results(mode);
	`

	_, err := s.db.Exec(schema)
	return err
}

// Close closes the database connection.
func (s *Store) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

// Capacity returns how many results the leaderboard keeps.
func (s *Store) Capacity() int {
	return s.capacity
}

// SaveResult records a finished session and drops whatever falls off the
// bottom of the leaderboard. Returns the ID of the inserted record, which
// may already have been pruned.
func (s *Store) SaveResult(r netsnake.Result) (int64, error) {
	tx, err := s.db.Begin()
	if err != nil {
		return 0, fmt.Errorf("storage: cannot begin transaction: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck // No-op after commit

	created := r.EndedAt
	if created.IsZero() {
		created = time.Now()
	}

	res, err := tx.Exec(
		`INSERT INTO results
		 (session_id, name, mode, score, avg_ms, jitter_ms, loss_pct, reason, duration_secs, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		r.SessionID,
		r.Name,
		string(r.Mode),
		r.Score,
		r.AvgMs,
		r.JitterMs,
		r.LossPct,
		string(r.Reason),
		int(r.Duration/time.Second),
		created.UTC().Format(timeLayout),
	)
	if err != nil {
		return 0, fmt.Errorf("storage: cannot save result: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("storage: cannot get inserted ID: %w", err)
	}

	// Ties keep insertion order, so the newest equal score is pruned first
	_, err = tx.Exec(
		`DELETE FROM results WHERE id NOT IN (
			SELECT id FROM results ORDER BY score DESC, id ASC LIMIT ?
		)`,
		s.capacity,
	)
	if err != nil {
		return 0, fmt.Errorf("storage: cannot prune leaderboard: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("storage: cannot commit result: %w", err)
	}
	return id, nil
}

// TopResults returns the leaderboard, best score first.
// A limit <= 0 returns every kept entry.
func (s *Store) TopResults(limit int) ([]Entry, error) {
	if limit <= 0 {
		limit = s.capacity
	}

	rows, err := s.db.Query(
		`SELECT id, session_id, name, mode, score, avg_ms, jitter_ms, loss_pct, reason, duration_secs, created_at
		 FROM results
		 ORDER BY score DESC, id ASC
		 LIMIT ?`,
		limit,
	)
	if err != nil {
		return nil, fmt.Errorf("storage: cannot query results: %w", err)
	}
	defer rows.Close()

	var entries []Entry
	for rows.Next() {
		var e Entry
		var mode string
		var createdAt any
		if err := rows.Scan(
			&e.ID,
			&e.SessionID,
			&e.Name,
			&mode,
			&e.Score,
			&e.AvgMs,
			&e.JitterMs,
			&e.LossPct,
			&e.Reason,
			&e.DurationSecs,
			&createdAt,
		); err != nil {
			return nil, fmt.Errorf("storage: cannot scan row: %w", err)
		}
		e.Mode = netsim.Mode(mode)
		e.CreatedAt = parseTime(createdAt)
		entries = append(entries, e)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("storage: row iteration error: %w", err)
	}

	return entries, nil
}

// HighScore returns the best kept score, or 0 if the board is empty.
func (s *Store) HighScore() (int, error) {
	var score sql.NullInt64
	if err := s.db.QueryRow("SELECT MAX(score) FROM results").Scan(&score); err != nil {
		return 0, fmt.Errorf("storage: cannot query high score: %w", err)
	}
	if !score.Valid {
		return 0, nil
	}
	return int(score.Int64), nil
}

// Clear deletes every result.
func (s *Store) Clear() error {
	if _, err := s.db.Exec("DELETE FROM results"); err != nil {
		return fmt.Errorf("storage: cannot clear results: %w", err)
	}
	return nil
}

// ModeStats aggregates the kept results of one network mode.
type ModeStats struct {
	Mode       netsim.Mode
	Games      int
	HighScore  int
	AvgScore   float64
	AvgLossPct float64
	LastPlayed time.Time
}

// StatsByMode aggregates the kept results per mode.
func (s *Store) StatsByMode() (map[netsim.Mode]ModeStats, error) {
	rows, err := s.db.Query(
		`SELECT mode, COUNT(*), MAX(score), AVG(score), AVG(loss_pct), MAX(created_at)
		 FROM results
		 GROUP BY mode`,
	)
	if err != nil {
		return nil, fmt.Errorf("storage: cannot get mode stats: %w", err)
	}
	defer rows.Close()

	stats := make(map[netsim.Mode]ModeStats)
	for rows.Next() {
		var ms ModeStats
		var mode string
		var lastPlayed any
		if err := rows.Scan(&mode, &ms.Games, &ms.HighScore, &ms.AvgScore, &ms.AvgLossPct, &lastPlayed); err != nil {
			return nil, fmt.Errorf("storage: cannot scan stats row: %w", err)
		}
		ms.Mode = netsim.Mode(mode)
		ms.LastPlayed = parseTime(lastPlayed)
		stats[ms.Mode] = ms
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("storage: row iteration error: %w", err)
	}

	return stats, nil
}

// parseTime handles both time.Time and string datetimes from the driver.
func parseTime(v any) time.Time {
	switch t := v.(type) {
	case time.Time:
		return t
	case string:
		if parsed, err := time.Parse(timeLayout, t); err == nil {
			return parsed
		}
		if parsed, err := time.Parse(time.RFC3339, t); err == nil {
			return parsed
		}
	}
	return time.Time{}
}
