// Package storage provides SQLite-based persistence for finished runs.
// Uses the pure-Go modernc.org/sqlite driver to avoid CGO dependencies.
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

// Store manages the SQLite database connection for run persistence.
type Store struct {
	db *sql.DB
}

// Run is one finished play-through of a map.
type Run struct {
	ID         int64     `json:"id"`
	MapID      string    `json:"map_id"`
	Player     string    `json:"player"`
	Cause      string    `json:"cause"` // "health", "fell" or "quit"
	Score      int       `json:"score"`
	DurationMs int64     `json:"duration_ms"`
	Health     float64   `json:"health"`
	Ammo       int       `json:"ammo"`
	Pickups    int       `json:"pickups"`
	HazardHits int       `json:"hazard_hits"`
	CreatedAt  time.Time `json:"created_at"`
}

// MapStats contains aggregated statistics for a map.
type MapStats struct {
	MapID        string    `json:"map_id"`
	Runs         int       `json:"runs"`
	BestScore    int       `json:"best_score"`
	AvgScore     float64   `json:"avg_score"`
	LongestMs    int64     `json:"longest_ms"`
	TotalPickups int64     `json:"total_pickups"`
	FallDeaths   int       `json:"fall_deaths"`
	HealthDeaths int       `json:"health_deaths"`
	LastPlayed   time.Time `json:"last_played"`
}

const sqliteTime = "2006-01-02 15:04:05"

const runColumns = `id, map_id, player, cause, score, duration_ms, health, ammo, pickups, hazard_hits, created_at`

// Open creates or opens a SQLite database at the given path.
// It creates the parent directories if needed and runs migrations.
func Open(dbPath string) (*Store, error) {
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

	store := &Store{db: db}

	if err := store.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("storage: migration failed: %w", err)
	}

	return store, nil
}

// migrate creates the database schema if it doesn't exist.
func (s *Store) migrate() error {
	schema := `
		CREATE TABLE IF NOT EXISTS runs (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			map_id TEXT NOT NULL,
			player TEXT NOT NULL DEFAULT '',
			cause TEXT NOT NULL,
			score INTEGER NOT NULL DEFAULT 0,
			duration_ms INTEGER NOT NULL DEFAULT 0,
			health REAL NOT NULL DEFAULT 0,
			ammo INTEGER NOT NULL DEFAULT 0,
			pickups INTEGER NOT NULL DEFAULT 0,
			hazard_hits INTEGER NOT NULL DEFAULT 0,
			created_at DATETIME DEFAULT CURRENT_TIMESTAMP
		);
		CREATE INDEX IF NOT EXISTS idx_runs_map_id ON runs(map_id);
		CREATE INDEX IF NOT EXISTS idx_runs_top ON runs(map_id, score DESC, duration_ms DESC);
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

// SaveRun records a finished run and returns its ID.
func (s *Store) SaveRun(r Run) (int64, error) {
	if r.MapID == "" {
		return 0, errors.New("storage: run has no map id")
	}
	result, err := s.db.Exec(
		`INSERT INTO runs (map_id, player, cause, score, duration_ms, health, ammo, pickups, hazard_hits)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		r.MapID, r.Player, r.Cause, r.Score, r.DurationMs, r.Health, r.Ammo, r.Pickups, r.HazardHits,
	)
	if err != nil {
		return 0, fmt.Errorf("storage: cannot save run: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("storage: cannot get inserted ID: %w", err)
	}

	return id, nil
}

// TopRuns retrieves the best N runs for a map, by score then duration.
func (s *Store) TopRuns(mapID string, limit int) ([]Run, error) {
	if limit <= 0 {
		limit = 10
	}

	rows, err := s.db.Query(
		`SELECT `+runColumns+`
		 FROM runs
		 WHERE map_id = ?
		 ORDER BY score DESC, duration_ms DESC, id ASC
		 LIMIT ?`,
		mapID, limit,
	)
	if err != nil {
		return nil, fmt.Errorf("storage: cannot query runs: %w", err)
	}
	return collectRuns(rows)
}

// RecentRuns retrieves the latest runs across all maps.
func (s *Store) RecentRuns(limit int) ([]Run, error) {
	if limit <= 0 {
		limit = 20
	}

	rows, err := s.db.Query(
		`SELECT `+runColumns+`
		 FROM runs
		 ORDER BY id DESC
		 LIMIT ?`,
		limit,
	)
	if err != nil {
		return nil, fmt.Errorf("storage: cannot query runs: %w", err)
	}
	return collectRuns(rows)
}

// BestRun returns the top run for a map, or nil if none exist.
func (s *Store) BestRun(mapID string) (*Run, error) {
	row := s.db.QueryRow(
		`SELECT `+runColumns+`
		 FROM runs
		 WHERE map_id = ?
		 ORDER BY score DESC, duration_ms DESC, id ASC
		 LIMIT 1`,
		mapID,
	)

	r, err := scanRun(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("storage: cannot query best run: %w", err)
	}
	return &r, nil
}

// ClearRuns deletes all runs for the given map.
func (s *Store) ClearRuns(mapID string) error {
	_, err := s.db.Exec("DELETE FROM runs WHERE map_id = ?", mapID)
	if err != nil {
		return fmt.Errorf("storage: cannot clear runs: %w", err)
	}
	return nil
}

// GetMapStats retrieves aggregated statistics for a specific map.
func (s *Store) GetMapStats(mapID string) (*MapStats, error) {
	stats := &MapStats{MapID: mapID}

	var lastPlayed any
	err := s.db.QueryRow(
		`SELECT COUNT(*), COALESCE(MAX(score), 0), COALESCE(AVG(score), 0),
		        COALESCE(MAX(duration_ms), 0), COALESCE(SUM(pickups), 0),
		        COALESCE(SUM(cause = 'fell'), 0), COALESCE(SUM(cause = 'health'), 0),
		        MAX(created_at)
		 FROM runs WHERE map_id = ?`,
		mapID,
	).Scan(&stats.Runs, &stats.BestScore, &stats.AvgScore, &stats.LongestMs,
		&stats.TotalPickups, &stats.FallDeaths, &stats.HealthDeaths, &lastPlayed)
	if err != nil {
		return nil, fmt.Errorf("storage: cannot get map stats: %w", err)
	}
	stats.LastPlayed = parseTime(lastPlayed)

	return stats, nil
}

// GetAllMapStats retrieves statistics for every map that has runs.
func (s *Store) GetAllMapStats() (map[string]*MapStats, error) {
	rows, err := s.db.Query(
		`SELECT map_id, COUNT(*), MAX(score), AVG(score), MAX(duration_ms), SUM(pickups),
		        SUM(cause = 'fell'), SUM(cause = 'health'), MAX(created_at)
		 FROM runs
		 GROUP BY map_id`,
	)
	if err != nil {
		return nil, fmt.Errorf("storage: cannot get all map stats: %w", err)
	}
	defer rows.Close()

	stats := make(map[string]*MapStats)
	for rows.Next() {
		var ms MapStats
		var lastPlayed any
		if err := rows.Scan(&ms.MapID, &ms.Runs, &ms.BestScore, &ms.AvgScore, &ms.LongestMs,
			&ms.TotalPickups, &ms.FallDeaths, &ms.HealthDeaths, &lastPlayed); err != nil {
			return nil, fmt.Errorf("storage: cannot scan stats row: %w", err)
		}
		ms.LastPlayed = parseTime(lastPlayed)
		stats[ms.MapID] = &ms
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("storage: row iteration error: %w", err)
	}

	return stats, nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanRun(sc scanner) (Run, error) {
	var r Run
	var createdAt any
	err := sc.Scan(&r.ID, &r.MapID, &r.Player, &r.Cause, &r.Score, &r.DurationMs,
		&r.Health, &r.Ammo, &r.Pickups, &r.HazardHits, &createdAt)
	if err != nil {
		return Run{}, err
	}
	r.CreatedAt = parseTime(createdAt)
	return r, nil
}

func collectRuns(rows *sql.Rows) ([]Run, error) {
	defer rows.Close()

	var runs []Run
	for rows.Next() {
		r, err := scanRun(rows)
		if err != nil {
			return nil, fmt.Errorf("storage: cannot scan row: %w", err)
		}
		runs = append(runs, r)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("storage: row iteration error: %w", err)
	}

	return runs, nil
}

// parseTime handles both time.Time and string datetimes from the driver.
func parseTime(v any) time.Time {
	switch t := v.(type) {
	case time.Time:
		return t
	case string:
		if parsed, err := time.Parse(sqliteTime, t); err == nil {
			return parsed
		}
	}
	return time.Time{}
}
