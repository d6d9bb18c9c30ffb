package kinetics

import (
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	_ "modernc.org/sqlite" // pure go sqlite driver
)

// ErrResultNotFound is returned when a trajectory ID has no stored result.
var ErrResultNotFound = errors.New("kinetics: trajectory result not found")

// ResultStore persists trajectory results to a single SQLite table as JSON
// payloads, one row per trajectory.
type ResultStore struct {
	mu sync.Mutex
	db *sql.DB
}

// OpenResultStore opens (creating if needed) a store at the given path.
func OpenResultStore(path string) (*ResultStore, error) {
	if path == "" {
		path = "foldsim.db"
	}
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o750); err != nil && !errors.Is(err, os.ErrExist) {
			return nil, fmt.Errorf("create dirs: %w", err)
		}
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	if _, err := db.Exec(`CREATE TABLE IF NOT EXISTS trajectories (
		id TEXT PRIMARY KEY,
		system TEXT NOT NULL,
		completed_at INTEGER NOT NULL,
		payload BLOB NOT NULL
	)`); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("create trajectories table: %w", err)
	}
	return &ResultStore{db: db}, nil
}

// Save validates a result and upserts it.
func (s *ResultStore) Save(r TrajectoryResult) error {
	if err := ValidateResult(r); err != nil {
		return err
	}
	payload, err := EncodeResultJSON(r)
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if _, err := s.db.Exec(
		`INSERT OR REPLACE INTO trajectories (id, system, completed_at, payload) VALUES (?, ?, ?, ?)`,
		r.ID, r.SystemName, r.CompletedAt, payload,
	); err != nil {
		return fmt.Errorf("save trajectory %s: %w", r.ID, err)
	}
	return nil
}

// Load fetches one result by trajectory ID.
func (s *ResultStore) Load(id string) (TrajectoryResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var payload []byte
	err := s.db.QueryRow(`SELECT payload FROM trajectories WHERE id = ?`, id).Scan(&payload)
	if errors.Is(err, sql.ErrNoRows) {
		return TrajectoryResult{}, ErrResultNotFound
	}
	if err != nil {
		return TrajectoryResult{}, fmt.Errorf("load trajectory %s: %w", id, err)
	}
	return DecodeResultJSON(payload)
}

// ListBySystem fetches every stored result for a system, newest first.
// An empty system name lists everything.
func (s *ResultStore) ListBySystem(system string) ([]TrajectoryResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	query := `SELECT payload FROM trajectories ORDER BY completed_at DESC`
	args := []any{}
	if system != "" {
		query = `SELECT payload FROM trajectories WHERE system = ? ORDER BY completed_at DESC`
		args = append(args, system)
	}

	rows, err := s.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("list trajectories: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var out []TrajectoryResult
	for rows.Next() {
		var payload []byte
		if err := rows.Scan(&payload); err != nil {
			return nil, fmt.Errorf("scan trajectory: %w", err)
		}
		r, err := DecodeResultJSON(payload)
		if err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

// Close releases the underlying database handle.
func (s *ResultStore) Close() error {
	return s.db.Close()
}
