package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/eazyai/screener/internal/screener"
)

// SQLite stores runs in a local database file. Candidates are kept as a
// JSON document per run; runs are read and written whole, so per-candidate
// columns would buy nothing.
type SQLite struct {
	db *sql.DB
}

const schema = `
CREATE TABLE IF NOT EXISTS runs (
	session_id TEXT PRIMARY KEY,
	created_at TIMESTAMP NOT NULL,
	candidates TEXT NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_runs_created_at ON runs (created_at);
`

// NewSQLite opens (and if needed initializes) the database at path.
func NewSQLite(path string) (*SQLite, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}

	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("initialize schema: %w", err)
	}

	return &SQLite{db: db}, nil
}

// Close releases the underlying database handle.
func (s *SQLite) Close() error {
	return s.db.Close()
}

func (s *SQLite) Put(ctx context.Context, run AnalysisRun) error {
	payload, err := json.Marshal(run.Candidates)
	if err != nil {
		return fmt.Errorf("marshal candidates: %w", err)
	}

	_, err = s.db.ExecContext(ctx,
		`INSERT OR REPLACE INTO runs (session_id, created_at, candidates) VALUES (?, ?, ?)`,
		run.SessionID, run.CreatedAt.UTC(), string(payload),
	)
	if err != nil {
		return fmt.Errorf("store run %s: %w", run.SessionID, err)
	}
	return nil
}

func (s *SQLite) Get(ctx context.Context, sessionID string) (AnalysisRun, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT session_id, created_at, candidates FROM runs WHERE session_id = ?`,
		sessionID,
	)
	return scanRun(row)
}

func (s *SQLite) Latest(ctx context.Context) (AnalysisRun, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT session_id, created_at, candidates FROM runs ORDER BY created_at DESC, session_id DESC LIMIT 1`,
	)
	return scanRun(row)
}

func (s *SQLite) UpdateCandidate(ctx context.Context, candidateID string, update CandidateUpdate) error {
	run, err := s.Latest(ctx)
	if err != nil {
		return err
	}

	if !applyUpdate(run.Candidates, candidateID, update) {
		return ErrNotFound
	}

	return s.Put(ctx, run)
}

func scanRun(row *sql.Row) (AnalysisRun, error) {
	var (
		run     AnalysisRun
		created time.Time
		payload string
	)

	if err := row.Scan(&run.SessionID, &created, &payload); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return AnalysisRun{}, ErrNotFound
		}
		return AnalysisRun{}, fmt.Errorf("scan run: %w", err)
	}

	run.CreatedAt = created
	if err := json.Unmarshal([]byte(payload), &run.Candidates); err != nil {
		return AnalysisRun{}, fmt.Errorf("decode candidates for %s: %w", run.SessionID, err)
	}
	if run.Candidates == nil {
		run.Candidates = []screener.CandidateAnalysis{}
	}

	return run, nil
}
