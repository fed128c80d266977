package store

import (
	"context"
	"sync"
)

// Memory is an in-process RunStore. Runs vanish on restart; it is the
// default when no database path is configured.
type Memory struct {
	mu     sync.RWMutex
	runs   map[string]AnalysisRun
	latest string
}

// NewMemory creates an empty in-memory store.
func NewMemory() *Memory {
	return &Memory{runs: make(map[string]AnalysisRun)}
}

func (m *Memory) Put(_ context.Context, run AnalysisRun) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.runs[run.SessionID] = run
	if m.latest == "" || !run.CreatedAt.Before(m.runs[m.latest].CreatedAt) {
		m.latest = run.SessionID
	}
	return nil
}

func (m *Memory) Get(_ context.Context, sessionID string) (AnalysisRun, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	run, ok := m.runs[sessionID]
	if !ok {
		return AnalysisRun{}, ErrNotFound
	}
	return cloneRun(run), nil
}

func (m *Memory) Latest(_ context.Context) (AnalysisRun, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if m.latest == "" {
		return AnalysisRun{}, ErrNotFound
	}
	return cloneRun(m.runs[m.latest]), nil
}

func (m *Memory) UpdateCandidate(_ context.Context, candidateID string, update CandidateUpdate) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.latest == "" {
		return ErrNotFound
	}

	run := cloneRun(m.runs[m.latest])
	if !applyUpdate(run.Candidates, candidateID, update) {
		return ErrNotFound
	}

	m.runs[m.latest] = run
	return nil
}

// cloneRun copies the candidate slice so callers cannot mutate stored state.
func cloneRun(run AnalysisRun) AnalysisRun {
	clone := run
	clone.Candidates = append(run.Candidates[:0:0], run.Candidates...)
	return clone
}
