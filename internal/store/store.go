// Package store persists screening runs so results survive between the
// analyze call and later dashboard, export and annotation requests.
package store

import (
	"context"
	"errors"
	"time"

	"github.com/eazyai/screener/internal/screener"
)

// ErrNotFound is returned when a session or candidate does not exist.
var ErrNotFound = errors.New("not found")

// AnalysisRun is one stored screening session.
type AnalysisRun struct {
	SessionID  string                       `json:"session_id"`
	Candidates []screener.CandidateAnalysis `json:"candidates"`
	CreatedAt  time.Time                    `json:"created_at"`
}

// CandidateUpdate carries the recruiter-editable fields. Nil pointers leave
// the stored value untouched.
type CandidateUpdate struct {
	RecruiterNotes *string
	Verdict        *string
}

// RunStore stores and retrieves analysis runs. Implementations must be safe
// for concurrent use.
type RunStore interface {
	// Put saves a run, replacing any run with the same session ID.
	Put(ctx context.Context, run AnalysisRun) error
	// Get returns the run with the given session ID.
	Get(ctx context.Context, sessionID string) (AnalysisRun, error)
	// Latest returns the most recently created run.
	Latest(ctx context.Context) (AnalysisRun, error)
	// UpdateCandidate patches one candidate in the latest run. The
	// candidate is matched by email first, then by resume file name; the
	// first match wins.
	UpdateCandidate(ctx context.Context, candidateID string, update CandidateUpdate) error
}

// applyUpdate patches a candidate list in place and reports whether a match
// was found. Shared by both store implementations.
func applyUpdate(candidates []screener.CandidateAnalysis, candidateID string, update CandidateUpdate) bool {
	idx := -1
	for i, c := range candidates {
		if c.Email == candidateID {
			idx = i
			break
		}
	}
	if idx < 0 {
		for i, c := range candidates {
			if c.ResumeFile == candidateID {
				idx = i
				break
			}
		}
	}
	if idx < 0 {
		return false
	}

	if update.RecruiterNotes != nil {
		candidates[idx].RecruiterNotes = *update.RecruiterNotes
	}
	if update.Verdict != nil {
		candidates[idx].Verdict = *update.Verdict
	}
	return true
}
