package ai

import (
	"context"
	"time"
)

// Generator produces text completions from an external model provider.
// GenerateContent targets the deep evaluation model; GenerateFast targets a
// cheaper model for short auxiliary calls such as role extraction.
type Generator interface {
	GenerateContent(ctx context.Context, prompt string) (string, error)
	GenerateFast(ctx context.Context, prompt string) (string, error)
	Model() string
}

// Embedder converts text into a fixed-length numeric vector.
type Embedder interface {
	Embed(ctx context.Context, text string) ([]float64, error)
}

// Outcome classifies the result of a single judge call. A non-OK outcome is
// terminal for that call: there is no retry, and callers convert it into a
// degraded fallback record instead of propagating an error.
type Outcome int

const (
	OutcomeOK Outcome = iota
	OutcomeTimedOut
	OutcomeTransportError
)

// JudgeResult carries the raw response of a judge call together with its
// outcome, so that failure handling is a value-level decision rather than
// exception-style control flow.
type JudgeResult struct {
	Outcome Outcome
	Raw     string
	Err     error
	Elapsed time.Duration
}

func (r JudgeResult) OK() bool {
	return r.Outcome == OutcomeOK
}

// FailureReason returns a short human-readable cause suitable for embedding
// into a fallback record.
func (r JudgeResult) FailureReason() string {
	switch r.Outcome {
	case OutcomeTimedOut:
		return "Analysis timeout"
	case OutcomeTransportError:
		if r.Err != nil {
			msg := r.Err.Error()
			if len(msg) > 100 {
				msg = msg[:100]
			}
			return "Processing error: " + msg
		}
		return "Processing error"
	default:
		return ""
	}
}
