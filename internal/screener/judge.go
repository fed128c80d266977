package screener

import (
	"context"
	"errors"
	"time"

	"github.com/eazyai/screener/internal/ai"
)

// judgeTimeout is the hard per-call deadline for one resume evaluation.
// There is no retry; a timed-out call becomes a fallback record.
const judgeTimeout = 25 * time.Second

// judge runs one evaluation call against the model and classifies the
// outcome. It never returns an error: failures are encoded in the result so
// the batch can degrade per resume instead of aborting.
func judge(ctx context.Context, generator ai.Generator, prompt string) ai.JudgeResult {
	ctx, cancel := context.WithTimeout(ctx, judgeTimeout)
	defer cancel()

	start := time.Now()
	raw, err := generator.GenerateContent(ctx, prompt)
	elapsed := time.Since(start)

	if err != nil {
		outcome := ai.OutcomeTransportError
		if errors.Is(err, context.DeadlineExceeded) {
			outcome = ai.OutcomeTimedOut
		}
		return ai.JudgeResult{Outcome: outcome, Err: err, Elapsed: elapsed}
	}

	return ai.JudgeResult{Outcome: ai.OutcomeOK, Raw: raw, Elapsed: elapsed}
}
