package screener

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/eazyai/screener/internal/extraction"
)

// stubGenerator answers judge calls with canned responses keyed by resume
// content found in the prompt.
type stubGenerator struct {
	mu        sync.Mutex
	responses map[string]string
	errs      map[string]error
	calls     int
	prompts   []string
}

func (s *stubGenerator) GenerateContent(_ context.Context, prompt string) (string, error) {
	s.mu.Lock()
	s.calls++
	s.prompts = append(s.prompts, prompt)
	s.mu.Unlock()

	for marker, err := range s.errs {
		if strings.Contains(prompt, marker) {
			return "", err
		}
	}
	for marker, response := range s.responses {
		if strings.Contains(prompt, marker) {
			return response, nil
		}
	}
	return `{"skills_match": 70, "domain_match": 60, "experience_match": 60, "verdict": "review"}`, nil
}

func (s *stubGenerator) GenerateFast(_ context.Context, _ string) (string, error) {
	return "Data Analyst", nil
}

func (s *stubGenerator) Model() string { return "stub" }

type stubSimilarity struct {
	score float64
	errOn string
}

func (s *stubSimilarity) Score(_ context.Context, _, resumeText string) (float64, error) {
	if s.errOn != "" && strings.Contains(resumeText, s.errOn) {
		return 0, errors.New("embedding unavailable")
	}
	return s.score, nil
}

type stubRoles struct{ role string }

func (s *stubRoles) Extract(_ context.Context, _ string) string { return s.role }

func newTestScreener(gen *stubGenerator, sim *stubSimilarity) *Screener {
	return New(Deps{
		Generator:  gen,
		Similarity: sim,
		Roles:      &stubRoles{role: "Data Analyst"},
		ExtractText: func(data []byte, filename string) (string, error) {
			if strings.Contains(filename, "corrupt") {
				return "", errors.New("no extractable text")
			}
			return string(data), nil
		},
		ExtractContact: func(text string) extraction.Contact {
			return extraction.Contact{Name: "N/A", Email: "N/A", Phone: "N/A"}
		},
		Logger:      zap.NewNop(),
		Concurrency: 4,
	})
}

func testResumes(n int) []Resume {
	resumes := make([]Resume, 0, n)
	for i := 0; i < n; i++ {
		resumes = append(resumes, Resume{
			Filename: fmt.Sprintf("resume_%d.txt", i),
			Data:     []byte(fmt.Sprintf("resume body %d with plenty of content", i)),
		})
	}
	return resumes
}

func TestAnalyzeBatch(t *testing.T) {
	gen := &stubGenerator{}
	screener := newTestScreener(gen, &stubSimilarity{score: 65})

	cfg := DefaultJobConfig()
	cfg.JD = "We are hiring a data analyst."

	result, err := screener.AnalyzeBatch(context.Background(), cfg, testResumes(3))
	require.NoError(t, err)

	assert.Len(t, result.Candidates, 3)
	assert.Equal(t, 3, result.TotalResumes)
	assert.Equal(t, result.TotalResumes, result.Shortlisted+result.InReview+result.Rejected)
	assert.True(t, strings.HasPrefix(result.SessionID, "analysis_"))

	for _, c := range result.Candidates {
		assert.Equal(t, 65.0, c.JDSimilarity)
		assert.Equal(t, "Data Analyst", c.JDRole)
		assert.Equal(t, VerdictReview, c.Verdict)
	}

	// The extracted role reaches the judge, not just the records.
	require.Len(t, gen.prompts, 3)
	for _, prompt := range gen.prompts {
		assert.Contains(t, prompt, "Role: Data Analyst")
	}
}

func TestAnalyzeBatchDropsUnpreparableResumes(t *testing.T) {
	gen := &stubGenerator{}
	screener := newTestScreener(gen, &stubSimilarity{score: 65, errOn: "body 1"})

	cfg := DefaultJobConfig()
	cfg.JD = "JD text"

	resumes := testResumes(4)
	resumes = append(resumes, Resume{Filename: "corrupt.pdf", Data: []byte("unreadable")})

	result, err := screener.AnalyzeBatch(context.Background(), cfg, resumes)
	require.NoError(t, err)

	// One resume lost to extraction, one to similarity scoring.
	assert.Len(t, result.Candidates, 3)
	for _, c := range result.Candidates {
		assert.NotEqual(t, "corrupt.pdf", c.ResumeFile)
		assert.NotEqual(t, "resume_1.txt", c.ResumeFile)
	}
}

func TestAnalyzeBatchJudgeFailureDegradesToFallback(t *testing.T) {
	gen := &stubGenerator{
		errs: map[string]error{
			"body 0": context.DeadlineExceeded,
			"body 1": errors.New("transport down"),
		},
		responses: map[string]string{
			"body 2": "this is not json at all",
		},
	}
	screener := newTestScreener(gen, &stubSimilarity{score: 80})

	cfg := DefaultJobConfig()
	cfg.JD = "JD text"

	result, err := screener.AnalyzeBatch(context.Background(), cfg, testResumes(3))
	require.NoError(t, err)
	require.Len(t, result.Candidates, 3)

	reasons := map[string]string{}
	for _, c := range result.Candidates {
		assert.True(t, c.FraudDetected, "fallback records are flagged")
		assert.Equal(t, VerdictReview, c.Verdict)
		assert.Equal(t, 48.0, c.Score)
		require.Len(t, c.ReasonsIfRejected, 1)
		reasons[c.ResumeFile] = c.ReasonsIfRejected[0]
	}

	assert.Equal(t, "Analysis failure: Analysis timeout", reasons["resume_0.txt"])
	assert.Contains(t, reasons["resume_1.txt"], "Processing error: transport down")
	assert.Equal(t, "Analysis failure: JSON parsing failed", reasons["resume_2.txt"])
}

func TestAnalyzeBatchNoPreparableResumes(t *testing.T) {
	screener := newTestScreener(&stubGenerator{}, &stubSimilarity{score: 65})

	cfg := DefaultJobConfig()
	cfg.JD = "JD text"

	_, err := screener.AnalyzeBatch(context.Background(), cfg, []Resume{
		{Filename: "corrupt_1.pdf", Data: []byte("x")},
		{Filename: "corrupt_2.pdf", Data: []byte("y")},
	})
	require.ErrorIs(t, err, ErrNoTasks)
}

func TestAnalyzeBatchEmptyInput(t *testing.T) {
	screener := newTestScreener(&stubGenerator{}, &stubSimilarity{score: 65})

	cfg := DefaultJobConfig()
	cfg.JD = "JD text"

	_, err := screener.AnalyzeBatch(context.Background(), cfg, nil)
	require.ErrorIs(t, err, ErrNoTasks)
}

func TestAnalyzeBatchInvalidConfig(t *testing.T) {
	screener := newTestScreener(&stubGenerator{}, &stubSimilarity{score: 65})

	_, err := screener.AnalyzeBatch(context.Background(), DefaultJobConfig(), testResumes(1))
	require.Error(t, err)

	cfg := DefaultJobConfig()
	cfg.JD = "JD text"
	cfg.TopN = -1
	_, err = screener.AnalyzeBatch(context.Background(), cfg, testResumes(1))
	require.Error(t, err)

	cfg = DefaultJobConfig()
	cfg.JD = "JD text"
	cfg.ShortlistThreshold = 120
	_, err = screener.AnalyzeBatch(context.Background(), cfg, testResumes(1))
	require.Error(t, err)
}

func TestAnalyzeBatchUsesConfiguredRole(t *testing.T) {
	gen := &stubGenerator{}
	screener := newTestScreener(gen, &stubSimilarity{score: 65})

	cfg := DefaultJobConfig()
	cfg.JD = "JD text"
	cfg.Role = "Platform Engineer"

	result, err := screener.AnalyzeBatch(context.Background(), cfg, testResumes(1))
	require.NoError(t, err)
	assert.Equal(t, "Platform Engineer", result.Candidates[0].JDRole)

	require.Len(t, gen.prompts, 1)
	assert.Contains(t, gen.prompts[0], "Role: Platform Engineer")
}

func TestSessionIDsAreUnique(t *testing.T) {
	screener := newTestScreener(&stubGenerator{}, &stubSimilarity{score: 65})

	seen := map[string]bool{}
	for i := 0; i < 5; i++ {
		id := screener.newSessionID()
		assert.False(t, seen[id], "duplicate session id %q", id)
		seen[id] = true
	}
}
