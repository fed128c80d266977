// Package screener orchestrates resume evaluation: text extraction, JD
// similarity scoring, model judging, response normalization and verdict
// classification for a whole batch.
package screener

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/eazyai/screener/internal/ai"
	"github.com/eazyai/screener/internal/extraction"
	"github.com/eazyai/screener/internal/logger"
)

// defaultConcurrency bounds simultaneous judge calls per batch.
const defaultConcurrency = 15

var (
	// ErrNoTasks means no resume in the batch survived preparation.
	ErrNoTasks = errors.New("no resumes could be prepared for analysis")
	// ErrAllFailed means preparation produced tasks but no results came back.
	ErrAllFailed = errors.New("analysis produced no results")
)

// SimilarityScorer computes a JD-to-resume similarity in [0, 100].
type SimilarityScorer interface {
	Score(ctx context.Context, jdText, resumeText string) (float64, error)
}

// RoleExtractor derives a short role title from a job description.
type RoleExtractor interface {
	Extract(ctx context.Context, jdText string) string
}

// Deps wires the screener to its collaborators. ExtractText and
// ExtractContact are function fields so tests can substitute them without a
// document toolchain.
type Deps struct {
	Generator      ai.Generator
	Similarity     SimilarityScorer
	Roles          RoleExtractor
	ExtractText    func(data []byte, filename string) (string, error)
	ExtractContact func(text string) extraction.Contact
	Logger         *zap.Logger
	Concurrency    int
}

// Resume is one uploaded document queued for screening.
type Resume struct {
	Filename string
	Data     []byte
}

// Screener runs screening batches. Safe for concurrent use.
type Screener struct {
	deps Deps
	log  *zap.Logger

	mu          sync.Mutex
	lastSession string
	sessionSeq  int
}

// New creates a Screener. Missing optional deps get working defaults.
func New(deps Deps) *Screener {
	if deps.Logger == nil {
		deps.Logger = zap.NewNop()
	}
	if deps.Concurrency <= 0 {
		deps.Concurrency = defaultConcurrency
	}
	if deps.ExtractText == nil {
		deps.ExtractText = extraction.ExtractText
	}
	if deps.ExtractContact == nil {
		deps.ExtractContact = extraction.ExtractContact
	}

	return &Screener{
		deps: deps,
		log:  logger.WithComponent(deps.Logger, "screener"),
	}
}

// task is one prepared resume, ready to judge.
type task struct {
	filename     string
	text         string
	contact      extraction.Contact
	jdSimilarity float64
}

// AnalyzeBatch screens all resumes against the job config and returns one
// result per resume that survived preparation. Individual judge failures
// degrade to fallback records; only an empty batch is a batch-level error.
func (s *Screener) AnalyzeBatch(ctx context.Context, cfg JobConfig, resumes []Resume) (*BatchResult, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid job config: %w", err)
	}

	start := time.Now()

	// The effective role feeds both the judge prompt and the records, so
	// it is resolved before any task is built.
	if cfg.Role == "" && s.deps.Roles != nil {
		cfg.Role = s.deps.Roles.Extract(ctx, cfg.JD)
	}

	tasks := s.prepare(ctx, cfg, resumes)
	if len(tasks) == 0 {
		return nil, ErrNoTasks
	}

	results := make([]CandidateAnalysis, 0, len(tasks))
	var resultsMu sync.Mutex

	var group errgroup.Group
	group.SetLimit(s.deps.Concurrency)

	for _, t := range tasks {
		group.Go(func() error {
			analysis := s.analyzeOne(ctx, cfg, t)

			resultsMu.Lock()
			results = append(results, analysis)
			resultsMu.Unlock()

			return nil
		})
	}

	// Tasks never return errors, so Wait only synchronizes.
	_ = group.Wait()

	if len(results) == 0 {
		return nil, ErrAllFailed
	}

	candidates := classifyVerdicts(results, cfg)
	shortlisted, inReview, rejected := countVerdicts(candidates)

	elapsed := time.Since(start).Seconds()
	result := &BatchResult{
		SessionID:        s.newSessionID(),
		Candidates:       candidates,
		TotalResumes:     len(candidates),
		Shortlisted:      shortlisted,
		InReview:         inReview,
		Rejected:         rejected,
		ProcessingTime:   round2(elapsed),
		AvgTimePerResume: round2(elapsed / float64(len(candidates))),
	}

	s.log.Info("batch complete",
		zap.String("session_id", result.SessionID),
		zap.Int("total", result.TotalResumes),
		zap.Int("shortlisted", result.Shortlisted),
		zap.Int("in_review", result.InReview),
		zap.Int("rejected", result.Rejected),
		zap.Float64("elapsed_seconds", result.ProcessingTime),
	)

	return result, nil
}

// prepare extracts text, contact details and the similarity score for each
// resume. A resume that fails any step is dropped from the batch with a log
// line; the remaining resumes still get screened.
func (s *Screener) prepare(ctx context.Context, cfg JobConfig, resumes []Resume) []task {
	tasks := make([]task, 0, len(resumes))

	for _, resume := range resumes {
		text, err := s.deps.ExtractText(resume.Data, resume.Filename)
		if err != nil {
			s.log.Warn("dropping resume: text extraction failed",
				zap.String("file", resume.Filename),
				zap.Error(err),
			)
			continue
		}

		similarity, err := s.deps.Similarity.Score(ctx, cfg.JD, text)
		if err != nil {
			s.log.Warn("dropping resume: similarity scoring failed",
				zap.String("file", resume.Filename),
				zap.Error(err),
			)
			continue
		}

		tasks = append(tasks, task{
			filename:     resume.Filename,
			text:         text,
			contact:      s.deps.ExtractContact(text),
			jdSimilarity: similarity,
		})
	}

	return tasks
}

// analyzeOne judges a single prepared resume and always produces a record.
func (s *Screener) analyzeOne(ctx context.Context, cfg JobConfig, t task) CandidateAnalysis {
	excerpt := extraction.FirstChunks(t.text, 2, extraction.DefaultChunkSize)
	prompt := buildPrompt(cfg, excerpt)

	result := judge(ctx, s.deps.Generator, prompt)

	var analysis CandidateAnalysis
	switch {
	case !result.OK():
		s.log.Warn("judge call failed",
			zap.String("file", t.filename),
			zap.String("reason", result.FailureReason()),
			zap.Duration("elapsed", result.Elapsed),
		)
		analysis = fallbackAnalysis(t.contact, cfg.Role, t.jdSimilarity, t.filename, result.FailureReason())
	default:
		parsed, err := normalize(result.Raw, t.contact, cfg.Role, t.jdSimilarity, t.filename)
		if err != nil {
			s.log.Warn("judge response unparseable",
				zap.String("file", t.filename),
				zap.String("response_preview", logger.TruncateForLog(result.Raw, 200)),
				zap.Error(err),
			)
			analysis = fallbackAnalysis(t.contact, cfg.Role, t.jdSimilarity, t.filename, "JSON parsing failed")
		} else {
			analysis = parsed
		}
	}

	analysis.ProcessingTime = round2(result.Elapsed.Seconds())
	return analysis
}

// newSessionID returns a unique "analysis_<unix>" identifier. Batches that
// finish within the same second get a numeric suffix.
func (s *Screener) newSessionID() string {
	s.mu.Lock()
	defer s.mu.Unlock()

	id := fmt.Sprintf("analysis_%d", time.Now().Unix())
	if id == s.lastSession {
		s.sessionSeq++
		return fmt.Sprintf("%s_%d", id, s.sessionSeq)
	}

	s.lastSession = id
	s.sessionSeq = 0
	return id
}
