// Package roles extracts the primary job title from a job description with
// a single best-effort model call.
package roles

import (
	"context"
	"crypto/sha256"
	"fmt"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/eazyai/screener/internal/ai"
	"github.com/eazyai/screener/internal/logger"
)

// Unknown is returned whenever a role cannot be extracted. Callers treat it
// as "no role configured", never as an error.
const Unknown = "N/A"

const (
	// jdPrefixLen bounds how much of the JD is sent to the fast model.
	jdPrefixLen = 2000
	// cacheKeyLen is the JD prefix used as the cache key, so cosmetic
	// edits deep in the JD do not bust the cache.
	cacheKeyLen = 500

	extractTimeout = 10 * time.Second
)

const promptTemplate = `Extract the primary job title from this job description. Return only the role title (2-4 words max).
If unclear, return "N/A".

Examples: "Data Analyst", "Frontend Developer", "Product Manager"

Job Description:
%s

Role:`

// Extractor answers "what role is this JD hiring for" and memoizes the
// answer per job description.
type Extractor struct {
	generator ai.Generator
	logger    *zap.Logger

	mu    sync.Mutex
	cache map[string]string
}

// New creates a role extractor backed by the fast model of the generator.
func New(generator ai.Generator, log *zap.Logger) *Extractor {
	return &Extractor{
		generator: generator,
		logger:    logger.WithComponent(log, "roles"),
		cache:     make(map[string]string),
	}
}

// Extract returns a short role label for the JD, or Unknown when the model
// call fails or its answer does not look like a job title. It never fails.
func (e *Extractor) Extract(ctx context.Context, jdText string) string {
	key := cacheKey(jdText)

	e.mu.Lock()
	cached, ok := e.cache[key]
	e.mu.Unlock()
	if ok {
		return cached
	}

	role := e.extract(ctx, jdText)

	e.mu.Lock()
	e.cache[key] = role
	e.mu.Unlock()

	return role
}

func (e *Extractor) extract(ctx context.Context, jdText string) string {
	ctx, cancel := context.WithTimeout(ctx, extractTimeout)
	defer cancel()

	prompt := fmt.Sprintf(promptTemplate, truncateRunes(jdText, jdPrefixLen))

	answer, err := e.generator.GenerateFast(ctx, prompt)
	if err != nil {
		e.logger.Warn("role extraction failed", zap.Error(err))
		return Unknown
	}

	role := strings.TrimSpace(strings.Trim(strings.TrimSpace(answer), `"`))
	if !validRole(role) {
		e.logger.Debug("discarding implausible role answer",
			zap.String("answer", logger.TruncateForLog(answer, 80)),
		)
		return Unknown
	}

	return role
}

// validRole accepts short single-line answers that look like a job title.
func validRole(role string) bool {
	if strings.ContainsAny(role, "\n\t|") {
		return false
	}
	words := len(strings.Fields(role))
	return words >= 2 && words <= 6
}

func cacheKey(jdText string) string {
	sum := sha256.Sum256([]byte(truncateRunes(jdText, cacheKeyLen)))
	return fmt.Sprintf("%x", sum[:])
}

func truncateRunes(s string, limit int) string {
	runes := []rune(s)
	if len(runes) <= limit {
		return s
	}
	return string(runes[:limit])
}
