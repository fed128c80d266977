// Package similarity scores how close a resume is to a job description by
// comparing embedding vectors.
package similarity

import (
	"context"
	"crypto/sha256"
	"fmt"
	"math"
	"strings"
	"sync"

	"go.uber.org/zap"

	"github.com/eazyai/screener/internal/ai"
	"github.com/eazyai/screener/internal/extraction"
)

// Oracle computes a JD-similarity scalar in [0,100]. Embeddings are cached
// by exact text so the job description is embedded once per run and repeat
// resumes are free. Concurrent writers may duplicate a computation; the map
// itself stays consistent.
type Oracle struct {
	embedder ai.Embedder
	logger   *zap.Logger

	mu    sync.RWMutex
	cache map[string][]float64
}

// New creates an Oracle backed by the given embedding provider.
func New(embedder ai.Embedder, logger *zap.Logger) *Oracle {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Oracle{
		embedder: embedder,
		logger:   logger,
		cache:    make(map[string][]float64),
	}
}

// Score returns the cosine similarity between the job description and the
// leading chunk of the resume, scaled to [0,100] and rounded to 2 decimals.
// Only the first resume chunk is embedded to bound provider cost.
func (o *Oracle) Score(ctx context.Context, jdText, resumeText string) (float64, error) {
	jdVec, err := o.embedCached(ctx, jdText)
	if err != nil {
		return 0, fmt.Errorf("embed job description: %w", err)
	}

	excerpt := extraction.FirstChunks(resumeText, 1, extraction.DefaultChunkSize)
	if strings.TrimSpace(excerpt) == "" {
		return 0, fmt.Errorf("resume text is empty")
	}

	resumeVec, err := o.embedCached(ctx, excerpt)
	if err != nil {
		return 0, fmt.Errorf("embed resume: %w", err)
	}

	return round2(cosine(jdVec, resumeVec) * 100), nil
}

func (o *Oracle) embedCached(ctx context.Context, text string) ([]float64, error) {
	key := cacheKey(text)

	o.mu.RLock()
	cached, ok := o.cache[key]
	o.mu.RUnlock()
	if ok {
		return cached, nil
	}

	vector, err := o.embedder.Embed(ctx, text)
	if err != nil {
		return nil, err
	}

	o.mu.Lock()
	o.cache[key] = vector
	o.mu.Unlock()

	o.logger.Debug("embedding cached",
		zap.String("key", key[:12]),
		zap.Int("dimensions", len(vector)),
	)

	return vector, nil
}

func cacheKey(text string) string {
	sum := sha256.Sum256([]byte(text))
	return fmt.Sprintf("%x", sum[:])
}

// cosine returns the cosine of the angle between a and b, or 0 when either
// vector is degenerate.
func cosine(a, b []float64) float64 {
	if len(a) == 0 || len(a) != len(b) {
		return 0
	}

	var dot, normA, normB float64
	for i := range a {
		dot += a[i] * b[i]
		normA += a[i] * a[i]
		normB += b[i] * b[i]
	}

	if normA == 0 || normB == 0 {
		return 0
	}

	return dot / (math.Sqrt(normA) * math.Sqrt(normB))
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
