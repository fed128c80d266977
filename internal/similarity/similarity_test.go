package similarity

import (
	"context"
	"errors"
	"math"
	"testing"

	"go.uber.org/zap"
)

type stubEmbedder struct {
	vectors map[string][]float64
	err     error
	calls   int
}

func (s *stubEmbedder) Embed(_ context.Context, text string) ([]float64, error) {
	s.calls++
	if s.err != nil {
		return nil, s.err
	}
	if vec, ok := s.vectors[text]; ok {
		return vec, nil
	}
	return []float64{1, 0, 0}, nil
}

func TestScoreIdenticalVectors(t *testing.T) {
	stub := &stubEmbedder{}
	oracle := New(stub, zap.NewNop())

	score, err := oracle.Score(context.Background(), "golang developer", "golang engineer resume text")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if score != 100 {
		t.Fatalf("expected 100 for identical vectors, got %v", score)
	}
}

func TestScoreOrthogonalVectors(t *testing.T) {
	stub := &stubEmbedder{vectors: map[string][]float64{
		"jd":     {1, 0},
		"resume": {0, 1},
	}}
	oracle := New(stub, zap.NewNop())

	score, err := oracle.Score(context.Background(), "jd", "resume")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if score != 0 {
		t.Fatalf("expected 0 for orthogonal vectors, got %v", score)
	}
}

func TestScoreRounding(t *testing.T) {
	stub := &stubEmbedder{vectors: map[string][]float64{
		"jd":     {1, 0},
		"resume": {1, 1},
	}}
	oracle := New(stub, zap.NewNop())

	score, err := oracle.Score(context.Background(), "jd", "resume")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	want := math.Round(100/math.Sqrt2*100) / 100
	if score != want {
		t.Fatalf("expected %v, got %v", want, score)
	}
}

func TestScoreCachesJDEmbedding(t *testing.T) {
	stub := &stubEmbedder{}
	oracle := New(stub, zap.NewNop())

	ctx := context.Background()
	if _, err := oracle.Score(ctx, "same jd", "resume one text"); err != nil {
		t.Fatal(err)
	}
	if _, err := oracle.Score(ctx, "same jd", "resume two text"); err != nil {
		t.Fatal(err)
	}

	// 2 resumes + 1 jd: the second call must reuse the cached jd vector.
	if stub.calls != 3 {
		t.Fatalf("expected 3 embed calls, got %d", stub.calls)
	}
}

func TestScorePropagatesEmbedderError(t *testing.T) {
	stub := &stubEmbedder{err: errors.New("quota exceeded")}
	oracle := New(stub, zap.NewNop())

	if _, err := oracle.Score(context.Background(), "jd", "resume"); err == nil {
		t.Fatal("expected error from embedder")
	}
}

func TestScoreEmptyResume(t *testing.T) {
	oracle := New(&stubEmbedder{}, zap.NewNop())

	if _, err := oracle.Score(context.Background(), "jd", "   "); err == nil {
		t.Fatal("expected error for empty resume text")
	}
}
