package roles

import (
	"context"
	"errors"
	"testing"

	"go.uber.org/zap"
)

type stubGenerator struct {
	answer string
	err    error
	calls  int
}

func (s *stubGenerator) GenerateContent(_ context.Context, _ string) (string, error) {
	return s.answer, s.err
}

func (s *stubGenerator) GenerateFast(_ context.Context, _ string) (string, error) {
	s.calls++
	return s.answer, s.err
}

func (s *stubGenerator) Model() string { return "stub" }

func TestExtractValidRole(t *testing.T) {
	stub := &stubGenerator{answer: "  \"Senior Data Analyst\"\n"}
	extractor := New(stub, zap.NewNop())

	role := extractor.Extract(context.Background(), "We are hiring a data analyst...")
	if role != "Senior Data Analyst" {
		t.Fatalf("unexpected role: %q", role)
	}
}

func TestExtractRejectsImplausibleAnswers(t *testing.T) {
	cases := []string{
		"Engineer",
		"The role described in this job description is a Senior Backend Engineer position",
		"Data | Analyst",
		"Data\nAnalyst",
	}

	for _, answer := range cases {
		extractor := New(&stubGenerator{answer: answer}, zap.NewNop())
		if role := extractor.Extract(context.Background(), "jd text"); role != Unknown {
			t.Fatalf("answer %q: expected %q, got %q", answer, Unknown, role)
		}
	}
}

func TestExtractFailureReturnsUnknown(t *testing.T) {
	extractor := New(&stubGenerator{err: errors.New("quota exceeded")}, zap.NewNop())

	if role := extractor.Extract(context.Background(), "jd text"); role != Unknown {
		t.Fatalf("expected %q on failure, got %q", Unknown, role)
	}
}

func TestExtractCachesPerJD(t *testing.T) {
	stub := &stubGenerator{answer: "Product Manager"}
	extractor := New(stub, zap.NewNop())

	ctx := context.Background()
	extractor.Extract(ctx, "hiring a product manager")
	extractor.Extract(ctx, "hiring a product manager")

	if stub.calls != 1 {
		t.Fatalf("expected 1 model call, got %d", stub.calls)
	}
}

func TestExtractCacheKeyUsesPrefix(t *testing.T) {
	stub := &stubGenerator{answer: "Product Manager"}
	extractor := New(stub, zap.NewNop())

	long := make([]byte, 600)
	for i := range long {
		long[i] = 'a'
	}

	ctx := context.Background()
	extractor.Extract(ctx, string(long)+" tail one")
	extractor.Extract(ctx, string(long)+" tail two")

	// Both JDs share the first 500 characters, so the second hits the cache.
	if stub.calls != 1 {
		t.Fatalf("expected 1 model call, got %d", stub.calls)
	}
}
